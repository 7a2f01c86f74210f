package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mood-ai/internal/ai"
	"mood-ai/internal/domain"
	"mood-ai/internal/repository"
	"mood-ai/internal/service"
)

// ChatHandler mantiene dependencias para endpoints de conversacion.
type ChatHandler struct {
	logger    *zap.Logger
	responder ai.Responder
	chats     repository.ChatRepository
	limiter   service.RateLimiter
}

func NewChatHandler(logger *zap.Logger, responder ai.Responder, chats repository.ChatRepository, limiter service.RateLimiter) *ChatHandler {
	return &ChatHandler{
		logger:    logger,
		responder: responder,
		chats:     chats,
		limiter:   limiter,
	}
}

// El campo message no lleva binding required: un mensaje vacio o solo
// espacios es un no-op silencioso, no un request invalido.
type sendRequest struct {
	Message string `json:"message"`
}

// Send maneja POST /api/chat/send (autenticado, persiste el turno).
func (h *ChatHandler) Send(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	rec, ok := h.runTurn(c)
	if !ok {
		return
	}
	rec.UserID = claims.UserID

	// Solo los turnos resueltos llevan sentimiento; los fallback quedan
	// fuera del historial. La escritura no bloquea la respuesta.
	if rec.Sentiment != "" {
		go func(rec domain.ChatRecord) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.chats.Create(ctx, rec); err != nil {
				h.logger.Warn("persist chat failed", zap.Error(err), zap.String("chat_id", rec.ID))
			}
		}(rec)
	}

	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// Anonymous maneja POST /api/chat/anonymous. Mismo contrato de respuesta,
// nunca persiste y va limitado por IP.
func (h *ChatHandler) Anonymous(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}

	rec, ok := h.runTurn(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// runTurn ejecuta la vuelta comun: validar entrada, llamar al generador y
// armar el registro. Un fallo del generador produce el turno fallback con
// estado 200: la sesion del cliente sigue usable.
func (h *ChatHandler) runTurn(c *gin.Context) (domain.ChatRecord, bool) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return domain.ChatRecord{}, false
	}

	timeline := service.NewTimeline()
	conv := service.NewConversationService(h.logger, timeline, h.responder, nil, "")

	rec, err := conv.Send(c.Request.Context(), req.Message)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			// Entrada en blanco: no-op, no un error.
			c.JSON(http.StatusOK, gin.H{"data": nil})
			return domain.ChatRecord{}, false
		}
		h.logger.Error("chat turn failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate response"})
		return domain.ChatRecord{}, false
	}

	return rec, true
}

// History maneja GET /api/chat/history: registros del usuario, mas
// recientes primero tal como los entrega el store.
func (h *ChatHandler) History(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	records, err := h.chats.ListByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	if records == nil {
		records = []domain.ChatRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

// Delete maneja DELETE /api/chat/:id, acotado al dueno del registro.
func (h *ChatHandler) Delete(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	id := c.Param("id")
	if err := h.chats.DeleteByIDAndUser(c.Request.Context(), id, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		h.logger.Error("delete chat failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
