package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mood-ai/internal/domain"
	"mood-ai/internal/repository"
	"mood-ai/internal/service"
)

// AdminHandler expone la vista global y el CRUD de administracion.
type AdminHandler struct {
	logger      *zap.Logger
	userServ    *service.UserService
	summaryServ *service.SummaryService
	chats       repository.ChatRepository
}

func NewAdminHandler(logger *zap.Logger, userServ *service.UserService, summaryServ *service.SummaryService, chats repository.ChatRepository) *AdminHandler {
	return &AdminHandler{
		logger:      logger,
		userServ:    userServ,
		summaryServ: summaryServ,
		chats:       chats,
	}
}

// ListUsers maneja GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userServ.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// ListChats maneja GET /api/admin/chats.
func (h *AdminHandler) ListChats(c *gin.Context) {
	records, err := h.chats.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list chats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list chats"})
		return
	}
	if records == nil {
		records = []domain.ChatRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

// Analytics maneja GET /api/admin/analytics.
func (h *AdminHandler) Analytics(c *gin.Context) {
	overview, err := h.summaryServ.AdminOverview(c.Request.Context())
	if err != nil {
		h.logger.Error("admin overview failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load analytics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": overview})
}

// DeleteUser maneja DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.userServ.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("delete user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// DeleteChat maneja DELETE /api/admin/chats/:id.
func (h *AdminHandler) DeleteChat(c *gin.Context) {
	id := c.Param("id")
	if err := h.chats.Delete(c.Request.Context(), id); err != nil {
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
