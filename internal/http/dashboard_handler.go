package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mood-ai/internal/service"
)

// DashboardHandler expone las estadisticas por usuario.
type DashboardHandler struct {
	logger      *zap.Logger
	summaryServ *service.SummaryService
}

func NewDashboardHandler(logger *zap.Logger, summaryServ *service.SummaryService) *DashboardHandler {
	return &DashboardHandler{logger: logger, summaryServ: summaryServ}
}

// Stats maneja GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	summary, err := h.summaryServ.UserSummary(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("user summary failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
