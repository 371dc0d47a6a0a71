package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/madeinportugal/storefront/internal/logger"
	"github.com/madeinportugal/storefront/internal/sync"
)

type SyncHandler struct {
	orchestrator *sync.Orchestrator
	logger       *logger.Logger
}

func NewSyncHandler(orchestrator *sync.Orchestrator, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Trigger runs a full sync cycle. Products committed before a mid-run failure
// stay committed; the failure is reported with the underlying message.
func (h *SyncHandler) Trigger(c *gin.Context) {
	result := h.orchestrator.Run(c.Request.Context())

	if result.Err != nil {
		h.logger.Error("sync run failed: %v", result.Err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  result.Err.Error(),
			"result": result,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sync completed",
		"result":  result,
	})
}
