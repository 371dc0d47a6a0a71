package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/madeinportugal/storefront/internal/logger"
	"github.com/madeinportugal/storefront/internal/resolver"
)

// ResolveHandler exposes the dual-source product resolution: live first,
// mirror fallback, placeholder when both miss.
type ResolveHandler struct {
	resolver *resolver.Resolver
	logger   *logger.Logger
}

func NewResolveHandler(resolver *resolver.Resolver, logger *logger.Logger) *ResolveHandler {
	return &ResolveHandler{
		resolver: resolver,
		logger:   logger,
	}
}

func (h *ResolveHandler) Get(c *gin.Context) {
	jumpsellerID, err := strconv.ParseInt(c.Param("jumpsellerID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	view, source, err := h.resolver.Resolve(c.Request.Context(), jumpsellerID)
	if err != nil {
		h.logger.Error("failed to resolve product %d: %v", jumpsellerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   view,
		"source": source.String(),
	})
}
