package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projektchat/internal/llm"
)

// ProviderHandler handles LLM provider API requests
type ProviderHandler struct {
	factory *llm.Factory
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(factory *llm.Factory) *ProviderHandler {
	return &ProviderHandler{factory: factory}
}

// RegisterRoutes registers provider routes
func (h *ProviderHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/providers", h.List)
	r.GET("/providers/:provider/models", h.Models)
}

// List returns the configured providers and the default
func (h *ProviderHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers": h.factory.Names(),
		"default":   h.factory.DefaultProvider(),
	})
}

// Models lists the models a provider offers. Listing failures come back as a
// success=false payload, not an HTTP error.
func (h *ProviderHandler) Models(c *gin.Context) {
	provider, err := h.factory.Provider(c.Param("provider"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, provider.ListModels(c.Request.Context()))
}
