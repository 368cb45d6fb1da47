package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"projektchat/internal/service"
)

// SettingsHandler handles settings and preference API requests
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// RegisterRoutes registers settings routes
func (h *SettingsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/settings", h.All)
	r.PUT("/settings/:key", h.Set)
	r.GET("/settings/:key", h.Get)
	r.POST("/config", h.SaveCompleteConfig)
	r.GET("/config", h.CompleteConfig)
	r.PUT("/preferences/:key", h.SetPreference)
	r.GET("/preferences/:key", h.GetPreference)
}

// All returns every stored setting
func (h *SettingsHandler) All(c *gin.Context) {
	settings, err := h.settings.All()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// Set stores one setting
func (h *SettingsHandler) Set(c *gin.Context) {
	var req struct {
		Value       any    `json:"value"`
		Description string `json:"description,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settings.Set(c.Param("key"), req.Value, req.Description); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Get returns one setting value
func (h *SettingsHandler) Get(c *gin.Context) {
	var value json.RawMessage
	ok, err := h.settings.Get(c.Param("key"), &value)
	if err != nil {
		handleError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": value})
}

// SaveCompleteConfig stores a full settings snapshot
func (h *SettingsHandler) SaveCompleteConfig(c *gin.Context) {
	var cfg map[string]any
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settings.SaveCompleteConfig(cfg); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CompleteConfig returns the stored settings snapshot
func (h *SettingsHandler) CompleteConfig(c *gin.Context) {
	cfg, err := h.settings.CompleteConfig()
	if err != nil {
		handleError(c, err)
		return
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	c.JSON(http.StatusOK, cfg)
}

// SetPreference stores a user preference
func (h *SettingsHandler) SetPreference(c *gin.Context) {
	var req struct {
		Value any `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settings.SetPreference(c.Param("key"), req.Value); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetPreference returns one user preference
func (h *SettingsHandler) GetPreference(c *gin.Context) {
	var value json.RawMessage
	ok, err := h.settings.GetPreference(c.Param("key"), &value)
	if err != nil {
		handleError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": value})
}
