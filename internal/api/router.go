package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projektchat/internal/api/middleware"
	"projektchat/internal/llm"
	"projektchat/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins []string
	MaxFileSize  int64
}

// SetupRouter sets up the Gin router
func SetupRouter(
	projectService *service.ProjectService,
	chatService *service.ChatService,
	documentService *service.DocumentService,
	settingsService *service.SettingsService,
	factory *llm.Factory,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowOrigins))
	if cfg.MaxFileSize > 0 {
		r.MaxMultipartMemory = cfg.MaxFileSize
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	projectHandler := NewProjectHandler(projectService)
	projectHandler.RegisterRoutes(api)

	chatHandler := NewChatHandler(chatService)
	chatHandler.RegisterRoutes(api)

	documentHandler := NewDocumentHandler(documentService, cfg.MaxFileSize)
	documentHandler.RegisterRoutes(api)

	providerHandler := NewProviderHandler(factory)
	providerHandler.RegisterRoutes(api)

	settingsHandler := NewSettingsHandler(settingsService)
	settingsHandler.RegisterRoutes(api)

	return r
}
