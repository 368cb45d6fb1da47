package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"projektchat/internal/api"
	"projektchat/internal/config"
	"projektchat/internal/convert"
	"projektchat/internal/llm"
	"projektchat/internal/repository"
	"projektchat/internal/service"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	projectRepo := repository.NewProjectRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Document converter, with OCR when an endpoint is configured
	ocr := convert.NewOCRClient(cfg.OCR.Endpoint, cfg.OCR.Languages,
		time.Duration(cfg.OCR.Timeout)*time.Second)
	if ocr == nil {
		logger.Info("OCR endpoint not configured, image extraction disabled")
	}
	converter := convert.New(logger, ocr)

	// LLM provider factory
	factory := llm.NewFactory(cfg.LLM, logger)

	// Initialize services
	projectService := service.NewProjectService(projectRepo, sessionRepo, documentRepo, logger)
	documentService := service.NewDocumentService(projectRepo, documentRepo, converter, logger)
	chatService := service.NewChatService(projectRepo, sessionRepo, documentService, factory, logger)
	settingsService := service.NewSettingsService(settingsRepo, logger)

	// Setup router
	router := api.SetupRouter(projectService, chatService, documentService, settingsService, factory, api.RouterConfig{
		AllowOrigins: []string{"*"},
		MaxFileSize:  cfg.MaxFileSize(),
	})

	// Create HTTP server. WriteTimeout stays unset so SSE chat streams are
	// not cut off mid-response.
	srv := &http.Server{
		Addr:        cfg.Address(),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting Projektchat server",
			zap.String("address", cfg.Address()),
			zap.String("default_provider", cfg.LLM.DefaultProvider),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
