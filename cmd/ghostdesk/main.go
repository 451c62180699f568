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

	"github.com/liliang-cn/ghostdesk/internal/api"
	"github.com/liliang-cn/ghostdesk/internal/catalog"
	"github.com/liliang-cn/ghostdesk/internal/config"
	"github.com/liliang-cn/ghostdesk/internal/llm"
	"github.com/liliang-cn/ghostdesk/internal/prompt"
	"github.com/liliang-cn/ghostdesk/internal/repository"
	"github.com/liliang-cn/ghostdesk/internal/service"
	"go.uber.org/zap"
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
	sessionRepo := repository.NewSessionRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	// Price catalog, loaded lazily on first use so a missing sheet does not
	// prevent startup
	cat := catalog.New(cfg.Catalog.Path, logger)

	// Prompt assets and LLM client
	promptStore := prompt.NewStore(cfg.Prompts.Dir)
	promptBuilder := prompt.NewBuilder(promptStore)
	llmClient := llm.NewClient(logger)

	// Initialize services
	analyzerService := service.NewAnalyzerService(cat, promptBuilder, llmClient, logger)
	sessionService := service.NewSessionService(sessionRepo, analyzerService, logger)
	templateService := service.NewTemplateService(templateRepo, promptStore)
	workbenchService := service.NewWorkbenchService(historyRepo, analyzerService)

	// Setup router
	router := api.SetupRouter(
		sessionService,
		workbenchService,
		templateService,
		analyzerService,
		cat,
		api.RouterConfig{AllowOrigins: []string{"*"}},
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting GhostDesk server",
			zap.String("address", cfg.Address()),
			zap.String("base_url", cfg.Server.BaseURL),
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
