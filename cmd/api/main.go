package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leadforge/crm-api/docs"
	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/config"
	"github.com/leadforge/crm-api/internal/database"
	"github.com/leadforge/crm-api/internal/http/handler"
	"github.com/leadforge/crm-api/internal/http/middleware"
	"github.com/leadforge/crm-api/internal/http/router"
	"github.com/leadforge/crm-api/internal/jobs"
	"github.com/leadforge/crm-api/internal/logger"
	"github.com/leadforge/crm-api/internal/realtime"
	"github.com/leadforge/crm-api/internal/repository"
	"github.com/leadforge/crm-api/internal/service"
	"github.com/leadforge/crm-api/internal/storage"
	"go.uber.org/zap"
)

// @title LeadForge CRM API
// @version 1.0
// @description Sales lead management API: leads, lots, teams and follow-up actions

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for partner integrations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.App.Environment == "development" || basicCfg.App.Environment == "local" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	officeZone := cfg.Actions.Location()

	// Repositories
	adminRepo := repository.NewAdminRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	noteRepo := repository.NewLeadNoteRepository(db)
	historyRepo := repository.NewLeadHistoryRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	sourceRepo := repository.NewSourceRepository(db)
	utmRepo := repository.NewUTMSourceRepository(db)
	lotRepo := repository.NewLotRepository(db)
	dealRepo := repository.NewSuccessfulLeadRepository(db)
	actionRepo := repository.NewActionRepository(db)

	// Realtime hub for dashboard updates
	hub := realtime.NewHub(log)

	// Services
	tokens := auth.NewTokenManager(&cfg.JWT)
	historyService := service.NewHistoryService(historyRepo, log)
	leadService := service.NewLeadService(leadRepo, noteRepo, adminRepo, teamRepo, historyService, hub, officeZone, log)
	lotService := service.NewLotService(lotRepo, leadRepo, historyService, log)
	dealService := service.NewSuccessfulLeadService(dealRepo, leadRepo, log)
	authService := service.NewAuthService(adminRepo, tokens, log)
	teamService := service.NewTeamService(teamRepo, adminRepo, log)
	adminService := service.NewAdminService(adminRepo, log)
	catalogService := service.NewCatalogService(statusRepo, sourceRepo, utmRepo)
	webhookService := service.NewWebhookService(leadRepo, historyService, hub, &cfg.Webhook, log)
	actionService := service.NewActionService(actionRepo, leadRepo, officeZone, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(tokens, adminRepo, cfg.ApiKey.Value, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	leadHandler := handler.NewLeadHandler(leadService, historyService, log)
	lotHandler := handler.NewLotHandler(lotService, log)
	dealHandler := handler.NewSuccessfulLeadHandler(dealService, log)
	teamHandler := handler.NewTeamHandler(teamService, log)
	adminHandler := handler.NewAdminHandler(adminService, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	actionHandler := handler.NewActionHandler(actionService, log)
	historyHandler := handler.NewHistoryHandler(historyService, log)
	webhookHandler := handler.NewWebhookHandler(webhookService, &cfg.Webhook, log)
	uploadHandler := handler.NewUploadHandler(fileStorage, &cfg.Storage, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		hub,
		authHandler,
		leadHandler,
		lotHandler,
		dealHandler,
		teamHandler,
		adminHandler,
		catalogHandler,
		actionHandler,
		historyHandler,
		webhookHandler,
		uploadHandler,
	)

	// Background jobs
	scheduler := jobs.NewScheduler(log)

	sweep := jobs.NewActionSweepJob(actionRepo, hub, officeZone, log, time.Minute)
	if err := scheduler.AddJob(jobs.ActionSweepJobName, "@hourly", sweep.Run); err != nil {
		log.Error("Failed to register action sweep job", zap.Error(err))
	}

	cleanup := jobs.NewTokenCleanupJob(adminRepo, tokens, log, 5*time.Minute)
	if err := scheduler.AddJob(jobs.TokenCleanupJobName, "@daily", cleanup.Run); err != nil {
		log.Error("Failed to register token cleanup job", zap.Error(err))
	}

	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received",
			zap.String("signal", sig.String()),
			zap.Int("ws_clients", hub.ClientCount()),
		)

		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
