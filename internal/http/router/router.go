package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/config"
	"github.com/leadforge/crm-api/internal/database"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/http/handler"
	"github.com/leadforge/crm-api/internal/http/middleware"
	"github.com/leadforge/crm-api/internal/realtime"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/leadforge/crm-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                   *config.Config
	logger                *zap.Logger
	db                    *gorm.DB
	authMiddleware        *auth.Middleware
	rateLimiter           *middleware.RateLimiter
	hub                   *realtime.Hub
	authHandler           *handler.AuthHandler
	leadHandler           *handler.LeadHandler
	lotHandler            *handler.LotHandler
	successfulLeadHandler *handler.SuccessfulLeadHandler
	teamHandler           *handler.TeamHandler
	adminHandler          *handler.AdminHandler
	catalogHandler        *handler.CatalogHandler
	actionHandler         *handler.ActionHandler
	historyHandler        *handler.HistoryHandler
	webhookHandler        *handler.WebhookHandler
	uploadHandler         *handler.UploadHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	hub *realtime.Hub,
	authHandler *handler.AuthHandler,
	leadHandler *handler.LeadHandler,
	lotHandler *handler.LotHandler,
	successfulLeadHandler *handler.SuccessfulLeadHandler,
	teamHandler *handler.TeamHandler,
	adminHandler *handler.AdminHandler,
	catalogHandler *handler.CatalogHandler,
	actionHandler *handler.ActionHandler,
	historyHandler *handler.HistoryHandler,
	webhookHandler *handler.WebhookHandler,
	uploadHandler *handler.UploadHandler,
) *Router {
	return &Router{
		cfg:                   cfg,
		logger:                logger,
		db:                    db,
		authMiddleware:        authMiddleware,
		rateLimiter:           rateLimiter,
		hub:                   hub,
		authHandler:           authHandler,
		leadHandler:           leadHandler,
		lotHandler:            lotHandler,
		successfulLeadHandler: successfulLeadHandler,
		teamHandler:           teamHandler,
		adminHandler:          adminHandler,
		catalogHandler:        catalogHandler,
		actionHandler:         actionHandler,
		historyHandler:        historyHandler,
		webhookHandler:        webhookHandler,
		uploadHandler:         uploadHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.Stats(rt.db)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
			},
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// Stored note photos are public reads; upload itself requires auth
	r.Get("/uploads/*", rt.uploadHandler.ServePhoto)

	r.Route("/api", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/register", rt.authHandler.Register)
		r.Post("/auth/login", rt.authHandler.Login)
		r.Post("/auth/refresh", rt.authHandler.Refresh)
		r.Post("/webhook/tilda", rt.webhookHandler.Tilda)

		// Partner integrations authenticate with the X-API-Key header
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireAPIKey)
			r.Post("/integration", rt.webhookHandler.Integration)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Auth
			r.Post("/auth/logout", rt.authHandler.Logout)
			r.Get("/auth/me", rt.authHandler.Me)

			// Realtime dashboard updates
			r.Get("/ws", rt.hub.ServeHTTP)

			// Leads
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", rt.leadHandler.List)
				r.Post("/", rt.leadHandler.Create)
				r.Get("/search", rt.leadHandler.List)
				r.Get("/count", rt.leadHandler.Count)
				r.Get("/stats/overview", rt.leadHandler.StatsOverview)
				r.Get("/stats/statuses", rt.leadHandler.StatsDimension("status"))
				r.Get("/stats/sources", rt.leadHandler.StatsDimension("source"))
				r.Get("/stats/utm", rt.leadHandler.StatsDimension("utm"))
				r.Get("/stats/managers", rt.leadHandler.StatsDimension("manager"))
				r.Get("/stats/teams", rt.leadHandler.StatsByTeam)
				r.Post("/bulk/delete", rt.leadHandler.BulkDelete)
				r.Post("/bulk/update", rt.leadHandler.BulkUpdate)
				r.Post("/bulk/hide", rt.leadHandler.BulkHide)
				r.Post("/upload/photo", rt.uploadHandler.UploadPhoto)
				r.Get("/{id}", rt.leadHandler.Get)
				r.Put("/{id}", rt.leadHandler.Update)
				r.Delete("/{id}", rt.leadHandler.Delete)
				r.Patch("/{id}/status", rt.leadHandler.ChangeStatus)
				r.Patch("/{id}/assign", rt.leadHandler.Assign)
				r.Patch("/{id}/visibility", rt.leadHandler.ToggleVisibility)
				r.Get("/{id}/history", rt.leadHandler.History)
				r.Get("/{id}/actions", rt.actionHandler.ListByLead)
				r.Post("/{id}/notes", rt.leadHandler.AddNote)
				r.Put("/{id}/notes/{noteId}", rt.leadHandler.EditNote)
				r.Delete("/{id}/notes/{noteId}", rt.leadHandler.DeleteNote)
			})

			// Lots
			r.Route("/lots", func(r chi.Router) {
				r.Get("/", rt.lotHandler.List)
				r.Post("/", rt.lotHandler.Create)
				r.Get("/stats", rt.lotHandler.Totals)
				r.Get("/{id}", rt.lotHandler.Get)
				r.Delete("/{id}", rt.lotHandler.Delete)
				r.Patch("/{id}/amount", rt.lotHandler.UpdateAmount)
				r.Patch("/{id}/payout", rt.lotHandler.UpdatePayout)
				r.Post("/{id}/restore", rt.lotHandler.Restore)
			})

			// Closed deals
			r.Route("/successful-leads", func(r chi.Router) {
				r.Get("/", rt.successfulLeadHandler.List)
				r.Post("/", rt.successfulLeadHandler.Create)
				r.Get("/{id}", rt.successfulLeadHandler.Get)
				r.Put("/{id}", rt.successfulLeadHandler.Update)
				r.Delete("/{id}", rt.successfulLeadHandler.Delete)
			})

			// Follow-up actions
			r.Route("/actions", func(r chi.Router) {
				r.Post("/", rt.actionHandler.Create)
				r.Get("/today", rt.actionHandler.ListToday)
				r.Get("/overdue", rt.actionHandler.ListOverdue)
				r.Get("/{id}", rt.actionHandler.Get)
				r.Put("/{id}", rt.actionHandler.Update)
				r.Delete("/{id}", rt.actionHandler.Delete)
			})

			// Global lead history feed
			r.Get("/leadsHistory", rt.historyHandler.List)
			r.Get("/leadsHistory/{leadId}", rt.historyHandler.ListByLead)

			// Photo uploads
			r.Post("/upload/photo", rt.uploadHandler.UploadPhoto)

			// Catalogs
			r.Get("/statuses", rt.catalogHandler.ListStatuses)
			r.Get("/sources", rt.catalogHandler.ListSources)
			r.Get("/utm", rt.catalogHandler.ListUTMSources)

			// Team, admin and catalog management require elevated roles
			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(domain.RoleSuperAdmin, domain.RoleAdmin))

				r.Route("/teams", func(r chi.Router) {
					r.Get("/", rt.teamHandler.List)
					r.Post("/", rt.teamHandler.Create)
					r.Get("/{id}", rt.teamHandler.Get)
					r.Put("/{id}", rt.teamHandler.Update)
					r.Delete("/{id}", rt.teamHandler.Delete)
				})

				r.Route("/admins", func(r chi.Router) {
					r.Get("/", rt.adminHandler.List)
					r.Post("/", rt.adminHandler.Create)
					r.Get("/{id}", rt.adminHandler.Get)
					r.Put("/{id}", rt.adminHandler.Update)
					r.Delete("/{id}", rt.adminHandler.Delete)
				})

				r.Post("/statuses", rt.catalogHandler.CreateStatus)
				r.Put("/statuses/{id}", rt.catalogHandler.UpdateStatus)
				r.Delete("/statuses/{id}", rt.catalogHandler.DeleteStatus)

				r.Post("/sources", rt.catalogHandler.CreateSource)
				r.Put("/sources/{id}", rt.catalogHandler.UpdateSource)
				r.Delete("/sources/{id}", rt.catalogHandler.DeleteSource)

				r.Post("/utm", rt.catalogHandler.CreateUTMSource)
				r.Put("/utm/{id}", rt.catalogHandler.UpdateUTMSource)
				r.Delete("/utm/{id}", rt.catalogHandler.DeleteUTMSource)
			})
		})
	})

	return r
}
