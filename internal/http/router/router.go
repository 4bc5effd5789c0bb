package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/auth"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/config"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/database"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/http/handler"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/http/middleware"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/Lukas5x5/Woelfleder-Kunden/docs" // Import generated swagger docs
)

// Pinger is an optional dependency checked by the readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the API handlers mounted under /api/v1.
type Handlers struct {
	Session  *handler.SessionHandler
	Customer *handler.CustomerHandler
	Order    *handler.OrderHandler
	Catalog  *handler.CatalogHandler
	Backup   *handler.BackupHandler
	Events   *handler.EventsHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	cache          Pinger
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

// NewRouter creates the router. cache may be nil when redis is disabled.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	cache Pinger,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		cache:          cache,
		metrics:        m,
		gatherer:       gatherer,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger, rt.metrics))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/health/db", rt.databaseHealth)
	r.Get("/health/ready", rt.readiness)

	if rt.cfg.Metrics.Enabled && rt.gatherer != nil {
		r.Handle(rt.cfg.Metrics.Path, promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))
	}

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	h := rt.handlers
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.LimitByOwner)

		r.Get("/events", h.Events.Stream)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.Session.Create)
			r.Route("/{sid}", func(r chi.Router) {
				r.Get("/", h.Session.Get)
				r.Delete("/", h.Session.Delete)
				r.Post("/reload", h.Session.Reload)
				r.Post("/home", h.Session.Home)
				r.Put("/customer", h.Session.SelectCustomer)
				r.Delete("/gates/{gid}", h.Session.DeleteGate)

				r.Route("/gate", func(r chi.Router) {
					r.Post("/", h.Session.StartGate)
					r.Delete("/", h.Session.ClearGate)
					r.Post("/edit/{gid}", h.Session.EditGate)
					r.Put("/type", h.Session.SelectGateType)
					r.Put("/dimensions", h.Session.SetDimensions)
					r.Put("/details", h.Session.SetDetails)
					r.Post("/products", h.Session.AddProduct)
					r.Patch("/products/{index}", h.Session.UpdateProduct)
					r.Delete("/products/{index}", h.Session.RemoveProduct)
					r.Put("/markup", h.Session.SetMarkup)
					r.Post("/save", h.Session.Save)
				})
			})
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.Catalog.List)
			r.Put("/", h.Catalog.Update)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.Customer.List)
			r.Post("/", h.Customer.Create)
			r.Get("/{id}", h.Customer.GetByID)
			r.Delete("/{id}", h.Customer.Delete)
			r.Get("/{id}/orders", h.Customer.ListOrders)
			r.Post("/{id}/orders", h.Customer.CreateOrder)
		})

		r.Route("/orders/{id}", func(r chi.Router) {
			r.Get("/", h.Order.GetByID)
			r.Delete("/", h.Order.Delete)
			r.Put("/status", h.Order.UpdateStatus)
			r.Get("/export", h.Order.Export)
		})

		r.Route("/backups", func(r chi.Router) {
			r.Get("/", h.Backup.List)
			r.Post("/", h.Backup.Create)
			r.Post("/import", h.Backup.Import)
			r.Post("/upload", h.Backup.Upload)
		})
	})

	return r
}

func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := database.HealthCheckWithStats(rt.db)
	if err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats": map[string]interface{}{
			"max_open_connections": stats.MaxOpenConnections,
			"open_connections":     stats.OpenConnections,
			"in_use":               stats.InUse,
			"idle":                 stats.Idle,
			"wait_count":           stats.WaitCount,
			"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		},
	})
}

// readiness checks the database and, when configured, the catalog cache.
// A failing cache degrades the catalog to direct reads, so it is reported
// without failing readiness.
func (rt *Router) readiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	healthy := true

	if err := database.HealthCheck(rt.db); err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
		healthy = false
	} else {
		checks["database"] = map[string]interface{}{"status": "healthy"}
	}

	if rt.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.cache.Ping(ctx); err != nil {
			rt.logger.Warn("Cache health check failed", zap.Error(err))
			checks["cache"] = map[string]interface{}{"status": "degraded", "error": err.Error()}
		} else {
			checks["cache"] = map[string]interface{}{"status": "healthy"}
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
