package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/docs"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/appstate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/auth"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/cache"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/catalog"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/config"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/database"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/events"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/http/handler"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/http/middleware"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/http/router"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/jobs"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/logger"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/metrics"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/repository"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/service"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.3 init -d ../.. -g cmd/api/main.go -o ../../docs

// @title Wölfleder Kunden API
// @version 1.0
// @description Gate configuration, pricing and customer records for Wölfleder Torbau

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description HS256 bearer token, subject is the owner id

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
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)

	// In development secrets come from the environment, elsewhere from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
	}

	backupStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// The catalog falls back to direct reads when redis is disabled or unreachable
	var (
		catalogCache catalog.Cache
		cachePinger  router.Pinger
		redisClient  *cache.Client
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.New(ctx, &cfg.Redis, log)
		if err != nil {
			log.Warn("Redis connection failed, continuing without catalog cache", zap.Error(err))
		} else {
			catalogCache = redisClient
			cachePinger = redisClient
		}
	}

	// Repositories
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	gateRepo := repository.NewGateRepository(db)
	productRepo := repository.NewProductRepository(db)

	// Services
	catalogService := catalog.NewService(productRepo, catalogCache, cfg.Redis.CatalogTTLDuration(), m, log)
	gateStorage := service.NewGateStorage(customerRepo, orderRepo, gateRepo, log)
	customerService := service.NewCustomerService(customerRepo, log)
	orderService := service.NewOrderService(customerRepo, orderRepo, log)
	backupService := service.NewBackupService(db, backupStorage, customerRepo, orderRepo, cfg.Storage.MaxImportSizeMB<<20, log)
	exportService := service.NewExportService(orderService, catalogService, cfg.Pricing.VATRate, log)
	hub := events.NewHub(log)

	sessions := appstate.NewRegistry(m)
	newStore := func(ownerID string) *appstate.Store {
		return appstate.New(ownerID, appstate.Deps{
			Storage:  gateStorage,
			Catalog:  catalogService,
			Notifier: hub,
			Metrics:  m,
		}, appstate.Options{
			VATRate:          cfg.Pricing.VATRate,
			MaxMarkupPercent: cfg.Pricing.MaxMarkupPercent,
		}, log)
	}

	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		cachePinger,
		m,
		registry,
		authMiddleware,
		rateLimiter,
		router.Handlers{
			Session:  handler.NewSessionHandler(sessions, newStore, log),
			Customer: handler.NewCustomerHandler(customerService, orderService, log),
			Order:    handler.NewOrderHandler(orderService, exportService, log),
			Catalog:  handler.NewCatalogHandler(catalogService, log),
			Backup:   handler.NewBackupHandler(backupService, log),
			Events:   handler.NewEventsHandler(hub, log),
		},
	)

	scheduler := jobs.NewScheduler(log, m)
	if err := jobs.RegisterSessionSweepJob(
		scheduler,
		sessions,
		log,
		cfg.Sessions.SweepCron,
		cfg.Sessions.IdleTimeoutDuration(),
	); err != nil {
		return fmt.Errorf("failed to register session sweep job: %w", err)
	}
	if cfg.Backup.Enabled {
		if err := jobs.RegisterBackupJob(scheduler, backupService, log, cfg.Backup.Cron, 10*time.Minute); err != nil {
			return fmt.Errorf("failed to register backup job: %w", err)
		}
	} else {
		log.Info("Nightly backup export disabled")
	}
	scheduler.Start()
	log.Info("Scheduler started", zap.Strings("jobs", scheduler.JobNames()))

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
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		stopped := scheduler.Stop()
		<-stopped.Done()
		log.Info("Scheduler stopped")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Warn("Error closing redis connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
