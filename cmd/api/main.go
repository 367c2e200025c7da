package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/findash/internal/cache"
	"github.com/Dan9191/findash/internal/config"
	"github.com/Dan9191/findash/internal/handler"
	"github.com/Dan9191/findash/internal/jobs"
	"github.com/Dan9191/findash/internal/middleware"
	"github.com/Dan9191/findash/internal/repository"
	"github.com/Dan9191/findash/internal/service"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load embedded datasets
	repo, err := repository.NewRepository()
	if err != nil {
		logger.Fatalf("Failed to load company data: %v", err)
	}
	logger.Infof("Loaded %d companies", len(repo.GetAvailableCompanies()))

	// Overlay storage
	var overlays repository.OverlayStore
	if cfg.DBConn != "" {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		overlayRepo := repository.NewOverlayRepository(db)
		if err := overlayRepo.EnsureSchema(context.Background()); err != nil {
			logger.Fatalf("Failed to prepare database: %v", err)
		}
		overlays = overlayRepo
	} else {
		logger.Warn("DB_CONN not set, overlays are kept in memory")
		overlays = repository.NewMemoryOverlayStore()
	}

	// Optional cache
	var resultCache cache.Cache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.CacheTTL)
		defer redisCache.Close()
		if err := redisCache.Ping(context.Background()); err != nil {
			logger.Warnf("Redis unavailable, caching disabled: %v", err)
		} else {
			resultCache = redisCache
		}
	}

	// Initialize layers
	svc := service.NewService(repo, overlays, resultCache, logger, cfg)
	h := handler.NewHandler(svc, logger)

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.RegisterOverlayPurge(cfg.PurgeSchedule, svc); err != nil {
		logger.Fatalf("Failed to schedule jobs: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	h.Register(r, middleware.AuthMiddleware(cfg))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      c.Handler(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown failed: %v", err)
	}
}
