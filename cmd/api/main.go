package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Reece-Nunez/finance-ai-sub002/internal/cache"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/config"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/handler"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/repository"
	"github.com/Reece-Nunez/finance-ai-sub002/internal/service"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
	var store repository.Store
	if cfg.DBConn != "" {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		store = repository.NewPostgresStore(db)
	} else {
		logger.Warn("DB_CONN not set, using in-memory store")
		store = repository.NewMemoryStore()
	}

	// Initialize pattern staleness cache
	var patternCache cache.PatternCache
	if cfg.RedisAddr != "" {
		patternCache = cache.NewRedisCache(cfg.RedisAddr)
	} else {
		logger.Warn("REDIS_ADDR not set, using in-memory pattern cache")
		patternCache = cache.NewMemoryCache()
	}

	// Initialize layers
	svc := service.NewService(store, patternCache, logger, cfg, nil)
	h := handler.NewHandler(svc)

	// Nightly reconciliation of elapsed predictions
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@daily", func() {
		svc.ReconcileAll(context.Background())
	}); err != nil {
		logger.Fatalf("Failed to schedule reconciliation: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	r.HandleFunc("/forecast", h.GetForecast).Methods("GET")
	r.HandleFunc("/forecast/recalculate", h.Recalculate).Methods("POST")
	r.HandleFunc("/recurring", h.GetRecurring).Methods("GET")
	r.HandleFunc("/patterns", h.GetPatterns).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
