// cmd/query/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nic0Byte/NearYou-v1/internal/cache"
	"github.com/Nic0Byte/NearYou-v1/internal/config"
	"github.com/Nic0Byte/NearYou-v1/internal/eventlog"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/dbch"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/logger"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/metrics"
	"github.com/Nic0Byte/NearYou-v1/internal/query"
)

const serviceName = "query"

// cmd/query serves C9: the unified read API over C4's raw event log
// and C8's batch projections, cached through C1.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	lg := logger.New(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(lg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownOtel, err := metrics.InitProviders(serviceName)
	if err != nil {
		lg.Error("failed to initialize otel providers", "error", err)
		os.Exit(1)
	}

	chCfg := dbch.Config{
		Host: cfg.ClickHouse.Host, Port: cfg.ClickHouse.Port,
		User: cfg.ClickHouse.User, Password: cfg.ClickHouse.Password,
		Database: cfg.ClickHouse.Database,
	}
	chDB, err := dbch.Open(chCfg)
	if err != nil {
		lg.Error("failed to open clickhouse connection", "error", err)
		return
	}
	defer chDB.Close()
	if !dbch.WaitFor(ctx, chDB, lg) {
		lg.Error("clickhouse not ready after waiting, exiting")
		return
	}

	c := cache.New(ctx, cfg.Redis, cfg.Cache, lg)
	store := eventlog.NewClickHouseStore(chDB, lg)

	svc := query.NewService(c, store, store, lg)
	handler := query.NewHandler(svc)

	rootRouter := chi.NewMux()
	rootRouter.Use(chiMiddleware.RequestID)
	rootRouter.Use(chiMiddleware.RealIP)
	rootRouter.Use(chiMiddleware.Recoverer)
	rootRouter.Use(logger.StructuredLogger(lg))
	rootRouter.Use(chiMiddleware.StripSlashes)
	rootRouter.Use(chiMiddleware.Timeout(60 * time.Second))
	rootRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	rootRouter.Use(chiMiddleware.Compress(5, "application/json"))
	rootRouter.Use(func(next http.Handler) http.Handler { return metrics.Middleware(serviceName, next) })

	handler.Routes(rootRouter)
	rootRouter.Handle("/metrics", promhttp.Handler())

	serverAddress := fmt.Sprintf(":%s", cfg.QueryPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      rootRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(lg.Handler(), slog.LevelError),
	}

	go func() {
		lg.Info("starting query-service HTTP server", "address", serverAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	lg.Info("shutdown signal received, starting graceful shutdown")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", "error", err)
	} else {
		lg.Info("http server gracefully stopped")
	}
	if err := shutdownOtel(shutdownCtx); err != nil {
		lg.Error("otel providers shutdown failed", "error", err)
	}
}
