// cmd/generator/main.go
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nic0Byte/NearYou-v1/internal/cache"
	"github.com/Nic0Byte/NearYou-v1/internal/config"
	"github.com/Nic0Byte/NearYou-v1/internal/generator"
	"github.com/Nic0Byte/NearYou-v1/internal/generator/llm"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/logger"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/metrics"
)

const serviceName = "generator"

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

	c := cache.New(ctx, cfg.Redis, cfg.Cache, lg)

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		lg.Error("failed to initialize llm provider", "error", err)
		os.Exit(1)
	}

	stats := generator.NewStats(prometheus.DefaultRegisterer)
	svc := generator.NewService(c, provider, stats, cfg.Cache.TTL, lg)
	handler := generator.NewHandler(svc, provider.Name())

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

	serverAddress := fmt.Sprintf(":%s", cfg.GeneratorPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      rootRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(lg.Handler(), slog.LevelError),
	}

	go func() {
		lg.Info("starting message-generator HTTP server", "address", serverAddress)
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

func buildProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	if cfg.LLM.Provider == "openai" {
		return llm.NewOpenAIClient(cfg.LLM.OpenAIBase, cfg.LLM.OpenAIKey, ""), nil
	}
	return llm.NewGeminiClient(ctx, cfg.LLM.GeminiKey, "")
}
