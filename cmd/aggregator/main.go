// cmd/aggregator/main.go
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/Nic0Byte/NearYou-v1/internal/aggregate"
	"github.com/Nic0Byte/NearYou-v1/internal/config"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/dbch"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/logger"
)

// cmd/aggregator runs the C8 batch-projection jobs once per
// invocation. Scheduling (cron, a k8s CronJob) is external per
// spec.md's Non-goals.
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

	ctx := context.Background()

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

	jobs := aggregate.NewJobs(chDB, lg)

	lg.Info("running batch aggregation jobs")
	if err := jobs.RunAll(ctx); err != nil {
		lg.Error("batch aggregation failed", "error", err)
		return
	}
	lg.Info("batch aggregation jobs completed")
}
