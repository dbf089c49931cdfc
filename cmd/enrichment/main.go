// cmd/enrichment/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Nic0Byte/NearYou-v1/internal/config"
	"github.com/Nic0Byte/NearYou-v1/internal/enrich"
	"github.com/Nic0Byte/NearYou-v1/internal/eventlog"
	"github.com/Nic0Byte/NearYou-v1/internal/generator/client"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/dbch"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/dbpg"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/logger"
	"github.com/Nic0Byte/NearYou-v1/internal/profile"
	"github.com/Nic0Byte/NearYou-v1/internal/spatial"
)

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

	pgPool, err := dbpg.Open(ctx, cfg.PostgresConnString())
	if err != nil {
		lg.Error("failed to open postgres pool", "error", err)
		return
	}
	defer pgPool.Close()
	if !dbpg.WaitFor(ctx, pgPool, lg) {
		lg.Error("postgres not ready after waiting, exiting")
		return
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

	spatialIndex := spatial.NewRepository(pgPool, lg)
	profiles := profile.NewClickHouseStore(chDB, lg)
	sink := eventlog.NewClickHouseStore(chDB, lg)
	generatorClient := client.NewHTTPGenerator(cfg.MessageGeneratorURL)

	pipeline := enrich.NewPipeline(spatialIndex, profiles, generatorClient, sink, lg)
	dispatcher := enrich.NewDispatcher(pipeline)

	reader, err := enrich.NewKafkaReader(cfg.Kafka, cfg.SSL)
	if err != nil {
		lg.Error("failed to build kafka reader", "error", err)
		return
	}
	defer reader.Close()

	lg.Info("starting enrichment dataflow",
		"topic", cfg.Kafka.Topic, "consumer_group", cfg.Kafka.ConsumerGroup)

	if err := enrich.Run(ctx, reader, dispatcher); err != nil {
		lg.Error("enrichment run loop exited with error", "error", err)
	}

	dispatcher.Wait()
	lg.Info("enrichment dataflow shut down complete")
}
