// cmd/replay/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Nic0Byte/NearYou-v1/internal/config"
	"github.com/Nic0Byte/NearYou-v1/internal/enrich"
	"github.com/Nic0Byte/NearYou-v1/internal/eventlog"
	"github.com/Nic0Byte/NearYou-v1/internal/generator/client"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/dbch"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/dbpg"
	"github.com/Nic0Byte/NearYou-v1/internal/platform/logger"
	"github.com/Nic0Byte/NearYou-v1/internal/profile"
	"github.com/Nic0Byte/NearYou-v1/internal/replay"
	"github.com/Nic0Byte/NearYou-v1/internal/spatial"
)

var (
	startFlag     string
	endFlag       string
	hoursBackFlag int
	usersFlag     []string
)

var rootCmd = &cobra.Command{
	Use:   "replay",
	Short: "Reprocess a historical window of gps-events through the enrichment pipeline",
	Long: "Seeks every partition of the configured Kafka topic to the start of the " +
		"requested window and replays forward through the same enrichment stages " +
		"live ingestion uses, stopping once records pass the end of the window.",
	RunE: runReplay,
}

func init() {
	rootCmd.Flags().StringVar(&startFlag, "start", "", "RFC3339 start timestamp (required unless --hours-back is set)")
	rootCmd.Flags().StringVar(&endFlag, "end", "", "RFC3339 end timestamp (defaults to now)")
	rootCmd.Flags().IntVar(&hoursBackFlag, "hours-back", 0, "replay the last N hours instead of --start/--end")
	rootCmd.Flags().StringSliceVar(&usersFlag, "users", nil, "restrict replay to these user ids (repeatable, comma-separated)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	lg := logger.New(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(lg)

	win, err := buildWindow()
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	ctx := context.Background()

	pgPool, err := dbpg.Open(ctx, cfg.PostgresConnString())
	if err != nil {
		return fmt.Errorf("opening postgres pool: %w", err)
	}
	defer pgPool.Close()
	if !dbpg.WaitFor(ctx, pgPool, lg) {
		return fmt.Errorf("postgres not ready after waiting")
	}

	chCfg := dbch.Config{
		Host: cfg.ClickHouse.Host, Port: cfg.ClickHouse.Port,
		User: cfg.ClickHouse.User, Password: cfg.ClickHouse.Password,
		Database: cfg.ClickHouse.Database,
	}
	chDB, err := dbch.Open(chCfg)
	if err != nil {
		return fmt.Errorf("opening clickhouse connection: %w", err)
	}
	defer chDB.Close()
	if !dbch.WaitFor(ctx, chDB, lg) {
		return fmt.Errorf("clickhouse not ready after waiting")
	}

	spatialIndex := spatial.NewRepository(pgPool, lg)
	profiles := profile.NewClickHouseStore(chDB, lg)
	sink := eventlog.NewClickHouseStore(chDB, lg)
	generatorClient := client.NewHTTPGenerator(cfg.MessageGeneratorURL)

	pipeline := enrich.NewPipeline(spatialIndex, profiles, generatorClient, sink, lg)
	controller := replay.NewController(pipeline, cfg.Kafka, cfg.SSL, lg)

	lg.Info("starting replay", "start", win.Start, "end", win.End, "users", len(win.Users))

	count, err := controller.Run(ctx, win)
	if err != nil {
		return fmt.Errorf("replay run failed: %w", err)
	}

	fmt.Printf("reprocessed %d records\n", count)
	return nil
}

func buildWindow() (replay.Window, error) {
	var win replay.Window

	if hoursBackFlag > 0 {
		win.End = time.Now().UTC()
		win.Start = win.End.Add(-time.Duration(hoursBackFlag) * time.Hour)
	} else {
		if startFlag == "" {
			return win, fmt.Errorf("either --start or --hours-back is required")
		}
		start, err := time.Parse(time.RFC3339, startFlag)
		if err != nil {
			return win, fmt.Errorf("parsing --start: %w", err)
		}
		win.Start = start.UTC()

		if endFlag != "" {
			end, err := time.Parse(time.RFC3339, endFlag)
			if err != nil {
				return win, fmt.Errorf("parsing --end: %w", err)
			}
			win.End = end.UTC()
		} else {
			win.End = time.Now().UTC()
		}
	}

	if len(usersFlag) > 0 {
		win.Users = make(map[uint64]struct{}, len(usersFlag))
		for _, raw := range usersFlag {
			var id uint64
			if _, err := fmt.Sscanf(raw, "%d", &id); err != nil || id == 0 {
				return win, fmt.Errorf("invalid --users entry %q", raw)
			}
			win.Users[id] = struct{}{}
		}
	}

	return win, nil
}
