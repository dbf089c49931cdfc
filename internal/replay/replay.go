// Package replay implements C7: a bounded re-run of the C6 enrichment
// pipeline over a historical Kafka time range, driving the exact same
// stage functions as live ingestion (internal/enrich), not a copy of
// them.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/Nic0Byte/NearYou-v1/internal/config"
	"github.com/Nic0Byte/NearYou-v1/internal/enrich"
	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// Window bounds a replay run. End is inclusive: a record stamped exactly
// at End is still replayed, and the first record whose timestamp is
// after End stops that partition's scan.
type Window struct {
	Start time.Time
	End   time.Time
	// Users, when non-empty, restricts replay to these user ids;
	// every other record is skipped (but still consumes an offset).
	Users map[uint64]struct{}
}

// Allows reports whether userID passes the Window's --users allowlist.
func (w Window) Allows(userID uint64) bool {
	if len(w.Users) == 0 {
		return true
	}
	_, ok := w.Users[userID]
	return ok
}

// Controller replays historical Kafka records through pipeline.
type Controller struct {
	pipeline *enrich.Pipeline
	cfg      config.KafkaConfig
	ssl      config.SSLConfig
	logger   *slog.Logger
}

// NewController wires a Controller over an already-built enrichment
// pipeline, reusing its ProcessOne stage chain verbatim.
func NewController(pipeline *enrich.Pipeline, cfg config.KafkaConfig, ssl config.SSLConfig, logger *slog.Logger) *Controller {
	return &Controller{pipeline: pipeline, cfg: cfg, ssl: ssl, logger: logger}
}

// Run seeks every partition of cfg.Topic to the offset whose record
// timestamp is >= win.Start, then replays forward through the C6
// stages until a record's timestamp is past win.End. A partition scan
// does not stop at the end of the partition: FetchMessage waits for the
// next record, so a partition with no record past win.End keeps Run
// waiting until ctx is cancelled. It returns the total count of records
// handed to the pipeline (records outside win.Users still advance the
// partition but are not counted or processed).
func (c *Controller) Run(ctx context.Context, win Window) (int, error) {
	partitions, err := c.listPartitions(ctx)
	if err != nil {
		return 0, fmt.Errorf("replay: failed to list partitions: %w", err)
	}

	dialer, err := enrich.NewDialer(c.ssl)
	if err != nil {
		return 0, fmt.Errorf("replay: failed to build dialer: %w", err)
	}

	counts := make([]int, len(partitions))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range partitions {
		i, p := i, p
		g.Go(func() error {
			n, err := c.replayPartition(gctx, dialer, p.ID, win)
			counts[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

func (c *Controller) listPartitions(ctx context.Context) ([]kafka.Partition, error) {
	conn, err := kafka.DialContext(ctx, "tcp", c.cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	return conn.ReadPartitions(c.cfg.Topic)
}

func (c *Controller) replayPartition(ctx context.Context, dialer *kafka.Dialer, partition int, win Window) (int, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   []string{c.cfg.Broker},
		Topic:     c.cfg.Topic,
		Partition: partition,
		Dialer:    dialer,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	if err := reader.SetOffsetAt(ctx, win.Start); err != nil {
		return 0, fmt.Errorf("partition %d: seek to %s: %w", partition, win.Start, err)
	}

	count := 0
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return count, nil
			}
			return count, fmt.Errorf("partition %d: fetch: %w", partition, err)
		}

		if !win.End.IsZero() && msg.Time.After(win.End) {
			return count, nil
		}

		userID := userIDFromEvent(msg.Value)
		if userID == 0 || !win.Allows(userID) {
			continue
		}

		c.pipeline.ProcessOne(ctx, msg.Value, uint64(msg.Offset))
		count++
	}
}

func userIDFromEvent(raw []byte) uint64 {
	var e models.GPSEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return 0
	}
	return e.UserID
}
