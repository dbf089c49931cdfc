// Package enrich implements C6: the per-event enrichment dataflow
// (decode, validate, nearest-POI join, proximity-gate + generate,
// sink) over a partitioned Kafka topic, and is reused verbatim by the
// C7 replay controller.
package enrich

import (
	"context"
	"log/slog"

	"github.com/Nic0Byte/NearYou-v1/internal/eventlog"
	"github.com/Nic0Byte/NearYou-v1/internal/generator/client"
	"github.com/Nic0Byte/NearYou-v1/internal/profile"
	"github.com/Nic0Byte/NearYou-v1/internal/spatial"
)

// Pipeline bundles the collaborators every stage needs: C2 spatial
// index, C3 profile store, C5 generator client, C4 sink.
type Pipeline struct {
	Spatial   spatial.Index
	Profiles  profile.Store
	Generator client.Generator
	Sink      eventlog.Sink
	Logger    *slog.Logger

	memo *memoTable
}

// NewPipeline wires a Pipeline.
func NewPipeline(idx spatial.Index, profiles profile.Store, gen client.Generator, sink eventlog.Sink, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		Spatial:   idx,
		Profiles:  profiles,
		Generator: gen,
		Sink:      sink,
		Logger:    logger,
		memo:      newMemoTable(),
	}
}

// ProcessOne runs all five C6 stages over a single raw Kafka message
// value and, on success, writes the enriched event to C4.
func (p *Pipeline) ProcessOne(ctx context.Context, raw []byte, offset uint64) {
	event, ok := decode(raw, p.Logger)
	if !ok {
		return
	}
	event.Offset = offset

	if !validate(event) {
		p.Logger.Warn("dropping event: invalid user_id")
		return
	}

	enriched, shopID, ok := p.nearestPOIJoin(ctx, event)
	if !ok {
		return
	}

	p.proximityGateAndGenerate(ctx, event, shopID, &enriched)

	if err := p.Sink.WriteEvent(ctx, enriched); err != nil {
		p.Logger.Error("sink write failed, event lost", "user_id", event.UserID, "error", err)
	}
}
