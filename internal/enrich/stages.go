package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// proximityThreshold is PROXIMITY_THRESHOLD from spec.md §4.4 (200 m).
const proximityThreshold = 200.0

// decode is stage 1: JSON-unmarshal the raw Kafka message value.
func decode(raw []byte, logger *slog.Logger) (models.GPSEvent, bool) {
	var event models.GPSEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		logger.Warn("dropping event: decode failure", "error", err)
		return models.GPSEvent{}, false
	}
	return event, true
}

// validate is stage 2: user_id must be present and non-zero.
func validate(event models.GPSEvent) bool {
	return event.UserID != 0
}

// nearestPOIJoin is stage 3: merge the nearest-POI fields into an
// EnrichedEvent skeleton, also returning the matched shop_id for the
// next stage's memoisation key. Returns ok=false when C2 found nothing
// or failed, in which case the event is dropped per spec.md §4.4.
func (p *Pipeline) nearestPOIJoin(ctx context.Context, event models.GPSEvent) (models.EnrichedEvent, int64, bool) {
	poi, err := p.Spatial.Nearest(ctx, event.Latitude, event.Longitude)
	if err != nil {
		p.Logger.Error("nearest-poi join failed, dropping event", "user_id", event.UserID, "error", err)
		return models.EnrichedEvent{}, 0, false
	}
	if poi == nil {
		p.Logger.Warn("no poi reachable, dropping event", "user_id", event.UserID)
		return models.EnrichedEvent{}, 0, false
	}

	eventTime, err := parseEventTime(event.Timestamp)
	if err != nil {
		p.Logger.Warn("unparseable timestamp, using now", "user_id", event.UserID, "error", err)
		eventTime = time.Now().UTC()
	}

	enriched := models.EnrichedEvent{
		EventID:   event.Offset,
		EventTime: eventTime,
		UserID:    event.UserID,
		ShopID:    poi.ShopID,
		Latitude:  event.Latitude,
		Longitude: event.Longitude,
		PoiRange:  poi.Distance,
		PoiName:   poi.ShopName,
		PoiInfo:   "",
	}
	return enriched, poi.ShopID, true
}

// proximityGateAndGenerate is stage 4: gate on distance, look up the
// profile, and call C5, memoising per (user_id, shop_id) within this
// pipeline's process lifetime. Mutates enriched.PoiInfo in place; any
// failure along this stage degrades to an empty poi_info, never drops
// the event.
func (p *Pipeline) proximityGateAndGenerate(ctx context.Context, event models.GPSEvent, shopID int64, enriched *models.EnrichedEvent) {
	if enriched.PoiRange > proximityThreshold {
		return
	}

	prof, err := p.Profiles.Get(ctx, event.UserID)
	if err != nil {
		p.Logger.Error("profile lookup failed, treating as missing", "user_id", event.UserID, "error", err)
		return
	}
	if prof == nil {
		return
	}

	if cached, ok := p.memo.get(event.UserID, shopID); ok {
		enriched.PoiInfo = cached
		return
	}

	req := models.GenerateRequest{
		User: models.GenerateUserInput{
			Age:        prof.Age,
			Profession: prof.Profession,
			Interests:  prof.Interests,
		},
		POI: models.GeneratePOIInput{
			Name:        enriched.PoiName,
			Description: fmt.Sprintf("Negozio a %.0fm di distanza", enriched.PoiRange),
		},
	}

	resp, err := p.Generator.Generate(ctx, req)
	if err != nil {
		p.Logger.Error("generator call failed, treating as missing message", "user_id", event.UserID, "error", err)
		return
	}

	enriched.PoiInfo = resp.Message
	p.memo.set(event.UserID, shopID, resp.Message)
}

func parseEventTime(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
