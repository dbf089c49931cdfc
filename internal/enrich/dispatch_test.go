package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

func TestDispatcher_PerUserOrdering(t *testing.T) {
	sink := &stubSink{}
	p := NewPipeline(
		&stubSpatial{poi: &models.NearestPOI{ShopID: 1, ShopName: "Bar Centrale", Distance: 500}},
		&stubProfiles{}, &stubGenerator{}, sink, testLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(p)
	for i := uint64(1); i <= 5; i++ {
		d.Dispatch(ctx, 1, rawEvent(t, 1, 45.0, 7.6), i)
	}

	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.events) == 5
	}, time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for i, e := range sink.events {
		assert.Equal(t, uint64(i+1), e.EventID, "same-user events must be written in arrival order")
	}
}

func TestDispatcher_DifferentUsersGetSeparateQueues(t *testing.T) {
	sink := &stubSink{}
	p := NewPipeline(
		&stubSpatial{poi: &models.NearestPOI{ShopID: 1, ShopName: "Bar Centrale", Distance: 500}},
		&stubProfiles{}, &stubGenerator{}, sink, testLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(p)
	d.Dispatch(ctx, 1, rawEvent(t, 1, 45.0, 7.6), 1)
	d.Dispatch(ctx, 2, rawEvent(t, 2, 45.0, 7.6), 1)

	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.events) == 2
	}, time.Second, 5*time.Millisecond)

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Len(t, d.queues, 2, "each user must get its own queue")
}
