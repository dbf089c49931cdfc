package query

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nic0Byte/NearYou-v1/internal/cache"
	"github.com/Nic0Byte/NearYou-v1/internal/eventlog"
	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProjections struct {
	monthlySummary     *models.MonthlyShopSummary
	shopPerformance    *models.ShopPerformanceMetrics
	userJourney        *models.UserJourneySummary
	shopVisitsHourly   []models.ShopVisitsHourly
	userActivityDaily  []models.UserActivityDaily
	topShopSummaries   []models.MonthlyShopSummary
	topShopPerformance []models.ShopPerformanceMetrics
}

func (f *fakeProjections) MonthlyShopSummary(ctx context.Context, shopID int64, month string) (*models.MonthlyShopSummary, error) {
	return f.monthlySummary, nil
}
func (f *fakeProjections) ShopPerformanceMetrics(ctx context.Context, shopID int64) (*models.ShopPerformanceMetrics, error) {
	return f.shopPerformance, nil
}
func (f *fakeProjections) UserJourneySummary(ctx context.Context, userID uint64, day string) (*models.UserJourneySummary, error) {
	return f.userJourney, nil
}
func (f *fakeProjections) ShopVisitsHourly(ctx context.Context, shopID int64, from, to string) ([]models.ShopVisitsHourly, error) {
	return f.shopVisitsHourly, nil
}
func (f *fakeProjections) UserActivityDaily(ctx context.Context, userID uint64, from, to string) ([]models.UserActivityDaily, error) {
	return f.userActivityDaily, nil
}
func (f *fakeProjections) TopShopSummaries(ctx context.Context, since time.Time, limit int) ([]models.MonthlyShopSummary, error) {
	return f.topShopSummaries, nil
}
func (f *fakeProjections) TopShopPerformance(ctx context.Context, since time.Time) ([]models.ShopPerformanceMetrics, error) {
	return f.topShopPerformance, nil
}

type fakeStream struct {
	timeseries       []models.TimeseriesPoint
	realtime         models.UserRealtimeActivity
	favorites        []models.FavoriteShop
	visitCounts      map[int64]uint64
	aggregateByShop  []models.ShopAggregateRow
}

func (f *fakeStream) TimeseriesStream(ctx context.Context, p eventlog.TimeseriesStreamParams) ([]models.TimeseriesPoint, error) {
	return f.timeseries, nil
}
func (f *fakeStream) UserRealtimeActivity(ctx context.Context, userID uint64, hours int) (models.UserRealtimeActivity, error) {
	return f.realtime, nil
}
func (f *fakeStream) FavoriteShops(ctx context.Context, userID uint64, limit int) ([]models.FavoriteShop, error) {
	return f.favorites, nil
}
func (f *fakeStream) ShopVisitCounts(ctx context.Context, shopIDs []int64, since, until time.Time) (map[int64]uint64, error) {
	return f.visitCounts, nil
}
func (f *fakeStream) StreamAggregateByShop(ctx context.Context, metric string, since time.Time) ([]models.ShopAggregateRow, error) {
	return f.aggregateByShop, nil
}

func newTestService(proj *fakeProjections, stream *fakeStream) *Service {
	return NewService(cache.NewMemoryCache(time.Second), proj, stream, newTestLogger())
}

func TestService_Timeseries_UsesStreamForRecentHourlyRange(t *testing.T) {
	now := time.Now().UTC()
	stream := &fakeStream{timeseries: []models.TimeseriesPoint{{Timestamp: now, Value: 3}}}
	svc := newTestService(&fakeProjections{}, stream)

	result, cached, err := svc.Timeseries(context.Background(), TimeseriesRequest{
		Metric: "visits", Start: now.Add(-time.Hour), End: now, Granularity: "hour",
	})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "stream", result.Source)
	assert.Len(t, result.Points, 1)
}

func TestService_Timeseries_UsesBatchForOldMonthlyRange(t *testing.T) {
	start := time.Now().UTC().AddDate(0, -2, 0)
	end := start.AddDate(0, 1, 0)
	proj := &fakeProjections{monthlySummary: &models.MonthlyShopSummary{
		Month: start, ShopID: 1, TotalVisits: 40, UniqueVisitors: 20, AvgDistance: 12,
	}}
	svc := newTestService(proj, &fakeStream{})

	result, _, err := svc.Timeseries(context.Background(), TimeseriesRequest{
		Metric: "visits", Start: start, End: end, Granularity: "month", ShopID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "batch", result.Source)
	require.Len(t, result.Points, 1)
	assert.Equal(t, float64(40), result.Points[0].Value)
}

func TestService_Timeseries_CachesSecondCall(t *testing.T) {
	now := time.Now().UTC()
	stream := &fakeStream{timeseries: []models.TimeseriesPoint{{Timestamp: now, Value: 3}}}
	svc := newTestService(&fakeProjections{}, stream)
	req := TimeseriesRequest{Metric: "visits", Start: now.Add(-time.Hour), End: now, Granularity: "hour"}

	_, cached1, err := svc.Timeseries(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, cached1)

	stream.timeseries = nil // prove the second call doesn't hit the stream again
	result2, cached2, err := svc.Timeseries(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, cached2)
	assert.Len(t, result2.Points, 1)
}

func TestService_Aggregate_MonthlySummaryAlwaysBatch(t *testing.T) {
	proj := &fakeProjections{topShopSummaries: []models.MonthlyShopSummary{
		{ShopID: 1, TotalVisits: 100, UniqueVisitors: 60, Month: time.Now().UTC()},
	}}
	svc := newTestService(proj, &fakeStream{})

	result, _, err := svc.Aggregate(context.Background(), AggregateRequest{Metric: "monthly_summary"})
	require.NoError(t, err)
	assert.Equal(t, "batch", result.Source)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, int64(1), result.Rows[0].Dimensions["shop_id"])
}

func TestService_Aggregate_UnknownMetricFallsBackToStream(t *testing.T) {
	stream := &fakeStream{aggregateByShop: []models.ShopAggregateRow{{ShopID: 2, Value: 5, Count: 9}}}
	svc := newTestService(&fakeProjections{}, stream)

	result, _, err := svc.Aggregate(context.Background(), AggregateRequest{Metric: "avg_distance"})
	require.NoError(t, err)
	assert.Equal(t, "stream", result.Source)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, int64(2), result.Rows[0].Dimensions["shop_id"])
}

func TestService_Aggregate_UserJourneysReturnsEmpty(t *testing.T) {
	svc := newTestService(&fakeProjections{}, &fakeStream{})

	result, _, err := svc.Aggregate(context.Background(), AggregateRequest{Metric: "user_journeys"})
	require.NoError(t, err)
	assert.Equal(t, "batch", result.Source)
	assert.Empty(t, result.Rows)
}

func TestService_UserActivity_CombinesRealtimeAndHistorical(t *testing.T) {
	lat := 45.07
	proj := &fakeProjections{userActivityDaily: []models.UserActivityDaily{
		{UserID: 1, Day: time.Now().UTC(), TotalEvents: 5, UniqueShops: 2, TotalDistance: 2000},
	}}
	stream := &fakeStream{
		realtime:  models.UserRealtimeActivity{LastLat: &lat, Events: 3},
		favorites: []models.FavoriteShop{{Name: "Bar Centrale", Visits: 9}},
	}
	svc := newTestService(proj, stream)

	result, _, err := svc.UserActivity(context.Background(), UserActivityRequest{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.TotalDaysActive)
	assert.Equal(t, uint64(2), result.TotalShopsVisited)
	assert.InDelta(t, 2.0, result.TotalDistanceKm, 0.001)
	assert.Equal(t, uint64(3), result.Realtime.Events)
	require.Len(t, result.FavoriteShops, 1)
}

func TestService_ShopPerformance_ComputesUpwardTrend(t *testing.T) {
	proj := &fakeProjections{shopPerformance: &models.ShopPerformanceMetrics{
		ShopID: 1, ShopName: "Bar Centrale", ConversionRate: 0.3,
	}}
	stream := &fakeStream{visitCounts: map[int64]uint64{1: 110}}
	svc := newTestService(proj, stream)
	// second ShopVisitCounts call (previous week) must return a lower count
	calls := 0
	wrapped := &countingStream{fakeStream: stream, onCall: func() uint64 {
		calls++
		if calls == 1 {
			return 110
		}
		return 100
	}}
	svc.Stream = wrapped

	result, _, err := svc.ShopPerformance(context.Background(), ShopPerformanceRequest{ShopIDs: []int64{1}, PeriodDays: 7})
	require.NoError(t, err)
	require.Len(t, result.Shops, 1)
	assert.Equal(t, "up", result.Shops[0].Trend.Direction)
	assert.Equal(t, int64(1), result.Shops[0].Trend.ShopID)
}

func TestComputeTrend_NoPreviousDataIsStable(t *testing.T) {
	trend := computeTrend(1, 50, 0)
	assert.Equal(t, "stable", trend.Direction)
	assert.Equal(t, float64(0), trend.PercentChange)
}

func TestComputeTrend_DownwardChange(t *testing.T) {
	trend := computeTrend(1, 50, 100)
	assert.Equal(t, "down", trend.Direction)
	assert.Less(t, trend.PercentChange, 0.0)
}

// countingStream lets ShopVisitCounts return different values on
// successive calls, to exercise the week-over-week trend comparison.
type countingStream struct {
	*fakeStream
	onCall func() uint64
}

func (c *countingStream) ShopVisitCounts(ctx context.Context, shopIDs []int64, since, until time.Time) (map[int64]uint64, error) {
	out := make(map[int64]uint64, len(shopIDs))
	v := c.onCall()
	for _, id := range shopIDs {
		out[id] = v
	}
	return out, nil
}
