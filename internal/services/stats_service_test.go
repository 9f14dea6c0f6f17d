package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/repository"
)

func newStatsFixture(t *testing.T) (*fixture, *StatsService, *miniredis.Miniredis) {
	t.Helper()
	f := newFixture(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	stats := NewStatsService(repository.NewGormOrderRepository(f.db), rdb, time.Minute)
	f.svc.stats = stats
	return f, stats, mr
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonth, p)

	p, err = ParsePeriod("WEEK")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, p)

	_, err = ParsePeriod("decade")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.AddDate(0, 0, -7), PeriodWeek.Since(now))
	assert.Equal(t, now.AddDate(-1, 0, 0), PeriodYear.Since(now))
}

func TestOrderStatsCachedAndInvalidated(t *testing.T) {
	f, stats, mr := newStatsFixture(t)
	ctx := context.Background()

	f.confirmed(t, "ORD-1")
	cancelled := f.create(t, "ORD-2", models.PaymentCOD)
	_, err := f.svc.Cancel(ctx, f.admin, cancelled.ID)
	require.NoError(t, err)

	first, err := stats.OrderStats(ctx, PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.TotalOrders)
	assert.Equal(t, int64(1), first.ByStatus[models.StatusCompleted])
	assert.InDelta(t, 500000, first.Revenue, 0.001)
	assert.InDelta(t, 50, first.CancelledRate, 0.001)
	assert.True(t, mr.Exists("dashboard:orders:week"))

	// rows written behind the service's back are not seen until invalidation
	require.NoError(t, f.db.Create(&models.Order{
		OrderNumber: "ORD-RAW", OrderDate: time.Now(), TotalAmount: 1,
		Status: models.StatusPending, PaymentStatus: models.PaymentAwaiting, PaymentMethod: models.PaymentCOD,
	}).Error)
	cached, err := stats.OrderStats(ctx, PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached.TotalOrders)

	f.create(t, "ORD-3", models.PaymentCOD)
	assert.False(t, mr.Exists("dashboard:orders:week"))

	fresh, err := stats.OrderStats(ctx, PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, int64(4), fresh.TotalOrders)
}

func TestOrderStatsWithoutCache(t *testing.T) {
	f := newFixture(t)
	stats := NewStatsService(repository.NewGormOrderRepository(f.db), nil, time.Minute)

	f.create(t, "ORD-1", models.PaymentCOD)
	got, err := stats.OrderStats(context.Background(), PeriodYear)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TotalOrders)
	assert.Zero(t, got.CancelledRate)

	stats.Invalidate(context.Background())
	var nilStats *StatsService
	nilStats.Invalidate(context.Background())
}
