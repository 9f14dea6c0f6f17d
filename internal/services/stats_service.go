package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/example/shopops/internal/logger"
	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/repository"
)

// Period selects the dashboard window.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

var periods = []Period{PeriodWeek, PeriodMonth, PeriodYear}

const statsKeyPrefix = "dashboard:orders:"

// ParsePeriod accepts week, month or year. Empty means month.
func ParsePeriod(v string) (Period, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return PeriodMonth, nil
	}
	for _, p := range periods {
		if string(p) == v {
			return p, nil
		}
	}
	return "", &ValidationError{Fields: map[string]string{"period": "period phải là một trong: week month year"}}
}

// Since returns the start of the window ending at now.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	}
	return now.AddDate(0, -1, 0)
}

// DashboardStats are the order metrics shown on the admin dashboard.
type DashboardStats struct {
	Period          Period                         `json:"period"`
	Since           time.Time                      `json:"since"`
	TotalOrders     int64                          `json:"totalOrders"`
	ByStatus        map[models.OrderStatus]int64   `json:"byStatus"`
	ByPaymentStatus map[models.PaymentStatus]int64 `json:"byPaymentStatus"`
	Revenue         float64                        `json:"revenue"`
	Delivered       int64                          `json:"delivered"`
	CancelledRate   float64                        `json:"cancelledRate"`
	GeneratedAt     time.Time                      `json:"generatedAt"`
}

// StatsService computes dashboard metrics and caches them in Redis.
// A nil cache disables caching.
type StatsService struct {
	orders repository.OrderRepository
	cache  *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewStatsService builds a StatsService.
func NewStatsService(orders repository.OrderRepository, cache *redis.Client, ttl time.Duration) *StatsService {
	return &StatsService{orders: orders, cache: cache, ttl: ttl, now: time.Now}
}

// OrderStats returns metrics for period, from cache when present.
func (s *StatsService) OrderStats(ctx context.Context, period Period) (*DashboardStats, error) {
	key := statsKeyPrefix + string(period)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var cached DashboardStats
			if uErr := json.Unmarshal(data, &cached); uErr == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.App().WithError(err).Warn("[Stats] cache read failed")
		}
	}

	now := s.now()
	since := period.Since(now)
	summary, err := s.orders.Summarize(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("summarize orders: %w", err)
	}

	stats := &DashboardStats{
		Period:          period,
		Since:           since,
		TotalOrders:     summary.TotalOrders,
		ByStatus:        summary.ByStatus,
		ByPaymentStatus: summary.ByPaymentStatus,
		Revenue:         decimal.NewFromFloat(summary.Revenue).Round(0).InexactFloat64(),
		Delivered:       summary.Delivered,
		GeneratedAt:     now,
	}
	if summary.TotalOrders > 0 {
		stats.CancelledRate = decimal.NewFromInt(summary.ByStatus[models.StatusCancelled]).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(summary.TotalOrders)).
			Round(2).
			InexactFloat64()
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				logger.App().WithError(err).Warn("[Stats] cache write failed")
			}
		}
	}
	return stats, nil
}

// Invalidate drops every cached period.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s == nil || s.cache == nil {
		return
	}
	keys := make([]string, 0, len(periods))
	for _, p := range periods {
		keys = append(keys, statsKeyPrefix+string(p))
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		logger.App().WithError(err).Warn("[Stats] cache invalidation failed")
	}
}
