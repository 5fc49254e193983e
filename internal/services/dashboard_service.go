package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/storage"
)

// TrendWindowDays is the trailing window of the monthly trend series.
const TrendWindowDays = 180

// DashboardService computes derived statistics over the entire current
// expense set. Every call is a fresh scan of the store, so the result is
// always consistent with the latest committed mutation.
type DashboardService struct {
	store *storage.SQLiteStore
}

func NewDashboardService(store *storage.SQLiteStore) *DashboardService {
	return &DashboardService{store: store}
}

// Stats aggregates the full table: total, count, average, sparse category
// breakdown, and the trailing monthly trend series.
func (s *DashboardService) Stats(ctx context.Context) (core.DashboardStats, error) {
	expenses, err := s.store.AllExpenses(ctx)
	if err != nil {
		return core.DashboardStats{}, fmt.Errorf("dashboard scan: %w", err)
	}

	stats := core.DashboardStats{
		CategoryBreakdown: make(map[string]float64),
		MonthlyTrends:     []core.MonthlyTrend{},
	}

	windowStart := time.Now().UTC().AddDate(0, 0, -TrendWindowDays)
	windowStart = time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, time.UTC)

	type yearMonth struct {
		year  int
		month int
	}
	trendBuckets := make(map[yearMonth]*core.MonthlyTrend)

	for _, e := range expenses {
		stats.TotalExpenses += e.Amount
		stats.TotalCount++
		stats.CategoryBreakdown[string(e.Category)] += e.Amount

		if e.ExpenseDate.Before(windowStart) {
			continue
		}
		key := yearMonth{year: e.ExpenseDate.Year(), month: int(e.ExpenseDate.Month())}
		bucket, ok := trendBuckets[key]
		if !ok {
			bucket = &core.MonthlyTrend{Year: key.year, Month: key.month}
			trendBuckets[key] = bucket
		}
		bucket.Total += e.Amount
		bucket.Count++
	}

	if stats.TotalCount > 0 {
		stats.AverageExpense = stats.TotalExpenses / float64(stats.TotalCount)
	}

	for _, bucket := range trendBuckets {
		stats.MonthlyTrends = append(stats.MonthlyTrends, *bucket)
	}
	sort.Slice(stats.MonthlyTrends, func(i, j int) bool {
		a, b := stats.MonthlyTrends[i], stats.MonthlyTrends[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	return stats, nil
}
