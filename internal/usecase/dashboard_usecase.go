package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"smartmart_service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MetricsCache stores the computed dashboard. Failures are logged, never returned
// to the client.
type MetricsCache interface {
	GetMetrics(ctx context.Context) (*domain.DashboardMetrics, bool, error)
	SetMetrics(ctx context.Context, metrics *domain.DashboardMetrics) error
	InvalidateMetrics(ctx context.Context) error
}

type DashboardUseCase interface {
	GetMetrics(ctx context.Context) (*domain.DashboardMetrics, error)
}

type dashboardUseCase struct {
	repo  domain.DashboardRepository
	cache MetricsCache
	log   *logrus.Logger
}

// NewDashboardUseCase builds the dashboard use case. cache may be nil.
func NewDashboardUseCase(repo domain.DashboardRepository, cache MetricsCache, logger *logrus.Logger) DashboardUseCase {
	return &dashboardUseCase{
		repo:  repo,
		cache: cache,
		log:   logger,
	}
}

func (uc *dashboardUseCase) GetMetrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	if uc.cache != nil {
		cached, ok, err := uc.cache.GetMetrics(ctx)
		if err != nil {
			uc.log.Warnf("Use Case: Dashboard cache read failed, querying storage: %v", err)
		} else if ok {
			uc.log.Debug("Use Case: Dashboard metrics served from cache")
			return cached, nil
		}
	}

	byMonth, err := uc.repo.SalesByMonth(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to aggregate sales by month: %v", err)
		return nil, fmt.Errorf("could not compute sales by month: %w", err)
	}
	byCategory, err := uc.repo.RevenueByMonthAndCategory(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to aggregate revenue by category: %v", err)
		return nil, fmt.Errorf("could not compute category breakdown: %w", err)
	}

	SortByCalendarMonth(byMonth, func(m domain.MonthlySales) string { return m.Month })
	breakdown := PivotCategoryBreakdown(byCategory)

	metrics := &domain.DashboardMetrics{
		SalesByMonth:      byMonth,
		CategoryBreakdown: breakdown,
	}

	if uc.cache != nil {
		if err := uc.cache.SetMetrics(ctx, metrics); err != nil {
			uc.log.Warnf("Use Case: Failed to cache dashboard metrics: %v", err)
		}
	}

	uc.log.Infof("Use Case: Dashboard computed (%d months, %d breakdown rows)", len(byMonth), len(breakdown))
	return metrics, nil
}

// unknownMonth sorts after December.
const unknownMonth = 12

var monthIndex = func() map[string]int {
	idx := make(map[string]int, 12)
	for m := time.January; m <= time.December; m++ {
		idx[m.String()] = int(m) - 1
	}
	return idx
}()

// MonthIndex returns 0 for "January" through 11 for "December" and 12 for anything
// that is not an exact English month name.
func MonthIndex(month string) int {
	if i, ok := monthIndex[month]; ok {
		return i
	}
	return unknownMonth
}

// SortByCalendarMonth stably orders items by the calendar position of their month.
func SortByCalendarMonth[T any](items []T, month func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return MonthIndex(month(items[i])) < MonthIndex(month(items[j]))
	})
}

// PivotCategoryBreakdown folds (month, category, total) rows into one record per
// month, in calendar order. Categories without sales in a month get no entry.
func PivotCategoryBreakdown(rows []domain.CategoryRevenue) []domain.MonthBreakdown {
	breakdown := []domain.MonthBreakdown{}
	position := make(map[string]int)
	for _, row := range rows {
		i, ok := position[row.Month]
		if !ok {
			i = len(breakdown)
			position[row.Month] = i
			breakdown = append(breakdown, domain.MonthBreakdown{
				Month:      row.Month,
				Categories: make(map[string]decimal.Decimal),
			})
		}
		breakdown[i].Categories[row.Category] = breakdown[i].Categories[row.Category].Add(row.Total)
	}
	SortByCalendarMonth(breakdown, func(b domain.MonthBreakdown) string { return b.Month })
	return breakdown
}

func invalidateMetrics(ctx context.Context, cache MetricsCache, log *logrus.Logger) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateMetrics(ctx); err != nil {
		log.Warnf("Use Case: Failed to invalidate dashboard cache: %v", err)
	}
}
