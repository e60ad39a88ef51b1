package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartmart_service/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresDashboardRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresDashboardRepository(db *sql.DB, logger *logrus.Logger) domain.DashboardRepository {
	return &postgresDashboardRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresDashboardRepository) SalesByMonth(ctx context.Context) ([]domain.MonthlySales, error) {
	query := `
        SELECT month, COALESCE(SUM(quantity), 0), COALESCE(SUM(total_price), 0)
        FROM sales
        GROUP BY month
        ORDER BY month`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to aggregate sales by month: %v", err)
		return nil, fmt.Errorf("could not aggregate sales by month: %w", err)
	}
	defer rows.Close()

	totals := []domain.MonthlySales{}
	for rows.Next() {
		var m domain.MonthlySales
		if err := rows.Scan(&m.Month, &m.TotalQuantity, &m.TotalRevenue); err != nil {
			return nil, fmt.Errorf("error scanning monthly sales: %w", err)
		}
		totals = append(totals, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly sales: %w", err)
	}
	return totals, nil
}

func (r *postgresDashboardRepository) RevenueByMonthAndCategory(ctx context.Context) ([]domain.CategoryRevenue, error) {
	query := `
        SELECT s.month, c.name, COALESCE(SUM(s.total_price), 0)
        FROM sales s
        JOIN products p ON p.id = s.product_id
        JOIN categories c ON c.id = p.category_id
        GROUP BY s.month, c.name
        ORDER BY s.month, c.name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to aggregate revenue by month and category: %v", err)
		return nil, fmt.Errorf("could not aggregate revenue by category: %w", err)
	}
	defer rows.Close()

	revenue := []domain.CategoryRevenue{}
	for rows.Next() {
		var cr domain.CategoryRevenue
		if err := rows.Scan(&cr.Month, &cr.Category, &cr.Total); err != nil {
			return nil, fmt.Errorf("error scanning category revenue: %w", err)
		}
		revenue = append(revenue, cr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category revenue: %w", err)
	}
	return revenue, nil
}
