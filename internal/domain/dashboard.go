package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

type MonthlySales struct {
	Month         string          `json:"month"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// CategoryRevenue is one (month, category) group of summed sale totals.
type CategoryRevenue struct {
	Month    string
	Category string
	Total    decimal.Decimal
}

// MonthBreakdown holds the revenue of every category that sold something in Month.
// It is serialised flat: {"month": "March", "Drinks": 10.5, "Food": 3}.
type MonthBreakdown struct {
	Month      string
	Categories map[string]decimal.Decimal
}

func (b MonthBreakdown) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(b.Categories))
	for name := range b.Categories {
		if name == "month" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteString(`{"month":`)
	month, err := json.Marshal(b.Month)
	if err != nil {
		return nil, err
	}
	buf.Write(month)
	for _, name := range names {
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(b.Categories[name])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (b *MonthBreakdown) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Categories = make(map[string]decimal.Decimal, len(raw))
	for key, value := range raw {
		if key == "month" {
			if err := json.Unmarshal(value, &b.Month); err != nil {
				return err
			}
			continue
		}
		var total decimal.Decimal
		if err := json.Unmarshal(value, &total); err != nil {
			return err
		}
		b.Categories[key] = total
	}
	return nil
}

type DashboardMetrics struct {
	SalesByMonth      []MonthlySales   `json:"sales_by_month"`
	CategoryBreakdown []MonthBreakdown `json:"category_breakdown"`
}

type DashboardRepository interface {
	SalesByMonth(ctx context.Context) ([]MonthlySales, error)
	RevenueByMonthAndCategory(ctx context.Context) ([]CategoryRevenue, error)
}
