package csvimport

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"smartmart_service/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	CategoryColumns = []string{"name"}
	ProductColumns  = []string{"name", "price", "category_id"}
	SaleColumns     = []string{"product_id", "quantity", "total_price"}
)

// Layouts tried, in order, when a sales file carries a date column instead of a month.
// Slashed and dashed dates are read month-first, then day-first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"01-02-2006",
	"02-01-2006",
	"2006-01",
}

// RequireSaleColumns checks the sales header: the fixed columns plus month or date.
func (t *Table) RequireSaleColumns() error {
	missing := t.Missing(SaleColumns...)
	if !t.Has("month") && !t.Has("date") {
		missing = append(missing, "month or date")
	}
	if len(missing) > 0 {
		return missingColumns(missing)
	}
	return nil
}

func (t *Table) Category(row []string) (domain.Category, error) {
	name, err := t.text(row, "name")
	if err != nil {
		return domain.Category{}, err
	}
	return domain.Category{Name: name}, nil
}

func (t *Table) Product(row []string) (domain.Product, error) {
	name, err := t.text(row, "name")
	if err != nil {
		return domain.Product{}, err
	}
	rawPrice, err := t.text(row, "price")
	if err != nil {
		return domain.Product{}, err
	}
	price, err := parseDecimal(strings.ReplaceAll(rawPrice, ",", "."))
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid price '%s'", rawPrice)
	}
	categoryID, err := t.integer(row, "category_id")
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{Name: name, Price: price, CategoryID: categoryID}, nil
}

// SaleReader converts sales rows. It is built once per table because the
// total_price format is decided for the whole column.
type SaleReader struct {
	table        *Table
	textualTotal bool
}

func (t *Table) SaleReader() *SaleReader {
	return &SaleReader{table: t, textualTotal: !t.numericColumn("total_price")}
}

func (s *SaleReader) Sale(row []string) (domain.Sale, error) {
	t := s.table
	productID, err := t.integer(row, "product_id")
	if err != nil {
		return domain.Sale{}, err
	}
	quantity, err := t.integer(row, "quantity")
	if err != nil {
		return domain.Sale{}, err
	}
	rawTotal, err := t.text(row, "total_price")
	if err != nil {
		return domain.Sale{}, err
	}
	total, err := parseDecimal(s.normalizeTotal(rawTotal))
	if err != nil {
		return domain.Sale{}, fmt.Errorf("invalid total_price '%s'", rawTotal)
	}
	month, err := t.month(row)
	if err != nil {
		return domain.Sale{}, err
	}
	return domain.Sale{ProductID: productID, Month: month, Quantity: quantity, TotalPrice: total}, nil
}

// normalizeTotal treats '.' as a thousands separator and ',' as the decimal
// separator, but only for columns that are not plain numbers throughout.
func (s *SaleReader) normalizeTotal(v string) string {
	if !s.textualTotal {
		return v
	}
	v = strings.ReplaceAll(v, ".", "")
	return strings.ReplaceAll(v, ",", ".")
}

func (t *Table) month(row []string) (string, error) {
	if t.Has("month") {
		return t.text(row, "month")
	}
	raw, err := t.text(row, "date")
	if err != nil {
		return "", err
	}
	date, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return date.Month().String(), nil
}

// ParseDate parses v with the first matching layout of dateLayouts.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date '%s'", v)
}

// numericColumn reports whether every non-empty value of column parses as a number.
func (t *Table) numericColumn(column string) bool {
	for _, row := range t.Rows {
		v := strings.TrimSpace(t.Value(row, column))
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
	}
	return true
}

func (t *Table) text(row []string, column string) (string, error) {
	v := t.Value(row, column)
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("missing value for '%s'", column)
	}
	return v, nil
}

func (t *Table) integer(row []string, column string) (int, error) {
	raw, err := t.text(row, column)
	if err != nil {
		return 0, err
	}
	v := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	// Spreadsheets often export whole numbers as 3.0.
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
		return int(f), nil
	}
	return 0, fmt.Errorf("invalid %s '%s'", column, raw)
}

func parseDecimal(v string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(v))
}
