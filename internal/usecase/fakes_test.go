package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"smartmart_service/internal/domain"
	"smartmart_service/internal/events"

	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeCategoryRepo struct {
	categories []domain.Category
	createErr  error
}

func (f *fakeCategoryRepo) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c.ID = len(f.categories) + 1
	f.categories = append(f.categories, *c)
	return c, nil
}

func (f *fakeCategoryRepo) GetCategoryByName(_ context.Context, name string) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.Name == name {
			found := c
			return &found, nil
		}
	}
	return nil, domain.NotFoundf("Category '%s' not found", name)
}

func (f *fakeCategoryRepo) ListCategories(_ context.Context, skip, limit int) ([]domain.Category, error) {
	if skip >= len(f.categories) {
		return []domain.Category{}, nil
	}
	end := len(f.categories)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return f.categories[skip:end], nil
}

// fakeProductRepo rejects products whose category is not in categories,
// the way the foreign key does in postgres.
type fakeProductRepo struct {
	products   []domain.Product
	categories map[int]bool
}

func (f *fakeProductRepo) CreateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if f.categories != nil && !f.categories[p.CategoryID] {
		return nil, domain.Invalidf("product references a record that does not exist")
	}
	p.ID = len(f.products) + 1
	f.products = append(f.products, *p)
	return p, nil
}

func (f *fakeProductRepo) GetProductByID(_ context.Context, id int) (*domain.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, domain.NotFoundf("Product with id %d not found", id)
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, id int, u domain.ProductUpdate) (*domain.Product, error) {
	for i := range f.products {
		if f.products[i].ID != id {
			continue
		}
		if u.Name != nil {
			f.products[i].Name = *u.Name
		}
		if u.Price != nil {
			f.products[i].Price = *u.Price
		}
		if u.CategoryID != nil {
			f.products[i].CategoryID = *u.CategoryID
		}
		return f.GetProductByID(ctx, id)
	}
	return nil, domain.NotFoundf("Product with id %d not found", id)
}

func (f *fakeProductRepo) matching(filter domain.ProductFilter) []domain.Product {
	out := []domain.Product{}
	for _, p := range f.products {
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.CategoryID != 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (f *fakeProductRepo) ListProducts(_ context.Context, filter domain.ProductFilter, skip, limit int) ([]domain.Product, error) {
	all := f.matching(filter)
	if skip >= len(all) {
		return []domain.Product{}, nil
	}
	end := len(all)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return all[skip:end], nil
}

func (f *fakeProductRepo) ListAllProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return f.matching(filter), nil
}

func (f *fakeProductRepo) CountProducts(_ context.Context, filter domain.ProductFilter) (int, error) {
	return len(f.matching(filter)), nil
}

type fakeSaleRepo struct {
	sales    []domain.Sale
	products map[int]bool
}

func (f *fakeSaleRepo) CreateSale(_ context.Context, s *domain.Sale) (*domain.Sale, error) {
	if f.products != nil && !f.products[s.ProductID] {
		return nil, domain.Invalidf("sale references a record that does not exist")
	}
	s.ID = len(f.sales) + 1
	f.sales = append(f.sales, *s)
	return s, nil
}

func (f *fakeSaleRepo) GetSaleByID(_ context.Context, id int) (*domain.Sale, error) {
	for _, s := range f.sales {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, domain.NotFoundf("Sale with id %d not found", id)
}

func (f *fakeSaleRepo) ListSales(_ context.Context, skip, limit int) ([]domain.Sale, error) {
	return f.sales, nil
}

type fakeDashboardRepo struct {
	monthly  []domain.MonthlySales
	revenue  []domain.CategoryRevenue
	err      error
	requests int
}

func (f *fakeDashboardRepo) SalesByMonth(context.Context) ([]domain.MonthlySales, error) {
	f.requests++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.MonthlySales, len(f.monthly))
	copy(out, f.monthly)
	return out, nil
}

func (f *fakeDashboardRepo) RevenueByMonthAndCategory(context.Context) ([]domain.CategoryRevenue, error) {
	return f.revenue, nil
}

type fakeCache struct {
	metrics     *domain.DashboardMetrics
	getErr      error
	invalidated int
}

func (f *fakeCache) GetMetrics(context.Context) (*domain.DashboardMetrics, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.metrics, f.metrics != nil, nil
}

func (f *fakeCache) SetMetrics(_ context.Context, m *domain.DashboardMetrics) error {
	f.metrics = m
	return nil
}

func (f *fakeCache) InvalidateMetrics(context.Context) error {
	f.invalidated++
	f.metrics = nil
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.ImportCompleted
	err    error
}

func (f *fakePublisher) PublishImportCompleted(_ context.Context, e events.ImportCompleted) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

var errStorage = errors.New("connection refused")
