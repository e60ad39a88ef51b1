package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smartmart_service/internal/domain"
	"smartmart_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type stubCategoryUseCase struct {
	created   []domain.Category
	createErr error
}

func (s *stubCategoryUseCase) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	c.ID = len(s.created) + 1
	s.created = append(s.created, *c)
	return c, nil
}

func (s *stubCategoryUseCase) ListCategories(context.Context, int, int) ([]domain.Category, error) {
	return s.created, nil
}

type stubProductUseCase struct {
	products   []domain.Product
	lastFilter domain.ProductFilter
	lastSkip   int
	lastLimit  int
	updateErr  error
}

func (s *stubProductUseCase) CreateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	p.ID = 7
	p.Category = &domain.Category{ID: p.CategoryID, Name: "Drinks"}
	return p, nil
}

func (s *stubProductUseCase) UpdateProduct(_ context.Context, id int, u domain.ProductUpdate) (*domain.Product, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	p := domain.Product{ID: id, Name: "Tea", Price: decimal.NewFromInt(1), CategoryID: 1}
	if u.Price != nil {
		p.Price = *u.Price
	}
	return &p, nil
}

func (s *stubProductUseCase) ListProducts(_ context.Context, f domain.ProductFilter, skip, limit int) ([]domain.Product, error) {
	s.lastFilter, s.lastSkip, s.lastLimit = f, skip, limit
	return s.products, nil
}

func (s *stubProductUseCase) CountProducts(_ context.Context, f domain.ProductFilter) (int, error) {
	s.lastFilter = f
	return len(s.products), nil
}

func (s *stubProductUseCase) ExportProducts(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	s.lastFilter = f
	return s.products, nil
}

type stubSaleUseCase struct{}

func (stubSaleUseCase) CreateSale(_ context.Context, s *domain.Sale) (*domain.Sale, error) {
	s.ID = 1
	return s, nil
}

func (stubSaleUseCase) ListSales(context.Context, int, int) ([]domain.Sale, error) {
	return []domain.Sale{}, nil
}

type stubImportUseCase struct {
	summary  *usecase.ImportSummary
	err      error
	filename string
	content  string
}

func (s *stubImportUseCase) record(filename string, content []byte) (*usecase.ImportSummary, error) {
	s.filename, s.content = filename, string(content)
	return s.summary, s.err
}

func (s *stubImportUseCase) ImportCategories(_ context.Context, f string, c []byte) (*usecase.ImportSummary, error) {
	return s.record(f, c)
}

func (s *stubImportUseCase) ImportProducts(_ context.Context, f string, c []byte) (*usecase.ImportSummary, error) {
	return s.record(f, c)
}

func (s *stubImportUseCase) ImportSales(_ context.Context, f string, c []byte) (*usecase.ImportSummary, error) {
	return s.record(f, c)
}

type stubDashboardUseCase struct {
	metrics *domain.DashboardMetrics
}

func (s stubDashboardUseCase) GetMetrics(context.Context) (*domain.DashboardMetrics, error) {
	return s.metrics, nil
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type testServer struct {
	router     *gin.Engine
	categories *stubCategoryUseCase
	products   *stubProductUseCase
	imports    *stubImportUseCase
}

func newTestServer(dashboard *domain.DashboardMetrics) *testServer {
	log := newTestLogger()
	s := &testServer{
		categories: &stubCategoryUseCase{},
		products:   &stubProductUseCase{},
		imports:    &stubImportUseCase{summary: &usecase.ImportSummary{Message: "done", Added: 2, Errors: []string{"Row 3: bad"}}},
	}
	s.router = NewRouter(log, 1<<20,
		NewStatusHandler(stubPinger{}, log),
		NewCategoryHandler(s.categories, s.imports, log),
		NewProductHandler(s.products, s.imports, log),
		NewSaleHandler(stubSaleUseCase{}, s.imports, log),
		NewDashboardHandler(stubDashboardUseCase{metrics: dashboard}, log),
	)
	return s
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateCategory(t *testing.T) {
	s := newTestServer(nil)

	rec := s.do(jsonRequest(http.MethodPost, "/categories/", `{"name":"Drinks"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Drinks", body["name"])
	assert.EqualValues(t, 1, body["id"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCreateCategory_Conflict(t *testing.T) {
	s := newTestServer(nil)
	s.categories.createErr = domain.Conflictf("Category already exists")

	rec := s.do(jsonRequest(http.MethodPost, "/categories/", `{"name":"Drinks"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Category already exists", decodeBody(t, rec)["detail"])
}

func TestCreateCategory_BadBody(t *testing.T) {
	s := newTestServer(nil)

	rec := s.do(jsonRequest(http.MethodPost, "/categories/", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadCSV_ResponseShapes(t *testing.T) {
	tests := []struct {
		path     string
		addedKey string
	}{
		{"/categories/upload-csv", "added"},
		{"/products/upload-csv", "products_added"},
		{"/sales/upload-csv", "total_added"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			s := newTestServer(nil)

			rec := s.do(uploadRequest(t, tt.path, "data.csv", "name\nDrinks\n"))
			require.Equal(t, http.StatusOK, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "done", body["message"])
			assert.EqualValues(t, 2, body[tt.addedKey])
			assert.Equal(t, []interface{}{"Row 3: bad"}, body["errors"])
			assert.Equal(t, "data.csv", s.imports.filename)
			assert.Equal(t, "name\nDrinks\n", s.imports.content)
		})
	}
}

func TestUploadCSV_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		s := newTestServer(nil)
		rec := s.do(httptest.NewRequest(http.MethodPost, "/products/upload-csv", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("client error passes through", func(t *testing.T) {
		s := newTestServer(nil)
		s.imports.err = domain.Invalidf("Missing required columns: price")
		rec := s.do(uploadRequest(t, "/products/upload-csv", "p.csv", "name\n"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing required columns: price", decodeBody(t, rec)["detail"])
	})

	t.Run("internal error is wrapped", func(t *testing.T) {
		s := newTestServer(nil)
		s.imports.err = errors.New("file is not valid UTF-8 text")
		rec := s.do(uploadRequest(t, "/sales/upload-csv", "s.csv", "x"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Error processing file: file is not valid UTF-8 text", decodeBody(t, rec)["detail"])
	})
}

func TestListProducts_Filters(t *testing.T) {
	s := newTestServer(nil)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/products/?search=foo&category_id=2&skip=10&limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ProductFilter{Search: "foo", CategoryID: 2}, s.products.lastFilter)
	assert.Equal(t, 10, s.products.lastSkip)
	assert.Equal(t, 5, s.products.lastLimit)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/products/?limit=abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, s.products.lastLimit)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/products/?category_id=drinks", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCountProducts(t *testing.T) {
	s := newTestServer(nil)
	s.products.products = []domain.Product{{ID: 1}, {ID: 2}}

	rec := s.do(httptest.NewRequest(http.MethodGet, "/products/count?search=a", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decodeBody(t, rec)["total"])
	assert.Equal(t, "a", s.products.lastFilter.Search)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(nil)
	s.products.products = []domain.Product{
		{ID: 1, Name: "Tea", Price: decimal.RequireFromString("2.5"), CategoryID: 1, Category: &domain.Category{ID: 1, Name: "Drinks"}},
		{ID: 2, Name: "Orphan, Inc", Price: decimal.NewFromInt(3), CategoryID: 9},
	}

	rec := s.do(httptest.NewRequest(http.MethodGet, "/products/export-csv?category_id=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "id,name,category,price\n1,Tea,Drinks,2.50\n2,\"Orphan, Inc\",,3.00\n", rec.Body.String())
	assert.Equal(t, 1, s.products.lastFilter.CategoryID)
}

func TestCreateProduct(t *testing.T) {
	s := newTestServer(nil)

	rec := s.do(jsonRequest(http.MethodPost, "/products/", `{"name":"Tea","price":2.5,"category_id":1}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 2.5, body["price"])
	assert.Equal(t, "Drinks", body["category"].(map[string]interface{})["name"])

	rec = s.do(jsonRequest(http.MethodPost, "/products/", `{"name":"Tea","category_id":1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProduct(t *testing.T) {
	s := newTestServer(nil)

	rec := s.do(jsonRequest(http.MethodPatch, "/products/3", `{"price":9.99}`))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 9.99, body["price"])
	assert.Equal(t, "Tea", body["name"])

	s.products.updateErr = domain.NotFoundf("Product with id 3 not found")
	rec = s.do(jsonRequest(http.MethodPatch, "/products/3", `{"price":1}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(jsonRequest(http.MethodPatch, "/products/abc", `{"price":1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSale(t *testing.T) {
	s := newTestServer(nil)

	rec := s.do(jsonRequest(http.MethodPost, "/sales/", `{"product_id":1,"month":"January","quantity":2,"total_price":"20.50"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 20.5, decodeBody(t, rec)["total_price"])

	rec = s.do(jsonRequest(http.MethodPost, "/sales/", `{"product_id":1,"month":"January","quantity":2}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(jsonRequest(http.MethodPost, "/sales/", `{"product_id":1,"month":"January","total_price":5}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body: quantity is required", decodeBody(t, rec)["detail"])

	rec = s.do(jsonRequest(http.MethodPost, "/sales/", `{"product_id":1,"month":"January","quantity":0,"total_price":0}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandleError_WrappedClientError(t *testing.T) {
	s := newTestServer(nil)
	s.products.updateErr = fmt.Errorf("update failed: %w", domain.Invalidf("price value out of range"))

	rec := s.do(jsonRequest(http.MethodPatch, "/products/3", `{"price":1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "update failed: price value out of range", decodeBody(t, rec)["detail"])
}

func TestDashboardMetrics(t *testing.T) {
	metrics := &domain.DashboardMetrics{
		SalesByMonth: []domain.MonthlySales{
			{Month: "January", TotalQuantity: 15, TotalRevenue: decimal.NewFromInt(150)},
		},
		CategoryBreakdown: []domain.MonthBreakdown{
			{Month: "January", Categories: map[string]decimal.Decimal{"Food": decimal.NewFromInt(50), "Drinks": decimal.NewFromInt(100)}},
		},
	}
	s := newTestServer(metrics)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/dashboard/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"sales_by_month": [{"month": "January", "total_quantity": 15, "total_revenue": 150}],
		"category_breakdown": [{"month": "January", "Drinks": 100, "Food": 50}]
	}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	log := newTestLogger()
	router := NewRouter(log, 1<<20, NewStatusHandler(stubPinger{err: errors.New("down")}, log))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogger_KeepsClientRequestID(t *testing.T) {
	s := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/categories/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := s.do(req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
