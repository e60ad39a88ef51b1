package delivery

import (
	"encoding/csv"
	"net/http"
	"smartmart_service/internal/domain"
	"smartmart_service/internal/usecase"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	imports usecase.ImportUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, imports usecase.ImportUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		imports: imports,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.POST("/", h.CreateProduct)
		products.GET("/", h.ListProducts)
		products.GET("/count", h.CountProducts)
		products.GET("/export-csv", h.ExportCSV)
		products.POST("/upload-csv", h.UploadCSV)
		products.PATCH("/:id", h.UpdateProduct)
	}
}

type CreateProductRequest struct {
	Name       string           `json:"name" binding:"required"`
	Price      *decimal.Decimal `json:"price"`
	CategoryID int              `json:"category_id" binding:"required"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Price == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: price is required")
		return
	}

	product := &domain.Product{Name: req.Name, Price: *req.Price, CategoryID: req.CategoryID}
	createdProduct, err := h.useCase.CreateProduct(c.Request.Context(), product)
	if err != nil {
		HandleError(c, h.log, "Failed to create product", err)
		return
	}

	h.log.Infof("Product created successfully: ID %d, Name %s", createdProduct.ID, createdProduct.Name)
	SuccessResponse(c, http.StatusCreated, createdProduct)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		h.log.Warnf("Invalid product ID parameter for update: %s", idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var update domain.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.log.Errorf("Failed to bind JSON for update product ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updatedProduct, err := h.useCase.UpdateProduct(c.Request.Context(), id, update)
	if err != nil {
		HandleError(c, h.log, "Failed to update product", err)
		return
	}

	h.log.Infof("Product updated successfully: ID %d", updatedProduct.ID)
	SuccessResponse(c, http.StatusOK, updatedProduct)
}

// productFilter reads search and category_id. It writes a 400 and returns
// ok=false when category_id is not a number.
func (h *ProductHandler) productFilter(c *gin.Context) (domain.ProductFilter, bool) {
	filter := domain.ProductFilter{Search: c.Query("search")}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.Atoi(raw)
		if err != nil {
			h.log.Warnf("Invalid category_id filter parameter: %s", raw)
			ErrorResponse(c, http.StatusBadRequest, "Invalid category_id format")
			return filter, false
		}
		filter.CategoryID = categoryID
	}
	return filter, true
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter, ok := h.productFilter(c)
	if !ok {
		return
	}
	skip, limit := pagination(c, h.log)

	products, err := h.useCase.ListProducts(c.Request.Context(), filter, skip, limit)
	if err != nil {
		HandleError(c, h.log, "Failed to retrieve products", err)
		return
	}

	SuccessResponse(c, http.StatusOK, products)
}

type CountResponse struct {
	Total int `json:"total"`
}

func (h *ProductHandler) CountProducts(c *gin.Context) {
	filter, ok := h.productFilter(c)
	if !ok {
		return
	}

	total, err := h.useCase.CountProducts(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, h.log, "Failed to count products", err)
		return
	}

	SuccessResponse(c, http.StatusOK, CountResponse{Total: total})
}

func (h *ProductHandler) ExportCSV(c *gin.Context) {
	filter, ok := h.productFilter(c)
	if !ok {
		return
	}

	products, err := h.useCase.ExportProducts(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, h.log, "Failed to export products", err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="products.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := w.Write([]string{"id", "name", "category", "price"}); err != nil {
		h.log.Errorf("Failed to write export header: %v", err)
		return
	}
	for _, p := range products {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		record := []string{strconv.Itoa(p.ID), p.Name, category, p.Price.StringFixed(2)}
		if err := w.Write(record); err != nil {
			h.log.Errorf("Failed to write export row for product %d: %v", p.ID, err)
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.log.Errorf("Failed to flush product export: %v", err)
		return
	}
	h.log.Infof("Exported %d products", len(products))
}

func (h *ProductHandler) UploadCSV(c *gin.Context) {
	filename, content, ok := readUpload(c)
	if !ok {
		return
	}

	summary, err := h.imports.ImportProducts(c.Request.Context(), filename, content)
	if err != nil {
		HandleError(c, h.log, "Error processing file", err)
		return
	}

	SuccessResponse(c, http.StatusOK, ProductImportResponse{
		Message:       summary.Message,
		ProductsAdded: summary.Added,
		Errors:        summary.Errors,
	})
}
