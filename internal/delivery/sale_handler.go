package delivery

import (
	"net/http"

	"smartmart_service/internal/domain"
	"smartmart_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type SaleHandler struct {
	useCase usecase.SaleUseCase
	imports usecase.ImportUseCase
	log     *logrus.Logger
}

func NewSaleHandler(uc usecase.SaleUseCase, imports usecase.ImportUseCase, logger *logrus.Logger) *SaleHandler {
	return &SaleHandler{
		useCase: uc,
		imports: imports,
		log:     logger,
	}
}

func (h *SaleHandler) RegisterRoutes(router gin.IRouter) {
	sales := router.Group("/sales")
	{
		sales.POST("/", h.CreateSale)
		sales.GET("/", h.ListSales)
		sales.POST("/upload-csv", h.UploadCSV)
	}
}

type CreateSaleRequest struct {
	ProductID  int              `json:"product_id" binding:"required"`
	Month      string           `json:"month" binding:"required"`
	Quantity   *int             `json:"quantity"`
	TotalPrice *decimal.Decimal `json:"total_price"`
}

func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for create sale: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Quantity == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: quantity is required")
		return
	}
	if req.TotalPrice == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: total_price is required")
		return
	}

	sale := &domain.Sale{
		ProductID:  req.ProductID,
		Month:      req.Month,
		Quantity:   *req.Quantity,
		TotalPrice: *req.TotalPrice,
	}
	created, err := h.useCase.CreateSale(c.Request.Context(), sale)
	if err != nil {
		HandleError(c, h.log, "Failed to create sale", err)
		return
	}

	h.log.Infof("Sale created successfully: ID %d", created.ID)
	SuccessResponse(c, http.StatusCreated, created)
}

func (h *SaleHandler) ListSales(c *gin.Context) {
	skip, limit := pagination(c, h.log)

	sales, err := h.useCase.ListSales(c.Request.Context(), skip, limit)
	if err != nil {
		HandleError(c, h.log, "Failed to retrieve sales", err)
		return
	}

	SuccessResponse(c, http.StatusOK, sales)
}

func (h *SaleHandler) UploadCSV(c *gin.Context) {
	filename, content, ok := readUpload(c)
	if !ok {
		return
	}

	summary, err := h.imports.ImportSales(c.Request.Context(), filename, content)
	if err != nil {
		HandleError(c, h.log, "Error processing file", err)
		return
	}

	SuccessResponse(c, http.StatusOK, SaleImportResponse{
		Message:    summary.Message,
		TotalAdded: summary.Added,
		Errors:     summary.Errors,
	})
}
