package delivery

import (
	"net/http"

	"smartmart_service/internal/domain"
	"smartmart_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	imports usecase.ImportUseCase
	log     *logrus.Logger
}

func NewCategoryHandler(uc usecase.CategoryUseCase, imports usecase.ImportUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase: uc,
		imports: imports,
		log:     logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(router gin.IRouter) {
	categories := router.Group("/categories")
	{
		categories.POST("/", h.CreateCategory)
		categories.GET("/", h.ListCategories)
		categories.POST("/upload-csv", h.UploadCSV)
	}
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for create category: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	createdCategory, err := h.useCase.CreateCategory(c.Request.Context(), &domain.Category{Name: req.Name})
	if err != nil {
		HandleError(c, h.log, "Failed to create category", err)
		return
	}

	h.log.Infof("Category created successfully: ID %d, Name %s", createdCategory.ID, createdCategory.Name)
	SuccessResponse(c, http.StatusCreated, createdCategory)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	skip, limit := pagination(c, h.log)

	categories, err := h.useCase.ListCategories(c.Request.Context(), skip, limit)
	if err != nil {
		HandleError(c, h.log, "Failed to retrieve categories", err)
		return
	}

	SuccessResponse(c, http.StatusOK, categories)
}

func (h *CategoryHandler) UploadCSV(c *gin.Context) {
	filename, content, ok := readUpload(c)
	if !ok {
		return
	}

	summary, err := h.imports.ImportCategories(c.Request.Context(), filename, content)
	if err != nil {
		HandleError(c, h.log, "Error processing file", err)
		return
	}

	SuccessResponse(c, http.StatusOK, CategoryImportResponse{
		Message: summary.Message,
		Added:   summary.Added,
		Errors:  summary.Errors,
	})
}
