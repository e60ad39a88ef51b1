package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartmart_service/internal/csvimport"
	"smartmart_service/internal/domain"
	"smartmart_service/internal/events"

	"github.com/sirupsen/logrus"
)

// MaxReportedSaleErrors caps the row errors returned by a sales import.
const MaxReportedSaleErrors = 5

type ImportSummary struct {
	Message string
	Added   int
	Failed  int
	Errors  []string
}

type ImportUseCase interface {
	ImportCategories(ctx context.Context, filename string, content []byte) (*ImportSummary, error)
	ImportProducts(ctx context.Context, filename string, content []byte) (*ImportSummary, error)
	ImportSales(ctx context.Context, filename string, content []byte) (*ImportSummary, error)
}

type importUseCase struct {
	categoryRepo domain.CategoryRepository
	productRepo  domain.ProductRepository
	saleRepo     domain.SaleRepository
	publisher    events.Publisher
	cache        MetricsCache
	log          *logrus.Logger
}

// NewImportUseCase builds the CSV import use case. publisher and cache may be nil.
func NewImportUseCase(
	cRepo domain.CategoryRepository,
	pRepo domain.ProductRepository,
	sRepo domain.SaleRepository,
	publisher events.Publisher,
	cache MetricsCache,
	logger *logrus.Logger,
) ImportUseCase {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &importUseCase{
		categoryRepo: cRepo,
		productRepo:  pRepo,
		saleRepo:     sRepo,
		publisher:    publisher,
		cache:        cache,
		log:          logger,
	}
}

// load runs the file-level steps shared by every import: extension check,
// decoding, delimiter detection and header normalisation.
func (uc *importUseCase) load(filename string, content []byte, stripBOM bool) (*csvimport.Table, error) {
	if err := csvimport.CheckExtension(filename); err != nil {
		return nil, err
	}
	text, err := csvimport.Decode(content, stripBOM)
	if err != nil {
		return nil, err
	}
	return csvimport.Parse(text)
}

func (uc *importUseCase) ImportCategories(ctx context.Context, filename string, content []byte) (*ImportSummary, error) {
	table, err := uc.load(filename, content, false)
	if err != nil {
		uc.log.Warnf("Use Case: Category import of '%s' rejected: %v", filename, err)
		return nil, err
	}
	if err := table.Require(csvimport.CategoryColumns...); err != nil {
		uc.log.Warnf("Use Case: Category import of '%s' rejected: %v", filename, err)
		return nil, err
	}

	summary := &ImportSummary{}
	for i, row := range table.Rows {
		category, err := table.Category(row)
		if err != nil {
			summary.fail(i, err)
			continue
		}

		existing, err := uc.categoryRepo.GetCategoryByName(ctx, category.Name)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			summary.fail(i, err)
			continue
		}
		if existing != nil {
			continue
		}

		if _, err := uc.categoryRepo.CreateCategory(ctx, &category); err != nil {
			summary.fail(i, err)
			continue
		}
		summary.Added++
	}

	summary.Message = fmt.Sprintf("%d categories imported successfully", summary.Added)
	uc.finish(ctx, "categories", filename, summary)
	return summary, nil
}

func (uc *importUseCase) ImportProducts(ctx context.Context, filename string, content []byte) (*ImportSummary, error) {
	table, err := uc.load(filename, content, false)
	if err != nil {
		uc.log.Warnf("Use Case: Product import of '%s' rejected: %v", filename, err)
		return nil, err
	}
	if err := table.Require(csvimport.ProductColumns...); err != nil {
		uc.log.Warnf("Use Case: Product import of '%s' rejected: %v", filename, err)
		return nil, err
	}

	summary := &ImportSummary{}
	for i, row := range table.Rows {
		product, err := table.Product(row)
		if err != nil {
			summary.fail(i, err)
			continue
		}
		if _, err := uc.productRepo.CreateProduct(ctx, &product); err != nil {
			summary.fail(i, err)
			continue
		}
		summary.Added++
	}

	summary.Message = fmt.Sprintf("%d products imported successfully", summary.Added)
	uc.finish(ctx, "products", filename, summary)
	return summary, nil
}

func (uc *importUseCase) ImportSales(ctx context.Context, filename string, content []byte) (*ImportSummary, error) {
	table, err := uc.load(filename, content, true)
	if err != nil {
		uc.log.Warnf("Use Case: Sales import of '%s' rejected: %v", filename, err)
		return nil, err
	}
	if err := table.RequireSaleColumns(); err != nil {
		uc.log.Warnf("Use Case: Sales import of '%s' rejected: %v", filename, err)
		return nil, err
	}

	reader := table.SaleReader()
	summary := &ImportSummary{}
	for i, row := range table.Rows {
		sale, err := reader.Sale(row)
		if err != nil {
			summary.fail(i, err)
			continue
		}
		if _, err := uc.saleRepo.CreateSale(ctx, &sale); err != nil {
			summary.fail(i, err)
			continue
		}
		summary.Added++
	}

	if summary.Added > 0 {
		invalidateMetrics(ctx, uc.cache, uc.log)
	}

	summary.Message = fmt.Sprintf("Sales import finished: %d added, %d failed", summary.Added, summary.Failed)
	uc.finish(ctx, "sales", filename, summary)
	if len(summary.Errors) > MaxReportedSaleErrors {
		summary.Errors = summary.Errors[:MaxReportedSaleErrors]
	}
	return summary, nil
}

// fail records a row error. Rows are numbered from 1, excluding the header.
func (s *ImportSummary) fail(index int, err error) {
	s.Failed++
	s.Errors = append(s.Errors, fmt.Sprintf("Row %d: %v", index+1, err))
}

func (uc *importUseCase) finish(ctx context.Context, entity, filename string, summary *ImportSummary) {
	if summary.Errors == nil {
		summary.Errors = []string{}
	}
	uc.log.WithFields(logrus.Fields{
		"entity":   entity,
		"filename": filename,
		"added":    summary.Added,
		"failed":   summary.Failed,
	}).Info("Use Case: CSV import finished")

	event := events.ImportCompleted{
		Entity:     entity,
		Filename:   filename,
		Added:      summary.Added,
		Failed:     summary.Failed,
		FinishedAt: time.Now().UTC(),
	}
	if err := uc.publisher.PublishImportCompleted(ctx, event); err != nil {
		uc.log.Warnf("Use Case: Failed to publish import event for '%s': %v", filename, err)
	}
}
