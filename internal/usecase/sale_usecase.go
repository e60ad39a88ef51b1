package usecase

import (
	"context"
	"fmt"
	"strings"

	"smartmart_service/internal/domain"

	"github.com/sirupsen/logrus"
)

type SaleUseCase interface {
	CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
	ListSales(ctx context.Context, skip, limit int) ([]domain.Sale, error)
}

type saleUseCase struct {
	saleRepo domain.SaleRepository
	cache    MetricsCache
	log      *logrus.Logger
}

// NewSaleUseCase builds the sale use case. cache may be nil.
func NewSaleUseCase(repo domain.SaleRepository, cache MetricsCache, logger *logrus.Logger) SaleUseCase {
	return &saleUseCase{
		saleRepo: repo,
		cache:    cache,
		log:      logger,
	}
}

func (uc *saleUseCase) CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	if sale.ProductID <= 0 {
		uc.log.Warnf("Use Case: Attempted to create sale with invalid product ID: %d", sale.ProductID)
		return nil, domain.Invalidf("Invalid product ID")
	}
	if strings.TrimSpace(sale.Month) == "" {
		uc.log.Warn("Use Case: Attempted to create sale with empty month")
		return nil, domain.Invalidf("Sale month cannot be empty")
	}

	uc.log.Infof("Use Case: Attempting to create sale for product %d (%s)", sale.ProductID, sale.Month)
	created, err := uc.saleRepo.CreateSale(ctx, sale)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create sale for product %d: %v", sale.ProductID, err)
		return nil, err
	}
	invalidateMetrics(ctx, uc.cache, uc.log)

	uc.log.Infof("Use Case: Sale created successfully with ID %d", created.ID)
	return created, nil
}

func (uc *saleUseCase) ListSales(ctx context.Context, skip, limit int) ([]domain.Sale, error) {
	uc.log.Infof("Use Case: Attempting to list sales (skip: %d, limit: %d)", skip, limit)
	sales, err := uc.saleRepo.ListSales(ctx, skip, limit)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list sales: %v", err)
		return nil, fmt.Errorf("could not retrieve sales: %w", err)
	}
	uc.log.Infof("Use Case: Retrieved %d sales", len(sales))
	return sales, nil
}
