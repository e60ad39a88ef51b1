package usecase

import (
	"context"
	"fmt"
	"smartmart_service/internal/domain"
	"strings"

	"github.com/sirupsen/logrus"
)

type ProductUseCase interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int, update domain.ProductUpdate) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter, skip, limit int) ([]domain.Product, error)
	CountProducts(ctx context.Context, filter domain.ProductFilter) (int, error)
	ExportProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

type productUseCase struct {
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewProductUseCase(pRepo domain.ProductRepository, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo: pRepo,
		log:         logger,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(product.Name) == "" {
		uc.log.Warn("Use Case: Attempted to create product with empty name")
		return nil, domain.Invalidf("Product name cannot be empty")
	}

	uc.log.Infof("Use Case: Attempting to create product '%s'", product.Name)
	createdProduct, err := uc.productRepo.CreateProduct(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created successfully with ID %d", createdProduct.Name, createdProduct.ID)
	return createdProduct, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id int, update domain.ProductUpdate) (*domain.Product, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted update with invalid product ID: %d", id)
		return nil, domain.Invalidf("Invalid product ID")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		uc.log.Warnf("Use Case: Empty 'name' provided for update ID %d", id)
		return nil, domain.Invalidf("Product name cannot be empty if provided for update")
	}

	uc.log.Infof("Use Case: Attempting partial update for product ID %d", id)
	updatedProduct, err := uc.productRepo.UpdateProduct(ctx, id, update)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed partial update for product ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product updated successfully for ID %d", updatedProduct.ID)
	return updatedProduct, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter, skip, limit int) ([]domain.Product, error) {
	uc.log.Infof("Use Case: Attempting to list products (search: %q, category: %d, skip: %d, limit: %d)", filter.Search, filter.CategoryID, skip, limit)
	products, err := uc.productRepo.ListProducts(ctx, filter, skip, limit)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, fmt.Errorf("could not retrieve products: %w", err)
	}
	uc.log.Infof("Use Case: Retrieved %d products", len(products))
	return products, nil
}

func (uc *productUseCase) CountProducts(ctx context.Context, filter domain.ProductFilter) (int, error) {
	total, err := uc.productRepo.CountProducts(ctx, filter)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to count products: %v", err)
		return 0, fmt.Errorf("could not count products: %w", err)
	}
	return total, nil
}

func (uc *productUseCase) ExportProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	uc.log.Infof("Use Case: Exporting products (search: %q, category: %d)", filter.Search, filter.CategoryID)
	products, err := uc.productRepo.ListAllProducts(ctx, filter)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products for export: %v", err)
		return nil, fmt.Errorf("could not export products: %w", err)
	}
	return products, nil
}
