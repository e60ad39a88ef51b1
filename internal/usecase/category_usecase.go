package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smartmart_service/internal/domain"

	"github.com/sirupsen/logrus"
)

type CategoryUseCase interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	ListCategories(ctx context.Context, skip, limit int) ([]domain.Category, error)
}

type categoryUseCase struct {
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger
}

func NewCategoryUseCase(repo domain.CategoryRepository, logger *logrus.Logger) CategoryUseCase {
	return &categoryUseCase{
		categoryRepo: repo,
		log:          logger,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if strings.TrimSpace(category.Name) == "" {
		uc.log.Warn("Use Case: Attempted to create category with empty name")
		return nil, domain.Invalidf("Category name cannot be empty")
	}

	existing, err := uc.categoryRepo.GetCategoryByName(ctx, category.Name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		uc.log.Errorf("Use Case: Failed to look up category '%s': %v", category.Name, err)
		return nil, err
	}
	if existing != nil {
		uc.log.Warnf("Use Case: Category '%s' already exists with ID %d", existing.Name, existing.ID)
		return nil, domain.Conflictf("Category already exists")
	}

	uc.log.Infof("Use Case: Attempting to create category with name '%s'", category.Name)
	createdCategory, err := uc.categoryRepo.CreateCategory(ctx, category)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create category '%s': %v", category.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Category '%s' created successfully with ID %d", createdCategory.Name, createdCategory.ID)
	return createdCategory, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, skip, limit int) ([]domain.Category, error) {
	uc.log.Infof("Use Case: Attempting to list categories (skip: %d, limit: %d)", skip, limit)

	categories, err := uc.categoryRepo.ListCategories(ctx, skip, limit)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list categories: %v", err)
		return nil, fmt.Errorf("could not retrieve categories: %w", err)
	}

	uc.log.Infof("Use Case: Retrieved %d categories", len(categories))
	return categories, nil
}
