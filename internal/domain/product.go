// domain/product.go
package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and revenue go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID int             `json:"category_id"`
	Category   *Category       `json:"category,omitempty"`
}

// ProductUpdate carries a partial update. Nil fields are left untouched.
type ProductUpdate struct {
	Name       *string          `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	CategoryID *int             `json:"category_id"`
}

func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Price == nil && u.CategoryID == nil
}

// ProductFilter narrows product listings. Zero values disable a filter.
type ProductFilter struct {
	Search     string
	CategoryID int
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id int) (*Product, error)
	UpdateProduct(ctx context.Context, id int, update ProductUpdate) (*Product, error)
	ListProducts(ctx context.Context, filter ProductFilter, skip, limit int) ([]Product, error)
	ListAllProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	CountProducts(ctx context.Context, filter ProductFilter) (int, error)
}
