package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID         int             `json:"id"`
	ProductID  int             `json:"product_id"`
	Month      string          `json:"month"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Product    *Product        `json:"product,omitempty"`
}

type SaleRepository interface {
	CreateSale(ctx context.Context, sale *Sale) (*Sale, error)
	GetSaleByID(ctx context.Context, id int) (*Sale, error)
	ListSales(ctx context.Context, skip, limit int) ([]Sale, error)
}
