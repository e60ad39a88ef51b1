package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartmart_service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const saleSelect = `
        SELECT s.id, s.product_id, s.month, s.quantity, s.total_price,
               p.id, p.name, p.price, p.category_id, c.id, c.name
        FROM sales s
        LEFT JOIN products p ON p.id = s.product_id
        LEFT JOIN categories c ON c.id = p.category_id`

type postgresSaleRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresSaleRepository(db *sql.DB, logger *logrus.Logger) domain.SaleRepository {
	return &postgresSaleRepository{
		db:  db,
		log: logger,
	}
}

func scanSale(row rowScanner) (*domain.Sale, error) {
	sale := &domain.Sale{}
	var (
		productID    sql.NullInt64
		productName  sql.NullString
		productPrice decimal.NullDecimal
		productCat   sql.NullInt64
		categoryID   sql.NullInt64
		categoryName sql.NullString
	)
	err := row.Scan(
		&sale.ID,
		&sale.ProductID,
		&sale.Month,
		&sale.Quantity,
		&sale.TotalPrice,
		&productID,
		&productName,
		&productPrice,
		&productCat,
		&categoryID,
		&categoryName,
	)
	if err != nil {
		return nil, err
	}
	if productID.Valid {
		sale.Product = &domain.Product{
			ID:         int(productID.Int64),
			Name:       productName.String,
			Price:      productPrice.Decimal,
			CategoryID: int(productCat.Int64),
		}
		if categoryID.Valid {
			sale.Product.Category = &domain.Category{ID: int(categoryID.Int64), Name: categoryName.String}
		}
	}
	return sale, nil
}

func (r *postgresSaleRepository) CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	query := `
        INSERT INTO sales (product_id, month, quantity, total_price)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	err := r.db.QueryRowContext(ctx, query, sale.ProductID, sale.Month, sale.Quantity, sale.TotalPrice).Scan(&sale.ID)
	if err != nil {
		if refErr := referenceError(err, "sale"); refErr != nil {
			r.log.Warnf("Rejected sale for product ID %d: %v", sale.ProductID, err)
			return nil, refErr
		}
		r.log.Errorf("Failed to create sale for product ID %d: %v", sale.ProductID, err)
		return nil, fmt.Errorf("could not create sale: %w", err)
	}
	r.log.Infof("Sale created successfully with ID: %d (product %d, month %s)", sale.ID, sale.ProductID, sale.Month)
	return r.GetSaleByID(ctx, sale.ID)
}

func (r *postgresSaleRepository) GetSaleByID(ctx context.Context, id int) (*domain.Sale, error) {
	query := saleSelect + `
        WHERE s.id = $1`

	sale, err := scanSale(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Sale with ID %d not found", id)
			return nil, domain.NotFoundf("Sale with id %d not found", id)
		}
		r.log.Errorf("Failed to get sale by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get sale by id: %w", err)
	}
	return sale, nil
}

func (r *postgresSaleRepository) ListSales(ctx context.Context, skip, limit int) ([]domain.Sale, error) {
	skip, limit = normalizePage(skip, limit)

	query := saleSelect + `
        ORDER BY s.id ASC
        OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, skip, limit)
	if err != nil {
		r.log.Errorf("Failed to list sales (skip %d, limit %d): %v", skip, limit, err)
		return nil, fmt.Errorf("could not list sales: %w", err)
	}
	defer rows.Close()

	sales := []domain.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			r.log.Errorf("Failed to scan sale row: %v", err)
			return nil, fmt.Errorf("error scanning sale data: %w", err)
		}
		sales = append(sales, *sale)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during sales list iteration: %v", err)
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	r.log.Infof("Retrieved %d sales (skip: %d, limit: %d)", len(sales), skip, limit)
	return sales, nil
}
