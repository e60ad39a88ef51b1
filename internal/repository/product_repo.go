package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"smartmart_service/internal/domain"
	"strings"

	"github.com/sirupsen/logrus"
)

const productSelect = `
        SELECT p.id, p.name, p.price, p.category_id, c.id, c.name
        FROM products p
        LEFT JOIN categories c ON c.id = p.category_id`

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var categoryID sql.NullInt64
	var categoryName sql.NullString
	if err := row.Scan(&product.ID, &product.Name, &product.Price, &product.CategoryID, &categoryID, &categoryName); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		product.Category = &domain.Category{ID: int(categoryID.Int64), Name: categoryName.String}
	}
	return product, nil
}

// productWhere renders the filter as a WHERE clause whose placeholders start after
// the arguments already in args.
func productWhere(filter domain.ProductFilter, args []interface{}) (string, []interface{}) {
	var clauses []string
	if filter.Search != "" {
		args = append(args, filter.Search)
		clauses = append(clauses, fmt.Sprintf("p.name ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if filter.CategoryID != 0 {
		args = append(args, filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
        INSERT INTO products (name, price, category_id)
        VALUES ($1, $2, $3)
        RETURNING id`

	err := r.db.QueryRowContext(ctx, query, product.Name, product.Price, product.CategoryID).Scan(&product.ID)
	if err != nil {
		if refErr := referenceError(err, "product"); refErr != nil {
			r.log.Warnf("Rejected product '%s' (category ID %d): %v", product.Name, product.CategoryID, err)
			return nil, refErr
		}
		r.log.Errorf("Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	r.log.Infof("Product created successfully with ID: %d, Name: %s", product.ID, product.Name)
	return r.GetProductByID(ctx, product.ID)
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id int) (*domain.Product, error) {
	query := productSelect + `
        WHERE p.id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %d not found", id)
			return nil, domain.NotFoundf("Product with id %d not found", id)
		}
		r.log.Errorf("Failed to get product by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}

	r.log.Debugf("Product retrieved successfully with ID: %d", id)
	return product, nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, id int, update domain.ProductUpdate) (*domain.Product, error) {
	if update.IsEmpty() {
		r.log.Infof("Repository: No fields provided for product update ID %d. Returning current product.", id)
		return r.GetProductByID(ctx, id)
	}

	args := []interface{}{}
	setClauses := []string{}

	if update.Name != nil {
		args = append(args, *update.Name)
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", len(args)))
	}
	if update.Price != nil {
		args = append(args, *update.Price)
		setClauses = append(setClauses, fmt.Sprintf("price = $%d", len(args)))
	}
	if update.CategoryID != nil {
		args = append(args, *update.CategoryID)
		setClauses = append(setClauses, fmt.Sprintf("category_id = $%d", len(args)))
	}

	args = append(args, id)
	query := "UPDATE products SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", len(args))

	r.log.Debugf("Repository: Executing partial update query for ID %d: %s with args: %v", id, query, args)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if refErr := referenceError(err, "product"); refErr != nil {
			r.log.Warnf("Repository: Rejected update for product ID %d: %v", id, err)
			return nil, refErr
		}
		r.log.Errorf("Repository: Failed to execute partial update for product ID %d: %v", id, err)
		return nil, fmt.Errorf("could not partially update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after partial update for ID %d: %v", id, err)
		return nil, fmt.Errorf("could not confirm product update: %w", err)
	}

	if rowsAffected == 0 {
		r.log.Warnf("Repository: Product with ID %d not found for update (0 rows affected)", id)
		return nil, domain.NotFoundf("Product with id %d not found", id)
	}

	r.log.Infof("Repository: Partial update successful for product ID %d. Fetching updated product.", id)
	return r.GetProductByID(ctx, id)
}

func (r *postgresProductRepository) ListProducts(ctx context.Context, filter domain.ProductFilter, skip, limit int) ([]domain.Product, error) {
	skip, limit = normalizePage(skip, limit)

	where, args := productWhere(filter, nil)
	args = append(args, skip, limit)
	query := productSelect + where + fmt.Sprintf(`
        ORDER BY p.id ASC
        OFFSET $%d LIMIT $%d`, len(args)-1, len(args))

	products, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Failed to list products (filter: %+v, skip %d, limit %d): %v", filter, skip, limit, err)
		return nil, err
	}
	r.log.Infof("Retrieved %d products (skip: %d, limit: %d)", len(products), skip, limit)
	return products, nil
}

func (r *postgresProductRepository) ListAllProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	where, args := productWhere(filter, nil)
	query := productSelect + where + `
        ORDER BY p.id ASC`

	products, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Failed to list all products (filter: %+v): %v", filter, err)
		return nil, err
	}
	r.log.Infof("Retrieved %d products for export", len(products))
	return products, nil
}

func (r *postgresProductRepository) CountProducts(ctx context.Context, filter domain.ProductFilter) (int, error) {
	where, args := productWhere(filter, nil)
	query := `SELECT COUNT(*) FROM products p` + where

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		r.log.Errorf("Failed to count products (filter: %+v): %v", filter, err)
		return 0, fmt.Errorf("could not count products: %w", err)
	}
	return total, nil
}

func (r *postgresProductRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product data: %w", err)
		}
		products = append(products, *product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}
