package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/pagination"
)

// like_count is projected from the relation table on every read
const productColumns = `
	p.id, p.name, p.description, p.price, p.category, p.subcategory,
	p.created_at, p.updated_at, p.deleted_at,
	(SELECT COUNT(*) FROM product_likes pl WHERE pl.product_id = p.id) AS like_count`

var productSortColumns = map[string]string{
	domain.ProductSortCreatedAt: "p.created_at",
	domain.ProductSortUpdatedAt: "p.updated_at",
	domain.ProductSortName:      "p.name",
	domain.ProductSortPrice:     "p.price",
	domain.ProductSortCategory:  "p.category",
	domain.ProductSortLikeCount: "like_count",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ProductRepository implements domain.ProductRepository for PostgreSQL
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// productWhere builds the WHERE clause shared by Find and Count so both
// halves of a page see the same predicate.
func productWhere(filter domain.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if !filter.IncludeDeleted {
		conds = append(conds, "p.deleted_at IS NULL")
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+likeEscaper.Replace(s)+"%")
		conds = append(conds, fmt.Sprintf("p.name ILIKE $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("p.category = $%d", len(args)))
	}
	if filter.Subcategory != "" {
		args = append(args, filter.Subcategory)
		conds = append(conds, fmt.Sprintf("p.subcategory = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func productOrderBy(sort pagination.Sort) (string, error) {
	column, ok := productSortColumns[sort.Field]
	if !ok {
		return "", fmt.Errorf("%w: unsupported sort field %q", domain.ErrInvalidInput, sort.Field)
	}

	dir := "DESC"
	if sort.Direction == pagination.Asc {
		dir = "ASC"
	}

	// id breaks ties so page boundaries are stable
	return fmt.Sprintf(" ORDER BY %s %s, p.id %s", column, dir, dir), nil
}

// Find returns one window of products matching filter
func (r *ProductRepository) Find(ctx context.Context, filter domain.ProductFilter, sort pagination.Sort, offset, limit int) ([]*domain.Product, error) {
	orderBy, err := productOrderBy(sort)
	if err != nil {
		return nil, err
	}

	where, args := productWhere(filter)
	args = append(args, limit, offset)

	query := "SELECT" + productColumns + " FROM products p" + where + orderBy +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var products []*domain.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, err
	}

	return products, nil
}

// Count returns the number of products matching filter
func (r *ProductRepository) Count(ctx context.Context, filter domain.ProductFilter) (int, error) {
	where, args := productWhere(filter)
	query := "SELECT COUNT(*) FROM products p" + where

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}

	return count, nil
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, category, subcategory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.LikeCount = 0

	return r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Category,
		product.Subcategory,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := "SELECT" + productColumns + " FROM products p WHERE p.id = $1 AND p.deleted_at IS NULL"

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &product, nil
}

// Update updates an existing product
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, category = $4, subcategory = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
		RETURNING created_at, updated_at
	`

	product.UpdatedAt = time.Now()

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Category,
		product.Subcategory,
		product.UpdatedAt,
		product.ID,
	).Scan(&product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	return nil
}

// SoftDelete marks a product as deleted. Like relations are kept.
func (r *ProductRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE products
		SET deleted_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
