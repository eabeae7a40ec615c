package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/product_catalog/internal/domain"
)

// LikeRepository implements domain.LikeRepository for PostgreSQL
type LikeRepository struct {
	db *sqlx.DB
}

// NewLikeRepository creates a new PostgreSQL like repository
func NewLikeRepository(db *sqlx.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Create inserts a like relation. The (product_id, user_id) unique
// constraint decides concurrent races.
func (r *LikeRepository) Create(ctx context.Context, like *domain.ProductLike) error {
	query := `
		INSERT INTO product_likes (product_id, user_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	like.CreatedAt = time.Now()

	err := r.db.QueryRowxContext(ctx, query, like.ProductID, like.UserID, like.CreatedAt).
		Scan(&like.ID, &like.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrAlreadyExists
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		}
		return err
	}

	return nil
}

// FindByProductAndUser returns the relation between a product and a user
func (r *LikeRepository) FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*domain.ProductLike, error) {
	query := `
		SELECT id, product_id, user_id, created_at
		FROM product_likes
		WHERE product_id = $1 AND user_id = $2
	`

	var like domain.ProductLike
	err := r.db.GetContext(ctx, &like, query, productID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &like, nil
}

// Delete removes a relation
func (r *LikeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_likes WHERE id = $1`, id)
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

// CountByProduct counts the relations of a product
func (r *LikeRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM product_likes WHERE product_id = $1`, productID)
	if err != nil {
		return 0, err
	}

	return count, nil
}
