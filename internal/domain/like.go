package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProductLike records that a user likes a product. At most one exists per
// (ProductID, UserID); the store enforces it with a unique index.
type ProductLike struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// LikeRepository defines the interface for like relation data access
type LikeRepository interface {
	// Create inserts a relation. Returns ErrAlreadyExists on a uniqueness violation.
	Create(ctx context.Context, like *ProductLike) error

	// FindByProductAndUser returns the relation or ErrNotFound
	FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*ProductLike, error)

	// Delete removes the relation. Returns ErrNotFound when nothing was removed.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByProduct counts relations for a product
	CountByProduct(ctx context.Context, productID uuid.UUID) (int, error)
}
