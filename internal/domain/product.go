package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/product_catalog/internal/pkg/pagination"
)

// Product represents a catalog product
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name" validate:"required,min=1,max=255"`
	Description *string         `json:"description,omitempty" db:"description" validate:"omitempty,max=5000"`
	Price       decimal.Decimal `json:"price" db:"price" validate:"gte=0"`
	Category    string          `json:"category" db:"category" validate:"required,min=1,max=100"`
	Subcategory *string         `json:"subcategory,omitempty" db:"subcategory" validate:"omitempty,max=100"`
	LikeCount   int             `json:"likeCount" db:"like_count"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
	DeletedAt   *time.Time      `json:"deletedAt,omitempty" db:"deleted_at"`
}

// ProductFilter narrows product queries. Soft-deleted rows are excluded
// unless IncludeDeleted is set.
type ProductFilter struct {
	Search         string
	Category       string
	Subcategory    string
	IncludeDeleted bool
}

// Fields accepted as a product sort key
const (
	ProductSortCreatedAt = "createdAt"
	ProductSortUpdatedAt = "updatedAt"
	ProductSortName      = "name"
	ProductSortPrice     = "price"
	ProductSortCategory  = "category"
	ProductSortLikeCount = "likeCount"
)

// IsProductSortField reports whether field may be used to order products
func IsProductSortField(field string) bool {
	switch field {
	case ProductSortCreatedAt, ProductSortUpdatedAt, ProductSortName,
		ProductSortPrice, ProductSortCategory, ProductSortLikeCount:
		return true
	}
	return false
}

// SoftDeleter marks an entity as deleted without removing it
type SoftDeleter interface {
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	pagination.Source[*Product, ProductFilter]
	SoftDeleter

	// Create creates a new product
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves a product by ID (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Update updates an existing product
	Update(ctx context.Context, product *Product) error
}
