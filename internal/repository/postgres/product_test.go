package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/pagination"
)

var productRowColumns = []string{
	"id", "name", "description", "price", "category", "subcategory",
	"created_at", "updated_at", "deleted_at", "like_count",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestProductWhere(t *testing.T) {
	tests := []struct {
		name      string
		filter    domain.ProductFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "default excludes deleted",
			filter:    domain.ProductFilter{},
			wantWhere: " WHERE p.deleted_at IS NULL",
		},
		{
			name:      "include deleted drops predicate",
			filter:    domain.ProductFilter{IncludeDeleted: true},
			wantWhere: "",
		},
		{
			name:      "search escapes wildcards",
			filter:    domain.ProductFilter{Search: "50%_off"},
			wantWhere: " WHERE p.deleted_at IS NULL AND p.name ILIKE $1",
			wantArgs:  []any{`%50\%\_off%`},
		},
		{
			name:      "category and subcategory",
			filter:    domain.ProductFilter{Category: "Electronics", Subcategory: "Audio"},
			wantWhere: " WHERE p.deleted_at IS NULL AND p.category = $1 AND p.subcategory = $2",
			wantArgs:  []any{"Electronics", "Audio"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := productWhere(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestProductOrderBy(t *testing.T) {
	orderBy, err := productOrderBy(pagination.Sort{Field: domain.ProductSortLikeCount, Direction: pagination.Asc})
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY like_count ASC, p.id ASC", orderBy)

	orderBy, err = productOrderBy(pagination.Sort{Field: domain.ProductSortCreatedAt, Direction: pagination.Desc})
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY p.created_at DESC, p.id DESC", orderBy)

	_, err = productOrderBy(pagination.Sort{Field: "password", Direction: pagination.Asc})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductRepository_Find(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM products p WHERE p.deleted_at IS NULL AND p.category = $1 ORDER BY p.price ASC, p.id ASC LIMIT $2 OFFSET $3")).
		WithArgs("Books", 10, 20).
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(id.String(), "Go in Action", nil, "39.90", "Books", nil, now, now, nil, int64(4)))

	products, err := repo.Find(
		context.Background(),
		domain.ProductFilter{Category: "Books"},
		pagination.Sort{Field: domain.ProductSortPrice, Direction: pagination.Asc},
		20, 10,
	)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, id, products[0].ID)
	assert.True(t, decimal.RequireFromString("39.90").Equal(products[0].Price))
	assert.Equal(t, 4, products[0].LikeCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Find_InvalidSort(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	_, err := repo.Find(context.Background(), domain.ProductFilter{}, pagination.Sort{Field: "id; DROP TABLE products"}, 0, 10)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products p WHERE p.deleted_at IS NULL AND p.name ILIKE $1")).
		WithArgs("%phone%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := repo.Count(context.Background(), domain.ProductFilter{Search: "phone"})

	require.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	id := uuid.New()
	mock.ExpectQuery("FROM products p WHERE p.id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	product, err := repo.GetByID(context.Background(), id)

	assert.Nil(t, product)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	id := uuid.New()
	now := time.Now()
	product := &domain.Product{
		Name:     "Desk Lamp",
		Price:    decimal.RequireFromString("24.50"),
		Category: "Home",
	}

	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Desk Lamp", nil, sqlmock.AnyArg(), "Home", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id.String(), now, now))

	err := repo.Create(context.Background(), product)

	require.NoError(t, err)
	assert.Equal(t, id, product.ID)
	assert.Equal(t, 0, product.LikeCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	product := &domain.Product{ID: uuid.New(), Name: "Gone", Category: "Home"}

	mock.ExpectQuery("UPDATE products").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	err := repo.Update(context.Background(), product)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_SoftDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	id := uuid.New()

	mock.ExpectExec("UPDATE products").
		WithArgs(sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SoftDelete(context.Background(), id))

	mock.ExpectExec("UPDATE products").
		WithArgs(sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.SoftDelete(context.Background(), id), domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
