package handler

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/auth"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/pkg/pagination"
	"github.com/Pesokrava/product_catalog/internal/repository/cache"
)

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Find(ctx context.Context, filter domain.ProductFilter, sort pagination.Sort, offset, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, filter, sort, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter domain.ProductFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// memoryLikes is an in-memory domain.LikeRepository with the unique pair constraint
type memoryLikes struct {
	mu    sync.Mutex
	likes map[uuid.UUID]*domain.ProductLike
}

func newMemoryLikes() *memoryLikes {
	return &memoryLikes{likes: make(map[uuid.UUID]*domain.ProductLike)}
}

func (r *memoryLikes) Create(_ context.Context, like *domain.ProductLike) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.likes {
		if l.ProductID == like.ProductID && l.UserID == like.UserID {
			return domain.ErrAlreadyExists
		}
	}
	like.ID = uuid.New()
	like.CreatedAt = time.Now()
	stored := *like
	r.likes[like.ID] = &stored
	return nil
}

func (r *memoryLikes) FindByProductAndUser(_ context.Context, productID, userID uuid.UUID) (*domain.ProductLike, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.likes {
		if l.ProductID == productID && l.UserID == userID {
			found := *l
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryLikes) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.likes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.likes, id)
	return nil
}

func (r *memoryLikes) CountByProduct(_ context.Context, productID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.likes {
		if l.ProductID == productID {
			n++
		}
	}
	return n, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, []byte) error { return nil }

func newTestCoherence(log *logger.Logger) *cache.Coherence {
	return cache.NewCoherence(cache.NewMemoryStore(gocache.New(time.Minute, time.Minute)), log)
}

// withURLParam adds a chi URL parameter to the request
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withCaller authenticates the request as the given user
func withCaller(t *testing.T, r *http.Request, userID uuid.UUID, role domain.Role) *http.Request {
	t.Helper()
	claims := &auth.Claims{UserID: userID, Email: "caller@example.com", Role: string(role), Type: auth.AccessToken}
	return r.WithContext(auth.WithClaims(r.Context(), claims))
}
