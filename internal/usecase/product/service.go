package product

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/pkg/metrics"
	"github.com/Pesokrava/product_catalog/internal/pkg/pagination"
	pkgvalidator "github.com/Pesokrava/product_catalog/internal/pkg/validator"
	"github.com/Pesokrava/product_catalog/internal/repository/cache"
)

// Query describes one product listing request
type Query struct {
	Page           int
	Limit          int
	Search         string
	Category       string
	Subcategory    string
	SortBy         string
	SortOrder      string
	IncludeDeleted bool
}

// cacheValues is the normalized form of the query used as the page cache key
func (q Query) cacheValues(sort pagination.Sort) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("search", strings.TrimSpace(q.Search))
	v.Set("category", q.Category)
	v.Set("subcategory", q.Subcategory)
	v.Set("sortBy", sort.Field)
	v.Set("sortOrder", string(sort.Direction))
	if q.IncludeDeleted {
		v.Set("includeDeleted", "true")
	}
	return v
}

// Patch holds the fields of a partial product update. Nil fields are left unchanged.
type Patch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Subcategory *string
}

// Service handles product business logic
type Service struct {
	repo      domain.ProductRepository
	cache     *cache.Coherence
	publisher domain.EventPublisher
	validate  *validator.Validate
	pageTTL   time.Duration
	logger    *logger.Logger
}

// NewService creates a new product service
func NewService(
	repo domain.ProductRepository,
	coherence *cache.Coherence,
	publisher domain.EventPublisher,
	pageTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		cache:     coherence,
		publisher: publisher,
		validate:  pkgvalidator.Get(),
		pageTTL:   pageTTL,
		logger:    log,
	}
}

// List returns one page of products. Pages are served from cache when
// possible and recomputed after any product or like mutation.
func (s *Service) List(ctx context.Context, q Query) (*pagination.Page[*domain.Product], error) {
	params := pagination.Params{Page: q.Page, Limit: q.Limit}
	if err := params.Validate(); err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "%s", validationDetail(err))
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = domain.ProductSortCreatedAt
	}
	if !domain.IsProductSortField(sortBy) {
		return nil, domain.NewError(domain.ErrInvalidInput, "sortBy must be one of createdAt, updatedAt, name, price, category, likeCount")
	}

	dir, err := pagination.ParseDirection(q.SortOrder)
	if err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "%s", validationDetail(err))
	}

	sort := pagination.Sort{Field: sortBy, Direction: dir}
	filter := domain.ProductFilter{
		Search:         strings.TrimSpace(q.Search),
		Category:       q.Category,
		Subcategory:    q.Subcategory,
		IncludeDeleted: q.IncludeDeleted,
	}

	metrics.RecordPageRequest(params.Page)

	key := cache.QueryKey(cache.NamespaceProducts, "page", q.cacheValues(sort))

	page, err := cache.GetOrCompute(ctx, s.cache, cache.NamespaceProducts, key, s.pageTTL,
		func(ctx context.Context) (*pagination.Page[*domain.Product], error) {
			return pagination.Paginate[*domain.Product, domain.ProductFilter](ctx, s.repo, filter, sort, params)
		})
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, err
	}

	return page, nil
}

// validationDetail drops the sentinel prefix from a pagination error
func validationDetail(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 && errors.Is(err, pagination.ErrInvalidParams) {
		return msg[i+2:]
	}
	return msg
}

// GetByID retrieves a product by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Product not found: %s", id)
		} else {
			s.logger.Error("Failed to get product", err)
		}
		return nil, err
	}

	return product, nil
}

// Create creates a new product
func (s *Service) Create(ctx context.Context, product *domain.Product) error {
	if err := s.validate.Struct(product); err != nil {
		s.logger.Debugf("Product validation failed: %v", err)
		return domain.NewError(domain.ErrInvalidInput, "invalid product: %v", err)
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", err)
		return err
	}

	s.cache.Invalidate(ctx, cache.NamespaceProducts)
	s.publishEvent(domain.EventProductCreated, product.ID, product)

	s.logger.WithFields(map[string]any{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product created successfully")

	return nil
}

// Update applies patch to an existing product
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get product for update", err)
		}
		return nil, err
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.Subcategory != nil {
		product.Subcategory = patch.Subcategory
	}

	if err := s.validate.Struct(product); err != nil {
		s.logger.Debugf("Product validation failed: %v", err)
		return nil, domain.NewError(domain.ErrInvalidInput, "invalid product: %v", err)
	}

	if err := s.repo.Update(ctx, product); err != nil {
		s.logger.Error("Failed to update product", err)
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.NamespaceProducts)
	s.publishEvent(domain.EventProductUpdated, product.ID, product)

	s.logger.WithFields(map[string]any{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product updated successfully")

	return product, nil
}

// Delete soft-deletes a product
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to delete product", err)
		}
		return err
	}

	s.cache.Invalidate(ctx, cache.NamespaceProducts)
	s.cache.Invalidate(ctx, cache.Key(cache.NamespaceProductLikes, "count", id.String()))
	s.publishEvent(domain.EventProductDeleted, id, nil)

	s.logger.WithFields(map[string]any{
		"product_id": id,
	}).Info("Product deleted successfully")

	return nil
}

// publishEvent publishes a product event (non-blocking)
func (s *Service) publishEvent(eventType string, productID uuid.UUID, product *domain.Product) {
	event := domain.CatalogEvent{
		EventType: eventType,
		Timestamp: time.Now(),
		ProductID: productID,
		Product:   product,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for product %s", productID)
		return
	}

	// Publish in background to avoid blocking
	go func() {
		if err := s.publisher.Publish(context.Background(), domain.EventSubject, data); err != nil {
			s.logger.Errorf(err, "Failed to publish %s event for product %s", eventType, productID)
		}
	}()
}
