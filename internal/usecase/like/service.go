// Package like keeps the set of (product, user) like relations and answers
// count and membership questions about it.
package like

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/pkg/metrics"
	"github.com/Pesokrava/product_catalog/internal/repository/cache"
)

// ProductReader is the part of the product store the registry needs
type ProductReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

// Result is the outcome of a toggle
type Result struct {
	Liked      bool `json:"liked"`
	TotalLikes int  `json:"totalLikes"`
}

// Service toggles like relations. There is no application lock: the
// store's unique constraint on (product, user) settles concurrent creates.
type Service struct {
	products  ProductReader
	likes     domain.LikeRepository
	cache     *cache.Coherence
	publisher domain.EventPublisher
	countTTL  time.Duration
	logger    *logger.Logger
}

// NewService creates a new like service
func NewService(
	products ProductReader,
	likes domain.LikeRepository,
	coherence *cache.Coherence,
	publisher domain.EventPublisher,
	countTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		products:  products,
		likes:     likes,
		cache:     coherence,
		publisher: publisher,
		countTTL:  countTTL,
		logger:    log,
	}
}

func countKey(productID uuid.UUID) string {
	return cache.Key(cache.NamespaceProductLikes, "count", productID.String())
}

// Toggle likes the product if the user has not liked it yet, and unlikes it
// otherwise. TotalLikes is counted after the change.
func (s *Service) Toggle(ctx context.Context, productID, userID uuid.UUID) (*Result, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	liked, err := s.flip(ctx, productID, userID)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, countKey(productID))
	s.cache.Invalidate(ctx, cache.NamespaceProducts)

	total, err := s.likes.CountByProduct(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to count likes", err)
		return nil, err
	}

	metrics.RecordLikeToggle(liked)

	eventType := domain.EventProductUnliked
	if liked {
		eventType = domain.EventProductLiked
	}
	s.publishEvent(eventType, productID, userID, total)

	s.logger.WithFields(map[string]any{
		"product_id":  productID,
		"user_id":     userID,
		"liked":       liked,
		"total_likes": total,
	}).Info("Like toggled")

	return &Result{Liked: liked, TotalLikes: total}, nil
}

// flip removes an existing relation or creates a missing one and reports
// whether the user likes the product afterwards.
func (s *Service) flip(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	existing, err := s.likes.FindByProductAndUser(ctx, productID, userID)
	switch {
	case err == nil:
		// a concurrent unlike may already have removed it
		if err := s.likes.Delete(ctx, existing.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to delete like", err)
			return false, err
		}
		return false, nil

	case errors.Is(err, domain.ErrNotFound):
		like := &domain.ProductLike{ProductID: productID, UserID: userID}
		if err := s.likes.Create(ctx, like); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				s.logger.WithFields(map[string]any{
					"product_id": productID,
					"user_id":    userID,
				}).Debug("Concurrent like lost the race")
				return false, domain.NewError(domain.ErrConflict, "like relation already exists")
			}
			if !errors.Is(err, domain.ErrNotFound) {
				s.logger.Error("Failed to create like", err)
			}
			return false, err
		}
		return true, nil

	default:
		s.logger.Error("Failed to look up like", err)
		return false, err
	}
}

// IsLiked reports whether userID has liked productID
func (s *Service) IsLiked(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	_, err := s.likes.FindByProductAndUser(ctx, productID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}

	s.logger.Error("Failed to look up like", err)
	return false, err
}

// LikeCount returns the number of relations for productID, cached for the
// configured TTL.
func (s *Service) LikeCount(ctx context.Context, productID uuid.UUID) (int, error) {
	count, err := cache.GetOrCompute(ctx, s.cache, cache.NamespaceProductLikes, countKey(productID), s.countTTL,
		func(ctx context.Context) (int, error) {
			return s.likes.CountByProduct(ctx, productID)
		})
	if err != nil {
		s.logger.Error("Failed to count likes", err)
		return 0, err
	}

	return count, nil
}

// Summary is the like state of a product as seen by one viewer
type Summary struct {
	TotalLikes int   `json:"totalLikes"`
	Liked      *bool `json:"liked,omitempty"`
}

// Summary returns the like count of a product and, when viewer is set,
// whether the viewer likes it.
func (s *Service) Summary(ctx context.Context, productID uuid.UUID, viewer *uuid.UUID) (*Summary, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	total, err := s.LikeCount(ctx, productID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{TotalLikes: total}
	if viewer != nil {
		liked, err := s.IsLiked(ctx, productID, *viewer)
		if err != nil {
			return nil, err
		}
		summary.Liked = &liked
	}

	return summary, nil
}

// publishEvent publishes a like event (non-blocking)
func (s *Service) publishEvent(eventType string, productID, userID uuid.UUID, total int) {
	event := domain.CatalogEvent{
		EventType:  eventType,
		Timestamp:  time.Now(),
		ProductID:  productID,
		UserID:     &userID,
		TotalLikes: &total,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for product %s", productID)
		return
	}

	go func() {
		if err := s.publisher.Publish(context.Background(), domain.EventSubject, data); err != nil {
			s.logger.Errorf(err, "Failed to publish %s event for product %s", eventType, productID)
		}
	}()
}
