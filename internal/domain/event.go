package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventSubject is the subject every catalog event is published on
const EventSubject = "catalog.events"

// Event types published on the catalog subject
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
	EventProductLiked   = "product.liked"
	EventProductUnliked = "product.unliked"
)

// EventPublisher publishes serialized events to a subject
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// CatalogEvent is the payload of every catalog event
type CatalogEvent struct {
	EventType  string     `json:"eventType"`
	Timestamp  time.Time  `json:"timestamp"`
	ProductID  uuid.UUID  `json:"productId"`
	UserID     *uuid.UUID `json:"userId,omitempty"`
	Product    *Product   `json:"product,omitempty"`
	TotalLikes *int       `json:"totalLikes,omitempty"`
}
