package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/product_catalog/internal/config"
	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
)

const (
	fetchBatch   = 10
	fetchWait    = 5 * time.Second
	fetchBackoff = 5 * time.Second
)

// Handler processes one catalog event. A returned error causes redelivery.
type Handler func(ctx context.Context, event domain.CatalogEvent) error

// Consumer pulls catalog events from the durable notifier consumer
type Consumer struct {
	nc     *nats.Conn
	sub    *nats.Subscription
	logger *logger.Logger
}

// NewConsumer connects to NATS, ensures the stream and consumer and binds a
// pull subscription to them
func NewConsumer(cfg *config.Config, log *logger.Logger) (*Consumer, error) {
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("catalog-notifier"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streams := NewStreamConfig(js, log)
	if err := streams.EnsureStream(); err != nil {
		nc.Close()
		return nil, err
	}
	if err := streams.EnsureConsumer(); err != nil {
		nc.Close()
		return nil, err
	}

	sub, err := js.PullSubscribe(domain.EventSubject, ConsumerName, nats.Bind(StreamName, ConsumerName), nats.ManualAck())
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to JetStream consumer: %w", err)
	}

	log.WithFields(map[string]any{
		"url":      cfg.NATS.URL,
		"stream":   StreamName,
		"consumer": ConsumerName,
	}).Info("Subscribed to JetStream consumer")

	return &Consumer{
		nc:     nc,
		sub:    sub,
		logger: log,
	}, nil
}

// Run fetches and dispatches messages until ctx is cancelled
func (c *Consumer) Run(ctx context.Context, handle Handler) {
	for ctx.Err() == nil {
		msgs, err := c.sub.Fetch(fetchBatch, nats.MaxWait(fetchWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("Failed to fetch messages from JetStream", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchBackoff):
			}
			continue
		}

		for _, msg := range msgs {
			c.dispatch(ctx, msg, handle)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg *nats.Msg, handle Handler) {
	var event domain.CatalogEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		// a malformed payload will not get better on redelivery
		c.logger.Error("Dropping malformed event", err)
		if termErr := msg.Term(); termErr != nil {
			c.logger.Error("Failed to TERM message", termErr)
		}
		return
	}

	if err := handle(ctx, event); err != nil {
		c.logger.WithFields(map[string]any{
			"event_type": event.EventType,
			"product_id": event.ProductID,
		}).Error("Failed to handle event", err)

		if nakErr := msg.Nak(); nakErr != nil {
			c.logger.Error("Failed to NAK message", nakErr)
		}
		return
	}

	if ackErr := msg.Ack(); ackErr != nil {
		c.logger.Error("Failed to ACK message", ackErr)
	}
}

// Close unsubscribes and closes the NATS connection
func (c *Consumer) Close() {
	if c.sub != nil {
		if err := c.sub.Unsubscribe(); err != nil {
			c.logger.Warnf("Failed to unsubscribe from NATS: %v", err)
		}
	}
	if c.nc != nil {
		c.nc.Close()
		c.logger.Info("NATS consumer connection closed")
	}
}

// LoggingHandler logs every event it receives
func LoggingHandler(log *logger.Logger) Handler {
	return func(_ context.Context, event domain.CatalogEvent) error {
		fields := map[string]any{
			"event_type": event.EventType,
			"product_id": event.ProductID,
			"timestamp":  event.Timestamp,
		}
		if event.UserID != nil {
			fields["user_id"] = *event.UserID
		}
		if event.TotalLikes != nil {
			fields["total_likes"] = *event.TotalLikes
		}
		if event.Product != nil {
			fields["name"] = event.Product.Name
		}

		log.WithFields(fields).Info("Received catalog event")
		return nil
	}
}
