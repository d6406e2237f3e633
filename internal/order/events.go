package order

import (
	"context"
	"time"
)

type EventType string

const (
	EventOrderPlaced          EventType = "order.placed"
	EventOrderStatusChanged   EventType = "order.status_changed"
	EventOrderDeleted         EventType = "order.deleted"
	EventOrderItemRemoved     EventType = "order.item_removed"
	EventOrderItemQuantitySet EventType = "order.item_quantity_changed"
	EventOrderItemChecksSet   EventType = "order.item_checks_updated"
)

// Event is emitted after a mutation has been committed.
type Event struct {
	Type       EventType `json:"type"`
	OrderID    string    `json:"orderId"`
	ItemID     string    `json:"itemId,omitempty"`
	Status     Status    `json:"status,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	Order      *Order    `json:"order,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher ships committed order events to downstream consumers. Delivery
// is best effort: a failure never undoes the mutation.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// IdempotencyStore tracks create-order request keys. A key is claimed before
// the order is written, so only one request per key ever reaches the write.
type IdempotencyStore interface {
	// Claim reserves key for the caller. When the key is already taken,
	// claimed is false and orderID holds the order it produced, or is empty
	// while the owning request is still running.
	Claim(ctx context.Context, key string) (orderID string, claimed bool, err error)
	// Complete records the order a claimed key produced.
	Complete(ctx context.Context, key, orderID string) error
	// Release frees a claimed key whose request failed.
	Release(ctx context.Context, key string) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

type noopIdempotency struct{}

func (noopIdempotency) Claim(context.Context, string) (string, bool, error) { return "", true, nil }
func (noopIdempotency) Complete(context.Context, string, string) error      { return nil }
func (noopIdempotency) Release(context.Context, string) error               { return nil }
