package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cadre-be/internal/inventory"
	"cadre-be/internal/listing"
	"cadre-be/internal/logger"
	"cadre-be/internal/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error)
	DeleteOrder(ctx context.Context, id string) error

	SetStatus(ctx context.Context, orderID, status string) (*StatusChangeResult, error)

	DeleteOrderItem(ctx context.Context, orderID, itemID string) (*DeleteItemResult, error)
	UpdateOrderItemQuantity(ctx context.Context, orderID, itemID string, quantity int) (*QuantityChangeResult, error)
	UpdateItemStatusChecks(ctx context.Context, orderID, itemID string, checks map[string]bool) (*StatusChecks, error)
}

type service struct {
	uow         UnitOfWork
	publisher   Publisher
	idempotency IdempotencyStore
	shipmentFee decimal.Decimal
	now         func() time.Time
}

// NewService wires the order core. publisher and idem may be nil.
func NewService(uow UnitOfWork, publisher Publisher, idem IdempotencyStore, shipmentFee decimal.Decimal) Service {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if idem == nil {
		idem = noopIdempotency{}
	}
	return &service{
		uow:         uow,
		publisher:   publisher,
		idempotency: idem,
		shipmentFee: shipmentFee,
		now:         time.Now,
	}
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int("lines", len(input.Lines)),
	)

	for _, line := range input.Lines {
		if line.Quantity < 1 {
			log.Warn("invalid line quantity",
				zap.String("listing_id", line.ListingID),
				zap.Int("quantity", line.Quantity),
			)
			return nil, fmt.Errorf("%w: listing %s has quantity %d", ErrInvalidQuantity, line.ListingID, line.Quantity)
		}
	}
	if strings.TrimSpace(input.Customer.Name) == "" {
		return nil, fmt.Errorf("%w: customerInfo.name is required", ErrInvalidField)
	}

	key := input.IdempotencyKey
	if key != "" {
		existing, owned, err := s.claim(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			log.Info("create order replayed", zap.String("order_id", existing.ID))
			return existing, nil
		}
		if !owned {
			key = ""
		}
	}

	lines := mergeLines(input.Lines)

	var created *Order
	err := s.uow.Do(ctx, func(ctx context.Context, st Stores) error {
		// Lock every listing up front, in id order, so two orders touching
		// the same listings always queue instead of deadlocking.
		ids := make([]string, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ListingID)
		}
		listings, err := lockListings(ctx, st.Listings, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, ok := listings[id]; !ok {
				log.Warn("listing not found, line dropped", zap.String("listing_id", id))
			}
		}

		requested := map[string]int{}
		for _, line := range lines {
			if _, ok := listings[line.ListingID]; ok {
				requested[line.ListingID] += line.Quantity
			}
		}
		for id, qty := range requested {
			if l := listings[id]; qty > l.CurrentQuantity {
				return &listing.StockError{ListingID: id, Requested: qty, Available: l.CurrentQuantity}
			}
		}

		o := &Order{
			Status:       StatusPlaced,
			Customer:     input.Customer,
			ShipmentFees: s.shipmentFee,
			Items:        []*OrderItem{},
		}

		ledger := inventory.NewLedger(st.Listings)
		for _, line := range lines {
			l, ok := listings[line.ListingID]
			if !ok {
				continue
			}
			if _, err := ledger.Reserve(ctx, l.ID, line.Quantity); err != nil {
				return err
			}
			o.Items = append(o.Items, snapshotItem(l, line))
		}

		if len(o.Items) == 0 {
			return ErrEmptyOrder
		}
		o.RecalculateTotals()

		if o.ID, err = st.Orders.NextID(ctx); err != nil {
			return err
		}

		if err := st.Orders.Create(ctx, o); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		if errors.Is(err, listing.ErrInsufficientStock) {
			metrics.StockRejections.Inc()
		}
		if key != "" {
			if rerr := s.idempotency.Release(context.WithoutCancel(ctx), key); rerr != nil {
				log.Warn("failed to release idempotency key", zap.Error(rerr))
			}
		}
		log.Warn("create order failed", zap.Error(err))
		return nil, err
	}

	if key != "" {
		if err := s.idempotency.Complete(context.WithoutCancel(ctx), key, created.ID); err != nil {
			log.Warn("failed to complete idempotency key", zap.Error(err))
		}
	}

	metrics.OrdersPlaced.Inc()
	log.Info("order placed",
		zap.String("order_id", created.ID),
		zap.Int("items", len(created.Items)),
		zap.String("total_price", created.TotalPrice.String()),
	)
	s.publish(ctx, Event{Type: EventOrderPlaced, OrderID: created.ID, Status: created.Status, Order: created})
	return created, nil
}

// claim takes the idempotency key for this request. It returns the order a
// finished request with the same key produced, or owned=true when this
// request must do the write. A store outage lets the request through
// unprotected.
func (s *service) claim(ctx context.Context, key string) (*Order, bool, error) {
	log := logger.FromCtx(ctx)

	orderID, claimed, err := s.idempotency.Claim(ctx, key)
	if err != nil {
		log.Warn("idempotency claim failed", zap.Error(err))
		return nil, false, nil
	}
	if claimed {
		return nil, true, nil
	}
	if orderID == "" {
		return nil, false, ErrRequestInProgress
	}

	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		log.Warn("idempotent order no longer readable",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil, false, err
	}
	return o, false, nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	var o *Order
	err := s.uow.View(ctx, func(ctx context.Context, st Stores) error {
		var err error
		o, err = st.Orders.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error) {
	var orders []*Order
	err := s.uow.View(ctx, func(ctx context.Context, st Stores) error {
		var err error
		orders, err = st.Orders.List(ctx, filter.Normalize())
		return err
	})
	if err != nil {
		logger.FromCtx(ctx).Error("list orders failed", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// DeleteOrder removes an order. Reserved quantity goes back to the listings
// unless the order is closed: cancelled orders released theirs when they
// were cancelled and delivered goods are gone.
func (s *service) DeleteOrder(ctx context.Context, id string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteOrder"),
		zap.String("order_id", id),
	)

	err := s.uow.Do(ctx, func(ctx context.Context, st Stores) error {
		o, err := st.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if !o.Status.IsClosed() {
			ledger := inventory.NewLedger(st.Listings)
			for _, item := range o.Items {
				if err := releaseItem(ctx, ledger, item); err != nil {
					return err
				}
			}
		}

		return st.Orders.Delete(ctx, o.ID)
	})
	if err != nil {
		log.Warn("delete order failed", zap.Error(err))
		return err
	}

	log.Info("order deleted")
	s.publish(ctx, Event{Type: EventOrderDeleted, OrderID: id})
	return nil
}

// releaseItem returns an item's quantity to its listing. A listing that no
// longer exists is skipped.
func releaseItem(ctx context.Context, ledger *inventory.Ledger, item *OrderItem) error {
	_, err := ledger.Release(ctx, item.ListingID, item.Quantity)
	if errors.Is(err, listing.ErrListingNotFound) {
		logger.FromCtx(ctx).Warn("listing gone, release skipped",
			zap.String("item_id", item.ID),
			zap.String("listing_id", item.ListingID),
		)
		return nil
	}
	return err
}

func (s *service) publish(ctx context.Context, e Event) {
	e.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, e); err != nil {
		metrics.EventsFailed.Inc()
		logger.FromCtx(ctx).Warn("failed to publish order event",
			zap.String("event_type", string(e.Type)),
			zap.String("order_id", e.OrderID),
			zap.Error(err),
		)
	}
}

// mergeLines folds lines for the same listing and size into one, keeping
// first-seen order.
func mergeLines(lines []OrderLine) []OrderLine {
	type key struct{ listingID, size string }

	merged := make([]OrderLine, 0, len(lines))
	index := map[key]int{}
	for _, line := range lines {
		k := key{line.ListingID, line.SelectedSize}
		if i, ok := index[k]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[k] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

func snapshotItem(l *listing.Listing, line OrderLine) *OrderItem {
	item := &OrderItem{
		ID:          uuid.New().String(),
		ListingID:   l.ID,
		Name:        l.Name,
		Description: l.Description,
		Price:       l.Price,
		Type:        l.ItemType,
		SellerInfo: SellerInfo{
			ID:      l.Owner.ID,
			Name:    l.Owner.Name,
			Email:   l.Owner.Email,
			Phone:   l.Owner.Phone,
			Address: l.Owner.Address,
			City:    l.Owner.City,
		},
		Quantity: line.Quantity,
		Profit:   ItemProfit(l.Price, line.Quantity),
	}

	if l.IsClothing() {
		item.SelectedSize = line.SelectedSize
	} else {
		item.Dimensions = string(l.Dimensions)
		item.Width = l.Width
		item.Height = l.Height
		item.Depth = l.Depth
	}
	return item
}
