package order

import (
	"context"
	"errors"
	"fmt"

	"cadre-be/internal/inventory"
	"cadre-be/internal/listing"
	"cadre-be/internal/logger"
	"cadre-be/internal/metrics"

	"go.uber.org/zap"
)

// DeleteOrderItem removes one item and gives its quantity back to the
// listing. Removing the last item deletes the whole order.
func (s *service) DeleteOrderItem(ctx context.Context, orderID, itemID string) (*DeleteItemResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteOrderItem"),
		zap.String("order_id", orderID),
		zap.String("item_id", itemID),
	)

	result := &DeleteItemResult{}
	err := s.uow.Do(ctx, func(ctx context.Context, st Stores) error {
		o, err := st.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		item, idx := o.FindItem(itemID)
		if item == nil {
			return ErrItemNotFound
		}

		// A cancelled order has already returned its quantity.
		if o.Status != StatusCancelled {
			if err := releaseItem(ctx, inventory.NewLedger(st.Listings), item); err != nil {
				return err
			}
		}

		o.removeItemAt(idx)
		if len(o.Items) == 0 {
			result.OrderDeleted = true
			return st.Orders.Delete(ctx, o.ID)
		}

		if err := st.Orders.DeleteItem(ctx, o.ID, itemID); err != nil {
			return err
		}
		o.RecalculateTotals()
		if err := st.Orders.Update(ctx, o); err != nil {
			return err
		}
		result.Order = o
		return nil
	})
	if err != nil {
		log.Warn("delete order item failed", zap.Error(err))
		return nil, err
	}

	log.Info("order item deleted", zap.Bool("order_deleted", result.OrderDeleted))

	s.publish(ctx, Event{Type: EventOrderItemRemoved, OrderID: orderID, ItemID: itemID, Order: result.Order})
	if result.OrderDeleted {
		s.publish(ctx, Event{Type: EventOrderDeleted, OrderID: orderID})
	}
	return result, nil
}

// UpdateOrderItemQuantity sets an item's quantity, reserving or releasing
// the difference on its listing.
func (s *service) UpdateOrderItemQuantity(ctx context.Context, orderID, itemID string, quantity int) (*QuantityChangeResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOrderItemQuantity"),
		zap.String("order_id", orderID),
		zap.String("item_id", itemID),
		zap.Int("quantity", quantity),
	)

	if quantity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	result := &QuantityChangeResult{}
	err := s.uow.Do(ctx, func(ctx context.Context, st Stores) error {
		o, err := st.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status.IsClosed() {
			return fmt.Errorf("%w: order is %s", ErrOrderClosed, o.Status)
		}

		item, _ := o.FindItem(itemID)
		if item == nil {
			return ErrItemNotFound
		}

		l, err := st.Listings.GetForUpdate(ctx, item.ListingID)
		if err != nil {
			return err
		}

		delta := quantity - item.Quantity
		if delta > l.CurrentQuantity {
			return &listing.StockError{ListingID: l.ID, Requested: delta, Available: l.CurrentQuantity}
		}

		stock, err := inventory.NewLedger(st.Listings).Adjust(ctx, l.ID, delta)
		if err != nil {
			return err
		}

		item.Quantity = quantity
		item.Profit = ItemProfit(item.Price, quantity)
		if err := st.Orders.UpdateItem(ctx, o.ID, item); err != nil {
			return err
		}

		o.RecalculateTotals()
		if err := st.Orders.Update(ctx, o); err != nil {
			return err
		}

		result.Order = o
		result.ListingStock = ListingStock{
			CurrentQuantity: stock.CurrentQuantity,
			SoldQuantity:    stock.SoldQuantity,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, listing.ErrInsufficientStock) {
			metrics.StockRejections.Inc()
		}
		log.Warn("update item quantity failed", zap.Error(err))
		return nil, err
	}

	log.Info("order item quantity updated",
		zap.Int("listing_current_quantity", result.ListingStock.CurrentQuantity),
		zap.Int("listing_sold_quantity", result.ListingStock.SoldQuantity),
	)
	s.publish(ctx, Event{
		Type:     EventOrderItemQuantitySet,
		OrderID:  orderID,
		ItemID:   itemID,
		Quantity: quantity,
		Order:    result.Order,
	})
	return result, nil
}

// UpdateItemStatusChecks merges the given checklist flags into the item.
// Flags not named keep their value.
func (s *service) UpdateItemStatusChecks(ctx context.Context, orderID, itemID string, checks map[string]bool) (*StatusChecks, error) {
	if err := ValidateCheckNames(checks); err != nil {
		return nil, err
	}

	var merged StatusChecks
	err := s.uow.Do(ctx, func(ctx context.Context, st Stores) error {
		o, err := st.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		item, _ := o.FindItem(itemID)
		if item == nil {
			return ErrItemNotFound
		}

		if err := item.StatusChecks.Merge(checks); err != nil {
			return err
		}
		merged = item.StatusChecks
		return st.Orders.UpdateItem(ctx, o.ID, item)
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Debug("item status checks updated",
		zap.String("order_id", orderID),
		zap.String("item_id", itemID),
		zap.Any("checks", merged),
	)
	s.publish(ctx, Event{Type: EventOrderItemChecksSet, OrderID: orderID, ItemID: itemID})
	return &merged, nil
}
