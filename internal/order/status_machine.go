package order

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cadre-be/internal/inventory"
	"cadre-be/internal/listing"
	"cadre-be/internal/logger"
	"cadre-be/internal/metrics"

	"go.uber.org/zap"
)

const (
	skipListingNotFound = "listing not found"
	skipNoTransition    = "listing status transition not allowed"
)

// SetStatus moves an order along its lifecycle and propagates the change to
// every listing the order references. Items whose listing is gone or cannot
// take the new status are reported back instead of failing the change.
func (s *service) SetStatus(ctx context.Context, orderID, status string) (*StatusChangeResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SetStatus"),
		zap.String("order_id", orderID),
		zap.String("status", status),
	)

	to, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	result := &StatusChangeResult{SkippedItems: []SkippedItem{}}
	var from Status

	err = s.uow.Do(ctx, func(ctx context.Context, st Stores) error {
		result.SkippedItems = result.SkippedItems[:0]

		o, err := st.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		from = o.Status

		if !CanTransition(o.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
		}

		ids := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			ids = append(ids, item.ListingID)
		}
		listings, err := lockListings(ctx, st.Listings, ids)
		if err != nil {
			return err
		}

		ledger := inventory.NewLedger(st.Listings)
		for _, item := range o.Items {
			l, ok := listings[item.ListingID]
			if !ok {
				result.SkippedItems = append(result.SkippedItems, SkippedItem{
					ItemID: item.ID, ListingID: item.ListingID, Reason: skipListingNotFound,
				})
				continue
			}

			// Unique items are released like stock items. A cancelled unique
			// listing goes back to For Sale, so it must show its one unit as
			// available again.
			if to == StatusCancelled {
				stock, err := ledger.Release(ctx, l.ID, item.Quantity)
				if err != nil {
					return err
				}
				l.CurrentQuantity, l.SoldQuantity = stock.CurrentQuantity, stock.SoldQuantity
			}

			next, ok := listingStatusFor(to, l)
			if !ok {
				continue
			}
			if !listing.CanTransition(l.Status, next) {
				result.SkippedItems = append(result.SkippedItems, SkippedItem{
					ItemID: item.ID, ListingID: l.ID, Reason: skipNoTransition,
				})
				continue
			}
			if err := st.Listings.UpdateStatus(ctx, l.ID, next); err != nil {
				return err
			}
			l.Status = next
		}

		o.Status = to
		if err := st.Orders.Update(ctx, o); err != nil {
			return err
		}
		result.Order = o
		return nil
	})
	if err != nil {
		log.Warn("status change failed", zap.Error(err))
		return nil, err
	}

	metrics.ItemsSkipped.Add(uint64(len(result.SkippedItems)))
	for _, skipped := range result.SkippedItems {
		log.Warn("listing side effect skipped",
			zap.String("item_id", skipped.ItemID),
			zap.String("listing_id", skipped.ListingID),
			zap.String("reason", skipped.Reason),
		)
	}
	log.Info("order status changed", zap.String("from", string(from)))

	s.publish(ctx, Event{Type: EventOrderStatusChanged, OrderID: orderID, Status: to, Order: result.Order})
	return result, nil
}

// listingStatusFor decides which status a listing moves to when its order
// enters the given status. ok is false when the listing is left alone.
func listingStatusFor(to Status, l *listing.Listing) (listing.Status, bool) {
	switch to {
	case StatusOutForDelivery:
		// Stock listings are only confirmed once nothing is left to sell.
		if l.Status.IsForSale() && (l.Type() == listing.TypeUnique || l.CurrentQuantity == 0) {
			return listing.StatusConfirmed, true
		}
	case StatusDelivered:
		if l.Status == listing.StatusConfirmed {
			return listing.StatusSold, true
		}
	case StatusCancelled:
		if l.Status == listing.StatusConfirmed || l.Status == listing.StatusSold {
			return listing.StatusForSale, true
		}
	}
	return "", false
}

// lockListings row-locks each distinct listing once, in id order, so
// concurrent operations queue on the same sequence of rows. Missing
// listings are left out of the map.
func lockListings(ctx context.Context, repo listing.Repository, ids []string) (map[string]*listing.Listing, error) {
	sorted := make([]string, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			sorted = append(sorted, id)
		}
	}
	sort.Strings(sorted)

	listings := make(map[string]*listing.Listing, len(sorted))
	for _, id := range sorted {
		l, err := repo.GetForUpdate(ctx, id)
		if errors.Is(err, listing.ErrListingNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		listings[id] = l
	}
	return listings, nil
}
