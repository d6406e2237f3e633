package inventory

import (
	"context"
	"errors"
	"fmt"

	"cadre-be/internal/listing"
	"cadre-be/internal/logger"
	"cadre-be/internal/metrics"

	"go.uber.org/zap"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Ledger moves units of a listing between its available and sold buckets.
// Each call is one read-modify-write on a single listing row; the repository
// it wraps decides the transaction it runs in.
type Ledger struct {
	listings listing.Repository
}

func NewLedger(listings listing.Repository) *Ledger {
	return &Ledger{listings: listings}
}

// Reserve takes qty units out of the available bucket.
func (l *Ledger) Reserve(ctx context.Context, listingID string, qty int) (listing.Stock, error) {
	if qty < 1 {
		return listing.Stock{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}

	stock, err := l.listings.MoveQuantity(ctx, listingID, qty)
	if err != nil {
		return stock, err
	}

	logger.FromCtx(ctx).Debug("stock reserved",
		zap.String("listing_id", listingID),
		zap.Int("quantity", qty),
		zap.Int("current_quantity", stock.CurrentQuantity),
		zap.Int("sold_quantity", stock.SoldQuantity),
	)
	return stock, nil
}

// Release returns qty units to the available bucket. Asking for more than
// the sold bucket holds is clamped to what was sold and logged, so a
// double release never unbalances the listing.
func (l *Ledger) Release(ctx context.Context, listingID string, qty int) (listing.Stock, error) {
	if qty < 1 {
		return listing.Stock{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}

	log := logger.FromCtx(ctx).With(
		zap.String("method", "Release"),
		zap.String("listing_id", listingID),
		zap.Int("quantity", qty),
	)

	current, err := l.listings.GetForUpdate(ctx, listingID)
	if err != nil {
		return listing.Stock{}, err
	}

	n := min(qty, current.SoldQuantity)
	if n < qty {
		metrics.ReleasesClamped.Inc()
		log.Warn("release clamped to sold quantity",
			zap.Int("sold_quantity", current.SoldQuantity),
			zap.Int("released", n),
		)
	}
	if n == 0 {
		return current.Stock(), nil
	}

	stock, err := l.listings.MoveQuantity(ctx, listingID, -n)
	if err != nil {
		return stock, err
	}

	log.Debug("stock released",
		zap.Int("current_quantity", stock.CurrentQuantity),
		zap.Int("sold_quantity", stock.SoldQuantity),
	)
	return stock, nil
}

// Adjust applies a quantity change on an existing reservation: a positive
// delta reserves more, a negative one releases.
func (l *Ledger) Adjust(ctx context.Context, listingID string, delta int) (listing.Stock, error) {
	switch {
	case delta > 0:
		return l.Reserve(ctx, listingID, delta)
	case delta < 0:
		return l.Release(ctx, listingID, -delta)
	}

	current, err := l.listings.Get(ctx, listingID)
	if err != nil {
		return listing.Stock{}, err
	}
	return current.Stock(), nil
}
