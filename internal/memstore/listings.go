package memstore

import (
	"context"
	"fmt"
	"time"

	"cadre-be/internal/listing"
)

type listingRepo struct {
	st  *state
	now func() time.Time
}

func cloneListing(l *listing.Listing) *listing.Listing {
	c := *l
	if l.Sizes != nil {
		c.Sizes = append([]string(nil), l.Sizes...)
	}
	return &c
}

func (r *listingRepo) Create(_ context.Context, l *listing.Listing) error {
	if _, ok := r.st.listings[l.ID]; ok {
		return fmt.Errorf("listing %s already exists", l.ID)
	}
	now := r.now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	l.Owner.ID = l.OwnerID
	r.st.listings[l.ID] = cloneListing(l)
	return nil
}

func (r *listingRepo) Get(_ context.Context, id string) (*listing.Listing, error) {
	l, ok := r.st.listings[id]
	if !ok {
		return nil, listing.ErrListingNotFound
	}
	return cloneListing(l), nil
}

// GetForUpdate needs no lock of its own: the whole unit of work already
// holds the store.
func (r *listingRepo) GetForUpdate(ctx context.Context, id string) (*listing.Listing, error) {
	return r.Get(ctx, id)
}

func (r *listingRepo) MoveQuantity(_ context.Context, id string, delta int) (listing.Stock, error) {
	l, ok := r.st.listings[id]
	if !ok {
		return listing.Stock{}, listing.ErrListingNotFound
	}
	if l.CurrentQuantity < delta {
		return l.Stock(), &listing.StockError{ListingID: id, Requested: delta, Available: l.CurrentQuantity}
	}
	if l.SoldQuantity < -delta {
		return l.Stock(), fmt.Errorf("%w: listing %s has %d sold, asked to return %d",
			listing.ErrOverRelease, id, l.SoldQuantity, -delta)
	}

	l.CurrentQuantity -= delta
	l.SoldQuantity += delta
	l.UpdatedAt = r.now().UTC()
	return l.Stock(), nil
}

func (r *listingRepo) UpdateStatus(_ context.Context, id string, status listing.Status) error {
	l, ok := r.st.listings[id]
	if !ok {
		return listing.ErrListingNotFound
	}
	l.Status = status
	l.UpdatedAt = r.now().UTC()
	return nil
}
