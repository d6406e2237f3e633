package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"cadre-be/internal/listing"
	"cadre-be/internal/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedListing(t *testing.T, s *Store, id string, qty int) {
	t.Helper()
	require.NoError(t, s.Listings().Create(context.Background(), &listing.Listing{
		ID:              id,
		OwnerID:         "usr-1",
		Name:            "Print " + id,
		Price:           decimal.NewFromInt(500),
		InitialQuantity: qty,
		CurrentQuantity: qty,
		Status:          listing.StatusForSale,
	}))
}

func TestStore_DoRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedListing(t, s, "lst-1", 5)

	boom := errors.New("boom")
	err := s.Do(ctx, func(ctx context.Context, st order.Stores) error {
		if _, err := st.Listings.MoveQuantity(ctx, "lst-1", 3); err != nil {
			return err
		}
		id, err := st.Orders.NextID(ctx)
		require.NoError(t, err)
		require.NoError(t, st.Orders.Create(ctx, &order.Order{ID: id, Status: order.StatusPlaced}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	l, err := s.Listings().Get(ctx, "lst-1")
	require.NoError(t, err)
	assert.Equal(t, 5, l.CurrentQuantity)
	assert.Equal(t, 0, l.SoldQuantity)

	// The sequence was rolled back with everything else.
	err = s.Do(ctx, func(ctx context.Context, st order.Stores) error {
		id, err := st.Orders.NextID(ctx)
		assert.Equal(t, "CM00001", id)
		return err
	})
	require.NoError(t, err)
}

func TestStore_DoCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedListing(t, s, "lst-1", 5)

	err := s.Do(ctx, func(ctx context.Context, st order.Stores) error {
		_, err := st.Listings.MoveQuantity(ctx, "lst-1", 2)
		return err
	})
	require.NoError(t, err)

	l, _ := s.Listings().Get(ctx, "lst-1")
	assert.Equal(t, listing.Stock{CurrentQuantity: 3, SoldQuantity: 2}, l.Stock())
}

func TestStore_View(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedListing(t, s, "lst-1", 5)

	t.Run("Reads committed state", func(t *testing.T) {
		err := s.View(ctx, func(ctx context.Context, st order.Stores) error {
			l, err := st.Listings.Get(ctx, "lst-1")
			require.NoError(t, err)
			assert.Equal(t, 5, l.CurrentQuantity)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("Views do not block each other", func(t *testing.T) {
		err := s.View(ctx, func(ctx context.Context, st order.Stores) error {
			done := make(chan error, 1)
			go func() {
				done <- s.View(ctx, func(ctx context.Context, st order.Stores) error {
					_, err := st.Listings.Get(ctx, "lst-1")
					return err
				})
			}()
			select {
			case err := <-done:
				return err
			case <-time.After(time.Second):
				return errors.New("second view blocked behind the first")
			}
		})
		assert.NoError(t, err)
	})

	t.Run("Returned orders are copies", func(t *testing.T) {
		require.NoError(t, s.Do(ctx, func(ctx context.Context, st order.Stores) error {
			return st.Orders.Create(ctx, &order.Order{ID: "CM00042", Status: order.StatusPlaced})
		}))

		var got *order.Order
		require.NoError(t, s.View(ctx, func(ctx context.Context, st order.Stores) error {
			var err error
			got, err = st.Orders.Get(ctx, "CM00042")
			return err
		}))
		got.Status = order.StatusCancelled

		require.NoError(t, s.View(ctx, func(ctx context.Context, st order.Stores) error {
			again, err := st.Orders.Get(ctx, "CM00042")
			require.NoError(t, err)
			assert.Equal(t, order.StatusPlaced, again.Status)
			return nil
		}))
	})
}

func TestListingRepo_MoveQuantityGuards(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedListing(t, s, "lst-1", 2)
	repo := s.Listings()

	_, err := repo.MoveQuantity(ctx, "lst-1", 3)
	var stockErr *listing.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)

	_, err = repo.MoveQuantity(ctx, "lst-1", -1)
	assert.ErrorIs(t, err, listing.ErrOverRelease)

	_, err = repo.MoveQuantity(ctx, "missing", 1)
	assert.ErrorIs(t, err, listing.ErrListingNotFound)
}

func TestListingRepo_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedListing(t, s, "lst-1", 2)

	l, _ := s.Listings().Get(ctx, "lst-1")
	l.CurrentQuantity = 99

	again, _ := s.Listings().Get(ctx, "lst-1")
	assert.Equal(t, 2, again.CurrentQuantity)
}

func TestOrderRepo_List(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	customers := []order.CustomerInfo{
		{UserID: "usr-1", Name: "Alice", Email: "alice@example.com"},
		{UserID: "usr-2", Name: "Bob", Email: "bob@example.com"},
		{UserID: "usr-1", Name: "Alice", Email: "alice@example.com"},
	}
	err := s.Do(ctx, func(ctx context.Context, st order.Stores) error {
		for _, c := range customers {
			id, _ := st.Orders.NextID(ctx)
			if err := st.Orders.Create(ctx, &order.Order{ID: id, Status: order.StatusPlaced, Customer: c}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	list := func(f order.ListFilter) []string {
		var ids []string
		require.NoError(t, s.Do(ctx, func(ctx context.Context, st order.Stores) error {
			orders, err := st.Orders.List(ctx, f)
			for _, o := range orders {
				ids = append(ids, o.ID)
			}
			return err
		}))
		return ids
	}

	assert.Equal(t, []string{"CM00003", "CM00002", "CM00001"}, list(order.ListFilter{}))
	assert.Equal(t, []string{"CM00003", "CM00001"}, list(order.ListFilter{CustomerUserID: "usr-1"}))
	assert.Equal(t, []string{"CM00002"}, list(order.ListFilter{Search: "BOB"}))
	assert.Equal(t, []string{"CM00002"}, list(order.ListFilter{Limit: 1, Page: 2}))
	assert.Empty(t, list(order.ListFilter{Limit: 10, Page: 5}))

	delivered := order.StatusDelivered
	assert.Empty(t, list(order.ListFilter{Status: &delivered}))
}

func TestOrderRepo_ItemMutations(t *testing.T) {
	ctx := context.Background()
	s := New()

	o := &order.Order{
		ID:     "CM00001",
		Status: order.StatusPlaced,
		Items: []*order.OrderItem{
			{ID: "it-1", ListingID: "lst-1", Quantity: 1},
			{ID: "it-2", ListingID: "lst-2", Quantity: 2},
		},
	}

	err := s.Do(ctx, func(ctx context.Context, st order.Stores) error {
		if err := st.Orders.Create(ctx, o); err != nil {
			return err
		}
		if err := st.Orders.UpdateItem(ctx, o.ID, &order.OrderItem{ID: "it-2", Quantity: 5}); err != nil {
			return err
		}
		if err := st.Orders.DeleteItem(ctx, o.ID, "it-1"); err != nil {
			return err
		}
		assert.ErrorIs(t, st.Orders.DeleteItem(ctx, o.ID, "it-1"), order.ErrItemNotFound)

		got, err := st.Orders.Get(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 5, got.Items[0].Quantity)

		require.NoError(t, st.Orders.Delete(ctx, o.ID))
		_, err = st.Orders.Get(ctx, o.ID)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
		return nil
	})
	require.NoError(t, err)
}
