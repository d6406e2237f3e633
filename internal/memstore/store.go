// Package memstore keeps listings and orders in process memory. A unit of
// work runs against a private copy of the data that replaces the live copy
// only when the work succeeds; reads share the live copy under a read lock.
//
// Every write serializes on one lock and copies the whole data set, so the
// memory driver is meant for development and tests, not production traffic.
package memstore

import (
	"context"
	"sync"
	"time"

	"cadre-be/internal/listing"
	"cadre-be/internal/order"
)

type state struct {
	listings map[string]*listing.Listing
	orders   map[string]*order.Order
	seq      int64
}

func (s *state) clone() *state {
	c := &state{
		listings: make(map[string]*listing.Listing, len(s.listings)),
		orders:   make(map[string]*order.Order, len(s.orders)),
		seq:      s.seq,
	}
	for id, l := range s.listings {
		c.listings[id] = cloneListing(l)
	}
	for id, o := range s.orders {
		c.orders[id] = cloneOrder(o)
	}
	return c
}

// Store serializes writes behind one lock; views run concurrently.
type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

func New() *Store {
	return &Store{
		state: &state{
			listings: map[string]*listing.Listing{},
			orders:   map[string]*order.Order{},
		},
		now: time.Now,
	}
}

// Do implements order.UnitOfWork.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, st order.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	err := fn(ctx, order.Stores{
		Orders:   &orderRepo{st: work, now: s.now},
		Listings: &listingRepo{st: work, now: s.now},
	})
	if err != nil {
		return err
	}

	s.state = work
	return nil
}

// View implements order.UnitOfWork. Repositories hand out copies, so the
// live state is read without cloning it.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, st order.Stores) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(ctx, order.Stores{
		Orders:   &orderRepo{st: s.state, now: s.now},
		Listings: &listingRepo{st: s.state, now: s.now},
	})
}

// Listings returns a repository whose calls each commit on their own.
func (s *Store) Listings() listing.Repository {
	return &autoListings{store: s}
}

type autoListings struct {
	store *Store
}

func (a *autoListings) run(fn func(r *listingRepo) error) error {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return fn(&listingRepo{st: a.store.state, now: a.store.now})
}

func (a *autoListings) Create(ctx context.Context, l *listing.Listing) error {
	return a.run(func(r *listingRepo) error { return r.Create(ctx, l) })
}

func (a *autoListings) Get(ctx context.Context, id string) (l *listing.Listing, err error) {
	err = a.run(func(r *listingRepo) error {
		l, err = r.Get(ctx, id)
		return err
	})
	return l, err
}

func (a *autoListings) GetForUpdate(ctx context.Context, id string) (*listing.Listing, error) {
	return a.Get(ctx, id)
}

func (a *autoListings) MoveQuantity(ctx context.Context, id string, delta int) (s listing.Stock, err error) {
	err = a.run(func(r *listingRepo) error {
		s, err = r.MoveQuantity(ctx, id, delta)
		return err
	})
	return s, err
}

func (a *autoListings) UpdateStatus(ctx context.Context, id string, status listing.Status) error {
	return a.run(func(r *listingRepo) error { return r.UpdateStatus(ctx, id, status) })
}
