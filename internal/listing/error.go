package listing

import (
	"errors"
	"fmt"
)

var (
	ErrListingNotFound   = errors.New("listing not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidListing    = errors.New("invalid listing")
	ErrInvalidStatus     = errors.New("invalid listing status")
	ErrInvalidTransition = errors.New("listing status transition not allowed")

	// ErrOverRelease means a release asked for more than the sold bucket holds.
	ErrOverRelease = errors.New("release exceeds sold quantity")
)

// StockError names the listing and what was left when a reservation failed.
type StockError struct {
	ListingID string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for listing %s: requested %d, only %d left",
		e.ListingID, e.Requested, e.Available)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
