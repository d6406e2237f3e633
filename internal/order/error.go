package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrItemNotFound      = errors.New("order item not found")
	ErrEmptyOrder        = errors.New("order has no valid items")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = fmt.Errorf("%w: transition not allowed", ErrInvalidStatus)
	ErrInvalidField      = errors.New("invalid field")
	ErrOrderClosed       = errors.New("order is closed for changes")

	ErrRequestInProgress = errors.New("a request with this idempotency key is still in progress")
)
