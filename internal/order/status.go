package order

import "fmt"

type Status string

const (
	StatusPlaced         Status = "placed"
	StatusOutForDelivery Status = "out for delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// validNext is the only place order transitions are decided.
var validNext = map[Status]map[Status]bool{
	StatusPlaced:         {StatusOutForDelivery: true, StatusDelivered: true, StatusCancelled: true},
	StatusOutForDelivery: {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:      {StatusCancelled: true},
	StatusCancelled:      {},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := validNext[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) IsTerminal() bool {
	return len(validNext[s]) == 0
}

// IsClosed reports whether the order's items may no longer be edited.
func (s Status) IsClosed() bool {
	return s == StatusDelivered || s == StatusCancelled
}
