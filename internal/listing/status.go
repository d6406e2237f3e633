package listing

import "fmt"

type Status string

const (
	StatusPending   Status = "Pending"
	StatusForSale   Status = "For Sale"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusSold      Status = "Sold"

	// StatusLegacySFS is only ever read from old rows; it behaves as For Sale.
	StatusLegacySFS Status = "SFS"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusForSale: true, StatusCancelled: true},
	StatusForSale:   {StatusConfirmed: true, StatusCancelled: true},
	StatusLegacySFS: {StatusForSale: true, StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusSold: true, StatusForSale: true},
	StatusSold:      {StatusForSale: true},
	StatusCancelled: {},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := validNext[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// CanTransition reports whether a listing may move from one status to another.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) IsForSale() bool {
	return s == StatusForSale || s == StatusLegacySFS
}
