package order

import (
	"fmt"
	"sort"
)

// StatusChecks is the fulfillment checklist staff tick per item. The flags
// are independent of each other.
type StatusChecks struct {
	ItemReceived     bool `json:"itemReceived"`
	ItemVerified     bool `json:"itemVerified"`
	ItemPacked       bool `json:"itemPacked"`
	ReadyForShipment bool `json:"readyForShipment"`
}

func (c *StatusChecks) field(name string) *bool {
	switch name {
	case "itemReceived":
		return &c.ItemReceived
	case "itemVerified":
		return &c.ItemVerified
	case "itemPacked":
		return &c.ItemPacked
	case "readyForShipment":
		return &c.ReadyForShipment
	}
	return nil
}

// ValidateCheckNames rejects any key that is not a checklist field.
func ValidateCheckNames(updates map[string]bool) error {
	var unknown []string
	var zero StatusChecks
	for name := range updates {
		if zero.field(name) == nil {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: unknown status checks %v", ErrInvalidField, unknown)
	}
	return nil
}

// Merge applies updates on top of the current checklist. Nothing changes
// if any name is unknown.
func (c *StatusChecks) Merge(updates map[string]bool) error {
	if err := ValidateCheckNames(updates); err != nil {
		return err
	}
	for name, v := range updates {
		*c.field(name) = v
	}
	return nil
}
