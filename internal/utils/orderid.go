package utils

import (
	"fmt"
	"strconv"
	"strings"
)

const OrderIDPrefix = "CM"

// FormatOrderID renders a sequence number as a customer-facing order id,
// zero padded to five digits (CM00042). Larger numbers keep all digits.
func FormatOrderID(n int64) string {
	return fmt.Sprintf("%s%05d", OrderIDPrefix, n)
}

// ParseOrderID returns the sequence number behind an order id.
func ParseOrderID(id string) (int64, error) {
	digits, ok := strings.CutPrefix(id, OrderIDPrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("invalid order id %q", id)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid order id %q", id)
	}
	return n, nil
}
