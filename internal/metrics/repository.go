// Package metrics keeps in-process counters for the order engine. They are
// reported by /health and reset only on restart.
package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

func (c *Counter) reset() {
	atomic.StoreUint64(&c.value, 0)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

var (
	OrdersPlaced    Counter
	StockRejections Counter
	ReleasesClamped Counter
	ItemsSkipped    Counter
	EventsFailed    Counter
	RequestsServed  Counter
	RequestsFailed  Counter
)

var registry = map[string]*Counter{
	"orders_placed":    &OrdersPlaced,
	"stock_rejections": &StockRejections,
	"releases_clamped": &ReleasesClamped,
	"items_skipped":    &ItemsSkipped,
	"events_failed":    &EventsFailed,
	"requests_served":  &RequestsServed,
	"requests_failed":  &RequestsFailed,
}

// Snapshot returns the current value of every counter by name.
func Snapshot() map[string]uint64 {
	out := make(map[string]uint64, len(registry))
	for name, c := range registry {
		out[name] = c.Load()
	}
	return out
}

// Reset zeroes every counter. Tests only.
func Reset() {
	for _, c := range registry {
		c.reset()
	}
}
