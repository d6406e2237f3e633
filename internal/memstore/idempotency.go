package memstore

import (
	"context"
	"sync"
)

// Idempotency implements order.IdempotencyStore in process memory. Keys never
// expire. An empty value marks a claim whose request is still running.
type Idempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func NewIdempotency() *Idempotency {
	return &Idempotency{keys: map[string]string{}}
}

func (s *Idempotency) Claim(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.keys[key]; ok {
		return id, false, nil
	}
	s.keys[key] = ""
	return "", true, nil
}

func (s *Idempotency) Complete(_ context.Context, key, orderID string) error {
	s.mu.Lock()
	s.keys[key] = orderID
	s.mu.Unlock()
	return nil
}

// Release drops key only while it is still pending.
func (s *Idempotency) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys[key] == "" {
		delete(s.keys, key)
	}
	return nil
}
