// Package seen records webhook event IDs so redelivered events can be
// skipped. The platform redelivers a webhook when an earlier delivery
// attempt failed, flagging the copies with deliveryContext.isRedelivery.
package seen

import (
	"context"
	"sync"
	"time"
)

// Store persists event IDs across requests.
type Store interface {
	// Mark records id and reports whether it was already recorded.
	Mark(id string) (bool, error)
}

// InMemory is a process-local Store backed by a sync.Map. It grows without
// bound unless Clean or StartCleanup is used.
type InMemory struct {
	ids sync.Map
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Mark implements Store.
func (s *InMemory) Mark(id string) (bool, error) {
	_, loaded := s.ids.LoadOrStore(id, struct{}{})
	return loaded, nil
}

// Clean drops every recorded ID. The worst case after a clean is one
// redelivered event slipping through.
func (s *InMemory) Clean() {
	s.ids.Range(func(key, _ interface{}) bool {
		s.ids.Delete(key)
		return true
	})
}

// StartCleanup clears the store on every interval tick until ctx is done.
// Call it in its own goroutine to bound memory usage.
func (s *InMemory) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Clean()
		}
	}
}
