package store

import (
	"context"
	"sync"
	"sync/atomic"
)

// subscription serializes deliveries to one listener and drops them once
// stopped. Backends feed it from their own goroutines.
type subscription struct {
	query  Query
	fn     Listener
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	stopped  atomic.Bool
	version  uint64
	hooks    []func()
	released bool
	once     sync.Once
}

func newSubscription(ctx context.Context, q Query, fn Listener) *subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &subscription{query: q, fn: fn, ctx: ctx, cancel: cancel}
	go func() {
		<-ctx.Done()
		s.stop()
	}()
	return s
}

// onStop registers a release hook run once when the subscription stops.
func (s *subscription) onStop(f func()) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		f()
		return
	}
	s.hooks = append(s.hooks, f)
	s.mu.Unlock()
}

// deliver hands snap to the listener unless the subscription has stopped or
// a snapshot with a newer version was already delivered. A zero version
// disables the staleness check.
func (s *subscription) deliver(version uint64, snap Snapshot) bool {
	if s.stopped.Load() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped.Load() {
		return false
	}
	if version != 0 {
		if version <= s.version {
			return false
		}
		s.version = version
	}
	s.fn(snap)
	return true
}

func (s *subscription) stop() {
	s.stopped.Store(true)
	s.once.Do(func() {
		s.cancel()
		go func() {
			s.mu.Lock()
			hooks := s.hooks
			s.hooks = nil
			s.released = true
			s.mu.Unlock()
			for _, f := range hooks {
				f()
			}
		}()
	})
}

func (s *subscription) unsubscribe() Unsubscribe {
	return s.stop
}
