package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anonto42/nano-gallery/internal/models"
)

// MemoryStore is an in-process live-query store. It backs tests and the
// offline demo mode; nothing survives the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[models.Collection]map[string]models.Record
	version uint64
	subs    map[*subscription]struct{}
	closed  bool

	beforeCommit func(ops []Op) error
	logger       *slog.Logger
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithCommitHook runs f before every commit. A non-nil error aborts the
// transaction with nothing applied.
func WithCommitHook(f func(ops []Op) error) MemoryOption {
	return func(s *MemoryStore) { s.beforeCommit = f }
}

// WithMemoryLogger sets the logger.
func WithMemoryLogger(l *slog.Logger) MemoryOption {
	return func(s *MemoryStore) { s.logger = l }
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		records: make(map[models.Collection]map[string]models.Record),
		subs:    make(map[*subscription]struct{}),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe implements Store.
func (s *MemoryStore) Subscribe(ctx context.Context, q Query, fn Listener) (Unsubscribe, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	sub := newSubscription(ctx, q, fn)
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	sub.onStop(func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
	})
	go s.push(sub)
	return sub.unsubscribe(), nil
}

func (s *MemoryStore) push(sub *subscription) {
	s.mu.RLock()
	records := s.snapshotLocked(sub.query)
	version := s.version + 1
	s.mu.RUnlock()
	sub.deliver(version, Snapshot{Records: records})
}

func (s *MemoryStore) snapshotLocked(q Query) []models.Record {
	var all []models.Record
	if q.ID != "" {
		if r, ok := s.records[q.Collection][q.ID]; ok {
			all = append(all, r)
		}
	} else {
		all = make([]models.Record, 0, len(s.records[q.Collection]))
		for _, r := range s.records[q.Collection] {
			all = append(all, r)
		}
	}
	matched := q.Apply(all)
	out := make([]models.Record, len(matched))
	for i, r := range matched {
		out[i] = cloneRecord(r)
	}
	return out
}

// Transact implements Store.
func (s *MemoryStore) Transact(ctx context.Context, ops []Op) error {
	if err := validateOps(ops); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.beforeCommit != nil {
		if err := s.beforeCommit(ops); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("memory transact: %w", err)
		}
	}

	// Check every op against the state the earlier ops leave behind before
	// touching anything.
	exists := make(map[string]bool)
	key := func(c models.Collection, id string) string { return string(c) + "/" + id }
	for i, op := range ops {
		k := key(op.Collection, op.ID)
		present, seen := exists[k]
		if !seen {
			_, present = s.records[op.Collection][op.ID]
		}
		switch op.Kind {
		case OpCreate:
			if present {
				s.mu.Unlock()
				return fmt.Errorf("memory transact: op %d: %w: %s/%s", i, ErrConflict, op.Collection, op.ID)
			}
			exists[k] = true
		case OpUpdate:
			exists[k] = true
		case OpDelete:
			exists[k] = false
		}
	}

	for _, op := range ops {
		coll := s.records[op.Collection]
		if coll == nil {
			coll = make(map[string]models.Record)
			s.records[op.Collection] = coll
		}
		switch op.Kind {
		case OpCreate, OpUpdate:
			coll[op.ID] = cloneRecord(op.Record)
		case OpDelete:
			delete(coll, op.ID)
		}
	}
	s.version++
	subs := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	s.logger.Debug("memory store committed", "ops", len(ops))
	for _, sub := range subs {
		if touches(sub.query, ops) {
			go s.push(sub)
		}
	}
	return nil
}

func touches(q Query, ops []Op) bool {
	for _, op := range ops {
		if op.Collection == q.Collection {
			return true
		}
	}
	return false
}

// Close stops every subscription.
func (s *MemoryStore) Close(context.Context) error {
	s.mu.Lock()
	s.closed = true
	subs := s.subs
	s.subs = make(map[*subscription]struct{})
	s.mu.Unlock()
	for sub := range subs {
		sub.stop()
	}
	return nil
}

func cloneRecord(r models.Record) models.Record {
	switch v := r.(type) {
	case *models.Reaction:
		c := *v
		return &c
	case *models.Comment:
		c := *v
		return &c
	case *models.FeedEvent:
		c := *v
		return &c
	}
	return r
}
