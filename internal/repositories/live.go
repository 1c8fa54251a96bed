package repositories

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/anonto42/nano-gallery/internal/store"
	"github.com/anonto42/nano-gallery/internal/validators"
)

// ErrNotFound is returned when a looked-up record does not exist
var ErrNotFound = errors.New("record not found")

// DefaultFeedLimit is how many feed events the live feed shows.
const DefaultFeedLimit = 20

// overfetch is how many records are read from the store per record wanted
// by a limited query, so dropped records do not shrink the result.
const overfetch = 2

// liveQuery decodes store snapshots into typed records at the boundary.
// Records that are not of type T or fail validation are dropped. A query
// Limit applies to the records that survive decoding.
type liveQuery[T any] struct {
	store     store.Store
	validator *validators.Validator
	logger    *slog.Logger
	order     func([]T)
}

func (l liveQuery[T]) subscribe(ctx context.Context, q store.Query, fn func([]T, error)) (store.Unsubscribe, error) {
	limit := q.Limit
	return l.store.Subscribe(ctx, widen(q), func(snap store.Snapshot) {
		if snap.Err != nil {
			fn(nil, snap.Err)
			return
		}
		fn(l.decode(snap.Records, limit), nil)
	})
}

func (l liveQuery[T]) once(ctx context.Context, q store.Query) ([]T, error) {
	records, err := store.Once(ctx, l.store, widen(q))
	if err != nil {
		return nil, err
	}
	return l.decode(records, q.Limit), nil
}

func widen(q store.Query) store.Query {
	if q.Limit > 0 {
		q.Limit *= overfetch
	}
	return q
}

func (l liveQuery[T]) decode(records []models.Record, limit int) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		typed, ok := any(r).(*T)
		if !ok {
			l.logger.Warn("dropping record of unexpected type", "collection", r.Collection(), "id", r.GetID())
			continue
		}
		if err := l.validator.Record(r); err != nil {
			l.logger.Warn("dropping invalid record", "collection", r.Collection(), "id", r.GetID(), "error", err)
			continue
		}
		out = append(out, *typed)
	}
	if l.order != nil {
		l.order(out)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
