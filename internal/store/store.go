// Package store defines the two primitives the gallery needs from a remote
// live-query database, subscribe-with-filter and atomic multi-record
// transactions, plus the backends that provide them.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/anonto42/nano-gallery/internal/models"
)

var (
	// ErrConflict is returned when a create targets an existing record.
	ErrConflict = errors.New("store: record already exists")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store: closed")
	// ErrUnknownCollection is returned for collections without a record type.
	ErrUnknownCollection = errors.New("store: unknown collection")
)

// Query selects records of one collection. Zero-valued fields do not filter.
type Query struct {
	Collection models.Collection
	// ID restricts the result to a single record.
	ID string
	// ImageID restricts the result to records attached to one image.
	ImageID string
	// NewestFirst orders by createdAt descending before Limit is applied.
	NewestFirst bool
	Limit       int
}

// Matches reports whether r satisfies the query's filters.
func (q Query) Matches(r models.Record) bool {
	if r.Collection() != q.Collection {
		return false
	}
	if q.ID != "" && r.GetID() != q.ID {
		return false
	}
	if q.ImageID != "" && r.GetImageID() != q.ImageID {
		return false
	}
	return true
}

func (q Query) validate() error {
	if models.NewRecord(q.Collection) == nil {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, q.Collection)
	}
	return nil
}

// Apply filters, orders and limits records in memory.
func (q Query) Apply(records []models.Record) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	if q.NewestFirst {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].GetCreatedAt().After(out[j].GetCreatedAt())
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// OpKind is the kind of a write inside a transaction
type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Op is one write of a transaction. Record is nil for deletes.
type Op struct {
	Kind       OpKind
	Collection models.Collection
	ID         string
	Record     models.Record
}

// Create inserts r; the transaction fails if r's id already exists.
func Create(r models.Record) Op {
	return Op{Kind: OpCreate, Collection: r.Collection(), ID: r.GetID(), Record: r}
}

// Update upserts r.
func Update(r models.Record) Op {
	return Op{Kind: OpUpdate, Collection: r.Collection(), ID: r.GetID(), Record: r}
}

// Delete removes a record. Deleting a missing record is not an error.
func Delete(c models.Collection, id string) Op {
	return Op{Kind: OpDelete, Collection: c, ID: id}
}

func validateOps(ops []Op) error {
	if len(ops) == 0 {
		return errors.New("store: empty transaction")
	}
	for i, op := range ops {
		if op.ID == "" {
			return fmt.Errorf("store: op %d (%s %s): missing id", i, op.Kind, op.Collection)
		}
		if models.NewRecord(op.Collection) == nil {
			return fmt.Errorf("%w: op %d: %q", ErrUnknownCollection, i, op.Collection)
		}
		if op.Kind != OpDelete && op.Record == nil {
			return fmt.Errorf("store: op %d (%s %s): missing record", i, op.Kind, op.Collection)
		}
	}
	return nil
}

// Snapshot is the full result of a query at one point in time. Err is set
// when the subscription failed; no further snapshots follow an error.
type Snapshot struct {
	Records []models.Record
	Err     error
}

// Listener receives snapshots. Deliveries to one listener never overlap.
type Listener func(Snapshot)

// Unsubscribe stops a subscription. No delivery starts after it returns and
// it is safe to call more than once, including from inside the listener.
type Unsubscribe func()

// Store is a remote live-query database.
type Store interface {
	// Subscribe delivers the current result of q, then a fresh result after
	// every change, until ctx ends or the returned Unsubscribe is called.
	Subscribe(ctx context.Context, q Query, fn Listener) (Unsubscribe, error)
	// Transact applies ops atomically: all of them or none.
	Transact(ctx context.Context, ops []Op) error
	Close(ctx context.Context) error
}

// Once reads the current result of q through a short-lived subscription.
func Once(ctx context.Context, s Store, q Query) ([]models.Record, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	first := make(chan Snapshot, 1)
	unsubscribe, err := s.Subscribe(ctx, q, func(snap Snapshot) {
		select {
		case first <- snap:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	defer unsubscribe()

	select {
	case snap := <-first:
		return snap.Records, snap.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
