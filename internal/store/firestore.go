package store

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/nano-gallery/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the hosted realtime backend. Subscriptions are Firestore
// snapshot listeners and transactions run through RunTransaction.
type FirestoreStore struct {
	client *firestore.Client
	logger *slog.Logger
}

// NewFirestoreStore wraps a Firestore client.
func NewFirestoreStore(client *firestore.Client, logger *slog.Logger) *FirestoreStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FirestoreStore{client: client, logger: logger}
}

// Subscribe implements Store.
func (s *FirestoreStore) Subscribe(ctx context.Context, q Query, fn Listener) (Unsubscribe, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	sub := newSubscription(ctx, q, fn)
	if q.ID != "" {
		it := s.client.Collection(string(q.Collection)).Doc(q.ID).Snapshots(sub.ctx)
		go s.watchDocument(sub, it)
	} else {
		it := s.query(q).Snapshots(sub.ctx)
		go s.watchQuery(sub, it)
	}
	return sub.unsubscribe(), nil
}

func (s *FirestoreStore) query(q Query) firestore.Query {
	fq := s.client.Collection(string(q.Collection)).Query
	if q.ImageID != "" {
		fq = fq.Where("imageId", "==", q.ImageID)
	}
	if q.NewestFirst {
		fq = fq.OrderBy("createdAt", firestore.Desc)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	return fq
}

// The iterators are stopped by the goroutine that reads them; Stop must not
// race with Next. Cancelling the subscription context unblocks Next.
func (s *FirestoreStore) watchQuery(sub *subscription, it *firestore.QuerySnapshotIterator) {
	defer it.Stop()
	var version uint64
	for {
		snap, err := it.Next()
		if err != nil {
			s.fail(sub, err)
			return
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			s.fail(sub, err)
			return
		}
		records := make([]models.Record, 0, len(docs))
		for _, doc := range docs {
			if rec := s.decode(sub.query.Collection, doc); rec != nil {
				records = append(records, rec)
			}
		}
		version++
		sub.deliver(version, Snapshot{Records: sub.query.Apply(records)})
	}
}

func (s *FirestoreStore) watchDocument(sub *subscription, it *firestore.DocumentSnapshotIterator) {
	defer it.Stop()
	var version uint64
	for {
		doc, err := it.Next()
		if err != nil {
			s.fail(sub, err)
			return
		}
		var records []models.Record
		if doc.Exists() {
			if rec := s.decode(sub.query.Collection, doc); rec != nil {
				records = append(records, rec)
			}
		}
		version++
		sub.deliver(version, Snapshot{Records: records})
	}
}

func (s *FirestoreStore) decode(c models.Collection, doc *firestore.DocumentSnapshot) models.Record {
	rec := models.NewRecord(c)
	if err := doc.DataTo(rec); err != nil {
		s.logger.Warn("skipping undecodable document", "collection", c, "id", doc.Ref.ID, "error", err)
		return nil
	}
	rec.SetID(doc.Ref.ID)
	return rec
}

func (s *FirestoreStore) fail(sub *subscription, err error) {
	if sub.ctx.Err() != nil {
		return
	}
	s.logger.Error("firestore listener failed", "collection", sub.query.Collection, "error", err)
	sub.deliver(0, Snapshot{Err: fmt.Errorf("firestore %s: %w", sub.query.Collection, err)})
}

// Transact implements Store.
func (s *FirestoreStore) Transact(ctx context.Context, ops []Op) error {
	if err := validateOps(ops); err != nil {
		return err
	}
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for i, op := range ops {
			ref := s.client.Collection(string(op.Collection)).Doc(op.ID)
			var err error
			switch op.Kind {
			case OpCreate:
				err = tx.Create(ref, op.Record)
			case OpUpdate:
				err = tx.Set(ref, op.Record)
			case OpDelete:
				err = tx.Delete(ref)
			}
			if err != nil {
				return fmt.Errorf("op %d (%s %s/%s): %w", i, op.Kind, op.Collection, op.ID, err)
			}
		}
		return nil
	})
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("firestore transact: %w: %v", ErrConflict, err)
	}
	if err != nil {
		return fmt.Errorf("firestore transact: %w", err)
	}
	return nil
}

// Close releases the client.
func (s *FirestoreStore) Close(context.Context) error {
	return s.client.Close()
}
