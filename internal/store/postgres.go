package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/anonto42/nano-gallery/internal/models"
	"gorm.io/gorm"
)

// PostgresStore keeps records in PostgreSQL through GORM. Postgres has no
// push channel here, so live queries poll on an interval; writes made through
// this store wake local subscribers immediately.
type PostgresStore struct {
	db       *gorm.DB
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	subs map[*subscription]chan struct{}
}

// NewPostgresStore creates a PostgresStore. The db should be opened with
// TranslateError so duplicate keys map to ErrConflict.
func NewPostgresStore(db *gorm.DB, interval time.Duration, logger *slog.Logger) *PostgresStore {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{
		db:       db,
		interval: interval,
		logger:   logger,
		subs:     make(map[*subscription]chan struct{}),
	}
}

// Migrate creates or updates the tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&models.Reaction{}, &models.Comment{}, &models.FeedEvent{})
}

// Subscribe implements Store.
func (s *PostgresStore) Subscribe(ctx context.Context, q Query, fn Listener) (Unsubscribe, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	sub := newSubscription(ctx, q, fn)
	nudge := make(chan struct{}, 1)

	s.mu.Lock()
	s.subs[sub] = nudge
	s.mu.Unlock()
	sub.onStop(func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
	})

	go s.poll(sub, nudge)
	return sub.unsubscribe(), nil
}

func (s *PostgresStore) poll(sub *subscription, nudge <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var (
		version uint64
		last    uint64
	)
	for {
		records, err := s.load(sub.ctx, sub.query)
		switch {
		case err != nil && sub.ctx.Err() != nil:
			return
		case err != nil:
			// Transient: keep the last snapshot and retry on the next tick.
			s.logger.Warn("postgres poll failed", "collection", sub.query.Collection, "error", err)
		default:
			fp := fingerprint(records)
			if version == 0 || fp != last {
				last = fp
				version++
				sub.deliver(version, Snapshot{Records: records})
			}
		}

		select {
		case <-sub.ctx.Done():
			return
		case <-ticker.C:
		case <-nudge:
		}
	}
}

func fingerprint(records []models.Record) uint64 {
	h := fnv.New64a()
	for _, r := range records {
		b, _ := json.Marshal(r)
		h.Write(b)
		h.Write([]byte{0})
	}
	return h.Sum64()
}

func (s *PostgresStore) load(ctx context.Context, q Query) ([]models.Record, error) {
	tx := s.db.WithContext(ctx)
	if q.ID != "" {
		tx = tx.Where("id = ?", q.ID)
	}
	if q.ImageID != "" {
		tx = tx.Where("image_id = ?", q.ImageID)
	}
	if q.NewestFirst {
		tx = tx.Order("created_at DESC")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var out []models.Record
	switch q.Collection {
	case models.CollectionReactions:
		var rows []models.Reaction
		if err := tx.Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			out = append(out, &rows[i])
		}
	case models.CollectionComments:
		var rows []models.Comment
		if err := tx.Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			out = append(out, &rows[i])
		}
	case models.CollectionFeedEvents:
		var rows []models.FeedEvent
		if err := tx.Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			out = append(out, &rows[i])
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, q.Collection)
	}
	return out, nil
}

// Transact implements Store.
func (s *PostgresStore) Transact(ctx context.Context, ops []Op) error {
	if err := validateOps(ops); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, op := range ops {
			var err error
			switch op.Kind {
			case OpCreate:
				err = tx.Create(op.Record).Error
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					err = fmt.Errorf("%w: %v", ErrConflict, err)
				}
			case OpUpdate:
				err = tx.Save(op.Record).Error
			case OpDelete:
				err = tx.Where("id = ?", op.ID).Delete(models.NewRecord(op.Collection)).Error
			}
			if err != nil {
				return fmt.Errorf("op %d (%s %s/%s): %w", i, op.Kind, op.Collection, op.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("postgres transact: %w", err)
	}
	s.wake(ops)
	return nil
}

func (s *PostgresStore) wake(ops []Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub, nudge := range s.subs {
		if !touches(sub.query, ops) {
			continue
		}
		select {
		case nudge <- struct{}{}:
		default:
		}
	}
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
