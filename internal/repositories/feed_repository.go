package repositories

import (
	"context"
	"log/slog"
	"sort"

	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/anonto42/nano-gallery/internal/store"
	"github.com/anonto42/nano-gallery/internal/validators"
)

// FeedRepository defines the live query over the most recent feed events
type FeedRepository interface {
	SubscribeFeed(ctx context.Context, fn func([]models.FeedEvent, error)) (store.Unsubscribe, error)
	GetRecentFeedEvents(ctx context.Context) ([]models.FeedEvent, error)
}

// LiveFeedRepository implements FeedRepository over a store.Store
type LiveFeedRepository struct {
	live  liveQuery[models.FeedEvent]
	limit int
}

// NewLiveFeedRepository creates a new LiveFeedRepository returning at most
// limit events, newest first.
func NewLiveFeedRepository(s store.Store, v *validators.Validator, limit int, logger *slog.Logger) *LiveFeedRepository {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return &LiveFeedRepository{
		live: liveQuery[models.FeedEvent]{
			store:     s,
			validator: v,
			logger:    logger,
			order: func(events []models.FeedEvent) {
				sort.SliceStable(events, func(i, j int) bool {
					return events[i].CreatedAt.After(events[j].CreatedAt)
				})
			},
		},
		limit: limit,
	}
}

func (r *LiveFeedRepository) query() store.Query {
	return store.Query{Collection: models.CollectionFeedEvents, NewestFirst: true, Limit: r.limit}
}

// SubscribeFeed pushes the most recent events on every change.
func (r *LiveFeedRepository) SubscribeFeed(ctx context.Context, fn func([]models.FeedEvent, error)) (store.Unsubscribe, error) {
	return r.live.subscribe(ctx, r.query(), fn)
}

// GetRecentFeedEvents reads the most recent events.
func (r *LiveFeedRepository) GetRecentFeedEvents(ctx context.Context) ([]models.FeedEvent, error) {
	return r.live.once(ctx, r.query())
}
