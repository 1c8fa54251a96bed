package repositories

import (
	"context"
	"log/slog"

	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/anonto42/nano-gallery/internal/store"
	"github.com/anonto42/nano-gallery/internal/validators"
)

// ReactionRepository defines the live queries over reactions
type ReactionRepository interface {
	SubscribeReactions(ctx context.Context, imageID string, fn func([]models.Reaction, error)) (store.Unsubscribe, error)
	GetReactionsByImageID(ctx context.Context, imageID string) ([]models.Reaction, error)
}

// LiveReactionRepository implements ReactionRepository over a store.Store
type LiveReactionRepository struct {
	live liveQuery[models.Reaction]
}

// NewLiveReactionRepository creates a new LiveReactionRepository
func NewLiveReactionRepository(s store.Store, v *validators.Validator, logger *slog.Logger) *LiveReactionRepository {
	return &LiveReactionRepository{live: liveQuery[models.Reaction]{store: s, validator: v, logger: logger}}
}

func reactionsQuery(imageID string) store.Query {
	return store.Query{Collection: models.CollectionReactions, ImageID: imageID}
}

// SubscribeReactions pushes the reactions of one image on every change.
func (r *LiveReactionRepository) SubscribeReactions(ctx context.Context, imageID string, fn func([]models.Reaction, error)) (store.Unsubscribe, error) {
	return r.live.subscribe(ctx, reactionsQuery(imageID), fn)
}

// GetReactionsByImageID reads the current reactions of one image.
func (r *LiveReactionRepository) GetReactionsByImageID(ctx context.Context, imageID string) ([]models.Reaction, error) {
	return r.live.once(ctx, reactionsQuery(imageID))
}
