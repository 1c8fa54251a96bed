package repositories

import (
	"context"
	"log/slog"
	"sort"

	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/anonto42/nano-gallery/internal/store"
	"github.com/anonto42/nano-gallery/internal/validators"
)

// CommentRepository defines the live queries over comments
type CommentRepository interface {
	SubscribeComments(ctx context.Context, imageID string, fn func([]models.Comment, error)) (store.Unsubscribe, error)
	GetCommentsByImageID(ctx context.Context, imageID string) ([]models.Comment, error)
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
}

// LiveCommentRepository implements CommentRepository over a store.Store.
// Comments are always returned newest first.
type LiveCommentRepository struct {
	live liveQuery[models.Comment]
}

// NewLiveCommentRepository creates a new LiveCommentRepository
func NewLiveCommentRepository(s store.Store, v *validators.Validator, logger *slog.Logger) *LiveCommentRepository {
	return &LiveCommentRepository{live: liveQuery[models.Comment]{
		store:     s,
		validator: v,
		logger:    logger,
		order:     sortCommentsNewestFirst,
	}}
}

func sortCommentsNewestFirst(comments []models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
}

func commentsQuery(imageID string) store.Query {
	return store.Query{Collection: models.CollectionComments, ImageID: imageID}
}

// SubscribeComments pushes the comments of one image on every change.
func (r *LiveCommentRepository) SubscribeComments(ctx context.Context, imageID string, fn func([]models.Comment, error)) (store.Unsubscribe, error) {
	return r.live.subscribe(ctx, commentsQuery(imageID), fn)
}

// GetCommentsByImageID reads the current comments of one image.
func (r *LiveCommentRepository) GetCommentsByImageID(ctx context.Context, imageID string) ([]models.Comment, error) {
	return r.live.once(ctx, commentsQuery(imageID))
}

// GetCommentByID reads one comment, or returns ErrNotFound.
func (r *LiveCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	comments, err := r.live.once(ctx, store.Query{Collection: models.CollectionComments, ID: id})
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, ErrNotFound
	}
	return &comments[0], nil
}
