// Package interactions writes reactions and comments together with their
// feed events, and derives reaction aggregates from live snapshots.
package interactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/anonto42/nano-gallery/internal/identity"
	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/anonto42/nano-gallery/internal/repositories"
	"github.com/anonto42/nano-gallery/internal/store"
	"github.com/google/uuid"
)

// Validation errors. These are returned before anything reaches the store.
var (
	ErrEmptyImageID    = errors.New("image id is empty")
	ErrEmptyEmoji      = errors.New("emoji is empty")
	ErrEmptyComment    = errors.New("comment text is empty")
	ErrCommentTooLong  = fmt.Errorf("comment text exceeds %d characters", models.MaxCommentLength)
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotAuthor       = errors.New("only the author can delete this comment")
)

// DefaultEmojis are the reactions offered by the gallery views.
var DefaultEmojis = []string{"🔥", "💖", "✨", "🦄"}

// reactionNamespace scopes the deterministic reaction ids.
var reactionNamespace = uuid.MustParse("6f1c2d8e-5b7a-4c39-9e0d-3a8f4b2c1d70")

// Service is the interaction mutator. All writes are attributed to the
// identity held by the injected provider at the time of the write.
type Service struct {
	store     store.Store
	reactions repositories.ReactionRepository
	comments  repositories.CommentRepository
	identity  *identity.Provider
	newID     func() string
	now       func() time.Time
	logger    *slog.Logger

	// serializes toggles from this installation
	mu sync.Mutex
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the id generator for comments and feed events.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a new Service
func NewService(
	s store.Store,
	reactionRepo repositories.ReactionRepository,
	commentRepo repositories.CommentRepository,
	provider *identity.Provider,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &Service{
		store:     s,
		reactions: reactionRepo,
		comments:  commentRepo,
		identity:  provider,
		newID:     uuid.NewString,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ReactionResult tells what a toggle did.
type ReactionResult struct {
	Added       bool   `json:"added"`
	ReactionID  string `json:"reaction_id"`
	FeedEventID string `json:"feed_event_id,omitempty"`
}

// ReactionID is the id of the single reaction a user can hold on an image
// with a given emoji.
func ReactionID(userID, imageID, emoji string) string {
	return uuid.NewSHA1(reactionNamespace, []byte(userID+"\x00"+imageID+"\x00"+emoji)).String()
}

// AddReaction toggles the current user's emoji on an image. Either way the
// reaction write and its feed event go out in one transaction: adding
// creates both, removing deletes the reaction and appends an event marked
// Removed.
func (s *Service) AddReaction(ctx context.Context, imageID, emoji string) (ReactionResult, error) {
	imageID = strings.TrimSpace(imageID)
	emoji = strings.TrimSpace(emoji)
	if imageID == "" {
		return ReactionResult{}, ErrEmptyImageID
	}
	if emoji == "" {
		return ReactionResult{}, ErrEmptyEmoji
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	me := s.identity.GetOrCreate()
	current, err := s.reactions.GetReactionsByImageID(ctx, imageID)
	if err != nil {
		return ReactionResult{}, fmt.Errorf("add reaction: read reactions: %w", err)
	}

	now := s.now().UTC()
	event := &models.FeedEvent{
		ID:          s.newID(),
		Kind:        models.FeedEventReaction,
		ImageID:     imageID,
		UserID:      me.ID,
		DisplayName: me.DisplayName,
		Color:       me.Color,
		Payload:     models.FeedPayload{Emoji: emoji},
		CreatedAt:   now,
	}

	var ops []store.Op
	for _, r := range current {
		if r.UserID == me.ID && r.Emoji == emoji {
			ops = append(ops, store.Delete(models.CollectionReactions, r.ID))
		}
	}
	if len(ops) > 0 {
		removedID := ops[0].ID
		event.Payload.Removed = true
		ops = append(ops, store.Create(event))
		if err := s.store.Transact(ctx, ops); err != nil {
			return ReactionResult{}, fmt.Errorf("add reaction: remove: %w", err)
		}
		s.logger.Info("reaction removed", "image_id", imageID, "emoji", emoji, "user_id", me.ID)
		return ReactionResult{Added: false, ReactionID: removedID, FeedEventID: event.ID}, nil
	}

	reaction := &models.Reaction{
		ID:        ReactionID(me.ID, imageID, emoji),
		ImageID:   imageID,
		UserID:    me.ID,
		Emoji:     emoji,
		CreatedAt: now,
	}
	if err := s.store.Transact(ctx, []store.Op{store.Create(reaction), store.Create(event)}); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Another write of the same reaction won the race; it is present.
			return ReactionResult{Added: true, ReactionID: reaction.ID}, nil
		}
		return ReactionResult{}, fmt.Errorf("add reaction: %w", err)
	}
	s.logger.Info("reaction added", "image_id", imageID, "emoji", emoji, "user_id", me.ID)
	return ReactionResult{Added: true, ReactionID: reaction.ID, FeedEventID: event.ID}, nil
}

// AddComment writes a comment and its feed event in one transaction. Text is
// trimmed; blank text is rejected with ErrEmptyComment.
func (s *Service) AddComment(ctx context.Context, imageID, text string) (*models.Comment, error) {
	imageID = strings.TrimSpace(imageID)
	text = strings.TrimSpace(text)
	if imageID == "" {
		return nil, ErrEmptyImageID
	}
	if text == "" {
		return nil, ErrEmptyComment
	}
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return nil, ErrCommentTooLong
	}

	me := s.identity.GetOrCreate()
	now := s.now().UTC()
	comment := &models.Comment{
		ID:          s.newID(),
		ImageID:     imageID,
		UserID:      me.ID,
		DisplayName: me.DisplayName,
		Color:       me.Color,
		Text:        text,
		CreatedAt:   now,
	}
	event := &models.FeedEvent{
		ID:          s.newID(),
		Kind:        models.FeedEventComment,
		ImageID:     imageID,
		UserID:      me.ID,
		DisplayName: me.DisplayName,
		Color:       me.Color,
		Payload:     models.FeedPayload{Text: text},
		CreatedAt:   now,
	}
	if err := s.store.Transact(ctx, []store.Op{store.Create(comment), store.Create(event)}); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	s.logger.Info("comment added", "image_id", imageID, "comment_id", comment.ID, "user_id", me.ID)
	return comment, nil
}

// DeleteComment deletes a comment written by the current user. Its feed
// event is kept.
func (s *Service) DeleteComment(ctx context.Context, commentID string) error {
	commentID = strings.TrimSpace(commentID)
	if commentID == "" {
		return ErrCommentNotFound
	}

	me := s.identity.GetOrCreate()
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if comment.UserID != me.ID {
		return ErrNotAuthor
	}

	if err := s.store.Transact(ctx, []store.Op{store.Delete(models.CollectionComments, commentID)}); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	s.logger.Info("comment deleted", "comment_id", commentID, "image_id", comment.ImageID, "user_id", me.ID)
	return nil
}

// WatchReactions pushes a fresh summary of an image's reactions, seen from
// the current user, on every change.
func (s *Service) WatchReactions(ctx context.Context, imageID string, fn func(models.ReactionSummary, error)) (store.Unsubscribe, error) {
	return s.reactions.SubscribeReactions(ctx, imageID, func(reactions []models.Reaction, err error) {
		if err != nil {
			fn(models.ReactionSummary{ImageID: imageID}, err)
			return
		}
		fn(Summarize(imageID, reactions, s.identity.GetOrCreate().ID), nil)
	})
}

// ReactionSummary reads the current summary of an image's reactions.
func (s *Service) ReactionSummary(ctx context.Context, imageID string) (models.ReactionSummary, error) {
	reactions, err := s.reactions.GetReactionsByImageID(ctx, imageID)
	if err != nil {
		return models.ReactionSummary{ImageID: imageID}, err
	}
	return Summarize(imageID, reactions, s.identity.GetOrCreate().ID), nil
}
