package repositories

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/anonto42/nano-gallery/internal/store"
	"github.com/anonto42/nano-gallery/internal/validators"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, s store.Store, records ...models.Record) {
	t.Helper()
	ops := make([]store.Op, len(records))
	for i, r := range records {
		ops[i] = store.Create(r)
	}
	if err := s.Transact(context.Background(), ops); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func feedEvent(id string, minute int) *models.FeedEvent {
	return &models.FeedEvent{
		ID: id, Kind: models.FeedEventReaction, ImageID: "img1", UserID: "u1", DisplayName: "Swift Fox 7",
		Payload: models.FeedPayload{Emoji: "🔥"}, CreatedAt: base.Add(time.Duration(minute) * time.Minute),
	}
}

func TestFeedIsNewestFirstAndLimited(t *testing.T) {
	s := store.NewMemoryStore()
	var records []models.Record
	for i := 0; i < 25; i++ {
		records = append(records, feedEvent(string(rune('a'+i)), i))
	}
	seed(t, s, records...)

	repo := NewLiveFeedRepository(s, validators.NewValidator(), 0, discard)
	events, err := repo.GetRecentFeedEvents(context.Background())
	if err != nil {
		t.Fatalf("GetRecentFeedEvents: %v", err)
	}
	if len(events) != DefaultFeedLimit {
		t.Fatalf("got %d events, want %d", len(events), DefaultFeedLimit)
	}
	if events[0].ID != "y" {
		t.Fatalf("newest event = %s, want y", events[0].ID)
	}
	for i := 1; i < len(events); i++ {
		if events[i].CreatedAt.After(events[i-1].CreatedAt) {
			t.Fatalf("events out of order at %d", i)
		}
	}
}

func TestFeedLimitCountsOnlyValidEvents(t *testing.T) {
	s := store.NewMemoryStore()
	var records []models.Record
	for i := 0; i < 25; i++ {
		records = append(records, feedEvent(string(rune('a'+i)), i))
	}
	broken := feedEvent("broken", 30)
	broken.Payload.Emoji = ""
	seed(t, s, append(records, broken)...)

	repo := NewLiveFeedRepository(s, validators.NewValidator(), 0, discard)
	events, err := repo.GetRecentFeedEvents(context.Background())
	if err != nil {
		t.Fatalf("GetRecentFeedEvents: %v", err)
	}
	if len(events) != DefaultFeedLimit {
		t.Fatalf("got %d events, want %d", len(events), DefaultFeedLimit)
	}
	if events[0].ID != "y" {
		t.Fatalf("newest event = %s, want y", events[0].ID)
	}

	got := make(chan int, 1)
	unsubscribe, err := repo.SubscribeFeed(context.Background(), func(events []models.FeedEvent, err error) {
		if err == nil {
			select {
			case got <- len(events):
			default:
			}
		}
	})
	if err != nil {
		t.Fatalf("SubscribeFeed: %v", err)
	}
	defer unsubscribe()
	select {
	case n := <-got:
		if n != DefaultFeedLimit {
			t.Fatalf("subscribed feed has %d events, want %d", n, DefaultFeedLimit)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no feed snapshot")
	}
}

func TestInvalidRecordsAreDropped(t *testing.T) {
	s := store.NewMemoryStore()
	missingEmoji := feedEvent("bad-reaction", 1)
	missingEmoji.Payload.Emoji = ""
	missingText := &models.FeedEvent{
		ID: "bad-comment", Kind: models.FeedEventComment, ImageID: "img1", UserID: "u1",
		DisplayName: "Swift Fox 7", CreatedAt: base,
	}
	unknownKind := feedEvent("bad-kind", 2)
	unknownKind.Kind = "like"
	seed(t, s, feedEvent("good", 0), missingEmoji, missingText, unknownKind)

	repo := NewLiveFeedRepository(s, validators.NewValidator(), 10, discard)
	events, err := repo.GetRecentFeedEvents(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].ID != "good" {
		t.Fatalf("events = %+v, want only the valid one", events)
	}
}

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	comment := func(id, imageID string, minute int) *models.Comment {
		return &models.Comment{
			ID: id, ImageID: imageID, UserID: "u1", DisplayName: "Bold Nova 3", Color: "#3b82f6",
			Text: "nice", CreatedAt: base.Add(time.Duration(minute) * time.Minute),
		}
	}
	badColor := comment("c4", "img1", 4)
	badColor.Color = "blue"
	seed(t, s, comment("c1", "img1", 1), comment("c2", "img1", 3), comment("c3", "img2", 2), badColor)

	repo := NewLiveCommentRepository(s, validators.NewValidator(), discard)
	comments, err := repo.GetCommentsByImageID(ctx, "img1")
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 2 || comments[0].ID != "c2" || comments[1].ID != "c1" {
		t.Fatalf("comments = %+v, want c2, c1", comments)
	}

	got, err := repo.GetCommentByID(ctx, "c3")
	if err != nil || got.ImageID != "img2" {
		t.Fatalf("GetCommentByID(c3) = %+v, %v", got, err)
	}
	if _, err := repo.GetCommentByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetCommentByID(nope) error = %v, want ErrNotFound", err)
	}
}

func TestSubscribeReactions(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	repo := NewLiveReactionRepository(s, validators.NewValidator(), discard)

	snapshots := make(chan []models.Reaction, 16)
	unsubscribe, err := repo.SubscribeReactions(ctx, "img1", func(reactions []models.Reaction, err error) {
		if err != nil {
			t.Errorf("snapshot error: %v", err)
			return
		}
		snapshots <- reactions
	})
	if err != nil {
		t.Fatal(err)
	}
	defer unsubscribe()

	seed(t, s,
		&models.Reaction{ID: "r1", ImageID: "img1", UserID: "u1", Emoji: "🔥", CreatedAt: base},
		&models.Reaction{ID: "r2", ImageID: "img2", UserID: "u1", Emoji: "🔥", CreatedAt: base},
	)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case reactions := <-snapshots:
			if len(reactions) == 1 && reactions[0].ID == "r1" {
				return
			}
			if len(reactions) > 1 {
				t.Fatalf("subscription leaked another image: %+v", reactions)
			}
		case <-deadline:
			t.Fatal("never received the reaction")
		}
	}
}
