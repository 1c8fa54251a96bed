package render

import (
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-gallery/internal/models"
)

func TestFeedEvent(t *testing.T) {
	at := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		event models.FeedEvent
		want  []string
	}{
		{
			name:  "reaction",
			event: models.FeedEvent{Kind: models.FeedEventReaction, DisplayName: "Neon Tiger 5", ImageID: "img1", Payload: models.FeedPayload{Emoji: "🔥"}, CreatedAt: at},
			want:  []string{"Neon Tiger 5", "reacted with 🔥 on img1"},
		},
		{
			name:  "removed reaction",
			event: models.FeedEvent{Kind: models.FeedEventReaction, DisplayName: "Neon Tiger 5", ImageID: "img1", Payload: models.FeedPayload{Emoji: "🔥", Removed: true}, CreatedAt: at},
			want:  []string{"took back 🔥 on img1"},
		},
		{
			name:  "comment",
			event: models.FeedEvent{Kind: models.FeedEventComment, DisplayName: "Bold Fox 1", ImageID: "img2", Payload: models.FeedPayload{Text: "so good"}, CreatedAt: at},
			want:  []string{"Bold Fox 1", "commented on img2", `"so good"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FeedEvent(tt.event)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("FeedEvent() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestFeedEventUsesAuthorColor(t *testing.T) {
	event := models.FeedEvent{Kind: models.FeedEventReaction, DisplayName: "Neon Tiger 5", ImageID: "img1", Payload: models.FeedPayload{Emoji: "🔥"}}
	colored := event
	colored.Color = "#3b82f6"

	if got, want := FeedEvent(colored), Name("Neon Tiger 5", "#3b82f6"); !strings.HasPrefix(got, want) {
		t.Fatalf("FeedEvent() = %q, want prefix %q", got, want)
	}
	if got, want := FeedEvent(event), Name("Neon Tiger 5", ""); !strings.HasPrefix(got, want) {
		t.Fatalf("FeedEvent() without color = %q, want prefix %q", got, want)
	}
}

func TestFeedEmpty(t *testing.T) {
	if got := Feed(nil); !strings.Contains(got, "Waiting for interactions...") {
		t.Fatalf("Feed(nil) = %q", got)
	}
}

func TestSummary(t *testing.T) {
	if got := Summary(models.ReactionSummary{}); !strings.Contains(got, "No reactions yet.") {
		t.Fatalf("empty summary = %q", got)
	}
	got := Summary(models.ReactionSummary{Counts: map[string]int{"🦄": 1, "✨": 3}, Mine: []string{"✨"}})
	if !strings.Contains(got, "✨ 3") || !strings.Contains(got, "🦄 1") {
		t.Fatalf("Summary() = %q", got)
	}
	if strings.Index(got, "✨") > strings.Index(got, "🦄") {
		t.Fatalf("emojis not sorted: %q", got)
	}
}

func TestPhotoPage(t *testing.T) {
	page := models.PhotoPage{
		Photos:   []models.Photo{{ID: "placeholder-1-0", Author: "Demo User", URLs: models.PhotoURLs{Small: "https://picsum.photos/seed/1-0/400/300"}}},
		Page:     1,
		NextPage: 2,
		Degraded: true,
	}
	got := PhotoPage(page)
	for _, want := range []string{"showing placeholders", "placeholder-1-0", "Demo User", "--page 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("PhotoPage() = %q, missing %q", got, want)
		}
	}
}
