package interactions

import (
	"reflect"
	"testing"

	"github.com/anonto42/nano-gallery/internal/models"
)

func TestSummarize(t *testing.T) {
	reactions := []models.Reaction{
		{ID: "1", ImageID: "img1", UserID: "a", Emoji: "🔥"},
		{ID: "2", ImageID: "img1", UserID: "b", Emoji: "🔥"},
		{ID: "3", ImageID: "img1", UserID: "a", Emoji: "✨"},
		{ID: "4", ImageID: "img1", UserID: "b", Emoji: "🦄"},
	}

	tests := []struct {
		name       string
		reactions  []models.Reaction
		userID     string
		wantCounts map[string]int
		wantMine   []string
	}{
		{
			name:       "empty",
			wantCounts: map[string]int{},
			wantMine:   []string{},
		},
		{
			name:       "counts and mine",
			reactions:  reactions,
			userID:     "a",
			wantCounts: map[string]int{"🔥": 2, "✨": 1, "🦄": 1},
			wantMine:   []string{"✨", "🔥"},
		},
		{
			name:       "user without reactions",
			reactions:  reactions,
			userID:     "c",
			wantCounts: map[string]int{"🔥": 2, "✨": 1, "🦄": 1},
			wantMine:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize("img1", tt.reactions, tt.userID)
			if got.ImageID != "img1" {
				t.Errorf("ImageID = %q", got.ImageID)
			}
			if !reflect.DeepEqual(got.Counts, tt.wantCounts) {
				t.Errorf("Counts = %v, want %v", got.Counts, tt.wantCounts)
			}
			if !reflect.DeepEqual(got.Mine, tt.wantMine) {
				t.Errorf("Mine = %v, want %v", got.Mine, tt.wantMine)
			}
		})
	}
}

func TestEmojisByUser(t *testing.T) {
	reactions := []models.Reaction{
		{UserID: "a", Emoji: "🔥"},
		{UserID: "a", Emoji: "🔥"},
		{UserID: "b", Emoji: "💖"},
	}
	got := EmojisByUser(reactions, "a")
	if len(got) != 1 {
		t.Fatalf("EmojisByUser = %v, want one emoji", got)
	}
	if _, ok := got["🔥"]; !ok {
		t.Fatalf("EmojisByUser = %v, want 🔥", got)
	}
}

func TestCountsByEmojiIgnoresOrder(t *testing.T) {
	reactions := []models.Reaction{
		{UserID: "a", Emoji: "🔥"},
		{UserID: "b", Emoji: "💖"},
		{UserID: "c", Emoji: "🔥"},
		{UserID: "d", Emoji: "✨"},
	}
	want := CountsByEmoji(reactions)
	reversed := make([]models.Reaction, len(reactions))
	for i, r := range reactions {
		reversed[len(reactions)-1-i] = r
	}
	if got := CountsByEmoji(reversed); !reflect.DeepEqual(got, want) {
		t.Fatalf("counts depend on order: %v vs %v", got, want)
	}
	if want["🔥"] != 2 || want["💖"] != 1 || want["✨"] != 1 {
		t.Fatalf("CountsByEmoji = %v", want)
	}
}
