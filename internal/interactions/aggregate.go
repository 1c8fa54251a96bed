package interactions

import (
	"sort"

	"github.com/anonto42/nano-gallery/internal/models"
)

// CountsByEmoji counts reactions per emoji.
func CountsByEmoji(reactions []models.Reaction) map[string]int {
	counts := make(map[string]int)
	for _, r := range reactions {
		counts[r.Emoji]++
	}
	return counts
}

// EmojisByUser returns the set of emojis userID reacted with.
func EmojisByUser(reactions []models.Reaction, userID string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range reactions {
		if r.UserID == userID {
			set[r.Emoji] = struct{}{}
		}
	}
	return set
}

// Summarize builds the view of an image's reactions for userID.
func Summarize(imageID string, reactions []models.Reaction, userID string) models.ReactionSummary {
	mine := make([]string, 0)
	for emoji := range EmojisByUser(reactions, userID) {
		mine = append(mine, emoji)
	}
	sort.Strings(mine)
	return models.ReactionSummary{
		ImageID: imageID,
		Counts:  CountsByEmoji(reactions),
		Mine:    mine,
	}
}
