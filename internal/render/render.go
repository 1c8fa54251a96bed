// Package render formats gallery state for the terminal.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/charmbracelet/lipgloss"
)

var (
	nameStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	quoteStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	mineStyle    = lipgloss.NewStyle().Underline(true)
)

const timeLayout = "15:04"

// Name renders a display name in the author's color.
func Name(displayName, color string) string {
	style := nameStyle
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	return style.Render(displayName)
}

// Identity renders the local identity.
func Identity(id models.Identity) string {
	return fmt.Sprintf("%s %s", Name(id.DisplayName, id.Color), dimStyle.Render("("+id.ID+")"))
}

// FeedEvent renders one feed line.
func FeedEvent(e models.FeedEvent) string {
	var b strings.Builder
	b.WriteString(Name(e.DisplayName, e.Color))
	switch e.Kind {
	case models.FeedEventReaction:
		if e.Payload.Removed {
			fmt.Fprintf(&b, " took back %s on %s", e.Payload.Emoji, e.ImageID)
		} else {
			fmt.Fprintf(&b, " reacted with %s on %s", e.Payload.Emoji, e.ImageID)
		}
	case models.FeedEventComment:
		fmt.Fprintf(&b, " commented on %s %s", e.ImageID, quoteStyle.Render(fmt.Sprintf("%q", e.Payload.Text)))
	}
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(e.CreatedAt.Local().Format(timeLayout)))
	return b.String()
}

// Feed renders events in the order given, one per line.
func Feed(events []models.FeedEvent) string {
	if len(events) == 0 {
		return dimStyle.Render("Waiting for interactions...")
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, FeedEvent(e))
	}
	return strings.Join(lines, "\n")
}

// Comment renders one comment with its id, so it can be deleted.
func Comment(c models.Comment) string {
	return fmt.Sprintf("%s %s %s\n  %s",
		Name(c.DisplayName, c.Color),
		dimStyle.Render(c.CreatedAt.Local().Format(timeLayout)),
		dimStyle.Render("["+c.ID+"]"),
		c.Text)
}

// Comments renders comments in the order given.
func Comments(comments []models.Comment) string {
	if len(comments) == 0 {
		return dimStyle.Render("No comments yet.")
	}
	blocks := make([]string, 0, len(comments))
	for _, c := range comments {
		blocks = append(blocks, Comment(c))
	}
	return strings.Join(blocks, "\n")
}

// Summary renders reaction counts, underlining the emojis the user chose.
func Summary(s models.ReactionSummary) string {
	if len(s.Counts) == 0 {
		return dimStyle.Render("No reactions yet.")
	}
	mine := make(map[string]bool, len(s.Mine))
	for _, e := range s.Mine {
		mine[e] = true
	}
	emojis := make([]string, 0, len(s.Counts))
	for e := range s.Counts {
		emojis = append(emojis, e)
	}
	sort.Strings(emojis)

	parts := make([]string, 0, len(emojis))
	for _, e := range emojis {
		part := fmt.Sprintf("%s %d", e, s.Counts[e])
		if mine[e] {
			part = mineStyle.Render(part)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "  ")
}

// PhotoPage renders one page of photos.
func PhotoPage(p models.PhotoPage) string {
	var b strings.Builder
	if p.Degraded {
		b.WriteString(warningStyle.Render("photo source unavailable, showing placeholders"))
		b.WriteString("\n")
	}
	for _, photo := range p.Photos {
		fmt.Fprintf(&b, "%s  %s  %s\n", nameStyle.Render(photo.ID), photo.Author, dimStyle.Render(photo.URLs.Small))
	}
	if p.HasMore() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("more: --page %d", p.NextPage)))
	}
	return strings.TrimRight(b.String(), "\n")
}
