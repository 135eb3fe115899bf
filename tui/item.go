package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/reelgate/reelgate/history"
	"github.com/reelgate/reelgate/style"
	"github.com/reelgate/reelgate/util"
)

// listItem wraps a watch log entry for the history list.
type listItem struct {
	internal any
}

func (t *listItem) Title() string {
	switch e := t.internal.(type) {
	case *history.Entry:
		if e.Episode > 0 {
			return fmt.Sprintf("%s %s", e.Title, style.Faint(fmt.Sprintf("#%d", e.Episode)))
		}
		return e.Title
	default:
		return t.FilterValue()
	}
}

func (t *listItem) Description() string {
	e, ok := t.internal.(*history.Entry)
	if !ok {
		return ""
	}

	var parts []string
	if e.CreatorName != "" {
		parts = append(parts, e.CreatorName)
	}

	watched := lipgloss.NewStyle().Foreground(style.Yellow).Render(fmt.Sprintf("%.0f%%", e.Fraction*100))
	if e.Duration > 0 {
		watched += " of " + util.Timestamp(e.Duration)
	}
	parts = append(parts, watched)
	parts = append(parts, lipgloss.NewStyle().Foreground(style.FaintColor).Render(e.WatchedAt.Format("Jan 2 15:04")))

	return strings.Join(parts, " • ")
}

func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case *history.Entry:
		return e.Title + " " + e.CreatorName
	case string:
		return e
	default:
		return ""
	}
}
