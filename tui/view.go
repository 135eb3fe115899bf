package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/reelgate/reelgate/access"
	"github.com/reelgate/reelgate/color"
	"github.com/reelgate/reelgate/icon"
	"github.com/reelgate/reelgate/playback"
	"github.com/reelgate/reelgate/style"
	"github.com/reelgate/reelgate/util"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case feedState:
		output = b.viewFeed()
	case historyState:
		output = listExtraPaddingStyle.Render(b.historyC.View())
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(true, []string{
		style.Title("Loading"),
		"",
		b.spinnerC.View() + " Fetching the feed",
	})
}

func (b *statefulBubble) viewFeed() string {
	c, _, ok := b.current()
	if !ok {
		return b.renderLines(true, []string{style.Title("Feed"), "", style.Faint("Nothing to watch")})
	}

	content := c.Content()
	snap := c.Snapshot()
	page := b.pager.Page()

	header := fmt.Sprintf("%s %s", style.Title("Feed"), style.Faint(fmt.Sprintf("%d / %d", b.cursor+1, len(page.Items))))
	if page.HasMore {
		header += style.Faint("+")
	}

	lines := []string{
		header,
		"",
		style.Bold(style.Truncate(b.width)(content.Title)),
	}
	if content.CreatorName != "" {
		lines = append(lines, style.Fg(color.Purple)(content.CreatorName))
	}
	if episode, ok := content.EpisodeNumber.Get(); ok {
		lines = append(lines, style.Faint(fmt.Sprintf("Episode %d", episode)))
	}
	if content.Description != "" {
		lines = append(lines, "", style.Faint(wrap.String(content.Description, max(b.width, 10))))
	}

	lines = append(lines,
		"",
		renderProgress(snap, max(b.width, 10)),
		statusLine(snap),
	)

	if snap.State == playback.Paywalled {
		lines = append(lines, "", style.Tag(style.Base, style.PaywallColor)("Free preview ended"))
	}

	return b.renderLines(true, lines)
}

func statusLine(s playback.Snapshot) string {
	parts := []string{
		fmt.Sprintf("%s / %s", util.Timestamp(s.DisplayTime), util.Timestamp(s.Duration)),
		stateLabel(s.State),
	}
	if s.Speed != 1 && s.Speed > 0 {
		parts = append(parts, fmt.Sprintf("%s %gx", icon.Get(icon.Speed), s.Speed))
	}
	if s.Muted {
		parts = append(parts, icon.Get(icon.Muted)+" muted")
	}
	if s.Gifted {
		parts = append(parts, "gifting")
	}
	if s.Fullscreen {
		parts = append(parts, "fullscreen")
	}
	return strings.Join(parts, style.Faint(" • "))
}

func stateLabel(s playback.State) string {
	switch s {
	case playback.Playing:
		return style.Fg(color.Green)(icon.Get(icon.Play) + " " + s.String())
	case playback.Paused:
		return style.Fg(color.Yellow)(icon.Get(icon.Pause) + " " + s.String())
	case playback.Paywalled:
		return style.Fg(color.Orange)(icon.Get(icon.Lock) + " " + s.String())
	case playback.Error:
		return style.Fg(color.Red)(icon.Get(icon.Fail) + " " + s.String())
	default:
		return style.Faint(s.String())
	}
}

type cell int

const (
	cellRemaining cell = iota
	cellPlayed
	cellLocked
	cellHead
	cellTarget
)

// progressCells lays the snapshot out over width cells: locked regions
// outside the free window, played and remaining time, the play head and
// the drag target.
func progressCells(s playback.Snapshot, width int) []cell {
	cells := make([]cell, width)
	if width <= 0 || s.Duration <= 0 {
		return cells
	}

	policy := access.Policy{Viewer: s.Viewer, Window: s.Window, Duration: s.Duration}
	locked := !policy.Unrestricted()

	at := func(t float64) int {
		return util.Clamp(int(math.Floor(t/s.Duration*float64(width))), 0, width-1)
	}

	for i := range cells {
		t := (float64(i) + 0.5) / float64(width) * s.Duration
		switch {
		case locked && t < s.Window.Start:
			cells[i] = cellLocked
		case locked && policy.IsPremium() && t > s.Window.End:
			cells[i] = cellLocked
		case t <= s.CurrentTime:
			cells[i] = cellPlayed
		}
	}

	cells[at(s.CurrentTime)] = cellHead
	if s.Dragging {
		cells[at(s.DisplayTime)] = cellTarget
	}
	return cells
}

func renderProgress(s playback.Snapshot, width int) string {
	var (
		played    = lipgloss.NewStyle().Foreground(style.PlayedColor)
		remaining = lipgloss.NewStyle().Foreground(style.RemainingColor)
		locked    = lipgloss.NewStyle().Foreground(style.LockedColor)
		head      = lipgloss.NewStyle().Foreground(style.HeadColor).Bold(true)
		target    = lipgloss.NewStyle().Foreground(style.TargetColor).Bold(true)
	)

	var sb strings.Builder
	for _, c := range progressCells(s, width) {
		switch c {
		case cellPlayed:
			sb.WriteString(played.Render("━"))
		case cellLocked:
			sb.WriteString(locked.Render("░"))
		case cellHead:
			sb.WriteString(head.Render("●"))
		case cellTarget:
			sb.WriteString(target.Render("◆"))
		default:
			sb.WriteString(remaining.Render("─"))
		}
	}
	return sb.String()
}

func (b *statefulBubble) viewError() string {
	errorMsg := wrap.String(style.Fg(color.Red)(b.lastError.Error()), max(b.width, 10))
	return b.renderLines(true, []string{
		style.ErrorTitle("Error"),
		"",
		icon.Get(icon.Fail) + " Something went wrong:",
		"",
		errorMsg,
	})
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
