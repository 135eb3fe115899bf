// Package style holds lipgloss render helpers and the application palette.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/reelgate/reelgate/color"
)

// New returns an empty style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

func colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a renderer that paints the foreground.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return colored(c, "").Render(s) }
}

// Truncate returns a renderer that fixes the width to max cells.
func Truncate(max int) func(string) string {
	return func(s string) string { return New().Width(max).MaxHeight(1).Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Title renders a screen heading.
func Title(s string) string {
	return colored(color.New("230"), color.New("62")).Padding(0, 1).Render(s)
}

// ErrorTitle renders the heading of the error screen.
func ErrorTitle(s string) string {
	return colored(color.New("230"), color.Red).Padding(0, 1).Render(s)
}

// Tag returns a renderer for a short padded label.
func Tag(fg, bg lipgloss.Color) func(string) string {
	return func(s string) string { return colored(fg, bg).Padding(0, 1).Render(s) }
}
