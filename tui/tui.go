// Package tui is the terminal feed viewer.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelgate/reelgate/backend"
)

type Options struct {
	Client *backend.Client
	// Engine names the media engine each feed item plays on.
	Engine   string
	PageSize int
	// Muted starts every player muted.
	Muted bool
}

// Run shows the feed until the viewer quits.
func Run(options *Options) error {
	bubble := newBubble(options)
	defer bubble.close()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithReportFocus()).Run()
	return err
}
