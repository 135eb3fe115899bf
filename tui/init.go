package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (b *statefulBubble) Init() tea.Cmd {
	b.setState(loadingState)
	return tea.Batch(b.startLoading(), b.loadFeed(), b.waitForMessage(), tick())
}
