// Package ui shows short-lived notifications at the bottom of the terminal view.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelgate/reelgate/style"
)

// Lifetime is how long a notification stays on screen.
const Lifetime = 3 * time.Second

// Model holds the current notification. Any string message replaces it.
type Model struct {
	notification string
	seq          int
}

type clearMsg struct {
	seq int
}

func (m *Model) clearAfter(seq int) tea.Cmd {
	return tea.Tick(Lifetime, func(time.Time) tea.Msg {
		return clearMsg{seq: seq}
	})
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case string:
		m.notification = msg
		m.seq++
		return m.clearAfter(m.seq)
	case clearMsg:
		// a newer notification resets the timer
		if msg.seq == m.seq {
			m.notification = ""
		}
	}
	return nil
}

// Notification is the text currently shown, if any.
func (m *Model) Notification() string {
	return m.notification
}

// View appends the notification to the last line of the rendered view.
func (m *Model) View(mainContent string) string {
	if m.notification == "" {
		return mainContent
	}

	lines := strings.Split(mainContent, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.notification)
	return strings.Join(lines, "\n")
}
