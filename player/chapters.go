package player

import (
	"github.com/reelgate/reelgate/access"
)

// WindowChapters returns timeline markers outlining the free window.
// Unrestricted windows produce no markers.
func WindowChapters(window access.FreeRange, duration float64) []map[string]any {
	p := access.Policy{Window: window, Duration: duration}
	if p.IsFree() {
		return nil
	}

	var chapters []map[string]any

	if window.Start > 0 {
		chapters = append(chapters, map[string]any{"title": "Locked", "time": 0.0})
	}

	chapters = append(chapters, map[string]any{"title": "Preview", "time": window.Start})

	if p.IsPremium() {
		chapters = append(chapters, map[string]any{"title": "Locked", "time": window.End})
	}

	return chapters
}

// MarkWindow shows the free window on engines that support chapters.
func MarkWindow(engine Engine, window access.FreeRange, duration float64) error {
	setter, ok := engine.(ChapterSetter)
	if !ok {
		return nil
	}

	chapters := WindowChapters(window, duration)
	if chapters == nil {
		return nil
	}

	return setter.SetChapters(chapters)
}
