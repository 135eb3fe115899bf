package history

import (
	"fmt"
	"time"

	"github.com/reelgate/reelgate/backend"
)

// Entry is one watched content item in the local watch log.
type Entry struct {
	ContentID   string    `json:"content_id"`
	Title       string    `json:"title"`
	CreatorName string    `json:"creator_name,omitempty"`
	SeriesID    string    `json:"series_id,omitempty"`
	Episode     int       `json:"episode,omitempty"`
	Duration    float64   `json:"duration"`
	Fraction    float64   `json:"fraction"`
	WatchedAt   time.Time `json:"watched_at"`
}

func newEntry(content backend.ContentSummary, fraction float64, at time.Time) *Entry {
	entry := &Entry{
		ContentID:   content.ID,
		Title:       content.Title,
		CreatorName: content.CreatorName,
		Duration:    content.Duration,
		Fraction:    fraction,
		WatchedAt:   at,
	}
	if series, ok := content.Series.Get(); ok {
		entry.SeriesID = series.ID
	}
	entry.Episode = content.EpisodeNumber.OrElse(0)
	return entry
}

func (e *Entry) String() string {
	if e.SeriesID != "" && e.Episode > 0 {
		return fmt.Sprintf("%s #%d : %.0f%%", e.Title, e.Episode, e.Fraction*100)
	}
	return fmt.Sprintf("%s : %.0f%%", e.Title, e.Fraction*100)
}
