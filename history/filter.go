package history

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// Filter returns the entries whose title or creator fuzzily matches query,
// closest match first. An empty query keeps every entry in order.
func Filter(entries []*Entry, query string) []*Entry {
	if query == "" {
		return entries
	}

	targets := lo.Map(entries, func(e *Entry, _ int) string {
		return e.Title + " " + e.CreatorName
	})

	ranks := fuzzy.RankFindFold(query, targets)
	sort.Stable(ranks)

	return lo.Map(ranks, func(r fuzzy.Rank, _ int) *Entry {
		return entries[r.OriginalIndex]
	})
}
