// Package history keeps the local watch log of content the viewer has watched past the milestone.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/reelgate/reelgate/backend"
	"github.com/reelgate/reelgate/filesystem"
	"github.com/reelgate/reelgate/where"
	"github.com/samber/lo"
)

var cacher = gache.New[map[string]*Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// mu serializes read-modify-write cycles of the log.
var mu sync.Mutex

var now = time.Now

func get() (map[string]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Get returns the watch log keyed by content id.
func Get() (map[string]*Entry, error) {
	mu.Lock()
	defer mu.Unlock()
	return get()
}

// List returns the watch log, most recently watched first.
func List() ([]*Entry, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].WatchedAt.Equal(entries[j].WatchedAt) {
			return entries[i].WatchedAt.After(entries[j].WatchedAt)
		}
		return entries[i].ContentID < entries[j].ContentID
	})
	return entries, nil
}

// Save records that content was watched up to fraction. A re-watch never
// lowers the stored fraction.
func Save(content backend.ContentSummary, fraction float64) error {
	mu.Lock()
	defer mu.Unlock()

	saved, err := get()
	if err != nil {
		return err
	}

	entry := newEntry(content, fraction, now())
	if existing, ok := saved[entry.ContentID]; ok && existing.Fraction > entry.Fraction {
		entry.Fraction = existing.Fraction
	}
	saved[entry.ContentID] = entry

	return cacher.Set(saved)
}

// Remove deletes the entry of content id.
func Remove(id string) error {
	mu.Lock()
	defer mu.Unlock()

	saved, err := get()
	if err != nil {
		return err
	}

	delete(saved, id)
	return cacher.Set(saved)
}
