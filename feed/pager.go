// Package feed schedules the single active player of a paginated content feed.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/reelgate/reelgate/backend"
	"github.com/samber/lo"
)

// ErrFetchInFlight is returned when a page is requested while another is loading.
var ErrFetchInFlight = errors.New("a page fetch is already in flight")

// DefaultPageSize is the page size the backend serves feeds with.
const DefaultPageSize = 6

// Fetcher loads one page of the feed.
type Fetcher interface {
	FetchPage(ctx context.Context, page, limit int) ([]backend.ContentSummary, error)
}

// Page is the accumulated feed after a load.
type Page struct {
	Items   []backend.ContentSummary
	Number  int
	Size    int
	HasMore bool
}

// Pager accumulates feed pages, deduplicated by content id.
type Pager struct {
	fetcher Fetcher
	size    int

	mu       sync.Mutex
	items    []backend.ContentSummary
	number   int
	hasMore  bool
	fetching bool
}

func NewPager(fetcher Fetcher, size int) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{fetcher: fetcher, size: size, hasMore: true}
}

// Load fetches page n. Page 1 replaces the feed; later pages append items not
// already present. A page shorter than the page size, counted as returned by
// the fetcher, ends the feed. On failure the feed and HasMore are left as they
// were.
func (p *Pager) Load(ctx context.Context, n int) (Page, error) {
	p.mu.Lock()
	if p.fetching {
		p.mu.Unlock()
		return Page{}, ErrFetchInFlight
	}
	p.fetching = true
	p.mu.Unlock()

	fetched, err := p.fetcher.FetchPage(ctx, n, p.size)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetching = false

	if err != nil {
		return p.page(), err
	}

	short := len(fetched) < p.size
	fetched = lo.UniqBy(fetched, func(c backend.ContentSummary) string { return c.ID })

	if n <= 1 {
		p.items = fetched
		p.number = 1
		p.hasMore = !short
		return p.page(), nil
	}

	seen := lo.SliceToMap(p.items, func(c backend.ContentSummary) (string, struct{}) {
		return c.ID, struct{}{}
	})
	fresh := lo.Filter(fetched, func(c backend.ContentSummary, _ int) bool {
		_, dup := seen[c.ID]
		return !dup
	})

	p.items = append(p.items, fresh...)
	p.number = n
	if short {
		p.hasMore = false
	}

	return p.page(), nil
}

// LoadNext fetches the page after the last one loaded.
func (p *Pager) LoadNext(ctx context.Context) (Page, error) {
	p.mu.Lock()
	next := p.number + 1
	p.mu.Unlock()

	return p.Load(ctx, next)
}

// Refresh reloads the first page.
func (p *Pager) Refresh(ctx context.Context) (Page, error) {
	return p.Load(ctx, 1)
}

// page must be called with mu held.
func (p *Pager) page() Page {
	return Page{
		Items:   append([]backend.ContentSummary(nil), p.items...),
		Number:  p.number,
		Size:    p.size,
		HasMore: p.hasMore,
	}
}

func (p *Pager) Page() Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page()
}

func (p *Pager) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

func (p *Pager) Fetching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetching
}

// IndexOf returns the position of content id in the feed, or -1.
func (p *Pager) IndexOf(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, idx, ok := lo.FindIndexOf(p.items, func(c backend.ContentSummary) bool { return c.ID == id })
	if !ok {
		return -1
	}
	return idx
}

// At returns the item at index i, if any.
func (p *Pager) At(i int) (backend.ContentSummary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || i >= len(p.items) {
		return backend.ContentSummary{}, false
	}
	return p.items[i], true
}
