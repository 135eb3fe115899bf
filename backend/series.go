package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/reelgate/reelgate/filesystem"
	"github.com/reelgate/reelgate/log"
	"github.com/reelgate/reelgate/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const seriesLifetime = 10 * time.Minute

// Series is a series with its episodes as playable content, ordered by episode number.
type Series struct {
	ID       string           `json:"_id"`
	Name     string           `json:"name"`
	Episodes []ContentSummary `json:"episodes"`
}

// Next returns the episode after id, if any.
func (s Series) Next(id string) mo.Option[ContentSummary] {
	_, idx, ok := lo.FindIndexOf(s.Episodes, func(c ContentSummary) bool { return c.ID == id })
	if !ok || idx+1 >= len(s.Episodes) {
		return mo.None[ContentSummary]()
	}
	return mo.Some(s.Episodes[idx+1])
}

type wireEpisodes struct {
	ID       string        `json:"_id"`
	Name     string        `json:"name"`
	Episodes []wireContent `json:"episodes"`
}

// episodesToContent rewrites raw episodes into feed-shaped content: the bare
// series id becomes a series reference priced like the episode, and a missing
// access block falls back to the episode's own start_time and display_till_time.
func episodesToContent(seriesID string, episodes []wireContent) ([]ContentSummary, error) {
	out := make([]ContentSummary, 0, len(episodes))
	for i := range episodes {
		ep := episodes[i]

		ref := wireSeries{ID: seriesID, Price: ep.Amount, Type: ep.Type}
		raw, err := json.Marshal(ref)
		if err != nil {
			return nil, err
		}
		ep.Series = raw

		if ep.Access == nil {
			ep.Access = &wireAccess{}
		}

		c, err := ep.toSummary()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EpisodeNumber.OrEmpty() < out[j].EpisodeNumber.OrEmpty()
	})

	return out, nil
}

// Series fetches a series and its episodes.
func (c *Client) Series(ctx context.Context, id string) (Series, error) {
	if c.series != nil {
		if raw, ok := c.series.Get(id).Get(); ok {
			var w wireEpisodes
			if err := json.Unmarshal(raw, &w); err == nil {
				return toSeries(id, w)
			}
		}
	}

	var env envelope[json.RawMessage]
	if err := c.do(ctx, "fetch series", http.MethodGet, c.endpoint("/series/"+url.PathEscape(id), nil), nil, &env); err != nil {
		return Series{}, err
	}

	var w wireEpisodes
	if err := json.Unmarshal(env.Data, &w); err != nil {
		return Series{}, &ParseError{ID: id, Field: "data", Reason: err.Error()}
	}

	series, err := toSeries(id, w)
	if err != nil {
		return Series{}, err
	}

	if c.series != nil {
		if err := c.series.Set(id, env.Data); err != nil {
			log.With("series", id).Warnf("cache series: %v", err)
		}
	}

	return series, nil
}

func toSeries(id string, w wireEpisodes) (Series, error) {
	if w.ID == "" {
		w.ID = id
	}
	episodes, err := episodesToContent(w.ID, w.Episodes)
	if err != nil {
		return Series{}, err
	}
	return Series{ID: w.ID, Name: w.Name, Episodes: episodes}, nil
}

type seriesData struct {
	Series map[string]json.RawMessage `json:"series"`
}

// seriesCache keeps raw series payloads on disk for a short lifetime.
type seriesCache struct {
	internal *gache.Cache[*seriesData]
	mu       sync.RWMutex
}

func newSeriesCache() *seriesCache {
	return &seriesCache{
		internal: gache.New[*seriesData](&gache.Options{
			Path:       where.Series(),
			Lifetime:   seriesLifetime,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

func (c *seriesCache) Get(id string) mo.Option[json.RawMessage] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[json.RawMessage]()
	}

	raw, ok := data.Series[id]
	if !ok {
		return mo.None[json.RawMessage]()
	}
	return mo.Some(raw)
}

func (c *seriesCache) Set(id string, raw json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if expired || data == nil {
		data = &seriesData{}
	}
	if data.Series == nil {
		data.Series = make(map[string]json.RawMessage)
	}
	data.Series[id] = raw

	return c.internal.Set(data)
}
