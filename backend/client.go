package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/reelgate/reelgate/auth"
	"github.com/reelgate/reelgate/config"
	"github.com/reelgate/reelgate/constant"
	"github.com/reelgate/reelgate/key"
	"github.com/reelgate/reelgate/log"
	"github.com/reelgate/reelgate/network"
	"github.com/reelgate/reelgate/util"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// Options configure a Client.
type Options struct {
	BaseURL string
	Token   string
	UserID  string

	// HTTPClient defaults to network.Client.
	HTTPClient *http.Client

	// CacheSeries keeps series listings in the on-disk cache.
	CacheSeries bool
}

// Client talks to the feed backend.
type Client struct {
	base   *url.URL
	token  string
	userID string
	http   *http.Client
	series *seriesCache
}

// New returns a Client for opts.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("backend: base url is empty")
	}

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}

	c := &Client{
		base:   base,
		token:  opts.Token,
		userID: opts.UserID,
		http:   opts.HTTPClient,
	}
	if c.http == nil {
		c.http = network.Client
	}
	if opts.CacheSeries {
		c.series = newSeriesCache()
	}

	return c, nil
}

// NewFromConfig builds a Client from the api.* settings, reading the token
// from the keyring when api.token is unset.
func NewFromConfig() (*Client, error) {
	token := viper.GetString(key.APIToken)
	if token == "" {
		stored, err := auth.GetToken()
		if err != nil {
			log.Warnf("read token from keyring: %v", err)
		}
		token = stored
	}

	return New(Options{
		BaseURL:     viper.GetString(key.APIBaseURL),
		Token:       token,
		UserID:      viper.GetString(key.APIUserID),
		HTTPClient:  network.New(config.Millis(key.APITimeout)),
		CacheSeries: true,
	})
}

// UserID returns the id of the signed-in viewer, if known.
func (c *Client) UserID() string {
	return c.userID
}

// endpoint joins an already escaped path onto the base url.
func (c *Client) endpoint(path string, query url.Values) string {
	u := c.base.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}

// do performs one request and decodes the {data} envelope into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	defer util.Ignore(resp.Body.Close)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, URL: endpoint, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope[json.RawMessage]
		_ = json.Unmarshal(raw, &env)
		return &NetworkError{Op: op, URL: endpoint, Status: resp.StatusCode, Message: env.Message}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &ParseError{Field: "payload", Reason: err.Error()}
	}

	return nil
}

// FetchPage returns one page of the feed. Pages are 1-based.
func (c *Client) FetchPage(ctx context.Context, page, limit int) ([]ContentSummary, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var env envelope[[]wireContent]
	if err := c.do(ctx, "fetch feed page", http.MethodGet, c.endpoint("/videos/all-videos", query), nil, &env); err != nil {
		return nil, err
	}

	return parseAll(env.Data)
}

// RecordView increments the view counter of a content item.
func (c *Client) RecordView(ctx context.Context, id string) error {
	return c.do(ctx, "record view", http.MethodPost, c.endpoint("/videos/"+url.PathEscape(id)+"/view", nil), nil, nil)
}

// SaveHistory adds a content item to the viewer's remote history.
func (c *Client) SaveHistory(ctx context.Context, id string) error {
	body := struct {
		VideoID string `json:"videoId"`
	}{VideoID: id}
	return c.do(ctx, "save history", http.MethodPost, c.endpoint("/user/history", nil), body, nil)
}

// Watched fires the view and history calls concurrently. Both always run;
// failures are logged and the first one is returned.
func (c *Client) Watched(ctx context.Context, id string) error {
	var g errgroup.Group

	g.Go(func() error {
		if err := c.RecordView(ctx, id); err != nil {
			log.With("content", id).Warnf("record view: %v", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := c.SaveHistory(ctx, id); err != nil {
			log.With("content", id).Warnf("save history: %v", err)
			return err
		}
		return nil
	})

	return g.Wait()
}
