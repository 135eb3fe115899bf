// Package backend is the typed boundary to the feed REST API.
//
// Payloads are decoded into unexported wire structs and validated into
// ContentSummary values; anything that breaks the contract is rejected with a
// ParseError instead of reaching the playback state machine.
package backend

import (
	"bytes"
	"encoding/json"

	"github.com/reelgate/reelgate/access"
	"github.com/samber/mo"
)

// AccessFree is the access type the backend reports for content sold at no price.
const AccessFree = "free"

// ContentSummary is one playable feed item.
type ContentSummary struct {
	ID            string               `json:"_id" jsonschema:"required"`
	Title         string               `json:"name"`
	Description   string               `json:"description,omitempty"`
	VideoURL      string               `json:"videoUrl" jsonschema:"required,format=uri"`
	ThumbnailURL  string               `json:"thumbnailUrl,omitempty"`
	CreatorID     string               `json:"creatorId" jsonschema:"required"`
	CreatorName   string               `json:"creatorName,omitempty"`
	Duration      float64              `json:"duration" jsonschema:"minimum=0"`
	Amount        float64              `json:"amount"`
	Access        Access               `json:"access"`
	Series        mo.Option[SeriesRef] `json:"series"`
	EpisodeNumber mo.Option[int]       `json:"episodeNumber"`
	CreatorPass   bool                 `json:"hasCreatorPassOfVideoOwner"`
}

// Access is the access block of a content item.
type Access struct {
	IsPlayable  bool             `json:"isPlayable"`
	Window      access.FreeRange `json:"freeRange"`
	IsPurchased bool             `json:"isPurchased"`
	Type        string           `json:"accessType"`
	Price       float64          `json:"price"`
}

// SeriesRef points at the series a content item belongs to.
type SeriesRef struct {
	ID    string  `json:"_id"`
	Type  string  `json:"type"`
	Price float64 `json:"price"`
}

// FreeWindow returns the free-preview window. The access type never widens it.
func (c ContentSummary) FreeWindow() access.FreeRange {
	return c.Access.Window
}

// Viewer returns the access flags known from the payload for the given viewer id.
func (c ContentSummary) Viewer(userID string) access.Viewer {
	return access.Viewer{
		IsOwner:        userID != "" && userID == c.CreatorID,
		HasCreatorPass: c.CreatorPass,
		IsPurchased:    c.Access.IsPurchased,
	}
}

// Scope returns the ids a purchase must match to unlock this item.
func (c ContentSummary) Scope() access.Scope {
	return access.Scope{
		VideoID:   c.ID,
		SeriesID:  c.Series.OrEmpty().ID,
		CreatorID: c.CreatorID,
	}
}

// Offer describes the item to the paywall router.
func (c ContentSummary) Offer() access.Offer {
	series := c.Series.OrEmpty()
	return access.Offer{
		VideoID:    c.ID,
		CreatorID:  c.CreatorID,
		SeriesID:   series.ID,
		SeriesType: series.Type,
		Amount:     c.Amount,
		Price:      c.Access.Price,
	}
}

type wireCreator struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type wireRange struct {
	Start *float64 `json:"start_time"`
	End   *float64 `json:"display_till_time"`
}

type wireAccess struct {
	IsPlayable  bool       `json:"isPlayable"`
	FreeRange   *wireRange `json:"freeRange"`
	IsPurchased bool       `json:"isPurchased"`
	AccessType  string     `json:"accessType"`
	Price       *float64   `json:"price"`
}

type wireSeries struct {
	ID    string  `json:"_id"`
	Type  string  `json:"type"`
	Price float64 `json:"price"`
}

type wireContent struct {
	ID            string          `json:"_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	VideoURL      string          `json:"videoUrl"`
	ThumbnailURL  string          `json:"thumbnailUrl"`
	Duration      *float64        `json:"duration"`
	Amount        float64         `json:"amount"`
	Type          string          `json:"type"`
	StartTime     *float64        `json:"start_time"`
	DisplayTill   *float64        `json:"display_till_time"`
	EpisodeNumber *int            `json:"episode_number"`
	CreatedBy     *wireCreator    `json:"created_by"`
	Series        json.RawMessage `json:"series"`
	Access        *wireAccess     `json:"access"`
	CreatorPass   bool            `json:"hasCreatorPassOfVideoOwner"`
}

// series decodes the series field, which is either null, a bare id or an object.
func (w *wireContent) series() (mo.Option[SeriesRef], error) {
	raw := bytes.TrimSpace(w.Series)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return mo.None[SeriesRef](), nil
	}

	if raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return mo.None[SeriesRef](), err
		}
		if id == "" {
			return mo.None[SeriesRef](), nil
		}
		return mo.Some(SeriesRef{ID: id}), nil
	}

	var s wireSeries
	if err := json.Unmarshal(raw, &s); err != nil {
		return mo.None[SeriesRef](), err
	}
	if s.ID == "" {
		return mo.None[SeriesRef](), nil
	}
	return mo.Some(SeriesRef(s)), nil
}

func fail(id, field, reason string) error {
	return &ParseError{ID: id, Field: field, Reason: reason}
}

// toSummary validates w against the content contract.
func (w *wireContent) toSummary() (ContentSummary, error) {
	if w.ID == "" {
		return ContentSummary{}, fail("", "_id", "missing")
	}
	if w.VideoURL == "" {
		return ContentSummary{}, fail(w.ID, "videoUrl", "missing")
	}
	if w.CreatedBy == nil || w.CreatedBy.ID == "" {
		return ContentSummary{}, fail(w.ID, "created_by._id", "missing")
	}
	if w.Access == nil {
		return ContentSummary{}, fail(w.ID, "access", "missing")
	}
	if w.Duration == nil {
		return ContentSummary{}, fail(w.ID, "duration", "missing")
	}
	if *w.Duration < 0 {
		return ContentSummary{}, fail(w.ID, "duration", "negative")
	}

	start, end := w.StartTime, w.DisplayTill
	if r := w.Access.FreeRange; r != nil {
		if r.Start != nil {
			start = r.Start
		}
		if r.End != nil {
			end = r.End
		}
	}
	window := access.FreeRange{
		Start: mo.PointerToOption(start).OrEmpty(),
		End:   mo.PointerToOption(end).OrEmpty(),
	}
	if window.Start < 0 {
		return ContentSummary{}, fail(w.ID, "access.freeRange.start_time", "negative")
	}
	if window.End < 0 {
		return ContentSummary{}, fail(w.ID, "access.freeRange.display_till_time", "negative")
	}
	if window.End > 0 && window.Start > window.End {
		return ContentSummary{}, fail(w.ID, "access.freeRange", "start_time after display_till_time")
	}

	series, err := w.series()
	if err != nil {
		return ContentSummary{}, fail(w.ID, "series", err.Error())
	}

	summary := ContentSummary{
		ID:           w.ID,
		Title:        w.Name,
		Description:  w.Description,
		VideoURL:     w.VideoURL,
		ThumbnailURL: w.ThumbnailURL,
		CreatorID:    w.CreatedBy.ID,
		CreatorName:  w.CreatedBy.Username,
		Duration:     *w.Duration,
		Amount:       w.Amount,
		Access: Access{
			IsPlayable:  w.Access.IsPlayable,
			Window:      window,
			IsPurchased: w.Access.IsPurchased,
			Type:        w.Access.AccessType,
			Price:       mo.PointerToOption(w.Access.Price).OrEmpty(),
		},
		Series:        series,
		EpisodeNumber: mo.PointerToOption(w.EpisodeNumber),
		CreatorPass:   w.CreatorPass,
	}

	return summary, nil
}

// ParseContent decodes and validates a single content payload.
func ParseContent(data []byte) (ContentSummary, error) {
	var w wireContent
	if err := json.Unmarshal(data, &w); err != nil {
		return ContentSummary{}, fail("", "payload", err.Error())
	}
	return w.toSummary()
}

func parseAll(items []wireContent) ([]ContentSummary, error) {
	out := make([]ContentSummary, 0, len(items))
	for i := range items {
		c, err := items[i].toSummary()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
