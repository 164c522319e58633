package readwise

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mrlokans/go-readwise/ratelimit"
)

// Books lists all books, optionally filtered by category ("books",
// "articles", "tweets" or "podcasts"; empty means all). The walk starts at
// page 1 on every call. This endpoint returns large payloads and runs under
// the 20 requests/minute budget.
func (c *Client) Books(ctx context.Context, category string) *Iterator[Book] {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	return &Iterator[Book]{
		fetch:  c.api.offsetFetch(ctx, "/books", params, ratelimit.ClassHeavy),
		decode: DecodeBook,
	}
}

// BookHighlights lists all highlights belonging to a book. Like Books, this
// runs under the 20 requests/minute budget.
func (c *Client) BookHighlights(ctx context.Context, bookID string) *Iterator[Highlight] {
	params := url.Values{}
	params.Set("book_id", bookID)
	return &Iterator[Highlight]{
		fetch:  c.api.offsetFetch(ctx, "/highlights", params, ratelimit.ClassHeavy),
		decode: DecodeHighlight,
	}
}

// BookTags lists the tags on a book. The server answers with a bare list,
// so the walk always finishes after one request.
func (c *Client) BookTags(ctx context.Context, bookID string) *Iterator[Tag] {
	return &Iterator[Tag]{
		fetch:  c.api.offsetFetch(ctx, "/books/"+bookID+"/tags", url.Values{}, ratelimit.ClassDefault),
		decode: DecodeTag,
	}
}

type highlightPayload struct {
	Text          string `json:"text"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Author        string `json:"author,omitempty"`
	HighlightedAt string `json:"highlighted_at,omitempty"`
	SourceURL     string `json:"source_url,omitempty"`
	Note          string `json:"note,omitempty"`
}

// CreateHighlight creates a single highlight. The server expects a batch
// envelope even for one highlight, so the payload is wrapped in a
// one-element highlights list. Optional fields are omitted entirely when
// unset; the API reads omission, not null, as "no value".
func (c *Client) CreateHighlight(ctx context.Context, h NewHighlight) error {
	if h.Text == "" || h.Title == "" {
		return errors.New("readwise: highlight text and title are required")
	}

	payload := highlightPayload{
		Text:      h.Text,
		Title:     h.Title,
		Category:  h.Category,
		Author:    h.Author,
		SourceURL: h.SourceURL,
		Note:      h.Note,
	}
	if payload.Category == "" {
		payload.Category = "articles"
	}
	if h.HighlightedAt != nil {
		payload.HighlightedAt = h.HighlightedAt.Format(time.RFC3339)
	}

	body := map[string][]highlightPayload{"highlights": {payload}}
	_, err := c.api.do(ctx, http.MethodPost, "/highlights/", nil, body, ratelimit.ClassDefault)
	return err
}

// AddBookTag attaches a tag to a book. The server treats duplicate names as
// a conflict; the caller decides how to handle that.
func (c *Client) AddBookTag(ctx context.Context, bookID, name string) error {
	body := map[string]string{"name": name}
	_, err := c.api.do(ctx, http.MethodPost, "/books/"+bookID+"/tags/", nil, body, ratelimit.ClassDefault)
	return err
}

// DeleteBookTag removes a tag from a book.
func (c *Client) DeleteBookTag(ctx context.Context, bookID, tagID string) error {
	_, err := c.api.do(ctx, http.MethodDelete, "/books/"+bookID+"/tags/"+tagID, nil, nil, ratelimit.ClassDefault)
	return err
}

// ValidateToken checks the configured token against the auth endpoint.
// Returns ErrInvalidToken when the server rejects it.
func (c *Client) ValidateToken(ctx context.Context) error {
	if _, err := c.api.do(ctx, http.MethodGet, "/auth/", nil, nil, ratelimit.ClassDefault); err != nil {
		return fmt.Errorf("validate token: %w", err)
	}
	return nil
}
