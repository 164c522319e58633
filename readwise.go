// Package readwise is a typed client for the Readwise API. It covers both
// the legacy v2 highlights/books surface and the v3 Reader documents
// surface, handling authentication, pagination, the documented request
// budgets and server-driven throttling.
//
// API documentation: https://readwise.io/api_deets and
// https://readwise.io/reader_api
package readwise

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mrlokans/go-readwise/ratelimit"
)

// Request budgets documented by Readwise, per minute.
const (
	legacyDefaultBudget = 240
	heavyListingBudget  = 20
	readerBudget        = 20
)

// Client talks to the legacy v2 highlights/books API. All methods are
// blocking; listings may sleep between pages to honor the request budgets.
type Client struct {
	api *apiClient
}

// Reader talks to the v3 Reader documents API.
type Reader struct {
	api *apiClient
}

// Option customizes a Client or Reader at construction time.
type Option func(*apiClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *apiClient) { c.httpClient = h }
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *apiClient) { c.logger = l }
}

// WithBaseURL overrides the API root. Mainly useful for tests.
func WithBaseURL(u string) Option {
	return func(c *apiClient) { c.baseURL = u }
}

// WithPageSize overrides the listing page size (default 1000).
func WithPageSize(n int) Option {
	return func(c *apiClient) { c.pageSize = n }
}

// New creates a client for the v2 highlights/books API. The token is the
// opaque access token from https://readwise.io/access_token.
func New(token string, opts ...Option) *Client {
	api := newAPIClient(legacyBaseURL, token)
	api.limiter = ratelimit.New(map[ratelimit.Class]int{
		ratelimit.ClassDefault: legacyDefaultBudget,
		ratelimit.ClassHeavy:   heavyListingBudget,
	}, time.Minute)
	for _, opt := range opts {
		opt(api)
	}
	return &Client{api: api}
}

// NewReader creates a client for the v3 Reader API. Reader grants a single
// 20 requests/minute budget for every endpoint.
func NewReader(token string, opts ...Option) *Reader {
	api := newAPIClient(readerBaseURL, token)
	api.limiter = ratelimit.New(map[ratelimit.Class]int{
		ratelimit.ClassDefault: readerBudget,
	}, time.Minute)
	for _, opt := range opts {
		opt(api)
	}
	return &Reader{api: api}
}
