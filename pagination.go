package readwise

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mrlokans/go-readwise/ratelimit"
)

// Iterator lazily walks a paginated listing, one record at a time. Records
// are fetched page by page as Next advances, so a call may block on the rate
// limiter or a retry sleep. Each listing method returns a fresh Iterator
// starting from the first page; iterators are not safe for concurrent use.
//
//	it := client.Books(ctx, "articles")
//	for it.Next() {
//		book := it.Value()
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type Iterator[T any] struct {
	// fetch returns the next page's raw records and whether more pages
	// remain. It owns all pagination state.
	fetch  func() (records []json.RawMessage, more bool, err error)
	decode func(json.RawMessage) (T, error)

	buf  []json.RawMessage
	cur  T
	err  error
	done bool
}

// Next advances to the next record, fetching further pages as needed. It
// returns false when the listing is exhausted or an error occurred; check
// Err afterwards to tell the two apart.
func (it *Iterator[T]) Next() bool {
	if it.err != nil {
		return false
	}
	for len(it.buf) == 0 {
		if it.done {
			return false
		}
		records, more, err := it.fetch()
		if err != nil {
			it.err = err
			return false
		}
		it.buf = records
		it.done = !more
	}

	v, err := it.decode(it.buf[0])
	it.buf = it.buf[1:]
	if err != nil {
		it.err = err
		return false
	}
	it.cur = v
	return true
}

// Value returns the record produced by the last successful Next.
func (it *Iterator[T]) Value() T { return it.cur }

// Err returns the first error hit during iteration, if any. Records already
// yielded remain valid.
func (it *Iterator[T]) Err() error { return it.err }

// pageEnvelope is the decoded shape of one listing response. Some endpoints
// return a bare JSON list instead of the {results, next} wrapper; detection
// is structural, on the first byte of the payload.
type pageEnvelope struct {
	results  []json.RawMessage
	next     string // offset surface: next page URL, "" when absent
	cursor   string // reader surface: nextPageCursor, "" when absent
	bareList bool
}

func parsePage(body []byte) (pageEnvelope, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return pageEnvelope{}, fmt.Errorf("decode list response: %w", err)
		}
		return pageEnvelope{results: records, bareList: true}, nil
	}

	var env struct {
		Results        []json.RawMessage `json:"results"`
		Next           *string           `json:"next"`
		NextPageCursor *string           `json:"nextPageCursor"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return pageEnvelope{}, fmt.Errorf("decode page envelope: %w", err)
	}
	out := pageEnvelope{results: env.Results}
	if env.Next != nil {
		out.next = *env.Next
	}
	if env.NextPageCursor != nil {
		out.cursor = *env.NextPageCursor
	}
	return out, nil
}

// offsetFetch builds a page fetcher for the offset-paged legacy surface:
// page starts at 1 with a fixed page size, and the walk stops on a bare-list
// response or a falsy next link.
func (c *apiClient) offsetFetch(ctx context.Context, endpoint string, params url.Values, class ratelimit.Class) func() ([]json.RawMessage, bool, error) {
	page := 1
	return func() ([]json.RawMessage, bool, error) {
		q := cloneValues(params)
		q.Set("page", strconv.Itoa(page))
		q.Set("page_size", strconv.Itoa(c.pageSize))

		body, err := c.do(ctx, http.MethodGet, endpoint, q, nil, class)
		if err != nil {
			return nil, false, err
		}
		env, err := parsePage(body)
		if err != nil {
			return nil, false, err
		}
		if env.bareList || env.next == "" {
			return env.results, false, nil
		}
		page++
		return env.results, true, nil
	}
}

// cursorFetch builds a page fetcher for the cursor-paged reader surface. The
// walk stops on a bare list, a falsy nextPageCursor, or a cursor that repeats
// the one just used (guard against a server looping on itself). A truncated
// response body is absorbed by waiting and re-issuing the same page with the
// same cursor; the legacy surface has no such tolerance.
func (c *apiClient) cursorFetch(ctx context.Context, endpoint string, params url.Values, class ratelimit.Class) func() ([]json.RawMessage, bool, error) {
	cursor := ""
	return func() ([]json.RawMessage, bool, error) {
		for {
			q := cloneValues(params)
			if cursor != "" {
				q.Set("pageCursor", cursor)
			}

			body, err := c.do(ctx, http.MethodGet, endpoint, q, nil, class)
			if err != nil {
				if errors.Is(err, errTruncatedBody) {
					c.logger.Warn("truncated page response, retrying", "delay", transientRetryDelay)
					if serr := c.sleep(ctx, transientRetryDelay); serr != nil {
						return nil, false, serr
					}
					continue
				}
				return nil, false, err
			}
			env, err := parsePage(body)
			if err != nil {
				return nil, false, err
			}
			if env.bareList || env.cursor == "" || env.cursor == cursor {
				return env.results, false, nil
			}
			cursor = env.cursor
			return env.results, true, nil
		}
	}
}

// cloneValues copies query parameters so each request gets a fresh container.
func cloneValues(params url.Values) url.Values {
	q := make(url.Values, len(params)+2)
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	return q
}
