package readwise

import (
	"errors"
	"fmt"
)

// ErrInvalidToken indicates the configured API token was rejected
var ErrInvalidToken = errors.New("invalid or expired Readwise token")

// RateLimitError is returned when the local request budget stays exhausted
// even after the bounded backoff retries. It is distinct from a server 429,
// which is never surfaced: 429 responses are absorbed by sleeping for the
// server's Retry-After and resending.
type RateLimitError struct {
	Class    string
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("readwise: %s rate budget exceeded after %d attempts", e.Class, e.Attempts)
}

// APIError represents a terminal non-2xx response. The client never retries
// these; the caller decides whether to repeat the whole operation.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("readwise: unexpected status %d: %s", e.StatusCode, e.Body)
}

// errTruncatedBody marks a response whose body could not be read or decoded
// mid-stream. The cursor pager treats it as transient and re-issues the same
// page; everywhere else it propagates.
var errTruncatedBody = errors.New("response body truncated")
