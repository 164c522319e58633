package readwise

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mrlokans/go-readwise/ratelimit"
)

const (
	legacyBaseURL = "https://readwise.io/api/v2"
	readerBaseURL = "https://readwise.io/api/v3"

	defaultTimeout  = 30 * time.Second
	defaultPageSize = 1000

	// Delay between retries of a page request whose body was cut off
	// mid-stream. Only the cursor-paged surface uses this.
	transientRetryDelay = 5 * time.Second

	// Fallback when a 429 response carries no usable Retry-After header.
	defaultRetryAfter = time.Second
)

// apiClient is the shared request core behind both API surfaces. Each surface
// supplies its own base URL, budget classes and pagination strategy on top.
type apiClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
	pageSize   int

	// sleep is swapped out in tests so 429 and transient-retry waits do not
	// slow the suite down.
	sleep func(ctx context.Context, d time.Duration) error
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		token:      token,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		pageSize:   defaultPageSize,
		sleep:      sleepContext,
	}
}

// do issues one logical API call: it acquires the class budget, sends the
// request, absorbs any 429 responses, and retries the whole exchange with
// backoff when the local budget stays exhausted. On success it returns the
// response body.
func (c *apiClient) do(ctx context.Context, method, endpoint string, params url.Values, body any, class ratelimit.Class) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	var out []byte
	err := c.limiter.Retry(ctx, func() error {
		if err := c.limiter.Acquire(ctx, class); err != nil {
			return err
		}
		b, err := c.send(ctx, method, endpoint, params, payload)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if errors.Is(err, ratelimit.ErrBudgetExceeded) {
		return nil, &RateLimitError{Class: string(class), Attempts: ratelimit.MaxAttempts}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// send performs the HTTP exchange. A 429 response is never surfaced: the
// client sleeps for the server-stated Retry-After and resends the identical
// request, as many times as the server demands. The resend fully replaces
// the prior attempt's response.
func (c *apiClient) send(ctx context.Context, method, endpoint string, params url.Values, payload []byte) ([]byte, error) {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	for {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Token "+c.token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.logger.Debug("readwise request", "method", method, "url", u)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.logger.Warn("rate limited by Readwise", "retry_after", wait)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrInvalidToken
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		if readErr != nil {
			return nil, fmt.Errorf("%w: %v", errTruncatedBody, readErr)
		}
		return body, nil
	}
}

func retryAfter(resp *http.Response) time.Duration {
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
