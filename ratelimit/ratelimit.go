// Package ratelimit gates outgoing API calls against independent per-class
// request budgets and provides the bounded backoff retry used when a budget
// stays exhausted. It supports blocking acquisition for short waits and an
// error signal for long ones, so callers can layer their own retry policy.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Class names an independent request budget. Classes never share capacity:
// exhausting the heavy budget leaves the default budget untouched.
type Class string

const (
	// ClassDefault covers most endpoints.
	ClassDefault Class = "default"
	// ClassHeavy covers listing endpoints that return large payloads and
	// carry a much smaller allowance.
	ClassHeavy Class = "heavy"
)

const (
	// MaxAttempts bounds the backoff retry loop in Retry.
	MaxAttempts = 8

	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2

	defaultMaxWait = time.Minute
)

// ErrBudgetExceeded indicates a budget could not admit the call within the
// limiter's maximum wait. Retry treats it as retryable; everything else
// passes through untouched.
var ErrBudgetExceeded = errors.New("request budget exceeded")

// Limiter enforces one token bucket per budget class. A budget of n calls
// per period admits a burst of n immediately and refills at n/period, so a
// well-behaved caller never exceeds the advertised allowance by more than a
// single window. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	classes map[Class]*rate.Limiter

	// maxWait caps how long Acquire will block before giving up with
	// ErrBudgetExceeded instead.
	maxWait   time.Duration
	baseDelay time.Duration
}

// New creates a limiter with the given per-period budgets. Unknown classes
// passed to Acquire fall back to ClassDefault.
func New(budgets map[Class]int, period time.Duration) *Limiter {
	classes := make(map[Class]*rate.Limiter, len(budgets))
	for class, limit := range budgets {
		classes[class] = rate.NewLimiter(rate.Limit(float64(limit)/period.Seconds()), limit)
	}
	return &Limiter{
		classes:   classes,
		maxWait:   defaultMaxWait,
		baseDelay: initialRetryDelay,
	}
}

// Acquire blocks until the class budget admits one call or the context is
// canceled. If the required wait exceeds the limiter's maximum, the
// reservation is returned and ErrBudgetExceeded is reported instead of
// blocking.
func (l *Limiter) Acquire(ctx context.Context, class Class) error {
	res := l.limiter(class).Reserve()
	if !res.OK() {
		return fmt.Errorf("%s: %w", class, ErrBudgetExceeded)
	}

	delay := res.Delay()
	if delay > l.maxWait {
		res.Cancel()
		return fmt.Errorf("%s: %w", class, ErrBudgetExceeded)
	}
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		res.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry runs fn with exponential backoff, retrying only when fn reports
// ErrBudgetExceeded. Any other outcome, success or failure, is returned to
// the caller as-is. After MaxAttempts the budget error is surfaced wrapped
// with the attempt count.
func (l *Limiter) Retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, l.retryDelay(attempt)); err != nil {
				return err
			}
		}

		lastErr = fn()
		if lastErr == nil || !errors.Is(lastErr, ErrBudgetExceeded) {
			return lastErr
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", MaxAttempts, lastErr)
}

func (l *Limiter) limiter(class Class) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.classes[class]; ok {
		return lim
	}
	return l.classes[ClassDefault]
}

func (l *Limiter) retryDelay(attempt int) time.Duration {
	delay := l.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
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
