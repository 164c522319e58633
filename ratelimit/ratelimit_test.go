package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireWithinBurst(t *testing.T) {
	l := New(map[Class]int{ClassDefault: 3}, time.Minute)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Acquire(context.Background(), ClassDefault))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "burst acquisitions should not block")
}

func TestAcquireBudgetExceeded(t *testing.T) {
	l := New(map[Class]int{ClassDefault: 1}, time.Minute)
	l.maxWait = time.Millisecond

	require.NoError(t, l.Acquire(context.Background(), ClassDefault))

	err := l.Acquire(context.Background(), ClassDefault)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
}

func TestAcquireIndependentClasses(t *testing.T) {
	l := New(map[Class]int{ClassDefault: 1, ClassHeavy: 1}, time.Minute)
	l.maxWait = time.Millisecond

	require.NoError(t, l.Acquire(context.Background(), ClassDefault))
	require.ErrorIs(t, l.Acquire(context.Background(), ClassDefault), ErrBudgetExceeded)

	// The heavy class has its own untouched budget.
	assert.NoError(t, l.Acquire(context.Background(), ClassHeavy))
}

func TestAcquireUnknownClassFallsBack(t *testing.T) {
	l := New(map[Class]int{ClassDefault: 1}, time.Minute)
	l.maxWait = time.Millisecond

	require.NoError(t, l.Acquire(context.Background(), Class("mystery")))
	assert.ErrorIs(t, l.Acquire(context.Background(), ClassDefault), ErrBudgetExceeded)
}

func TestAcquireContextCanceled(t *testing.T) {
	l := New(map[Class]int{ClassDefault: 1}, time.Minute)

	require.NoError(t, l.Acquire(context.Background(), ClassDefault))

	// The next slot is a minute away; a canceled context must win.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := l.Acquire(ctx, ClassDefault)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetrySuccessPassesThrough(t *testing.T) {
	l := New(map[Class]int{ClassDefault: 1}, time.Minute)

	calls := 0
	err := l.Retry(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryDoesNotRetryOtherErrors(t *testing.T) {
	l := New(map[Class]int{ClassDefault: 1}, time.Minute)
	boom := errors.New("boom")

	calls := 0
	err := l.Retry(context.Background(), func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetryExhaustsBudgetErrors(t *testing.T) {
	l := New(map[Class]int{ClassDefault: 1}, time.Minute)
	l.baseDelay = time.Millisecond

	calls := 0
	err := l.Retry(context.Background(), func() error {
		calls++
		return ErrBudgetExceeded
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, MaxAttempts, calls)
}

func TestRetryRecoversMidway(t *testing.T) {
	l := New(map[Class]int{ClassDefault: 1}, time.Minute)
	l.baseDelay = time.Millisecond

	calls := 0
	err := l.Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return ErrBudgetExceeded
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryDelayGrowth(t *testing.T) {
	l := New(map[Class]int{ClassDefault: 1}, time.Minute)

	assert.Equal(t, 1*time.Second, l.retryDelay(1))
	assert.Equal(t, 2*time.Second, l.retryDelay(2))
	assert.Equal(t, 4*time.Second, l.retryDelay(3))
	assert.Equal(t, maxRetryDelay, l.retryDelay(10), "delay should be capped")
}
