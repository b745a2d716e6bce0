package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var retried []int
	cfg := fastRetry(5)
	cfg.OnRetry = func(attempt int, err error, wait time.Duration) { retried = append(retried, attempt) }

	err := Retry(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(3), func() error {
		calls++
		return errors.New("down")
	})

	assert.EqualError(t, err, "down")
	assert.Equal(t, 3, calls)
}

func TestRetryWithResult_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastRetry(5)
	cfg.InitialDelay = time.Second
	_, err := RetryWithResult(ctx, cfg, func() (int, error) {
		return 0, errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, CalculateBackoff(0, 100*time.Millisecond, time.Second, 2))
	assert.Equal(t, 400*time.Millisecond, CalculateBackoff(2, 100*time.Millisecond, time.Second, 2))
	assert.Equal(t, time.Second, CalculateBackoff(10, 100*time.Millisecond, time.Second, 2))
}
