package http_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmhttp "github.com/lmchoi/nitpicker/internal/adapter/llm/http"
)

func testRetryConfig() llmhttp.RetryConfig {
	return llmhttp.RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     4 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func retryableErr() error {
	return &llmhttp.Error{Type: llmhttp.ErrTypeServiceUnavailable, Retryable: true}
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, llmhttp.ShouldRetry(retryableErr()))
	assert.False(t, llmhttp.ShouldRetry(&llmhttp.Error{Type: llmhttp.ErrTypeAuthentication}))
	assert.False(t, llmhttp.ShouldRetry(errors.New("plain error")))
}

func TestExponentialBackoff_BoundedWithJitter(t *testing.T) {
	config := llmhttp.RetryConfig{
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     32 * time.Second,
		Multiplier:     2.0,
	}

	for attempt := 0; attempt < 10; attempt++ {
		backoff := llmhttp.ExponentialBackoff(attempt, config)
		assert.GreaterOrEqual(t, backoff, time.Duration(0))
		assert.LessOrEqual(t, backoff, config.MaxBackoff)
	}

	// First attempt stays within ±25% of the initial backoff.
	first := llmhttp.ExponentialBackoff(0, config)
	assert.GreaterOrEqual(t, first, 1500*time.Millisecond)
	assert.LessOrEqual(t, first, 2500*time.Millisecond)
}

func TestRetryWithBackoff_SucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := llmhttp.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return retryableErr()
		}
		return nil
	}, testRetryConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_NonRetryableFailsFast(t *testing.T) {
	attempts := 0
	authErr := &llmhttp.Error{Type: llmhttp.ErrTypeAuthentication, Retryable: false}

	err := llmhttp.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		attempts++
		return authErr
	}, testRetryConfig())

	require.ErrorIs(t, err, authErr)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	attempts := 0
	err := llmhttp.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		attempts++
		return retryableErr()
	}, testRetryConfig())

	require.Error(t, err)
	// Initial attempt plus MaxRetries.
	assert.Equal(t, 4, attempts)
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		attempts++
		return retryableErr()
	}, testRetryConfig())

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts)
}
