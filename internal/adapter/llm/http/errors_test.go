package http_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	llmhttp "github.com/lmchoi/nitpicker/internal/adapter/llm/http"
)

func TestError_Message(t *testing.T) {
	err := &llmhttp.Error{
		Type:       llmhttp.ErrTypeRateLimit,
		Message:    "quota exceeded",
		StatusCode: 429,
		Retryable:  true,
		Provider:   "gemini",
	}

	assert.Equal(t, "gemini: rate limit exceeded: quota exceeded (status: 429)", err.Error())
	assert.True(t, err.IsRetryable())
}

func TestError_IsMatchesOnType(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &llmhttp.Error{
		Type:     llmhttp.ErrTypeAuthentication,
		Provider: "github",
	})

	assert.True(t, errors.Is(err, &llmhttp.Error{Type: llmhttp.ErrTypeAuthentication}))
	assert.False(t, errors.Is(err, &llmhttp.Error{Type: llmhttp.ErrTypeRateLimit}))
}

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "authentication error", llmhttp.ErrTypeAuthentication.String())
	assert.Equal(t, "rate limit exceeded", llmhttp.ErrTypeRateLimit.String())
	assert.Equal(t, "content filtered", llmhttp.ErrTypeContentFiltered.String())
	assert.Equal(t, "unknown error", llmhttp.ErrTypeUnknown.String())
}
