// Package gemini implements the model backend adapter over the Gemini
// generateContent HTTP API, including the chat session used by the
// tool-invocation loop.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	llmhttp "github.com/lmchoi/nitpicker/internal/adapter/llm/http"
)

const (
	providerName   = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultTimeout = 60 * time.Second
)

// HTTPClient is an HTTP client for the Google Gemini API.
type HTTPClient struct {
	apiKey    string
	model     string
	baseURL   string
	retryConf llmhttp.RetryConfig
	client    *http.Client
	logger    llmhttp.Logger
}

// NewHTTPClient creates a new Gemini HTTP client.
func NewHTTPClient(apiKey, model string, timeout time.Duration, retryConf llmhttp.RetryConfig) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		apiKey:    apiKey,
		model:     model,
		baseURL:   defaultBaseURL,
		retryConf: retryConf,
		client:    &http.Client{Timeout: timeout},
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

// SetLogger sets the logger for this client.
func (c *HTTPClient) SetLogger(logger llmhttp.Logger) {
	c.logger = logger
}

// Model returns the configured model name.
func (c *HTTPClient) Model() string {
	return c.model
}

// CallOptions contains options for one generateContent call.
type CallOptions struct {
	// Temperature for sampling; nil leaves the model default, a pointer to
	// zero pins deterministic output.
	Temperature *float64
	MaxTokens   int
}

// APIResponse is the parsed result of one generateContent call.
type APIResponse struct {
	// Text is the concatenated text parts of the candidate.
	Text string

	// FunctionCalls are the structured tool requests, in emitted order.
	FunctionCalls []FunctionCall

	TokensIn     int
	TokensOut    int
	FinishReason string
}

// GenerateContent sends the full conversation plus tool declarations and
// returns the parsed candidate. The caller owns the history; the client is
// stateless between calls.
func (c *HTTPClient) GenerateContent(ctx context.Context, contents []Content, tools []Tool, options CallOptions) (*APIResponse, error) {
	startTime := time.Now()

	promptChars := 0
	for _, content := range contents {
		for _, part := range content.Parts {
			promptChars += len(part.Text)
		}
	}

	if c.logger != nil {
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Provider:    providerName,
			Model:       c.model,
			Timestamp:   startTime,
			PromptChars: promptChars,
			APIKey:      c.apiKey,
		})
	}

	reqBody := GenerateContentRequest{
		Contents: contents,
		Tools:    tools,
		GenerationConfig: &GenerationConfig{
			Temperature:    options.Temperature,
			CandidateCount: 1,
		},
	}
	if options.MaxTokens > 0 {
		reqBody.GenerationConfig.MaxOutputTokens = options.MaxTokens
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var resp *http.Response
	err = llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if reqErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Provider:  providerName,
			}
		}
		req.Header.Set("Content-Type", "application/json")

		var callErr error
		resp, callErr = c.client.Do(req)
		if callErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeTimeout,
				Message:   callErr.Error(),
				Retryable: false,
				Provider:  providerName,
			}
		}

		if resp.StatusCode >= 400 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return c.handleErrorResponse(resp.StatusCode, bodyBytes)
		}
		return nil
	}, c.retryConf)

	duration := time.Since(startTime)

	if err != nil {
		if c.logger != nil {
			var httpErr *llmhttp.Error
			if errors.As(err, &httpErr) {
				c.logger.LogError(ctx, llmhttp.ErrorLog{
					Provider:   providerName,
					Model:      c.model,
					Timestamp:  time.Now(),
					Duration:   duration,
					Error:      err,
					ErrorType:  httpErr.Type,
					StatusCode: httpErr.StatusCode,
					Retryable:  httpErr.Retryable,
				})
			}
		}
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var genResp GenerateContentResponse
	if err := json.Unmarshal(bodyBytes, &genResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if len(genResp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}
	candidate := genResp.Candidates[0]

	if candidate.FinishReason == "SAFETY" {
		return nil, &llmhttp.Error{
			Type:      llmhttp.ErrTypeContentFiltered,
			Message:   "content blocked by safety filters",
			Retryable: false,
			Provider:  providerName,
		}
	}

	response := &APIResponse{
		TokensIn:     genResp.UsageMetadata.PromptTokenCount,
		TokensOut:    genResp.UsageMetadata.CandidatesTokenCount,
		FinishReason: candidate.FinishReason,
	}
	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			response.FunctionCalls = append(response.FunctionCalls, *part.FunctionCall)
			continue
		}
		response.Text += part.Text
	}

	if c.logger != nil {
		c.logger.LogResponse(ctx, llmhttp.ResponseLog{
			Provider:     providerName,
			Model:        c.model,
			Timestamp:    time.Now(),
			Duration:     duration,
			TokensIn:     response.TokensIn,
			TokensOut:    response.TokensOut,
			StatusCode:   resp.StatusCode,
			FinishReason: response.FinishReason,
		})
	}

	return response, nil
}

// handleErrorResponse maps HTTP status codes to typed errors.
func (c *HTTPClient) handleErrorResponse(statusCode int, body []byte) error {
	var errResp ErrorResponse
	message := fmt.Sprintf("HTTP %d", statusCode)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	newErr := func(errType llmhttp.ErrorType, retryable bool) error {
		return &llmhttp.Error{
			Type:       errType,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  retryable,
			Provider:   providerName,
		}
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return newErr(llmhttp.ErrTypeAuthentication, false)
	case http.StatusTooManyRequests:
		return newErr(llmhttp.ErrTypeRateLimit, true)
	case http.StatusBadRequest:
		return newErr(llmhttp.ErrTypeInvalidRequest, false)
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return newErr(llmhttp.ErrTypeServiceUnavailable, true)
	default:
		return newErr(llmhttp.ErrTypeUnknown, false)
	}
}
