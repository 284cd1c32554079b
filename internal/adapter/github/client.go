// Package github is an HTTP adapter for the GitHub REST API: creating pull
// request reviews and fetching PR data for dataset collection.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	llmhttp "github.com/lmchoi/nitpicker/internal/adapter/llm/http"
	"github.com/lmchoi/nitpicker/internal/domain"
)

const (
	providerName   = "github"
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second
	apiVersion     = "2022-11-28"
)

// Client is an HTTP client for the GitHub REST API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	retryConf  llmhttp.RetryConfig
	logger     llmhttp.Logger
}

// NewClient creates a GitHub API client. The token is a personal access
// token or the GITHUB_TOKEN provided by Actions.
func NewClient(token string, timeout time.Duration, retryConf llmhttp.RetryConfig) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		retryConf:  retryConf,
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SetLogger enables request logging.
func (c *Client) SetLogger(logger llmhttp.Logger) {
	c.logger = logger
}

// CreateReviewInput contains all data needed to create a PR review.
type CreateReviewInput struct {
	Owner      string
	Repo       string
	PullNumber int
	Event      ReviewEvent // empty leaves the review pending
	Body       string
	Comments   []domain.ReviewComment
}

// CreateReview submits one review with the whole comment batch attached in a
// single API call. The batch must be non-empty; this is checked before any
// network activity. There is no partial-success handling: the provider
// accepts the batch or the call fails verbatim.
func (c *Client) CreateReview(ctx context.Context, input CreateReviewInput) (*CreateReviewResponse, error) {
	if len(input.Comments) == 0 {
		return nil, fmt.Errorf("review comment batch is empty")
	}
	for i, comment := range input.Comments {
		if err := comment.Validate(); err != nil {
			return nil, fmt.Errorf("comment %d: %w", i, err)
		}
	}

	reqBody := CreateReviewRequest{
		Event:    input.Event,
		Body:     input.Body,
		Comments: input.Comments,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews",
		c.baseURL, input.Owner, input.Repo, input.PullNumber)

	body, err := c.do(ctx, http.MethodPost, url, jsonData, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	var resp CreateReviewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &resp, nil
}

// GetPullRequest fetches PR metadata.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, owner, repo, number)
	body, err := c.do(ctx, http.MethodGet, url, nil, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	var pr PullRequest
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &pr, nil
}

// GetPullRequestDiff fetches the unified diff for a PR via the diff media
// type.
func (c *Client) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, owner, repo, number)
	body, err := c.do(ctx, http.MethodGet, url, nil, "application/vnd.github.v3.diff")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ListReviews fetches the existing reviews on a PR.
func (c *Client) ListReviews(ctx context.Context, owner, repo string, number int) ([]Review, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", c.baseURL, owner, repo, number)
	body, err := c.do(ctx, http.MethodGet, url, nil, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	var reviews []Review
	if err := json.Unmarshal(body, &reviews); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return reviews, nil
}

// ListRecentMergedPulls returns up to limit recently closed PR numbers that
// were merged.
func (c *Client) ListRecentMergedPulls(ctx context.Context, owner, repo string, limit int) ([]int, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls?state=closed&sort=updated&direction=desc&per_page=%d",
		c.baseURL, owner, repo, limit)
	body, err := c.do(ctx, http.MethodGet, url, nil, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	var pulls []struct {
		Number   int     `json:"number"`
		MergedAt *string `json:"merged_at"`
	}
	if err := json.Unmarshal(body, &pulls); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var numbers []int
	for _, p := range pulls {
		if p.MergedAt != nil {
			numbers = append(numbers, p.Number)
		}
	}
	return numbers, nil
}

// do executes one request with retry, returning the response body.
func (c *Client) do(ctx context.Context, method, url string, payload []byte, accept string) ([]byte, error) {
	var body []byte

	if c.logger != nil {
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Provider:    providerName,
			Timestamp:   time.Now(),
			PromptChars: len(payload),
		})
	}

	start := time.Now()
	err := llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, reqErr := http.NewRequestWithContext(ctx, method, url, reader)
		if reqErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Provider:  providerName,
			}
		}

		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Accept", accept)
		req.Header.Set("X-GitHub-Api-Version", apiVersion)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, callErr := c.httpClient.Do(req)
		if callErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeTimeout,
				Message:   callErr.Error(),
				Retryable: true,
				Provider:  providerName,
			}
		}
		defer resp.Body.Close()

		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeUnknown,
				Message:   fmt.Sprintf("read response: %v", readErr),
				Retryable: false,
				Provider:  providerName,
			}
		}

		if resp.StatusCode >= 400 {
			return handleErrorResponse(resp.StatusCode, bodyBytes)
		}

		body = bodyBytes
		return nil
	}, c.retryConf)

	if err != nil {
		if c.logger != nil {
			errLog := llmhttp.ErrorLog{
				Provider:  providerName,
				Timestamp: time.Now(),
				Duration:  time.Since(start),
				Error:     err,
			}
			var apiErr *llmhttp.Error
			if errors.As(err, &apiErr) {
				errLog.ErrorType = apiErr.Type
				errLog.StatusCode = apiErr.StatusCode
				errLog.Retryable = apiErr.Retryable
			}
			c.logger.LogError(ctx, errLog)
		}
		return nil, err
	}

	if c.logger != nil {
		c.logger.LogResponse(ctx, llmhttp.ResponseLog{
			Provider:   providerName,
			Timestamp:  time.Now(),
			Duration:   time.Since(start),
			StatusCode: http.StatusOK,
		})
	}
	return body, nil
}

// handleErrorResponse maps GitHub status codes to typed errors.
func handleErrorResponse(statusCode int, body []byte) error {
	var errResp ErrorResponse
	message := fmt.Sprintf("HTTP %d", statusCode)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
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
	case http.StatusUnprocessableEntity:
		return newErr(llmhttp.ErrTypeInvalidRequest, false)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return newErr(llmhttp.ErrTypeServiceUnavailable, true)
	default:
		return newErr(llmhttp.ErrTypeUnknown, false)
	}
}
