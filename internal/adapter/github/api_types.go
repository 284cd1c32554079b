package github

import "github.com/lmchoi/nitpicker/internal/domain"

// GitHub Pull Request REST API types.
// See: https://docs.github.com/en/rest/pulls/reviews#create-a-review-for-a-pull-request

// ReviewEvent is the action taken when submitting a review. An empty event
// leaves the review PENDING, which is how a pending review is created.
type ReviewEvent string

const (
	EventComment        ReviewEvent = "COMMENT"
	EventApprove        ReviewEvent = "APPROVE"
	EventRequestChanges ReviewEvent = "REQUEST_CHANGES"
)

// CreateReviewRequest is the body for POST /repos/{owner}/{repo}/pulls/{pull_number}/reviews.
type CreateReviewRequest struct {
	// CommitID is the SHA the review applies to; empty uses the PR head.
	CommitID string `json:"commit_id,omitempty"`

	// Event omitted keeps the review in PENDING state.
	Event ReviewEvent `json:"event,omitempty"`

	// Body is the review summary comment.
	Body string `json:"body,omitempty"`

	// Comments are the inline comments attached to the review.
	Comments []domain.ReviewComment `json:"comments,omitempty"`
}

// CreateReviewResponse is the provider's acknowledgement. Only failure
// detection matters; the body is parsed for operator-facing context.
type CreateReviewResponse struct {
	ID      int64  `json:"id"`
	State   string `json:"state"` // PENDING, COMMENTED, APPROVED, ...
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// PullRequest is the subset of PR metadata the dataset collector uses.
type PullRequest struct {
	Number    int    `json:"number"`
	State     string `json:"state"`
	Merged    bool   `json:"merged"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	DiffURL   string `json:"diff_url"`
}

// Review is one existing review on a pull request.
type Review struct {
	ID    int64  `json:"id"`
	State string `json:"state"` // APPROVED, CHANGES_REQUESTED, COMMENTED, ...
	Body  string `json:"body"`
}

// ErrorResponse is the GitHub API error envelope.
type ErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}
