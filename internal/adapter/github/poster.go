package github

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lmchoi/nitpicker/internal/domain"
)

// Poster adapts the API client to the review publisher port for a fixed
// repository.
type Poster struct {
	client *Client
	owner  string
	repo   string
}

// NewPoster creates a poster for owner/repo.
func NewPoster(client *Client, owner, repo string) *Poster {
	return &Poster{client: client, owner: owner, repo: repo}
}

// Publish creates one pending review carrying the whole comment batch.
func (p *Poster) Publish(ctx context.Context, prNumber string, comments []domain.ReviewComment) error {
	number, err := strconv.Atoi(prNumber)
	if err != nil {
		return fmt.Errorf("invalid pull request number %q: %w", prNumber, err)
	}

	_, err = p.client.CreateReview(ctx, CreateReviewInput{
		Owner:      p.owner,
		Repo:       p.repo,
		PullNumber: number,
		Comments:   comments,
	})
	return err
}
