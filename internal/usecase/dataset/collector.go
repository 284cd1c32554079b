package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/lmchoi/nitpicker/internal/adapter/github"
	"github.com/lmchoi/nitpicker/internal/domain"
)

// PullRequestAPI is the provider surface the collector needs.
type PullRequestAPI interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
	ListReviews(ctx context.Context, owner, repo string, number int) ([]github.Review, error)
	ListRecentMergedPulls(ctx context.Context, owner, repo string, limit int) ([]int, error)
}

// Collector builds samples from real pull requests, using existing review
// feedback as ground truth.
type Collector struct {
	api PullRequestAPI
}

// NewCollector creates a collector over the provider API.
func NewCollector(api PullRequestAPI) *Collector {
	return &Collector{api: api}
}

// CollectRepo collects samples from the named repository ("owner/name").
// With explicit prNumbers only those PRs are fetched; otherwise up to limit
// recently merged PRs are used.
func (c *Collector) CollectRepo(ctx context.Context, repo string, prNumbers []int, limit int) ([]domain.Sample, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	if len(prNumbers) == 0 {
		prNumbers, err = c.api.ListRecentMergedPulls(ctx, owner, name, limit)
		if err != nil {
			return nil, fmt.Errorf("list merged PRs for %s: %w", repo, err)
		}
	}

	var samples []domain.Sample
	for _, number := range prNumbers {
		sample, err := c.collectOne(ctx, owner, name, number)
		if err != nil {
			return nil, fmt.Errorf("collect %s#%d: %w", repo, number, err)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func (c *Collector) collectOne(ctx context.Context, owner, repo string, number int) (domain.Sample, error) {
	pr, err := c.api.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return domain.Sample{}, err
	}

	diff, err := c.api.GetPullRequestDiff(ctx, owner, repo, number)
	if err != nil {
		return domain.Sample{}, err
	}

	reviews, err := c.api.ListReviews(ctx, owner, repo, number)
	if err != nil {
		return domain.Sample{}, err
	}

	issues := extractIssues(reviews)
	return domain.Sample{
		Input: diff,
		Target: domain.Target{
			ExpectedIssues: issues,
			IsCleanCode:    len(issues) == 0,
		},
		Metadata: map[string]any{
			"category":      "real-world",
			"repo":          owner + "/" + repo,
			"pr_number":     number,
			"pr_status":     pr.State,
			"merge_status":  pr.Merged,
			"language":      detectLanguage(diff),
			"lines_changed": pr.Additions + pr.Deletions,
		},
	}, nil
}

var issueKeywords = []string{"bug", "issue", "problem", "error"}

// extractIssues mines CHANGES_REQUESTED review bodies for issue reports.
func extractIssues(reviews []github.Review) []domain.Issue {
	var issues []domain.Issue
	for _, review := range reviews {
		if review.State != "CHANGES_REQUESTED" {
			continue
		}
		body := review.Body
		if !containsAny(strings.ToLower(body), issueKeywords) {
			continue
		}
		if len(body) > 200 {
			body = body[:200] + "..."
		}
		issues = append(issues, domain.Issue{
			Type:        "review_feedback",
			Description: body,
			Severity:    "medium",
		})
	}
	return issues
}

var languageExtensions = []struct {
	ext  string
	lang string
}{
	{".py", "python"},
	{".js", "javascript"},
	{".java", "java"},
	{".cpp", "cpp"},
	{".go", "go"},
	{".rs", "rust"},
}

// detectLanguage guesses the dominant language from file extensions in the
// diff headers.
func detectLanguage(diff string) string {
	for _, entry := range languageExtensions {
		if strings.Contains(diff, entry.ext) {
			return entry.lang
		}
	}
	return "unknown"
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func splitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must be owner/name, got %q", repo)
	}
	return parts[0], parts[1], nil
}
