// Package review orchestrates a single automated review run: fetch the pull
// request diff, render the instruction prompt, drive the model's
// tool-invocation loop, and report the outcome.
package review

import (
	"context"
	"fmt"

	"github.com/lmchoi/nitpicker/internal/agent"
	"github.com/lmchoi/nitpicker/internal/domain"
)

// DiffSource obtains the unified diff for a pull request.
type DiffSource interface {
	PRDiff(ctx context.Context, prNumber string) (string, error)
}

// Publisher posts one batch of review comments as a single pending review.
type Publisher interface {
	Publish(ctx context.Context, prNumber string, comments []domain.ReviewComment) error
}

// SessionFactory opens a fresh model session bound to the given tool
// schemas. One session per run.
type SessionFactory func(descriptors []agent.Descriptor) agent.Session

// TokenEstimator reports an approximate token count for prompt budgeting.
type TokenEstimator func(text string) int

// Request describes one review run.
type Request struct {
	// PRNumber is the provider-assigned pull request identifier.
	PRNumber string

	// Post registers the create_pending_review tool and instructs the
	// model to publish its comments. When false the run is read-only and
	// the model's final text is the only output.
	Post bool

	// MaxTurns bounds the tool-invocation loop; <= 0 uses the default.
	MaxTurns int
}

// Result is the outcome of a review run.
type Result struct {
	domain.ReviewResult

	// Actions is the executed tool-call transcript.
	Actions []agent.Action
}

// Orchestrator wires the collaborators for review runs.
type Orchestrator struct {
	diffSource DiffSource
	publisher  Publisher
	sessions   SessionFactory
	estimate   TokenEstimator
	logger     agent.Logger
}

// NewOrchestrator constructs the orchestrator. publisher may be nil when
// posting is never requested; estimate and logger are optional.
func NewOrchestrator(diffSource DiffSource, publisher Publisher, sessions SessionFactory, estimate TokenEstimator, logger agent.Logger) *Orchestrator {
	return &Orchestrator{
		diffSource: diffSource,
		publisher:  publisher,
		sessions:   sessions,
		estimate:   estimate,
		logger:     logger,
	}
}

// Run executes one review. A missing or failed diff aborts the run; the
// model is never invoked against an empty diff as if it were valid.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	if req.PRNumber == "" {
		return Result{}, fmt.Errorf("pull request number is required")
	}
	if req.Post && o.publisher == nil {
		return Result{}, fmt.Errorf("posting requested but no publisher configured")
	}

	diff, err := o.diffSource.PRDiff(ctx, req.PRNumber)
	if err != nil {
		return Result{}, fmt.Errorf("fetch diff for PR %s: %w", req.PRNumber, err)
	}
	if diff == "" {
		return Result{}, fmt.Errorf("PR %s has an empty diff", req.PRNumber)
	}

	tools := []agent.Tool{NewDiffTool(o.diffSource)}
	var reviewTool *PendingReviewTool
	var prompt string
	if req.Post {
		reviewTool = NewPendingReviewTool(o.publisher)
		tools = append(tools, reviewTool)
		prompt = PostingPrompt(req.PRNumber, diff)
	} else {
		prompt = ReviewPrompt(diff)
	}

	registry, err := agent.NewRegistry(tools...)
	if err != nil {
		return Result{}, fmt.Errorf("build tool registry: %w", err)
	}

	if o.logger != nil && o.estimate != nil && len(diff) > MaxInlineDiffBytes {
		o.logger.LogWarning(ctx, "large diff embedded in prompt", map[string]interface{}{
			"pr":               req.PRNumber,
			"diff_bytes":       len(diff),
			"estimated_tokens": o.estimate(prompt),
		})
	}

	session := o.sessions(registry.Descriptors())
	runner := agent.NewRunner(registry, req.MaxTurns, o.logger)

	runResult, err := runner.Run(ctx, session, prompt)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		ReviewResult: domain.ReviewResult{
			PRNumber: req.PRNumber,
			Summary:  runResult.Text,
			Turns:    runResult.Turns,
		},
		Actions: runResult.Actions,
	}
	if reviewTool != nil {
		result.Posted = reviewTool.Posted()
	}
	return result, nil
}
