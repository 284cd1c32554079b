package review

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lmchoi/nitpicker/internal/agent"
	"github.com/lmchoi/nitpicker/internal/domain"
)

// DiffTool exposes the pull request diff to the model as the get_pr_diff
// function.
type DiffTool struct {
	source DiffSource
}

// NewDiffTool creates the diff tool over a diff source.
func NewDiffTool(source DiffSource) *DiffTool {
	return &DiffTool{source: source}
}

// Name returns the tool name.
func (t *DiffTool) Name() string {
	return "get_pr_diff"
}

// Description returns the tool description.
func (t *DiffTool) Description() string {
	return "Get the unified diff for a GitHub pull request by PR number"
}

// Parameters returns the input schema.
func (t *DiffTool) Parameters() map[string]agent.Param {
	return map[string]agent.Param{
		"pr_number": {
			Type:        "string",
			Description: "The pull request number",
			Required:    true,
		},
	}
}

// Execute fetches the diff for the requested PR.
func (t *DiffTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	prNumber, err := stringArg(args, "pr_number")
	if err != nil {
		return nil, err
	}

	diff, err := t.source.PRDiff(ctx, prNumber)
	if err != nil {
		return nil, err
	}
	return map[string]any{"diff": diff}, nil
}

// PendingReviewTool exposes review creation to the model as the
// create_pending_review function. The tool enforces the batch contract: the
// comment list must be non-empty and at most one review is created per run.
type PendingReviewTool struct {
	publisher Publisher
	posted    bool
}

// NewPendingReviewTool creates the review-posting tool over a publisher.
func NewPendingReviewTool(publisher Publisher) *PendingReviewTool {
	return &PendingReviewTool{publisher: publisher}
}

// Name returns the tool name.
func (t *PendingReviewTool) Name() string {
	return "create_pending_review"
}

// Description returns the tool description.
func (t *PendingReviewTool) Description() string {
	return "Create a pending review for a pull request with a batch of line comments"
}

// Parameters returns the input schema.
func (t *PendingReviewTool) Parameters() map[string]agent.Param {
	return map[string]agent.Param{
		"pr_number": {
			Type:        "string",
			Description: "The pull request number",
			Required:    true,
		},
		"comments": {
			Type:        "array",
			Description: "Review comments, each with path, line, body and side (LEFT or RIGHT)",
			Required:    true,
		},
	}
}

// Posted reports whether a review was created during this run.
func (t *PendingReviewTool) Posted() bool {
	return t.posted
}

// Execute validates the comment batch and submits it in one call. The empty
// batch and repeat-call checks run before any network activity.
func (t *PendingReviewTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	if t.posted {
		return nil, fmt.Errorf("a pending review was already created for this run")
	}

	prNumber, err := stringArg(args, "pr_number")
	if err != nil {
		return nil, err
	}

	comments, err := parseComments(args["comments"])
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, fmt.Errorf("comments must not be empty")
	}

	if err := t.publisher.Publish(ctx, prNumber, comments); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	t.posted = true
	return map[string]any{
		"status":   "pending review created",
		"comments": len(comments),
	}, nil
}

// parseComments converts the model-supplied argument into validated domain
// comments, preserving order.
func parseComments(raw any) ([]domain.ReviewComment, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("comments must be an array")
	}

	comments := make([]domain.ReviewComment, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("comment %d must be an object", i)
		}

		comment := domain.ReviewComment{
			Path: asString(entry["path"]),
			Body: asString(entry["body"]),
			Side: domain.Side(asString(entry["side"])),
		}
		line, err := asInt(entry["line"])
		if err != nil {
			return nil, fmt.Errorf("comment %d: line: %w", i, err)
		}
		comment.Line = line

		if err := comment.Validate(); err != nil {
			return nil, fmt.Errorf("comment %d: %w", i, err)
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

func stringArg(args map[string]any, name string) (string, error) {
	raw, ok := args[name]
	if !ok {
		return "", fmt.Errorf("%s is required", name)
	}
	value := asString(raw)
	if value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return value, nil
}

// asString renders model-supplied values that may arrive as strings or JSON
// numbers.
func asString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	default:
		return ""
	}
}

func asInt(v any) (int, error) {
	switch value := v.(type) {
	case float64:
		return int(value), nil
	case int:
		return value, nil
	case string:
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", value)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("missing or not a number")
	}
}

// Compile-time interface checks
var (
	_ agent.Tool = (*DiffTool)(nil)
	_ agent.Tool = (*PendingReviewTool)(nil)
)
