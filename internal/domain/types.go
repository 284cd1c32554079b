package domain

import (
	"fmt"
	"strings"
)

// Side identifies which side of a unified diff a review comment targets.
type Side string

const (
	// SideLeft marks the original version of the file.
	SideLeft Side = "LEFT"

	// SideRight marks the revised version of the file.
	SideRight Side = "RIGHT"
)

// ReviewComment is a single line-level remark destined for a pull request
// review. Comments are collected into one ordered batch and submitted to the
// hosting provider in a single call.
type ReviewComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Body string `json:"body"`
	Side Side   `json:"side"`
}

// Validate checks that the comment can be submitted to the provider.
func (c ReviewComment) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("comment path is required")
	}
	if c.Line <= 0 {
		return fmt.Errorf("comment line must be positive, got %d", c.Line)
	}
	if strings.TrimSpace(c.Body) == "" {
		return fmt.Errorf("comment body is required")
	}
	if c.Side != SideLeft && c.Side != SideRight {
		return fmt.Errorf("comment side must be %q or %q, got %q", SideLeft, SideRight, c.Side)
	}
	return nil
}

// ReviewResult captures the outcome of one review run.
type ReviewResult struct {
	// PRNumber identifies the reviewed pull request.
	PRNumber string

	// Summary is the model's final free-text output.
	Summary string

	// Posted reports whether a pending review was created.
	Posted bool

	// Turns is the number of model turns the run consumed.
	Turns int
}

// Issue describes one expected problem in an evaluation sample.
type Issue struct {
	Type        string `json:"type"`
	Line        int    `json:"line,omitempty"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// Target is the expected review outcome for a dataset sample.
type Target struct {
	ExpectedIssues   []Issue  `json:"expected_issues"`
	ExpectedFeedback []string `json:"expected_feedback,omitempty"`
	IsCleanCode      bool     `json:"is_clean_code"`
}

// Sample is one "diff in, expected issues out" record for benchmarking
// review tools. Serialized as newline-delimited JSON.
type Sample struct {
	Input    string         `json:"input"`
	Target   Target         `json:"target"`
	Metadata map[string]any `json:"metadata"`
}

// Validate checks that the sample is complete enough to be useful.
func (s Sample) Validate() error {
	if strings.TrimSpace(s.Input) == "" {
		return fmt.Errorf("sample input diff is required")
	}
	if !s.Target.IsCleanCode && len(s.Target.ExpectedIssues) == 0 && len(s.Target.ExpectedFeedback) == 0 {
		return fmt.Errorf("sample target must carry expected issues or feedback")
	}
	return nil
}
