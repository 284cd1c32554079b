package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmchoi/nitpicker/internal/domain"
)

func validComment() domain.ReviewComment {
	return domain.ReviewComment{
		Path: "src/main.py",
		Line: 13,
		Body: "this can raise when user is nil",
		Side: domain.SideRight,
	}
}

func TestReviewComment_Validate(t *testing.T) {
	require.NoError(t, validComment().Validate())
}

func TestReviewComment_Validate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ReviewComment)
	}{
		{"empty path", func(c *domain.ReviewComment) { c.Path = "  " }},
		{"zero line", func(c *domain.ReviewComment) { c.Line = 0 }},
		{"negative line", func(c *domain.ReviewComment) { c.Line = -3 }},
		{"empty body", func(c *domain.ReviewComment) { c.Body = "" }},
		{"bad side", func(c *domain.ReviewComment) { c.Side = "MIDDLE" }},
		{"lowercase side", func(c *domain.ReviewComment) { c.Side = "right" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comment := validComment()
			tt.mutate(&comment)
			assert.Error(t, comment.Validate())
		})
	}
}

func TestSample_Validate(t *testing.T) {
	sample := domain.Sample{
		Input: "diff --git a/main.py b/main.py",
		Target: domain.Target{
			ExpectedIssues: []domain.Issue{
				{Type: "null_pointer", Line: 13, Description: "user may be nil", Severity: "high"},
			},
		},
	}
	require.NoError(t, sample.Validate())
}

func TestSample_Validate_CleanCodeNeedsNoIssues(t *testing.T) {
	sample := domain.Sample{
		Input:  "diff --git a/validator.py b/validator.py",
		Target: domain.Target{IsCleanCode: true},
	}
	assert.NoError(t, sample.Validate())
}

func TestSample_Validate_Rejections(t *testing.T) {
	assert.Error(t, domain.Sample{}.Validate(), "empty input")

	noTarget := domain.Sample{Input: "diff --git a/x b/x"}
	assert.Error(t, noTarget.Validate(), "no issues, no feedback, not clean")
}
