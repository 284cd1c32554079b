package review

import (
	"fmt"
	"strings"
)

// MaxInlineDiffBytes is the diff size below which the diff is always
// embedded verbatim. Larger diffs are still embedded, but the orchestrator
// logs a token estimate so oversized prompts are visible to the operator.
const MaxInlineDiffBytes = 100 * 1024

// ReviewPrompt renders the instruction for a read-only review: the model
// nitpicks the diff and reports file and line for every comment.
func ReviewPrompt(diff string) string {
	var b strings.Builder
	b.WriteString("Review the PR and nitpick. For each comment or suggestion, include the file and line number.\n")
	writeDiffFence(&b, diff)
	return b.String()
}

// PostingPrompt renders the instruction for a posting review run. The prompt
// carries the aggregation contract: the model must collect every issue first
// and call create_pending_review exactly once with the full comment batch.
func PostingPrompt(prNumber, diff string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please create a pending review for PR #%s and provide specific, actionable nitpicks.\n\n", prNumber)
	b.WriteString("**IMPORTANT**: Aggregate all the issues found into a single list ")
	b.WriteString("and call the create_pending_review tool exactly once with a list of comments, ")
	b.WriteString("where each contains the following fields:\n")
	b.WriteString("- path: the file path (e.g., \"src/main.py\")\n")
	b.WriteString("- line: the line number where the issue occurs\n")
	b.WriteString("- body: your constructive feedback\n")
	b.WriteString("- side: the side of the diff where the change is located (\"LEFT\" for the original file, \"RIGHT\" for the new file)\n\n")
	b.WriteString("After posting all comments, provide a brief text summary.\n")
	writeDiffFence(&b, diff)
	return b.String()
}

func writeDiffFence(b *strings.Builder, diff string) {
	b.WriteString("```diff\n")
	b.WriteString(diff)
	if !strings.HasSuffix(diff, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```")
}
