package review_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmchoi/nitpicker/internal/agent"
	"github.com/lmchoi/nitpicker/internal/usecase/review"
)

// stubSession replays a fixed script; used through the factory so the
// orchestrator owns the loop.
type stubSession struct {
	replies     []agent.Reply
	prompts     []string
	descriptors []agent.Descriptor
}

func (s *stubSession) Send(ctx context.Context, prompt string) (agent.Reply, error) {
	s.prompts = append(s.prompts, prompt)
	return s.pop()
}

func (s *stubSession) Reply(ctx context.Context, results []agent.CallResult) (agent.Reply, error) {
	return s.pop()
}

func (s *stubSession) pop() (agent.Reply, error) {
	if len(s.replies) == 0 {
		return agent.Reply{}, errors.New("stub session exhausted")
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

func sessionFactory(session *stubSession) review.SessionFactory {
	return func(descriptors []agent.Descriptor) agent.Session {
		session.descriptors = descriptors
		return session
	}
}

func TestOrchestrator_ReadOnlyRun(t *testing.T) {
	source := &fakeDiffSource{diff: sampleDiff}
	session := &stubSession{replies: []agent.Reply{{Text: "two nitpicks found"}}}

	orch := review.NewOrchestrator(source, nil, sessionFactory(session), nil, nil)

	result, err := orch.Run(context.Background(), review.Request{PRNumber: "42"})
	require.NoError(t, err)

	assert.Equal(t, "42", result.PRNumber)
	assert.Equal(t, "two nitpicks found", result.Summary)
	assert.False(t, result.Posted)
	assert.Equal(t, 1, result.Turns)

	// Read-only runs expose only the diff tool.
	require.Len(t, session.descriptors, 1)
	assert.Equal(t, "get_pr_diff", session.descriptors[0].Name)

	require.Len(t, session.prompts, 1)
	assert.Contains(t, session.prompts[0], "Review the PR and nitpick")
	assert.Contains(t, session.prompts[0], "```diff")
}

func TestOrchestrator_PostingRun(t *testing.T) {
	source := &fakeDiffSource{diff: sampleDiff}
	publisher := &fakePublisher{}
	session := &stubSession{replies: []agent.Reply{
		{Calls: []agent.Call{{
			Name: "create_pending_review",
			Args: map[string]any{
				"pr_number": "42",
				"comments":  []any{commentArg("src/main.py", float64(13), "nil deref", "RIGHT")},
			},
		}}},
		{Text: "posted one comment"},
	}}

	orch := review.NewOrchestrator(source, publisher, sessionFactory(session), nil, nil)

	result, err := orch.Run(context.Background(), review.Request{PRNumber: "42", Post: true})
	require.NoError(t, err)

	assert.True(t, result.Posted)
	assert.Equal(t, "posted one comment", result.Summary)
	assert.Equal(t, 1, publisher.calls)

	// Posting runs expose both tools and the posting prompt.
	require.Len(t, session.descriptors, 2)
	assert.Equal(t, "get_pr_diff", session.descriptors[0].Name)
	assert.Equal(t, "create_pending_review", session.descriptors[1].Name)
	assert.Contains(t, session.prompts[0], "create_pending_review tool exactly once")

	require.Len(t, result.Actions, 1)
	assert.Equal(t, "create_pending_review", result.Actions[0].Tool)
}

func TestOrchestrator_MissingPRNumber(t *testing.T) {
	orch := review.NewOrchestrator(&fakeDiffSource{}, nil, nil, nil, nil)

	_, err := orch.Run(context.Background(), review.Request{})
	require.Error(t, err)
}

func TestOrchestrator_PostWithoutPublisher(t *testing.T) {
	orch := review.NewOrchestrator(&fakeDiffSource{diff: "d"}, nil, nil, nil, nil)

	_, err := orch.Run(context.Background(), review.Request{PRNumber: "42", Post: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no publisher")
}

func TestOrchestrator_EmptyDiffAborts(t *testing.T) {
	source := &fakeDiffSource{diff: ""}
	session := &stubSession{replies: []agent.Reply{{Text: "should never be asked"}}}

	orch := review.NewOrchestrator(source, nil, sessionFactory(session), nil, nil)

	_, err := orch.Run(context.Background(), review.Request{PRNumber: "42"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty diff")
	assert.Empty(t, session.prompts, "model must not be invoked on an empty diff")
}

func TestOrchestrator_DiffFetchFailureAborts(t *testing.T) {
	source := &fakeDiffSource{err: errors.New("gh: no pull requests found")}
	orch := review.NewOrchestrator(source, nil, nil, nil, nil)

	_, err := orch.Run(context.Background(), review.Request{PRNumber: "404"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch diff")
}

func TestOrchestrator_LoopBoundSurfaced(t *testing.T) {
	source := &fakeDiffSource{diff: sampleDiff}
	replies := make([]agent.Reply, 4)
	for i := range replies {
		replies[i] = agent.Reply{Calls: []agent.Call{{Name: "get_pr_diff", Args: map[string]any{"pr_number": "42"}}}}
	}
	session := &stubSession{replies: replies}

	orch := review.NewOrchestrator(source, nil, sessionFactory(session), nil, nil)

	_, err := orch.Run(context.Background(), review.Request{PRNumber: "42", MaxTurns: 2})

	var loopErr *agent.LoopExceededError
	require.ErrorAs(t, err, &loopErr)
	assert.Equal(t, 2, loopErr.MaxTurns)
}
