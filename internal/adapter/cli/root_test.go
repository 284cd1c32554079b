package cli_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmchoi/nitpicker/internal/adapter/cli"
	"github.com/lmchoi/nitpicker/internal/domain"
	"github.com/lmchoi/nitpicker/internal/usecase/review"
)

type fakeReviewer struct {
	req    review.Request
	result review.Result
	err    error
}

func (f *fakeReviewer) Run(ctx context.Context, req review.Request) (review.Result, error) {
	f.req = req
	return f.result, f.err
}

type fakeDiffSource struct {
	diff     string
	err      error
	prNumber string
}

func (f *fakeDiffSource) PRDiff(ctx context.Context, prNumber string) (string, error) {
	f.prNumber = prNumber
	return f.diff, f.err
}

type fakeLocalDiffer struct {
	workingDiff string
	refsDiff    string
	baseRef     string
	targetRef   string
}

func (f *fakeLocalDiffer) WorkingTreeDiff(ctx context.Context, baseRef string) (string, error) {
	f.baseRef = baseRef
	return f.workingDiff, nil
}

func (f *fakeLocalDiffer) DiffRefs(ctx context.Context, baseRef, targetRef string) (string, error) {
	f.baseRef = baseRef
	f.targetRef = targetRef
	return f.refsDiff, nil
}

type fakeManager struct {
	generated map[string][]domain.Sample
	repos     []string
	prNumbers []int
	limit     int
	err       error
}

func (f *fakeManager) Generate(ctx context.Context) (map[string][]domain.Sample, error) {
	return f.generated, f.err
}

func (f *fakeManager) Collect(ctx context.Context, repos []string, prNumbers []int, perRepoLimit int) (map[string][]domain.Sample, error) {
	f.repos = repos
	f.prNumbers = prNumbers
	f.limit = perRepoLimit
	return f.generated, f.err
}

func execute(t *testing.T, deps cli.Dependencies, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	deps.Args = cli.Arguments{OutWriter: &out, ErrWriter: &errOut}

	root := cli.NewRootCommand(deps)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func staticReviewer(reviewer *fakeReviewer) cli.ReviewerFactory {
	return func(owner, repo string) cli.Reviewer { return reviewer }
}

func TestReviewCommand(t *testing.T) {
	reviewer := &fakeReviewer{result: review.Result{
		ReviewResult: domain.ReviewResult{PRNumber: "42", Summary: "two nitpicks", Turns: 2},
	}}

	out, err := execute(t, cli.Dependencies{
		Reviewer:        staticReviewer(reviewer),
		DefaultMaxTurns: 10,
	}, "review", "42")
	require.NoError(t, err)

	assert.Equal(t, "42", reviewer.req.PRNumber)
	assert.False(t, reviewer.req.Post)
	assert.Equal(t, 10, reviewer.req.MaxTurns)
	assert.Contains(t, out, "two nitpicks")
}

func TestReviewCommand_PostFlag(t *testing.T) {
	reviewer := &fakeReviewer{result: review.Result{
		ReviewResult: domain.ReviewResult{PRNumber: "42", Summary: "done", Posted: true, Turns: 3},
	}}

	out, err := execute(t, cli.Dependencies{
		Reviewer:        staticReviewer(reviewer),
		DefaultMaxTurns: 10,
	}, "review", "42", "--post", "--max-turns", "5")
	require.NoError(t, err)

	assert.True(t, reviewer.req.Post)
	assert.Equal(t, 5, reviewer.req.MaxTurns)
	assert.Contains(t, out, "Pending review created for PR #42")
}

func TestReviewCommand_OwnerRepoFlagsReachFactory(t *testing.T) {
	var gotOwner, gotRepo string
	factory := func(owner, repo string) cli.Reviewer {
		gotOwner, gotRepo = owner, repo
		return &fakeReviewer{}
	}

	_, err := execute(t, cli.Dependencies{
		Reviewer:     factory,
		DefaultOwner: "default-owner",
		DefaultRepo:  "default-repo",
	}, "review", "1", "--owner", "lmchoi", "--repo", "widgets")
	require.NoError(t, err)

	assert.Equal(t, "lmchoi", gotOwner)
	assert.Equal(t, "widgets", gotRepo)
}

func TestReviewCommand_UnconfiguredReviewer(t *testing.T) {
	_, err := execute(t, cli.Dependencies{}, "review", "42")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestReviewCommand_ErrorPropagates(t *testing.T) {
	reviewer := &fakeReviewer{err: errors.New("PR 42 has an empty diff")}

	_, err := execute(t, cli.Dependencies{Reviewer: staticReviewer(reviewer)}, "review", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty diff")
}

func TestDiffCommand_PullRequest(t *testing.T) {
	source := &fakeDiffSource{diff: "diff --git a/x b/x"}

	out, err := execute(t, cli.Dependencies{DiffSource: source}, "diff", "42")
	require.NoError(t, err)

	assert.Equal(t, "42", source.prNumber)
	assert.Contains(t, out, "diff --git a/x b/x")
}

func TestDiffCommand_Local(t *testing.T) {
	differ := &fakeLocalDiffer{workingDiff: "local changes"}

	out, err := execute(t, cli.Dependencies{LocalDiffer: differ}, "diff", "--local", "--base", "main")
	require.NoError(t, err)

	assert.Equal(t, "main", differ.baseRef)
	assert.Contains(t, out, "local changes")
}

func TestDiffCommand_LocalRefToRef(t *testing.T) {
	differ := &fakeLocalDiffer{refsDiff: "ref diff"}

	out, err := execute(t, cli.Dependencies{LocalDiffer: differ},
		"diff", "--local", "--base", "main", "--target", "feature")
	require.NoError(t, err)

	assert.Equal(t, "main", differ.baseRef)
	assert.Equal(t, "feature", differ.targetRef)
	assert.Contains(t, out, "ref diff")
}

func TestDiffCommand_NoArgsRejected(t *testing.T) {
	_, err := execute(t, cli.Dependencies{DiffSource: &fakeDiffSource{}}, "diff")
	require.Error(t, err)
}

func TestDatasetGenerateCommand(t *testing.T) {
	manager := &fakeManager{generated: map[string][]domain.Sample{
		"bug_detection": make([]domain.Sample, 3),
	}}

	out, err := execute(t, cli.Dependencies{DatasetManager: manager}, "dataset", "generate")
	require.NoError(t, err)

	assert.Contains(t, out, "Bug Detection: 3 samples")
}

func TestDatasetCollectCommand(t *testing.T) {
	manager := &fakeManager{generated: map[string][]domain.Sample{
		"real_world": make([]domain.Sample, 2),
	}}

	out, err := execute(t, cli.Dependencies{DatasetManager: manager, DefaultPerRepo: 5},
		"dataset", "collect", "--repo", "lmchoi/widgets", "--pr", "10", "--pr", "11")
	require.NoError(t, err)

	assert.Equal(t, []string{"lmchoi/widgets"}, manager.repos)
	assert.Equal(t, []int{10, 11}, manager.prNumbers)
	assert.Equal(t, 5, manager.limit)
	assert.Contains(t, out, "Real World: 2 samples")
}

func TestDatasetCollectCommand_DefaultsFromConfig(t *testing.T) {
	manager := &fakeManager{generated: map[string][]domain.Sample{"real_world": {}}}

	_, err := execute(t, cli.Dependencies{
		DatasetManager: manager,
		DefaultRepos:   []string{"lmchoi/widgets"},
		DefaultPerRepo: 3,
	}, "dataset", "collect")
	require.NoError(t, err)

	assert.Equal(t, []string{"lmchoi/widgets"}, manager.repos)
	assert.Equal(t, 3, manager.limit)
}

func TestDatasetCollectCommand_NoRepos(t *testing.T) {
	_, err := execute(t, cli.Dependencies{DatasetManager: &fakeManager{}}, "dataset", "collect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no repositories")
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, cli.Dependencies{Version: "v1.2.3"}, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "v1.2.3")
}
