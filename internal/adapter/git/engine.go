// Package git produces unified diff text from a local repository, for
// reviewing changes that have no pull request yet.
package git

import (
	"context"
	"fmt"
	"strings"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/lmchoi/nitpicker/internal/adapter/ghcli"
)

// Engine reads diffs from a local repository, backed by go-git for committed
// refs and the git CLI for the working tree (go-git cannot render an
// uncommitted unified diff).
type Engine struct {
	repoDir string
	runner  ghcli.Runner
}

// NewEngine constructs an engine for the provided repository directory.
func NewEngine(repoDir string, runner ghcli.Runner) *Engine {
	if runner == nil {
		runner = ghcli.ExecRunner{}
	}
	return &Engine{repoDir: repoDir, runner: runner}
}

// DiffRefs returns the unified diff between two refs.
func (e *Engine) DiffRefs(ctx context.Context, baseRef, targetRef string) (string, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}

	baseCommit, err := resolveCommit(repo, baseRef)
	if err != nil {
		return "", fmt.Errorf("resolve base ref: %w", err)
	}
	targetCommit, err := resolveCommit(repo, targetRef)
	if err != nil {
		return "", fmt.Errorf("resolve target ref: %w", err)
	}

	patch, err := baseCommit.PatchContext(ctx, targetCommit)
	if err != nil {
		return "", fmt.Errorf("compute patch: %w", err)
	}

	return strings.TrimSpace(patch.String()), nil
}

// WorkingTreeDiff returns the unified diff of uncommitted changes against
// baseRef (HEAD when empty).
func (e *Engine) WorkingTreeDiff(ctx context.Context, baseRef string) (string, error) {
	args := []string{"-C", e.repoDir, "diff"}
	if baseRef != "" {
		args = append(args, baseRef)
	}

	stdout, stderr, err := e.runner.Run(ctx, "git", args...)
	if err != nil {
		return "", &ghcli.CommandError{
			Command:  "git " + strings.Join(args[2:], " "),
			ExitCode: ghcli.ExitCode(err),
			Stderr:   stderr,
		}
	}
	return strings.TrimSpace(stdout), nil
}

// CurrentBranch returns the name of the checked-out branch.
func (e *Engine) CurrentBranch(ctx context.Context) (string, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if name := head.Name(); name.IsBranch() {
		return name.Short(), nil
	}
	return "", fmt.Errorf("detached HEAD")
}

func resolveCommit(repo *goGit.Repository, ref string) (*object.Commit, error) {
	candidates := []string{
		ref,
		fmt.Sprintf("refs/heads/%s", ref),
		fmt.Sprintf("refs/remotes/origin/%s", ref),
	}

	var lastErr error
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err != nil {
			lastErr = err
			continue
		}
		return repo.CommitObject(*hash)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unable to resolve ref %s", ref)
}
