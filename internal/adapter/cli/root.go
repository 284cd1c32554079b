// Package cli defines the cobra command surface for the nit binary.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lmchoi/nitpicker/internal/domain"
	"github.com/lmchoi/nitpicker/internal/usecase/dataset"
	"github.com/lmchoi/nitpicker/internal/usecase/review"
)

// Reviewer runs one automated review.
type Reviewer interface {
	Run(ctx context.Context, req review.Request) (review.Result, error)
}

// ReviewerFactory builds a Reviewer targeting the given repository. The
// factory returns nil when the model backend is unconfigured.
type ReviewerFactory func(owner, repo string) Reviewer

// DiffSource fetches a pull request diff.
type DiffSource interface {
	PRDiff(ctx context.Context, prNumber string) (string, error)
}

// LocalDiffer reads diffs from the local repository.
type LocalDiffer interface {
	WorkingTreeDiff(ctx context.Context, baseRef string) (string, error)
	DiffRefs(ctx context.Context, baseRef, targetRef string) (string, error)
}

// DatasetManager creates evaluation datasets.
type DatasetManager interface {
	Generate(ctx context.Context) (map[string][]domain.Sample, error)
	Collect(ctx context.Context, repos []string, prNumbers []int, perRepoLimit int) (map[string][]domain.Sample, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Reviewer        ReviewerFactory
	DiffSource      DiffSource
	LocalDiffer     LocalDiffer
	DatasetManager  DatasetManager
	Args            Arguments
	DefaultOwner    string
	DefaultRepo     string
	DefaultMaxTurns int
	DefaultRepos    []string
	DefaultPerRepo  int
	Version         string
}

// NewRootCommand constructs the root cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:     "nit",
		Short:   "LLM-backed pull request nitpicker",
		Version: versionString,
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(reviewCommand(deps.Reviewer, deps.DefaultOwner, deps.DefaultRepo, deps.DefaultMaxTurns))
	root.AddCommand(diffCommand(deps.DiffSource, deps.LocalDiffer))
	root.AddCommand(datasetCommand(deps.DatasetManager, deps.DefaultRepos, deps.DefaultPerRepo))

	return root
}

func reviewCommand(makeReviewer ReviewerFactory, defaultOwner, defaultRepo string, defaultMaxTurns int) *cobra.Command {
	var post bool
	var maxTurns int
	var owner, repo string

	cmd := &cobra.Command{
		Use:   "review <pr-number>",
		Short: "Review a pull request with the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reviewer Reviewer
			if makeReviewer != nil {
				reviewer = makeReviewer(owner, repo)
			}
			if reviewer == nil {
				return fmt.Errorf("reviewer not configured (missing gemini.apiKey?)")
			}

			result, err := reviewer.Run(cmd.Context(), review.Request{
				PRNumber: args[0],
				Post:     post,
				MaxTurns: maxTurns,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if review.IsOutputTerminal() {
				fmt.Fprintln(out, "--- AI Suggested Comments ---")
				fmt.Fprintln(out, result.Summary)
				fmt.Fprintln(out, "-----------------------------")
			} else {
				fmt.Fprintln(out, result.Summary)
			}
			if result.Posted {
				fmt.Fprintf(out, "Pending review created for PR #%s (%d model turns)\n", result.PRNumber, result.Turns)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&post, "post", false, "Create a pending review on the pull request")
	cmd.Flags().IntVar(&maxTurns, "max-turns", defaultMaxTurns, "Maximum model turns before aborting")
	cmd.Flags().StringVar(&owner, "owner", defaultOwner, "Repository owner for posting")
	cmd.Flags().StringVar(&repo, "repo", defaultRepo, "Repository name for posting")
	return cmd
}

func diffCommand(diffSource DiffSource, localDiffer LocalDiffer) *cobra.Command {
	var local bool
	var baseRef string
	var targetRef string

	cmd := &cobra.Command{
		Use:   "diff [pr-number]",
		Short: "Print a pull request or local diff",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var diff string
			var err error
			switch {
			case local && targetRef != "":
				diff, err = localDiffer.DiffRefs(ctx, baseRef, targetRef)
			case local:
				diff, err = localDiffer.WorkingTreeDiff(ctx, baseRef)
			case len(args) == 1:
				diff, err = diffSource.PRDiff(ctx, args[0])
			default:
				return fmt.Errorf("a pr-number argument or --local is required")
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), diff)
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Diff the local repository instead of a pull request")
	cmd.Flags().StringVar(&baseRef, "base", "", "Base ref for local diffs (default HEAD)")
	cmd.Flags().StringVar(&targetRef, "target", "", "Target ref for local ref-to-ref diffs")
	return cmd
}

func datasetCommand(manager DatasetManager, defaultRepos []string, defaultPerRepo int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Create evaluation datasets for review tools",
	}

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic datasets with known issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, err := manager.Generate(cmd.Context())
			if err != nil {
				return err
			}
			dataset.WriteSummary(cmd.OutOrStdout(), datasets)
			return nil
		},
	}

	var repos []string
	var prNumbers []int
	var limit int
	collect := &cobra.Command{
		Use:   "collect",
		Short: "Collect real pull request samples from GitHub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(repos) == 0 {
				repos = defaultRepos
			}
			if len(repos) == 0 {
				return fmt.Errorf("no repositories given (use --repo or dataset.repos config)")
			}

			datasets, err := manager.Collect(cmd.Context(), repos, prNumbers, limit)
			if err != nil {
				return err
			}
			dataset.WriteSummary(cmd.OutOrStdout(), datasets)
			return nil
		},
	}
	collect.Flags().StringSliceVar(&repos, "repo", nil, "Repository to collect from (owner/name, repeatable)")
	collect.Flags().IntSliceVar(&prNumbers, "pr", nil, "Specific PR numbers to collect (repeatable)")
	collect.Flags().IntVar(&limit, "limit", defaultPerRepo, "Samples per repository when no PRs are given")

	cmd.AddCommand(generate, collect)
	return cmd
}
