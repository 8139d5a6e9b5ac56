package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maximilien/repoagent/internal/domain/model"
	"github.com/maximilien/repoagent/internal/domain/port/driven"
)

// Workflow step names reported by PartialWorkflowError.
const (
	StepCreateBranch      = "create_branch"
	StepCommitFiles       = "commit_files"
	StepCreatePullRequest = "create_pull_request"
)

// PartialWorkflowError reports which step of the combined workflow failed.
// Earlier steps are not rolled back: a branch may be left created with no
// commit, or committed with no PR. Callers needing atomicity must clean up
// themselves.
type PartialWorkflowError struct {
	Step string
	Err  error
}

func (e *PartialWorkflowError) Error() string {
	return fmt.Sprintf("workflow failed at %s: %v", e.Step, e.Err)
}

func (e *PartialWorkflowError) Unwrap() error { return e.Err }

// WorkflowParams are the inputs of the combined branch/commit/PR pipeline.
type WorkflowParams struct {
	BranchName    string
	BaseBranch    string
	Files         []string
	CommitMessage string
	PRTitle       string
	PRBody        string
}

// Workflow sequences branch creation, file commit, and pull-request
// creation against the remote repository. Each step depends on the result
// of the previous one, so execution is strictly sequential; the pipeline
// is best-effort and aborts on first failure.
type Workflow struct {
	client  driven.GitClient
	builder *TreeBuilder
}

// NewWorkflow creates a Workflow using the given client and tree builder.
func NewWorkflow(client driven.GitClient, builder *TreeBuilder) *Workflow {
	return &Workflow{
		client:  client,
		builder: builder,
	}
}

// CommitFiles creates a new commit on branch containing the current local
// content of the given files and re-points the branch at it. The branch
// ref is updated only after the commit object exists remotely, so the
// branch head is never left pointing at a missing commit. Two concurrent
// commits against the same branch are not coordinated; the loser's ref
// update is rejected as non-fast-forward.
func (w *Workflow) CommitFiles(ctx context.Context, branch string, files []string, message string) (string, error) {
	headSHA, err := w.client.ResolveBranchHead(ctx, branch)
	if err != nil {
		return "", fmt.Errorf("committing to %q: %w", branch, err)
	}

	head, err := w.client.GetCommit(ctx, headSHA)
	if err != nil {
		return "", fmt.Errorf("committing to %q: %w", branch, err)
	}

	treeSHA, err := w.builder.Build(ctx, head.TreeSHA, files)
	if err != nil {
		return "", fmt.Errorf("committing to %q: %w", branch, err)
	}

	commitSHA, err := w.client.CreateCommit(ctx, message, treeSHA, []string{headSHA})
	if err != nil {
		return "", fmt.Errorf("committing to %q: %w", branch, err)
	}

	if err := w.client.UpdateRef(ctx, branch, commitSHA, false); err != nil {
		return "", fmt.Errorf("committing to %q: %w", branch, err)
	}

	slog.Info("committed files",
		"branch", branch,
		"commit", commitSHA,
		"files", len(files),
	)

	return commitSHA, nil
}

// Run executes create-branch, commit-files, and create-PR as one pipeline.
// The first failing step aborts the rest and is identified in the returned
// PartialWorkflowError; completed steps stay in place.
func (w *Workflow) Run(ctx context.Context, params WorkflowParams) (*model.PullRequest, error) {
	base := params.BaseBranch
	if base == "" {
		base = "main"
	}

	if err := w.client.CreateBranch(ctx, params.BranchName, base); err != nil {
		return nil, &PartialWorkflowError{Step: StepCreateBranch, Err: err}
	}

	if _, err := w.CommitFiles(ctx, params.BranchName, params.Files, params.CommitMessage); err != nil {
		return nil, &PartialWorkflowError{Step: StepCommitFiles, Err: err}
	}

	pr, err := w.client.CreatePullRequest(ctx, params.BranchName, params.PRTitle, params.PRBody, base)
	if err != nil {
		return nil, &PartialWorkflowError{Step: StepCreatePullRequest, Err: err}
	}

	slog.Info("workflow complete",
		"branch", params.BranchName,
		"pr", pr.Number,
		"url", pr.URL,
	)

	return pr, nil
}
