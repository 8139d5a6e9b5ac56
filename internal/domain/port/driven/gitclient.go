package driven

import (
	"context"

	"github.com/maximilien/repoagent/internal/domain/model"
)

// NewTreeEntry is one entry of a tree creation request. Exactly one of
// SHA (existing object) or Content (new blob material) is set by callers;
// this agent always uploads blobs first and references them by SHA.
type NewTreeEntry struct {
	Path string
	Mode model.FileMode
	Type model.EntryType
	SHA  string
}

// GitClient defines the driven port for the remote repository's REST
// surface. Every method operates on the single repository the client was
// constructed for. Mutating calls change remote state; none of them are
// transactional across multiple calls.
type GitClient interface {
	// ResolveBranchHead returns the commit SHA the named branch points at.
	// Returns ErrBranchNotFound if the branch does not exist.
	ResolveBranchHead(ctx context.Context, branch string) (string, error)

	// CreateBranch creates refs/heads/<name> pointing at the head of base.
	// No ref is created when the base branch cannot be resolved.
	CreateBranch(ctx context.Context, name, base string) error

	// GetCommit returns the commit object for the given SHA.
	GetCommit(ctx context.Context, sha string) (*model.Commit, error)

	// GetTree returns the tree's entries. With recursive set, sub-trees are
	// expanded and every blob appears with its full path.
	GetTree(ctx context.Context, sha string, recursive bool) ([]model.TreeEntry, error)

	// CreateBlob uploads content and returns the new blob SHA.
	CreateBlob(ctx context.Context, content []byte) (string, error)

	// CreateTree creates a tree from the full entry set and returns its SHA.
	CreateTree(ctx context.Context, entries []NewTreeEntry) (string, error)

	// CreateCommit creates a commit object and returns its SHA.
	CreateCommit(ctx context.Context, message, treeSHA string, parents []string) (string, error)

	// UpdateRef re-points refs/heads/<branch> at sha. Without force, a
	// non-fast-forward update is rejected with ErrNonFastForward and the
	// ref is left unchanged. This agent never requests force.
	UpdateRef(ctx context.Context, branch, sha string, force bool) error

	// CreatePullRequest opens a pull request from head into base.
	CreatePullRequest(ctx context.Context, head, title, body, base string) (*model.PullRequest, error)

	// ListBranches returns all branch refs in the repository.
	ListBranches(ctx context.Context) ([]model.BranchRef, error)

	// GetRepositoryInfo returns remote repository metadata.
	GetRepositoryInfo(ctx context.Context) (*model.RepositoryInfo, error)

	// ListRecentPullRequests returns up to limit pull requests in any
	// state, most recently created first.
	ListRecentPullRequests(ctx context.Context, limit int) ([]model.PullRequest, error)
}
