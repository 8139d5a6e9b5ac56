package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/maximilien/repoagent/internal/domain/model"
	"github.com/maximilien/repoagent/internal/domain/port/driven"
)

// ResolveBranchHead returns the commit SHA the named branch points at.
func (c *Client) ResolveBranchHead(ctx context.Context, branch string) (string, error) {
	ref, resp, err := c.gh.Git.GetRef(ctx, c.owner, c.repo, "heads/"+branch)
	if err != nil {
		if isStatus(err, resp, http.StatusNotFound) {
			return "", fmt.Errorf("resolving head of %q: %w", branch, driven.ErrBranchNotFound)
		}
		return "", fmt.Errorf("resolving head of %q: %w", branch, err)
	}

	logRateLimit(resp, "git/ref")

	return ref.GetObject().GetSHA(), nil
}

// CreateBranch creates refs/heads/<name> pointing at the current head of
// base. The base head is resolved first, so no ref is created when the
// base branch does not exist.
func (c *Client) CreateBranch(ctx context.Context, name, base string) error {
	sha, err := c.ResolveBranchHead(ctx, base)
	if err != nil {
		return fmt.Errorf("creating branch %q: %w", name, err)
	}

	ref := gh.CreateRef{
		Ref: "refs/heads/" + name,
		SHA: sha,
	}

	_, resp, err := c.gh.Git.CreateRef(ctx, c.owner, c.repo, ref)
	if err != nil {
		return fmt.Errorf("creating branch %q from %q: %w", name, base, err)
	}

	logRateLimit(resp, "git/refs")

	return nil
}

// GetCommit returns the commit object for the given SHA.
func (c *Client) GetCommit(ctx context.Context, sha string) (*model.Commit, error) {
	commit, resp, err := c.gh.Git.GetCommit(ctx, c.owner, c.repo, sha)
	if err != nil {
		return nil, fmt.Errorf("fetching commit %s: %w", sha, err)
	}

	logRateLimit(resp, "git/commits")

	parents := make([]string, 0, len(commit.Parents))
	for _, p := range commit.Parents {
		parents = append(parents, p.GetSHA())
	}

	return &model.Commit{
		SHA:     commit.GetSHA(),
		Message: commit.GetMessage(),
		TreeSHA: commit.GetTree().GetSHA(),
		Parents: parents,
	}, nil
}

// GetTree returns the tree's entries. With recursive set, sub-trees are
// expanded and every blob appears under its full path.
func (c *Client) GetTree(ctx context.Context, sha string, recursive bool) ([]model.TreeEntry, error) {
	tree, resp, err := c.gh.Git.GetTree(ctx, c.owner, c.repo, sha, recursive)
	if err != nil {
		return nil, fmt.Errorf("fetching tree %s: %w", sha, err)
	}

	logRateLimit(resp, "git/trees")

	entries := make([]model.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, model.TreeEntry{
			Path: e.GetPath(),
			Mode: model.FileMode(e.GetMode()),
			Type: model.EntryType(e.GetType()),
			SHA:  e.GetSHA(),
		})
	}

	return entries, nil
}

// CreateBlob uploads content base64-encoded and returns the new blob SHA.
func (c *Client) CreateBlob(ctx context.Context, content []byte) (string, error) {
	blob := gh.Blob{
		Content:  gh.Ptr(base64.StdEncoding.EncodeToString(content)),
		Encoding: gh.Ptr("base64"),
	}

	created, resp, err := c.gh.Git.CreateBlob(ctx, c.owner, c.repo, blob)
	if err != nil {
		return "", fmt.Errorf("creating blob: %w", err)
	}

	logRateLimit(resp, "git/blobs")

	return created.GetSHA(), nil
}

// CreateTree submits the full entry set as one tree creation call and
// returns the new tree SHA.
func (c *Client) CreateTree(ctx context.Context, entries []driven.NewTreeEntry) (string, error) {
	ghEntries := make([]*gh.TreeEntry, 0, len(entries))
	for _, e := range entries {
		ghEntries = append(ghEntries, &gh.TreeEntry{
			Path: gh.Ptr(e.Path),
			Mode: gh.Ptr(string(e.Mode)),
			Type: gh.Ptr(string(e.Type)),
			SHA:  gh.Ptr(e.SHA),
		})
	}

	tree, resp, err := c.gh.Git.CreateTree(ctx, c.owner, c.repo, "", ghEntries)
	if err != nil {
		return "", fmt.Errorf("creating tree with %d entries: %w", len(entries), err)
	}

	logRateLimit(resp, "git/trees")

	return tree.GetSHA(), nil
}

// CreateCommit creates a commit object pointing at treeSHA with the given
// parents and returns the new commit SHA.
func (c *Client) CreateCommit(ctx context.Context, message, treeSHA string, parents []string) (string, error) {
	ghParents := make([]*gh.Commit, 0, len(parents))
	for _, p := range parents {
		ghParents = append(ghParents, &gh.Commit{SHA: gh.Ptr(p)})
	}

	commit := gh.Commit{
		Message: gh.Ptr(message),
		Tree:    &gh.Tree{SHA: gh.Ptr(treeSHA)},
		Parents: ghParents,
	}

	created, resp, err := c.gh.Git.CreateCommit(ctx, c.owner, c.repo, commit, nil)
	if err != nil {
		return "", fmt.Errorf("creating commit: %w", err)
	}

	logRateLimit(resp, "git/commits")

	return created.GetSHA(), nil
}

// UpdateRef re-points refs/heads/<branch> at sha. GitHub rejects a
// non-fast-forward update with 422 unless force is set; the rejection is
// surfaced as ErrNonFastForward and the ref is left unchanged.
func (c *Client) UpdateRef(ctx context.Context, branch, sha string, force bool) error {
	_, resp, err := c.gh.Git.UpdateRef(ctx, c.owner, c.repo, "refs/heads/"+branch, gh.UpdateRef{
		SHA:   sha,
		Force: gh.Ptr(force),
	})
	if err != nil {
		if isStatus(err, resp, http.StatusUnprocessableEntity) && !force {
			return fmt.Errorf("updating %q to %s: %w", branch, sha, driven.ErrNonFastForward)
		}
		return fmt.Errorf("updating %q to %s: %w", branch, sha, err)
	}

	logRateLimit(resp, "git/refs/update")

	return nil
}
