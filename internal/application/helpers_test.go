package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/maximilien/repoagent/internal/domain/model"
	"github.com/maximilien/repoagent/internal/domain/port/driven"
)

// fakeGitClient is an in-memory GitClient for application tests. It holds
// a branch map and content-addressed object stores, and records mutating
// calls so tests can assert on ordering and side effects.
type fakeGitClient struct {
	branches map[string]string            // branch name -> head SHA
	commits  map[string]*model.Commit     // SHA -> commit
	trees    map[string][]model.TreeEntry // SHA -> entries
	blobSeq  int
	treeSeq  int
	comSeq   int

	createdTrees [][]driven.NewTreeEntry
	calls        []string

	failCreateBlob   bool
	failCreateTree   bool
	failCreateCommit bool
	failUpdateRef    bool
	failCreatePR     bool
}

func newFakeGitClient() *fakeGitClient {
	return &fakeGitClient{
		branches: map[string]string{},
		commits:  map[string]*model.Commit{},
		trees:    map[string][]model.TreeEntry{},
	}
}

// seedBranch installs a branch whose head commit points at the given tree
// entries.
func (f *fakeGitClient) seedBranch(branch, headSHA string, entries []model.TreeEntry) {
	treeSHA := "tree-of-" + headSHA
	f.trees[treeSHA] = entries
	f.commits[headSHA] = &model.Commit{SHA: headSHA, TreeSHA: treeSHA}
	f.branches[branch] = headSHA
}

func (f *fakeGitClient) ResolveBranchHead(_ context.Context, branch string) (string, error) {
	f.calls = append(f.calls, "ResolveBranchHead:"+branch)
	sha, ok := f.branches[branch]
	if !ok {
		return "", fmt.Errorf("resolving head of %q: %w", branch, driven.ErrBranchNotFound)
	}
	return sha, nil
}

func (f *fakeGitClient) CreateBranch(ctx context.Context, name, base string) error {
	f.calls = append(f.calls, "CreateBranch:"+name)
	sha, err := f.ResolveBranchHead(ctx, base)
	if err != nil {
		return err
	}
	f.branches[name] = sha
	return nil
}

func (f *fakeGitClient) GetCommit(_ context.Context, sha string) (*model.Commit, error) {
	f.calls = append(f.calls, "GetCommit:"+sha)
	c, ok := f.commits[sha]
	if !ok {
		return nil, fmt.Errorf("commit %s not found", sha)
	}
	return c, nil
}

func (f *fakeGitClient) GetTree(_ context.Context, sha string, _ bool) ([]model.TreeEntry, error) {
	f.calls = append(f.calls, "GetTree:"+sha)
	entries, ok := f.trees[sha]
	if !ok {
		return nil, fmt.Errorf("tree %s not found", sha)
	}
	return entries, nil
}

func (f *fakeGitClient) CreateBlob(_ context.Context, content []byte) (string, error) {
	f.calls = append(f.calls, "CreateBlob")
	if f.failCreateBlob {
		return "", errors.New("blob upload rejected")
	}
	f.blobSeq++
	return fmt.Sprintf("blob-%d", f.blobSeq), nil
}

func (f *fakeGitClient) CreateTree(_ context.Context, entries []driven.NewTreeEntry) (string, error) {
	f.calls = append(f.calls, "CreateTree")
	if f.failCreateTree {
		return "", errors.New("tree creation rejected")
	}
	f.treeSeq++
	sha := fmt.Sprintf("newtree-%d", f.treeSeq)
	f.createdTrees = append(f.createdTrees, entries)
	converted := make([]model.TreeEntry, 0, len(entries))
	for _, e := range entries {
		converted = append(converted, model.TreeEntry{Path: e.Path, Mode: e.Mode, Type: e.Type, SHA: e.SHA})
	}
	f.trees[sha] = converted
	return sha, nil
}

func (f *fakeGitClient) CreateCommit(_ context.Context, message, treeSHA string, parents []string) (string, error) {
	f.calls = append(f.calls, "CreateCommit")
	if f.failCreateCommit {
		return "", errors.New("commit creation rejected")
	}
	f.comSeq++
	sha := fmt.Sprintf("commit-%d", f.comSeq)
	f.commits[sha] = &model.Commit{SHA: sha, Message: message, TreeSHA: treeSHA, Parents: parents}
	return sha, nil
}

func (f *fakeGitClient) UpdateRef(_ context.Context, branch, sha string, force bool) error {
	f.calls = append(f.calls, "UpdateRef:"+branch)
	if f.failUpdateRef {
		return fmt.Errorf("updating %q: %w", branch, driven.ErrNonFastForward)
	}
	if _, ok := f.branches[branch]; !ok {
		return fmt.Errorf("resolving head of %q: %w", branch, driven.ErrBranchNotFound)
	}
	f.branches[branch] = sha
	return nil
}

func (f *fakeGitClient) CreatePullRequest(_ context.Context, head, title, body, base string) (*model.PullRequest, error) {
	f.calls = append(f.calls, "CreatePullRequest:"+head)
	if f.failCreatePR {
		return nil, errors.New("pull request rejected")
	}
	return &model.PullRequest{
		Number:     7,
		Title:      title,
		Body:       body,
		HeadBranch: head,
		BaseBranch: base,
		State:      model.PRStateOpen,
		URL:        "https://github.com/owner/repo/pull/7",
	}, nil
}

func (f *fakeGitClient) ListBranches(_ context.Context) ([]model.BranchRef, error) {
	var refs []model.BranchRef
	for name, sha := range f.branches {
		refs = append(refs, model.BranchRef{Name: name, SHA: sha})
	}
	return refs, nil
}

func (f *fakeGitClient) GetRepositoryInfo(_ context.Context) (*model.RepositoryInfo, error) {
	return &model.RepositoryInfo{FullName: "owner/repo", DefaultBranch: "main"}, nil
}

func (f *fakeGitClient) ListRecentPullRequests(_ context.Context, _ int) ([]model.PullRequest, error) {
	return nil, nil
}

// fixedLocator returns a constant workspace directory.
type fixedLocator struct {
	dir string
}

func (l fixedLocator) WorkspaceDir(context.Context) string { return l.dir }

// stubStatus replays canned porcelain output.
type stubStatus struct {
	out string
	err error
}

func (s stubStatus) Status(context.Context, string) (string, error) { return s.out, s.err }
