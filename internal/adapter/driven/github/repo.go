package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/maximilien/repoagent/internal/domain/model"
)

// CreatePullRequest opens a pull request from head into base.
func (c *Client) CreatePullRequest(ctx context.Context, head, title, body, base string) (*model.PullRequest, error) {
	pr := &gh.NewPullRequest{
		Title: gh.Ptr(title),
		Head:  gh.Ptr(head),
		Base:  gh.Ptr(base),
		Body:  gh.Ptr(body),
	}

	created, resp, err := c.gh.PullRequests.Create(ctx, c.owner, c.repo, pr)
	if err != nil {
		return nil, fmt.Errorf("creating pull request from %q into %q: %w", head, base, err)
	}

	logRateLimit(resp, "pulls/create")

	return mapPullRequest(created), nil
}

// ListBranches returns all branch refs in the repository, following
// pagination.
func (c *Client) ListBranches(ctx context.Context) ([]model.BranchRef, error) {
	opts := &gh.BranchListOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var all []model.BranchRef

	for {
		branches, resp, err := c.gh.Repositories.ListBranches(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing branches (page %d): %w", opts.Page, err)
		}

		logRateLimit(resp, "branches")

		for _, b := range branches {
			all = append(all, model.BranchRef{
				Name: b.GetName(),
				SHA:  b.GetCommit().GetSHA(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// GetRepositoryInfo returns remote repository metadata.
func (c *Client) GetRepositoryInfo(ctx context.Context) (*model.RepositoryInfo, error) {
	repo, resp, err := c.gh.Repositories.Get(ctx, c.owner, c.repo)
	if err != nil {
		return nil, fmt.Errorf("fetching repository %s/%s: %w", c.owner, c.repo, err)
	}

	logRateLimit(resp, "repo")

	return &model.RepositoryInfo{
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		DefaultBranch: repo.GetDefaultBranch(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
	}, nil
}

// ListRecentPullRequests returns up to limit pull requests in any state,
// most recently created first.
func (c *Client) ListRecentPullRequests(ctx context.Context, limit int) ([]model.PullRequest, error) {
	opts := &gh.PullRequestListOptions{
		State:     "all",
		Sort:      "created",
		Direction: "desc",
		ListOptions: gh.ListOptions{
			PerPage: limit,
		},
	}

	prs, resp, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, opts)
	if err != nil {
		return nil, fmt.Errorf("listing recent pull requests: %w", err)
	}

	logRateLimit(resp, "pulls/list")

	result := make([]model.PullRequest, 0, limit)
	for _, pr := range prs {
		if len(result) == limit {
			break
		}
		result = append(result, *mapPullRequest(pr))
	}

	return result, nil
}

// mapPullRequest converts a go-github PullRequest to a domain model
// PullRequest. It uses GetXxx() helper methods exclusively to avoid nil
// pointer panics.
func mapPullRequest(pr *gh.PullRequest) *model.PullRequest {
	state := model.PRStateOpen
	if !pr.GetMergedAt().IsZero() {
		state = model.PRStateMerged
	} else if pr.GetState() == "closed" {
		state = model.PRStateClosed
	}

	return &model.PullRequest{
		Number:     pr.GetNumber(),
		Title:      pr.GetTitle(),
		Body:       pr.GetBody(),
		HeadBranch: pr.GetHead().GetRef(),
		BaseBranch: pr.GetBase().GetRef(),
		State:      state,
		URL:        pr.GetHTMLURL(),
		CreatedAt:  pr.GetCreatedAt().Time,
	}
}
