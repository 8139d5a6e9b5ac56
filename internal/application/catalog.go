package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maximilien/repoagent/internal/domain/model"
	"github.com/maximilien/repoagent/internal/domain/port/driven"
)

// notConfiguredMessage is returned by every repository operation when no
// credential is present. No network call is attempted.
const notConfiguredMessage = "GitHub integration not configured. Set GITHUB_TOKEN to enable repository operations."

// ToolRequest carries the free-text query plus any structured parameters
// supplied in the request's context object. Missing parameters fall back
// to values inferred from the local working tree.
type ToolRequest struct {
	Query         string
	BranchName    string
	BaseBranch    string
	Files         []string
	CommitMessage string
	Title         string
	Body          string
}

// Tool is one operation of the agent's capability catalog. Run converts
// every failure into a descriptive result string via its error return;
// nothing propagates past the dispatcher.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, req ToolRequest) (string, error)
}

// Dispatch is the outcome of routing one query.
type Dispatch struct {
	Tool     string
	Response string
	Outcome  model.OperationOutcome
}

// Catalog assembles the agent's operations and routes free-text queries
// to them. The routing policy here is a deterministic keyword matcher;
// an external dispatcher can equally drive the same catalog through the
// declared tool contracts.
type Catalog struct {
	provider *ClientProvider
	detector *Detector
	locator  driven.WorkspaceLocator
	store    driven.OperationStore
	tools    []Tool
}

// NewCatalog creates the catalog with all tools registered. store may be
// nil, in which case operations are not audit-logged.
func NewCatalog(provider *ClientProvider, detector *Detector, locator driven.WorkspaceLocator, store driven.OperationStore) *Catalog {
	c := &Catalog{
		provider: provider,
		detector: detector,
		locator:  locator,
		store:    store,
	}

	c.tools = []Tool{
		{
			Name:        "get_current_changes",
			Description: "Inspect the local working tree and propose branch, commit message, and PR details",
			Run:         c.getCurrentChanges,
		},
		{
			Name:        "validate_files_exist",
			Description: "Check that the given files exist in the local workspace",
			Run:         c.validateFilesExist,
		},
		{
			Name:        "create_branch",
			Description: "Create a new branch from a base branch",
			Run:         c.createBranch,
		},
		{
			Name:        "commit_files",
			Description: "Commit local files to a branch",
			Run:         c.commitFiles,
		},
		{
			Name:        "create_pull_request",
			Description: "Create a pull request from a branch",
			Run:         c.createPullRequest,
		},
		{
			Name:        "create_complete_pr_workflow",
			Description: "Create branch, commit files, and open a PR in one pipeline",
			Run:         c.completeWorkflow,
		},
		{
			Name:        "list_branches",
			Description: "List all branches in the repository",
			Run:         c.listBranches,
		},
		{
			Name:        "get_repository_status",
			Description: "Summarize repository metadata and recent pull requests",
			Run:         c.repositoryStatus,
		},
	}

	return c
}

// Tools returns the capability catalog in registration order.
func (c *Catalog) Tools() []Tool { return c.tools }

// ToolNames returns the tool names in registration order.
func (c *Catalog) ToolNames() []string {
	names := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		names = append(names, t.Name)
	}
	return names
}

// HandleQuery routes the request to a tool, runs it, folds any failure
// into the response text, and records the operation in the audit log.
func (c *Catalog) HandleQuery(ctx context.Context, req ToolRequest) Dispatch {
	started := time.Now().UTC()

	tool, ok := c.route(req.Query)
	if !ok {
		d := Dispatch{
			Tool:     "",
			Response: c.helpText(),
			Outcome:  model.OutcomeSuccess,
		}
		c.record(ctx, d, req.Query, started)
		return d
	}

	response, err := tool.Run(ctx, req)

	d := Dispatch{Tool: tool.Name, Outcome: model.OutcomeSuccess}
	if err != nil {
		d.Outcome = model.OutcomeFailure
		d.Response = response
		if d.Response == "" {
			d.Response = fmt.Sprintf("Operation %s failed: %v", tool.Name, err)
		}
		slog.Warn("tool failed", "tool", tool.Name, "error", err)
	} else {
		d.Response = response
	}

	c.record(ctx, d, req.Query, started)

	return d
}

// route picks the tool for a free-text query by keyword matching. The
// order of checks encodes specificity: workflow phrasing beats the
// individual operations it is composed of.
func (c *Catalog) route(query string) (Tool, bool) {
	q := strings.ToLower(query)

	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}

	switch {
	case has("workflow") || (has("pull request", " pr", "pr ") && has("create", "open", "make")):
		return c.byName("create_complete_pr_workflow")
	case has("current change", "detect change", "what changed", "changes"):
		return c.byName("get_current_changes")
	case has("validate", "exist"):
		return c.byName("validate_files_exist")
	case has("commit"):
		return c.byName("commit_files")
	case has("branch") && has("create", "new", "make"):
		return c.byName("create_branch")
	case has("branches", "list branch"):
		return c.byName("list_branches")
	case has("status", "repository", "repo info", "overview"):
		return c.byName("get_repository_status")
	}

	return Tool{}, false
}

func (c *Catalog) byName(name string) (Tool, bool) {
	for _, t := range c.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

func (c *Catalog) helpText() string {
	var b strings.Builder
	b.WriteString("I can help with GitHub repository operations:\n")
	for _, t := range c.tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// record appends the dispatch to the audit log. Logging failures are
// reported but never affect the response.
func (c *Catalog) record(ctx context.Context, d Dispatch, query string, started time.Time) {
	if c.store == nil {
		return
	}

	tool := d.Tool
	if tool == "" {
		tool = "help"
	}

	_, err := c.store.Record(ctx, model.OperationRecord{
		Tool:      tool,
		Query:     query,
		Outcome:   d.Outcome,
		Detail:    d.Response,
		StartedAt: started,
		EndedAt:   time.Now().UTC(),
	})
	if err != nil {
		slog.Error("recording operation failed", "tool", tool, "error", err)
	}
}

// client returns the configured GitClient, or nil with ok=false when the
// integration is disabled.
func (c *Catalog) client() (driven.GitClient, bool) {
	client := c.provider.Get()
	return client, client != nil
}

// workflow builds a Workflow over the currently-configured client.
func (c *Catalog) workflow(client driven.GitClient) *Workflow {
	return NewWorkflow(client, NewTreeBuilder(client, c.locator))
}

func (c *Catalog) createBranch(ctx context.Context, req ToolRequest) (string, error) {
	client, ok := c.client()
	if !ok {
		return notConfiguredMessage, driven.ErrNotConfigured
	}

	branch, base, err := c.branchParams(ctx, req)
	if err != nil {
		return fmt.Sprintf("Could not determine a branch name: %v", err), err
	}

	if err := client.CreateBranch(ctx, branch, base); err != nil {
		return fmt.Sprintf("Failed to create branch '%s': %v", branch, err), err
	}

	return fmt.Sprintf("Successfully created branch '%s' from '%s'", branch, base), nil
}

func (c *Catalog) commitFiles(ctx context.Context, req ToolRequest) (string, error) {
	client, ok := c.client()
	if !ok {
		return notConfiguredMessage, driven.ErrNotConfigured
	}

	branch := req.BranchName
	files := req.Files
	message := req.CommitMessage

	if branch == "" || len(files) == 0 {
		proposal, err := c.detector.Propose(ctx)
		if err != nil {
			return fmt.Sprintf("Could not inspect local changes: %v", err), err
		}
		if proposal == nil {
			return "No changes detected in the current project; nothing to commit.", nil
		}
		if branch == "" {
			branch = proposal.BranchName
		}
		if len(files) == 0 {
			files = proposal.Files
		}
		if message == "" {
			message = proposal.CommitMessage
		}
	}
	if message == "" {
		message = "fix: resolve issues"
	}

	if _, err := c.workflow(client).CommitFiles(ctx, branch, files, message); err != nil {
		return fmt.Sprintf("Failed to commit files to branch '%s': %v", branch, err), err
	}

	return fmt.Sprintf("Successfully committed %d files to branch '%s'", len(files), branch), nil
}

func (c *Catalog) createPullRequest(ctx context.Context, req ToolRequest) (string, error) {
	client, ok := c.client()
	if !ok {
		return notConfiguredMessage, driven.ErrNotConfigured
	}

	if req.BranchName == "" {
		err := errors.New("branch name is required")
		return "A head branch is required to open a pull request.", err
	}

	base := req.BaseBranch
	if base == "" {
		base = "main"
	}
	title := req.Title
	if title == "" {
		title = "Update from " + req.BranchName
	}

	pr, err := client.CreatePullRequest(ctx, req.BranchName, title, req.Body, base)
	if err != nil {
		return fmt.Sprintf("Failed to create PR from branch '%s': %v", req.BranchName, err), err
	}

	return fmt.Sprintf("Successfully created PR #%d: %s\nURL: %s", pr.Number, pr.Title, pr.URL), nil
}

func (c *Catalog) completeWorkflow(ctx context.Context, req ToolRequest) (string, error) {
	client, ok := c.client()
	if !ok {
		return notConfiguredMessage, driven.ErrNotConfigured
	}

	params := WorkflowParams{
		BranchName:    req.BranchName,
		BaseBranch:    req.BaseBranch,
		Files:         req.Files,
		CommitMessage: req.CommitMessage,
		PRTitle:       req.Title,
		PRBody:        req.Body,
	}

	if params.BranchName == "" || len(params.Files) == 0 {
		proposal, err := c.detector.Propose(ctx)
		if err != nil {
			return fmt.Sprintf("Could not inspect local changes: %v", err), err
		}
		if proposal == nil {
			return "No changes detected in the current project; nothing to propose.", nil
		}
		if params.BranchName == "" {
			params.BranchName = proposal.BranchName
		}
		if len(params.Files) == 0 {
			params.Files = proposal.Files
		}
		if params.CommitMessage == "" {
			params.CommitMessage = proposal.CommitMessage
		}
		if params.PRTitle == "" {
			params.PRTitle = proposal.PRTitle
		}
		if params.PRBody == "" {
			params.PRBody = proposal.PRBody
		}
	}

	pr, err := c.workflow(client).Run(ctx, params)
	if err != nil {
		var partial *PartialWorkflowError
		if errors.As(err, &partial) {
			return fmt.Sprintf("PR workflow failed at step %s: %v", partial.Step, partial.Err), err
		}
		return fmt.Sprintf("PR workflow failed: %v", err), err
	}

	return fmt.Sprintf("Complete PR workflow successful.\nPR #%d: %s\nURL: %s", pr.Number, pr.Title, pr.URL), nil
}

func (c *Catalog) listBranches(ctx context.Context, _ ToolRequest) (string, error) {
	client, ok := c.client()
	if !ok {
		return notConfiguredMessage, driven.ErrNotConfigured
	}

	branches, err := client.ListBranches(ctx)
	if err != nil {
		return fmt.Sprintf("Error listing branches: %v", err), err
	}

	var b strings.Builder
	b.WriteString("Available branches:\n")
	for _, br := range branches {
		fmt.Fprintf(&b, "- %s\n", br.Name)
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Catalog) repositoryStatus(ctx context.Context, _ ToolRequest) (string, error) {
	client, ok := c.client()
	if !ok {
		return notConfiguredMessage, driven.ErrNotConfigured
	}

	info, err := client.GetRepositoryInfo(ctx)
	if err != nil {
		return fmt.Sprintf("Error getting repository status: %v", err), err
	}

	prs, err := client.ListRecentPullRequests(ctx, 5)
	if err != nil {
		return fmt.Sprintf("Error getting repository status: %v", err), err
	}

	description := info.Description
	if description == "" {
		description = "No description"
	}

	var b strings.Builder
	b.WriteString("## GitHub Repository Status\n\n")
	fmt.Fprintf(&b, "**Repository:** %s\n", info.FullName)
	fmt.Fprintf(&b, "**Description:** %s\n", description)
	fmt.Fprintf(&b, "**Default Branch:** %s\n", info.DefaultBranch)
	fmt.Fprintf(&b, "**Stars:** %d\n", info.Stars)
	fmt.Fprintf(&b, "**Forks:** %d\n", info.Forks)
	fmt.Fprintf(&b, "**Open Issues:** %d\n\n", info.OpenIssues)
	b.WriteString("**Recent Pull Requests:**")

	if len(prs) == 0 {
		b.WriteString("\n- No pull requests found")
	}
	for i, pr := range prs {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "\n- #%d: %s (%s)", pr.Number, pr.Title, pr.State)
	}

	return b.String(), nil
}

func (c *Catalog) getCurrentChanges(ctx context.Context, _ ToolRequest) (string, error) {
	proposal, err := c.detector.Propose(ctx)
	if err != nil {
		return fmt.Sprintf("Error checking current changes: %v", err), err
	}

	if proposal == nil {
		return "No changes detected in current project.", nil
	}

	return fmt.Sprintf(`Current project changes detected:

Branch: %s
Changed files: %s
Commit message: %s
PR title: %s

Ready to create PR with these details.`,
		proposal.BranchName,
		strings.Join(proposal.Files, ", "),
		proposal.CommitMessage,
		proposal.PRTitle,
	), nil
}

func (c *Catalog) validateFilesExist(ctx context.Context, req ToolRequest) (string, error) {
	if len(req.Files) == 0 {
		return "No files supplied to validate.", nil
	}

	dir := c.locator.WorkspaceDir(ctx)

	var existing, missing []string
	for _, f := range req.Files {
		if _, err := os.Stat(filepath.Join(dir, f)); err == nil {
			existing = append(existing, f)
		} else {
			missing = append(missing, f)
		}
	}

	if len(missing) > 0 {
		return fmt.Sprintf("Some files do not exist: %s\nExisting files: %s",
			strings.Join(missing, ", "), strings.Join(existing, ", ")), nil
	}

	return "All files exist: " + strings.Join(existing, ", "), nil
}

// branchParams resolves the branch name and base for create_branch,
// inferring the name from local changes when the request omits it.
func (c *Catalog) branchParams(ctx context.Context, req ToolRequest) (branch, base string, err error) {
	base = req.BaseBranch
	if base == "" {
		base = "main"
	}

	branch = req.BranchName
	if branch != "" {
		return branch, base, nil
	}

	proposal, err := c.detector.Propose(ctx)
	if err != nil {
		return "", "", err
	}
	if proposal == nil {
		return "", "", errors.New("no branch name supplied and no local changes to infer one from")
	}

	return proposal.BranchName, base, nil
}
