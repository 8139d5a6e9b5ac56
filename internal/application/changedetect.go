package application

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/maximilien/repoagent/internal/domain/model"
	"github.com/maximilien/repoagent/internal/domain/port/driven"
)

// StatusReader reads the raw porcelain status of the working tree at dir.
type StatusReader interface {
	Status(ctx context.Context, dir string) (string, error)
}

// gitStatusReader shells out to the local git binary.
type gitStatusReader struct{}

// statusTimeout bounds the git invocation so a hung index lock cannot
// stall a request.
const statusTimeout = 10 * time.Second

func (gitStatusReader) Status(ctx context.Context, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain")
	cmd.Dir = dir

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git status in %s: %w", dir, err)
	}

	return string(out), nil
}

// Detector inspects the local working tree and proposes branch name,
// commit message, and PR title/body for the current changes. Each
// invocation is a stateless function of the working-tree status.
type Detector struct {
	locator driven.WorkspaceLocator
	rules   RuleSet
	status  StatusReader
	now     func() time.Time
}

// NewDetector creates a Detector using the given workspace locator and
// classification rules.
func NewDetector(locator driven.WorkspaceLocator, rules RuleSet) *Detector {
	return &Detector{
		locator: locator,
		rules:   rules,
		status:  gitStatusReader{},
		now:     time.Now,
	}
}

// Detect enumerates the changed files of the located working tree.
func (d *Detector) Detect(ctx context.Context) (model.ChangeSet, error) {
	dir := d.locator.WorkspaceDir(ctx)

	raw, err := d.status.Status(ctx, dir)
	if err != nil {
		return model.ChangeSet{}, err
	}

	return parsePorcelain(raw), nil
}

// Propose classifies the current changes and returns the suggested
// branch/commit/PR details. Returns nil when no changes are detected.
func (d *Detector) Propose(ctx context.Context) (*model.ChangeProposal, error) {
	changes, err := d.Detect(ctx)
	if err != nil {
		return nil, err
	}

	if changes.IsEmpty() {
		return nil, nil
	}

	paths := changes.Paths()

	rule, ok := d.rules.Classify(paths)
	if !ok {
		return nil, fmt.Errorf("no classification rule matched %d changed files", len(paths))
	}

	timestamp := d.now().Format("20060102-150405")

	return &model.ChangeProposal{
		Category:      rule.Category,
		BranchName:    rule.BranchPrefix + "-" + timestamp,
		CommitMessage: rule.CommitMessage,
		PRTitle:       rule.PRTitle,
		PRBody:        renderPRBody(rule, paths),
		Files:         paths,
	}, nil
}

// parsePorcelain parses `git status --porcelain` output. Each changed
// file with a recognized status code appears exactly once; unrecognized
// codes (renames, conflicts) are skipped.
func parsePorcelain(raw string) model.ChangeSet {
	var changes model.ChangeSet
	seen := make(map[string]bool)

	for _, line := range strings.Split(raw, "\n") {
		if len(line) < 4 {
			continue
		}

		code := strings.TrimSpace(line[:2])
		path := strings.TrimSpace(line[3:])
		if path == "" || seen[path] {
			continue
		}

		var status model.FileStatus
		switch code {
		case "M":
			status = model.StatusModified
		case "A":
			status = model.StatusAdded
		case "D":
			status = model.StatusDeleted
		case "??":
			status = model.StatusUntracked
		default:
			continue
		}

		seen[path] = true
		changes.Files = append(changes.Files, model.ChangedFile{
			Path:   path,
			Status: status,
		})
	}

	return changes
}
