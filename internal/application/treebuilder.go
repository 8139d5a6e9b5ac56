package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/maximilien/repoagent/internal/domain/model"
	"github.com/maximilien/repoagent/internal/domain/port/driven"
)

// TreeBuilder computes the tree object for a commit: the base tree's blob
// entries overlaid with fresh blobs for the supplied local file paths.
type TreeBuilder struct {
	client  driven.GitClient
	locator driven.WorkspaceLocator
}

// NewTreeBuilder creates a TreeBuilder using the given client and
// workspace locator.
func NewTreeBuilder(client driven.GitClient, locator driven.WorkspaceLocator) *TreeBuilder {
	return &TreeBuilder{
		client:  client,
		locator: locator,
	}
}

// Build fetches the base tree recursively, keeps blob entries only, and
// replaces (or adds) one entry per supplied path with a newly-uploaded
// blob of the file's current on-disk content. Files that cannot be read
// are skipped; the rest of the build continues. The full entry set is
// submitted as one tree creation call.
//
// Sub-tree entries are dropped rather than preserved: the resulting tree
// is a flat list of blobs whose paths still carry "/" separators, which
// the remote service uses to re-derive the hierarchy.
func (b *TreeBuilder) Build(ctx context.Context, baseTreeSHA string, files []string) (string, error) {
	baseEntries, err := b.client.GetTree(ctx, baseTreeSHA, true)
	if err != nil {
		return "", fmt.Errorf("building tree from %s: %w", baseTreeSHA, err)
	}

	var entries []driven.NewTreeEntry
	for _, e := range baseEntries {
		if e.Type != model.EntryBlob {
			continue
		}
		entries = append(entries, driven.NewTreeEntry{
			Path: e.Path,
			Mode: e.Mode,
			Type: model.EntryBlob,
			SHA:  e.SHA,
		})
	}

	dir := b.locator.WorkspaceDir(ctx)

	for _, path := range files {
		content, err := os.ReadFile(filepath.Join(dir, path))
		if err != nil {
			slog.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}

		blobSHA, err := b.client.CreateBlob(ctx, content)
		if err != nil {
			slog.Warn("skipping file, blob creation failed", "path", path, "error", err)
			continue
		}

		entries = upsertEntry(entries, driven.NewTreeEntry{
			Path: path,
			Mode: model.ModeFile,
			Type: model.EntryBlob,
			SHA:  blobSHA,
		})
	}

	treeSHA, err := b.client.CreateTree(ctx, entries)
	if err != nil {
		return "", fmt.Errorf("building tree from %s: %w", baseTreeSHA, err)
	}

	return treeSHA, nil
}

// upsertEntry replaces the entry with the same path, or appends when the
// path is new. Last write wins on path collision; the tree always carries
// exactly one entry per path.
func upsertEntry(entries []driven.NewTreeEntry, entry driven.NewTreeEntry) []driven.NewTreeEntry {
	for i := range entries {
		if entries[i].Path == entry.Path {
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}
