package driven

import "context"

// WorkspaceLocator resolves the active project directory used for reading
// local file content and for working-tree inspection. Implementations fall
// back to the process working directory when no better answer is available.
type WorkspaceLocator interface {
	// WorkspaceDir returns an absolute directory path. It never fails;
	// the weakest fallback is the current working directory.
	WorkspaceDir(ctx context.Context) string
}
