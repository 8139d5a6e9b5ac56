package model

// FileStatus is the local VCS status code of a changed file.
type FileStatus string

const (
	StatusModified  FileStatus = "modified"
	StatusAdded     FileStatus = "added"
	StatusDeleted   FileStatus = "deleted"
	StatusUntracked FileStatus = "untracked"
)

// ChangedFile is one entry of a ChangeSet.
type ChangedFile struct {
	Path   string
	Status FileStatus
}

// ChangeSet is a transient snapshot of the local working tree, derived
// from `git status` output. It is never persisted.
type ChangeSet struct {
	Files []ChangedFile
}

// IsEmpty reports whether no changed files were detected.
func (c ChangeSet) IsEmpty() bool {
	return len(c.Files) == 0
}

// Paths returns the changed file paths in detection order.
func (c ChangeSet) Paths() []string {
	paths := make([]string, 0, len(c.Files))
	for _, f := range c.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// ChangeProposal is the Change-Detector's suggested branch name, commit
// message, and pull-request title/body for the current ChangeSet.
type ChangeProposal struct {
	Category      string
	BranchName    string
	CommitMessage string
	PRTitle       string
	PRBody        string
	Files         []string
}
