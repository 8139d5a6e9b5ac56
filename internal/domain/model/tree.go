package model

// FileMode is the git filesystem mode of a tree entry.
type FileMode string

const (
	ModeFile       FileMode = "100644"
	ModeExecutable FileMode = "100755"
	ModeSymlink    FileMode = "120000"
	ModeSubdir     FileMode = "040000"
	ModeSubmodule  FileMode = "160000"
)

// EntryType distinguishes the object kinds a tree entry can point at.
type EntryType string

const (
	EntryBlob   EntryType = "blob"
	EntryTree   EntryType = "tree"
	EntryCommit EntryType = "commit"
)

// TreeEntry is a single path in a tree snapshot. Path uses "/" separators
// relative to the repository root; SHA addresses the referenced object.
type TreeEntry struct {
	Path string
	Mode FileMode
	Type EntryType
	SHA  string
}

// BranchRef is a movable pointer into commit history.
type BranchRef struct {
	Name string
	SHA  string
}

// Commit is an immutable commit object. This workflow always creates
// commits with exactly one parent.
type Commit struct {
	SHA     string
	Message string
	TreeSHA string
	Parents []string
}
