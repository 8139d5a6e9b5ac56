package model

// Repository identifies the single remote GitHub repository the agent
// operates on, together with the credential used for every call.
// Immutable after construction at startup.
type Repository struct {
	Owner string
	Name  string
	Token string
}

// FullName returns the conventional "owner/name" form.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// RepositoryInfo holds remote repository metadata returned by the
// repository status operation.
type RepositoryInfo struct {
	FullName      string
	Description   string
	DefaultBranch string
	Stars         int
	Forks         int
	OpenIssues    int
}
