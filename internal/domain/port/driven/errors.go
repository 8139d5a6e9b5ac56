package driven

import "errors"

// Sentinel errors returned by driven adapters. Application code matches
// them with errors.Is to make policy decisions at the tool boundary.
var (
	// ErrNotConfigured indicates no GitHub credential is present; no
	// network call was attempted.
	ErrNotConfigured = errors.New("github integration not configured")

	// ErrBranchNotFound indicates a ref lookup got a 404 from the remote.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrNonFastForward indicates a ref update was rejected because the
	// new target is not a descendant of the current one and force was not
	// requested. The branch head is unchanged.
	ErrNonFastForward = errors.New("non-fast-forward ref update rejected")
)
