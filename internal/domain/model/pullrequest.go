package model

import "time"

// PRState represents the state of a pull request on the remote service.
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
	PRStateMerged PRState = "merged"
)

// PullRequest is the remote pull-request object as seen by this agent.
// State transitions after creation happen on the remote service and are
// outside this system's control.
type PullRequest struct {
	Number     int
	Title      string
	Body       string
	HeadBranch string
	BaseBranch string
	State      PRState
	URL        string
	CreatedAt  time.Time
}
