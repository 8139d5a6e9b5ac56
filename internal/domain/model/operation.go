package model

import "time"

// OperationOutcome is the terminal state of a dispatched operation.
type OperationOutcome string

const (
	OutcomeSuccess OperationOutcome = "success"
	OutcomeFailure OperationOutcome = "failure"
)

// OperationRecord is one entry of the operation audit log: which tool ran
// for which query, how it ended, and the result text handed back to the
// caller.
type OperationRecord struct {
	ID        int64
	Tool      string
	Query     string
	Outcome   OperationOutcome
	Detail    string
	StartedAt time.Time
	EndedAt   time.Time
}
