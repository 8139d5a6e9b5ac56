package driven

import (
	"context"

	"github.com/maximilien/repoagent/internal/domain/model"
)

// OperationStore persists the audit log of dispatched operations.
type OperationStore interface {
	// Record appends one operation record and returns its assigned ID.
	Record(ctx context.Context, rec model.OperationRecord) (int64, error)

	// ListRecent returns up to limit records, most recent first.
	ListRecent(ctx context.Context, limit int) ([]model.OperationRecord, error)

	// CountByOutcome returns the number of recorded operations per outcome.
	CountByOutcome(ctx context.Context) (map[model.OperationOutcome]int, error)
}
