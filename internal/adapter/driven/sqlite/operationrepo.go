package sqlite

import (
	"context"
	"fmt"

	"github.com/maximilien/repoagent/internal/domain/model"
	"github.com/maximilien/repoagent/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.OperationStore = (*OperationRepo)(nil)

// OperationRepo is the SQLite implementation of the OperationStore port.
type OperationRepo struct {
	db *DB
}

// NewOperationRepo creates an OperationRepo backed by the given DB.
func NewOperationRepo(db *DB) *OperationRepo {
	return &OperationRepo{db: db}
}

// Record appends one operation record and returns its assigned ID.
func (r *OperationRepo) Record(ctx context.Context, rec model.OperationRecord) (int64, error) {
	const query = `INSERT INTO operations (tool, query, outcome, detail, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.Writer.ExecContext(ctx, query,
		rec.Tool, rec.Query, string(rec.Outcome), rec.Detail,
		rec.StartedAt.UTC(), rec.EndedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("record operation %s: %w", rec.Tool, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	return id, nil
}

// ListRecent returns up to limit records, most recent first.
func (r *OperationRepo) ListRecent(ctx context.Context, limit int) ([]model.OperationRecord, error) {
	const query = `SELECT id, tool, query, outcome, detail, started_at, ended_at
		FROM operations ORDER BY started_at DESC, id DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var records []model.OperationRecord
	for rows.Next() {
		var rec model.OperationRecord
		var outcome string
		if err := rows.Scan(&rec.ID, &rec.Tool, &rec.Query, &outcome, &rec.Detail, &rec.StartedAt, &rec.EndedAt); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		rec.Outcome = model.OperationOutcome(outcome)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}

	return records, nil
}

// CountByOutcome returns the number of recorded operations per outcome.
func (r *OperationRepo) CountByOutcome(ctx context.Context) (map[model.OperationOutcome]int, error) {
	const query = `SELECT outcome, COUNT(*) FROM operations GROUP BY outcome`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count operations: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.OperationOutcome]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[model.OperationOutcome(outcome)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}

	return counts, nil
}
