package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// RecordExecution implements ports.Journal.
func (s *Store) RecordExecution(ctx context.Context, rec ports.ExecutionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO executions
			(execution_id, caller, steps, supplied, consumed, refunded, status, reason, started_at, duration_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ExecutionID, string(rec.Caller), rec.Steps, rec.Supplied, rec.Consumed, rec.Refunded,
		rec.Status, rec.Reason, rec.StartedAt.UTC().Format(time.RFC3339Nano), rec.Duration.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// RecordSweep implements ports.Journal.
func (s *Store) RecordSweep(ctx context.Context, rec ports.SweepRecord) error {
	ids, err := json.Marshal(rec.IDs)
	if err != nil {
		return fmt.Errorf("marshal sweep ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sweeps (class, token, recipient, amount, ids, at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Class, string(rec.Token), string(rec.Recipient), rec.Amount, string(ids),
		rec.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert sweep: %w", err)
	}
	return nil
}

// Executions returns the audit entries for one caller, newest first.
func (s *Store) Executions(ctx context.Context, caller domain.Address, limit int) ([]ports.ExecutionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT execution_id, caller, steps, supplied, consumed, refunded, status, reason, started_at, duration_us
		FROM executions WHERE caller = ? ORDER BY started_at DESC LIMIT ?`,
		string(caller), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var out []ports.ExecutionRecord
	for rows.Next() {
		var rec ports.ExecutionRecord
		var caller, startedAt string
		var durationUS int64
		if err := rows.Scan(&rec.ExecutionID, &caller, &rec.Steps, &rec.Supplied, &rec.Consumed,
			&rec.Refunded, &rec.Status, &rec.Reason, &startedAt, &durationUS); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		rec.Caller = domain.Address(caller)
		rec.Duration = time.Duration(durationUS) * time.Microsecond
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
