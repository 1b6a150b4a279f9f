package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ledgerline/idemgate/internal/domain/audit"
	"github.com/ledgerline/idemgate/internal/idempotency"
)

// defaultQueryLimit caps audit queries that pass no explicit limit.
const defaultQueryLimit = 100

// maxQueryLimit is the hard ceiling for a single audit page.
const maxQueryLimit = 1000

// AuditStore is the append-only durable sink for executor outcomes and the
// query surface behind the audit API. Appends go through the write pool;
// queries use the read pool.
type AuditStore struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewAuditStore creates an AuditStore over the given pools.
func NewAuditStore(writeDB, readDB *sql.DB) *AuditStore {
	return &AuditStore{writeDB: writeDB, readDB: readDB}
}

// Append inserts one audit row for the given outcome. Entries are written
// once and never updated.
func (s *AuditStore) Append(ctx context.Context, o idempotency.Outcome) error {
	const query = `
		INSERT INTO audit_log (operation_name, operation_type, tenant_id, user_id,
		                       deterministic_id, idempotency_key, status, duration_ms,
		                       workflows_triggered, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errMsg sql.NullString
	if o.ErrorMessage != "" {
		errMsg = sql.NullString{String: o.ErrorMessage, Valid: true}
	}

	ts := o.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.writeDB.ExecContext(ctx, query,
		string(o.Operation), string(o.OperationType), o.TenantID, o.UserID,
		o.DeterministicID, o.IdempotencyKey, string(o.Status), o.Duration.Milliseconds(),
		o.WorkflowsTriggered, errMsg, ts,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Query returns audit entries matching the filter, newest first. The filter's
// tenant is mandatory; operation and status narrow further when non-empty.
func (s *AuditStore) Query(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	query := `
		SELECT id, operation_name, operation_type, tenant_id, user_id,
		       deterministic_id, idempotency_key, status, duration_ms,
		       workflows_triggered, error_message, created_at
		FROM audit_log WHERE tenant_id = ?
	`
	args := []any{f.TenantID}

	if f.Operation != "" {
		query += " AND operation_name = ?"
		args = append(args, f.Operation)
	}
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, f.Status)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var errMsg sql.NullString
		if err := rows.Scan(
			&e.ID, &e.OperationName, &e.OperationType, &e.TenantID, &e.UserID,
			&e.DeterministicID, &e.IdempotencyKey, &e.Status, &e.DurationMs,
			&e.WorkflowsTriggered, &errMsg, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.ErrorMessage = errMsg.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PruneOlderThan deletes entries created before the cutoff and returns the
// number removed. This bounds the hot store; archival of aged entries is
// owned by the operations pipeline, not this process.
func (s *AuditStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.writeDB.ExecContext(ctx,
		"DELETE FROM audit_log WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit log: %w", err)
	}
	return res.RowsAffected()
}
