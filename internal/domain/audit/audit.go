// Package audit defines the append-only audit log entry written once per
// executor invocation. Entries are never updated or deleted by the request
// path; retention pruning of the hot store is the only lifecycle operation.
package audit

import "time"

// Entry is one durable audit record. The zero-valued ID means "not yet
// persisted"; the store assigns it on insert.
type Entry struct {
	ID                 int64
	OperationName      string
	OperationType      string
	TenantID           string
	UserID             string
	DeterministicID    string
	IdempotencyKey     string
	Status             string
	DurationMs         int64
	WorkflowsTriggered int
	ErrorMessage       string
	CreatedAt          time.Time
}

// Filter narrows audit queries. TenantID is mandatory: the audit API never
// exposes cross-tenant reads.
type Filter struct {
	TenantID  string
	Operation string
	Status    string
	Limit     int
}
