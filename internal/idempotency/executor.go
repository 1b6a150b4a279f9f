package idempotency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerline/idemgate/internal/domain"
	"github.com/ledgerline/idemgate/internal/platform/db"
)

// maxKeyLength bounds caller-supplied idempotency keys. Keys are otherwise
// opaque: any printable string is accepted.
const maxKeyLength = 255

// Existing is what a probe returns when a row already occupies the
// deterministic identifier: the stored entity and the idempotency key it was
// originally created under.
type Existing struct {
	Entity         any
	IdempotencyKey string
}

// Probe reads the row at the deterministic id inside the transaction.
// It returns (nil, nil) when no row exists.
type Probe func(ctx context.Context, tx *sql.Tx, id string) (*Existing, error)

// Write performs the domain insert inside the transaction, using id as the
// new row's primary key. It returns the created entity.
type Write func(ctx context.Context, tx *sql.Tx, id string) (any, error)

// Request carries one protected write into the executor. Probe and Write are
// supplied by the operation's storage entry point; SideEffects holds the
// workflow triggers staged by Write, dispatched only if a new row commits.
type Request struct {
	Operation      Name
	Identity       domain.Identity
	IdempotencyKey string
	Probe          Probe
	Write          Write
	SideEffects    *SideEffectSet
}

// Result is the executor's answer. Replayed is true when the deterministic
// id already held a committed row created under the same key; the caller
// maps that to HTTP 200 instead of 201.
type Result struct {
	Entity          any
	DeterministicID string
	Replayed        bool
}

// Executor runs protected writes with at-most-once semantics. The check for
// an existing row, the domain insert, and the classification of races all
// happen inside a single database transaction; the entity primary key's
// unique constraint is the final backstop when two requests for the same key
// pass the check concurrently.
type Executor struct {
	writeDB  *sql.DB
	catalog  *Catalog
	recorder OutcomeRecorder
	timeout  time.Duration
	logger   *slog.Logger
}

// NewExecutor creates an executor. The sql.DB must be the write pool.
// recorder may be nil, in which case outcomes are discarded; logger may be
// nil, in which case logging is discarded. timeout bounds each invocation's
// transaction; values <= 0 disable the bound.
func NewExecutor(writeDB *sql.DB, catalog *Catalog, recorder OutcomeRecorder, timeout time.Duration, logger *slog.Logger) *Executor {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		writeDB:  writeDB,
		catalog:  catalog,
		recorder: recorder,
		timeout:  timeout,
		logger:   logger,
	}
}

// Execute runs one protected write.
//
// Inside a single transaction it derives the deterministic id, probes for an
// existing row, and either returns the stored entity (replay), fails with a
// key collision, or performs the insert. A unique-constraint violation
// during the insert means a concurrent request won the race; it is
// re-classified as a replay by re-reading the now-existing row. Side effects
// run only after a new row's commit. Every invocation reports exactly one
// outcome to the recorder, including failures.
func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	desc, ok := e.catalog.Lookup(req.Operation)
	if !ok {
		// Unreachable when routes are bound through the gate; kept as a
		// guard for direct callers. No descriptor exists, so the outcome
		// carries a placeholder type instead of an empty one.
		desc.Type = "unknown"
		err := fmt.Errorf("operation %q is not registered", req.Operation)
		e.report(req, desc, "", StatusFailed, start, 0, err)
		return nil, err
	}

	if err := validateRequest(req); err != nil {
		e.report(req, desc, "", StatusFailed, start, 0, err)
		return nil, err
	}

	id := DeriveID(req.Identity.TenantID, req.Operation, req.IdempotencyKey)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	res, status, err := e.runTransaction(ctx, req, id)
	if err != nil {
		e.report(req, desc, id, StatusFailed, start, 0, err)
		return nil, err
	}

	if status == StatusReplayed {
		e.report(req, desc, id, StatusReplayed, start, 0, nil)
		return res, nil
	}

	// New row committed: side effects fire exactly here, never earlier and
	// never for replays. The transaction deadline does not extend to
	// dispatch; a row that commits near the deadline still gets its
	// triggers, and the notifier bounds its own calls.
	triggered, sideErr := req.SideEffects.Run(context.WithoutCancel(ctx))
	if sideErr != nil {
		// The row is durable; a failed trigger must not fail the operation.
		e.logger.ErrorContext(ctx, "side-effect dispatch failed after commit",
			slog.String("operation", string(req.Operation)),
			slog.String("deterministic_id", id),
			slog.Any("error", sideErr),
		)
	}

	e.report(req, desc, id, StatusNew, start, triggered, sideErr)
	return res, nil
}

// runTransaction executes the check-then-write sequence atomically and
// classifies the result as new or replayed.
func (e *Executor) runTransaction(ctx context.Context, req Request, id string) (*Result, Status, error) {
	tx, err := e.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, StatusFailed, transient("begin transaction", err)
	}
	// Rollback is a no-op after Commit.
	defer func() { _ = tx.Rollback() }()

	existing, err := req.Probe(ctx, tx, id)
	if err != nil {
		return nil, StatusFailed, transient("probe existing row", err)
	}
	if existing != nil {
		return e.classifyExisting(tx, req, id, existing)
	}

	entity, err := req.Write(ctx, tx, id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			// Race window: a concurrent request inserted the row between
			// our probe and our insert. Demote to replay-reader.
			return e.reclassifyRace(ctx, tx, req, id, err)
		}
		if errors.Is(err, domain.ErrValidation) {
			return nil, StatusFailed, err
		}
		return nil, StatusFailed, transient("execute write", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, StatusFailed, transient("commit", err)
	}

	return &Result{Entity: entity, DeterministicID: id}, StatusNew, nil
}

// classifyExisting resolves a probe hit: same stored key means replay,
// a different key means the id is occupied by an unrelated request.
func (e *Executor) classifyExisting(tx *sql.Tx, req Request, id string, existing *Existing) (*Result, Status, error) {
	if existing.IdempotencyKey != req.IdempotencyKey {
		return nil, StatusFailed, &domain.KeyCollisionError{
			DeterministicID: id,
			SubmittedKey:    req.IdempotencyKey,
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, StatusFailed, transient("commit replay read", err)
	}

	return &Result{Entity: existing.Entity, DeterministicID: id, Replayed: true}, StatusReplayed, nil
}

// reclassifyRace re-reads the row after a unique-constraint violation.
// Exactly one concurrent insert succeeded; this invocation becomes a replay
// of it, provided the stored key matches.
func (e *Executor) reclassifyRace(ctx context.Context, tx *sql.Tx, req Request, id string, cause error) (*Result, Status, error) {
	existing, err := req.Probe(ctx, tx, id)
	if err != nil {
		return nil, StatusFailed, transient("re-probe after constraint violation", err)
	}
	if existing == nil {
		// Constraint fired but the row is not visible: some other
		// uniqueness rule was violated. Surface the original error.
		return nil, StatusFailed, transient("execute write", cause)
	}
	return e.classifyExisting(tx, req, id, existing)
}

// report builds and delivers the invocation outcome. Recorder delivery is
// non-blocking by contract; report never returns an error.
func (e *Executor) report(req Request, desc Descriptor, id string, status Status, start time.Time, triggered int, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	e.recorder.Record(Outcome{
		Operation:          req.Operation,
		OperationType:      desc.Type,
		TenantID:           req.Identity.TenantID,
		UserID:             req.Identity.UserID,
		DeterministicID:    id,
		IdempotencyKey:     req.IdempotencyKey,
		Status:             status,
		Duration:           time.Since(start),
		WorkflowsTriggered: triggered,
		ErrorMessage:       msg,
		Timestamp:          time.Now().UTC(),
	})
}

// validateRequest enforces the executor's input contract: tenant and key
// non-empty, key bounded and printable, probe and write supplied.
func validateRequest(req Request) error {
	fields := make(map[string]string)

	if req.Identity.TenantID == "" {
		fields["tenant_id"] = "is required"
	}
	switch {
	case req.IdempotencyKey == "":
		fields["idempotency_key"] = "is required"
	case len(req.IdempotencyKey) > maxKeyLength:
		fields["idempotency_key"] = fmt.Sprintf("must be at most %d bytes", maxKeyLength)
	case !printable(req.IdempotencyKey):
		fields["idempotency_key"] = "must contain only printable characters"
	}
	if req.Probe == nil {
		fields["probe"] = "is required"
	}
	if req.Write == nil {
		fields["write"] = "is required"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// printable reports whether s consists solely of printable ASCII.
func printable(s string) bool {
	for _, r := range s {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}

// transient wraps a storage-layer failure as retryable: the same idempotency
// key will resolve to a replay or a fresh attempt on the next try.
func transient(stage string, err error) error {
	return fmt.Errorf("%s: %w: %w", stage, domain.ErrUnavailable, err)
}
