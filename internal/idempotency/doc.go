// Package idempotency is the exactly-once write core: deterministic
// identifier derivation, the static mutation catalog, and the transactional
// executor that guarantees each (tenant, operation, idempotency key) intent
// creates at most one entity row regardless of retries or concurrent
// duplicate submissions.
package idempotency
