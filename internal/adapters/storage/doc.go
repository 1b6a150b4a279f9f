// Package storage contains the SQLite outbound adapters: one store per
// entity table plus the append-only audit log store. Entity stores expose
// transaction-scoped probe and insert methods consumed by the executor's
// check-then-write sequence; the deterministic identifier is always the
// primary key, so the engine's unique constraint is the race backstop.
package storage
