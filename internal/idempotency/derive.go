package idempotency

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// idNamespace is the fixed UUID namespace for deterministic identifiers.
// Changing it would re-key every deterministic id ever derived, so it is
// frozen forever.
var idNamespace = uuid.MustParse("7a9c1f2e-4b8d-4e63-9f10-2d5ba4c80417")

// DeriveID maps (tenant, operation, idempotency key) to a stable identifier.
// It is a total, pure function: equal inputs always yield equal outputs.
//
// The three inputs are length-prefixed before hashing so that field
// boundaries are unambiguous: ("a", "b-c") and ("a-b", "c") hash to
// different identifiers even though a naive separator join would not
// distinguish them. The result is a name-based UUID (v5), which becomes the
// primary key of the entity row created by the operation.
func DeriveID(tenantID string, op Name, idempotencyKey string) string {
	parts := []string{tenantID, string(op), idempotencyKey}

	size := 0
	for _, p := range parts {
		size += binary.MaxVarintLen64 + len(p)
	}

	buf := make([]byte, 0, size)
	var lenBuf [binary.MaxVarintLen64]byte
	for _, p := range parts {
		n := binary.PutUvarint(lenBuf[:], uint64(len(p)))
		buf = append(buf, lenBuf[:n]...)
		buf = append(buf, p...)
	}

	return uuid.NewSHA1(idNamespace, buf).String()
}
