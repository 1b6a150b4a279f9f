// Package domain contains shared domain types used across entity sub-packages.
// Entity-specific types live in sub-packages (domain/payment, domain/invoice,
// domain/grant). This root package holds sentinel errors, validation types,
// and the caller identity resolved by the routing layer.
package domain
