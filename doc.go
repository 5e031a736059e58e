// Package tenauth is the authentication core for a multi-tenant identity
// backend. It issues short-lived RS256 access tokens and long-lived,
// revocable HS256 refresh tokens, persists one refresh record per issued
// refresh token in Redis, and exposes the middleware that downstream
// authorization consumes.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// tenauth is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Identity, TokenPair, AuditEvent, MetricsSnapshot). Flow
// orchestration lives under internal/ and is never exported. Tenant and user
// CRUD, HTTP routing, and schema management belong to the caller; the caller
// integrates through [UserProvider] and the middleware package.
//
// # What this package must NOT do
//
//   - Expose Redis clients, record encodings, or key material in its public
//     API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Distinguish revocation from expiry or signature failure in anything a
//     token holder can observe.
//
// # Token model
//
// Access tokens are verified purely by signature, expiry, and issuer; they
// are never persisted and never touch the store. Refresh tokens embed the id
// of a persisted refresh record as their jti claim; the record's existence is
// the sole liveness signal. Rotation issues a new pair first and deletes the
// consumed record second, so a crash between the two steps leaves the holder
// able to rotate once more instead of locked out.
package tenauth
