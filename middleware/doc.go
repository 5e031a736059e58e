// Package middleware exposes HTTP middleware adapters for access-token
// authentication, role gating, and refresh-token handling built on top of
// tenauth.Engine.
//
// # Guards
//
//   - [Authenticate] — verifies the access token (bearer header or
//     accessToken cookie) and injects the identity into the context.
//   - [RequireRole] — rejects identities outside an allow list with 403.
//   - [ParseRefresh] — decodes the refreshToken cookie, no store call.
//   - [ValidateRefresh] — decodes the cookie and confirms the record is live.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — every decision is delegated to the
// engine, and every rejection is a bare status code with no token diagnostics
// in the body.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Leak why a token was rejected to the client.
package middleware
