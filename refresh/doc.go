// Package refresh is the durable record of issued refresh tokens. One row
// exists per outstanding refresh token, keyed by a monotonically unique id
// that doubles as the token's jti claim. A record's absence is the sole
// revocation signal; there is no revoked flag. The store owns these rows
// exclusively — no other component mutates them.
package refresh
