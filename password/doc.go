// Package password implements password hashing and verification with Argon2id.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Verification reads the cost parameters out of the stored string, so hashes
// produced under older configurations keep verifying after a parameter bump.
// [Argon2.NeedsUpgrade] reports when a stored hash is weaker than the current
// configuration so the caller can re-hash on the next successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy beyond the
// minimum length lives with the caller, and so does persistence: callers
// supply plaintext and receive opaque PHC strings.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Import any other package of this module.
//   - Log plaintext passwords or hash parameters at runtime.
package password
