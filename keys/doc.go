// Package keys supplies signing material to the token codec: the RS256 key
// pair used for access tokens and the symmetric secret used for refresh
// tokens. Three providers cover the deployment shapes of the system:
//
//   - [FileProvider] loads a PEM key pair from fixed filesystem paths at
//     first use (PKCS1 for legacy configurations, PKCS8/PKIX accepted).
//   - [StaticProvider] holds in-memory material, for tests and
//     single-process setups.
//   - [RemoteKeySet] verifies against a JWKS endpoint published by a
//     separate issuer process; it cannot sign.
//
// [Handler] publishes a provider's public keys as a JWKS document so that a
// verifier in another process can run on a [RemoteKeySet].
package keys
