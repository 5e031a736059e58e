// Package jwt is the token codec: pure encode/verify of access and refresh
// tokens. Access tokens are RS256-signed with the provider's private key;
// refresh tokens are HS256-signed with the symmetric refresh secret and carry
// the refresh record id as their jti claim. The codec never touches storage.
package jwt
