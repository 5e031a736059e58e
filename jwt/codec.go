package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure taxonomy. Callers map all four to an unauthenticated
// response; the split is for logs and tests only.
var (
	// ErrMalformed is an exported constant or variable used by the authentication core.
	ErrMalformed = errors.New("token malformed")
	// ErrExpired is an exported constant or variable used by the authentication core.
	ErrExpired = errors.New("token expired")
	// ErrBadSignature is an exported constant or variable used by the authentication core.
	ErrBadSignature = errors.New("token signature mismatch")
	// ErrBadIssuer is an exported constant or variable used by the authentication core.
	ErrBadIssuer = errors.New("token issuer mismatch")
	// ErrSigningUnavailable is an exported constant or variable used by the authentication core.
	ErrSigningUnavailable = errors.New("signing material unavailable")
)

// KeySource supplies the codec's key material. Implemented by the providers
// in the keys package; a test double only needs these four methods.
type KeySource interface {
	// Signer returns the RS256 private key, or an error when the key cannot
	// be loaded. The codec wraps that error in ErrSigningUnavailable.
	Signer() (*rsa.PrivateKey, error)
	// KeyID is the kid stamped into access token headers. May be empty.
	KeyID() string
	// Verifier resolves the RSA public key for kid. An empty kid selects the
	// provider's default key.
	Verifier(kid string) (*rsa.PublicKey, error)
	// RefreshSecret is the symmetric HS256 secret for refresh tokens.
	RefreshSecret() []byte
}

// Claims is the wire shape embedded in both token kinds. Subject, issuer,
// expiry, and (for refresh tokens) jti live in RegisteredClaims.
//
// Claims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Claims struct {
	Role      string `json:"role"`
	Tenant    string `json:"tenant,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	jwt.RegisteredClaims
}

// Config defines a public type used by tenauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

// Codec signs and verifies tokens. Pure with respect to external state
// beyond the key material it is handed.
//
// Codec instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Codec struct {
	config Config
	keys   KeySource
}

// NewCodec validates the configuration and binds the codec to its key source.
//
// NewCodec may return an error when input validation fails.
func NewCodec(cfg Config, keys KeySource) (*Codec, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("issuer required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if keys == nil {
		return nil, errors.New("key source required")
	}
	return &Codec{config: cfg, keys: keys}, nil
}

// SignAccess encodes claims into an RS256 access token with the configured
// issuer and access TTL. The claims' Subject must be set by the caller.
//
// SignAccess fails with [ErrSigningUnavailable] when the private key cannot
// be loaded.
func (c *Codec) SignAccess(claims Claims) (string, error) {
	now := time.Now()
	claims.Issuer = c.config.Issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.config.AccessTTL))
	claims.ID = ""

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid := c.keys.KeyID(); kid != "" {
		token.Header["kid"] = kid
	}

	key, err := c.keys.Signer()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningUnavailable, err)
	}
	return token.SignedString(key)
}

// SignRefresh encodes claims plus jti = recordID into an HS256 refresh token
// with the configured issuer and refresh TTL.
func (c *Codec) SignRefresh(claims Claims, recordID int64) (string, error) {
	now := time.Now()
	claims.Issuer = c.config.Issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.config.RefreshTTL))
	claims.ID = strconv.FormatInt(recordID, 10)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secret := c.keys.RefreshSecret()
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: empty refresh secret", ErrSigningUnavailable)
	}
	return token.SignedString(secret)
}

// VerifyAccess checks an access token's signature, expiry, and issuer against
// the provider's public key set and returns the decoded claims.
//
// VerifyAccess fails with [ErrMalformed], [ErrExpired], [ErrBadSignature], or
// [ErrBadIssuer].
func (c *Codec) VerifyAccess(tokenStr string) (*Claims, error) {
	return c.verify(tokenStr, jwt.SigningMethodRS256.Alg(), func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		return c.keys.Verifier(kid)
	})
}

// VerifyRefresh checks a refresh token against the symmetric secret and
// returns the decoded claims together with the record id parsed from jti.
func (c *Codec) VerifyRefresh(tokenStr string) (*Claims, int64, error) {
	claims, err := c.verify(tokenStr, jwt.SigningMethodHS256.Alg(), func(*jwt.Token) (interface{}, error) {
		return c.keys.RefreshSecret(), nil
	})
	if err != nil {
		return nil, 0, err
	}

	recordID, err := strconv.ParseInt(claims.ID, 10, 64)
	if err != nil || recordID <= 0 {
		return nil, 0, fmt.Errorf("%w: invalid jti", ErrMalformed)
	}
	return claims, recordID, nil
}

func (c *Codec) verify(tokenStr, alg string, keyFunc jwt.Keyfunc) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{alg}),
		jwt.WithIssuer(c.config.Issuer),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, keyFunc)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrMalformed)
	}
	return claims, nil
}

// classify folds golang-jwt parse errors into the codec taxonomy. Unknown
// failure shapes count as malformed rather than leaking parser detail.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrBadIssuer, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
