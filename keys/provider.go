package keys

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrUnknownKeyID is returned when a token names a kid the provider does not
// hold.
var ErrUnknownKeyID = errors.New("unknown key id")

// PublicKeySet is implemented by providers that can enumerate their public
// keys for JWKS publishing.
type PublicKeySet interface {
	PublicKeys() (map[string]*rsa.PublicKey, error)
}

// FileProvider loads the RS256 key pair from fixed filesystem locations. The
// private key is read lazily and cached on success, so a missing key file at
// issuance time surfaces as an error on that request instead of crashing the
// process at start.
//
// FileProvider instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FileProvider struct {
	privatePath   string
	publicPath    string
	keyID         string
	refreshSecret []byte

	mu       sync.Mutex
	signer   *rsa.PrivateKey
	verifier *rsa.PublicKey
}

// NewFileProvider builds a provider reading the private key from privatePath
// and, when publicPath is non-empty, the public key from publicPath;
// otherwise the public key is derived from the private key. refreshSecret is
// the symmetric refresh-token secret from process configuration.
func NewFileProvider(privatePath, publicPath string, refreshSecret []byte) *FileProvider {
	return &FileProvider{
		privatePath:   privatePath,
		publicPath:    publicPath,
		keyID:         uuid.NewString(),
		refreshSecret: refreshSecret,
	}
}

// WithKeyID overrides the generated kid. Useful when the verifier side
// already pins a published kid.
func (p *FileProvider) WithKeyID(kid string) *FileProvider {
	p.keyID = kid
	return p
}

// Signer returns the private key, reading and parsing the PEM file on first
// use. The error message is fixed so the handler layer can surface it as a
// 500-class response without leaking paths.
func (p *FileProvider) Signer() (*rsa.PrivateKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.signer != nil {
		return p.signer, nil
	}

	pemBytes, err := os.ReadFile(p.privatePath)
	if err != nil {
		return nil, errors.New("Error while reading private key")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, errors.New("Error while reading private key")
	}

	p.signer = key
	return key, nil
}

// KeyID returns the kid stamped into signed access tokens.
func (p *FileProvider) KeyID() string { return p.keyID }

// Verifier resolves the public key. An empty kid or the provider's own kid
// selects the single held key; anything else is unknown.
func (p *FileProvider) Verifier(kid string) (*rsa.PublicKey, error) {
	if kid != "" && kid != p.keyID {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyID, kid)
	}
	return p.publicKey()
}

// RefreshSecret returns the symmetric refresh-token secret.
func (p *FileProvider) RefreshSecret() []byte { return p.refreshSecret }

// PublicKeys implements [PublicKeySet] for JWKS publishing.
func (p *FileProvider) PublicKeys() (map[string]*rsa.PublicKey, error) {
	pub, err := p.publicKey()
	if err != nil {
		return nil, err
	}
	return map[string]*rsa.PublicKey{p.keyID: pub}, nil
}

func (p *FileProvider) publicKey() (*rsa.PublicKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.verifier != nil {
		return p.verifier, nil
	}

	if p.publicPath != "" {
		pemBytes, err := os.ReadFile(p.publicPath)
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		pub, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		p.verifier = pub
		return pub, nil
	}

	if p.signer == nil {
		pemBytes, err := os.ReadFile(p.privatePath)
		if err != nil {
			return nil, errors.New("Error while reading private key")
		}
		key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
		if err != nil {
			return nil, errors.New("Error while reading private key")
		}
		p.signer = key
	}
	p.verifier = &p.signer.PublicKey
	return p.verifier, nil
}

// StaticProvider holds in-memory key material. The zero value is unusable;
// construct through [NewStaticProvider].
//
// StaticProvider instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StaticProvider struct {
	key           *rsa.PrivateKey
	keyID         string
	refreshSecret []byte
}

// NewStaticProvider wraps an already-parsed private key. A fresh kid is
// generated; override with [StaticProvider.WithKeyID].
func NewStaticProvider(key *rsa.PrivateKey, refreshSecret []byte) (*StaticProvider, error) {
	if key == nil {
		return nil, errors.New("private key required")
	}
	if len(refreshSecret) == 0 {
		return nil, errors.New("refresh secret required")
	}
	return &StaticProvider{
		key:           key,
		keyID:         uuid.NewString(),
		refreshSecret: refreshSecret,
	}, nil
}

// WithKeyID overrides the generated kid.
func (p *StaticProvider) WithKeyID(kid string) *StaticProvider {
	p.keyID = kid
	return p
}

// Signer returns the held private key.
func (p *StaticProvider) Signer() (*rsa.PrivateKey, error) { return p.key, nil }

// KeyID returns the kid stamped into signed access tokens.
func (p *StaticProvider) KeyID() string { return p.keyID }

// Verifier resolves the public key for kid.
func (p *StaticProvider) Verifier(kid string) (*rsa.PublicKey, error) {
	if kid != "" && kid != p.keyID {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyID, kid)
	}
	return &p.key.PublicKey, nil
}

// RefreshSecret returns the symmetric refresh-token secret.
func (p *StaticProvider) RefreshSecret() []byte { return p.refreshSecret }

// PublicKeys implements [PublicKeySet] for JWKS publishing.
func (p *StaticProvider) PublicKeys() (map[string]*rsa.PublicKey, error) {
	return map[string]*rsa.PublicKey{p.keyID: &p.key.PublicKey}, nil
}
