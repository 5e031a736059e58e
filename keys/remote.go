package keys

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrRemoteCannotSign is returned by [RemoteKeySet.Signer]: a verifier
// running against a published key set holds no private material.
var ErrRemoteCannotSign = errors.New("remote key set cannot sign")

// RemoteKeySet is a verify-only key source backed by a JWKS endpoint. Cached
// keys are served for TTL; an unknown kid triggers a refetch, rate-limited by
// MinRefetchInterval so a flood of bad-kid tokens cannot hammer the issuer.
//
// RemoteKeySet instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RemoteKeySet struct {
	url           string
	client        *http.Client
	ttl           time.Duration
	minRefetch    time.Duration
	refreshSecret []byte

	mu          sync.Mutex
	keys        map[string]*rsa.PublicKey
	fetchedAt   time.Time
	lastAttempt time.Time
}

// RemoteConfig configures a [RemoteKeySet].
//
// RemoteConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RemoteConfig struct {
	URL                string
	CacheTTL           time.Duration
	MinRefetchInterval time.Duration
	HTTPClient         *http.Client
	RefreshSecret      []byte
}

// NewRemoteKeySet builds a remote key source. Fetches are bounded by the
// client timeout; no fetch happens until the first verification.
func NewRemoteKeySet(cfg RemoteConfig) (*RemoteKeySet, error) {
	if cfg.URL == "" {
		return nil, errors.New("jwks url required")
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.MinRefetchInterval <= 0 {
		cfg.MinRefetchInterval = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RemoteKeySet{
		url:           cfg.URL,
		client:        client,
		ttl:           cfg.CacheTTL,
		minRefetch:    cfg.MinRefetchInterval,
		refreshSecret: cfg.RefreshSecret,
	}, nil
}

// Signer always fails: the verifier side never signs.
func (r *RemoteKeySet) Signer() (*rsa.PrivateKey, error) {
	return nil, ErrRemoteCannotSign
}

// KeyID returns the empty string; remote sets never stamp tokens.
func (r *RemoteKeySet) KeyID() string { return "" }

// RefreshSecret returns the symmetric refresh secret when this process also
// validates refresh tokens; may be nil on pure access-token verifiers.
func (r *RemoteKeySet) RefreshSecret() []byte { return r.refreshSecret }

// Verifier resolves kid against the cached key set, refetching when the
// cache is stale or the kid is unknown. With an empty kid and exactly one
// cached key, that key is returned.
func (r *RemoteKeySet) Verifier(kid string) (*rsa.PublicKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if key, ok := r.lookupLocked(kid); ok {
		if time.Since(r.fetchedAt) < r.ttl {
			return key, nil
		}
	}

	if time.Since(r.lastAttempt) >= r.minRefetch {
		r.lastAttempt = time.Now()
		if err := r.fetchLocked(); err != nil {
			// Serve a stale hit rather than failing verification outright.
			if key, ok := r.lookupLocked(kid); ok {
				return key, nil
			}
			return nil, err
		}
	}

	if key, ok := r.lookupLocked(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKeyID, kid)
}

func (r *RemoteKeySet) lookupLocked(kid string) (*rsa.PublicKey, bool) {
	if kid == "" {
		if len(r.keys) == 1 {
			for _, key := range r.keys {
				return key, true
			}
		}
		return nil, false
	}
	key, ok := r.keys[kid]
	return key, ok
}

func (r *RemoteKeySet) fetchLocked() error {
	resp, err := r.client.Get(r.url)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch jwks: status %d", resp.StatusCode)
	}

	var doc JWKS
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, jwk := range doc.Keys {
		pub, err := parseJWK(jwk)
		if err != nil {
			continue
		}
		keys[jwk.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("jwks document holds no usable keys")
	}

	r.keys = keys
	r.fetchedAt = time.Now()
	return nil
}
