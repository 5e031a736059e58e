package tenauth

import (
	"errors"
	"net/http"
	"time"
)

// Config defines a public type used by tenauth APIs. It is constructed once
// at process start from explicit values — never from ambient globals — and
// passed to every component at Build time.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT      JWTConfig
	Store    StoreConfig
	Cookie   CookieConfig
	Password PasswordConfig
	Account  AccountConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// JWTConfig defines a public type used by tenauth APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

// StoreConfig defines a public type used by tenauth APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	RedisPrefix string
}

// CookieConfig defines a public type used by tenauth APIs. The cookie names
// themselves are fixed ([CookieAccessToken], [CookieRefreshToken]); only
// scope and transport attributes are configurable.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// PasswordConfig defines a public type used by tenauth APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// AccountConfig defines a public type used by tenauth APIs.
//
// AccountConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccountConfig struct {
	DefaultRole string
	AutoLogin   bool
}

// AuditConfig defines a public type used by tenauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by tenauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration the original deployment runs with:
// issuer auth-service, 1 hour access tokens, 1 year refresh tokens, strict
// same-site cookies, customer as the default account role.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			Issuer:     "auth-service",
			AccessTTL:  time.Hour,
			RefreshTTL: 365 * 24 * time.Hour,
			Leeway:     0,
		},
		Store: StoreConfig{
			RedisPrefix: "ta",
		},
		Cookie: CookieConfig{
			Domain:   "localhost",
			Secure:   false,
			SameSite: http.SameSiteStrictMode,
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Account: AccountConfig{
			DefaultRole: RoleCustomer,
			AutoLogin:   true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// Validate checks the invariants Build relies on.
//
// Validate may return an error when input validation fails.
func (c Config) Validate() error {
	if c.JWT.Issuer == "" {
		return errors.New("jwt issuer required")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("access TTL must be positive")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("invalid leeway configuration")
	}
	if c.Account.DefaultRole != "" && !ValidRole(c.Account.DefaultRole) {
		return errors.New("default role outside the recognized role set")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}
	return nil
}
