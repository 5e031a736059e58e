package tenauth

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/tenauth/tenauth/internal/flows"
	"github.com/tenauth/tenauth/jwt"
	"github.com/tenauth/tenauth/password"
	"github.com/tenauth/tenauth/refresh"
)

// KeySource aliases the codec's key material interface so callers can type
// builder arguments without importing the jwt package.
type KeySource = jwt.KeySource

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until Build, and none of the inputs are mutated.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config       Config
	redis        *redis.Client
	keySource    jwt.KeySource
	userProvider UserProvider
	auditSink    AuditSink

	built bool
}

// New starts a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the Redis client backing the refresh store.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithKeys sets the signing/verification key source (see the keys package
// for file, static, and remote-JWKS providers).
func (b *Builder) WithKeys(source jwt.KeySource) *Builder {
	b.keySource = source
	return b
}

// WithUserProvider sets the caller's account persistence. Optional: a
// verify-only deployment can build without one, at the cost of Register and
// Login returning [ErrEngineNotReady].
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithAuditSink sets the audit event sink. Ignored unless audit is enabled
// in the configuration.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires the flow dependencies, and
// returns the engine.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.keySource == nil {
		return nil, errors.New("key source required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	codec, err := jwt.NewCodec(jwt.Config{
		Issuer:     b.config.JWT.Issuer,
		AccessTTL:  b.config.JWT.AccessTTL,
		RefreshTTL: b.config.JWT.RefreshTTL,
		Leeway:     b.config.JWT.Leeway,
	}, b.keySource)
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	store := refresh.NewStore(b.redis, b.config.Store.RedisPrefix)

	engine := &Engine{
		config:       b.config,
		codec:        codec,
		store:        store,
		userProvider: b.userProvider,
		passwordHash: hasher,
		audit:        newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:      NewMetrics(b.config.Metrics),
	}

	issueDeps := flows.IssueDeps{
		RefreshTTL:  b.config.JWT.RefreshTTL,
		Store:       store,
		SignRefresh: codec.SignRefresh,
		SignAccess:  codec.SignAccess,
	}
	checkLiveDeps := flows.CheckLiveDeps{
		VerifyRefresh: codec.VerifyRefresh,
		Store:         store,
	}
	engine.flows = flows.Deps{
		Issue:     issueDeps,
		CheckLive: checkLiveDeps,
		Rotate: flows.RotateDeps{
			CheckLive:    checkLiveDeps,
			Issue:        issueDeps,
			DeleteRecord: store.Delete,
			Warn:         engine.warnf,
		},
		Logout: flows.LogoutDeps{
			VerifyRefresh:    codec.VerifyRefresh,
			DeleteRecord:     store.Delete,
			DeleteAllForUser: store.DeleteAllForUser,
		},
	}

	b.built = true
	return engine, nil
}
