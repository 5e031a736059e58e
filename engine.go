package tenauth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/tenauth/tenauth/internal/flows"
	"github.com/tenauth/tenauth/jwt"
	"github.com/tenauth/tenauth/password"
	"github.com/tenauth/tenauth/refresh"
)

// Engine orchestrates the token lifecycle: credential issuance, liveness
// checking, rotation, logout, and account login/registration. Safe for
// concurrent use after [Builder.Build]; every operation is a self-contained
// point call with no shared in-memory mutable state beyond the store.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	codec        *jwt.Codec
	store        *refresh.Store
	userProvider UserProvider
	passwordHash *password.Argon2
	audit        *auditDispatcher
	metrics      *Metrics
	flows        flows.Deps
}

// Close releases the engine's background resources. It never blocks on
// in-flight requests.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Metrics exposes the engine's counters for external consumers such as the
// middleware package and metric exporters. The instance is a no-op when
// metrics are disabled.
func (e *Engine) Metrics() *Metrics {
	if e == nil {
		return nil
	}
	return e.metrics
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Issue produces a fresh access/refresh pair for the identity: one new
// refresh record per call, the refresh token's jti equal to that record's
// id. A record-creation failure aborts before either token is signed.
//
// Issue may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) Issue(ctx context.Context, identity Identity) (TokenPair, error) {
	if e == nil || e.codec == nil {
		return TokenPair{}, ErrEngineNotReady
	}
	if identity.Subject == "" {
		return TokenPair{}, fmt.Errorf("%w: empty subject", ErrAccountInvalid)
	}
	if !ValidRole(identity.Role) {
		return TokenPair{}, fmt.Errorf("%w: %q", ErrRoleInvalid, identity.Role)
	}

	result := flows.RunIssue(ctx, claimsFromIdentity(identity), e.flows.Issue)
	if result.Failure != flows.IssueFailureNone {
		e.metricInc(MetricIssueFailure)
		err := e.mapIssueFailure(result)
		e.emitAudit(ctx, auditEventIssue, false, identity.Subject, identity.TenantID, result.RecordID, err, nil)
		return TokenPair{}, err
	}

	e.metricInc(MetricIssueSuccess)
	e.emitAudit(ctx, auditEventIssue, true, identity.Subject, identity.TenantID, result.RecordID, nil, nil)

	return TokenPair{
		AccessToken:     result.AccessToken,
		RefreshToken:    result.RefreshToken,
		RefreshRecordID: result.RecordID,
	}, nil
}

// VerifyAccess checks an access token's signature, expiry, and issuer and
// returns the embedded identity. Storage is never consulted: access tokens
// are verified purely against the key material.
func (e *Engine) VerifyAccess(tokenStr string) (*Identity, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.codec.VerifyAccess(tokenStr)
	if err != nil {
		e.metricInc(MetricAccessVerifyFailure)
		return nil, err
	}

	identity := identityFromClaims(claims)
	return &identity, nil
}

func (e *Engine) mapIssueFailure(result flows.IssueResult) error {
	switch result.Failure {
	case flows.IssueFailureCreateRecord:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Err)
	default:
		// Signing failures already carry ErrSigningUnavailable; anything else
		// is surfaced untouched so the handler layer maps it to a 500.
		return result.Err
	}
}

func (e *Engine) warnf(format string, args ...any) {
	log.Printf(format, args...)
}

func claimsFromIdentity(identity Identity) jwt.Claims {
	claims := jwt.Claims{
		Role:      identity.Role,
		Tenant:    identity.TenantID,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	}
	claims.Subject = identity.Subject
	return claims
}

func identityFromClaims(claims *jwt.Claims) Identity {
	return Identity{
		Subject:   claims.Subject,
		Role:      claims.Role,
		TenantID:  claims.Tenant,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}
}

// storeErr folds transport failures into the infrastructure sentinel while
// keeping not-found semantics intact for callers that need them.
func storeErr(err error) error {
	if err == nil || errors.Is(err, refresh.ErrRecordNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
