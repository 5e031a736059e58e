package tenauth

import (
	"context"
	"fmt"

	"github.com/tenauth/tenauth/internal/flows"
)

// CheckLive decodes a presented refresh token and confirms a live record
// still backs it; this is the gate in front of rotation and logout. A valid
// signature over a deleted record fails with [ErrRevoked] — already-rotated
// and explicitly-logged-out tokens are indistinguishable by design.
//
// CheckLive may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) CheckLive(ctx context.Context, refreshToken string) (*Identity, int64, error) {
	if e == nil || e.codec == nil {
		return nil, 0, ErrEngineNotReady
	}

	result := flows.RunCheckLive(ctx, refreshToken, e.flows.CheckLive)
	switch result.Failure {
	case flows.CheckLiveFailureNone:
		identity := identityFromClaims(result.Claims)
		return &identity, result.RecordID, nil
	case flows.CheckLiveFailureRevoked:
		return nil, 0, ErrRevoked
	case flows.CheckLiveFailureStore:
		return nil, 0, storeErr(result.Err)
	default:
		return nil, 0, result.Err
	}
}

// ParseRefresh decodes a refresh token without consulting the store: the
// signature, expiry, and issuer are checked, liveness is not. Use CheckLive
// when revocation matters; this exists for handlers that only need the
// claims before deciding what to do with the session.
//
// ParseRefresh may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) ParseRefresh(refreshToken string) (*Identity, int64, error) {
	if e == nil || e.codec == nil {
		return nil, 0, ErrEngineNotReady
	}

	claims, recordID, err := e.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, 0, err
	}

	identity := identityFromClaims(claims)
	return &identity, recordID, nil
}

// Refresh rotates a session: validates the presented refresh token against
// its live record, issues a brand-new pair from the decoded identity, then
// deletes the consumed record. Issue-then-delete ordering means a crash
// between the two steps leaves the old record alive rather than locking the
// user out; the resulting double-rotation window under concurrent replay is
// an accepted limitation of a store without conditional delete.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if e == nil || e.codec == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	result := flows.RunRotate(ctx, refreshToken, e.flows.Rotate)
	switch result.Failure {
	case flows.RotateFailureNone:
		e.metricInc(MetricRefreshSuccess)
		e.emitAudit(ctx, auditEventRefreshSuccess, true, result.Claims.Subject, result.Claims.Tenant, result.Issued.RecordID, nil, func() map[string]string {
			return map[string]string{"consumed_record": fmt.Sprint(result.OldRecordID)}
		})
		return TokenPair{
			AccessToken:     result.Issued.AccessToken,
			RefreshToken:    result.Issued.RefreshToken,
			RefreshRecordID: result.Issued.RecordID,
		}, nil

	case flows.RotateFailureRevoked:
		e.metricInc(MetricRefreshRevoked)
		e.emitAudit(ctx, auditEventRefreshRevoked, false, "", "", result.OldRecordID, ErrRevoked, nil)
		return TokenPair{}, ErrRevoked

	case flows.RotateFailureDecode:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", 0, result.Err, nil)
		return TokenPair{}, result.Err

	case flows.RotateFailureStore:
		e.metricInc(MetricRefreshFailure)
		err := storeErr(result.Err)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", result.OldRecordID, err, nil)
		return TokenPair{}, err

	default: // RotateFailureIssue
		e.metricInc(MetricRefreshFailure)
		err := e.mapIssueFailure(result.Issued)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, result.Claims.Subject, result.Claims.Tenant, result.OldRecordID, err, nil)
		return TokenPair{}, err
	}
}

// Logout invalidates the single record behind a presented refresh token.
// The token must carry a valid signature and expiry; deleting an
// already-absent record is a no-op, not an error.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if e == nil || e.codec == nil {
		return ErrEngineNotReady
	}

	result := flows.RunLogout(ctx, refreshToken, e.flows.Logout)
	switch result.Failure {
	case flows.LogoutFailureNone:
		e.metricInc(MetricLogout)
		e.emitAudit(ctx, auditEventLogout, true, result.Claims.Subject, result.Claims.Tenant, result.RecordID, nil, nil)
		return nil
	case flows.LogoutFailureStore:
		return storeErr(result.Err)
	default:
		return result.Err
	}
}

// LogoutAll invalidates every live refresh record owned by userID,
// terminating all of the user's sessions at once.
//
// LogoutAll may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) LogoutAll(ctx context.Context, userID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return fmt.Errorf("%w: empty subject", ErrAccountInvalid)
	}

	if err := flows.RunLogoutAll(ctx, userID, e.flows.Logout); err != nil {
		return storeErr(err)
	}

	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, auditEventLogoutAll, true, userID, "", 0, nil, nil)
	return nil
}
