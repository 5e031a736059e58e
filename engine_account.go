package tenauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUserNotFound is an exported constant or variable used by the authentication core.
// UserProvider implementations return it (possibly wrapped) when no account
// matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// Register creates an account and, when AutoLogin is configured, issues its
// first credential pair. The password is hashed before it reaches the
// provider; the plaintext is never persisted anywhere.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if e == nil || e.userProvider == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	req.normalize(e.config.Account.DefaultRole)
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email field is empty", ErrAccountInvalid)
	}
	if !ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: %q", ErrRoleInvalid, req.Role)
	}

	_, err := e.userProvider.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", req.TenantID, 0, ErrAccountExists, func() map[string]string {
			return map[string]string{"email": req.Email}
		})
		return nil, ErrAccountExists
	case errors.Is(err, ErrUserNotFound):
		// expected path
	default:
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccountInvalid, err)
	}

	user, err := e.userProvider.CreateUser(ctx, CreateUserInput{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Role:         req.Role,
		TenantID:     req.TenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, user.UserID, user.TenantID, 0, nil, nil)

	result := &RegisterResult{UserID: user.UserID}
	if e.config.Account.AutoLogin {
		pair, err := e.Issue(ctx, user.Identity())
		if err != nil {
			return nil, err
		}
		result.Pair = pair
	}
	return result, nil
}

// Login authenticates an email/password pair and issues fresh credentials.
// Unknown email and wrong password produce the identical failure: a caller
// probing for accounts learns nothing from the response shape. No refresh
// record is created on any failure path.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (TokenPair, error) {
	if e == nil || e.userProvider == nil || e.passwordHash == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	email = strings.TrimSpace(email)
	user, err := e.userProvider.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", "", 0, ErrInvalidCredentials, func() map[string]string {
				return map[string]string{"email": email}
			})
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("user lookup: %w", err)
	}

	match, err := e.passwordHash.Verify(plaintext, user.PasswordHash)
	if err != nil || !match {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, user.TenantID, 0, ErrInvalidCredentials, nil)
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, err := e.Issue(ctx, user.Identity())
	if err != nil {
		return TokenPair{}, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.UserID, user.TenantID, pair.RefreshRecordID, nil, nil)
	return pair, nil
}
