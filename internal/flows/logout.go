package flows

import (
	"context"

	"github.com/tenauth/tenauth/jwt"
)

// LogoutFailureKind classifies logout failures for root-level mapping.
type LogoutFailureKind int

const (
	LogoutFailureNone LogoutFailureKind = iota
	LogoutFailureDecode
	LogoutFailureStore
)

// LogoutResult reports the invalidated record, or failure metadata.
type LogoutResult struct {
	Failure  LogoutFailureKind
	Err      error
	Claims   *jwt.Claims
	RecordID int64
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	VerifyRefresh    func(string) (*jwt.Claims, int64, error)
	DeleteRecord     func(ctx context.Context, id int64) error
	DeleteAllForUser func(ctx context.Context, userID string) error
}

// RunLogout invalidates the single record behind a presented refresh token.
// The token must carry a valid signature and expiry; the record itself may
// already be absent, in which case the delete is a no-op.
func RunLogout(ctx context.Context, token string, deps LogoutDeps) LogoutResult {
	claims, recordID, err := deps.VerifyRefresh(token)
	if err != nil {
		return LogoutResult{
			Failure: LogoutFailureDecode,
			Err:     err,
		}
	}

	if err := deps.DeleteRecord(ctx, recordID); err != nil {
		return LogoutResult{
			Failure:  LogoutFailureStore,
			Err:      err,
			Claims:   claims,
			RecordID: recordID,
		}
	}

	return LogoutResult{
		Failure:  LogoutFailureNone,
		Claims:   claims,
		RecordID: recordID,
	}
}

// RunLogoutAll invalidates every live record owned by userID.
func RunLogoutAll(ctx context.Context, userID string, deps LogoutDeps) error {
	return deps.DeleteAllForUser(ctx, userID)
}
