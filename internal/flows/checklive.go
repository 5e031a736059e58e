package flows

import (
	"context"
	"errors"

	"github.com/tenauth/tenauth/jwt"
	"github.com/tenauth/tenauth/refresh"
)

// CheckLiveFailureKind classifies revocation-check failures for root-level
// mapping.
type CheckLiveFailureKind int

const (
	CheckLiveFailureNone CheckLiveFailureKind = iota
	CheckLiveFailureDecode
	CheckLiveFailureRevoked
	CheckLiveFailureStore
)

// CheckLiveResult carries the decoded claims and record id, or failure
// metadata.
type CheckLiveResult struct {
	Failure  CheckLiveFailureKind
	Err      error
	Claims   *jwt.Claims
	RecordID int64
}

// LiveRecordStore is the single store operation the revocation check needs.
type LiveRecordStore interface {
	FindLive(ctx context.Context, id int64, userID string) (*refresh.Record, error)
}

// CheckLiveDeps captures revocation-verifier dependencies.
type CheckLiveDeps struct {
	VerifyRefresh func(string) (*jwt.Claims, int64, error)
	Store         LiveRecordStore
}

// RunCheckLive decodes a presented refresh token and confirms a live record
// still backs it. A missing record — already rotated or explicitly logged
// out, indistinguishable by design — is a revocation failure; any other
// store failure is infrastructure.
func RunCheckLive(ctx context.Context, token string, deps CheckLiveDeps) CheckLiveResult {
	claims, recordID, err := deps.VerifyRefresh(token)
	if err != nil {
		return CheckLiveResult{
			Failure: CheckLiveFailureDecode,
			Err:     err,
		}
	}

	if _, err := deps.Store.FindLive(ctx, recordID, claims.Subject); err != nil {
		if errors.Is(err, refresh.ErrRecordNotFound) {
			return CheckLiveResult{
				Failure:  CheckLiveFailureRevoked,
				Err:      err,
				RecordID: recordID,
			}
		}
		return CheckLiveResult{
			Failure:  CheckLiveFailureStore,
			Err:      err,
			RecordID: recordID,
		}
	}

	return CheckLiveResult{
		Failure:  CheckLiveFailureNone,
		Claims:   claims,
		RecordID: recordID,
	}
}
