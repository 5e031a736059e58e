package flows

import (
	"context"

	"github.com/tenauth/tenauth/jwt"
)

// RotateFailureKind classifies rotation failures for root-level mapping.
type RotateFailureKind int

const (
	RotateFailureNone RotateFailureKind = iota
	RotateFailureDecode
	RotateFailureRevoked
	RotateFailureStore
	RotateFailureIssue
)

// RotateResult carries the new pair or failure metadata. OldRecordID names
// the consumed record when it was decoded far enough to know it.
type RotateResult struct {
	Failure     RotateFailureKind
	Err         error
	OldRecordID int64
	Claims      *jwt.Claims
	Issued      IssueResult
}

// RotateDeps captures rotation flow dependencies.
type RotateDeps struct {
	CheckLive    CheckLiveDeps
	Issue        IssueDeps
	DeleteRecord func(ctx context.Context, id int64) error
	Warn         func(format string, args ...any)
}

// RunRotate consumes a live refresh token and issues a brand-new pair.
//
// Ordering is issue-then-delete: a crash between the two steps leaves the
// old record alive, so its holder can rotate once more, rather than leaving
// the user with no live record at all. Under concurrent replay of one token
// both racers may pass the liveness check before either deletes; the store
// has no conditional-delete primitive, so that double-rotation window is
// accepted. A failed delete after successful issuance is logged, not
// surfaced: the new pair is valid and the old record still expires.
func RunRotate(ctx context.Context, token string, deps RotateDeps) RotateResult {
	live := RunCheckLive(ctx, token, deps.CheckLive)
	if live.Failure != CheckLiveFailureNone {
		return RotateResult{
			Failure:     rotateFailureFromCheckLive(live.Failure),
			Err:         live.Err,
			OldRecordID: live.RecordID,
		}
	}

	issued := RunIssue(ctx, *live.Claims, deps.Issue)
	if issued.Failure != IssueFailureNone {
		return RotateResult{
			Failure:     RotateFailureIssue,
			Err:         issued.Err,
			OldRecordID: live.RecordID,
			Claims:      live.Claims,
			Issued:      issued,
		}
	}

	if err := deps.DeleteRecord(ctx, live.RecordID); err != nil && deps.Warn != nil {
		deps.Warn("tenauth: consumed refresh record %d not deleted: %v", live.RecordID, err)
	}

	return RotateResult{
		Failure:     RotateFailureNone,
		OldRecordID: live.RecordID,
		Claims:      live.Claims,
		Issued:      issued,
	}
}

func rotateFailureFromCheckLive(kind CheckLiveFailureKind) RotateFailureKind {
	switch kind {
	case CheckLiveFailureDecode:
		return RotateFailureDecode
	case CheckLiveFailureRevoked:
		return RotateFailureRevoked
	default:
		return RotateFailureStore
	}
}
