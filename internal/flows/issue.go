package flows

import (
	"context"
	"time"

	"github.com/tenauth/tenauth/jwt"
)

// IssueFailureKind classifies issuance failures for root-level mapping.
type IssueFailureKind int

const (
	IssueFailureNone IssueFailureKind = iota
	IssueFailureCreateRecord
	IssueFailureSignRefresh
	IssueFailureSignAccess
)

// IssueResult carries either the issued pair or failure metadata. When
// signing fails after the record was created, RecordID still names the
// orphaned record; it expires unused, which is the accepted trade-off.
type IssueResult struct {
	Failure      IssueFailureKind
	Err          error
	RecordID     int64
	AccessToken  string
	RefreshToken string
}

// IssueRecordStore is the single store operation issuance needs.
type IssueRecordStore interface {
	Create(ctx context.Context, userID string, expiresAt time.Time) (int64, error)
}

// IssueDeps captures issuance flow dependencies.
type IssueDeps struct {
	RefreshTTL  time.Duration
	Store       IssueRecordStore
	SignRefresh func(jwt.Claims, int64) (string, error)
	SignAccess  func(jwt.Claims) (string, error)
}

// RunIssue produces a fresh access/refresh pair for the claim set. The
// record is created before either token is signed: a create failure aborts
// issuance so no token ever exists without a backing record.
func RunIssue(ctx context.Context, claims jwt.Claims, deps IssueDeps) IssueResult {
	recordID, err := deps.Store.Create(ctx, claims.Subject, time.Now().Add(deps.RefreshTTL))
	if err != nil {
		return IssueResult{
			Failure: IssueFailureCreateRecord,
			Err:     err,
		}
	}

	refreshToken, err := deps.SignRefresh(claims, recordID)
	if err != nil {
		return IssueResult{
			Failure:  IssueFailureSignRefresh,
			Err:      err,
			RecordID: recordID,
		}
	}

	accessToken, err := deps.SignAccess(claims)
	if err != nil {
		return IssueResult{
			Failure:  IssueFailureSignAccess,
			Err:      err,
			RecordID: recordID,
		}
	}

	return IssueResult{
		Failure:      IssueFailureNone,
		RecordID:     recordID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
}
