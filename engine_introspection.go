package tenauth

import (
	"context"
	"fmt"
	"time"
)

// SessionInfo is the safe introspection view for one live refresh record.
// It intentionally excludes token material: knowing a record's id is not
// enough to mint a token for it, the HS256 secret is still required.
type SessionInfo struct {
	RecordID  int64
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// HealthStatus is an on-demand backend health result.
type HealthStatus struct {
	RedisAvailable bool
	RedisLatency   time.Duration
}

// ActiveSessionCount reports how many live refresh records the user owns.
//
// ActiveSessionCount may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) ActiveSessionCount(ctx context.Context, userID string) (int64, error) {
	if e == nil || e.store == nil {
		return 0, ErrEngineNotReady
	}
	if userID == "" {
		return 0, fmt.Errorf("%w: empty subject", ErrAccountInvalid)
	}

	n, err := e.store.CountForUser(ctx, userID)
	if err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}

// ListActiveSessions returns the introspection view of every live refresh
// record the user owns. Revoking any of them is [Engine.LogoutAll] or a
// targeted delete via a presented token, never by record id alone.
//
// ListActiveSessions may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) ListActiveSessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrAccountInvalid)
	}

	records, err := e.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}

	out := make([]SessionInfo, 0, len(records))
	for _, rec := range records {
		out = append(out, SessionInfo{
			RecordID:  rec.ID,
			UserID:    rec.UserID,
			CreatedAt: rec.CreatedAt,
			ExpiresAt: rec.ExpiresAt,
		})
	}
	return out, nil
}

// Health reports backend availability and round-trip latency.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if e == nil || e.store == nil {
		return HealthStatus{}
	}

	latency, err := e.store.Ping(ctx)
	return HealthStatus{
		RedisAvailable: err == nil,
		RedisLatency:   latency,
	}
}
