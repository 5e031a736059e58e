package refresh

import "time"

// Record is one outstanding refresh token: created at issuance, read once to
// confirm liveness during a later rotation or logout, deleted exactly once
// when consumed or invalidated.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	ID        int64
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
