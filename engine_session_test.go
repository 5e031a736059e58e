package tenauth

import (
	"context"
	"errors"
	"testing"
)

func issuePair(t *testing.T, engine *Engine) TokenPair {
	t.Helper()

	pair, err := engine.Issue(context.Background(), Identity{
		Subject:  "u1",
		Role:     RoleCustomer,
		TenantID: "1",
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	return pair
}

func TestFreshRefreshTokenPassesCheckLive(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	pair := issuePair(t, engine)

	identity, recordID, err := engine.CheckLive(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("check live failed: %v", err)
	}
	if identity.Subject != "u1" {
		t.Fatalf("expected subject u1, got %q", identity.Subject)
	}
	if recordID != pair.RefreshRecordID {
		t.Fatalf("expected record %d, got %d", pair.RefreshRecordID, recordID)
	}
}

func TestCheckLiveAfterLogoutIsRevoked(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	pair := issuePair(t, engine)

	if err := engine.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if _, _, err := engine.CheckLive(context.Background(), pair.RefreshToken); !errors.Is(err, ErrRevoked) {
		t.Fatalf("expected ErrRevoked, got %v", err)
	}
}

func TestRefreshRotatesTheRecord(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	old := issuePair(t, engine)

	rotated, err := engine.Refresh(context.Background(), old.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if rotated.RefreshRecordID == old.RefreshRecordID {
		t.Fatal("expected rotation to mint a new record id")
	}

	// New token is live, consumed one is revoked.
	if _, _, err := engine.CheckLive(context.Background(), rotated.RefreshToken); err != nil {
		t.Fatalf("rotated token should be live: %v", err)
	}
	if _, _, err := engine.CheckLive(context.Background(), old.RefreshToken); !errors.Is(err, ErrRevoked) {
		t.Fatalf("expected consumed token to be revoked, got %v", err)
	}
}

func TestRefreshWithConsumedTokenIsRevoked(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	old := issuePair(t, engine)
	if _, err := engine.Refresh(context.Background(), old.RefreshToken); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	// Rotation and logout produce the identical failure.
	if _, err := engine.Refresh(context.Background(), old.RefreshToken); !errors.Is(err, ErrRevoked) {
		t.Fatalf("expected ErrRevoked on replay, got %v", err)
	}
}

func TestRefreshWithGarbageTokenIsMalformed(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	if _, err := engine.Refresh(context.Background(), "not-a-token"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestRefreshWithAccessTokenFails(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	pair := issuePair(t, engine)

	// RS256 token presented on the HS256 verification path.
	if _, err := engine.Refresh(context.Background(), pair.AccessToken); err == nil {
		t.Fatal("expected access token to fail refresh")
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	pair := issuePair(t, engine)

	if err := engine.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("first logout failed: %v", err)
	}
	// Record already gone; a second logout with a still-valid signature is a
	// no-op, not an error.
	if err := engine.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}
}

func TestLogoutRequiresValidSignature(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	if err := engine.Logout(context.Background(), "garbage"); err == nil {
		t.Fatal("expected logout with garbage token to fail")
	}
}

func TestLogoutAllTerminatesEverySession(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	pairs := []TokenPair{
		issuePair(t, engine),
		issuePair(t, engine),
		issuePair(t, engine),
	}

	if err := engine.LogoutAll(context.Background(), "u1"); err != nil {
		t.Fatalf("logout all failed: %v", err)
	}

	for i, pair := range pairs {
		if _, _, err := engine.CheckLive(context.Background(), pair.RefreshToken); !errors.Is(err, ErrRevoked) {
			t.Fatalf("pair %d: expected ErrRevoked, got %v", i, err)
		}
	}

	n, err := engine.ActiveSessionCount(context.Background(), "u1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 live sessions, got %d", n)
	}
}

func TestAccessTokenSurvivesRevocation(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	pair := issuePair(t, engine)
	if err := engine.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	// Access verification never consults the store: the token stays valid
	// until its own expiry.
	if _, err := engine.VerifyAccess(pair.AccessToken); err != nil {
		t.Fatalf("expected access token to verify after logout, got %v", err)
	}
}

func TestStoreOutageSurfacesAsStoreUnavailable(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer rdb.Close()

	engine, err := New().WithConfig(testConfig()).WithRedis(rdb).WithKeys(newTestKeys(t)).Build()
	if err != nil {
		mr.Close()
		t.Fatalf("build failed: %v", err)
	}
	defer engine.Close()

	pair := issuePair(t, engine)
	mr.Close()

	if _, _, err := engine.CheckLive(context.Background(), pair.RefreshToken); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := engine.Issue(context.Background(), Identity{Subject: "u1", Role: RoleCustomer}); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on issue, got %v", err)
	}
}
