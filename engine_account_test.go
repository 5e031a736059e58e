package tenauth

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterCreatesAccountAndAutoLogsIn(t *testing.T) {
	engine, up, done := newTestEngine(t)
	defer done()

	result, err := engine.Register(context.Background(), RegisterRequest{
		FirstName: "  Alice ",
		LastName:  "Doe",
		Email:     " alice@example.com ",
		Password:  "correct-horse",
		TenantID:  "1",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.UserID == "" {
		t.Fatal("expected user id")
	}
	if result.Pair.AccessToken == "" || result.Pair.RefreshToken == "" {
		t.Fatal("expected auto-login pair")
	}

	user, err := up.GetUserByID(context.Background(), result.UserID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected trimmed email, got %q", user.Email)
	}
	if user.Role != RoleCustomer {
		t.Fatalf("expected default role %q, got %q", RoleCustomer, user.Role)
	}
	if user.PasswordHash == "correct-horse" || user.PasswordHash == "" {
		t.Fatal("expected password to be hashed before reaching the provider")
	}

	identity, err := engine.VerifyAccess(result.Pair.AccessToken)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if identity.Subject != result.UserID {
		t.Fatalf("expected subject %q, got %q", result.UserID, identity.Subject)
	}
}

func TestRegisterWithoutAutoLogin(t *testing.T) {
	engine, _, done := newTestEngine(t, func(b *Builder) {
		cfg := testConfig()
		cfg.Account.AutoLogin = false
		b.WithConfig(cfg)
	})
	defer done()

	result, err := engine.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.Pair.AccessToken != "" || result.Pair.RefreshToken != "" {
		t.Fatal("expected no token pair when auto-login is disabled")
	}
}

func TestRegisterAppliesConfiguredDefaultRole(t *testing.T) {
	engine, up, done := newTestEngine(t, func(b *Builder) {
		cfg := testConfig()
		cfg.Account.DefaultRole = RoleManager
		b.WithConfig(cfg)
	})
	defer done()

	result, err := engine.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := up.GetUserByID(context.Background(), result.UserID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if user.Role != RoleManager {
		t.Fatalf("expected configured default role %q, got %q", RoleManager, user.Role)
	}
}

func TestRegisterExplicitRoleOverridesDefault(t *testing.T) {
	engine, up, done := newTestEngine(t, func(b *Builder) {
		cfg := testConfig()
		cfg.Account.DefaultRole = RoleManager
		b.WithConfig(cfg)
	})
	defer done()

	result, err := engine.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     RoleAdmin,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := up.GetUserByID(context.Background(), result.UserID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if user.Role != RoleAdmin {
		t.Fatalf("expected requested role %q, got %q", RoleAdmin, user.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	req := RegisterRequest{Email: "alice@example.com", Password: "correct-horse"}
	if _, err := engine.Register(context.Background(), req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	if _, err := engine.Register(context.Background(), req); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestRegisterRejectsEmptyEmail(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	if _, err := engine.Register(context.Background(), RegisterRequest{Password: "correct-horse"}); !errors.Is(err, ErrAccountInvalid) {
		t.Fatalf("expected ErrAccountInvalid, got %v", err)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	_, err := engine.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     "superuser",
	})
	if !errors.Is(err, ErrRoleInvalid) {
		t.Fatalf("expected ErrRoleInvalid, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	engine, _, done := newTestEngine(t)
	defer done()

	_, err := engine.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "short",
	})
	if !errors.Is(err, ErrAccountInvalid) {
		t.Fatalf("expected ErrAccountInvalid for short password, got %v", err)
	}
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	engine, up, done := newTestEngine(t)
	defer done()

	user := seedUser(t, engine, up, "alice@example.com", "correct-horse")

	pair, err := engine.Login(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	identity, err := engine.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if identity.Subject != user.UserID {
		t.Fatalf("expected subject %q, got %q", user.UserID, identity.Subject)
	}
	if identity.TenantID != user.TenantID {
		t.Fatalf("expected tenant %q, got %q", user.TenantID, identity.TenantID)
	}
}

func TestLoginTrimsEmailWhitespace(t *testing.T) {
	engine, up, done := newTestEngine(t)
	defer done()

	user := seedUser(t, engine, up, "alice@example.com", "correct-horse")

	pair, err := engine.Login(context.Background(), "  alice@example.com ", "correct-horse")
	if err != nil {
		t.Fatalf("login with padded email failed: %v", err)
	}

	identity, err := engine.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if identity.Subject != user.UserID {
		t.Fatalf("expected subject %q, got %q", user.UserID, identity.Subject)
	}
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	engine, up, done := newTestEngine(t)
	defer done()

	seedUser(t, engine, up, "alice@example.com", "correct-horse")

	_, errWrongPassword := engine.Login(context.Background(), "alice@example.com", "wrong-password")
	_, errUnknownEmail := engine.Login(context.Background(), "nobody@example.com", "whatever-pass")

	if !errors.Is(errWrongPassword, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", errWrongPassword)
	}
	if !errors.Is(errUnknownEmail, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", errUnknownEmail)
	}
	if errWrongPassword.Error() != errUnknownEmail.Error() {
		t.Fatal("expected both failures to carry the identical message")
	}
}

func TestLoginFailureCreatesNoRecord(t *testing.T) {
	engine, up, done := newTestEngine(t)
	defer done()

	user := seedUser(t, engine, up, "alice@example.com", "correct-horse")

	if _, err := engine.Login(context.Background(), "alice@example.com", "wrong-password"); err == nil {
		t.Fatal("expected login failure")
	}

	n, err := engine.ActiveSessionCount(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no refresh records after failed login, got %d", n)
	}
}

func TestLoginProviderOutagePropagates(t *testing.T) {
	engine, up, done := newTestEngine(t)
	defer done()

	up.lookupErr = errors.New("database down")

	_, err := engine.Login(context.Background(), "alice@example.com", "correct-horse")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}
