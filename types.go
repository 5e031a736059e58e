package tenauth

import (
	"context"
	"strings"
)

// Role is the closed set of roles recognized by the role gate.
//
// Role instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Role = string

const (
	// RoleCustomer is an exported constant or variable used by the authentication core.
	RoleCustomer Role = "customer"
	// RoleManager is an exported constant or variable used by the authentication core.
	RoleManager Role = "manager"
	// RoleAdmin is an exported constant or variable used by the authentication core.
	RoleAdmin Role = "admin"
)

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Identity is the canonical claim set embedded in both token kinds: subject
// (string-encoded user id), role, optional tenant reference, and display
// attributes carried by the access token for convenience. All endpoints use
// this one shape; richer and poorer handlers read the same struct with
// optional fields left empty.
//
// Identity instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Identity struct {
	Subject   string
	Role      string
	TenantID  string
	Email     string
	FirstName string
	LastName  string
}

// TokenPair is the issued credential pair: an asymmetric access token and a
// symmetric refresh token whose jti references a live refresh record.
//
// TokenPair instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenPair struct {
	AccessToken  string
	RefreshToken string

	// RefreshRecordID is the id of the refresh record backing RefreshToken.
	RefreshRecordID int64
}

// UserRecord is the account record returned by [UserProvider]. The password
// hash never leaves the auth core.
//
// UserRecord instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type UserRecord struct {
	UserID       string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
	TenantID     string
}

// Identity derives the claim set for a user record.
func (u UserRecord) Identity() Identity {
	return Identity{
		Subject:   u.UserID,
		Role:      u.Role,
		TenantID:  u.TenantID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// CreateUserInput is the input for [UserProvider.CreateUser]. PasswordHash is
// already hashed by the engine.
//
// CreateUserInput instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CreateUserInput struct {
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
	TenantID     string
}

// UserProvider is the interface callers implement to integrate tenauth with
// their user database. Tenant and user CRUD stay on the caller's side; the
// engine only needs credential lookup and account creation.
type UserProvider interface {
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
}

// RegisterRequest is the input for [Engine.Register]. Role defaults to
// [Config.Account.DefaultRole] when empty; TenantID is optional.
//
// RegisterRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegisterRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
	TenantID  string
}

func (r *RegisterRequest) normalize(defaultRole string) {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.Password = strings.TrimSpace(r.Password)
	if r.Role == "" {
		if defaultRole == "" {
			defaultRole = RoleCustomer
		}
		r.Role = defaultRole
	}
}

// RegisterResult is returned by [Engine.Register]. It includes the new user
// id and the auto-issued credential pair.
//
// RegisterResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegisterResult struct {
	UserID string
	Pair   TokenPair
}
