// Package identity defines the contract this gateway needs from a managed
// identity provider. Any backend exposing these four operations can stand in
// for Cognito.
package identity

import (
	"context"
	"time"
)

// Pool addresses an account pool and the app client allowed to authenticate
// against it.
type Pool struct {
	UserPoolID string
	ClientID   string
}

// UserStatus mirrors the provider-side account state.
type UserStatus string

const (
	StatusConfirmed           UserStatus = "CONFIRMED"
	StatusForceChangePassword UserStatus = "FORCE_CHANGE_PASSWORD"
	StatusUnconfirmed         UserStatus = "UNCONFIRMED"
	StatusUnknown             UserStatus = "UNKNOWN"
)

// User is the account record held by the provider.
type User struct {
	Username  string
	Status    UserStatus
	Enabled   bool
	CreatedAt time.Time
}

// CreateUserInput describes an account to create.
type CreateUserInput struct {
	Username          string
	TemporaryPassword string

	// SuppressNotification stops the provider from sending its welcome message.
	SuppressNotification bool
}

// Tokens are returned verbatim from the provider. They are never decoded here.
type Tokens struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}

// Provider is the identity-provider collaborator.
type Provider interface {
	// GetUser returns the account named username, or an *Error of
	// KindUserNotFound when there is none.
	GetUser(ctx context.Context, pool Pool, username string) (*User, error)

	// CreateUser creates an account holding a temporary credential.
	CreateUser(ctx context.Context, pool Pool, input CreateUserInput) (*User, error)

	// SetPermanentPassword replaces the account credential with a permanent one.
	SetPermanentPassword(ctx context.Context, pool Pool, username, password string) error

	// AdminAuthenticate exchanges username and password for tokens using the
	// server-side admin flow.
	AdminAuthenticate(ctx context.Context, pool Pool, username, password string) (*Tokens, error)
}
