package ports

import (
	"context"
)

// RegisterInput carries a registration request.
type RegisterInput struct {
	APIKey     string
	Username   string
	Password   string
	Email      string
	Hwid       string
	LicenseKey string
	IP         string
	UserAgent  string
}

// LoginInput carries a login request.
type LoginInput struct {
	APIKey    string
	Username  string
	Password  string
	Version   string
	Hwid      string
	IP        string
	UserAgent string
}

// AuthResult is the success payload of an auth operation.
type AuthResult struct {
	Message      string
	UserID       string
	SessionToken string
}

// AuthService is the auth decision engine. Every returned error is a
// *domain.AuthError carrying the caller-facing message.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Verify(ctx context.Context, sessionToken string) (*AuthResult, error)
	// Logout always succeeds.
	Logout(ctx context.Context, sessionToken string) *AuthResult
}
