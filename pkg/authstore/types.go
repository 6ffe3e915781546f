package authstore

import "context"

// TokenKey is the session storage key holding the bearer credential.
const TokenKey = "auth-token"

// DefaultLoginRoute is the public entry route logout redirects to.
const DefaultLoginRoute = "/login"

// User is the identity record of an authenticated session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Credentials carries the login form fields. Shape validation belongs to
// the form layer; the store passes both fields through untouched.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is a successful auth service response.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// State is the session state snapshot. Exactly one of the two shapes holds:
// the zero value (Unauthenticated), or a non-nil User with a token and
// Authenticated set (Authenticated).
type State struct {
	User          *User
	Token         string
	Authenticated bool
}

// AuthService is the external collaborator performing credential exchange.
type AuthService interface {
	// Login exchanges credentials for a user and bearer token.
	Login(ctx context.Context, creds Credentials) (LoginResult, error)

	// Logout notifies the service; it always succeeds after a fixed delay.
	Logout(ctx context.Context) error
}

// Navigator performs the forced full-page navigation logout triggers.
type Navigator interface {
	Redirect(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Redirect(path string) { f(path) }
