package authware

import (
	"context"
	"errors"

	"github.com/authware/authware/scope"
)

// AuthContext holds the resolved identity and granted scopes after
// successful authentication. It is attached to the request context if
// and only if authentication succeeded; its presence is the sole signal
// downstream code uses to treat a request as authenticated.
type AuthContext struct {
	Identity Identity
	Scopes   scope.Set
}

// HasScope reports whether the authenticated identity was granted sc.
func (a *AuthContext) HasScope(sc scope.Scope) bool {
	return a.Scopes.Contains(sc)
}

// contextKey is an unexported type for context keys to prevent
// collisions with other packages.
type contextKey int

const authContextKey contextKey = iota

// ErrAuthContextNotFound is returned when no AuthContext is present on
// the request context.
var ErrAuthContextNotFound = errors.New("auth context not found in context")

// SetAuthContext stores the AuthContext in ctx. This is a helper for
// transport adapters to attach the result after validation.
func SetAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// GetAuthContext retrieves the AuthContext from ctx. It returns
// ErrAuthContextNotFound when the request was not authenticated.
func GetAuthContext(ctx context.Context) (*AuthContext, error) {
	ac, ok := ctx.Value(authContextKey).(*AuthContext)
	if !ok || ac == nil {
		return nil, ErrAuthContextNotFound
	}
	return ac, nil
}

// MustGetAuthContext retrieves the AuthContext from ctx or panics. Use
// only behind a middleware that requires credentials.
func MustGetAuthContext(ctx context.Context) *AuthContext {
	ac, err := GetAuthContext(ctx)
	if err != nil {
		panic(err)
	}
	return ac
}

// HasAuthContext checks if an AuthContext exists in ctx without
// retrieving it.
func HasAuthContext(ctx context.Context) bool {
	_, err := GetAuthContext(ctx)
	return err == nil
}
