package auth

import "context"

// Identity is the signed-in user as reported by the session provider.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// SessionProvider yields the current user identity. A nil identity with a
// nil error means nobody is signed in.
type SessionProvider interface {
	CurrentUser(ctx context.Context) (*Identity, error)
}

// ContextSession reads the identity placed on the context by Authenticate.
type ContextSession struct{}

// CurrentUser implements SessionProvider.
func (ContextSession) CurrentUser(ctx context.Context) (*Identity, error) {
	claims := ClaimsFromContext(ctx)
	if claims == nil || claims.Subject == "" {
		return nil, nil
	}
	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// StaticSession always reports the same identity. A zero UserID means signed out.
type StaticSession struct {
	Identity Identity
}

// CurrentUser implements SessionProvider.
func (s StaticSession) CurrentUser(context.Context) (*Identity, error) {
	if s.Identity.UserID == "" {
		return nil, nil
	}
	id := s.Identity
	return &id, nil
}
