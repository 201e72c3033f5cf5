package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

// UserLookup loads a user by id.
type UserLookup interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

// Authenticator turns an Authorization header value into the user it
// identifies.
type Authenticator struct {
	codec *TokenCodec
	users UserLookup
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(codec *TokenCodec, users UserLookup) *Authenticator {
	return &Authenticator{codec: codec, users: users}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. It returns "" when the scheme is missing.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Authenticate verifies the bearer token in header and loads its user.
// Any failure to prove identity yields model.ErrUnauthenticated; storage
// failures other than a missing user are returned wrapped.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*model.User, error) {
	token := BearerToken(header)
	if token == "" {
		return nil, model.ErrUnauthenticated
	}

	claims, err := a.codec.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUnauthenticated, err)
	}

	user, err := a.users.ByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// RequireAdmin authenticates and then checks the admin role, returning
// model.ErrForbidden for a valid non-admin user.
func (a *Authenticator) RequireAdmin(ctx context.Context, header string) (*model.User, error) {
	user, err := a.Authenticate(ctx, header)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, model.ErrForbidden
	}
	return user, nil
}
