// Package guard resolves the authenticated caller to a user record and
// checks role membership before any handler logic runs. Every handler goes
// through Require rather than repeating the lookup-and-check inline.
package guard

import (
	"context"
	"errors"

	"github.com/parkrow/propertyops/internal/db"
	"github.com/parkrow/propertyops/internal/models"
)

var (
	// ErrUnauthorized means no resolvable caller identity is present.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller resolved but lacks a required role.
	ErrForbidden = errors.New("forbidden")
)

// Require resolves the caller's user record from their token claims and
// verifies the user holds one of the allowed roles. An empty allowed set
// admits any authenticated, active user.
func Require(ctx context.Context, users db.UserCollection, claims *models.Claims, allowed ...models.Role) (*models.User, error) {
	if claims == nil || claims.UserID == "" {
		return nil, ErrUnauthorized
	}

	user, err := users.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrForbidden
	}

	if len(allowed) == 0 {
		return user, nil
	}
	for _, role := range allowed {
		if user.Role == role {
			return user, nil
		}
	}
	return nil, ErrForbidden
}
