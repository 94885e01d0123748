// Package directory wraps the identity provider that owns user accounts.
// The rest of the service never talks to the provider directly; it consumes
// this interface and the canonical user identifiers it returns.
package directory

import (
	"context"
	"errors"
)

// ErrUserNotFound reports that the identity provider has no record of the
// requested user. It is the only lookup failure that should cause a stored
// membership to be cleaned up.
var ErrUserNotFound = errors.New("user does not exist in the identity provider")

// Directory is the identity-provider surface the service needs: resolving a
// user ID to a display email, and provisioning accounts for invited users.
type Directory interface {
	// GetUserEmail returns the email attribute of the user, or "" if the
	// account has none. Returns ErrUserNotFound for unknown users.
	GetUserEmail(ctx context.Context, userID string) (string, error)

	// CreateUser provisions an account for email with the given temporary
	// password and returns the provider's canonical user identifier.
	CreateUser(ctx context.Context, email, temporaryPassword string) (string, error)
}
