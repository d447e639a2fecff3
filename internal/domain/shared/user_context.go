package shared

import (
	"errors"

	"github.com/google/uuid"
)

// ErrMissingUser indicates an operation attempted without an authenticated user.
var ErrMissingUser = errors.New("user context is required")

// UserContext identifies the authenticated session a core operation runs
// under. It is threaded explicitly through every service and repository call
// instead of being read from an ambient global, because the user id selects
// the user-scoped physical copy of every entity record.
type UserContext struct {
	UserID uuid.UUID
}

// NewUserContext builds a context for the given user id.
func NewUserContext(userID uuid.UUID) UserContext {
	return UserContext{UserID: userID}
}

// Validate reports whether the context carries a usable user id.
func (u UserContext) Validate() error {
	if u.UserID == uuid.Nil {
		return ErrMissingUser
	}
	return nil
}
