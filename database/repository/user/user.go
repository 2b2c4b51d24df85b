package userRepo

import (
	"context"

	"qartelbot/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by chat id. Missing users yield database.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// EnsureUser creates a visitor for id unless one exists. created reports an insert.
	EnsureUser(ctx context.Context, id string) (user *models.User, created bool, err error)
	// SetRole changes the role of an existing user.
	SetRole(ctx context.Context, id string, role models.Role) error
	// ListByRoles returns users holding any of roles.
	ListByRoles(ctx context.Context, roles ...models.Role) ([]models.User, error)
}
