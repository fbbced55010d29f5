// Package users declares the repository contract for identity records.
package users

import (
	"context"

	"github.com/chatline/authd/internal/models"
)

// Repository defines the narrow credential-store boundary the auth service
// consumes.
type Repository interface {
	// Create inserts a new user and returns it with storage-assigned fields
	// populated. A uniqueness violation (email or username) comes back as
	// common.ErrDuplicateIdentity.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByEmail returns the user with the given email, or
	// common.ErrorNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns the user with the given id, or common.ErrorNotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)
}
