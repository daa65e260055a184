// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/calcapi/internal/model"
)

// UserRepository provides existence-checked CRUD access for users.
type UserRepository interface {
	// Create inserts a new user; errs.ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, u model.User) (model.User, error)
	// Get loads a user by ID; errs.ErrNotFound if absent.
	Get(ctx context.Context, id int64) (model.User, error)
	// Update replaces the name of an existing user; errs.ErrNotFound if absent.
	Update(ctx context.Context, id int64, name string) (model.User, error)
	// Delete removes an existing user; errs.ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
	// Len reports the number of stored users.
	Len(ctx context.Context) (int, error)
}
