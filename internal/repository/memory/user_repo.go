// Package memory contains in-process implementations of repository interfaces.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/and161185/calcapi/internal/errs"
	"github.com/and161185/calcapi/internal/model"
)

// UserRepo implements UserRepository over a map guarded by a single mutex.
// Stored users are values, so callers never alias repository state.
type UserRepo struct {
	mu    sync.Mutex
	users map[int64]model.User
}

// NewUserRepo constructs an empty user repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[int64]model.User)}
}

// Create inserts u if no user with the same ID exists.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; ok {
		return model.User{}, fmt.Errorf("user %d: %w", u.ID, errs.ErrAlreadyExists)
	}
	r.users[u.ID] = u
	return u, nil
}

// Get returns the user stored under id.
func (r *UserRepo) Get(ctx context.Context, id int64) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("user %d: %w", id, errs.ErrNotFound)
	}
	return u, nil
}

// Update sets the name of the user stored under id. The ID is never changed.
func (r *UserRepo) Update(ctx context.Context, id int64, name string) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("user %d: %w", id, errs.ErrNotFound)
	}
	u.Name = name
	r.users[id] = u
	return u, nil
}

// Delete removes the user stored under id.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user %d: %w", id, errs.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

// Len returns the number of stored users.
func (r *UserRepo) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}
