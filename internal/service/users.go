package service

import (
	"context"

	"github.com/and161185/calcapi/internal/model"
	"github.com/and161185/calcapi/internal/repository"
	"github.com/and161185/calcapi/internal/validate"
)

// UserService defines user CRUD with existence-checked semantics.
type UserService interface {
	// Create registers a new user under id.
	Create(ctx context.Context, id int64, name string) (model.User, error)
	// Get returns the user stored under id.
	Get(ctx context.Context, id int64) (model.User, error)
	// Update renames an existing user.
	Update(ctx context.Context, id int64, name string) (model.User, error)
	// Delete removes an existing user.
	Delete(ctx context.Context, id int64) error
	// Count returns the number of stored users.
	Count(ctx context.Context) (int, error)
}

type UserServiceImpl struct {
	repo       repository.UserRepository
	maxNameLen int
}

// NewUserService constructs UserService. A non-positive maxNameLen selects the default limit.
func NewUserService(repo repository.UserRepository, maxNameLen int) *UserServiceImpl {
	if maxNameLen <= 0 {
		maxNameLen = validate.DefaultMaxNameLen
	}
	return &UserServiceImpl{repo: repo, maxNameLen: maxNameLen}
}

// Create validates name and delegates to the repository.
func (s *UserServiceImpl) Create(ctx context.Context, id int64, name string) (model.User, error) {
	name, err := validate.Name(name, s.maxNameLen)
	if err != nil {
		return model.User{}, err
	}
	return s.repo.Create(ctx, model.User{ID: id, Name: name})
}

// Get fetches a single user.
func (s *UserServiceImpl) Get(ctx context.Context, id int64) (model.User, error) {
	return s.repo.Get(ctx, id)
}

// Update validates name before the repository is consulted.
func (s *UserServiceImpl) Update(ctx context.Context, id int64, name string) (model.User, error) {
	name, err := validate.Name(name, s.maxNameLen)
	if err != nil {
		return model.User{}, err
	}
	return s.repo.Update(ctx, id, name)
}

// Delete removes a single user.
func (s *UserServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Count reports the repository size.
func (s *UserServiceImpl) Count(ctx context.Context) (int, error) {
	return s.repo.Len(ctx)
}
