package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/and161185/calcapi/internal/errs"
	"github.com/and161185/calcapi/internal/model"
	"github.com/and161185/calcapi/internal/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

func TestUserRepo_Create_And_Get(t *testing.T) {
	t.Parallel()
	r := NewUserRepo()
	ctx := context.Background()

	u, err := r.Create(ctx, model.User{ID: 1, Name: "Alice"})
	require.NoError(t, err)
	require.Equal(t, model.User{ID: 1, Name: "Alice"}, u)

	got, err := r.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, model.User{ID: 1, Name: "Alice"}, got)
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	t.Parallel()
	r := NewUserRepo()
	ctx := context.Background()

	_, err := r.Create(ctx, model.User{ID: 1, Name: "John Doe"})
	require.NoError(t, err)

	_, err = r.Create(ctx, model.User{ID: 1, Name: "Jane Doe"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	got, err := r.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "John Doe", got.Name)
}

func TestUserRepo_Get_NotFound(t *testing.T) {
	t.Parallel()
	_, err := NewUserRepo().Get(context.Background(), 999)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_Update(t *testing.T) {
	t.Parallel()
	r := NewUserRepo()
	ctx := context.Background()

	_, err := r.Create(ctx, model.User{ID: 1, Name: "Alice"})
	require.NoError(t, err)

	u, err := r.Update(ctx, 1, "Bob")
	require.NoError(t, err)
	require.Equal(t, model.User{ID: 1, Name: "Bob"}, u)

	got, err := r.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, model.User{ID: 1, Name: "Bob"}, got)

	_, err = r.Update(ctx, 42, "X")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_Delete(t *testing.T) {
	t.Parallel()
	r := NewUserRepo()
	ctx := context.Background()

	_, err := r.Create(ctx, model.User{ID: 1, Name: "Alice"})
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, 1))

	_, err = r.Get(ctx, 1)
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.ErrorIs(t, r.Delete(ctx, 1), errs.ErrNotFound)

	n, err := r.Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestUserRepo_RecreateAfterDelete(t *testing.T) {
	t.Parallel()
	r := NewUserRepo()
	ctx := context.Background()

	_, err := r.Create(ctx, model.User{ID: 7, Name: "a"})
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, 7))

	u, err := r.Create(ctx, model.User{ID: 7, Name: "b"})
	require.NoError(t, err)
	require.Equal(t, "b", u.Name)
}

func TestUserRepo_CanceledContext(t *testing.T) {
	t.Parallel()
	r := NewUserRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Create(ctx, model.User{ID: 1, Name: "a"})
	require.ErrorIs(t, err, context.Canceled)
	_, err = r.Get(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	_, err = r.Update(ctx, 1, "b")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, r.Delete(ctx, 1), context.Canceled)
	_, err = r.Len(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestUserRepo_ConcurrentCreate_SingleWinner(t *testing.T) {
	t.Parallel()
	r := NewUserRepo()
	ctx := context.Background()

	const workers = 64
	var created, conflicts atomic.Int32
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := r.Create(ctx, model.User{ID: 1, Name: "racer"})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, errs.ErrAlreadyExists):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, int32(1), created.Load())
	require.Equal(t, int32(workers-1), conflicts.Load())

	n, err := r.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestUserRepo_ConcurrentCreateDelete_Consistent(t *testing.T) {
	t.Parallel()
	r := NewUserRepo()
	ctx := context.Background()

	const rounds = 200
	var creates, deletes atomic.Int32
	var g errgroup.Group
	for i := 0; i < rounds; i++ {
		g.Go(func() error {
			_, err := r.Create(ctx, model.User{ID: 5, Name: "x"})
			if err == nil {
				creates.Add(1)
				return nil
			}
			if errors.Is(err, errs.ErrAlreadyExists) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			err := r.Delete(ctx, 5)
			if err == nil {
				deletes.Add(1)
				return nil
			}
			if errors.Is(err, errs.ErrNotFound) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	// Successful creates and deletes must alternate, so the final state follows from the counts.
	c, d := creates.Load(), deletes.Load()
	n, err := r.Len(ctx)
	require.NoError(t, err)
	switch c - d {
	case 0:
		require.Zero(t, n)
		_, err = r.Get(ctx, 5)
		require.ErrorIs(t, err, errs.ErrNotFound)
	case 1:
		require.Equal(t, 1, n)
	default:
		t.Fatalf("inconsistent history: creates=%d deletes=%d", c, d)
	}
}
