package loginstate_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-school-session/server/loginstate"
)

func attempt(state string, at time.Time) loginstate.Attempt {
	return loginstate.Attempt{State: state, CreatedAt: at, ExpiresAt: at.Add(10 * time.Minute)}
}

func TestInMemoryRepo(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("state can be taken once", func(t *testing.T) {
		repo := loginstate.NewInMemoryRepo()
		require.NoError(t, repo.Issue(attempt("s1", now)))

		got, err := repo.Take("s1", now.Add(time.Minute))
		require.NoError(t, err)
		require.Equal(t, "s1", got.State)

		_, err = repo.Take("s1", now.Add(time.Minute))
		require.ErrorIs(t, err, loginstate.ErrUnknownState)
	})

	t.Run("expired state", func(t *testing.T) {
		repo := loginstate.NewInMemoryRepo()
		require.NoError(t, repo.Issue(attempt("s1", now)))

		_, err := repo.Take("s1", now.Add(11*time.Minute))
		require.ErrorIs(t, err, loginstate.ErrStateExpired)
		require.Equal(t, 0, repo.Len())
	})

	t.Run("empty state is rejected", func(t *testing.T) {
		repo := loginstate.NewInMemoryRepo()
		require.Error(t, repo.Issue(loginstate.Attempt{}))
	})

	t.Run("capacity evicts the oldest attempt", func(t *testing.T) {
		repo := loginstate.NewInMemoryRepo()
		for i := 0; i < 256; i++ {
			require.NoError(t, repo.Issue(attempt(fmt.Sprintf("s%d", i), now.Add(time.Duration(i)*time.Second))))
		}
		require.NoError(t, repo.Issue(attempt("latest", now.Add(5*time.Minute))))
		require.Equal(t, 256, repo.Len())

		_, err := repo.Take("s0", now.Add(5*time.Minute))
		require.ErrorIs(t, err, loginstate.ErrUnknownState)
		_, err = repo.Take("latest", now.Add(5*time.Minute))
		require.NoError(t, err)
	})
}
