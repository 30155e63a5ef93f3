package session_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-school-session/internal/errors"
	"github.com/jrsteele09/go-school-session/internal/testutil"
	"github.com/jrsteele09/go-school-session/profile"
	"github.com/jrsteele09/go-school-session/session"
	"github.com/jrsteele09/go-school-session/token"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the shared Store contract against any backend.
func exerciseStore(t *testing.T, backend session.Backend) {
	t.Helper()
	ctx := context.Background()
	store := session.NewStore(backend, session.WithKeyPrefix("test:"))

	t.Run("empty load", func(t *testing.T) {
		stored, err := store.Load(ctx)
		require.NoError(t, err)
		require.Nil(t, stored)
	})

	t.Run("save then load round trip", func(t *testing.T) {
		creds := token.Credentials{Access: testutil.ValidCredential("s1"), Refresh: "refresh-1"}
		p := testutil.StudentProfile()
		require.NoError(t, store.Save(ctx, creds, p))

		stored, err := store.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, stored)
		require.Equal(t, creds, stored.Credentials)
		require.Equal(t, &p, stored.Profile)
	})

	t.Run("save without refresh removes the old one", func(t *testing.T) {
		creds := token.Credentials{Access: testutil.ValidCredential("t1")}
		p := testutil.TeacherProfile()
		require.NoError(t, store.Save(ctx, creds, p))

		stored, err := store.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, creds, stored.Credentials)
		require.Empty(t, stored.Credentials.Refresh)
		require.Equal(t, &p, stored.Profile)
		require.Nil(t, stored.Profile.RollNumber)
	})

	t.Run("clear removes every key", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))

		stored, err := store.Load(ctx)
		require.NoError(t, err)
		require.Nil(t, stored)

		left, err := backend.GetMany(ctx, store.Keys())
		require.NoError(t, err)
		require.Empty(t, left)
	})

	t.Run("malformed credential is never persisted", func(t *testing.T) {
		err := store.Save(ctx, token.Credentials{Access: "not-a-jwt"}, testutil.ParentProfile())
		require.ErrorIs(t, err, errors.ErrMalformedCredential)

		left, err := backend.GetMany(ctx, store.Keys())
		require.NoError(t, err)
		require.Empty(t, left)
	})

	t.Run("profile without role is never persisted", func(t *testing.T) {
		err := store.Save(ctx, token.Credentials{Access: testutil.ValidCredential("x")}, profile.Profile{DisplayName: "x"})
		require.ErrorIs(t, err, errors.ErrUnknownRole)
	})
}

func TestStore_MemoryBackend(t *testing.T) {
	exerciseStore(t, session.NewMemoryBackend())
}

func TestStore_CredentialWithoutProfile(t *testing.T) {
	ctx := context.Background()
	backend := session.NewMemoryBackend()
	store := session.NewStore(backend)

	access := testutil.ValidCredential("s1")
	require.NoError(t, backend.Apply(ctx, map[string]string{"access_token": access}, nil))

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, access, stored.Credentials.Access)
	require.Nil(t, stored.Profile)
}

func TestStore_ProfileWithoutCredentialLoadsNothing(t *testing.T) {
	ctx := context.Background()
	backend := session.NewMemoryBackend()
	store := session.NewStore(backend)

	require.NoError(t, backend.Apply(ctx, map[string]string{"profile": `{"userName":"A","userType":"STUDENT"}`}, nil))

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestStore_CorruptProfile(t *testing.T) {
	ctx := context.Background()
	backend := session.NewMemoryBackend()
	store := session.NewStore(backend)

	require.NoError(t, backend.Apply(ctx, map[string]string{
		"access_token": testutil.ValidCredential("s1"),
		"profile":      "{not json",
	}, nil))
	_, err := store.Load(ctx)
	require.ErrorIs(t, err, errors.ErrCorruptSession)

	require.NoError(t, backend.Apply(ctx, map[string]string{"profile": `{"userName":"A","userType":"ADMIN"}`}, nil))
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, errors.ErrCorruptSession)

	require.NoError(t, store.Clear(ctx))
	require.Zero(t, backend.Len())
}
