package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-school-session/auth"
	"github.com/jrsteele09/go-school-session/identity"
	"github.com/jrsteele09/go-school-session/internal/errors"
	"github.com/jrsteele09/go-school-session/internal/testutil"
	"github.com/jrsteele09/go-school-session/internal/utils"
	"github.com/jrsteele09/go-school-session/routing"
	"github.com/jrsteele09/go-school-session/signup"
	"github.com/jrsteele09/go-school-session/token"
	"github.com/stretchr/testify/require"
)

// testClock is a settable clock for WithNowTime.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing stored", func(t *testing.T) {
		f := setupTestFixture(t)
		snap := f.controller.Restore(ctx)
		require.Equal(t, auth.StateAnonymous, snap.State)
		require.Empty(t, f.transitions.pairs())
	})

	t.Run("unexpired session restores without network", func(t *testing.T) {
		f := setupTestFixture(t)
		stored := authenticated(testutil.TeacherProfile())
		require.NoError(t, f.store.Save(ctx, stored.Credentials, stored.Profile))

		snap := f.controller.Restore(ctx)
		require.Equal(t, auth.StateAuthenticated, snap.State)
		require.Equal(t, &stored.Profile, snap.Profile)
		require.Equal(t, routing.TeacherDashboardRoute, snap.NextRoute)
		require.Zero(t, f.gateway.ProfileCalls())
		require.Zero(t, f.gateway.ExchangeCalls())
	})

	for name, access := range map[string]string{
		"expired credential":   testutil.ExpiredCredential("s1"),
		"malformed credential": "abc.%%%.def",
	} {
		t.Run(name, func(t *testing.T) {
			f := setupTestFixture(t)
			require.NoError(t, f.store.Backend.Apply(ctx, map[string]string{
				"access_token":  access,
				"refresh_token": "r1",
				"profile":       `{"userName":"김학생","userType":"STUDENT"}`,
			}, nil))

			snap := f.controller.Restore(ctx)
			require.Equal(t, auth.StateAnonymous, snap.State)
			require.Nil(t, snap.Profile)
			require.Equal(t, [][2]auth.State{
				{auth.StateAnonymous, auth.StateExpired},
				{auth.StateExpired, auth.StateAnonymous},
			}, f.transitions.pairs())
			f.requirePersisted(t, nil)
		})
	}

	t.Run("credential without profile refetches", func(t *testing.T) {
		f := setupTestFixture(t)
		access := testutil.ValidCredential("s1")
		require.NoError(t, f.store.Backend.Apply(ctx, map[string]string{"access_token": access}, nil))
		f.gateway.OnProfile(access, testutil.StudentProfile())

		snap := f.controller.Restore(ctx)
		require.Equal(t, auth.StateAuthenticated, snap.State)
		require.Equal(t, 1, f.gateway.ProfileCalls())
		require.Equal(t, [][2]auth.State{
			{auth.StateAnonymous, auth.StateAuthenticating},
			{auth.StateAuthenticating, auth.StateAuthenticated},
		}, f.transitions.pairs())
		f.requirePersisted(t, &identity.Authenticated{
			Credentials: token.Credentials{Access: access},
			Profile:     testutil.StudentProfile(),
		})
	})

	t.Run("credential without profile that the backend rejects", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.Backend.Apply(ctx, map[string]string{"access_token": testutil.ValidCredential("s1")}, nil))

		snap := f.controller.Restore(ctx)
		require.Equal(t, auth.StateAnonymous, snap.State)
		require.Equal(t, [][2]auth.State{
			{auth.StateAnonymous, auth.StateAuthenticating},
			{auth.StateAuthenticating, auth.StateExpired},
			{auth.StateExpired, auth.StateAnonymous},
		}, f.transitions.pairs())
		f.requirePersisted(t, nil)
	})

	t.Run("corrupt store is cleared", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.Backend.Apply(ctx, map[string]string{
			"access_token": testutil.ValidCredential("s1"),
			"profile":      "{broken",
		}, nil))

		snap := f.controller.Restore(ctx)
		require.Equal(t, auth.StateAnonymous, snap.State)
		f.requirePersisted(t, nil)
	})
}

func TestRevalidate(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Now()}
	f := setupTestFixture(t, auth.WithNowTime(clock.Now))

	creds := token.Credentials{Access: testutil.Credential("s1", clock.Now().Add(10*time.Minute))}
	f.gateway.OnExchange("code-1", identity.Authenticated{Credentials: creds, Profile: testutil.StudentProfile()})
	f.controller.ExchangeCode(ctx, "code-1")

	require.Equal(t, auth.StateAuthenticated, f.controller.Revalidate(ctx).State)

	clock.Advance(10 * time.Minute)
	_, ok := f.controller.AccessCredential()
	require.False(t, ok, "expiry is exclusive of the exp instant")

	snap := f.controller.Revalidate(ctx)
	require.Equal(t, auth.StateAnonymous, snap.State)
	require.Equal(t, routing.LoginRoute, snap.NextRoute)
	f.requirePersisted(t, nil)
}

func studentDraft() signup.StudentDraft {
	return signup.StudentDraft{
		DisplayName: "김학생", GradeLevel: "2", ClassSection: "3", RollNumber: "12", Age: "15",
		Gender: "FEMALE", BirthDate: "2010-04-01", Contact: "010", GuardianContact: "011", Address: "서울",
	}
}

func pendingSignup(t *testing.T, f *testFixture) {
	t.Helper()
	f.gateway.OnExchange("code-new", identity.NeedsSignup{PendingIdentityToken: "tok123"})
	f.controller.ExchangeCode(context.Background(), "code-new")
	require.Equal(t, auth.StateNeedsSignup, f.controller.Snapshot().State)
}

func TestSubmitSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing pending", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.controller.SubmitSignup(ctx, studentDraft())
		require.ErrorIs(t, err, errors.ErrNoPendingSignup)
		require.Zero(t, f.gateway.EnrollCalls())
	})

	t.Run("invalid draft leaves state untouched", func(t *testing.T) {
		f := setupTestFixture(t)
		pendingSignup(t, f)
		before := f.transitions.pairs()

		d := studentDraft()
		d.Age = "열다섯"
		out, err := f.controller.SubmitSignup(ctx, d)
		require.ErrorIs(t, err, signup.ErrInvalidDraft)
		require.Nil(t, out)
		require.Zero(t, f.gateway.EnrollCalls())
		require.Equal(t, auth.StateNeedsSignup, f.controller.Snapshot().State)
		require.Equal(t, before, f.transitions.pairs())

		_, err = f.controller.SubmitSignup(ctx, nil)
		require.ErrorIs(t, err, signup.ErrInvalidDraft)
	})

	t.Run("success threads the identity token", func(t *testing.T) {
		f := setupTestFixture(t)
		pendingSignup(t, f)
		want := authenticated(testutil.StudentProfile())
		f.gateway.OnEnroll(want)

		out, err := f.controller.SubmitSignup(ctx, studentDraft())
		require.NoError(t, err)
		require.Equal(t, want, out)
		require.Equal(t, "tok123", f.gateway.LastIdentityToken())

		snap := f.controller.Snapshot()
		require.Equal(t, auth.StateAuthenticated, snap.State)
		require.Equal(t, routing.StudentDashboardRoute, snap.NextRoute)
		f.requirePersisted(t, &want)
	})

	t.Run("failure discards the pending signup", func(t *testing.T) {
		f := setupTestFixture(t)
		pendingSignup(t, f)
		f.gateway.OnEnroll(identity.Failed{Reason: "이미 가입된 사용자입니다."})

		out, err := f.controller.SubmitSignup(ctx, studentDraft())
		require.NoError(t, err)
		require.Equal(t, identity.Failed{Reason: "이미 가입된 사용자입니다."}, out)
		require.Equal(t, auth.StateAnonymous, f.controller.Snapshot().State)
		f.requirePersisted(t, nil)

		_, err = f.controller.SubmitSignup(ctx, studentDraft())
		require.ErrorIs(t, err, errors.ErrNoPendingSignup)
	})
}

func TestSubmitSignup_SubmitsOnce(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	pendingSignup(t, f)
	want := authenticated(testutil.StudentProfile())
	f.gateway.OnEnroll(want)
	entered, release := f.gateway.Hold()
	defer release()

	var first identity.Outcome
	var firstErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		first, firstErr = f.controller.SubmitSignup(ctx, studentDraft())
	}()
	<-entered

	for i := 0; i < 3; i++ {
		out, err := f.controller.SubmitSignup(ctx, studentDraft())
		require.ErrorIs(t, err, errors.ErrNoPendingSignup)
		require.Nil(t, out)
	}
	release()

	<-done
	require.NoError(t, firstErr)
	require.Equal(t, want, first)
	require.Equal(t, 1, f.gateway.EnrollCalls())
	require.Equal(t, 1, f.store.Saves())
	require.Equal(t, auth.StateAuthenticated, f.controller.Snapshot().State)
}

func TestCancelSignup(t *testing.T) {
	f := setupTestFixture(t)
	require.ErrorIs(t, f.controller.CancelSignup(), errors.ErrNoPendingSignup)

	pendingSignup(t, f)
	require.NoError(t, f.controller.CancelSignup())
	require.Equal(t, auth.StateAnonymous, f.controller.Snapshot().State)

	_, err := f.controller.SubmitSignup(context.Background(), studentDraft())
	require.ErrorIs(t, err, errors.ErrNoPendingSignup)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.gateway.OnExchange("code-1", authenticated(testutil.ParentProfile()))
	f.controller.ExchangeCode(ctx, "code-1")

	require.NoError(t, f.controller.Logout(ctx))

	snap := f.controller.Snapshot()
	require.Equal(t, auth.StateAnonymous, snap.State)
	require.Nil(t, snap.Profile)
	_, ok := f.controller.AccessCredential()
	require.False(t, ok)
	f.requirePersisted(t, nil)

	stored, err := f.store.Backend.GetMany(ctx, f.store.Keys())
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestReload(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a session", func(t *testing.T) {
		f := setupTestFixture(t)
		require.ErrorIs(t, f.controller.Reload(ctx), errors.ErrNotAuthenticated)
	})

	t.Run("replaces and persists the profile", func(t *testing.T) {
		f := setupTestFixture(t)
		login := authenticated(testutil.StudentProfile())
		f.gateway.OnExchange("code-1", login)
		f.controller.ExchangeCode(ctx, "code-1")

		moved := testutil.StudentProfile()
		moved.ClassSection = utils.Ptr(5)
		f.gateway.OnProfile(login.Credentials.Access, moved)

		require.NoError(t, f.controller.Reload(ctx))
		require.Equal(t, "2학년 5반 12번", f.controller.Snapshot().RoleInfo)
		f.requirePersisted(t, &identity.Authenticated{Credentials: login.Credentials, Profile: moved})
	})

	t.Run("rejected credential expires the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.gateway.OnExchange("code-1", authenticated(testutil.TeacherProfile()))
		f.controller.ExchangeCode(ctx, "code-1")

		err := f.controller.Reload(ctx)
		require.ErrorIs(t, err, errors.ErrCredentialExpired)
		require.Equal(t, auth.StateAnonymous, f.controller.Snapshot().State)
		f.requirePersisted(t, nil)
	})
}
