package session_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/jrsteele09/go-school-session/internal/testutil"
	"github.com/jrsteele09/go-school-session/session"
	"github.com/jrsteele09/go-school-session/token"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var (
	upsertPattern = regexp.QuoteMeta("INSERT INTO session_kv (key, value) VALUES ($1, $2)")
	deletePattern = regexp.QuoteMeta("DELETE FROM session_kv WHERE key = ANY($1)")
	selectPattern = regexp.QuoteMeta("SELECT key, value FROM session_kv WHERE key = ANY($1)")
)

func newMockBackend(t *testing.T) (pgxmock.PgxPoolIface, *session.Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, session.NewStore(session.NewPostgresBackend(mock))
}

func TestPostgresBackend_SaveRunsInOneTransaction(t *testing.T) {
	mock, store := newMockBackend(t)
	access := testutil.ValidCredential("s1")
	p := testutil.ParentProfile()

	mock.ExpectBegin()
	// keys are upserted in sorted order
	mock.ExpectExec(upsertPattern).WithArgs("access_token", access).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(upsertPattern).WithArgs("profile", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(deletePattern).WithArgs([]string{"refresh_token"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), token.Credentials{Access: access}, p))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_FailedWriteRollsBack(t *testing.T) {
	mock, store := newMockBackend(t)
	access := testutil.ValidCredential("s1")

	mock.ExpectBegin()
	mock.ExpectExec(upsertPattern).WithArgs("access_token", access).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(upsertPattern).WithArgs("profile", pgxmock.AnyArg()).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	err := store.Save(context.Background(), token.Credentials{Access: access}, testutil.StudentProfile())
	require.ErrorContains(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_Load(t *testing.T) {
	mock, store := newMockBackend(t)
	access := testutil.ValidCredential("t1")

	mock.ExpectQuery(selectPattern).WithArgs(store.Keys()).
		WillReturnRows(mock.NewRows([]string{"key", "value"}).
			AddRow("access_token", access).
			AddRow("refresh_token", "r1").
			AddRow("profile", `{"userId":"teacher-1","userName":"박선생","userType":"TEACHER","grade":2,"classNum":3}`))

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, token.Credentials{Access: access, Refresh: "r1"}, stored.Credentials)
	p := testutil.TeacherProfile()
	require.Equal(t, &p, stored.Profile)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_Clear(t *testing.T) {
	mock, store := newMockBackend(t)

	mock.ExpectBegin()
	mock.ExpectExec(deletePattern).WithArgs(store.Keys()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()

	require.NoError(t, store.Clear(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_EnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS session_kv")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, session.NewPostgresBackend(mock).EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_OpenPostgres(t *testing.T) {
	dsn := testutil.PostgresDSN(t)
	ctx := context.Background()

	// The schema is created on open, and opening again must not fail.
	for i := 0; i < 2; i++ {
		backend, err := session.OpenPostgres(ctx, dsn)
		require.NoError(t, err)
		backend.Close()
	}

	backend, err := session.OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer backend.Close()
	require.NoError(t, session.NewStore(backend, session.WithKeyPrefix("test:")).Clear(ctx))

	exerciseStore(t, backend)
}
