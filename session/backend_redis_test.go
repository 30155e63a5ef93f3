package session_test

import (
	"testing"

	"github.com/jrsteele09/go-school-session/internal/testutil"
	"github.com/jrsteele09/go-school-session/session"
)

func TestStore_RedisBackend(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	exerciseStore(t, session.NewRedisBackend(client))
}
