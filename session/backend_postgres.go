package session

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the subset of a Postgres pool the backend needs.
// It is implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Close()
}

var _ Backend = (*PostgresBackend)(nil)

// PostgresBackend keeps the session in a small key-value table. Apply runs
// in a single transaction.
type PostgresBackend struct {
	pool PgxPool
}

const (
	createSessionTableSQL = `
CREATE TABLE IF NOT EXISTS session_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectSessionSQL = `SELECT key, value FROM session_kv WHERE key = ANY($1)`
	upsertSessionSQL = `
INSERT INTO session_kv (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	deleteSessionSQL = `DELETE FROM session_kv WHERE key = ANY($1)`
)

func NewPostgresBackend(pool PgxPool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

// OpenPostgres connects to dsn and makes sure the session table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool new: %w", err)
	}
	b := NewPostgresBackend(pool)
	if err := b.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.pool.Exec(ctx, createSessionTableSQL); err != nil {
		return fmt.Errorf("create session table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Close() {
	b.pool.Close()
}

func (b *PostgresBackend) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	rows, err := b.pool.Query(ctx, selectSessionSQL, keys)
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	defer rows.Close()

	found := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		found[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session: %w", err)
	}
	return found, nil
}

func (b *PostgresBackend) Apply(ctx context.Context, set map[string]string, del []string) error {
	tx, err := b.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := applyInTx(ctx, tx, set, del); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func applyInTx(ctx context.Context, tx pgx.Tx, set map[string]string, del []string) error {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := tx.Exec(ctx, upsertSessionSQL, k, set[k]); err != nil {
			return fmt.Errorf("upsert %s: %w", k, err)
		}
	}
	if len(del) > 0 {
		if _, err := tx.Exec(ctx, deleteSessionSQL, del); err != nil {
			return fmt.Errorf("delete session keys: %w", err)
		}
	}
	return nil
}
