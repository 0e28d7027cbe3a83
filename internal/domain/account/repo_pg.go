package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// pgStorage keeps workspace entries in the portal_session_kv table created by
// migrations/001_portal_sessions.sql.
type pgStorage struct{ db queryable }

func NewPGStorage(pool *pgxpool.Pool) Storage {
	return &pgStorage{db: pool}
}

func (s *pgStorage) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow(ctx,
		`SELECT value FROM portal_session_kv WHERE session_id = $1 AND key = $2`,
		sessionID, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *pgStorage) Set(ctx context.Context, sessionID, key, value string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO portal_session_kv (session_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		sessionID, key, value)
	return err
}

func (s *pgStorage) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`DELETE FROM portal_session_kv WHERE session_id = $1 AND key = ANY($2)`,
		sessionID, keys)
	return err
}
