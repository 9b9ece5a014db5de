package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func (st *Storage) CacheClear(ctx context.Context) error {
	_, err := st.db.ExecContext(ctx, `DELETE FROM cache_entries;`)
	if err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// CacheCleanUp deletes all expired entries and returns how many were deleted.
func (st *Storage) CacheCleanUp(ctx context.Context) (int, error) {
	r, err := st.db.ExecContext(
		ctx,
		`DELETE FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at < ?;`,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("cache cleanup: %w", err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache cleanup: %w", err)
	}
	return int(n), nil
}

func (st *Storage) CacheDelete(ctx context.Context, key string) error {
	_, err := st.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?;`, key)
	if err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

func (st *Storage) CacheExists(ctx context.Context, key string) (bool, error) {
	_, err := st.CacheGet(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CacheGet returns the value for a key. Expired entries are reported as [ErrNotFound].
func (st *Storage) CacheGet(ctx context.Context, key string) ([]byte, error) {
	row := st.db.QueryRowContext(
		ctx,
		`SELECT value FROM cache_entries WHERE key = ? AND (expires_at IS NULL OR expires_at >= ?);`,
		key,
		time.Now().UTC(),
	)
	var v []byte
	if err := row.Scan(&v); err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, convertGetError(err))
	}
	return v, nil
}

type CacheSetParams struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time // zero value means never expires
}

func (st *Storage) CacheSet(ctx context.Context, arg CacheSetParams) error {
	var expiresAt sql.NullTime
	if !arg.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: arg.ExpiresAt.UTC(), Valid: true}
	}
	value := arg.Value
	if value == nil {
		value = []byte{}
	}
	_, err := st.db.ExecContext(
		ctx,
		`INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at;`,
		arg.Key,
		value,
		expiresAt,
	)
	if err != nil {
		return fmt.Errorf("cache set %s: %w", arg.Key, err)
	}
	return nil
}
