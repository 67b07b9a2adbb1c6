package db

import (
	"context"
	"database/sql"
	"fmt"
)

// KVRow is a single row of the kv_store table. Timestamps are unix nanoseconds.
type KVRow struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}

const kvGet = `SELECT key, value, expires_at, created_at, updated_at FROM kv_store WHERE key = ?`

// KVGet returns the row for key, or an error wrapping sql.ErrNoRows.
func (db *DB) KVGet(ctx context.Context, key string) (KVRow, error) {
	var r KVRow
	err := db.conn.QueryRowContext(ctx, kvGet, key).
		Scan(&r.Key, &r.Value, &r.ExpiresAt, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const kvSet = `
INSERT INTO kv_store (key, value, expires_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
    value      = excluded.value,
    expires_at = excluded.expires_at,
    updated_at = excluded.updated_at`

// KVSet inserts or replaces a row. The original created_at is kept on update.
func (db *DB) KVSet(ctx context.Context, r KVRow) error {
	_, err := db.conn.ExecContext(ctx, kvSet, r.Key, r.Value, r.ExpiresAt, r.CreatedAt, r.UpdatedAt)
	return err
}

// KVDelete removes key. Missing keys are not an error.
func (db *DB) KVDelete(ctx context.Context, key string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key)
	return err
}

// KVListKeys returns keys that have not expired at now, sorted.
func (db *DB) KVListKeys(ctx context.Context, now int64) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT key FROM kv_store WHERE expires_at IS NULL OR expires_at > ? ORDER BY key`, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// KVSweepExpired deletes rows that expired before now and returns how many
// were removed.
func (db *DB) KVSweepExpired(ctx context.Context, now int64) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
