// Package kv defines the small persistent store kpi keeps next to its
// database: the selected theme, cached identities, and anything else that
// must outlive a process but not a reinstall.
package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is wrapped by Get and GetRaw when a key is missing or its TTL
// has passed. It is sql.ErrNoRows so SQLite-backed stores can pass the
// driver error through unchanged.
var ErrNotFound = sql.ErrNoRows

// IsNotFound reports whether err means the key is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Entry is a stored value with its bookkeeping. ExpiresAt is nil for values
// written without a TTL.
type Entry struct {
	Key       string
	Value     json.RawMessage
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExpiredAt reports whether the entry's TTL has passed at now.
func (e Entry) ExpiredAt(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}

// Reader is the read half of KV. Expired keys are invisible to every method.
type Reader interface {
	Get(ctx context.Context, key string, dest any) error
	GetRaw(ctx context.Context, key string) (Entry, error)
	Has(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context) ([]string, error)
}

// Writer is the write half of KV. Values are stored as JSON.
type Writer interface {
	Set(ctx context.Context, key string, value any) error
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type KV interface {
	Reader
	Writer
}
