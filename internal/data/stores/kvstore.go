package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goccy/go-json"

	"github.com/hay-kot/kpi/internal/core/kv"
	"github.com/hay-kot/kpi/internal/data/db"
)

// KVStore implements kv.KV using SQLite.
type KVStore struct {
	db    *db.DB
	clock clock.Clock
}

var _ kv.KV = (*KVStore)(nil)

// NewKVStore creates a new SQLite-backed KV store.
func NewKVStore(db *db.DB) *KVStore {
	return &KVStore{db: db, clock: clock.New()}
}

// WithClock replaces the clock used for TTL bookkeeping.
func (s *KVStore) WithClock(c clock.Clock) *KVStore {
	s.clock = c
	return s
}

// Get retrieves and deserializes a value by key. Missing and expired keys
// return an error wrapping kv.ErrNotFound; expired rows are deleted on the way.
func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	entry, err := s.live(ctx, key)
	if err != nil {
		return fmt.Errorf("kv get %q: %w", key, err)
	}

	if err := json.Unmarshal(entry.Value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}

	return nil
}

// Set stores a value with no expiry.
func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	return s.set(ctx, key, value, sql.NullInt64{})
}

// SetTTL stores a value that expires after the given duration.
func (s *KVStore) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	expiresAt := s.clock.Now().Add(ttl).UnixNano()
	return s.set(ctx, key, value, sql.NullInt64{Int64: expiresAt, Valid: true})
}

// Delete removes a key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.db.KVDelete(ctx, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// Has returns whether a key exists and is not expired.
func (s *KVStore) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.live(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case kv.IsNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("kv has %q: %w", key, err)
	}
}

// ListKeys returns all non-expired keys in sorted order.
func (s *KVStore) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.db.KVListKeys(ctx, s.clock.Now().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	return keys, nil
}

// GetRaw returns the entry with its timestamps, without decoding the value.
func (s *KVStore) GetRaw(ctx context.Context, key string) (kv.Entry, error) {
	entry, err := s.live(ctx, key)
	if err != nil {
		return kv.Entry{}, fmt.Errorf("kv get raw %q: %w", key, err)
	}
	return entry, nil
}

// SweepExpired deletes all entries whose TTL has passed and returns how many
// were removed.
func (s *KVStore) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.db.KVSweepExpired(ctx, s.clock.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("kv sweep expired: %w", err)
	}
	return n, nil
}

// live loads an entry and lazily deletes it when expired.
func (s *KVStore) live(ctx context.Context, key string) (kv.Entry, error) {
	row, err := s.db.KVGet(ctx, key)
	if err != nil {
		return kv.Entry{}, err
	}

	entry := toEntry(row)
	if entry.ExpiredAt(s.clock.Now()) {
		_ = s.db.KVDelete(ctx, key)
		return kv.Entry{}, kv.ErrNotFound
	}
	return entry, nil
}

func toEntry(row db.KVRow) kv.Entry {
	entry := kv.Entry{
		Key:       row.Key,
		Value:     row.Value,
		CreatedAt: time.Unix(0, row.CreatedAt),
		UpdatedAt: time.Unix(0, row.UpdatedAt),
	}
	if row.ExpiresAt.Valid {
		t := time.Unix(0, row.ExpiresAt.Int64)
		entry.ExpiresAt = &t
	}
	return entry
}

func (s *KVStore) set(ctx context.Context, key string, value any, expiresAt sql.NullInt64) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	now := s.clock.Now().UnixNano()
	if err := s.db.KVSet(ctx, db.KVRow{
		Key:       key,
		Value:     data,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}

	return nil
}
