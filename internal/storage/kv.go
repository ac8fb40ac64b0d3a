package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Entry describes one stored key.
type Entry struct {
	Key       string    `json:"key"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Get retrieves the value stored under key and JSON-unmarshals it into dest.
// Returns ErrNotFound if the key does not exist and an error wrapping
// ErrCorrupt if the stored text does not decode into dest.
func (s *Store) Get(ctx context.Context, key string, dest any) error {
	raw, err := s.raw(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("%w: decoding %q: %v", ErrCorrupt, key, err)
	}
	return nil
}

func (s *Store) raw(ctx context.Context, key string) (string, error) {
	if v, ok := s.hot.Get(key); ok {
		return v.(string), nil
	}

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM local_store WHERE key = ?`, key,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("getting %q: %w", key, err)
	}

	s.hot.Set(key, raw, cache.NoExpiration)
	return raw, nil
}

const upsertSQL = `INSERT INTO local_store (key, value, updated_at)
	 VALUES (?, ?, datetime('now'))
	 ON CONFLICT(key) DO UPDATE SET
		value      = excluded.value,
		updated_at = excluded.updated_at`

// Set JSON-marshals value and stores it under key, overwriting any previous
// value.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling %q: %w", key, err)
	}

	if _, err := s.db.ExecContext(ctx, upsertSQL, key, string(data)); err != nil {
		s.hot.Delete(key)
		return fmt.Errorf("setting %q: %w", key, err)
	}

	s.hot.Set(key, string(data), cache.NoExpiration)
	return nil
}

// kv is one key and its value for setAll.
type kv struct {
	key   string
	value any
}

// setAll stores every pair in one transaction: either all keys change or
// none do.
func (s *Store) setAll(ctx context.Context, pairs ...kv) error {
	encoded := make([]string, len(pairs))
	for i, p := range pairs {
		data, err := json.Marshal(p.value)
		if err != nil {
			return fmt.Errorf("marshaling %q: %w", p.key, err)
		}
		encoded[i] = string(data)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i, p := range pairs {
		if _, err := tx.ExecContext(ctx, upsertSQL, p.key, encoded[i]); err != nil {
			return fmt.Errorf("setting %q: %w", p.key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		for _, p := range pairs {
			s.hot.Delete(p.key)
		}
		return fmt.Errorf("committing: %w", err)
	}

	for i, p := range pairs {
		s.hot.Set(p.key, encoded[i], cache.NoExpiration)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.hot.Delete(key)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

// Entries lists the stored keys starting with prefix, most recently updated
// first. An empty prefix lists everything.
func (s *Store) Entries(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, updated_at FROM local_store
		 WHERE substr(key, 1, length(?)) = ?
		 ORDER BY updated_at DESC, key`,
		prefix, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("listing keys with prefix %q: %w", prefix, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			updatedAt string
		)
		if err := rows.Scan(&e.Key, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning key row: %w", err)
		}
		e.UpdatedAt = parseTime(updatedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating key rows: %w", err)
	}
	return entries, nil
}

// Keys is Entries without the timestamps.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	entries, err := s.Entries(ctx, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys, nil
}
