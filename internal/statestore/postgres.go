package statestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the optional Postgres backend, selected when
// STATE_DATABASE_URL is set. All entries for one workflow live under a
// scope (the legacy state-file name), preserving the flat key model.
// Writes go through Put into memory and are flushed by Save, matching the
// file backend's load-fully/rewrite semantics from the caller's view,
// except that Save upserts only dirty keys.
type PGStore struct {
	pool    *pgxpool.Pool
	scope   string
	entries map[string]json.RawMessage
	dirty   map[string]bool
}

// ConnectPG opens the pool and loads every entry in the given scope.
func ConnectPG(ctx context.Context, databaseURL, scope string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to state database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	s := &PGStore{
		pool:    pool,
		scope:   scope,
		entries: make(map[string]json.RawMessage),
		dirty:   make(map[string]bool),
	}
	if err := s.load(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PGStore) load(ctx context.Context) error {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM dedup_state WHERE scope = $1`, s.scope)
	if err != nil {
		return fmt.Errorf("failed to load state for scope %s: %w", s.scope, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value json.RawMessage
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to scan state row: %w", err)
		}
		s.entries[key] = value
	}
	return nil
}

func (s *PGStore) Has(key Key) bool {
	_, ok := s.entries[key.String()]
	return ok
}

func (s *PGStore) Get(key Key) (json.RawMessage, bool) {
	v, ok := s.entries[key.String()]
	return v, ok
}

func (s *PGStore) Put(key Key, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal state entry %s: %w", key.String(), err)
	}
	k := key.String()
	s.entries[k] = raw
	s.dirty[k] = true
	return nil
}

// Save upserts every entry written since the last Save.
func (s *PGStore) Save(ctx context.Context) error {
	for k := range s.dirty {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO dedup_state (scope, key, value, created_at)
			 VALUES ($1, $2, $3, NOW())
			 ON CONFLICT (scope, key) DO UPDATE SET value = $3`,
			s.scope, k, s.entries[k],
		)
		if err != nil {
			return fmt.Errorf("failed to upsert state entry %s: %w", k, err)
		}
	}
	s.dirty = make(map[string]bool)
	return nil
}

// Close releases the pool.
func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
