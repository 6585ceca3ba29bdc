package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const createTable = `CREATE TABLE IF NOT EXISTS catalog_cache (
	key  TEXT PRIMARY KEY,
	ts   INTEGER NOT NULL,
	data BLOB NOT NULL
)`

// SQLiteStore persists entries in a single catalog_cache table.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating when missing) the cache database at path.
// ":memory:" keeps the cache in process.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: migrate %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

func dsn(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)"
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	var (
		ts   int64
		data []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT ts, data FROM catalog_cache WHERE key = ?`, key).Scan(&ts, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{Timestamp: time.Unix(ts, 0), Data: data}, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO catalog_cache (key, ts, data) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET ts = excluded.ts, data = excluded.data`,
		key, entry.Timestamp.Unix(), []byte(entry.Data))
	return err
}

func (s *SQLiteStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM catalog_cache WHERE key IN (`+placeholders+`)`, args...)
	return err
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM catalog_cache`)
	return err
}

// Keys lists stored keys in order.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM catalog_cache ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
