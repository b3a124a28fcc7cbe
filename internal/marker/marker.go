// Package marker is the engine's small local flag store: named
// timestamps that must survive restarts, like the last expiry-sweep
// run. It is deliberately not the shared listing store; markers are
// per-installation state.
package marker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	pool *sql.DB
}

func Open(path string) (*DB, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(`
CREATE TABLE IF NOT EXISTS markers (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return &DB{pool: pool}, nil
}

func (d *DB) Close() error {
	if d == nil || d.pool == nil {
		return nil
	}
	return d.pool.Close()
}

// Get returns the stored instant for key, or a zero time when the key
// was never set.
func (d *DB) Get(ctx context.Context, key string) (time.Time, error) {
	var raw string
	err := d.pool.QueryRowContext(ctx, `SELECT value FROM markers WHERE key = ?;`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("marker get %q: %w", key, err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		// an unreadable marker behaves like an absent one
		return time.Time{}, nil
	}
	return t, nil
}

func (d *DB) Set(ctx context.Context, key string, t time.Time) error {
	_, err := d.pool.ExecContext(ctx, `
INSERT INTO markers(key, value) VALUES(?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value;`,
		key, t.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("marker set %q: %w", key, err)
	}
	return nil
}

// SweepMarker adapts one named key to the sweeper's Marker interface.
type SweepMarker struct {
	DB  *DB
	Key string
}

func (m SweepMarker) LastRun(ctx context.Context) (time.Time, error) {
	return m.DB.Get(ctx, m.Key)
}

func (m SweepMarker) SetLastRun(ctx context.Context, t time.Time) error {
	return m.DB.Set(ctx, m.Key, t)
}
