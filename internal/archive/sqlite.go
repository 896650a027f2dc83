// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "weekly-radar.db"

// SQLiteStore keeps week documents in a single SQLite table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens or creates dataDir/weekly-radar.db and its schema.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS weeks (
		week_key TEXT PRIMARY KEY,
		doc TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// Put upserts the document for key.
func (s *SQLiteStore) Put(ctx context.Context, key string, doc []byte) error {
	query, args, err := sq.Insert("weeks").
		Columns("week_key", "doc", "updated_at").
		Values(key, string(doc), s.now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(week_key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("building upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}

// Get reads the document for key.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args, err := sq.Select("doc").From("weeks").Where(sq.Eq{"week_key": key}).ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("building select: %w", err)
	}
	var doc string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return []byte(doc), true, nil
}

// ListKeys returns every stored key, most recent first.
func (s *SQLiteStore) ListKeys(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("week_key").From("weeks").OrderBy("week_key DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing weeks: %w", err)
	}
	defer rows.Close()

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
