package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Cache tables. Keys are the media id, the lower-cased user name and
// "query:TYPE" for searches.
const (
	TableMedia    = "media"
	TableUsers    = "users"
	TableSearches = "searches"
)

// Store persists raw catalog responses in SQLite
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// OpenStore opens or creates the cache database at path
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS media (
			id INTEGER PRIMARY KEY,
			content TEXT NOT NULL,
			data_timestamp INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			data_timestamp INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS searches (
			search_query TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			data_timestamp INTEGER NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

func keyColumn(table string) (string, error) {
	switch table {
	case TableMedia, TableUsers:
		return "id", nil
	case TableSearches:
		return "search_query", nil
	}
	return "", fmt.Errorf("unknown cache table %q", table)
}

// Get returns the cached content for key and when it was stored. ok is
// false when nothing is cached.
func (s *Store) Get(ctx context.Context, table string, key any) (content []byte, stored time.Time, ok bool, err error) {
	col, err := keyColumn(table)
	if err != nil {
		return nil, time.Time{}, false, err
	}

	var ts int64
	row := s.db.QueryRowContext(ctx, "SELECT content, data_timestamp FROM "+table+" WHERE "+col+" = ?", key)
	if err := row.Scan(&content, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, fmt.Errorf("reading %s cache: %w", table, err)
	}
	return content, time.Unix(ts, 0), true, nil
}

// Put stores content under key, replacing any earlier entry
func (s *Store) Put(ctx context.Context, table string, key any, content []byte) error {
	col, err := keyColumn(table)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO "+table+" ("+col+", content, data_timestamp) VALUES (?, ?, ?)",
		key, string(content), s.now().Unix())
	if err != nil {
		return fmt.Errorf("writing %s cache: %w", table, err)
	}
	return nil
}

// Count returns the number of rows in table
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if _, err := keyColumn(table); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}
