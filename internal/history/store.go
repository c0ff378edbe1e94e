package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	transcript TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	keyPoints TEXT NOT NULL DEFAULT '[]',
	audioBytes INTEGER NOT NULL DEFAULT 0,
	createdAt REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(createdAt);
`

// Store provides read/write access to the history database.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "hyprscribe", "history.sqlite")
}

// Open opens (creating if needed) the database at path. ":memory:" is
// accepted for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if path != ":memory:" {
		if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores e, filling in ID and CreatedAt when unset.
func (s *Store) Add(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	keyPoints := e.KeyPoints
	if keyPoints == nil {
		keyPoints = []string{}
	}
	kp, err := json.Marshal(keyPoints)
	if err != nil {
		return fmt.Errorf("marshal key points: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (id, source, title, url, transcript, summary, keyPoints, audioBytes, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Source, e.Title, e.URL, e.Transcript, e.Summary, string(kp), e.AudioBytes, unixFromTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, title, url, transcript, summary, keyPoints, audioBytes, createdAt
		FROM entries
		ORDER BY createdAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Get returns the entry with the given ID, or an ID prefix of at least 4
// characters. Nil when nothing matches.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	if len(id) < 4 {
		return nil, fmt.Errorf("id %q too short", id)
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, title, url, transcript, summary, keyPoints, audioBytes, createdAt
		FROM entries
		WHERE id = ? OR substr(id, 1, length(?)) = ?
		ORDER BY createdAt DESC
		LIMIT 1
	`, id, id, id)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var keyPoints string
	var createdAt float64
	if err := row.Scan(&e.ID, &e.Source, &e.Title, &e.URL, &e.Transcript, &e.Summary,
		&keyPoints, &e.AudioBytes, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	if err := json.Unmarshal([]byte(keyPoints), &e.KeyPoints); err != nil {
		return nil, fmt.Errorf("decode key points: %w", err)
	}
	e.CreatedAt = timeFromUnix(createdAt)
	return &e, nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
