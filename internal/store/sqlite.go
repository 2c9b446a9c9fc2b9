package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recap/internal/model"
	"recap/internal/util"

	_ "modernc.org/sqlite"
)

const (
	lastDirKey = "last_transcript_dir"

	// Fixed-width so last_used sorts lexically.
	usedLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// SQLiteStore remembers recipient lists and small UI preferences in a local
// SQLite database. Transcripts and summaries are never written here.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at the given path and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS recipient_lists (
	key       TEXT PRIMARY KEY,
	value     TEXT NOT NULL,
	uses      INTEGER NOT NULL DEFAULT 0,
	last_used TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);
`
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RememberRecipients records a recipient list that was just used. Lists that
// normalize to the same key are merged and the latest spelling is kept.
func (s *SQLiteStore) RememberRecipients(ctx context.Context, recipients []string, at time.Time) error {
	key := util.RecipientsKey(recipients)
	if key == "" {
		return nil
	}
	value := joinNonEmpty(recipients)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recipient_lists (key, value, uses, last_used)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value     = excluded.value,
			uses      = recipient_lists.uses + 1,
			last_used = excluded.last_used
	`, key, value, at.UTC().Format(usedLayout))
	return err
}

// RecentRecipients returns up to limit lists, most recently used first.
func (s *SQLiteStore) RecentRecipients(ctx context.Context, limit int) ([]model.RecipientList, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value, uses, last_used FROM recipient_lists ORDER BY last_used DESC, uses DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []model.RecipientList
	for rows.Next() {
		var l model.RecipientList
		if err := rows.Scan(&l.Key, &l.Value, &l.Uses, &l.LastUsedRFC); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (s *SQLiteStore) CountRecipientLists(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipient_lists").Scan(&count)
	return count, err
}

func (s *SQLiteStore) GetLastDir(ctx context.Context) (string, error) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", lastDirKey).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return val, err
}

func (s *SQLiteStore) SetLastDir(ctx context.Context, dir string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, lastDirKey, dir)
	return err
}

func joinNonEmpty(recipients []string) string {
	kept := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			kept = append(kept, r)
		}
	}
	return strings.Join(kept, ", ")
}
