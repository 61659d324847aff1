package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// OpenDatabase opens the local SQLite store and applies the schema.
func OpenDatabase(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL`,
		`CREATE TABLE IF NOT EXISTS papers (
			id          TEXT PRIMARY KEY,
			file_path   TEXT UNIQUE NOT NULL,
			title       TEXT NOT NULL DEFAULT '',
			page_count  INTEGER NOT NULL DEFAULT 0,
			last_opened TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS highlights (
			id            TEXT PRIMARY KEY,
			paper_path    TEXT NOT NULL,
			content_text  TEXT NOT NULL DEFAULT '',
			position_json TEXT NOT NULL,
			color         TEXT NOT NULL DEFAULT '#FFFF00',
			comment       TEXT NOT NULL DEFAULT '',
			created_at    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_highlights_paper ON highlights(paper_path)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id         TEXT PRIMARY KEY,
			paper_path TEXT NOT NULL,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			model      TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_paper ON chat_messages(paper_path)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:min(len(s), 40)], err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
