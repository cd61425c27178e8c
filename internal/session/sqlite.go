package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLitePersister is the single-file durable backend, for deployments without
// a database server.
type SQLitePersister struct {
	db *sql.DB
}

func NewSQLitePersister(dbPath string) (*SQLitePersister, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode keeps reads from blocking the snapshot writes.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &SQLitePersister{db: db}
	if err := p.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *SQLitePersister) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS chat_sessions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		messages_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_sessions_updated ON chat_sessions(updated_at);
	`
	if _, err := p.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (p *SQLitePersister) LoadSessions() ([]ChatSession, error) {
	rows, err := p.db.Query(`
		SELECT id, title, messages_json, created_at, updated_at
		FROM chat_sessions
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	defer rows.Close()

	var sessions []ChatSession
	for rows.Next() {
		var sess ChatSession
		var messagesJSON string
		if err := rows.Scan(&sess.ID, &sess.Title, &messagesJSON, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		if err := json.Unmarshal([]byte(messagesJSON), &sess.Messages); err != nil {
			return nil, fmt.Errorf("parse messages for session %s: %w", sess.ID, err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (p *SQLitePersister) SaveSessions(sessions []ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, title, messages_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET
			title = excluded.title,
			messages_json = excluded.messages_json,
			updated_at = excluded.updated_at
	`
	for _, sess := range sessions {
		messagesJSON, err := json.Marshal(sess.Messages)
		if err != nil {
			return fmt.Errorf("encode messages for session %s: %w", sess.ID, err)
		}
		if _, err := p.db.Exec(query, sess.ID, sess.Title, string(messagesJSON), sess.CreatedAt, sess.UpdatedAt); err != nil {
			return fmt.Errorf("save session %s: %w", sess.ID, err)
		}
	}
	return nil
}

func (p *SQLitePersister) Close() error { return p.db.Close() }
