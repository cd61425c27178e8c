package session

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresPersister stores session snapshots in PostgreSQL, one row per
// session with the message timeline as a JSON column.
type PostgresPersister struct {
	db *sql.DB
}

func NewPostgresPersister(databaseURL string) (*PostgresPersister, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	p := &PostgresPersister{db: db}
	if err := p.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgresPersister) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS chat_sessions (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			messages_json TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)
	`
	if _, err := p.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (p *PostgresPersister) LoadSessions() ([]ChatSession, error) {
	query := `
		SELECT id, title, messages_json, created_at, updated_at
		FROM chat_sessions
		ORDER BY created_at ASC
	`
	rows, err := p.db.Query(query)
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

func (p *PostgresPersister) SaveSessions(sessions []ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, title, messages_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			messages_json = EXCLUDED.messages_json,
			updated_at = EXCLUDED.updated_at
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

func (p *PostgresPersister) Close() error { return p.db.Close() }
