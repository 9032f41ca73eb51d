package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go_community/internal/engine"
	_ "modernc.org/sqlite"
)

// SQLite is the single-file store used when no PostgreSQL is configured.
type SQLite struct {
	db *sql.DB
}

var _ engine.Store = (*SQLite)(nil)

// DefaultSQLitePath returns $HOME/.go_community/community.db.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_community", "community.db")
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = DefaultSQLitePath()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	_, stmts, err := migrations()
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: init schema: %w", err)
		}
	}
	slog.Info("sqlite store opened", slog.String("path", path))
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() {
	if err := s.db.Close(); err != nil {
		slog.Warn("sqlite: close", slog.Any("error", err))
	}
}

func (s *SQLite) SetScript(ctx context.Context, userID, videoID, script string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO scripts (user_id, video_id, script, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, video_id) DO UPDATE SET script = excluded.script, updated_at = excluded.updated_at`,
		userID, videoID, script, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite: set script: %w", err)
	}
	return nil
}

func (s *SQLite) Scripts(ctx context.Context, userID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT video_id, script FROM scripts WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list scripts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var videoID, script string
		if err := rows.Scan(&videoID, &script); err != nil {
			return nil, fmt.Errorf("sqlite: scan script: %w", err)
		}
		out[videoID] = script
	}
	return out, rows.Err()
}

func (s *SQLite) DeleteScript(ctx context.Context, userID, videoID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM scripts WHERE user_id = ? AND video_id = ?`, userID, videoID)
	if err != nil {
		return fmt.Errorf("sqlite: delete script: %w", err)
	}
	return nil
}

func (s *SQLite) MarkInFlight(ctx context.Context, token, parentID, text string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO reply_ledger (token, parent_id, text, status, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (token) DO UPDATE SET text = excluded.text, status = excluded.status, updated_at = excluded.updated_at`,
		token, parentID, text, engine.ReplyInFlight, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite: mark in flight: %w", err)
	}
	return nil
}

func (s *SQLite) MarkPosted(ctx context.Context, token, replyID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reply_ledger SET status = ?, reply_id = ?, updated_at = ? WHERE token = ?`,
		engine.ReplyPosted, replyID, time.Now().UTC(), token)
	if err != nil {
		return fmt.Errorf("sqlite: mark posted: %w", err)
	}
	return nil
}

func (s *SQLite) ReplyStatus(ctx context.Context, token string) (string, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM reply_ledger WHERE token = ?`, token).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: reply status: %w", err)
	}
	return status, nil
}

func (s *SQLite) RecordLike(ctx context.Context, userID, commentID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO likes (user_id, comment_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, comment_id) DO NOTHING`, userID, commentID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite: record like: %w", err)
	}
	return nil
}
