package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_community/internal/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres holds the pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ engine.Store = (*Postgres)(nil)

// ConnectPostgres creates a pgx pool and runs schema migrations.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db := &Postgres{pool: pool}
	if err := db.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("postgres store connected", slog.String("addr", config.ConnConfig.Host))
	return db, nil
}

func (db *Postgres) Close() {
	db.pool.Close()
}

func (db *Postgres) runMigrations(ctx context.Context) error {
	names, stmts, err := migrations()
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute %s: %w", names[i], err)
		}
		slog.Info("migration applied", slog.String("file", names[i]))
	}
	return nil
}

func (db *Postgres) SetScript(ctx context.Context, userID, videoID, script string) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO scripts (user_id, video_id, script, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, video_id) DO UPDATE SET script = EXCLUDED.script, updated_at = now()`,
		userID, videoID, script)
	if err != nil {
		return fmt.Errorf("set script: %w", err)
	}
	return nil
}

func (db *Postgres) Scripts(ctx context.Context, userID string) (map[string]string, error) {
	rows, err := db.pool.Query(ctx, `SELECT video_id, script FROM scripts WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var videoID, script string
		if err := rows.Scan(&videoID, &script); err != nil {
			return nil, fmt.Errorf("scan script: %w", err)
		}
		out[videoID] = script
	}
	return out, rows.Err()
}

func (db *Postgres) DeleteScript(ctx context.Context, userID, videoID string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM scripts WHERE user_id = $1 AND video_id = $2`, userID, videoID)
	if err != nil {
		return fmt.Errorf("delete script: %w", err)
	}
	return nil
}

func (db *Postgres) MarkInFlight(ctx context.Context, token, parentID, text string) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO reply_ledger (token, parent_id, text, status, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (token) DO UPDATE SET text = EXCLUDED.text, status = EXCLUDED.status, updated_at = now()`,
		token, parentID, text, engine.ReplyInFlight)
	if err != nil {
		return fmt.Errorf("mark in flight: %w", err)
	}
	return nil
}

func (db *Postgres) MarkPosted(ctx context.Context, token, replyID string) error {
	_, err := db.pool.Exec(ctx, `UPDATE reply_ledger SET status = $1, reply_id = $2, updated_at = now() WHERE token = $3`,
		engine.ReplyPosted, replyID, token)
	if err != nil {
		return fmt.Errorf("mark posted: %w", err)
	}
	return nil
}

func (db *Postgres) ReplyStatus(ctx context.Context, token string) (string, error) {
	var status string
	err := db.pool.QueryRow(ctx, `SELECT status FROM reply_ledger WHERE token = $1`, token).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reply status: %w", err)
	}
	return status, nil
}

func (db *Postgres) RecordLike(ctx context.Context, userID, commentID string) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO likes (user_id, comment_id, created_at) VALUES ($1, $2, now())
		ON CONFLICT (user_id, comment_id) DO NOTHING`, userID, commentID)
	if err != nil {
		return fmt.Errorf("record like: %w", err)
	}
	return nil
}
