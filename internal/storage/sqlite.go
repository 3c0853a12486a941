package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"infocommander/internal/model"
	"infocommander/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveDraft inserts a new draft and populates its ID and CreatedAt.
func (s *SQLite) SaveDraft(ctx context.Context, d *model.Draft) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO drafts (chat_id, content, image_url, created_at) VALUES (?, ?, ?, ?)`,
		d.ChatID, d.Content, d.ImageURL, now,
	)
	if err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	d.ID = id
	d.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// GetDraft returns a single draft by its ID.
func (s *SQLite) GetDraft(ctx context.Context, id int64) (*model.Draft, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, chat_id, content, image_url, created_at FROM drafts WHERE id = ?`, id,
	)
	d, err := scanDraft(row)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListDrafts returns the most recent drafts saved from the given chat.
func (s *SQLite) ListDrafts(ctx context.Context, chatID int64, limit int) ([]model.Draft, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, content, image_url, created_at
		 FROM drafts WHERE chat_id = ? ORDER BY id DESC LIMIT ?`, chatID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query drafts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var drafts []model.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *d)
	}
	return drafts, rows.Err()
}

// DeleteDraft removes a draft by its ID.
func (s *SQLite) DeleteDraft(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDraft(row scannable) (*model.Draft, error) {
	var d model.Draft
	var created sql.NullString
	if err := row.Scan(&d.ID, &d.ChatID, &d.Content, &d.ImageURL, &created); err != nil {
		return nil, fmt.Errorf("scan draft: %w", err)
	}
	if created.Valid {
		d.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &d, nil
}
