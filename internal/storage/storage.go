// Package storage defines the drafts-vault persistence interface and its
// implementations.
package storage

import (
	"context"

	"infocommander/internal/model"
)

// Storage is the interface for all vault operations.
type Storage interface {
	SaveDraft(ctx context.Context, d *model.Draft) error
	GetDraft(ctx context.Context, id int64) (*model.Draft, error)
	ListDrafts(ctx context.Context, chatID int64, limit int) ([]model.Draft, error)
	DeleteDraft(ctx context.Context, id int64) error

	Close() error
}
