package repository

import (
	"context"
	"time"

	"feedback-backend/internal/models"
)

// DefaultQueryTimeout bounds a single storage operation.
const DefaultQueryTimeout = 5 * time.Second

// FeedbackStore owns every read and write of feedback records.
// Failures are returned as *StorageError.
type FeedbackStore interface {
	Insert(ctx context.Context, userID, message string) (models.Created, error)
	ListRecent(ctx context.Context, limit int) ([]models.Feedback, error)
	ListPage(ctx context.Context, page, pageSize int) (models.Page, error)
}

// Store is a FeedbackStore backend together with its lifecycle hooks.
type Store interface {
	FeedbackStore
	Ping(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	Close(ctx context.Context) error
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultQueryTimeout
	}
	return context.WithTimeout(ctx, d)
}
