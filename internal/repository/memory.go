package repository

import (
	"context"
	"sync"
	"time"

	"feedback-backend/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by MemoryStore.SetSentiment for an unknown id.
var ErrNotFound = errors.New("feedback not found")

// MemoryStore keeps records in process memory. It is used for local runs
// without a database and as the store behind handler tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.Feedback
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: func() time.Time { return time.Now().UTC() }}
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) EnsureSchema(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Insert(ctx context.Context, userID, message string) (models.Created, error) {
	if err := ctx.Err(); err != nil {
		return models.Created{}, storageError("insert", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return models.Created{}, storageError("insert", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	created := models.Created{ID: id.String(), CreatedAt: m.now()}
	m.records = append(m.records, models.Feedback{
		ID:        created.ID,
		UserID:    userID,
		Message:   message,
		CreatedAt: created.CreatedAt,
	})
	return created, nil
}

func (m *MemoryStore) ListRecent(ctx context.Context, limit int) ([]models.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("list recent", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.slice(models.ClampRecent(limit), 0), nil
}

func (m *MemoryStore) ListPage(ctx context.Context, page, pageSize int) (models.Page, error) {
	if err := ctx.Err(); err != nil {
		return models.Page{}, storageError("list page", err)
	}

	page, pageSize = models.ClampPage(page, pageSize)

	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.Page{
		Page:     page,
		PageSize: pageSize,
		Total:    int64(len(m.records)),
		Data:     m.slice(pageSize, models.Offset(page, pageSize)),
	}, nil
}

// slice returns up to limit records newest first, skipping offset.
// Insertion order is the ordering, so equal timestamps never reorder.
func (m *MemoryStore) slice(limit, offset int) []models.Feedback {
	out := make([]models.Feedback, 0, limit)
	for i := len(m.records) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		f := m.records[i]
		if f.Sentiment != nil {
			s := *f.Sentiment
			f.Sentiment = &s
		}
		out = append(out, f)
	}
	return out
}

// SetSentiment attaches an enrichment result the way the external worker would.
func (m *MemoryStore) SetSentiment(id string, s models.Sentiment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.records {
		if m.records[i].ID == id {
			updated := m.now()
			s.UpdatedAt = &updated
			m.records[i].Sentiment = &s
			return nil
		}
	}
	return ErrNotFound
}
