package repository

import (
	"context"
	"time"

	"feedback-backend/internal/models"

	"gorm.io/gorm"
)

// schemaLockID serializes schema changes across processes booting at once.
const schemaLockID = 7_245_001

const createFeedbackTable = `
CREATE TABLE IF NOT EXISTS feedback (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id TEXT NOT NULL,
	message TEXT NOT NULL CHECK (char_length(message) BETWEEN 1 AND 2000),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Columns added after the first release. Each is applied with ADD COLUMN IF
// NOT EXISTS so that older tables are extended and never redefined.
var additiveColumns = []string{
	"sentiment JSONB",
	"sentiment_version TEXT",
	"sentiment_updated_at TIMESTAMPTZ",
	"seq BIGSERIAL",
}

const createRecentIndex = `CREATE INDEX IF NOT EXISTS feedback_recent_idx ON feedback (created_at DESC, seq DESC)`

// selectFeedback flattens the sentiment document into scalars. A score that
// is not a JSON number reads as NULL rather than failing the cast.
const selectFeedback = `
SELECT id::text AS id,
       user_id,
       message,
       created_at,
       sentiment->>'label' AS sentiment_label,
       CASE WHEN jsonb_typeof(sentiment->'score') = 'number'
            THEN (sentiment->>'score')::float8 END AS sentiment_score,
       sentiment_version,
       sentiment_updated_at
FROM feedback
ORDER BY created_at DESC, seq DESC
LIMIT ? OFFSET ?`

type PostgresStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewPostgresStore(db *gorm.DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

type feedbackRow struct {
	ID                 string
	UserID             string
	Message            string
	CreatedAt          time.Time
	SentimentLabel     *string
	SentimentScore     *float64
	SentimentVersion   *string
	SentimentUpdatedAt *time.Time
}

func (r feedbackRow) toModel() models.Feedback {
	f := models.Feedback{
		ID:        r.ID,
		UserID:    r.UserID,
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
	}
	// label and score are surfaced together or not at all
	if r.SentimentLabel != nil && r.SentimentScore != nil {
		f.Sentiment = &models.Sentiment{
			Label:     *r.SentimentLabel,
			Score:     *r.SentimentScore,
			UpdatedAt: r.SentimentUpdatedAt,
		}
		if r.SentimentVersion != nil {
			f.Sentiment.Version = *r.SentimentVersion
		}
	}
	return f
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return storageError("ping", err)
	}
	return storageError("ping", sqlDB.PingContext(ctx))
}

// EnsureSchema creates pgcrypto (when missing), the feedback table, the
// optional columns and the ordering index. Running it again is a no-op.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", schemaLockID).Error; err != nil {
			return err
		}

		var hasPgcrypto bool
		row := tx.Raw("SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'pgcrypto')").Row()
		if err := row.Scan(&hasPgcrypto); err != nil {
			return err
		}
		if !hasPgcrypto {
			if err := tx.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
				return err
			}
		}

		if err := tx.Exec(createFeedbackTable).Error; err != nil {
			return err
		}
		for _, col := range additiveColumns {
			if err := tx.Exec("ALTER TABLE feedback ADD COLUMN IF NOT EXISTS " + col).Error; err != nil {
				return err
			}
		}
		return tx.Exec(createRecentIndex).Error
	})
	return storageError("ensure schema", err)
}

func (s *PostgresStore) Insert(ctx context.Context, userID, message string) (models.Created, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var created models.Created
	err := s.db.WithContext(ctx).
		Raw(`INSERT INTO feedback (user_id, message) VALUES (?, ?) RETURNING id::text AS id, created_at`, userID, message).
		Scan(&created).Error
	if err != nil {
		return models.Created{}, storageError("insert", err)
	}
	return created, nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]models.Feedback, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.list(ctx, models.ClampRecent(limit), 0)
	if err != nil {
		return nil, storageError("list recent", err)
	}
	return rows, nil
}

func (s *PostgresStore) ListPage(ctx context.Context, page, pageSize int) (models.Page, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	page, pageSize = models.ClampPage(page, pageSize)
	data, err := s.list(ctx, pageSize, models.Offset(page, pageSize))
	if err != nil {
		return models.Page{}, storageError("list page", err)
	}

	var total int64
	if err := s.db.WithContext(ctx).Table("feedback").Count(&total).Error; err != nil {
		return models.Page{}, storageError("count", err)
	}

	return models.Page{Page: page, PageSize: pageSize, Total: total, Data: data}, nil
}

func (s *PostgresStore) list(ctx context.Context, limit, offset int) ([]models.Feedback, error) {
	var rows []feedbackRow
	if err := s.db.WithContext(ctx).Raw(selectFeedback, limit, offset).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.Feedback, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *PostgresStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
