package repository

import (
	"context"
	"time"

	"feedback-backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const feedbackCollection = "feedback"

// MongoStore keeps feedback in a MongoDB collection. Ids are UUIDv7 strings,
// which sort in creation order and break created_at ties.
type MongoStore struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoStore(db *mongo.Database, timeout time.Duration) *MongoStore {
	return &MongoStore{
		collection: db.Collection(feedbackCollection),
		timeout:    timeout,
	}
}

var recentOrder = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *MongoStore) Ping(ctx context.Context) error {
	return storageError("ping", r.collection.Database().Client().Ping(ctx, nil))
}

// EnsureSchema creates the indexes used for ordering and per-user lookups.
func (r *MongoStore) EnsureSchema(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: recentOrder,
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return storageError("ensure schema", err)
}

func (r *MongoStore) Insert(ctx context.Context, userID, message string) (models.Created, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	id, err := uuid.NewV7()
	if err != nil {
		return models.Created{}, storageError("insert", err)
	}
	// BSON dates carry millisecond precision
	now := time.Now().UTC().Truncate(time.Millisecond)

	doc := bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "user_id", Value: userID},
		{Key: "message", Value: message},
		{Key: "created_at", Value: now},
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return models.Created{}, storageError("insert", err)
	}
	return models.Created{ID: id.String(), CreatedAt: now}, nil
}

func (r *MongoStore) ListRecent(ctx context.Context, limit int) ([]models.Feedback, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.find(ctx, int64(models.ClampRecent(limit)), 0)
	if err != nil {
		return nil, storageError("list recent", err)
	}
	return out, nil
}

func (r *MongoStore) ListPage(ctx context.Context, page, pageSize int) (models.Page, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	page, pageSize = models.ClampPage(page, pageSize)
	data, err := r.find(ctx, int64(pageSize), int64(models.Offset(page, pageSize)))
	if err != nil {
		return models.Page{}, storageError("list page", err)
	}

	total, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return models.Page{}, storageError("count", err)
	}

	return models.Page{Page: page, PageSize: pageSize, Total: total, Data: data}, nil
}

func (r *MongoStore) find(ctx context.Context, limit, skip int64) ([]models.Feedback, error) {
	opts := options.Find().SetSort(recentOrder).SetLimit(limit).SetSkip(skip)
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []feedbackDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]models.Feedback, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

// feedbackDocument is the stored shape. The sentiment score is a pointer so a
// document without one can be told apart from a score of zero.
type feedbackDocument struct {
	ID        string             `bson:"_id"`
	UserID    string             `bson:"user_id"`
	Message   string             `bson:"message"`
	Sentiment *sentimentDocument `bson:"sentiment,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

type sentimentDocument struct {
	Label     string     `bson:"label"`
	Score     *float64   `bson:"score"`
	Version   string     `bson:"version,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty"`
}

func (d feedbackDocument) toModel() models.Feedback {
	f := models.Feedback{
		ID:        d.ID,
		UserID:    d.UserID,
		Message:   d.Message,
		CreatedAt: d.CreatedAt,
	}
	// a half-written sentiment is treated as absent
	if s := d.Sentiment; s != nil && s.Label != "" && s.Score != nil {
		f.Sentiment = &models.Sentiment{
			Label:     s.Label,
			Score:     *s.Score,
			Version:   s.Version,
			UpdatedAt: s.UpdatedAt,
		}
	}
	return f
}

func (r *MongoStore) Close(ctx context.Context) error {
	return r.collection.Database().Client().Disconnect(ctx)
}
