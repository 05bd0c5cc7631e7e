package handlers

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"feedback-backend/internal/metrics"
	"feedback-backend/internal/models"
	"feedback-backend/internal/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	done     chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 10)}
}

func (n *recordingNotifier) Publish(ctx context.Context, message string) error {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}

// brokenStore fails every call the way an unreachable database would.
type brokenStore struct{}

var errDown = &repository.StorageError{Op: "insert", Err: errors.New("dial tcp 10.0.0.5:5432: connection refused")}

func (brokenStore) Insert(ctx context.Context, userID, message string) (models.Created, error) {
	return models.Created{}, errDown
}

func (brokenStore) ListRecent(ctx context.Context, limit int) ([]models.Feedback, error) {
	return nil, errDown
}

func (brokenStore) ListPage(ctx context.Context, page, pageSize int) (models.Page, error) {
	return models.Page{}, errDown
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSubmitFeedback(t *testing.T) {
	store := repository.NewMemoryStore()
	notifier := newRecordingNotifier()
	h := NewFeedbackHandler(store, notifier, metrics.New())

	rec := post(h.SubmitFeedback, `{"userId":"u1","message":"great product"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	id := gjson.Get(body, "id").String()
	assert.NotEmpty(t, id)
	_, err := time.Parse(time.RFC3339Nano, gjson.Get(body, "createdAt").String())
	assert.NoError(t, err)

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not published")
	}
	notifier.mu.Lock()
	assert.Contains(t, notifier.messages[0], id)
	notifier.mu.Unlock()

	recent, err := store.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "u1", recent[0].UserID)
	assert.Equal(t, "great product", recent[0].Message)
}

func TestSubmitFeedbackValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{name: "empty message", body: `{"userId":"u1","message":""}`, wantFields: []string{"message"}},
		{name: "message too long", body: `{"userId":"u1","message":"` + strings.Repeat("x", 2001) + `"}`, wantFields: []string{"message"}},
		{name: "missing user", body: `{"message":"hi"}`, wantFields: []string{"userId"}},
		{name: "wrong types", body: `{"userId":7,"message":false}`, wantFields: []string{"userId", "message"}},
		{name: "NUL in message", body: `{"userId":"u1","message":"a\u0000b"}`, wantFields: []string{"message"}},
		{name: "malformed json", body: `{"userId":`, wantFields: []string{"body"}},
		{name: "not an object", body: `["u1","hi"]`, wantFields: []string{"body"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := repository.NewMemoryStore()
			h := NewFeedbackHandler(store, newRecordingNotifier(), metrics.New())

			rec := post(h.SubmitFeedback, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := rec.Body.String()
			assert.Equal(t, "validation_error", gjson.Get(body, "error").String())
			var fields []string
			for _, f := range gjson.Get(body, "details.#.field").Array() {
				fields = append(fields, f.String())
			}
			assert.Equal(t, tc.wantFields, fields)

			page, err := store.ListPage(context.Background(), 1, 50)
			require.NoError(t, err)
			assert.Zero(t, page.Total, "nothing may be stored for an invalid payload")
		})
	}
}

func TestStorageFailuresAreOpaque(t *testing.T) {
	h := NewFeedbackHandler(brokenStore{}, newRecordingNotifier(), metrics.New())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		target  string
		body    string
	}{
		{name: "submit", handler: h.SubmitFeedback, method: http.MethodPost, target: "/feedback", body: `{"userId":"u1","message":"hi"}`},
		{name: "recent", handler: h.ListRecent, method: http.MethodGet, target: "/feedback"},
		{name: "admin", handler: h.ListAdmin, method: http.MethodGet, target: "/admin/feedback?page=2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			tc.handler(rec, req)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"server_error"}`, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "10.0.0.5")
		})
	}
}

func TestListRecentFlattensSentiment(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	h := NewFeedbackHandler(store, newRecordingNotifier(), metrics.New())

	plain, err := store.Insert(ctx, "u1", "first")
	require.NoError(t, err)
	enriched, err := store.Insert(ctx, "u2", "second")
	require.NoError(t, err)
	require.NoError(t, store.SetSentiment(enriched.ID, models.Sentiment{Label: "positive", Score: 0.64, Version: "vader-0.1"}))

	rec := httptest.NewRecorder()
	h.ListRecent(rec, httptest.NewRequest(http.MethodGet, "/feedback", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Equal(t, int64(2), gjson.Get(body, "#").Int())

	assert.Equal(t, enriched.ID, gjson.Get(body, "0.id").String())
	assert.Equal(t, "positive", gjson.Get(body, "0.sentiment").String())
	assert.Equal(t, 0.64, gjson.Get(body, "0.score").Float())
	assert.False(t, gjson.Get(body, "0.sentimentVersion").Exists(), "version is admin-only")

	assert.Equal(t, plain.ID, gjson.Get(body, "1.id").String())
	assert.False(t, gjson.Get(body, "1.sentiment").Exists())
	assert.False(t, gjson.Get(body, "1.score").Exists())
}

func TestListRecentEmptyIsArray(t *testing.T) {
	h := NewFeedbackHandler(repository.NewMemoryStore(), newRecordingNotifier(), metrics.New())

	rec := httptest.NewRecorder()
	h.ListRecent(rec, httptest.NewRequest(http.MethodGet, "/feedback", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListAdminPaging(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	h := NewFeedbackHandler(store, newRecordingNotifier(), metrics.New())
	for _, u := range []string{"u1", "u2", "u3"} {
		_, err := store.Insert(ctx, u, "msg "+u)
		require.NoError(t, err)
	}

	tests := []struct {
		name         string
		query        string
		wantPage     int64
		wantPageSize int64
		wantUsers    []string
	}{
		{name: "defaults", query: "", wantPage: 1, wantPageSize: 10, wantUsers: []string{"u3", "u2", "u1"}},
		{name: "second of one", query: "?page=2&pageSize=1", wantPage: 2, wantPageSize: 1, wantUsers: []string{"u2"}},
		{name: "page size capped", query: "?pageSize=1000", wantPage: 1, wantPageSize: 50, wantUsers: []string{"u3", "u2", "u1"}},
		{name: "page size floor", query: "?pageSize=0", wantPage: 1, wantPageSize: 1, wantUsers: []string{"u3"}},
		{name: "negative page", query: "?page=-2&pageSize=2", wantPage: 1, wantPageSize: 2, wantUsers: []string{"u3", "u2"}},
		{name: "garbage falls back to defaults", query: "?page=abc&pageSize=xyz", wantPage: 1, wantPageSize: 10, wantUsers: []string{"u3", "u2", "u1"}},
		{name: "largest int page", query: "?page=9223372036854775807&pageSize=50", wantPage: math.MaxInt/50 + 1, wantPageSize: 50},
		{name: "largest int page of one", query: "?page=9223372036854775807&pageSize=1", wantPage: math.MaxInt, wantPageSize: 1},
		{name: "page beyond int falls back", query: "?page=99999999999999999999&pageSize=1", wantPage: 1, wantPageSize: 1, wantUsers: []string{"u3"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ListAdmin(rec, httptest.NewRequest(http.MethodGet, "/admin/feedback"+tc.query, nil))
			require.Equal(t, http.StatusOK, rec.Code)

			body := rec.Body.String()
			assert.Equal(t, tc.wantPage, gjson.Get(body, "page").Int())
			assert.Equal(t, tc.wantPageSize, gjson.Get(body, "pageSize").Int())
			assert.Equal(t, int64(3), gjson.Get(body, "total").Int())
			assert.True(t, gjson.Get(body, "data").IsArray())

			var users []string
			for _, u := range gjson.Get(body, "data.#.userId").Array() {
				users = append(users, u.String())
			}
			assert.Equal(t, tc.wantUsers, users)
		})
	}
}

func TestQueryInt(t *testing.T) {
	assert.Equal(t, 7, queryInt("", 7))
	assert.Equal(t, 7, queryInt("seven", 7))
	assert.Equal(t, 3, queryInt("3", 7))
	assert.Equal(t, -1, queryInt("-1", 7))
}
