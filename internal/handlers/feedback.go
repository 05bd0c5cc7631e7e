package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"feedback-backend/internal/metrics"
	"feedback-backend/internal/models"
	"feedback-backend/internal/notify"
	"feedback-backend/internal/repository"
	"feedback-backend/internal/validation"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	maxBodyBytes  = 64 << 10
	notifyTimeout = 10 * time.Second
)

type FeedbackHandler struct {
	store    repository.FeedbackStore
	notifier notify.Notifier
	metrics  *metrics.Metrics
}

func NewFeedbackHandler(store repository.FeedbackStore, notifier notify.Notifier, m *metrics.Metrics) *FeedbackHandler {
	return &FeedbackHandler{
		store:    store,
		notifier: notifier,
		metrics:  m,
	}
}

// FeedbackView is the public projection of a record with sentiment flattened.
type FeedbackView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Sentiment *string   `json:"sentiment,omitempty"`
	Score     *float64  `json:"score,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminFeedbackView adds enrichment bookkeeping for administrators.
type AdminFeedbackView struct {
	FeedbackView
	SentimentVersion   string     `json:"sentimentVersion,omitempty"`
	SentimentUpdatedAt *time.Time `json:"sentimentUpdatedAt,omitempty"`
}

type AdminPage struct {
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
	Total    int64               `json:"total"`
	Data     []AdminFeedbackView `json:"data"`
}

type validationErrorResponse struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details"`
}

func newFeedbackView(f models.Feedback) FeedbackView {
	v := FeedbackView{
		ID:        f.ID,
		UserID:    f.UserID,
		Message:   f.Message,
		CreatedAt: f.CreatedAt,
	}
	if f.Sentiment != nil {
		label, score := f.Sentiment.Label, f.Sentiment.Score
		v.Sentiment = &label
		v.Score = &score
	}
	return v
}

func newAdminFeedbackView(f models.Feedback) AdminFeedbackView {
	v := AdminFeedbackView{FeedbackView: newFeedbackView(f)}
	if f.Sentiment != nil {
		v.SentimentVersion = f.Sentiment.Version
		v.SentimentUpdatedAt = f.Sentiment.UpdatedAt
	}
	return v
}

// --- POST /feedback ---

func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var payload validation.Payload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		h.metrics.Submission(metrics.OutcomeInvalid)
		writeValidationError(w, validation.Malformed("invalid JSON body"))
		return
	}

	sub, err := validation.Validate(payload)
	if err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			h.metrics.Submission(metrics.OutcomeInvalid)
			writeValidationError(w, verr)
			return
		}
		h.metrics.Submission(metrics.OutcomeError)
		h.serverError(w, r, err)
		return
	}

	created, err := h.store.Insert(r.Context(), sub.UserID, sub.Message)
	if err != nil {
		h.metrics.Submission(metrics.OutcomeError)
		h.serverError(w, r, err)
		return
	}
	h.metrics.Submission(metrics.OutcomeCreated)

	// Notify in the background; the response does not wait on delivery.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := h.notifier.Publish(ctx, notify.FormatFeedback(sub.UserID, sub.Message, created)); err != nil {
			log.WithError(err).WithField("feedback_id", created.ID).Warn("could not publish feedback notification")
		}
	}()

	writeJSON(w, http.StatusCreated, created)
}

// --- GET /feedback ---

func (h *FeedbackHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListRecent(r.Context(), models.RecentLimit)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	out := make([]FeedbackView, 0, len(records))
	for _, f := range records {
		out = append(out, newFeedbackView(f))
	}
	writeJSON(w, http.StatusOK, out)
}

// --- GET /admin/feedback ---

func (h *FeedbackHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	pageSize := queryInt(q.Get("pageSize"), models.DefaultPageSize)

	result, err := h.store.ListPage(r.Context(), page, pageSize)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	out := AdminPage{
		Page:     result.Page,
		PageSize: result.PageSize,
		Total:    result.Total,
		Data:     make([]AdminFeedbackView, 0, len(result.Data)),
	}
	for _, f := range result.Data {
		out.Data = append(out.Data, newAdminFeedbackView(f))
	}
	writeJSON(w, http.StatusOK, out)
}

// queryInt parses an integer query parameter, using fallback when it is
// missing or not a number. Range clamping is the store's job.
func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// serverError logs the full cause and answers with an opaque 500.
func (h *FeedbackHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	entry := log.WithError(err).WithFields(log.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
	})

	var serr *repository.StorageError
	if errors.As(err, &serr) {
		h.metrics.StorageError(serr.Op, serr.Timeout)
		entry = entry.WithField("op", serr.Op)
	}
	entry.Error("request failed")

	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
}

func writeValidationError(w http.ResponseWriter, verr *validation.ValidationError) {
	writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "validation_error",
		Details: verr.Details,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Debug("could not write response body")
	}
}
