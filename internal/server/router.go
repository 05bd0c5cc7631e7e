package server

import (
	"net/http"

	"feedback-backend/internal/auth"
	"feedback-backend/internal/handlers"
	"feedback-backend/internal/metrics"
	customMiddleware "feedback-backend/internal/middleware"
	"feedback-backend/internal/notify"
	"feedback-backend/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Store          repository.Store
	Gate           *auth.Gate
	Notifier       notify.Notifier
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	Logger         *logrus.Logger
}

func NewRouter(o Options) http.Handler {
	if o.Notifier == nil {
		o.Notifier = notify.NewLogNotifier()
	}
	if o.Metrics == nil {
		o.Metrics = metrics.New()
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}

	feedbackHandler := handlers.NewFeedbackHandler(o.Store, o.Notifier, o.Metrics)
	healthHandler := handlers.NewHealthHandler(o.Store)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.RequestLogger(o.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", customMiddleware.AdminKeyHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)
	r.Handle("/metrics", o.Metrics.Handler())

	// Public routes
	r.With(o.Metrics.Middleware("submit_feedback")).Post("/feedback", feedbackHandler.SubmitFeedback)
	r.With(o.Metrics.Middleware("list_feedback")).Get("/feedback", feedbackHandler.ListRecent)

	// Admin routes (x-admin-key required)
	r.Route("/admin", func(r chi.Router) {
		r.Use(customMiddleware.AdminKey(o.Gate))
		r.With(o.Metrics.Middleware("admin_list_feedback")).Get("/feedback", feedbackHandler.ListAdmin)
	})

	return r
}
