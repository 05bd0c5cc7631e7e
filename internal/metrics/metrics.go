package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpmetrics "github.com/slok/go-http-metrics/metrics/prometheus"
	httpmiddleware "github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
)

// Outcomes recorded for a submission.
const (
	OutcomeCreated = "created"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds the service's collectors. Each instance registers on its own
// registry so tests can build routers repeatedly.
type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	storage     *prometheus.CounterVec
	http        httpmiddleware.Middleware
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_submissions_total",
			Help: "Feedback submissions by outcome.",
		}, []string{"outcome"}),
		storage: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_storage_errors_total",
			Help: "Storage failures by operation.",
		}, []string{"op", "timeout"}),
		http: httpmiddleware.New(httpmiddleware.Config{
			Recorder: httpmetrics.NewRecorder(httpmetrics.Config{Registry: reg}),
		}),
	}
}

func (m *Metrics) Submission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StorageError(op string, timeout bool) {
	t := "false"
	if timeout {
		t = "true"
	}
	m.storage.WithLabelValues(op, t).Inc()
}

// Middleware records request count, latency and size per route id.
func (m *Metrics) Middleware(handlerID string) func(http.Handler) http.Handler {
	return std.HandlerProvider(handlerID, m.http)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
