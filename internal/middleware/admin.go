package middleware

import (
	"encoding/json"
	"net/http"

	"feedback-backend/internal/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// AdminKeyHeader carries the shared admin secret.
const AdminKeyHeader = "x-admin-key"

// AdminKey rejects requests whose x-admin-key header does not match the gate's secret.
func AdminKey(gate *auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := gate.Check(r.Header.Get(AdminKeyHeader)); err != nil {
				log.WithFields(log.Fields{
					"request_id": chimw.GetReqID(r.Context()),
					"path":       r.URL.Path,
					"remote":     r.RemoteAddr,
				}).Warn("rejected admin request")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
