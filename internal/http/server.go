// Package http exposes every user intent as an endpoint mapping 1:1 to a
// domain mutation or derivation query, and fronts the static shell with the
// offline asset cache.
package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applog "github.com/alexcho121/expense/internal/log"
	"github.com/alexcho121/expense/internal/metrics"
	"github.com/alexcho121/expense/internal/tracker"
)

type Server struct {
	http.Server
	tracker *tracker.Tracker
	assets  http.Handler
	log     *applog.Logger
	metrics *metrics.Metrics

	// now supplies the reference date for month-sensitive derivations;
	// swappable in tests.
	now func() time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. The assets handler (normally the asset cache manager) answers
// everything outside /api.
func NewServer(addr string, tr *tracker.Tracker, assets http.Handler, logger *applog.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		tracker: tr,
		assets:  assets,
		log:     logger,
		metrics: m,
		now:     time.Now,
	}

	r := chi.NewRouter()
	r.Use(s.withRequestLogging)
	r.Use(withSecurityHeaders)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/categories", s.handleCategories)
		r.Get("/monthly", s.handleMonthlySeries)
		r.Get("/budget", s.handleBudgetUsage)
		r.Put("/budget", s.handleSetBudget)

		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Delete("/transactions", s.handleClearTransactions)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)

		r.Get("/goals", s.handleListGoals)
		r.Post("/goals", s.handleCreateGoal)
		r.Put("/goals/{id}", s.handleEditGoal)
		r.Delete("/goals/{id}", s.handleDeleteGoal)

		r.Put("/theme", s.handleSetTheme)
		r.Post("/theme/toggle", s.handleToggleTheme)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})

	// Everything else is the application shell, served cache-first.
	r.Handle("/*", assets)

	s.Server = http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// withRequestLogging tags each request with an id and logs start/completion
// with timing and status.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.log.LogAttrs(r.Context(), slog.LevelInfo, "Request completed",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("url", r.URL.Path),
			slog.Int("status", rw.statusCode),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request id for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
