// Package http exposes the expense store and its analytics as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartspend/internal/analytics"
	"smartspend/internal/core"
	"smartspend/internal/expense"
	"smartspend/internal/log"
	"smartspend/internal/middleware/ratelimit"
	"smartspend/internal/middleware/security"
)

// ExpenseStore is the subset of expense.Store the handlers use.
type ExpenseStore interface {
	Add(ctx context.Context, in expense.NewExpense) (core.Expense, error)
	Delete(ctx context.Context, id core.ExpenseID) bool
	Restore(ctx context.Context, id core.ExpenseID) bool
	Purge(ctx context.Context, id core.ExpenseID) bool
	ClearTrash(ctx context.Context) bool
	List(f expense.Filter) []core.Expense
	Trash() []core.Expense
	Version() uint64
}

// SnapshotSource provides the latest derived analytics.
type SnapshotSource interface {
	Snapshot() analytics.Snapshot
}

// Config bundles the server's collaborators.
type Config struct {
	Addr               string
	Store              ExpenseStore
	Analytics          SnapshotSource
	Logger             *log.Logger
	RateLimitPerMinute int
	// MetricsHandler defaults to promhttp.Handler.
	MetricsHandler http.Handler
	// Ready reports whether dependencies are usable; nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	store     ExpenseStore
	analytics SnapshotSource
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	validate  *requestValidator
	ready     func(ctx context.Context) error
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	s := &Server{
		store:     cfg.Store,
		analytics: cfg.Analytics,
		logger:    logger.WithComponent(log.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		validate:  newRequestValidator(),
		ready:     cfg.Ready,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", metricsHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.handleCategories)

		r.Get("/expenses", s.handleListExpenses)
		r.Get("/trash", s.handleListTrash)
		r.Get("/summary", s.handleSummary)
		r.Get("/summary/pie", s.handlePie)

		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Middleware(clientKey, s.handleRateLimited))
			r.Post("/expenses", s.handleCreateExpense)
			r.Delete("/expenses/{id}", s.handleDeleteExpense)
			r.Post("/trash/{id}/restore", s.handleRestoreExpense)
			r.Delete("/trash/{id}", s.handlePurgeExpense)
			r.Delete("/trash", s.handleClearTrash)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeValidation, "method not allowed")
	})

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops accepting requests and releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// clientKey relies on middleware.RealIP having rewritten RemoteAddr.
func clientKey(r *http.Request) string {
	return r.RemoteAddr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, r.RemoteAddr, log.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, please try again later")
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			writeError(w, http.StatusServiceUnavailable, CodeInternal, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
