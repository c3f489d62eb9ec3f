package web

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"timespan/internal/config"
	appLog "timespan/internal/log"
	"timespan/internal/model"
	"timespan/internal/schedule"
	"timespan/internal/span"
)

// Planner is what the HTTP API needs from the agenda.
type Planner interface {
	Location() *time.Location
	Day(day time.Time) (*schedule.Schedule, error)
	Closest(at time.Time) (span.Span, error)
	Refresh(ctx context.Context) error
	Occurrences() []model.Occurrence
	RefreshedAt() time.Time
}

// Server provides the free-time HTTP API.
type Server struct {
	cfg     *config.Config
	planner Planner
	metrics *Metrics
	router  chi.Router
	now     func() time.Time
}

// NewServer constructs a Server. A nil metrics gets a fresh registry.
func NewServer(cfg *config.Config, planner Planner, metrics *Metrics) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	s := &Server{
		cfg:     cfg,
		planner: planner,
		metrics: metrics,
		router:  chi.NewRouter(),
		now:     time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer wraps the handler in an http.Server bound to cfg.Listen.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		if s.basicAuthEnabled() {
			appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
			r.Use(s.basicAuth)
		}
		r.Route("/api", func(r chi.Router) {
			r.Get("/day", s.handleDay)
			r.Get("/closest", s.handleClosest)
			r.Post("/refresh", s.handleRefresh)
		})
	})
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

func (s *Server) basicAuth(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="timespan", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
