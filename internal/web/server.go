// Package web provides the HTTP API for agents, uploads and distribution history.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/JonMunkholm/leaddist/internal/agents"
	"github.com/JonMunkholm/leaddist/internal/config"
	"github.com/JonMunkholm/leaddist/internal/core"
	"github.com/JonMunkholm/leaddist/internal/store"
	"github.com/JonMunkholm/leaddist/internal/web/middleware"
)

// Version is reported by the health endpoint.
var Version = "1.0.0"

// Distributor runs one upload through the pipeline.
type Distributor interface {
	Distribute(ctx context.Context, up core.Upload) (*core.Outcome, error)
}

// AgentService is the agent CRUD surface used by the handlers.
type AgentService interface {
	List(ctx context.Context) ([]agents.Agent, error)
	Get(ctx context.Context, id string) (agents.Agent, error)
	Create(ctx context.Context, in agents.CreateInput) (agents.Agent, error)
	Update(ctx context.Context, id string, in agents.UpdateInput) (agents.Agent, error)
	Delete(ctx context.Context, id string) error
}

// HistoryStore reads recorded distributions.
type HistoryStore interface {
	ListDistributions(ctx context.Context, page, limit int) (store.DistributionPage, error)
	GetDistribution(ctx context.Context, id string) (*store.Distribution, error)
}

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server delegates to.
// Health may be nil; every other field is required.
type Deps struct {
	Distributor Distributor
	Agents      AgentService
	History     HistoryStore
	Health      HealthChecker
	Limiter     *core.UploadLimiter
}

// Server is the HTTP server.
type Server struct {
	cfg     *config.Config
	deps    Deps
	apiKeys map[string]string
	router  *chi.Mux
	server  *http.Server
}

// NewServer wires routes and middleware. It fails on a malformed API key list.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Distributor == nil || deps.Agents == nil || deps.History == nil {
		return nil, errors.New("web: distributor, agents and history are required")
	}
	if deps.Limiter == nil {
		deps.Limiter = core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	}

	keys, err := cfg.Security.APIKeyPrincipals()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		deps:    deps,
		apiKeys: keys,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(rateLimit(s.cfg.Rate.RequestsPerMinute))
	}
}

func (s *Server) setupRoutes() {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONStatus(w, http.StatusNotFound, map[string]any{
			"success": false,
			"message": "Route not found",
			"path":    r.URL.Path,
			"method":  r.Method,
		})
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(s.apiKeys, s.cfg.Security.RequireAPIKey))

			r.Route("/agents", func(r chi.Router) {
				r.Get("/", s.handleListAgents)
				r.Post("/", s.handleCreateAgent)
				r.Get("/{id}", s.handleGetAgent)
				r.Put("/{id}", s.handleUpdateAgent)
				r.Delete("/{id}", s.handleDeleteAgent)
			})

			r.Route("/upload", func(r chi.Router) {
				r.With(s.uploadRateLimit()...).Post("/csv", s.handleUpload)
				r.Get("/distributions", s.handleListDistributions)
				r.Get("/distributions/{id}", s.handleGetDistribution)
			})
		})
	})
}

func (s *Server) uploadRateLimit() []func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled {
		return nil
	}
	return []func(http.Handler) http.Handler{rateLimit(s.cfg.Rate.UploadLimit)}
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds the hardening headers to every response.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimit limits requests per client address per minute. RemoteAddr has
// already been resolved by TrustedRealIP.
func rateLimit(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			msg := core.MapError(errRateLimited)
			w.Header().Set("Retry-After", "60")
			writeJSONStatus(w, http.StatusTooManyRequests, errorBody{
				Success: false,
				Message: msg.Message,
				Action:  msg.Action,
				Code:    msg.Code,
			})
		}),
	)
}

var errRateLimited = errors.New("rate limit exceeded")

// writeJSON writes v with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON. Encoding errors are only logged since
// the status line is already on the wire.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
