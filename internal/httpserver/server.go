// internal/httpserver/server.go
//
// HTTP server wiring for the Seven Boom webhook.
// Responsibilities:
//   - Router + middleware (request IDs, zerolog access logs, panic recovery, timeouts, JSON).
//   - Public endpoints: "/", "/health".
//   - Platform endpoint: POST /alexa/game, behind request verification when enabled.
//   - Operator endpoint: GET /metrics, behind an ops bearer token when a secret is configured.
//
// Notes:
//   - The server keeps no game state; each request carries its own.
//   - Metrics live on a per-server registry.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/sevenboom/internal/alexa"
	"github.com/robalobadob/sevenboom/internal/config"
	"github.com/robalobadob/sevenboom/internal/game"
	"github.com/robalobadob/sevenboom/internal/opsauth"
	"github.com/robalobadob/sevenboom/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Server bundles router, game engine and metrics.
type Server struct {
	r        *chi.Mux
	engine   *game.Engine
	metrics  *metrics
	verifier *alexa.Verifier
	skillID  string
	started  time.Time
	logger   zerolog.Logger

	verifierOpts []alexa.VerifierOption
}

// Option configures a Server.
type Option func(*Server)

// WithEngine replaces the default engine (tests inject a fixed random source).
func WithEngine(e *game.Engine) Option { return func(s *Server) { s.engine = e } }

// WithLogger replaces the global zerolog logger for request logs.
func WithLogger(l zerolog.Logger) Option { return func(s *Server) { s.logger = l } }

// WithVerifierOptions appends options to the request verifier.
func WithVerifierOptions(opts ...alexa.VerifierOption) Option {
	return func(s *Server) { s.verifierOpts = append(s.verifierOpts, opts...) }
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, opts ...Option) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		metrics: newMetrics(),
		skillID: cfg.AlexaSkillID,
		started: time.Now(),
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = game.New()
	}
	if cfg.AlexaVerify {
		vopts := append([]alexa.VerifierOption{
			alexa.WithHTTPClient(&http.Client{Timeout: cfg.AlexaCertFetchTimeout}),
			alexa.WithTolerance(cfg.AlexaTimestampTolerance),
			alexa.WithFailureHook(func(error) { s.metrics.verifyFailed.Inc() }),
		}, s.verifierOpts...)
		s.verifier = alexa.NewVerifier(store.NewMemoryStore(), vopts...)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                   // add X-Request-ID
	s.r.Use(chimw.RealIP)                      // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(s.logger))         // per-request logger
	s.r.Use(requestIDField)                    // tag it with the request ID
	s.r.Use(hlog.AccessHandler(accessLog))     // one line per request
	s.r.Use(chimw.Recoverer)                   // recover from panics
	s.r.Use(chimw.Timeout(cfg.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                   // default JSON responses

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "Seven Boom is up and running.",
			"since":   s.started.Format(time.RFC3339),
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	if cfg.MetricsEnabled {
		if cfg.OpsJWTSecret != "" {
			s.r.With(opsauth.Middleware(cfg.OpsJWTSecret)).Method(http.MethodGet, "/metrics", s.metrics.handler())
		} else {
			s.r.Method(http.MethodGet, "/metrics", s.metrics.handler())
		}
	}

	s.r.Route("/alexa", func(r chi.Router) {
		if s.verifier != nil {
			r.Use(s.verifier.Middleware)
		}
		r.Post("/game", s.handleAlexa)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		_ = srv.Close()
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestIDField copies chi's request ID into the request logger.
func requestIDField(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("requestId", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}
