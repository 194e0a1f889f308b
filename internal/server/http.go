package server

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/codecrafters-dev/platform/internal/auth"
	"github.com/codecrafters-dev/platform/internal/challenge"
	"github.com/codecrafters-dev/platform/internal/config"
	"github.com/codecrafters-dev/platform/internal/logging"
	"github.com/codecrafters-dev/platform/internal/metrics"
	"github.com/codecrafters-dev/platform/internal/profile"
	httperrors "github.com/codecrafters-dev/platform/pkg/http/errors"
)

// AnonymousRedirect is where visitors without a session land when they open
// the create-challenge page.
const AnonymousRedirect = "/"

// Pinger checks a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handlers groups everything the router mounts. Nil members are skipped.
type Handlers struct {
	Challenges *challenge.HTTPHandlers
	Profiles   *profile.HTTPHandlers
	Progress   http.Handler
	Tokens     auth.TokenValidator
	Metrics    *metrics.Metrics
	Deps       []Pinger
}

// NewWSUpgrader accepts websocket upgrades from the configured CORS origins.
func NewWSUpgrader(allowed []string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowed, "*") {
				return true
			}
			if slices.Contains(allowed, origin) {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// NewRouter builds the API handler tree.
func NewRouter(cfg *config.App, logger zerolog.Logger, h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", h.Metrics.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), h.Deps); err != nil {
			logger := logging.FromContext(r.Context())
			logger.Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondBadGateway(w, httperrors.ErrCodeUpstreamError, "Upstream dependency unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if c := h.Challenges; c != nil {
		mux.HandleFunc("GET /v1/challenges", c.List)
		mux.HandleFunc("GET /v1/challenges/options", c.Options)
		mux.Handle("GET /v1/challenges/new", auth.RedirectAnonymous(AnonymousRedirect)(http.HandlerFunc(c.NewPage)))
		mux.Handle("POST /v1/challenges", auth.RequireAuth(http.HandlerFunc(c.Create)))
		mux.Handle("POST /v1/challenges/submit", auth.RequireAuth(http.HandlerFunc(c.Submit)))
	}

	if p := h.Profiles; p != nil {
		mux.HandleFunc("GET /v1/users", p.ListUsernames)
		mux.HandleFunc("GET /v1/users/{username}", p.Get)
		mux.HandleFunc("GET /v1/users/{username}/challenges", p.Challenges)
		mux.Handle("PUT /v1/users/{username}/about", auth.RequireAuth(http.HandlerFunc(p.EditAbout)))
	}

	if h.Progress != nil {
		mux.Handle("GET /ws/submissions", auth.RequireAuth(h.Progress))
	}

	// The metrics middleware sits directly around the mux so it sees the matched pattern.
	var handler http.Handler = h.Metrics.Middleware(mux)
	if h.Tokens != nil {
		handler = auth.Middleware(h.Tokens, logger)(handler)
	}
	handler = logging.Middleware(logger)(handler)
	handler = cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{logging.RequestIDHeader},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})(handler)
	return handler
}

// NewHTTPServer wraps the router in an http.Server bound to the configured address.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, h Handlers) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewRouter(cfg, logger, h),
	}
}

func pingDependencies(ctx context.Context, deps []Pinger) error {
	for _, dep := range deps {
		if err := dep.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}
