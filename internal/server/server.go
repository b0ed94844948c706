package server

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"chromadish/internal/logging"
	"chromadish/internal/ratelimit"
	"chromadish/internal/studio"
)

// MediaPath is where locally stored mockups are served.
const MediaPath = "/media/"

// Options carries everything the router needs besides the handler.
type Options struct {
	Port    string
	Limiter ratelimit.Limiter
	// TrustedProxies may set the client address through X-Forwarded-For.
	TrustedProxies []netip.Prefix
	// MediaDir is served under MediaPath when set.
	MediaDir string
	Static   http.Handler
	Log      zerolog.Logger
}

// New constructs the HTTP server with routes and middleware.
func New(opts Options, h studio.Handler) *http.Server {
	router := NewRouter(opts, h)

	srv := &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	opts.Log.Info().Str("addr", srv.Addr).Msg("server ready")
	return srv
}

// NewRouter builds the route tree.
func NewRouter(opts Options, h studio.Handler) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(ratelimit.RealIP(opts.TrustedProxies))
	router.Use(logging.Requests(opts.Log))
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", h.Catalog)
		r.Get("/events", h.StreamEvents)
		r.Route("/generations", func(r chi.Router) {
			r.Get("/", h.ListGenerations)
			r.Get("/{id}", h.GetGeneration)
		})

		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(opts.Limiter, opts.Log))
			r.Post("/mockups", h.Generate)
			r.Post("/variations", h.Variations)
		})
	})

	if opts.MediaDir != "" {
		router.Handle(MediaPath+"*", http.StripPrefix(MediaPath, http.FileServer(http.Dir(opts.MediaDir))))
	}

	// Serve the static frontend
	if opts.Static != nil {
		router.Handle("/*", opts.Static)
	}

	return router
}
