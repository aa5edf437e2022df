package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/jonoalderson/edge-images-sub001/internal/http/handlers"
	"github.com/jonoalderson/edge-images-sub001/internal/middleware"
)

// Options tune the router's middleware stack.
type Options struct {
	Log             zerolog.Logger
	RateLimitPerMin int
	AllowedOrigins  []string
}

// NewRouter wires the API routes with the shared middleware stack.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Log),
	)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/providers", app.Providers)
	r.Get("/v1/transform-url", app.TransformURL)
	r.Post("/v1/rewrite", app.Rewrite)
	r.Post("/v1/invalidate", app.Invalidate)

	return r
}
