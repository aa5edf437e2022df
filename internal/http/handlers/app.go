package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jonoalderson/edge-images-sub001/internal/cache"
	"github.com/jonoalderson/edge-images-sub001/internal/media"
	"github.com/jonoalderson/edge-images-sub001/internal/providers/edge"
	"github.com/jonoalderson/edge-images-sub001/internal/rewrite"
	"github.com/jonoalderson/edge-images-sub001/internal/transform"
)

// App carries the wired engine components into the HTTP handlers.
type App struct {
	Log      zerolog.Logger
	Registry *edge.Registry
	Rewriter *rewrite.Rewriter
	Gen      transform.Generator
	Resolver transform.Resolver
	Media    media.Repository
	Cache    *cache.TransformCache
}

// NewApp builds the handler container.
func NewApp(log zerolog.Logger, registry *edge.Registry, rw *rewrite.Rewriter, gen transform.Generator, resolver transform.Resolver, repo media.Repository, tc *cache.TransformCache) *App {
	return &App{
		Log:      log,
		Registry: registry,
		Rewriter: rw,
		Gen:      gen,
		Resolver: resolver,
		Media:    repo,
		Cache:    tc,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) jsonError(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}
