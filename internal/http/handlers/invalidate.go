package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
)

type invalidateRequest struct {
	SourceURL string `json:"source_url,omitempty"`
}

// Invalidate drops cached transform URLs. With a source_url only that
// image's entries go; without one the whole cache is flushed.
func (a *App) Invalidate(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if a.Cache == nil {
		a.jsonError(w, http.StatusServiceUnavailable, "cache is not configured")
		return
	}

	var err error
	src := strings.TrimSpace(req.SourceURL)
	if src == "" {
		err = a.Cache.InvalidateAll(r.Context())
	} else {
		err = a.Cache.InvalidateSource(r.Context(), src)
	}
	if err != nil {
		if errors.Is(err, domain.ErrCacheUnavailable) {
			a.jsonError(w, http.StatusServiceUnavailable, "cache unavailable")
			return
		}
		a.Log.Error().Err(err).Str("source_url", src).Msg("cache invalidation failed")
		a.jsonError(w, http.StatusInternalServerError, "invalidation failed")
		return
	}

	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
