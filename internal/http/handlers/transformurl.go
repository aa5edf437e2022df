package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
)

type transformURLResponse struct {
	URL string `json:"url"`
}

// TransformURL builds a single edge URL for a source image. Caller-supplied
// knobs are merged over context defaults exactly as the markup rewriter
// would merge them.
func (a *App) TransformURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	src := strings.TrimSpace(q.Get("src"))
	if src == "" {
		a.jsonError(w, http.StatusBadRequest, "src is required")
		return
	}

	args := domain.TransformArgs{
		Width:   queryInt(q.Get("width")),
		Height:  queryInt(q.Get("height")),
		Fit:     domain.Fit(strings.TrimSpace(q.Get("fit"))),
		Format:  domain.Format(strings.TrimSpace(q.Get("format"))),
		Quality: queryInt(q.Get("quality")),
	}
	rctx := domain.ParseContext(q.Get("context"))

	src = a.Gen.Provider.CleanURL(src, a.Gen.Config)

	ref := domain.NewImageRef(src, 0, 0)
	if ref.IsSVG() {
		a.jsonError(w, http.StatusUnprocessableEntity, "svg sources are never transformed")
		return
	}
	if a.Media != nil && !a.Media.IsLocalURL(src) {
		a.jsonError(w, http.StatusUnprocessableEntity, "source is not served by this site")
		return
	}

	if a.Media != nil {
		if dims, err := a.Media.DimensionsByURL(r.Context(), src); err == nil {
			ref.Intrinsic = dims
		} else if !errors.Is(err, domain.ErrNotFound) {
			a.Log.Debug().Err(err).Str("src", src).Msg("dimension lookup failed")
		}
	}

	resolved := a.Resolver.Resolve(rctx, args, ref.Intrinsic)

	url, err := a.Gen.TransformURL(r.Context(), ref, resolved, rctx)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnsupportedSource):
			a.jsonError(w, http.StatusUnprocessableEntity, "source cannot be transformed")
		case errors.Is(err, domain.ErrProviderMisconfigured):
			a.jsonError(w, http.StatusServiceUnavailable, "provider is not configured")
		default:
			a.Log.Error().Err(err).Str("src", src).Msg("transform url failed")
			a.jsonError(w, http.StatusInternalServerError, "transform failed")
		}
		return
	}

	a.json(w, http.StatusOK, transformURLResponse{URL: url})
}

func queryInt(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
