package transform

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jonoalderson/edge-images-sub001/internal/cache"
	"github.com/jonoalderson/edge-images-sub001/internal/domain"
	"github.com/jonoalderson/edge-images-sub001/internal/providers/edge"
)

// DefaultBreakpoints is the named-width candidate list used when the host
// does not supply its own.
var DefaultBreakpoints = []int{320, 480, 576, 768, 992, 1200, 1440, 1920}

// Generator derives srcset candidates and renders each through the provider,
// memoizing URL construction in the transform cache.
type Generator struct {
	Provider    edge.Provider
	Config      domain.ProviderConfig
	Cache       *cache.TransformCache
	Breakpoints []int
}

// TransformURL builds one provider URL through the cache. This is the
// non-markup call site used for schema and social metadata.
func (g Generator) TransformURL(ctx context.Context, ref domain.ImageRef, args domain.TransformArgs, rctx domain.Context) (string, error) {
	if err := g.Provider.Validate(g.Config); err != nil {
		return "", err
	}
	if ref.IsSVG() {
		return "", fmt.Errorf("svg source %q: %w", ref.SourceURL, domain.ErrUnsupportedSource)
	}

	build := func() (string, bool) {
		url, err := g.Provider.BuildURL(ref, args, g.Config)
		if err != nil {
			return "", false
		}
		return url, true
	}

	var (
		url string
		ok  bool
	)
	if g.Cache != nil {
		key := cache.Key{SourceURL: ref.SourceURL, Args: args.Canonical(), Context: string(rctx)}
		url, ok = g.Cache.GetOrCompute(ctx, key, build)
	} else {
		url, ok = build()
	}
	if !ok {
		return "", fmt.Errorf("source %q: %w", ref.SourceURL, domain.ErrUnsupportedSource)
	}
	return url, nil
}

// Generate computes the srcset and sizes strings for an image. An image with
// unknown intrinsic dimensions yields an empty srcset; the caller keeps only
// its primary src. A non-positive ceiling is an ErrInvalidDimensions.
func (g Generator) Generate(ctx context.Context, ref domain.ImageRef, base domain.TransformArgs, rctx domain.Context, sizesHint string) (string, string, error) {
	if err := g.Provider.Validate(g.Config); err != nil {
		return "", "", err
	}
	if !ref.Intrinsic.Valid() {
		return "", "", nil
	}

	ceiling := g.ceiling(ref.Intrinsic, base)
	if ceiling <= 0 {
		return "", "", fmt.Errorf("ceiling width %d: %w", ceiling, domain.ErrInvalidDimensions)
	}

	var candidates []domain.Candidate
	if rctx.Fixed() {
		// Fixed-size images only need the high-DPR variant; the primary
		// src already covers 1x.
		args := base.WithWidth(ceiling, ref.Intrinsic).WithDPR(2)
		url, err := g.TransformURL(ctx, ref, args, rctx)
		if err != nil {
			return "", "", err
		}
		candidates = append(candidates, domain.Candidate{URL: url, Descriptor: "2x"})
	} else {
		for _, width := range g.widths(ceiling) {
			args := base.WithWidth(width, ref.Intrinsic)
			url, err := g.TransformURL(ctx, ref, args, rctx)
			if err != nil {
				return "", "", err
			}
			candidates = append(candidates, domain.Candidate{URL: url, Descriptor: strconv.Itoa(width) + "w"})
		}
	}

	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, c.String())
	}

	sizes := strings.TrimSpace(sizesHint)
	if sizes == "" {
		sizes = fmt.Sprintf("(max-width: %dpx) 100vw, %dpx", ceiling, ceiling)
	}
	return strings.Join(parts, ", "), sizes, nil
}

// ceiling is min(intrinsic width, configured max width, requested width).
func (g Generator) ceiling(intrinsic domain.Dimensions, base domain.TransformArgs) int {
	ceiling := intrinsic.Width
	if g.Config.MaxWidth > 0 && g.Config.MaxWidth < ceiling {
		ceiling = g.Config.MaxWidth
	}
	if base.Width > 0 && base.Width < ceiling {
		ceiling = base.Width
	}
	return ceiling
}

// widths builds the strictly increasing candidate width list. The ceiling is
// always present. Breakpoints are walked from the largest down so that a
// width is discarded when it, or its 2x double, is already covered by a
// retained candidate; that avoids emitting visually redundant 1x/2x pairs.
func (g Generator) widths(ceiling int) []int {
	breakpoints := g.Breakpoints
	if len(breakpoints) == 0 {
		breakpoints = DefaultBreakpoints
	}

	sorted := append([]int(nil), breakpoints...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	retained := map[int]bool{ceiling: true}
	for _, w := range sorted {
		if w <= 0 || w >= ceiling {
			continue
		}
		if retained[w] || retained[2*w] {
			continue
		}
		retained[w] = true
	}

	widths := make([]int, 0, len(retained))
	for w := range retained {
		widths = append(widths, w)
	}
	sort.Ints(widths)
	return widths
}
