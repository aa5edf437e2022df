package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
	"github.com/jonoalderson/edge-images-sub001/internal/feature"
	"github.com/jonoalderson/edge-images-sub001/internal/media"
	"github.com/jonoalderson/edge-images-sub001/internal/transform"
)

const (
	// MarkerClass marks an <img> that has already been rewritten. Its
	// presence makes a second pass a no-op.
	MarkerClass = "edge-images-img"

	// ContainerClass is the base class of the wrapping container.
	ContainerClass = "edge-images-container"
)

// Options adjust a single rewrite call.
type Options struct {
	// Context names the rendering situation; defaults to ContextDefault.
	Context domain.Context

	// Sizes overrides the generated sizes attribute.
	Sizes string

	// ContainerClasses are appended to the container's class list.
	ContainerClasses []string

	// Veto lets a collaborator (e.g. a page-builder integration) exclude
	// a tag from transformation.
	Veto func(img *Tag) bool
}

// Rewriter mutates <img> markup to serve through the edge provider. Every
// failure mode returns the input unchanged; rewriting never breaks page
// rendering.
type Rewriter struct {
	gate     *feature.Gate
	gen      transform.Generator
	resolver transform.Resolver
	media    media.Repository
	log      zerolog.Logger
}

// New builds a Rewriter. media may be nil when no metadata collaborator is
// available; intrinsic dimensions then come only from tag attributes.
func New(gate *feature.Gate, gen transform.Generator, resolver transform.Resolver, repo media.Repository, log zerolog.Logger) *Rewriter {
	return &Rewriter{gate: gate, gen: gen, resolver: resolver, media: repo, log: log}
}

// Rewrite processes one HTML fragment containing an <img>, optionally
// wrapped by an <a>. Only the first image is considered; use RewriteAll for
// documents with several.
func (rw *Rewriter) Rewrite(ctx context.Context, input string, opts Options) domain.RewriteResult {
	unchanged := domain.RewriteResult{HTML: input, Transformed: false}

	if opts.Context == "" {
		opts.Context = domain.ContextDefault
	}
	if !rw.gate.Enabled() || !rw.gate.ProviderConfigured() {
		return unchanged
	}
	if opts.Context == domain.ContextAvatar && !rw.gate.FeatureEnabled("avatars") {
		return unchanged
	}

	frag, ok := scanFragment(input)
	if !ok {
		return unchanged
	}
	img := frag.img

	if img.HasClass(MarkerClass) {
		return unchanged
	}
	if opts.Veto != nil && opts.Veto(img) {
		return unchanged
	}

	src, ok := img.Attr("src")
	src = strings.TrimSpace(src)
	if !ok || src == "" {
		return unchanged
	}

	// Strip any prior rewrite so recomputation starts from the origin URL.
	src = rw.gen.Provider.CleanURL(src, rw.gen.Config)

	ref := domain.NewImageRef(src, 0, 0)
	if ref.IsSVG() {
		return unchanged
	}
	if rw.media != nil && !rw.media.IsLocalURL(src) {
		return unchanged
	}

	ref.Intrinsic = rw.intrinsic(ctx, img, src)

	args := rw.resolver.Resolve(opts.Context, domain.TransformArgs{}, ref.Intrinsic)

	primary, err := rw.gen.TransformURL(ctx, ref, args, opts.Context)
	if err != nil {
		rw.log.Warn().Err(err).Str("src", src).Msg("transform url failed, leaving markup unchanged")
		return unchanged
	}

	srcset, sizes, err := rw.gen.Generate(ctx, ref, args, opts.Context, opts.Sizes)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDimensions) {
			rw.log.Debug().Str("src", src).Msg("invalid dimensions, leaving markup unchanged")
		} else {
			rw.log.Warn().Err(err).Str("src", src).Msg("srcset generation failed, leaving markup unchanged")
		}
		return unchanged
	}

	img.SetAttr("src", primary)
	if srcset != "" {
		img.SetAttr("srcset", srcset)
		img.SetAttr("sizes", sizes)
	} else {
		img.RemoveAttr("srcset")
		img.RemoveAttr("sizes")
	}

	// The tag keeps its original intrinsic dimensions so the browser
	// reserves the right aspect ratio, regardless of the transform size.
	if ref.Intrinsic.Valid() {
		img.SetAttr("width", strconv.Itoa(ref.Intrinsic.Width))
		img.SetAttr("height", strconv.Itoa(ref.Intrinsic.Height))
	}
	img.AddClass(MarkerClass)

	inner := frag.anchorOpen + frag.innerBefore + img.String() + frag.innerAfter + frag.anchorClose

	if rw.gate.PictureWrapEnabled() && ref.Intrinsic.Valid() {
		maxWidth := ref.Intrinsic.Width
		if rw.gen.Config.MaxWidth > 0 && rw.gen.Config.MaxWidth < maxWidth {
			maxWidth = rw.gen.Config.MaxWidth
		}
		classes := ContainerClass
		for _, c := range opts.ContainerClasses {
			if c = strings.TrimSpace(c); c != "" {
				classes += " " + c
			}
		}
		container := fmt.Sprintf(`<picture class="%s" style="--max-width: %dpx;">%s</picture>`, classes, maxWidth, inner)
		return domain.RewriteResult{HTML: frag.prefix + container + frag.suffix, Transformed: true}
	}

	return domain.RewriteResult{HTML: frag.prefix + inner + frag.suffix, Transformed: true}
}

// RewriteAll processes a whole document, rewriting every <img> in turn.
// Each image is handled independently; failures leave that image alone and
// processing continues with the next one.
func (rw *Rewriter) RewriteAll(ctx context.Context, input string, opts Options) domain.RewriteResult {
	var (
		out         strings.Builder
		transformed bool
	)
	rest := input
	for {
		frag, ok := scanFragment(rest)
		if !ok {
			out.WriteString(rest)
			break
		}
		// Rewrite the chunk up to and including this image, then continue
		// with whatever follows it. An anchor holding several images is
		// split right after each one, so every image inside it still gets
		// its own pass and its own container.
		cut := len(rest) - len(frag.suffix)
		if frag.anchorOpen != "" && strings.Contains(strings.ToLower(frag.innerAfter), "<img") {
			cut = len(frag.prefix) + len(frag.anchorOpen) + len(frag.innerBefore) + len(frag.imgRaw)
		}
		res := rw.Rewrite(ctx, rest[:cut], opts)
		out.WriteString(res.HTML)
		transformed = transformed || res.Transformed
		rest = rest[cut:]
	}
	return domain.RewriteResult{HTML: out.String(), Transformed: transformed}
}

// intrinsic resolves the image's original dimensions: tag attributes first,
// the metadata collaborator second. A zero value means unknown.
func (rw *Rewriter) intrinsic(ctx context.Context, img *Tag, src string) domain.Dimensions {
	if w, h := attrInt(img, "width"), attrInt(img, "height"); w > 0 && h > 0 {
		return domain.Dimensions{Width: w, Height: h}
	}
	if rw.media == nil {
		return domain.Dimensions{}
	}
	dims, err := rw.media.DimensionsByURL(ctx, src)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			rw.log.Debug().Err(err).Str("src", src).Msg("dimension lookup failed")
		}
		return domain.Dimensions{}
	}
	return dims
}

func attrInt(t *Tag, key string) int {
	val, ok := t.Attr(key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
