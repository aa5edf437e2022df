package rewrite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonoalderson/edge-images-sub001/internal/cache"
	"github.com/jonoalderson/edge-images-sub001/internal/domain"
	"github.com/jonoalderson/edge-images-sub001/internal/feature"
	"github.com/jonoalderson/edge-images-sub001/internal/media"
	"github.com/jonoalderson/edge-images-sub001/internal/providers/edge"
	"github.com/jonoalderson/edge-images-sub001/internal/transform"
)

type rewriterConfig struct {
	enabled     bool
	pictureWrap bool
	disabled    []string
	maxWidth    int
}

func newTestRewriter(t *testing.T, cfg rewriterConfig) (*Rewriter, *media.MemoryRepository) {
	t.Helper()

	provider := edge.NewCloudflare()
	pcfg := domain.ProviderConfig{
		ID:       "cloudflare",
		Domain:   "site.test",
		MaxWidth: cfg.maxWidth,
		Quality:  85,
	}
	gate := feature.NewGate(feature.Config{
		Enabled:          cfg.enabled,
		PictureWrap:      cfg.pictureWrap,
		DisabledFeatures: cfg.disabled,
		Provider:         provider,
		ProviderConfig:   pcfg,
	})
	gen := transform.Generator{
		Provider: provider,
		Config:   pcfg,
		Cache:    cache.New(cache.NewMemoryStore(), time.Minute, zerolog.Nop()),
	}
	resolver := transform.Resolver{MaxWidth: cfg.maxWidth, Quality: 85}
	repo := media.NewMemoryRepository("site.test")

	return New(gate, gen, resolver, repo, zerolog.Nop()), repo
}

func TestRewriteEndToEnd(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<img src="https://site.test/img.jpg" width="1600" height="900">`

	res := rw.Rewrite(context.Background(), input, Options{})
	if !res.Transformed {
		t.Fatalf("not transformed: %q", res.HTML)
	}
	for _, want := range []string{
		"width=650",
		"height=366",
		`width="1600"`,
		`height="900"`,
		"--max-width: 650px",
		`class="edge-images-container"`,
		"/cdn-cgi/image/",
		MarkerClass,
		"srcset=",
		"sizes=",
	} {
		if !strings.Contains(res.HTML, want) {
			t.Fatalf("output missing %q:\n%s", want, res.HTML)
		}
	}
}

func TestRewriteIdempotent(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<img src="https://site.test/img.jpg" width="1600" height="900">`

	first := rw.Rewrite(context.Background(), input, Options{})
	second := rw.Rewrite(context.Background(), first.HTML, Options{})

	if second.Transformed {
		t.Fatalf("second pass should be a no-op")
	}
	if second.HTML != first.HTML {
		t.Fatalf("second pass changed output:\nfirst:  %s\nsecond: %s", first.HTML, second.HTML)
	}
}

func TestRewriteSkipsSVG(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<img src="https://site.test/a.svg" width="100" height="100">`

	res := rw.Rewrite(context.Background(), input, Options{})
	if res.Transformed || res.HTML != input {
		t.Fatalf("svg should pass through unchanged, got %q", res.HTML)
	}
}

func TestRewriteSkipsWithoutImg(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<p>no images here</p>`

	res := rw.Rewrite(context.Background(), input, Options{})
	if res.Transformed || res.HTML != input {
		t.Fatalf("fragment without img should pass through, got %q", res.HTML)
	}
}

func TestRewriteSkipsProcessedMarker(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<img class="` + MarkerClass + `" src="https://site.test/img.jpg" width="800" height="600">`

	res := rw.Rewrite(context.Background(), input, Options{})
	if res.Transformed || res.HTML != input {
		t.Fatalf("marked img should pass through, got %q", res.HTML)
	}
}

func TestRewriteSkipsWhenVetoed(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<img src="https://site.test/img.jpg" width="800" height="600" data-builder="1">`

	res := rw.Rewrite(context.Background(), input, Options{
		Veto: func(img *Tag) bool {
			_, ok := img.Attr("data-builder")
			return ok
		},
	})
	if res.Transformed || res.HTML != input {
		t.Fatalf("vetoed img should pass through, got %q", res.HTML)
	}
}

func TestRewriteSkipsRemoteSource(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<img src="https://elsewhere.test/img.jpg" width="800" height="600">`

	res := rw.Rewrite(context.Background(), input, Options{})
	if res.Transformed || res.HTML != input {
		t.Fatalf("remote source should pass through, got %q", res.HTML)
	}
}

func TestRewriteSkipsWhenDisabled(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: false, pictureWrap: true, maxWidth: 650})
	input := `<img src="https://site.test/img.jpg" width="800" height="600">`

	res := rw.Rewrite(context.Background(), input, Options{})
	if res.Transformed || res.HTML != input {
		t.Fatalf("disabled engine should pass through, got %q", res.HTML)
	}
}

func TestRewriteAvatarFeatureOptOut(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{
		enabled:     true,
		pictureWrap: true,
		maxWidth:    650,
		disabled:    []string{"avatars"},
	})
	input := `<img src="https://site.test/avatar.jpg" width="96" height="96">`

	res := rw.Rewrite(context.Background(), input, Options{Context: domain.ContextAvatar})
	if res.Transformed || res.HTML != input {
		t.Fatalf("avatar opt-out should pass through, got %q", res.HTML)
	}
}

func TestRewritePreservesAnchor(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<a href="https://site.test/page"><img src="https://site.test/img.jpg" width="800" height="600"></a>`

	res := rw.Rewrite(context.Background(), input, Options{})
	if !res.Transformed {
		t.Fatalf("not transformed: %q", res.HTML)
	}
	if strings.Count(res.HTML, "<a ") != 1 || strings.Count(res.HTML, "</a>") != 1 {
		t.Fatalf("anchor duplicated or lost:\n%s", res.HTML)
	}

	picture := strings.Index(res.HTML, "<picture")
	anchor := strings.Index(res.HTML, "<a ")
	img := strings.Index(res.HTML, "<img")
	anchorClose := strings.Index(res.HTML, "</a>")
	pictureClose := strings.Index(res.HTML, "</picture>")
	if !(picture < anchor && anchor < img && img < anchorClose && anchorClose < pictureClose) {
		t.Fatalf("anchor not re-applied inside container:\n%s", res.HTML)
	}
}

func TestRewriteWithoutPictureWrap(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: false, maxWidth: 650})
	input := `<img src="https://site.test/img.jpg" width="1600" height="900">`

	res := rw.Rewrite(context.Background(), input, Options{})
	if !res.Transformed {
		t.Fatalf("not transformed: %q", res.HTML)
	}
	if strings.Contains(res.HTML, "<picture") {
		t.Fatalf("container emitted with picture wrap disabled:\n%s", res.HTML)
	}
	if !strings.Contains(res.HTML, "/cdn-cgi/image/") {
		t.Fatalf("src not rewritten:\n%s", res.HTML)
	}
}

func TestRewriteUsesMetadataRepoForDimensions(t *testing.T) {
	rw, repo := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	repo.Add("https://site.test/known.jpg", "7", 1200, 800)
	input := `<img src="https://site.test/known.jpg">`

	res := rw.Rewrite(context.Background(), input, Options{})
	if !res.Transformed {
		t.Fatalf("not transformed: %q", res.HTML)
	}
	if !strings.Contains(res.HTML, `width="1200"`) || !strings.Contains(res.HTML, `height="800"`) {
		t.Fatalf("intrinsic dimensions not restored from metadata:\n%s", res.HTML)
	}
	if !strings.Contains(res.HTML, "srcset=") {
		t.Fatalf("srcset missing:\n%s", res.HTML)
	}
}

func TestRewriteUnknownDimensionsKeepsSrcOnly(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<img src="https://site.test/mystery.jpg">`

	res := rw.Rewrite(context.Background(), input, Options{})
	if !res.Transformed {
		t.Fatalf("not transformed: %q", res.HTML)
	}
	if strings.Contains(res.HTML, "srcset=") {
		t.Fatalf("srcset should be absent without intrinsic dimensions:\n%s", res.HTML)
	}
	if strings.Contains(res.HTML, "<picture") {
		t.Fatalf("container requires resolved dimensions:\n%s", res.HTML)
	}
	if !strings.Contains(res.HTML, "/cdn-cgi/image/") {
		t.Fatalf("src not rewritten:\n%s", res.HTML)
	}
}

func TestRewriteAllProcessesEveryImage(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<h1>Gallery</h1>` +
		`<img src="https://site.test/a.jpg" width="800" height="600">` +
		`<p>between</p>` +
		`<img src="https://site.test/b.jpg" width="1600" height="900">` +
		`<p>end</p>`

	res := rw.RewriteAll(context.Background(), input, Options{})
	if !res.Transformed {
		t.Fatalf("not transformed: %q", res.HTML)
	}
	if got := strings.Count(res.HTML, MarkerClass); got != 2 {
		t.Fatalf("marked images = %d, want 2:\n%s", got, res.HTML)
	}
	if !strings.HasPrefix(res.HTML, "<h1>Gallery</h1>") || !strings.HasSuffix(res.HTML, "<p>end</p>") {
		t.Fatalf("surrounding markup disturbed:\n%s", res.HTML)
	}
	if !strings.Contains(res.HTML, "<p>between</p>") {
		t.Fatalf("separator lost:\n%s", res.HTML)
	}
}

func TestRewriteAllSkipsOnlyUntouchableImages(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<img src="https://site.test/a.svg" width="100" height="100">` +
		`<img src="https://site.test/b.jpg" width="800" height="600">`

	res := rw.RewriteAll(context.Background(), input, Options{})
	if !res.Transformed {
		t.Fatalf("not transformed: %q", res.HTML)
	}
	if !strings.HasPrefix(res.HTML, `<img src="https://site.test/a.svg"`) {
		t.Fatalf("svg should stay untouched:\n%s", res.HTML)
	}
	if got := strings.Count(res.HTML, MarkerClass); got != 1 {
		t.Fatalf("marked images = %d, want 1:\n%s", got, res.HTML)
	}
}

func TestRewriteAllHandlesAnchorWithTwoImages(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<a href="https://site.test/gallery">` +
		`<img src="https://site.test/a.jpg" width="800" height="600">` +
		`<img src="https://site.test/b.jpg" width="1600" height="900">` +
		`</a>`

	res := rw.RewriteAll(context.Background(), input, Options{})
	if !res.Transformed {
		t.Fatalf("not transformed: %q", res.HTML)
	}
	if got := strings.Count(res.HTML, MarkerClass); got != 2 {
		t.Fatalf("marked images = %d, want 2:\n%s", got, res.HTML)
	}
	if got := strings.Count(res.HTML, "<picture"); got != 2 {
		t.Fatalf("containers = %d, want 2:\n%s", got, res.HTML)
	}
	if strings.Count(res.HTML, "<a ") != 1 || strings.Count(res.HTML, "</a>") != 1 {
		t.Fatalf("anchor duplicated or lost:\n%s", res.HTML)
	}
	if !strings.HasPrefix(res.HTML, `<a href="https://site.test/gallery">`) || !strings.HasSuffix(res.HTML, "</a>") {
		t.Fatalf("anchor no longer encloses the images:\n%s", res.HTML)
	}
}

func TestRewriteKeepsSurroundingMarkup(t *testing.T) {
	rw, _ := newTestRewriter(t, rewriterConfig{enabled: true, pictureWrap: true, maxWidth: 650})
	input := `<p>Intro</p><img src="https://site.test/img.jpg" width="800" height="600"><p>Outro</p>`

	res := rw.Rewrite(context.Background(), input, Options{})
	if !res.Transformed {
		t.Fatalf("not transformed: %q", res.HTML)
	}
	if !strings.HasPrefix(res.HTML, "<p>Intro</p>") || !strings.HasSuffix(res.HTML, "<p>Outro</p>") {
		t.Fatalf("surrounding markup disturbed:\n%s", res.HTML)
	}
}
