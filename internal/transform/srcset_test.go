package transform

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonoalderson/edge-images-sub001/internal/cache"
	"github.com/jonoalderson/edge-images-sub001/internal/domain"
	"github.com/jonoalderson/edge-images-sub001/internal/providers/edge"
)

func newGenerator(maxWidth int) Generator {
	return Generator{
		Provider: edge.NewCloudflare(),
		Config:   domain.ProviderConfig{ID: "cloudflare", Domain: "site.test", MaxWidth: maxWidth},
		Cache:    cache.New(cache.NewMemoryStore(), time.Minute, zerolog.Nop()),
	}
}

func descriptorWidths(t *testing.T, srcset string) []int {
	t.Helper()
	var widths []int
	for _, part := range strings.Split(srcset, ", ") {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			t.Fatalf("malformed candidate %q", part)
		}
		if !strings.HasSuffix(fields[1], "w") {
			t.Fatalf("descriptor %q is not width-based", fields[1])
		}
		w, err := strconv.Atoi(strings.TrimSuffix(fields[1], "w"))
		if err != nil {
			t.Fatalf("descriptor %q: %v", fields[1], err)
		}
		widths = append(widths, w)
	}
	return widths
}

func TestGenerateMonotonicWithinCeiling(t *testing.T) {
	g := newGenerator(650)
	ref := domain.NewImageRef("https://site.test/img.jpg", 1600, 900)
	base := domain.TransformArgs{Width: 650, Height: 366, Quality: 85}

	srcset, sizes, err := g.Generate(context.Background(), ref, base, domain.ContextDefault, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	widths := descriptorWidths(t, srcset)
	for i, w := range widths {
		if w > 650 {
			t.Fatalf("candidate width %d exceeds ceiling 650", w)
		}
		if i > 0 && w <= widths[i-1] {
			t.Fatalf("widths not strictly increasing: %v", widths)
		}
	}
	if widths[len(widths)-1] != 650 {
		t.Fatalf("ceiling width missing from candidates: %v", widths)
	}

	want := "(max-width: 650px) 100vw, 650px"
	if sizes != want {
		t.Fatalf("sizes = %q, want %q", sizes, want)
	}
}

func TestGenerateSizesHintWins(t *testing.T) {
	g := newGenerator(650)
	ref := domain.NewImageRef("https://site.test/img.jpg", 1600, 900)

	_, sizes, err := g.Generate(context.Background(), ref, domain.TransformArgs{Width: 650}, domain.ContextDefault, "100vw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sizes != "100vw" {
		t.Fatalf("sizes = %q, want caller hint", sizes)
	}
}

func TestGenerateDiscardsRedundantHalfWidths(t *testing.T) {
	g := newGenerator(0)
	g.Breakpoints = []int{300, 600, 1200}
	ref := domain.NewImageRef("https://site.test/img.jpg", 2400, 1600)

	srcset, _, err := g.Generate(context.Background(), ref, domain.TransformArgs{Width: 2400}, domain.ContextDefault, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	widths := descriptorWidths(t, srcset)

	// 1200 is dropped because the 2400 candidate already serves it at 2x;
	// 600 is then retained, which in turn drops 300.
	want := []int{600, 2400}
	if len(widths) != len(want) {
		t.Fatalf("widths = %v, want %v", widths, want)
	}
	for i := range want {
		if widths[i] != want[i] {
			t.Fatalf("widths = %v, want %v", widths, want)
		}
	}
}

func TestGenerateFixedContextSingleHighDPR(t *testing.T) {
	g := newGenerator(0)
	ref := domain.NewImageRef("https://site.test/avatar.jpg", 96, 96)
	base := domain.TransformArgs{Width: 96, Height: 96, Fit: domain.FitCover}

	srcset, _, err := g.Generate(context.Background(), ref, base, domain.ContextAvatar, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(srcset, ", ") {
		t.Fatalf("fixed context should emit one candidate: %q", srcset)
	}
	if !strings.HasSuffix(srcset, " 2x") {
		t.Fatalf("descriptor should be 2x: %q", srcset)
	}
	if strings.Contains(srcset, "1x") || strings.Contains(srcset, "96w") {
		t.Fatalf("fixed context must not emit 1x or width descriptors: %q", srcset)
	}
	if !strings.Contains(srcset, "dpr=2") {
		t.Fatalf("high-DPR argument missing: %q", srcset)
	}
}

func TestGenerateUnknownIntrinsicEmptySrcset(t *testing.T) {
	g := newGenerator(650)
	ref := domain.NewImageRef("https://site.test/img.jpg", 0, 0)

	srcset, sizes, err := g.Generate(context.Background(), ref, domain.TransformArgs{Width: 650}, domain.ContextDefault, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srcset != "" || sizes != "" {
		t.Fatalf("expected empty srcset for unknown intrinsic, got %q / %q", srcset, sizes)
	}
}

func TestGenerateMisconfiguredProvider(t *testing.T) {
	g := Generator{Provider: edge.NewCloudflare(), Config: domain.ProviderConfig{}}
	ref := domain.NewImageRef("https://site.test/img.jpg", 1600, 900)

	_, _, err := g.Generate(context.Background(), ref, domain.TransformArgs{Width: 650}, domain.ContextDefault, "")
	if !errors.Is(err, domain.ErrProviderMisconfigured) {
		t.Fatalf("err = %v, want ErrProviderMisconfigured", err)
	}
}

func TestTransformURLCachesComputation(t *testing.T) {
	store := cache.NewMemoryStore()
	g := Generator{
		Provider: edge.NewCloudflare(),
		Config:   domain.ProviderConfig{Domain: "site.test"},
		Cache:    cache.New(store, time.Minute, zerolog.Nop()),
	}
	ref := domain.NewImageRef("https://site.test/img.jpg", 1600, 900)
	args := domain.TransformArgs{Width: 650, Height: 366}

	first, err := g.TransformURL(context.Background(), ref, args, domain.ContextDefault)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := g.TransformURL(context.Background(), ref, args, domain.ContextDefault)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("urls differ: %q vs %q", first, second)
	}
	if store.Len() != 1 {
		t.Fatalf("cache entries = %d, want 1", store.Len())
	}
}

func TestTransformURLRejectsSVG(t *testing.T) {
	g := newGenerator(650)
	ref := domain.NewImageRef("https://site.test/logo.svg", 0, 0)

	_, err := g.TransformURL(context.Background(), ref, domain.TransformArgs{Width: 100}, domain.ContextDefault)
	if !errors.Is(err, domain.ErrUnsupportedSource) {
		t.Fatalf("err = %v, want ErrUnsupportedSource", err)
	}
}
