package transform

import (
	"testing"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
)

func TestResolveDefaultContext(t *testing.T) {
	r := Resolver{MaxWidth: 650, Quality: 85}
	got := r.Resolve(domain.ContextDefault, domain.TransformArgs{}, domain.Dimensions{Width: 1600, Height: 900})

	if got.Width != 650 {
		t.Fatalf("width = %d, want 650", got.Width)
	}
	if got.Height != 366 {
		t.Fatalf("height = %d, want 366", got.Height)
	}
	if got.Fit != domain.FitCover || got.Format != domain.FormatAuto {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.Quality != 85 {
		t.Fatalf("quality = %d, want 85", got.Quality)
	}
	if got.DPR != 1 {
		t.Fatalf("dpr = %d, want 1", got.DPR)
	}
}

func TestResolveCallerOverridesBeatDefaults(t *testing.T) {
	r := Resolver{MaxWidth: 2000, Quality: 85}
	caller := domain.TransformArgs{Width: 300, Quality: 60, Format: domain.FormatWebP, Fit: domain.FitContain}
	got := r.Resolve(domain.ContextDefault, caller, domain.Dimensions{Width: 1600, Height: 900})

	if got.Width != 300 || got.Quality != 60 || got.Format != domain.FormatWebP || got.Fit != domain.FitContain {
		t.Fatalf("caller overrides lost: %+v", got)
	}
}

func TestResolveNeverUpscales(t *testing.T) {
	r := Resolver{MaxWidth: 2000, Quality: 85}
	got := r.Resolve(domain.ContextDefault, domain.TransformArgs{Width: 1200}, domain.Dimensions{Width: 400, Height: 300})

	if got.Width != 400 {
		t.Fatalf("width = %d, want clamped 400", got.Width)
	}
	if got.Height != 300 {
		t.Fatalf("height = %d, want 300", got.Height)
	}
}

func TestResolveExplicitPadAllowsUpscale(t *testing.T) {
	r := Resolver{MaxWidth: 2000, Quality: 85}
	got := r.Resolve(domain.ContextDefault, domain.TransformArgs{Width: 1200, Fit: domain.FitPad}, domain.Dimensions{Width: 400, Height: 300})

	if got.Width != 1200 {
		t.Fatalf("width = %d, want requested 1200", got.Width)
	}
	if got.Fit != domain.FitPad {
		t.Fatalf("fit = %q, want pad", got.Fit)
	}
	if got.Sharpen == 0 {
		t.Fatalf("sharpen should increase for upscaled output")
	}
}

func TestResolveSchemaContext(t *testing.T) {
	r := Resolver{MaxWidth: 2000, Quality: 85}
	got := r.Resolve(domain.ContextSchema, domain.TransformArgs{}, domain.Dimensions{Width: 4000, Height: 3000})

	if got.Width != 1200 || got.Height != 675 {
		t.Fatalf("schema crop = %dx%d, want 1200x675", got.Width, got.Height)
	}
	if got.Fit != domain.FitCover {
		t.Fatalf("fit = %q, want cover", got.Fit)
	}
}

func TestResolveAvatarContext(t *testing.T) {
	r := Resolver{MaxWidth: 2000, Quality: 85}
	got := r.Resolve(domain.ContextAvatar, domain.TransformArgs{}, domain.Dimensions{Width: 512, Height: 512})

	if got.Width != 96 || got.Height != 96 {
		t.Fatalf("avatar size = %dx%d, want 96x96", got.Width, got.Height)
	}
	if got.Fit != domain.FitCover {
		t.Fatalf("fit = %q, want cover", got.Fit)
	}
	if got.Sharpen == 0 {
		t.Fatalf("avatar context should sharpen")
	}
}

func TestResolveSmallSourceFixedContextPads(t *testing.T) {
	r := Resolver{MaxWidth: 2000, Quality: 85}
	got := r.Resolve(domain.ContextAvatar, domain.TransformArgs{Width: 96}, domain.Dimensions{Width: 64, Height: 64})

	if got.Width != 96 {
		t.Fatalf("width = %d, want exact 96", got.Width)
	}
	if got.Fit != domain.FitPad {
		t.Fatalf("fit = %q, want pad for small source", got.Fit)
	}
}

func TestResolveCeilingScalesHeight(t *testing.T) {
	r := Resolver{MaxWidth: 650, Quality: 85}
	got := r.Resolve(domain.ContextDefault, domain.TransformArgs{}, domain.Dimensions{Width: 1600, Height: 900})

	if got.Width != 650 || got.Height != 366 {
		t.Fatalf("resolved = %dx%d, want 650x366", got.Width, got.Height)
	}
}

func TestResolveSchemaContextSurvivesCeiling(t *testing.T) {
	r := Resolver{MaxWidth: 650, Quality: 85}
	got := r.Resolve(domain.ContextSchema, domain.TransformArgs{}, domain.Dimensions{Width: 4000, Height: 3000})

	if got.Width != 1200 || got.Height != 675 {
		t.Fatalf("schema crop under 650 ceiling = %dx%d, want 1200x675", got.Width, got.Height)
	}
	if got.Fit != domain.FitCover {
		t.Fatalf("fit = %q, want cover", got.Fit)
	}
}

func TestResolveSocialContextSurvivesCeiling(t *testing.T) {
	r := Resolver{MaxWidth: 650, Quality: 85}
	got := r.Resolve(domain.ContextSocial, domain.TransformArgs{}, domain.Dimensions{Width: 2400, Height: 1600})

	if got.Width != 1200 || got.Height != 675 {
		t.Fatalf("social crop under 650 ceiling = %dx%d, want 1200x675", got.Width, got.Height)
	}
}

func TestResolveCallerWidthBeatsCeiling(t *testing.T) {
	r := Resolver{MaxWidth: 650, Quality: 85}
	got := r.Resolve(domain.ContextDefault, domain.TransformArgs{Width: 1600, Height: 900}, domain.Dimensions{Width: 1600, Height: 900})

	if got.Width != 1600 || got.Height != 900 {
		t.Fatalf("caller size = %dx%d, want 1600x900", got.Width, got.Height)
	}
}

func TestResolveUnknownIntrinsic(t *testing.T) {
	r := Resolver{MaxWidth: 650, Quality: 85}
	got := r.Resolve(domain.ContextDefault, domain.TransformArgs{}, domain.Dimensions{})

	if got.Width != 650 {
		t.Fatalf("width = %d, want ceiling 650", got.Width)
	}
	if got.Height != 0 {
		t.Fatalf("height = %d, want 0 (provider scales proportionally)", got.Height)
	}
}
