package transform

import (
	"github.com/jonoalderson/edge-images-sub001/internal/domain"
)

// Schema and social cards share one fixed crop.
const (
	socialWidth  = 1200
	socialHeight = 675
	avatarSize   = 96
)

// Resolver merges caller-supplied transform arguments with global defaults
// and context-specific defaults. The sizing steps apply in order: intrinsic
// floor, global max-width ceiling, context defaults, caller overrides; a
// later step wins over an earlier one, so schema/social crops and explicit
// caller sizes are not subject to the ceiling. It always returns fully
// populated arguments.
type Resolver struct {
	// MaxWidth is the global ceiling from configuration; zero disables it.
	MaxWidth int
	// Quality is the global default quality.
	Quality int
}

// Resolve produces the final arguments for one transformation.
func (r Resolver) Resolve(rctx domain.Context, caller domain.TransformArgs, intrinsic domain.Dimensions) domain.TransformArgs {
	out := domain.TransformArgs{
		Fit:     domain.FitCover,
		Format:  domain.FormatAuto,
		Quality: r.Quality,
		Gravity: domain.GravityAuto,
		DPR:     1,
	}
	if out.Quality <= 0 || out.Quality > 100 {
		out.Quality = 85
	}

	explicitFit := caller.Fit == domain.FitPad || caller.Fit == domain.FitContain

	// Content-derived width: the intrinsic size, or the configured ceiling
	// when intrinsic data is unknown.
	if intrinsic.Valid() {
		out.Width = intrinsic.Width
	} else if r.MaxWidth > 0 {
		out.Width = r.MaxWidth
	}

	// Global ceiling. Applies only to the content-derived width; the later
	// steps override it, so fixed platform crops and explicit caller sizes
	// pass through untouched.
	if r.MaxWidth > 0 && out.Width > r.MaxWidth {
		out.Width = r.MaxWidth
	}

	switch rctx {
	case domain.ContextSchema, domain.ContextSocial:
		out.Width = socialWidth
		out.Height = socialHeight
	case domain.ContextAvatar:
		size := caller.Width
		if size <= 0 {
			size = avatarSize
		}
		out.Width = size
		out.Height = size
		out.Sharpen = 1
	}

	// Caller overrides beat every default.
	if caller.Width > 0 {
		out.Width = caller.Width
	}
	if caller.Height > 0 {
		out.Height = caller.Height
	}
	if caller.Fit != "" {
		out.Fit = caller.Fit
	}
	if caller.Format != "" {
		out.Format = caller.Format
	}
	if caller.Quality > 0 && caller.Quality <= 100 {
		out.Quality = caller.Quality
	}
	if caller.Gravity != "" {
		out.Gravity = caller.Gravity
	}
	if caller.Sharpen > 0 {
		out.Sharpen = caller.Sharpen
	}
	if caller.DPR > 1 {
		out.DPR = caller.DPR
	}

	// Floor and small-source handling.
	if intrinsic.Valid() && out.Width > intrinsic.Width {
		switch {
		case explicitFit:
			// The caller asked for padding; keep the target size but
			// sharpen to soften upscale artifacts.
			out.Sharpen = bumpSharpen(out.Sharpen)
		case rctx.Fixed():
			// Fixed contexts must hit the exact size, so pad instead of
			// upscaling the pixels.
			out.Fit = domain.FitPad
			out.Sharpen = bumpSharpen(out.Sharpen)
		default:
			if out.Height > 0 {
				out.Height = (intrinsic.Width*out.Height + out.Width/2) / out.Width
			}
			out.Width = intrinsic.Width
		}
	}

	// Derive a proportional height when the caller left it open.
	if out.Height <= 0 && intrinsic.Valid() {
		out.Height = intrinsic.ScaleHeight(out.Width)
	}

	return out
}

func bumpSharpen(s int) int {
	s += 2
	if s > 10 {
		s = 10
	}
	return s
}
