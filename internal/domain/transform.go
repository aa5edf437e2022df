package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Fit controls how the edge resizes when both dimensions are present.
type Fit string

const (
	FitCover     Fit = "cover"
	FitContain   Fit = "contain"
	FitPad       Fit = "pad"
	FitScaleDown Fit = "scale-down"
)

// Format selects the output encoding. FormatAuto lets the edge negotiate
// the best format with the browser.
type Format string

const (
	FormatAuto Format = "auto"
	FormatWebP Format = "webp"
	FormatAVIF Format = "avif"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// Gravity selects the crop focal point.
type Gravity string

const (
	GravityAuto   Gravity = "auto"
	GravityCenter Gravity = "center"
	GravityNorth  Gravity = "north"
	GravitySouth  Gravity = "south"
	GravityEast   Gravity = "east"
	GravityWest   Gravity = "west"
)

// Context names the rendering situation an image is being prepared for.
// Fixed contexts always render at one exact size and only need a high-DPR
// variant; responsive contexts get a multi-width srcset.
type Context string

const (
	ContextDefault Context = "default"
	ContextSchema  Context = "schema"
	ContextSocial  Context = "social"
	ContextAvatar  Context = "avatar"
)

// Fixed reports whether the context renders at one exact size.
func (c Context) Fixed() bool {
	return c == ContextAvatar
}

// ParseContext maps a caller-supplied context name onto a known Context.
// Empty and unknown names fall back to ContextDefault.
func ParseContext(name string) Context {
	switch Context(strings.ToLower(strings.TrimSpace(name))) {
	case ContextSchema:
		return ContextSchema
	case ContextSocial:
		return ContextSocial
	case ContextAvatar:
		return ContextAvatar
	default:
		return ContextDefault
	}
}

// TransformArgs is the full set of knobs handed to a provider. Instances are
// copied on merge and never mutated after being handed to a provider.
type TransformArgs struct {
	Width   int
	Height  int
	Fit     Fit
	Format  Format
	Quality int
	Gravity Gravity
	Sharpen int
	DPR     int
}

// WithWidth returns a copy with the width (and proportional height, when
// intrinsic dimensions are known) replaced.
func (a TransformArgs) WithWidth(width int, intrinsic Dimensions) TransformArgs {
	out := a
	out.Width = width
	if intrinsic.Valid() {
		out.Height = intrinsic.ScaleHeight(width)
	} else {
		out.Height = 0
	}
	return out
}

// WithDPR returns a copy scaled for a device pixel ratio.
func (a TransformArgs) WithDPR(dpr int) TransformArgs {
	out := a
	if dpr > 0 {
		out.DPR = dpr
	}
	return out
}

// Pairs returns the populated arguments as canonical key/value pairs in
// sorted key order. Providers translate keys but must keep this ordering so
// URLs are deterministic for identical logical arguments.
func (a TransformArgs) Pairs() [][2]string {
	m := map[string]string{}
	if a.Width > 0 {
		m["width"] = strconv.Itoa(a.Width)
	}
	if a.Height > 0 {
		m["height"] = strconv.Itoa(a.Height)
	}
	if a.Fit != "" {
		m["fit"] = string(a.Fit)
	}
	if a.Format != "" {
		m["format"] = string(a.Format)
	}
	if a.Quality > 0 {
		m["quality"] = strconv.Itoa(a.Quality)
	}
	if a.Gravity != "" {
		m["gravity"] = string(a.Gravity)
	}
	if a.Sharpen > 0 {
		m["sharpen"] = strconv.Itoa(a.Sharpen)
	}
	if a.DPR > 1 {
		m["dpr"] = strconv.Itoa(a.DPR)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, m[k]})
	}
	return pairs
}

// Canonical serializes the arguments as "k=v,k=v" in sorted key order. Used
// for cache keys and anywhere a stable identity for the arguments is needed.
func (a TransformArgs) Canonical() string {
	pairs := a.Pairs()
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p[0]+"="+p[1])
	}
	return strings.Join(parts, ",")
}
