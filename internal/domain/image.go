package domain

import (
	"net/url"
	"strings"
)

// Dimensions holds an intrinsic pixel width and height.
type Dimensions struct {
	Width  int
	Height int
}

// Valid reports whether both sides are positive.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// ScaleHeight returns the height that preserves the aspect ratio at the
// given width, rounded to the nearest pixel.
func (d Dimensions) ScaleHeight(width int) int {
	if !d.Valid() || width <= 0 {
		return 0
	}
	return (width*d.Height + d.Width/2) / d.Width
}

// ImageRef identifies a source image prior to any transformation. It is
// immutable once constructed.
type ImageRef struct {
	SourceURL string
	Intrinsic Dimensions
}

// NewImageRef builds an ImageRef from a canonical source URL and optionally
// known intrinsic dimensions (zero values mean unknown).
func NewImageRef(sourceURL string, width, height int) ImageRef {
	return ImageRef{
		SourceURL: strings.TrimSpace(sourceURL),
		Intrinsic: Dimensions{Width: width, Height: height},
	}
}

// IsSVG reports whether the source is a vector image, which is never
// transformed.
func (r ImageRef) IsSVG() bool {
	path := r.SourceURL
	if u, err := url.Parse(r.SourceURL); err == nil && u.Path != "" {
		path = u.Path
	}
	return strings.HasSuffix(strings.ToLower(path), ".svg")
}

// Candidate is one srcset entry: a transformed URL plus its descriptor
// ("650w" or "2x").
type Candidate struct {
	URL        string
	Descriptor string
}

// String renders the candidate in srcset form.
func (c Candidate) String() string {
	return c.URL + " " + c.Descriptor
}

// ProviderConfig carries the per-request provider settings read from
// configuration. One instance builds every URL within a rewrite.
type ProviderConfig struct {
	ID        string
	Domain    string
	Subdomain string
	MaxWidth  int
	Quality   int
}

// RewriteResult is the output of a markup rewrite. Consumed once by the
// caller and discarded.
type RewriteResult struct {
	HTML        string
	Transformed bool
}
