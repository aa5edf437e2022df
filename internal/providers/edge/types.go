package edge

import (
	"net/url"
	"sort"
	"strings"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
)

// Provider turns transform intent into a provider-specific URL. Providers are
// pure string builders: BuildURL never performs I/O. Unknown or unsupported
// arguments are dropped silently rather than erroring.
type Provider interface {
	// Name is the registry identifier, e.g. "cloudflare".
	Name() string

	// UsesHostedSubdomain reports whether the provider serves from a
	// dedicated subdomain instead of a path prefix on the existing domain.
	UsesHostedSubdomain() bool

	// Validate checks that the configuration carries every field this
	// provider requires. Returns an error wrapping
	// domain.ErrProviderMisconfigured when one is missing.
	Validate(cfg domain.ProviderConfig) error

	// BuildURL constructs the transformed URL for the source image. The
	// emitted parameter order is canonical so identical logical arguments
	// always produce the identical string.
	BuildURL(ref domain.ImageRef, args domain.TransformArgs, cfg domain.ProviderConfig) (string, error)

	// CleanURL strips a prior rewrite by this provider, restoring the
	// original source URL. Non-rewritten URLs pass through unchanged.
	CleanURL(raw string, cfg domain.ProviderConfig) string
}

// Registry maps provider identifiers to implementations. It is constructed
// explicitly and resolved once per request from configuration; there is no
// process-wide registration.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry holding the given providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Default returns a registry with every built-in provider.
func Default() *Registry {
	return NewRegistry(
		NewCloudflare(),
		NewAcceleratedDomains(),
		NewBunny(),
		NewImgix(),
	)
}

// Register adds or replaces a provider by name.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Lookup resolves a provider identifier.
func (r *Registry) Lookup(id string) (Provider, bool) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(id))]
	return p, ok
}

// Names lists registered provider identifiers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sourcePath extracts the escaped path (plus query, if any) from a source
// URL. Relative sources are treated as paths on the rewrite domain. The
// returned path always starts with "/"; an empty string means the source
// could not be interpreted.
func sourcePath(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	u, err := url.Parse(source)
	if err != nil {
		return ""
	}
	path := u.EscapedPath()
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}

// hostScheme returns the scheme to use for a rewritten URL, defaulting to
// https when the source does not carry one.
func hostScheme(source string) string {
	if u, err := url.Parse(source); err == nil && u.Scheme == "http" {
		return "http"
	}
	return "https"
}
