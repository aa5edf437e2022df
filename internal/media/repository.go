package media

import (
	"context"
	"net/url"
	"strings"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
)

// Identity is an opaque attachment identifier within the host metadata
// store.
type Identity string

// Repository resolves intrinsic dimensions and identities for source
// images. It is the engine's window onto the host CMS attachment store.
type Repository interface {
	// DimensionsByURL returns the intrinsic dimensions for a source URL.
	// Returns domain.ErrNotFound when the URL is unknown.
	DimensionsByURL(ctx context.Context, sourceURL string) (domain.Dimensions, error)

	// ResolveIdentity maps a source URL onto an attachment identity.
	// Returns domain.ErrNotFound when the URL is unknown.
	ResolveIdentity(ctx context.Context, sourceURL string) (Identity, error)

	// IsLocalURL reports whether the URL is served by this site and is
	// therefore eligible for transformation.
	IsLocalURL(sourceURL string) bool
}

// isLocal implements the shared local-URL rule: relative paths are local,
// absolute URLs are local when their host matches one of the configured
// site hosts.
func isLocal(sourceURL string, hosts []string) bool {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return false
	}
	u, err := url.Parse(sourceURL)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return strings.HasPrefix(u.Path, "/")
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range hosts {
		if host == strings.ToLower(strings.TrimSpace(h)) {
			return true
		}
	}
	return false
}
