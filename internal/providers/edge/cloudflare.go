package edge

import (
	"fmt"
	"strings"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
)

const cloudflarePrefix = "/cdn-cgi/image/"

// Cloudflare rewrites images through Cloudflare's image resizing endpoint.
// Arguments live in a single path segment joined with commas, because the
// query string is reserved for the origin at that layer.
type Cloudflare struct{}

// NewCloudflare returns the Cloudflare provider.
func NewCloudflare() *Cloudflare {
	return &Cloudflare{}
}

func (c *Cloudflare) Name() string { return "cloudflare" }

func (c *Cloudflare) UsesHostedSubdomain() bool { return false }

// Validate requires a rewrite domain.
func (c *Cloudflare) Validate(cfg domain.ProviderConfig) error {
	if strings.TrimSpace(cfg.Domain) == "" {
		return fmt.Errorf("cloudflare: rewrite domain is required: %w", domain.ErrProviderMisconfigured)
	}
	return nil
}

// BuildURL emits https://{domain}/cdn-cgi/image/{args}/{path}.
func (c *Cloudflare) BuildURL(ref domain.ImageRef, args domain.TransformArgs, cfg domain.ProviderConfig) (string, error) {
	if err := c.Validate(cfg); err != nil {
		return "", err
	}
	path := sourcePath(c.CleanURL(ref.SourceURL, cfg))
	if path == "" {
		return ref.SourceURL, nil
	}

	pairs := args.Pairs()
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p[0]+"="+p[1])
	}

	var b strings.Builder
	b.WriteString(hostScheme(ref.SourceURL))
	b.WriteString("://")
	b.WriteString(strings.TrimSuffix(cfg.Domain, "/"))
	b.WriteString(cloudflarePrefix)
	b.WriteString(strings.Join(parts, ","))
	b.WriteString(path)
	return b.String(), nil
}

// CleanURL strips a prior /cdn-cgi/image/{args} segment from the URL.
func (c *Cloudflare) CleanURL(raw string, _ domain.ProviderConfig) string {
	idx := strings.Index(raw, cloudflarePrefix)
	if idx < 0 {
		return raw
	}
	rest := raw[idx+len(cloudflarePrefix):]
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return raw
	}
	return raw[:idx] + rest[slash:]
}

var _ Provider = (*Cloudflare)(nil)
