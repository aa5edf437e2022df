package edge

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
)

const acceleratedPrefix = "/acd-cgi/img/v1"

// AcceleratedDomains rewrites images through the Accelerated Domains image
// resize endpoint: a path prefix on the existing domain with a standard
// query string.
type AcceleratedDomains struct{}

// NewAcceleratedDomains returns the Accelerated Domains provider.
func NewAcceleratedDomains() *AcceleratedDomains {
	return &AcceleratedDomains{}
}

func (a *AcceleratedDomains) Name() string { return "accelerated-domains" }

func (a *AcceleratedDomains) UsesHostedSubdomain() bool { return false }

// Validate requires a rewrite domain.
func (a *AcceleratedDomains) Validate(cfg domain.ProviderConfig) error {
	if strings.TrimSpace(cfg.Domain) == "" {
		return fmt.Errorf("accelerated-domains: rewrite domain is required: %w", domain.ErrProviderMisconfigured)
	}
	return nil
}

// BuildURL emits https://{domain}/acd-cgi/img/v1{path}?{args}.
func (a *AcceleratedDomains) BuildURL(ref domain.ImageRef, args domain.TransformArgs, cfg domain.ProviderConfig) (string, error) {
	if err := a.Validate(cfg); err != nil {
		return "", err
	}
	path := sourcePath(a.CleanURL(ref.SourceURL, cfg))
	if path == "" {
		return ref.SourceURL, nil
	}
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}

	values := url.Values{}
	for _, p := range args.Pairs() {
		values.Set(p[0], p[1])
	}

	var b strings.Builder
	b.WriteString(hostScheme(ref.SourceURL))
	b.WriteString("://")
	b.WriteString(strings.TrimSuffix(cfg.Domain, "/"))
	b.WriteString(acceleratedPrefix)
	b.WriteString(path)
	if enc := values.Encode(); enc != "" {
		b.WriteString("?")
		b.WriteString(enc)
	}
	return b.String(), nil
}

// CleanURL strips the /acd-cgi/img/v1 prefix and every transform query
// parameter from a previously rewritten URL.
func (a *AcceleratedDomains) CleanURL(raw string, _ domain.ProviderConfig) string {
	idx := strings.Index(raw, acceleratedPrefix+"/")
	if idx < 0 {
		return raw
	}
	cleaned := raw[:idx] + raw[idx+len(acceleratedPrefix):]
	if i := strings.Index(cleaned, "?"); i >= 0 {
		cleaned = cleaned[:i]
	}
	return cleaned
}

var _ Provider = (*AcceleratedDomains)(nil)
