package edge

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
)

const bunnyHostSuffix = ".b-cdn.net"

// Bunny rewrites images onto a dedicated pull-zone subdomain served by the
// Bunny Optimizer. Knobs Bunny has no equivalent for (format negotiation,
// DPR) are dropped.
type Bunny struct{}

// NewBunny returns the Bunny provider.
func NewBunny() *Bunny {
	return &Bunny{}
}

func (b *Bunny) Name() string { return "bunny" }

func (b *Bunny) UsesHostedSubdomain() bool { return true }

// Validate requires the pull-zone subdomain.
func (b *Bunny) Validate(cfg domain.ProviderConfig) error {
	if strings.TrimSpace(cfg.Subdomain) == "" {
		return fmt.Errorf("bunny: pull zone subdomain is required: %w", domain.ErrProviderMisconfigured)
	}
	return nil
}

// BuildURL emits https://{zone}.b-cdn.net{path}?{args}.
func (b *Bunny) BuildURL(ref domain.ImageRef, args domain.TransformArgs, cfg domain.ProviderConfig) (string, error) {
	if err := b.Validate(cfg); err != nil {
		return "", err
	}
	path := sourcePath(b.CleanURL(ref.SourceURL, cfg))
	if path == "" {
		return ref.SourceURL, nil
	}
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}

	values := url.Values{}
	for _, p := range args.Pairs() {
		switch p[0] {
		case "width", "height", "quality", "sharpen":
			values.Set(p[0], p[1])
		case "gravity":
			values.Set("crop_gravity", p[1])
		}
	}

	var sb strings.Builder
	sb.WriteString("https://")
	sb.WriteString(strings.TrimSpace(cfg.Subdomain))
	sb.WriteString(bunnyHostSuffix)
	sb.WriteString(path)
	if enc := values.Encode(); enc != "" {
		sb.WriteString("?")
		sb.WriteString(enc)
	}
	return sb.String(), nil
}

// CleanURL drops the Bunny transform query parameters when the URL points at
// the configured pull zone.
func (b *Bunny) CleanURL(raw string, cfg domain.ProviderConfig) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if !strings.HasSuffix(u.Host, bunnyHostSuffix) {
		return raw
	}
	u.RawQuery = ""
	return u.String()
}

var _ Provider = (*Bunny)(nil)
