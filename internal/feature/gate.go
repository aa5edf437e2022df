package feature

import (
	"strings"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
	"github.com/jonoalderson/edge-images-sub001/internal/providers/edge"
)

// Gate answers the should-we-do-anything questions every other component
// asks before doing work. It holds a read-only configuration snapshot and
// has no other state; every predicate is side-effect-free and cheap to call
// repeatedly.
type Gate struct {
	enabled     bool
	pictureWrap bool
	disabled    map[string]bool
	provider    edge.Provider
	cfg         domain.ProviderConfig
}

// Config is the snapshot a Gate is built from.
type Config struct {
	Enabled          bool
	PictureWrap      bool
	DisabledFeatures []string
	Provider         edge.Provider
	ProviderConfig   domain.ProviderConfig
}

// NewGate builds a Gate from a configuration snapshot.
func NewGate(cfg Config) *Gate {
	disabled := make(map[string]bool, len(cfg.DisabledFeatures))
	for _, name := range cfg.DisabledFeatures {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			disabled[name] = true
		}
	}
	return &Gate{
		enabled:     cfg.Enabled,
		pictureWrap: cfg.PictureWrap,
		disabled:    disabled,
		provider:    cfg.Provider,
		cfg:         cfg.ProviderConfig,
	}
}

// Enabled reports whether transformation is globally switched on.
func (g *Gate) Enabled() bool {
	return g.enabled
}

// ProviderConfigured reports whether a provider is resolved and carries
// every field it requires.
func (g *Gate) ProviderConfigured() bool {
	if g.provider == nil {
		return false
	}
	return g.provider.Validate(g.cfg) == nil
}

// PictureWrapEnabled reports whether rewritten images get a wrapping
// container.
func (g *Gate) PictureWrapEnabled() bool {
	return g.pictureWrap
}

// FeatureEnabled reports whether a named optional feature (e.g. "avatars")
// is switched on. Unknown names default to enabled.
func (g *Gate) FeatureEnabled(name string) bool {
	return !g.disabled[strings.ToLower(strings.TrimSpace(name))]
}
