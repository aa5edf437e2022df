package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/jonoalderson/edge-images-sub001/internal/cache"
	"github.com/jonoalderson/edge-images-sub001/internal/domain"
	"github.com/jonoalderson/edge-images-sub001/internal/feature"
	"github.com/jonoalderson/edge-images-sub001/internal/infra"
	"github.com/jonoalderson/edge-images-sub001/internal/media"
	"github.com/jonoalderson/edge-images-sub001/internal/providers/edge"
	"github.com/jonoalderson/edge-images-sub001/internal/rewrite"
	"github.com/jonoalderson/edge-images-sub001/internal/transform"
)

// rewrite reads an HTML fragment from stdin or a file and prints the
// transformed markup. Flags override the environment configuration, which
// makes the binary handy for one-off checks of a provider setup.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	providerID := flag.String("provider", cfg.Provider, "edge provider id")
	domainFlag := flag.String("domain", cfg.Domain, "site domain")
	subdomain := flag.String("subdomain", cfg.Subdomain, "provider subdomain or zone")
	maxWidth := flag.Int("max-width", cfg.MaxWidth, "content width ceiling in pixels")
	quality := flag.Int("quality", cfg.Quality, "default quality")
	contextName := flag.String("context", "", "rendering context (schema, social, avatar)")
	noWrap := flag.Bool("no-wrap", false, "skip the picture container")
	file := flag.String("file", "", "read the fragment from a file instead of stdin")
	flag.Parse()

	logger := infra.NewLogger(cfg.AppEnv)

	registry := edge.Default()
	provider, ok := registry.Lookup(*providerID)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown provider %q, known: %v\n", *providerID, registry.Names())
		os.Exit(1)
	}

	pcfg := domain.ProviderConfig{
		ID:        *providerID,
		Domain:    *domainFlag,
		Subdomain: *subdomain,
		MaxWidth:  *maxWidth,
		Quality:   *quality,
	}
	if err := provider.Validate(pcfg); err != nil {
		fmt.Fprintln(os.Stderr, "provider:", err)
		os.Exit(1)
	}

	var input []byte
	if *file != "" {
		input, err = os.ReadFile(*file)
	} else {
		input, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "read input:", err)
		os.Exit(1)
	}

	gen := transform.Generator{
		Provider:    provider,
		Config:      pcfg,
		Cache:       cache.New(cache.NewMemoryStore(), time.Minute, logger),
		Breakpoints: cfg.Breakpoints,
	}
	resolver := transform.Resolver{MaxWidth: *maxWidth, Quality: *quality}
	gate := feature.NewGate(feature.Config{
		Enabled:          true,
		PictureWrap:      !*noWrap,
		DisabledFeatures: cfg.DisabledFeatures,
		Provider:         provider,
		ProviderConfig:   pcfg,
	})
	repo := media.NewMemoryRepository(cfg.LocalHosts...)
	rw := rewrite.New(gate, gen, resolver, repo, logger)

	res := rw.RewriteAll(context.Background(), string(input), rewrite.Options{
		Context: domain.ParseContext(*contextName),
	})

	fmt.Println(res.HTML)
	if !res.Transformed {
		os.Exit(2)
	}
}
