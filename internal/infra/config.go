package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment
// variables. It is read once at startup; the engine only ever sees
// immutable snapshots of it.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	// Edge provider settings.
	Provider  string
	Domain    string
	Subdomain string
	MaxWidth  int
	Quality   int

	// Feature toggles.
	Enabled          bool
	PictureWrap      bool
	DisabledFeatures []string

	// Srcset breakpoint widths; empty means the built-in defaults.
	Breakpoints []int

	// LocalHosts are hostnames treated as this site's own. Always
	// includes the rewrite domain.
	LocalHosts []string

	CacheTTL time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		Provider:  getEnv("EDGE_PROVIDER", "cloudflare"),
		Domain:    os.Getenv("EDGE_DOMAIN"),
		Subdomain: os.Getenv("EDGE_SUBDOMAIN"),
		MaxWidth:  getEnvInt("EDGE_MAX_WIDTH", 650),
		Quality:   getEnvInt("EDGE_QUALITY", 85),

		Enabled:          getEnvBool("EDGE_ENABLED", true),
		PictureWrap:      getEnvBool("EDGE_PICTURE_WRAP", true),
		DisabledFeatures: getEnvList("EDGE_DISABLED_FEATURES"),

		Breakpoints: getEnvInts("EDGE_BREAKPOINTS"),

		CacheTTL: time.Second * time.Duration(getEnvInt("EDGE_CACHE_TTL_SECONDS", 3600)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}

	cfg.LocalHosts = mergeHosts(cfg.Domain, getEnvList("EDGE_LOCAL_HOSTS"))

	return cfg, nil
}

// mergeHosts combines the rewrite domain with explicitly configured local
// hosts, deduplicating case-insensitively.
func mergeHosts(domain string, extra []string) []string {
	seen := map[string]bool{}
	var hosts []string
	add := func(h string) {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" || seen[h] {
			return
		}
		seen[h] = true
		hosts = append(hosts, h)
	}
	add(domain)
	for _, h := range extra {
		add(h)
	}
	return hosts
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInts(key string) []int {
	var out []int
	for _, part := range getEnvList(key) {
		if i, err := strconv.Atoi(part); err == nil && i > 0 {
			out = append(out, i)
		}
	}
	return out
}
