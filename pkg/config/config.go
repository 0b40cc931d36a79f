package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/media-graph/pkg/graph"
	"github.com/ritzau/media-graph/pkg/layout"
)

// DefaultFile is the optional config file read from the working directory
const DefaultFile = "media-graph.toml"

// EnvPrefix prefixes every environment override, e.g. MEDIA_GRAPH_PORT=9090
const EnvPrefix = "MEDIA_GRAPH_"

// Config holds all configuration for the application
type Config struct {
	Port        int    `koanf:"port"`
	OpenBrowser bool   `koanf:"open"`
	Database    string `koanf:"database"`
	Verbosity   string `koanf:"verbosity"`
	VerboseCnt  int    `koanf:"verbose"`
	JSONLogs    bool   `koanf:"json_logs"`

	Catalog CatalogConfig `koanf:"catalog"`
	Layout  LayoutConfig  `koanf:"layout"`
	Graph   graph.Options `koanf:"graph"`
}

// CatalogConfig configures the upstream catalog client and its cache
type CatalogConfig struct {
	URL         string        `koanf:"url"`
	Rate        float64       `koanf:"rate"` // requests per second
	Timeout     time.Duration `koanf:"timeout"`
	Concurrency int           `koanf:"concurrency"`
	MaxAge      time.Duration `koanf:"max_age"` // 0 keeps cached entries forever
}

// LayoutConfig selects and tunes the layout algorithm
type LayoutConfig struct {
	Algorithm    string  `koanf:"algorithm"`
	Iterations   int     `koanf:"iterations"`
	Gravity      float64 `koanf:"gravity"`
	ScalingRatio float64 `koanf:"scaling_ratio"`
	AdjustSizes  bool    `koanf:"adjust_sizes"`
	Seed         uint64  `koanf:"seed"` // 0 picks a random seed per build
}

// Settings converts the layout config into layout settings
func (c LayoutConfig) Settings() layout.Settings {
	return layout.Settings{
		Iterations:   c.Iterations,
		Gravity:      c.Gravity,
		ScalingRatio: c.ScalingRatio,
		AdjustSizes:  c.AdjustSizes,
	}
}

func defaults() map[string]interface{} {
	s := layout.DefaultSettings()
	return map[string]interface{}{
		"port":                 8080,
		"open":                 false,
		"database":             "media-graph.db",
		"verbosity":            "",
		"verbose":              0,
		"json_logs":            false,
		"catalog.url":          "https://graphql.anilist.co",
		"catalog.rate":         1.5,
		"catalog.timeout":      "60s",
		"catalog.concurrency":  4,
		"catalog.max_age":      "0s",
		"layout.algorithm":     layout.AlgorithmForceAtlas2,
		"layout.iterations":    s.Iterations,
		"layout.gravity":       s.Gravity,
		"layout.scaling_ratio": s.ScalingRatio,
		"layout.adjust_sizes":  s.AdjustSizes,
		"layout.seed":          0,
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > .env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return LoadFile(DefaultFile, f)
}

// LoadFile is Load with an explicit config file path
func LoadFile(path string, f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	// We ignore errors here as the file might not exist
	_ = k.Load(file.Provider(path), toml.Parser())

	// 3. .env (optional) feeds the environment, then the environment itself
	_ = godotenv.Load()
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return envKey(s)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
			return FlagKey(fl.Name), posflag.FlagVal(f, fl)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flagKeys maps CLI flag names onto nested config keys
var flagKeys = map[string]string{
	"db":                  "database",
	"json":                "json_logs",
	"catalog-url":         "catalog.url",
	"rate":                "catalog.rate",
	"timeout":             "catalog.timeout",
	"concurrency":         "catalog.concurrency",
	"max-age":             "catalog.max_age",
	"layout":              "layout.algorithm",
	"iterations":          "layout.iterations",
	"gravity":             "layout.gravity",
	"scaling-ratio":       "layout.scaling_ratio",
	"adjust-sizes":        "layout.adjust_sizes",
	"seed":                "layout.seed",
	"ids":                 "graph.ids",
	"user":                "graph.user",
	"compensate":          "graph.use_popularity_compensation",
	"hide-statuses":       "graph.hide_statuses",
	"hide-not-on-list":    "graph.hide_not_on_list",
	"linear":              "graph.use_linear_scaling",
	"min-connections":     "graph.min_connections",
	"color-edges-by-tag":  "graph.color_edges_by_tag",
	"max-recommendations": "graph.max_recommendations",
}

// FlagKey returns the config key a CLI flag sets
func FlagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}

// envKey maps MEDIA_GRAPH_CATALOG_MAX_AGE to catalog.max_age. The first
// underscore after a known section name separates the section; the rest
// stay part of the key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range []string{"catalog", "layout", "graph"} {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// Validate rejects values no component can work with
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Catalog.Rate <= 0 {
		return fmt.Errorf("catalog rate must be positive, got %g", c.Catalog.Rate)
	}
	if c.Catalog.Concurrency < 1 {
		return fmt.Errorf("catalog concurrency must be at least 1, got %d", c.Catalog.Concurrency)
	}
	if c.Layout.Iterations < 0 {
		return fmt.Errorf("layout iterations must not be negative, got %d", c.Layout.Iterations)
	}
	if _, err := layout.New(c.Layout.Algorithm); err != nil {
		return err
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return unflatten(p.m), nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

// unflatten turns {"a.b": 1} into {"a": {"b": 1}} so dotted defaults merge
// with nested file sections
func unflatten(flat map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for key, v := range flat {
		parts := strings.Split(key, ".")
		m := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := m[p].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				m[p] = next
			}
			m = next
		}
		m[parts[len(parts)-1]] = v
	}
	return out
}
