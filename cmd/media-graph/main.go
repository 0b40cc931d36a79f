package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/ritzau/media-graph/pkg/catalog"
	"github.com/ritzau/media-graph/pkg/config"
	"github.com/ritzau/media-graph/pkg/layout"
	"github.com/ritzau/media-graph/pkg/logging"
	"github.com/ritzau/media-graph/pkg/session"
)

// Exit codes
const (
	exitOK       = 0
	exitError    = 1
	exitNotFound = 2
)

var (
	configPath string
	appConfig  *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "media-graph",
	Short: "Weighted recommendation graphs for anime and manga",
	Long: heredoc.Doc(`
		media-graph builds a weighted graph of AniList recommendations around a
		set of seed titles, lays it out and serves it to a browser.

		Settings are read from media-graph.toml, .env, MEDIA_GRAPH_* environment
		variables and flags, in increasing order of precedence.
	`),
	Example: heredoc.Doc(`
		$ media-graph serve --open
		$ media-graph build --ids 21,20 --user someone --hide-statuses DROPPED
		$ media-graph search "one piece" --type MANGA
	`),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", config.DefaultFile, "Path to the config file")
	pf.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	pf.CountP("verbose", "v", "Increase log verbosity (repeatable)")
	pf.Bool("json", false, "Log as JSON")
	pf.String("db", "media-graph.db", "Path to the catalog cache database")
	pf.String("catalog-url", catalog.DefaultURL, "AniList GraphQL endpoint")
	pf.Float64("rate", catalog.DefaultRate, "Catalog requests per second")
	pf.Duration("timeout", catalog.DefaultTimeout, "Catalog request timeout")
	pf.Int("concurrency", catalog.DefaultSeedConcurrency, "Parallel seed fetches")
	pf.Duration("max-age", 0, "Refetch cached entries older than this (0 keeps them forever)")

	rootCmd.AddCommand(newServeCmd(), newBuildCmd(), newSearchCmd(), newUserCmd(), newCacheCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if catalog.IsNotFound(err) {
			os.Exit(exitNotFound)
		}
		os.Exit(exitError)
	}
	os.Exit(exitOK)
}

// loadConfig reads the layered config for cmd and applies its logging
// settings
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFile(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt)
	if err != nil {
		return nil, err
	}
	logging.SetLevel(level)
	logging.SetOutput(os.Stderr, cfg.JSONLogs)
	return cfg, nil
}

// openCatalog wires the AniList client behind the SQLite cache. The caller
// closes the returned store.
func openCatalog(cfg *config.Config) (*catalog.CachedCatalog, *catalog.Store, error) {
	store, err := catalog.OpenStore(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	client := catalog.NewAniListClient(
		catalog.WithURL(cfg.Catalog.URL),
		catalog.WithRate(cfg.Catalog.Rate),
		catalog.WithTimeout(cfg.Catalog.Timeout),
	)
	return catalog.NewCachedCatalog(client, store, cfg.Catalog.MaxAge), store, nil
}

func newEngine(cfg *config.Config, cat catalog.Catalog) (*session.Engine, error) {
	l, err := layout.New(cfg.Layout.Algorithm)
	if err != nil {
		return nil, err
	}
	return &session.Engine{
		Catalog:     cat,
		Layouter:    l,
		Settings:    cfg.Layout.Settings(),
		Seed:        cfg.Layout.Seed,
		Concurrency: cfg.Catalog.Concurrency,
	}, nil
}

// addLayoutFlags registers the layout tuning flags
func addLayoutFlags(cmd *cobra.Command) {
	s := layout.DefaultSettings()
	f := cmd.Flags()
	f.String("layout", layout.AlgorithmForceAtlas2, "Layout algorithm: forceatlas2 or eades")
	f.Int("iterations", s.Iterations, "Layout iterations")
	f.Float64("gravity", s.Gravity, "Pull towards the center")
	f.Float64("scaling-ratio", s.ScalingRatio, "Repulsion strength")
	f.Bool("adjust-sizes", s.AdjustSizes, "Prevent node overlap")
	f.Uint64("seed", 0, "Placement seed (0 picks one per build)")
}

// addGraphFlags registers the graph option flags
func addGraphFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("ids", nil, "Seed media ids")
	f.String("user", "", "AniList user whose list marks and filters nodes")
	f.Bool("compensate", false, "Divide ratings by target popularity")
	f.StringSlice("hide-statuses", nil, "Hide nodes whose list status is one of these")
	f.Bool("hide-not-on-list", false, "Hide nodes missing from the user list")
	f.Bool("linear", false, "Size nodes by rank instead of rating")
	f.Int("min-connections", 0, "Drop nodes with fewer seed connections")
	f.Bool("color-edges-by-tag", false, "Color edges by the strongest shared tag")
	f.Int("max-recommendations", 0, "Keep only the top recommendations per seed")
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on this platform", "os", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
