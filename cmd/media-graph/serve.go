package main

import (
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/ritzau/media-graph/pkg/logging"
	"github.com/ritzau/media-graph/pkg/pubsub"
	"github.com/ritzau/media-graph/pkg/session"
	"github.com/ritzau/media-graph/pkg/web"
)

func newServeCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive graph",
		Long: heredoc.Doc(`
			Start the web server. Graph options submitted from the browser are
			built in the background; a newer submission cancels the build in
			flight and only the latest graph is published.

			Seeds configured under [graph] are built on startup.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, watch)
		},
	}

	cmd.Flags().Int("port", 8080, "Port for the web server")
	cmd.Flags().Bool("open", false, "Open the browser once the server is up")
	cmd.Flags().BoolVar(&watch, "watch", false, "Resubmit the configured graph when the config file changes")
	addLayoutFlags(cmd)
	addGraphFlags(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, watch bool) error {
	ctx := cmd.Context()
	cfg := appConfig

	cat, store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := newEngine(cfg, cat)
	if err != nil {
		return err
	}

	pub := pubsub.NewGraphPublisher()
	defer pub.Close()

	coordinator := session.NewCoordinator(ctx, engine, pub)
	defer coordinator.Close()

	if len(cfg.Graph.Seeds) > 0 {
		coordinator.Submit(cfg.Graph)
	}

	if watch {
		err := watchConfig(ctx, func() {
			reloaded, err := loadConfig(cmd)
			if err != nil {
				logging.Error("config reload failed", "error", err)
				return
			}
			logging.Info("config changed, resubmitting graph", "seeds", len(reloaded.Graph.Seeds))
			coordinator.Submit(reloaded.Graph)
		})
		if err != nil {
			return err
		}
	}

	server := web.NewServer(cat, engine, coordinator, pub)

	if cfg.OpenBrowser {
		go func() {
			select {
			case <-time.After(500 * time.Millisecond):
				openBrowser(fmt.Sprintf("http://localhost:%d", cfg.Port))
			case <-ctx.Done():
			}
		}()
	}

	return ignoreCanceled(server.Start(ctx, cfg.Port))
}
