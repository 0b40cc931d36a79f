package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ritzau/media-graph/pkg/config"
	"github.com/ritzau/media-graph/pkg/logging"
	"github.com/ritzau/media-graph/pkg/metrics"
	"github.com/ritzau/media-graph/pkg/model"
	"github.com/ritzau/media-graph/pkg/output"
)

type buildFlags struct {
	output string
	top    int
	watch  bool
}

func newBuildCmd() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a graph once and print a summary",
		Long: heredoc.Doc(`
			Fetch the seeds, weight their recommendations, lay the graph out and
			print the strongest recommendations. Seeds that cannot be fetched
			are reported but do not stop the build.

			With --output the positioned graph is written as JSON ("-" for
			stdout). With --watch the graph is rebuilt whenever the config
			file or .env changes.
		`),
		Example: heredoc.Doc(`
			$ media-graph build --ids 21,20 --compensate
			$ media-graph build --ids 21 --user someone --hide-statuses COMPLETED,DROPPED --output graph.json
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the graph JSON to this file")
	cmd.Flags().IntVar(&flags.top, "top", output.DefaultTop, "Recommendations listed in the summary")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "Rebuild when the config file changes")
	addLayoutFlags(cmd)
	addGraphFlags(cmd)
	return cmd
}

func runBuild(cmd *cobra.Command, flags buildFlags) error {
	ctx := cmd.Context()

	if err := buildOnce(ctx, appConfig, flags); err != nil || !flags.watch {
		return err
	}

	rebuild := make(chan struct{}, 1)
	if err := watchConfig(ctx, func() {
		select {
		case rebuild <- struct{}{}:
		default:
		}
	}); err != nil {
		return err
	}
	logging.Info("watching for changes, press Ctrl+C to stop", "config", configPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-rebuild:
			cfg, err := loadConfig(cmd)
			if err != nil {
				logging.Error("config reload failed", "error", err)
				continue
			}
			if err := buildOnce(ctx, cfg, flags); err != nil {
				if ignoreCanceled(err) == nil {
					return nil
				}
				logging.Error("rebuild failed", "error", err)
			}
		}
	}
}

func buildOnce(ctx context.Context, cfg *config.Config, flags buildFlags) error {
	if len(cfg.Graph.Seeds) == 0 {
		return fmt.Errorf("no seeds: pass --ids or set ids under [graph]")
	}

	cat, store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := newEngine(cfg, cat)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := engine.Run(ctx, cfg.Graph, func(state string) {
		logging.Debug("build stage", "state", state)
	})
	if err != nil {
		return err
	}
	metrics.GraphBuildDuration.WithLabelValues("oneshot").Observe(time.Since(start).Seconds())

	if flags.output == "-" {
		return writeGraph(os.Stdout, out.Data)
	}

	output.PrintGraphSummary(os.Stdout, out.Data, flags.top)
	if flags.output != "" {
		f, err := os.Create(flags.output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", flags.output, err)
		}
		defer f.Close()
		if err := writeGraph(f, out.Data); err != nil {
			return err
		}
		logging.Info("graph written", "path", flags.output)
	}
	return nil
}

func writeGraph(f *os.File, data *model.GraphData) error {
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return nil
}
