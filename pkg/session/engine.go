// Package session turns graph options into positioned graphs: it fetches
// seeds and the user list, runs the weighting pipeline and the layout, and
// coordinates rebuilds when options change.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/ritzau/media-graph/pkg/catalog"
	"github.com/ritzau/media-graph/pkg/graph"
	"github.com/ritzau/media-graph/pkg/layout"
	"github.com/ritzau/media-graph/pkg/logging"
	"github.com/ritzau/media-graph/pkg/metrics"
	"github.com/ritzau/media-graph/pkg/model"
	"github.com/ritzau/media-graph/pkg/pubsub"
)

// Engine runs one complete build. It holds no per-build state, so one
// engine serves concurrent one-shot builds and the coordinator alike.
type Engine struct {
	Catalog     catalog.Catalog
	Layouter    layout.Layouter
	Settings    layout.Settings
	Seed        uint64 // placement seed; 0 picks a random one per build
	Concurrency int    // parallel seed fetches
}

// Outcome is a finished build
type Outcome struct {
	Result   *graph.Result
	Data     *model.GraphData
	Failures []model.SeedFailure
}

// Progress is told when a build enters a new stage
type Progress func(state string)

// Run fetches, builds and lays out a graph for opts. It returns ctx.Err()
// as soon as the context is cancelled.
func (e *Engine) Run(ctx context.Context, opts graph.Options, progress Progress) (*Outcome, error) {
	if progress == nil {
		progress = func(string) {}
	}
	opts = opts.Normalized()

	progress(pubsub.StateFetching)
	seeds, failures := catalog.FetchSeeds(ctx, e.Catalog, opts.Seeds, e.Concurrency)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var userList *model.MediaListCollection
	if opts.Username != "" {
		list, err := e.Catalog.FetchUserList(ctx, opts.Username)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Warn("user list unavailable, building without list statuses", "user", opts.Username, "error", err)
		} else {
			userList = list
		}
	}

	progress(pubsub.StateBuilding)
	res := graph.Build(graph.Input{Seeds: seeds, UserList: userList, Options: opts})

	progress(pubsub.StateLayout)
	if err := e.layout(ctx, res); err != nil {
		return nil, err
	}

	data := res.Data()
	data.Failures = failures
	return &Outcome{Result: res, Data: data, Failures: failures}, nil
}

func (e *Engine) layout(ctx context.Context, res *graph.Result) error {
	l := e.Layouter
	if l == nil {
		l = layout.ForceAtlas2{}
	}

	nodes, edges := res.LayoutInput()
	layout.Scatter(nodes, layout.NewSource(e.Seed))

	start := time.Now()
	pos, err := l.Layout(ctx, nodes, edges, e.Settings)
	metrics.LayoutDuration.WithLabelValues(l.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%s layout: %w", l.Name(), err)
	}

	res.SetPositions(pos)
	logging.Debug("layout complete",
		"algorithm", l.Name(),
		"nodes", len(nodes),
		"iterations", e.Settings.Iterations,
		"durationMs", time.Since(start).Milliseconds())
	return nil
}
