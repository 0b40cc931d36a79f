package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ritzau/media-graph/pkg/graph"
	"github.com/ritzau/media-graph/pkg/logging"
	"github.com/ritzau/media-graph/pkg/metrics"
	"github.com/ritzau/media-graph/pkg/model"
	"github.com/ritzau/media-graph/pkg/pubsub"
)

// Snapshot is the latest published graph
type Snapshot struct {
	Version int64
	Options graph.Options
	Result  *graph.Result
	Data    *model.GraphData
}

// Coordinator owns the interactive graph. Every Submit gets a new version
// and cancels the build in flight; a finished build is published only if
// no newer version was submitted meanwhile.
type Coordinator struct {
	engine *Engine
	pub    pubsub.Publisher
	base   context.Context
	log    *slog.Logger

	// publishMu orders the latest-version check with the publishes that
	// follow it, so an older graph can never land after a newer one
	publishMu sync.Mutex

	mu      sync.Mutex
	version int64
	options graph.Options // latest submitted
	cancel  context.CancelFunc
	current *Snapshot
	wg      sync.WaitGroup
}

// NewCoordinator creates a coordinator whose builds stop when ctx ends
func NewCoordinator(ctx context.Context, engine *Engine, pub pubsub.Publisher) *Coordinator {
	return &Coordinator{
		engine: engine,
		pub:    pub,
		base:   ctx,
		log:    logging.New("session"),
	}
}

// Submit starts a build for opts and returns its version
func (c *Coordinator) Submit(opts graph.Options) int64 {
	opts = opts.Normalized()

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.version++
	version := c.version
	c.options = opts
	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	c.log.Info("graph build submitted", "version", version, "seeds", len(opts.Seeds), "hash", shortHash(opts.Hash()))
	c.publishStatus(version, pubsub.GraphStatus{State: pubsub.StateQueued, Version: version, Hash: opts.Hash()})

	go func() {
		defer c.wg.Done()
		defer cancel()
		c.run(ctx, version, opts)
	}()
	return version
}

func (c *Coordinator) run(ctx context.Context, version int64, opts graph.Options) {
	start := time.Now()

	out, err := c.engine.Run(ctx, opts, func(state string) {
		c.publishStatus(version, pubsub.GraphStatus{State: state, Version: version})
	})
	if err != nil {
		if errors.Is(err, context.Canceled) && !c.isLatest(version) {
			c.log.Debug("graph build superseded", "version", version)
			metrics.StaleResults.Inc()
			return
		}
		c.log.Error("graph build failed", "version", version, "error", err)
		c.publishStatus(version, pubsub.GraphStatus{State: pubsub.StateFailed, Version: version, Message: err.Error()})
		return
	}

	out.Data.Version = version
	snap := &Snapshot{Version: version, Options: opts, Result: out.Result, Data: out.Data}

	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	c.mu.Lock()
	if latest := c.version; version != latest {
		c.mu.Unlock()
		c.log.Debug("dropping stale graph", "version", version, "latest", latest)
		metrics.StaleResults.Inc()
		return
	}
	var previous *model.GraphData
	if c.current != nil {
		previous = c.current.Data
	}
	c.current = snap
	c.mu.Unlock()

	diff := graph.Diff(previous, out.Data)

	metrics.GraphBuildDuration.WithLabelValues("session").Observe(time.Since(start).Seconds())
	metrics.GraphNodes.Set(float64(len(out.Data.Nodes)))
	metrics.GraphEdges.Set(float64(len(out.Data.Edges)))
	metrics.GraphVersion.Set(float64(version))

	c.log.Info("graph ready",
		"version", version,
		"nodes", len(out.Data.Nodes),
		"edges", len(out.Data.Edges),
		"failures", len(out.Failures),
		"added", len(diff.AddedNodes),
		"removed", len(diff.RemovedNodes),
		"durationMs", time.Since(start).Milliseconds())

	// a newer build re-checks only after these publishes complete
	if err := c.pub.Publish(pubsub.TopicGraph, pubsub.StateReady, out.Data); err != nil {
		c.log.Warn("failed to publish graph", "version", version, "error", err)
	}
	c.publishStatus(version, pubsub.GraphStatus{
		State:    pubsub.StateReady,
		Version:  version,
		Hash:     out.Data.Hash,
		Nodes:    len(out.Data.Nodes),
		Edges:    len(out.Data.Edges),
		Failures: out.Failures,
		Diff:     diff,
	})
}

// publishStatus reports progress for version unless a newer one exists
func (c *Coordinator) publishStatus(version int64, status pubsub.GraphStatus) {
	if !c.isLatest(version) {
		return
	}
	if err := c.pub.Publish(pubsub.TopicGraphStatus, status.State, status); err != nil {
		c.log.Warn("failed to publish status", "version", version, "error", err)
	}
}

// shortHash abbreviates an options hash for logging
func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}

func (c *Coordinator) isLatest(version int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return version == c.version
}

// Options returns the most recently submitted options
func (c *Coordinator) Options() graph.Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.options
}

// AddSeed resubmits the latest options with id added as a seed
func (c *Coordinator) AddSeed(id int64) int64 {
	return c.Submit(c.Options().WithSeed(id))
}

// RemoveSeed resubmits the latest options without seed id
func (c *Coordinator) RemoveSeed(id int64) int64 {
	return c.Submit(c.Options().WithoutSeed(id))
}

// Version returns the most recently submitted version
func (c *Coordinator) Version() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Current returns the latest published graph
func (c *Coordinator) Current() (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.current != nil
}

// Lookup returns the media detail of a node in the latest graph
func (c *Coordinator) Lookup(id int64) (model.NodeDetail, error) {
	snap, ok := c.Current()
	if !ok {
		return model.NodeDetail{}, ErrNoGraph
	}
	if !snap.Result.Graph.HasNode(id) {
		return model.NodeDetail{}, fmt.Errorf("media %d: %w", id, ErrNodeNotFound)
	}
	detail, ok := snap.Result.Index.Detail(id)
	if !ok {
		return model.NodeDetail{}, fmt.Errorf("media %d: %w", id, ErrNodeNotFound)
	}
	detail.Connections = snap.Result.Graph.Degree(id)
	detail.Neighbors = snap.Result.Graph.Neighbors(id)
	return detail, nil
}

// Wait blocks until every submitted build has finished
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close cancels the build in flight and waits for it to stop
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	c.wg.Wait()
}

var (
	// ErrNoGraph is returned before the first graph is published
	ErrNoGraph = errors.New("no graph built yet")

	// ErrNodeNotFound is returned for ids absent from the latest graph
	ErrNodeNotFound = errors.New("node not in graph")
)
