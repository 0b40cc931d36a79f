package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/ritzau/media-graph/pkg/catalog"
	"github.com/ritzau/media-graph/pkg/graph"
	"github.com/ritzau/media-graph/pkg/layout"
	"github.com/ritzau/media-graph/pkg/model"
	"github.com/ritzau/media-graph/pkg/pubsub"
)

func intPtr(v int) *int { return &v }

func testCatalog() *catalog.MockCatalog {
	naruto := &model.Media{ID: 20, Title: model.MediaTitle{Romaji: "Naruto"}, Popularity: 400}
	bleach := &model.Media{ID: 269, Title: model.MediaTitle{Romaji: "Bleach"}, Popularity: 300}
	onePiece := &model.Media{
		ID:         21,
		Title:      model.MediaTitle{Romaji: "One Piece"},
		Popularity: 500,
		Recommendations: &model.RecommendationConnection{Nodes: []model.Recommendation{
			{ID: 1, Rating: intPtr(120), Media: naruto},
			{ID: 2, Rating: intPtr(40), Media: bleach},
		}},
	}
	cat := catalog.NewMockCatalog(onePiece, naruto)
	cat.Users["someone"] = &model.MediaListCollection{Lists: []model.MediaListGroup{
		{Status: model.StatusCompleted, Entries: []model.MediaListEntry{{MediaID: 20}}},
	}}
	return cat
}

func testEngine(cat catalog.Catalog) *Engine {
	s := layout.DefaultSettings()
	s.Iterations = 10
	return &Engine{Catalog: cat, Layouter: layout.ForceAtlas2{}, Settings: s, Seed: 42, Concurrency: 2}
}

func TestEngineRun(t *testing.T) {
	var stages []string
	out, err := testEngine(testCatalog()).Run(context.Background(),
		graph.Options{Seeds: []int64{21, 404}, Username: "Someone"},
		func(state string) { stages = append(stages, state) })
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(stages) != 3 || stages[0] != pubsub.StateFetching || stages[2] != pubsub.StateLayout {
		t.Errorf("Unexpected stages %v", stages)
	}
	if len(out.Data.Nodes) != 3 || len(out.Data.Edges) != 2 {
		t.Errorf("Expected 3 nodes and 2 edges, got %d and %d", len(out.Data.Nodes), len(out.Data.Edges))
	}
	if len(out.Failures) != 1 || out.Failures[0].ID != 404 || len(out.Data.Failures) != 1 {
		t.Errorf("Expected failure for 404, got %+v", out.Failures)
	}

	moved := false
	for _, n := range out.Data.Nodes {
		if n.X != 0 || n.Y != 0 {
			moved = true
		}
		if n.ID == 20 && n.Status != model.StatusCompleted {
			t.Errorf("Expected Naruto marked completed, got %q", n.Status)
		}
	}
	if !moved {
		t.Error("Expected nodes to be positioned")
	}
}

func TestEngineRunIsReproducibleWithSeed(t *testing.T) {
	opts := graph.Options{Seeds: []int64{21}}
	a, err := testEngine(testCatalog()).Run(context.Background(), opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := testEngine(testCatalog()).Run(context.Background(), opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Data.Nodes {
		if a.Data.Nodes[i].X != b.Data.Nodes[i].X || a.Data.Nodes[i].Y != b.Data.Nodes[i].Y {
			t.Errorf("Node %d placed differently across runs", a.Data.Nodes[i].ID)
		}
	}
}

func TestEngineRunSurvivesMissingUser(t *testing.T) {
	out, err := testEngine(testCatalog()).Run(context.Background(),
		graph.Options{Seeds: []int64{21}, Username: "nobody"}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, n := range out.Data.Nodes {
		if n.Status != "" {
			t.Errorf("Expected no statuses without a list, got %q on %d", n.Status, n.ID)
		}
	}
}

func TestEngineRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := testEngine(testCatalog()).Run(ctx, graph.Options{Seeds: []int64{21}}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

// gatedCatalog blocks FetchMedia for gated ids until release is closed
type gatedCatalog struct {
	*catalog.MockCatalog
	gated   map[int64]bool
	started chan int64
	release chan struct{}
}

func (g *gatedCatalog) FetchMedia(ctx context.Context, id int64) (*model.Media, error) {
	if g.gated[id] {
		g.started <- id
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.MockCatalog.FetchMedia(ctx, id)
}

func subscribe(t *testing.T, pub pubsub.Publisher, topic string) pubsub.Subscription {
	t.Helper()
	sub, err := pub.Subscribe(context.Background(), topic)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	t.Cleanup(func() { sub.Close() })
	return sub
}

func TestCoordinatorPublishesLatestOnly(t *testing.T) {
	cat := &gatedCatalog{
		MockCatalog: testCatalog(),
		gated:       map[int64]bool{21: true},
		started:     make(chan int64, 1),
		release:     make(chan struct{}),
	}
	pub := pubsub.NewGraphPublisher()
	defer pub.Close()
	graphs := subscribe(t, pub, pubsub.TopicGraph)

	c := NewCoordinator(context.Background(), testEngine(cat), pub)
	defer c.Close()

	if _, ok := c.Current(); ok {
		t.Fatal("Expected no graph before the first build")
	}

	v1 := c.Submit(graph.Options{Seeds: []int64{21}})
	<-cat.started
	v2 := c.Submit(graph.Options{Seeds: []int64{20}})
	if v2 != v1+1 {
		t.Errorf("Expected increasing versions, got %d then %d", v1, v2)
	}
	c.Wait()

	snap, ok := c.Current()
	if !ok {
		t.Fatal("Expected a published graph")
	}
	if snap.Version != v2 || snap.Data.Version != v2 {
		t.Errorf("Expected version %d published, got %d", v2, snap.Version)
	}
	if len(snap.Data.Nodes) != 1 || snap.Data.Nodes[0].ID != 20 {
		t.Errorf("Expected graph of the second submission, got %+v", snap.Data.Nodes)
	}

	select {
	case event := <-graphs.Events():
		if event.Type != pubsub.StateReady {
			t.Errorf("Expected ready event, got %s", event.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for graph event")
	}
	select {
	case event := <-graphs.Events():
		t.Errorf("Superseded build must not publish, got event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

// gatingPublisher holds the first graph publish until released and
// records the version of every graph it forwards
type gatingPublisher struct {
	pubsub.Publisher
	blocked chan struct{}
	release chan struct{}

	mu       sync.Mutex
	gated    bool
	versions []int64
}

func (p *gatingPublisher) Publish(topic, eventType string, data interface{}) error {
	if topic == pubsub.TopicGraph {
		p.mu.Lock()
		first := !p.gated
		p.gated = true
		p.mu.Unlock()
		if first {
			close(p.blocked)
			<-p.release
		}
		p.mu.Lock()
		p.versions = append(p.versions, data.(*model.GraphData).Version)
		p.mu.Unlock()
	}
	return p.Publisher.Publish(topic, eventType, data)
}

func (p *gatingPublisher) published() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.versions...)
}

func TestCoordinatorNeverPublishesOlderGraphLast(t *testing.T) {
	inner := pubsub.NewGraphPublisher()
	defer inner.Close()
	pub := &gatingPublisher{
		Publisher: inner,
		blocked:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	statuses := subscribe(t, inner, pubsub.TopicGraphStatus)

	c := NewCoordinator(context.Background(), testEngine(testCatalog()), pub)
	defer c.Close()

	v1 := c.Submit(graph.Options{Seeds: []int64{21}})
	select {
	case <-pub.blocked:
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for the first graph publish")
	}

	// v1 passed its latest-version check and is stuck publishing
	v2 := c.Submit(graph.Options{Seeds: []int64{20}})
	deadline := time.After(time.Second)
	for laidOut := false; !laidOut; {
		select {
		case event := <-statuses.Events():
			var status pubsub.GraphStatus
			if err := json.Unmarshal(event.Data, &status); err != nil {
				t.Fatalf("Failed to decode status: %v", err)
			}
			laidOut = status.Version == v2 && status.State == pubsub.StateLayout
		case <-deadline:
			t.Fatal("Timeout waiting for the second build to reach layout")
		}
	}
	time.Sleep(50 * time.Millisecond)

	close(pub.release)
	c.Wait()

	got := pub.published()
	if len(got) == 0 || got[len(got)-1] != v2 {
		t.Errorf("Expected v%d published last, got order %v", v2, got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Errorf("Expected graphs published in version order, got %v", got)
		}
	}
	if snap, ok := c.Current(); !ok || snap.Version != v2 {
		t.Errorf("Expected current graph v%d, got %+v", v2, snap)
	}
	if len(got) > 0 && got[0] != v1 {
		t.Errorf("Expected v%d published first, got order %v", v1, got)
	}
}

func TestCoordinatorLookup(t *testing.T) {
	pub := pubsub.NewGraphPublisher()
	defer pub.Close()
	c := NewCoordinator(context.Background(), testEngine(testCatalog()), pub)
	defer c.Close()

	if _, err := c.Lookup(21); !errors.Is(err, ErrNoGraph) {
		t.Errorf("Expected ErrNoGraph, got %v", err)
	}

	c.Submit(graph.Options{Seeds: []int64{21}})
	c.Wait()

	detail, err := c.Lookup(20)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if detail.Label != "Naruto" || detail.Seed {
		t.Errorf("Unexpected detail %+v", detail)
	}
	if detail.Connections != 1 || len(detail.Neighbors) != 1 || detail.Neighbors[0] != 21 {
		t.Errorf("Expected Naruto connected to [21], got %d %v", detail.Connections, detail.Neighbors)
	}
	seed, _ := c.Lookup(21)
	if !seed.Seed {
		t.Error("Expected seed flagged in detail")
	}
	if seed.Connections != 2 || len(seed.Neighbors) != 2 || seed.Neighbors[0] != 20 || seed.Neighbors[1] != 269 {
		t.Errorf("Expected One Piece connected to [20 269], got %d %v", seed.Connections, seed.Neighbors)
	}
	if _, err := c.Lookup(999); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound, got %v", err)
	}
}

func TestCoordinatorStatusEvents(t *testing.T) {
	pub := pubsub.NewGraphPublisher()
	defer pub.Close()
	statuses := subscribe(t, pub, pubsub.TopicGraphStatus)

	c := NewCoordinator(context.Background(), testEngine(testCatalog()), pub)
	defer c.Close()
	c.Submit(graph.Options{Seeds: []int64{21}})
	c.Wait()

	var types []string
	timeout := time.After(time.Second)
	for len(types) < 5 {
		select {
		case event := <-statuses.Events():
			types = append(types, event.Type)
		case <-timeout:
			t.Fatalf("Timeout waiting for status events, got %v", types)
		}
	}
	want := []string{pubsub.StateQueued, pubsub.StateFetching, pubsub.StateBuilding, pubsub.StateLayout, pubsub.StateReady}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("Expected status %d to be %s, got %s", i, want[i], types[i])
		}
	}
}

func TestCoordinatorSeedToggling(t *testing.T) {
	pub := pubsub.NewGraphPublisher()
	defer pub.Close()
	c := NewCoordinator(context.Background(), testEngine(testCatalog()), pub)
	defer c.Close()

	c.Submit(graph.Options{Seeds: []int64{21}, ColorEdgesByTag: true})
	c.AddSeed(20)
	c.AddSeed(20)
	if got := c.Options().Seeds; len(got) != 2 || got[1] != 20 {
		t.Errorf("Expected seeds [21 20], got %v", got)
	}
	if !c.Options().ColorEdgesByTag {
		t.Error("Expected other options to be kept")
	}

	v := c.RemoveSeed(21)
	c.Wait()
	snap, ok := c.Current()
	if !ok || snap.Version != v {
		t.Fatalf("Expected version %d published", v)
	}
	if len(snap.Options.Seeds) != 1 || snap.Options.Seeds[0] != 20 {
		t.Errorf("Expected seeds [20], got %v", snap.Options.Seeds)
	}
}

func TestCoordinatorReadyStatusCarriesDiff(t *testing.T) {
	pub := pubsub.NewGraphPublisher()
	defer pub.Close()
	statuses := subscribe(t, pub, pubsub.TopicGraphStatus)

	c := NewCoordinator(context.Background(), testEngine(testCatalog()), pub)
	defer c.Close()

	var ready []pubsub.GraphStatus
	waitReady := func() {
		t.Helper()
		timeout := time.After(time.Second)
		for {
			select {
			case event := <-statuses.Events():
				if event.Type != pubsub.StateReady {
					continue
				}
				var status pubsub.GraphStatus
				if err := json.Unmarshal(event.Data, &status); err != nil {
					t.Fatalf("Bad status payload: %v", err)
				}
				ready = append(ready, status)
				return
			case <-timeout:
				t.Fatal("Timeout waiting for ready status")
			}
		}
	}

	c.Submit(graph.Options{Seeds: []int64{21}})
	c.Wait()
	waitReady()
	c.Submit(graph.Options{Seeds: []int64{20}})
	c.Wait()
	waitReady()

	first, second := ready[0].Diff, ready[1].Diff
	if first == nil || first.Since != 0 || len(first.AddedNodes) != 3 {
		t.Errorf("Expected first graph to add 3 nodes, got %+v", first)
	}
	if second == nil || second.Since != 1 {
		t.Fatalf("Expected diff since version 1, got %+v", second)
	}
	if len(second.RemovedNodes) != 2 || second.RemovedNodes[0] != 21 || second.RemovedNodes[1] != 269 {
		t.Errorf("Expected 21 and 269 removed, got %v", second.RemovedNodes)
	}
	if len(second.ModifiedNodes) != 1 || second.ModifiedNodes[0] != 20 {
		t.Errorf("Expected 20 modified by becoming a seed, got %v", second.ModifiedNodes)
	}
}

func TestShortHash(t *testing.T) {
	if got := shortHash(""); got != "" {
		t.Errorf("Expected empty hash unchanged, got %q", got)
	}
	if got := shortHash("abc"); got != "abc" {
		t.Errorf("Expected short hash unchanged, got %q", got)
	}
	if got := shortHash("0123456789abcdef"); got != "0123456789ab" {
		t.Errorf("Expected 12 characters, got %q", got)
	}
}
