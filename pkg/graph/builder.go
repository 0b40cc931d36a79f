package graph

import (
	"github.com/ritzau/media-graph/pkg/model"
)

// Colors used for nodes and edges
const (
	SeedColor        = "#000000"
	NewNodeColor     = "#aaaaaa"
	NeutralEdgeColor = "#cbd5e0"
)

// StatusColors maps each list status to its node color
var StatusColors = map[model.MediaListStatus]string{
	model.StatusCompleted: "#48bb78",
	model.StatusCurrent:   "#4299e1",
	model.StatusDropped:   "#f56565",
	model.StatusPaused:    "#ed8936",
	model.StatusPlanning:  "#9f7aea",
	model.StatusRepeating: "#38b2ac",
}

// Initial sizes before scaling runs
const (
	initialSeedSize           = 15
	initialRecommendationSize = 10
)

// Aggregate is the running sum and count of recommendation strengths that
// point at a node
type Aggregate struct {
	Sum   float64
	Count int
}

// Aggregates is keyed by node id. Iteration order carries no meaning; every
// consumer that needs an order sorts by id.
type Aggregates map[int64]Aggregate

// Add records one incoming recommendation of the given strength
func (a Aggregates) Add(id int64, value float64) {
	agg := a[id]
	agg.Sum += value
	agg.Count++
	a[id] = agg
}

// Builder turns seed items and their recommendation lists into a
// RecommendationGraph while accumulating per-node aggregates
type Builder struct {
	graph      *RecommendationGraph
	aggregates Aggregates
	statuses   model.StatusIndex
	opts       Options
	factor     float64
}

// NewBuilder creates a builder. factor is the edge scale factor computed by
// EdgeScaleFactor over the same seeds.
func NewBuilder(statuses model.StatusIndex, opts Options, factor float64) *Builder {
	if statuses == nil {
		statuses = model.StatusIndex{}
	}
	return &Builder{
		graph:      NewRecommendationGraph(),
		aggregates: make(Aggregates),
		statuses:   statuses,
		opts:       opts,
		factor:     factor,
	}
}

// AddSeeds adds a node for every seed item. Seeds are added before any
// recommendation so a seed recommended by another seed keeps its seed origin.
func (b *Builder) AddSeeds(seeds []model.Media) {
	for i := range seeds {
		seed := &seeds[i]
		b.graph.AddNode(&Node{
			ID:         seed.ID,
			Label:      seed.DisplayTitle(),
			Color:      SeedColor,
			Status:     b.statuses[seed.ID],
			Origin:     OriginSeed,
			Popularity: seed.PopularityOrDefault(),
			Size:       initialSeedSize,
		})
	}
}

// AddRecommendations processes the recommendation list of one seed, capped
// to the first MaxRecommendations entries when a cap is set
func (b *Builder) AddRecommendations(seed *model.Media) {
	recs := seed.RecommendationList()
	if b.opts.MaxRecommendations > 0 && len(recs) > b.opts.MaxRecommendations {
		recs = recs[:b.opts.MaxRecommendations]
	}

	for _, rec := range recs {
		if rec.Media == nil {
			continue
		}
		target := rec.Media

		status, onList := b.statuses.Lookup(target.ID)
		if onList && b.opts.IsHidden(status) {
			continue
		}
		if b.opts.HideNotOnList && !onList {
			continue
		}

		color := NewNodeColor
		if onList {
			if c, ok := StatusColors[status]; ok {
				color = c
			}
		}
		b.graph.AddNode(&Node{
			ID:         target.ID,
			Label:      target.DisplayTitle(),
			Color:      color,
			Status:     status,
			Origin:     OriginRecommendation,
			Popularity: target.PopularityOrDefault(),
			Size:       initialRecommendationSize,
		})

		rating := 0
		if rec.Rating != nil {
			rating = *rec.Rating
		}
		b.aggregates.Add(target.ID, aggregateValue(rating, target, b.opts.UsePopularityCompensation))

		if b.graph.HasEdge(seed.ID, target.ID) {
			continue
		}
		strength := Strength(rating, seed.PopularityOrDefault(), target.PopularityOrDefault(), b.opts.UsePopularityCompensation)
		edge := &Edge{
			Source: seed.ID,
			Target: target.ID,
			Size:   EdgeSize(strength, b.factor),
			Color:  NeutralEdgeColor,
		}
		if b.opts.ColorEdgesByTag {
			ClassifyEdge(edge, seed, target)
		}
		b.graph.AddEdge(edge)
	}
}

// aggregateValue is the amount a recommendation contributes to its target's
// aggregate: the rating, or the rating per user of the target when
// compensation is on
func aggregateValue(rating int, target *model.Media, compensate bool) float64 {
	if compensate {
		return float64(rating) / float64(target.PopularityOrDefault())
	}
	return float64(rating)
}

// Graph returns the graph built so far
func (b *Builder) Graph() *RecommendationGraph {
	return b.graph
}

// Aggregates returns the accumulated aggregates
func (b *Builder) Aggregates() Aggregates {
	return b.aggregates
}
