package graph

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	"github.com/ritzau/media-graph/pkg/model"
)

// Options are the user-facing inputs that determine a graph build. The zero
// value is the default: no compensation, nothing hidden, proportional
// scaling, no minimum connections, neutral edges and no per-seed cap.
type Options struct {
	Seeds                     []int64                 `json:"ids" koanf:"ids"`
	Username                  string                  `json:"user,omitempty" koanf:"user"`
	UsePopularityCompensation bool                    `json:"usePopularityCompensation" koanf:"use_popularity_compensation"`
	HiddenStatuses            []model.MediaListStatus `json:"hideStatuses,omitempty" koanf:"hide_statuses"`
	HideNotOnList             bool                    `json:"hideNotOnList" koanf:"hide_not_on_list"`
	UseLinearScaling          bool                    `json:"useLinearScaling" koanf:"use_linear_scaling"`
	MinConnections            int                     `json:"minConnections,omitempty" koanf:"min_connections"`
	ColorEdgesByTag           bool                    `json:"colorEdgesByTag" koanf:"color_edges_by_tag"`
	MaxRecommendations        int                     `json:"maxRecommendations,omitempty" koanf:"max_recommendations"`
}

// Normalized returns a copy with duplicate and non-positive seeds dropped
// (first occurrence kept), hidden statuses sorted and deduplicated, and
// negative thresholds cleared
func (o Options) Normalized() Options {
	out := o

	seen := make(map[int64]bool, len(o.Seeds))
	out.Seeds = make([]int64, 0, len(o.Seeds))
	for _, id := range o.Seeds {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out.Seeds = append(out.Seeds, id)
	}

	hidden := make(map[model.MediaListStatus]bool, len(o.HiddenStatuses))
	out.HiddenStatuses = nil
	for _, s := range o.HiddenStatuses {
		if !hidden[s] {
			hidden[s] = true
			out.HiddenStatuses = append(out.HiddenStatuses, s)
		}
	}
	sort.Slice(out.HiddenStatuses, func(i, j int) bool { return out.HiddenStatuses[i] < out.HiddenStatuses[j] })

	if out.MinConnections < 0 {
		out.MinConnections = 0
	}
	if out.MaxRecommendations < 0 {
		out.MaxRecommendations = 0
	}
	return out
}

// Scaling returns the node scaling strategy selected by the options
func (o Options) Scaling() ScalingStrategy {
	if o.UseLinearScaling {
		return Linear
	}
	return Proportional
}

// IsHidden reports whether items with the given status are filtered out
func (o Options) IsHidden(status model.MediaListStatus) bool {
	for _, s := range o.HiddenStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// WithSeed returns a copy with id appended to the seeds if absent
func (o Options) WithSeed(id int64) Options {
	for _, s := range o.Seeds {
		if s == id {
			return o
		}
	}
	out := o
	out.Seeds = append(append([]int64(nil), o.Seeds...), id)
	return out
}

// WithoutSeed returns a copy with id removed from the seeds
func (o Options) WithoutSeed(id int64) Options {
	out := o
	out.Seeds = nil
	for _, s := range o.Seeds {
		if s != id {
			out.Seeds = append(out.Seeds, s)
		}
	}
	return out
}

// Hash identifies the input set, so two option values that normalize to the
// same thing share a hash
func (o Options) Hash() string {
	data, err := json.Marshal(o.Normalized())
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
