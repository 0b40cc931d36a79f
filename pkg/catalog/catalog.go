// Package catalog fetches media, search results and user lists from the
// upstream media catalog, with an optional SQLite read-through cache.
package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ritzau/media-graph/pkg/logging"
	"github.com/ritzau/media-graph/pkg/metrics"
	"github.com/ritzau/media-graph/pkg/model"
)

// Catalog is the media source the graph is built from
type Catalog interface {
	FetchMedia(ctx context.Context, id int64) (*model.Media, error)
	SearchMedia(ctx context.Context, query string, t model.MediaType) (*model.SearchPage, error)
	FetchUserList(ctx context.Context, username string) (*model.MediaListCollection, error)
}

// DefaultSeedConcurrency bounds parallel seed fetches when no limit is given
const DefaultSeedConcurrency = 4

// FetchSeeds resolves ids concurrently, at most limit at a time. Results
// keep the order of ids; duplicates are fetched once. A failing id is
// reported in the failure list and never aborts the others.
func FetchSeeds(ctx context.Context, cat Catalog, ids []int64, limit int) ([]model.Media, []model.SeedFailure) {
	if limit <= 0 {
		limit = DefaultSeedConcurrency
	}

	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	media := make([]*model.Media, len(unique))
	errs := make([]error, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, id := range unique {
		g.Go(func() error {
			m, err := cat.FetchMedia(gctx, id)
			media[i], errs[i] = m, err
			return nil
		})
	}
	_ = g.Wait()

	var seeds []model.Media
	var failures []model.SeedFailure
	for i, id := range unique {
		if errs[i] != nil {
			logging.Warn("failed to fetch seed", "id", id, "error", errs[i])
			failures = append(failures, model.SeedFailure{ID: id, Error: errs[i].Error()})
			continue
		}
		seeds = append(seeds, *media[i])
	}
	metrics.SeedFailures.Add(float64(len(failures)))
	return seeds, failures
}
