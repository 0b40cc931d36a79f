package graph

import "github.com/ritzau/media-graph/pkg/model"

// MediaIndex resolves a node id back to the media item it was built from
type MediaIndex struct {
	items map[int64]*model.Media
	seeds map[int64]bool
}

// NewMediaIndex indexes the seeds first and then every recommendation
// target, in seed order and list order. The first item seen for an id wins,
// so a seed always shadows a recommendation of the same id.
func NewMediaIndex(seeds []model.Media) *MediaIndex {
	idx := &MediaIndex{
		items: make(map[int64]*model.Media),
		seeds: make(map[int64]bool, len(seeds)),
	}
	for i := range seeds {
		if _, ok := idx.items[seeds[i].ID]; !ok {
			idx.items[seeds[i].ID] = &seeds[i]
			idx.seeds[seeds[i].ID] = true
		}
	}
	for i := range seeds {
		for _, rec := range seeds[i].RecommendationList() {
			if rec.Media == nil {
				continue
			}
			if _, ok := idx.items[rec.Media.ID]; !ok {
				idx.items[rec.Media.ID] = rec.Media
			}
		}
	}
	return idx
}

// Lookup returns the media item for id
func (idx *MediaIndex) Lookup(id int64) (*model.Media, bool) {
	m, ok := idx.items[id]
	return m, ok
}

// IsSeed reports whether id was one of the seeds
func (idx *MediaIndex) IsSeed(id int64) bool {
	return idx.seeds[id]
}

// Detail returns the overlay payload for id
func (idx *MediaIndex) Detail(id int64) (model.NodeDetail, bool) {
	m, ok := idx.Lookup(id)
	if !ok {
		return model.NodeDetail{}, false
	}
	return model.NewNodeDetail(m, idx.IsSeed(id)), true
}

// Len returns the number of indexed items
func (idx *MediaIndex) Len() int {
	return len(idx.items)
}
