package graph

import "github.com/ritzau/media-graph/pkg/model"

func intPtr(v int) *int { return &v }

func media(id int64, title string, popularity int, tags ...model.MediaTag) model.Media {
	return model.Media{
		ID:         id,
		Title:      model.MediaTitle{Romaji: title},
		Popularity: popularity,
		Tags:       tags,
	}
}

func tag(name string, rank int) model.MediaTag {
	return model.MediaTag{Name: name, Rank: rank}
}

// recommend appends a recommendation of target with rating to m
func recommend(m *model.Media, target model.Media, rating int) {
	if m.Recommendations == nil {
		m.Recommendations = &model.RecommendationConnection{}
	}
	t := target
	m.Recommendations.Nodes = append(m.Recommendations.Nodes, model.Recommendation{
		ID:     int64(len(m.Recommendations.Nodes) + 1),
		Rating: intPtr(rating),
		Media:  &t,
	})
}

func userList(entries map[model.MediaListStatus][]int64) *model.MediaListCollection {
	list := &model.MediaListCollection{}
	for _, status := range model.AllStatuses {
		ids, ok := entries[status]
		if !ok {
			continue
		}
		group := model.MediaListGroup{Status: status}
		for _, id := range ids {
			group.Entries = append(group.Entries, model.MediaListEntry{MediaID: id})
		}
		list.Lists = append(list.Lists, group)
	}
	return list
}

func approxEqual(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < eps
}
