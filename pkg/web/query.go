package web

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ritzau/media-graph/pkg/graph"
	"github.com/ritzau/media-graph/pkg/model"
)

// ParseQuery reads graph options from a query string. Lists are comma
// separated or repeated, booleans are true only for the literal "true",
// and numeric thresholds are honored only when positive. Anything else
// falls back to the default.
func ParseQuery(q url.Values) graph.Options {
	var opts graph.Options

	for _, s := range stringList(q["ids"]) {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil && id > 0 {
			opts.Seeds = append(opts.Seeds, id)
		}
	}
	for _, s := range stringList(q["hideStatuses"]) {
		if status, err := model.ParseStatus(s); err == nil {
			opts.HiddenStatuses = append(opts.HiddenStatuses, status)
		}
	}

	opts.Username = strings.TrimSpace(q.Get("user"))
	opts.UsePopularityCompensation = q.Get("usePopularityCompensation") == "true"
	opts.HideNotOnList = q.Get("hideNotOnList") == "true"
	opts.UseLinearScaling = q.Get("useLinearScaling") == "true"
	opts.ColorEdgesByTag = q.Get("colorEdgesByTag") == "true"
	opts.MinConnections = positiveInt(q.Get("minConnections"))
	opts.MaxRecommendations = positiveInt(q.Get("maxRecommendations"))

	return opts.Normalized()
}

func stringList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func positiveInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
