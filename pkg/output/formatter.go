package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/ritzau/media-graph/pkg/model"
)

// DefaultTop is how many recommendations the graph summary lists
const DefaultTop = 10

// PrintGraphSummary prints a colored overview of a built graph: seeds,
// the strongest recommendations and any seeds that failed to load
func PrintGraphSummary(w io.Writer, data *model.GraphData, top int) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	bold.Fprintln(w, "Media Recommendation Graph")
	bold.Fprintln(w, "==========================")
	if data.Version > 0 {
		fmt.Fprintf(w, "Version: %d\n", data.Version)
	}
	fmt.Fprintf(w, "Nodes: %d  Edges: %d  Scale: %.3g\n", len(data.Nodes), len(data.Edges), data.ScaleFactor)
	fmt.Fprintln(w)

	var seeds, recs []model.GraphNode
	for _, n := range data.Nodes {
		if n.Seed {
			seeds = append(seeds, n)
		} else {
			recs = append(recs, n)
		}
	}

	if len(seeds) > 0 {
		green.Fprintln(w, "SEEDS:")
		for _, n := range seeds {
			fmt.Fprintf(w, "  %s", n.Label)
			cyan.Fprintf(w, " (#%d)\n", n.ID)
		}
		fmt.Fprintln(w)
	}

	if len(recs) > 0 {
		sort.SliceStable(recs, func(i, j int) bool {
			if recs[i].Size != recs[j].Size {
				return recs[i].Size > recs[j].Size
			}
			return recs[i].ID < recs[j].ID
		})
		if top <= 0 || top > len(recs) {
			top = len(recs)
		}
		bold.Fprintf(w, "TOP %d OF %d RECOMMENDATIONS:\n", top, len(recs))
		for i, n := range recs[:top] {
			fmt.Fprintf(w, "  %2d. %-40s size %5.1f  rating %d", i+1, n.Label, n.Size, n.Rating)
			if n.Status != "" {
				yellow.Fprintf(w, "  [%s]", n.Status)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	if len(data.Failures) > 0 {
		red.Fprintf(w, "FAILED SEEDS (%d):\n", len(data.Failures))
		for _, f := range data.Failures {
			red.Fprintf(w, "  #%d: %s\n", f.ID, f.Error)
		}
		return
	}

	if len(data.Nodes) == 0 {
		yellow.Fprintln(w, "Graph is empty: add seed ids with --ids")
		return
	}
	green.Fprintln(w, "✓ All seeds loaded")
}

// PrintSearchResults prints one line per search hit
func PrintSearchResults(w io.Writer, page *model.SearchPage) {
	cyan := color.New(color.FgCyan)
	faint := color.New(color.Faint)

	if page == nil || len(page.Media) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No results")
		return
	}
	for _, m := range page.Media {
		cyan.Fprintf(w, "%8d  ", m.ID)
		fmt.Fprint(w, m.DisplayTitle())
		if m.Format != "" || m.SeasonYear > 0 {
			faint.Fprintf(w, "  %s %s", m.Format, yearString(m.SeasonYear))
		}
		fmt.Fprintln(w)
	}
	if page.PageInfo.HasNextPage {
		faint.Fprintf(w, "showing %d of %d\n", len(page.Media), page.PageInfo.Total)
	}
}

// PrintUserList prints the entry count per list status
func PrintUserList(w io.Writer, username string, list *model.MediaListCollection) {
	bold := color.New(color.Bold)

	bold.Fprintf(w, "%s: %d entries\n", username, list.EntryCount())
	counts := make(map[model.MediaListStatus]int)
	for _, group := range list.Lists {
		counts[group.Status] += len(group.Entries)
	}
	for _, status := range model.AllStatuses {
		if counts[status] > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", status, counts[status])
		}
	}
}

func yearString(y int) string {
	if y <= 0 {
		return ""
	}
	return fmt.Sprint(y)
}
