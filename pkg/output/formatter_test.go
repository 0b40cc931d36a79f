package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ritzau/media-graph/pkg/model"
)

func init() {
	color.NoColor = true
}

func TestPrintGraphSummary(t *testing.T) {
	data := &model.GraphData{
		ScaleFactor: 1,
		Nodes: []model.GraphNode{
			{ID: 21, Label: "One Piece", Seed: true},
			{ID: 20, Label: "Naruto", Size: 8, Rating: 120, Status: model.StatusCompleted},
			{ID: 269, Label: "Bleach", Size: 12, Rating: 40},
		},
		Failures: []model.SeedFailure{{ID: 404, Error: "not found"}},
	}

	var buf bytes.Buffer
	PrintGraphSummary(&buf, data, 1)
	out := buf.String()

	for _, want := range []string{"Nodes: 3", "One Piece (#21)", "TOP 1 OF 2", "Bleach", "#404: not found"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Naruto") {
		t.Error("Expected only the largest recommendation listed")
	}
}

func TestPrintGraphSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintGraphSummary(&buf, &model.GraphData{}, DefaultTop)
	if !strings.Contains(buf.String(), "Graph is empty") {
		t.Errorf("Expected empty hint, got:\n%s", buf.String())
	}
}

func TestPrintSearchResults(t *testing.T) {
	var buf bytes.Buffer
	PrintSearchResults(&buf, &model.SearchPage{
		PageInfo: model.PageInfo{Total: 40, HasNextPage: true},
		Media:    []model.Media{{ID: 20, Title: model.MediaTitle{English: "Naruto"}, Format: "TV", SeasonYear: 2002}},
	})
	out := buf.String()
	if !strings.Contains(out, "20  Naruto") || !strings.Contains(out, "TV 2002") || !strings.Contains(out, "showing 1 of 40") {
		t.Errorf("Unexpected search output:\n%s", out)
	}
}

func TestPrintUserList(t *testing.T) {
	var buf bytes.Buffer
	PrintUserList(&buf, "someone", &model.MediaListCollection{Lists: []model.MediaListGroup{
		{Status: model.StatusCompleted, Entries: []model.MediaListEntry{{MediaID: 1}, {MediaID: 2}}},
		{Status: model.StatusCompleted, Entries: []model.MediaListEntry{{MediaID: 3}}},
	}})
	out := buf.String()
	if !strings.Contains(out, "someone: 3 entries") || !strings.Contains(out, "COMPLETED  3") {
		t.Errorf("Unexpected user output:\n%s", out)
	}
}
