package graph

import (
	"regexp"
	"testing"

	"github.com/ritzau/media-graph/pkg/model"
)

func TestBestTagHighestProduct(t *testing.T) {
	source := []model.MediaTag{tag("Action", 80), tag("Comedy", 50)}
	target := []model.MediaTag{tag("Action", 70), tag("Comedy", 90)}

	name, score := BestTag(source, target)
	if name != "Action" || score != 5600 {
		t.Errorf("Expected Action with score 5600, got %s with %d", name, score)
	}
}

func TestBestTagStrictlyGreaterWins(t *testing.T) {
	source := []model.MediaTag{tag("A", 5), tag("B", 3)}
	target := []model.MediaTag{tag("A", 4), tag("B", 9)}

	if name, score := BestTag(source, target); name != "B" || score != 27 {
		t.Errorf("Expected B with score 27, got %s with %d", name, score)
	}

	// Equal scores keep the first match
	source = []model.MediaTag{tag("A", 6), tag("B", 3)}
	target = []model.MediaTag{tag("B", 4), tag("A", 2)}
	if name, _ := BestTag(source, target); name != "A" {
		t.Errorf("Expected tie to resolve to A, got %s", name)
	}
}

func TestBestTagIgnoresEmptyAndUnranked(t *testing.T) {
	source := []model.MediaTag{tag("", 90), tag("Drama", 0), tag("Mecha", 10)}
	target := []model.MediaTag{tag("", 90), tag("Drama", 99), tag("Space", 50)}

	if name, score := BestTag(source, target); name != "" || score != 0 {
		t.Errorf("Expected no shared tag, got %q with %d", name, score)
	}
}

func TestTagColor(t *testing.T) {
	tests := map[string]string{
		"Action":  "#74946a",
		"Comedy":  "#78a3f6",
		"Romance": "#4aa955",
		"a":       "#000061",
		"":        "#000000",
	}
	for name, want := range tests {
		if got := TagColor(name); got != want {
			t.Errorf("TagColor(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestTagColorIsStableHex(t *testing.T) {
	valid := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	for _, name := range []string{"Isekai", "Slice of Life", "女性主人公", "🎸 Music", "Super Power"} {
		first := TagColor(name)
		if !valid.MatchString(first) {
			t.Errorf("TagColor(%q) = %s, not a 6 digit hex color", name, first)
		}
		if again := TagColor(name); again != first {
			t.Errorf("TagColor(%q) not stable: %s then %s", name, first, again)
		}
	}
}

func TestClassifyEdge(t *testing.T) {
	src := media(1, "A", 1, tag("Action", 80), tag("Comedy", 50))
	tgt := media(2, "B", 1, tag("Action", 70), tag("Comedy", 90))

	e := &Edge{Source: 1, Target: 2, Color: NeutralEdgeColor}
	ClassifyEdge(e, &src, &tgt)

	if e.Label != "Action" || e.Color != "#74946a" {
		t.Errorf("Expected Action/#74946a, got %s/%s", e.Label, e.Color)
	}
}
