package graph

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/ritzau/media-graph/pkg/model"
)

// BestTag returns the tag shared by both items with the highest product of
// ranks. Tags with an empty name or a zero rank never match. On equal
// scores the first match in source-then-target order is kept. An empty
// name and a zero score mean nothing is shared.
func BestTag(source, target []model.MediaTag) (name string, score int) {
	for _, st := range source {
		if st.Name == "" || st.Rank == 0 {
			continue
		}
		for _, tt := range target {
			if tt.Name == "" || tt.Rank == 0 {
				continue
			}
			if st.Name != tt.Name {
				continue
			}
			if s := st.Rank * tt.Rank; s > score {
				score = s
				name = st.Name
			}
		}
	}
	return name, score
}

// TagColor derives a stable "#rrggbb" color from a tag name using a 32-bit
// rolling hash (h = h*31 + c) over the name's UTF-16 code units. The absolute
// hash is written in hex, truncated to six digits and left-padded with zeros.
func TagColor(name string) string {
	var h int32
	for _, r := range name {
		h = (h << 5) - h + int32(firstCodeUnit(r))
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	hex := fmt.Sprintf("%x", abs)
	if len(hex) > 6 {
		hex = hex[:6]
	}
	return "#" + strings.Repeat("0", 6-len(hex)) + hex
}

// firstCodeUnit returns the leading UTF-16 code unit of r: the rune itself
// inside the basic plane, the high surrogate above it
func firstCodeUnit(r rune) rune {
	if r < 0x10000 {
		return r
	}
	hi, _ := utf16.EncodeRune(r)
	return hi
}

// ClassifyEdge labels and colors e by the best tag shared by its endpoints
func ClassifyEdge(e *Edge, source, target *model.Media) {
	name, _ := BestTag(source.Tags, target.Tags)
	e.Label = name
	e.Color = TagColor(name)
}
