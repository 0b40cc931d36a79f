package model

import "testing"

func TestNewStatusIndex(t *testing.T) {
	list := &MediaListCollection{Lists: []MediaListGroup{
		{Status: StatusCompleted, Entries: []MediaListEntry{{MediaID: 1}, {MediaID: 2}}},
		{Status: "", Entries: []MediaListEntry{{MediaID: 3}}},
		{Status: StatusDropped, Entries: []MediaListEntry{{MediaID: 0}, {MediaID: 2}}},
	}}

	idx := NewStatusIndex(list)

	if s, ok := idx.Lookup(1); !ok || s != StatusCompleted {
		t.Errorf("Expected COMPLETED for 1, got %q", s)
	}
	if s, _ := idx.Lookup(2); s != StatusDropped {
		t.Errorf("Expected later group to win for 2, got %q", s)
	}
	if _, ok := idx.Lookup(3); ok {
		t.Error("Entry in a group without status should be skipped")
	}
	if len(idx) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(idx))
	}
}

func TestNewStatusIndexNil(t *testing.T) {
	if idx := NewStatusIndex(nil); idx == nil || len(idx) != 0 {
		t.Errorf("Expected empty index, got %v", idx)
	}
}

func TestMergeLists(t *testing.T) {
	anime := &MediaListCollection{Lists: []MediaListGroup{{Status: StatusCurrent, Entries: []MediaListEntry{{MediaID: 1}}}}}
	manga := &MediaListCollection{Lists: []MediaListGroup{{Status: StatusPlanning, Entries: []MediaListEntry{{MediaID: 2}, {MediaID: 3}}}}}

	anime.Merge(manga)
	anime.Merge(nil)

	if len(anime.Lists) != 2 || anime.EntryCount() != 3 {
		t.Errorf("Expected 2 groups with 3 entries, got %d/%d", len(anime.Lists), anime.EntryCount())
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus(" dropped "); err != nil || s != StatusDropped {
		t.Errorf("ParseStatus = %q, %v", s, err)
	}
	if _, err := ParseStatus("WATCHING"); err == nil {
		t.Error("Expected error for unknown status")
	}
}

func TestParseMediaType(t *testing.T) {
	if mt, err := ParseMediaType("manga"); err != nil || mt != MediaTypeManga {
		t.Errorf("ParseMediaType = %q, %v", mt, err)
	}
	if _, err := ParseMediaType("NOVEL"); err == nil {
		t.Error("Expected error for unsupported type")
	}
}

func TestDisplayTitleFallback(t *testing.T) {
	tests := []struct {
		title MediaTitle
		want  string
	}{
		{MediaTitle{Romaji: "Shingeki no Kyojin", English: "Attack on Titan"}, "Shingeki no Kyojin"},
		{MediaTitle{English: "Attack on Titan", Native: "進撃の巨人"}, "Attack on Titan"},
		{MediaTitle{Native: "進撃の巨人"}, "Media 16498"},
	}
	for _, tt := range tests {
		m := Media{ID: 16498, Title: tt.title}
		if got := m.DisplayTitle(); got != tt.want {
			t.Errorf("DisplayTitle() = %q, want %q", got, tt.want)
		}
	}
}

func TestPopularityOrDefault(t *testing.T) {
	var missing *Media
	for _, m := range []*Media{missing, {Popularity: 0}, {Popularity: -4}} {
		if m.PopularityOrDefault() != 1 {
			t.Errorf("Expected popularity floor of 1 for %+v", m)
		}
	}
	if (&Media{Popularity: 250}).PopularityOrDefault() != 250 {
		t.Error("Expected popularity to pass through")
	}
}
