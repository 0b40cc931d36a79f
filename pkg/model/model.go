package model

import (
	"fmt"
	"regexp"
	"strings"
)

// MediaType distinguishes the two catalog media families
type MediaType string

const (
	MediaTypeAnime MediaType = "ANIME"
	MediaTypeManga MediaType = "MANGA"
)

// ParseMediaType accepts only ANIME or MANGA (case-insensitive)
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToUpper(strings.TrimSpace(s))) {
	case MediaTypeAnime:
		return MediaTypeAnime, nil
	case MediaTypeManga:
		return MediaTypeManga, nil
	}
	return "", fmt.Errorf("media type must be ANIME or MANGA, got %q", s)
}

// MediaTitle holds the alternate titles of a media item
type MediaTitle struct {
	Romaji  string `json:"romaji,omitempty"`
	English string `json:"english,omitempty"`
	Native  string `json:"native,omitempty"`
}

// MediaTag is a catalog tag with its relevance rank (0-100)
type MediaTag struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	Rank     int    `json:"rank"`
	Category string `json:"category,omitempty"`

	IsGeneralSpoiler bool `json:"isGeneralSpoiler,omitempty"`
	IsMediaSpoiler   bool `json:"isMediaSpoiler,omitempty"`
}

// CoverImage links to the cover art in several sizes
type CoverImage struct {
	ExtraLarge string `json:"extraLarge,omitempty"`
	Large      string `json:"large,omitempty"`
	Medium     string `json:"medium,omitempty"`
	Color      string `json:"color,omitempty"`
}

// FuzzyDate is a date where any component may be missing
type FuzzyDate struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
	Day   int `json:"day,omitempty"`
}

// Recommendation is a rated association from one media item to another.
// Rating is nil when the catalog has no votes recorded; Media is nil when
// the recommended item was deleted upstream.
type Recommendation struct {
	ID     int64  `json:"id"`
	Rating *int   `json:"rating"`
	Media  *Media `json:"mediaRecommendation"`
}

// RecommendationConnection mirrors the paginated shape the catalog returns
type RecommendationConnection struct {
	Nodes []Recommendation `json:"nodes"`
}

// Media is a single anime or manga item as returned by the catalog
type Media struct {
	ID           int64      `json:"id"`
	IDMal        int64      `json:"idMal,omitempty"`
	Title        MediaTitle `json:"title"`
	Type         MediaType  `json:"type,omitempty"`
	Format       string     `json:"format,omitempty"`
	Status       string     `json:"status,omitempty"`
	Description  string     `json:"description,omitempty"`
	Episodes     int        `json:"episodes,omitempty"`
	Chapters     int        `json:"chapters,omitempty"`
	Volumes      int        `json:"volumes,omitempty"`
	Duration     int        `json:"duration,omitempty"`
	Season       string     `json:"season,omitempty"`
	SeasonYear   int        `json:"seasonYear,omitempty"`
	StartDate    FuzzyDate  `json:"startDate"`
	AverageScore int        `json:"averageScore,omitempty"`
	MeanScore    int        `json:"meanScore,omitempty"`
	Popularity   int        `json:"popularity,omitempty"`
	Favourites   int        `json:"favourites,omitempty"`
	Genres       []string   `json:"genres,omitempty"`
	Tags         []MediaTag `json:"tags,omitempty"`
	CoverImage   CoverImage `json:"coverImage"`
	BannerImage  string     `json:"bannerImage,omitempty"`
	SiteURL      string     `json:"siteUrl,omitempty"`
	IsAdult      bool       `json:"isAdult,omitempty"`

	Recommendations *RecommendationConnection `json:"recommendations,omitempty"`
}

// DisplayTitle returns the romaji title, falling back to English and then
// to a synthetic "Media {id}" label
func (m *Media) DisplayTitle() string {
	if m.Title.Romaji != "" {
		return m.Title.Romaji
	}
	if m.Title.English != "" {
		return m.Title.English
	}
	return fmt.Sprintf("Media %d", m.ID)
}

// PopularityOrDefault floors popularity to 1 so it is always a safe divisor
func (m *Media) PopularityOrDefault() int {
	if m == nil || m.Popularity < 1 {
		return 1
	}
	return m.Popularity
}

// RecommendationList returns the recommendation records in catalog order
func (m *Media) RecommendationList() []Recommendation {
	if m.Recommendations == nil {
		return nil
	}
	return m.Recommendations.Nodes
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// PlainDescription strips the HTML markup the catalog embeds in descriptions
func (m *Media) PlainDescription() string {
	return strings.TrimSpace(htmlTag.ReplaceAllString(m.Description, ""))
}

// PageInfo describes a page of search results
type PageInfo struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	HasNextPage bool `json:"hasNextPage"`
	PerPage     int  `json:"perPage"`
}

// SearchPage is one page of catalog search results
type SearchPage struct {
	PageInfo PageInfo `json:"pageInfo"`
	Media    []Media  `json:"media"`
}
