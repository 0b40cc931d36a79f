package model

// GraphData is the positioned, styled graph handed to the renderer.
// Nodes are ordered by id and edges by (source, target).
type GraphData struct {
	Version     int64         `json:"version,omitempty"`
	Hash        string        `json:"hash,omitempty"`
	ScaleFactor float64       `json:"scaleFactor"`
	Nodes       []GraphNode   `json:"nodes"`
	Edges       []GraphEdge   `json:"edges"`
	Failures    []SeedFailure `json:"failures,omitempty"`
}

// GraphNode is a media item placed in the layout
type GraphNode struct {
	ID     int64           `json:"id"`
	Label  string          `json:"label"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	Size   float64         `json:"size"`
	Rating int             `json:"rating"`
	Color  string          `json:"color"`
	Seed   bool            `json:"seed,omitempty"`
	Status MediaListStatus `json:"status,omitempty"`
}

// GraphEdge is an undirected recommendation link. Source is the item whose
// recommendation created the edge.
type GraphEdge struct {
	Source int64   `json:"source"`
	Target int64   `json:"target"`
	Size   float64 `json:"size"`
	Color  string  `json:"color"`
	Label  string  `json:"label,omitempty"`
}

// SeedFailure reports a seed id that could not be resolved
type SeedFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

// NodeDetail is the overlay payload shown when a node is hovered or clicked
type NodeDetail struct {
	ID           int64      `json:"id"`
	IDMal        int64      `json:"idMal,omitempty"`
	Title        MediaTitle `json:"title"`
	Label        string     `json:"label"`
	Type         MediaType  `json:"type,omitempty"`
	Format       string     `json:"format,omitempty"`
	Episodes     int        `json:"episodes,omitempty"`
	Chapters     int        `json:"chapters,omitempty"`
	AverageScore int        `json:"averageScore,omitempty"`
	Popularity   int        `json:"popularity,omitempty"`
	Genres       []string   `json:"genres,omitempty"`
	Description  string     `json:"description,omitempty"`
	CoverImage   string     `json:"coverImage,omitempty"`
	SiteURL      string     `json:"siteUrl,omitempty"`
	Seed         bool       `json:"seed"`
	Connections  int        `json:"connections"`
	Neighbors    []int64    `json:"neighbors,omitempty"`
}

// NewNodeDetail extracts the overlay fields from a media item
func NewNodeDetail(m *Media, seed bool) NodeDetail {
	cover := m.CoverImage.Large
	if cover == "" {
		cover = m.CoverImage.Medium
	}
	return NodeDetail{
		ID:           m.ID,
		IDMal:        m.IDMal,
		Title:        m.Title,
		Label:        m.DisplayTitle(),
		Type:         m.Type,
		Format:       m.Format,
		Episodes:     m.Episodes,
		Chapters:     m.Chapters,
		AverageScore: m.AverageScore,
		Popularity:   m.Popularity,
		Genres:       m.Genres,
		Description:  m.PlainDescription(),
		CoverImage:   cover,
		SiteURL:      m.SiteURL,
		Seed:         seed,
	}
}

// GraphDiff lists what changed between two published graphs. Positions are
// ignored; a node counts as modified when its weight, color or status moved.
type GraphDiff struct {
	Since         int64      `json:"since"`
	AddedNodes    []int64    `json:"addedNodes"`
	RemovedNodes  []int64    `json:"removedNodes"`
	ModifiedNodes []int64    `json:"modifiedNodes"`
	AddedEdges    [][2]int64 `json:"addedEdges"`
	RemovedEdges  [][2]int64 `json:"removedEdges"`
}

// Empty reports whether the graphs had the same nodes and edges
func (d *GraphDiff) Empty() bool {
	return len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 && len(d.ModifiedNodes) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0
}
