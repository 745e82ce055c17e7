package engine

// FindPathOptions defines a path search between two vertices.
type FindPathOptions struct {
	SourceVertexID string `json:"source_vertex_id"`
	DestVertexID   string `json:"dest_vertex_id"`

	// MaxHops is the largest number of edges in a returned path.
	// 0 uses Options.DefaultMaxHops.
	MaxHops int `json:"max_hops"`

	// Labels restricts traversal to edges with one of these labels.
	// If empty, every label is followed.
	Labels []string `json:"labels,omitempty"`

	// ExcludedLabels are never traversed, even when listed in Labels.
	ExcludedLabels []string `json:"excluded_labels,omitempty"`

	// GetAnyPath stops the search at the first path found.
	GetAnyPath bool `json:"get_any_path"`

	// ProgressCallback, if set, is called while the first hop is explored.
	ProgressCallback ProgressCallback `json:"-"`
}

// Path is a sequence of vertex ids from source to destination.
type Path []string

// Length returns the number of edges in the path.
func (p Path) Length() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// ProgressStep names the phase of a path search.
type ProgressStep string

const (
	ProgressStepSearchingEdges ProgressStep = "searching_edges"
	ProgressStepComplete       ProgressStep = "complete"
)

// Progress is reported to a ProgressCallback.
type Progress struct {
	Fraction float64      // In [0, 1]
	Step     ProgressStep
	Current  int
	Total    int
}

// ProgressCallback receives path search progress.
type ProgressCallback func(Progress)
