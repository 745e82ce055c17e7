package engine

import "github.com/sanonone/kektorgraph/pkg/core"

// EdgeInfo is the lightweight view of an edge seen from one of its vertices.
type EdgeInfo struct {
	EdgeID        string         `json:"edge_id"`
	Label         string         `json:"label"`
	OtherVertexID string         `json:"other_vertex_id"`
	Direction     core.Direction `json:"direction"` // Relative to the vertex it was read from
	CreatedAt     int64          `json:"created_at"`
}

func newEdgeInfo(vertexID string, s *core.ElementState) EdgeInfo {
	dir := core.DirectionOut
	if s.InVertexID == vertexID && s.OutVertexID != vertexID {
		dir = core.DirectionIn
	}
	return EdgeInfo{
		EdgeID:        s.ID,
		Label:         s.Label,
		OtherVertexID: s.OtherVertexID(vertexID),
		Direction:     dir,
		CreatedAt:     s.CreatedAt,
	}
}

// IsSelfLoop returns true if the edge starts and ends on the same vertex.
func (i EdgeInfo) IsSelfLoop(vertexID string) bool {
	return i.OtherVertexID == vertexID
}
