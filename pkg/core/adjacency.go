package core

import (
	"cmp"
	"sync"

	"github.com/tidwall/btree"
)

// adjacencyItem associates an edge with one of its endpoints. Items are
// ordered by vertex, then direction, then edge id, so all edges of a vertex
// in one direction are contiguous in the tree.
type adjacencyItem struct {
	VertexID  string
	Direction Direction
	EdgeID    string
}

func adjacencyItemLess(a, b adjacencyItem) bool {
	if c := cmp.Compare(a.VertexID, b.VertexID); c != 0 {
		return c < 0
	}
	if a.Direction != b.Direction {
		return a.Direction < b.Direction
	}
	return a.EdgeID < b.EdgeID
}

// AdjacencyIndex maps vertex ids to the ids of edges that reference them.
//
// The index is a superset: an edge stays indexed under every endpoint it has
// ever had until it is removed. Callers must reconstruct each candidate edge
// and check its current endpoints before trusting it.
type AdjacencyIndex struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[adjacencyItem]
}

// NewAdjacencyIndex creates an empty index.
func NewAdjacencyIndex() *AdjacencyIndex {
	return &AdjacencyIndex{
		tree: btree.NewBTreeGOptions(adjacencyItemLess, btree.Options{NoLocks: true}),
	}
}

// Add indexes edgeID as outgoing from outID and incoming to inID.
func (a *AdjacencyIndex) Add(outID, inID, edgeID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tree.Set(adjacencyItem{VertexID: outID, Direction: DirectionOut, EdgeID: edgeID})
	a.tree.Set(adjacencyItem{VertexID: inID, Direction: DirectionIn, EdgeID: edgeID})
}

// Remove drops every entry of edgeID under the given vertices.
func (a *AdjacencyIndex) Remove(edgeID string, vertexIDs ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, v := range vertexIDs {
		a.tree.Delete(adjacencyItem{VertexID: v, Direction: DirectionOut, EdgeID: edgeID})
		a.tree.Delete(adjacencyItem{VertexID: v, Direction: DirectionIn, EdgeID: edgeID})
	}
}

// EdgeIDs returns the candidate edge ids of vertexID in direction dir,
// sorted and without duplicates.
func (a *AdjacencyIndex) EdgeIDs(vertexID string, dir Direction) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var ids []string
	collect := func(d Direction) {
		pivot := adjacencyItem{VertexID: vertexID, Direction: d}
		a.tree.Ascend(pivot, func(item adjacencyItem) bool {
			if item.VertexID != vertexID || item.Direction != d {
				return false
			}
			ids = append(ids, item.EdgeID)
			return true
		})
	}

	switch dir {
	case DirectionOut:
		collect(DirectionOut)
	case DirectionIn:
		collect(DirectionIn)
	default:
		collect(DirectionOut)
		collect(DirectionIn)
		ids = sortedUnique(ids)
	}
	return ids
}

// Len returns the number of (vertex, direction, edge) entries.
func (a *AdjacencyIndex) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tree.Len()
}

// Clear removes every entry.
func (a *AdjacencyIndex) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tree = btree.NewBTreeGOptions(adjacencyItemLess, btree.Options{NoLocks: true})
}
