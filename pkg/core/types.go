// Package core provides the in-memory data structures of the graph engine.
//
// Every element (vertex or edge) is stored as an append-only log of
// mutations in a Table. The current, or point-in-time, view of an element is
// obtained by folding its log with Project. Extended data rows, the
// per-vertex adjacency index and the engine metadata live next to the tables
// and are guarded by their own locks.
package core

import (
	"fmt"
	"math"
	"slices"
)

// Latest is the end time meaning "no end time": the full log is folded.
const Latest int64 = math.MaxInt64

// ElementType distinguishes the two element namespaces.
type ElementType uint8

const (
	ElementTypeVertex ElementType = iota + 1
	ElementTypeEdge
)

func (t ElementType) String() string {
	switch t {
	case ElementTypeVertex:
		return "vertex"
	case ElementTypeEdge:
		return "edge"
	}
	return fmt.Sprintf("ElementType(%d)", uint8(t))
}

// Direction selects edges relative to a vertex.
type Direction uint8

const (
	DirectionOut Direction = iota + 1
	DirectionIn
	DirectionBoth
)

func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "out"
	case DirectionIn:
		return "in"
	case DirectionBoth:
		return "both"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// ParseDirection accepts "out", "in" and "both".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "out", "OUT":
		return DirectionOut, nil
	case "in", "IN":
		return DirectionIn, nil
	case "both", "BOTH", "":
		return DirectionBoth, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func sortedUnique(ids []string) []string {
	slices.Sort(ids)
	return slices.Compact(ids)
}
