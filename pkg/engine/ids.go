package engine

import "github.com/google/uuid"

// IDGenerator supplies ids for builders created without an explicit id.
type IDGenerator interface {
	NextVertexID() string
	NextEdgeID() string
}

// UUIDGenerator generates random (version 4) UUIDs for both namespaces.
type UUIDGenerator struct{}

func (UUIDGenerator) NextVertexID() string { return uuid.NewString() }
func (UUIDGenerator) NextEdgeID() string   { return uuid.NewString() }
