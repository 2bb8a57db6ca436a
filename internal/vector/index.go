// Package vector provides flat L2 vector indexes and the chunk index built on them.
package vector

import "context"

// VectorIndex stores vectors by insertion position and answers nearest-neighbour
// queries by Euclidean distance. Position i is the i-th vector added.
type VectorIndex interface {
	Add(ctx context.Context, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]Neighbor, error)
	Size() int
	Dimensions() int
	Type() string
	Close() error
}

// Neighbor is a single search hit.
type Neighbor struct {
	Position int
	// Distance is the squared Euclidean distance to the query; smaller is closer.
	Distance float32
}
