package pbd

import "cogentcore.org/core/math32"

// SpatialIndexer is the query surface of a particle spatial index. It is
// implemented by the BVH structure, which organizes particle indices in a
// bounding volume tree.
type SpatialIndexer interface {
	// Count returns the number of particles covered by the index.
	Count() int

	// UpdateHierarchy refits the index after particle positions changed.
	// Must be called once per step before querying if particles moved.
	UpdateHierarchy()

	// FindAllIntersections returns the indices of all particles whose
	// containing leaf intersects bb. The result is a superset of the
	// particles actually inside bb; the exact test is the caller's
	// responsibility.
	FindAllIntersections(bb math32.Box3) []int32
}
