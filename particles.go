package pbd

import "cogentcore.org/core/math32"

// ParticleSet is an ordered collection of particle positions owned by the
// body that created it. Positions may be mutated between steps; the particle
// count must stay stable within one hierarchy build/query cycle.
type ParticleSet struct {
	// Positions of the particles. Mutated by integration every substep.
	Positions []math32.Vector3

	// RestPositions is the optional authored rest pose, used by the
	// self-collision kernel to filter pairs that are close by construction.
	// Either empty or the same length as Positions.
	RestPositions []math32.Vector3
}

// NewParticleSet initializes a particle set over the given positions.
// The slice is referenced, not copied.
func NewParticleSet(positions []math32.Vector3) *ParticleSet {
	return &ParticleSet{Positions: positions}
}

// SetRestPositions attaches a rest pose to the set.
func (p *ParticleSet) SetRestPositions(rest []math32.Vector3) {
	assert(len(rest) == len(p.Positions), "rest pose must match particle count")
	p.RestPositions = rest
}

// Size returns the particle count.
func (p *ParticleSet) Size() int {
	return len(p.Positions)
}

// BoundingBox returns the box enclosing every particle. Empty sets yield an
// empty box (min > max on every axis).
func (p *ParticleSet) BoundingBox() math32.Box3 {
	box := math32.B3Empty()
	box.ExpandByPoints(p.Positions)
	return box
}
