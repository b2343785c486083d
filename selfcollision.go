package pbd

import (
	m32 "github.com/chewxy/math32"

	"cogentcore.org/core/math32"
)

// selfCollisionLanes is the batch width of the pairwise inner loop. The
// width is a compile-time constant so the lane arrays stay on the stack.
const selfCollisionLanes = 4

type cellKey struct {
	x, y, z int32
}

// SelfCollision detects and responds to self-colliding particle pairs
// within one deformable body. Candidates come from a uniform bucket grid
// sized to the collision distance; the pairwise test batches squared
// distances selfCollisionLanes at a time. Distance thresholds are immutable
// for the lifetime of one kernel instance.
//
// The boundary is exclusive: a pair at exactly the collision distance does
// not collide.
type SelfCollision struct {
	particles        *ParticleSet
	useRestParticles bool

	collisionDistance       float32
	collisionSquareDistance float32
	stiffness               float32

	cells      map[cellKey][]int32
	candidates []int32
	deltas     []math32.Vector3

	numTests      int
	numCollisions int
}

// NewSelfCollision initializes a kernel over the body's particles. With
// useRestParticles set, pairs that are already within the collision
// distance in the authored rest pose are ignored, which keeps stitched
// neighbors from repelling each other.
func NewSelfCollision(particles *ParticleSet, collisionDistance, stiffness float32, useRestParticles bool) *SelfCollision {
	assert(particles != nil, "NewSelfCollision requires a particle set")
	assert(collisionDistance > 0, "collision distance must be positive")
	assert(stiffness >= 0 && stiffness <= 1, "stiffness must be in [0, 1]")
	if useRestParticles {
		assert(len(particles.RestPositions) == particles.Size(),
			"rest particle mode requires a rest pose")
	}

	return &SelfCollision{
		particles:               particles,
		useRestParticles:        useRestParticles,
		collisionDistance:       collisionDistance,
		collisionSquareDistance: collisionDistance * collisionDistance,
		stiffness:               stiffness,
		cells:                   map[cellKey][]int32{},
	}
}

// NumTests returns the pairwise tests performed by the last Run.
func (sc *SelfCollision) NumTests() int {
	return sc.numTests
}

// NumCollisions returns the colliding pairs found by the last Run.
func (sc *SelfCollision) NumCollisions() int {
	return sc.numCollisions
}

// Run executes one full self-collision pass: bucket the particles, test
// each particle against the candidates of its neighboring buckets, and
// apply the accumulated stiffness-scaled position responses. Responses are
// gathered first and applied after the pass, so the result only depends on
// the particle order.
func (sc *SelfCollision) Run() {
	sc.numTests = 0
	sc.numCollisions = 0

	positions := sc.particles.Positions
	count := len(positions)
	if count == 0 {
		return
	}

	if cap(sc.deltas) < count {
		sc.deltas = make([]math32.Vector3, count)
	}
	sc.deltas = sc.deltas[:count]
	for i := range sc.deltas {
		sc.deltas[i] = math32.Vector3{}
	}

	sc.bucketParticles()

	var bx, by, bz, bsq [selfCollisionLanes]float32
	for i := 0; i < count; i++ {
		candidates := sc.gatherCandidates(int32(i))
		pi := positions[i]

		for base := 0; base < len(candidates); base += selfCollisionLanes {
			width := len(candidates) - base
			if width > selfCollisionLanes {
				width = selfCollisionLanes
			}

			for lane := 0; lane < width; lane++ {
				delta := positions[candidates[base+lane]].Sub(pi)
				bx[lane] = delta.X
				by[lane] = delta.Y
				bz[lane] = delta.Z
				bsq[lane] = delta.X*delta.X + delta.Y*delta.Y + delta.Z*delta.Z
			}
			sc.numTests += width

			for lane := 0; lane < width; lane++ {
				distSq := bsq[lane]
				if distSq >= sc.collisionSquareDistance {
					continue
				}
				if distSq <= magicEpsilon*magicEpsilon {
					continue // coincident particles have no separation axis
				}

				j := candidates[base+lane]
				if sc.useRestParticles && sc.restNeighbors(int32(i), j) {
					continue
				}

				dist := m32.Sqrt(distSq)
				depth := (sc.collisionDistance - dist) * 0.5 * sc.stiffness
				direction := math32.Vec3(bx[lane], by[lane], bz[lane]).DivScalar(dist)

				response := direction.MulScalar(depth)
				sc.deltas[i] = sc.deltas[i].Sub(response)
				sc.deltas[j] = sc.deltas[j].Add(response)
				sc.numCollisions++
			}
		}
	}

	for i := range positions {
		positions[i] = positions[i].Add(sc.deltas[i])
	}
}

// restNeighbors reports whether the pair is within the collision distance
// in the rest pose.
func (sc *SelfCollision) restNeighbors(i, j int32) bool {
	rest := sc.particles.RestPositions
	delta := rest[j].Sub(rest[i])
	return delta.LengthSquared() < sc.collisionSquareDistance
}

// bucketParticles rebuilds the uniform grid. The cell edge equals the
// collision distance, so any colliding pair sits within one cell of each
// other on every axis.
func (sc *SelfCollision) bucketParticles() {
	for key := range sc.cells {
		delete(sc.cells, key)
	}
	for i, position := range sc.particles.Positions {
		key := sc.cellOf(position)
		sc.cells[key] = append(sc.cells[key], int32(i))
	}
}

// gatherCandidates collects the particles of the 27 neighboring cells with
// index greater than i, so each pair is tested exactly once. Cell visit
// order is fixed and cell lists are in particle order, which keeps the
// whole pass deterministic.
func (sc *SelfCollision) gatherCandidates(i int32) []int32 {
	sc.candidates = sc.candidates[:0]
	center := sc.cellOf(sc.particles.Positions[i])
	for dz := int32(-1); dz <= 1; dz++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dx := int32(-1); dx <= 1; dx++ {
				key := cellKey{center.x + dx, center.y + dy, center.z + dz}
				for _, j := range sc.cells[key] {
					if j > i {
						sc.candidates = append(sc.candidates, j)
					}
				}
			}
		}
	}
	return sc.candidates
}

func (sc *SelfCollision) cellOf(position math32.Vector3) cellKey {
	return cellKey{
		x: int32(math32.Floor(position.X / sc.collisionDistance)),
		y: int32(math32.Floor(position.Y / sc.collisionDistance)),
		z: int32(math32.Floor(position.Z / sc.collisionDistance)),
	}
}
