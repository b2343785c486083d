// Package pbd is a position-based contact engine for particle-sampled
// bodies. It provides a bounding volume hierarchy over particle sets for
// broad-phase queries, a per-island constraint graph with greedy edge
// coloring for race-free parallel contact resolution, and a batched
// self-collision kernel for deformable bodies.
package pbd

import (
	"fmt"
	"log"

	"cogentcore.org/core/math32"
)

const (
	// ContactsBufferSize is the number of contacts held by one pooled
	// contact buffer.
	ContactsBufferSize int = 1024

	magicEpsilon float32 = 1e-5
)

var infinity = math32.Infinity

// indexNone marks an unassigned color, level or island.
const indexNone int32 = -1

// BodyType for bodies; Dynamic, Kinematic or Static
type BodyType uint8

const (
	Dynamic   BodyType = 0
	Kinematic BodyType = 1
	Static    BodyType = 2
)

// BodyVelocityFunc is rigid body velocity update function type.
type BodyVelocityFunc func(body *Body, gravity math32.Vector3, damping float32, dt float32)

// BodyPositionFunc is rigid body position update function type.
type BodyPositionFunc func(body *Body, dt float32)

// assert aborts on a broken programming contract. Hot-path invariants are
// prevented by construction; this guards constructor arguments only.
func assert(truth bool, msg string) {
	if !truth {
		log.Fatalln("pbd:", msg)
	}
}

func clamp01(f float32) float32 {
	return math32.Max(0, math32.Min(f, 1))
}

func clamp(f, min, max float32) float32 {
	if f > min {
		return math32.Min(f, max)
	}
	return math32.Min(min, max)
}

// DebugInfo returns a summary of the space's per-step work: contact counts,
// broad/narrow phase counters, island count and coloring extents.
func DebugInfo(space *Space) string {
	maxColor, maxLevel := int32(indexNone), int32(indexNone)
	for island := int32(0); island < space.graph.NumIslands(); island++ {
		if c := space.color.GetIslandMaxColor(island); c > maxColor {
			maxColor = c
		}
		if l := space.color.GetIslandMaxLevel(island); l > maxLevel {
			maxLevel = l
		}
	}

	var ke float32
	for _, body := range space.DynamicBodies {
		if body.mass == infinity {
			continue
		}
		ke += body.mass * body.velocity.Dot(body.velocity)
	}

	return fmt.Sprintf(`Contacts: %d - Islands: %d
Broadphase candidates: %d - Narrowphase tests: %d (%d rejected)
Max color: %d, Max level: %d, Iterations: %d
KE: %e`, len(space.contacts), space.graph.NumIslands(),
		space.broadphaseCandidates, space.narrowphaseTests, space.narrowphaseRejected,
		maxColor, maxLevel, space.Iterations, ke)
}
