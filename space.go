package pbd

import (
	"log"
	"slices"

	"golang.org/x/sync/errgroup"

	"cogentcore.org/core/math32"
)

// Space owns the bodies and drives the per-step pipeline: integrate,
// refit hierarchies, find contacts, partition islands, color each island's
// constraint graph, then hand the level/color buckets to the solver.
type Space struct {
	UserData any

	// Iterations is the number of solver passes over the level/color
	// buckets per step. Must be non-zero.
	Iterations uint

	// Gravity to pass to bodies when integrating velocity.
	Gravity math32.Vector3

	// Damping rate expressed as the fraction of velocity bodies retain each
	// step. The default value is 1.0, meaning no damping is applied.
	Damping float32

	// IdleSpeedThreshold is the speed below which a body accumulates idle
	// time. The default value of 0 disables idling.
	IdleSpeedThreshold float32

	// SleepTimeThreshold is the time every body of an island must remain
	// idle before the island is skipped by the solver. The default value of
	// infinity disables sleeping.
	SleepTimeThreshold float32

	// StaticBody is the space-provided static body, merely for convenience.
	StaticBody *Body

	DynamicBodies []*Body // dynamic and kinematic bodies
	StaticBodies  []*Body

	config *Config
	graph  *ConstraintGraph
	color  *ConstraintColor
	solver *Solver

	contacts           []*Contact
	contactBuffersHead *ContactBuffer
	cachedContacts     *HashSet[bodyPair, *cachedContact]
	collisionIdCounter uint32

	allBodies []*Body // scratch for graph rebinding
	stamp     uint
	locked    bool

	broadphaseCandidates int
	narrowphaseTests     int
	narrowphaseRejected  int
}

// NewSpace allocates and initializes a Space. A nil config means defaults.
func NewSpace(config *Config) *Space {
	if config == nil {
		config = DefaultConfig()
	}
	config.check()

	return &Space{
		Iterations:         config.Iterations,
		Damping:            1.0,
		IdleSpeedThreshold: 0.0,
		SleepTimeThreshold: infinity,
		StaticBody:         NewStaticBody(1),
		config:             config,
		graph:              NewConstraintGraph(),
		color:              NewConstraintColor(config),
		solver:             NewSolver(config),
		cachedContacts:     NewHashSet(cachedContactEql),
	}
}

// Config returns the space's immutable configuration.
func (space *Space) Config() *Config {
	return space.config
}

// Contacts returns the contacts of the current step. Only valid until the
// next Step call.
func (space *Space) Contacts() []*Contact {
	return space.contacts
}

// Graph returns the constraint graph of the current step.
func (space *Space) Graph() *ConstraintGraph {
	return space.graph
}

// Color returns the coloring of the current step's graph.
func (space *Space) Color() *ConstraintColor {
	return space.color
}

// AddBody adds the body to the space.
func (space *Space) AddBody(body *Body) *Body {
	assert(body.Space == nil, "body is already added to a space")
	if space.locked {
		log.Fatalln("pbd: bodies cannot be added from within Step")
	}

	body.Space = space
	if body.bodyType == Static {
		space.StaticBodies = append(space.StaticBodies, body)
	} else {
		space.DynamicBodies = append(space.DynamicBodies, body)
	}
	return body
}

// RemoveBody removes the body from the space.
func (space *Space) RemoveBody(body *Body) {
	assert(body.Space == space, "body is not added to this space")
	if space.locked {
		log.Fatalln("pbd: bodies cannot be removed from within Step")
	}

	if body.bodyType == Static {
		space.StaticBodies = slices.DeleteFunc(space.StaticBodies,
			func(b *Body) bool { return b == body })
	} else {
		space.DynamicBodies = slices.DeleteFunc(space.DynamicBodies,
			func(b *Body) bool { return b == body })
	}
	body.Space = nil
	body.node = indexNone
}

// Step advances the simulation by dt.
func (space *Space) Step(dt float32) {
	if dt <= 0 {
		return
	}
	space.stamp++
	space.locked = true
	defer func() { space.locked = false }()

	for _, body := range space.DynamicBodies {
		body.velocityFunc(body, space.Gravity, space.Damping, dt)
		body.positionFunc(body, dt)
	}

	for _, body := range space.DynamicBodies {
		if body.hierarchy != nil {
			body.hierarchy.UpdateHierarchy()
		}
	}

	space.computeConstraints()
	space.rebuildGraph()
	space.computeColoring()
	space.updateSleeping(dt)
	space.solver.Solve(space)
}

// rebuildGraph rebinds the constraint graph to the current bodies and
// contacts and recomputes the island partition.
func (space *Space) rebuildGraph() {
	space.allBodies = space.allBodies[:0]
	space.allBodies = append(space.allBodies, space.DynamicBodies...)
	space.allBodies = append(space.allBodies, space.StaticBodies...)

	space.graph.Reset(space.allBodies)
	for i, contact := range space.contacts {
		space.graph.AddEdge(contact.bodyA, contact.bodyB, int32(i))
	}
	space.graph.ComputeIslands()
}

// computeColoring colors every island. Islands share no mutable state once
// InitializeColor has run, so they are colored concurrently.
func (space *Space) computeColoring() {
	space.graph.InitializeColor()
	space.color.ResetIslands(space.graph.NumIslands())

	numIslands := space.graph.NumIslands()
	if numIslands == 0 {
		return
	}
	if numIslands == 1 || space.solver.workers < 2 {
		for island := int32(0); island < numIslands; island++ {
			space.color.ComputeColor(island, space.graph)
		}
		return
	}

	var group errgroup.Group
	group.SetLimit(space.solver.workers)
	for island := int32(0); island < numIslands; island++ {
		group.Go(func() error {
			space.color.ComputeColor(island, space.graph)
			return nil
		})
	}
	group.Wait()
}

// updateSleeping accumulates idle time on slow bodies. An island sleeps
// when every member has been idle past the threshold.
func (space *Space) updateSleeping(dt float32) {
	if space.SleepTimeThreshold == infinity {
		return
	}
	threshold := space.IdleSpeedThreshold
	for _, body := range space.DynamicBodies {
		if body.bodyType != Dynamic {
			continue
		}
		if body.velocity.LengthSquared() < threshold*threshold {
			body.sleepingIdleTime += dt
		} else {
			body.sleepingIdleTime = 0
		}
	}
}

// islandSleeping reports whether every body of the island is idle past the
// sleep threshold.
func (space *Space) islandSleeping(island int32) bool {
	if space.SleepTimeThreshold == infinity {
		return false
	}
	for _, node := range space.graph.IslandNodes(island) {
		if space.graph.nodes[node].body.sleepingIdleTime < space.SleepTimeThreshold {
			return false
		}
	}
	return true
}
