package pbd

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// solverParallelCutoff is the bucket size below which spawning goroutines
// costs more than it saves.
const solverParallelCutoff = 32

// Solver consumes the per-island Level→Color→ConstraintList buckets and
// projects the contacts. Levels are processed in order; all constraints of
// one color bucket are processed concurrently, which is race free because
// same-bucket constraints share no body.
type Solver struct {
	workers int
}

func NewSolver(config *Config) *Solver {
	workers := config.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Solver{workers: workers}
}

// Solve runs space.Iterations projection passes over every island.
func (solver *Solver) Solve(space *Space) {
	for iteration := uint(0); iteration < space.Iterations; iteration++ {
		for island := int32(0); island < space.graph.NumIslands(); island++ {
			if space.islandSleeping(island) {
				continue
			}
			solver.solveIsland(space, island)
		}
	}
}

func (solver *Solver) solveIsland(space *Space, island int32) {
	buckets := space.color.GetIslandLevelToColorToConstraintListMap(island)
	for _, colors := range buckets {
		for _, constraints := range colors {
			if len(constraints) < solverParallelCutoff || solver.workers < 2 {
				for _, ci := range constraints {
					applyContact(space.contacts[ci])
				}
				continue
			}

			var group errgroup.Group
			group.SetLimit(solver.workers)
			chunk := (len(constraints) + solver.workers - 1) / solver.workers
			for start := 0; start < len(constraints); start += chunk {
				end := start + chunk
				if end > len(constraints) {
					end = len(constraints)
				}
				batch := constraints[start:end]
				group.Go(func() error {
					for _, ci := range batch {
						applyContact(space.contacts[ci])
					}
					return nil
				})
			}
			group.Wait()
		}
	}
}

// applyContact projects the pair along the contact normal until the stored
// separation is restored, splitting the correction by inverse mass, and
// removes the approaching part of the relative normal velocity.
func applyContact(contact *Contact) {
	bodyA := contact.bodyA
	bodyB := contact.bodyB

	wSum := bodyA.massInverse + bodyB.massInverse
	if wSum == 0 {
		return
	}

	normal := contact.normal
	phi := bodyA.position.Sub(bodyB.position).Dot(normal) - contact.separationOffset
	if phi >= 0 {
		return
	}

	correction := normal.MulScalar(-phi / wSum)
	bodyA.position = bodyA.position.Add(correction.MulScalar(bodyA.massInverse))
	bodyB.position = bodyB.position.Sub(correction.MulScalar(bodyB.massInverse))

	approach := bodyA.velocity.Sub(bodyB.velocity).Dot(normal)
	if approach < 0 {
		impulse := normal.MulScalar(-approach / wSum)
		bodyA.velocity = bodyA.velocity.Add(impulse.MulScalar(bodyA.massInverse))
		bodyB.velocity = bodyB.velocity.Sub(impulse.MulScalar(bodyB.massInverse))
	}
}
