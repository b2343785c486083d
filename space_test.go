package pbd_test

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setanarut/pbd"
)

const dt = 1.0 / 60.0

func TestSpaceAddRemoveBody(t *testing.T) {
	space := pbd.NewSpace(nil)

	body := space.AddBody(pbd.NewBody(1, 1))
	wall := space.AddBody(pbd.NewStaticBody(5))
	platform := space.AddBody(pbd.NewKinematicBody(2))

	require.Same(t, space, body.Space)
	require.Len(t, space.DynamicBodies, 2) // dynamic and kinematic
	require.Len(t, space.StaticBodies, 1)

	space.RemoveBody(body)
	space.RemoveBody(wall)
	require.Len(t, space.DynamicBodies, 1)
	require.Empty(t, space.StaticBodies)
	require.Nil(t, body.Space)
	require.Same(t, space, platform.Space)
}

func TestSpaceGravityIntegration(t *testing.T) {
	space := pbd.NewSpace(nil)
	space.Gravity = math32.Vec3(0, -10, 0)

	body := space.AddBody(pbd.NewBody(1, 1))
	space.Step(dt)

	require.InDelta(t, -10*dt, body.Velocity().Y, 1e-5)
	require.InDelta(t, -10*dt*dt, body.Position().Y, 1e-5)
	require.Zero(t, body.Position().X)
}

func TestSpaceStepSeparatesOverlap(t *testing.T) {
	space := pbd.NewSpace(nil)

	bodyA := space.AddBody(pbd.NewBody(1, 1))
	bodyB := space.AddBody(pbd.NewBody(1, 1))
	bodyA.SetPosition(math32.Vec3(0, 0, 0))
	bodyB.SetPosition(math32.Vec3(1.5, 0, 0))

	space.Step(dt)

	require.Len(t, space.Contacts(), 1)
	contact := space.Contacts()[0]
	require.Less(t, contact.Phi(), float32(0))

	// Projected out to touching, split evenly between equal masses.
	delta := bodyB.Position().Sub(bodyA.Position())
	require.InDelta(t, 2.0, delta.Length(), 1e-3)
	require.InDelta(t, -0.25, bodyA.Position().X, 1e-3)
	require.InDelta(t, 1.75, bodyB.Position().X, 1e-3)
}

func TestSpaceStaticBodyUnmoved(t *testing.T) {
	space := pbd.NewSpace(nil)

	floor := space.AddBody(pbd.NewStaticBody(1))
	ball := space.AddBody(pbd.NewBody(1, 1))
	ball.SetPosition(math32.Vec3(0, 0.5, 0))

	space.Step(dt)

	require.Equal(t, math32.Vector3{}, floor.Position())
	// The whole correction lands on the dynamic body.
	require.InDelta(t, 2.0, ball.Position().Y, 1e-3)
}

func TestSpaceParticleSampledContact(t *testing.T) {
	space := pbd.NewSpace(nil)

	sampled := space.AddBody(pbd.NewBody(1, 0.1))
	sampled.SetCollisionParticles(pbd.NewParticleSet([]math32.Vector3{
		math32.Vec3(0, 0, 0),
		math32.Vec3(0, 1, 0),
		math32.Vec3(0, -1, 0),
	}), 2, 1)

	sphere := space.AddBody(pbd.NewBody(1, 1))
	sphere.SetPosition(math32.Vec3(0.5, 0, 0))

	space.Step(dt)

	require.Len(t, space.Contacts(), 1)
	contact := space.Contacts()[0]
	bodyA, bodyB := contact.Bodies()
	require.Same(t, sampled, bodyA)
	require.Same(t, sphere, bodyB)

	// The deepest sample is the particle at the origin.
	require.InDelta(t, 0, contact.Point().Y, 1e-5)
	require.InDelta(t, -0.5, contact.Phi(), 1e-5)

	// Normal points from the sphere towards the sampled body.
	require.InDelta(t, -1.0, contact.Normal().X, 1e-5)
}

func TestSpaceDistantBodiesNoContact(t *testing.T) {
	space := pbd.NewSpace(nil)

	a := space.AddBody(pbd.NewBody(1, 1))
	b := space.AddBody(pbd.NewBody(1, 1))
	a.SetPosition(math32.Vec3(0, 0, 0))
	b.SetPosition(math32.Vec3(100, 0, 0))

	space.Step(dt)

	require.Empty(t, space.Contacts())
	require.EqualValues(t, 0, space.Graph().NumIslands())
	require.Equal(t, math32.Vec3(0, 0, 0), a.Position())
	require.Equal(t, math32.Vec3(100, 0, 0), b.Position())
}

func TestSpaceIslandsPerStep(t *testing.T) {
	space := pbd.NewSpace(nil)

	// Two overlapping pairs far from each other.
	positions := []math32.Vector3{
		{X: 0}, {X: 1.5},
		{X: 100}, {X: 101.5},
	}
	for _, position := range positions {
		space.AddBody(pbd.NewBody(1, 1)).SetPosition(position)
	}

	space.Step(dt)

	require.Len(t, space.Contacts(), 2)
	require.EqualValues(t, 2, space.Graph().NumIslands())
	for island := int32(0); island < 2; island++ {
		require.GreaterOrEqual(t, space.Color().GetIslandMaxColor(island), int32(0))
	}
}

// A sleeping island is skipped by the solver: the overlap survives the step.
func TestSpaceSleepingIslandSkipped(t *testing.T) {
	space := pbd.NewSpace(nil)
	space.IdleSpeedThreshold = 10
	space.SleepTimeThreshold = 0.001

	a := space.AddBody(pbd.NewBody(1, 1))
	b := space.AddBody(pbd.NewBody(1, 1))
	b.SetPosition(math32.Vec3(1.5, 0, 0))

	space.Step(dt)
	require.InDelta(t, 1.5, b.Position().Sub(a.Position()).Length(), 1e-5)

	// A body moving above the idle speed threshold wakes the island.
	a.SetVelocity(math32.Vec3(0, 20, 0))
	space.Step(dt)
	assert.InDelta(t, 2.0, b.Position().Sub(a.Position()).Length(), 1e-3)
}

func TestSpaceStepZeroDt(t *testing.T) {
	space := pbd.NewSpace(nil)
	body := space.AddBody(pbd.NewBody(1, 1))
	body.SetVelocity(math32.Vec3(1, 0, 0))

	space.Step(0)
	require.Equal(t, math32.Vector3{}, body.Position())
}

func TestDebugInfo(t *testing.T) {
	space := pbd.NewSpace(nil)
	space.AddBody(pbd.NewBody(1, 1))
	space.AddBody(pbd.NewBody(1, 1)).SetPosition(math32.Vec3(1.5, 0, 0))

	space.Step(dt)

	info := pbd.DebugInfo(space)
	require.Contains(t, info, "Contacts: 1")
	require.Contains(t, info, "Islands: 1")
}
