package pbd_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/setanarut/pbd"
)

// Two contact pairs with no common body form two islands.
func TestIslandsSeparatePairs(t *testing.T) {
	bodies := dynamicBodies(4)

	graph := pbd.NewConstraintGraph()
	graph.Reset(bodies)
	graph.AddEdge(bodies[0], bodies[1], 0)
	graph.AddEdge(bodies[2], bodies[3], 1)
	graph.ComputeIslands()

	require.EqualValues(t, 2, graph.NumIslands())
	require.Len(t, graph.IslandEdges(0), 1)
	require.Len(t, graph.IslandEdges(1), 1)
	require.Len(t, graph.IslandNodes(0), 2)
	require.Len(t, graph.IslandNodes(1), 2)
}

// Two dynamic bodies resting on the same static body are still separate
// islands: immovable bodies do not propagate motion.
func TestIslandsStaticDoesNotBridge(t *testing.T) {
	anchor := pbd.NewStaticBody(1)
	bodies := []*pbd.Body{pbd.NewBody(1, 1), anchor, pbd.NewBody(1, 1)}

	graph := pbd.NewConstraintGraph()
	graph.Reset(bodies)
	graph.AddEdge(bodies[0], anchor, 0)
	graph.AddEdge(anchor, bodies[2], 1)
	graph.ComputeIslands()

	require.EqualValues(t, 2, graph.NumIslands())
	require.Len(t, graph.IslandEdges(0), 1)
	require.Len(t, graph.IslandEdges(1), 1)
}

// Kinematic bodies are immovable for island purposes too.
func TestIslandsKinematicDoesNotBridge(t *testing.T) {
	platform := pbd.NewKinematicBody(1)
	bodies := []*pbd.Body{pbd.NewBody(1, 1), platform, pbd.NewBody(1, 1)}

	graph := pbd.NewConstraintGraph()
	graph.Reset(bodies)
	graph.AddEdge(bodies[0], platform, 0)
	graph.AddEdge(platform, bodies[2], 1)
	graph.ComputeIslands()

	require.EqualValues(t, 2, graph.NumIslands())
}

// Bodies without contacts stay out of the partition entirely.
func TestIslandsContactFreeBody(t *testing.T) {
	bodies := dynamicBodies(3)

	graph := pbd.NewConstraintGraph()
	graph.Reset(bodies)
	graph.AddEdge(bodies[0], bodies[1], 0)
	graph.ComputeIslands()

	require.EqualValues(t, 1, graph.NumIslands())
	require.Len(t, graph.IslandNodes(0), 2)
}

// Islands are discovered in node order, so the partition is reproducible.
func TestIslandsDeterministicOrder(t *testing.T) {
	bodies := dynamicBodies(6)

	build := func() *pbd.ConstraintGraph {
		graph := pbd.NewConstraintGraph()
		graph.Reset(bodies)
		graph.AddEdge(bodies[4], bodies[5], 0)
		graph.AddEdge(bodies[0], bodies[1], 1)
		graph.AddEdge(bodies[2], bodies[3], 2)
		graph.ComputeIslands()
		return graph
	}
	first := build()
	second := build()

	require.Equal(t, first.NumIslands(), second.NumIslands())
	for island := int32(0); island < first.NumIslands(); island++ {
		require.Equal(t, first.IslandEdges(island), second.IslandEdges(island))
		require.Equal(t, first.IslandNodes(island), second.IslandNodes(island))
	}
	// Node 0's pair is seeded first even though its edge was added second.
	require.Equal(t, []int32{0, 1}, first.IslandNodes(0))
}

// Reset drops edges and islands from the previous step.
func TestGraphReset(t *testing.T) {
	bodies := dynamicBodies(2)

	graph := pbd.NewConstraintGraph()
	graph.Reset(bodies)
	graph.AddEdge(bodies[0], bodies[1], 0)
	graph.ComputeIslands()
	require.EqualValues(t, 1, graph.NumEdges())

	graph.Reset(bodies)
	require.EqualValues(t, 0, graph.NumEdges())
	graph.ComputeIslands()
	require.EqualValues(t, 0, graph.NumIslands())
}
