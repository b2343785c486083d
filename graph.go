package pbd

// graphNode is the coloring state of one body for the current step. The
// used-color set and next-color hint of a dynamic node are owned by the
// island the node belongs to; static and kinematic nodes keep no coloring
// state here (see ConstraintColor).
type graphNode struct {
	body       *Body
	island     int32
	nextColor  int32
	usedColors []bool
}

func (node *graphNode) colorUsed(color int32) bool {
	return int(color) < len(node.usedColors) && node.usedColors[color]
}

func (node *graphNode) markColor(color int32) {
	for int(color) >= len(node.usedColors) {
		node.usedColors = append(node.usedColors, false)
	}
	node.usedColors[color] = true
	for node.colorUsed(node.nextColor) {
		node.nextColor++
	}
}

// graphEdge is one contact constraint between two nodes.
type graphEdge struct {
	a, b       int32 // node ids
	constraint int32 // index into the space's contact list
	color      int32
	level      int32
}

// ConstraintGraph represents the step's contact constraints as an
// undirected multigraph: nodes are bodies, edges are pairwise contacts.
// Islands partition the dynamic nodes; edges belong to the island of a
// dynamic endpoint. The graph is rebuilt every step.
type ConstraintGraph struct {
	nodes     []graphNode
	edges     []graphEdge
	adjacency [][]int32 // node id -> incident edge indices

	islandEdges [][]int32
	islandNodes [][]int32
}

func NewConstraintGraph() *ConstraintGraph {
	return &ConstraintGraph{}
}

// Reset rebinds the graph to the given bodies and drops all edges. Each
// body receives its node id for the step.
func (g *ConstraintGraph) Reset(bodies []*Body) {
	g.nodes = g.nodes[:0]
	g.edges = g.edges[:0]
	g.adjacency = g.adjacency[:0]
	g.islandEdges = g.islandEdges[:0]
	g.islandNodes = g.islandNodes[:0]

	for i, body := range bodies {
		body.node = int32(i)
		g.nodes = append(g.nodes, graphNode{body: body, island: indexNone})
		g.adjacency = append(g.adjacency, nil)
	}
}

// NumNodes returns the node count.
func (g *ConstraintGraph) NumNodes() int32 {
	return int32(len(g.nodes))
}

// NumEdges returns the edge count.
func (g *ConstraintGraph) NumEdges() int32 {
	return int32(len(g.edges))
}

// AddEdge inserts the contact constraint between the two bodies and
// returns the edge index. At least one body must be dynamic; filtering
// static pairs is the broad phase's contract.
func (g *ConstraintGraph) AddEdge(bodyA, bodyB *Body, constraint int32) int32 {
	assert(bodyA.node != indexNone && bodyB.node != indexNone,
		"bodies must be registered with Reset before adding edges")
	assert(bodyA.bodyType == Dynamic || bodyB.bodyType == Dynamic,
		"an edge requires a dynamic endpoint")

	edge := int32(len(g.edges))
	g.edges = append(g.edges, graphEdge{
		a:          bodyA.node,
		b:          bodyB.node,
		constraint: constraint,
		color:      indexNone,
		level:      indexNone,
	})
	g.adjacency[bodyA.node] = append(g.adjacency[bodyA.node], edge)
	g.adjacency[bodyB.node] = append(g.adjacency[bodyB.node], edge)
	return edge
}

// InitializeColor resets the per-node coloring state and every edge's color
// and level. Idempotent; called once per step before coloring.
func (g *ConstraintGraph) InitializeColor() {
	for i := range g.nodes {
		node := &g.nodes[i]
		node.nextColor = 0
		node.usedColors = node.usedColors[:0]
	}
	for i := range g.edges {
		g.edges[i].color = indexNone
		g.edges[i].level = indexNone
	}
}

// ComputeIslands partitions the dynamic nodes into connected components.
// Static and kinematic nodes do not bridge islands; their edges belong to
// the island of the dynamic endpoint. Island ids are assigned in node
// discovery order, so the partition is deterministic.
func (g *ConstraintGraph) ComputeIslands() {
	g.islandEdges = g.islandEdges[:0]
	g.islandNodes = g.islandNodes[:0]
	for i := range g.nodes {
		g.nodes[i].island = indexNone
	}

	var queue []int32
	for seed := range g.nodes {
		if g.nodes[seed].body.bodyType != Dynamic || g.nodes[seed].island != indexNone {
			continue
		}
		if len(g.adjacency[seed]) == 0 {
			continue // contact-free bodies stay outside the graph
		}

		island := int32(len(g.islandNodes))
		g.islandNodes = append(g.islandNodes, nil)
		g.islandEdges = append(g.islandEdges, nil)

		g.nodes[seed].island = island
		queue = append(queue[:0], int32(seed))
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			g.islandNodes[island] = append(g.islandNodes[island], n)

			for _, ei := range g.adjacency[n] {
				edge := &g.edges[ei]
				other := edge.a
				if other == n {
					other = edge.b
				}
				if g.nodes[other].body.bodyType != Dynamic {
					continue
				}
				if g.nodes[other].island == indexNone {
					g.nodes[other].island = island
					queue = append(queue, other)
				}
			}
		}
	}

	for ei := range g.edges {
		edge := &g.edges[ei]
		island := g.nodes[edge.a].island
		if island == indexNone {
			island = g.nodes[edge.b].island
		}
		g.islandEdges[island] = append(g.islandEdges[island], int32(ei))
	}
}

// NumIslands returns the island count of the last ComputeIslands call.
func (g *ConstraintGraph) NumIslands() int32 {
	return int32(len(g.islandNodes))
}

// IslandEdges returns the edge indices of an island.
func (g *ConstraintGraph) IslandEdges(island int32) []int32 {
	return g.islandEdges[island]
}

// IslandNodes returns the dynamic node ids of an island.
func (g *ConstraintGraph) IslandNodes(island int32) []int32 {
	return g.islandNodes[island]
}

// EdgeColor returns the color assigned to an edge, indexNone before
// coloring.
func (g *ConstraintGraph) EdgeColor(edge int32) int32 {
	return g.edges[edge].color
}

// EdgeLevel returns the contact level assigned to an edge, indexNone when
// level tracking is disabled.
func (g *ConstraintGraph) EdgeLevel(edge int32) int32 {
	return g.edges[edge].level
}
