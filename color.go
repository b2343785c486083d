package pbd

// IslandColor is the per-island coloring artifact consumed by the solver:
// constraints bucketed by level then color. Two constraints in the same
// level and color bucket share no graph node and may be resolved in
// parallel; levels must be consumed in order.
type IslandColor struct {
	MaxColor int32
	MaxLevel int32

	// LevelToColorToConstraintListMap[level][color] lists the constraint
	// indices of that bucket.
	LevelToColorToConstraintListMap [][][]int32
}

// ConstraintColor computes a greedy edge coloring plus an optional contact
// level ordering per island. Every island's state is exclusively owned by
// the goroutine coloring it, so distinct islands may be computed
// concurrently.
type ConstraintColor struct {
	contactLevels bool
	islands       []IslandColor
}

func NewConstraintColor(config *Config) *ConstraintColor {
	return &ConstraintColor{contactLevels: config.ContactLevels}
}

// ResetIslands sizes the per-island storage for the step. Must be called
// after ComputeIslands and before any ComputeColor call.
func (cc *ConstraintColor) ResetIslands(numIslands int32) {
	if int(numIslands) > cap(cc.islands) {
		cc.islands = make([]IslandColor, numIslands)
	}
	cc.islands = cc.islands[:numIslands]
	for i := range cc.islands {
		cc.islands[i] = IslandColor{MaxColor: indexNone, MaxLevel: indexNone}
	}
}

// ComputeColor colors one island: contact levels first (when enabled),
// then the greedy coloring, then the level/color buckets. Safe to call
// concurrently for distinct islands.
func (cc *ConstraintColor) ComputeColor(island int32, g *ConstraintGraph) {
	if cc.contactLevels {
		cc.computeContactGraph(island, g)
	}
	cc.computeIslandColoring(island, g)
	cc.buildBuckets(island, g)
}

// computeContactGraph assigns every island edge a level: its breadth-first
// distance from the set of anchor edges (edges touching a static or
// kinematic body). A contact's level is therefore no smaller than the level
// of any contact it transitively rests on. Islands without an anchor get
// all levels 0.
func (cc *ConstraintColor) computeContactGraph(island int32, g *ConstraintGraph) {
	edges := g.IslandEdges(island)
	islandColor := &cc.islands[island]

	var queue []int32
	for _, ei := range edges {
		edge := &g.edges[ei]
		if g.nodes[edge.a].body.bodyType != Dynamic || g.nodes[edge.b].body.bodyType != Dynamic {
			edge.level = 0
			queue = append(queue, ei)
		}
	}
	if len(queue) == 0 {
		// Free-floating island: no contact rests on an immovable body.
		for _, ei := range edges {
			g.edges[ei].level = 0
		}
		islandColor.MaxLevel = 0
		return
	}

	maxLevel := int32(0)
	for len(queue) > 0 {
		ei := queue[0]
		queue = queue[1:]
		edge := &g.edges[ei]

		for _, node := range [2]int32{edge.a, edge.b} {
			if g.nodes[node].body.bodyType != Dynamic {
				continue
			}
			for _, fi := range g.adjacency[node] {
				next := &g.edges[fi]
				if next.level != indexNone {
					continue
				}
				next.level = edge.level + 1
				if next.level > maxLevel {
					maxLevel = next.level
				}
				queue = append(queue, fi)
			}
		}
	}
	islandColor.MaxLevel = maxLevel
}

// computeIslandColoring greedily assigns every island edge the smallest
// color unused at either endpoint, then marks it used at both. Not minimal,
// but it guarantees that edges sharing a color share no node, and the
// smallest-color tie-break makes the assignment reproducible for a fixed
// edge enumeration order.
//
// Dynamic nodes keep their used-color sets on the node itself; the island
// owns them. Static and kinematic nodes can border several islands, so
// their sets live in island-local scratch to keep islands free of shared
// mutable state.
func (cc *ConstraintColor) computeIslandColoring(island int32, g *ConstraintGraph) {
	edges := g.IslandEdges(island)
	islandColor := &cc.islands[island]

	var anchorState map[int32]*graphNode
	nodeState := func(id int32) *graphNode {
		node := &g.nodes[id]
		if node.body.bodyType == Dynamic {
			return node
		}
		if anchorState == nil {
			anchorState = map[int32]*graphNode{}
		}
		state, ok := anchorState[id]
		if !ok {
			state = &graphNode{body: node.body}
			anchorState[id] = state
		}
		return state
	}

	maxColor := indexNone
	for _, ei := range edges {
		edge := &g.edges[ei]
		nodeA := nodeState(edge.a)
		nodeB := nodeState(edge.b)

		color := min(nodeA.nextColor, nodeB.nextColor)
		for nodeA.colorUsed(color) || nodeB.colorUsed(color) {
			color++
		}
		edge.color = color
		nodeA.markColor(color)
		nodeB.markColor(color)
		if color > maxColor {
			maxColor = color
		}
	}
	islandColor.MaxColor = maxColor
}

// buildBuckets populates LevelToColorToConstraintListMap from the computed
// colors and levels. With level tracking disabled every constraint lands in
// level 0.
func (cc *ConstraintColor) buildBuckets(island int32, g *ConstraintGraph) {
	edges := g.IslandEdges(island)
	islandColor := &cc.islands[island]

	numLevels := islandColor.MaxLevel + 1
	if !cc.contactLevels {
		numLevels = 1
	}
	numColors := islandColor.MaxColor + 1

	buckets := make([][][]int32, numLevels)
	for level := range buckets {
		buckets[level] = make([][]int32, numColors)
	}
	for _, ei := range edges {
		edge := &g.edges[ei]
		level := int32(0)
		if cc.contactLevels {
			level = edge.level
		}
		buckets[level][edge.color] = append(buckets[level][edge.color], edge.constraint)
	}
	islandColor.LevelToColorToConstraintListMap = buckets
}

// GetIslandLevelToColorToConstraintListMap returns the island's level and
// color buckets.
func (cc *ConstraintColor) GetIslandLevelToColorToConstraintListMap(island int32) [][][]int32 {
	return cc.islands[island].LevelToColorToConstraintListMap
}

// GetIslandMaxColor returns the largest color used in the island,
// indexNone for an empty island.
func (cc *ConstraintColor) GetIslandMaxColor(island int32) int32 {
	return cc.islands[island].MaxColor
}

// GetIslandMaxLevel returns the largest level used in the island, indexNone
// when level tracking is disabled.
func (cc *ConstraintColor) GetIslandMaxLevel(island int32) int32 {
	return cc.islands[island].MaxLevel
}
