package pbd

import "cogentcore.org/core/math32"

// bvhNode is either a leaf covering a contiguous range of the permuted
// particle order, or an internal node owning two child node indices. Nodes
// live in the hierarchy's arena and are never freed individually.
type bvhNode struct {
	box      math32.Box3
	children [2]int32 // indexNone on leaves
	first    int32    // leaf range into BVH order
	count    int32
}

func (n *bvhNode) isLeaf() bool {
	return n.children[0] == indexNone
}

var _ SpatialIndexer = (*BVH)(nil)

// BVH is a bounding volume hierarchy over a particle set, built top-down by
// spatial median splits bounded by a maximum depth. The whole hierarchy is
// rebuilt or refit as a unit; queries return particle indices.
//
// Same particle positions and query always produce the same index set: the
// split axis, split plane and partition order are all functions of the
// input alone.
type BVH struct {
	particles *ParticleSet
	maxDepth  int
	leafSize  int
	nodes     []bvhNode
	order     []int32 // particle indices permuted by construction
	scratch   []int32
}

// NewBVH builds a hierarchy over the given particle set. maxDepth 0 yields a
// single leaf holding every particle. Zero particles yield an empty,
// queryable hierarchy.
func NewBVH(particles *ParticleSet, maxDepth, leafSize int) *BVH {
	assert(particles != nil, "NewBVH requires a particle set")
	assert(maxDepth >= 0, "BVH max depth must not be negative")
	assert(leafSize > 0, "BVH leaf size must be positive")

	bvh := &BVH{
		particles: particles,
		maxDepth:  maxDepth,
		leafSize:  leafSize,
	}
	bvh.Build()
	return bvh
}

// Count returns the number of particles covered by the hierarchy.
func (b *BVH) Count() int {
	return len(b.order)
}

// Depth returns the height of the built tree.
func (b *BVH) Depth() int {
	return b.depth(0, 0)
}

func (b *BVH) depth(node int32, d int) int {
	if len(b.nodes) == 0 {
		return 0
	}
	n := &b.nodes[node]
	if n.isLeaf() {
		return d
	}
	left := b.depth(n.children[0], d+1)
	right := b.depth(n.children[1], d+1)
	if left > right {
		return left
	}
	return right
}

// Build constructs the hierarchy from scratch over the current particle
// positions.
func (b *BVH) Build() {
	count := b.particles.Size()

	b.nodes = b.nodes[:0]
	if cap(b.order) < count {
		b.order = make([]int32, count)
		b.scratch = make([]int32, count)
	}
	b.order = b.order[:count]
	b.scratch = b.scratch[:count]
	for i := range b.order {
		b.order[i] = int32(i)
	}

	if count == 0 {
		return
	}
	b.buildNode(0, int32(count), 0)
}

// buildNode appends the subtree over order[first:first+count] and returns
// its arena index. Children always receive larger indices than their
// parent, which UpdateHierarchy relies on.
func (b *BVH) buildNode(first, count int32, depth int) int32 {
	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, bvhNode{
		children: [2]int32{indexNone, indexNone},
		first:    first,
		count:    count,
	})

	box := math32.B3Empty()
	for _, pi := range b.order[first : first+count] {
		box.ExpandByPoint(b.particles.Positions[pi])
	}
	b.nodes[idx].box = box

	if depth >= b.maxDepth || int(count) <= b.leafSize {
		return idx
	}

	axis := largestExtentAxis(box)
	mid := (box.Min.Dim(axis) + box.Max.Dim(axis)) * 0.5

	// Stable partition keeps the relative particle order on both sides, so
	// rebuilding over identical positions reproduces the same leaves.
	split := int32(0)
	scratch := b.scratch[:0]
	for _, pi := range b.order[first : first+count] {
		if b.particles.Positions[pi].Dim(axis) < mid {
			b.order[first+split] = pi
			split++
		} else {
			scratch = append(scratch, pi)
		}
	}
	copy(b.order[first+split:first+count], scratch)

	// Degenerate spread (all particles on one side of the plane) ends the
	// recursion in a leaf rather than looping.
	if split == 0 || split == count {
		return idx
	}

	childA := b.buildNode(first, split, depth+1)
	childB := b.buildNode(first+split, count-split, depth+1)
	b.nodes[idx].children[0] = childA
	b.nodes[idx].children[1] = childB
	return idx
}

// UpdateHierarchy refits every bounding box in place after particle
// positions changed, without altering the leaf assignment. Structural
// changes (a different particle count) require Build.
func (b *BVH) UpdateHierarchy() {
	assert(len(b.order) == b.particles.Size(),
		"particle count changed since Build; rebuild the hierarchy")

	// Children sit after their parent in the arena, so a reverse sweep sees
	// both children before the parent.
	for i := len(b.nodes) - 1; i >= 0; i-- {
		node := &b.nodes[i]
		if node.isLeaf() {
			box := math32.B3Empty()
			for _, pi := range b.order[node.first : node.first+node.count] {
				box.ExpandByPoint(b.particles.Positions[pi])
			}
			node.box = box
		} else {
			box := b.nodes[node.children[0]].box
			box.ExpandByBox(b.nodes[node.children[1]].box)
			node.box = box
		}
	}
}

// FindAllIntersections returns the indices of all particles whose
// containing leaf's box intersects bb. The result is a superset of the
// particles exactly inside bb and is deterministic for fixed positions.
func (b *BVH) FindAllIntersections(bb math32.Box3) []int32 {
	var out []int32
	if len(b.nodes) == 0 {
		return out
	}

	stack := make([]int32, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		node := &b.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if !node.box.IntersectsBox(bb) {
			continue
		}
		if node.isLeaf() {
			out = append(out, b.order[node.first:node.first+node.count]...)
			continue
		}
		stack = append(stack, node.children[1], node.children[0])
	}
	return out
}

func largestExtentAxis(box math32.Box3) math32.Dims {
	size := box.Size()
	axis := math32.X
	if size.Y > size.Dim(axis) {
		axis = math32.Y
	}
	if size.Z > size.Dim(axis) {
		axis = math32.Z
	}
	return axis
}
