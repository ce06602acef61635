package geometry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/log"
)

var logger = log.New("bvh")

// MaxBVHDepth bounds the tree depth and the traversal stack
const MaxBVHDepth = 64

// ErrBVHTooDeep is returned when a build would exceed MaxBVHDepth
var ErrBVHTooDeep = errors.New("bvh: tree depth exceeds traversal stack bound")

// BVHNode is an entry in the flat node pool.
// Leaves have PrimitiveID >= 0 and Left = Right = -1; internal nodes have PrimitiveID = -1.
type BVHNode struct {
	Box         core.AABB
	Left        int
	Right       int
	PrimitiveID int
}

// IsLeaf reports whether the node references a primitive
func (n *BVHNode) IsLeaf() bool {
	return n.PrimitiveID >= 0
}

// BVH is a median-split bounding volume hierarchy stored as a flat node pool
type BVH struct {
	Nodes []BVHNode
	Root  int // -1 for an empty hierarchy
	depth int
}

// BVHStats summarizes the shape of a built hierarchy
type BVHStats struct {
	Nodes  int
	Leaves int
	Depth  int
}

type bboxWithID struct {
	box      core.AABB
	centroid core.Vec3
	id       int
}

// BuildBVH builds a hierarchy with one primitive per leaf
func BuildBVH(prims *Primitives) (*BVH, error) {
	n := len(prims.Shapes)
	bvh := &BVH{Root: -1, Nodes: make([]BVHNode, 0, max(0, 2*n-1))}
	if n == 0 {
		return bvh, nil
	}

	boxes := make([]bboxWithID, n)
	for i, s := range prims.Shapes {
		box := s.BoundingBox(prims.Meshes)
		boxes[i] = bboxWithID{box: box, centroid: box.Center(), id: i}
	}

	root, err := bvh.build(boxes, 1)
	if err != nil {
		return nil, err
	}
	bvh.Root = root

	logger.Debugf("built BVH over %d primitives: %d nodes, depth %d", n, len(bvh.Nodes), bvh.depth)
	return bvh, nil
}

// build appends the subtree for boxes and returns its node index
func (b *BVH) build(boxes []bboxWithID, depth int) (int, error) {
	if depth > MaxBVHDepth {
		return -1, fmt.Errorf("%w: %d primitives at depth %d", ErrBVHTooDeep, len(boxes), depth)
	}
	b.depth = max(b.depth, depth)

	if len(boxes) == 1 {
		b.Nodes = append(b.Nodes, BVHNode{Box: boxes[0].box, Left: -1, Right: -1, PrimitiveID: boxes[0].id})
		return len(b.Nodes) - 1, nil
	}

	bounds := core.EmptyAABB()
	for _, bb := range boxes {
		bounds = bounds.Union(bb.box)
	}
	axis := bounds.LongestAxis()
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].centroid.Axis(axis) < boxes[j].centroid.Axis(axis)
	})

	mid := len(boxes) / 2
	left, err := b.build(boxes[:mid], depth+1)
	if err != nil {
		return -1, err
	}
	right, err := b.build(boxes[mid:], depth+1)
	if err != nil {
		return -1, err
	}

	box := b.Nodes[left].Box.Union(b.Nodes[right].Box)
	b.Nodes = append(b.Nodes, BVHNode{Box: box, Left: left, Right: right, PrimitiveID: -1})
	return len(b.Nodes) - 1, nil
}

// Bounds returns the box of the whole hierarchy
func (b *BVH) Bounds() core.AABB {
	if b.Root < 0 {
		return core.EmptyAABB()
	}
	return b.Nodes[b.Root].Box
}

// Stats returns node, leaf and depth counts
func (b *BVH) Stats() BVHStats {
	leaves := 0
	for i := range b.Nodes {
		if b.Nodes[i].IsLeaf() {
			leaves++
		}
	}
	return BVHStats{Nodes: len(b.Nodes), Leaves: leaves, Depth: b.depth}
}

// Intersect returns the closest hit along ray. ray.TMax is tightened as hits are found.
func (b *BVH) Intersect(ray core.Ray, prims *Primitives) (Intersection, bool) {
	var closest Intersection
	found := false
	if b.Root < 0 {
		return closest, false
	}

	var buf [MaxBVHDepth]int
	stack := append(buf[:0], b.Root)
	for len(stack) > 0 {
		nodeID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &b.Nodes[nodeID]
		if !node.Box.Hit(ray, ray.TMin, ray.TMax) {
			continue
		}
		if node.IsLeaf() {
			if hit, ok := prims.Shapes[node.PrimitiveID].Intersect(ray, prims.Meshes); ok {
				hit.ShapeID = node.PrimitiveID
				closest = hit
				found = true
				ray.TMax = hit.T
			}
			continue
		}
		stack = append(stack, node.Right, node.Left)
	}
	return closest, found
}

// Occluded reports whether anything lies along ray within [TMin, TMax]
func (b *BVH) Occluded(ray core.Ray, prims *Primitives) bool {
	if b.Root < 0 {
		return false
	}

	var buf [MaxBVHDepth]int
	stack := append(buf[:0], b.Root)
	for len(stack) > 0 {
		nodeID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &b.Nodes[nodeID]
		if !node.Box.Hit(ray, ray.TMin, ray.TMax) {
			continue
		}
		if node.IsLeaf() {
			if _, ok := prims.Shapes[node.PrimitiveID].Intersect(ray, prims.Meshes); ok {
				return true
			}
			continue
		}
		stack = append(stack, node.Right, node.Left)
	}
	return false
}
