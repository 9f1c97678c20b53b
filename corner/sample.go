package corner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/scigolib/blockmesh/kdtree"
	"github.com/scigolib/blockmesh/mesh"
)

// Options controls the leaf-evaluation fan-out.
type Options struct {
	// Workers bounds the number of goroutines used to evaluate leaves
	// concurrently. Zero means the errgroup default (unbounded, capped
	// naturally by the number of leaves).
	Workers int
}

// Result holds, for every serialized node offset, the eight corner
// samples of every named scalar and that node's scalar value ranges --
// the two per-node data products the container artifacts embed
// alongside the tree itself.
type Result struct {
	// Corners[scalar][nodeOffset] is the eight corner values of that
	// scalar at that node. An unset corner (outside every cell, or an
	// empty leaf) holds 0.
	Corners map[string][][8]float32
	// Ranges[scalar][nodeOffset] is the min/max of that scalar over
	// every vertex reachable from that node.
	Ranges map[string][]mesh.Limits
}

type pending struct {
	offset int
	depth  int
	box    mesh.Box
}

// Sample walks the serialized tree and produces corner samples and
// value ranges for every node, scalar by scalar. The walk is two
// phases: a cheap sequential descend that recovers each node's
// bounding box and split axis (neither of which survive serialization)
// and enumerates the leaves, then an errgroup fan-out that evaluates
// every leaf's expensive point-location work concurrently, followed by
// a serial bottom-up merge pass.
//
// Grounded on original_source/ingest/modules/leaf_mesh.py's two-phase
// descend/merge corner-value walk.
func Sample(ctx context.Context, m *mesh.Mesh, s *kdtree.Serialized, rootBox mesh.Box, scalarNames []string, opts Options) (*Result, error) {
	nodeCount := len(s.Nodes) / kdtree.NodeRecordSize

	axis := make([]int, nodeCount)
	boxes := make([]mesh.Box, nodeCount)
	isLeaf := make([]bool, nodeCount)
	var leafOffsets []int

	stack := []pending{{offset: 0, depth: 0, box: rootBox}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := s.Node(uint32(item.offset))
		boxes[item.offset] = item.box

		if n.IsLeaf() {
			isLeaf[item.offset] = true
			leafOffsets = append(leafOffsets, item.offset)
			continue
		}

		a := item.depth % 3
		axis[item.offset] = a

		leftBox, rightBox := item.box, item.box
		switch a {
		case 0:
			leftBox.Max.X, rightBox.Min.X = n.SplitVal, n.SplitVal
		case 1:
			leftBox.Max.Y, rightBox.Min.Y = n.SplitVal, n.SplitVal
		default:
			leftBox.Max.Z, rightBox.Min.Z = n.SplitVal, n.SplitVal
		}

		stack = append(stack, pending{int(n.LeftPtr), item.depth + 1, leftBox})
		stack = append(stack, pending{int(n.RightPtr), item.depth + 1, rightBox})
	}

	leafResults := make([]leafResult, nodeCount)
	g, _ := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for _, offset := range leafOffsets {
		offset := offset
		g.Go(func() error {
			n := s.Node(uint32(offset))
			cellIDs := s.Cells[n.LeftPtr : n.LeftPtr+n.CellCount]
			leafResults[offset] = evaluateLeaf(m, boxes[offset], cellIDs, scalarNames)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Corners: make(map[string][][8]float32, len(scalarNames)),
		Ranges:  make(map[string][]mesh.Limits, len(scalarNames)),
	}
	for _, name := range scalarNames {
		result.Corners[name] = make([][8]float32, nodeCount)
		result.Ranges[name] = make([]mesh.Limits, nodeCount)
	}

	for offset := nodeCount - 1; offset >= 0; offset-- {
		if isLeaf[offset] {
			lr := leafResults[offset]
			for _, name := range scalarNames {
				result.Corners[name][offset] = lr.corners[name]
				result.Ranges[name][offset] = lr.ranges[name]
			}
			continue
		}

		n := s.Node(uint32(offset))
		left, right := int(n.LeftPtr), int(n.RightPtr)
		splitDim := axis[offset]

		for _, name := range scalarNames {
			var merged [8]float32
			for key := 0; key < 8; key++ {
				if (key>>splitDim)&1 == 0 {
					merged[key] = result.Corners[name][left][key]
				} else {
					merged[key] = result.Corners[name][right][key]
				}
			}
			result.Corners[name][offset] = merged
			result.Ranges[name][offset] = mergeRange(result.Ranges[name][left], result.Ranges[name][right])
		}
	}

	return result, nil
}

// mergeRange unions two node scalar ranges, matching
// leaf_mesh.py's merge_node_range_vals. A NaN-valued range means its
// side contributed no data (an empty leaf) and is skipped.
func mergeRange(a, b mesh.Limits) mesh.Limits {
	if isRangeUnset(a.Min) {
		return b
	}
	if isRangeUnset(b.Min) {
		return a
	}
	out := a
	if b.Min < out.Min {
		out.Min = b.Min
	}
	if b.Max > out.Max {
		out.Max = b.Max
	}
	return out
}
