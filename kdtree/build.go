// Package kdtree builds and serializes the median-split KD tree over
// mesh cells that drives every downstream stage of the pipeline:
// corner sampling, node value ranges, and leaf-mesh extraction.
//
// Grounded on original_source/ingest/modules/tree.py. The logical tree
// is held as an arena of indices (per SPEC_FULL.md design notes)
// instead of the source's pointer-linked dict nodes, so the builder has
// no GC-traceable cycles.
package kdtree

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/scigolib/blockmesh/mesh"
)

// node is one arena entry during the build phase. parent/left/right are
// arena indices; -1 means "no such node".
type node struct {
	depth    int
	splitVal float32
	box      mesh.Box
	cells    []uint32 // non-nil only for leaves (and the not-yet-split root)
	parent   int
	left     int
	right    int
}

// Tree is the logical, build-time KD tree: an arena of nodes plus the
// bookkeeping (leaf/ max-cell stats) the original tool reports and the
// CSV export relies on.
type Tree struct {
	nodes        []node
	root         int
	LeafCount    int
	MaxCells     int
	TotalCells   int
	Box          mesh.Box
}

// Options controls tree construction.
type Options struct {
	MaxDepth int
	MaxCells int
	// Workers bounds the number of goroutines used to classify cells
	// within a single node when its cell count is at least ParallelThreshold.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int
	// ParallelThreshold is the minimum cell count before a node's
	// classification is fanned out across workers.
	ParallelThreshold int
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) parallelThreshold() int {
	if o.ParallelThreshold > 0 {
		return o.ParallelThreshold
	}
	return 4096
}

// Build constructs the tree over every cell of m using a LIFO work
// list, exactly matching generate_node_median's traversal order: a
// node's cells are classified, left then right children are pushed,
// and (because the list is a stack) the right subtree is expanded
// before the left.
func Build(ctx context.Context, m *mesh.Mesh, opts Options) (*Tree, error) {
	t := &Tree{Box: m.Box}

	rootCells := make([]uint32, m.CellCount())
	for i := range rootCells {
		rootCells[i] = uint32(i)
	}

	t.nodes = append(t.nodes, node{
		depth:  0,
		box:    m.Box,
		cells:  rootCells,
		parent: -1,
		left:   -1,
		right:  -1,
	})
	t.root = 0

	stack := []int{0}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[idx]

		if n.depth+1 > opts.MaxDepth || len(n.cells) <= opts.MaxCells {
			if len(n.cells) > t.MaxCells {
				t.MaxCells = len(n.cells)
			}
			t.TotalCells += len(n.cells)
			t.LeafCount++
			continue
		}

		axis := n.depth % 3
		splitVal := n.box.Mid(axis)

		left, right, err := classifyCells(ctx, m, n.cells, axis, splitVal, opts)
		if err != nil {
			return nil, err
		}

		leftBox := n.box
		leftBox.Max = setAxis(leftBox.Max, axis, splitVal)
		rightBox := n.box
		rightBox.Min = setAxis(rightBox.Min, axis, splitVal)

		n.splitVal = splitVal
		n.cells = nil

		leftIdx := len(t.nodes)
		t.nodes = append(t.nodes, node{
			depth: n.depth + 1, box: leftBox, cells: left,
			parent: idx, left: -1, right: -1,
		})
		rightIdx := len(t.nodes)
		t.nodes = append(t.nodes, node{
			depth: n.depth + 1, box: rightBox, cells: right,
			parent: idx, left: -1, right: -1,
		})

		// n may have been invalidated by the appends above (slice growth);
		// re-fetch before writing child links.
		t.nodes[idx].left = leftIdx
		t.nodes[idx].right = rightIdx

		stack = append(stack, leftIdx, rightIdx)
	}

	return t, nil
}

func setAxis(v mesh.Vec3, axis int, val float32) mesh.Vec3 {
	switch axis {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}

// classifyCells assigns each cell in `cells` to left, right, or both,
// using the inclusive dual-membership rule: a tet belongs to the left
// child if any vertex has coordinate <= splitVal, and to the right
// child if any vertex has coordinate > splitVal. Straddling cells are
// duplicated into both. Matches tree.py's split_cells /
// celltools.cell_plane_check4 semantics.
//
// Per SPEC_FULL.md §5/§4.1, classification within one node is a
// sanctioned data-parallel stage; large cell lists are chunked across a
// bounded worker pool with golang.org/x/sync/errgroup and merged
// serially to keep output order deterministic.
func classifyCells(ctx context.Context, m *mesh.Mesh, cells []uint32, axis int, splitVal float32, opts Options) (left, right []uint32, err error) {
	if len(cells) < opts.parallelThreshold() {
		l, r := classifyChunk(m, cells, axis, splitVal)
		return l, r, nil
	}

	workers := opts.workers()
	if workers > len(cells) {
		workers = len(cells)
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (len(cells) + workers - 1) / workers
	leftChunks := make([][]uint32, workers)
	rightChunks := make([][]uint32, workers)

	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		start := w * chunkSize
		end := start + chunkSize
		if end > len(cells) {
			end = len(cells)
		}
		if start >= end {
			continue
		}
		g.Go(func() error {
			leftChunks[w], rightChunks[w] = classifyChunk(m, cells[start:end], axis, splitVal)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for _, c := range leftChunks {
		left = append(left, c...)
	}
	for _, c := range rightChunks {
		right = append(right, c...)
	}
	return left, right, nil
}

func classifyChunk(m *mesh.Mesh, cells []uint32, axis int, splitVal float32) (left, right []uint32) {
	for _, cellID := range cells {
		belongsLeft, belongsRight := false, false
		for j := 0; j < 4; j++ {
			v := m.Positions[m.CellVertex(int(cellID), j)]
			coord := v.Axis(axis)
			if coord <= splitVal {
				belongsLeft = true
			}
			if coord > splitVal {
				belongsRight = true
			}
		}
		if belongsLeft {
			left = append(left, cellID)
		}
		if belongsRight {
			right = append(right, cellID)
		}
	}
	return left, right
}
