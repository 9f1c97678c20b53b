package kdtree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scigolib/blockmesh/mesh"
)

func unitTetMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	positions := []mesh.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
	}
	m, err := mesh.New(positions, []uint32{0, 1, 2, 3}, nil)
	require.NoError(t, err)
	return m
}

func twoDisjointTetsMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	// one tet entirely left of x=0.5, one entirely right.
	positions := []mesh.Vec3{
		{0, 0, 0}, {0.2, 0, 0}, {0, 0.2, 0}, {0, 0, 0.2},
		{0.8, 0, 0}, {1, 0, 0}, {0.8, 0.2, 0}, {0.8, 0, 0.2},
	}
	m, err := mesh.New(positions, []uint32{0, 1, 2, 3, 4, 5, 6, 7}, nil)
	require.NoError(t, err)
	return m
}

func TestBuild_SingleLeafWhenUnderCellCap(t *testing.T) {
	m := unitTetMesh(t)
	tr, err := Build(context.Background(), m, Options{MaxDepth: 10, MaxCells: 4})
	require.NoError(t, err)

	assert.Equal(t, 1, tr.NodeCount())
	assert.Equal(t, 1, tr.LeafCount)
	assert.Equal(t, 1, tr.MaxCells)
}

func TestBuild_SplitsDisjointCellsCleanlyAtMidplane(t *testing.T) {
	m := twoDisjointTetsMesh(t)
	tr, err := Build(context.Background(), m, Options{MaxDepth: 10, MaxCells: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, tr.LeafCount)
	assert.Equal(t, 1, tr.MaxCells)
	assert.Equal(t, 2, tr.TotalCells)
}

func TestBuild_StraddlingCellDuplicatedIntoBothChildren(t *testing.T) {
	// single tet straddling the x midplane of its own box
	positions := []mesh.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	}
	m, err := mesh.New(positions, []uint32{0, 1, 2, 3}, nil)
	require.NoError(t, err)

	tr, err := Build(context.Background(), m, Options{MaxDepth: 1, MaxCells: 0})
	require.NoError(t, err)

	assert.Equal(t, 2, tr.TotalCells) // one cell counted in both leaves
}

func TestBuild_RespectsMaxDepth(t *testing.T) {
	m := unitTetMesh(t)
	tr, err := Build(context.Background(), m, Options{MaxDepth: 0, MaxCells: 0})
	require.NoError(t, err)

	assert.Equal(t, 1, tr.NodeCount())
	assert.Equal(t, 1, tr.LeafCount)
}

func TestSerialize_RootAtOffsetZero(t *testing.T) {
	m := twoDisjointTetsMesh(t)
	tr, err := Build(context.Background(), m, Options{MaxDepth: 10, MaxCells: 1})
	require.NoError(t, err)

	s := tr.Serialize()
	require.Len(t, s.Nodes, tr.NodeCount()*NodeRecordSize)

	root := s.Node(0)
	assert.Equal(t, uint32(0), root.ParentPtr)
	assert.NotEqual(t, uint32(0), root.RightPtr, "root must be internal")
}

func TestSerialize_LeafSlicesCoverCellBuffer(t *testing.T) {
	m := twoDisjointTetsMesh(t)
	tr, err := Build(context.Background(), m, Options{MaxDepth: 10, MaxCells: 1})
	require.NoError(t, err)

	s := tr.Serialize()

	var sumLeafCells int
	for i := uint32(0); i < uint32(tr.NodeCount()); i++ {
		n := s.Node(i)
		if n.IsLeaf() {
			sumLeafCells += int(n.CellCount)
			assert.LessOrEqual(t, int(n.LeftPtr+n.CellCount), len(s.Cells))
		} else {
			assert.Greater(t, n.LeftPtr, n.RightPtr)
		}
	}
	assert.Equal(t, len(s.Cells), sumLeafCells)
}

func TestSerialize_ParentChainReachesRoot(t *testing.T) {
	m := twoDisjointTetsMesh(t)
	tr, err := Build(context.Background(), m, Options{MaxDepth: 10, MaxCells: 1})
	require.NoError(t, err)

	s := tr.Serialize()
	for i := uint32(0); i < uint32(tr.NodeCount()); i++ {
		steps := 0
		cur := i
		for cur != 0 && steps <= tr.NodeCount() {
			cur = s.Node(cur).ParentPtr
			steps++
		}
		assert.Equal(t, uint32(0), cur)
		assert.LessOrEqual(t, steps, tr.NodeCount())
	}
}
