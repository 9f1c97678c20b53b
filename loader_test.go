package blockmesh

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scigolib/blockmesh/artifact"
	"github.com/scigolib/blockmesh/corner"
	"github.com/scigolib/blockmesh/kdtree"
	"github.com/scigolib/blockmesh/leafmesh"
	"github.com/scigolib/blockmesh/mesh"
)

func TestLoadMesh_RawVolumeTwoCubed_SixTetsWithDefaultScalar(t *testing.T) {
	m, err := LoadMesh(Config{
		Source:     SourceRawVolume,
		VolumeSize: volumeSize{2, 2, 2},
		Scalars:    ScalarSelection{Mode: "all"},
	})
	require.NoError(t, err)

	assert.Equal(t, 8, len(m.Positions))
	assert.Equal(t, 6, m.CellCount())
	assert.Contains(t, m.Values, "Default")
}

func TestLoadMesh_RawVolumeNoneSelected_NoScalarFields(t *testing.T) {
	m, err := LoadMesh(Config{
		Source:     SourceRawVolume,
		VolumeSize: volumeSize{2, 2, 2},
		Scalars:    ScalarSelection{Mode: "none"},
	})
	require.NoError(t, err)
	assert.Empty(t, m.Values)
}

func TestLoadMesh_BinaryGridIsUnsupported(t *testing.T) {
	_, err := LoadMesh(Config{Source: SourceBinaryGrid, Path: "whatever.lb4"})
	require.Error(t, err)

	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, KindUnsupportedInput, be.Kind)
}

func TestLoadMesh_ContainerRoundTripsThroughOwnBlockMeshZone(t *testing.T) {
	unit := unitTetMeshForPipeline(t)
	tr, err := kdtree.Build(context.Background(), unit, kdtree.Options{MaxDepth: 0, MaxCells: 1})
	require.NoError(t, err)
	s := tr.Serialize()

	leaves, err := leafmesh.Extract(context.Background(), unit, s, leafmesh.Options{})
	require.NoError(t, err)

	cornerRes, err := corner.Sample(context.Background(), unit, s, unit.Box, unit.ScalarNames(), corner.Options{})
	require.NoError(t, err)

	dir := t.TempDir()
	partialPath := filepath.Join(dir, "p.bmc")
	blockPath := filepath.Join(dir, "b.bmc")
	in := artifact.PartialInput{
		Serialized: s, NodeCount: tr.NodeCount(), LeafCount: tr.LeafCount,
		Box: unit.Box, Corners: cornerRes, Ranges: cornerRes.Ranges, ScalarNames: unit.ScalarNames(),
	}
	require.NoError(t, artifact.WritePair(partialPath, blockPath, in, leaves))

	loaded, err := LoadMesh(Config{
		Source:   SourceContainer,
		Path:     blockPath,
		ZoneName: "Zone0",
		Scalars:  ScalarSelection{Mode: "all"},
	})
	require.NoError(t, err)

	assert.Equal(t, len(unit.Positions), len(loaded.Positions))
	assert.Equal(t, unit.CellCount(), loaded.CellCount())
	assert.Equal(t, unit.Values["s"], loaded.Values["s"])
}

func unitTetMeshForPipeline(t *testing.T) *mesh.Mesh {
	t.Helper()
	positions := []mesh.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	values := map[string][]float32{"s": {0, 1, 2, 3}}
	m, err := mesh.New(positions, []uint32{0, 1, 2, 3}, values)
	require.NoError(t, err)
	return m
}
