package blockmesh

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scigolib/blockmesh/internal/container"
)

// TestPipeline_SingleVoxel runs one 2x2x2 raw-volume voxel (six tets)
// with D=0, C=1 end to end: a single leaf and all four output files.
func TestPipeline_SingleVoxel(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Source:     SourceRawVolume,
		VolumeSize: volumeSize{2, 2, 2},
		Scalars:    ScalarSelection{Mode: "all"},
		MaxDepth:   0,
		MaxCells:   1,
		OutputBase: filepath.Join(dir, "out"),
		ExportCSV:  true,
	}

	result, err := NewPipeline(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, result.OriginalCellCount)
	assert.Equal(t, 1, result.LeafCount)
	assert.Equal(t, 1, result.NodeCount)

	assert.FileExists(t, cfg.PartialPath())
	assert.FileExists(t, cfg.BlockMeshPath())
	assert.FileExists(t, cfg.OverviewCSVPath())
	assert.FileExists(t, cfg.FilledSlotsCSVPath())

	root, err := container.Open(cfg.PartialPath())
	require.NoError(t, err)
	assert.NotNil(t, root.Find("Base").Find("NodeZone").Find("NodeTree"))
}

// TestPipeline_StructuredGridSplitsIntoTwoLeaves exercises seed
// scenario 2's shape at pipeline scale: a slightly larger grid with a
// shallow tree produces multiple leaves, cell coverage holds, and
// every leaf mesh's connectivity stays in bounds.
func TestPipeline_StructuredGridSplitsIntoTwoLeaves(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Source:     SourceRawVolume,
		VolumeSize: volumeSize{3, 3, 3},
		Scalars:    ScalarSelection{Mode: "all"},
		MaxDepth:   1,
		MaxCells:   1,
		OutputBase: filepath.Join(dir, "out"),
	}

	result, err := NewPipeline(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.LeafCount)
	assert.Equal(t, 3, result.NodeCount)

	totalLeafCells := 0
	for _, leaf := range result.Leaves {
		totalLeafCells += leaf.CellCount()
		for _, idx := range leaf.Connectivity {
			assert.Less(t, int(idx), len(leaf.Positions))
		}
	}
	assert.GreaterOrEqual(t, totalLeafCells, result.OriginalCellCount)
}

func TestPipeline_NoWriteSkipsArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Source:     SourceRawVolume,
		VolumeSize: volumeSize{2, 2, 2},
		Scalars:    ScalarSelection{Mode: "none"},
		MaxDepth:   0,
		MaxCells:   1,
		OutputBase: filepath.Join(dir, "out"),
		NoWrite:    true,
	}

	_, err := NewPipeline(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.NoFileExists(t, cfg.PartialPath())
	assert.NoFileExists(t, cfg.BlockMeshPath())
}

func TestPipeline_UnsupportedSourceFailsCleanly(t *testing.T) {
	cfg := Config{Source: SourceBinaryGrid, Path: "mesh.lb4"}
	_, err := NewPipeline(cfg).Run(context.Background())
	require.Error(t, err)

	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, KindUnsupportedInput, be.Kind)
}
