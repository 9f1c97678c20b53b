package artifact

import (
	"os"

	"github.com/scigolib/blockmesh/internal/container"
	"github.com/scigolib/blockmesh/internal/utils"
	"github.com/scigolib/blockmesh/mesh"
)

// WritePair emits both output artifacts -- the partial index at
// partialPath and the block-mesh file at blockMeshPath -- with the
// "both or neither" durability guarantee from SPEC_FULL.md §7: both
// containers are fully serialized to temp files before either is
// renamed into place, and any failure aborts both, leaving no partial
// artifact visible at either final path.
func WritePair(partialPath, blockMeshPath string, partial PartialInput, leaves []*mesh.Mesh) (err error) {
	maxCells, maxVerts := maxLeafStats(leaves)

	pw, err := container.NewWriter(partialPath)
	if err != nil {
		return utils.WrapError("opening partial artifact", err)
	}
	bw, err := container.NewWriter(blockMeshPath)
	if err != nil {
		_ = pw.Abort()
		return utils.WrapError("opening block-mesh artifact", err)
	}

	defer func() {
		if err != nil {
			_ = pw.Abort()
			_ = bw.Abort()
		}
	}()

	partial.MaxCells = maxCells
	partial.MaxVerts = maxVerts
	buildPartial(pw, partial)
	buildBlockMesh(bw, leaves, maxCells, maxVerts)

	if err = pw.Commit(); err != nil {
		return utils.WrapError("committing partial artifact", err)
	}
	if err = bw.Commit(); err != nil {
		return utils.WrapError("committing block-mesh artifact", err)
	}

	if err = pw.Rename(); err != nil {
		return utils.WrapError("finalizing partial artifact", err)
	}
	if err = bw.Rename(); err != nil {
		_ = os.Remove(partialPath)
		return utils.WrapError("finalizing block-mesh artifact", err)
	}

	return nil
}

func maxLeafStats(leaves []*mesh.Mesh) (maxCells, maxVerts uint32) {
	for _, leaf := range leaves {
		if c := uint32(leaf.CellCount()); c > maxCells {
			maxCells = c
		}
		if v := uint32(len(leaf.Positions)); v > maxVerts {
			maxVerts = v
		}
	}
	return maxCells, maxVerts
}
