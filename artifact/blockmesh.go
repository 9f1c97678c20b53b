package artifact

import (
	"fmt"

	"github.com/scigolib/blockmesh/internal/container"
	"github.com/scigolib/blockmesh/mesh"
)

// buildBlockMesh populates a fresh container tree with the block-mesh
// artifact: a Base group carrying MaxPrimitives and one Zone<id>
// subgroup per leaf mesh, grounded on write_block_mesh_data and
// mesh.py:create_zone_subgroup.
func buildBlockMesh(w *container.Writer, leaves []*mesh.Mesh, maxCells, maxVerts uint32) {
	root := w.Root()
	base := root.CreateGroup("Base", "CGNSBase_t", "I4")
	base.SetData(encodeI32([]int32{3, 3}))

	base.CreateGroup("MaxPrimitives", "UserDefinedData_t", "I4").
		SetData(encodeU32([]uint32{maxCells, maxVerts}))

	for _, leaf := range leaves {
		buildZone(base, leaf)
	}
}

func buildZone(base *container.Group, leaf *mesh.Mesh) {
	name := fmt.Sprintf("Zone%d", leaf.ID)
	zoneData := []int32{int32(len(leaf.Positions)), int32(leaf.CellCount()), 0}

	zone := base.CreateGroup(name, "Zone_t", "I4")
	zone.SetData(encodeI32(zoneData))

	zone.CreateGroup("ZoneType", "ZoneType_t", "C1").
		SetData(encodeString("Unstructured"))

	coords := zone.CreateGroup("GridCoordinates", "GridCoordinates_t", "MT")
	xs, ys, zs := splitCoordinates(leaf.Positions)
	coords.CreateGroup("CoordinateX", "DataArray_t", "R4").SetData(encodeF32(xs))
	coords.CreateGroup("CoordinateY", "DataArray_t", "R4").SetData(encodeF32(ys))
	coords.CreateGroup("CoordinateZ", "DataArray_t", "R4").SetData(encodeF32(zs))

	elem := zone.CreateGroup("GridElements", "Elements_t", "I4")
	elem.SetData(encodeI32([]int32{10, 0})) // element type 10 = tetrahedron

	elem.CreateGroup("ElementRange", "IndexRange_t", "I4").
		SetData(encodeI32([]int32{1, int32(len(leaf.Connectivity))}))

	oneBased := make([]uint32, len(leaf.Connectivity))
	for i, idx := range leaf.Connectivity {
		oneBased[i] = idx + 1
	}
	elem.CreateGroup("ElementConnectivity", "DataArray_t", "I4").
		SetData(encodeU32(oneBased))

	sol := zone.CreateGroup("FlowSolution", "FlowSolution_t", "MT")
	for _, name := range leaf.ScalarNames() {
		sol.CreateGroup(name, "DataArray_t", "R4").SetData(encodeF32(leaf.Values[name]))
	}
}

func splitCoordinates(positions []mesh.Vec3) (xs, ys, zs []float32) {
	xs = make([]float32, len(positions))
	ys = make([]float32, len(positions))
	zs = make([]float32, len(positions))
	for i, p := range positions {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}
	return xs, ys, zs
}
