package artifact

import (
	"github.com/scigolib/blockmesh/corner"
	"github.com/scigolib/blockmesh/internal/container"
	"github.com/scigolib/blockmesh/kdtree"
	"github.com/scigolib/blockmesh/mesh"
)

// PartialInput bundles everything the partial artifact needs. maxCells
// and maxVerts are the global maxima of cell-count and vertex-count
// across every leaf mesh, shared verbatim with the block-mesh file's
// MaxPrimitives record so the server can pre-size buffers from either
// file alone.
type PartialInput struct {
	Serialized  *kdtree.Serialized
	NodeCount   int
	LeafCount   int
	MaxCells    uint32
	MaxVerts    uint32
	Box         mesh.Box
	Corners     *corner.Result
	Ranges      map[string][]mesh.Limits
	ScalarNames []string
}

// buildPartial populates a fresh container tree with the partial
// artifact's contents, grounded on create_node_zone_group: a
// CGNSLibraryVersion record, a Base group, and inside it a single
// NodeZone subgroup carrying the node buffer, tree stats, corner
// buffers, per-scalar limits, max-primitives, and the dataset bounds.
func buildPartial(w *container.Writer, in PartialInput) {
	root := w.Root()

	root.CreateGroup("CGNSLibraryVersion", "CGNSLibraryVersion_t", "R4").
		SetData(encodeF32([]float32{3.3}))

	base := root.CreateGroup("Base", "CGNSBase_t", "I4")
	base.SetData(encodeI32([]int32{3, 3}))

	nodeZone := base.CreateGroup("NodeZone", "Zone_t", "I4")
	nodeZone.SetData(encodeI32([]int32{0, 0, 0}))

	nodeZone.CreateGroup("ZoneType", "ZoneType_t", "C1").
		SetData(encodeString("ZoneTypeNull"))

	nodeZone.CreateGroup("NodeTree", "UserDefinedData_t", "C1").
		SetData(in.Serialized.Nodes)

	nodeZone.CreateGroup("TreeData", "UserDefinedData_t", "I4").
		SetData(encodeI32([]int32{int32(in.NodeCount), int32(in.LeafCount)}))

	nodeZone.CreateGroup("CornerValueType", "UserDefinedData_t", "C1").
		SetData(encodeString("Sample"))

	flowSol := nodeZone.CreateGroup("FlowSolution", "FlowSolution_t", "MT")
	for _, name := range in.ScalarNames {
		flat := flattenCorners(in.Corners.Corners[name])
		flowSol.CreateGroup(name, "DataArray_t", "R4").SetData(encodeF32(flat))
	}

	flowLimits := nodeZone.CreateGroup("FlowSolutionLimits", "FlowSolution_t", "MT")
	for _, name := range in.ScalarNames {
		// root node range: min/max over the vertices the mesh's cells
		// reference; a vertex no cell references does not contribute.
		lim := in.Ranges[name][0]
		flowLimits.CreateGroup(name, "DataArray_t", "R4").
			SetData(encodeF32([]float32{lim.Min, lim.Max}))
	}

	nodeRanges := nodeZone.CreateGroup("FlowSolutionNodeRange", "FlowSolution_t", "MT")
	for _, name := range in.ScalarNames {
		nodeRanges.CreateGroup(name, "DataArray_t", "R4").
			SetData(encodeF32(flattenRanges(in.Ranges[name])))
	}

	nodeZone.CreateGroup("MaxPrimitives", "UserDefinedData_t", "I4").
		SetData(encodeU32([]uint32{in.MaxCells, in.MaxVerts}))

	box := in.Box
	nodeZone.CreateGroup("ZoneBounds", "UserDefinedData_t", "R4").
		SetData(encodeF32([]float32{box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z}))
}

func flattenCorners(perNode [][8]float32) []float32 {
	out := make([]float32, len(perNode)*8)
	for i, c := range perNode {
		copy(out[i*8:i*8+8], c[:])
	}
	return out
}

// flattenRanges lays out the per-node {min, max} range array (§3A) as
// [node_count, 2] float32, matching FlowSolutionNodeRange's shape.
func flattenRanges(perNode []mesh.Limits) []float32 {
	out := make([]float32, len(perNode)*2)
	for i, lim := range perNode {
		out[i*2] = lim.Min
		out[i*2+1] = lim.Max
	}
	return out
}
