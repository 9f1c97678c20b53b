package corner

import (
	"math"

	"github.com/scigolib/blockmesh/mesh"
)

// rangeUnset marks a leaf scalar range that has no data (an empty
// leaf); used only as bookkeeping during the range merge pass. Corner
// values use the zero value directly: get_leaf_corner_vals defaults an
// unlocated corner to 0, matching spec §8 scenario 6 (all-zero corner
// buffers for an empty leaf), so Go's zero-initialized [8]float32
// already has the right default and needs no explicit sentinel.
var rangeUnset = float32(math.NaN())

func isRangeUnset(v float32) bool {
	return v != v
}

// leafResult is the per-leaf outcome of corner evaluation: one value
// per scalar per corner, plus the scalar ranges over the leaf's cells.
type leafResult struct {
	corners map[string][8]float32
	ranges  map[string]mesh.Limits
}

// evaluateLeaf locates each of the leaf's eight box corners inside one
// of the leaf's cells via barycentric point-location, interpolates
// every named scalar at the located point, and computes the scalar
// value range over every vertex touched by the leaf's cells.
//
// Grounded on leaf_mesh.py's get_leaf_corner_vals / get_leaf_node_range.
func evaluateLeaf(m *mesh.Mesh, box mesh.Box, cellIDs []uint32, scalarNames []string) leafResult {
	res := leafResult{
		corners: make(map[string][8]float32, len(scalarNames)),
		ranges:  make(map[string]mesh.Limits, len(scalarNames)),
	}
	for _, name := range scalarNames {
		res.corners[name] = [8]float32{} // zero-filled: see rangeUnset doc above
	}

	for key := 0; key < 8; key++ {
		p := box.Corner(key)
		factors, vertIdx, ok := locate(m, cellIDs, p)
		if !ok {
			continue
		}
		for _, name := range scalarNames {
			buf := m.Values[name]
			var v float32
			for i := 0; i < 4; i++ {
				v += factors[i] * buf[vertIdx[i]]
			}
			c := res.corners[name]
			c[key] = v
			res.corners[name] = c
		}
	}

	for _, name := range scalarNames {
		buf := m.Values[name]
		lim := mesh.Limits{Min: rangeUnset, Max: rangeUnset}
		first := true
		for _, cellID := range cellIDs {
			for j := 0; j < 4; j++ {
				v := buf[m.CellVertex(int(cellID), j)]
				if first {
					lim = mesh.Limits{Min: v, Max: v}
					first = false
					continue
				}
				if v < lim.Min {
					lim.Min = v
				}
				if v > lim.Max {
					lim.Max = v
				}
			}
		}
		res.ranges[name] = lim
	}

	return res
}

// locate finds the cell (among cellIDs) containing p, returning its
// barycentric factors and the four global vertex indices of that cell.
// Cells are tried in order; the first acceptance (within tolerance)
// wins, matching the source's linear leaf-cell scan.
func locate(m *mesh.Mesh, cellIDs []uint32, p mesh.Vec3) (factors [4]float32, vertIdx [4]uint32, ok bool) {
	for _, cellID := range cellIDs {
		var verts [4]mesh.Vec3
		var idx [4]uint32
		for j := 0; j < 4; j++ {
			idx[j] = m.CellVertex(int(cellID), j)
			verts[j] = m.Positions[idx[j]]
		}
		if !pointInCellBounds(p, verts) {
			continue
		}
		f, accepted := barycentric(p, verts)
		if accepted {
			return f, idx, true
		}
	}
	return factors, vertIdx, false
}
