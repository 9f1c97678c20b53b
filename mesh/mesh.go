// Package mesh defines the in-memory tetrahedral mesh that flows through
// every stage of the block-mesh pipeline: a flat vertex array, a
// fully-tetrahedral connectivity array, and a set of named per-vertex
// scalar fields, plus the bounding box and scalar limits derived from
// them.
//
// Grounded on original_source/ingest/modules/mesh.py.
package mesh

import (
	"fmt"
	"sort"
)

// Vec3 is a point or vector in the mesh's coordinate space.
type Vec3 struct {
	X, Y, Z float32
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vec3
}

// Mid returns the midpoint of the box along the given axis (0=x, 1=y, 2=z).
func (b Box) Mid(axis int) float32 {
	switch axis {
	case 0:
		return 0.5 * (b.Min.X + b.Max.X)
	case 1:
		return 0.5 * (b.Min.Y + b.Max.Y)
	default:
		return 0.5 * (b.Min.Z + b.Max.Z)
	}
}

// Corner returns the box corner selected by the 3-bit key
// b = (zbit<<2)|(ybit<<1)|xbit, where each bit selects Min (0) or Max (1)
// along that axis.
func (b Box) Corner(key int) Vec3 {
	pick := func(bit int, lo, hi float32) float32 {
		if bit == 1 {
			return hi
		}
		return lo
	}
	return Vec3{
		X: pick(key&1, b.Min.X, b.Max.X),
		Y: pick((key>>1)&1, b.Min.Y, b.Max.Y),
		Z: pick((key>>2)&1, b.Min.Z, b.Max.Z),
	}
}

// Axis returns the coordinate along the given axis.
func (v Vec3) Axis(axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Limits is the scalar range of a single named field.
type Limits struct {
	Min, Max float32
}

// Mesh is a fully-tetrahedral unstructured mesh with named per-vertex
// scalar fields.
type Mesh struct {
	Positions    []Vec3
	Connectivity []uint32 // length = 4 * CellCount(), zero-based
	Values       map[string][]float32
	Box          Box
	Limits       map[string]Limits
	// ID is the leaf identifier when this Mesh is a leaf slice produced
	// by the leaf-mesh extractor; zero for the full input mesh.
	ID uint32
}

// New constructs a Mesh and validates the invariants every stage relies
// on: connectivity indices within range, and every scalar array aligned
// one-to-one with Positions.
func New(positions []Vec3, connectivity []uint32, values map[string][]float32) (*Mesh, error) {
	if len(connectivity)%4 != 0 {
		return nil, fmt.Errorf("mesh: connectivity length %d is not a multiple of 4", len(connectivity))
	}
	for _, idx := range connectivity {
		if int(idx) >= len(positions) {
			return nil, fmt.Errorf("mesh: connectivity index %d out of range (have %d positions)", idx, len(positions))
		}
	}
	for name, buf := range values {
		if len(buf) != len(positions) {
			return nil, fmt.Errorf("mesh: scalar field %q has length %d, want %d", name, len(buf), len(positions))
		}
	}

	m := &Mesh{
		Positions:    positions,
		Connectivity: connectivity,
		Values:       values,
	}
	m.RecalculateBox()
	m.RecalculateLimits()
	return m, nil
}

// CellCount returns the number of tetrahedra in the mesh.
func (m *Mesh) CellCount() int {
	return len(m.Connectivity) / 4
}

// CellVertex returns the local vertex j (0..3) of cell i.
func (m *Mesh) CellVertex(cell, j int) uint32 {
	return m.Connectivity[cell*4+j]
}

// RecalculateBox recomputes Box from Positions.
func (m *Mesh) RecalculateBox() {
	if len(m.Positions) == 0 {
		m.Box = Box{}
		return
	}
	box := Box{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		box.Min.X = min32(box.Min.X, p.X)
		box.Min.Y = min32(box.Min.Y, p.Y)
		box.Min.Z = min32(box.Min.Z, p.Z)
		box.Max.X = max32(box.Max.X, p.X)
		box.Max.Y = max32(box.Max.Y, p.Y)
		box.Max.Z = max32(box.Max.Z, p.Z)
	}
	m.Box = box
}

// RecalculateLimits recomputes Limits from Values.
func (m *Mesh) RecalculateLimits() {
	m.Limits = make(map[string]Limits, len(m.Values))
	for name, buf := range m.Values {
		if len(buf) == 0 {
			m.Limits[name] = Limits{}
			continue
		}
		lim := Limits{Min: buf[0], Max: buf[0]}
		for _, v := range buf[1:] {
			lim.Min = min32(lim.Min, v)
			lim.Max = max32(lim.Max, v)
		}
		m.Limits[name] = lim
	}
}

// ScalarNames returns the mesh's scalar field names in sorted order for
// deterministic iteration.
func (m *Mesh) ScalarNames() []string {
	names := make([]string, 0, len(m.Values))
	for name := range m.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
