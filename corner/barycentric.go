// Package corner synthesizes per-node scalar samples at the eight
// corners of each KD-tree node's bounding box, plus per-node scalar
// value ranges, by tetrahedral point-location at the leaves and
// coherent merge up the tree.
//
// Grounded on original_source/ingest/modules/leaf_mesh.py.
package corner

import "github.com/scigolib/blockmesh/mesh"

// tolerance gates barycentric-coordinate acceptance, per SPEC_FULL.md §4.3.
const tolerance = 5e-3

// pointInCellBounds reports whether p lies within the axis-aligned
// bounding box of the tet's four vertices, a cheap pre-filter before
// the exact barycentric test (celltools.point_in_cell_bounds4).
func pointInCellBounds(p mesh.Vec3, verts [4]mesh.Vec3) bool {
	min, max := verts[0], verts[0]
	for _, v := range verts[1:] {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.Z < min.Z {
			min.Z = v.Z
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
		if v.Z > max.Z {
			max.Z = v.Z
		}
	}
	return p.X >= min.X && p.X <= max.X &&
		p.Y >= min.Y && p.Y <= max.Y &&
		p.Z >= min.Z && p.Z <= max.Z
}

// det4x4 computes the determinant of the 4x4 homogeneous position
// matrix formed by four points (each row [x, y, z, 1]).
func det4x4(a, b, c, d mesh.Vec3) float32 {
	m := [4][4]float32{
		{a.X, a.Y, a.Z, 1},
		{b.X, b.Y, b.Z, 1},
		{c.X, c.Y, c.Z, 1},
		{d.X, d.Y, d.Z, 1},
	}
	return det4(m)
}

func det4(m [4][4]float32) float32 {
	sub3 := func(a, b, c, d, e, f, g, h, i float32) float32 {
		return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	}
	var det float32
	sign := float32(1)
	for col := 0; col < 4; col++ {
		var minor [3][3]float32
		mr := 0
		for row := 1; row < 4; row++ {
			mc := 0
			for c := 0; c < 4; c++ {
				if c == col {
					continue
				}
				minor[mr][mc] = m[row][c]
				mc++
			}
			mr++
		}
		cofactor := sub3(
			minor[0][0], minor[0][1], minor[0][2],
			minor[1][0], minor[1][1], minor[1][2],
			minor[2][0], minor[2][1], minor[2][2],
		)
		det += sign * m[0][col] * cofactor
		sign = -sign
	}
	return det
}

// barycentric returns the four barycentric factors of p with respect
// to the tet with vertices verts, using the 4x4 determinant
// formulation: factor[i] = det(M with row i replaced by p) / det(M).
// All factors are zero (the all-zero sentinel) if the cell is
// degenerate (zero volume) or p is outside within tolerance.
func barycentric(p mesh.Vec3, verts [4]mesh.Vec3) (factors [4]float32, ok bool) {
	volume := det4x4(verts[0], verts[1], verts[2], verts[3])
	if volume == 0 {
		return factors, false
	}

	pts := verts
	for i := 0; i < 4; i++ {
		swapped := pts
		swapped[i] = p
		factors[i] = det4x4(swapped[0], swapped[1], swapped[2], swapped[3]) / volume
	}

	for _, f := range factors {
		if f < -tolerance {
			return [4]float32{}, false
		}
	}
	return factors, true
}
