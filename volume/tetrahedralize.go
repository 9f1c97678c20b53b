// Package volume tetrahedralizes a structured 3D grid of voxels into
// six-tet-per-voxel connectivity, with an optional decimation pass
// that randomly collapses interior vertices to reduce cell count.
//
// Grounded on original_source/ingest/modules/load_mesh.py
// (create_raw_tet_con, create_raw_tet_con_dec).
package volume

import "fmt"

// Size is the voxel-grid dimensions (vertex counts, not voxel counts:
// a Size of {2,2,2} is a single voxel with 8 corner vertices).
type Size [3]uint32

// VoxelCount returns the number of (size-1)^3 voxels the grid contains.
func (s Size) VoxelCount() uint64 {
	if s[0] < 2 || s[1] < 2 || s[2] < 2 {
		return 0
	}
	return uint64(s[0]-1) * uint64(s[1]-1) * uint64(s[2]-1)
}

func (s Size) validate() error {
	if s[0] < 2 || s[1] < 2 || s[2] < 2 {
		return fmt.Errorf("volume: size %v must be at least 2 in every dimension", s)
	}
	return nil
}

func pointIndex(s Size, x, y, z uint32) uint32 {
	return x + y*s[0] + z*s[0]*s[1]
}

// cornerOffsets is the per-voxel low-corner-relative point-index
// offset of each of the voxel's 8 corners, in the source's fixed
// ordering (low corner first, then along x, y, xy, z, xz, yz, xyz).
func cornerOffsets(s Size) [8]uint32 {
	return [8]uint32{
		0,
		1,
		0 + s[0],
		1 + s[0],
		0 + 0 + s[0]*s[1],
		1 + 0 + s[0]*s[1],
		0 + s[0] + s[0]*s[1],
		1 + s[0] + s[0]*s[1],
	}
}

// voxelCells returns the six tets of one voxel given its corner point
// indices p[0..7], in the source's fixed vertex-0/vertex-7 fan order.
func voxelCells(p [8]uint32) [6][4]uint32 {
	return [6][4]uint32{
		{p[1], p[0], p[5], p[7]},
		{p[0], p[5], p[7], p[4]},
		{p[0], p[7], p[6], p[4]},
		{p[0], p[7], p[2], p[6]},
		{p[0], p[3], p[2], p[7]},
		{p[0], p[1], p[3], p[7]},
	}
}

// Build tetrahedralizes every voxel of the grid with no decimation:
// six tets per voxel, sharing the voxel's 0 and 7 corners.
func Build(size Size) ([]uint32, error) {
	if err := size.validate(); err != nil {
		return nil, err
	}

	voxels := size.VoxelCount()
	connectivity := make([]uint32, 0, voxels*6*4)
	offsets := cornerOffsets(size)

	for z := uint32(0); z < size[2]-1; z++ {
		for y := uint32(0); y < size[1]-1; y++ {
			for x := uint32(0); x < size[0]-1; x++ {
				base := pointIndex(size, x, y, z)
				var p [8]uint32
				for i, off := range offsets {
					p[i] = base + off
				}
				for _, cell := range voxelCells(p) {
					connectivity = append(connectivity, cell[0], cell[1], cell[2], cell[3])
				}
			}
		}
	}

	return connectivity, nil
}

// Positions builds the implicit grid vertex positions for a structured
// volume: integer lattice coordinates, x fastest-varying.
func Positions(size Size) []float32 {
	n := int(size[0]) * int(size[1]) * int(size[2])
	out := make([]float32, n*3)
	i := 0
	for z := uint32(0); z < size[2]; z++ {
		for y := uint32(0); y < size[1]; y++ {
			for x := uint32(0); x < size[0]; x++ {
				out[i*3+0] = float32(x)
				out[i*3+1] = float32(y)
				out[i*3+2] = float32(z)
				i++
			}
		}
	}
	return out
}
