package volume

import (
	"fmt"
	"math/rand/v2"
)

// nudges are the six axis-aligned single-step moves a decimated vertex
// may be redirected along, matching create_decimation_vert_map's fixed
// nudge table.
var nudges = [6][3]int32{
	{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
}

// VertMap is a one-hop substitution map from a source vertex's point
// index to the point index it should be replaced by.
type VertMap map[uint32]uint32

// BuildVertMap randomly selects interior vertices to collapse onto an
// axis-adjacent neighbor, targeting round(voxelVertexCount*fraction)
// substitutions. Only interior vertices (excluding the outer boundary
// layer) are chosen as sources, so every nudge stays in bounds.
//
// Per the one-hop cycle-prevention decision recorded in DESIGN.md, a
// candidate substitution is rejected only when its destination is
// already a mapped source -- not by walking the full chain -- which is
// sufficient to prevent cycles because any chain that could close one
// must pass through an existing mapped source, and that is exactly
// what this check catches.
func BuildVertMap(size Size, fraction float64, rng *rand.Rand) (VertMap, error) {
	if err := size.validate(); err != nil {
		return nil, err
	}
	if fraction <= 0 {
		return VertMap{}, nil
	}
	if size[0] < 3 || size[1] < 3 || size[2] < 3 {
		return nil, fmt.Errorf("volume: size %v has no interior vertices to decimate", size)
	}

	total := float64(size[0]) * float64(size[1]) * float64(size[2])
	removeTarget := int(total*fraction + 0.5)

	vertMap := make(VertMap)

	lo := [3]uint32{1, 1, 1}
	hi := [3]uint32{size[0] - 1, size[1] - 1, size[2] - 1} // exclusive

	tries := 0
	maxTries := 10 * removeTarget
	for len(vertMap) < removeTarget && tries < maxTries {
		tries++

		srcPos := [3]uint32{
			lo[0] + uint32(rng.IntN(int(hi[0]-lo[0]))),
			lo[1] + uint32(rng.IntN(int(hi[1]-lo[1]))),
			lo[2] + uint32(rng.IntN(int(hi[2]-lo[2]))),
		}
		srcIndex := pointIndex(size, srcPos[0], srcPos[1], srcPos[2])
		if _, already := vertMap[srcIndex]; already {
			continue
		}

		n := nudges[rng.IntN(6)]
		dstPos := [3]int32{
			int32(srcPos[0]) + n[0],
			int32(srcPos[1]) + n[1],
			int32(srcPos[2]) + n[2],
		}
		dstIndex := pointIndex(size, uint32(dstPos[0]), uint32(dstPos[1]), uint32(dstPos[2]))
		if _, already := vertMap[dstIndex]; already {
			continue
		}

		vertMap[srcIndex] = dstIndex
	}

	return vertMap, nil
}

// Translate follows the substitution chain from index to its final
// destination, matching load_mesh.py's translate_ind.
func (vm VertMap) Translate(index uint32) uint32 {
	cur := index
	for {
		next, ok := vm[cur]
		if !ok {
			return cur
		}
		cur = next
	}
}

func isDegenerate(cell [4]uint32) bool {
	return cell[0] == cell[1] || cell[0] == cell[2] || cell[0] == cell[3] ||
		cell[1] == cell[2] || cell[1] == cell[3] || cell[2] == cell[3]
}

// BuildDecimated tetrahedralizes the grid like Build, but first
// collapses a random subset of interior vertices per BuildVertMap, and
// drops any cell that degenerates (two translated vertices coincide)
// as a result.
func BuildDecimated(size Size, fraction float64, rng *rand.Rand) ([]uint32, VertMap, error) {
	if err := size.validate(); err != nil {
		return nil, nil, err
	}

	vertMap, err := BuildVertMap(size, fraction, rng)
	if err != nil {
		return nil, nil, err
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
				for _, raw := range voxelCells(p) {
					cell := [4]uint32{
						vertMap.Translate(raw[0]),
						vertMap.Translate(raw[1]),
						vertMap.Translate(raw[2]),
						vertMap.Translate(raw[3]),
					}
					if isDegenerate(cell) {
						continue
					}
					connectivity = append(connectivity, cell[0], cell[1], cell[2], cell[3])
				}
			}
		}
	}

	return connectivity, vertMap, nil
}
