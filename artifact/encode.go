// Package artifact assembles the two container-format output files the
// pipeline produces: the partial index (serialized tree + corner
// samples + value ranges) and the block-mesh file (one zone per leaf),
// both built on internal/container and both written with the same
// temp-path-then-atomic-rename discipline, committed together or not
// at all.
//
// Grounded on original_source/ingest/generate_block_mesh.py
// (write_block_mesh_data, create_node_zone_group, export_meshes_info)
// and modules/mesh.py:create_zone_subgroup.
package artifact

import (
	"encoding/binary"
	"math"
)

func encodeF32(vals []float32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func encodeU32(vals []uint32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

func encodeI32(vals []int32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

// encodeString stores a tag the way string_to_np_char does: one byte
// per ASCII character, no terminator.
func encodeString(s string) []byte {
	return []byte(s)
}
