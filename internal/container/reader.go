package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/scigolib/blockmesh/internal/utils"
)

// GroupHandle is a read-only view of a group recovered from a
// committed container file.
type GroupHandle struct {
	Name     string
	Label    string
	Type     string
	Data     []byte
	HasData  bool
	Children []*GroupHandle
}

// Find returns the first direct child with the given name, or nil.
func (g *GroupHandle) Find(name string) *GroupHandle {
	for _, c := range g.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Open reads a committed container file back into memory. Tests use it
// to verify the writer's output, cmd/bmcdump uses it for inspection,
// and the loader's SourceContainer path uses it to read a block-mesh
// zone back in as an input mesh.
func Open(path string) (*GroupHandle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapError("reading container file", err)
	}

	if len(data) < headerSize {
		return nil, fmt.Errorf("container file too small: %d bytes", len(data))
	}

	var magic [4]byte
	copy(magic[:], data[0:4])
	if magic != Magic {
		return nil, fmt.Errorf("not a block-mesh container file (bad magic)")
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	if version != 1 {
		return nil, fmt.Errorf("unsupported container version %d", version)
	}

	r := bytes.NewReader(data)
	rootOffset, err := utils.ReadUint64(r, 8, binary.LittleEndian)
	if err != nil {
		return nil, utils.WrapError("reading container root offset", err)
	}

	root, _, err := decodeGroupRecord(r, data, rootOffset)
	if err != nil {
		return nil, utils.WrapError("decoding container tree", err)
	}
	return root, nil
}

// decodeGroupRecord walks one group record. The fixed-width uint64
// fields (data length, child offsets) are read through utils.ReadUint64
// against r so the whole tree decodes through the same ReaderAt-based
// path a streaming reader would use; the variable-width string/payload
// fields still slice directly into the in-memory buffer.
func decodeGroupRecord(r utils.ReaderAt, data []byte, offset uint64) (*GroupHandle, uint64, error) {
	pos := int(offset)

	name, pos, err := getString(data, pos)
	if err != nil {
		return nil, 0, err
	}
	label, pos, err := getString(data, pos)
	if err != nil {
		return nil, 0, err
	}
	typ, pos, err := getString(data, pos)
	if err != nil {
		return nil, 0, err
	}

	if pos >= len(data) {
		return nil, 0, fmt.Errorf("truncated record at offset %d", offset)
	}
	hasData := data[pos] == 1
	pos++

	g := &GroupHandle{Name: name, Label: label, Type: typ, HasData: hasData}

	if hasData {
		dataLen, err := utils.ReadUint64(r, int64(pos), binary.LittleEndian)
		if err != nil {
			return nil, 0, fmt.Errorf("truncated data length at offset %d: %w", offset, err)
		}
		pos += 8
		if uint64(pos)+dataLen > uint64(len(data)) {
			return nil, 0, fmt.Errorf("truncated payload at offset %d", offset)
		}
		g.Data = append([]byte(nil), data[pos:pos+int(dataLen)]...)
		pos += int(dataLen)
	}

	if pos+4 > len(data) {
		return nil, 0, fmt.Errorf("truncated child count at offset %d", offset)
	}
	childCount := binary.LittleEndian.Uint32(data[pos : pos+4])
	pos += 4

	for i := uint32(0); i < childCount; i++ {
		childOffset, err := utils.ReadUint64(r, int64(pos), binary.LittleEndian)
		if err != nil {
			return nil, 0, fmt.Errorf("truncated child offset at offset %d: %w", offset, err)
		}
		pos += 8

		child, _, err := decodeGroupRecord(r, data, childOffset)
		if err != nil {
			return nil, 0, err
		}
		g.Children = append(g.Children, child)
	}

	return g, uint64(pos), nil
}

func getString(data []byte, pos int) (string, int, error) {
	if pos+4 > len(data) {
		return "", 0, fmt.Errorf("truncated string length at offset %d", pos)
	}
	length := binary.LittleEndian.Uint32(data[pos : pos+4])
	pos += 4
	if uint64(pos)+uint64(length) > uint64(len(data)) {
		return "", 0, fmt.Errorf("truncated string data at offset %d", pos)
	}
	s := string(data[pos : pos+int(length)])
	return s, pos + int(length), nil
}
