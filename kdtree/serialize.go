package kdtree

import "encoding/binary"

// NodeRecordSize is the fixed on-disk size of one serialized node:
// split_val f32, cell_count u32, parent_ptr u32, left_ptr u32, right_ptr u32.
const NodeRecordSize = 20

// NodeCount returns the number of nodes in the built tree (internal + leaf).
func (t *Tree) NodeCount() int {
	return len(t.nodes)
}

// Serialized holds the two flat buffers the partial and block-mesh
// artifacts are built from.
type Serialized struct {
	Nodes []byte   // NodeCount() * NodeRecordSize bytes, little-endian
	Cells []uint32 // packed leaf cell-index array

	// offsetOf maps an arena index to its serialized node offset
	// (in units of NodeRecordSize, i.e. a node *index* not a byte
	// offset) -- used by Serialize itself to patch each parent's child
	// pointers; corner sampling and leaf extraction walk the serialized
	// node records instead.
	offsetOf []uint32
}

// NodeAt decodes the node record at serialized node index i.
type NodeAt struct {
	SplitVal  float32
	CellCount uint32
	ParentPtr uint32
	LeftPtr   uint32
	RightPtr  uint32
}

// Node decodes and returns the node at serialized index i.
func (s *Serialized) Node(i uint32) NodeAt {
	off := int(i) * NodeRecordSize
	buf := s.Nodes[off : off+NodeRecordSize]
	return NodeAt{
		SplitVal:  decodeF32(buf[0:4]),
		CellCount: binary.LittleEndian.Uint32(buf[4:8]),
		ParentPtr: binary.LittleEndian.Uint32(buf[8:12]),
		LeftPtr:   binary.LittleEndian.Uint32(buf[12:16]),
		RightPtr:  binary.LittleEndian.Uint32(buf[16:20]),
	}
}

// IsLeaf reports whether a decoded node is a leaf (right_ptr == 0).
// Serialize gives every child an offset greater than its parent's, so
// no internal node (the root included) has right_ptr == 0, and this
// matches the format's documented convention.
func (n NodeAt) IsLeaf() bool {
	return n.RightPtr == 0
}

// Serialize linearizes the tree with a LIFO pre-order walk that
// matches tree.py's serialise(): starting from the root, at each step
// pop a node, assign it the next offset, push left then right onto the
// stack (so the next pop is the right child first). Offsets are
// monotonically increasing; each leaf's cells are appended to the cell
// buffer at the walk's current tail.
func (t *Tree) Serialize() *Serialized {
	s := &Serialized{
		Nodes:    make([]byte, t.NodeCount()*NodeRecordSize),
		Cells:    make([]uint32, 0, t.TotalCells),
		offsetOf: make([]uint32, t.NodeCount()),
	}

	type queued struct{ arenaIdx int }
	stack := []queued{{t.root}}

	nextOffset := uint32(0)

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := item.arenaIdx
		n := t.nodes[idx]
		offset := nextOffset
		nextOffset++
		s.offsetOf[idx] = offset

		recOff := int(offset) * NodeRecordSize
		rec := s.Nodes[recOff : recOff+NodeRecordSize]
		putF32(rec[0:4], n.splitVal)

		if n.cells != nil {
			binary.LittleEndian.PutUint32(rec[4:8], uint32(len(n.cells)))
			leftPtr := uint32(len(s.Cells))
			s.Cells = append(s.Cells, n.cells...)
			binary.LittleEndian.PutUint32(rec[12:16], leftPtr)
		}

		if n.parent >= 0 {
			parentOffset := s.offsetOf[n.parent]
			binary.LittleEndian.PutUint32(rec[8:12], parentOffset)

			parentRecOff := int(parentOffset) * NodeRecordSize
			parentRec := s.Nodes[parentRecOff : parentRecOff+NodeRecordSize]
			if t.nodes[n.parent].left == idx {
				binary.LittleEndian.PutUint32(parentRec[12:16], offset)
			} else {
				binary.LittleEndian.PutUint32(parentRec[16:20], offset)
			}
		}

		if n.left >= 0 {
			stack = append(stack, queued{n.left})
		}
		if n.right >= 0 {
			stack = append(stack, queued{n.right})
		}
	}

	return s
}

func putF32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, f32bits(v))
}

func decodeF32(buf []byte) float32 {
	return f32frombits(binary.LittleEndian.Uint32(buf))
}
