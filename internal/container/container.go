// Package container implements the block-mesh hierarchical container
// format: a compact, self-contained binary layout for the two output
// artifacts described by the pipeline (partial index and block mesh).
//
// The format is not HDF5 wire-compatible. It borrows the CGNS-flavored
// naming convention used throughout the original system -- every group
// carries name/label/type attributes and an optional payload dataset --
// but the on-disk encoding, and the end-of-file allocation that lays it
// out, are this package's own: a single-pass sequential writer, far
// simpler than the chunked, rebalancing-aware allocator the rest of the
// corpus needs for a mutable file format.
package container

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/scigolib/blockmesh/internal/utils"
)

// Magic identifies a block-mesh container file.
var Magic = [4]byte{'B', 'M', 'C', '1'}

// headerSize is the size of the fixed file header: magic + version + root offset.
const headerSize = 4 + 4 + 8

// sequentialWriter allocates space at the end of a file and writes data
// there. The container format is written once, front to back, so it
// never needs the full read/rewrite/rebalance machinery a mutable
// format would.
type sequentialWriter struct {
	file *os.File
	eof  uint64
}

func newSequentialWriter(path string, initialOffset uint64) (*sequentialWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &sequentialWriter{file: f, eof: initialOffset}, nil
}

func (w *sequentialWriter) WriteAt(data []byte, offset int64) (int, error) {
	if w.file == nil {
		return 0, fmt.Errorf("writer is closed")
	}
	if len(data) == 0 {
		return 0, nil
	}
	n, err := w.file.WriteAt(data, offset)
	if err != nil {
		return n, fmt.Errorf("write at address %d failed: %w", offset, err)
	}
	return n, nil
}

// WriteAtWithAllocation appends data at the current end of file and
// returns the offset it landed at.
func (w *sequentialWriter) WriteAtWithAllocation(data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("cannot write empty data")
	}
	addr := w.eof
	if _, err := w.WriteAt(data, int64(addr)); err != nil {
		return 0, err
	}
	w.eof += uint64(len(data))
	return addr, nil
}

func (w *sequentialWriter) Flush() error {
	if w.file == nil {
		return fmt.Errorf("writer is closed")
	}
	return w.file.Sync()
}

func (w *sequentialWriter) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Group is an in-memory node of the container tree being built. Callers
// construct the tree with CreateGroup/SetData and then hand the root to
// Commit, mirroring the teacher's create_cgns_subgroup pattern from the
// original ingest tool.
type Group struct {
	Name     string
	Label    string
	Type     string
	data     []byte
	hasData  bool
	Children []*Group
}

// CreateGroup appends a new child subgroup and returns it, matching
// create_cgns_subgroup(group, name, label, type).
func (g *Group) CreateGroup(name, label, typ string) *Group {
	child := &Group{Name: name, Label: label, Type: typ}
	g.Children = append(g.Children, child)
	return child
}

// SetData attaches a raw payload dataset to this group (the original
// system's space-prefixed " data" child dataset).
func (g *Group) SetData(data []byte) {
	g.data = data
	g.hasData = true
}

// Writer builds a container file on disk. Create a Writer, populate its
// Root() tree, then call Commit to serialize everything in one pass.
type Writer struct {
	fw       *sequentialWriter
	tmpPath  string
	finalPath string
	root     *Group
	done     bool
}

// NewWriter opens a temporary file alongside finalPath and returns a
// Writer whose Root() group can be populated before Commit.
func NewWriter(finalPath string) (*Writer, error) {
	tmpPath := finalPath + ".tmp"

	fw, err := newSequentialWriter(tmpPath, headerSize)
	if err != nil {
		return nil, utils.WrapError("creating container temp file", err)
	}

	return &Writer{
		fw:        fw,
		tmpPath:   tmpPath,
		finalPath: finalPath,
		root:      &Group{Name: "", Label: "Root", Type: "Root"},
	}, nil
}

// Root returns the root group to populate before Commit.
func (w *Writer) Root() *Group {
	return w.root
}

// Commit serializes the whole tree depth-first (children before
// parents, so each parent can record its children's file offsets),
// writes the file header, flushes, and closes the temporary file. It
// does not move the file to its final path; Rename does that.
//
// Commit does not remove the temp file on failure; callers that need
// the "both files or neither" guarantee across multiple containers
// (artifact package) should call Abort explicitly on any failure path
// before either container has been renamed into place.
func (w *Writer) Commit() error {
	if w.done {
		return fmt.Errorf("container writer already committed or aborted")
	}

	rootOffset, err := writeGroup(w.fw, w.root)
	if err != nil {
		_ = w.fw.Close()
		return utils.WrapError("serializing container tree", err)
	}

	header := make([]byte, headerSize)
	copy(header[0:4], Magic[:])
	binary.LittleEndian.PutUint32(header[4:8], 1)
	binary.LittleEndian.PutUint64(header[8:16], rootOffset)

	if _, err := w.fw.WriteAt(header, 0); err != nil {
		_ = w.fw.Close()
		return utils.WrapError("writing container header", err)
	}

	if err := w.fw.Flush(); err != nil {
		_ = w.fw.Close()
		return utils.WrapError("flushing container file", err)
	}

	if err := w.fw.Close(); err != nil {
		return utils.WrapError("closing container file", err)
	}

	w.done = true
	return nil
}

// Rename moves the committed temp file to its final path. Split out of
// Commit so a caller writing two companion artifacts can Commit both
// first and only rename either once both have committed successfully.
func (w *Writer) Rename() error {
	if !w.done {
		return fmt.Errorf("container writer not committed")
	}
	if err := renameFile(w.tmpPath, w.finalPath); err != nil {
		return utils.WrapError("renaming container file into place", err)
	}
	return nil
}

// Abort discards the temporary file without writing the final path.
func (w *Writer) Abort() error {
	if !w.done {
		_ = w.fw.Close()
	}
	w.done = true
	return removeFile(w.tmpPath)
}

// writeGroup serializes g and all descendants depth-first (post-order)
// and returns g's own file offset. Children are written before their
// parent so the parent record can store concrete child offsets.
func writeGroup(fw *sequentialWriter, g *Group) (uint64, error) {
	childOffsets := make([]uint64, len(g.Children))
	for i, child := range g.Children {
		off, err := writeGroup(fw, child)
		if err != nil {
			return 0, err
		}
		childOffsets[i] = off
	}

	buf, err := encodeGroupRecord(g, childOffsets)
	if err != nil {
		return 0, err
	}
	off, err := fw.WriteAtWithAllocation(buf)
	utils.ReleaseBuffer(buf)
	return off, err
}

// encodeGroupRecord serializes g's fixed-layout record into a pooled
// buffer. The child-offset table's byte size is computed through
// utils.CalculateChunkSize (one "row" of 8 bytes per child) rather than
// a bare multiplication, and an oversized payload is rejected through
// utils.ValidateBufferSize before it is ever allocated for.
func encodeGroupRecord(g *Group, childOffsets []uint64) ([]byte, error) {
	childTableSize, err := utils.CalculateChunkSize([]uint32{uint32(len(childOffsets))}, 8)
	if err != nil {
		return nil, utils.WrapError("sizing child offset table", err)
	}

	if g.hasData && len(g.data) > 0 {
		if err := utils.ValidateBufferSize(uint64(len(g.data)), utils.MaxChunkSize, "group payload"); err != nil {
			return nil, utils.WrapError("group "+g.Name, err)
		}
	}

	size := 4 + len(g.Name) + 4 + len(g.Label) + 4 + len(g.Type) + 1
	if g.hasData {
		size += 8 + len(g.data)
	}
	size += 4 + int(childTableSize)

	buf := utils.GetBuffer(size)
	pos := 0

	pos = putString(buf, pos, g.Name)
	pos = putString(buf, pos, g.Label)
	pos = putString(buf, pos, g.Type)

	if g.hasData {
		buf[pos] = 1
		pos++
		binary.LittleEndian.PutUint64(buf[pos:pos+8], uint64(len(g.data)))
		pos += 8
		copy(buf[pos:pos+len(g.data)], g.data)
		pos += len(g.data)
	} else {
		buf[pos] = 0
		pos++
	}

	binary.LittleEndian.PutUint32(buf[pos:pos+4], uint32(len(childOffsets)))
	pos += 4
	for _, off := range childOffsets {
		binary.LittleEndian.PutUint64(buf[pos:pos+8], off)
		pos += 8
	}

	return buf, nil
}

func putString(buf []byte, pos int, s string) int {
	binary.LittleEndian.PutUint32(buf[pos:pos+4], uint32(len(s)))
	pos += 4
	copy(buf[pos:pos+len(s)], s)
	return pos + len(s)
}
