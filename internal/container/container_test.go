package container

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_CommitAndRename_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bmc")

	w, err := NewWriter(path)
	require.NoError(t, err)

	base := w.Root().CreateGroup("Base", "CGNSBase_t", "I4")
	base.SetData([]byte{3, 3})

	zone := base.CreateGroup("Zone0", "Zone_t", "I4")
	zone.SetData([]byte{1, 2, 3, 4})
	zone.CreateGroup("ZoneType", "ZoneType_t", "C1")

	require.NoError(t, w.Commit())
	require.NoError(t, w.Rename())

	root, err := Open(path)
	require.NoError(t, err)

	gotBase := root.Find("Base")
	require.NotNil(t, gotBase)
	assert.Equal(t, "CGNSBase_t", gotBase.Label)
	assert.Equal(t, []byte{3, 3}, gotBase.Data)

	gotZone := gotBase.Find("Zone0")
	require.NotNil(t, gotZone)
	assert.Equal(t, []byte{1, 2, 3, 4}, gotZone.Data)

	gotZoneType := gotZone.Find("ZoneType")
	require.NotNil(t, gotZoneType)
	assert.False(t, gotZoneType.HasData)
}

func TestWriter_Abort_LeavesNoFinalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bmc")

	w, err := NewWriter(path)
	require.NoError(t, err)
	w.Root().CreateGroup("Base", "CGNSBase_t", "I4")

	require.NoError(t, w.Abort())

	_, err = Open(path)
	assert.Error(t, err)
}

func TestWriter_EmptyRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bmc")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Commit())
	require.NoError(t, w.Rename())

	root, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, root.Children)
}

func TestOpen_RejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bmc")

	require.NoError(t, writeFileForTest(path, []byte("not a container file, too short")))

	_, err := Open(path)
	assert.Error(t, err)
}
