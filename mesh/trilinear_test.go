package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateValuesFromRaw_SamplesCornersExactly(t *testing.T) {
	// 2x2x2 volume with a distinct value at each corner.
	dims := [3]int{2, 2, 2}
	data := []float32{0, 1, 2, 3, 4, 5, 6, 7}

	positions := []Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	}
	connectivity := []uint32{0, 1, 2, 4}

	m, err := New(positions, connectivity, nil)
	require.NoError(t, err)

	m.CreateValuesFromRaw("Default", data, dims)

	require.Len(t, m.Values["Default"], 8)
	assert.InDelta(t, 0, m.Values["Default"][0], 1e-5)
	assert.InDelta(t, 1, m.Values["Default"][1], 1e-5)
	assert.InDelta(t, 7, m.Values["Default"][7], 1e-5)
}
