package view

import (
	"testing"

	"github.com/cpmech/thunderegg/face"
	"github.com/stretchr/testify/require"
)

// newPatchView builds a 2-D, 1-component view over an nx*ny patch with the
// given ghost depth, row-major with x fastest, matching tvector's layout.
func newPatchView(nx, ny, ghost int) View {
	gx, gy := nx+2*ghost, ny+2*ghost
	buf := make([]float64, gx*gy)
	strides := []int{1, gx}
	lengths := []int{nx, ny}
	spatial := []bool{true, true}
	origin := ghost*1 + ghost*gx
	return New(buf, origin, strides, lengths, spatial, ghost)
}

func TestSliceOnIsPointerEqualToParent(t *testing.T) {
	v := newPatchView(5, 4, 2)
	sl, err := v.GetSliceOn(face.SideEast, 2, []int{0})
	require.NoError(t, err)
	// east, offset 0 => innermost cell at x = nx-1
	for y := 0; y < 4; y++ {
		require.Same(t, v.Ptr(4, y), sl.Ptr(y))
	}
}

func TestSliceOnOppositeFacesAreExactInverse(t *testing.T) {
	v := newPatchView(6, 4, 1)
	east, err := v.GetSliceOn(face.SideEast, 2, []int{2})
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		require.Same(t, v.Ptr(6-1-2, y), east.Ptr(y))
	}
	west, err := v.GetSliceOn(face.SideWest, 2, []int{2})
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		require.Same(t, v.Ptr(2, y), west.Ptr(y))
	}
}

func TestGhostSliceOnAddressesGhostLayers(t *testing.T) {
	v := newPatchView(4, 4, 3)
	gs, err := v.GetGhostSliceOn(face.SideWest, 2, []int{0})
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		require.Same(t, v.Ptr(-1, y), gs.Ptr(y))
	}
	gs2, err := v.GetGhostSliceOn(face.SideEast, 2, []int{2})
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		require.Same(t, v.Ptr(4+2, y), gs2.Ptr(y))
	}
}

func TestCornerSliceFixesBothAxes(t *testing.T) {
	v := newPatchView(5, 5, 1)
	sl, err := v.GetSliceOn(face.Corner{}, 2, []int{0, 0})
	require.NoError(t, err)
	// face.Corner{} is the SW zero-value corner (idx 0): lower on both axes.
	require.NoError(t, err)
	require.Equal(t, 0, sl.NumAxes())
	require.Same(t, v.Ptr(0, 0), sl.Ptr())
}

func TestOutOfRangeCoordinatePanics(t *testing.T) {
	v := newPatchView(4, 4, 1)
	require.Panics(t, func() { v.At(10, 0) })
}
