package face

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSideStableIndices(t *testing.T) {
	require.Equal(t, 0, SideWest.Index())
	require.Equal(t, 1, SideEast.Index())
	require.Equal(t, 2, SideSouth.Index())
	require.Equal(t, 3, SideNorth.Index())
	require.Equal(t, 4, SideBottom.Index())
	require.Equal(t, 5, SideTop.Index())
}

func TestCorner3StableIndices(t *testing.T) {
	names := []string{"BSW", "BSE", "BNW", "BNE", "TSW", "TSE", "TNW", "TNE"}
	for i, n := range names {
		c := Corner{i}
		require.Equal(t, i, c.Index())
		require.Equal(t, n, c.String3())
	}
}

func TestEdgeStableIndices(t *testing.T) {
	for i, e := range Edges() {
		require.Equal(t, i, e.Index())
	}
	require.Equal(t, 0, mustEdge(t, "BS").Index())
	require.Equal(t, 11, mustEdge(t, "NW").Index())
}

func mustEdge(t *testing.T, name string) Edge {
	e, err := EdgeFromString(name)
	require.NoError(t, err)
	return e
}

func TestSideOppositeInvolution(t *testing.T) {
	for _, s := range SidesD(3) {
		require.Equal(t, s, s.Opposite().Opposite())
	}
}

func TestEdgeOppositeInvolution(t *testing.T) {
	for _, e := range Edges() {
		require.Equal(t, e, e.Opposite().Opposite())
	}
}

func TestCornerGetSidesDistinctAndPerpendicular(t *testing.T) {
	for _, c := range CornersD(3) {
		sides := c.GetSides(3)
		require.Len(t, sides, 3)
		seen := map[Axis]bool{}
		for _, s := range sides {
			axis := s.AxisIndex()
			require.False(t, seen[axis], "axis %v repeated", axis)
			seen[axis] = true
		}
		require.Len(t, seen, 3)
	}
	for _, c := range CornersD(2) {
		sides := c.GetSides(2)
		require.Len(t, sides, 2)
		require.NotEqual(t, sides[0].AxisIndex(), sides[1].AxisIndex())
	}
}

func TestEdgeGetSidesPerpendicularToEdgeAxis(t *testing.T) {
	for _, e := range Edges() {
		for _, s := range e.GetSides() {
			require.NotEqual(t, e.AxisIndex(), s.AxisIndex())
		}
	}
}

func TestOrthantRoundTrip(t *testing.T) {
	for _, o := range OrthantsM(3) {
		name := o.String(3)
		back, err := OrthantFromString(3, name)
		require.NoError(t, err)
		require.Equal(t, o, back)
	}
}

func TestNbrTypeRoundTrip(t *testing.T) {
	for _, ty := range []NbrType{Normal, Coarse, Fine} {
		back, err := NbrTypeFromString(ty.String())
		require.NoError(t, err)
		require.Equal(t, ty, back)
	}
}
