package patch

import (
	"testing"

	"github.com/cpmech/thunderegg/face"
	"github.com/cpmech/thunderegg/nbrinfo"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	p := New(2)
	require.Equal(t, int64(0), p.ID)
	require.Equal(t, -1, p.Rank)
	require.Equal(t, -1, p.RefineLevel)
	require.Equal(t, int64(-1), p.ParentID)
	require.True(t, p.OrthOnParent.IsNull())
	for _, s := range face.SidesD(2) {
		require.False(t, p.HasNbr(s))
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	p := New(2)
	p.ID = 7
	p.Rank = 3
	p.RefineLevel = 2
	p.SetNbrInfo(face.SideEast, nbrinfo.NewNormal(9))
	p.SetNbrInfo(face.SideNorth, nbrinfo.NewCoarse(11, face.NewOrthant(1)))
	p.SetNbrInfo(face.SideWest, nbrinfo.NewFine([]int64{1, 2}))
	p.SetCornerNbrInfo(face.Corner{}, nbrinfo.NewNormal(5))

	data, err := p.Serialize()
	require.NoError(t, err)
	back, err := Deserialize(data)
	require.NoError(t, err)
	require.True(t, p.Equal(back))
}

func TestSerializeRoundTrip3D(t *testing.T) {
	p := New(3)
	p.ID = 42
	p.SetEdgeNbrInfo(face.Edge{}, nbrinfo.NewNormal(99))
	// look up a second edge by name via face.EdgeFromString
	e, err := face.EdgeFromString("NW")
	require.NoError(t, err)
	require.NoError(t, p.SetEdgeNbrInfo(e, nbrinfo.NewCoarse(3, face.NewOrthant(0))))

	data, err := p.Serialize()
	require.NoError(t, err)
	back, err := Deserialize(data)
	require.NoError(t, err)
	require.True(t, p.Equal(back))
}

func TestJSONRoundTripModuloDefaults(t *testing.T) {
	p := New(2)
	p.ID = 3
	p.NS = []int{10, 10}
	p.Spacings = []float64{0.1, 0.2}
	p.Starts = []float64{1, 2}
	p.SetNbrInfo(face.SideSouth, nbrinfo.NewNormal(4))

	data, err := p.MarshalJSON()
	require.NoError(t, err)

	var back PatchInfo
	require.NoError(t, back.UnmarshalJSON(data))
	require.Equal(t, p.ID, back.ID)
	require.Equal(t, p.Starts, back.Starts)
	lo1, hi1 := p.Bounds()
	lo2, hi2 := back.Bounds()
	require.Equal(t, lo1, lo2)
	require.InDeltaSlice(t, hi1, hi2, 1e-12)
	info, err := back.GetNormalNbrInfo(face.SideSouth)
	require.NoError(t, err)
	require.Equal(t, int64(4), info.ID)
}

func TestWrongVariantAccessErrors(t *testing.T) {
	p := New(2)
	p.SetNbrInfo(face.SideEast, nbrinfo.NewNormal(1))
	_, err := p.GetCoarseNbrInfo(face.SideEast)
	require.Error(t, err)
	_, err = p.GetFineNbrInfo(face.SideEast)
	require.Error(t, err)
	info, err := p.GetNormalNbrInfo(face.SideEast)
	require.NoError(t, err)
	require.Equal(t, int64(1), info.ID)
}

func TestGetNbrIdsCanonicalOrder(t *testing.T) {
	p := New(2)
	p.SetNbrInfo(face.SideEast, nbrinfo.NewNormal(20))
	p.SetNbrInfo(face.SideWest, nbrinfo.NewNormal(10))
	p.SetCornerNbrInfo(face.Corner{}, nbrinfo.NewNormal(30))

	ids := p.GetNbrIds()
	require.Equal(t, []int64{10, 20, 30}, ids) // west(0) < east(1), then corners
}

func TestEdgeNbrRejectedIn2D(t *testing.T) {
	p := New(2)
	err := p.SetEdgeNbrInfo(face.Edge{}, nbrinfo.NewNormal(1))
	require.Error(t, err)
}

func TestSetNeighborIndexesLeaveUnknownIdsUnresolved(t *testing.T) {
	p := New(2)
	p.SetNbrInfo(face.SideEast, nbrinfo.NewNormal(5))
	p.SetNeighborLocalIndexes(map[int64]int{5: 2})
	info, err := p.GetNormalNbrInfo(face.SideEast)
	require.NoError(t, err)
	require.Equal(t, 2, info.LocalIndex)
	require.Equal(t, -1, info.GlobalIndex)
}
