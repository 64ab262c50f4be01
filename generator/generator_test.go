package generator

import (
	"math"
	"testing"

	"github.com/cpmech/thunderegg/face"
	"github.com/cpmech/thunderegg/internal/testcomm"
	"github.com/cpmech/thunderegg/octree/faketree"
	"github.com/cpmech/thunderegg/patch"
	"github.com/stretchr/testify/require"
)

func identityBMF(treeID int64, unit []float64) []float64 {
	out := append([]float64(nil), unit...)
	return out
}

func findByLowerCorner(t *testing.T, patches []*patch.PatchInfo, lo []float64) *patch.PatchInfo {
	t.Helper()
	for _, p := range patches {
		pLo, _ := p.Bounds()
		match := true
		for i := range lo {
			if math.Abs(pLo[i]-lo[i]) > 1e-9 {
				match = false
				break
			}
		}
		if match {
			return p
		}
	}
	t.Fatalf("no patch with lower corner %v among %d patches", lo, len(patches))
	return nil
}

func TestSinglePatchHasNoNeighborsOrCoarserLevel(t *testing.T) {
	comms := testcomm.NewGroup(1)
	tree := faketree.NewUniform(2, 0)
	g := New(comms[0], tree, []int{4, 4}, 1, identityBMF)

	require.False(t, g.HasCoarserDomain())
	d, err := g.GetFinestDomain()
	require.NoError(t, err)
	require.Equal(t, 1, d.GetNumGlobalPatches())
	for _, s := range face.SidesD(2) {
		require.False(t, d.Patches[0].HasNbr(s))
	}
}

func TestUniformGridHasNormalNeighborsOnly(t *testing.T) {
	comms := testcomm.NewGroup(1)
	tree := faketree.NewUniform(2, 1)
	g := New(comms[0], tree, []int{4, 4}, 1, identityBMF)

	d, err := g.GetFinestDomain()
	require.NoError(t, err)
	require.Equal(t, 4, d.GetNumGlobalPatches())

	bl := findByLowerCorner(t, d.Patches, []float64{0, 0})
	require.True(t, bl.HasNbr(face.SideEast))
	require.True(t, bl.HasNbr(face.SideNorth))
	require.False(t, bl.HasNbr(face.SideWest))
	require.False(t, bl.HasNbr(face.SideSouth))

	info, err := bl.GetNormalNbrInfo(face.SideEast)
	require.NoError(t, err)
	br := findByLowerCorner(t, d.Patches, []float64{0.5, 0})
	require.Equal(t, br.ID, info.ID)
}

// TestOneCoarsePatchBesideFourFinerPatches builds a 2x2 base grid with one
// cell refined one level deeper (spec.md §8 scenario 3) and checks that the
// finest domain wires Fine/Coarse neighbor descriptors correctly on both
// sides of the refinement boundary.
func TestOneCoarsePatchBesideFourFinerPatches(t *testing.T) {
	comms := testcomm.NewGroup(1)
	tree := faketree.NewWithRefinedCell(2, 1, []int{0, 1})
	g := New(comms[0], tree, []int{4, 4}, 1, identityBMF)

	require.True(t, g.HasCoarserDomain())
	finest, err := g.GetFinestDomain()
	require.NoError(t, err)
	require.Equal(t, 7, finest.GetNumGlobalPatches())

	bottomLeft := findByLowerCorner(t, finest.Patches, []float64{0, 0})
	topRight := findByLowerCorner(t, finest.Patches, []float64{0.5, 0.5})
	childSW := findByLowerCorner(t, finest.Patches, []float64{0, 0.5})
	childSE := findByLowerCorner(t, finest.Patches, []float64{0.25, 0.5})
	childNW := findByLowerCorner(t, finest.Patches, []float64{0, 0.75})
	childNE := findByLowerCorner(t, finest.Patches, []float64{0.25, 0.75})

	// bottomLeft: boundary to the west/south, normal to the east, fine to the north
	require.False(t, bottomLeft.HasNbr(face.SideWest))
	require.False(t, bottomLeft.HasNbr(face.SideSouth))
	eastType, err := bottomLeft.GetNbrType(face.SideEast)
	require.NoError(t, err)
	require.Equal(t, face.Normal, eastType)
	northFine, err := bottomLeft.GetFineNbrInfo(face.SideNorth)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{childSW.ID, childSE.ID}, northFine.IDs)

	// topRight: boundary to the north/east, normal to the south, fine to the west
	require.False(t, topRight.HasNbr(face.SideNorth))
	require.False(t, topRight.HasNbr(face.SideEast))
	southType, err := topRight.GetNbrType(face.SideSouth)
	require.NoError(t, err)
	require.Equal(t, face.Normal, southType)
	westFine, err := topRight.GetFineNbrInfo(face.SideWest)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{childSE.ID, childNE.ID}, westFine.IDs)

	// the refined children each see a Coarse neighbor back across the boundary
	swCoarse, err := childSW.GetCoarseNbrInfo(face.SideSouth)
	require.NoError(t, err)
	require.Equal(t, bottomLeft.ID, swCoarse.ID)

	seCoarseSouth, err := childSE.GetCoarseNbrInfo(face.SideSouth)
	require.NoError(t, err)
	require.Equal(t, bottomLeft.ID, seCoarseSouth.ID)
	seCoarseEast, err := childSE.GetCoarseNbrInfo(face.SideEast)
	require.NoError(t, err)
	require.Equal(t, topRight.ID, seCoarseEast.ID)

	neCoarseEast, err := childNE.GetCoarseNbrInfo(face.SideEast)
	require.NoError(t, err)
	require.Equal(t, topRight.ID, neCoarseEast.ID)

	// siblings within the refined family are plain Normal neighbors of each other
	siblingType, err := childSW.GetNbrType(face.SideEast)
	require.NoError(t, err)
	require.Equal(t, face.Normal, siblingType)
	siblingInfo, err := childSW.GetNormalNbrInfo(face.SideEast)
	require.NoError(t, err)
	require.Equal(t, childSE.ID, siblingInfo.ID)

	// coarsening merges the refined family back; the finest patches retain
	// the parent linkage retroactively once the coarser level is extracted.
	coarser, err := g.GetCoarserDomain()
	require.NoError(t, err)
	require.Equal(t, 4, coarser.GetNumGlobalPatches())
	require.False(t, g.HasCoarserDomain())

	merged := findByLowerCorner(t, coarser.Patches, []float64{0, 0.5})
	require.ElementsMatch(t, []int64{childSW.ID, childSE.ID, childNW.ID, childNE.ID}, merged.ChildIDs)

	require.Equal(t, merged.ID, childSW.ParentID)
	require.Equal(t, face.NewOrthant(0), childSW.OrthOnParent)

	require.Equal(t, bottomLeft.ID, bottomLeft.ParentID) // unrefined family: self-parented, no merge
	require.Equal(t, face.OrthantNull, bottomLeft.OrthOnParent)
}

// TestNormalNeighborRankIsPopulated checks that every installed Normal
// descriptor carries its neighbor's actual owning rank rather than the
// unresolved sentinel — domain.NewDomain's remote neighbor resolution
// routes queries by this claimed rank before any cross-rank exchange
// happens, so a generator that left it at -1 would make every multi-rank
// Domain fail to resolve its non-local neighbors.
func TestNormalNeighborRankIsPopulated(t *testing.T) {
	comms := testcomm.NewGroup(2)
	tree := faketree.NewUniform(2, 1)
	g := New(comms[0], tree, []int{4, 4}, 1, identityBMF)

	require.NoError(t, g.extractLevel())
	require.Len(t, g.pending, 1)
	all := g.pending[0]

	ranksSeen := map[int]bool{}
	for _, p := range all {
		ranksSeen[p.Rank] = true
	}
	require.Len(t, ranksSeen, 2, "Repartition must spread the 4 leaves across both ranks")

	for _, p := range all {
		for _, s := range p.SidesWithNbrs() {
			typ, err := p.GetNbrType(s)
			require.NoError(t, err)
			if typ != face.Normal {
				continue
			}
			info, err := p.GetNormalNbrInfo(s)
			require.NoError(t, err)
			require.GreaterOrEqual(t, info.Rank, 0)
		}
	}
}
