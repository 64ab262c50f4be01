package domain

import (
	"sync"
	"testing"

	"github.com/cpmech/thunderegg/face"
	"github.com/cpmech/thunderegg/internal/testcomm"
	"github.com/cpmech/thunderegg/nbrinfo"
	"github.com/cpmech/thunderegg/patch"
	"github.com/stretchr/testify/require"
)

// runRanks builds one Domain per rank concurrently, the way a real MPI job
// would run one process per rank — required because resolveRemoteNeighbors
// blocks on Send/Recv pairs across ranks.
func runRanks(t *testing.T, n int, patchesPerRank func(rank int) []*patch.PatchInfo) []*Domain {
	comms := testcomm.NewGroup(n)
	doms := make([]*Domain, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for r := 0; r < n; r++ {
		r := r
		go func() {
			defer wg.Done()
			d, err := NewDomain(comms[r], 0, []int{10, 10}, Options{NumGhostCells: 1}, patchesPerRank(r))
			doms[r] = d
			errs[r] = err
		}()
	}
	wg.Wait()
	for _, e := range errs {
		require.NoError(t, e)
	}
	return doms
}

func TestSinglePatchNoNeighbors(t *testing.T) {
	doms := runRanks(t, 1, func(rank int) []*patch.PatchInfo {
		p := patch.New(2)
		p.ID = 1
		return []*patch.PatchInfo{p}
	})
	d := doms[0]
	require.Equal(t, 1, d.GetNumGlobalPatches())
	for _, s := range face.SidesD(2) {
		require.False(t, d.Patches[0].HasNbr(s))
	}
}

func TestTwoPatchesSharedFaceSameRank(t *testing.T) {
	doms := runRanks(t, 1, func(rank int) []*patch.PatchInfo {
		a := patch.New(2)
		a.ID = 1
		a.SetNbrInfo(face.SideEast, nbrinfo.NewNormal(2))
		b := patch.New(2)
		b.ID = 2
		b.SetNbrInfo(face.SideWest, nbrinfo.NewNormal(1))
		return []*patch.PatchInfo{a, b}
	})
	d := doms[0]
	require.Equal(t, 2, d.GetNumGlobalPatches())
	infoA, err := d.Patches[0].GetNormalNbrInfo(face.SideEast)
	require.NoError(t, err)
	require.Equal(t, 1, infoA.LocalIndex)
	require.Equal(t, 1, infoA.GlobalIndex)
}

func TestTwoPatchesSharedFaceAcrossRanks(t *testing.T) {
	doms := runRanks(t, 2, func(rank int) []*patch.PatchInfo {
		p := patch.New(2)
		if rank == 0 {
			p.ID = 1
			nbr := nbrinfo.NewNormal(2)
			nbr.Normal.Rank = 1
			p.SetNbrInfo(face.SideEast, nbr)
		} else {
			p.ID = 2
			nbr := nbrinfo.NewNormal(1)
			nbr.Normal.Rank = 0
			p.SetNbrInfo(face.SideWest, nbr)
		}
		return []*patch.PatchInfo{p}
	})
	require.Equal(t, 2, doms[0].GetNumGlobalPatches())
	require.Equal(t, 2, doms[1].GetNumGlobalPatches())

	infoA, err := doms[0].Patches[0].GetNormalNbrInfo(face.SideEast)
	require.NoError(t, err)
	require.Equal(t, doms[1].Patches[0].GlobalIndex, infoA.GlobalIndex)

	infoB, err := doms[1].Patches[0].GetNormalNbrInfo(face.SideWest)
	require.NoError(t, err)
	require.Equal(t, doms[0].Patches[0].GlobalIndex, infoB.GlobalIndex)
}

func TestUnknownNeighborIDIsConfigurationError(t *testing.T) {
	comms := testcomm.NewGroup(1)
	p := patch.New(2)
	p.ID = 1
	nbr := nbrinfo.NewNormal(999)
	nbr.Normal.Rank = 0
	p.SetNbrInfo(face.SideEast, nbr)
	_, err := NewDomain(comms[0], 0, []int{10, 10}, Options{NumGhostCells: 1}, []*patch.PatchInfo{p})
	require.Error(t, err)
}
