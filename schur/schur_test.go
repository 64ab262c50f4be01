package schur

import (
	"testing"

	"github.com/cpmech/thunderegg/domain"
	"github.com/cpmech/thunderegg/generator"
	"github.com/cpmech/thunderegg/internal/testcomm"
	"github.com/cpmech/thunderegg/octree/faketree"
	"github.com/cpmech/thunderegg/patch"
	"github.com/cpmech/thunderegg/tvector"
	"github.com/cpmech/thunderegg/view"
	"github.com/stretchr/testify/require"
)

func identityBMF(treeID int64, unit []float64) []float64 {
	out := append([]float64(nil), unit...)
	return out
}

// buildUniform1x2 builds a single-rank, two-patch domain: one cell to the
// west, one to the east, both at the same refinement level — spec.md §8
// scenario 6's "uniform 1x2 mesh".
func buildUniform1x2(t *testing.T, ns []int) *domain.Domain {
	t.Helper()
	tree := faketree.New(2, []faketree.Cell{
		{Level: 1, Coord: []int{0, 0}},
		{Level: 1, Coord: []int{1, 0}},
	})
	comm := testcomm.NewGroup(1)[0]
	g := generator.New(comm, tree, ns, 1, identityBMF)
	d, err := g.GetFinestDomain()
	require.NoError(t, err)
	return d
}

// TestOneInterfaceOnUniform1x2Mesh exercises spec.md §8 scenario 6's first
// half: a uniform 1x2 mesh produces exactly one interface, sized to the
// shared side's face shape.
func TestOneInterfaceOnUniform1x2Mesh(t *testing.T) {
	dom := buildUniform1x2(t, []int{5, 5})
	require.Equal(t, 2, dom.GetNumGlobalPatches())

	id, err := New(dom)
	require.NoError(t, err)
	require.Len(t, id.Interfaces, 1)
	require.Equal(t, []int{5}, id.Interfaces[0].NS)
	require.Equal(t, 0, id.Interfaces[0].GlobalIndex)
	require.Len(t, id.Interfaces[0].Participants, 2)
}

type noopSolver struct{}

func (noopSolver) SolveSinglePatch(p *patch.PatchInfo, f, u view.View) error { return nil }

// constFiller overwrites every local patch's entire buffer, interior and
// ghost alike, to a fixed value — the same clobbering shape as
// original_source/test/Schur/PatchSolverWrapper_MOCKS.h's
// PatchFillingGhostFiller, used there for exactly this linearity check.
type constFiller struct{ val float64 }

func (c constFiller) FillGhost(dom *domain.Domain, v *tvector.Vector) error {
	dim := len(dom.NS)
	for i := range dom.Patches {
		full, err := v.GetPatchView(i)
		if err != nil {
			return err
		}
		setEverywhere(full, dim, c.val)
	}
	return nil
}

func setEverywhere(v view.View, dim int, val float64) {
	lengths := v.Lengths()
	ghost := v.NumGhostCells()
	lo := make([]int, dim+1)
	hi := make([]int, dim+1)
	for a := 0; a < dim; a++ {
		lo[a] = -ghost
		hi[a] = lengths[a] + ghost
	}
	lo[dim], hi[dim] = 0, lengths[dim]

	coord := make([]int, dim+1)
	var walk func(axis int)
	walk = func(axis int) {
		if axis == dim+1 {
			*v.Ptr(coord...) = val
			return
		}
		for c := lo[axis]; c < hi[axis]; c++ {
			coord[axis] = c
			walk(axis + 1)
		}
	}
	walk(0)
}

// TestApplyLinearityOnConstantInterfaceVector exercises spec.md §8 scenario
// 6's linearity property: with x ≡ k and a ghost-filler that writes k
// across every patch, apply(x, b) yields b ≡ k - k = 0.
func TestApplyLinearityOnConstantInterfaceVector(t *testing.T) {
	dom := buildUniform1x2(t, []int{5, 5})
	id, err := New(dom)
	require.NoError(t, err)

	const k = 3.5
	w, err := NewPatchSolverWrapper(id, noopSolver{}, constFiller{val: k})
	require.NoError(t, err)

	x := id.NewVector(1)
	x.Set(k)
	b := id.NewVector(1)
	b.Set(99) // Apply must overwrite b, never accumulate into it

	require.NoError(t, w.Apply(x, b))

	bv := b.GetIfaceView(0)
	for c := 0; c < 5; c++ {
		require.InDelta(t, 0.0, bv.At(c, 0), 1e-12)
	}
}

// TestAdjacencyGraphConnectivity checks that the two patches of a uniform
// 1x2 mesh are mutually reachable through AdjacencyGraph/BFS.
func TestAdjacencyGraphConnectivity(t *testing.T) {
	dom := buildUniform1x2(t, []int{5, 5})
	reached, err := ReachableFromFirstPatch(dom)
	require.NoError(t, err)
	require.Len(t, reached, 2)
	for _, p := range dom.Patches {
		require.True(t, reached[p.ID])
	}
}

// TestNonCubePatchesRejected exercises spec.md §7: a non-cube domain
// (ns[0] != ns[1]) must fail PatchSolverWrapper construction with a
// Configuration error rather than build silently.
func TestNonCubePatchesRejected(t *testing.T) {
	dom := buildUniform1x2(t, []int{5, 7})
	id, err := New(dom)
	require.NoError(t, err)

	_, err = NewPatchSolverWrapper(id, noopSolver{}, constFiller{val: 0})
	require.Error(t, err)
}
