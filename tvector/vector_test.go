package tvector

import (
	"testing"

	"github.com/cpmech/thunderegg/domain"
	"github.com/cpmech/thunderegg/internal/testcomm"
	"github.com/cpmech/thunderegg/patch"
	"github.com/stretchr/testify/require"
)

func newSinglePatchDomain(t *testing.T, ns []int, numGhostCells int) *domain.Domain {
	comms := testcomm.NewGroup(1)
	p := patch.New(len(ns))
	p.ID = 1
	p.NS = append([]int(nil), ns...)
	d, err := domain.NewDomain(comms[0], 0, ns, domain.Options{NumGhostCells: numGhostCells}, []*patch.PatchInfo{p})
	require.NoError(t, err)
	return d
}

func TestManagedAllocationSize(t *testing.T) {
	d := newSinglePatchDomain(t, []int{4, 3}, 1)
	v, err := NewManaged(d, 2)
	require.NoError(t, err)
	require.Equal(t, 1, v.NumLocalPatches())
	require.Equal(t, 2, v.NumComponents())
	require.Len(t, v.patchBuf[0], 2*(4+2)*(3+2))
}

func TestPatchViewWritesIsolatedPerComponent(t *testing.T) {
	d := newSinglePatchDomain(t, []int{4, 3}, 1)
	v, err := NewManaged(d, 2)
	require.NoError(t, err)

	pv, err := v.GetPatchView(0)
	require.NoError(t, err)
	pv.Set(7, 1, 1, 0)
	pv.Set(9, 1, 1, 1)
	require.Equal(t, 7.0, pv.At(1, 1, 0))
	require.Equal(t, 9.0, pv.At(1, 1, 1))

	c0, err := v.GetComponentView(0, 0)
	require.NoError(t, err)
	c1, err := v.GetComponentView(1, 0)
	require.NoError(t, err)
	require.Equal(t, 7.0, c0.At(1, 1))
	require.Equal(t, 9.0, c1.At(1, 1))
}

func TestComponentViewPointerEqualsPatchView(t *testing.T) {
	d := newSinglePatchDomain(t, []int{4, 3}, 1)
	v, err := NewManaged(d, 2)
	require.NoError(t, err)

	pv, err := v.GetPatchView(0)
	require.NoError(t, err)
	cv, err := v.GetComponentView(1, 0)
	require.NoError(t, err)

	require.Same(t, pv.Ptr(2, 0, 1), cv.Ptr(2, 0))
}

func TestUnmanagedRejectsWrongSizedBuffer(t *testing.T) {
	bad := [][]float64{make([]float64, 3)}
	_, err := NewUnmanaged(2, 1, []int{4, 3}, 1, bad)
	require.Error(t, err)
}

func TestUnmanagedBorrowsCallerBuffer(t *testing.T) {
	buf := make([]float64, 1*(4+2)*(3+2))
	v, err := NewUnmanaged(2, 1, []int{4, 3}, 1, [][]float64{buf})
	require.NoError(t, err)
	pv, err := v.GetPatchView(0)
	require.NoError(t, err)
	pv.Set(42, 0, 0, 0)
	require.Equal(t, 42.0, pv.At(0, 0, 0))
	found := false
	for _, x := range buf {
		if x == 42 {
			found = true
		}
	}
	require.True(t, found, "Set on an unmanaged patch view must write into the caller's buffer")
}
