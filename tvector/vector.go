// Package tvector implements Vector (spec.md §3/§3 "Vector (C6)"): the
// per-patch, multi-component data buffer for a Domain, with a view-factory
// that hands out view.View windows for a whole patch or a single
// component. Named tvector (not vector) to avoid shadowing Go's own
// vector-shaped slice idiom while keeping the source's name recognizable.
package tvector

import (
	"github.com/cpmech/thunderegg/domain"
	"github.com/cpmech/thunderegg/internal/rte"
	"github.com/cpmech/thunderegg/view"
)

// Vector is the D-dimensional, multi-component cell-data container of
// spec.md's Vector (C6). It is built once per Domain and holds one
// contiguous, row-major, ghost-inclusive buffer per local patch (Managed
// mode) or borrows patch buffers supplied by the caller (Unmanaged mode).
type Vector struct {
	d             int
	numComponents int
	ns            []int
	numGhostCells int

	// patchBuf[i] is the buffer for local patch i; patchOrigin[i] is the
	// offset within patchBuf[i] where patch i's ghost-inclusive block starts
	// (patchOriginFor adds the ghost margin to reach the all-zero cell).
	patchBuf    [][]float64
	patchOrigin []int
}

// NewManaged allocates one contiguous buffer per local patch, sized
// numComponents · Π(n_i + 2·numGhostCells) doubles, per spec.md §3's
// Managed construction mode.
func NewManaged(dom *domain.Domain, numComponents int) (*Vector, error) {
	if numComponents < 1 {
		return nil, rte.Errorf(rte.Configuration, "tvector: numComponents must be >= 1, got %d", numComponents)
	}
	d := len(dom.NS)
	n := numComponents
	for _, ni := range dom.NS {
		n *= ni + 2*dom.NumGhostCells
	}
	v := &Vector{
		d: d, numComponents: numComponents, ns: append([]int(nil), dom.NS...),
		numGhostCells: dom.NumGhostCells,
		patchBuf:      make([][]float64, dom.GetNumLocalPatches()),
		patchOrigin:   make([]int, dom.GetNumLocalPatches()),
	}
	for i := range v.patchBuf {
		v.patchBuf[i] = make([]float64, n)
	}
	return v, nil
}

// NewUnmanaged builds a Vector over externally-owned patch buffers: one
// []float64 per local patch, each already sized for numComponents
// components over the ghost-inclusive extents ns/numGhostCells, per
// spec.md §3's Unmanaged construction mode.
func NewUnmanaged(d, numComponents int, ns []int, numGhostCells int, patchBuffers [][]float64) (*Vector, error) {
	if numComponents < 1 {
		return nil, rte.Errorf(rte.Configuration, "tvector: numComponents must be >= 1, got %d", numComponents)
	}
	want := numComponents
	for _, ni := range ns {
		want *= ni + 2*numGhostCells
	}
	for i, buf := range patchBuffers {
		if len(buf) != want {
			return nil, rte.Errorf(rte.Configuration, "tvector: patch %d buffer has %d doubles, want %d", i, len(buf), want)
		}
	}
	return &Vector{
		d: d, numComponents: numComponents, ns: append([]int(nil), ns...), numGhostCells: numGhostCells,
		patchBuf:    patchBuffers,
		patchOrigin: make([]int, len(patchBuffers)),
	}, nil
}

// NumLocalPatches returns the number of patches this Vector holds data for.
func (v *Vector) NumLocalPatches() int { return len(v.patchBuf) }

// NumComponents returns the number of data components per cell.
func (v *Vector) NumComponents() int { return v.numComponents }

// componentStrides returns the row-major strides of a (D+1)-axis
// ghost-inclusive patch buffer where the component axis is axis D — the
// slowest-varying axis, per spec.md §3 ("components are the slowest-
// varying axis within a patch"). strides[D] is the per-component stride
// (the size of one component's D-dimensional ghost-inclusive block).
func componentStrides(ns []int, numGhostCells int) []int {
	d := len(ns)
	strides := make([]int, d+1)
	stride := 1
	for axis := 0; axis < d; axis++ {
		strides[axis] = stride
		stride *= ns[axis] + 2*numGhostCells
	}
	strides[d] = stride
	return strides
}

// patchOriginFor returns the buffer index of the all-zero, component-0
// cell for local patch i: the corner where every spatial coordinate is 0
// and the component coordinate is 0, i.e. numGhostCells ghost cells in on
// every spatial axis.
func (v *Vector) patchOriginFor(i int) int {
	strides := componentStrides(v.ns, v.numGhostCells)
	off := v.patchOrigin[i]
	for axis := 0; axis < v.d; axis++ {
		off += v.numGhostCells * strides[axis]
	}
	return off
}

// GetPatchView returns the (D+1)-axis view over local patch i's full
// buffer, spatial axes followed by the trailing component axis.
func (v *Vector) GetPatchView(i int) (view.View, error) {
	if i < 0 || i >= len(v.patchBuf) {
		return view.View{}, rte.Errorf(rte.Invariant, "tvector: patch index %d out of range [0,%d)", i, len(v.patchBuf))
	}
	strides := componentStrides(v.ns, v.numGhostCells)
	lengths := make([]int, v.d+1)
	spatial := make([]bool, v.d+1)
	for axis := 0; axis < v.d; axis++ {
		lengths[axis] = v.ns[axis]
		spatial[axis] = true
	}
	lengths[v.d] = v.numComponents
	spatial[v.d] = false
	return view.New(v.patchBuf[i], v.patchOriginFor(i), strides, lengths, spatial, v.numGhostCells), nil
}

// GetComponentView returns the D-axis view over component c of local patch
// i — the patch view with the component axis fixed at c.
func (v *Vector) GetComponentView(c, i int) (view.View, error) {
	if c < 0 || c >= v.numComponents {
		return view.View{}, rte.Errorf(rte.Invariant, "tvector: component %d out of range [0,%d)", c, v.numComponents)
	}
	pv, err := v.GetPatchView(i)
	if err != nil {
		return view.View{}, err
	}
	return pv.GetSliceOn(componentFacet{}, v.d, []int{c})
}

// componentFacet fixes exactly the trailing (component) axis, letting
// GetComponentView reuse view.View's generic sliceOn machinery instead of
// indexing the buffer by hand.
type componentFacet struct{}

func (componentFacet) FixedAxes(d int) ([]int, []bool) { return []int{d}, []bool{false} }
