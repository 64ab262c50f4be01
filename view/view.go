// Package view implements the strided N-D window into a contiguous buffer
// described by spec.md §3/§4.1 (C2): a borrowed, aliasable, non-owning
// tuple of (base, strides, lengths, num_ghost_cells). The view never
// allocates; every slice operation is pointer/stride arithmetic over the
// same underlying array, which is what makes the pointer-equality property
// in spec.md §8 hold by construction.
package view

import "github.com/cpmech/thunderegg/internal/rte"

// Debug gates the bounds checks on View.At/Set, mirroring spec.md §4.1's
// "checks may be compiled out" — set to false in a hot loop if the caller
// has already validated coordinates.
var Debug = true

// View is a K-axis strided window into buf. Axis i is "spatial" (ghosted)
// when Spatial[i] is true; the patch view's trailing component axis is the
// one non-spatial axis (K = D+1 there). Origin is the absolute index into
// buf of the all-zero coordinate.
type View struct {
	buf     []float64
	origin  int
	strides []int
	lengths []int
	spatial []bool
	ghost   int
}

// New builds a view over buf. strides and lengths must have the same
// length K; spatial marks which of the K axes carry ghost padding.
func New(buf []float64, origin int, strides, lengths []int, spatial []bool, numGhostCells int) View {
	return View{buf: buf, origin: origin, strides: append([]int(nil), strides...),
		lengths: append([]int(nil), lengths...), spatial: append([]bool(nil), spatial...), ghost: numGhostCells}
}

// NumAxes returns K, the number of indexed axes.
func (v View) NumAxes() int { return len(v.strides) }

// NumGhostCells returns the ghost-cell depth shared by every spatial axis.
func (v View) NumGhostCells() int { return v.ghost }

// Lengths returns the logical (ghost-exclusive) length of each axis.
func (v View) Lengths() []int { return append([]int(nil), v.lengths...) }

func (v View) offset(coord []int) (int, error) {
	if len(coord) != len(v.strides) {
		return 0, rte.Errorf(rte.Invariant, "view: expected %d coordinates, got %d", len(v.strides), len(coord))
	}
	off := v.origin
	for i, c := range coord {
		if Debug {
			lo, hi := 0, v.lengths[i]
			if v.spatial[i] {
				lo, hi = -v.ghost, v.lengths[i]+v.ghost
			}
			if c < lo || c >= hi {
				return 0, rte.Errorf(rte.Invariant, "view: coordinate %d on axis %d out of range [%d,%d)", c, i, lo, hi)
			}
		}
		off += c * v.strides[i]
	}
	return off, nil
}

// At returns the value at coord (bounds-checked when Debug is true).
func (v View) At(coord ...int) float64 {
	off, err := v.offset(coord)
	if err != nil {
		panic(err)
	}
	return v.buf[off]
}

// Ptr returns a pointer to the element at coord, the same pointer a slice
// derived by GetSliceOn/GetGhostSliceOn will return for its reduced
// coordinate — this is the identity spec.md §8 tests.
func (v View) Ptr(coord ...int) *float64 {
	off, err := v.offset(coord)
	if err != nil {
		panic(err)
	}
	return &v.buf[off]
}

// Set writes val at coord.
func (v View) Set(val float64, coord ...int) {
	off, err := v.offset(coord)
	if err != nil {
		panic(err)
	}
	v.buf[off] = val
}

// Facet is the axis-fixing shape shared by Side/Edge/Corner in the face
// package: FixedAxes returns which axes are held constant and whether the
// slice is taken from the upper end of each. d is the patch dimension
// (Side/Edge ignore it; Corner needs it to know how many axes it fixes).
type Facet interface {
	FixedAxes(d int) ([]int, []bool)
}

// GetSliceOn returns the view's interior slice aligned to a face: the
// result indexes the axes orthogonal to the face, one cell deep into the
// patch interior. offsets selects the ghost-exclusive depth along each
// fixed axis (1 value for a Side, 2 for an Edge, d for a Corner). When the
// face is on the upper end of an axis, that axis is reflected so offset=0
// is always the innermost cell — required for getSliceOn to be an exact
// inverse across opposite faces (spec.md §3).
func (v View) GetSliceOn(f Facet, d int, offsets []int) (View, error) {
	return v.sliceOn(f, d, offsets, false)
}

// GetGhostSliceOn is like GetSliceOn but addresses the ghost region outside
// the face: offset=0 is the first ghost layer, offset=num_ghost_cells-1 is
// the outermost.
func (v View) GetGhostSliceOn(f Facet, d int, offsets []int) (View, error) {
	return v.sliceOn(f, d, offsets, true)
}

func (v View) sliceOn(f Facet, d int, offsets []int, ghostSide bool) (View, error) {
	axes, upper := f.FixedAxes(d)
	if len(axes) != len(offsets) {
		return View{}, rte.Errorf(rte.Invariant, "view: face fixes %d axes, got %d offsets", len(axes), len(offsets))
	}
	fixed := make(map[int]bool, len(axes))
	newOrigin := v.origin
	for i, a := range axes {
		if a < 0 || a >= len(v.strides) {
			return View{}, rte.Errorf(rte.Invariant, "view: axis %d out of range", a)
		}
		fixed[a] = true
		var c int
		if ghostSide {
			if upper[i] {
				c = v.lengths[a] + offsets[i]
			} else {
				c = -1 - offsets[i]
			}
		} else {
			if upper[i] {
				c = v.lengths[a] - 1 - offsets[i]
			} else {
				c = offsets[i]
			}
		}
		newOrigin += c * v.strides[a]
	}
	var strides, lengths []int
	var spatial []bool
	for i := range v.strides {
		if fixed[i] {
			continue
		}
		strides = append(strides, v.strides[i])
		lengths = append(lengths, v.lengths[i])
		spatial = append(spatial, v.spatial[i])
	}
	return View{buf: v.buf, origin: newOrigin, strides: strides, lengths: lengths, spatial: spatial, ghost: v.ghost}, nil
}
