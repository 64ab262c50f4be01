package schur

import "github.com/cpmech/thunderegg/view"

// Vector is a (D-1)-dimensional value per cell of each local interface
// (spec.md §4.6's "new Vector<D-1> factory"). Unlike tvector.Vector, whose
// patches all share one Domain-wide ns, each local buffer here may have its
// own shape: a non-cube Domain's interfaces can come from differently
// sized sides (faceShape depends on which axis a Side fixes).
type Vector struct {
	numComponents int
	ns            [][]int
	buf           [][]float64
}

// NewVector allocates one zero-initialized buffer per local interface of
// id, in the same order as id.Interfaces.
func (id *InterfaceDomain) NewVector(numComponents int) *Vector {
	v := &Vector{numComponents: numComponents}
	for _, iface := range id.Interfaces {
		v.ns = append(v.ns, append([]int(nil), iface.NS...))
		size := numComponents
		for _, n := range iface.NS {
			size *= n
		}
		v.buf = append(v.buf, make([]float64, size))
	}
	return v
}

// NumLocalInterfaces returns the number of interfaces this Vector holds
// data for.
func (v *Vector) NumLocalInterfaces() int { return len(v.buf) }

// NumComponents returns the number of data components per cell.
func (v *Vector) NumComponents() int { return v.numComponents }

// Set fills every local interface's every cell with val.
func (v *Vector) Set(val float64) {
	for _, b := range v.buf {
		for i := range b {
			b[i] = val
		}
	}
}

// GetIfaceView returns the (d+1)-axis view over local interface i's buffer,
// spatial axes first then the trailing component axis — the same layout
// tvector.Vector.GetPatchView uses for a full patch, with zero ghost cells
// since an interface has no ghost region of its own.
func (v *Vector) GetIfaceView(i int) view.View {
	ns := v.ns[i]
	d := len(ns)
	strides := make([]int, d+1)
	stride := 1
	for a := 0; a < d; a++ {
		strides[a] = stride
		stride *= ns[a]
	}
	strides[d] = stride

	lengths := make([]int, d+1)
	spatial := make([]bool, d+1)
	for a := 0; a < d; a++ {
		lengths[a] = ns[a]
		spatial[a] = true
	}
	lengths[d] = v.numComponents
	spatial[d] = false

	return view.New(v.buf[i], 0, strides, lengths, spatial, 0)
}
