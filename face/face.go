// Package face implements the compile-time enumerations of the original
// C++ template hierarchy (Side<D>, Corner<D>, Edge, Orthant<D>) as small
// value types with stable integer indices. The source leans on template
// parameterized dimensions; here the three dimensionalities are
// monomorphized into named constructors per spec.md's design note that
// either approach is acceptable since tests are written against values.
package face

import "fmt"

// Axis identifies one of the (up to 3) coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// null is the sentinel index shared by every face kind below.
const null = -1

// Side is a face of dimensionality D-1 (one of the 2*D sides of a D-cube).
// Stable indices (tested, spec.md §8): west=0, east=1, south=2, north=3,
// bottom=4, top=5.
type Side struct{ idx int }

var (
	SideNull   = Side{null}
	SideWest   = Side{0}
	SideEast   = Side{1}
	SideSouth  = Side{2}
	SideNorth  = Side{3}
	SideBottom = Side{4}
	SideTop    = Side{5}
)

var sideNames = []string{"WEST", "EAST", "SOUTH", "NORTH", "BOTTOM", "TOP"}

// IsNull reports whether this is the null sentinel.
func (s Side) IsNull() bool { return s.idx == null }

// Index returns the stable integer index of this side.
func (s Side) Index() int { return s.idx }

// String returns the canonical JSON enumeration name (§6).
func (s Side) String() string {
	if s.IsNull() {
		return "NULL"
	}
	return sideNames[s.idx]
}

// SideFromString parses one of the §6 enumeration names.
func SideFromString(name string) (Side, error) {
	for i, n := range sideNames {
		if n == name {
			return Side{i}, nil
		}
	}
	return SideNull, fmt.Errorf("face: unknown side name %q", name)
}

// Opposite returns the side on the opposite face of the same axis.
func (s Side) Opposite() Side {
	if s.IsNull() {
		return SideNull
	}
	return Side{s.idx ^ 1}
}

// IsLowerOnAxis reports whether this side sits at the lower end of its axis
// (west, south, bottom) as opposed to the upper end.
func (s Side) IsLowerOnAxis() bool {
	return !s.IsNull() && s.idx%2 == 0
}

// AxisIndex returns which coordinate axis this side is orthogonal to.
func (s Side) AxisIndex() Axis {
	return Axis(s.idx / 2)
}

// NumSidesD returns the number of sides of a D-dimensional patch (2*D).
func NumSidesD(d int) int { return 2 * d }

// SidesD iterates over the 2*D sides of a D-dimensional patch in the
// canonical order required by §4.2's getNbrIds flattening.
func SidesD(d int) []Side {
	out := make([]Side, 0, 2*d)
	all := []Side{SideWest, SideEast, SideSouth, SideNorth, SideBottom, SideTop}
	for _, s := range all[:2*d] {
		out = append(out, s)
	}
	return out
}

// FixedAxes returns the single axis this side is orthogonal to, and
// whether the slice should be taken from the upper end of it. Used by the
// view package to compute getSliceOn/getGhostSliceOn for a Side. d is
// accepted (and ignored) so Side, Edge and Corner share one facet shape.
func (s Side) FixedAxes(d int) ([]int, []bool) {
	return []int{int(s.AxisIndex())}, []bool{!s.IsLowerOnAxis()}
}

// Corner is the 0-dimensional feature where D sides meet (a vertex of the
// patch). 2-D has 4 corners, 3-D has 8.
type Corner struct{ idx int }

var CornerNull = Corner{null}

var corner2Names = []string{"SW", "SE", "NW", "NE"}
var corner3Names = []string{"BSW", "BSE", "BNW", "BNE", "TSW", "TSE", "TNW", "TNE"}

// IsNull reports whether this is the null sentinel.
func (c Corner) IsNull() bool { return c.idx == null }

// Index returns the stable integer index, 0..3 (2-D) or 0..7 (3-D).
func (c Corner) Index() int { return c.idx }

// String2 / String3 render the corner using the 2-D or 3-D name table.
func (c Corner) String2() string {
	if c.IsNull() {
		return "NULL"
	}
	return corner2Names[c.idx]
}
func (c Corner) String3() string {
	if c.IsNull() {
		return "NULL"
	}
	return corner3Names[c.idx]
}

// CornersD returns the 2^D corners of a D-dimensional patch in canonical
// (bit-index) order: bit i of the corner index is 1 iff the corner sits on
// the upper end of axis i.
func CornersD(d int) []Corner {
	n := 1 << uint(d)
	out := make([]Corner, n)
	for i := 0; i < n; i++ {
		out[i] = Corner{i}
	}
	return out
}

// GetSides returns the D sides meeting at this corner, in axis order. The
// corner's bit i selects upper (1) or lower (0) on axis i.
func (c Corner) GetSides(d int) []Side {
	out := make([]Side, d)
	for axis := 0; axis < d; axis++ {
		upper := (c.idx>>uint(axis))&1 == 1
		out[axis] = Side{2*axis + boolToInt(upper)}
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// FixedAxes returns the D axes meeting at this corner and, for each, whether
// the slice is taken from the upper end, in axis order.
func (c Corner) FixedAxes(d int) ([]int, []bool) {
	sides := c.GetSides(d)
	axes := make([]int, d)
	upper := make([]bool, d)
	for i, s := range sides {
		axes[i] = int(s.AxisIndex())
		upper[i] = !s.IsLowerOnAxis()
	}
	return axes, upper
}

// Opposite returns the corner diagonally across the patch from c, reached
// by flipping every one of its d axis bits — used by ghost to address a
// neighbor's ghost region from a corner relation seen on this patch.
func (c Corner) Opposite(d int) Corner {
	if c.IsNull() {
		return CornerNull
	}
	mask := (1 << uint(d)) - 1
	return Corner{c.idx ^ mask}
}

// CornerFromString parses a corner name using the name table matching its
// dimensionality (d=2 or d=3).
func CornerFromString(d int, name string) (Corner, error) {
	names := corner2Names
	if d == 3 {
		names = corner3Names
	}
	for i, n := range names {
		if n == name {
			return Corner{i}, nil
		}
	}
	return CornerNull, fmt.Errorf("face: unknown corner name %q for dimension %d", name, d)
}

// Edge is the 1-dimensional feature shared by two patches in 3-D (an edge
// of the cube); not meaningful in 2-D, where "corner" already covers every
// non-side, non-volume feature. Stable order per spec.md §3/§8:
// bs=0,tn=1,bn=2,ts=3,bw=4,te=5,be=6,tw=7,sw=8,ne=9,se=10,nw=11.
type Edge struct{ idx int }

var EdgeNull = Edge{null}

var edgeNames = []string{"BS", "TN", "BN", "TS", "BW", "TE", "BE", "TW", "SW", "NE", "SE", "NW"}

// edgeAxes[i] is the axis the i-th edge runs along (the axis NOT fixed by
// the two sides meeting at it): BS/TN/BN/TS run along X, BW/TE/BE/TW run
// along Y, SW/NE/SE/NW run along Z.
var edgeAxes = []Axis{AxisX, AxisX, AxisX, AxisX, AxisY, AxisY, AxisY, AxisY, AxisZ, AxisZ, AxisZ, AxisZ}

// edgeSides[i] holds the two sides (of the other two axes) meeting at edge i.
var edgeSides = [][2]Side{
	{SideBottom, SideSouth}, // bs
	{SideTop, SideNorth},    // tn
	{SideBottom, SideNorth}, // bn
	{SideTop, SideSouth},    // ts
	{SideBottom, SideWest},  // bw
	{SideTop, SideEast},     // te
	{SideBottom, SideEast},  // be
	{SideTop, SideWest},     // tw
	{SideSouth, SideWest},   // sw
	{SideNorth, SideEast},   // ne
	{SideSouth, SideEast},   // se
	{SideNorth, SideWest},   // nw
}

// edgeOpposite[i] is the index of the edge diagonally opposite edge i.
var edgeOpposite = []int{1, 0, 3, 2, 5, 4, 7, 6, 9, 8, 11, 10}

// IsNull reports whether this is the null sentinel.
func (e Edge) IsNull() bool { return e.idx == null }

// Index returns the stable integer index, 0..11.
func (e Edge) Index() int { return e.idx }

func (e Edge) String() string {
	if e.IsNull() {
		return "NULL"
	}
	return edgeNames[e.idx]
}

// EdgeFromString parses one of the 12 edge names.
func EdgeFromString(name string) (Edge, error) {
	for i, n := range edgeNames {
		if n == name {
			return Edge{i}, nil
		}
	}
	return EdgeNull, fmt.Errorf("face: unknown edge name %q", name)
}

// Edges returns all 12 edges of a 3-D patch, in canonical order.
func Edges() []Edge {
	out := make([]Edge, 12)
	for i := range out {
		out[i] = Edge{i}
	}
	return out
}

// Opposite returns the diagonally-opposite edge (flips both sides meeting
// at it).
func (e Edge) Opposite() Edge {
	if e.IsNull() {
		return EdgeNull
	}
	return Edge{edgeOpposite[e.idx]}
}

// GetSides returns the two sides meeting at this edge.
func (e Edge) GetSides() [2]Side { return edgeSides[e.idx] }

// AxisIndex returns the axis this edge runs along.
func (e Edge) AxisIndex() Axis { return edgeAxes[e.idx] }

// FixedAxes returns the two axes this edge fixes (the axes of the two
// sides meeting at it) and whether each is taken from the upper end. d is
// accepted (and ignored) so Side, Edge and Corner share one facet shape.
func (e Edge) FixedAxes(d int) ([]int, []bool) {
	sides := e.GetSides()
	axes := make([]int, 2)
	upper := make([]bool, 2)
	for i, s := range sides {
		axes[i] = int(s.AxisIndex())
		upper[i] = !s.IsLowerOnAxis()
	}
	return axes, upper
}

// EdgeFromSides returns the edge where sides a and b meet, in either order.
// Used by generator to turn a 2-axis adjacency direction into an Edge value.
func EdgeFromSides(a, b Side) (Edge, error) {
	for i, pair := range edgeSides {
		if (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a) {
			return Edge{i}, nil
		}
	}
	return EdgeNull, fmt.Errorf("face: no edge meets sides %s and %s", a, b)
}

// Orthant indexes one of 2^M equal sub-regions of an M-dimensional
// feature: which sub-quadrant of a coarse face/edge/corner a finer
// neighbor occupies, or which of a patch's 2^D children a child is.
type Orthant struct{ idx int }

var OrthantNull = Orthant{null}

// NewOrthant constructs the orthant with the given canonical index.
func NewOrthant(idx int) Orthant { return Orthant{idx} }

// IsNull reports whether this is the null sentinel.
func (o Orthant) IsNull() bool { return o.idx == null }

// Index returns the 0..2^M-1 index.
func (o Orthant) Index() int { return o.idx }

var orthant1Names = []string{"LOWER", "UPPER"}
var orthant2Names = []string{"SW", "SE", "NW", "NE"}
var orthant3Names = []string{"BSW", "BSE", "BNW", "BNE", "TSW", "TSE", "TNW", "TNE"}

// String renders the orthant using the name table for dimensionality m.
func (o Orthant) String(m int) string {
	if o.IsNull() {
		return "NULL"
	}
	switch m {
	case 1:
		return orthant1Names[o.idx]
	case 2:
		return orthant2Names[o.idx]
	case 3:
		return orthant3Names[o.idx]
	default:
		return fmt.Sprintf("ORTHANT(%d)", o.idx)
	}
}

// OrthantFromString parses an orthant name for the given feature
// dimensionality m (1, 2, or 3).
func OrthantFromString(m int, name string) (Orthant, error) {
	var names []string
	switch m {
	case 1:
		names = orthant1Names
	case 2:
		names = orthant2Names
	case 3:
		names = orthant3Names
	default:
		return OrthantNull, fmt.Errorf("face: unsupported orthant dimension %d", m)
	}
	for i, n := range names {
		if n == name {
			return Orthant{i}, nil
		}
	}
	return OrthantNull, fmt.Errorf("face: unknown orthant name %q", name)
}

// OrthantsM returns all 2^M orthants in canonical order.
func OrthantsM(m int) []Orthant {
	n := 1 << uint(m)
	out := make([]Orthant, n)
	for i := range out {
		out[i] = Orthant{i}
	}
	return out
}

// NbrType discriminates the three NeighborInfo variants (C3).
type NbrType int

const (
	Normal NbrType = iota
	Coarse
	Fine
)

func (t NbrType) String() string {
	switch t {
	case Normal:
		return "NORMAL"
	case Coarse:
		return "COARSE"
	case Fine:
		return "FINE"
	default:
		return "UNKNOWN"
	}
}

// NbrTypeFromString parses one of the §6 NbrInfo "type" values.
func NbrTypeFromString(name string) (NbrType, error) {
	switch name {
	case "NORMAL":
		return Normal, nil
	case "COARSE":
		return Coarse, nil
	case "FINE":
		return Fine, nil
	default:
		return Normal, fmt.Errorf("face: unknown neighbor type %q", name)
	}
}
