// Package patch implements PatchInfo (spec.md §3/§4.2, C4): the geometry
// and full 2-D/3-D neighbor map of a single patch, modeled directly on
// gofem's per-cell bookkeeping (fem/domain.go's Vid2node/Cid2elem tables)
// but carrying neighbor relations instead of DOF maps.
package patch

import (
	"sort"

	"github.com/cpmech/thunderegg/face"
	"github.com/cpmech/thunderegg/internal/rte"
	"github.com/cpmech/thunderegg/nbrinfo"
)

// PatchInfo is the geometry and neighbor map of one patch, valid for D=2 or D=3.
type PatchInfo struct {
	Dim int

	ID           int64
	LocalIndex   int
	GlobalIndex  int
	Rank         int
	RefineLevel  int
	ParentID     int64
	ParentRank   int
	OrthOnParent face.Orthant
	ChildIDs     []int64
	ChildRanks   []int

	NS            []int
	Starts        []float64
	Spacings      []float64
	NumGhostCells int

	sides   map[int]*nbrinfo.NeighborInfo
	edges   map[int]*nbrinfo.NeighborInfo
	corners map[int]*nbrinfo.NeighborInfo
}

// New returns a PatchInfo with every field at spec.md §3's default sentinel
// values: id=0, rank=-1, refine_level=-1, parent_id=-1, orth_on_parent=null,
// ns=1, starts=0, spacings=1, no neighbors.
func New(d int) *PatchInfo {
	if d != 2 && d != 3 {
		panic(rte.Errorf(rte.Configuration, "patch: unsupported dimension %d", d))
	}
	n := 1 << uint(d)
	ns := make([]int, d)
	starts := make([]float64, d)
	spacings := make([]float64, d)
	childIDs := make([]int64, n)
	childRanks := make([]int, n)
	for i := 0; i < d; i++ {
		ns[i] = 1
		spacings[i] = 1
	}
	for i := 0; i < n; i++ {
		childIDs[i] = -1
		childRanks[i] = -1
	}
	return &PatchInfo{
		Dim: d, Rank: -1, RefineLevel: -1, ParentID: -1, ParentRank: -1,
		OrthOnParent: face.OrthantNull, ChildIDs: childIDs, ChildRanks: childRanks,
		NS: ns, Starts: starts, Spacings: spacings,
		sides: map[int]*nbrinfo.NeighborInfo{}, edges: map[int]*nbrinfo.NeighborInfo{},
		corners: map[int]*nbrinfo.NeighborInfo{},
	}
}

// HasChildren reports whether this patch has been refined into children.
func (p *PatchInfo) HasChildren() bool {
	return p.ChildIDs[0] >= 0 && p.ChildIDs[0] != p.ID
}

// Bounds returns the patch's lower and upper physical corner, derived from
// Starts/Spacings/NS (spec.md §12 "bounding-box convenience").
func (p *PatchInfo) Bounds() (lo, hi []float64) {
	lo = append([]float64(nil), p.Starts...)
	hi = make([]float64, p.Dim)
	for i := 0; i < p.Dim; i++ {
		hi[i] = p.Starts[i] + p.Spacings[i]*float64(p.NS[i])
	}
	return lo, hi
}

// --- neighbor installation -------------------------------------------------

// SetNbrInfo installs (or replaces) the neighbor descriptor on a side.
func (p *PatchInfo) SetNbrInfo(s face.Side, info *nbrinfo.NeighborInfo) {
	p.sides[s.Index()] = info
}

// SetEdgeNbrInfo installs the neighbor descriptor on an edge (3-D only).
func (p *PatchInfo) SetEdgeNbrInfo(e face.Edge, info *nbrinfo.NeighborInfo) error {
	if p.Dim != 3 {
		return rte.Errorf(rte.Configuration, "patch: edge neighbors only exist in 3-D, patch is %d-D", p.Dim)
	}
	p.edges[e.Index()] = info
	return nil
}

// SetCornerNbrInfo installs the neighbor descriptor on a corner.
func (p *PatchInfo) SetCornerNbrInfo(c face.Corner, info *nbrinfo.NeighborInfo) {
	p.corners[c.Index()] = info
}

// --- typed accessors --------------------------------------------------------

// HasNbr reports whether this side has a neighbor; false means the side
// lies on a physical boundary (spec.md §3 invariant).
func (p *PatchInfo) HasNbr(s face.Side) bool { _, ok := p.sides[s.Index()]; return ok }

// HasEdgeNbr reports whether this edge has a neighbor.
func (p *PatchInfo) HasEdgeNbr(e face.Edge) bool { _, ok := p.edges[e.Index()]; return ok }

// HasCornerNbr reports whether this corner has a neighbor.
func (p *PatchInfo) HasCornerNbr(c face.Corner) bool { _, ok := p.corners[c.Index()]; return ok }

// GetNbrType returns the neighbor variant installed on a side; only
// defined when HasNbr(s) is true.
func (p *PatchInfo) GetNbrType(s face.Side) (face.NbrType, error) {
	info, ok := p.sides[s.Index()]
	if !ok {
		return 0, rte.Errorf(rte.Invariant, "patch: side %v has no neighbor", s)
	}
	return info.Type, nil
}

// GetEdgeNbrType returns the neighbor variant installed on an edge.
func (p *PatchInfo) GetEdgeNbrType(e face.Edge) (face.NbrType, error) {
	info, ok := p.edges[e.Index()]
	if !ok {
		return 0, rte.Errorf(rte.Invariant, "patch: edge %v has no neighbor", e)
	}
	return info.Type, nil
}

// GetCornerNbrType returns the neighbor variant installed on a corner.
func (p *PatchInfo) GetCornerNbrType(c face.Corner) (face.NbrType, error) {
	info, ok := p.corners[c.Index()]
	if !ok {
		return 0, rte.Errorf(rte.Invariant, "patch: corner %v has no neighbor", c)
	}
	return info.Type, nil
}

// GetNormalNbrInfo returns the Normal descriptor on side s, erroring if the
// installed descriptor is of a different variant.
func (p *PatchInfo) GetNormalNbrInfo(s face.Side) (*nbrinfo.NormalInfo, error) {
	info, ok := p.sides[s.Index()]
	if !ok || info.Type != face.Normal {
		return nil, rte.Errorf(rte.Invariant, "patch: side %v is not a NORMAL neighbor", s)
	}
	return info.Normal, nil
}

// GetCoarseNbrInfo returns the Coarse descriptor on side s.
func (p *PatchInfo) GetCoarseNbrInfo(s face.Side) (*nbrinfo.CoarseInfo, error) {
	info, ok := p.sides[s.Index()]
	if !ok || info.Type != face.Coarse {
		return nil, rte.Errorf(rte.Invariant, "patch: side %v is not a COARSE neighbor", s)
	}
	return info.CoarseInfo, nil
}

// GetFineNbrInfo returns the Fine descriptor on side s.
func (p *PatchInfo) GetFineNbrInfo(s face.Side) (*nbrinfo.FineInfo, error) {
	info, ok := p.sides[s.Index()]
	if !ok || info.Type != face.Fine {
		return nil, rte.Errorf(rte.Invariant, "patch: side %v is not a FINE neighbor", s)
	}
	return info.Fine, nil
}

// RawNbrInfo returns the raw descriptor installed on a side, or nil.
func (p *PatchInfo) RawNbrInfo(s face.Side) *nbrinfo.NeighborInfo { return p.sides[s.Index()] }

// RawEdgeNbrInfo returns the raw descriptor installed on an edge, or nil.
func (p *PatchInfo) RawEdgeNbrInfo(e face.Edge) *nbrinfo.NeighborInfo { return p.edges[e.Index()] }

// RawCornerNbrInfo returns the raw descriptor installed on a corner, or nil.
func (p *PatchInfo) RawCornerNbrInfo(c face.Corner) *nbrinfo.NeighborInfo { return p.corners[c.Index()] }

// --- flattened neighbor lists ------------------------------------------------

// allNbrInfos returns every installed descriptor, in canonical order: sides
// (Side iteration order), then edges (3-D, Edge iteration order), then
// corners (Corner iteration order) — spec.md §4.2.
func (p *PatchInfo) allNbrInfos() []*nbrinfo.NeighborInfo {
	var out []*nbrinfo.NeighborInfo
	for _, s := range face.SidesD(p.Dim) {
		if info, ok := p.sides[s.Index()]; ok {
			out = append(out, info)
		}
	}
	if p.Dim == 3 {
		for _, e := range face.Edges() {
			if info, ok := p.edges[e.Index()]; ok {
				out = append(out, info)
			}
		}
	}
	for _, c := range face.CornersD(p.Dim) {
		if info, ok := p.corners[c.Index()]; ok {
			out = append(out, info)
		}
	}
	return out
}

// GetNbrIds returns the flat, de-duplication-free list of every neighbor id
// across all faces/edges/corners, in canonical order.
func (p *PatchInfo) GetNbrIds() []int64 {
	var out []int64
	for _, info := range p.allNbrInfos() {
		out = append(out, info.IDs()...)
	}
	return out
}

// GetNbrRanks returns the flat list of every neighbor's owning rank, in the
// same order as GetNbrIds.
func (p *PatchInfo) GetNbrRanks() []int {
	var out []int
	for _, info := range p.allNbrInfos() {
		out = append(out, info.Ranks()...)
	}
	return out
}

// SetNeighborLocalIndexes fills in LocalIndex for every neighbor id present
// in idToLocal; ids absent from the map are left at -1.
func (p *PatchInfo) SetNeighborLocalIndexes(idToLocal map[int64]int) {
	for _, info := range p.allNbrInfos() {
		info.SetLocalIndexes(idToLocal)
	}
}

// SetNeighborGlobalIndexes fills in GlobalIndex for every neighbor id
// present in idToGlobal; ids absent from the map are left at -1.
func (p *PatchInfo) SetNeighborGlobalIndexes(idToGlobal map[int64]int) {
	for _, info := range p.allNbrInfos() {
		info.SetGlobalIndexes(idToGlobal)
	}
}

// SidesWithNbrs returns the sides that currently have a neighbor installed,
// in Side iteration order.
func (p *PatchInfo) SidesWithNbrs() []face.Side {
	var out []face.Side
	for _, s := range face.SidesD(p.Dim) {
		if p.HasNbr(s) {
			out = append(out, s)
		}
	}
	return out
}

// EdgesWithNbrs returns the edges that currently have a neighbor installed.
func (p *PatchInfo) EdgesWithNbrs() []face.Edge {
	if p.Dim != 3 {
		return nil
	}
	var out []face.Edge
	for _, e := range face.Edges() {
		if p.HasEdgeNbr(e) {
			out = append(out, e)
		}
	}
	return out
}

// CornersWithNbrs returns the corners that currently have a neighbor installed.
func (p *PatchInfo) CornersWithNbrs() []face.Corner {
	var out []face.Corner
	for _, c := range face.CornersD(p.Dim) {
		if p.HasCornerNbr(c) {
			out = append(out, c)
		}
	}
	return out
}

// sortedKeys is a small helper kept for deterministic map iteration where
// Go's own map order would otherwise make output nondeterministic.
func sortedKeys(m map[int]*nbrinfo.NeighborInfo) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
