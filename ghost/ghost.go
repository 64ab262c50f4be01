// Package ghost implements the GhostFiller skeleton of spec.md §4.5 (C8):
// a Driver that owns the patch/neighbor/rank bookkeeping of a ghost-cell
// exchange and defers every actual value computation to a caller-supplied
// Filler, the same split MPIGhostFiller<D> makes from its mock subclasses
// in original_source/test/MPIGhostFiller_MOCKS.h (CallMockMPIGhostFiller,
// ExchangeMockMPIGhostFiller) — the Filler there only ever touches
// LocalData slices; every send/recv/tag/rank decision stays in the base
// class, which this Driver plays the role of.
package ghost

import (
	"encoding/binary"
	"math"

	"github.com/cpmech/thunderegg/domain"
	"github.com/cpmech/thunderegg/face"
	"github.com/cpmech/thunderegg/internal/rte"
	"github.com/cpmech/thunderegg/nbrinfo"
	"github.com/cpmech/thunderegg/patch"
	"github.com/cpmech/thunderegg/tvector"
	"github.com/cpmech/thunderegg/view"
)

// FillType selects which facet kinds of a patch participate in a fill:
// Corners implies Edges implies Faces (spec.md §4.5).
type FillType int

const (
	Faces FillType = iota
	Edges
	Corners
)

// Filler supplies the ghost-cell arithmetic a concrete numerical method
// needs. Driver only ever hands it full patch views (mirroring the mock's
// LocalData<D> parameters, not pre-sliced face data) so a real filler can
// address however many ghost layers it needs with view.GetGhostSliceOn.
type Filler interface {
	// FillGhostCellsForLocalPatch is invoked once per local patch,
	// regardless of its neighbors, and may use only pinfo's own view —
	// the mock's no-op local filler in original_source relies on the
	// vector's ghost cells already being zero-initialized for physical
	// boundaries, so an implementation that has nothing local to do may
	// leave this empty.
	FillGhostCellsForLocalPatch(pinfo *patch.PatchInfo, v view.View)

	// FillGhostCellsForNbrPatch is invoked once per neighbor relation
	// (local or remote): localView is pinfo's own full patch view;
	// nbrView is either the real neighbor's full patch view (same rank)
	// or a same-shaped scratch buffer the Driver ships across the wire
	// and accumulates into the real ghost region on arrival. f is the
	// side/edge/corner the relation was installed on, as seen from
	// pinfo; nbrFacet is the same physical facet as seen from nbrView
	// (the geometric opposite), sparing every Filler from recomputing it.
	// orth identifies which sub-region of a Coarse/Fine relation this
	// particular neighbor id occupies (face.OrthantNull for Normal).
	FillGhostCellsForNbrPatch(pinfo *patch.PatchInfo, localView, nbrView view.View, f, nbrFacet view.Facet, nbrType face.NbrType, orth face.Orthant)
}

// baseTag keeps ghost-exchange messages out of the tag range domain.go
// reserves for its own neighbor-resolution handshake (101/102).
const baseTag = 5000

// Driver runs the 5-step exchange of spec.md §4.5 against one Domain.
type Driver struct {
	typ    FillType
	filler Filler
}

// New returns a Driver that fills ghosts up to and including typ.
func New(typ FillType, filler Filler) *Driver {
	return &Driver{typ: typ, filler: filler}
}

// facetRelation is one neighbor relation installed on a patch, flattened to
// the ids/ranks/orthants a Fine relation fans out to (length 1 for Normal
// and Coarse).
type facetRelation struct {
	facet   view.Facet
	kind    int // 0=side, 1=edge, 2=corner; used only to keep message tags apart
	nbrType face.NbrType
	ids     []int64
	ranks   []int
	orths   []face.Orthant
}

func relationsFor(p *patch.PatchInfo, typ FillType) []facetRelation {
	var out []facetRelation
	for _, s := range p.SidesWithNbrs() {
		out = append(out, relationFrom(s, 0, p.RawNbrInfo(s)))
	}
	if typ >= Edges && p.Dim == 3 {
		for _, e := range p.EdgesWithNbrs() {
			out = append(out, relationFrom(e, 1, p.RawEdgeNbrInfo(e)))
		}
	}
	if typ >= Corners {
		for _, c := range p.CornersWithNbrs() {
			out = append(out, relationFrom(c, 2, p.RawCornerNbrInfo(c)))
		}
	}
	return out
}

func relationFrom(f view.Facet, kind int, info *nbrinfo.NeighborInfo) facetRelation {
	r := facetRelation{facet: f, kind: kind, nbrType: info.Type}
	switch info.Type {
	case face.Normal:
		r.ids = []int64{info.Normal.ID}
		r.ranks = []int{info.Normal.Rank}
		r.orths = []face.Orthant{face.OrthantNull}
	case face.Coarse:
		r.ids = []int64{info.CoarseInfo.ID}
		r.ranks = []int{info.CoarseInfo.Rank}
		r.orths = []face.Orthant{info.CoarseInfo.OrthOnCoarse}
	case face.Fine:
		r.ids = append([]int64(nil), info.Fine.IDs...)
		r.ranks = append([]int(nil), info.Fine.Ranks...)
		r.orths = face.OrthantsM(len(info.Fine.IDs))
	}
	return r
}

// FillGhost runs one exchange over every local patch of dom, reading and
// writing v's ghost regions. Two consecutive calls with no intervening
// writes to v's interior are idempotent, since every step is a pure
// function of the current interior plus (for the remote path) values
// already committed to the wire.
func (dr *Driver) FillGhost(dom *domain.Domain, v *tvector.Vector) error {
	rank := dom.Comm.Rank()
	dim := len(dom.NS)
	numComponents := v.NumComponents()

	type pendingRecv struct {
		fromRank int
		tag      int
		pIdx     int
	}
	var recvs []pendingRecv

	// step 0: zero every local patch's ghost region before refilling it, so
	// two consecutive FillGhost calls with no intervening interior writes
	// produce identical results regardless of whether a Filler accumulates
	// (+=) into its target the way ExchangeMockMPIGhostFiller does.
	for i := range dom.Patches {
		full, err := v.GetPatchView(i)
		if err != nil {
			return err
		}
		zeroGhostRegion(full, dim)
	}

	// steps 1-3: walk every local patch once; for each neighbor relation,
	// either fill the real neighbor's ghost directly (local-to-local) or
	// pack a same-shaped scratch buffer and send it (remote).
	for i, p := range dom.Patches {
		local, err := v.GetPatchView(i)
		if err != nil {
			return err
		}
		for _, rel := range relationsFor(p, dr.typ) {
			nbrFacet := oppositeFacet(rel.facet, dim)
			for k, nbrID := range rel.ids {
				nbrRank := rel.ranks[k]
				orth := rel.orths[k]
				if nbrRank == rank {
					nbrLocal, ok := dom.LocalIndexOf(nbrID)
					if !ok {
						return rte.Errorf(rte.Invariant, "ghost: neighbor %d claims local rank %d but is not locally owned", nbrID, nbrRank)
					}
					nbrFull, err := v.GetPatchView(nbrLocal)
					if err != nil {
						return err
					}
					dr.filler.FillGhostCellsForNbrPatch(p, local, nbrFull, rel.facet, nbrFacet, rel.nbrType, orth)
					continue
				}

				buf := make([]float64, patchBufLen(dom.NS, numComponents, dom.NumGhostCells))
				scratch, err := tvector.NewUnmanaged(dim, numComponents, dom.NS, dom.NumGhostCells, [][]float64{buf})
				if err != nil {
					return err
				}
				bufFull, err := scratch.GetPatchView(0)
				if err != nil {
					return err
				}
				dr.filler.FillGhostCellsForNbrPatch(p, local, bufFull, rel.facet, nbrFacet, rel.nbrType, orth)

				tag := baseTag + pairTag(p.ID, nbrID, rel.kind)
				dom.Comm.SendBytes(tag, nbrRank, encodeFloats(buf))
				recvs = append(recvs, pendingRecv{fromRank: nbrRank, tag: tag, pIdx: i})
			}
		}
	}

	// step 4: local/physical-boundary fill, once per local patch.
	for i, p := range dom.Patches {
		full, err := v.GetPatchView(i)
		if err != nil {
			return err
		}
		dr.filler.FillGhostCellsForLocalPatch(p, full)
	}

	// step 5: complete every posted receive, accumulating into the real
	// patch buffer — the sender's scratch buffer is zero everywhere except
	// the ghost region the filler actually wrote, so a full-extent add is
	// exactly the targeted ghost-region accumulate spec.md §4.5 describes.
	for _, r := range recvs {
		incoming := decodeFloats(dom.Comm.RecvBytes(r.tag, r.fromRank))
		full, err := v.GetPatchView(r.pIdx)
		if err != nil {
			return err
		}
		addFullPatchBuffers(full, wrapIncoming(incoming, dom.NS, numComponents, dom.NumGhostCells), dim)
	}

	return nil
}

func wrapIncoming(buf []float64, ns []int, numComponents, numGhostCells int) view.View {
	scratch, err := tvector.NewUnmanaged(len(ns), numComponents, ns, numGhostCells, [][]float64{buf})
	if err != nil {
		panic(err) // buf was sized by patchBufLen with the same parameters; this cannot fail
	}
	v, err := scratch.GetPatchView(0)
	if err != nil {
		panic(err)
	}
	return v
}

// addFullPatchBuffers adds every cell of src (ghost-inclusive on the dim
// spatial axes, full range on the trailing component axis) into dst.
func addFullPatchBuffers(dst, src view.View, dim int) {
	lengths := dst.Lengths()
	ghost := dst.NumGhostCells()
	lo := make([]int, dim+1)
	hi := make([]int, dim+1)
	for axis := 0; axis < dim; axis++ {
		lo[axis] = -ghost
		hi[axis] = lengths[axis] + ghost
	}
	lo[dim], hi[dim] = 0, lengths[dim]

	coord := make([]int, dim+1)
	var walk func(axis int)
	walk = func(axis int) {
		if axis == dim+1 {
			*dst.Ptr(coord...) += src.At(coord...)
			return
		}
		for c := lo[axis]; c < hi[axis]; c++ {
			coord[axis] = c
			walk(axis + 1)
		}
	}
	walk(0)
}

// zeroGhostRegion sets every cell of v outside the strictly-interior range
// on its dim spatial axes to zero, leaving the interior and the full extent
// of the trailing component axis untouched.
func zeroGhostRegion(v view.View, dim int) {
	lengths := v.Lengths()
	ghost := v.NumGhostCells()
	lo := make([]int, dim+1)
	hi := make([]int, dim+1)
	for axis := 0; axis < dim; axis++ {
		lo[axis] = -ghost
		hi[axis] = lengths[axis] + ghost
	}
	lo[dim], hi[dim] = 0, lengths[dim]

	coord := make([]int, dim+1)
	var walk func(axis int)
	walk = func(axis int) {
		if axis == dim+1 {
			for a := 0; a < dim; a++ {
				if coord[a] < 0 || coord[a] >= lengths[a] {
					*v.Ptr(coord...) = 0
					return
				}
			}
			return
		}
		for c := lo[axis]; c < hi[axis]; c++ {
			coord[axis] = c
			walk(axis + 1)
		}
	}
	walk(0)
}

// oppositeFacet returns the same physical facet as seen from the other side
// of a relation: Side/Edge/Corner each already define this geometrically
// (spec.md §8's "f.opposite().opposite() == f" property), so this is just a
// type switch to the concrete method since view.Facet only carries FixedAxes.
func oppositeFacet(f view.Facet, dim int) view.Facet {
	switch t := f.(type) {
	case face.Side:
		return t.Opposite()
	case face.Edge:
		return t.Opposite()
	case face.Corner:
		return t.Opposite(dim)
	default:
		panic("ghost: unknown facet kind")
	}
}

func patchBufLen(ns []int, numComponents, numGhostCells int) int {
	n := numComponents
	for _, ni := range ns {
		n *= ni + 2*numGhostCells
	}
	return n
}

// pairTag derives a tag both ends of a relation compute identically: the
// unordered id pair plus the relation kind (side/edge/corner), which is the
// same on both sides of any shared facet.
func pairTag(a, b int64, kind int) int {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return int(lo)*1000003 + int(hi)*31 + kind
}

func encodeFloats(xs []float64) []byte {
	buf := make([]byte, 8*len(xs))
	for i, x := range xs {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

func decodeFloats(buf []byte) []float64 {
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return out
}
