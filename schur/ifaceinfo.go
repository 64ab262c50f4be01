// Package schur implements Schur::InterfaceDomain (spec.md §4.6, C9): a
// (D-1)-dimensional Domain of interfaces derived from a Domain's patches
// and their installed neighbor relations, plus a PatchSolverWrapper that
// turns a per-patch solver into a Schur-complement operator on interface
// vectors. Grounded on original_source/test/Schur/PatchIfaceInfo_MPI1.cpp
// (the per-patch, per-side interface map) and
// PatchSolverWrapper_MOCKS.h/PatchSolverWrapper_MPI1.cpp (the apply()
// algorithm, reconstructed from test assertions since no header for
// PatchSolverWrapper/PatchSolver/the general GhostFiller ships in
// original_source). PatchSolver itself is a named interface only, never a
// concrete numeric solver (spec.md's Non-goals).
package schur

import (
	"sort"

	"github.com/cpmech/thunderegg/domain"
	"github.com/cpmech/thunderegg/face"
	"github.com/cpmech/thunderegg/internal/rte"
)

// interface-key kinds: a Normal relation's two patches compute the same
// pairKey from their own (unordered) id pair; a Coarse/Fine boundary's
// single coarse-resolution interface is keyed by the coarse patch+side
// alone, while each of its 2^(D-1) fine interfaces is keyed by the
// (coarse id, fine child id) pair — so every participant, querying from
// either side of a relation, derives the identical key independently.
const (
	kindNormal int64 = 0
	kindCoarse int64 = 1
	kindFine   int64 = 2
)

func pairKey(a, b, kind int64) int64 {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo*1000003013 + hi*1000003 + kind
}

func singleKey(id int64, sideIdx int, kind int64) int64 {
	return id*1000003 + int64(sideIdx)*131 + kind*17
}

// Participant is one patch's role in an Interface: which side of the patch
// touches it, and which neighbor-relation variant installed it.
type Participant struct {
	PatchID int64
	Rank    int
	Side    face.Side
	Type    face.NbrType
	Orth    face.Orthant
}

// Interface is one local interface: a (D-1)-dimensional face shared by one
// or more patches, with a globally contiguous index assigned by prefix sum
// over every rank's owned interfaces (spec.md §4.6).
type Interface struct {
	key          int64
	GlobalIndex  int
	NS           []int
	Participants []Participant
}

// PatchIfaceInfo is one patch's per-side interface map, the same role
// nbrinfo.NeighborInfo plays on a plain PatchInfo but pointing at
// Interfaces instead of raw neighbor ids (original_source's
// Schur::PatchIfaceInfo<D>).
type PatchIfaceInfo struct {
	PatchID int64
	bySide  map[int]*Interface
}

// IfaceInfo returns the Interface installed on side s, or nil if that side
// has no neighbor.
func (pii *PatchIfaceInfo) IfaceInfo(s face.Side) *Interface {
	if pii == nil {
		return nil
	}
	return pii.bySide[s.Index()]
}

// InterfaceDomain is the (D-1)-dimensional interface structure derived from
// a Domain (spec.md §4.6).
type InterfaceDomain struct {
	Dom        *domain.Domain
	Interfaces []*Interface

	byKey   map[int64]*Interface
	byPatch map[int64]*PatchIfaceInfo
	index   map[int64]int // iface.key -> position in Interfaces, filled once New's ordering is final
}

// indexOf returns iface's position in Interfaces (and in any Vector built
// from this InterfaceDomain, which allocates buffers in the same order).
func (id *InterfaceDomain) indexOf(iface *Interface) int { return id.index[iface.key] }

func (id *InterfaceDomain) ifaceFor(key int64, ns []int) *Interface {
	if iface, ok := id.byKey[key]; ok {
		return iface
	}
	iface := &Interface{key: key, NS: ns}
	id.byKey[key] = iface
	id.Interfaces = append(id.Interfaces, iface)
	return iface
}

func (id *InterfaceDomain) patchInfoFor(patchID int64) *PatchIfaceInfo {
	pii, ok := id.byPatch[patchID]
	if !ok {
		pii = &PatchIfaceInfo{PatchID: patchID, bySide: map[int]*Interface{}}
		id.byPatch[patchID] = pii
	}
	return pii
}

// PatchIfaceInfo returns patchID's per-side interface map, or nil if
// patchID is not a local patch.
func (id *InterfaceDomain) PatchIfaceInfo(patchID int64) *PatchIfaceInfo {
	return id.byPatch[patchID]
}

// faceShape returns the (D-1)-length shape of side s's face, the ns entries
// of every axis s does not fix.
func faceShape(ns []int, s face.Side) []int {
	dim := len(ns)
	axes, _ := s.FixedAxes(dim)
	fixed := axes[0]
	out := make([]int, 0, dim-1)
	for a := 0; a < dim; a++ {
		if a != fixed {
			out = append(out, ns[a])
		}
	}
	return out
}

// New derives dom's interface structure (spec.md §4.6): every patch side
// shared with a neighbor produces one interface — a Normal/Normal pair
// shares one, a Coarse/Fine boundary produces one coarse interface plus
// 2^(D-1) fine interfaces, the coarse patch participating in both — and
// assigns every local interface a globally contiguous index. Only
// Side-type relations form interfaces; Edge/Corner neighbors never appear
// in original_source's Schur tests and are out of scope here.
func New(dom *domain.Domain) (*InterfaceDomain, error) {
	id := &InterfaceDomain{Dom: dom, byKey: map[int64]*Interface{}, byPatch: map[int64]*PatchIfaceInfo{}}

	for _, p := range dom.Patches {
		pii := id.patchInfoFor(p.ID)
		for _, s := range p.SidesWithNbrs() {
			typ, err := p.GetNbrType(s)
			if err != nil {
				return nil, err
			}
			switch typ {
			case face.Normal:
				info, err := p.GetNormalNbrInfo(s)
				if err != nil {
					return nil, err
				}
				iface := id.ifaceFor(pairKey(p.ID, info.ID, kindNormal), faceShape(dom.NS, s))
				iface.Participants = append(iface.Participants, Participant{
					PatchID: p.ID, Rank: p.Rank, Side: s, Type: face.Normal, Orth: face.OrthantNull,
				})
				pii.bySide[s.Index()] = iface

			case face.Coarse:
				info, err := p.GetCoarseNbrInfo(s)
				if err != nil {
					return nil, err
				}
				iface := id.ifaceFor(pairKey(info.ID, p.ID, kindFine), faceShape(dom.NS, s))
				iface.Participants = append(iface.Participants, Participant{
					PatchID: p.ID, Rank: p.Rank, Side: s, Type: face.Coarse, Orth: info.OrthOnCoarse,
				})
				pii.bySide[s.Index()] = iface

			case face.Fine:
				info, err := p.GetFineNbrInfo(s)
				if err != nil {
					return nil, err
				}
				coarseIface := id.ifaceFor(singleKey(p.ID, s.Index(), kindCoarse), faceShape(dom.NS, s))
				coarseIface.Participants = append(coarseIface.Participants, Participant{
					PatchID: p.ID, Rank: p.Rank, Side: s, Type: face.Fine, Orth: face.OrthantNull,
				})
				pii.bySide[s.Index()] = coarseIface

				orths := face.OrthantsM(len(info.IDs))
				for i, childID := range info.IDs {
					fineIface := id.ifaceFor(pairKey(p.ID, childID, kindFine), faceShape(dom.NS, s))
					fineIface.Participants = append(fineIface.Participants, Participant{
						PatchID: p.ID, Rank: p.Rank, Side: s, Type: face.Fine, Orth: orths[i],
					})
				}
			}
		}
	}

	if err := id.assignGlobalIndexes(); err != nil {
		return nil, err
	}
	sort.Slice(id.Interfaces, func(i, j int) bool { return id.Interfaces[i].key < id.Interfaces[j].key })
	id.index = make(map[int64]int, len(id.Interfaces))
	for i, iface := range id.Interfaces {
		id.index[iface.key] = i
	}
	return id, nil
}

func owningRank(iface *Interface) int {
	r := iface.Participants[0].Rank
	for _, part := range iface.Participants[1:] {
		if part.Rank < r {
			r = part.Rank
		}
	}
	return r
}

// assignGlobalIndexes implements spec.md §4.6's "assigned contiguous global
// indices by rank (prefix-sum of local counts)": each interface is owned by
// the lowest-ranked of its participants, which counts it toward its own
// prefix-sum tally; every other participating rank then resolves the
// assigned index via a query/reply exchange, mirroring domain.Domain's own
// two-phase remote-neighbor resolution.
func (id *InterfaceDomain) assignGlobalIndexes() error {
	rank := id.Dom.Comm.Rank()
	var owned []*Interface
	for _, iface := range id.Interfaces {
		if owningRank(iface) == rank {
			owned = append(owned, iface)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].key < owned[j].key })

	base := id.Dom.Comm.ExclusiveScanInt(len(owned))
	for i, iface := range owned {
		iface.GlobalIndex = base + i
	}
	return id.resolveRemoteGlobalIndexes(rank)
}

// tagIfaceQuery/tagIfaceReply keep this exchange's messages out of the tag
// ranges domain.go (101/102) and ghost.go (5000+) already reserve.
const (
	tagIfaceQuery = 9101
	tagIfaceReply = 9102
)

func (id *InterfaceDomain) resolveRemoteGlobalIndexes(rank int) error {
	comm := id.Dom.Comm
	size := comm.Size()

	wanted := map[int][]int64{}
	for _, iface := range id.Interfaces {
		owner := owningRank(iface)
		if owner != rank {
			wanted[owner] = append(wanted[owner], iface.key)
		}
	}

	for r := 0; r < size; r++ {
		if r != rank {
			comm.Send(tagIfaceQuery, r, wanted[r])
		}
	}
	pending := map[int][]int64{}
	for r := 0; r < size; r++ {
		if r != rank {
			pending[r] = wanted[r]
		}
	}

	for r := 0; r < size; r++ {
		if r == rank {
			continue
		}
		query := comm.Recv(tagIfaceQuery, r)
		reply := make([]int64, len(query))
		for i, k := range query {
			if iface, ok := id.byKey[k]; ok {
				reply[i] = int64(iface.GlobalIndex)
			} else {
				reply[i] = -1
			}
		}
		comm.Send(tagIfaceReply, r, reply)
	}
	for r := 0; r < size; r++ {
		if r == rank {
			continue
		}
		reply := comm.Recv(tagIfaceReply, r)
		keys := pending[r]
		for i, gi := range reply {
			if gi < 0 {
				return rte.Errorf(rte.Configuration, "schur: interface key %d is owned by no rank", keys[i])
			}
			id.byKey[keys[i]].GlobalIndex = int(gi)
		}
	}
	return nil
}
