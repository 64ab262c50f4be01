package patch

import (
	"bytes"
	"encoding/gob"

	"github.com/cpmech/thunderegg/face"
	"github.com/cpmech/thunderegg/nbrinfo"
)

// wireNbr is the gob-friendly flattening of nbrinfo.NeighborInfo used by
// Serialize/Deserialize — binary serialization is opaque and only required
// to round-trip (spec.md §6), so the wire shape need not match the JSON one.
type wireNbr struct {
	Type          face.NbrType
	IDs           []int64
	Ranks         []int
	LocalIndexes  []int
	GlobalIndexes []int
	OrthOnCoarse  int // face.Orthant index; gob cannot encode its unexported field
}

func toWire(n *nbrinfo.NeighborInfo) wireNbr {
	switch n.Type {
	case face.Normal:
		return wireNbr{Type: face.Normal, IDs: []int64{n.Normal.ID}, Ranks: []int{n.Normal.Rank},
			LocalIndexes: []int{n.Normal.LocalIndex}, GlobalIndexes: []int{n.Normal.GlobalIndex}}
	case face.Coarse:
		return wireNbr{Type: face.Coarse, IDs: []int64{n.CoarseInfo.ID}, Ranks: []int{n.CoarseInfo.Rank},
			LocalIndexes: []int{n.CoarseInfo.LocalIndex}, GlobalIndexes: []int{n.CoarseInfo.GlobalIndex},
			OrthOnCoarse: n.CoarseInfo.OrthOnCoarse.Index()}
	default: // face.Fine
		return wireNbr{Type: face.Fine, IDs: n.Fine.IDs, Ranks: n.Fine.Ranks,
			LocalIndexes: n.Fine.LocalIndexes, GlobalIndexes: n.Fine.GlobalIndexes}
	}
}

func fromWire(w wireNbr) *nbrinfo.NeighborInfo {
	switch w.Type {
	case face.Normal:
		return &nbrinfo.NeighborInfo{Type: face.Normal, Normal: &nbrinfo.NormalInfo{
			ID: w.IDs[0], Rank: w.Ranks[0], LocalIndex: w.LocalIndexes[0], GlobalIndex: w.GlobalIndexes[0]}}
	case face.Coarse:
		return &nbrinfo.NeighborInfo{Type: face.Coarse, CoarseInfo: &nbrinfo.CoarseInfo{
			ID: w.IDs[0], Rank: w.Ranks[0], LocalIndex: w.LocalIndexes[0], GlobalIndex: w.GlobalIndexes[0],
			OrthOnCoarse: face.NewOrthant(w.OrthOnCoarse)}}
	default:
		return &nbrinfo.NeighborInfo{Type: face.Fine, Fine: &nbrinfo.FineInfo{
			IDs: w.IDs, Ranks: w.Ranks, LocalIndexes: w.LocalIndexes, GlobalIndexes: w.GlobalIndexes}}
	}
}

// wirePatchInfo is the gob shape of PatchInfo's unexported neighbor maps.
type wirePatchInfo struct {
	Dim                            int
	ID                             int64
	LocalIndex, GlobalIndex        int
	Rank, RefineLevel              int
	ParentID                       int64
	ParentRank                     int
	OrthOnParent                   int // face.Orthant index
	ChildIDs                       []int64
	ChildRanks                     []int
	NS                             []int
	Starts, Spacings               []float64
	NumGhostCells                  int
	Sides, Edges, Corners          map[int]wireNbr
}

func (p *PatchInfo) toWireStruct() wirePatchInfo {
	w := wirePatchInfo{
		Dim: p.Dim, ID: p.ID, LocalIndex: p.LocalIndex, GlobalIndex: p.GlobalIndex,
		Rank: p.Rank, RefineLevel: p.RefineLevel, ParentID: p.ParentID, ParentRank: p.ParentRank,
		OrthOnParent: p.OrthOnParent.Index(), ChildIDs: p.ChildIDs, ChildRanks: p.ChildRanks,
		NS: p.NS, Starts: p.Starts, Spacings: p.Spacings, NumGhostCells: p.NumGhostCells,
		Sides: map[int]wireNbr{}, Edges: map[int]wireNbr{}, Corners: map[int]wireNbr{},
	}
	for k, v := range p.sides {
		w.Sides[k] = toWire(v)
	}
	for k, v := range p.edges {
		w.Edges[k] = toWire(v)
	}
	for k, v := range p.corners {
		w.Corners[k] = toWire(v)
	}
	return w
}

func fromWireStruct(w wirePatchInfo) *PatchInfo {
	p := New(w.Dim)
	p.ID, p.LocalIndex, p.GlobalIndex = w.ID, w.LocalIndex, w.GlobalIndex
	p.Rank, p.RefineLevel = w.Rank, w.RefineLevel
	p.ParentID, p.ParentRank, p.OrthOnParent = w.ParentID, w.ParentRank, face.NewOrthant(w.OrthOnParent)
	p.ChildIDs, p.ChildRanks = w.ChildIDs, w.ChildRanks
	p.NS, p.Starts, p.Spacings, p.NumGhostCells = w.NS, w.Starts, w.Spacings, w.NumGhostCells
	for k, v := range w.Sides {
		p.sides[k] = fromWire(v)
	}
	for k, v := range w.Edges {
		p.edges[k] = fromWire(v)
	}
	for k, v := range w.Corners {
		p.corners[k] = fromWire(v)
	}
	return p
}

// Serialize returns the opaque binary encoding of p (spec.md §6): only
// round-trip correctness is required, not a stable byte pattern.
func (p *PatchInfo) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p.toWireStruct()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize decodes data produced by Serialize back into a PatchInfo.
func Deserialize(data []byte) (*PatchInfo, error) {
	var w wirePatchInfo
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return nil, err
	}
	return fromWireStruct(w), nil
}
