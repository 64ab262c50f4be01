package patch

import (
	"encoding/json"

	"github.com/cpmech/thunderegg/face"
	"github.com/cpmech/thunderegg/internal/rte"
	"github.com/cpmech/thunderegg/nbrinfo"
)

// jsonNbrInfo mirrors the §6 NbrInfo schema: one object carrying "type"
// plus whichever of ids/ranks/orth_on_coarse apply to that type, plus a
// side/edge/corner discriminator key chosen by the caller.
type jsonNbrInfo struct {
	Type         string  `json:"type"`
	IDs          []int64 `json:"ids"`
	Ranks        []int   `json:"ranks"`
	OrthOnCoarse string  `json:"orth_on_coarse,omitempty"`
	Side         string  `json:"side,omitempty"`
	Edge         string  `json:"edge,omitempty"`
	Corner       string  `json:"corner,omitempty"`
}

func nbrToJSON(n *nbrinfo.NeighborInfo, m int) jsonNbrInfo {
	out := jsonNbrInfo{Type: n.Type.String(), IDs: n.IDs(), Ranks: n.Ranks()}
	if n.Type == face.Coarse {
		out.OrthOnCoarse = n.CoarseInfo.OrthOnCoarse.String(m)
	}
	return out
}

func nbrFromJSON(j jsonNbrInfo, m int) (*nbrinfo.NeighborInfo, error) {
	ty, err := face.NbrTypeFromString(j.Type)
	if err != nil {
		return nil, err
	}
	switch ty {
	case face.Normal:
		if len(j.IDs) != 1 {
			return nil, rte.Errorf(rte.Invariant, "patch: NORMAL neighbor needs exactly 1 id, got %d", len(j.IDs))
		}
		info := nbrinfo.NewNormal(j.IDs[0])
		info.Normal.Rank = j.Ranks[0]
		return info, nil
	case face.Coarse:
		if len(j.IDs) != 1 {
			return nil, rte.Errorf(rte.Invariant, "patch: COARSE neighbor needs exactly 1 id, got %d", len(j.IDs))
		}
		orth, err := face.OrthantFromString(m, j.OrthOnCoarse)
		if err != nil {
			return nil, err
		}
		info := nbrinfo.NewCoarse(j.IDs[0], orth)
		info.CoarseInfo.Rank = j.Ranks[0]
		return info, nil
	case face.Fine:
		want := 1 << uint(m)
		if len(j.IDs) != want {
			return nil, rte.Errorf(rte.Invariant, "patch: FINE neighbor needs %d ids, got %d", want, len(j.IDs))
		}
		info := nbrinfo.NewFine(j.IDs)
		copy(info.Fine.Ranks, j.Ranks)
		return info, nil
	}
	return nil, rte.Errorf(rte.Invariant, "patch: unknown neighbor type")
}

// jsonPatchInfo mirrors spec.md §6's PatchInfo schema exactly.
type jsonPatchInfo struct {
	ID           int64         `json:"id"`
	Rank         int           `json:"rank"`
	RefineLevel  int           `json:"refine_level"`
	ParentID     int64         `json:"parent_id"`
	ParentRank   int           `json:"parent_rank"`
	OrthOnParent *string       `json:"orth_on_parent"`
	Starts       []float64     `json:"starts"`
	Lengths      []float64     `json:"lengths"`
	ChildIDs     []int64       `json:"child_ids"`
	ChildRanks   []int         `json:"child_ranks"`
	Nbrs         []jsonNbrInfo `json:"nbrs"`
	EdgeNbrs     []jsonNbrInfo `json:"edge_nbrs,omitempty"`
	CornerNbrs   []jsonNbrInfo `json:"corner_nbrs"`
}

// MarshalJSON encodes p using the exact schema of spec.md §6.
func (p *PatchInfo) MarshalJSON() ([]byte, error) {
	j := jsonPatchInfo{
		ID: p.ID, Rank: p.Rank, RefineLevel: p.RefineLevel,
		ParentID: p.ParentID, ParentRank: p.ParentRank,
		Starts: p.Starts, Lengths: make([]float64, p.Dim),
		ChildIDs: p.ChildIDs, ChildRanks: p.ChildRanks,
	}
	for i := 0; i < p.Dim; i++ {
		j.Lengths[i] = p.Spacings[i] * float64(p.NS[i])
	}
	if !p.OrthOnParent.IsNull() {
		s := p.OrthOnParent.String(p.Dim)
		j.OrthOnParent = &s
	}
	if p.ChildIDs[0] < 0 {
		j.ChildIDs, j.ChildRanks = nil, nil
	}
	for _, s := range face.SidesD(p.Dim) {
		if info, ok := p.sides[s.Index()]; ok {
			nj := nbrToJSON(info, p.Dim-1)
			nj.Side = s.String()
			j.Nbrs = append(j.Nbrs, nj)
		}
	}
	if p.Dim == 3 {
		for _, e := range face.Edges() {
			if info, ok := p.edges[e.Index()]; ok {
				nj := nbrToJSON(info, 1)
				nj.Edge = e.String()
				j.EdgeNbrs = append(j.EdgeNbrs, nj)
			}
		}
	}
	for _, c := range face.CornersD(p.Dim) {
		if info, ok := p.corners[c.Index()]; ok {
			nj := nbrToJSON(info, 0)
			if p.Dim == 2 {
				nj.Corner = c.String2()
			} else {
				nj.Corner = c.String3()
			}
			j.CornerNbrs = append(j.CornerNbrs, nj)
		}
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes p using the exact schema of spec.md §6. The
// dimensionality is inferred from len(starts); callers that need a
// specific D should validate p.Dim after the call.
func (p *PatchInfo) UnmarshalJSON(data []byte) error {
	var j jsonPatchInfo
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	d := len(j.Starts)
	*p = *New(d)
	p.ID, p.Rank, p.RefineLevel = j.ID, j.Rank, j.RefineLevel
	p.ParentID, p.ParentRank = j.ParentID, j.ParentRank
	p.Starts = j.Starts
	for i := 0; i < d; i++ {
		p.Spacings[i] = j.Lengths[i]
		p.NS[i] = 1
	}
	if j.OrthOnParent != nil {
		orth, err := face.OrthantFromString(d, *j.OrthOnParent)
		if err != nil {
			return err
		}
		p.OrthOnParent = orth
	}
	if j.ChildIDs != nil {
		p.ChildIDs = j.ChildIDs
		p.ChildRanks = j.ChildRanks
	}
	for _, nj := range j.Nbrs {
		s, err := face.SideFromString(nj.Side)
		if err != nil {
			return err
		}
		info, err := nbrFromJSON(nj, d-1)
		if err != nil {
			return err
		}
		p.SetNbrInfo(s, info)
	}
	for _, nj := range j.EdgeNbrs {
		e, err := face.EdgeFromString(nj.Edge)
		if err != nil {
			return err
		}
		info, err := nbrFromJSON(nj, 1)
		if err != nil {
			return err
		}
		if err := p.SetEdgeNbrInfo(e, info); err != nil {
			return err
		}
	}
	for _, nj := range j.CornerNbrs {
		c, err := face.CornerFromString(d, nj.Corner)
		if err != nil {
			return err
		}
		info, err := nbrFromJSON(nj, 0)
		if err != nil {
			return err
		}
		p.SetCornerNbrInfo(c, info)
	}
	return nil
}
