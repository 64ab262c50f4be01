package patch

import "github.com/cpmech/thunderegg/face"

// Equal reports whether p and other are field-for-field identical,
// including every installed neighbor variant and slot — the relation
// exercised by spec.md §8's serialize/deserialize round-trip property.
func (p *PatchInfo) Equal(other *PatchInfo) bool {
	if p.Dim != other.Dim || p.ID != other.ID || p.LocalIndex != other.LocalIndex ||
		p.GlobalIndex != other.GlobalIndex || p.Rank != other.Rank || p.RefineLevel != other.RefineLevel ||
		p.ParentID != other.ParentID || p.ParentRank != other.ParentRank ||
		p.OrthOnParent != other.OrthOnParent || p.NumGhostCells != other.NumGhostCells {
		return false
	}
	if !int64SliceEqual(p.ChildIDs, other.ChildIDs) || !intSliceEqual(p.ChildRanks, other.ChildRanks) {
		return false
	}
	if !intSliceEqual(p.NS, other.NS) || !float64SliceEqual(p.Starts, other.Starts) || !float64SliceEqual(p.Spacings, other.Spacings) {
		return false
	}
	for _, s := range face.SidesD(p.Dim) {
		if !p.sides[s.Index()].Equal(other.sides[s.Index()]) {
			return false
		}
	}
	if p.Dim == 3 {
		for _, e := range face.Edges() {
			if !p.edges[e.Index()].Equal(other.edges[e.Index()]) {
				return false
			}
		}
	}
	for _, c := range face.CornersD(p.Dim) {
		if !p.corners[c.Index()].Equal(other.corners[c.Index()]) {
			return false
		}
	}
	return true
}

func int64SliceEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func float64SliceEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
