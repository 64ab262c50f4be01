// Package generator implements DomainGenerator (spec.md §4.4, C7):
// produces Domains level-by-level, finest to coarsest, from an
// octree.Tree and a block-to-physical mapping function. Grounded on
// _examples/original_source/src/ThunderEgg/P4estDomainGenerator.cpp's
// coarsen/repartition/link-neighbors/propagate-parent-rank structure; the
// real p4est traversal and ghost-exchange machinery is replaced by direct
// reads of a fully-replicated octree.Tree (see octree.Tree's doc comment),
// which is why this package reads only the Communicator's Rank and Size and
// exchanges no messages itself — domain.NewDomain performs the one exchange (remote neighbor
// global-index resolution) that a non-replicated tree would still need.
package generator

import (
	"github.com/cpmech/thunderegg/domain"
	"github.com/cpmech/thunderegg/face"
	"github.com/cpmech/thunderegg/internal/rte"
	"github.com/cpmech/thunderegg/nbrinfo"
	"github.com/cpmech/thunderegg/octree"
	"github.com/cpmech/thunderegg/patch"
)

// BlockMapFunc maps a tree's unit coordinate (each axis in [0,1]) to
// physical space, spec.md §4.4's bmf. treeID names which root tree of a
// forest the coordinate belongs to; this module only ever extracts from a
// single tree, so treeID is always 0, but the signature is kept to match
// the original's per-tree block mapping.
type BlockMapFunc func(treeID int64, unit []float64) (physical []float64)

var sideByAxisBit = []face.Side{face.SideWest, face.SideEast, face.SideSouth, face.SideNorth, face.SideBottom, face.SideTop}

func sideOf(axis int, upper bool) face.Side {
	bit := 0
	if upper {
		bit = 1
	}
	return sideByAxisBit[2*axis+bit]
}

// level holds one extracted level's full (every-rank) patch set, indexed
// by the originating quadrant id — needed so the next extraction can
// retroactively fill in parent_id/orth_on_parent/parent_rank once the
// coarser level's quadrants and ranks are known.
type level struct {
	patches  []*patch.PatchInfo
	byQuadID map[int64]*patch.PatchInfo
}

// DomainGenerator produces Domains from finest to coarsest.
type DomainGenerator struct {
	comm          domain.Communicator
	tree          octree.Tree
	ns            []int
	numGhostCells int
	bmf           BlockMapFunc

	currLevel     int
	extractedOnce bool
	prevLevel     *level

	pending      [][]*patch.PatchInfo // domain_patches deque: push front, pop back
	nextDomainID int
}

// New builds a DomainGenerator over tree, with every produced patch
// sharing cell count ns and ghost depth numGhostCells.
func New(comm domain.Communicator, tree octree.Tree, ns []int, numGhostCells int, bmf BlockMapFunc) *DomainGenerator {
	return &DomainGenerator{comm: comm, tree: tree, ns: append([]int(nil), ns...),
		numGhostCells: numGhostCells, bmf: bmf, currLevel: tree.MaxLevel()}
}

// HasCoarserDomain reports whether a call to GetCoarserDomain would
// produce a new (not-yet-extracted) level.
func (g *DomainGenerator) HasCoarserDomain() bool { return g.currLevel > 0 }

// GetFinestDomain extracts and returns the finest (first) Domain.
func (g *DomainGenerator) GetFinestDomain() (*domain.Domain, error) { return g.nextDomain() }

// GetCoarserDomain extracts and returns the next coarser Domain.
func (g *DomainGenerator) GetCoarserDomain() (*domain.Domain, error) { return g.nextDomain() }

func (g *DomainGenerator) nextDomain() (*domain.Domain, error) {
	if err := g.extractLevel(); err != nil {
		return nil, err
	}
	all := g.pending[len(g.pending)-1]
	g.pending = g.pending[:len(g.pending)-1]

	rank := g.comm.Rank()
	var local []*patch.PatchInfo
	for _, p := range all {
		if p.Rank == rank {
			local = append(local, p)
		}
	}
	id := g.nextDomainID
	g.nextDomainID++
	return domain.NewDomain(g.comm, id, g.ns, domain.Options{NumGhostCells: g.numGhostCells}, local)
}

// extractLevel implements spec.md §4.4's extractLevel(): coarsen (after
// the first extraction), repartition, stamp ranks, build this level's
// patches, link their neighbors, and retroactively complete the previous
// level's parent bookkeeping.
func (g *DomainGenerator) extractLevel() error {
	if g.extractedOnce {
		g.tree.Coarsen()
	}
	g.tree.Repartition(g.comm.Size())

	leaves := g.tree.Leaves()
	leafByID := make(map[int64]octree.Quadrant, len(leaves))
	for _, q := range leaves {
		leafByID[q.ID] = q
	}
	quadByID := make(map[int64]octree.Quadrant)
	for _, q := range g.tree.Quadrants() {
		quadByID[q.ID] = q
	}

	if g.extractedOnce {
		if err := g.propagateParentInfo(leafByID, quadByID); err != nil {
			return err
		}
	}

	lvl, err := g.buildPatches(leaves)
	if err != nil {
		return err
	}
	if err := g.linkNeighbors(leaves, leafByID, lvl.byQuadID); err != nil {
		return err
	}

	g.pending = append([][]*patch.PatchInfo{lvl.patches}, g.pending...)
	g.prevLevel = lvl
	g.extractedOnce = true
	g.currLevel--
	return nil
}

// propagateParentInfo fills parent_id/orth_on_parent/parent_rank on the
// previous (finer) level's already-built patches, now that this round's
// coarsening and repartitioning have decided each quadrant's parent (or,
// for a leaf whose family didn't merge this round, itself) and rank.
func (g *DomainGenerator) propagateParentInfo(leafByID, quadByID map[int64]octree.Quadrant) error {
	for quadID, p := range g.prevLevel.byQuadID {
		if leaf, stillActive := leafByID[quadID]; stillActive {
			p.ParentID = p.ID
			p.OrthOnParent = face.OrthantNull
			p.ParentRank = leaf.Rank
			continue
		}
		quad, ok := quadByID[quadID]
		if !ok {
			return rte.Errorf(rte.Invariant, "generator: quadrant %d vanished from the tree", quadID)
		}
		parentQuad, ok := leafByID[quad.ParentID]
		if !ok {
			return rte.Errorf(rte.Invariant, "generator: quadrant %d's parent %d is not an active leaf after coarsening", quadID, quad.ParentID)
		}
		bswChildID := parentQuad.ChildIDs[0]
		bswPatch, ok := g.prevLevel.byQuadID[bswChildID]
		if !ok {
			return rte.Errorf(rte.Invariant, "generator: bsw child %d of merged parent %d has no previous-level patch", bswChildID, quad.ParentID)
		}
		p.ParentID = bswPatch.ID
		p.OrthOnParent = face.NewOrthant(childIndexWithinFamily(quad.Coord))
		p.ParentRank = parentQuad.Rank
	}
	return nil
}

// childIndexWithinFamily returns the canonical 0..2^d-1 child orthant
// index of a quadrant among its siblings, from the parity of its own
// grid coordinate (bit a = 1 iff coord[a] is odd).
func childIndexWithinFamily(coord []int) int {
	idx := 0
	for a, c := range coord {
		if c%2 == 1 {
			idx |= 1 << uint(a)
		}
	}
	return idx
}

// buildPatches allocates and fills the PatchInfo for every current leaf,
// per spec.md §4.4's per-leaf fill list (excluding neighbor links and
// parent info, both filled separately).
func (g *DomainGenerator) buildPatches(leaves []octree.Quadrant) (*level, error) {
	d := g.tree.Dim()
	lvl := &level{byQuadID: make(map[int64]*patch.PatchInfo, len(leaves))}
	n := 1 << uint(d)
	for _, q := range leaves {
		p := patch.New(d)
		p.Rank = q.Rank
		p.RefineLevel = q.Level
		p.NS = append([]int(nil), g.ns...)
		p.NumGhostCells = g.numGhostCells

		if prevPatch, kept := safeLookup(g.prevLevel, q.ID); kept {
			p.ID = prevPatch.ID
			// mirrors the original coarsen callback's child_ids[0] =
			// data->id self-assignment on a kept leaf (spec.md §12); a
			// no-op since HasChildren treats ChildIDs[0]==ID as "no children".
			p.ChildIDs[0] = p.ID
		} else if g.prevLevel == nil {
			p.ID = q.ID
		} else {
			bswChildID := q.ChildIDs[0]
			bswPatch, ok := g.prevLevel.byQuadID[bswChildID]
			if !ok {
				return nil, rte.Errorf(rte.Invariant, "generator: merged parent %d has no bsw child patch", q.ID)
			}
			p.ID = bswPatch.ID
			for i := 0; i < n; i++ {
				childPatch, ok := g.prevLevel.byQuadID[q.ChildIDs[i]]
				if !ok {
					return nil, rte.Errorf(rte.Invariant, "generator: merged parent %d missing child %d", q.ID, i)
				}
				p.ChildIDs[i] = childPatch.ID
				p.ChildRanks[i] = childPatch.Rank
			}
		}

		lower := make([]float64, d)
		upper := make([]float64, d)
		scale := float64(uint(1) << uint(q.Level))
		for a := 0; a < d; a++ {
			lower[a] = float64(q.Coord[a]) / scale
			upper[a] = float64(q.Coord[a]+1) / scale
		}
		loPhys := g.bmf(0, lower)
		hiPhys := g.bmf(0, upper)
		for a := 0; a < d; a++ {
			p.Starts[a] = loPhys[a]
			p.Spacings[a] = (hiPhys[a] - loPhys[a]) / float64(p.NS[a])
		}

		lvl.patches = append(lvl.patches, p)
		lvl.byQuadID[q.ID] = p
	}
	return lvl, nil
}

func safeLookup(lvl *level, quadID int64) (*patch.PatchInfo, bool) {
	if lvl == nil {
		return nil, false
	}
	p, ok := lvl.byQuadID[quadID]
	return p, ok
}

// direction is a per-axis step in {-1,0,1}; popcount(direction) determines
// which facet kind it names: 1 -> Side, len(axes) (d) -> Corner, 2 (3-D
// only) -> Edge.
func directions(d int) [][]int {
	var out [][]int
	var walk func(dir []int, axis int)
	walk = func(dir []int, axis int) {
		if axis == d {
			cp := append([]int(nil), dir...)
			nz := 0
			for _, v := range cp {
				if v != 0 {
					nz++
				}
			}
			if nz == 1 || nz == d || (d == 3 && nz == 2) {
				out = append(out, cp)
			}
			return
		}
		for _, v := range []int{-1, 0, 1} {
			dir[axis] = v
			walk(dir, axis+1)
		}
	}
	walk(make([]int, d), 0)
	return out
}

func freeAxes(dir []int) []int {
	var out []int
	for a, v := range dir {
		if v == 0 {
			out = append(out, a)
		}
	}
	return out
}

// facetOf converts a direction vector into the Side/Edge/Corner it names.
func facetOf(d int, dir []int) (side face.Side, edge face.Edge, corner face.Corner, kind int, err error) {
	var axes []int
	for a, v := range dir {
		if v != 0 {
			axes = append(axes, a)
		}
	}
	switch {
	case len(axes) == 1:
		return sideOf(axes[0], dir[axes[0]] > 0), face.EdgeNull, face.CornerNull, 1, nil
	case d == 3 && len(axes) == 2:
		s0 := sideOf(axes[0], dir[axes[0]] > 0)
		s1 := sideOf(axes[1], dir[axes[1]] > 0)
		e, err := face.EdgeFromSides(s0, s1)
		return face.SideNull, e, face.CornerNull, 2, err
	case len(axes) == d:
		idx := 0
		for _, a := range axes {
			if dir[a] > 0 {
				idx |= 1 << uint(a)
			}
		}
		return face.SideNull, face.EdgeNull, face.CornersD(d)[idx], 3, nil
	default:
		return face.SideNull, face.EdgeNull, face.CornerNull, 0, rte.Errorf(rte.Invariant, "generator: unsupported direction arity %d", len(axes))
	}
}

// linkNeighbors implements spec.md §4.4's neighbor linking: for every leaf
// and every valid adjacency direction, install Normal/Coarse/Fine
// descriptors by reading the tree directly (see package doc comment).
func (g *DomainGenerator) linkNeighbors(leaves []octree.Quadrant, leafByID map[int64]octree.Quadrant, byQuadID map[int64]*patch.PatchInfo) error {
	d := g.tree.Dim()
	dirs := directions(d)
	for _, q := range leaves {
		p := byQuadID[q.ID]
		n := 1 << uint(q.Level)
		for _, dir := range dirs {
			sameCoord := make([]int, d)
			inRange := true
			for a := 0; a < d; a++ {
				sameCoord[a] = q.Coord[a] + dir[a]
				if sameCoord[a] < 0 || sameCoord[a] >= n {
					inRange = false
				}
			}
			if !inRange {
				continue // physical boundary
			}
			if sameQ, ok := g.tree.Lookup(q.Level, sameCoord); ok {
				if nb, active := leafByID[sameQ.ID]; active {
					if err := g.installNormal(p, d, dir, byQuadID[nb.ID]); err != nil {
						return err
					}
					continue
				}
				if !sameQ.IsLeaf() {
					if err := g.installFine(p, d, dir, sameQ, leafByID, byQuadID); err != nil {
						return err
					}
				}
				continue
			}
			if q.Level == 0 {
				continue // no coarser level exists
			}
			parentCoord := make([]int, d)
			coarseCoord := make([]int, d)
			for a := 0; a < d; a++ {
				parentCoord[a] = q.Coord[a] / 2
				coarseCoord[a] = parentCoord[a] + dir[a]
			}
			coarseQ, ok := g.tree.Lookup(q.Level-1, coarseCoord)
			if !ok {
				continue
			}
			if _, active := leafByID[coarseQ.ID]; !active {
				continue
			}
			coarsePatch, ok := byQuadID[coarseQ.ID]
			if !ok {
				continue
			}
			if err := g.installCoarse(p, d, dir, q.Coord, coarsePatch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *DomainGenerator) installNormal(p *patch.PatchInfo, d int, dir []int, nbr *patch.PatchInfo) error {
	side, edge, corner, kind, err := facetOf(d, dir)
	if err != nil {
		return err
	}
	info := nbrinfo.NewNormal(nbr.ID)
	info.Normal.Rank = nbr.Rank
	switch kind {
	case 1:
		p.SetNbrInfo(side, info)
	case 2:
		return p.SetEdgeNbrInfo(edge, info)
	default:
		p.SetCornerNbrInfo(corner, info)
	}
	return nil
}

func (g *DomainGenerator) installCoarse(p *patch.PatchInfo, d int, dir []int, qCoord []int, coarse *patch.PatchInfo) error {
	free := freeAxes(dir)
	orth := 0
	for i, a := range free {
		if qCoord[a]%2 == 1 {
			orth |= 1 << uint(i)
		}
	}
	side, edge, corner, kind, err := facetOf(d, dir)
	if err != nil {
		return err
	}
	info := nbrinfo.NewCoarse(coarse.ID, face.NewOrthant(orth))
	info.CoarseInfo.Rank = coarse.Rank
	switch kind {
	case 1:
		p.SetNbrInfo(side, info)
	case 2:
		return p.SetEdgeNbrInfo(edge, info)
	default:
		p.SetCornerNbrInfo(corner, info)
	}
	return nil
}

func (g *DomainGenerator) installFine(p *patch.PatchInfo, d int, dir []int, sameQ octree.Quadrant, leafByID map[int64]octree.Quadrant, byQuadID map[int64]*patch.PatchInfo) error {
	free := freeAxes(dir)
	k := len(free)
	ids := make([]int64, 1<<uint(k))
	ranks := make([]int, 1<<uint(k))
	for fb := 0; fb < 1<<uint(k); fb++ {
		childIdx := 0
		for a, v := range dir {
			if v < 0 {
				childIdx |= 1 << uint(a)
			}
		}
		for i, a := range free {
			if (fb>>uint(i))&1 == 1 {
				childIdx |= 1 << uint(a)
			}
		}
		childQuadID := sameQ.ChildIDs[childIdx]
		if childQuadID < 0 {
			return rte.Errorf(rte.Invariant, "generator: refined quadrant %d missing child %d", sameQ.ID, childIdx)
		}
		childLeaf, active := leafByID[childQuadID]
		if !active {
			return rte.Errorf(rte.Invariant, "generator: refined quadrant %d's child %d is not an active leaf", sameQ.ID, childQuadID)
		}
		childPatch, ok := byQuadID[childLeaf.ID]
		if !ok {
			return rte.Errorf(rte.Invariant, "generator: fine child %d has no patch this level", childLeaf.ID)
		}
		ids[fb] = childPatch.ID
		ranks[fb] = childPatch.Rank

		childOrth := face.NewOrthant(fb)
		childInfo := nbrinfo.NewCoarse(p.ID, childOrth)
		childInfo.CoarseInfo.Rank = p.Rank
		side, edge, corner, kind, err := facetOf(d, negate(dir))
		if err != nil {
			return err
		}
		switch kind {
		case 1:
			childPatch.SetNbrInfo(side, childInfo)
		case 2:
			if err := childPatch.SetEdgeNbrInfo(edge, childInfo); err != nil {
				return err
			}
		default:
			childPatch.SetCornerNbrInfo(corner, childInfo)
		}
	}

	side, edge, corner, kind, err := facetOf(d, dir)
	if err != nil {
		return err
	}
	info := nbrinfo.NewFine(ids)
	copy(info.Fine.Ranks, ranks)
	switch kind {
	case 1:
		p.SetNbrInfo(side, info)
	case 2:
		return p.SetEdgeNbrInfo(edge, info)
	default:
		p.SetCornerNbrInfo(corner, info)
	}
	return nil
}

func negate(dir []int) []int {
	out := make([]int, len(dir))
	for i, v := range dir {
		out[i] = -v
	}
	return out
}
