// Package faketree is an in-memory octree.Tree for tests and for the
// demo driver: no p4est/libsc binding exists in this module (spec.md's
// Non-goals exclude octree internals), so tests build a Tree directly
// from a list of active leaf cells instead of refining a real forest.
package faketree

import (
	"fmt"
	"sort"

	"github.com/cpmech/thunderegg/octree"
)

// Cell names one initially-active leaf by level and integer grid
// coordinate (each axis in [0, 2^Level)).
type Cell struct {
	Level int
	Coord []int
}

// Tree is a full in-memory quadtree/octree: every ancestor of every
// requested leaf is materialized so Coarsen can walk parent/child links
// without recomputation.
type Tree struct {
	dim      int
	maxLevel int
	byID     map[int64]*octree.Quadrant
	byKey    map[string]int64 // "level:c0,c1,..." -> id
	active   map[int64]bool
	nextID   int64
}

func key(level int, coord []int) string {
	return fmt.Sprintf("%d:%v", level, coord)
}

// New builds a tree whose active leaves are exactly cells, materializing
// every ancestor quadrant up to the root.
func New(dim int, cells []Cell) *Tree {
	t := &Tree{dim: dim, byID: map[int64]*octree.Quadrant{}, byKey: map[string]int64{}, active: map[int64]bool{}}
	for _, c := range cells {
		id := t.ensure(c.Level, c.Coord)
		t.active[id] = true
		if c.Level > t.maxLevel {
			t.maxLevel = c.Level
		}
	}
	return t
}

// NewUniform builds a tree uniformly refined to maxLevel: every cell at
// that level is an active leaf.
func NewUniform(dim, maxLevel int) *Tree {
	n := 1 << uint(maxLevel)
	var cells []Cell
	var walk func(coord []int, axis int)
	walk = func(coord []int, axis int) {
		if axis == dim {
			cells = append(cells, Cell{Level: maxLevel, Coord: append([]int(nil), coord...)})
			return
		}
		for c := 0; c < n; c++ {
			coord[axis] = c
			walk(coord, axis+1)
		}
	}
	walk(make([]int, dim), 0)
	return New(dim, cells)
}

// NewWithRefinedCell builds a tree uniformly at baseLevel except for the
// single cell at refineCoord (given at baseLevel), which is refined one
// level further into 2^dim children — the shape of spec.md §8 scenario 3
// (one coarse patch beside finer neighbors).
func NewWithRefinedCell(dim, baseLevel int, refineCoord []int) *Tree {
	n := 1 << uint(baseLevel)
	var cells []Cell
	var walk func(coord []int, axis int)
	walk = func(coord []int, axis int) {
		if axis == dim {
			if intsEqual(coord, refineCoord) {
				for child := 0; child < 1<<uint(dim); child++ {
					childCoord := make([]int, dim)
					for a := 0; a < dim; a++ {
						bit := (child >> uint(a)) & 1
						childCoord[a] = coord[a]*2 + bit
					}
					cells = append(cells, Cell{Level: baseLevel + 1, Coord: childCoord})
				}
				return
			}
			cells = append(cells, Cell{Level: baseLevel, Coord: append([]int(nil), coord...)})
			return
		}
		for c := 0; c < n; c++ {
			coord[axis] = c
			walk(coord, axis+1)
		}
	}
	walk(make([]int, dim), 0)
	return New(dim, cells)
}

func intsEqual(a, b []int) bool {
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

// ensure returns the id of the quadrant at (level, coord), materializing
// it and every ancestor up to the root if not already present.
func (t *Tree) ensure(level int, coord []int) int64 {
	k := key(level, coord)
	if id, ok := t.byKey[k]; ok {
		return id
	}
	parentID := int64(-1)
	if level > 0 {
		parentCoord := make([]int, t.dim)
		for a := range coord {
			parentCoord[a] = coord[a] / 2
		}
		parentID = t.ensure(level-1, parentCoord)
	}
	id := t.nextID
	t.nextID++
	q := &octree.Quadrant{ID: id, Level: level, Coord: append([]int(nil), coord...), ParentID: parentID,
		ChildIDs: filledN(1<<uint(t.dim), -1)}
	t.byID[id] = q
	t.byKey[k] = id
	if parentID >= 0 {
		parent := t.byID[parentID]
		childIdx := 0
		for a := range coord {
			if coord[a]%2 == 1 {
				childIdx |= 1 << uint(a)
			}
		}
		parent.ChildIDs[childIdx] = id
	}
	return id
}

func filledN(n int, v int64) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func (t *Tree) Dim() int      { return t.dim }
func (t *Tree) MaxLevel() int { return t.maxLevel }

func (t *Tree) Quadrants() []octree.Quadrant {
	out := make([]octree.Quadrant, 0, len(t.byID))
	for _, q := range t.byID {
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *Tree) Lookup(level int, coord []int) (octree.Quadrant, bool) {
	id, ok := t.byKey[key(level, coord)]
	if !ok {
		return octree.Quadrant{}, false
	}
	return *t.byID[id], true
}

func (t *Tree) Leaves() []octree.Quadrant {
	var out []octree.Quadrant
	for id, on := range t.active {
		if on {
			out = append(out, *t.byID[id])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Coarsen merges every complete family of active sibling leaves at the
// tree's current finest active level into their shared parent.
func (t *Tree) Coarsen() {
	finest := -1
	for id, on := range t.active {
		if on && t.byID[id].Level > finest {
			finest = t.byID[id].Level
		}
	}
	if finest <= 0 {
		return
	}
	byParent := map[int64][]int64{}
	for id, on := range t.active {
		if !on || t.byID[id].Level != finest {
			continue
		}
		byParent[t.byID[id].ParentID] = append(byParent[t.byID[id].ParentID], id)
	}
	n := 1 << uint(t.dim)
	for parentID, children := range byParent {
		if len(children) != n {
			continue // incomplete family: other cells are left alone
		}
		for _, cid := range children {
			t.active[cid] = false
		}
		t.active[parentID] = true
	}
}

// Repartition round-robins the current leaves, sorted by id, across
// numRanks — deterministic so every rank's replica agrees without an
// actual partition exchange (see octree.Tree's doc comment).
func (t *Tree) Repartition(numRanks int) {
	leaves := t.Leaves()
	for i, l := range leaves {
		t.byID[l.ID].Rank = i % numRanks
	}
}
