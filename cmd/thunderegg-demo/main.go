// Command thunderegg-demo builds a uniform mesh, runs a ghost-cell
// exchange, and derives its Schur interface structure — a smoke test of
// the generator -> domain -> ghost -> schur pipeline, in the spirit of
// gofem's own single-file simulation driver (main.go).
package main

import (
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/thunderegg/face"
	"github.com/cpmech/thunderegg/generator"
	"github.com/cpmech/thunderegg/ghost"
	"github.com/cpmech/thunderegg/internal/testcomm"
	"github.com/cpmech/thunderegg/octree/faketree"
	"github.com/cpmech/thunderegg/patch"
	"github.com/cpmech/thunderegg/schur"
	"github.com/cpmech/thunderegg/tvector"
	"github.com/cpmech/thunderegg/view"
)

func identityBMF(treeID int64, unit []float64) []float64 {
	out := append([]float64(nil), unit...)
	return out
}

// idFiller tags every ghost cell with the neighboring patch's own id, the
// same convention ghost_test.go's idFiller exercises.
type idFiller struct{ dim int }

func (idFiller) FillGhostCellsForLocalPatch(p *patch.PatchInfo, v view.View) {}

func (f idFiller) FillGhostCellsForNbrPatch(p *patch.PatchInfo, local, nbr view.View, s, nbrFacet view.Facet, nbrType face.NbrType, orth face.Orthant) {
	axes, _ := nbrFacet.FixedAxes(f.dim)
	offsets := make([]int, len(axes))
	for g := 0; g < nbr.NumGhostCells(); g++ {
		for i := range offsets {
			offsets[i] = g
		}
		slice, err := nbr.GetGhostSliceOn(nbrFacet, f.dim, offsets)
		if err != nil {
			chk.Panic("%v", err)
		}
		lengths := slice.Lengths()
		coord := make([]int, len(lengths))
		var walk func(axis int)
		walk = func(axis int) {
			if axis == len(lengths) {
				*slice.Ptr(coord...) += float64(p.ID)
				return
			}
			for c := 0; c < lengths[axis]; c++ {
				coord[axis] = c
				walk(axis + 1)
			}
		}
		walk(0)
	}
}

// noopSolver leaves every patch's interior untouched; only here to give
// schur.PatchSolverWrapper a concrete (but trivial) collaborator.
type noopSolver struct{}

func (noopSolver) SolveSinglePatch(p *patch.PatchInfo, f, u view.View) error { return nil }

func main() {
	maxLevel := flag.Int("level", 1, "uniform refinement level (2^level patches per axis)")
	n := flag.Int("n", 4, "cells per patch per axis")
	flag.Parse()

	io.Pf("thunderegg-demo: building a uniform 2-D mesh at level %d, ns=(%d,%d)\n", *maxLevel, *n, *n)

	comm := testcomm.NewGroup(1)[0]
	tree := faketree.NewUniform(2, *maxLevel)
	g := generator.New(comm, tree, []int{*n, *n}, 1, identityBMF)

	dom, err := g.GetFinestDomain()
	if err != nil {
		chk.Panic("%v", err)
	}
	io.Pf("> %d patches\n", dom.GetNumGlobalPatches())

	v, err := tvector.NewManaged(dom, 1)
	if err != nil {
		chk.Panic("%v", err)
	}
	drv := ghost.New(ghost.Faces, idFiller{dim: 2})
	if err := drv.FillGhost(dom, v); err != nil {
		chk.Panic("%v", err)
	}
	io.Pf("> ghost exchange complete\n")

	ifaceDom, err := schur.New(dom)
	if err != nil {
		chk.Panic("%v", err)
	}
	io.Pf("> %d local interfaces\n", len(ifaceDom.Interfaces))

	if _, err := schur.NewPatchSolverWrapper(ifaceDom, noopSolver{}, drv); err != nil {
		io.Pf("> patches are not cube-shaped, PatchSolverWrapper unavailable: %v\n", err)
		return
	}
	io.Pf("> PatchSolverWrapper ready\n")
}
