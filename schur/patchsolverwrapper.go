package schur

import (
	"github.com/cpmech/thunderegg/domain"
	"github.com/cpmech/thunderegg/face"
	"github.com/cpmech/thunderegg/internal/rte"
	"github.com/cpmech/thunderegg/patch"
	"github.com/cpmech/thunderegg/tvector"
	"github.com/cpmech/thunderegg/view"
)

// GhostFiller is the domain-space ghost-cell exchange PatchSolverWrapper
// drives between setting an interface boundary condition and invoking the
// patch solver. Shaped to match ghost.Driver.FillGhost exactly, so a
// *ghost.Driver built for the same Domain can be passed here directly —
// the real GhostFiller<D> in original_source is likewise an abstract
// collaborator the Schur wrapper never constructs itself.
type GhostFiller interface {
	FillGhost(dom *domain.Domain, v *tvector.Vector) error
}

// PatchSolver is the per-patch local solve PatchSolverWrapper drives,
// named only (spec.md's Non-goals: "patch-local dense solvers... remain
// named interfaces only, never implemented here"). Modeled on the real
// solveSinglePatch(pinfo, fs, us)'s single-component shape shown by
// original_source/test/Schur/PatchSolverWrapper_MOCKS.h's mocks.
type PatchSolver interface {
	SolveSinglePatch(pinfo *patch.PatchInfo, f, u view.View) error
}

// PatchSolverWrapper turns a PatchSolver on InterfaceDomain's underlying
// Domain into a Schur-complement operator on interface vectors (spec.md
// §4.6, C9).
type PatchSolverWrapper struct {
	ifaceDomain *InterfaceDomain
	solver      PatchSolver
	filler      GhostFiller
}

// NewPatchSolverWrapper validates that every patch of ifaceDomain's Domain
// is cube-shaped (every ns[i] equal) — required because a single interface
// boundary-condition formula is applied uniformly across every axis — and
// fails with a Configuration error otherwise (spec.md §7's formal
// classification for "non-cube patches passed to the Schur wrapper").
func NewPatchSolverWrapper(ifaceDomain *InterfaceDomain, solver PatchSolver, filler GhostFiller) (*PatchSolverWrapper, error) {
	ns := ifaceDomain.Dom.NS
	for _, ni := range ns {
		if ni != ns[0] {
			return nil, rte.Errorf(rte.Configuration, "schur: PatchSolverWrapper requires cube patches, got ns=%v", ns)
		}
	}
	return &PatchSolverWrapper{ifaceDomain: ifaceDomain, solver: solver, filler: filler}, nil
}

// Apply computes b = A(x), the Schur-complement operator's action on
// interface vector x, reconstructed from the assertions of
// original_source/test/Schur/PatchSolverWrapper_MPI1.cpp (no header for
// PatchSolverWrapper survives there — only its test):
//  1. build a fresh zero domain-space vector u;
//  2. for every local interface, set u's ghost cells on each participating
//     patch side from x via ghost = 2*x - interior (a Dirichlet-boundary
//     reflection that reduces exactly to x on a vector of constants,
//     spec.md §8 scenario 6's tested property);
//  3. run the domain-space ghost exchange, which a test's own GhostFiller
//     may override entirely;
//  4. solve every local patch against a zero forcing term;
//  5. for every local interface, set b to x minus the post-solve interior
//     face value — overwritten, never accumulated, matching the real
//     apply()'s b.set(99) test case.
func (w *PatchSolverWrapper) Apply(x, b *Vector) error {
	dom := w.ifaceDomain.Dom

	u, err := tvector.NewManaged(dom, x.NumComponents())
	if err != nil {
		return err
	}
	if err := w.setGhostFromInterfaces(u, x); err != nil {
		return err
	}
	if err := w.filler.FillGhost(dom, u); err != nil {
		return err
	}

	f, err := tvector.NewManaged(dom, x.NumComponents())
	if err != nil {
		return err
	}
	for i, p := range dom.Patches {
		fv, err := f.GetPatchView(i)
		if err != nil {
			return err
		}
		uv, err := u.GetPatchView(i)
		if err != nil {
			return err
		}
		if err := w.solver.SolveSinglePatch(p, fv, uv); err != nil {
			return err
		}
	}

	return w.setRHSFromInterior(u, x, b)
}

// forEachIfaceSide walks every local patch's sides that have an installed
// interface, invoking fn with the side, the interface's position (shared
// by x/b's buffer ordering), and the patch's full domain-space view.
func (w *PatchSolverWrapper) forEachIfaceSide(u *tvector.Vector, fn func(s face.Side, ifaceIdx int, uv view.View) error) error {
	dom := w.ifaceDomain.Dom
	for i, p := range dom.Patches {
		pii := w.ifaceDomain.PatchIfaceInfo(p.ID)
		if pii == nil {
			continue
		}
		uv, err := u.GetPatchView(i)
		if err != nil {
			return err
		}
		for _, s := range face.SidesD(p.Dim) {
			iface := pii.IfaceInfo(s)
			if iface == nil {
				continue
			}
			if err := fn(s, w.ifaceDomain.indexOf(iface), uv); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *PatchSolverWrapper) setGhostFromInterfaces(u *tvector.Vector, x *Vector) error {
	return w.forEachIfaceSide(u, func(s face.Side, idx int, uv view.View) error {
		return writeSchurGhost(uv, x.GetIfaceView(idx), s, w.ifaceDomain.Dom.NumGhostCells)
	})
}

func (w *PatchSolverWrapper) setRHSFromInterior(u *tvector.Vector, x, b *Vector) error {
	return w.forEachIfaceSide(u, func(s face.Side, idx int, uv view.View) error {
		return setSchurRHS(b.GetIfaceView(idx), x.GetIfaceView(idx), uv, s)
	})
}

// writeSchurGhost sets every ghost layer of uv on side s from xv via
// ghost = 2*x - interior, the boundary-condition reflection reconstructed
// from PatchSolverWrapper_MPI1.cpp's RHSGhostCheckingPatchSolver assertion
// (ghost+inner)/2 == x.
func writeSchurGhost(uv, xv view.View, s face.Side, numGhostCells int) error {
	dim := uv.NumAxes() - 1
	inner, err := uv.GetSliceOn(s, dim, []int{0})
	if err != nil {
		return err
	}
	for g := 0; g < numGhostCells; g++ {
		ghost, err := uv.GetGhostSliceOn(s, dim, []int{g})
		if err != nil {
			return err
		}
		if err := walkFull(ghost.Lengths(), func(coord []int) error {
			ghost.Set(2*xv.At(coord...)-inner.At(coord...), coord...)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// setSchurRHS sets every cell of bv to xv minus uv's interior face value on
// side s, overwriting rather than accumulating.
func setSchurRHS(bv, xv, uv view.View, s face.Side) error {
	dim := uv.NumAxes() - 1
	inner, err := uv.GetSliceOn(s, dim, []int{0})
	if err != nil {
		return err
	}
	return walkFull(bv.Lengths(), func(coord []int) error {
		bv.Set(xv.At(coord...)-inner.At(coord...), coord...)
		return nil
	})
}

func walkFull(lengths []int, fn func(coord []int) error) error {
	coord := make([]int, len(lengths))
	var rec func(axis int) error
	rec = func(axis int) error {
		if axis == len(lengths) {
			return fn(coord)
		}
		for c := 0; c < lengths[axis]; c++ {
			coord[axis] = c
			if err := rec(axis + 1); err != nil {
				return err
			}
		}
		return nil
	}
	return rec(0)
}
