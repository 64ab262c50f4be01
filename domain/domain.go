package domain

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/thunderegg/internal/rte"
	"github.com/cpmech/thunderegg/patch"
)

// tagNbrQuery/tagNbrReply distinguish the two exchange phases that share one
// Communicator during construction, the way gofem's fem package reserves
// tag 0 for ghost data (spec.md §5: "send tag = 0 for ghost data").
const (
	tagNbrQuery = 101
	tagNbrReply = 102
)

// Options configures Domain construction — plain constructor arguments
// rather than a parsed file, mirroring gofem's NewFEM(...) signature
// (spec.md §10.3).
type Options struct {
	NumGhostCells int
	Verbose       bool
}

// Domain is the owned collection of local patches plus a process-wide
// Communicator (spec.md §3/§4.3, C5).
type Domain struct {
	Comm          Communicator
	ID            int
	NS            []int
	NumGhostCells int

	Patches []*patch.PatchInfo

	idToLocal map[int64]int
	numGlobal int
}

// NewDomain builds a Domain from an iterator of owned patches: it takes
// local_index/global_index assignment and neighbor-index resolution to
// completion before returning (spec.md §4.3).
func NewDomain(comm Communicator, id int, ns []int, opts Options, patches []*patch.PatchInfo) (*Domain, error) {
	d := &Domain{Comm: comm, ID: id, NS: append([]int(nil), ns...), NumGhostCells: opts.NumGhostCells, Patches: patches}

	// step 1+2: local_index assignment and exclusive-prefix-sum global_index
	base := comm.ExclusiveScanInt(len(patches))
	d.numGlobal = comm.AllReduceSumInt(len(patches))
	d.idToLocal = make(map[int64]int, len(patches))
	for i, p := range patches {
		p.LocalIndex = i
		p.GlobalIndex = base + i
		p.NumGhostCells = opts.NumGhostCells
		d.idToLocal[p.ID] = i
	}

	// step 3: resolve local neighbor indexes
	for _, p := range d.Patches {
		p.SetNeighborLocalIndexes(d.idToLocal)
	}

	// step 4: resolve remote neighbor ids to (rank, global_index)
	if err := d.resolveRemoteNeighbors(); err != nil {
		return nil, err
	}

	if opts.Verbose && comm.Rank() == 0 {
		io.Pf("> domain %d: %d local patches, %d global patches\n", id, d.GetNumLocalPatches(), d.GetNumGlobalPatches())
	}
	return d, nil
}

// GetNumLocalPatches returns the number of patches owned by this rank.
func (d *Domain) GetNumLocalPatches() int { return len(d.Patches) }

// GetNumGlobalPatches returns the sum of local patch counts across ranks,
// computed once during NewDomain.
func (d *Domain) GetNumGlobalPatches() int { return d.numGlobal }

// LocalIndexOf returns the local index of patch id, if it is owned by this
// rank.
func (d *Domain) LocalIndexOf(id int64) (int, bool) {
	li, ok := d.idToLocal[id]
	return li, ok
}

// resolveRemoteNeighbors implements the two-phase gather of spec.md §4.3:
// each rank figures out which neighbor ids on its own patches are not
// locally owned, routes each id to its owning rank to learn (rank,
// global_index), then fills every NeighborInfo's global_index, local and
// remote alike. A neighbor's Rank is taken as given and is not changed.
func (d *Domain) resolveRemoteNeighbors() error {
	comm := d.Comm
	rank, size := comm.Rank(), comm.Size()

	// every rank owns the ids it holds; build a {id: globalIndex} table for
	// ids that are NOT locally owned but show up as a neighbor (grouped by
	// the rank the neighbor descriptor already claims to own it).
	wanted := map[int][]int64{} // ownerRank -> ids to resolve
	for _, p := range d.Patches {
		ids := p.GetNbrIds()
		ranks := p.GetNbrRanks()
		for i, id := range ids {
			if _, local := d.idToLocal[id]; local {
				continue
			}
			owner := ranks[i]
			if owner < 0 || owner >= size {
				return rte.Errorf(rte.Configuration, "domain: neighbor id %d claims invalid owning rank %d", id, owner)
			}
			if owner == rank {
				return rte.Errorf(rte.Configuration, "domain: neighbor id %d claims owning rank %d but that rank does not own it", id, owner)
			}
			wanted[owner] = append(wanted[owner], id)
		}
	}

	resolved := map[int64]int{} // id -> global index
	for _, p := range d.Patches {
		resolved[p.ID] = p.GlobalIndex
	}

	// send queries to each owner, synchronously per destination rank; this
	// mirrors the all-to-all-by-explicit-query option named in spec.md §4.3.
	for r := 0; r < size; r++ {
		if r == rank {
			continue
		}
		ids := dedupInt64(wanted[r])
		comm.Send(tagNbrQuery, r, ids)
	}
	pending := map[int][]int64{}
	for r := 0; r < size; r++ {
		if r == rank {
			continue
		}
		pending[r] = dedupInt64(wanted[r])
	}

	// answer queries coming in from every other rank: for each requested id
	// this rank owns, reply with its global index (or -1 if unknown, a
	// configuration error at the call site).
	for r := 0; r < size; r++ {
		if r == rank {
			continue
		}
		query := comm.Recv(tagNbrQuery, r)
		reply := make([]int64, len(query))
		for i, id := range query {
			if li, ok := d.idToLocal[id]; ok {
				reply[i] = int64(d.Patches[li].GlobalIndex)
			} else {
				reply[i] = -1
			}
		}
		comm.Send(tagNbrReply, r, reply)
	}
	for r := 0; r < size; r++ {
		if r == rank {
			continue
		}
		reply := comm.Recv(tagNbrReply, r)
		ids := pending[r]
		for i, gi := range reply {
			if gi < 0 {
				return rte.Errorf(rte.Configuration, "domain: neighbor id %d is owned by no rank", ids[i])
			}
			resolved[ids[i]] = int(gi)
		}
	}

	for _, p := range d.Patches {
		p.SetNeighborGlobalIndexes(resolved)
	}
	return nil
}

func dedupInt64(in []int64) []int64 {
	seen := map[int64]bool{}
	var out []int64
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
