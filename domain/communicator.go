// Package domain implements Domain (spec.md §3/§4.3, C5): the owned
// collection of local PatchInfo plus a process-wide Communicator, and the
// two-phase neighbor-index resolution pass that makes every NeighborInfo's
// local_index/global_index field valid.
package domain

// Communicator is the minimal MPI-like collective surface the topology
// core needs (spec.md §1 treats the message-passing layer as an external
// collaborator; spec.md §12 gives it this concrete shape). It is modeled
// on gofem's own mpi.IsOn/Rank/Size gate (fem/fem.go) plus gosl/mpi's
// point-to-point and collective primitives, kept to exactly the calls
// Domain/DomainGenerator/GhostFiller make.
type Communicator interface {
	Rank() int
	Size() int

	// Send/Recv move raw int64 payloads (ids, counts) between two ranks,
	// tagged so concurrent exchanges in the same phase don't interleave.
	Send(tag int, toRank int, data []int64)
	Recv(tag int, fromRank int) []int64

	// SendBytes/RecvBytes move opaque byte payloads, used by GhostFiller
	// to exchange packed ghost-cell buffers.
	SendBytes(tag int, toRank int, data []byte)
	RecvBytes(tag int, fromRank int) []byte

	// AllReduceSumInt performs a collective sum reduction of one int
	// across every rank, returning the result to every rank — used for
	// the global patch count (Domain.GetNumGlobalPatches).
	AllReduceSumInt(v int) int

	// ExclusiveScanInt returns the sum of v from every rank with a
	// smaller rank number than this one (an MPI_Scan-equivalent exclusive
	// prefix sum), used to assign this rank's first global index.
	ExclusiveScanInt(v int) int

	// Barrier blocks until every rank has called it.
	Barrier()
}
