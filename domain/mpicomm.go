package domain

import "github.com/cpmech/gosl/mpi"

// MPIComm is the default Communicator, backing every collective and
// point-to-point call onto gosl/mpi — the same package gofem gates calls
// to behind mpi.IsOn() (fem/fem.go, fem/main.go). It is only usable when
// mpi.IsOn() reports true; tests instead use internal/testcomm's
// in-process fake, which satisfies the same interface.
type MPIComm struct {
	comm *mpi.Communicator
}

// NewMPIComm wraps the default world communicator. Panics (as gofem's
// mpi.Start-gated code does) if MPI has not been started.
func NewMPIComm() *MPIComm {
	if !mpi.IsOn() {
		panic("domain: MPI is not running; call mpi.Start() before NewMPIComm")
	}
	return &MPIComm{comm: mpi.NewCommunicator(nil)}
}

func (c *MPIComm) Rank() int { return c.comm.Rank() }
func (c *MPIComm) Size() int { return c.comm.Size() }

func (c *MPIComm) Send(tag int, toRank int, data []int64) {
	ints := make([]int, len(data))
	for i, v := range data {
		ints[i] = int(v)
	}
	c.comm.SendI(ints, toRank)
}

func (c *MPIComm) Recv(tag int, fromRank int) []int64 {
	ints := c.comm.RecvI(fromRank)
	out := make([]int64, len(ints))
	for i, v := range ints {
		out[i] = int64(v)
	}
	return out
}

func (c *MPIComm) SendBytes(tag int, toRank int, data []byte) {
	ints := make([]int, len(data))
	for i, b := range data {
		ints[i] = int(b)
	}
	c.comm.SendI(ints, toRank)
}

func (c *MPIComm) RecvBytes(tag int, fromRank int) []byte {
	ints := c.comm.RecvI(fromRank)
	out := make([]byte, len(ints))
	for i, v := range ints {
		out[i] = byte(v)
	}
	return out
}

func (c *MPIComm) AllReduceSumInt(v int) int {
	orig := []float64{float64(v)}
	dest := []float64{0}
	c.comm.AllReduceSum(dest, orig)
	return int(dest[0])
}

func (c *MPIComm) ExclusiveScanInt(v int) int {
	return c.comm.ExclusiveScanSumInt(v)
}

func (c *MPIComm) Barrier() { c.comm.Barrier() }
