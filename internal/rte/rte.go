// Package rte implements the single recoverable error kind used across the
// topology core, modeled on gofem's chk.Err/chk.Panic split: configuration,
// invariant, and protocol errors are all raised as one RuntimeError that
// callers are free to catch and recover from; only a communication failure
// is fatal and aborts the process.
package rte

import (
	"fmt"
	"os"

	"github.com/cpmech/gosl/io"
)

// Kind classifies a RuntimeError for callers that want to branch on it.
type Kind int

const (
	// Configuration marks a bad setup: unknown neighbor id, non-cube patch
	// handed to the Schur wrapper, odd patch size where evens are required.
	Configuration Kind = iota
	// Invariant marks an internal contract broken: wrong neighbor variant
	// accessed, an index outside a patch/component range.
	Invariant
	// Protocol marks a misuse of a stateful API: timer stopped before
	// started, nested spans closed out of order.
	Protocol
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Invariant:
		return "invariant"
	case Protocol:
		return "protocol"
	default:
		return "runtime"
	}
}

// RuntimeError is the single recoverable error kind of the topology core.
type RuntimeError struct {
	Kind Kind
	Msg  string
}

func (e *RuntimeError) Error() string {
	return e.Msg
}

// Errorf builds a RuntimeError the way chk.Err builds a plain error: a
// classification plus a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf("%s error: %s", kind, fmt.Sprintf(format, args...))}
}

// Is reports whether err is a RuntimeError of the given kind.
func Is(err error, kind Kind) bool {
	re, ok := err.(*RuntimeError)
	return ok && re.Kind == kind
}

// Fatal reports a communication failure and aborts the process. The
// topology core never attempts partial-failure recovery across ranks.
func Fatal(format string, args ...interface{}) {
	io.Pf("FATAL: %s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
