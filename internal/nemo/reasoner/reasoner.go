// Package reasoner defines the Backend interface the nemo worker drives,
// and ships a default in-memory Datalog evaluator implementing it.
//
// The underlying Datalog reasoner is an external collaborator reached
// through a three-method seam: load a program, reason to fixpoint, fetch
// a predicate's materialized rows. Backend below is that seam. Memory
// is a minimal, dependency-free stand-in so the rest of this repository
// has something real to drive in tests; a production deployment would
// swap it for a binding to an actual Datalog engine without touching
// nemo.Worker.
package reasoner

import (
	"fmt"
	"strings"
)

// Row is one materialized tuple for a predicate.
type Row struct {
	Values []string
}

func (r Row) String() string {
	return strings.Join(r.Values, ", ")
}

// Program is the opaque handle Load returns; callers pass it back to
// Reason and PredicateRows without inspecting its contents.
type Program interface{}

// Backend is the black-box reasoner seam.
type Backend interface {
	// Load parses program text into an opaque Program handle. It
	// returns an error if the program's syntax is unacceptable to the
	// underlying reasoner, even if it passed the worker's own gates.
	Load(text string) (Program, error)

	// Reason runs the reasoner to fixpoint, deriving every fact
	// implied by the program's rules.
	Reason(p Program) error

	// PredicateRows returns the materialized rows for predicate. It is
	// only meaningful after Reason has been called; calling it first
	// returns whatever base facts were loaded for that predicate.
	PredicateRows(p Program, predicate string) ([]Row, error)
}

// ParseError is returned by Memory.Load when program text cannot be
// parsed into facts and rules.
type ParseError struct {
	Line   int
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Detail)
}
