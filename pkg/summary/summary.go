// Package summary implements the per-procedure Summary artifact: the
// final, joined exit state of a procedure's fixpoint, with a wire encoding
// for persisting/transmitting summaries across analysis runs and a
// default in-memory store for a single analysis run.
package summary

import "github.com/diego200052/lockpair/pkg/astate"

// Summary is the immutable result of analyzing one procedure: its final
// exit state (the join of every return-point state the fixpoint reached)
// plus the procedure's name for diagnostics.
type Summary struct {
	Proc  string
	State astate.State
}

// New wraps a procedure's final joined exit state as a Summary.
func New(proc string, exit astate.State) Summary {
	return Summary{Proc: proc, State: exit}
}

// Equal reports structural equality between two summaries, used by the
// idempotence property: integrating the same summary twice must leave the
// caller's state unchanged.
func (s Summary) Equal(o Summary) bool {
	return s.Proc == o.Proc && s.State.Leq(o.State) && o.State.Leq(s.State)
}
