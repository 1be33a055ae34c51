package ir

import "fmt"

// Four error kinds, each with its own handling policy. ModelingGap and
// InternalInvariant wrap an underlying cause; MissingSummary
// and UnresolvedLock are sentinel-style (carry only identifying context)
// since their handling (treat as bottom / silently drop) never inspects a
// wrapped cause.

// ModelingGapError marks a construct the frontend/transfer function does
// not understand. Policy: log and continue — the transfer function treats
// the instruction as NoEffect and proceeds.
type ModelingGapError struct {
	Proc string
	What string
	Err  error
}

func (e *ModelingGapError) Error() string {
	return fmt.Sprintf("modeling gap in %s: %s: %v", e.Proc, e.What, e.Err)
}

func (e *ModelingGapError) Unwrap() error { return e.Err }

// InternalInvariantError marks a violation of an invariant the analysis
// itself is supposed to maintain (e.g. a held stack that somehow holds a
// lock twice). Policy: fatal to the enclosing procedure's analysis only —
// abort that procedure's fixpoint, do not propagate the panic further.
type InternalInvariantError struct {
	Proc      string
	Invariant string
	Err       error
}

func (e *InternalInvariantError) Error() string {
	return fmt.Sprintf("internal invariant %q violated in %s: %v", e.Invariant, e.Proc, e.Err)
}

func (e *InternalInvariantError) Unwrap() error { return e.Err }

// MissingSummaryError marks a callee whose summary is not yet available in
// the SummaryStore. Policy: the caller's analysis stops with this error and
// the scheduler re-runs the caller on a later pass, once the callee's
// summary is published. The call is not analyzed with a bottom contribution
// in its place, so a caller still blocked when a pass makes no progress
// gets no summary.
type MissingSummaryError struct {
	Callee string
}

func (e *MissingSummaryError) Error() string {
	return fmt.Sprintf("missing summary for %s", e.Callee)
}

// UnresolvedLockError marks a lock expression that could not be resolved to
// an AccessPath (e.g. through indirection the frontend's aliasing model
// does not track). Policy: silently drop — the effect is treated as
// NoEffect with no diagnostic.
type UnresolvedLockError struct {
	Proc string
	Expr string
}

func (e *UnresolvedLockError) Error() string {
	return fmt.Sprintf("unresolved lock expression %q in %s", e.Expr, e.Proc)
}
