// Package critpair defines the CriticalPair: an event witnessed in a state
// where a specific ordered chain of locks is held, plus enough context
// (source location, UI-thread flag, call-site trace) to reconstruct a
// diagnostic from it later.
package critpair

import (
	"fmt"
	"go/token"

	"github.com/diego200052/lockpair/pkg/event"
	"github.com/diego200052/lockpair/pkg/lockid"
)

// Frame is one call-step in a CriticalPair's trace: the callee and call
// site that a summary was integrated through.
type Frame struct {
	Callee string
	Loc    token.Pos
}

// CriticalPair is {acquisitions, event, loc, thread_flag} plus the
// call-site trace it carries for reconstructing diagnostics.
type CriticalPair struct {
	Acquisitions event.Stack
	Event        event.Event
	Loc          token.Pos
	ThreadFlag   bool // captured from the state at creation time (on_ui_thread collapsed to a bool — see pkg/astate)

	// ProcName is the procedure this pair was directly witnessed in (before
	// any summary integration rebasing); Trace accumulates the frames added
	// by each subsequent integration.
	ProcName string
	Trace    []Frame
}

// New constructs a CriticalPair, cloning the held set as a structural
// clone rather than an alias.
func New(held event.Stack, ev event.Event, loc token.Pos, uiThread bool, procName string) CriticalPair {
	return CriticalPair{
		Acquisitions: held.Clone(),
		Event:        ev,
		Loc:          loc,
		ThreadFlag:   uiThread,
		ProcName:     procName,
	}
}

// Key identifies a CriticalPair for deduplication: critical-pair sets are
// de-duplicated by (acquisitions, event, loc).
type Key struct {
	acqKey string
	evKey  string
	loc    token.Pos
}

func (cp CriticalPair) Key() Key {
	acqKey := ""
	for _, a := range cp.Acquisitions.Acquisitions() {
		acqKey += a.Lock.String() + "|"
	}
	return Key{acqKey: acqKey, evKey: cp.Event.String(), loc: cp.Loc}
}

func (cp CriticalPair) String() string {
	return fmt.Sprintf("CriticalPair{held=%v event=%v loc=%d ui=%v proc=%s}",
		cp.Acquisitions.Acquisitions(), cp.Event, cp.Loc, cp.ThreadFlag, cp.ProcName)
}

// WithFrame returns a copy of cp with the held set rebased to held and a new
// call-step frame prepended to its trace — the per-pair half of
// summary integration at a call site.
func (cp CriticalPair) WithFrame(held event.Stack, frame Frame) CriticalPair {
	out := cp
	out.Acquisitions = held
	out.Trace = append(append([]Frame{}, Frame{Callee: frame.Callee, Loc: frame.Loc}), cp.Trace...)
	return out
}

// RebaseEvent returns a copy of cp with its Event's lock (if it has one)
// replaced — used when a callee's LockAcquire pair is rebased onto an
// actual-argument access path at the call site.
func (cp CriticalPair) RebaseEvent(l lockid.Lock) CriticalPair {
	out := cp
	if cp.Event.Kind == event.KindLockAcquire {
		out.Event = event.LockAcquire(l)
	}
	return out
}
