package transfer

import (
	"github.com/diego200052/lockpair/pkg/astate"
	"github.com/diego200052/lockpair/pkg/critpair"
	"github.com/diego200052/lockpair/pkg/event"
	"github.com/diego200052/lockpair/pkg/ir"
	"github.com/diego200052/lockpair/pkg/lockid"
)

// Rebase maps a callee-relative lock to the caller's access path space by
// substituting the callee's formal-parameter roots for the caller's actual
// arguments at the call site. Locks rooted at a
// global or class-literal pass through unchanged — only parameter-rooted
// locks need substitution. actuals[i] is the caller-space AccessPath bound
// to the callee's i'th formal.
func Rebase(l lockid.Lock, actuals []lockid.AccessPath) (lockid.Lock, bool) {
	if l.Path.Root.Kind != lockid.RootParam {
		return l, true
	}
	idx := l.Path.Root.ParamIndex
	if idx < 0 || idx >= len(actuals) {
		return lockid.Lock{}, false
	}
	base := actuals[idx]
	rebased := lockid.AccessPath{Root: base.Root, Steps: append(append([]lockid.Selector{}, base.Steps...), l.Path.Steps...)}
	return lockid.FromAccessPath(rebased, l.Owner)
}

func rebaseStack(s event.Stack, actuals []lockid.AccessPath) event.Stack {
	out := event.Empty
	for _, a := range s.Acquisitions() {
		rl, ok := Rebase(a.Lock, actuals)
		if !ok {
			continue
		}
		out = out.Push(event.Acquisition{
			Lock:      rl,
			ProcName:  a.ProcName,
			Loc:       a.Loc,
			Anchor:    event.AnchorInherited,
			Exclusive: a.Exclusive,
		})
	}
	return out
}

// IntegrateSummary folds a callee's final summary state into the caller's
// current state at a call site:
//  1. held and guards are NOT inherited from the callee — callees are
//     assumed balanced, so the caller's own held stack passes through
//     unchanged,
//  2. rebase each critical pair's acquisitions into the caller's
//     access-path space via actuals and prepend the caller's own held
//     stack ahead of them, so a deadlock check downstream sees the full
//     caller-space lock order,
//  3. union the rebased critical pairs into the caller's set, wrapping each
//     with a call-site frame so its trace can be reconstructed — a pair
//     whose event lock doesn't rebase (unbindable in caller space) is
//     dropped rather than kept unrebased,
//  4. join the callee's on_ui_thread flag into the caller's (monotonic:
//     integrating the same summary twice is idempotent since join is
//     idempotent).
//
// If calleeSummary is the zero value (not found), call IntegrateMissing
// instead — this function assumes a summary was actually retrieved.
func IntegrateSummary(caller astate.State, calleeSummary astate.State, actuals []lockid.AccessPath, frame critpair.Frame) astate.State {
	out := caller.WithOnUIThread(calleeSummary.OnUIThread)

	for _, cp := range calleeSummary.CriticalPairs {
		if cp.Event.Kind == event.KindLockAcquire {
			rl, ok := Rebase(cp.Event.Lock, actuals)
			if !ok {
				continue
			}
			cp = cp.RebaseEvent(rl)
		}

		rebasedAcq := rebaseStack(cp.Acquisitions, actuals)
		fullHeld := caller.Held.Prepend(rebasedAcq)

		newCp := cp.WithFrame(fullHeld, frame)
		out = out.AddCriticalPair(newCp)
	}

	return out
}

// IntegrateMissing handles a call whose callee summary is not yet available
// in the SummaryStore by treating the call's contribution as
// astate.Bottom()'s join-identity, i.e. a no-op.
func IntegrateMissing(caller astate.State, err *ir.MissingSummaryError) astate.State {
	return caller
}
