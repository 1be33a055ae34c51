package critpair

import (
	"fmt"
	"go/token"

	"github.com/diego200052/lockpair/pkg/event"
	"github.com/diego200052/lockpair/pkg/lockid"
)

// CanRunInParallel reports whether two critical pairs could plausibly race:
// they must belong to different procedures (two events in the same
// procedure never interleave with themselves) and neither may be pinned to
// the UI thread together with the other also being UI-thread-pinned, since
// the UI thread is single-threaded by construction.
func CanRunInParallel(p, q CriticalPair) bool {
	if p.ProcName == q.ProcName {
		return false
	}
	if p.ThreadFlag && q.ThreadFlag {
		return false
	}
	return true
}

// MayDeadlock reports the classical lock-order-inversion condition between
// two LockAcquire critical pairs: p holds a lock that q goes on to acquire,
// while q holds a lock that p goes on to acquire, and the two "next" locks
// differ.
func MayDeadlock(p, q CriticalPair) bool {
	if p.Event.Kind != event.KindLockAcquire || q.Event.Kind != event.KindLockAcquire {
		return false
	}
	if !CanRunInParallel(p, q) {
		return false
	}
	pNext := p.Event.Lock
	qNext := q.Event.Lock
	if pNext.Equal(qNext) {
		return false
	}
	return q.Acquisitions.Contains(pNext) && p.Acquisitions.Contains(qNext)
}

// IsUIThread reports whether p was witnessed while its owning procedure was
// known to run on the UI thread.
func IsUIThread(p CriticalPair) bool { return p.ThreadFlag }

// EarliestLockOrCallLoc returns the source location of the first
// acquisition in p's held stack that belongs to procName, falling back to
// the event's own location — used to anchor diagnostics in the caller's
// source where possible.
func EarliestLockOrCallLoc(p CriticalPair, procName string) token.Pos {
	for _, a := range p.Acquisitions.Acquisitions() {
		if a.ProcName == procName {
			return a.Loc
		}
	}
	return p.Loc
}

// MakeTrace renders a human-readable diagnostic trace for p: a header line,
// optionally the chain of held acquisitions (outermost first), the
// call-site frames accumulated by summary integration, and the triggering
// event itself.
func MakeTrace(p CriticalPair, header string, includeAcquisitions bool) []string {
	var lines []string
	if header != "" {
		lines = append(lines, header)
	}
	if includeAcquisitions {
		for _, a := range p.Acquisitions.Acquisitions() {
			lines = append(lines, fmt.Sprintf("  acquires %s in %s", a.Lock, a.ProcName))
		}
	}
	for _, f := range p.Trace {
		lines = append(lines, fmt.Sprintf("  via call to %s", f.Callee))
	}
	lines = append(lines, fmt.Sprintf("  %s in %s", p.Event, p.ProcName))
	return lines
}

// SelfDeadlock reports whether acquiring l re-acquires a lock already
// present in held — a degenerate single-thread deadlock, always reportable
// regardless of thread-parallelism reasoning.
func SelfDeadlock(held event.Stack, l lockid.Lock) bool {
	return held.Contains(l)
}
