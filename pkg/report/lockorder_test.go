package report

import (
	"testing"

	"github.com/diego200052/lockpair/pkg/astate"
	"github.com/diego200052/lockpair/pkg/critpair"
	"github.com/diego200052/lockpair/pkg/event"
)

// TestLockOrderCyclesDetectsWithinProcedure covers the case a pairwise
// may_deadlock comparison can't see on its own: a lock cycle witnessed
// entirely inside one procedure's summary (e.g. via branches that each
// acquire a different next lock while a shared lock is held).
func TestLockOrderCyclesDetectsWithinProcedure(t *testing.T) {
	a, b, c := fieldLock("T", "a"), fieldLock("T", "b"), fieldLock("T", "c")

	heldA := event.Empty.Push(event.Acquisition{Lock: a, ProcName: "T.m", Loc: 1})
	heldB := event.Empty.Push(event.Acquisition{Lock: b, ProcName: "T.m", Loc: 2})
	heldC := event.Empty.Push(event.Acquisition{Lock: c, ProcName: "T.m", Loc: 3})

	sum := astate.Bottom()
	sum = sum.AddCriticalPair(critpair.New(heldA, event.LockAcquire(b), 2, false, "T.m"))
	sum = sum.AddCriticalPair(critpair.New(heldB, event.LockAcquire(c), 3, false, "T.m"))
	sum = sum.AddCriticalPair(critpair.New(heldC, event.LockAcquire(a), 4, false, "T.m"))

	issues := LockOrderCycles("T.m", sum)
	if len(issues) != 1 {
		t.Fatalf("want exactly one lock-order-cycle issue, got %d: %+v", len(issues), issues)
	}
	if issues[0].Kind != KindDeadlock {
		t.Fatalf("want KindDeadlock, got %v", issues[0].Kind)
	}
	if issues[0].Loc != 2 {
		t.Fatalf("want the cycle anchored at its earliest recorded edge loc (2), got %d", issues[0].Loc)
	}
}

func TestLockOrderCyclesNoFalsePositiveWithoutCycle(t *testing.T) {
	a, b := fieldLock("T", "a"), fieldLock("T", "b")
	heldA := event.Empty.Push(event.Acquisition{Lock: a, ProcName: "T.m", Loc: 1})

	sum := astate.Bottom().AddCriticalPair(critpair.New(heldA, event.LockAcquire(b), 2, false, "T.m"))

	if issues := LockOrderCycles("T.m", sum); len(issues) != 0 {
		t.Fatalf("want no issues for a simple acyclic order, got %+v", issues)
	}
}
