package transfer

import (
	"testing"

	"github.com/diego200052/lockpair/pkg/astate"
	"github.com/diego200052/lockpair/pkg/critpair"
	"github.com/diego200052/lockpair/pkg/event"
	"github.com/diego200052/lockpair/pkg/ir"
	"github.com/diego200052/lockpair/pkg/lockid"
)

func mkLock(name string) lockid.Lock {
	l, _ := lockid.FromAccessPath(lockid.NewParamPath(0, lockid.Selector{Field: name}), "T")
	return l
}

func TestStepLockPushesAcquisitionAndEmitsCriticalPair(t *testing.T) {
	l := mkLock("mu")
	instr := ir.Instruction{Kind: ir.InstrDirectCall, Loc: 10, Effect: ir.Lock(l, true)}

	out, err := Step(astate.Bottom(), instr, "Foo.bar", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Held.Contains(l) {
		t.Fatalf("locking should push the acquisition onto held")
	}
	if len(out.CriticalPairs) != 1 {
		t.Fatalf("locking should emit exactly one critical pair, got %d", len(out.CriticalPairs))
	}
}

func TestStepLockTwiceIsSelfDeadlock(t *testing.T) {
	l := mkLock("mu")
	instr := ir.Instruction{Kind: ir.InstrDirectCall, Loc: 10, Effect: ir.Lock(l, true)}

	s1, _ := Step(astate.Bottom(), instr, "Foo.bar", false)
	if !IsSelfDeadlock(s1, l) {
		t.Fatalf("re-locking an already-held lock should be detected as self-deadlock")
	}

	s2, _ := Step(s1, instr, "Foo.bar", false)
	if len(s2.CriticalPairs) != 1 {
		t.Fatalf("re-acquiring the same lock at the same site should still dedup to one pair, got %d", len(s2.CriticalPairs))
	}
}

func TestStepUnlockPopsAcquisition(t *testing.T) {
	l := mkLock("mu")
	lockInstr := ir.Instruction{Kind: ir.InstrDirectCall, Loc: 10, Effect: ir.Lock(l, true)}
	unlockInstr := ir.Instruction{Kind: ir.InstrDirectCall, Loc: 11, Effect: ir.Unlock(l)}

	s1, _ := Step(astate.Bottom(), lockInstr, "Foo.bar", false)
	s2, _ := Step(s1, unlockInstr, "Foo.bar", false)
	if s2.Held.Contains(l) {
		t.Fatalf("unlock should remove the lock from held")
	}
}

func TestStepGuardLifecycle(t *testing.T) {
	l := mkLock("mu")
	construct := ir.Instruction{Kind: ir.InstrDirectCall, Loc: 1, Effect: ir.GuardConstruct("g", l, true)}
	destroy := ir.Instruction{Kind: ir.InstrDirectCall, Loc: 2, Effect: ir.GuardDestroy("g")}

	s1, _ := Step(astate.Bottom(), construct, "Foo.bar", false)
	if !s1.Held.Contains(l) {
		t.Fatalf("constructing a guard should acquire its lock")
	}
	s2, _ := Step(s1, destroy, "Foo.bar", false)
	if s2.Held.Contains(l) {
		t.Fatalf("destroying a locked guard should release its lock")
	}
	if _, ok := s2.Guards["g"]; ok {
		t.Fatalf("destroying a guard should remove its binding")
	}
}

func TestStepMayBlockCallEmitsCriticalPair(t *testing.T) {
	instr := ir.Instruction{Kind: ir.InstrDirectCall, Loc: 1, Effect: ir.MayBlockCall("time.Sleep", event.SeverityHigh)}
	out, _ := Step(astate.Bottom(), instr, "Foo.bar", true)
	if len(out.CriticalPairs) != 1 {
		t.Fatalf("a may-block call should emit a critical pair, got %d", len(out.CriticalPairs))
	}
	for _, cp := range out.CriticalPairs {
		if !cp.ThreadFlag {
			t.Fatalf("pair witnessed on the UI thread should carry ThreadFlag=true")
		}
	}
}

func TestRebaseSubstitutesFormalForActual(t *testing.T) {
	calleeLock := mkLock("mu") // rooted at callee's arg0
	actuals := []lockid.AccessPath{lockid.NewParamPath(2, lockid.Selector{Field: "obj"})}

	rebased, ok := Rebase(calleeLock, actuals)
	if !ok {
		t.Fatalf("Rebase should succeed when actuals cover the formal index")
	}
	want := lockid.NewParamPath(2, lockid.Selector{Field: "obj"}, lockid.Selector{Field: "mu"})
	if !rebased.Path.Equal(want) {
		t.Fatalf("Rebase = %v, want path %v", rebased.Path, want)
	}
}

func TestIntegrateSummaryUnionsCriticalPairsWithFrame(t *testing.T) {
	calleeLock := mkLock("mu")
	calleeCp := critpair.New(astate.Bottom().Held, event.LockAcquire(calleeLock), 5, false, "Callee.run")
	calleeSummary := astate.Bottom().AddCriticalPair(calleeCp)

	actuals := []lockid.AccessPath{lockid.NewParamPath(0, lockid.Selector{Field: "obj"})}
	out := IntegrateSummary(astate.Bottom(), calleeSummary, actuals, critpair.Frame{Callee: "Callee.run", Loc: 20})

	if len(out.CriticalPairs) != 1 {
		t.Fatalf("want 1 integrated critical pair, got %d", len(out.CriticalPairs))
	}
	for _, cp := range out.CriticalPairs {
		if len(cp.Trace) != 1 || cp.Trace[0].Callee != "Callee.run" {
			t.Fatalf("integrated pair should carry a call-site frame, got %+v", cp.Trace)
		}
	}
}
