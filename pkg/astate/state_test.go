package astate

import (
	"testing"

	"github.com/diego200052/lockpair/pkg/critpair"
	"github.com/diego200052/lockpair/pkg/event"
	"github.com/diego200052/lockpair/pkg/lockid"
)

func mkLock(name string) lockid.Lock {
	l, _ := lockid.FromAccessPath(lockid.NewParamPath(0, lockid.Selector{Field: name}), "T")
	return l
}

func TestJoinIntersectsHeld(t *testing.T) {
	a, b := mkLock("a"), mkLock("b")

	s1 := Bottom().WithHeld(event.Empty.Push(event.Acquisition{Lock: a, ProcName: "m", Loc: 1}).
		Push(event.Acquisition{Lock: b, ProcName: "m", Loc: 2}))
	s2 := Bottom().WithHeld(event.Empty.Push(event.Acquisition{Lock: a, ProcName: "m", Loc: 1}))

	joined := s1.Join(s2)
	if !joined.Held.Contains(a) || joined.Held.Contains(b) {
		t.Fatalf("join of held sets should keep only the common lock, got %v", joined.Held.Acquisitions())
	}

	// held is joined by intersection, so the join is the less precise
	// (smaller-held-set) upper bound of both inputs: both inputs must still
	// be leq the join, same as GuardMap's intersection join.
	if !s1.Leq(joined) {
		t.Fatalf("s1 must be leq the join of s1 and s2")
	}
	if !s2.Leq(joined) {
		t.Fatalf("s2 must be leq the join of s1 and s2")
	}
}

func TestJoinUnionsCriticalPairs(t *testing.T) {
	p := critpair.New(event.Empty, event.LockAcquire(mkLock("a")), 1, false, "m1")
	q := critpair.New(event.Empty, event.LockAcquire(mkLock("b")), 2, false, "m2")

	s1 := Bottom().AddCriticalPair(p)
	s2 := Bottom().AddCriticalPair(q)

	joined := s1.Join(s2)
	if len(joined.CriticalPairs) != 2 {
		t.Fatalf("want 2 critical pairs after join, got %d", len(joined.CriticalPairs))
	}
}

func TestJoinOnUIThreadTrueAbsorbs(t *testing.T) {
	s1 := Bottom().WithOnUIThread(TriTrue)
	s2 := Bottom().WithOnUIThread(TriUnknown)
	joined := s1.Join(s2)
	if joined.OnUIThread != TriTrue {
		t.Fatalf("true joined with anything must be true, got %v", joined.OnUIThread)
	}
}

func TestJoinGuardsIsIntersection(t *testing.T) {
	a := mkLock("a")
	g1 := GuardMap{"g": {Bound: a, Locked: true}}
	g2 := GuardMap{"g": {Bound: a, Locked: false}}

	s1 := Bottom().WithGuards(g1)
	s2 := Bottom().WithGuards(g2)
	joined := s1.Join(s2)

	if len(joined.Guards) != 0 {
		t.Fatalf("disagreeing guard states must not survive join, got %v", joined.Guards)
	}
}

func TestLeqReflexive(t *testing.T) {
	p := critpair.New(event.Empty, event.LockAcquire(mkLock("a")), 1, false, "m1")
	s := Bottom().AddCriticalPair(p).WithOnUIThread(TriTrue)
	if !s.Leq(s) {
		t.Fatalf("state must be leq itself")
	}
}

func TestBottomIsLeastElement(t *testing.T) {
	p := critpair.New(event.Empty, event.LockAcquire(mkLock("a")), 1, false, "m1")
	s := Bottom().AddCriticalPair(p).WithOnUIThread(TriTrue)
	if !Bottom().Leq(s) {
		t.Fatalf("Bottom() must be leq a state that holds no locks and binds no guards")
	}
}
