package report

import (
	"testing"

	"github.com/diego200052/lockpair/pkg/astate"
	"github.com/diego200052/lockpair/pkg/critpair"
	"github.com/diego200052/lockpair/pkg/event"
	"github.com/diego200052/lockpair/pkg/lockid"
)

// fakeAttrs and fakeClasses back the ProcAttrs/ClassIndex interfaces with
// simple map-driven test doubles for each literal scenario below.

type fakeAttrs struct {
	lockless     map[string]bool
	constructors map[string]bool
	unreportable map[string]bool
}

func (f fakeAttrs) IsLockless(p string) bool    { return f.lockless[p] }
func (f fakeAttrs) IsConstructor(p string) bool  { return f.constructors[p] }
func (f fakeAttrs) IsReportable(p string) bool   { return !f.unreportable[p] }

type fakeClasses map[string][]string

func (f fakeClasses) MethodsOf(owner string) []string { return f[owner] }

type fakeStore map[string]astate.State

func (f fakeStore) Get(p string) (astate.State, bool) { st, ok := f[p]; return st, ok }

func fieldLock(owner, field string) lockid.Lock {
	l, _ := lockid.FromAccessPath(lockid.NewParamPath(0, lockid.Selector{Field: field}), owner)
	return l
}

// Scenario 1: simple deadlock between m1 and m2 of class A.
func TestScenarioSimpleDeadlock(t *testing.T) {
	x, y := fieldLock("A", "x"), fieldLock("A", "y")

	heldX := event.Empty.Push(event.Acquisition{Lock: x, ProcName: "A.m1", Loc: 1})
	m1Sum := astate.Bottom().AddCriticalPair(critpair.New(heldX, event.LockAcquire(y), 2, false, "A.m1"))

	heldY := event.Empty.Push(event.Acquisition{Lock: y, ProcName: "A.m2", Loc: 10})
	m2Sum := astate.Bottom().AddCriticalPair(critpair.New(heldY, event.LockAcquire(x), 11, false, "A.m2"))

	e := &Engine{
		Config:    Config{Deduplicate: true, ReportDeadlocks: true},
		Attrs:     fakeAttrs{},
		Classes:   fakeClasses{"A": {"A.m1", "A.m2"}},
		Summaries: fakeStore{"A.m1": m1Sum, "A.m2": m2Sum},
	}

	issues1 := e.Report("A.m1")
	issues2 := e.Report("A.m2")

	total := 0
	for _, is := range issues1 {
		if is.Kind == KindDeadlock {
			total++
		}
	}
	for _, is := range issues2 {
		if is.Kind == KindDeadlock {
			total++
		}
	}
	if total != 1 {
		t.Fatalf("want exactly one Deadlock issue across both directions, got %d", total)
	}
}

// Scenario 2: self-deadlock.
func TestScenarioSelfDeadlock(t *testing.T) {
	l := fieldLock("M", "lock")
	held := event.Empty.Push(event.Acquisition{Lock: l, ProcName: "M.m", Loc: 1})
	sum := astate.Bottom().AddCriticalPair(critpair.New(held, event.LockAcquire(l), 2, false, "M.m"))

	e := &Engine{
		Config:    Config{Deduplicate: true, ReportDeadlocks: true},
		Attrs:     fakeAttrs{},
		Classes:   fakeClasses{},
		Summaries: fakeStore{"M.m": sum},
	}

	issues := e.Report("M.m")
	if len(issues) != 1 || issues[0].Kind != KindDeadlock {
		t.Fatalf("want exactly one Deadlock issue, got %+v", issues)
	}
	if issues[0].Message == "" {
		t.Fatalf("self-deadlock message must not be empty")
	}
}

// Scenario 3: UI-thread block.
func TestScenarioUIThreadBlock(t *testing.T) {
	sum := astate.Bottom().AddCriticalPair(
		critpair.New(event.Empty, event.MayBlock("Thread.sleep", event.SeverityHigh), 1, true, "View.onClick"))

	e := &Engine{
		Config:    Config{Deduplicate: true, ReportDeadlocks: true},
		Attrs:     fakeAttrs{},
		Classes:   fakeClasses{},
		Summaries: fakeStore{"View.onClick": sum},
	}

	issues := e.Report("View.onClick")
	if len(issues) != 1 || issues[0].Kind != KindStarvation || issues[0].Severity != event.SeverityHigh {
		t.Fatalf("want one high-severity Starvation issue, got %+v", issues)
	}
}

// Scenario 4: cross-procedure UI block under lock.
func TestScenarioCrossProcedureUIBlock(t *testing.T) {
	l := fieldLock("View", "lock")

	onClickSum := astate.Bottom().AddCriticalPair(
		critpair.New(event.Empty, event.LockAcquire(l), 1, true, "View.onClick"))

	heldL := event.Empty.Push(event.Acquisition{Lock: l, ProcName: "View.bar", Loc: 5})
	barSum := astate.Bottom().AddCriticalPair(
		critpair.New(heldL, event.MayBlock("socket.read", event.SeverityMedium), 6, false, "View.bar"))

	e := &Engine{
		Config:    Config{Deduplicate: true, ReportDeadlocks: true},
		Attrs:     fakeAttrs{},
		Classes:   fakeClasses{"View": {"View.onClick", "View.bar"}},
		Summaries: fakeStore{"View.onClick": onClickSum, "View.bar": barSum},
	}

	issues := e.Report("View.onClick")
	var starvation []Issue
	for _, is := range issues {
		if is.Kind == KindStarvation {
			starvation = append(starvation, is)
		}
	}
	if len(starvation) != 1 {
		t.Fatalf("want one Starvation issue, got %d", len(starvation))
	}
	if len(starvation[0].Trace) < 2 {
		t.Fatalf("cross-procedure starvation should carry both traces, got %v", starvation[0].Trace)
	}
}

// Scenario 5: lockless violation.
func TestScenarioLocklessViolation(t *testing.T) {
	l := fieldLock("X", "mu")
	sum := astate.Bottom().AddCriticalPair(critpair.New(event.Empty, event.LockAcquire(l), 1, false, "X.m"))

	e := &Engine{
		Config:    Config{Deduplicate: true, ReportDeadlocks: true},
		Attrs:     fakeAttrs{lockless: map[string]bool{"X.m": true}},
		Classes:   fakeClasses{},
		Summaries: fakeStore{"X.m": sum},
	}

	issues := e.Report("X.m")
	found := false
	for _, is := range issues {
		if is.Kind == KindLocklessViolation {
			found = true
		}
	}
	if !found {
		t.Fatalf("want a LocklessViolation issue, got %+v", issues)
	}
}

// Scenario 6: deduplication.
func TestScenarioDeduplication(t *testing.T) {
	issues := []Issue{
		{Kind: KindDeadlock, Loc: 100, Trace: []string{"1", "2", "3"}},
		{Kind: KindDeadlock, Loc: 100, Trace: []string{"1", "2", "3", "4", "5"}},
	}
	e := &Engine{Config: Config{Deduplicate: true}}
	out := e.dedup(issues)
	if len(out) != 1 {
		t.Fatalf("want 1 issue after dedup, got %d", len(out))
	}
	if len(out[0].Trace) != 3 {
		t.Fatalf("dedup should keep the shorter trace (weight = -len), got len %d", len(out[0].Trace))
	}

	e2 := &Engine{Config: Config{Deduplicate: false}}
	out2 := e2.dedup(issues)
	if len(out2) != 2 {
		t.Fatalf("without dedup, both issues must be emitted, got %d", len(out2))
	}
}

func TestShouldReportSymmetryBreaking(t *testing.T) {
	a := fieldLock("Alpha", "x")
	b := fieldLock("Beta", "y")

	cp := critpair.New(event.Empty, event.LockAcquire(b), 1, false, "m1")
	cpOther := critpair.New(event.Empty, event.LockAcquire(a), 2, false, "m2")

	r1 := shouldReport(cp, cpOther, true)
	r2 := shouldReport(cpOther, cp, true)
	if r1 == r2 {
		t.Fatalf("exactly one direction should report for non-class-literal locks, got (%v, %v)", r1, r2)
	}
}

func TestShouldReportClassLockAlwaysReports(t *testing.T) {
	classLock := lockid.NewClassLock("Alpha")
	fieldL := fieldLock("Beta", "y")

	cp := critpair.New(event.Empty, event.LockAcquire(classLock), 1, false, "m1")
	cpOther := critpair.New(event.Empty, event.LockAcquire(fieldL), 2, false, "m2")

	if !shouldReport(cp, cpOther, true) || !shouldReport(cpOther, cp, true) {
		t.Fatalf("a class-lock pairing must report in both directions")
	}
}
