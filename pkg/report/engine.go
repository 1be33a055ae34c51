package report

import (
	"sort"
	"strings"

	"github.com/diego200052/lockpair/pkg/astate"
	"github.com/diego200052/lockpair/pkg/critpair"
	"github.com/diego200052/lockpair/pkg/event"
)

// ProcAttrs resolves the per-procedure facts the report engine needs beyond
// what a summary carries: lockless annotation, constructor-ness, and
// reportability. Private procedures, class initializers, and
// auto-generated methods are not reported on.
type ProcAttrs interface {
	IsLockless(proc string) bool
	IsConstructor(proc string) bool
	IsReportable(proc string) bool
}

// ClassIndex enumerates the declared-plus-inherited methods of a lock's
// owner class, used for the cross-procedure composition step.
type ClassIndex interface {
	MethodsOf(owner string) []string
}

// SummaryLookup is the read side of a summary store, scoped to just what
// the report engine needs.
type SummaryLookup interface {
	Get(proc string) (astate.State, bool)
}

// Engine is the report engine.
type Engine struct {
	Config    Config
	Attrs     ProcAttrs
	Classes   ClassIndex
	Summaries SummaryLookup
}

// Report scans proc's summary and emits every issue kind this engine
// names, deduplicated at the sink per Config.
func (e *Engine) Report(proc string) []Issue {
	sum, ok := e.Summaries.Get(proc)
	if !ok {
		return nil
	}

	var issues []Issue
	reportable := e.Attrs.IsReportable(proc)

	for _, cp := range sum.CriticalPairs {
		if cp.Event.Kind == event.KindLockAcquire {
			if reportable && e.Attrs.IsLockless(proc) {
				issues = append(issues, e.locklessViolation(proc, cp))
			}
			if reportable && critpair.SelfDeadlock(cp.Acquisitions, cp.Event.Lock) {
				issues = append(issues, e.selfDeadlock(proc, cp))
			}
			if reportable {
				issues = append(issues, e.crossProcedure(proc, cp)...)
			}
			continue
		}

		if !reportable || !cp.ThreadFlag || e.Attrs.IsConstructor(proc) {
			continue
		}
		switch cp.Event.Kind {
		case event.KindMayBlock:
			issues = append(issues, e.starvation(proc, cp, cp.Event.Severity, nil))
		case event.KindStrictModeCall:
			issues = append(issues, e.strictMode(proc, cp))
		}
	}

	return e.dedup(issues)
}

func (e *Engine) locklessViolation(proc string, cp critpair.CriticalPair) Issue {
	trace := critpair.MakeTrace(cp, "lockless violation", true)
	return Issue{
		Kind:    KindLocklessViolation,
		Proc:    proc,
		Loc:     critpair.EarliestLockOrCallLoc(cp, proc),
		Trace:   trace,
		Message: "Method annotated lockless acquires " + cp.Event.Lock.String() + ".",
	}
}

func (e *Engine) selfDeadlock(proc string, cp critpair.CriticalPair) Issue {
	viaRecursion := false
	for _, f := range cp.Trace {
		if f.Callee == proc {
			viaRecursion = true
			break
		}
	}
	trace := critpair.MakeTrace(cp, "self deadlock", true)
	return Issue{
		Kind:    KindDeadlock,
		Proc:    proc,
		Loc:     critpair.EarliestLockOrCallLoc(cp, proc),
		Trace:   trace,
		Message: selfDeadlockMessage(proc, cp.Event.Lock.String(), viaRecursion),
	}
}

func (e *Engine) starvation(proc string, cp critpair.CriticalPair, sev event.Severity, other *critpair.CriticalPair) Issue {
	trace := critpair.MakeTrace(cp, "blocks on UI thread", true)
	if other != nil {
		trace = append(trace, critpair.MakeTrace(*other, "while holding the lock", true)...)
	}
	return Issue{
		Kind:     KindStarvation,
		Severity: sev,
		Proc:     proc,
		Loc:      critpair.EarliestLockOrCallLoc(cp, proc),
		Trace:    trace,
		Message:  "UI thread may block: " + cp.Event.Description,
	}
}

func (e *Engine) strictMode(proc string, cp critpair.CriticalPair) Issue {
	trace := critpair.MakeTrace(cp, "strict mode violation", true)
	return Issue{
		Kind:    KindStrictModeViolation,
		Proc:    proc,
		Loc:     critpair.EarliestLockOrCallLoc(cp, proc),
		Trace:   trace,
		Message: "Strict Mode violation on UI thread: " + cp.Event.Description,
	}
}

// crossProcedure composes cp (a LockAcquire) with sibling methods of its
// lock's owner class.
func (e *Engine) crossProcedure(proc string, cp critpair.CriticalPair) []Issue {
	owner := cp.Event.Lock.TypeString()
	if owner == "" {
		return nil
	}

	var issues []Issue
	for _, q := range e.Classes.MethodsOf(owner) {
		if !e.Attrs.IsReportable(q) {
			continue
		}
		sumQ, ok := e.Summaries.Get(q)
		if !ok {
			// MissingSummary: treat as bottom (no contribution).
			continue
		}
		for _, cpq := range sumQ.CriticalPairs {
			if !critpair.CanRunInParallel(cp, cpq) {
				continue
			}

			if cpq.Event.Kind == event.KindMayBlock && cp.ThreadFlag &&
				cpq.Acquisitions.Contains(cp.Event.Lock) && !e.Attrs.IsConstructor(proc) {
				other := cpq
				issues = append(issues, e.starvation(proc, cp, cpq.Event.Severity, &other))
			}

			if cpq.Event.Kind == event.KindLockAcquire && critpair.MayDeadlock(cp, cpq) {
				if !e.Config.ReportDeadlocks {
					continue
				}
				if shouldReport(cp, cpq, e.Config.Deduplicate) {
					issues = append(issues, e.deadlock(proc, cp, q, cpq))
				}
			}
		}
	}
	return issues
}

func (e *Engine) deadlock(proc string, cp critpair.CriticalPair, other string, cpOther critpair.CriticalPair) Issue {
	trace := critpair.MakeTrace(cp, "acquires", true)
	trace = append(trace, critpair.MakeTrace(cpOther, "while "+other+" acquires in opposing order", true)...)
	return Issue{
		Kind:    KindDeadlock,
		Proc:    proc,
		Loc:     critpair.EarliestLockOrCallLoc(cp, proc),
		Trace:   trace,
		Message: "Potential deadlock between " + proc + " and " + other + ".",
	}
}

// shouldReport is the symmetry-breaking predicate: class-lock roots always
// report since the reverse pairing is structurally inaccessible; otherwise
// compare owner-type strings, then source location, to pick exactly one
// direction. If dedup is disabled, both directions report.
func shouldReport(cp, cpOther critpair.CriticalPair, dedup bool) bool {
	if !dedup {
		return true
	}
	if cp.Event.Lock.IsClassLock() || cpOther.Event.Lock.IsClassLock() {
		return true
	}
	c := strings.Compare(cp.Event.Lock.TypeString(), cpOther.Event.Lock.TypeString())
	if c < 0 {
		return true
	}
	if c == 0 && cp.Loc < cpOther.Loc {
		return true
	}
	return false
}

type dedupKey struct {
	loc  int
	kind Kind
}

// dedup implements dedup-at-sink: reports are grouped by (location, kind);
// when Config.Deduplicate is set, only the largest-weight report in each
// group survives, with its message suffixed to note the suppression.
func (e *Engine) dedup(issues []Issue) []Issue {
	if !e.Config.Deduplicate {
		return issues
	}

	groups := map[dedupKey][]Issue{}
	var order []dedupKey
	for _, is := range issues {
		k := dedupKey{loc: int(is.Loc), kind: is.Kind}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], is)
	}

	out := make([]Issue, 0, len(order))
	for _, k := range order {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool {
			wi, wj := group[i].weight(), group[j].weight()
			if wi != wj {
				return wi > wj
			}
			if group[i].Message != group[j].Message {
				return group[i].Message < group[j].Message
			}
			return strings.Join(group[i].Trace, "\n") < strings.Join(group[j].Trace, "\n")
		})
		winner := group[0]
		if len(group) > 1 {
			winner.Message += " (additional reports on this line were suppressed)"
		}
		out = append(out, winner)
	}
	return out
}
