package report

import (
	"go/token"
	"sort"

	"github.com/diego200052/lockpair/pkg/astate"
	"github.com/diego200052/lockpair/pkg/event"
	"github.com/diego200052/lockpair/pkg/lockid"
)

// LockOrderCycles is a defense-in-depth check alongside the pairwise
// may_deadlock comparison: it builds a lock-order graph from a single
// summary's LockAcquire critical pairs (an edge A -> B when B is acquired
// while A is held) and reports a cycle when that graph alone already
// contains one, which a purely pairwise comparison across two critical
// pairs cannot see if the whole cycle is witnessed within one procedure's
// summary. No CanRunInParallel or symmetry-breaking filter is applied:
// MayDeadlock never pairs two critical pairs of the same procedure, so the
// cycles reported here are ones the pairwise check does not report. A
// one-lock cycle (re-acquisition) is left to the self-deadlock check.
func LockOrderCycles(proc string, sum astate.State) []Issue {
	edges := map[string][]lockid.Lock{}
	nodes := map[string]lockid.Lock{}
	firstLoc := map[string]token.Pos{}
	for _, cp := range sum.CriticalPairs {
		if cp.Event.Kind != event.KindLockAcquire {
			continue
		}
		for _, a := range cp.Acquisitions.Acquisitions() {
			k := a.Lock.Key()
			nodes[k] = a.Lock
			edges[k] = appendIfMissing(edges[k], cp.Event.Lock)
			if prev, ok := firstLoc[k]; !ok || cp.Loc < prev {
				firstLoc[k] = cp.Loc
			}
		}
	}

	// Every node in a cycle yields the same cycle under a different
	// rotation, and map iteration over edges visits nodes in an arbitrary
	// order: collect one entry per canonical key and keep the
	// lowest-Loc candidate so the result does not depend on iteration
	// order (P5: issues are a function of the summary alone).
	type candidate struct {
		cyc []lockid.Lock
		loc token.Pos
	}
	seen := map[string]candidate{}
	for k, start := range nodes {
		if cyc, ok := findCycle(start, edges); ok {
			cyc = canonicalRotation(cyc)
			key := cycleKey(cyc)
			loc := firstLoc[k]
			if prev, ok := seen[key]; !ok || loc < prev.loc {
				seen[key] = candidate{cyc: cyc, loc: loc}
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	issues := make([]Issue, 0, len(keys))
	for _, k := range keys {
		c := seen[k]
		issues = append(issues, cycleIssue(proc, c.cyc, c.loc))
	}
	return issues
}

func appendIfMissing(locks []lockid.Lock, l lockid.Lock) []lockid.Lock {
	for _, existing := range locks {
		if existing.Equal(l) {
			return locks
		}
	}
	return append(locks, l)
}

func findCycle(start lockid.Lock, edges map[string][]lockid.Lock) ([]lockid.Lock, bool) {
	var path []lockid.Lock
	visited := map[string]bool{}

	var dfs func(cur lockid.Lock) bool
	dfs = func(cur lockid.Lock) bool {
		path = append(path, cur)
		visited[cur.String()] = true
		for _, next := range edges[cur.Key()] {
			if next.Equal(start) && len(path) > 1 {
				return true
			}
			if visited[next.String()] {
				continue
			}
			if dfs(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if dfs(start) {
		return path, true
	}
	return nil, false
}

// canonicalRotation rotates cyc to start at its lexicographically smallest
// lock, so the same cycle walked from any of its nodes (findCycle is called
// once per node in the graph) produces an identical slice.
func canonicalRotation(cyc []lockid.Lock) []lockid.Lock {
	if len(cyc) == 0 {
		return cyc
	}
	minIdx := 0
	for i, l := range cyc {
		if l.String() < cyc[minIdx].String() {
			minIdx = i
		}
	}
	out := make([]lockid.Lock, len(cyc))
	for i := range cyc {
		out[i] = cyc[(minIdx+i)%len(cyc)]
	}
	return out
}

func cycleKey(cyc []lockid.Lock) string {
	s := ""
	for _, l := range cyc {
		s += l.String() + ">"
	}
	return s
}

func cycleIssue(proc string, cyc []lockid.Lock, loc token.Pos) Issue {
	trace := make([]string, 0, len(cyc))
	for _, l := range cyc {
		trace = append(trace, "acquires "+l.String())
	}
	return Issue{
		Kind:    KindDeadlock,
		Proc:    proc,
		Loc:     loc,
		Trace:   trace,
		Message: "Potential lock-order cycle within " + proc + ".",
	}
}
