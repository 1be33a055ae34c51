package astate

import "github.com/diego200052/lockpair/pkg/lockid"

// GuardState describes what an RAII-style lock guard (e.g. a
// std::lock_guard/unique_lock analogue) currently refers to: the lock it
// was constructed against and whether it is presently holding it. A guard
// variable moves through GuardConstruct -> GuardLock/already-locked ->
// GuardUnlock -> GuardDestroy over its lifetime.
type GuardState struct {
	Bound  lockid.Lock
	Locked bool
}

func (g GuardState) Equal(o GuardState) bool {
	return g.Bound.Equal(o.Bound) && g.Locked == o.Locked
}

// GuardMap is Guards: a map from guard-variable access path (by Key) to its
// current GuardState, joined pointwise by intersection. A guard entry
// present in only one predecessor, or disagreeing between predecessors,
// does not survive the join: a guard whose fate is unknown on some path
// can no longer be trusted to denote a specific lock.
type GuardMap map[string]GuardState

func (m GuardMap) Clone() GuardMap {
	out := make(GuardMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Join intersects two guard maps: an entry survives only if both maps agree
// on it exactly.
func (m GuardMap) Join(o GuardMap) GuardMap {
	out := make(GuardMap)
	for k, v := range m {
		if ov, ok := o[k]; ok && v.Equal(ov) {
			out[k] = v
		}
	}
	return out
}

// Leq reports whether m ⊑ o. Join keeps only the entries both maps agree
// on, so a map with more entries sits lower in the order: Leq holds when
// every entry of o also appears, identically, in m.
func (m GuardMap) Leq(o GuardMap) bool {
	for k, v := range o {
		mv, ok := m[k]
		if !ok || !mv.Equal(v) {
			return false
		}
	}
	return true
}

func (m GuardMap) Equal(o GuardMap) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		if ov, ok := o[k]; !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
