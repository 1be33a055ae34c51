package event

import "github.com/diego200052/lockpair/pkg/lockid"

// Stack is the ordered set of currently held Acquisitions: ordered by lock
// order, with duplicates by lock forbidden. It is immutable — Push/Pop
// return new Stacks — so that CriticalPairs can cheaply capture a
// structural clone, not an alias, of the held set at the moment an event
// was witnessed.
type Stack struct {
	// acquisitions is kept sorted by Acquisition.Lock.Less, duplicate-free,
	// for deterministic iteration/equality.
	acquisitions []Acquisition
}

// Empty is the zero Stack (bottom's held component).
var Empty = Stack{}

// Acquisitions returns the held acquisitions in lock order. The returned
// slice must not be mutated by the caller.
func (s Stack) Acquisitions() []Acquisition { return s.acquisitions }

// Len reports how many locks are held.
func (s Stack) Len() int { return len(s.acquisitions) }

// Find returns the Acquisition holding lock l, if any (used by the transfer
// function to detect self-deadlock: re-acquiring an already-held lock).
func (s Stack) Find(l lockid.Lock) (Acquisition, bool) {
	for _, a := range s.acquisitions {
		if a.Lock.Equal(l) {
			return a, true
		}
	}
	return Acquisition{}, false
}

// Contains reports whether lock l is held, by lock identity (ignoring
// which procedure/site acquired it) — the form the lock-order-inversion
// check and guard-map checks need.
func (s Stack) Contains(l lockid.Lock) bool {
	_, ok := s.Find(l)
	return ok
}

// Push returns a new Stack with a inserted in lock order. If a's lock is
// already held, Push is a no-op on the stack shape — a second physical
// entry for the same lock is forbidden — but the transfer function still
// emits the LockAcquire CriticalPair in that case; the held stack itself
// just never duplicates.
func (s Stack) Push(a Acquisition) Stack {
	for _, existing := range s.acquisitions {
		if existing.Lock.Equal(a.Lock) {
			return s
		}
	}
	out := make([]Acquisition, 0, len(s.acquisitions)+1)
	inserted := false
	for _, existing := range s.acquisitions {
		if !inserted && a.Lock.Less(existing.Lock) {
			out = append(out, a)
			inserted = true
		}
		out = append(out, existing)
	}
	if !inserted {
		out = append(out, a)
	}
	return Stack{acquisitions: out}
}

// Pop returns a new Stack with any acquisition of lock l removed. Unmatched
// pops are a no-op — unmatched unlocks are silently ignored.
func (s Stack) Pop(l lockid.Lock) Stack {
	out := make([]Acquisition, 0, len(s.acquisitions))
	changed := false
	for _, existing := range s.acquisitions {
		if existing.Lock.Equal(l) {
			changed = true
			continue
		}
		out = append(out, existing)
	}
	if !changed {
		return s
	}
	return Stack{acquisitions: out}
}

// Clone returns a structural copy of the held set, used when a CriticalPair
// captures the current held set as a structural clone rather than an
// alias. Because Stack is immutable and never mutated in place, Clone is
// the identity — its name documents intent at call sites.
func (s Stack) Clone() Stack { return s }

// Prepend returns a new Stack with other's acquisitions placed ahead of
// s's, used by summary integration to prepend a caller's held set onto a
// callee's critical-pair acquisitions. The result is re-sorted and
// re-deduplicated by lock identity, with s's own acquisitions taking
// priority on a collision since the caller's concrete acquisition is the
// more specific witness.
func (s Stack) Prepend(other Stack) Stack {
	out := Empty
	for _, a := range s.acquisitions {
		out = out.Push(a)
	}
	for _, a := range other.acquisitions {
		out = out.Push(a)
	}
	return out
}

// Equal reports whether two stacks hold the same locks via the same
// acquisitions, in the same order.
func (s Stack) Equal(o Stack) bool {
	if len(s.acquisitions) != len(o.acquisitions) {
		return false
	}
	for i := range s.acquisitions {
		if !s.acquisitions[i].Equal(o.acquisitions[i]) {
			return false
		}
	}
	return true
}
