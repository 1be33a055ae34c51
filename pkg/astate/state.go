// Package astate defines the abstract state the transfer function threads
// through a procedure's CFG — the held-lock stack, the critical pairs
// witnessed so far, the guard-variable bindings, and the on_ui_thread
// lattice value.
package astate

import (
	"github.com/diego200052/lockpair/pkg/critpair"
	"github.com/diego200052/lockpair/pkg/event"
)

// State is {held, critical_pairs, guards, on_ui_thread}. CriticalPairs is
// de-duplicated by critpair.Key.
type State struct {
	Held          event.Stack
	CriticalPairs map[critpair.Key]critpair.CriticalPair
	Guards        GuardMap
	OnUIThread    Tri
}

// Bottom is the initial state: no locks held, no pairs witnessed, no guards
// bound, and on_ui_thread at TriBottom. It is below every state on
// critical pairs and on_ui_thread; because held and guards join by
// intersection, Bottom().Leq(s) holds only for an s that holds no locks and
// binds no guards.
func Bottom() State {
	return State{
		CriticalPairs: map[critpair.Key]critpair.CriticalPair{},
		Guards:        GuardMap{},
		OnUIThread:    TriBottom,
	}
}

// AddCriticalPair returns a copy of s with cp recorded, deduplicated by its
// Key.
func (s State) AddCriticalPair(cp critpair.CriticalPair) State {
	out := s.clone()
	out.CriticalPairs[cp.Key()] = cp
	return out
}

func (s State) clone() State {
	cps := make(map[critpair.Key]critpair.CriticalPair, len(s.CriticalPairs))
	for k, v := range s.CriticalPairs {
		cps[k] = v
	}
	return State{
		Held:          s.Held,
		CriticalPairs: cps,
		Guards:        s.Guards.Clone(),
		OnUIThread:    s.OnUIThread,
	}
}

// WithHeld returns a copy of s with a new held stack.
func (s State) WithHeld(held event.Stack) State {
	out := s.clone()
	out.Held = held
	return out
}

// WithGuards returns a copy of s with a new guard map.
func (s State) WithGuards(g GuardMap) State {
	out := s.clone()
	out.Guards = g
	return out
}

// WithOnUIThread returns a copy of s with its on_ui_thread flag joined with
// v. on_ui_thread is monotonic: it only ever strengthens toward true
// within a single procedure's propagation, never weakens.
func (s State) WithOnUIThread(v Tri) State {
	out := s.clone()
	out.OnUIThread = out.OnUIThread.Join(v)
	return out
}

// Join computes the least upper bound of two states component-wise:
//   - held: set intersection (only locks held on every incoming path can be
//     relied on to still be held)
//   - critical_pairs: set union, deduplicated by Key
//   - guards: pointwise intersection (GuardMap.Join)
//   - on_ui_thread: lattice join (true joined with anything is true)
func (s State) Join(o State) State {
	held := event.Empty
	for _, a := range s.Held.Acquisitions() {
		if o.Held.Contains(a.Lock) {
			held = held.Push(a)
		}
	}

	cps := make(map[critpair.Key]critpair.CriticalPair, len(s.CriticalPairs)+len(o.CriticalPairs))
	for k, v := range s.CriticalPairs {
		cps[k] = v
	}
	for k, v := range o.CriticalPairs {
		cps[k] = v
	}

	return State{
		Held:          held,
		CriticalPairs: cps,
		Guards:        s.Guards.Join(o.Guards),
		OnUIThread:    s.OnUIThread.Join(o.OnUIThread),
	}
}

// Leq reports whether s ⊑ o in the state lattice. held is joined by
// intersection, so the join (an upper bound) has the *smaller* held set and
// a state with a larger held set sits lower: o's held set must be a subset
// of s's (everything o can rely on still being held, s can too).
// Every critical pair in s must appear in o, s's guards must be at least as
// permissive as o's, and s's on_ui_thread must be no more certain than o's.
func (s State) Leq(o State) bool {
	for _, a := range o.Held.Acquisitions() {
		if !s.Held.Contains(a.Lock) {
			return false
		}
	}
	for k := range s.CriticalPairs {
		if _, ok := o.CriticalPairs[k]; !ok {
			return false
		}
	}
	if !s.Guards.Leq(o.Guards) {
		return false
	}
	return s.OnUIThread.Leq(o.OnUIThread)
}

// Widen is join: the held/guard lattices are finite (bounded by the number
// of distinct locks/guards observed in a procedure), so iterating join to
// fixpoint already terminates without a separate widening operator — this
// is the one place the abstract domain itself must still guarantee
// termination, independent of whatever fixpoint engine drives it.
func (s State) Widen(o State) State { return s.Join(o) }
