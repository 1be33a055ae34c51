// Package transfer implements the per-instruction transfer function and
// cross-procedure summary integration.
package transfer

import (
	"go/token"

	"github.com/diego200052/lockpair/pkg/astate"
	"github.com/diego200052/lockpair/pkg/critpair"
	"github.com/diego200052/lockpair/pkg/event"
	"github.com/diego200052/lockpair/pkg/ir"
	"github.com/diego200052/lockpair/pkg/lockid"
)

// Step applies a single instruction's effect to state, returning the
// successor state. proc is the enclosing procedure's name,
// used to stamp new Acquisitions and CriticalPairs. onUIThread reflects
// whatever the UIThreadClassifier has already determined for proc.
func Step(state astate.State, instr ir.Instruction, proc string, onUIThread bool) (astate.State, error) {
	uiFlag := astate.TriUnknown
	if onUIThread {
		uiFlag = astate.TriTrue
	}
	state = state.WithOnUIThread(uiFlag)

	switch instr.Kind {
	case ir.InstrDirectCall, ir.InstrIndirectCall:
		return stepCall(state, instr, proc, onUIThread), nil
	default:
		return state, nil
	}
}

func stepCall(state astate.State, instr ir.Instruction, proc string, onUIThread bool) astate.State {
	eff := instr.Effect
	switch eff.Kind {
	case ir.EffectLock:
		return acquireLock(state, eff.Lock, eff.Exclusive, instr.Loc, proc, onUIThread)

	case ir.EffectUnlock:
		return state.WithHeld(state.Held.Pop(eff.Lock))

	case ir.EffectGuardConstruct, ir.EffectGuardLock:
		next := bindGuard(state, eff.Guard, eff.GuardLock, true)
		return acquireLock(next, eff.GuardLock, eff.Exclusive, instr.Loc, proc, onUIThread)

	case ir.EffectGuardUnlock:
		g, ok := state.Guards[eff.Guard]
		if !ok {
			// Guard binding unresolved: drop silently per the
			// UnresolvedLockError policy.
			return state
		}
		next := bindGuard(state, eff.Guard, g.Bound, false)
		return next.WithHeld(next.Held.Pop(g.Bound))

	case ir.EffectGuardDestroy:
		g, ok := state.Guards[eff.Guard]
		guards := state.Guards.Clone()
		delete(guards, eff.Guard)
		next := state.WithGuards(guards)
		if ok && g.Locked {
			next = next.WithHeld(next.Held.Pop(g.Bound))
		}
		return next

	case ir.EffectLockedIfTrue, ir.EffectGuardLockedIfTrue:
		// Identity: no unconditional effect. Whether the lock ends up held
		// depends on a branch not modeled at this instruction, so a
		// try_lock-style call contributes nothing on its own.
		return state

	case ir.EffectNoEffect:
		return stepNoEffect(state, eff, instr, proc, onUIThread)

	default:
		return state
	}
}

func bindGuard(state astate.State, guard string, l lockid.Lock, locked bool) astate.State {
	guards := state.Guards.Clone()
	guards[guard] = astate.GuardState{Bound: l, Locked: locked}
	return state.WithGuards(guards)
}

// acquireLock pushes l onto the held stack and, whether or not it was
// already held, emits the LockAcquire critical pair — if the lock is
// already held, the event still fires; this is how self-deadlock is
// detected.
func acquireLock(state astate.State, l lockid.Lock, exclusive bool, loc token.Pos, proc string, onUIThread bool) astate.State {
	state = emitLockAcquire(state, l, loc, proc, onUIThread)
	return state.WithHeld(state.Held.Push(event.Acquisition{
		Lock:      l,
		ProcName:  proc,
		Loc:       loc,
		Anchor:    event.AnchorDirect,
		Exclusive: exclusive,
	}))
}

func emitLockAcquire(state astate.State, l lockid.Lock, loc token.Pos, proc string, onUIThread bool) astate.State {
	cp := critpair.New(state.Held, event.LockAcquire(l), loc, onUIThread, proc)
	return state.AddCriticalPair(cp)
}

func stepNoEffect(state astate.State, eff ir.LockEffect, instr ir.Instruction, proc string, onUIThread bool) astate.State {
	switch eff.NoEffect {
	case ir.NoEffectMayBlockCall:
		ev := event.MayBlock(eff.Description, eff.Severity)
		cp := critpair.New(state.Held, ev, instr.Loc, onUIThread, proc)
		return state.AddCriticalPair(cp)

	case ir.NoEffectStrictModeViolation:
		ev := event.StrictModeCall(eff.Description)
		cp := critpair.New(state.Held, ev, instr.Loc, onUIThread, proc)
		return state.AddCriticalPair(cp)

	default:
		return state
	}
}

// IsSelfDeadlock reports whether acquiring l while held is already held in
// state denotes a self-deadlock — a degenerate single-thread case,
// reportable regardless of CanRunInParallel reasoning.
func IsSelfDeadlock(state astate.State, l lockid.Lock) bool {
	return critpair.SelfDeadlock(state.Held, l)
}
