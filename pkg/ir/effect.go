package ir

import (
	"github.com/diego200052/lockpair/pkg/event"
	"github.com/diego200052/lockpair/pkg/lockid"
)

// EffectKind discriminates the LockEffect tagged variant.
type EffectKind int

const (
	EffectLock EffectKind = iota
	EffectUnlock
	EffectGuardConstruct
	EffectGuardLock
	EffectGuardUnlock
	EffectGuardDestroy
	EffectLockedIfTrue      // try_lock-style: lock is held only on the true branch of a following conditional
	EffectGuardLockedIfTrue // same, but through an RAII guard
	EffectNoEffect
)

// NoEffectModel refines EffectNoEffect into the specific reasons an
// instruction carries no lock effect: an ordinary call wrapped
// in a synchronized helper that the classifier already accounted for at the
// call site, a UI-thread entry-point marker, a Strict-Mode-violating call, a
// call that may block the calling thread, or a callee explicitly opted out
// of analysis.
type NoEffectModel int

const (
	NoEffectPlain NoEffectModel = iota
	NoEffectSynchronizedWrapper
	NoEffectUIThreadMarker
	NoEffectStrictModeViolation
	NoEffectMayBlockCall
	NoEffectSkipAnalysis
)

// LockEffect is the classified effect a single instruction has on lock
// state, guard bindings, or the diagnostics the transfer function should
// emit.
type LockEffect struct {
	Kind EffectKind

	// Lock is meaningful for EffectLock, EffectUnlock, and EffectLockedIfTrue.
	Lock lockid.Lock

	// Guard and GuardLock are meaningful for the Guard* kinds: Guard
	// identifies the guard variable (by access path string), GuardLock is
	// the lock it is bound to (meaningful for GuardConstruct/GuardLock/
	// GuardLockedIfTrue).
	Guard     string
	GuardLock lockid.Lock

	Exclusive bool // true for an exclusive/write acquisition

	// NoEffect submodels the EffectNoEffect case.
	NoEffect      NoEffectModel
	Description   string         // for MayBlockCall/StrictModeViolation: human-readable call description
	Severity      event.Severity // for MayBlockCall only
	SkippedCallee string         // for NoEffectSkipAnalysis
}

func Lock(l lockid.Lock, exclusive bool) LockEffect {
	return LockEffect{Kind: EffectLock, Lock: l, Exclusive: exclusive}
}

func Unlock(l lockid.Lock) LockEffect {
	return LockEffect{Kind: EffectUnlock, Lock: l}
}

func GuardConstruct(guard string, l lockid.Lock, exclusive bool) LockEffect {
	return LockEffect{Kind: EffectGuardConstruct, Guard: guard, GuardLock: l, Exclusive: exclusive}
}

func GuardLock(guard string, l lockid.Lock, exclusive bool) LockEffect {
	return LockEffect{Kind: EffectGuardLock, Guard: guard, GuardLock: l, Exclusive: exclusive}
}

func GuardUnlock(guard string) LockEffect {
	return LockEffect{Kind: EffectGuardUnlock, Guard: guard}
}

func GuardDestroy(guard string) LockEffect {
	return LockEffect{Kind: EffectGuardDestroy, Guard: guard}
}

func LockedIfTrue(l lockid.Lock, exclusive bool) LockEffect {
	return LockEffect{Kind: EffectLockedIfTrue, Lock: l, Exclusive: exclusive}
}

func GuardLockedIfTrue(guard string, l lockid.Lock, exclusive bool) LockEffect {
	return LockEffect{Kind: EffectGuardLockedIfTrue, Guard: guard, GuardLock: l, Exclusive: exclusive}
}

func NoEffect() LockEffect { return LockEffect{Kind: EffectNoEffect} }

func SynchronizedWrapper() LockEffect {
	return LockEffect{Kind: EffectNoEffect, NoEffect: NoEffectSynchronizedWrapper}
}

func UIThreadMarker() LockEffect {
	return LockEffect{Kind: EffectNoEffect, NoEffect: NoEffectUIThreadMarker}
}

func StrictModeViolation(description string) LockEffect {
	return LockEffect{Kind: EffectNoEffect, NoEffect: NoEffectStrictModeViolation, Description: description}
}

func MayBlockCall(description string, severity event.Severity) LockEffect {
	return LockEffect{Kind: EffectNoEffect, NoEffect: NoEffectMayBlockCall, Description: description, Severity: severity}
}

func SkipAnalysis(callee string) LockEffect {
	return LockEffect{Kind: EffectNoEffect, NoEffect: NoEffectSkipAnalysis, SkippedCallee: callee}
}
