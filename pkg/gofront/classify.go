package gofront

import (
	"go/types"

	"golang.org/x/tools/go/ssa"

	"github.com/diego200052/lockpair/pkg/ir"
	"github.com/diego200052/lockpair/pkg/lockid"
)

// classifyMutexCall recognizes a Lock/Unlock/RLock/RUnlock call against a
// sync.Mutex or sync.RWMutex-shaped receiver (either the mutex itself or a
// struct that embeds one). It returns ok=false for any call that isn't a
// recognized lock/unlock operation, leaving it to the caller to fall
// through to the pluggable classifiers for blocking/strict-mode/UI-thread
// calls.
func classifyMutexCall(common *ssa.CallCommon, owner string) (ir.LockEffect, bool) {
	if common.IsInvoke() {
		return ir.LockEffect{}, false
	}
	callee := common.StaticCallee()
	if callee == nil || !isLockMethod(callee.Name()) {
		return ir.LockEffect{}, false
	}

	recv := common.Args
	if len(recv) == 0 {
		return ir.LockEffect{}, false
	}
	receiver := recv[0]

	method := callee.Name()
	exclusive := isExclusive(method)

	if l, ok := lockFromMutexReceiver(receiver, method, owner); ok {
		return mutexEffect(method, l, exclusive), true
	}
	if l, ok := lockFromEmbeddedMutex(receiver, method, owner); ok {
		return mutexEffect(method, l, exclusive), true
	}
	return ir.LockEffect{}, false
}

func mutexEffect(method string, l lockid.Lock, exclusive bool) ir.LockEffect {
	if isTryLockMethod(method) {
		return ir.LockedIfTrue(l, exclusive)
	}
	if isLockAcquire(method) {
		return ir.Lock(l, exclusive)
	}
	return ir.Unlock(l)
}

// lockFromMutexReceiver handles the direct case: the call's receiver is
// itself a *sync.Mutex/*sync.RWMutex-typed FieldAddr (or parameter/global).
func lockFromMutexReceiver(receiver ssa.Value, method, owner string) (lockid.Lock, bool) {
	v := unwrapSSAValue(receiver)
	ptr, ok := v.Type().Underlying().(*types.Pointer)
	if !ok || !isMutexType(ptr.Elem()) {
		return lockid.Lock{}, false
	}
	if isRWLockMethod(method) && !isRWMutexType(ptr.Elem()) {
		return lockid.Lock{}, false
	}
	path, ok := resolvePath(v)
	if !ok {
		return lockid.Lock{}, false
	}
	return lockid.FromAccessPath(path, owner)
}

func isRWLockMethod(name string) bool {
	return name == "RLock" || name == "RUnlock" || name == "TryRLock"
}

// lockFromEmbeddedMutex handles (*S).Lock() where S embeds sync.Mutex or
// sync.RWMutex: the call's static callee is the promoted method, and the
// receiver is *S, not *sync.Mutex. Finds the embedded mutex field and
// builds a path through it.
func lockFromEmbeddedMutex(receiver ssa.Value, method, owner string) (lockid.Lock, bool) {
	v := unwrapSSAValue(receiver)
	ptr, ok := v.Type().Underlying().(*types.Pointer)
	if !ok {
		return lockid.Lock{}, false
	}
	st, ok := ptr.Elem().Underlying().(*types.Struct)
	if !ok {
		return lockid.Lock{}, false
	}
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Anonymous() || !isMutexType(f.Type()) {
			continue
		}
		if isRWLockMethod(method) && !isRWMutexType(f.Type()) {
			continue
		}
		base, ok := resolvePath(v)
		if !ok {
			return lockid.Lock{}, false
		}
		path := lockid.AccessPath{Root: base.Root, Steps: append(append([]lockid.Selector{}, base.Steps...), lockid.Selector{Field: f.Name()})}
		return lockid.FromAccessPath(path, owner)
	}
	return lockid.Lock{}, false
}

// Classifier implements ir.LockEffectClassifier against already-resolved
// access paths, for collaborators that only have string/path-level
// information (e.g. a cross-language reuse of the same interface) — the
// SSA-level classifyMutexCall above is what build.go actually calls, since
// it needs go/types facts classifyCall's narrower signature can't carry.
type Classifier struct{}

// ClassifyCall recognizes the well-known method-name shapes for a lock
// already reduced to a path (args[0]); anything else is NoEffect.
func (Classifier) ClassifyCall(proc string, callee string, args []lockid.AccessPath) (ir.LockEffect, error) {
	if len(args) == 0 {
		return ir.NoEffect(), nil
	}
	l, ok := lockid.FromAccessPath(args[0], "")
	if !ok {
		return ir.NoEffect(), nil
	}
	switch callee {
	case "Lock":
		return ir.Lock(l, true), nil
	case "RLock":
		return ir.Lock(l, false), nil
	case "Unlock":
		return ir.Unlock(l), nil
	case "RUnlock":
		return ir.Unlock(l), nil
	default:
		return ir.NoEffect(), nil
	}
}
