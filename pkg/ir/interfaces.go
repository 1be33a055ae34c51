package ir

import (
	"github.com/diego200052/lockpair/pkg/astate"
	"github.com/diego200052/lockpair/pkg/event"
	"github.com/diego200052/lockpair/pkg/lockid"
)

// LockEffectClassifier maps a call instruction to its LockEffect. A
// frontend implements this against its own notion of "call a method on a
// mutex-shaped receiver" (pkg/gofront's implementation recognizes
// sync.Mutex/sync.RWMutex method calls via SSA receiver types).
type LockEffectClassifier interface {
	ClassifyCall(proc string, callee string, args []lockid.AccessPath) (LockEffect, error)
}

// UIThreadClassifier reports whether a procedure is known to run on the UI
// thread: anything not reachable from a goroutine/background entry point
// is on the UI thread.
type UIThreadClassifier interface {
	IsUIThreadProc(proc string) bool
}

// BlockingClassifier reports whether a call is a may-block operation (I/O,
// sleep, condition-variable/WaitGroup wait, ...) and, if so, a description
// suitable for diagnostics plus how severe blocking on it is.
type BlockingClassifier interface {
	ClassifyBlocking(callee string) (description string, severity event.Severity, mayBlock bool)
}

// StrictModeClassifier reports whether a call is a disk/network operation
// disallowed on the UI thread under Strict-Mode-style policies.
type StrictModeClassifier interface {
	ClassifyStrictMode(callee string) (description string, violates bool)
}

// LocklessClassifier resolves per-procedure annotation directives (the
// //lockpair:lockless family) that mark a procedure as one that must not
// acquire any lock.
type LocklessClassifier interface {
	IsLockless(proc string) bool
}

// ProcAttrResolver aggregates the per-procedure classifiers a transfer
// function needs that are not per-instruction.
type ProcAttrResolver interface {
	UIThreadClassifier
	LocklessClassifier
}

// TypeEnv resolves a value's declared/dynamic type, used to build Lock
// Owner strings and to resolve IndirectCall targets where possible.
type TypeEnv interface {
	TypeOf(proc string, v lockid.AccessPath) string
	ResolveIndirectCall(proc string, receiverType string, method string) (callee string, ok bool)
}

// SummaryStore is the read/write contract a transfer function and
// scheduler use to publish and consume per-procedure summaries: the
// final, joined exit state of a procedure's analysis. It is satisfied by
// pkg/summary's in-memory store; a distributed build could back it with
// persistent storage using the same contract.
type SummaryStore interface {
	Get(proc string) (astate.State, bool)
	Put(proc string, s astate.State)
}

// IssueLog receives ModelingGap diagnostics so they can be surfaced without
// aborting the enclosing procedure's analysis: log and continue.
type IssueLog interface {
	LogModelingGap(*ModelingGapError)
}
