// Package event defines the atomic abstract events the transfer function
// witnesses (LockAcquire, MayBlock, StrictModeCall) and the stack of
// currently held lock acquisitions with their trace anchors.
package event

import (
	"fmt"
	"go/token"

	"github.com/diego200052/lockpair/pkg/lockid"
)

// Severity classifies how bad a MayBlock event is.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Less orders severities from least to most severe, used by the report
// engine's dedup-at-sink weighting for Starvation issues.
func (s Severity) Less(o Severity) bool { return s < o }

// Kind discriminates the Event tagged variant.
type Kind int

const (
	KindLockAcquire Kind = iota
	KindMayBlock
	KindStrictModeCall
)

// Event is the tagged variant with exactly three Kinds. LockAcquire is the
// only kind that also appears in the held-acquisition stack, which is a
// property of KindLockAcquire rather than a separate Kind.
type Event struct {
	Kind Kind

	// Lock is set when Kind == KindLockAcquire.
	Lock lockid.Lock

	// Description and Severity are set when Kind == KindMayBlock or
	// Kind == KindStrictModeCall (Severity is meaningless for the latter).
	Description string
	Severity    Severity
}

func LockAcquire(l lockid.Lock) Event {
	return Event{Kind: KindLockAcquire, Lock: l}
}

func MayBlock(description string, severity Severity) Event {
	return Event{Kind: KindMayBlock, Description: description, Severity: severity}
}

func StrictModeCall(description string) Event {
	return Event{Kind: KindStrictModeCall, Description: description}
}

func (e Event) String() string {
	switch e.Kind {
	case KindLockAcquire:
		return fmt.Sprintf("LockAcquire(%s)", e.Lock)
	case KindMayBlock:
		return fmt.Sprintf("MayBlock(%s, %s)", e.Description, e.Severity)
	case KindStrictModeCall:
		return fmt.Sprintf("StrictModeCall(%s)", e.Description)
	default:
		return "Event(?)"
	}
}

// Equal reports structural equality, used for CriticalPair deduplication:
// critical-pair sets are de-duplicated by (acquisitions, event, loc).
func (e Event) Equal(o Event) bool {
	if e.Kind != o.Kind {
		return false
	}
	switch e.Kind {
	case KindLockAcquire:
		return e.Lock.Equal(o.Lock)
	case KindMayBlock:
		return e.Description == o.Description && e.Severity == o.Severity
	case KindStrictModeCall:
		return e.Description == o.Description
	default:
		return false
	}
}

// AnchorKind records whether an Acquisition was observed directly at a
// lock/unlock site or inherited via a callee summary.
type AnchorKind int

const (
	AnchorDirect AnchorKind = iota
	AnchorInherited
)

// Acquisition records where a lock was taken: which procedure, what source
// location, and whether it was a direct acquisition or one inherited
// through summary integration.
type Acquisition struct {
	Lock      lockid.Lock
	ProcName  string
	Loc       token.Pos
	Anchor    AnchorKind
	Exclusive bool // true for an exclusive/write acquisition, false for shared/read
}

func (a Acquisition) String() string {
	return fmt.Sprintf("%s@%s:%d", a.Lock, a.ProcName, a.Loc)
}

// Equal reports whether two acquisitions are the same witness: same lock,
// same procedure, same source location. Anchor is deliberately excluded —
// direct and inherited acquisitions of the same lock at the same site
// denote the same held-stack entry once rebased (see pkg/transfer's
// summary-integration logic).
func (a Acquisition) Equal(o Acquisition) bool {
	return a.Lock.Equal(o.Lock) && a.ProcName == o.ProcName && a.Loc == o.Loc
}
