// Package report implements the report engine that scans each
// procedure's critical pairs, composes them with sibling procedures'
// summaries through shared lock-owner classes, deduplicates, and emits
// issues.
package report

import (
	"fmt"
	"go/token"

	"github.com/diego200052/lockpair/pkg/event"
)

// Kind discriminates the four issue kinds.
type Kind int

const (
	KindDeadlock Kind = iota
	KindStarvation
	KindStrictModeViolation
	KindLocklessViolation
)

func (k Kind) String() string {
	switch k {
	case KindDeadlock:
		return "Deadlock"
	case KindStarvation:
		return "Starvation"
	case KindStrictModeViolation:
		return "StrictModeViolation"
	case KindLocklessViolation:
		return "LocklessViolation"
	default:
		return "?"
	}
}

// Issue is one reported defect: procname, location, trace, and rendered
// message.
type Issue struct {
	Kind     Kind
	Severity event.Severity // meaningful for KindStarvation
	Proc     string
	Loc      token.Pos
	Trace    []string
	Message  string
}

// weight is the dedup-at-sink ordering key: larger wins. Deadlock and
// StrictModeViolation weigh by negated trace length (shorter traces win);
// Starvation weighs by severity.
func (i Issue) weight() int {
	switch i.Kind {
	case KindStarvation:
		return int(i.Severity)
	default:
		return -len(i.Trace)
	}
}

// Config is the explicit configuration record config flags enter the core
// through, rather than via ambient state.
type Config struct {
	Deduplicate     bool
	ReportDeadlocks bool
	Jobs            int
}

func selfDeadlockMessage(proc string, lockStr string, viaRecursion bool) string {
	msg := fmt.Sprintf("Potential self deadlock in %s: lock %s acquired twice.", proc, lockStr)
	if viaRecursion {
		msg += " (re-acquired via recursive call)"
	}
	return msg
}
