package ir

import (
	"go/token"

	"github.com/diego200052/lockpair/pkg/lockid"
)

// InstrKind discriminates the Instruction tagged variant: a
// plain assignment, a narrowing assumption introduced by a branch
// condition, an opaque metadata marker (annotations, source mappings), an
// indirect call through a function value/interface method, or a direct
// call to a statically known procedure.
type InstrKind int

const (
	InstrAssignment InstrKind = iota
	InstrAssumption
	InstrMetadata
	InstrIndirectCall
	InstrDirectCall
)

// Instruction is one step of a procedure's CFG. Only DirectCall/IndirectCall
// instructions carry a LockEffect; Assignment/Assumption/Metadata
// instructions exist so that the frontend can preserve full control flow
// and the classifiers (UIThreadClassifier, BlockingClassifier, ...) have
// somewhere to hang facts that are not lock effects (e.g. which branch
// condition narrows a try_lock result to true).
type Instruction struct {
	Kind InstrKind
	Loc  token.Pos

	// Callee is set for DirectCall (the statically resolved procedure name)
	// and may be empty for IndirectCall if the receiver's dynamic type
	// cannot be resolved (in which case the call is treated as identity
	// rather than erroring).
	Callee string

	// Effect is the classified LockEffect for this call, if any
	// (DirectCall/IndirectCall only).
	Effect LockEffect

	// Args holds the caller-space access path bound to each of the callee's
	// formal parameters, in parameter order (DirectCall/IndirectCall only).
	// Used by summary integration to rebase the callee's parameter-rooted
	// locks; an entry that could not be resolved to a caller-space path is
	// represented by a path whose root makes lockid.FromAccessPath fail, so
	// rebasing it safely drops the affected critical pair.
	Args []lockid.AccessPath

	// AssumeTrue/AssumeFalse-style narrowing: Assumption instructions record
	// which guard or try_lock result the branch condition narrows. Nothing
	// in this module sets or reads these fields: pkg/transfer applies
	// LockedIfTrue/GuardLockedIfTrue as identity.
	NarrowsGuard string
	NarrowsTrue  bool

	// Note carries an opaque annotation string for InstrMetadata
	// instructions (e.g. a parsed //lockpair:lockless directive).
	Note string
}

// CFG is the capability interface a procedure body exposes to the transfer
// function: enough to walk instructions in order without the transfer
// function needing to know anything about how the frontend represents
// control flow. Per the polymorphism-over-CFG design note, this is
// expressed as an interface rather than a concrete graph type so that
// pkg/gofront's go/ssa-backed CFG and any future non-Go frontend's CFG can
// both satisfy it.
type CFG interface {
	// Blocks returns the procedure's basic blocks in a stable, deterministic
	// order (e.g. reverse postorder) suitable for a worklist fixpoint.
	Blocks() []Block
	// Entry returns the entry block.
	Entry() Block
}

// Block is one basic block: a straight-line instruction sequence with a set
// of successor blocks.
type Block interface {
	ID() int
	Instructions() []Instruction
	Succs() []Block
	Preds() []Block
}
