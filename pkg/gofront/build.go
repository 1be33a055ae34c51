package gofront

import (
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ssa"

	"github.com/diego200052/lockpair/pkg/ir"
	"github.com/diego200052/lockpair/pkg/lockid"
)

// unresolvedActual stands in for a call argument that didn't resolve to a
// caller-space access path (e.g. a freshly constructed value with no
// parameter/global root). Its RootClassLiteral kind isn't produced by
// resolvePath, so lockid.FromAccessPath always rejects it when substituted
// in for a callee's parameter-rooted lock — this is how an unbindable path
// ends up dropping the critical pair rather than guessing at one.
var unresolvedActual = lockid.AccessPath{Root: lockid.Root{Kind: lockid.RootClassLiteral}}

// FuncCFG implements ir.CFG over an ssa.Function's basic blocks.
type FuncCFG struct {
	entry  *block
	blocks []ir.Block
}

func (c *FuncCFG) Blocks() []ir.Block { return c.blocks }
func (c *FuncCFG) Entry() ir.Block    { return c.entry }

// block implements ir.Block directly atop an *ssa.BasicBlock's index and
// edges; its Instructions are the subset of the SSA block's instructions
// that carry a lock effect or opaque call (everything else is pure data
// flow the transfer function treats as identity, so preserving it would
// only add no-op steps to the fixpoint worklist).
type block struct {
	id     int
	instrs []ir.Instruction
	succs  []ir.Block
	preds  []ir.Block
}

func (b *block) ID() int                        { return b.id }
func (b *block) Instructions() []ir.Instruction { return b.instrs }
func (b *block) Succs() []ir.Block              { return b.succs }
func (b *block) Preds() []ir.Block              { return b.preds }

// Builder wires resolve.go/classify.go/blocking.go/annotations.go together
// to turn an ssa.Function into an ir.CFG.
type Builder struct {
	Annotations *Annotations
	Blocking    BlockingClassifier
	Strict      StrictModeClassifierImpl
}

// Build constructs the CFG for fn. owner is the Lock.Owner string stamped
// onto every lock resolved within fn — the declared type of fn's receiver,
// or "" for a free function.
func (bd *Builder) Build(fn *ssa.Function, owner string) *FuncCFG {
	proc := ProcName(fn)

	blocks := make([]*block, len(fn.Blocks))
	for i, bb := range fn.Blocks {
		blocks[i] = &block{id: bb.Index, instrs: bd.instructionsFor(bb, proc, owner)}
	}
	irBlocks := make([]ir.Block, len(blocks))
	for i, bb := range fn.Blocks {
		for _, s := range bb.Succs {
			blocks[i].succs = append(blocks[i].succs, blocks[s.Index])
		}
		for _, p := range bb.Preds {
			blocks[i].preds = append(blocks[i].preds, blocks[p.Index])
		}
		irBlocks[i] = blocks[i]
	}

	var entry *block
	if len(blocks) > 0 {
		entry = blocks[0]
	}
	return &FuncCFG{entry: entry, blocks: irBlocks}
}

func (bd *Builder) instructionsFor(bb *ssa.BasicBlock, proc, owner string) []ir.Instruction {
	var out []ir.Instruction
	for _, raw := range bb.Instrs {
		switch instr := raw.(type) {
		case *ssa.Call:
			out = append(out, bd.classifyCallInstr(instr.Common(), instr.Pos(), proc, owner))
		case *ssa.Go:
			out = append(out, bd.classifyGoInstr(instr, proc))
		case *ssa.Defer:
			out = append(out, bd.classifyCallInstr(instr.Common(), instr.Pos(), proc, owner))
		}
	}
	return out
}

func (bd *Builder) classifyGoInstr(goInstr *ssa.Go, proc string) ir.Instruction {
	// A goroutine launch runs independently of the launching procedure, so
	// its effects must not be folded into the launcher's own sequential
	// state the way a plain call's would be via summary integration: the
	// launched body is analyzed as its own procedure, and whether it
	// counts as "background" is a whole-procedure attribute computed by
	// UIThreadIndex, not a per-instruction one. SkipAnalysis keeps the
	// walker from treating this instruction as a candidate for that
	// integration.
	callee := ""
	if target := extractGoTarget(goInstr); target != nil {
		callee = ProcName(target)
	}
	return ir.Instruction{Kind: ir.InstrDirectCall, Loc: goInstr.Pos(), Callee: callee, Effect: ir.SkipAnalysis(callee)}
}

func (bd *Builder) classifyCallInstr(common *ssa.CallCommon, loc token.Pos, proc, owner string) ir.Instruction {
	if !common.IsInvoke() {
		if eff, ok := classifyMutexCall(common, owner); ok {
			return ir.Instruction{Kind: ir.InstrDirectCall, Loc: loc, Callee: calleeName(common), Effect: eff}
		}
	}

	callee := calleeName(common)

	if desc, ok := bd.Strict.ClassifyStrictMode(callee); ok {
		return ir.Instruction{Kind: ir.InstrDirectCall, Loc: loc, Callee: callee, Effect: ir.StrictModeViolation(desc)}
	}
	if desc, sev, ok := bd.Blocking.ClassifyBlocking(callee); ok {
		return ir.Instruction{Kind: ir.InstrDirectCall, Loc: loc, Callee: callee, Effect: ir.MayBlockCall(desc, sev)}
	}

	kind := ir.InstrDirectCall
	if common.IsInvoke() || (common.StaticCallee() == nil && callee == "") {
		kind = ir.InstrIndirectCall
	}
	// Everything else is either a plain call into another analyzed
	// procedure (to be resolved via summary integration by the walker) or
	// an unresolved indirect call (treated as identity): either way, Args
	// carries the caller-space actuals a summary integration would need.
	return ir.Instruction{Kind: kind, Loc: loc, Callee: callee, Effect: ir.NoEffect(), Args: resolveActuals(common)}
}

func resolveActuals(common *ssa.CallCommon) []lockid.AccessPath {
	args := common.Args
	out := make([]lockid.AccessPath, len(args))
	for i, a := range args {
		if p, ok := resolvePath(a); ok {
			out[i] = p
		} else {
			out[i] = unresolvedActual
		}
	}
	return out
}

// calleeName renders a qualified callee name matching the shape
// blockingCalls/strictModeCalls are keyed by: "(*pkg.Type).Method" for a
// resolved method, "pkg.Func" for a free function, "" if the callee cannot
// be statically resolved (interface/closure dispatch).
func calleeName(common *ssa.CallCommon) string {
	if common.IsInvoke() {
		recv := common.Value.Type()
		return "(" + recv.String() + ")." + common.Method.Name()
	}
	if callee := common.StaticCallee(); callee != nil {
		return ProcName(callee)
	}
	return ""
}

// ownerOf returns the declared type name of fn's receiver, or "" for a free
// function — used as the Lock.Owner stamped by classifyMutexCall.
func ownerOf(fn *ssa.Function) string {
	if fn.Signature.Recv() == nil {
		return ""
	}
	t := fn.Signature.Recv().Type()
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	if named, ok := t.(*types.Named); ok {
		return named.Obj().Name()
	}
	return t.String()
}
