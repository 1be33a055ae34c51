package gofront

import (
	"github.com/diego200052/lockpair/pkg/astate"
	"github.com/diego200052/lockpair/pkg/critpair"
	"github.com/diego200052/lockpair/pkg/ir"
	"github.com/diego200052/lockpair/pkg/transfer"
)

// walker drives a single procedure's CFG to a fixpoint with a recursive
// walkBlock: entry states are memoized per block and a re-visit only
// continues once the merged entry state still differs from what was
// already recorded, which is what makes loops terminate (the critical-pair
// set is bounded by the procedure's finite lock alphabet, so this always
// converges).
type walker struct {
	proc       string
	onUIThread bool
	store      ir.SummaryStore
	known      map[string]bool // procedures this package can supply a summary for

	entryStates map[ir.Block]astate.State
	exit        astate.State
	sawExit     bool
	err         error
}

// Walk computes proc's summary-worthy exit state: the join of every
// return-block's exit state. known lists the procedures analyzed in this
// run — a plain call to anything outside it is treated as identity, which
// keeps the walk from chasing calls into stdlib or other unanalyzed
// packages; a plain call to a known procedure with no summary yet
// published surfaces as *ir.MissingSummaryError.
func Walk(cfg *FuncCFG, proc string, onUIThread bool, store ir.SummaryStore, known map[string]bool) (astate.State, error) {
	if cfg == nil || cfg.Entry() == nil {
		return astate.Bottom(), nil
	}
	w := &walker{
		proc:        proc,
		onUIThread:  onUIThread,
		store:       store,
		known:       known,
		entryStates: make(map[ir.Block]astate.State),
		exit:        astate.Bottom(),
	}
	w.walkBlock(cfg.Entry(), astate.Bottom())
	return w.exit, w.err
}

func (w *walker) walkBlock(b ir.Block, incoming astate.State) {
	if w.err != nil {
		return
	}
	if prev, visited := w.entryStates[b]; visited {
		merged := prev.Join(incoming)
		if merged.Leq(prev) {
			return // converged: no new information reaches this block
		}
		w.entryStates[b] = merged
		incoming = merged
	} else {
		w.entryStates[b] = incoming
	}

	state := incoming
	for _, instr := range b.Instructions() {
		next, err := w.step(state, instr)
		if err != nil {
			w.err = err
			return
		}
		state = next
	}

	succs := b.Succs()
	if len(succs) == 0 {
		if !w.sawExit {
			w.exit = state
			w.sawExit = true
		} else {
			w.exit = w.exit.Join(state)
		}
		return
	}
	for _, succ := range succs {
		w.walkBlock(succ, state)
		if w.err != nil {
			return
		}
	}
}

// step applies one instruction, routing plain calls into known procedures
// through summary integration — the one part of the transfer dispatch left
// to the fixpoint driver rather than transfer.Step itself, since
// transfer.Step only applies effects already classified by the frontend.
func (w *walker) step(state astate.State, instr ir.Instruction) (astate.State, error) {
	isPlainCall := (instr.Kind == ir.InstrDirectCall || instr.Kind == ir.InstrIndirectCall) &&
		instr.Effect.Kind == ir.EffectNoEffect && instr.Effect.NoEffect == ir.NoEffectPlain

	if isPlainCall && instr.Callee != "" && w.known[instr.Callee] {
		summary, ok := w.store.Get(instr.Callee)
		if !ok {
			return astate.State{}, &ir.MissingSummaryError{Callee: instr.Callee}
		}
		frame := critpair.Frame{Callee: instr.Callee, Loc: instr.Loc}
		return transfer.IntegrateSummary(state, summary, instr.Args, frame), nil
	}

	return transfer.Step(state, instr, w.proc, w.onUIThread)
}
