package gofront

import (
	"context"
	"errors"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/buildssa"
	"golang.org/x/tools/go/ssa"

	"github.com/diego200052/lockpair/pkg/astate"
	"github.com/diego200052/lockpair/pkg/ir"
	"github.com/diego200052/lockpair/pkg/report"
	"github.com/diego200052/lockpair/pkg/schedule"
	"github.com/diego200052/lockpair/pkg/summary"
)

// Analyzer ties gofront's SSA-backed CFG construction, pkg/schedule's
// per-procedure scheduling, and pkg/report's issue engine into a single
// go/analysis.Analyzer: it requires buildssa.Analyzer and walks every
// source function in the package.
var Analyzer = &analysis.Analyzer{
	Name:     "lockpair",
	Doc:      "detects deadlocks, UI-thread starvation, Strict Mode violations, and lockless-annotation violations",
	Run:      run,
	Requires: []*analysis.Analyzer{buildssa.Analyzer},
}

// Config mirrors report.Config plus the scheduler's job count, so a caller
// configures the whole pipeline through one explicit record rather than
// ambient global state.
type Config struct {
	Deduplicate     bool
	ReportDeadlocks bool
	Jobs            int
}

// DefaultConfig turns on deduplication and deadlock reporting with a small
// fixed worker count.
var DefaultConfig = Config{Deduplicate: true, ReportDeadlocks: true, Jobs: 4}

func run(pass *analysis.Pass) (any, error) {
	ssaResult, ok := pass.ResultOf[buildssa.Analyzer].(*buildssa.SSA)
	if !ok {
		return nil, nil
	}
	return nil, analyzePackage(pass, ssaResult.SrcFuncs, DefaultConfig)
}

func analyzePackage(pass *analysis.Pass, srcFuncs []*ssa.Function, cfg Config) error {
	ann := ParseAnnotations(pass.Fset, pass.Files, srcFuncs)

	known := make(map[string]bool, len(srcFuncs))
	procToFunc := make(map[string]*ssa.Function, len(srcFuncs))
	for _, fn := range srcFuncs {
		name := ProcName(fn)
		known[name] = true
		procToFunc[name] = fn
	}

	var callSites []CallSite
	for _, fn := range srcFuncs {
		for _, bb := range fn.Blocks {
			for _, raw := range bb.Instrs {
				switch instr := raw.(type) {
				case *ssa.Go:
					if target := extractGoTarget(instr); target != nil {
						callSites = append(callSites, CallSite{Caller: fn, Callee: target})
					}
				case *ssa.Call:
					if callee := instr.Common().StaticCallee(); callee != nil {
						callSites = append(callSites, CallSite{Caller: fn, Callee: callee})
					}
				}
			}
		}
	}
	uiIndex := BuildUIThreadIndex(srcFuncs, callSites)

	builder := &Builder{Annotations: ann, Blocking: BlockingClassifier{}, Strict: StrictModeClassifierImpl{}}
	cfgs := make(map[string]*FuncCFG, len(srcFuncs))
	for _, fn := range srcFuncs {
		cfgs[ProcName(fn)] = builder.Build(fn, ownerOf(fn))
	}

	store := summary.NewStore()
	sched := &schedule.Scheduler{Jobs: cfg.Jobs, Store: store}

	procs := make([]string, 0, len(srcFuncs))
	for _, fn := range srcFuncs {
		procs = append(procs, ProcName(fn))
	}

	analyze := func(ctx context.Context, proc string) (astate.State, error) {
		return Walk(cfgs[proc], proc, uiIndex.IsUIThreadProc(proc), store, known)
	}

	if err := sched.Run(context.Background(), procs, analyze); err != nil {
		var invariant *ir.InternalInvariantError
		if errors.As(err, &invariant) {
			pass.Reportf(pass.Files[0].Pos(), "lockpair: %s", invariant.Error())
		}
		return err
	}

	attrs := &procAttrs{ann: ann, procToFunc: procToFunc}
	classes := &classIndex{byOwner: groupByOwner(srcFuncs)}
	engine := &report.Engine{
		Config:    report.Config{Deduplicate: cfg.Deduplicate, ReportDeadlocks: cfg.ReportDeadlocks, Jobs: cfg.Jobs},
		Attrs:     attrs,
		Classes:   classes,
		Summaries: store,
	}

	for _, proc := range procs {
		if !attrs.IsReportable(proc) {
			continue
		}
		issues := engine.Report(proc)
		if sum, ok := store.Get(proc); ok {
			issues = append(issues, report.LockOrderCycles(proc, sum)...)
		}
		for _, issue := range issues {
			if issue.Loc == 0 {
				continue
			}
			pass.Reportf(issue.Loc, "%s: %s", issue.Kind, issue.Message)
		}
	}
	return nil
}

func groupByOwner(srcFuncs []*ssa.Function) map[string][]string {
	byOwner := make(map[string][]string)
	for _, fn := range srcFuncs {
		owner := ownerOf(fn)
		if owner == "" {
			continue
		}
		byOwner[owner] = append(byOwner[owner], ProcName(fn))
	}
	return byOwner
}

// procAttrs implements report.ProcAttrs.
type procAttrs struct {
	ann        *Annotations
	procToFunc map[string]*ssa.Function
}

func (p *procAttrs) IsLockless(proc string) bool { return p.ann.IsLockless(proc) }

func (p *procAttrs) IsConstructor(proc string) bool {
	fn := p.procToFunc[proc]
	return fn != nil && fn.Name() == "init"
}

func (p *procAttrs) IsReportable(proc string) bool {
	fn := p.procToFunc[proc]
	if fn == nil {
		return false
	}
	return fn.Synthetic == "" && fn.Name() != "init"
}

// classIndex implements report.ClassIndex.
type classIndex struct {
	byOwner map[string][]string
}

func (c *classIndex) MethodsOf(owner string) []string { return c.byOwner[owner] }
