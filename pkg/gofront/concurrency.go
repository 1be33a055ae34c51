package gofront

import (
	"go/types"

	"golang.org/x/tools/go/ssa"
)

// CallSite records a static call edge discovered while walking SSA, used to
// build the forward call graph for reachability analysis.
type CallSite struct {
	Caller *ssa.Function
	Callee *ssa.Function
}

// UIThreadIndex classifies procedures as UI-thread or not. Go has no
// distinguished UI thread, so the stand-in here is: a function reachable
// from a goroutine launch or an HTTP entrypoint runs on a background
// worker; everything else — starting from main/init and ordinary
// synchronous call chains — is treated as running on the single "UI
// thread".
type UIThreadIndex struct {
	// background holds the qualified names (ProcName) of functions reachable
	// from a background entrypoint. A nil map means no entrypoints were
	// found at all, in which case nothing is classified as background —
	// conservative: if this package can't tell where the background starts,
	// treat everything as potentially on the UI thread.
	background map[string]bool
}

// ProcName is the qualified procedure name used as a map key throughout
// gofront and in the IR instructions it builds: RelString gives a stable,
// package-qualified identity ("(*pkg.S).Method" for methods, "pkg.F" for
// funcs) matching how pkg.ir.Instruction.Callee is documented to look.
func ProcName(fn *ssa.Function) string { return fn.RelString(nil) }

// BuildUIThreadIndex computes reachability from goroutine launches, HTTP
// handler registrations, and ServeHTTP methods, then stores the
// *complement* as the UI-thread set.
func BuildUIThreadIndex(srcFuncs []*ssa.Function, callSites []CallSite) *UIThreadIndex {
	entrypoints := detectBackgroundEntrypoints(srcFuncs)
	if len(entrypoints) == 0 {
		return &UIThreadIndex{background: nil}
	}

	forward := make(map[*ssa.Function][]*ssa.Function)
	for _, cs := range callSites {
		forward[cs.Caller] = append(forward[cs.Caller], cs.Callee)
	}

	reachable := make(map[*ssa.Function]bool)
	queue := make([]*ssa.Function, 0, len(entrypoints))
	for fn := range entrypoints {
		reachable[fn] = true
		queue = append(queue, fn)
	}
	for head := 0; head < len(queue); head++ {
		fn := queue[head]
		for _, callee := range forward[fn] {
			if !reachable[callee] {
				reachable[callee] = true
				queue = append(queue, callee)
			}
		}
	}

	byName := make(map[string]bool, len(reachable))
	for fn := range reachable {
		byName[ProcName(fn)] = true
	}
	return &UIThreadIndex{background: byName}
}

// IsUIThreadProc implements ir.UIThreadClassifier: proc runs on the UI
// thread iff it was not found reachable from a background entrypoint.
func (idx *UIThreadIndex) IsUIThreadProc(proc string) bool {
	if idx.background == nil {
		return true
	}
	return !idx.background[proc]
}

func detectBackgroundEntrypoints(srcFuncs []*ssa.Function) map[*ssa.Function]bool {
	entrypoints := make(map[*ssa.Function]bool)

	for _, fn := range srcFuncs {
		if isServeHTTPMethod(fn) {
			entrypoints[fn] = true
		}
		for _, block := range fn.Blocks {
			for _, instr := range block.Instrs {
				switch inst := instr.(type) {
				case *ssa.Go:
					if target := extractGoTarget(inst); target != nil {
						entrypoints[target] = true
					}
				case *ssa.Call:
					if target := extractHandlerFuncTarget(inst); target != nil {
						entrypoints[target] = true
					}
				}
			}
		}
	}
	return entrypoints
}

func isServeHTTPMethod(fn *ssa.Function) bool {
	if fn.Name() != "ServeHTTP" {
		return false
	}
	params := fn.Signature.Params()
	if params.Len() != 2 {
		return false
	}
	return isHTTPResponseWriter(params.At(0).Type()) && isHTTPRequestPtr(params.At(1).Type())
}

func extractGoTarget(goInstr *ssa.Go) *ssa.Function {
	common := goInstr.Common()
	if callee := common.StaticCallee(); callee != nil {
		return callee
	}
	if mc, ok := common.Value.(*ssa.MakeClosure); ok {
		if fn, ok := mc.Fn.(*ssa.Function); ok {
			return fn
		}
	}
	if fn, ok := common.Value.(*ssa.Function); ok {
		return fn
	}
	return nil
}

func extractHandlerFuncTarget(call *ssa.Call) *ssa.Function {
	common := call.Common()
	callee := common.StaticCallee()
	if callee == nil || !isHTTPHandleFunc(callee) {
		return nil
	}
	args := common.Args
	if len(args) == 0 {
		return nil
	}
	handlerArg := args[len(args)-1]
	if fn, ok := handlerArg.(*ssa.Function); ok {
		return fn
	}
	if mc, ok := handlerArg.(*ssa.MakeClosure); ok {
		if fn, ok := mc.Fn.(*ssa.Function); ok {
			return fn
		}
	}
	return nil
}

func isHTTPHandleFunc(fn *ssa.Function) bool {
	if fn.Name() != "HandleFunc" {
		return false
	}
	pkg := fn.Package()
	return pkg != nil && pkg.Pkg != nil && pkg.Pkg.Path() == "net/http"
}

func isHTTPResponseWriter(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "net/http" && obj.Name() == "ResponseWriter"
}

func isHTTPRequestPtr(t types.Type) bool {
	ptr, ok := t.(*types.Pointer)
	if !ok {
		return false
	}
	named, ok := ptr.Elem().(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "net/http" && obj.Name() == "Request"
}
