// Package gofront is a concrete frontend that builds IR instructions
// (pkg/ir) from real Go source, via go/analysis's buildssa pass and
// go/ssa. It is the one package in this module that depends on Go-source
// specifics; everything downstream of it (pkg/transfer, pkg/astate,
// pkg/report, ...) operates purely on the IR model.
package gofront

import (
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ssa"

	"github.com/diego200052/lockpair/pkg/lockid"
)

// resolvePath traces an SSA value back to a canonical lockid.AccessPath
// rooted at a formal parameter or a package-level global, or reports false
// if v denotes a local/logical value with no such stable root.
func resolvePath(v ssa.Value) (lockid.AccessPath, bool) {
	v = unwrapSSAValue(v)

	switch val := v.(type) {
	case *ssa.Parameter:
		return lockid.NewParamPath(paramIndex(val)), true
	case *ssa.Global:
		return lockid.NewGlobalPath(val.Pkg.Pkg.Path() + "." + val.Name()), true
	case *ssa.FieldAddr:
		base, ok := resolvePath(val.X)
		if !ok {
			return lockid.AccessPath{}, false
		}
		field := fieldSelector(val)
		return lockid.AccessPath{Root: base.Root, Steps: append(append([]lockid.Selector{}, base.Steps...), field)}, true
	case *ssa.IndexAddr:
		base, ok := resolvePath(val.X)
		if !ok {
			return lockid.AccessPath{}, false
		}
		return lockid.AccessPath{Root: base.Root, Steps: append(append([]lockid.Selector{}, base.Steps...), lockid.Selector{Index: true})}, true
	default:
		return lockid.AccessPath{}, false
	}
}

// paramIndex finds p's position among its function's parameters. Methods'
// receiver is Params()[0] in go/ssa, which is exactly what an access path
// rooted at "the receiver" should be: arg0.
func paramIndex(p *ssa.Parameter) int {
	fn := p.Parent()
	for i, fp := range fn.Params {
		if fp == p {
			return i
		}
	}
	return -1
}

func fieldSelector(fa *ssa.FieldAddr) lockid.Selector {
	ptr, ok := fa.X.Type().Underlying().(*types.Pointer)
	if !ok {
		return lockid.Selector{Field: "?"}
	}
	st, ok := ptr.Elem().Underlying().(*types.Struct)
	if !ok || fa.Field >= st.NumFields() {
		return lockid.Selector{Field: "?"}
	}
	return lockid.Selector{Field: st.Field(fa.Field).Name()}
}

// unwrapSSAValue strips Phi nodes whose edges all agree on the same
// underlying value, and UnOp(MUL) dereferences — exactly the shape
// closures over captured variables take in go/ssa (the builder lifts a
// captured local to a heap cell; every read is a separate load from that
// cell, and collapsing through the dereference is what makes two reads of
// the same captured mutex resolve to the same lockid.AccessPath).
func unwrapSSAValue(v ssa.Value) ssa.Value {
	visitedPhi := make(map[*ssa.Phi]bool)
	seenDeref := make(map[ssa.Value]bool)
	for {
		switch val := v.(type) {
		case *ssa.Phi:
			resolved := resolvePhiIfUniform(val, visitedPhi)
			if resolved == nil {
				return v
			}
			v = resolved
		case *ssa.UnOp:
			if val.Op != token.MUL || seenDeref[v] {
				return v
			}
			seenDeref[v] = true
			v = val.X
		default:
			return v
		}
	}
}

func resolvePhiIfUniform(phi *ssa.Phi, visited map[*ssa.Phi]bool) ssa.Value {
	if visited[phi] {
		return nil
	}
	visited[phi] = true

	var unique ssa.Value
	for _, edge := range phi.Edges {
		edge = unwrapSSAValue(edge)
		if unique == nil {
			unique = edge
		} else if unique != edge {
			return nil
		}
	}
	return unique
}

// isMutexType reports whether t is sync.Mutex or sync.RWMutex.
func isMutexType(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() != "sync" {
		return false
	}
	return obj.Name() == "Mutex" || obj.Name() == "RWMutex"
}

func isRWMutexType(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj != nil && obj.Pkg() != nil && obj.Pkg().Path() == "sync" && obj.Name() == "RWMutex"
}

func isLockMethod(name string) bool {
	switch name {
	case "Lock", "Unlock", "RLock", "RUnlock", "TryLock", "TryRLock":
		return true
	}
	return false
}

func isTryLockMethod(name string) bool { return name == "TryLock" || name == "TryRLock" }

func isLockAcquire(name string) bool {
	return name == "Lock" || name == "RLock" || name == "TryLock" || name == "TryRLock"
}

func isExclusive(name string) bool { return name == "Lock" || name == "Unlock" || name == "TryLock" }
