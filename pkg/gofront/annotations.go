package gofront

import (
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ssa"
)

// Annotations holds parsed //lockpair:... comment directives for a
// package: matches each directive comment to the FuncDecl it annotates,
// then resolves that declaration to its ssa.Function. Currently a single
// //lockpair:lockless directive is recognized: it marks a procedure that
// must not acquire any lock, and the report engine reports each lock it
// acquires as a LocklessViolation.
type Annotations struct {
	lockless map[string]bool // proc name (ProcName) -> marked //lockpair:lockless
}

// ParseAnnotations scans every comment group in files for //lockpair:lockless
// directives and resolves each to the ssa.Function it annotates.
func ParseAnnotations(fset *token.FileSet, files []*ast.File, srcFuncs []*ssa.Function) *Annotations {
	ann := &Annotations{lockless: make(map[string]bool)}

	for _, file := range files {
		var funcDecls []*ast.FuncDecl
		for _, decl := range file.Decls {
			if fd, ok := decl.(*ast.FuncDecl); ok {
				funcDecls = append(funcDecls, fd)
			}
		}

		for _, cg := range file.Comments {
			for _, comment := range cg.List {
				text := strings.TrimSpace(strings.TrimPrefix(comment.Text, "//"))
				if text != "lockpair:lockless" && !strings.HasPrefix(text, "lockpair:lockless ") {
					continue
				}
				if fn := findFuncForComment(fset, funcDecls, comment.Pos(), srcFuncs); fn != nil {
					ann.lockless[ProcName(fn)] = true
				}
			}
		}
	}

	return ann
}

// findFuncForComment finds the SSA function corresponding to the function
// declaration that contains or immediately follows the comment at
// commentPos.
func findFuncForComment(fset *token.FileSet, funcDecls []*ast.FuncDecl, commentPos token.Pos, srcFuncs []*ssa.Function) *ssa.Function {
	commentLine := fset.Position(commentPos).Line

	var best *ast.FuncDecl
	for _, fd := range funcDecls {
		fdLine := fset.Position(fd.Pos()).Line
		if fdLine >= commentLine && fdLine <= commentLine+1 {
			best = fd
			break
		}
		if fd.Body != nil && commentPos >= fd.Pos() && commentPos <= fd.Body.End() {
			best = fd
			break
		}
	}
	if best == nil {
		return nil
	}
	return astFuncToSSA(best, srcFuncs)
}

func astFuncToSSA(fd *ast.FuncDecl, srcFuncs []*ssa.Function) *ssa.Function {
	for _, fn := range srcFuncs {
		if fn.Pos() == fd.Name.Pos() {
			return fn
		}
	}
	return nil
}

// IsLockless implements ir.LocklessClassifier.
func (ann *Annotations) IsLockless(proc string) bool {
	if ann == nil {
		return false
	}
	return ann.lockless[proc]
}
