package lint

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/go-checked/checkedexceptions/internal/goast"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// UnsafeAssignmentAnalyzer implements spec §4.10's unsafe-assignment rule,
// generalized to Go's two value-flow sites a declared Configuration can be
// violated at: passing a checked-throwing callable/future as a call
// argument whose parameter type declares narrower throws, and assigning one
// into a package-level var or struct field that carries its own directive.
var UnsafeAssignmentAnalyzer = &analysis.Analyzer{
	Name:     "unsafeassignment",
	Doc:      "reports a call argument or assignment whose value can throw more than its target's declared configuration permits",
	Run:      runUnsafeAssignment,
	Requires: []*analysis.Analyzer{inspect.Analyzer, configAnalyzer},
}

func runUnsafeAssignment(pass *analysis.Pass) (interface{}, error) {
	state := pass.ResultOf[configAnalyzer].(*passState)
	ctx := &goast.VisitContext{Info: pass.TypesInfo, Deps: state.session}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil), (*ast.AssignStmt)(nil)}, func(n ast.Node) {
		switch s := n.(type) {
		case *ast.CallExpr:
			checkCallArgs(pass, ctx, state, s)
		case *ast.AssignStmt:
			checkAssign(pass, ctx, state, s)
		}
	})
	return nil, nil
}

// checkCallArgs compares each call argument's own Configuration against the
// matching parameter type's structurally-derived Configuration (spec §4.3),
// so passing a closure/future that can throw more than a typed callable
// parameter's own directive declares is flagged at the call site.
func checkCallArgs(pass *analysis.Pass, ctx *goast.VisitContext, state *passState, call *ast.CallExpr) {
	funType := pass.TypesInfo.TypeOf(call.Fun)
	if funType == nil {
		return
	}
	sig, ok := funType.Underlying().(*types.Signature)
	if !ok {
		return
	}
	params := sig.Params()
	if params.Len() == 0 {
		return
	}

	for i, arg := range call.Args {
		pi := i
		if sig.Variadic() && pi >= params.Len()-1 {
			pi = params.Len() - 1
		}
		if pi >= params.Len() {
			continue
		}
		paramType := params.At(pi).Type()
		if sig.Variadic() && pi == params.Len()-1 {
			if slice, ok := paramType.(*types.Slice); ok {
				paramType = slice.Elem()
			}
		}
		paramSlots := goast.TypeConf(paramType, state.dt, state.resolve)
		if paramSlots == nil {
			continue
		}
		paramConf := configuration.ForValue(paramSlots)
		argConf := goast.ExprConfig(ctx, arg)
		if !configuration.ThrowsCompatible(effectiveThrows(argConf), effectiveThrows(paramConf)) {
			pass.Reportf(arg.Pos(), "argument %d's checked throws are not compatible with the parameter's declared configuration", i+1)
		}
	}
}

// checkAssign compares a value assigned into a package-level var or struct
// field against that target's own directive-declared Configuration, when it
// carries one — there's no structural parameter type to fall back on the
// way checkCallArgs has, so a target with no directive is left unchecked.
func checkAssign(pass *analysis.Pass, ctx *goast.VisitContext, state *passState, assign *ast.AssignStmt) {
	if assign.Tok.String() != "=" && assign.Tok.String() != ":=" {
		return
	}
	for i, lhs := range assign.Lhs {
		if i >= len(assign.Rhs) {
			continue
		}
		ident, ok := lhs.(*ast.Ident)
		if sel, isSel := lhs.(*ast.SelectorExpr); isSel {
			ident, ok = sel.Sel, true
		}
		if !ok || ident.Name == "_" {
			continue
		}
		obj := pass.TypesInfo.Uses[ident]
		if obj == nil {
			obj, _ = pass.TypesInfo.Defs[ident].(types.Object)
		}
		if obj == nil {
			continue
		}
		elem, ok := state.graph.ElementFor(obj)
		if !ok || len(elem.Directives) == 0 {
			continue
		}
		targetConf := state.session.ConfigurationForObject(obj)
		argConf := goast.ExprConfig(ctx, assign.Rhs[i])
		if !configuration.ThrowsCompatible(effectiveThrows(argConf), effectiveThrows(targetConf)) {
			pass.Reportf(assign.Rhs[i].Pos(), "assigned value's checked throws are not compatible with %s's declared configuration", obj.Name())
		}
	}
}
