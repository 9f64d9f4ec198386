package lint

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"

	"github.com/go-checked/checkedexceptions/internal/goast"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// UncaughtThrowAnalyzer implements spec §4.10's uncaught-throw rule: a call,
// panic or unchecked type assertion whose thrown types escape a function
// body without being covered by a local recover catch or the function's own
// declared/inferred throws is reported.
var UncaughtThrowAnalyzer = &analysis.Analyzer{
	Name:     "uncaughtthrow",
	Doc:      "reports a call, panic or type assertion whose checked throws escape uncaught and undeclared",
	Run:      runUncaughtThrow,
	Requires: []*analysis.Analyzer{configAnalyzer},
}

func runUncaughtThrow(pass *analysis.Pass) (interface{}, error) {
	state := pass.ResultOf[configAnalyzer].(*passState)
	ctx := &goast.VisitContext{Info: pass.TypesInfo, Deps: state.session}

	for _, obj := range state.graph.Objects() {
		elem, ok := state.graph.ElementFor(obj)
		if !ok || !elem.IsExecutable() || elem.Body == nil {
			continue
		}
		declared := effectiveThrows(state.session.ConfigurationForObject(obj))
		checkBody(pass, ctx, declared, elem.Body)
	}

	// An anonymous closure has no element of its own and declares nothing —
	// anything it throws must be locally caught right there.
	for _, f := range pass.Files {
		ast.Inspect(f, func(n ast.Node) bool {
			if lit, ok := n.(*ast.FuncLit); ok {
				checkBody(pass, ctx, configuration.Empty, lit.Body)
			}
			return true
		})
	}

	return nil, nil
}

// checkBody walks one function/closure body, reporting every call or type
// assertion whose thrown types aren't covered by effective = declared ∪
// locally-caught. It does not descend into a nested FuncLit's own
// statements (that closure gets its own top-level checkBody call) or into
// the recover catch's own deferred FuncLit (walking it would double-report
// the catch's own handling as if it escaped the function it protects).
func checkBody(pass *analysis.Pass, ctx *goast.VisitContext, declared configuration.Throws, body *ast.BlockStmt) {
	if body == nil {
		return
	}
	caught, catchesAll, catchStmt := goast.FindCatch(ctx, body)
	if catchesAll {
		return
	}
	effective := configuration.UnionThrows([]configuration.Throws{declared, configuration.NewExplicit(caught, false)})

	for _, stmt := range body.List {
		if stmt == catchStmt {
			continue
		}
		ast.Inspect(stmt, func(n ast.Node) bool {
			switch nn := n.(type) {
			case *ast.FuncLit:
				return false
			case *ast.CallExpr:
				reportUncovered(pass, ctx, nn, effective)
			case *ast.TypeAssertExpr:
				reportUncovered(pass, ctx, nn, effective)
			}
			return true
		})
	}
}

func reportUncovered(pass *analysis.Pass, ctx *goast.VisitContext, expr ast.Expr, effective configuration.Throws) {
	conf := goast.ExprConfig(ctx, expr)
	for _, t := range conf.Throws.ThrownTypes() {
		if !configuration.Covers(effective, t) {
			pass.Reportf(expr.Pos(), "uncaught thrown type %s escapes without being declared or caught", t.String())
		}
	}
	if conf.Throws.CanThrowUndeclared() && !effective.CanThrowUndeclared() && !effective.AdmitsObject() {
		pass.Reportf(expr.Pos(), "may throw an undeclared error not covered by the enclosing function's throws")
	}
}
