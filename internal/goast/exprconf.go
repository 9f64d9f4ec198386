package goast

import (
	"go/ast"

	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// ExprConfig implements the expression configuration visitor (spec §4.5):
// given one expression node, it returns the Configuration of evaluating it —
// the throws that evaluation itself produces, plus the value slots available
// for whatever the expression's result gets promoted by next (a further call,
// a further await).
//
// ExprConfig does not descend into a nested *ast.FuncLit's body: creating a
// closure value doesn't run it, so a literal's own inferred body throws only
// belong to its Invoke slot, never to the throws of the expression that
// merely builds the closure (spec §4.4's "stopping at nested function
// literals").
func ExprConfig(ctx *VisitContext, expr ast.Expr) configuration.Configuration {
	switch e := expr.(type) {
	case nil:
		return configuration.ConfEmpty

	case *ast.ParenExpr:
		return ExprConfig(ctx, e.X)

	case *ast.BasicLit:
		return configuration.ConfEmpty

	case *ast.Ident:
		return identConfig(ctx, e)

	case *ast.SelectorExpr:
		return selectorConfig(ctx, e)

	case *ast.CallExpr:
		return callConfig(ctx, e)

	case *ast.FuncLit:
		return funcLitConfig(ctx, e)

	case *ast.UnaryExpr:
		return ExprConfig(ctx, e.X)

	case *ast.StarExpr:
		return ExprConfig(ctx, e.X)

	case *ast.BinaryExpr:
		return configuration.ConfThrows(configuration.UnionThrows([]configuration.Throws{
			ExprConfig(ctx, e.X).Throws,
			ExprConfig(ctx, e.Y).Throws,
		}))

	case *ast.IndexExpr:
		return configuration.ConfThrows(configuration.UnionThrows([]configuration.Throws{
			ExprConfig(ctx, e.X).Throws,
			ExprConfig(ctx, e.Index).Throws,
		}))

	case *ast.SliceExpr:
		throws := []configuration.Throws{ExprConfig(ctx, e.X).Throws}
		for _, sub := range []ast.Expr{e.Low, e.High, e.Max} {
			if sub != nil {
				throws = append(throws, ExprConfig(ctx, sub).Throws)
			}
		}
		return configuration.ConfThrows(configuration.UnionThrows(throws))

	case *ast.TypeAssertExpr:
		// A type-switch guard x.(type) never panics.
		return typeAssertConfig(ctx, e, e.Type != nil)

	case *ast.CompositeLit:
		var throws []configuration.Throws
		for _, elt := range e.Elts {
			throws = append(throws, ExprConfig(ctx, elt).Throws)
		}
		return configuration.ConfThrows(configuration.UnionThrows(throws))

	case *ast.KeyValueExpr:
		return configuration.ConfThrows(configuration.UnionThrows([]configuration.Throws{
			ExprConfig(ctx, e.Key).Throws,
			ExprConfig(ctx, e.Value).Throws,
		}))

	default:
		return configuration.ConfEmpty
	}
}

// identConfig resolves a bare identifier to the Configuration the element
// computer already holds for it — a package-level func, a local variable, a
// parameter. Reading a name doesn't itself throw; only its value's future
// promotions (Invoke/Await) matter here, so the top-level Throws is cleared.
func identConfig(ctx *VisitContext, e *ast.Ident) configuration.Configuration {
	obj := ctx.Info.Uses[e]
	if obj == nil {
		return configuration.ConfEmpty
	}
	return stripThrows(ctx.Deps.ConfigurationForObject(obj))
}

// selectorConfig resolves x.Sel: a field access or a method value. Evaluating
// x can itself throw (e.g. x is a call), which this folds in; the field or
// method's own Configuration supplies the value slots.
func selectorConfig(ctx *VisitContext, e *ast.SelectorExpr) configuration.Configuration {
	xConf := ExprConfig(ctx, e.X)

	obj := ctx.Info.Uses[e.Sel]
	if obj == nil {
		return configuration.ConfThrows(xConf.Throws)
	}
	memberConf := stripThrows(ctx.Deps.ConfigurationForObject(obj))
	return memberConf.WithThrows(xConf.Throws)
}

// callConfig implements the call-expression rule: the call's throws are the
// union of evaluating the callee, evaluating each argument, and whatever the
// callee's Invoke slot declares; the call's own value slots are whatever the
// Invoke slot's value carries, so chained calls/awaits keep resolving.
func callConfig(ctx *VisitContext, e *ast.CallExpr) configuration.Configuration {
	if id, ok := e.Fun.(*ast.Ident); ok {
		switch id.Name {
		case "panic":
			return panicConfig(ctx, e)
		case "recover":
			return configuration.ConfEmpty
		case "len", "cap", "append", "make", "new", "copy", "delete", "close", "print", "println":
			var throws []configuration.Throws
			for _, a := range e.Args {
				throws = append(throws, ExprConfig(ctx, a).Throws)
			}
			return configuration.ConfThrows(configuration.UnionThrows(throws))
		}
	}

	calleeConf := ExprConfig(ctx, e.Fun)
	throws := []configuration.Throws{calleeConf.Throws}
	for _, a := range e.Args {
		throws = append(throws, ExprConfig(ctx, a).Throws)
	}

	invoke, ok := calleeConf.Value(configuration.Invoke)
	if !ok {
		return configuration.ConfThrows(configuration.UnionThrows(throws))
	}
	throws = append(throws, invoke.Throws)
	return invoke.WithThrows(configuration.UnionThrows(throws))
}

// panicConfig models Go's panic(v) as the host's throw expression: its
// configuration throws {type of v}, unioned with whatever evaluating v throws.
func panicConfig(ctx *VisitContext, e *ast.CallExpr) configuration.Configuration {
	argThrows := configuration.Empty
	if len(e.Args) == 1 {
		argThrows = ExprConfig(ctx, e.Args[0]).Throws
	}
	if len(e.Args) != 1 {
		return configuration.ConfThrows(argThrows)
	}
	t := ctx.Info.TypeOf(e.Args[0])
	if t == nil {
		return configuration.ConfThrows(argThrows)
	}
	thrown := configuration.NewExplicit([]configuration.ThrownType{NewThrownType(t)}, false)
	return configuration.ConfThrows(configuration.UnionThrows([]configuration.Throws{argThrows, thrown}))
}

// typeAssertConfig models x.(T). The two-result form (v, ok := x.(T)) can
// never panic, so callers pass canPanic=false for it and only x's own throws
// remain; the single-result form (canPanic=true) can panic with a runtime
// interface-conversion error, which has no host Exception/Error identity of
// its own, so it's folded into can_throw_undeclared rather than a concrete
// thrown type.
func typeAssertConfig(ctx *VisitContext, e *ast.TypeAssertExpr, canPanic bool) configuration.Configuration {
	xConf := ExprConfig(ctx, e.X)
	if canPanic {
		undeclared := configuration.NewExplicit(nil, true)
		return configuration.ConfThrows(configuration.UnionThrows([]configuration.Throws{xConf.Throws, undeclared}))
	}
	return configuration.ConfThrows(xConf.Throws)
}

// funcLitConfig derives a closure literal's own Configuration: creating it
// never throws, but invoking it does whatever FindThrows infers from its
// body, stored in the Invoke slot for whoever eventually calls this value.
func funcLitConfig(ctx *VisitContext, e *ast.FuncLit) configuration.Configuration {
	inferred := FindThrows(ctx, e.Body)
	return configuration.ForValue(map[configuration.PromotionKind]configuration.Configuration{
		configuration.Invoke: configuration.ConfThrows(inferred),
	})
}

func stripThrows(c configuration.Configuration) configuration.Configuration {
	return c.WithThrows(configuration.Empty)
}
