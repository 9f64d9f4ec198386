package goast

import (
	"go/ast"
	"go/types"
	"testing"

	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// stubConfDeps returns a fixed Configuration for one specific object and
// ConfEmpty for everything else, enough to exercise callConfig's Invoke-slot
// chaining without a full resolver session.
type stubConfDeps struct {
	obj  types.Object
	conf configuration.Configuration
}

func (s stubConfDeps) ConfigurationForObject(obj types.Object) configuration.Configuration {
	if obj == s.obj {
		return s.conf
	}
	return configuration.ConfEmpty
}

func firstCallExprIn(body ast.Node) *ast.CallExpr {
	var found *ast.CallExpr
	ast.Inspect(body, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		if c, ok := n.(*ast.CallExpr); ok {
			found = c
			return false
		}
		return true
	})
	return found
}

func firstFuncLitIn(body ast.Node) *ast.FuncLit {
	var found *ast.FuncLit
	ast.Inspect(body, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		if f, ok := n.(*ast.FuncLit); ok {
			found = f
			return false
		}
		return true
	})
	return found
}

func firstTypeAssertIn(body ast.Node) *ast.TypeAssertExpr {
	var found *ast.TypeAssertExpr
	ast.Inspect(body, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		if ta, ok := n.(*ast.TypeAssertExpr); ok {
			found = ta
			return false
		}
		return true
	})
	return found
}

func TestExprConfig_panicWithOneArgThrowsItsType(t *testing.T) {
	src := `package test

func F() {
	panic("boom")
}
`
	body, info := bodyOfF(t, src)
	ctx := &VisitContext{Info: info, Deps: nilDeps{}}

	call := firstCallExprIn(body)
	conf := ExprConfig(ctx, call)
	if len(conf.Throws.ThrownTypes()) != 1 {
		t.Fatalf("expected panic(\"boom\") to throw one type, got %v", conf.Throws)
	}
}

func TestExprConfig_recoverNeverThrows(t *testing.T) {
	src := `package test

func F() {
	defer func() {
		recover()
	}()
}
`
	body, info := bodyOfF(t, src)
	ctx := &VisitContext{Info: info, Deps: nilDeps{}}

	lit := firstFuncLitIn(body)
	if lit == nil {
		t.Fatal("expected a func literal")
	}
	call := firstCallExprIn(lit.Body)
	conf := ExprConfig(ctx, call)
	if !conf.Throws.IsEmpty() {
		t.Errorf("expected recover() to never throw, got %v", conf.Throws)
	}
}

func TestExprConfig_typeAssertOnlyBareFormAdmitsUndeclared(t *testing.T) {
	src := `package test

func F(x interface{}) {
	v, ok := x.(int)
	_ = v
	_ = ok
}
`
	body, info := bodyOfF(t, src)
	ctx := &VisitContext{Info: info, Deps: nilDeps{}}

	ta := firstTypeAssertIn(body)
	if ta == nil {
		t.Fatal("expected a type assertion")
	}

	checkedOK := typeAssertConfig(ctx, ta, false)
	if checkedOK.Throws.CanThrowUndeclared() {
		t.Error("the comma-ok form should never be able to panic")
	}

	bare := typeAssertConfig(ctx, ta, true)
	if !bare.Throws.CanThrowUndeclared() {
		t.Error("the single-result form should admit an undeclared runtime panic")
	}
}

func TestExprConfig_callChainsThroughInvokeSlot(t *testing.T) {
	src := `package test

func G() {}

func F() {
	G()
}
`
	graph, pkg, info := typecheck(t, src)
	_, gObj := findFunc(t, graph, pkg, "G")

	deps := stubConfDeps{obj: gObj, conf: configuration.ForValue(map[configuration.PromotionKind]configuration.Configuration{
		configuration.Invoke: configuration.ConfThrows(configuration.NewExplicit(nil, true)),
	})}
	fElem, _ := findFunc(t, graph, pkg, "F")
	ctx := &VisitContext{Info: info, Deps: deps}

	call := firstCallExprIn(fElem.Body)
	conf := ExprConfig(ctx, call)
	if !conf.Throws.CanThrowUndeclared() {
		t.Errorf("expected calling G to pick up G's Invoke-slot throws, got %v", conf.Throws)
	}
}
