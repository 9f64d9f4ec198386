package goast

import (
	"go/ast"
	"go/types"
	"testing"

	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// nilDeps answers every lookup with ConfEmpty; the throw finder tests below
// never reference another declaration's Configuration, only literal panics
// and the catch idiom itself.
type nilDeps struct{}

func (nilDeps) ConfigurationForObject(_ types.Object) configuration.Configuration {
	return configuration.ConfEmpty
}

func bodyOfF(t *testing.T, src string) (*ast.BlockStmt, *types.Info) {
	t.Helper()
	graph, pkg, info := typecheck(t, src)
	elem, _ := findFunc(t, graph, pkg, "F")
	return elem.Body, info
}

func TestFindThrows_panicEscapesUncaught(t *testing.T) {
	src := `package test

func F() {
	panic("boom")
}
`
	body, info := bodyOfF(t, src)
	ctx := &VisitContext{Info: info, Deps: nilDeps{}}

	throws := FindThrows(ctx, body)
	if len(throws.ThrownTypes()) != 1 {
		t.Fatalf("expected one thrown type, got %d: %v", len(throws.ThrownTypes()), throws)
	}
}

func TestFindThrows_typeSwitchCatchNarrowsThrow(t *testing.T) {
	src := `package test

type myErr struct{}

func (myErr) Error() string { return "x" }

func F() {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case myErr:
				_ = v
			}
		}
	}()
	panic(myErr{})
}
`
	body, info := bodyOfF(t, src)
	ctx := &VisitContext{Info: info, Deps: nilDeps{}}

	throws := FindThrows(ctx, body)
	if len(throws.ThrownTypes()) != 0 {
		t.Fatalf("expected the type switch to catch myErr, got %v", throws.ThrownTypes())
	}
}

func TestFindThrows_bareRecoverCatchesEverything(t *testing.T) {
	src := `package test

func F() {
	defer func() {
		recover()
	}()
	panic("boom")
}
`
	body, info := bodyOfF(t, src)
	ctx := &VisitContext{Info: info, Deps: nilDeps{}}

	throws := FindThrows(ctx, body)
	if len(throws.ThrownTypes()) != 0 || throws.CanThrowUndeclared() {
		t.Fatalf("expected a bare recover to catch everything, got %v", throws)
	}
}

func TestFindThrows_typeSwitchLeavesUnmatchedTypeUncaught(t *testing.T) {
	src := `package test

type myErr struct{}

func (myErr) Error() string { return "x" }

type otherErr struct{}

func (otherErr) Error() string { return "y" }

func F() {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case myErr:
				_ = v
			}
		}
	}()
	panic(otherErr{})
}
`
	body, info := bodyOfF(t, src)
	ctx := &VisitContext{Info: info, Deps: nilDeps{}}

	throws := FindThrows(ctx, body)
	if len(throws.ThrownTypes()) != 1 {
		t.Fatalf("expected otherErr to escape uncaught, got %v", throws.ThrownTypes())
	}
}

func TestFindThrows_doesNotDescendIntoNestedFuncLit(t *testing.T) {
	src := `package test

func F() {
	g := func() {
		panic("boom")
	}
	_ = g
}
`
	body, info := bodyOfF(t, src)
	ctx := &VisitContext{Info: info, Deps: nilDeps{}}

	throws := FindThrows(ctx, body)
	if len(throws.ThrownTypes()) != 0 {
		t.Fatalf("expected F's own body to throw nothing, the panic belongs to g's Invoke slot, got %v", throws.ThrownTypes())
	}
}

func TestFindThrows_goStatementNotWalked(t *testing.T) {
	src := `package test

func F() {
	go func() {
		panic("boom")
	}()
}
`
	body, info := bodyOfF(t, src)
	ctx := &VisitContext{Info: info, Deps: nilDeps{}}

	throws := FindThrows(ctx, body)
	if len(throws.ThrownTypes()) != 0 {
		t.Fatalf("expected a go statement's body to not propagate synchronously, got %v", throws.ThrownTypes())
	}
}

func TestFindCatch_reportsCatchesAllForBareRecover(t *testing.T) {
	src := `package test

func F() {
	defer func() {
		recover()
	}()
}
`
	body, info := bodyOfF(t, src)
	ctx := &VisitContext{Info: info, Deps: nilDeps{}}

	_, catchesAll, stmt := FindCatch(ctx, body)
	if !catchesAll {
		t.Error("expected catchesAll to be true for a bare recover")
	}
	if stmt == nil {
		t.Error("expected a non-nil catch statement")
	}
}

func TestFindCatch_noCatchPresent(t *testing.T) {
	src := `package test

func F() {
	panic("boom")
}
`
	body, info := bodyOfF(t, src)
	ctx := &VisitContext{Info: info, Deps: nilDeps{}}

	caught, catchesAll, stmt := FindCatch(ctx, body)
	if caught != nil || catchesAll || stmt != nil {
		t.Errorf("expected no catch, got caught=%v catchesAll=%v stmt=%v", caught, catchesAll, stmt)
	}
}
