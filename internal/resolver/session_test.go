package resolver

import (
	"context"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/go-checked/checkedexceptions/internal/goast"
	"github.com/go-checked/checkedexceptions/internal/overrides"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

func typecheck(t *testing.T, src string) (*goast.Graph, *types.Package) {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{Importer: importer.Default()}
	pkg, err := conf.Check("test", fset, []*ast.File{file}, info)
	if err != nil {
		t.Fatalf("typecheck: %v", err)
	}

	resolve := BuildTypeResolver(pkg)
	graph := goast.NewGraph([]*ast.File{file}, info, resolve)
	return graph, pkg
}

func invokeThrows(t *testing.T, conf configuration.Configuration) configuration.Throws {
	t.Helper()
	invoke, ok := conf.Value(configuration.Invoke)
	if !ok {
		t.Fatal("expected an invoke slot")
	}
	return invoke.Throws
}

func TestSession_settlesAnAcyclicGraph(t *testing.T) {
	src := `package test

func F() {
	panic("boom")
}
`
	graph, pkg := typecheck(t, src)
	sess := New(graph, pkg, nil, nil)
	if err := sess.Settle(context.Background()); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	obj := pkg.Scope().Lookup("F")
	conf := sess.ConfigurationForObject(obj)
	throws := invokeThrows(t, conf)
	if len(throws.ThrownTypes()) != 1 {
		t.Errorf("expected F to settle with one thrown type, got %v", throws)
	}
}

func TestSession_settlesAMutuallyRecursiveCallCycle(t *testing.T) {
	src := `package test

type errA struct{}

func (errA) Error() string { return "a" }

type errB struct{}

func (errB) Error() string { return "b" }

func A() {
	B()
	panic(errA{})
}

func B() {
	A()
	panic(errB{})
}
`
	graph, pkg := typecheck(t, src)
	sess := New(graph, pkg, nil, nil)
	if err := sess.Settle(context.Background()); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	aObj := pkg.Scope().Lookup("A")
	bObj := pkg.Scope().Lookup("B")

	aThrows := invokeThrows(t, sess.ConfigurationForObject(aObj))
	bThrows := invokeThrows(t, sess.ConfigurationForObject(bObj))

	if len(aThrows.ThrownTypes()) != 2 {
		t.Errorf("expected A to settle with both errA and errB once the cycle converges, got %v", aThrows)
	}
	if len(bThrows.ThrownTypes()) != 2 {
		t.Errorf("expected B to settle with both errA and errB once the cycle converges, got %v", bThrows)
	}
}

func TestSession_overrideTableWithoutEntryLeavesBodyInference(t *testing.T) {
	src := `package test

func F() {
	panic("boom")
}
`
	graph, pkg := typecheck(t, src)

	dir := t.TempDir()
	table, err := overrides.Load(dir, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	sess := New(graph, pkg, table, nil)
	if err := sess.Settle(context.Background()); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	obj := pkg.Scope().Lookup("F")
	conf := sess.ConfigurationForObject(obj)
	throws := invokeThrows(t, conf)
	if len(throws.ThrownTypes()) != 1 {
		t.Errorf("expected F's own panic to settle normally with an empty override table, got %v", throws)
	}
}

func TestSession_fallbackServesObjectsOutsideTheGraph(t *testing.T) {
	src := `package test

func F() {}
`
	_, pkg := typecheck(t, src)

	outsideObj := pkg.Scope().Lookup("F") // stand-in identity for "some object this graph didn't settle"
	canned := configuration.ConfThrows(configuration.NewExplicit(nil, true))

	fallback := stubFallback{obj: outsideObj, conf: canned}
	emptyGraph, emptyPkg := typecheck(t, `package test2

func G() {}
`)
	_ = pkg

	sess := New(emptyGraph, emptyPkg, nil, fallback)
	if err := sess.Settle(context.Background()); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	got := sess.ConfigurationForObject(outsideObj)
	if !got.Throws.CanThrowUndeclared() {
		t.Errorf("expected an object outside the session's own graph to be served by the fallback, got %v", got)
	}
}

type stubFallback struct {
	obj  types.Object
	conf configuration.Configuration
}

func (s stubFallback) ConfigurationForObject(obj types.Object) configuration.Configuration {
	if obj == s.obj {
		return s.conf
	}
	return configuration.ConfEmpty
}
