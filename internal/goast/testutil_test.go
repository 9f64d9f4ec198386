package goast

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/go-checked/checkedexceptions/internal/annotation"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// typecheck parses and type-checks a single-file snippet and builds its
// element graph, the same way internal/lint's setup() builds one for a real
// analyzed package.
func typecheck(t *testing.T, src string) (*Graph, *types.Package, *types.Info) {
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

	resolve := testResolver(pkg)
	graph := NewGraph([]*ast.File{file}, info, resolve)
	return graph, pkg, info
}

// testResolver is a minimal stand-in for internal/resolver.BuildTypeResolver
// (which this package can't import without a cycle): a bare name resolves
// in the package's own scope, a dotted name's prefix is matched against its
// imports by name.
func testResolver(pkg *types.Package) annotation.TypeResolver {
	return func(name string) (configuration.ThrownType, bool) {
		if name == "error" {
			return NewThrownType(types.Universe.Lookup("error").Type()), true
		}
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			alias, typeName := name[:idx], name[idx+1:]
			for _, imp := range pkg.Imports() {
				if imp.Name() != alias {
					continue
				}
				if obj := imp.Scope().Lookup(typeName); obj != nil {
					return NewThrownType(obj.Type()), true
				}
			}
			return nil, false
		}
		if obj := pkg.Scope().Lookup(name); obj != nil {
			return NewThrownType(obj.Type()), true
		}
		return nil, false
	}
}

func findFunc(t *testing.T, g *Graph, pkg *types.Package, name string) (*Element, types.Object) {
	t.Helper()
	obj := pkg.Scope().Lookup(name)
	if obj == nil {
		t.Fatalf("no object named %s", name)
	}
	e, ok := g.ElementFor(obj)
	if !ok {
		t.Fatalf("no element for %s", name)
	}
	return e, obj
}
