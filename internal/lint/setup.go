// Package lint implements the three checked-exceptions lint rules (spec
// §4.10) as go/analysis Analyzers: uncaught-throw, unsafe-assignment and
// unsafe-override, plus the golangci-lint plugin that bundles them.
package lint

import (
	"context"
	"go/types"
	"reflect"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"

	"github.com/go-checked/checkedexceptions/internal/annotation"
	"github.com/go-checked/checkedexceptions/internal/goast"
	"github.com/go-checked/checkedexceptions/internal/overrides"
	"github.com/go-checked/checkedexceptions/internal/resolver"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// configAnalyzer computes the settled Configuration of every element in a
// package once and exports it as a ConfigurationFact on each element's
// object, so the three rule analyzers below can share the work via
// Requires instead of each re-running their own resolver Session.
var configAnalyzer = &analysis.Analyzer{
	Name:       "checkedexceptionsconfig",
	Doc:        "computes the checked-exceptions configuration of every element in a package (shared setup for the uncaught-throw, unsafe-assignment and unsafe-override rules)",
	Run:        runConfig,
	Requires:   []*analysis.Analyzer{inspect.Analyzer},
	FactTypes:  []analysis.Fact{(*ConfigurationFact)(nil)},
	ResultType: reflect.TypeOf(&passState{}),
}

// passState is what configAnalyzer hands the three rule analyzers: the
// element graph, the settled resolver session — which itself satisfies
// goast.Deps, checking its own settled elements first and falling back to
// an imported ConfigurationFact for a foreign object — and the
// resolve/directive hooks a rule needs to derive a parameter or variable's
// declared Configuration on its own, outside the element graph (e.g. a call
// argument's parameter type).
type passState struct {
	graph   *goast.Graph
	session *resolver.Session
	dt      goast.DirectiveTable
	resolve annotation.TypeResolver
}

func runConfig(pass *analysis.Pass) (interface{}, error) {
	state, err := setup(pass)
	if err != nil {
		return nil, err
	}
	exportConfigurationFacts(pass, state)
	return state, nil
}

func setup(pass *analysis.Pass) (*passState, error) {
	ensureExceptionInterface(pass)

	resolveFn := resolver.BuildTypeResolver(pass.Pkg)
	graph := goast.NewGraph(pass.Files, pass.TypesInfo, resolveFn)

	var table *overrides.Table
	if dir := packageDir(pass); dir != "" {
		t, err := overrides.Load(dir, projectRootFor(pass))
		if err != nil {
			return nil, err
		}
		table = t
	}

	fallback := &factFallback{pass: pass}
	sess := resolver.New(graph, pass.Pkg, table, fallback)
	fallback.session = sess

	if err := sess.Settle(context.Background()); err != nil {
		return nil, err
	}

	return &passState{
		graph:   graph,
		session: sess,
		dt:      graph.Directives,
		resolve: resolveFn,
	}, nil
}

// factFallback answers a goast.Deps query for an object the current
// package's own resolver Session has no memoized entry for — a call into
// another package's function, whose Configuration only exists as that
// package's already-exported ConfigurationFact.
type factFallback struct {
	pass    *analysis.Pass
	session *resolver.Session
}

func (f *factFallback) ConfigurationForObject(obj types.Object) configuration.Configuration {
	var fact ConfigurationFact
	if f.pass.ImportObjectFact(obj, &fact) {
		return fromFact(&fact, importerFromPass(f.pass))
	}
	return configuration.ConfEmpty
}

func exportConfigurationFacts(pass *analysis.Pass, state *passState) {
	for _, obj := range state.graph.Objects() {
		conf := state.session.ConfigurationForObject(obj)
		pass.ExportObjectFact(obj, toFact(conf))
	}
}

// ensureExceptionInterface registers pkg/exception.Exception's
// *types.Interface with internal/goast the first time it's visible in a
// pass's import graph, so IsExceptionSubtype can tell a host Exception from
// a plain error. The registration is a package-level global rather than
// per-pass state — harmless in practice, since every pass analyzing modules
// that import pkg/exception resolves the same underlying *types.Interface
// object from go/packages' shared type-checking universe.
func ensureExceptionInterface(pass *analysis.Pass) {
	imp := findImport(pass.Pkg, goast.ExceptionPackagePath)
	if imp == nil {
		return
	}
	obj := imp.Scope().Lookup("Exception")
	if obj == nil {
		return
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return
	}
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		return
	}
	goast.RegisterExceptionInterface(iface)
}

func findImport(pkg *types.Package, path string) *types.Package {
	if pkg.Path() == path {
		return pkg
	}
	for _, imp := range pkg.Imports() {
		if imp.Path() == path {
			return imp
		}
	}
	return nil
}

// effectiveThrows unwraps an adapt()-shaped element Configuration (spec
// §4.6: a bare Invoke wrap, or Invoke→Await for an async executable) down to
// the Throws that actually fire when the element is fully invoked (and
// awaited) — the comparison surface both unsafe-assignment and
// unsafe-override need, rather than the raw promotion-shell wrapper.
func effectiveThrows(conf configuration.Configuration) configuration.Throws {
	if invoke, ok := conf.Value(configuration.Invoke); ok {
		if awaited, ok := invoke.Value(configuration.Await); ok {
			return awaited.Throws
		}
		return invoke.Throws
	}
	return conf.Throws
}
