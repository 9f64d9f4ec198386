package goast

import (
	"go/ast"
	"go/types"
	"strings"

	"github.com/go-checked/checkedexceptions/internal/annotation"
)

// Graph is the element graph of one analyzed package: every func, method,
// getter/setter, constructor, field and top-level var, indexed by its
// go/types.Object, plus the directive table and the host type-resolution
// hooks needed to compute configurations over it. It is the concrete
// realization of the "cyclic element/AST graph" spec §4.9 talks about.
type Graph struct {
	Info       *types.Info
	Directives DirectiveTable
	Resolve    annotation.TypeResolver

	byObj     map[types.Object]*Element
	order     []types.Object
	synthetic []*Element
}

// record indexes e by obj and appends obj to the declaration-order list
// Objects() returns.
func (g *Graph) record(obj types.Object, e *Element) {
	g.byObj[obj] = e
	g.order = append(g.order, obj)
}

// NewGraph builds the element graph for a set of type-checked files.
func NewGraph(files []*ast.File, info *types.Info, resolve annotation.TypeResolver) *Graph {
	g := &Graph{
		Info:       info,
		Directives: BuildDirectiveTable(files, info),
		Resolve:    resolve,
		byObj:      make(map[types.Object]*Element),
	}
	for _, f := range files {
		g.collectFile(f)
	}
	g.synthesizeConstructors()
	g.linkOverrides()
	return g
}

// ElementFor returns the Element recorded for obj, if any.
func (g *Graph) ElementFor(obj types.Object) (*Element, bool) {
	e, ok := g.byObj[obj]
	return e, ok
}

// Objects returns every object the graph has an Element for, in a stable
// order (declaration order within each file, files in the order NewGraph saw
// them) so repeated settle-loop iterations visit elements deterministically.
func (g *Graph) Objects() []types.Object {
	out := make([]types.Object, 0, len(g.order))
	out = append(out, g.order...)
	return out
}

// SyntheticElements returns the default-constructor elements synthesized for
// structs that declare no constructor func of their own (spec §4.6.5). These
// elements are not in Objects(), so the settle loop never computes a
// configuration for them, and no other code in the module reads them.
func (g *Graph) SyntheticElements() []*Element {
	return g.synthetic
}

// synthesizeConstructors adds a KindSyntheticConstructor element, at the
// "new" location spec §3 reserves for it, for every struct with at least one
// named field that has no declared New-prefixed constructor function in this
// package returning it.
func (g *Graph) synthesizeConstructors() {
	declared := map[*types.Named]bool{}
	owners := map[*types.Named]bool{}
	for _, e := range g.byObj {
		if e.Kind == KindConstructor && e.ReturnType != nil {
			if named, ok := underlyingNamed(e.ReturnType); ok {
				declared[named] = true
			}
		}
		if e.IsField && e.FieldOwner != nil {
			owners[e.FieldOwner] = true
		}
	}
	for named := range owners {
		if declared[named] {
			continue
		}
		g.synthetic = append(g.synthetic, &Element{
			Loc:        DefaultConstructorLocation(named),
			Kind:       KindSyntheticConstructor,
			ReturnType: named,
		})
	}
}

func underlyingNamed(t types.Type) (*types.Named, bool) {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	return named, ok
}

func (g *Graph) collectFile(f *ast.File) {
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			g.collectFunc(d)
		case *ast.GenDecl:
			g.collectGenDecl(d)
		}
	}
}

func (g *Graph) collectFunc(d *ast.FuncDecl) {
	obj, ok := g.Info.Defs[d.Name].(*types.Func)
	if !ok {
		return
	}
	sig, ok := obj.Type().(*types.Signature)
	if !ok {
		return
	}

	kind := classifyFunc(d.Name.Name, sig)
	e := &Element{
		Obj:        obj,
		Loc:        LocationOf(obj),
		Kind:       kind,
		Directives: g.Directives.Directives(obj),
		Body:       d.Body,
		Sig:        sig,
	}
	e.ReturnType, e.Async = primaryResult(sig)
	g.record(obj, e)
}

func (g *Graph) collectGenDecl(d *ast.GenDecl) {
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			switch t := s.Type.(type) {
			case *ast.StructType:
				g.collectStructFields(s, t)
			case *ast.InterfaceType:
				g.collectInterfaceMethods(t)
			}
		case *ast.ValueSpec:
			g.collectValueSpec(d, s)
		}
	}
}

// collectInterfaceMethods gives each explicitly declared interface method
// its own Element, the same way collectStructFields does for struct fields:
// read straight off the method spec's own doc comment rather than through
// DirectiveTable, since BuildDirectiveTable only walks top-level decls.
// Without this, overriddenMethods' BFS (spec §4.8) would hand back an
// interface method object ComputeConfiguration and the settle loop never
// visit — an abstract super with no Element of its own silently resolves to
// Configuration::empty, defeating both inherited-configuration and
// unsafe-override. An embedded interface (no Names) contributes no method
// of its own here; its methods are promoted and visited via directSupers.
func (g *Graph) collectInterfaceMethods(it *ast.InterfaceType) {
	if it.Methods == nil {
		return
	}
	for _, field := range it.Methods.List {
		if len(field.Names) != 1 {
			continue
		}
		obj, ok := g.Info.Defs[field.Names[0]].(*types.Func)
		if !ok {
			continue
		}
		sig, ok := obj.Type().(*types.Signature)
		if !ok {
			continue
		}
		kind := classifyFunc(field.Names[0].Name, sig)
		e := &Element{
			Obj:        obj,
			Loc:        LocationOf(obj),
			Kind:       kind,
			Directives: annotation.ParseComment(docText(field.Doc)),
			Sig:        sig,
		}
		e.ReturnType, e.Async = primaryResult(sig)
		g.record(obj, e)
	}
}

func (g *Graph) collectStructFields(ts *ast.TypeSpec, st *ast.StructType) {
	named, ok := g.Info.Defs[ts.Name].(*types.TypeName)
	if !ok {
		return
	}
	namedType, ok := named.Type().(*types.Named)
	if !ok || st.Fields == nil {
		return
	}
	for _, field := range st.Fields.List {
		ds := annotation.ParseComment(docText(field.Doc))
		for _, name := range field.Names {
			obj, ok := g.Info.Defs[name].(*types.Var)
			if !ok {
				continue
			}
			e := &Element{
				Obj:        obj,
				Loc:        LocationOf(obj).Child(obj.Name()),
				Kind:       KindVariable,
				Directives: ds,
				VarType:    obj.Type(),
				IsField:    true,
				FieldOwner: namedType,
			}
			g.record(obj, e)
		}
	}
}

func (g *Graph) collectValueSpec(d *ast.GenDecl, s *ast.ValueSpec) {
	doc := s.Doc
	if doc == nil {
		doc = d.Doc
	}
	ds := annotation.ParseComment(docText(doc))
	late := isLateComment(doc)
	for i, name := range s.Names {
		obj, ok := g.Info.Defs[name].(*types.Var)
		if !ok || name.Name == "_" {
			continue
		}
		e := &Element{
			Obj:        obj,
			Loc:        LocationOf(obj),
			Kind:       KindVariable,
			Directives: ds,
			VarType:    obj.Type(),
			IsLate:     late,
		}
		if i < len(s.Values) {
			e.Initializer = s.Values[i]
		}
		g.record(obj, e)
	}
}

// isLateComment recognizes //checkedexceptions:late directly from the raw
// doc text: "late" isn't part of the core annotation vocabulary (spec §6),
// which annotation.ParseComment enforces, but SPEC_FULL §4.6's late-variable
// rule needs something to trigger on even in a host language, Go, that has
// no lazily-initialized variables of its own.
func isLateComment(doc *ast.CommentGroup) bool {
	return strings.Contains(docText(doc), "checkedexceptions:late")
}

func classifyFunc(name string, sig *types.Signature) Kind {
	if sig.Recv() == nil {
		if strings.HasPrefix(name, "New") {
			return KindConstructor
		}
		return KindFunction
	}
	params := sig.Params()
	results := sig.Results()
	if strings.HasPrefix(name, "Set") && params.Len() == 1 && results.Len() == 0 {
		return KindSetter
	}
	if params.Len() == 0 && results.Len() == 1 {
		return KindGetter
	}
	return KindFunction
}

// primaryResult picks the result that participates in nested promotion
// (spec §4.3's typeConf(returnType)) — the first result, whatever its type —
// and reports whether that result is future-like, which
// determines Async for adapt() (spec §4.6).
func primaryResult(sig *types.Signature) (types.Type, bool) {
	res := sig.Results()
	if res.Len() == 0 {
		return nil, false
	}
	t := res.At(0).Type()
	_, isFuture := IsFuture(t)
	return t, isFuture
}
