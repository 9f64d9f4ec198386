package goast

import (
	"go/types"

	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// goType adapts a go/types.Type into a configuration.ThrownType: the "opaque
// handle into the host type system" spec §3 describes. Two goTypes compare
// equal, for antichain/map-key purposes, when their type strings (Key) are
// equal.
type goType struct {
	t types.Type
}

// NewThrownType wraps a go/types.Type as a configuration.ThrownType.
func NewThrownType(t types.Type) configuration.ThrownType {
	return goType{t: t}
}

func (g goType) IsAssignableTo(u configuration.ThrownType) bool {
	other, ok := u.(goType)
	if !ok {
		return false
	}
	return types.AssignableTo(g.t, other.t)
}

// exceptionIfaceType is the exception.Exception interface, looked up once and
// reused by every IsExceptionSubtype check.
var exceptionIfaceType *types.Interface

// RegisterExceptionInterface lets the caller (internal/lint, at pass setup)
// hand over the *types.Interface for pkg/exception.Exception as resolved in
// the analyzed module's type-checked import graph. Until this is called,
// IsExceptionSubtype conservatively reports false so nothing is treated as a
// checked Exception by mistake.
func RegisterExceptionInterface(iface *types.Interface) {
	exceptionIfaceType = iface
}

func (g goType) IsExceptionSubtype() bool {
	if exceptionIfaceType == nil {
		return false
	}
	return types.Implements(g.t, exceptionIfaceType) || types.Implements(types.NewPointer(g.t), exceptionIfaceType)
}

func (g goType) Key() string {
	return g.t.String()
}

func (g goType) String() string {
	if named, ok := g.t.(*types.Named); ok {
		return named.Obj().Name()
	}
	return g.t.String()
}

// errorType is the universe `error` type, used throughout internal/goast to
// recognize plain error returns/panics that aren't checked Exceptions.
var errorType = types.Universe.Lookup("error").Type()

// IsErrorLike reports whether t satisfies the builtin error interface.
func IsErrorLike(t types.Type) bool {
	return types.Implements(t, errorType.Underlying().(*types.Interface)) ||
		types.Implements(types.NewPointer(t), errorType.Underlying().(*types.Interface))
}

// ExceptionPackagePath is the import path of pkg/exception, used by
// internal/lint to find and register its Exception interface via
// RegisterExceptionInterface.
const ExceptionPackagePath = "github.com/go-checked/checkedexceptions/pkg/exception"

// Decompose exposes a ThrownType's underlying named type as a package path
// and declared name, the only information that survives a gob round trip
// across a go/analysis fact boundary intact. ok is false for an unnamed type
// (e.g. a struct literal type), which a fact simply drops rather than
// encoding structurally.
func Decompose(t configuration.ThrownType) (pkgPath, name string, ok bool) {
	g, isGoType := t.(goType)
	if !isGoType {
		return "", "", false
	}
	if types.Identical(g.t, errorType) {
		return "", "error", true
	}
	named, isNamed := g.t.(*types.Named)
	if !isNamed {
		return "", "", false
	}
	obj := named.Obj()
	pkg := obj.Pkg()
	if pkg == nil {
		return "", obj.Name(), true
	}
	return pkg.Path(), obj.Name(), true
}

// Recompose resolves a Decompose'd (pkgPath, name) pair back into a
// ThrownType, using lookupPkg to find the package the name was declared in —
// ordinarily a pass's own import graph, since that's the only universe whose
// object identity a fact importer can trust.
func Recompose(pkgPath, name string, lookupPkg func(path string) *types.Package) (configuration.ThrownType, bool) {
	if pkgPath == "" && name == "error" {
		return NewThrownType(errorType), true
	}
	pkg := lookupPkg(pkgPath)
	if pkg == nil {
		return nil, false
	}
	obj := pkg.Scope().Lookup(name)
	if obj == nil {
		return nil, false
	}
	return NewThrownType(obj.Type()), true
}
