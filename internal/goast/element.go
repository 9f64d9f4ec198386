package goast

import (
	"go/ast"
	"go/types"

	"github.com/go-checked/checkedexceptions/internal/annotation"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// Kind distinguishes the element shapes spec §4.6/§4.6.3 treat differently.
type Kind int

const (
	// KindFunction is a package-level func or a method that isn't a
	// getter/setter/constructor.
	KindFunction Kind = iota
	// KindGetter is a zero-parameter, single-result method following the
	// host's getter convention (SPEC_FULL §4.6's Go binding).
	KindGetter
	// KindSetter is a zero-result, single-parameter method named SetX.
	KindSetter
	// KindConstructor is a package-level func whose name starts with New;
	// its result type is not checked.
	KindConstructor
	// KindVariable is a field, parameter, local, or top-level var.
	KindVariable
	// KindSyntheticAccessor names an implicit struct-field getter. The graph
	// builder creates no element of this kind; fields are KindVariable.
	KindSyntheticAccessor
	// KindSyntheticConstructor is the implicit default constructor of a
	// struct with no declared constructor func (spec §4.6.5).
	KindSyntheticConstructor
)

// Element is one node of the element graph spec §4.6 computes configurations
// over: a func, method, getter/setter, constructor, or variable (field,
// parameter, local, or top-level var).
type Element struct {
	Obj        types.Object
	Loc        configuration.ElementLocation
	Kind       Kind
	Directives []annotation.Directive

	// Executable elements (Kind != KindVariable):
	Body       *ast.BlockStmt // nil for declarations without a body (interface methods, externs)
	Sig        *types.Signature
	ReturnType types.Type // first result type, or nil
	Async      bool       // ReturnType is future-like
	Overridden []types.Object // direct overridden members' objects, per spec §4.8

	// Variable elements (Kind == KindVariable):
	VarType     types.Type
	Initializer ast.Expr
	IsLate      bool
	IsField     bool
	FieldOwner  *types.Named // struct the field belongs to, for inheritance (§4.6.3)
}

// IsExecutable reports whether this element has a body/signature to analyze,
// as opposed to being a plain variable.
func (e Element) IsExecutable() bool {
	return e.Kind != KindVariable
}
