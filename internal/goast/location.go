package goast

import (
	"fmt"
	"go/types"

	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// LocationOf derives the stable ElementLocation (spec §3) for a go/types
// object: library is its package's import path, path is a dotted name —
// Receiver.Method for methods, bare Name for everything else. The implicit
// default constructor's Type.new location comes from
// DefaultConstructorLocation, not from here.
func LocationOf(obj types.Object) configuration.ElementLocation {
	pkgPath := ""
	if pkg := obj.Pkg(); pkg != nil {
		pkgPath = pkg.Path()
	}

	if fn, ok := obj.(*types.Func); ok {
		if sig, ok := fn.Type().(*types.Signature); ok && sig.Recv() != nil {
			recvName := recvTypeName(sig.Recv().Type())
			return configuration.NewElementLocation(pkgPath, recvName+"."+fn.Name())
		}
	}
	return configuration.NewElementLocation(pkgPath, obj.Name())
}

// ParamLocation derives the $n positional-parameter location nested under an
// executable element's own location, per spec §3's "$n for positional
// parameters".
func ParamLocation(owner configuration.ElementLocation, index int) configuration.ElementLocation {
	return owner.Child(fmt.Sprintf("$%d", index))
}

// DefaultConstructorLocation derives the synthetic default constructor
// location for a struct type with no declared constructor, per spec §3's
// "new for default constructor".
func DefaultConstructorLocation(named *types.Named) configuration.ElementLocation {
	pkgPath := ""
	if pkg := named.Obj().Pkg(); pkg != nil {
		pkgPath = pkg.Path()
	}
	return configuration.NewElementLocation(pkgPath, named.Obj().Name()+".new")
}

func recvTypeName(t types.Type) string {
	switch tt := t.(type) {
	case *types.Pointer:
		return recvTypeName(tt.Elem())
	case *types.Named:
		return tt.Obj().Name()
	default:
		return t.String()
	}
}
