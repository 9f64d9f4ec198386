package resolver

import (
	"go/types"
	"strings"

	"github.com/go-checked/checkedexceptions/internal/annotation"
	"github.com/go-checked/checkedexceptions/internal/goast"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// BuildTypeResolver builds the annotation.TypeResolver (spec §6: "resolved
// against imports ∪ library") for directives found in pkg: a bare name is
// looked up in pkg's own scope, a dotted name's prefix is matched against
// pkg's imported packages by name, and "error" always resolves to the
// builtin interface regardless of scope.
func BuildTypeResolver(pkg *types.Package) annotation.TypeResolver {
	return func(name string) (configuration.ThrownType, bool) {
		if name == "error" {
			return goast.NewThrownType(types.Universe.Lookup("error").Type()), true
		}
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			alias, typeName := name[:idx], name[idx+1:]
			for _, imp := range pkg.Imports() {
				if imp.Name() != alias {
					continue
				}
				if obj := imp.Scope().Lookup(typeName); obj != nil {
					return goast.NewThrownType(obj.Type()), true
				}
			}
			return nil, false
		}
		if obj := pkg.Scope().Lookup(name); obj != nil {
			return goast.NewThrownType(obj.Type()), true
		}
		return nil, false
	}
}
