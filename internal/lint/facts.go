package lint

import (
	"encoding/gob"
	"go/types"

	"golang.org/x/tools/go/analysis"

	"github.com/go-checked/checkedexceptions/internal/goast"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

func init() {
	gob.Register(&ConfigurationFact{})
}

// serialType is a gob-safe, cross-package-stable identity for a thrown
// type: its package path and declared name, or the builtin error marker
// when PkgPath is empty and Name is "error". A fact can't carry a
// go/types.Type across the gob boundary directly — the importing pass has
// to re-resolve the name against its own import graph (see goast.Recompose).
type serialType struct {
	PkgPath string
	Name    string
}

type serialThrows struct {
	Types              []serialType
	CanThrowUndeclared bool
	AdmitsObject       bool
}

type serialConfiguration struct {
	Throws serialThrows
	Invoke *serialConfiguration
	Await  *serialConfiguration
}

// ConfigurationFact carries one element's settled Configuration across a
// package boundary, attached to the types.Object it belongs to — the
// mechanism the element graph needs for cross-package calls, since
// go/analysis type-checks and runs one package's pass at a time.
type ConfigurationFact struct {
	Conf serialConfiguration
}

func (*ConfigurationFact) AFact() {}

func (f *ConfigurationFact) String() string {
	return "checkedexceptions(" + f.Conf.Throws.describe() + ")"
}

func (t serialThrows) describe() string {
	if len(t.Types) == 0 && !t.CanThrowUndeclared {
		return "empty"
	}
	s := ""
	for i, ty := range t.Types {
		if i > 0 {
			s += ","
		}
		if ty.PkgPath != "" {
			s += ty.PkgPath + "."
		}
		s += ty.Name
	}
	if t.CanThrowUndeclared {
		if s != "" {
			s += "+"
		}
		s += "undeclared"
	}
	return s
}

// toFact converts a resolved Configuration into its gob-serializable form.
func toFact(c configuration.Configuration) *ConfigurationFact {
	return &ConfigurationFact{Conf: toSerial(c)}
}

func toSerial(c configuration.Configuration) serialConfiguration {
	sc := serialConfiguration{Throws: toSerialThrows(c.Throws)}
	if v, ok := c.Value(configuration.Invoke); ok {
		s := toSerial(v)
		sc.Invoke = &s
	}
	if v, ok := c.Value(configuration.Await); ok {
		s := toSerial(v)
		sc.Await = &s
	}
	return sc
}

func toSerialThrows(t configuration.Throws) serialThrows {
	st := serialThrows{CanThrowUndeclared: t.CanThrowUndeclared(), AdmitsObject: t.AdmitsObject()}
	for _, ty := range t.ThrownTypes() {
		pkgPath, name, ok := goast.Decompose(ty)
		if !ok {
			continue
		}
		st.Types = append(st.Types, serialType{PkgPath: pkgPath, Name: name})
	}
	return st
}

// fromFact rehydrates a ConfigurationFact into a Configuration, using
// lookupPkg (ordinarily a pass's own import graph) to resolve each
// serialType's package.
func fromFact(f *ConfigurationFact, lookupPkg func(pkgPath string) *types.Package) configuration.Configuration {
	return fromSerial(f.Conf, lookupPkg)
}

func fromSerial(sc serialConfiguration, lookupPkg func(string) *types.Package) configuration.Configuration {
	throws := fromSerialThrows(sc.Throws, lookupPkg)
	slots := map[configuration.PromotionKind]configuration.Configuration{}
	if sc.Invoke != nil {
		slots[configuration.Invoke] = fromSerial(*sc.Invoke, lookupPkg)
	}
	if sc.Await != nil {
		slots[configuration.Await] = fromSerial(*sc.Await, lookupPkg)
	}
	return configuration.New(throws, slots)
}

func fromSerialThrows(st serialThrows, lookupPkg func(string) *types.Package) configuration.Throws {
	var thrown []configuration.ThrownType
	for _, ty := range st.Types {
		if t, ok := goast.Recompose(ty.PkgPath, ty.Name, lookupPkg); ok {
			thrown = append(thrown, t)
		}
	}
	base := configuration.NewExplicit(thrown, st.CanThrowUndeclared)
	if st.AdmitsObject {
		return configuration.UnionThrows([]configuration.Throws{base, configuration.ObjectThrows()})
	}
	return base
}

// importerFromPass builds a lookupPkg function over pass's whole transitive
// import graph, for fromFact to resolve a fact's package-qualified names
// against.
func importerFromPass(pass *analysis.Pass) func(string) *types.Package {
	cache := map[string]*types.Package{}
	var walk func(p *types.Package)
	walk = func(p *types.Package) {
		if _, seen := cache[p.Path()]; seen {
			return
		}
		cache[p.Path()] = p
		for _, imp := range p.Imports() {
			walk(imp)
		}
	}
	walk(pass.Pkg)
	return func(path string) *types.Package {
		return cache[path]
	}
}
