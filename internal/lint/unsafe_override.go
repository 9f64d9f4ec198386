package lint

import (
	"golang.org/x/tools/go/analysis"

	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// UnsafeOverrideAnalyzer implements spec §4.10's unsafe-override rule: an
// overriding method must not be able to throw anything the member it
// overrides (an embedded struct's method, or an interface method it
// implements) doesn't already declare — the checked-exceptions analogue of
// Liskov's contravariant-throws rule.
var UnsafeOverrideAnalyzer = &analysis.Analyzer{
	Name:     "unsafeoverride",
	Doc:      "reports a method whose checked throws are wider than a member it overrides or implements declares",
	Run:      runUnsafeOverride,
	Requires: []*analysis.Analyzer{configAnalyzer},
}

func runUnsafeOverride(pass *analysis.Pass) (interface{}, error) {
	state := pass.ResultOf[configAnalyzer].(*passState)

	for _, obj := range state.graph.Objects() {
		elem, ok := state.graph.ElementFor(obj)
		if !ok || len(elem.Overridden) == 0 {
			continue
		}
		own := effectiveThrows(state.session.ConfigurationForObject(obj))
		for _, sup := range elem.Overridden {
			superConf := state.session.ConfigurationForObject(sup)
			if !configuration.ThrowsCompatible(own, effectiveThrows(superConf)) {
				pass.Reportf(obj.Pos(), "%s's checked throws are wider than the member it overrides (%s)", obj.Name(), sup.Name())
			}
		}
	}
	return nil, nil
}
