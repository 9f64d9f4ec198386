package goast

import (
	"go/types"

	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// Deps is the narrow callback internal/goast needs back from internal/resolver
// to resolve a referenced element's Configuration while walking an expression
// or statement tree. internal/goast never imports internal/resolver directly —
// resolver depends on goast to build its element graph, so the dependency
// must run the other way, through this interface, to avoid a cycle.
type Deps interface {
	// ConfigurationForObject returns the current (possibly provisional)
	// Configuration for a referenced declaration — a func, method, field or
	// variable — per spec §4.9's memoized recursive lookup.
	ConfigurationForObject(obj types.Object) configuration.Configuration
}

// VisitContext bundles everything ExprConfig and FindThrows need to resolve
// a name or a call target while walking a function body.
type VisitContext struct {
	Info *types.Info
	Deps Deps
}
