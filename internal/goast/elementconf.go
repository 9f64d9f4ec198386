package goast

import (
	"go/ast"

	"github.com/go-checked/checkedexceptions/internal/annotation"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// OverrideLookup resolves an element location against the loaded override
// table (internal/overrides). internal/goast never loads the table itself —
// it only consults whatever internal/resolver hands it, keeping the override
// file format entirely out of this package.
type OverrideLookup func(loc configuration.ElementLocation) (configuration.Configuration, bool)

// ComputeConfiguration implements the element configuration computer (spec
// §4.6): an override table entry wins for any element. After that, an
// executable takes its explicit annotation, else the configuration inferred
// from its body, else (bodyless) the intersection of overridden members'
// configurations, else the bodyless signature default. A variable takes its
// explicit annotation, else an overridden field's configuration, else its
// type-derived value slots plus a late initializer's inferred throws.
func ComputeConfiguration(ctx *VisitContext, e *Element, dt DirectiveTable, resolve annotation.TypeResolver, overrides OverrideLookup) configuration.Configuration {
	if overrides != nil {
		if conf, ok := overrides(e.Loc); ok {
			return conf
		}
	}
	if e.Kind == KindVariable {
		return variableConfiguration(ctx, e, dt, resolve)
	}
	return executableConfiguration(ctx, e, dt, resolve)
}

func executableConfiguration(ctx *VisitContext, e *Element, dt DirectiveTable, resolve annotation.TypeResolver) configuration.Configuration {
	if len(e.Directives) > 0 {
		raw := annotation.Read(e.Directives, resolve)
		return adapt(e, raw, dt, resolve)
	}
	if e.Body != nil {
		raw := FindThrows(ctx, e.Body)
		return adapt(e, raw, dt, resolve)
	}
	// No body to infer from (interface method, extern): an un-annotated
	// override falls back to what it overrides, same as a field falling back
	// to its overridden field in variableConfiguration. A body always wins
	// over this — unsafe-override needs the override's *own* inferred
	// configuration to compare against the inherited one, not the inherited
	// one standing in for it.
	if len(e.Overridden) > 0 {
		if inherited, ok := inheritedConfiguration(ctx, e); ok {
			return inherited
		}
	}
	return bodylessConfiguration(e, dt, resolve)
}

// bodylessConfiguration covers interface method declarations and standard-
// library funcs this module can't see a body for. With no annotation,
// override or inherited entry to go on, spec §6's override table is meant to
// be the authority for these — but absent even that, a function whose last
// result is error-shaped is treated as potentially throwing some undeclared
// error, the same default Go code itself assumes at every unchecked call:
// it's the only signal a bodyless signature carries about checked-throws
// behavior on its own.
func bodylessConfiguration(e *Element, dt DirectiveTable, resolve annotation.TypeResolver) configuration.Configuration {
	if e.Obj == nil {
		return configuration.ConfEmpty
	}
	var valueSlots map[configuration.PromotionKind]configuration.Configuration
	if tc := TypeConf(e.Obj.Type(), dt, resolve); tc != nil {
		valueSlots = tc
	}
	if e.Sig != nil && LastResultIsError(e.Sig) && !e.Async {
		raw := configuration.NewInferred(nil, true)
		return adapt(e, raw, dt, resolve)
	}
	return configuration.ForValue(valueSlots)
}

func variableConfiguration(ctx *VisitContext, e *Element, dt DirectiveTable, resolve annotation.TypeResolver) configuration.Configuration {
	if len(e.Directives) > 0 {
		raw := annotation.Read(e.Directives, resolve)
		var valueSlots map[configuration.PromotionKind]configuration.Configuration
		if e.VarType != nil {
			valueSlots = TypeConf(e.VarType, dt, resolve)
		}
		return configuration.New(raw, valueSlots)
	}
	if e.IsField && len(e.Overridden) > 0 {
		if inherited, ok := inheritedConfiguration(ctx, e); ok {
			return inherited
		}
	}

	var valueSlots map[configuration.PromotionKind]configuration.Configuration
	if e.VarType != nil {
		valueSlots = TypeConf(e.VarType, dt, resolve)
	}

	throws := configuration.Empty
	// An eager variable's initializer throws belong to the statement that
	// declares it, not to every later read of the variable — only a late
	// variable defers that evaluation to first access, so only a late
	// variable's own configuration carries it.
	if e.IsLate && e.Initializer != nil {
		throws = inferredExprThrows(ctx, e.Initializer)
	}
	return configuration.New(throws, valueSlots)
}

// inheritedConfiguration implements spec §4.8's inherited-configuration rule:
// the intersection of every directly overridden member's own (recursively
// resolved) configuration.
func inheritedConfiguration(ctx *VisitContext, e *Element) (configuration.Configuration, bool) {
	if len(e.Overridden) == 0 {
		return configuration.ConfEmpty, false
	}
	confs := make([]configuration.Configuration, 0, len(e.Overridden))
	for _, sup := range e.Overridden {
		confs = append(confs, ctx.Deps.ConfigurationForObject(sup))
	}
	return configuration.Intersect(confs), true
}

// adapt wraps a raw Throws (from an annotation or from body inference) into
// the promotion shell a reference to this executable should expose: calling
// it (Invoke) produces the raw throws directly, unless the executable is
// async, in which case calling it hands back a Future and the raw throws
// only surface on Await. Getters and setters get no special treatment here:
// unlike the host language's implicit property access, Go always spells out
// the call, so a getter's Configuration is shaped exactly like any other
// zero-argument method's.
func adapt(e *Element, raw configuration.Throws, dt DirectiveTable, resolve annotation.TypeResolver) configuration.Configuration {
	var valueSlots map[configuration.PromotionKind]configuration.Configuration
	if e.ReturnType != nil {
		valueSlots = TypeConf(e.ReturnType, dt, resolve)
	}
	resultConf := configuration.New(raw, valueSlots)

	if e.Async {
		awaited := configuration.ForValue(map[configuration.PromotionKind]configuration.Configuration{
			configuration.Await: resultConf,
		})
		return configuration.ForValue(map[configuration.PromotionKind]configuration.Configuration{
			configuration.Invoke: awaited,
		})
	}
	return configuration.ForValue(map[configuration.PromotionKind]configuration.Configuration{
		configuration.Invoke: resultConf,
	})
}

// inferredExprThrows computes a late variable's initializer throws, marked
// as inferred per spec §3's distinction between annotation-anchored and
// body-derived Throws.
func inferredExprThrows(ctx *VisitContext, expr ast.Expr) configuration.Throws {
	t := ExprConfig(ctx, expr).Throws
	return configuration.NewInferred(t.ThrownTypes(), t.CanThrowUndeclared())
}
