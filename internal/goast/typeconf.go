package goast

import (
	"go/types"

	"github.com/go-checked/checkedexceptions/internal/annotation"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// TypeConf implements the type-configuration deriver (spec §4.3): the
// ValueThrows a type contributes purely by virtue of its shape, independent
// of any body or initializer.
func TypeConf(t types.Type, dt DirectiveTable, resolve annotation.TypeResolver) map[configuration.PromotionKind]configuration.Configuration {
	_, isFuture := IsFuture(t)
	_, isCallable := IsCallable(t)

	switch {
	case isFuture && isCallable:
		return ambiguousDualShape(t, dt, resolve)
	case isFuture:
		u, _ := IsFuture(t)
		return map[configuration.PromotionKind]configuration.Configuration{
			configuration.Await: configuration.New(aliasThrows(t, dt, resolve), TypeConf(u, dt, resolve)),
		}
	case isCallable:
		sig, _ := IsCallable(t)
		return map[configuration.PromotionKind]configuration.Configuration{
			configuration.Invoke: configuration.New(aliasThrows(t, dt, resolve), valueOfSignature(sig, dt, resolve)),
		}
	default:
		return nil
	}
}

// ambiguousDualShape handles a future-of-callable (or callable-of-future)
// type: both slots are still structurally derived, but the alias's own
// directive throws would be ambiguous between the two slots, so it is
// dropped per spec §4.3.
func ambiguousDualShape(t types.Type, dt DirectiveTable, resolve annotation.TypeResolver) map[configuration.PromotionKind]configuration.Configuration {
	out := map[configuration.PromotionKind]configuration.Configuration{}
	if u, ok := IsFuture(t); ok {
		out[configuration.Await] = configuration.New(configuration.Empty, TypeConf(u, dt, resolve))
	}
	if sig, ok := IsCallable(t); ok {
		out[configuration.Invoke] = configuration.New(configuration.Empty, valueOfSignature(sig, dt, resolve))
	}
	return out
}

// valueOfSignature derives the value slots contributed by a callable's
// result type, per spec §4.3's "typeConf(returnType)". Go signatures can
// return multiple values; the primary (non-error) result is the one that
// participates in nested promotion (a function returning a function, or a
// future), following Go's convention of placing that value first and an
// error last.
func valueOfSignature(sig *types.Signature, dt DirectiveTable, resolve annotation.TypeResolver) map[configuration.PromotionKind]configuration.Configuration {
	res := sig.Results()
	if res.Len() == 0 {
		return nil
	}
	return TypeConf(res.At(0).Type(), dt, resolve)
}

// aliasThrows looks up the annotation reader's Throws for t's typedef
// element, if t is a defined (named) type carrying its own directives, per
// spec §4.3's "aliasThrows(τ) = annotation reader on the alias element".
func aliasThrows(t types.Type, dt DirectiveTable, resolve annotation.TypeResolver) configuration.Throws {
	named, ok := t.(*types.Named)
	if !ok {
		return configuration.Empty
	}
	ds := dt.Directives(named.Obj())
	if len(ds) == 0 {
		return configuration.Empty
	}
	return annotation.Read(ds, resolve)
}
