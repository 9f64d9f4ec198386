package goast

import "go/types"

// IsFuture reports whether t is future-like per SPEC_FULL §4: a named type
// (or pointer to one) with a method literally named Await returning exactly
// (U, error) or (context.Context) (U, error).
func IsFuture(t types.Type) (result types.Type, ok bool) {
	m := lookupMethod(t, "Await")
	if m == nil {
		return nil, false
	}
	sig, ok := m.Type().(*types.Signature)
	if !ok {
		return nil, false
	}
	params := sig.Params()
	if params.Len() > 1 {
		return nil, false
	}
	if params.Len() == 1 {
		named, ok := params.At(0).Type().(*types.Named)
		if !ok || named.Obj().Pkg() == nil || named.Obj().Pkg().Path() != "context" || named.Obj().Name() != "Context" {
			return nil, false
		}
	}
	res := sig.Results()
	if res.Len() != 2 {
		return nil, false
	}
	if !IsErrorLike(res.At(1).Type()) {
		return nil, false
	}
	return res.At(0).Type(), true
}

// IsCallable reports whether t is structurally callable per SPEC_FULL §4: a
// plain function type, or a named type with a non-static method literally
// named Call.
func IsCallable(t types.Type) (sig *types.Signature, ok bool) {
	if fsig, ok := t.Underlying().(*types.Signature); ok {
		return fsig, true
	}
	m := lookupMethod(t, "Call")
	if m == nil {
		return nil, false
	}
	sig, ok = m.Type().(*types.Signature)
	return sig, ok
}

// lookupMethod finds a method by name on t or *t using the method set,
// handling both value and pointer receivers.
func lookupMethod(t types.Type, name string) *types.Func {
	for _, candidate := range []types.Type{t, types.NewPointer(t)} {
		ms := types.NewMethodSet(candidate)
		sel := ms.Lookup(nil, name)
		if sel == nil {
			continue
		}
		if fn, ok := sel.Obj().(*types.Func); ok {
			return fn
		}
	}
	return nil
}

// LastResultIsError reports whether sig's last result is error-like.
// bodylessConfiguration uses it to give a bodyless, non-future func with a
// trailing error result an undeclared throw.
func LastResultIsError(sig *types.Signature) bool {
	res := sig.Results()
	if res.Len() == 0 {
		return false
	}
	return IsErrorLike(res.At(res.Len() - 1).Type())
}
