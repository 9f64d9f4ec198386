package goast

import "go/types"

// linkOverrides populates Element.Overridden for every method, getter,
// setter and field in the graph by walking direct supertypes breadth-first,
// per spec §4.8: "look for a child with the same name... if found, request
// its configuration and stop descending through that super. If not found,
// continue to that super's supers."
//
// Go has no class inheritance, mixins or superclass constraints; its analogue
// is struct/interface embedding, which this walks as the set of "direct
// supertypes" — the types named in embedded fields (for a struct) or
// embedded interfaces (for an interface).
func (g *Graph) linkOverrides() {
	for _, e := range g.byObj {
		switch e.Kind {
		case KindFunction, KindGetter, KindSetter:
			e.Overridden = overriddenMethods(e.Obj, recvTypeOf(e.Sig))
		case KindVariable:
			if e.IsField {
				e.Overridden = overriddenFields(e.Obj, e.FieldOwner)
			}
		}
	}
}

func recvTypeOf(sig *types.Signature) types.Type {
	if sig == nil || sig.Recv() == nil {
		return nil
	}
	t := sig.Recv().Type()
	if ptr, ok := t.(*types.Pointer); ok {
		return ptr.Elem()
	}
	return t
}

// overriddenMethods runs the breadth-first search of spec §4.8 for a method
// named obj.Name() starting at recv's direct supertypes.
func overriddenMethods(obj types.Object, recv types.Type) []types.Object {
	if recv == nil {
		return nil
	}
	name := obj.Name()
	var collected []types.Object
	queue := directSupers(recv)
	visited := map[types.Type]bool{}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if t == nil || visited[t] {
			continue
		}
		visited[t] = true

		if m := findDirectMethod(t, name); m != nil {
			if samePrivacyScope(obj, m) {
				collected = append(collected, m)
				continue // stop descending through this super
			}
		}
		queue = append(queue, directSupers(t)...)
	}
	return collected
}

// overriddenFields mirrors overriddenMethods for struct fields: a field of
// the same name declared directly on an embedded struct is the "overridden"
// member (spec §4.8's "child"), used by the element computer's field rule
// (spec §4.6.3) to intersect a field's configuration with its shadowed
// counterpart.
func overriddenFields(obj types.Object, owner *types.Named) []types.Object {
	if owner == nil {
		return nil
	}
	name := obj.Name()
	var collected []types.Object
	queue := directSupers(owner)
	visited := map[types.Type]bool{}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if t == nil || visited[t] {
			continue
		}
		visited[t] = true

		if f := findDirectField(t, name); f != nil {
			if samePrivacyScope(obj, f) {
				collected = append(collected, f)
				continue
			}
		}
		queue = append(queue, directSupers(t)...)
	}
	return collected
}

// samePrivacyScope implements spec §4.8's "if m is private, only in m's own
// library" restriction.
func samePrivacyScope(m, candidate types.Object) bool {
	if m.Exported() {
		return true
	}
	return m.Pkg() == candidate.Pkg()
}

// directSupers returns the types named by t's embedded fields (struct) or
// embedded interfaces (interface) — spec §4.8's "super-class, implemented
// interfaces, mixins, mixin-superclass-constraints" collapsed onto Go's one
// composition mechanism, embedding.
func directSupers(t types.Type) []types.Type {
	named, ok := t.(*types.Named)
	if !ok {
		return nil
	}
	switch u := named.Underlying().(type) {
	case *types.Interface:
		var out []types.Type
		for i := 0; i < u.NumEmbeddeds(); i++ {
			out = append(out, u.EmbeddedType(i))
		}
		return out
	case *types.Struct:
		var out []types.Type
		for i := 0; i < u.NumFields(); i++ {
			f := u.Field(i)
			if f.Embedded() {
				out = append(out, unwrapPointer(f.Type()))
			}
		}
		return out
	default:
		return nil
	}
}

func unwrapPointer(t types.Type) types.Type {
	if p, ok := t.(*types.Pointer); ok {
		return p.Elem()
	}
	return t
}

// findDirectMethod looks for a method declared directly on t (not promoted
// from one of t's own embeds) named name.
func findDirectMethod(t types.Type, name string) types.Object {
	named, ok := t.(*types.Named)
	if !ok {
		return nil
	}
	if iface, ok := named.Underlying().(*types.Interface); ok {
		for i := 0; i < iface.NumExplicitMethods(); i++ {
			if m := iface.ExplicitMethod(i); m.Name() == name {
				return m
			}
		}
		return nil
	}
	for i := 0; i < named.NumMethods(); i++ {
		if m := named.Method(i); m.Name() == name {
			return m
		}
	}
	return nil
}

// findDirectField looks for a field declared directly on t's struct
// (non-embedded) named name.
func findDirectField(t types.Type, name string) types.Object {
	named, ok := t.(*types.Named)
	if !ok {
		return nil
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil
	}
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() && f.Name() == name {
			return f
		}
	}
	return nil
}
