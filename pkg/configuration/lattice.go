package configuration

// covers reports whether parameter-side throws info p permits a single
// thrown type t to escape uncaught — either some declared type in p is a
// supertype of t, or p allows undeclared and t is an Error (spec §4.1 step 2
// and the "covering rule" reused by uncaught-throw, §4.10).
func covers(p Throws, t ThrownType) bool {
	for _, u := range p.thrownTypes {
		if t.IsAssignableTo(u) {
			return true
		}
	}
	return p.canThrowUndeclared && !t.IsExceptionSubtype()
}

// UnionThrows implements spec §4.1's union(cs) over Throws values.
func UnionThrows(cs []Throws) Throws {
	if len(cs) == 0 {
		return Empty
	}
	var acc []ThrownType
	canThrowUndeclared := false
	admitsObject := false
	allInferred := true
	for _, c := range cs {
		if c.canThrowUndeclared {
			canThrowUndeclared = true
		}
		if c.admitsObject {
			admitsObject = true
		}
		if !c.inferred {
			allInferred = false
		}
		for _, t := range c.thrownTypes {
			acc = insertAntichain(acc, t)
		}
	}
	sortTypes(acc)
	return Throws{thrownTypes: acc, canThrowUndeclared: canThrowUndeclared, admitsObject: admitsObject, inferred: allInferred}
}

// IntersectThrows implements spec §4.1's intersect(cs) over Throws values.
func IntersectThrows(cs []Throws) Throws {
	if len(cs) == 0 {
		return Empty
	}
	if len(cs) == 1 {
		return cs[0]
	}
	canThrowUndeclared := true
	admitsObject := true
	for _, c := range cs {
		if !c.canThrowUndeclared {
			canThrowUndeclared = false
		}
		if !c.admitsObject {
			admitsObject = false
		}
	}
	var kept []ThrownType
	for _, t := range cs[0].thrownTypes {
		coveredByAll := true
		for _, other := range cs[1:] {
			if !covers(other, t) {
				coveredByAll = false
				break
			}
		}
		if coveredByAll {
			kept = append(kept, t)
		}
	}
	sortTypes(kept)
	allInferred := true
	for _, c := range cs {
		if !c.inferred {
			allInferred = false
			break
		}
	}
	return Throws{thrownTypes: kept, canThrowUndeclared: canThrowUndeclared, admitsObject: admitsObject, inferred: allInferred}
}

// Union implements spec §4.1's union(cs) over full Configurations, including
// the recursive union of shared value slots.
func Union(cs []Configuration) Configuration {
	if len(cs) == 0 {
		return ConfEmpty
	}
	throwsList := make([]Throws, len(cs))
	for i, c := range cs {
		throwsList[i] = c.Throws
	}
	result := Configuration{Throws: UnionThrows(throwsList)}

	for _, k := range []PromotionKind{Invoke, Await} {
		var present []Configuration
		for _, c := range cs {
			if v, ok := c.Value(k); ok {
				present = append(present, v)
			}
		}
		if len(present) > 0 {
			result = result.WithValue(k, Union(present))
		}
	}
	return result
}

// Intersect implements spec §4.1's intersect(cs) over full Configurations.
// A value slot absent from any input is dropped from the result entirely.
func Intersect(cs []Configuration) Configuration {
	if len(cs) == 0 {
		return ConfEmpty
	}
	if len(cs) == 1 {
		return cs[0]
	}
	throwsList := make([]Throws, len(cs))
	for i, c := range cs {
		throwsList[i] = c.Throws
	}
	result := Configuration{Throws: IntersectThrows(throwsList)}

	for _, k := range []PromotionKind{Invoke, Await} {
		all := true
		var present []Configuration
		for _, c := range cs {
			v, ok := c.Value(k)
			if !ok {
				all = false
				break
			}
			present = append(present, v)
		}
		if all && len(present) > 0 {
			result = result.WithValue(k, Intersect(present))
		}
	}
	return result
}

// IsCompatible implements spec §4.1's argument.is_compatible(parameter,
// at_level). atLevel == 0 checks the top-level throws; atLevel > 0 skips it
// (only the value, not the evaluation, transfers).
func (c Configuration) IsCompatible(parameter Configuration, atLevel int) bool {
	if atLevel == 0 {
		if !throwsCompatible(c.Throws, parameter.Throws) {
			return false
		}
	}
	for _, k := range parameter.Slots() {
		pv, _ := parameter.Value(k)
		av, ok := c.Value(k)
		if !ok {
			return false
		}
		if !av.IsCompatible(pv, atLevel-1) {
			return false
		}
	}
	return true
}

// throwsCompatible implements the three-step check in spec §4.1.
func throwsCompatible(argument, parameter Throws) bool {
	if argument.canThrowUndeclared && !parameter.canThrowUndeclared {
		if !parameterAdmitsObject(parameter) {
			return false
		}
	}
	for _, t := range argument.thrownTypes {
		if !covers(parameter, t) {
			return false
		}
	}
	return true
}

// parameterAdmitsObject is the escape hatch in step 1: a parameter typed
// dynamic/Object effectively accepts anything, including undeclared Errors,
// even without can_throw_undeclared set.
func parameterAdmitsObject(parameter Throws) bool {
	return parameter.admitsObject
}

// Covers exposes the single-type covering rule callers like the
// uncaught-throw lint rule need to check one thrown type at a time, rather
// than a whole Throws value against another.
func Covers(p Throws, t ThrownType) bool {
	return covers(p, t)
}

// ThrowsCompatible exposes the three-step compatibility check of spec §4.1
// directly over two Throws values, for callers that have already unwrapped a
// Configuration down to the exact level they want to compare and don't need
// IsCompatible's recursive per-slot walk.
func ThrowsCompatible(argument, parameter Throws) bool {
	return throwsCompatible(argument, parameter)
}
