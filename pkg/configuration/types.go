// Package configuration implements the core data model of the checked-exceptions
// resolver: Throws, Configuration, PromotionKind and ElementLocation, plus the
// lattice operations (union, intersect, compatibility) defined over them.
//
// The package has no dependency on go/ast or go/types: it is the host-agnostic
// core the spec describes. internal/goast supplies the ThrownType oracle that
// lets this package reason about a concrete host type system.
package configuration

import (
	"sort"
	"strings"
)

// ThrownType is an opaque handle into the host type system. The core never
// constructs one; it only compares, displays and stores values handed to it
// by internal/goast.
type ThrownType interface {
	// IsAssignableTo reports whether a value of this type can be assigned to
	// a location of type u — the host's covariant subtype check.
	IsAssignableTo(u ThrownType) bool
	// IsExceptionSubtype reports whether this type is a subtype of the host's
	// root Exception marker, as opposed to being an Error.
	IsExceptionSubtype() bool
	// Key is a stable, comparable identity for use as a map key and for
	// antichain deduplication. Equal types must produce equal keys.
	Key() string
	// String returns the type's display name for diagnostics.
	String() string
}

// PromotionKind distinguishes the two ways a Configuration's value can be
// promoted into a further Configuration.
type PromotionKind int

const (
	// Invoke is the promotion obtained by calling a callable value.
	Invoke PromotionKind = iota
	// Await is the promotion obtained by awaiting a future-like value.
	Await
)

func (k PromotionKind) String() string {
	switch k {
	case Invoke:
		return "invoke"
	case Await:
		return "await"
	default:
		return "unknown"
	}
}

// Throws is the triple (thrown_types, can_throw_undeclared, inferred)
// described in spec §3. thrownTypes is kept as a sorted antichain: no element
// is a proper subtype of another.
type Throws struct {
	thrownTypes        []ThrownType
	canThrowUndeclared bool
	inferred           bool
	// admitsObject marks a parameter-side Throws derived from a dynamic/
	// Object-typed location: it accepts any value at all, including
	// undeclared Errors, even when canThrowUndeclared is unset. Set only by
	// ObjectThrows; internal/goast never produces it.
	admitsObject bool
}

// Empty is Throws::empty = ({}, false, true).
var Empty = Throws{inferred: true}

// ObjectThrows is the Throws of a dynamic/Object-typed parameter: it admits
// any thrown value.
func ObjectThrows() Throws {
	return Throws{canThrowUndeclared: true, admitsObject: true}
}

// AdmitsObject reports whether this Throws was derived from a dynamic/Object
// parameter type (spec §4.1 compatibility step 1's escape hatch).
func (t Throws) AdmitsObject() bool { return t.admitsObject }

// NewExplicit builds a non-inferred Throws from an antichain-reduced type set.
func NewExplicit(types []ThrownType, canThrowUndeclared bool) Throws {
	return Throws{
		thrownTypes:        reduceAntichain(types),
		canThrowUndeclared: canThrowUndeclared,
		inferred:           false,
	}
}

// NewInferred is like NewExplicit but marks the result as body-derived.
func NewInferred(types []ThrownType, canThrowUndeclared bool) Throws {
	t := NewExplicit(types, canThrowUndeclared)
	t.inferred = true
	return t
}

// ThrownTypes returns the antichain of types this Throws declares.
func (t Throws) ThrownTypes() []ThrownType { return t.thrownTypes }

// CanThrowUndeclared reports the can_throw_undeclared bit.
func (t Throws) CanThrowUndeclared() bool { return t.canThrowUndeclared }

// Inferred reports whether this Throws was derived from body analysis rather
// than anchored by an explicit annotation or override entry.
func (t Throws) Inferred() bool { return t.inferred }

// IsEmpty reports whether this Throws carries no information at all.
func (t Throws) IsEmpty() bool {
	return len(t.thrownTypes) == 0 && !t.canThrowUndeclared
}

// withInferred returns a copy of t with the inferred flag overridden.
func (t Throws) withInferred(inferred bool) Throws {
	t.inferred = inferred
	return t
}

// reduceAntichain inserts each type into an accumulator, dropping any element
// that is a supertype of a newly inserted one and skipping a newly inserted
// one that is already covered by an existing supertype. The invariant this
// maintains is spec §3's antichain invariant.
func reduceAntichain(types []ThrownType) []ThrownType {
	var acc []ThrownType
	for _, t := range types {
		acc = insertAntichain(acc, t)
	}
	sortTypes(acc)
	return acc
}

func insertAntichain(acc []ThrownType, t ThrownType) []ThrownType {
	for _, existing := range acc {
		if t.IsAssignableTo(existing) {
			// t is covered by a supertype already present; skip it.
			return acc
		}
	}
	out := acc[:0:0]
	for _, existing := range acc {
		if existing.IsAssignableTo(t) && existing.Key() != t.Key() {
			// existing is a subtype of the new entry; drop it.
			continue
		}
		out = append(out, existing)
	}
	out = append(out, t)
	return out
}

func sortTypes(types []ThrownType) {
	sort.Slice(types, func(i, j int) bool { return types[i].Key() < types[j].Key() })
}

// String renders a Throws for debugging/diagnostics.
func (t Throws) String() string {
	var names []string
	for _, ty := range t.thrownTypes {
		names = append(names, ty.String())
	}
	s := "{" + strings.Join(names, ", ") + "}"
	if t.canThrowUndeclared {
		s += "+undeclared"
	}
	return s
}

// Configuration is the recursive record (throws, value) described in spec §3.
type Configuration struct {
	Throws Throws
	value  map[PromotionKind]Configuration
}

// ConfEmpty is Configuration::empty = (Throws::empty, {}).
var ConfEmpty = Configuration{Throws: Empty}

// ThrowsExactly builds a Configuration whose throws is exactly {t}, with no
// value slots — the configuration of a bare `throw t-instance`.
func ThrowsExactly(t ThrownType) Configuration {
	return Configuration{Throws: NewExplicit([]ThrownType{t}, false)}
}

// ConfThrows builds a Configuration carrying the given Throws with no value
// slots.
func ConfThrows(t Throws) Configuration {
	return Configuration{Throws: t}
}

// ForValue builds a Configuration with empty top-level throws and the given
// value slots.
func ForValue(value map[PromotionKind]Configuration) Configuration {
	return Configuration{Throws: Empty, value: cloneSlots(value)}
}

// New builds a Configuration from both a Throws and a set of value slots.
func New(throws Throws, value map[PromotionKind]Configuration) Configuration {
	return Configuration{Throws: throws, value: cloneSlots(value)}
}

// Value returns the Configuration promoted by k, and whether that slot is
// present at all — a missing slot is semantically different from a present
// slot equal to ConfEmpty (see Configuration.IsCompatible, step 3).
func (c Configuration) Value(k PromotionKind) (Configuration, bool) {
	v, ok := c.value[k]
	return v, ok
}

// HasValue reports whether slot k is present.
func (c Configuration) HasValue(k PromotionKind) bool {
	_, ok := c.value[k]
	return ok
}

// Slots returns the set of promotion kinds this Configuration carries.
func (c Configuration) Slots() []PromotionKind {
	var out []PromotionKind
	for k := range c.value {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// WithValue returns a copy of c with slot k set to v.
func (c Configuration) WithValue(k PromotionKind, v Configuration) Configuration {
	out := Configuration{Throws: c.Throws, value: cloneSlots(c.value)}
	if out.value == nil {
		out.value = make(map[PromotionKind]Configuration, 1)
	}
	out.value[k] = v
	return out
}

// WithThrows returns a copy of c with the top-level throws replaced.
func (c Configuration) WithThrows(t Throws) Configuration {
	return Configuration{Throws: t, value: cloneSlots(c.value)}
}

func cloneSlots(m map[PromotionKind]Configuration) map[PromotionKind]Configuration {
	if len(m) == 0 {
		return nil
	}
	out := make(map[PromotionKind]Configuration, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Equal performs the structural equality required by spec §4.9 so the
// settle loop can detect a genuine fixed point.
func (c Configuration) Equal(other Configuration) bool {
	if !throwsEqual(c.Throws, other.Throws) {
		return false
	}
	if len(c.value) != len(other.value) {
		return false
	}
	for k, v := range c.value {
		ov, ok := other.value[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func throwsEqual(a, b Throws) bool {
	if a.canThrowUndeclared != b.canThrowUndeclared || a.admitsObject != b.admitsObject {
		return false
	}
	if len(a.thrownTypes) != len(b.thrownTypes) {
		return false
	}
	for i := range a.thrownTypes {
		if a.thrownTypes[i].Key() != b.thrownTypes[i].Key() {
			return false
		}
	}
	return true
}

// String renders a Configuration for debugging/diagnostics.
func (c Configuration) String() string {
	s := c.Throws.String()
	for _, k := range c.Slots() {
		v, _ := c.Value(k)
		s += " " + k.String() + "=" + v.String()
	}
	return s
}

// ElementLocation is the stable identity of a program element: a library URI
// plus a dotted element path, per spec §3. new denotes a default constructor
// and $n denotes a positional parameter, matching the spec's notation.
type ElementLocation struct {
	Library string
	Path    string
}

// NewElementLocation builds an ElementLocation from a library URI and a
// dotted path.
func NewElementLocation(library, path string) ElementLocation {
	return ElementLocation{Library: library, Path: path}
}

// Child appends a path segment, used to build locations for members,
// parameters ($0, $1, ...) and the synthetic "new" default constructor.
func (e ElementLocation) Child(segment string) ElementLocation {
	if e.Path == "" {
		return ElementLocation{Library: e.Library, Path: segment}
	}
	return ElementLocation{Library: e.Library, Path: e.Path + "." + segment}
}

// String renders the location as "<library>#<path>".
func (e ElementLocation) String() string {
	return e.Library + "#" + e.Path
}
