// Package exception defines the marker that splits thrown Go values into the
// two disjoint subtrees spec §3/GLOSSARY call Exception and Error. A type
// that implements Exception is subject to the safe/Throws<E> discipline; any
// other value satisfying the builtin error interface (or any non-error value
// reaching a panic) is an Error, and is allowed by a "safe" element by
// default.
//
// This is the host's root Exception marker (spec §4.1's "the subtree rooted
// at the Exception marker"); it is the one piece of the annotation
// vocabulary that must exist as real, importable Go code rather than a
// directive comment, because Throws[E]/ThrowsError[E]'s type parameter E
// needs something concrete to be constrained against.
package exception

// Exception is implemented by custom thrown types that want to participate
// in the checked-exceptions discipline this module enforces. Embed
// exception.Base to satisfy it without writing any method bodies.
type Exception interface {
	error
	Exception()
}

// Base is embedded by concrete exception types to satisfy Exception with no
// boilerplate, mirroring the host language's single root Exception class.
type Base struct{}

// Exception marks the embedding type as a checked exception.
func (Base) Exception() {}

// Throws[E] is a phantom marker type: its only use is as the argument of a
// //checkedexceptions:throws directive naming E, never instantiated or
// referenced at runtime. Go generics give the directive's type name
// something real to resolve against the file's imports (spec §6's "Type
// expressions inside throws are parsed and resolved against imports ∪
// library"), exactly like the host language's Throws<E> annotation type.
type Throws[E Exception] struct{}

// ThrowsError[E] is Throws[E]'s unchecked counterpart: E may be any type,
// not only an Exception.
type ThrowsError[E any] struct{}
