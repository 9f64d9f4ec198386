// Package annotation implements the tiny checked-exceptions vocabulary
// (spec §6) and the annotation reader (spec §4.2). The vocabulary is
// expressed as directive comments — //checkedexceptions:safe and friends —
// attached to a declaration's doc comment, the idiomatic Go carrier for
// declaration-level metadata (cf. //go:generate, //nolint).
package annotation

import (
	"strings"

	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// Kind identifies which of the four markers a directive line spells.
type Kind int

const (
	// Safe corresponds to the `safe` marker.
	Safe Kind = iota
	// NeverThrows corresponds to the `neverThrows` marker, a subtype of Safe.
	NeverThrows
	// Throws corresponds to `Throws<E>`, a subtype of ThrowsError.
	Throws
	// ThrowsError corresponds to `ThrowsError<E>`.
	ThrowsError
)

// Directive is one parsed //checkedexceptions:... line.
type Directive struct {
	Kind Kind
	// TypeName is the raw, unresolved type name following Throws/ThrowsError.
	// Empty for Safe and NeverThrows.
	TypeName string
}

const prefix = "checkedexceptions:"

// ParseComment extracts every checkedexceptions directive found in a
// declaration's doc comment text (one directive per line). Lines that don't
// start with the prefix are ignored, matching a linter's usual tolerance for
// unrelated comment text sharing the same doc block.
func ParseComment(doc string) []Directive {
	var out []Directive
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "//"))
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(line, prefix))
		d, ok := parseDirectiveBody(body)
		if ok {
			out = append(out, d)
		}
	}
	return out
}

func parseDirectiveBody(body string) (Directive, bool) {
	switch {
	case body == "safe":
		return Directive{Kind: Safe}, true
	case body == "neverThrows":
		return Directive{Kind: NeverThrows}, true
	case strings.HasPrefix(body, "throws "):
		return Directive{Kind: Throws, TypeName: strings.TrimSpace(strings.TrimPrefix(body, "throws "))}, true
	case strings.HasPrefix(body, "throwsError "):
		return Directive{Kind: ThrowsError, TypeName: strings.TrimSpace(strings.TrimPrefix(body, "throwsError "))}, true
	default:
		return Directive{}, false
	}
}

// HasConflict reports whether directives of more than one incompatible kind
// family are present on the same element (safe/neverThrows vs.
// throws/throwsError). No analyzer in this module calls it; Read itself
// does not reject such a mix.
func HasConflict(ds []Directive) bool {
	sawSafeFamily := false
	sawThrowsFamily := false
	for _, d := range ds {
		switch d.Kind {
		case Safe, NeverThrows:
			sawSafeFamily = true
		case Throws, ThrowsError:
			sawThrowsFamily = true
		}
	}
	return sawSafeFamily && sawThrowsFamily
}

// TypeResolver resolves a directive's raw type name against the element's
// imports/library scope into a configuration.ThrownType, per spec §6's
// "Type expressions inside throws are parsed and resolved against imports ∪
// library". Supplied by internal/goast; annotation never looks types up
// itself.
type TypeResolver func(name string) (configuration.ThrownType, bool)

// Read implements the annotation reader (spec §4.2): given the directives
// found on one element plus a way to resolve type names, it returns the
// Throws summary those directives imply. Directives are combined in
// declaration order; neverThrows short-circuits immediately.
func Read(ds []Directive, resolve TypeResolver) configuration.Throws {
	var types []configuration.ThrownType
	canThrowUndeclared := false
	sawThrowsFamily := false
	sawAny := false

	for _, d := range ds {
		sawAny = true
		switch d.Kind {
		case NeverThrows:
			return configuration.NewExplicit(nil, false)
		case Safe:
			canThrowUndeclared = true
		case ThrowsError:
			if t, ok := resolve(d.TypeName); ok {
				types = append(types, t)
			}
			if !sawThrowsFamily {
				canThrowUndeclared = true
			}
			sawThrowsFamily = true
		case Throws:
			if t, ok := resolve(d.TypeName); ok {
				types = append(types, t)
			}
			canThrowUndeclared = false
			sawThrowsFamily = true
		}
	}

	if !sawAny {
		return configuration.Empty
	}
	return configuration.NewExplicit(types, canThrowUndeclared)
}
