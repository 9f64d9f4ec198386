// Package overrides implements the override table (spec §6): a YAML record
// format that lets a project declare the checked-exceptions Configuration of
// an element it has no source for — chiefly standard-library and third-party
// functions — keyed by the same ElementLocation the resolver uses for
// everything else.
package overrides

import (
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/go-checked/checkedexceptions/internal/annotation"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// FileName is the override file basename looked for in every package
// directory and, distinguished from the rest, at the project root.
const FileName = "checked_exceptions.yaml"

// Entry is the recursive (throws, allows_undeclared, invoke, await) shape a
// YAML record or any of its nested slots take, mirroring Configuration's own
// recursive (Throws, value) structure one level at a time.
type Entry struct {
	Throws           []string `yaml:"throws"`
	AllowsUndeclared bool     `yaml:"allows_undeclared"`
	Invoke           *Entry   `yaml:"invoke,omitempty"`
	Await            *Entry   `yaml:"await,omitempty"`
}

// Record is one top-level YAML override entry: an element location — library
// (an import path) plus a dotted member path — the imports its throws type
// names resolve against, and the Entry describing its Configuration.
type Record struct {
	Library string   `yaml:"library"`
	Element string   `yaml:"element"`
	Imports []string `yaml:"imports"`
	Entry   `yaml:",inline"`
}

// file is the top-level shape of a checked_exceptions.yaml document.
type file struct {
	Overrides []Record `yaml:"overrides"`
}

// Table indexes loaded Records by ElementLocation for the resolver's
// OverrideLookup callback.
type Table struct {
	records map[configuration.ElementLocation]Record
}

func newTable() *Table {
	return &Table{records: make(map[configuration.ElementLocation]Record)}
}

// Lookup returns the raw Record for loc, if an override exists for it. The
// caller (internal/resolver) still has to resolve the Record's type names
// against its own TypeResolver before it has a usable Configuration —
// Resolve does that.
func (t *Table) Lookup(loc configuration.ElementLocation) (Record, bool) {
	r, ok := t.records[loc]
	return r, ok
}

// put records r, overwriting whatever was previously indexed at its
// location — callers load tiers in ascending precedence order so the last
// put wins.
func (t *Table) put(r Record) {
	t.records[configuration.NewElementLocation(r.Library, r.Element)] = r
}

//go:embed defaults.yaml
var embeddedDefaultsFS embed.FS

// Load builds the Table for the package rooted at pkgDir, merging three
// tiers in ascending precedence: the module's embedded baseline knowledge
// of common standard-library elements, a per-package checked_exceptions.yaml
// sitting alongside the analyzed files, and the single project-wide
// projectRoot/lib/checked_exceptions.yaml (skipped when projectRoot is
// empty). A later tier's entry for the same location replaces an
// earlier tier's, so the project-wide file is the most authoritative: it's
// the one place a team overrides what a library author or this module's own
// defaults got wrong for their code.
func Load(pkgDir, projectRoot string) (*Table, error) {
	t := newTable()

	data, err := embeddedDefaultsFS.ReadFile("defaults.yaml")
	if err != nil {
		return nil, fmt.Errorf("overrides: reading embedded defaults: %w", err)
	}
	if err := t.mergeYAML(data); err != nil {
		return nil, fmt.Errorf("overrides: parsing embedded defaults: %w", err)
	}

	if err := t.mergeFileIfExists(filepath.Join(pkgDir, FileName)); err != nil {
		return nil, err
	}

	if projectRoot != "" {
		if err := t.mergeFileIfExists(filepath.Join(projectRoot, "lib", FileName)); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// mergeFileIfExists merges the tier at path into t. A missing file is not an
// error — most packages have no override file of their own. A malformed one
// is logged and skipped rather than failing the whole load: one team's typo
// in lib/checked_exceptions.yaml shouldn't take the embedded defaults and
// every other package's overrides down with it.
func (t *Table) mergeFileIfExists(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("overrides: reading %s: %w", path, err)
	}
	if err := t.mergeYAML(data); err != nil {
		log.Printf("overrides: skipping malformed override file %s: %v", path, err)
	}
	return nil
}

func (t *Table) mergeYAML(data []byte) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	for _, r := range f.Overrides {
		t.put(r)
	}
	return nil
}

// Resolve converts a Record into a configuration.Configuration, resolving
// each of its throws type names against resolve. The Record's own Imports
// are not consulted here; names resolve only in whatever scope the caller's
// resolver covers.
func (r Record) Resolve(resolve annotation.TypeResolver) configuration.Configuration {
	return r.Entry.resolve(resolve)
}

func (e Entry) resolve(resolve annotation.TypeResolver) configuration.Configuration {
	var types []configuration.ThrownType
	for _, name := range e.Throws {
		if t, ok := resolve(name); ok {
			types = append(types, t)
		}
	}
	throws := configuration.NewExplicit(types, e.AllowsUndeclared)

	slots := map[configuration.PromotionKind]configuration.Configuration{}
	if e.Invoke != nil {
		slots[configuration.Invoke] = e.Invoke.resolve(resolve)
	}
	if e.Await != nil {
		slots[configuration.Await] = e.Await.resolve(resolve)
	}
	return configuration.New(throws, slots)
}
