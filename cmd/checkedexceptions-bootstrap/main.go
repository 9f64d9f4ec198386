// Command checkedexceptions-bootstrap is the "bootstrap tool" named in
// spec §9's design notes: it walks a package, settles every element's
// configuration, and emits a starting-point checked_exceptions.yaml a team
// can commit and then hand-edit. It emits one record per member that some
// element of the package overrides, and no record for any other element.
//
// For such a member (typically an interface method), it unions the implementers' configurations onto the
// interface method's own location instead of intersecting them the way
// internal/resolver's inherited-configuration step does — §9 calls this
// inversion out explicitly: a conservative starting override for an
// interface should cover what ANY implementer can throw, not only what
// they all agree on.
package main

import (
	"context"
	"flag"
	"fmt"
	"go/types"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/tools/go/packages"
	"gopkg.in/yaml.v3"

	"github.com/go-checked/checkedexceptions/internal/goast"
	"github.com/go-checked/checkedexceptions/internal/overrides"
	"github.com/go-checked/checkedexceptions/internal/resolver"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

func main() {
	out := flag.String("o", "", "output file (default: stdout)")
	flag.Parse()
	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	records, pkgCount, err := bootstrap(patterns)
	if err != nil {
		fmt.Fprintln(os.Stderr, "checkedexceptions-bootstrap:", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "checkedexceptions-bootstrap:", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := writeYAML(w, records); err != nil {
		fmt.Fprintln(os.Stderr, "checkedexceptions-bootstrap:", err)
		os.Exit(1)
	}

	report(pkgCount, len(records))
}

func bootstrap(patterns []string) ([]overrides.Record, int, error) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, 0, fmt.Errorf("loading packages: %w", err)
	}

	var records []overrides.Record
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			continue
		}
		recs, err := bootstrapPackage(pkg)
		if err != nil {
			return nil, 0, fmt.Errorf("package %s: %w", pkg.PkgPath, err)
		}
		records = append(records, recs...)
	}
	return records, len(pkgs), nil
}

func bootstrapPackage(pkg *packages.Package) ([]overrides.Record, error) {
	resolveFn := resolver.BuildTypeResolver(pkg.Types)
	graph := goast.NewGraph(pkg.Syntax, pkg.TypesInfo, resolveFn)

	sess := resolver.New(graph, pkg.Types, nil, nil)
	if err := sess.Settle(context.Background()); err != nil {
		return nil, err
	}

	implementers := map[types.Object][]types.Object{}
	for _, obj := range graph.Objects() {
		elem, ok := graph.ElementFor(obj)
		if !ok {
			continue
		}
		for _, abstract := range elem.Overridden {
			implementers[abstract] = append(implementers[abstract], obj)
		}
	}

	var records []overrides.Record
	for abstract, impls := range implementers {
		confs := make([]configuration.Configuration, len(impls))
		for i, impl := range impls {
			confs[i] = sess.ConfigurationForObject(impl)
		}
		unioned := configuration.Union(confs)
		records = append(records, recordFor(abstract, unioned))
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Library != records[j].Library {
			return records[i].Library < records[j].Library
		}
		return records[i].Element < records[j].Element
	})
	return records, nil
}

// recordFor builds an override Record for obj's location, naming its
// unioned throws by bare type name, with each name's import path listed in
// the record's Imports, for a reviewer to edit by hand — it never reads its
// own output back.
func recordFor(obj types.Object, conf configuration.Configuration) overrides.Record {
	loc := goast.LocationOf(obj)
	entry, imports := entryFor(conf)
	return overrides.Record{
		Library: loc.Library,
		Element: loc.Path,
		Imports: imports,
		Entry:   entry,
	}
}

func entryFor(conf configuration.Configuration) (overrides.Entry, []string) {
	names, imports := namesFor(conf.Throws)
	entry := overrides.Entry{Throws: names, AllowsUndeclared: conf.Throws.CanThrowUndeclared()}
	if invoke, ok := conf.Value(configuration.Invoke); ok {
		nested, nestedImports := entryFor(invoke)
		entry.Invoke = &nested
		imports = append(imports, nestedImports...)
	}
	if await, ok := conf.Value(configuration.Await); ok {
		nested, nestedImports := entryFor(await)
		entry.Await = &nested
		imports = append(imports, nestedImports...)
	}
	return entry, imports
}

func namesFor(t configuration.Throws) (names []string, imports []string) {
	for _, ty := range t.ThrownTypes() {
		pkgPath, name, ok := goast.Decompose(ty)
		if !ok {
			continue
		}
		if pkgPath == "" {
			names = append(names, name)
			continue
		}
		names = append(names, name)
		imports = append(imports, pkgPath)
	}
	return names, imports
}

func writeYAML(w io.Writer, records []overrides.Record) error {
	doc := struct {
		Overrides []overrides.Record `yaml:"overrides"`
	}{Overrides: records}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(doc)
}

// report prints a short human-readable summary to stderr, colorized only
// when stderr is a real terminal — isatty is the idiomatic way this corpus
// makes that call (github.com/mattn/go-isatty).
func report(pkgCount, recordCount int) {
	isTTY := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	summary := fmt.Sprintf("scanned %s package(s), wrote %s override record(s)",
		humanize.Comma(int64(pkgCount)), humanize.Comma(int64(recordCount)))
	if isTTY {
		fmt.Fprintf(os.Stderr, "\033[2m%s\033[0m\n", summary)
		return
	}
	fmt.Fprintln(os.Stderr, summary)
}
