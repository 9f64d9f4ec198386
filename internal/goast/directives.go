package goast

import (
	"go/ast"
	"go/types"
	"strings"

	"github.com/go-checked/checkedexceptions/internal/annotation"
)

// DirectiveTable maps a declaration's go/types object to the
// checkedexceptions directives found on its doc comment — the annotation
// reader's input (spec §4.2), gathered once per package.
type DirectiveTable map[types.Object][]annotation.Directive

// BuildDirectiveTable walks every file's declarations and records the
// directives on funcs, methods, types (typedefs), and package-level/field
// vars, keyed by their go/types.Object. Targets not covered by spec §6
// (parameters, which carry directives on their own syntax in the host
// language but in Go only exist as $n positions with no attachable comment)
// are simply never populated.
func BuildDirectiveTable(files []*ast.File, info *types.Info) DirectiveTable {
	table := make(DirectiveTable)
	for _, f := range files {
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if obj := info.Defs[d.Name]; obj != nil {
					table[obj] = annotation.ParseComment(docText(d.Doc))
				}
			case *ast.GenDecl:
				walkGenDecl(d, info, table)
			}
		}
	}
	return table
}

func walkGenDecl(d *ast.GenDecl, info *types.Info, table DirectiveTable) {
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			doc := s.Doc
			if doc == nil {
				doc = d.Doc
			}
			if obj := info.Defs[s.Name]; obj != nil {
				table[obj] = annotation.ParseComment(docText(doc))
			}
			if st, ok := s.Type.(*ast.StructType); ok {
				walkFields(st, info, table)
			}
		case *ast.ValueSpec:
			doc := s.Doc
			if doc == nil {
				doc = d.Doc
			}
			ds := annotation.ParseComment(docText(doc))
			for _, name := range s.Names {
				if obj := info.Defs[name]; obj != nil {
					table[obj] = ds
				}
			}
		}
	}
}

func walkFields(st *ast.StructType, info *types.Info, table DirectiveTable) {
	if st.Fields == nil {
		return
	}
	for _, field := range st.Fields.List {
		ds := annotation.ParseComment(docText(field.Doc))
		if len(ds) == 0 {
			continue
		}
		for _, name := range field.Names {
			if obj := info.Defs[name]; obj != nil {
				table[obj] = ds
			}
		}
	}
}

// docText returns g's raw comment lines joined by newlines. It does not use
// CommentGroup.Text, which drops directive-form lines such as
// `//checkedexceptions:safe`.
func docText(g *ast.CommentGroup) string {
	if g == nil {
		return ""
	}
	lines := make([]string, 0, len(g.List))
	for _, c := range g.List {
		lines = append(lines, c.Text)
	}
	return strings.Join(lines, "\n")
}

// Directives looks up the directives recorded for obj, returning nil if none
// were found — a nil slice reads as "no recognized annotation" by
// annotation.Read, matching spec §4.2's default case.
func (t DirectiveTable) Directives(obj types.Object) []annotation.Directive {
	return t[obj]
}
