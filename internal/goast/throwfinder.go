package goast

import (
	"go/ast"

	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// FindThrows implements the throw finder (spec §4.4): it walks a function,
// method or closure body collecting the immediate Throws of executing it —
// stopping at nested function literals (their own throws only matter once
// someone invokes them, handled separately by funcLitConfig/ExprConfig) and
// subtracting whatever a leading defer+recover+type-switch catch clause
// catches, Go's analogue of a try/catch wrapping the whole function body.
func FindThrows(ctx *VisitContext, body *ast.BlockStmt) configuration.Throws {
	if body == nil {
		return configuration.Empty
	}

	catch, catchStmt := findCatch(ctx, body)

	w := &throwWalker{ctx: ctx}
	for _, stmt := range body.List {
		if stmt == catchStmt {
			continue
		}
		w.walkStmt(stmt)
	}

	raw := configuration.UnionThrows(w.collected)
	if catch != nil {
		raw = catch.subtract(raw)
	}
	return configuration.NewInferred(raw.ThrownTypes(), raw.CanThrowUndeclared())
}

// FindCatch exposes the try/catch idiom detection FindThrows uses internally,
// for lint rules (uncaught-throw) that need to know what a function's own
// leading defer+recover+type-switch catches without re-deriving the whole
// function's settled throws. catchesAll reports a bare recover() or a
// default case; catchStmt is the ast.DeferStmt to skip when separately
// walking the body for uncaught call sites, nil if there is no such catch.
func FindCatch(ctx *VisitContext, body *ast.BlockStmt) (caught []configuration.ThrownType, catchesAll bool, catchStmt ast.Stmt) {
	info, stmt := findCatch(ctx, body)
	if info == nil {
		return nil, false, nil
	}
	return info.caught, info.catchesAll, stmt
}

// catchInfo is what a leading `defer func(){ if r := recover(); r != nil {
// switch v := r.(type) { ... } } }()` declares it catches.
type catchInfo struct {
	caught     []configuration.ThrownType
	catchesAll bool // a bare recover() with no subsequent type-switch, or a default case
}

func (c *catchInfo) subtract(raw configuration.Throws) configuration.Throws {
	if c.catchesAll {
		return configuration.NewExplicit(nil, false)
	}
	var kept []configuration.ThrownType
	for _, t := range raw.ThrownTypes() {
		covered := false
		for _, caught := range c.caught {
			if t.IsAssignableTo(caught) {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, t)
		}
	}
	return configuration.NewExplicit(kept, raw.CanThrowUndeclared())
}

// findCatch looks for the try/catch idiom among body's top-level statements:
// a DeferStmt whose call is an immediately-invoked func literal that reads
// recover() and branches on the recovered value's type. Only defers that
// lead the body are recognized: scanning stops at the first statement that
// is not a defer, since a defer registered after a statement has run cannot
// catch a panic raised by that statement.
func findCatch(ctx *VisitContext, body *ast.BlockStmt) (*catchInfo, ast.Stmt) {
	for _, stmt := range body.List {
		d, ok := stmt.(*ast.DeferStmt)
		if !ok {
			break
		}
		lit, ok := d.Call.Fun.(*ast.FuncLit)
		if !ok || len(d.Call.Args) != 0 {
			continue
		}
		if info := scanRecoverBlock(ctx, lit.Body); info != nil {
			return info, stmt
		}
	}
	return nil, nil
}

// scanRecoverBlock looks inside a deferred closure's body for a bare
// `recover()` statement (catches everything) or the
// `if r := recover(); r != nil { ... }` shape and classifies what it catches.
func scanRecoverBlock(ctx *VisitContext, block *ast.BlockStmt) *catchInfo {
	for _, stmt := range block.List {
		if es, ok := stmt.(*ast.ExprStmt); ok && containsRecoverCall(es.X) {
			return &catchInfo{catchesAll: true}
		}
		ifStmt, ok := stmt.(*ast.IfStmt)
		if !ok {
			continue
		}
		if !containsRecoverCall(ifStmt.Init) && !containsRecoverCall(exprOf(ifStmt.Cond)) {
			continue
		}
		sw := findTypeSwitch(ifStmt.Body)
		if sw == nil {
			return &catchInfo{catchesAll: true}
		}
		return classifySwitch(ctx, sw)
	}
	return nil
}

func exprOf(e ast.Expr) ast.Node {
	if e == nil {
		return nil
	}
	return e
}

func containsRecoverCall(n ast.Node) bool {
	if n == nil {
		return false
	}
	found := false
	ast.Inspect(n, func(node ast.Node) bool {
		call, ok := node.(*ast.CallExpr)
		if !ok {
			return true
		}
		if id, ok := call.Fun.(*ast.Ident); ok && id.Name == "recover" {
			found = true
			return false
		}
		return true
	})
	return found
}

func findTypeSwitch(block *ast.BlockStmt) *ast.TypeSwitchStmt {
	for _, stmt := range block.List {
		if sw, ok := stmt.(*ast.TypeSwitchStmt); ok {
			return sw
		}
	}
	return nil
}

func classifySwitch(ctx *VisitContext, sw *ast.TypeSwitchStmt) *catchInfo {
	info := &catchInfo{}
	for _, clause := range sw.Body.List {
		cc, ok := clause.(*ast.CaseClause)
		if !ok {
			continue
		}
		if len(cc.List) == 0 {
			info.catchesAll = true
			continue
		}
		for _, typeExpr := range cc.List {
			t := ctx.Info.TypeOf(typeExpr)
			if t == nil {
				continue
			}
			info.caught = append(info.caught, NewThrownType(t))
		}
	}
	return info
}

// throwWalker walks a statement tree collecting each sub-expression's
// immediate Throws, stopping short of descending into nested function
// literal bodies (ExprConfig already accounts for those via their Invoke
// slot, not as part of the enclosing body's own immediate throws) and
// skipping goroutine bodies (spec §4.4 treats go statements like the host's
// fire-and-forget async dispatch: their panics don't propagate synchronously
// to the spawning function's caller).
type throwWalker struct {
	ctx       *VisitContext
	collected []configuration.Throws
}

func (w *throwWalker) add(e ast.Expr) {
	if e == nil {
		return
	}
	w.collected = append(w.collected, ExprConfig(w.ctx, e).Throws)
}

func (w *throwWalker) walkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case nil:
		return
	case *ast.ExprStmt:
		w.add(s.X)
	case *ast.AssignStmt:
		w.walkAssign(s)
	case *ast.DeclStmt:
		w.walkDecl(s.Decl)
	case *ast.ReturnStmt:
		for _, r := range s.Results {
			w.add(r)
		}
	case *ast.IfStmt:
		w.walkStmt(s.Init)
		w.add(s.Cond)
		w.walkBlock(s.Body)
		w.walkStmt(s.Else)
	case *ast.ForStmt:
		w.walkStmt(s.Init)
		w.add(s.Cond)
		w.walkStmt(s.Post)
		w.walkBlock(s.Body)
	case *ast.RangeStmt:
		w.add(s.X)
		w.walkBlock(s.Body)
	case *ast.SwitchStmt:
		w.walkStmt(s.Init)
		w.add(s.Tag)
		w.walkCaseClauses(s.Body)
	case *ast.TypeSwitchStmt:
		w.walkStmt(s.Init)
		w.walkStmt(s.Assign)
		w.walkCaseClauses(s.Body)
	case *ast.SelectStmt:
		for _, clause := range s.Body.List {
			if cc, ok := clause.(*ast.CommClause); ok {
				w.walkStmt(cc.Comm)
				for _, st := range cc.Body {
					w.walkStmt(st)
				}
			}
		}
	case *ast.BlockStmt:
		w.walkBlock(s)
	case *ast.LabeledStmt:
		w.walkStmt(s.Stmt)
	case *ast.SendStmt:
		w.add(s.Chan)
		w.add(s.Value)
	case *ast.IncDecStmt:
		w.add(s.X)
	case *ast.GoStmt:
		// fire-and-forget: not walked, per the doc comment above.
	case *ast.DeferStmt:
		// handled separately by findCatch for the recognized catch idiom;
		// other defers' deferred calls run after this function's own
		// checked-throws boundary has already been evaluated by callers,
		// so their throws aren't attributed here either.
	default:
	}
}

func (w *throwWalker) walkAssign(s *ast.AssignStmt) {
	if len(s.Lhs) == 2 {
		if ta, ok := s.Rhs[0].(*ast.TypeAssertExpr); ok && len(s.Rhs) == 1 {
			w.collected = append(w.collected, typeAssertConfig(w.ctx, ta, false).Throws)
			return
		}
	}
	for _, r := range s.Rhs {
		w.add(r)
	}
}

func (w *throwWalker) walkDecl(decl ast.Decl) {
	gd, ok := decl.(*ast.GenDecl)
	if !ok {
		return
	}
	for _, spec := range gd.Specs {
		if vs, ok := spec.(*ast.ValueSpec); ok {
			for _, v := range vs.Values {
				w.add(v)
			}
		}
	}
}

func (w *throwWalker) walkBlock(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	for _, stmt := range b.List {
		w.walkStmt(stmt)
	}
}

func (w *throwWalker) walkCaseClauses(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	for _, clause := range b.List {
		cc, ok := clause.(*ast.CaseClause)
		if !ok {
			continue
		}
		for _, e := range cc.List {
			w.add(e)
		}
		for _, st := range cc.Body {
			w.walkStmt(st)
		}
	}
}
