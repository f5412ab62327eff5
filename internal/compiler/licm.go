package compiler

import "github.com/jordyorel/orus-lang-sub003/internal/ast"

// licmCandidate is a loop-body VarDecl whose initializer is both
// side-effect-free and independent of anything the loop body reassigns,
// making it safe to evaluate once before the loop instead of once per
// iteration.
type licmCandidate struct {
	decl *ast.VarDecl
}

// findInvariants runs a two-pass analysis: first
// collect every name the loop body itself assigns (so a variable can
// never be "invariant" relative to its own loop), then collect the
// top-level VarDecls whose initializer reads none of those names and
// contains no call (calls may have side effects the compiler cannot see
// through).
func findInvariants(body *ast.Block) []licmCandidate {
	modified := map[string]bool{}
	collectModified(body, modified)

	var candidates []licmCandidate
	for _, stmt := range body.Statements {
		decl, ok := stmt.(*ast.VarDecl)
		if !ok || decl.Init == nil {
			continue
		}
		if containsCall(decl.Init) {
			continue
		}
		free := map[string]bool{}
		collectFreeIdentifiers(decl.Init, free)
		independent := true
		for name := range free {
			if modified[name] {
				independent = false
				break
			}
		}
		if independent {
			candidates = append(candidates, licmCandidate{decl: decl})
		}
	}
	return candidates
}

func collectModified(s ast.Statement, out map[string]bool) {
	switch n := s.(type) {
	case *ast.Assignment:
		if id, ok := n.Target.(*ast.Identifier); ok {
			out[id.Name] = true
		}
	case *ast.VarDecl:
		out[n.Name] = true
	case *ast.Block:
		for _, st := range n.Statements {
			collectModified(st, out)
		}
	case *ast.If:
		collectModified(n.Then, out)
		for _, elif := range n.Elifs {
			collectModified(elif.Then, out)
		}
		if n.Else != nil {
			collectModified(n.Else, out)
		}
	case *ast.While:
		collectModified(n.Body, out)
	case *ast.ForRange:
		out[n.Iterator] = true
		collectModified(n.Body, out)
	case *ast.ForIter:
		out[n.Iterator] = true
		collectModified(n.Body, out)
	}
}

func containsCall(e ast.Expression) bool {
	found := false
	walkExpr(e, func(x ast.Expression) {
		if _, ok := x.(*ast.Call); ok {
			found = true
		}
	})
	return found
}

func collectFreeIdentifiers(e ast.Expression, out map[string]bool) {
	walkExpr(e, func(x ast.Expression) {
		if id, ok := x.(*ast.Identifier); ok {
			out[id.Name] = true
		}
	})
}

// walkExpr visits e and every expression nested inside it.
func walkExpr(e ast.Expression, visit func(ast.Expression)) {
	if e == nil {
		return
	}
	visit(e)
	switch n := e.(type) {
	case *ast.Binary:
		walkExpr(n.Left, visit)
		walkExpr(n.Right, visit)
	case *ast.Unary:
		walkExpr(n.Operand, visit)
	case *ast.Cast:
		walkExpr(n.Operand, visit)
	case *ast.Ternary:
		walkExpr(n.Cond, visit)
		walkExpr(n.Then, visit)
		walkExpr(n.Else, visit)
	case *ast.Call:
		walkExpr(n.Callee, visit)
		for _, a := range n.Args {
			walkExpr(a, visit)
		}
	case *ast.Index:
		walkExpr(n.Collection, visit)
		walkExpr(n.Key, visit)
	case *ast.Field:
		walkExpr(n.Object, visit)
	case *ast.ArrayLit:
		for _, el := range n.Elements {
			walkExpr(el, visit)
		}
	case *ast.ArrayFill:
		walkExpr(n.Value, visit)
		walkExpr(n.Size, visit)
	case *ast.StructLit:
		for _, v := range n.Fields {
			walkExpr(v, visit)
		}
	case *ast.Slice:
		walkExpr(n.Collection, visit)
		walkExpr(n.Low, visit)
		walkExpr(n.High, visit)
	}
}
