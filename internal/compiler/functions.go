package compiler

import (
	"github.com/jordyorel/orus-lang-sub003/internal/ast"
	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
	"github.com/jordyorel/orus-lang-sub003/internal/register"
	"github.com/jordyorel/orus-lang-sub003/internal/value"
)

// compileFunction compiles n's body in a fresh child Compiler, appends
// the result to the shared function table, and binds n's name (in the
// enclosing scope) to a FunctionHandle referencing that table entry.
// The binding happens before the body is compiled so a recursive call
// inside the body resolves against an already-bound handle.
func (c *Compiler) compileFunction(n *ast.Function) {
	qualifiedName := n.Name
	if n.ImplType != "" {
		qualifiedName = n.ImplType + "_" + n.Name
	}

	index := len(*c.functions)
	*c.functions = append(*c.functions, nil)
	*c.functionNames = append(*c.functionNames, qualifiedName)

	c.bindFunctionHandle(n, qualifiedName, index)

	child := &Compiler{
		enclosing:     c,
		chunk:         chunk.New(c.chunk.FileName),
		regs:          register.New(qualifiedName),
		scope:         register.NewScopes(),
		structs:       c.structs,
		functions:     c.functions,
		functionNames: c.functionNames,
		globals:       c.globals,
		diagnostics:   c.diagnostics,
		functionName:  qualifiedName,
		returnType:    n.Return,
	}

	child.scope.Begin()
	for _, p := range n.Params {
		reg := child.allocReg(n.Position())
		child.scope.Declare(p.Name, reg)
	}
	for _, stmt := range n.Body.Statements {
		child.compileStmt(stmt)
	}
	child.emitReturn(n.Position())

	c.checkReturnCoverage(n)

	(*c.functions)[index] = child.chunk
}

// checkReturnCoverage reports a diagnostic when a non-generic function
// with a non-void declared return type has a path that falls off the
// end of its body without returning a value: "missing return statement"
// when the body contains no return at all, "not all code paths return a
// value" when some paths return and others don't.
func (c *Compiler) checkReturnCoverage(n *ast.Function) {
	if len(n.Generics) > 0 || isVoidReturn(n.Return) {
		return
	}
	if blockReturns(n.Body) {
		return
	}
	if blockContainsReturn(n.Body) {
		c.errorf(n.Position(), "function %q: not all code paths return a value", n.Name)
		return
	}
	c.errorf(n.Position(), "function %q: missing return statement", n.Name)
}

func isVoidReturn(t ast.Type) bool {
	if t == nil {
		return true
	}
	if p, ok := t.(*ast.Primitive); ok {
		return p.Void
	}
	return false
}

// blockReturns reports whether every path through b ends in a return,
// i.e. its statements are guaranteed to reach a terminating statement
// before falling off the end.
func blockReturns(b *ast.Block) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Statements {
		if stmtReturns(s) {
			return true
		}
	}
	return false
}

// stmtReturns reports whether s is itself guaranteed to return on every
// path through it. Loops are never guaranteed-terminating statically
// (the body might not run), so While/ForRange/ForIter always report
// false here even if their body always returns.
func stmtReturns(s ast.Statement) bool {
	switch n := s.(type) {
	case *ast.Return:
		return true
	case *ast.Block:
		return blockReturns(n)
	case *ast.If:
		if n.Else == nil || !blockReturns(n.Then) {
			return false
		}
		for _, elif := range n.Elifs {
			if !blockReturns(elif.Then) {
				return false
			}
		}
		return blockReturns(n.Else)
	case *ast.Try:
		if n.CatchBlock == nil {
			return false
		}
		return blockReturns(n.TryBlock) && blockReturns(n.CatchBlock)
	default:
		return false
	}
}

// blockContainsReturn reports whether a return statement is reachable
// anywhere in b, including inside loop bodies, regardless of whether it
// is guaranteed to run — used only to choose which of the two
// return-coverage diagnostics applies.
func blockContainsReturn(b *ast.Block) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Statements {
		if stmtContainsReturn(s) {
			return true
		}
	}
	return false
}

func stmtContainsReturn(s ast.Statement) bool {
	switch n := s.(type) {
	case *ast.Return:
		return true
	case *ast.Block:
		return blockContainsReturn(n)
	case *ast.If:
		if blockContainsReturn(n.Then) {
			return true
		}
		for _, elif := range n.Elifs {
			if blockContainsReturn(elif.Then) {
				return true
			}
		}
		return blockContainsReturn(n.Else)
	case *ast.While:
		return blockContainsReturn(n.Body)
	case *ast.ForRange:
		return blockContainsReturn(n.Body)
	case *ast.ForIter:
		return blockContainsReturn(n.Body)
	case *ast.Try:
		return blockContainsReturn(n.TryBlock) || blockContainsReturn(n.CatchBlock)
	default:
		return false
	}
}

func (c *Compiler) bindFunctionHandle(n *ast.Function, qualifiedName string, index int) {
	handle := value.FunctionHandle(index)
	if c.isGlobalScope() || n.ImplType != "" {
		nameIdx := c.emitNameConstant(n.Position(), qualifiedName)
		dst := c.allocReg(n.Position())
		c.emitConstant(n.Position(), dst, handle)
		c.emitOp(n.Position(), chunk.OP_STORE_GLOBAL, byte(nameIdx>>8), byte(nameIdx), dst)
		c.freeIfTemp(dst)
		c.globals[qualifiedName] = &ast.FuncType{Params: paramTypes(n.Params), Return: n.Return}
		return
	}
	dst := c.allocReg(n.Position())
	c.emitConstant(n.Position(), dst, handle)
	c.scope.Declare(n.Name, dst)
}

func paramTypes(params []ast.Param) []ast.Type {
	out := make([]ast.Type, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

func (c *Compiler) compileReturn(n *ast.Return) {
	if n.Value == nil {
		c.emitReturn(n.Position())
		return
	}
	src := c.compileExpr(n.Value)
	c.emitOp(n.Position(), chunk.OP_RETURN, src)
	c.freeIfTemp(src)
}
