package compiler

import (
	"github.com/jordyorel/orus-lang-sub003/internal/ast"
	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
)

func (c *Compiler) compileStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.VarDecl:
		c.compileVarDecl(n)
	case *ast.Assignment:
		c.compileAssignment(n)
	case *ast.ExprStmt:
		r := c.compileExpr(n.X)
		c.freeIfTemp(r)
	case *ast.Print:
		c.compilePrint(n)
	case *ast.Block:
		c.compileBlock(n)
	case *ast.If:
		c.compileIf(n)
	case *ast.While:
		c.compileWhile(n)
	case *ast.ForRange:
		c.compileForRange(n)
	case *ast.ForIter:
		c.compileForIter(n)
	case *ast.Break:
		c.compileBreak(n)
	case *ast.Continue:
		c.compileContinue(n)
	case *ast.Return:
		c.compileReturn(n)
	case *ast.Function:
		c.compileFunction(n)
	case *ast.StructDecl:
		c.compileStructDecl(n)
	case *ast.FieldSet:
		c.compileFieldSet(n)
	case *ast.ArraySet:
		c.compileArraySet(n)
	case *ast.Static, *ast.Const:
		c.compileVarLike(n)
	case *ast.Try:
		c.compileTry(n)
	case *ast.Import, *ast.Use:
		// Module resolution is external to the compiler; these
		// nodes exist for AST completeness only and emit nothing.
	default:
		c.errorf(s.Position(), "unsupported statement node %T", s)
	}
}

func (c *Compiler) compileVarDecl(n *ast.VarDecl) {
	src := c.compileExpr(n.Init)
	if c.isGlobalScope() {
		nameIdx := c.emitNameConstant(n.Position(), n.Name)
		c.emitOp(n.Position(), chunk.OP_STORE_GLOBAL, byte(nameIdx>>8), byte(nameIdx), src)
		c.globals[n.Name] = n.Declared
		c.freeIfTemp(src)
		return
	}
	c.scope.Declare(n.Name, src)
}

func (c *Compiler) compileVarLike(s ast.Statement) {
	switch n := s.(type) {
	case *ast.Static:
		src := c.compileExpr(n.Init)
		nameIdx := c.emitNameConstant(n.Position(), n.Name)
		c.emitOp(n.Position(), chunk.OP_STORE_GLOBAL, byte(nameIdx>>8), byte(nameIdx), src)
		c.freeIfTemp(src)
	case *ast.Const:
		src := c.compileExpr(n.Init)
		if c.isGlobalScope() {
			nameIdx := c.emitNameConstant(n.Position(), n.Name)
			c.emitOp(n.Position(), chunk.OP_STORE_GLOBAL, byte(nameIdx>>8), byte(nameIdx), src)
			c.freeIfTemp(src)
			return
		}
		c.scope.Declare(n.Name, src)
	}
}

// compileAssignment rebinds a mutable local/global/field/index target:
// the target's existing register (for a local) is simply overwritten in
// place rather than reallocated.
func (c *Compiler) compileAssignment(n *ast.Assignment) {
	value := c.compileExpr(n.Value)
	switch target := n.Target.(type) {
	case *ast.Identifier:
		if local, ok := c.scope.Resolve(target.Name); ok {
			c.emitOp(n.Position(), chunk.OP_MOVE, local.Register, value)
			c.freeIfTemp(value)
			return
		}
		if idx, ok := c.resolveUpvalue(target.Name); ok {
			c.emitOp(n.Position(), chunk.OP_SET_UPVALUE, idx, value)
			c.freeIfTemp(value)
			return
		}
		nameIdx := c.emitNameConstant(n.Position(), target.Name)
		c.emitOp(n.Position(), chunk.OP_STORE_GLOBAL, byte(nameIdx>>8), byte(nameIdx), value)
		c.freeIfTemp(value)
	case *ast.Field:
		obj := c.compileExpr(target.Object)
		nameIdx := c.emitNameConstant(n.Position(), target.Name)
		c.emitOp(n.Position(), chunk.OP_SET_FIELD, obj, byte(nameIdx>>8), byte(nameIdx), value)
		c.freeIfTemp(value)
		c.freeIfTemp(obj)
	case *ast.Index:
		coll := c.compileExpr(target.Collection)
		idx := c.compileExpr(target.Key)
		c.emitOp(n.Position(), chunk.OP_SET_INDEX, coll, idx, value)
		c.freeIfTemp(value)
		c.freeIfTemp(idx)
		c.freeIfTemp(coll)
	default:
		c.errorf(n.Position(), "invalid assignment target %T", n.Target)
	}
}

func (c *Compiler) compileFieldSet(n *ast.FieldSet) {
	obj := c.compileExpr(n.Object)
	val := c.compileExpr(n.Value)
	nameIdx := c.emitNameConstant(n.Position(), n.Name)
	c.emitOp(n.Position(), chunk.OP_SET_FIELD, obj, byte(nameIdx>>8), byte(nameIdx), val)
	c.freeIfTemp(val)
	c.freeIfTemp(obj)
}

func (c *Compiler) compileArraySet(n *ast.ArraySet) {
	coll := c.compileExpr(n.Collection)
	idx := c.compileExpr(n.Index)
	val := c.compileExpr(n.Value)
	c.emitOp(n.Position(), chunk.OP_SET_INDEX, coll, idx, val)
	c.freeIfTemp(val)
	c.freeIfTemp(idx)
	c.freeIfTemp(coll)
}

func (c *Compiler) compilePrint(n *ast.Print) {
	args := make([]byte, len(n.Args))
	for i, a := range n.Args {
		args[i] = c.compileExpr(a)
	}
	operands := append([]byte{byte(len(args))}, args...)
	nl := byte(0)
	if n.Newline {
		nl = 1
	}
	operands = append(operands, nl)
	c.emitOp(n.Position(), chunk.OP_PRINT, operands...)
	for i := len(args) - 1; i >= 0; i-- {
		c.freeIfTemp(args[i])
	}
}

func (c *Compiler) compileBlock(n *ast.Block) {
	if n.Scoped {
		c.scope.Begin()
	}
	for _, stmt := range n.Statements {
		c.compileStmt(stmt)
	}
	if n.Scoped {
		c.closeScopeLocals(n.Position())
	}
}

// compileIf emits one conditional jump per branch: each branch's jump
// target is patched once the branch (and the unconditional jump past
// any remaining branches) has been emitted.
func (c *Compiler) compileIf(n *ast.If) {
	cond := c.compileExpr(n.Cond)
	elseJump := c.emitJump(n.Position(), chunk.OP_JUMP_IF_FALSE, cond, true)
	c.freeIfTemp(cond)

	c.compileBlock(n.Then)
	endJumps := []int{c.emitJump(n.Position(), chunk.OP_JUMP, 0, false)}
	c.patchJump(elseJump)

	for _, elif := range n.Elifs {
		econd := c.compileExpr(elif.Cond)
		nextJump := c.emitJump(elif.Cond.Position(), chunk.OP_JUMP_IF_FALSE, econd, true)
		c.freeIfTemp(econd)
		c.compileBlock(elif.Then)
		endJumps = append(endJumps, c.emitJump(n.Position(), chunk.OP_JUMP, 0, false))
		c.patchJump(nextJump)
	}

	if n.Else != nil {
		c.compileBlock(n.Else)
	}
	for _, j := range endJumps {
		c.patchJump(j)
	}
}

func (c *Compiler) compileStructDecl(n *ast.StructDecl) {
	c.structs[n.Name] = &ast.Struct{Name: n.Name, Fields: n.Fields, GenericParams: n.Generics}
}

// compileTry guards the try block with SETUP_EXCEPT (whose operand is
// the jump target the VM unwinds to on a runtime error), emits
// POP_EXCEPT on the success path to uninstall that handler before
// falling through to the catch block's own unconditional skip, and
// binds the error value into the catch block's first local.
func (c *Compiler) compileTry(n *ast.Try) {
	setup := c.emitJump(n.Position(), chunk.OP_SETUP_EXCEPT, 0, false)
	c.compileBlock(n.TryBlock)
	c.emitOp(n.Position(), chunk.OP_POP_EXCEPT)
	skipCatch := c.emitJump(n.Position(), chunk.OP_JUMP, 0, false)
	c.patchJump(setup)

	if n.CatchBlock != nil {
		c.scope.Begin()
		errReg := c.allocReg(n.Position())
		c.scope.Declare(n.ErrName, errReg)
		c.compileBlock(n.CatchBlock)
		c.closeScopeLocals(n.Position())
	}
	c.patchJump(skipCatch)
}
