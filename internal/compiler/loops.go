package compiler

import (
	"github.com/jordyorel/orus-lang-sub003/internal/ast"
	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
	"github.com/jordyorel/orus-lang-sub003/internal/value"
)

var i64One = value.I64(1)
var i64Zero = value.I64(0)

func (c *Compiler) pushLoop(label string) *loopContext {
	lc := &loopContext{label: label, hoisted: map[string]byte{}}
	c.loops = append(c.loops, lc)
	return lc
}

func (c *Compiler) popLoop() {
	c.loops = c.loops[:len(c.loops)-1]
}

func (c *Compiler) findLoop(label string) *loopContext {
	for i := len(c.loops) - 1; i >= 0; i-- {
		if label == "" || c.loops[i].label == label {
			return c.loops[i]
		}
	}
	return nil
}

// hoistInvariants evaluates each LICM candidate once, before the loop
// starts, into a persistent register, and declares it as a local so the
// loop body's own reference to that name resolves to the hoisted value
// instead of recomputing it every iteration.
func (c *Compiler) hoistInvariants(body *ast.Block, lc *loopContext) {
	for _, cand := range findInvariants(body) {
		reg := c.compileExpr(cand.decl.Init)
		c.regs.MarkPersistent(reg)
		c.scope.Declare(cand.decl.Name, reg)
		lc.hoisted[cand.decl.Name] = reg
	}
}

// bodyWithoutHoisted returns the body statements minus the VarDecls that
// were hoisted, so compileBlock doesn't redeclare (and thus re-evaluate)
// them inside the loop.
func bodyWithoutHoisted(body *ast.Block, lc *loopContext) *ast.Block {
	if len(lc.hoisted) == 0 {
		return body
	}
	filtered := &ast.Block{Statements: make([]ast.Statement, 0, len(body.Statements)), Scoped: body.Scoped}
	for _, stmt := range body.Statements {
		if decl, ok := stmt.(*ast.VarDecl); ok {
			if _, hoisted := lc.hoisted[decl.Name]; hoisted {
				continue
			}
		}
		filtered.Statements = append(filtered.Statements, stmt)
	}
	return filtered
}

func (c *Compiler) compileWhile(n *ast.While) {
	lc := c.pushLoop(n.Label)

	c.scope.Begin()
	c.hoistInvariants(n.Body, lc)
	lc.loopStart = len(c.chunk.Code)

	cond := c.compileExpr(n.Cond)
	exitJump := c.emitJump(n.Position(), chunk.OP_JUMP_IF_FALSE, cond, true)
	c.freeIfTemp(cond)

	c.compileBlock(bodyWithoutHoisted(n.Body, lc))

	for _, j := range lc.continueJumps {
		c.patchJump(j)
	}
	c.emitLoop(n.Position(), lc.loopStart)
	c.patchJump(exitJump)

	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}

	c.closeScopeLocals(n.Position())
	c.popLoop()
}

func (c *Compiler) compileForRange(n *ast.ForRange) {
	c.scope.Begin()

	start := c.compileExpr(n.Start)
	iterReg := c.allocReg(n.Position())
	c.emitOp(n.Position(), chunk.OP_MOVE, iterReg, start)
	c.freeIfTemp(start)
	c.scope.Declare(n.Iterator, iterReg)

	end := c.compileExpr(n.End)
	step := byte(0)
	hasStep := n.Step != nil
	if hasStep {
		step = c.compileExpr(n.Step)
	}

	lc := c.pushLoop(n.Label)
	c.hoistInvariants(n.Body, lc)
	lc.loopStart = len(c.chunk.Code)

	cmpOp := chunk.OP_CMP_LESS
	if n.Inclusive {
		cmpOp = chunk.OP_CMP_LESS_EQUAL
	}
	condReg := c.allocReg(n.Position())
	c.emitOp(n.Position(), cmpOp, condReg, iterReg, end)
	exitJump := c.emitJump(n.Position(), chunk.OP_JUMP_IF_FALSE, condReg, true)
	c.freeIfTemp(condReg)

	c.compileBlock(bodyWithoutHoisted(n.Body, lc))

	for _, j := range lc.continueJumps {
		c.patchJump(j)
	}
	if hasStep {
		c.emitOp(n.Position(), chunk.OP_ADD_I64, iterReg, iterReg, step)
	} else {
		one := c.allocReg(n.Position())
		c.emitConstantOne(n.Position(), one)
		c.emitOp(n.Position(), chunk.OP_ADD_I64, iterReg, iterReg, one)
		c.freeIfTemp(one)
	}
	c.emitLoop(n.Position(), lc.loopStart)
	c.patchJump(exitJump)

	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}

	if hasStep {
		c.freeIfTemp(step)
	}
	c.freeIfTemp(end)
	c.closeScopeLocals(n.Position())
	c.popLoop()
}

func (c *Compiler) compileForIter(n *ast.ForIter) {
	c.scope.Begin()

	coll := c.compileExpr(n.Iterable)
	idxReg := c.allocReg(n.Position())
	c.emitConstant(n.Position(), idxReg, i64Zero)

	lenReg := c.allocReg(n.Position())
	c.emitOp(n.Position(), chunk.OP_LEN, lenReg, coll)

	lc := c.pushLoop(n.Label)
	c.hoistInvariants(n.Body, lc)
	lc.loopStart = len(c.chunk.Code)

	condReg := c.allocReg(n.Position())
	c.emitOp(n.Position(), chunk.OP_CMP_LESS, condReg, idxReg, lenReg)
	exitJump := c.emitJump(n.Position(), chunk.OP_JUMP_IF_FALSE, condReg, true)
	c.freeIfTemp(condReg)

	elemReg := c.allocReg(n.Position())
	c.emitOp(n.Position(), chunk.OP_GET_INDEX, elemReg, coll, idxReg)
	c.scope.Declare(n.Iterator, elemReg)

	c.compileBlock(bodyWithoutHoisted(n.Body, lc))

	for _, j := range lc.continueJumps {
		c.patchJump(j)
	}
	one := c.allocReg(n.Position())
	c.emitConstantOne(n.Position(), one)
	c.emitOp(n.Position(), chunk.OP_ADD_I64, idxReg, idxReg, one)
	c.freeIfTemp(one)
	c.freeIfTemp(elemReg)

	c.emitLoop(n.Position(), lc.loopStart)
	c.patchJump(exitJump)
	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}

	c.freeIfTemp(lenReg)
	c.freeIfTemp(idxReg)
	c.freeIfTemp(coll)
	c.closeScopeLocals(n.Position())
	c.popLoop()
}

func (c *Compiler) compileBreak(n *ast.Break) {
	lc := c.findLoop(n.Label)
	if lc == nil {
		c.errorf(n.Position(), "break outside of a loop")
		return
	}
	lc.breakJumps = append(lc.breakJumps, c.emitJump(n.Position(), chunk.OP_JUMP, 0, false))
}

func (c *Compiler) compileContinue(n *ast.Continue) {
	lc := c.findLoop(n.Label)
	if lc == nil {
		c.errorf(n.Position(), "continue outside of a loop")
		return
	}
	lc.continueJumps = append(lc.continueJumps, c.emitJump(n.Position(), chunk.OP_JUMP, 0, false))
}

func (c *Compiler) emitConstantOne(pos ast.Pos, dst byte) {
	c.emitConstant(pos, dst, i64One)
}

// closeScopeLocals pops the innermost scope, emitting CLOSE_UPVALUES for
// any local a nested closure captured before releasing its register.
func (c *Compiler) closeScopeLocals(pos ast.Pos) {
	for _, local := range c.scope.End() {
		if local.Captured {
			c.emitOp(pos, chunk.OP_CLOSE_UPVALUES, local.Register)
		}
		if !local.Persistent {
			_ = c.regs.Free(local.Register)
		}
	}
}
