package compiler

import (
	"github.com/jordyorel/orus-lang-sub003/internal/ast"
	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
	"github.com/jordyorel/orus-lang-sub003/internal/value"
)

func exprKind(e ast.Expression) value.Kind {
	if p, ok := e.ResolvedType().(*ast.Primitive); ok {
		return p.Kind
	}
	return value.KindNil
}

// compileExpr compiles e into a freshly allocated register and returns it.
// Every branch is responsible for leaving exactly one live register behind.
func (c *Compiler) compileExpr(e ast.Expression) byte {
	switch n := e.(type) {
	case *ast.IntLiteral:
		dst := c.allocReg(n.Position())
		kind := n.Kind
		var v value.Value
		switch kind {
		case value.KindI32:
			v = value.I32(int32(n.Value))
		case value.KindU32:
			v = value.U32(uint32(n.Value))
		case value.KindU64:
			v = value.U64(uint64(n.Value))
		default:
			v = value.I64(n.Value)
		}
		c.emitConstant(n.Position(), dst, v)
		return dst
	case *ast.FloatLiteral:
		dst := c.allocReg(n.Position())
		c.emitConstant(n.Position(), dst, value.F64(n.Value))
		return dst
	case *ast.BoolLiteral:
		dst := c.allocReg(n.Position())
		if n.Value {
			c.emitOp(n.Position(), chunk.OP_LOAD_TRUE, dst)
		} else {
			c.emitOp(n.Position(), chunk.OP_LOAD_FALSE, dst)
		}
		return dst
	case *ast.StringLiteral:
		dst := c.allocReg(n.Position())
		c.emitConstant(n.Position(), dst, value.Str(&n.Value))
		return dst
	case *ast.NilLiteral:
		dst := c.allocReg(n.Position())
		c.emitOp(n.Position(), chunk.OP_LOAD_NIL, dst)
		return dst
	case *ast.Identifier:
		return c.compileIdentifier(n)
	case *ast.Binary:
		return c.compileBinary(n)
	case *ast.Unary:
		return c.compileUnary(n)
	case *ast.Cast:
		return c.compileCast(n)
	case *ast.Ternary:
		return c.compileTernary(n)
	case *ast.Call:
		return c.compileCall(n)
	case *ast.Index:
		coll := c.compileExpr(n.Collection)
		idx := c.compileExpr(n.Key)
		dst := c.allocReg(n.Position())
		c.emitOp(n.Position(), chunk.OP_GET_INDEX, dst, coll, idx)
		c.freeIfTemp(idx)
		c.freeIfTemp(coll)
		return dst
	case *ast.Field:
		obj := c.compileExpr(n.Object)
		dst := c.allocReg(n.Position())
		nameIdx := c.emitNameConstant(n.Position(), n.Name)
		c.emitOp(n.Position(), chunk.OP_GET_FIELD, dst, obj, byte(nameIdx>>8), byte(nameIdx))
		c.freeIfTemp(obj)
		return dst
	case *ast.ArrayLit:
		return c.compileArrayLit(n)
	case *ast.ArrayFill:
		val := c.compileExpr(n.Value)
		size := c.compileExpr(n.Size)
		dst := c.allocReg(n.Position())
		c.emitOp(n.Position(), chunk.OP_ARRAY_FILL, dst, val, size)
		c.freeIfTemp(size)
		c.freeIfTemp(val)
		return dst
	case *ast.StructLit:
		return c.compileStructLit(n)
	case *ast.Slice:
		return c.compileSlice(n)
	default:
		c.errorf(e.Position(), "unsupported expression node %T", e)
		return c.allocReg(e.Position())
	}
}

// freeIfTemp releases r if it is the allocator's current top (i.e. a
// scratch value with no surviving local binding). Locals and persistent
// registers are left alone; Free itself is a no-op for persistent ones.
func (c *Compiler) freeIfTemp(r byte) {
	_ = c.regs.Free(r)
}

func (c *Compiler) compileIdentifier(n *ast.Identifier) byte {
	if local, ok := c.scope.Resolve(n.Name); ok {
		return local.Register
	}
	if idx, ok := c.resolveUpvalue(n.Name); ok {
		dst := c.allocReg(n.Position())
		c.emitOp(n.Position(), chunk.OP_GET_UPVALUE, dst, idx)
		return dst
	}
	dst := c.allocReg(n.Position())
	nameIdx := c.emitNameConstant(n.Position(), n.Name)
	c.emitOp(n.Position(), chunk.OP_LOAD_GLOBAL, dst, byte(nameIdx>>8), byte(nameIdx))
	return dst
}

func (c *Compiler) compileBinary(n *ast.Binary) byte {
	if n.Op == "&&" || n.Op == "||" {
		return c.compileShortCircuit(n)
	}

	left := c.compileExpr(n.Left)
	right := c.compileExpr(n.Right)

	leftKind, rightKind := exprKind(n.Left), exprKind(n.Right)
	target, convLeft, convRight := promote(n.Op, leftKind, rightKind)
	if n.ConvertLeft {
		convLeft = true
	}
	if n.ConvertRight {
		convRight = true
	}
	if convLeft {
		c.emitOp(n.Position(), chunk.OP_CAST, left, left, byte(target))
	}
	if convRight {
		c.emitOp(n.Position(), chunk.OP_CAST, right, right, byte(target))
	}

	dst := c.allocReg(n.Position())
	switch {
	case isComparison(n.Op):
		c.emitOp(n.Position(), cmpOps[n.Op], dst, left, right)
	case isBitwise(n.Op):
		c.emitOp(n.Position(), bitOps[n.Op], dst, left, right)
	default:
		table, ok := arithOps[n.Op]
		if !ok {
			c.errorf(n.Position(), "unknown binary operator %q", n.Op)
			return dst
		}
		op, ok := table[target]
		if !ok {
			c.errorf(n.Position(), "operator %q not defined for %s", n.Op, target)
			return dst
		}
		c.emitOp(n.Position(), op, dst, left, right)
	}
	c.freeIfTemp(right)
	c.freeIfTemp(left)
	return dst
}

// compileShortCircuit emits && and || so the left operand's truthiness
// decides whether the right operand even runs, and either way exactly one
// value (in dst) survives into the enclosing expression.
func (c *Compiler) compileShortCircuit(n *ast.Binary) byte {
	left := c.compileExpr(n.Left)
	dst := c.allocReg(n.Position())
	c.emitOp(n.Position(), chunk.OP_MOVE, dst, left)

	var skip int
	if n.Op == "&&" {
		skip = c.emitJump(n.Position(), chunk.OP_JUMP_IF_FALSE, dst, true)
	} else {
		notLeft := c.allocReg(n.Position())
		c.emitOp(n.Position(), chunk.OP_NOT, notLeft, dst)
		skip = c.emitJump(n.Position(), chunk.OP_JUMP_IF_FALSE, notLeft, true)
		c.freeIfTemp(notLeft)
	}
	c.freeIfTemp(left)

	right := c.compileExpr(n.Right)
	c.emitOp(n.Position(), chunk.OP_MOVE, dst, right)
	c.freeIfTemp(right)

	c.patchJump(skip)
	return dst
}

func (c *Compiler) compileUnary(n *ast.Unary) byte {
	operand := c.compileExpr(n.Operand)
	dst := c.allocReg(n.Position())
	switch n.Op {
	case "-":
		op, ok := negateOps[exprKind(n.Operand)]
		if !ok {
			c.errorf(n.Position(), "cannot negate %s", exprKind(n.Operand))
			return dst
		}
		c.emitOp(n.Position(), op, dst, operand)
	case "!":
		c.emitOp(n.Position(), chunk.OP_NOT, dst, operand)
	case "~":
		c.emitOp(n.Position(), chunk.OP_BIT_NOT, dst, operand)
	default:
		c.errorf(n.Position(), "unknown unary operator %q", n.Op)
	}
	c.freeIfTemp(operand)
	return dst
}

func (c *Compiler) compileCast(n *ast.Cast) byte {
	src := c.compileExpr(n.Operand)
	targetKind := value.KindNil
	if p, ok := n.Target.(*ast.Primitive); ok {
		targetKind = p.Kind
	}
	if !castAllowed(exprKind(n.Operand), targetKind) {
		c.errorf(n.Position(), "cannot cast %s to %s", exprKind(n.Operand), targetKind)
	}
	dst := c.allocReg(n.Position())
	c.emitOp(n.Position(), chunk.OP_CAST, dst, src, byte(targetKind))
	c.freeIfTemp(src)
	return dst
}

func (c *Compiler) compileTernary(n *ast.Ternary) byte {
	cond := c.compileExpr(n.Cond)
	elseJump := c.emitJump(n.Position(), chunk.OP_JUMP_IF_FALSE, cond, true)
	c.freeIfTemp(cond)

	dst := c.allocReg(n.Position())
	thenVal := c.compileExpr(n.Then)
	c.emitOp(n.Position(), chunk.OP_MOVE, dst, thenVal)
	c.freeIfTemp(thenVal)
	endJump := c.emitJump(n.Position(), chunk.OP_JUMP, 0, false)

	c.patchJump(elseJump)
	elseVal := c.compileExpr(n.Else)
	c.emitOp(n.Position(), chunk.OP_MOVE, dst, elseVal)
	c.freeIfTemp(elseVal)

	c.patchJump(endJump)
	return dst
}

func (c *Compiler) compileArrayLit(n *ast.ArrayLit) byte {
	elems := make([]byte, len(n.Elements))
	for i, el := range n.Elements {
		elems[i] = c.compileExpr(el)
	}
	dst := c.allocReg(n.Position())
	count := len(elems)
	operands := append([]byte{dst, byte(count >> 8), byte(count)}, elems...)
	c.emitOp(n.Position(), chunk.OP_NEW_ARRAY, operands...)
	for i := len(elems) - 1; i >= 0; i-- {
		c.freeIfTemp(elems[i])
	}
	return dst
}

func (c *Compiler) compileStructLit(n *ast.StructLit) byte {
	typeIdx := c.emitNameConstant(n.Position(), n.TypeName)
	dst := c.allocReg(n.Position())
	operands := []byte{dst, byte(typeIdx >> 8), byte(typeIdx), byte(len(n.Order))}
	regs := make([]byte, 0, len(n.Order))
	for _, name := range n.Order {
		fieldReg := c.compileExpr(n.Fields[name])
		nameIdx := c.emitNameConstant(n.Position(), name)
		operands = append(operands, byte(nameIdx>>8), byte(nameIdx), fieldReg)
		regs = append(regs, fieldReg)
	}
	c.emitOp(n.Position(), chunk.OP_NEW_STRUCT, operands...)
	for i := len(regs) - 1; i >= 0; i-- {
		c.freeIfTemp(regs[i])
	}
	return dst
}

func (c *Compiler) compileSlice(n *ast.Slice) byte {
	coll := c.compileExpr(n.Collection)
	const none = 0xFE // distinct from the no-register sentinel used by CALL/RETURN
	low, high := byte(none), byte(none)
	if n.Low != nil {
		low = c.compileExpr(n.Low)
	}
	if n.High != nil {
		high = c.compileExpr(n.High)
	}
	dst := c.allocReg(n.Position())
	c.emitOp(n.Position(), chunk.OP_SLICE, dst, coll, low, high)
	if n.High != nil {
		c.freeIfTemp(high)
	}
	if n.Low != nil {
		c.freeIfTemp(low)
	}
	c.freeIfTemp(coll)
	return dst
}

func (c *Compiler) compileCall(n *ast.Call) byte {
	fn := c.compileExpr(n.Callee)
	args := make([]byte, len(n.Args))
	for i, a := range n.Args {
		args[i] = c.compileExpr(a)
	}
	dst := c.allocReg(n.Position())
	operands := append([]byte{dst, fn, byte(len(args))}, args...)
	c.emitOp(n.Position(), chunk.OP_CALL, operands...)
	for i := len(args) - 1; i >= 0; i-- {
		c.freeIfTemp(args[i])
	}
	c.freeIfTemp(fn)
	return dst
}
