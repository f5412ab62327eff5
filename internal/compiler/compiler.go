// Package compiler lowers the typed AST (internal/ast) into register
// bytecode (internal/chunk), implementing numeric promotion, literal
// narrowing, cast, control-flow, closure, and loop-invariant code
// motion.
//
// The compiler never panics on malformed input: every compile error is
// appended to a Diagnostic list and compilation continues on a best-effort
// basis so a single syntax mistake doesn't hide the rest of a program's
// errors, collecting diagnostics rather than aborting on the first
// failure.
package compiler

import (
	"fmt"

	"github.com/jordyorel/orus-lang-sub003/internal/ast"
	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
	"github.com/jordyorel/orus-lang-sub003/internal/register"
	"github.com/jordyorel/orus-lang-sub003/internal/value"
)

// Diagnostic is one compile-time error, positioned for editor/CLI reporting.
type Diagnostic struct {
	Pos     ast.Pos
	Message string
}

func (d Diagnostic) Error() string { return fmt.Sprintf("%s: %s", d.Pos, d.Message) }

// Upvalue is a closure's captured-variable record: Index is either a
// register in the immediately enclosing frame (IsLocal) or an index
// into that frame's own upvalue list.
type Upvalue struct {
	Index   byte
	IsLocal bool
}

// loopContext tracks one active loop's break/continue jump sites and its
// LICM-hoisted invariant registers.
type loopContext struct {
	label         string
	breakJumps    []int
	continueJumps []int
	loopStart     int
	hoisted       map[string]byte // name -> persistent register holding its hoisted value
}

// Compiler compiles one function body (or the top-level script) into a
// single Chunk. Nested function literals get their own child Compiler
// whose finished Chunk is appended to the shared function table.
type Compiler struct {
	enclosing *Compiler

	chunk *chunk.Chunk
	regs  *register.Allocator
	scope *register.Scopes

	upvalues []Upvalue

	loops []*loopContext

	structs map[string]*ast.Struct

	functions     *[]*chunk.Chunk
	functionNames *[]string

	globals map[string]ast.Type

	diagnostics *[]Diagnostic

	functionName string
	returnType   ast.Type
}

// CompileProgram compiles a top-level program into a main chunk plus a
// function table for every nested Function declaration encountered.
func CompileProgram(prog *ast.Program, fileName string) (*chunk.Chunk, []*chunk.Chunk, []string, []Diagnostic) {
	functions := []*chunk.Chunk{}
	names := []string{}
	diags := []Diagnostic{}

	c := &Compiler{
		chunk:         chunk.New(fileName),
		regs:          register.New("<script>"),
		scope:         register.NewScopes(),
		structs:       map[string]*ast.Struct{},
		functions:     &functions,
		functionNames: &names,
		globals:       map[string]ast.Type{},
		diagnostics:   &diags,
		functionName:  "<script>",
	}

	for _, stmt := range prog.Statements {
		c.compileStmt(stmt)
	}
	c.emitReturn(ast.Pos{})
	return c.chunk, functions, names, diags
}

func (c *Compiler) errorf(pos ast.Pos, format string, args ...any) {
	*c.diagnostics = append(*c.diagnostics, Diagnostic{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (c *Compiler) isGlobalScope() bool {
	return c.enclosing == nil && c.scope.Depth() == 0
}

// --- byte/word emission helpers: emitByte/emitBytes/emitJump/patchJump/
// emitLoop family. ---

func (c *Compiler) emit(pos ast.Pos, bytes ...byte) {
	for _, b := range bytes {
		c.chunk.Write(b, pos.Line, pos.Column)
	}
}

func (c *Compiler) emitOp(pos ast.Pos, op chunk.OpCode, operands ...byte) {
	c.emit(pos, append([]byte{byte(op)}, operands...)...)
}

func (c *Compiler) emitConstant(pos ast.Pos, dst byte, v value.Value) {
	idx, err := c.chunk.AddConstant(v)
	if err != nil {
		c.errorf(pos, "%s", err)
		return
	}
	c.emitOp(pos, chunk.OP_LOAD_CONST, dst, byte(idx>>8), byte(idx))
}

func (c *Compiler) emitNameConstant(pos ast.Pos, name string) uint16 {
	idx, err := c.chunk.AddConstant(value.Str(&name))
	if err != nil {
		c.errorf(pos, "%s", err)
		return 0
	}
	return uint16(idx)
}

// emitJump writes a forward jump with a placeholder 16-bit operand and
// returns the offset of the first placeholder byte for later patchJump.
func (c *Compiler) emitJump(pos ast.Pos, op chunk.OpCode, cond byte, hasCond bool) int {
	if hasCond {
		c.emitOp(pos, op, cond, 0xFF, 0xFF)
		return len(c.chunk.Code) - 2
	}
	c.emitOp(pos, op, 0xFF, 0xFF)
	return len(c.chunk.Code) - 2
}

func (c *Compiler) patchJump(at int) {
	dist := len(c.chunk.Code) - at - 2
	if dist < 0 || dist > 0xFFFF {
		c.errorf(ast.Pos{}, "jump distance %d out of range", dist)
		return
	}
	c.chunk.Code[at] = byte(dist >> 8)
	c.chunk.Code[at+1] = byte(dist)
}

// emitLoop writes a backward jump to loopStart.
func (c *Compiler) emitLoop(pos ast.Pos, loopStart int) {
	dist := len(c.chunk.Code) - loopStart + 2 // +2 covers LOOP_SHORT's own opcode and offset byte
	if dist <= 0xFF {
		c.emitOp(pos, chunk.OP_LOOP_SHORT, byte(dist))
		return
	}
	dist++ // LOOP carries a second offset byte
	if dist > 0xFFFF {
		c.errorf(pos, "loop body too large to jump backward (%d bytes)", dist)
		return
	}
	c.emitOp(pos, chunk.OP_LOOP, byte(dist>>8), byte(dist))
}

func (c *Compiler) emitReturn(pos ast.Pos) {
	c.emitOp(pos, chunk.OP_RETURN, 0xFF)
}

// allocReg allocates a register, recording a diagnostic (rather than
// panicking) if the frame has run out.
func (c *Compiler) allocReg(pos ast.Pos) byte {
	r, err := c.regs.Allocate()
	if err != nil {
		c.errorf(pos, "%s", err)
		return 0
	}
	return r
}
