package compiler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jordyorel/orus-lang-sub003/internal/ast"
	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
	"github.com/jordyorel/orus-lang-sub003/internal/value"
)

func intLit(v int64, k value.Kind) *ast.IntLiteral {
	lit := &ast.IntLiteral{Value: v, Kind: k}
	lit.SetResolvedType(&ast.Primitive{Kind: k})
	return lit
}

func ident(name string, k value.Kind) *ast.Identifier {
	id := &ast.Identifier{Name: name}
	id.SetResolvedType(&ast.Primitive{Kind: k})
	return id
}

func disasm(t *testing.T, c *chunk.Chunk) string {
	t.Helper()
	var buf bytes.Buffer
	c.Disassemble(&buf, "test")
	return buf.String()
}

func TestSimpleArithmeticSmoke(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.ExprStmt{X: &ast.Binary{Left: intLit(1, value.KindI32), Right: intLit(2, value.KindI32), Op: "+"}},
	}}
	c, fns, _, diags := CompileProgram(prog, "t.nx")
	require.Empty(t, diags)
	require.Empty(t, fns)
	out := disasm(t, c)
	require.Contains(t, out, "ADD_I32")
}

func TestIntegerPromotionInsertsCast(t *testing.T) {
	left := intLit(1, value.KindI32)
	right := intLit(2, value.KindI64)
	bin := &ast.Binary{Left: left, Right: right, Op: "+"}
	prog := &ast.Program{Statements: []ast.Statement{&ast.ExprStmt{X: bin}}}

	c, _, _, diags := CompileProgram(prog, "t.nx")
	require.Empty(t, diags)
	out := disasm(t, c)
	require.Contains(t, out, "CAST")
	require.Contains(t, out, "ADD_I64")
}

func TestForRangeBreakAndContinue(t *testing.T) {
	body := &ast.Block{Scoped: true, Statements: []ast.Statement{
		&ast.If{
			Cond: &ast.Binary{Left: ident("i", value.KindI64), Right: intLit(5, value.KindI64), Op: "=="},
			Then: &ast.Block{Scoped: true, Statements: []ast.Statement{&ast.Continue{}}},
		},
		&ast.If{
			Cond: &ast.Binary{Left: ident("i", value.KindI64), Right: intLit(8, value.KindI64), Op: "=="},
			Then: &ast.Block{Scoped: true, Statements: []ast.Statement{&ast.Break{}}},
		},
	}}
	loop := &ast.ForRange{Iterator: "i", Start: intLit(0, value.KindI64), End: intLit(10, value.KindI64), Body: body}
	prog := &ast.Program{Statements: []ast.Statement{loop}}

	c, _, _, diags := CompileProgram(prog, "t.nx")
	require.Empty(t, diags)
	out := disasm(t, c)
	require.Contains(t, out, "LOOP")
	require.Contains(t, out, "JUMP")
}

func TestClosureCapturesMutableOuterLocal(t *testing.T) {
	outer := &ast.Function{
		Name: "makeCounter",
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.VarDecl{Name: "count", Declared: ast.I64T(), Init: intLit(0, value.KindI64), Mutable: true},
			&ast.Function{
				Name: "increment",
				Body: &ast.Block{Statements: []ast.Statement{
					&ast.Assignment{
						Target: ident("count", value.KindI64),
						Value:  &ast.Binary{Left: ident("count", value.KindI64), Right: intLit(1, value.KindI64), Op: "+"},
					},
					&ast.Return{Value: ident("count", value.KindI64)},
				}},
			},
			&ast.Return{Value: ident("increment", value.KindI64)},
		}},
	}
	prog := &ast.Program{Statements: []ast.Statement{outer}}

	_, fns, names, diags := CompileProgram(prog, "t.nx")
	require.Empty(t, diags)
	require.Len(t, fns, 2)
	require.Contains(t, names, "makeCounter")
	require.Contains(t, names, "increment")

	var incrementChunk *chunk.Chunk
	for i, n := range names {
		if n == "increment" {
			incrementChunk = fns[i]
		}
	}
	require.NotNil(t, incrementChunk)
	out := disasm(t, incrementChunk)
	require.Contains(t, out, "GET_UPVALUE")
	require.Contains(t, out, "SET_UPVALUE")
}

func TestLoopInvariantIsHoistedOutOfLoopBody(t *testing.T) {
	body := &ast.Block{Scoped: true, Statements: []ast.Statement{
		&ast.VarDecl{Name: "limit", Init: &ast.Binary{Left: intLit(2, value.KindI64), Right: intLit(3, value.KindI64), Op: "*"}},
		&ast.ExprStmt{X: ident("limit", value.KindI64)},
	}}
	loop := &ast.ForRange{Iterator: "i", Start: intLit(0, value.KindI64), End: intLit(10, value.KindI64), Body: body}
	prog := &ast.Program{Statements: []ast.Statement{loop}}

	c, _, _, diags := CompileProgram(prog, "t.nx")
	require.Empty(t, diags)
	out := disasm(t, c)
	// The MUL_I64 computing `limit` must appear once, before the loop's
	// backward jump, rather than once per textual position inside the body.
	require.Equal(t, 1, bytes.Count([]byte(out), []byte("MUL_I64")))
}

func TestOutOfRegistersReportsDiagnostic(t *testing.T) {
	params := make([]ast.Param, 0, 300)
	for i := 0; i < 300; i++ {
		params = append(params, ast.Param{Name: paramName(i), Type: ast.I32T()})
	}
	fn := &ast.Function{
		Name:   "tooManyParams",
		Params: params,
		Body:   &ast.Block{Statements: []ast.Statement{&ast.Return{}}},
	}
	prog := &ast.Program{Statements: []ast.Statement{fn}}
	_, _, _, diags := CompileProgram(prog, "t.nx")
	require.NotEmpty(t, diags)
}

func paramName(i int) string {
	return string(rune('a' + i%26))
}
