// Command orusc drives the compile/disassemble pipeline end to end.
// Lexing and parsing are external collaborators (outside this
// repository's scope), so orusc demonstrates the pipeline against a
// small built-in AST fixture rather than a source file argument.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/jordyorel/orus-lang-sub003/internal/ast"
	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
	"github.com/jordyorel/orus-lang-sub003/internal/compiler"
	"github.com/jordyorel/orus-lang-sub003/internal/value"
	"github.com/jordyorel/orus-lang-sub003/internal/vmconfig"
)

const Version = "v0.1.0"

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Println("Recovered from panic:", r)
			debug.PrintStack()
		}
	}()

	showDisassembly := flag.Bool("disassembly", true, "Show bytecode disassembly")
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "orus.yaml", "Path to an optional orus.yaml config file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: orusc [options]\n\nOptions:\n")
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  --%s\n\t%s\n", f.Name, f.Usage)
		})
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("orusc %s\n", Version)
		return
	}

	cfg, err := vmconfig.Load(*configPath)
	if err != nil {
		log.Fatalf("orusc: loading config: %v", err)
	}

	sessionID := uuid.NewString()
	logger := log.New(os.Stderr, fmt.Sprintf("[orusc %s] ", sessionID[:8]), log.LstdFlags)
	logger.Printf("compiling fixture program (jit_enabled=%v rollout=%s)", cfg.JITEnabled, cfg.Stage())

	prog := fixtureProgram()
	main, functions, names, diags := compiler.CompileProgram(prog, "fixture.orus")
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		os.Exit(1)
	}

	if *showDisassembly {
		writeDisassembly(os.Stdout, main, functions, names)
	}
}

// writeDisassembly renders the program the way a terminal-aware
// operator tool would: ANSI section headers only when stdout is a
// real terminal, plain text otherwise (e.g. piped into a file or CI
// log).
func writeDisassembly(f *os.File, main *chunk.Chunk, functions []*chunk.Chunk, names []string) {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		fmt.Fprintln(f, "\x1b[1mbytecode disassembly\x1b[0m")
	} else {
		fmt.Fprintln(f, "bytecode disassembly")
	}
	chunk.DisassembleProgram(f, main, functions, names)
}

// fixtureProgram builds a small hand-written AST — a function
// computing the sum of 1..n, called once at the top level — the same
// way the compiler's own unit tests construct fixtures rather than
// running it through a parser.
func fixtureProgram() *ast.Program {
	n := &ast.Identifier{Name: "n"}
	n.SetResolvedType(&ast.Primitive{Kind: value.KindI64})

	sum := &ast.Identifier{Name: "sum"}
	sum.SetResolvedType(&ast.Primitive{Kind: value.KindI64})

	i := &ast.Identifier{Name: "i"}
	i.SetResolvedType(&ast.Primitive{Kind: value.KindI64})

	zero := &ast.IntLiteral{Value: 0, Kind: value.KindI64}
	zero.SetResolvedType(&ast.Primitive{Kind: value.KindI64})
	one := &ast.IntLiteral{Value: 1, Kind: value.KindI64}
	one.SetResolvedType(&ast.Primitive{Kind: value.KindI64})

	sumDecl := &ast.VarDecl{Name: "sum", Declared: &ast.Primitive{Kind: value.KindI64}, Init: zero, Mutable: true}

	loopBody := &ast.Block{Scoped: true, Statements: []ast.Statement{
		&ast.Assignment{
			Target: sum,
			Value:  &ast.Binary{Left: sum, Right: i, Op: "+"},
		},
	}}

	forLoop := &ast.ForRange{
		Iterator:  "i",
		Start:     one,
		End:       n,
		Inclusive: true,
		Body:      loopBody,
	}

	fn := &ast.Function{
		Name:   "sumUpTo",
		Params: []ast.Param{{Name: "n", Type: &ast.Primitive{Kind: value.KindI64}}},
		Return: &ast.Primitive{Kind: value.KindI64},
		Body: &ast.Block{Scoped: true, Statements: []ast.Statement{
			sumDecl,
			forLoop,
			&ast.Return{Value: sum},
		}},
	}

	call := &ast.Call{
		Callee: &ast.Identifier{Name: "sumUpTo"},
		Args:   []ast.Expression{&ast.IntLiteral{Value: 10, Kind: value.KindI64}},
	}

	return &ast.Program{Statements: []ast.Statement{
		fn,
		&ast.ExprStmt{X: call},
	}}
}
