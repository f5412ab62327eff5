// Package ast defines the typed-AST contract the bytecode compiler
// consumes. Lexing and parsing that produce this tree are
// external collaborators; this package only fixes the shape the
// compiler is written against.
package ast

import "fmt"

// Pos is the source coordinate every node carries, mirroring the
// per-byte line/column tracking the compiler copies into the Chunk
// it emits.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }
