package ast

// Node is the common interface of every AST element.
type Node interface {
	Position() Pos
}

// Statement is a Node compiled for effect.
type Statement interface {
	Node
	stmtNode()
}

// Expression is a Node compiled for a value; it optionally carries the
// type resolved by the (external) type-checker.
type Expression interface {
	Node
	exprNode()
	ResolvedType() Type
	SetResolvedType(Type)
}

// exprBase factors the position + resolved-type bookkeeping shared by
// every expression node.
type exprBase struct {
	Pos  Pos
	Type Type
}

func (e *exprBase) exprNode()              {}
func (e *exprBase) Position() Pos          { return e.Pos }
func (e *exprBase) ResolvedType() Type     { return e.Type }
func (e *exprBase) SetResolvedType(t Type) { e.Type = t }

type stmtBase struct {
	Pos Pos
}

func (s *stmtBase) stmtNode()      {}
func (s *stmtBase) Position() Pos { return s.Pos }
