package ast

import "github.com/jordyorel/orus-lang-sub003/internal/value"

// IntLiteral is an integer literal before narrowing; Kind starts as i64 unless the parser already
// knows it fits i32, and the compiler may rewrite Kind in place when
// narrowing into a differently-typed declaration.
type IntLiteral struct {
	exprBase
	Value int64
	Kind  value.Kind // KindI32, KindI64, KindU32, or KindU64
}

// FloatLiteral is an f64 literal.
type FloatLiteral struct {
	exprBase
	Value float64
}

// BoolLiteral is a boolean literal.
type BoolLiteral struct {
	exprBase
	Value bool
}

// StringLiteral is a string literal; interning happens when the
// compiler adds it to the chunk's constants pool.
type StringLiteral struct {
	exprBase
	Value string
}

// NilLiteral is the nil/null literal.
type NilLiteral struct{ exprBase }

// Identifier references a local, upvalue, or global by name.
type Identifier struct {
	exprBase
	Name string
}

// Binary is a binary operator application. ConvertLeft/ConvertRight are
// pre-resolved by the (external) type-checker and tell the compiler
// which operand needs an implicit numeric conversion per the
// promotion table.
type Binary struct {
	exprBase
	Op           string
	Left, Right  Expression
	ConvertLeft  bool
	ConvertRight bool
}

// Unary is a prefix operator application (-, !, ~).
type Unary struct {
	exprBase
	Op      string
	Operand Expression
}

// Cast is an explicit type conversion; only transitions in the cast
// matrix are legal.
type Cast struct {
	exprBase
	Target  Type
	Operand Expression
}

// Ternary is `cond ? then : else`.
type Ternary struct {
	exprBase
	Cond, Then, Else Expression
}

// Call invokes Callee (an Identifier, a Field access for a method, or any
// expression yielding a function value) with Args.
type Call struct {
	exprBase
	Callee           Expression
	Args             []Expression
	StaticStructType string // non-empty for `Type.method(...)` static dispatch
	GenericArgs      []Type
}

// Index is `arr[idx]` / `m[key]`.
type Index struct {
	exprBase
	Collection Expression
	Key        Expression
}

// Field is `obj.name`.
type Field struct {
	exprBase
	Object Expression
	Name   string
}

// ArrayLit is `[e0, e1, ...]`.
type ArrayLit struct {
	exprBase
	Elements []Expression
}

// ArrayFill is `[value; size]`.
type ArrayFill struct {
	exprBase
	Value Expression
	Size  Expression
}

// StructLit is `Name{field: expr, ...}`; Order preserves source order so
// field-initializer side effects run left to right.
type StructLit struct {
	exprBase
	TypeName string
	Order    []string
	Fields   map[string]Expression
}

// Slice is `arr[low:high]`.
type Slice struct {
	exprBase
	Collection Expression
	Low, High  Expression // either may be nil (open-ended)
}
