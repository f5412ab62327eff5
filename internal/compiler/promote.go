package compiler

import "github.com/jordyorel/orus-lang-sub003/internal/value"

// promote resolves the target kind of a binary numeric/string operation
// per this promotion table:
//
//	i32 ⊕ i64 -> i64
//	u32 ⊕ i32 -> i32
//	any ⊕ f64 -> f64
//	string + any -> string
//
// and reports which operand (if either) needs an implicit conversion to
// reach that target kind. The AST's Binary.ConvertLeft/ConvertRight flags
// are expected to already agree with this table; promote is also the
// single source of truth the compiler consults when those flags are
// absent (e.g. in hand-built test fixtures).
func promote(op string, left, right value.Kind) (target value.Kind, convLeft, convRight bool) {
	if op == "+" && (left == value.KindString || right == value.KindString) {
		return value.KindString, left != value.KindString, right != value.KindString
	}
	if left == right {
		return left, false, false
	}
	if left == value.KindF64 || right == value.KindF64 {
		return value.KindF64, left != value.KindF64, right != value.KindF64
	}
	if left == value.KindI64 || right == value.KindI64 {
		return value.KindI64, left != value.KindI64, right != value.KindI64
	}
	if left == value.KindU64 || right == value.KindU64 {
		return value.KindU64, left != value.KindU64, right != value.KindU64
	}
	// u32 <-> i32 promotes to i32, not i64 or u64.
	if (left == value.KindU32 && right == value.KindI32) || (left == value.KindI32 && right == value.KindU32) {
		return value.KindI32, left != value.KindI32, right != value.KindI32
	}
	return left, false, false
}

// castAllowed reports whether an explicit cast from -> to is legal:
// every scalar kind may cast to every other scalar kind, and casting to
// string is universal (scalars, arrays, and structs all render), but
// casting away from string (to anything but string itself) is rejected.
func castAllowed(from, to value.Kind) bool {
	if from == to {
		return true
	}
	if to == value.KindString {
		return true
	}
	if from == value.KindString {
		return false
	}
	if from == value.KindArray || from == value.KindStruct || from == value.KindFunction {
		return false
	}
	if to == value.KindArray || to == value.KindStruct || to == value.KindFunction {
		return false
	}
	return true
}

// narrowLiteral returns the kind an integer literal should compile with
// when its value is representable in a narrower declared kind; callers
// pass the declared/target kind from context (e.g. a VarDecl's
// annotation), or value.KindI64 (the literal default) when no target is
// known.
func narrowLiteral(v int64, target value.Kind) value.Kind {
	switch target {
	case value.KindI32:
		if v >= -(1<<31) && v <= (1<<31-1) {
			return value.KindI32
		}
	case value.KindU32:
		if v >= 0 && v <= (1<<32-1) {
			return value.KindU32
		}
	case value.KindU64:
		if v >= 0 {
			return value.KindU64
		}
	case value.KindF64:
		return value.KindF64
	}
	// Compile-time i32 overflow promotes to i64 rather than
	// silently wrapping.
	if v < -(1<<31) || v > (1<<31-1) {
		return value.KindI64
	}
	return value.KindI32
}
