package compiler

import (
	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
	"github.com/jordyorel/orus-lang-sub003/internal/value"
)

var arithOps = map[string]map[value.Kind]chunk.OpCode{
	"+": {
		value.KindI32: chunk.OP_ADD_I32, value.KindI64: chunk.OP_ADD_I64,
		value.KindU32: chunk.OP_ADD_U32, value.KindU64: chunk.OP_ADD_U64,
		value.KindF64: chunk.OP_ADD_F64, value.KindString: chunk.OP_ADD_STRING,
	},
	"-": {
		value.KindI32: chunk.OP_SUB_I32, value.KindI64: chunk.OP_SUB_I64,
		value.KindU32: chunk.OP_SUB_U32, value.KindU64: chunk.OP_SUB_U64,
		value.KindF64: chunk.OP_SUB_F64,
	},
	"*": {
		value.KindI32: chunk.OP_MUL_I32, value.KindI64: chunk.OP_MUL_I64,
		value.KindU32: chunk.OP_MUL_U32, value.KindU64: chunk.OP_MUL_U64,
		value.KindF64: chunk.OP_MUL_F64,
	},
	"/": {
		value.KindI32: chunk.OP_DIV_I32, value.KindI64: chunk.OP_DIV_I64,
		value.KindU32: chunk.OP_DIV_U32, value.KindU64: chunk.OP_DIV_U64,
		value.KindF64: chunk.OP_DIV_F64,
	},
	"%": {
		value.KindI32: chunk.OP_MOD_I32, value.KindI64: chunk.OP_MOD_I64,
		value.KindU32: chunk.OP_MOD_U32, value.KindU64: chunk.OP_MOD_U64,
		value.KindF64: chunk.OP_MOD_F64,
	},
}

var negateOps = map[value.Kind]chunk.OpCode{
	value.KindI32: chunk.OP_NEGATE_I32, value.KindI64: chunk.OP_NEGATE_I64,
	value.KindU32: chunk.OP_NEGATE_U32, value.KindU64: chunk.OP_NEGATE_U64,
	value.KindF64: chunk.OP_NEGATE_F64,
}

var cmpOps = map[string]chunk.OpCode{
	"==": chunk.OP_CMP_EQUAL, "!=": chunk.OP_CMP_NOT_EQUAL,
	"<": chunk.OP_CMP_LESS, "<=": chunk.OP_CMP_LESS_EQUAL,
	">": chunk.OP_CMP_GREATER, ">=": chunk.OP_CMP_GREATER_EQUAL,
}

var bitOps = map[string]chunk.OpCode{
	"&": chunk.OP_BIT_AND, "|": chunk.OP_BIT_OR, "^": chunk.OP_BIT_XOR,
	"<<": chunk.OP_SHIFT_LEFT, ">>": chunk.OP_SHIFT_RIGHT,
}

func isComparison(op string) bool {
	_, ok := cmpOps[op]
	return ok
}

func isBitwise(op string) bool {
	_, ok := bitOps[op]
	return ok
}
