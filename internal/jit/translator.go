package jit

import (
	"math"

	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
	"github.com/jordyorel/orus-lang-sub003/internal/value"
)

// Status reports why a translation attempt did or didn't produce a
// usable Program.
type Status uint8

const (
	StatusOK Status = iota
	StatusInvalidInput
	StatusOutOfMemory
	StatusUnsupportedValueKind
	StatusUnsupportedConstantKind
	StatusUnhandledOpcode
	StatusUnsupportedLoopShape
	StatusRolloutDisabled
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidInput:
		return "invalid_input"
	case StatusOutOfMemory:
		return "out_of_memory"
	case StatusUnsupportedValueKind:
		return "unsupported_value_kind"
	case StatusUnsupportedConstantKind:
		return "unsupported_constant_kind"
	case StatusUnhandledOpcode:
		return "unhandled_opcode"
	case StatusUnsupportedLoopShape:
		return "unsupported_loop_shape"
	case StatusRolloutDisabled:
		return "rollout_disabled"
	default:
		return "unknown"
	}
}

// TranslationResult is the outcome of one TranslateLoop attempt.
// TraceID is left empty by TranslateLoop itself; the tier-up controller
// stamps it when filing a failed result into the failure history, so
// the id correlates one export snapshot with the attempt that produced
// it.
type TranslationResult struct {
	Status  Status
	Program *Program
	Detail  string
	TraceID string
}

// Translator lowers one bytecode region into IR under a fixed rollout
// stage, enabled/disabled by the surrounding JIT configuration.
type Translator struct {
	Enabled bool
	Stage   RolloutStage
}

func New(enabled bool, stage RolloutStage) *Translator {
	return &Translator{Enabled: enabled, Stage: stage}
}

// TranslateLoop walks c.Code[start:end], a single loop body located by
// the caller's back-edge detection, translating each instruction to IR.
// registerKinds gives the static value kind tracked for each register at
// loop entry (from the compiler's type information); translation fails
// closed the moment an instruction's kind isn't covered by the current
// rollout stage.
func (t *Translator) TranslateLoop(c *chunk.Chunk, functionIndex, loopIndex, start, end int, registerKinds map[byte]value.Kind) TranslationResult {
	if !t.Enabled {
		return TranslationResult{Status: StatusRolloutDisabled, Detail: "JIT disabled"}
	}
	if start < 0 || end > len(c.Code) || start >= end {
		return TranslationResult{Status: StatusInvalidInput, Detail: "empty or out-of-range region"}
	}

	prog := &Program{FunctionIndex: functionIndex, LoopIndex: loopIndex}
	sinceSafepoint := 0
	// offsetOfIndex maps each original bytecode offset that begins a
	// translated instruction to that instruction's index in
	// prog.Instructions, so forward jumps (stored as byte distances by
	// translateOne, matching the bytecode's own encoding) can be
	// resolved to IR-instruction-index deltas once every instruction in
	// the region has a known index.
	offsetOfIndex := make(map[int]int, (end-start)/2)

	offset := start
	for offset < end {
		op := chunk.OpCode(c.Code[offset])
		instr, width, status, detail := t.translateOne(c, op, offset, registerKinds)
		if status != StatusOK {
			return TranslationResult{Status: status, Detail: detail}
		}
		instr.SourceByte = offset
		offsetOfIndex[offset] = len(prog.Instructions)
		prog.Instructions = append(prog.Instructions, instr)
		offset += width
		sinceSafepoint++
		if needsSafepoint(sinceSafepoint) {
			prog.Instructions = append(prog.Instructions, IRInstr{Op: IRSafepoint, SourceByte: offset})
			sinceSafepoint = 0
		}
	}
	offsetOfIndex[end] = len(prog.Instructions)
	prog.Instructions = append(prog.Instructions, IRInstr{Op: IRReturn, SourceByte: end})

	if status, detail := resolveJumpTargets(prog, offsetOfIndex); status != StatusOK {
		return TranslationResult{Status: status, Detail: detail}
	}
	return TranslationResult{Status: StatusOK, Program: prog}
}

// resolveJumpTargets rewrites every IRJump/IRJumpIfFalse's Immediate,
// which translateOne populated with the original bytecode's byte
// distance (the unit the encoded jump operand carries), into an
// IR-instruction-index delta from that instruction's own index — the
// unit InterpBackend.Run actually advances pc by. A jump whose target
// byte offset doesn't land on a translated instruction boundary (e.g. a
// loop exit that jumps past the translated region into code genuinely
// outside it) fails the translation rather than guessing.
func resolveJumpTargets(prog *Program, offsetOfIndex map[int]int) (Status, string) {
	for i := range prog.Instructions {
		instr := &prog.Instructions[i]
		var width int64
		switch instr.Op {
		case IRJump:
			width = 3
		case IRJumpIfFalse:
			width = 4
		default:
			continue
		}
		targetOffset := instr.SourceByte + int(width) + int(instr.Immediate)
		targetIndex, ok := offsetOfIndex[targetOffset]
		if !ok {
			return StatusUnsupportedLoopShape, "jump target outside translated region"
		}
		instr.Immediate = int64(targetIndex - i)
	}
	return StatusOK, ""
}

// translateOne handles one bytecode instruction by opcode category,
// returning the IR it lowers to and how many bytes it consumed.
func (t *Translator) translateOne(c *chunk.Chunk, op chunk.OpCode, offset int, regKinds map[byte]value.Kind) (IRInstr, int, Status, string) {
	switch op {
	case chunk.OP_LOAD_CONST:
		dst := c.Code[offset+1]
		idx := uint16(c.Code[offset+2])<<8 | uint16(c.Code[offset+3])
		if int(idx) >= len(c.Constants) {
			return IRInstr{}, 0, StatusInvalidInput, "constant index out of range"
		}
		constKind := c.Constants[idx].Kind
		irKind := FromValueKind(constKind)
		if !t.Stage.allows(irKind) {
			return IRInstr{}, 0, StatusUnsupportedConstantKind, "constant kind not yet rolled out"
		}
		imm := c.Constants[idx].AsI64()
		if constKind == value.KindF64 {
			imm = int64(math.Float64bits(c.Constants[idx].AsF64()))
		}
		return IRInstr{Op: IRLoadConst, Dst: dst, Immediate: imm, Kind: irKind}, 4, StatusOK, ""

	case chunk.OP_MOVE:
		dst, src := c.Code[offset+1], c.Code[offset+2]
		return IRInstr{Op: IRMove, Dst: dst, A: src}, 3, StatusOK, ""

	case chunk.OP_ADD_I32, chunk.OP_SUB_I32, chunk.OP_MUL_I32, chunk.OP_DIV_I32, chunk.OP_MOD_I32:
		return t.translateArith(c, op, offset, KindI32, regKinds)
	case chunk.OP_ADD_I64, chunk.OP_SUB_I64, chunk.OP_MUL_I64, chunk.OP_DIV_I64, chunk.OP_MOD_I64,
		chunk.OP_ADD_U32, chunk.OP_SUB_U32, chunk.OP_MUL_U32, chunk.OP_DIV_U32, chunk.OP_MOD_U32,
		chunk.OP_ADD_U64, chunk.OP_SUB_U64, chunk.OP_MUL_U64, chunk.OP_DIV_U64, chunk.OP_MOD_U64:
		return t.translateArith(c, op, offset, KindWideInt, regKinds)
	case chunk.OP_ADD_F64, chunk.OP_SUB_F64, chunk.OP_MUL_F64, chunk.OP_DIV_F64, chunk.OP_MOD_F64:
		return t.translateArith(c, op, offset, KindFloat, regKinds)
	case chunk.OP_ADD_STRING:
		return t.translateArith(c, op, offset, KindString, regKinds)

	case chunk.OP_CMP_EQUAL, chunk.OP_CMP_NOT_EQUAL, chunk.OP_CMP_LESS,
		chunk.OP_CMP_LESS_EQUAL, chunk.OP_CMP_GREATER, chunk.OP_CMP_GREATER_EQUAL:
		dst, a, b := c.Code[offset+1], c.Code[offset+2], c.Code[offset+3]
		return IRInstr{Op: IRCompare, Dst: dst, A: a, B: b, Immediate: int64(op)}, 4, StatusOK, ""

	case chunk.OP_JUMP_IF_FALSE:
		cond := c.Code[offset+1]
		dist := int64(uint16(c.Code[offset+2])<<8 | uint16(c.Code[offset+3]))
		return IRInstr{Op: IRJumpIfFalse, A: cond, Immediate: dist}, 4, StatusOK, ""
	case chunk.OP_JUMP:
		dist := int64(uint16(c.Code[offset+1])<<8 | uint16(c.Code[offset+2]))
		return IRInstr{Op: IRJump, Immediate: dist}, 3, StatusOK, ""
	case chunk.OP_LOOP, chunk.OP_LOOP_SHORT:
		return IRInstr{}, 0, StatusUnsupportedLoopShape, "nested back-edge inside a translated region"

	default:
		return IRInstr{}, 0, StatusUnhandledOpcode, op.String()
	}
}

func (t *Translator) translateArith(c *chunk.Chunk, op chunk.OpCode, offset int, kind ValueKind, regKinds map[byte]value.Kind) (IRInstr, int, Status, string) {
	if !t.Stage.allows(kind) {
		return IRInstr{}, 0, StatusUnsupportedValueKind, "operand kind not yet rolled out: " + kind.string()
	}
	dst, a, b := c.Code[offset+1], c.Code[offset+2], c.Code[offset+3]
	irOp := arithIROp(op)
	return IRInstr{Op: irOp, Dst: dst, A: a, B: b, Kind: kind}, 4, StatusOK, ""
}

func arithIROp(op chunk.OpCode) IROp {
	switch op {
	case chunk.OP_ADD_I32, chunk.OP_ADD_I64, chunk.OP_ADD_U32, chunk.OP_ADD_U64, chunk.OP_ADD_F64, chunk.OP_ADD_STRING:
		return IRAdd
	case chunk.OP_SUB_I32, chunk.OP_SUB_I64, chunk.OP_SUB_U32, chunk.OP_SUB_U64, chunk.OP_SUB_F64:
		return IRSub
	case chunk.OP_MUL_I32, chunk.OP_MUL_I64, chunk.OP_MUL_U32, chunk.OP_MUL_U64, chunk.OP_MUL_F64:
		return IRMul
	case chunk.OP_DIV_I32, chunk.OP_DIV_I64, chunk.OP_DIV_U32, chunk.OP_DIV_U64, chunk.OP_DIV_F64:
		return IRDiv
	default:
		return IRMod
	}
}

func (k ValueKind) string() string {
	switch k {
	case KindI32:
		return "i32"
	case KindWideInt:
		return "wide-int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "other"
	}
}
