package jit

import (
	"fmt"

	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
)

// InterpBackend runs a translated Program by interpreting its IR
// directly, register-by-register. It exists as the always-available
// reference backend: correctness oracle for tests, and the fallback a
// deployment without a native-code backend can still tier up into.
type InterpBackend struct{}

func (InterpBackend) Name() string { return "interp" }

func (InterpBackend) Run(p *Program, registers []uint64) error {
	pc := 0
	for pc < len(p.Instructions) {
		instr := p.Instructions[pc]
		switch instr.Op {
		case IRLoadConst:
			registers[instr.Dst] = uint64(instr.Immediate)
			pc++
		case IRMove:
			registers[instr.Dst] = registers[instr.A]
			pc++
		case IRAdd:
			registers[instr.Dst] = registers[instr.A] + registers[instr.B]
			pc++
		case IRSub:
			registers[instr.Dst] = registers[instr.A] - registers[instr.B]
			pc++
		case IRMul:
			registers[instr.Dst] = registers[instr.A] * registers[instr.B]
			pc++
		case IRDiv:
			if registers[instr.B] == 0 {
				return fmt.Errorf("jit: division by zero at source byte %d", instr.SourceByte)
			}
			registers[instr.Dst] = registers[instr.A] / registers[instr.B]
			pc++
		case IRMod:
			if registers[instr.B] == 0 {
				return fmt.Errorf("jit: modulo by zero at source byte %d", instr.SourceByte)
			}
			registers[instr.Dst] = registers[instr.A] % registers[instr.B]
			pc++
		case IRCompare:
			registers[instr.Dst] = compareRegs(registers[instr.A], registers[instr.B], instr.Immediate)
			pc++
		case IRJump:
			pc += int(instr.Immediate)
		case IRJumpIfFalse:
			if registers[instr.A] == 0 {
				pc += int(instr.Immediate)
			} else {
				pc++
			}
		case IRSafepoint:
			pc++
		case IRReturn:
			return nil
		default:
			return fmt.Errorf("jit: unhandled IR op %d at source byte %d", instr.Op, instr.SourceByte)
		}
	}
	return nil
}

// compareRegs encodes the six relational results as 0/1, keyed by the
// original chunk.OpCode stashed in Immediate by the translator.
func compareRegs(a, b uint64, cmpOp int64) uint64 {
	var result bool
	switch chunk.OpCode(cmpOp) {
	case chunk.OP_CMP_EQUAL:
		result = a == b
	case chunk.OP_CMP_NOT_EQUAL:
		result = a != b
	case chunk.OP_CMP_LESS:
		result = a < b
	case chunk.OP_CMP_LESS_EQUAL:
		result = a <= b
	case chunk.OP_CMP_GREATER:
		result = a > b
	case chunk.OP_CMP_GREATER_EQUAL:
		result = a >= b
	}
	if result {
		return 1
	}
	return 0
}
