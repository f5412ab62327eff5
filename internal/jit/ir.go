// Package jit translates hot bytecode regions identified by the profiler
// into a small typed IR, caches the translated entries, and runs them
// through a pluggable backend. Translation is deliberately
// conservative: anything it cannot prove safe is rejected rather than
// mistranslated, and every rejection is recorded so the tier-up
// controller can blocklist the offending loop instead of retrying it
// forever.
package jit

import "github.com/jordyorel/orus-lang-sub003/internal/value"

// ValueKind is the JIT's own narrower value lattice: it tracks just
// enough to gate rollout stages without re-deriving the full
// value.Kind enum.
type ValueKind uint8

const (
	KindI32 ValueKind = iota
	KindWideInt          // i64, u32, u64
	KindFloat
	KindString
	KindOther // bool, nil, array, struct, function: never rolled out
)

func FromValueKind(k value.Kind) ValueKind {
	switch k {
	case value.KindI32:
		return KindI32
	case value.KindI64, value.KindU32, value.KindU64:
		return KindWideInt
	case value.KindF64:
		return KindFloat
	case value.KindString:
		return KindString
	default:
		return KindOther
	}
}

// IROp is one instruction in the translated trace.
type IROp uint8

const (
	IRLoadConst IROp = iota
	IRMove
	IRAdd
	IRSub
	IRMul
	IRDiv
	IRMod
	IRCompare
	IRJump
	IRJumpIfFalse
	IRSafepoint
	IRReturn
)

// IRInstr is one IR instruction: up to three register operands plus an
// immediate, meaning depends on Op. Kind records the operand value kind
// the instruction was translated under, so a rollout-stage check can be
// re-run against the instruction itself (rollout_mask(stage) must still
// admit 1<<instruction.Kind) rather than trusting that translate-time
// gating was exhaustive.
type IRInstr struct {
	Op         IROp
	Dst, A, B  byte
	Immediate  int64
	Kind       ValueKind
	SourceByte int // offset into the original bytecode, for diagnostics
}

// Program is a translated trace: straight-line IR with internal jumps,
// periodically interrupted by safepoints so the VM can reconcile with a
// concurrently invalidated cache entry or service a GC/signal request.
type Program struct {
	FunctionIndex int
	LoopIndex     int
	Instructions  []IRInstr
	RegisterCount int
}

// CheckRollout re-validates every kind-bearing instruction in p against
// stage, independent of whatever stage gated it at translate time. It
// exists so a cached Program can be re-checked after a rollout-stage
// change is discovered to have been applied out of order, rather than
// trusting translate-time gating alone.
func (p *Program) CheckRollout(stage RolloutStage) bool {
	for _, instr := range p.Instructions {
		switch instr.Op {
		case IRLoadConst, IRAdd, IRSub, IRMul, IRDiv, IRMod:
			if !stage.allows(instr.Kind) {
				return false
			}
		}
	}
	return true
}

// safepointInterval is how many translated instructions may run between
// SAFEPOINT checks.
const safepointInterval = 12

func needsSafepoint(translatedSinceLast int) bool {
	return translatedSinceLast >= safepointInterval
}
