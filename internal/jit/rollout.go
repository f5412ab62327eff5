package jit

// RolloutStage gates which ValueKinds the translator is permitted to
// accept, widening monotonically. A deployment starts
// conservative and only advances once the narrower stage has proven
// stable, and never narrows back.
type RolloutStage uint8

const (
	StageI32Only RolloutStage = iota
	StageWideInt
	StageFloats
	StageStrings
)

// allows reports whether k is among the ValueKinds this stage allows,
// the union of every stage up to and including it.
func (s RolloutStage) allows(k ValueKind) bool {
	switch k {
	case KindI32:
		return true
	case KindWideInt:
		return s >= StageWideInt
	case KindFloat:
		return s >= StageFloats
	case KindString:
		return s >= StageStrings
	default:
		return false
	}
}

// Advance returns the next stage, or the same stage if already at the
// widest rollout. Rollout never narrows.
func (s RolloutStage) Advance() RolloutStage {
	if s == StageStrings {
		return s
	}
	return s + 1
}

func (s RolloutStage) String() string {
	switch s {
	case StageI32Only:
		return "i32-only"
	case StageWideInt:
		return "wide-int"
	case StageFloats:
		return "floats"
	case StageStrings:
		return "strings"
	default:
		return "unknown"
	}
}
