// Package vmstate holds the VM's explicit runtime state as a single
// value: global bindings, the function table the compiler addresses by
// index, the profiler, and the JIT tier-up machinery (entry cache plus
// rollout stage). Not safe for concurrent use from multiple
// goroutines — the VM is single-threaded by design, so State carries no
// internal mutex; a mutex here would misrepresent the single-threaded
// concurrency model this package implements.
package vmstate

import (
	"log"

	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
	"github.com/jordyorel/orus-lang-sub003/internal/jit"
	"github.com/jordyorel/orus-lang-sub003/internal/profiler"
	"github.com/jordyorel/orus-lang-sub003/internal/value"
	"github.com/jordyorel/orus-lang-sub003/internal/vmconfig"
)

// Function pairs one compiled chunk with the metadata the VM needs to
// call it, addressed by function-table index everywhere else in the
// system (compiler closures, OP_CLOSURE, OP_CALL).
type Function struct {
	Name      string
	Chunk     *chunk.Chunk
	Arity     int
	UpvalueCt int
}

// State is the VM's complete mutable state value: one struct an
// embedder constructs once per script run and threads through the
// interpreter loop, the profiler, and the JIT explicitly rather than
// through package-level globals.
type State struct {
	Main      *chunk.Chunk
	Functions []Function
	Globals   map[string]value.Value

	Profiler   *profiler.Profiler
	JIT        *jit.Controller
	Rollout    jit.RolloutStage
	PendingInv bool

	Logger *log.Logger
	Config vmconfig.Config
}

// New constructs a State from a compiled program and a resolved
// config, wiring the profiler and JIT controller according to it.
func New(main *chunk.Chunk, functions []Function, cfg vmconfig.Config, logger *log.Logger) *State {
	if logger == nil {
		logger = log.Default()
	}
	flags := profiler.FlagLoopHits | profiler.FlagFunctionEntries | profiler.FlagInstructionCounts
	stage := cfg.Stage()

	return &State{
		Main:      main,
		Functions: functions,
		Globals:   make(map[string]value.Value),
		Profiler:  profiler.New(flags),
		JIT: jit.NewController(
			cfg.JITEnabled,
			jit.InterpBackend{},
			jit.New(cfg.JITEnabled, stage),
			cfg.FailureHistorySize,
		),
		Rollout: stage,
		Logger:  logger,
		Config:  cfg,
	}
}

// DefineGlobal binds name in the global table, overwriting any prior
// binding.
func (s *State) DefineGlobal(name string, v value.Value) {
	s.Globals[name] = v
}

// ResolveGlobal looks up a global binding.
func (s *State) ResolveGlobal(name string) (value.Value, bool) {
	v, ok := s.Globals[name]
	return v, ok
}

// FunctionChunk returns the chunk for a function-table index, or the
// top-level script chunk when index is -1 (the convention the JIT
// controller's QueueTierUp uses).
func (s *State) FunctionChunk(index int) *chunk.Chunk {
	if index < 0 || index >= len(s.Functions) {
		return s.Main
	}
	return s.Functions[index].Chunk
}

// AdvanceRollout widens the JIT's rollout stage by one step and
// invalidates every cached translation, since entries translated
// under the narrower stage may now be candidates for richer IR the
// translator previously had to reject.
func (s *State) AdvanceRollout() {
	next := s.Rollout.Advance()
	if next == s.Rollout {
		return
	}
	s.Rollout = next
	s.JIT.Translator.Stage = next
	s.JIT.Cache.InvalidateAll()
	s.PendingInv = true
	s.Logger.Printf("jit: rollout stage advanced to %s", next)
}

// ReconcilePendingInvalidation sweeps the JIT cache of entries flagged
// by AdvanceRollout, called from the interpreter's safepoint handling
// once it is safe to drop mid-flight translations.
func (s *State) ReconcilePendingInvalidation() int {
	if !s.PendingInv {
		return 0
	}
	dropped := s.JIT.Cache.Sweep()
	s.PendingInv = false
	return dropped
}
