package jit

import (
	"github.com/google/uuid"
	"github.com/jordyorel/orus-lang-sub003/internal/chunk"
	"github.com/jordyorel/orus-lang-sub003/internal/value"
)

// Backend executes a translated Program. A reference interpreting
// backend lives in backend_interp.go; a real deployment would swap in
// one that emits and runs native code, selected at startup.
type Backend interface {
	Name() string
	Run(p *Program, registers []uint64) error
}

// Decision is the outcome of one QueueTierUp call.
type Decision uint8

const (
	DecisionSkip Decision = iota
	DecisionCacheHit
	DecisionTranslate
)

func (d Decision) String() string {
	switch d {
	case DecisionSkip:
		return "skip"
	case DecisionCacheHit:
		return "cache_hit"
	case DecisionTranslate:
		return "translate"
	default:
		return "unknown"
	}
}

// Controller runs the tier-up decision the interpreter consults on
// every hot loop back-edge: gate on JIT availability, reject
// already-blocklisted loops, validate the addressed function, then
// either reuse a cached Program or attempt a fresh translation.
//
// The five counters mirror the ones an operator-facing export would
// read off a live VM: CacheHits/CacheMisses track step 5 of the
// tier-up gate, InvocationCount counts every Program handed back to
// the caller for the backend to enter, and CompilationCount/
// TranslationSuccessCount split "attempted" from "succeeded" so a
// rollout-rejected or otherwise-failed translation still shows up as
// an attempt without inflating the success count.
type Controller struct {
	Enabled    bool
	Backend    Backend
	Cache      *EntryCache
	Translator *Translator
	Failures   *failureHistory

	CacheHits               uint64
	CacheMisses             uint64
	InvocationCount         uint64
	CompilationCount        uint64
	TranslationSuccessCount uint64
}

func NewController(enabled bool, backend Backend, translator *Translator, failureHistorySize int) *Controller {
	return &Controller{
		Enabled:    enabled,
		Backend:    backend,
		Cache:      NewEntryCache(),
		Translator: translator,
		Failures:   newFailureHistory(failureHistorySize),
	}
}

// QueueTierUp implements the five-step gate:
//  1. JIT enabled and a backend is wired in
//  2. the loop index is within the function's tracked loop bounds
//  3. the (function, loop) pair is not already blocklisted
//  4. the function index addresses a real function chunk (functionIndex
//     -1 means the top-level script chunk, main)
//  5. a cache lookup either hits (reuse) or misses (translate)
func (c *Controller) QueueTierUp(functionIndex, loopIndex int, functions []*chunk.Chunk, main *chunk.Chunk, loopBounds int, start, end int, registerKinds map[byte]value.Kind) (Decision, *Program) {
	if !c.Enabled || c.Backend == nil {
		return DecisionSkip, nil
	}
	if loopIndex < 0 || loopIndex >= loopBounds {
		return DecisionSkip, nil
	}
	key := CacheKey{FunctionIndex: functionIndex, LoopIndex: loopIndex}
	if c.Cache.IsBlocklisted(key) {
		return DecisionSkip, nil
	}
	target := main
	if functionIndex >= 0 {
		if functionIndex >= len(functions) {
			return DecisionSkip, nil
		}
		target = functions[functionIndex]
	}
	if program, ok := c.Cache.Lookup(key); ok {
		c.CacheHits++
		c.InvocationCount++
		return DecisionCacheHit, program
	}
	c.CacheMisses++

	c.CompilationCount++
	result := c.Translator.TranslateLoop(target, functionIndex, loopIndex, start, end, registerKinds)
	if result.Status != StatusOK {
		result.TraceID = uuid.NewString()
		c.Failures.record(key, result)
		c.Cache.BlocklistWithFallback(key, minimalReturnProgram(functionIndex, loopIndex))
		return DecisionSkip, nil
	}
	c.TranslationSuccessCount++
	c.Cache.Store(key, result.Program)
	c.InvocationCount++
	return DecisionTranslate, result.Program
}

// minimalReturnProgram is the one-instruction RETURN IR substituted for
// a loop whose translation failed, so the entry cache still records
// forward progress for that (function, loop) pair instead of leaving
// no trace of the attempt at all.
func minimalReturnProgram(functionIndex, loopIndex int) *Program {
	return &Program{
		FunctionIndex: functionIndex,
		LoopIndex:     loopIndex,
		Instructions:  []IRInstr{{Op: IRReturn}},
	}
}
