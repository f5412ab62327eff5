// Package profiler tracks the runtime counters the tier-up controller
// consults to decide which loops are worth translating to native code:
// per-opcode instruction counts, per-loop back-edge hit counts, and
// function entry counts. Loop counters are keyed by a hash of
// (function index, loop index) and stored in a dolthub/swiss map, a
// hash-addressed table matching the open-addressing map mna-nenuphar
// wires in for its own interned-symbol tables.
package profiler

import (
	"encoding/json"
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// LoopKey identifies one loop within one function for hit counting.
type LoopKey struct {
	FunctionIndex int
	LoopIndex     int
}

func (k LoopKey) hash() uint64 {
	return uint64(k.FunctionIndex)<<32 | uint64(uint32(k.LoopIndex))
}

// HotPathSample is one entry of the tier-up controller's candidate list.
// TraceID correlates one export snapshot's sample with later tier-up
// log lines for the same (function, loop) pair across invalidation
// cycles.
type HotPathSample struct {
	FunctionIndex int    `json:"function_index"`
	LoopIndex     int    `json:"loop_index"`
	HitCount      uint64 `json:"hit_count"`
	TraceID       string `json:"trace_id"`
}

// Flags is a bitmask gating which counters are active, checked on the
// hot path so a disabled profiler costs a single branch.
type Flags uint8

const (
	FlagInstructionCounts Flags = 1 << iota
	FlagLoopHits
	FlagFunctionEntries
)

func (f Flags) isActive(bit Flags) bool { return f&bit != 0 }

// Profiler accumulates counters for one VM instance's lifetime.
type Profiler struct {
	flags Flags

	instructionCounts [256]uint64
	functionEntries   map[int]uint64
	loopHits          *swiss.Map[uint64, *loopCounter]
}

type loopCounter struct {
	key LoopKey
	hit uint64
}

func New(flags Flags) *Profiler {
	return &Profiler{
		flags:           flags,
		functionEntries: make(map[int]uint64),
		loopHits:        swiss.NewMap[uint64, *loopCounter](8),
	}
}

// RecordInstruction increments the count for one opcode byte.
func (p *Profiler) RecordInstruction(op byte) {
	if !p.flags.isActive(FlagInstructionCounts) {
		return
	}
	p.instructionCounts[op]++
}

// RecordFunctionEntry increments the call count for a function index.
func (p *Profiler) RecordFunctionEntry(functionIndex int) {
	if !p.flags.isActive(FlagFunctionEntries) {
		return
	}
	p.functionEntries[functionIndex]++
}

// RecordLoopBackEdge increments the back-edge hit count for a loop and
// returns the updated count.
func (p *Profiler) RecordLoopBackEdge(key LoopKey) uint64 {
	if !p.flags.isActive(FlagLoopHits) {
		return 0
	}
	h := key.hash()
	if counter, ok := p.loopHits.Get(h); ok {
		counter.hit++
		return counter.hit
	}
	p.loopHits.Put(h, &loopCounter{key: key, hit: 1})
	return 1
}

func (p *Profiler) LoopHitCount(key LoopKey) uint64 {
	if counter, ok := p.loopHits.Get(key.hash()); ok {
		return counter.hit
	}
	return 0
}

func (p *Profiler) InstructionCount(op byte) uint64 { return p.instructionCounts[op] }

func (p *Profiler) FunctionEntryCount(functionIndex int) uint64 {
	return p.functionEntries[functionIndex]
}

// HotPaths returns every tracked loop whose hit count is at least
// threshold, sorted by descending hit count (ties broken by function
// index then loop index for determinism).
func (p *Profiler) HotPaths(threshold uint64) []HotPathSample {
	var samples []HotPathSample
	p.loopHits.Iter(func(_ uint64, counter *loopCounter) (stop bool) {
		if counter.hit >= threshold {
			samples = append(samples, HotPathSample{
				FunctionIndex: counter.key.FunctionIndex,
				LoopIndex:     counter.key.LoopIndex,
				HitCount:      counter.hit,
				TraceID:       uuid.NewString(),
			})
		}
		return false
	})
	sortSamples(samples)
	return samples
}

// sortSamples orders by descending hit count, ties broken by function
// then loop index, using x/exp/slices so export order is deterministic
// regardless of the swiss map's internal iteration order.
func sortSamples(s []HotPathSample) {
	slices.SortFunc(s, func(a, b HotPathSample) bool {
		if a.HitCount != b.HitCount {
			return a.HitCount > b.HitCount
		}
		if a.FunctionIndex != b.FunctionIndex {
			return a.FunctionIndex < b.FunctionIndex
		}
		return a.LoopIndex < b.LoopIndex
	})
}

// String renders a compact summary: the number of functions and loops
// the profiler has recorded.
func (p *Profiler) String() string {
	return fmt.Sprintf("profiler{functions=%d loops=%d}", len(p.functionEntries), p.loopHits.Count())
}

// ReportLine renders one hot-path sample as an operator-facing summary
// line with a comma-grouped hit count (e.g. "12,300,000").
func (h HotPathSample) ReportLine() string {
	return fmt.Sprintf("fn#%d loop#%d: %s hits", h.FunctionIndex, h.LoopIndex, humanize.Comma(int64(h.HitCount)))
}

// Export is the profiling export snapshot: opcode names keyed by their
// human name rather than the bare byte, since the
// export is meant for operators reading it outside the process that
// produced it.
type Export struct {
	InstructionCounts map[string]uint64 `json:"instruction_counts"`
	LoopHits          []HotPathSample   `json:"loop_hits"`
	FunctionHits      map[int]uint64    `json:"function_hits"`
}

// Export builds one snapshot of every counter this profiler tracks,
// suitable for JSON serialization. Every hit count is included
// regardless of threshold; callers wanting the tier-up candidate list
// should use HotPaths instead.
func (p *Profiler) Export(opName func(byte) string) Export {
	counts := make(map[string]uint64)
	for op := 0; op < len(p.instructionCounts); op++ {
		if p.instructionCounts[op] == 0 {
			continue
		}
		counts[opName(byte(op))] = p.instructionCounts[op]
	}

	functionHits := make(map[int]uint64, len(p.functionEntries))
	for k, v := range p.functionEntries {
		functionHits[k] = v
	}

	return Export{
		InstructionCounts: counts,
		LoopHits:          p.HotPaths(0),
		FunctionHits:      functionHits,
	}
}

// ExportJSON renders Export as indented JSON with deterministic key
// ordering: map keys are sorted with x/exp/maps + x/exp/slices before
// encoding/json would otherwise emit them in its own (also sorted, for
// string keys) but this keeps the int-keyed function_hits map ordering
// explicit rather than relying on encoding/json's incidental behavior.
func (p *Profiler) ExportJSON(opName func(byte) string) ([]byte, error) {
	export := p.Export(opName)
	ordered := struct {
		InstructionCounts map[string]uint64         `json:"instruction_counts"`
		LoopHits          []HotPathSample            `json:"loop_hits"`
		FunctionHits      []functionHitEntry         `json:"function_hits"`
	}{
		InstructionCounts: export.InstructionCounts,
		LoopHits:          export.LoopHits,
	}

	keys := maps.Keys(export.FunctionHits)
	slices.Sort(keys)
	for _, k := range keys {
		ordered.FunctionHits = append(ordered.FunctionHits, functionHitEntry{FunctionIndex: k, Count: export.FunctionHits[k]})
	}

	return json.MarshalIndent(ordered, "", "  ")
}

type functionHitEntry struct {
	FunctionIndex int    `json:"function_index"`
	Count         uint64 `json:"count"`
}
