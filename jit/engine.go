package jit

import (
	"github.com/newhook/beebgo/cpu"
	"github.com/newhook/beebgo/wheel"
)

// maxRunLen caps how many instructions ahead Engine decodes in one go when
// it first visits an address — enough for the cross-instruction optimizer
// pass to have something to work with, without speculatively decoding
// arbitrarily far past a branch it may never reach.
const maxRunLen = 16

// Engine is the compiling execution engine of spec.md §4.2.2. On a cache
// miss it decodes and optimizes a short straight-line run starting at the
// current PC and caches a compiled closure for each instruction in it; on
// every Step it still executes exactly one instruction and applies the
// same wheel-advance/interrupt-polling epilogue the interpreter does, so
// interrupt timing and swapping this engine in for the interpreter are
// both externally invisible per spec.md §4.2's contract — only the
// compile-vs-interpret decision differs, never how often interrupts are
// polled.
type Engine struct {
	State *cpu.State
	Bus   cpu.Bus
	cache *Cache

	// interp backs the interrupt-polling epilogue (AdvanceAndService) and
	// the per-instruction interp-fallback path (ExecuteOne); both are
	// shared verbatim with the reference interpreter rather than
	// reimplemented here, so timing and interrupt semantics can't drift
	// between engines.
	interp *cpu.Interpreter

	// DebugHook, if set, is called with the PC of every retired
	// instruction, compiled or interpreter-fallback alike.
	DebugHook func(pc uint16)
}

// NewEngine wires a JIT engine over the given architectural state, bus and
// timing wheel.
func NewEngine(state *cpu.State, bus cpu.Bus, w *wheel.Wheel) *Engine {
	e := &Engine{State: state, Bus: bus, cache: NewCache()}
	e.interp = cpu.NewInterpreter(state, bus, w)
	e.interp.DebugHook = func(pc uint16) {
		if e.DebugHook != nil {
			e.DebugHook(pc)
		}
	}
	return e
}

// Step runs exactly one instruction — compiling and caching the
// straight-line run starting here first, if this address hasn't been
// visited since the last time it (or anything in its run) was invalidated
// — then applies the shared wheel/interrupt epilogue. It returns the
// number of CPU cycles consumed.
func (e *Engine) Step() uint8 {
	addr := e.State.PC

	co, ok := e.cache.Lookup(addr)
	if !ok {
		e.compileRun(addr)
		co, ok = e.cache.Lookup(addr)
		if !ok {
			panic("jit: compileRun did not cache its own starting address")
		}
	}

	if e.DebugHook != nil && !(len(co.op.Uops) == 1 && co.op.Uops[0].Kind == kOpInterp) {
		e.DebugHook(addr)
	}

	cycles := co.run(e.State, e.Bus, e.interp)
	e.interp.AdvanceAndService(cycles)
	return cycles
}

// InvalidateROMSwitch flushes the entire compiled-code cache. bbc.Machine
// calls this on every ROMSEL write: a sideways bank switch can change what
// every address in the paged window decodes to, so nothing compiled
// against the previous bank can be trusted.
func (e *Engine) InvalidateROMSwitch() {
	e.cache.InvalidateAll()
}

// compileRun decodes a straight-line run of instructions starting at
// start, runs the two-stage optimizer over the whole run, compiles each
// instruction to a closure, and stores the run in the cache.
func (e *Engine) compileRun(start uint16) {
	var decoded []*Opcode
	addr := start

	for len(decoded) < maxRunLen {
		op := Decode(addr, e.Bus)
		decoded = append(decoded, op)
		if op.EndsBlock {
			break
		}
		addr += uint16(op.LenBytes)
	}

	OptimizeBlock(decoded)

	compiled := make([]*compiledOp, len(decoded))
	for i, op := range decoded {
		compiled[i] = &compiledOp{op: op, run: CompileOp(op, e.cache.Invalidate)}
	}
	e.cache.StoreRun(compiled)
}
