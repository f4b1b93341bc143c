package inturbo

import (
	"github.com/newhook/beebgo/cpu"
	"github.com/newhook/beebgo/wheel"
)

// Engine is the middle-tier execution engine of spec.md §4.2.2: dispatch
// through the 256-entry opHandler table built in init(), falling back to
// the reference interpreter for every opcode that table leaves at
// interpFallback, then applying the same wheel-advance/interrupt-polling
// epilogue the interpreter and JIT engines both use so engine swaps stay
// externally invisible per spec.md §4.2's contract.
type Engine struct {
	State *cpu.State
	Bus   cpu.Bus
	interp *cpu.Interpreter

	// DebugHook, if set, is called with the PC of every retired
	// instruction, matching the interpreter and JIT engines' hook.
	DebugHook func(pc uint16)
}

// NewEngine wires an inturbo engine over the given architectural state,
// bus and timing wheel.
func NewEngine(state *cpu.State, bus cpu.Bus, w *wheel.Wheel) *Engine {
	e := &Engine{State: state, Bus: bus}
	e.interp = cpu.NewInterpreter(state, bus, w)
	return e
}

// Step dispatches exactly one instruction through the opcode table and
// runs the shared wheel/interrupt epilogue. It returns the number of CPU
// cycles consumed.
func (e *Engine) Step() uint8 {
	if e.DebugHook != nil {
		e.DebugHook(e.State.PC)
	}
	opcode := e.Bus.Read(e.State.PC)
	cycles := table[opcode](e.State, e.Bus, e.interp)
	e.interp.AdvanceAndService(cycles)
	return cycles
}
