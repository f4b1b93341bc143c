// Package inturbo implements the middle-tier execution engine of spec.md
// §4.2.2: a 256-entry dispatch table of short Go functions, one per
// opcode, indexed directly by the fetched opcode byte rather than
// compared against in a long switch.
//
// Grounded on _examples/original_source/inturbo.c's per-opcode template
// table (inturbo_fill_tables indexes a 256-entry array of emitted x64
// routines by opcode, with "preflight checks" sending tricky opcodes
// straight to the interpreter) and on cpu/interp.go's execute() switch,
// reorganized here into [256]opHandler so dispatch is a single array
// index instead of a chain of comparisons — Go's own switch lowers to a
// jump table under the right conditions, so the observable difference
// from the interpreter is architectural (table vs. switch, matching
// spec.md's description of inturbo as the engine "between" the
// interpreter and the JIT), not behavioral.
package inturbo

import "github.com/newhook/beebgo/cpu"

// opHandler executes one instruction already known to be the opcode its
// table slot is registered for; it reads any further operand bytes itself
// via bus and returns the cycle cost. PC is left pointing at the next
// instruction (or a branch/jump target).
type opHandler func(state *cpu.State, bus cpu.Bus, interp *cpu.Interpreter) uint8

var table [256]opHandler

func init() {
	for i := range table {
		table[i] = interpFallback
	}

	reg := func(opcode uint8, h opHandler) { table[opcode] = h }

	reg(cpu.LDA_IMM, load(regA, modeImm))
	reg(cpu.LDA_ZP, load(regA, modeZP))
	reg(cpu.LDA_ABS, load(regA, modeAbs))
	reg(cpu.LDX_IMM, load(regX, modeImm))
	reg(cpu.LDX_ZP, load(regX, modeZP))
	reg(cpu.LDX_ABS, load(regX, modeAbs))
	reg(cpu.LDY_IMM, load(regY, modeImm))
	reg(cpu.LDY_ZP, load(regY, modeZP))
	reg(cpu.LDY_ABS, load(regY, modeAbs))

	reg(cpu.STA_ZP, store(regA, modeZP))
	reg(cpu.STA_ABS, store(regA, modeAbs))
	reg(cpu.STX_ZP, store(regX, modeZP))
	reg(cpu.STX_ABS, store(regX, modeAbs))
	reg(cpu.STY_ZP, store(regY, modeZP))
	reg(cpu.STY_ABS, store(regY, modeAbs))

	reg(cpu.ADC_IMM, aluImm(func(s *cpu.State, v uint8) { s.ADC(v) }))
	reg(cpu.SBC_IMM, aluImm(func(s *cpu.State, v uint8) { s.SBC(v) }))
	reg(cpu.AND_IMM, aluImm(func(s *cpu.State, v uint8) { s.A &= v; s.UpdateZN(s.A) }))
	reg(cpu.ORA_IMM, aluImm(func(s *cpu.State, v uint8) { s.A |= v; s.UpdateZN(s.A) }))
	reg(cpu.EOR_IMM, aluImm(func(s *cpu.State, v uint8) { s.A ^= v; s.UpdateZN(s.A) }))

	reg(cpu.CMP_IMM, compareImm(regA))
	reg(cpu.CPX_IMM, compareImm(regX))
	reg(cpu.CPY_IMM, compareImm(regY))

	reg(cpu.INX, incReg(regX, +1))
	reg(cpu.INY, incReg(regY, +1))
	reg(cpu.DEX, incReg(regX, -1))
	reg(cpu.DEY, incReg(regY, -1))

	reg(cpu.BEQ, branch(func(s *cpu.State) bool { return s.ZeroFlag }))
	reg(cpu.BNE, branch(func(s *cpu.State) bool { return !s.ZeroFlag }))
	reg(cpu.BCC, branch(func(s *cpu.State) bool { return !s.CarryFlag }))
	reg(cpu.BCS, branch(func(s *cpu.State) bool { return s.CarryFlag }))
	reg(cpu.BMI, branch(func(s *cpu.State) bool { return s.NegativeFlag }))
	reg(cpu.BPL, branch(func(s *cpu.State) bool { return !s.NegativeFlag }))
	reg(cpu.BVC, branch(func(s *cpu.State) bool { return !s.OverflowFlag }))
	reg(cpu.BVS, branch(func(s *cpu.State) bool { return s.OverflowFlag }))

	reg(cpu.NOP, func(state *cpu.State, bus cpu.Bus, interp *cpu.Interpreter) uint8 {
		state.PC++
		return 2
	})
}

// interpFallback defers a whole instruction to the reference interpreter —
// this table's equivalent of inturbo.c's "preflight check sends this
// opcode straight to the interpreter" path for every opcode this package
// doesn't give its own template. ExecuteOne re-fetches the opcode byte
// itself; that's one redundant bus read compared to a hand-rolled
// machine-code template, a cost the original avoids and this Go port
// accepts for the clarity of reusing the interpreter outright.
func interpFallback(state *cpu.State, bus cpu.Bus, interp *cpu.Interpreter) uint8 {
	return interp.ExecuteOne()
}
