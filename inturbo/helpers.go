package inturbo

import "github.com/newhook/beebgo/cpu"

// regSel names which architectural register a template handler targets,
// letting one load/store/compare/incReg builder serve A, X and Y the way a
// single code-generated template in the original serves any register its
// opcode byte names.
type regSel int

const (
	regA regSel = iota
	regX
	regY
)

func getReg(s *cpu.State, r regSel) uint8 {
	switch r {
	case regA:
		return s.A
	case regX:
		return s.X
	default:
		return s.Y
	}
}

func setReg(s *cpu.State, r regSel, v uint8) {
	switch r {
	case regA:
		s.A = v
	case regX:
		s.X = v
	default:
		s.Y = v
	}
}

// addrMode names the addressing-mode computation a template performs
// before the operation itself, per spec.md §4.2.2's "addressing-mode
// computation into a scratch register" step. Only the modes this
// package's hand-picked opcode subset needs are represented; anything else
// bounces to the interpreter via interpFallback.
type addrMode int

const (
	modeImm addrMode = iota
	modeZP
	modeAbs
)

// effectiveAddr consumes the operand bytes following the opcode and
// returns the effective address for modeZP/modeAbs; it is not called for
// modeImm, whose operand is the data itself.
func effectiveAddr(state *cpu.State, bus cpu.Bus, mode addrMode) uint16 {
	switch mode {
	case modeZP:
		addr := uint16(bus.Read(state.PC))
		state.PC++
		return addr
	default: // modeAbs
		lo := uint16(bus.Read(state.PC))
		hi := uint16(bus.Read(state.PC + 1))
		state.PC += 2
		return lo | (hi << 8)
	}
}

func modeCycles(mode addrMode) uint8 {
	switch mode {
	case modeImm:
		return 2
	case modeZP:
		return 3
	default:
		return 4
	}
}

// load builds a template for LDA/LDX/LDY across the immediate/zero-page/
// absolute addressing modes this package specializes.
func load(r regSel, mode addrMode) opHandler {
	return func(state *cpu.State, bus cpu.Bus, interp *cpu.Interpreter) uint8 {
		state.PC++ // past opcode byte
		var v uint8
		if mode == modeImm {
			v = bus.Read(state.PC)
			state.PC++
		} else {
			v = bus.Read(effectiveAddr(state, bus, mode))
		}
		setReg(state, r, v)
		state.UpdateZN(v)
		return modeCycles(mode)
	}
}

// store builds a template for STA/STX/STY; modeImm is never passed (there
// is no "store immediate" addressing mode).
func store(r regSel, mode addrMode) opHandler {
	return func(state *cpu.State, bus cpu.Bus, interp *cpu.Interpreter) uint8 {
		state.PC++
		addr := effectiveAddr(state, bus, mode)
		bus.Write(addr, getReg(state, r))
		return modeCycles(mode)
	}
}

// aluImm builds a template for an immediate-mode ALU opcode (ADC/SBC/AND/
// ORA/EOR #imm), deferring the operation itself to fn so this package
// doesn't duplicate cpu.State's flag-setting logic.
func aluImm(fn func(s *cpu.State, v uint8)) opHandler {
	return func(state *cpu.State, bus cpu.Bus, interp *cpu.Interpreter) uint8 {
		state.PC++
		v := bus.Read(state.PC)
		state.PC++
		fn(state, v)
		return 2
	}
}

// compareImm builds a template for CMP/CPX/CPY #imm.
func compareImm(r regSel) opHandler {
	return func(state *cpu.State, bus cpu.Bus, interp *cpu.Interpreter) uint8 {
		state.PC++
		v := bus.Read(state.PC)
		state.PC++
		state.Compare(getReg(state, r), v)
		return 2
	}
}

// incReg builds a template for INX/INY/DEX/DEY.
func incReg(r regSel, delta int) opHandler {
	return func(state *cpu.State, bus cpu.Bus, interp *cpu.Interpreter) uint8 {
		state.PC++
		nv := uint8(int(getReg(state, r)) + delta)
		setReg(state, r, nv)
		state.UpdateZN(nv)
		return 2
	}
}

// branch builds a template for the eight relative-branch opcodes, with the
// standard 6502 cycle accounting: 2 cycles not taken, 3 taken within the
// same page, 4 taken crossing a page boundary — the "branch-taken /
// branch-crossing penalties" spec.md §4.5's JIT contract calls out
// explicitly, implemented identically here since all three engines must
// agree on cycle counts at every branch boundary (spec.md §8).
func branch(cond func(s *cpu.State) bool) opHandler {
	return func(state *cpu.State, bus cpu.Bus, interp *cpu.Interpreter) uint8 {
		state.PC++
		offset := int8(bus.Read(state.PC))
		state.PC++
		if !cond(state) {
			return 2
		}
		oldPC := state.PC
		newPC := uint16(int32(oldPC) + int32(offset))
		state.PC = newPC
		if oldPC&0xFF00 != newPC&0xFF00 {
			return 4
		}
		return 3
	}
}
