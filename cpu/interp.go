package cpu

import (
	"github.com/newhook/beebgo/diag"
	"github.com/newhook/beebgo/wheel"
)

// Interpreter is the reference cycle-accurate engine of spec.md §4.2.1: a
// straight fetch-decode-execute loop with one case per addressing mode and
// one per opcode class, consuming the shared wheel countdown and servicing
// IRQ/NMI at instruction boundaries.
//
// Grounded on the teacher's cpu/cpu.go execute() switch, generalized to
// read/write through Bus instead of an embedded array, to decrement
// *wheel.Wheel instead of returning a bare cycle count for an external
// loop to sum, and extended with the 65C12 opcodes spec.md's "65C12
// variant" scope requires (STZ, BRA, PHX/PHY/PLX/PLY, TRB/TSB, BIT
// immediate/zpx/abx). JMP (abs,X) is not decoded, and JMP (indirect) keeps
// the NMOS page-wrap behaviour (see readIndirectVector).
type Interpreter struct {
	State *State
	Bus   Bus
	Wheel *wheel.Wheel

	// DebugHook, if set, is called with the PC of every retired
	// instruction before it executes — spec.md §4.5.7's per-instruction
	// debug callback, offered here to the interpreter too so a debugger
	// observes identical instruction boundaries regardless of engine.
	DebugHook func(pc uint16)
}

// NewInterpreter wires a fresh interpreter over the given architectural
// state, bus and timing wheel. The caller owns and shares all three across
// engines.
func NewInterpreter(state *State, bus Bus, w *wheel.Wheel) *Interpreter {
	return &Interpreter{State: state, Bus: bus, Wheel: w}
}

// Step fetches, decodes and executes exactly one instruction, advances the
// wheel by its cycle cost, and services whatever interrupt is pending at
// the resulting instruction boundary. It returns the number of CPU cycles
// the instruction consumed.
func (c *Interpreter) Step() uint8 {
	cycles := c.ExecuteOne()
	c.AdvanceAndService(cycles)
	return cycles
}

// ExecuteOne fetches, decodes and executes exactly one instruction without
// touching the wheel or polling interrupts, returning its cycle cost. The
// inturbo and JIT engines call this for opcodes they fall back to the
// reference decode for (k_opcode_interp in the original), then run
// AdvanceAndService themselves so all three engines apply the exact same
// wheel-advance and interrupt-polling epilogue regardless of which one
// decoded the instruction.
func (c *Interpreter) ExecuteOne() uint8 {
	if c.DebugHook != nil {
		c.DebugHook(c.State.PC)
	}
	opcode := c.fetch8()
	return c.execute(opcode)
}

// AdvanceAndService advances the wheel by cycles and then samples the IRQ
// and NMI lines, exactly as real 6502 hardware polls interrupts at every
// instruction boundary. A real 6502 doesn't gate that poll on whether a
// timer happened to underflow during this instruction: IRQ can also become
// newly pending or newly unmasked by a VIA register write (STA IER) or a
// flag change (CLI/SEI/PLP/RTI) that coincides with no timer event at all,
// and those still have to be serviced on the very next boundary.
func (c *Interpreter) AdvanceAndService(cycles uint8) {
	c.State.Cycles += uint64(cycles)
	newCountdown := c.Wheel.GetCountdown() - int64(cycles)
	c.Wheel.Advance(newCountdown)

	c.serviceInterrupts()
}

// serviceInterrupts checks NMI (edge-triggered, unconditional) then IRQ
// (level-triggered, masked by the polling-delayed I flag) and pushes the
// appropriate vector, per spec.md §4.2.1.
func (c *Interpreter) serviceInterrupts() {
	s := c.State
	if s.nmiPending {
		s.nmiPending = false
		c.push16(s.PC)
		c.push(s.PackFlags(false))
		s.SetInterruptDisable(true)
		lo := uint16(c.Bus.Read(0xFFFA))
		hi := uint16(c.Bus.Read(0xFFFB))
		s.PC = (hi << 8) | lo
		return
	}

	masked := s.pollMaskedForIRQ()
	if s.IRQLine() && !masked {
		c.push16(s.PC)
		c.push(s.PackFlags(false))
		s.SetInterruptDisable(true)
		lo := uint16(c.Bus.Read(0xFFFE))
		hi := uint16(c.Bus.Read(0xFFFF))
		s.PC = (hi << 8) | lo
	}
}

func boolCycles(crossed bool, base uint8) uint8 {
	if crossed {
		return base + 1
	}
	return base
}

// execute decodes and runs one opcode, returning its cycle cost (including
// any page-crossing penalty for read instructions and branch-taken /
// branch-page-crossing penalties).
func (c *Interpreter) execute(opcode uint8) uint8 {
	s := c.State
	switch opcode {

	// --- Loads ---
	case LDA_IMM:
		s.A = c.fetch8()
		s.updateZN(s.A)
		return 2
	case LDA_ZP:
		s.A = c.Bus.Read(c.addrZeroPage())
		s.updateZN(s.A)
		return 3
	case LDA_ZPX:
		s.A = c.Bus.Read(c.addrZeroPageX())
		s.updateZN(s.A)
		return 4
	case LDA_ABS:
		s.A = c.Bus.Read(c.addrAbsolute())
		s.updateZN(s.A)
		return 4
	case LDA_ABX:
		addr, crossed := c.addrAbsoluteX()
		s.A = c.Bus.Read(addr)
		s.updateZN(s.A)
		return boolCycles(crossed, 4)
	case LDA_ABY:
		addr, crossed := c.addrAbsoluteY()
		s.A = c.Bus.Read(addr)
		s.updateZN(s.A)
		return boolCycles(crossed, 4)
	case LDA_INX:
		s.A = c.Bus.Read(c.addrIndirectX())
		s.updateZN(s.A)
		return 6
	case LDA_INY:
		addr, crossed := c.addrIndirectY()
		s.A = c.Bus.Read(addr)
		s.updateZN(s.A)
		return boolCycles(crossed, 5)

	case LDX_IMM:
		s.X = c.fetch8()
		s.updateZN(s.X)
		return 2
	case LDX_ZP:
		s.X = c.Bus.Read(c.addrZeroPage())
		s.updateZN(s.X)
		return 3
	case LDX_ZPY:
		s.X = c.Bus.Read(c.addrZeroPageY())
		s.updateZN(s.X)
		return 4
	case LDX_ABS:
		s.X = c.Bus.Read(c.addrAbsolute())
		s.updateZN(s.X)
		return 4
	case LDX_ABY:
		addr, crossed := c.addrAbsoluteY()
		s.X = c.Bus.Read(addr)
		s.updateZN(s.X)
		return boolCycles(crossed, 4)

	case LDY_IMM:
		s.Y = c.fetch8()
		s.updateZN(s.Y)
		return 2
	case LDY_ZP:
		s.Y = c.Bus.Read(c.addrZeroPage())
		s.updateZN(s.Y)
		return 3
	case LDY_ZPX:
		s.Y = c.Bus.Read(c.addrZeroPageX())
		s.updateZN(s.Y)
		return 4
	case LDY_ABS:
		s.Y = c.Bus.Read(c.addrAbsolute())
		s.updateZN(s.Y)
		return 4
	case LDY_ABX:
		addr, crossed := c.addrAbsoluteX()
		s.Y = c.Bus.Read(addr)
		s.updateZN(s.Y)
		return boolCycles(crossed, 4)

	// --- Stores (always max cycles, no page-cross variability) ---
	case STA_ZP:
		c.Bus.Write(c.addrZeroPage(), s.A)
		return 3
	case STA_ZPX:
		c.Bus.Write(c.addrZeroPageX(), s.A)
		return 4
	case STA_ABS:
		c.Bus.Write(c.addrAbsolute(), s.A)
		return 4
	case STA_ABX:
		addr, _ := c.addrAbsoluteX()
		c.Bus.Write(addr, s.A)
		return 5
	case STA_ABY:
		addr, _ := c.addrAbsoluteY()
		c.Bus.Write(addr, s.A)
		return 5
	case STA_INX:
		c.Bus.Write(c.addrIndirectX(), s.A)
		return 6
	case STA_INY:
		addr, _ := c.addrIndirectY()
		c.Bus.Write(addr, s.A)
		return 6
	case STX_ZP:
		c.Bus.Write(c.addrZeroPage(), s.X)
		return 3
	case STX_ZPY:
		c.Bus.Write(c.addrZeroPageY(), s.X)
		return 4
	case STX_ABS:
		c.Bus.Write(c.addrAbsolute(), s.X)
		return 4
	case STY_ZP:
		c.Bus.Write(c.addrZeroPage(), s.Y)
		return 3
	case STY_ZPX:
		c.Bus.Write(c.addrZeroPageX(), s.Y)
		return 4
	case STY_ABS:
		c.Bus.Write(c.addrAbsolute(), s.Y)
		return 4

	case STZ_ZP:
		c.Bus.Write(c.addrZeroPage(), 0)
		return 3
	case STZ_ZPX:
		c.Bus.Write(c.addrZeroPageX(), 0)
		return 4
	case STZ_ABS:
		c.Bus.Write(c.addrAbsolute(), 0)
		return 4
	case STZ_ABX:
		addr, _ := c.addrAbsoluteX()
		c.Bus.Write(addr, 0)
		return 5

	// --- Register transfers ---
	case TAX:
		s.X = s.A
		s.updateZN(s.X)
		return 2
	case TAY:
		s.Y = s.A
		s.updateZN(s.Y)
		return 2
	case TXA:
		s.A = s.X
		s.updateZN(s.A)
		return 2
	case TYA:
		s.A = s.Y
		s.updateZN(s.A)
		return 2
	case TSX:
		s.X = s.S
		s.updateZN(s.X)
		return 2
	case TXS:
		s.S = s.X
		return 2

	// --- Stack ---
	case PHA:
		c.push(s.A)
		return 3
	case PHP:
		c.push(s.PackFlags(true))
		return 3
	case PLA:
		s.A = c.pull()
		s.updateZN(s.A)
		return 4
	case PLP:
		s.UnpackFlags(c.pull())
		return 4
	case PHX:
		c.push(s.X)
		return 3
	case PHY:
		c.push(s.Y)
		return 3
	case PLX:
		s.X = c.pull()
		s.updateZN(s.X)
		return 4
	case PLY:
		s.Y = c.pull()
		s.updateZN(s.Y)
		return 4

	// --- Logical ---
	case AND_IMM:
		s.A &= c.fetch8()
		s.updateZN(s.A)
		return 2
	case AND_ZP:
		s.A &= c.Bus.Read(c.addrZeroPage())
		s.updateZN(s.A)
		return 3
	case AND_ZPX:
		s.A &= c.Bus.Read(c.addrZeroPageX())
		s.updateZN(s.A)
		return 4
	case AND_ABS:
		s.A &= c.Bus.Read(c.addrAbsolute())
		s.updateZN(s.A)
		return 4
	case AND_ABX:
		addr, crossed := c.addrAbsoluteX()
		s.A &= c.Bus.Read(addr)
		s.updateZN(s.A)
		return boolCycles(crossed, 4)
	case AND_ABY:
		addr, crossed := c.addrAbsoluteY()
		s.A &= c.Bus.Read(addr)
		s.updateZN(s.A)
		return boolCycles(crossed, 4)
	case AND_INX:
		s.A &= c.Bus.Read(c.addrIndirectX())
		s.updateZN(s.A)
		return 6
	case AND_INY:
		addr, crossed := c.addrIndirectY()
		s.A &= c.Bus.Read(addr)
		s.updateZN(s.A)
		return boolCycles(crossed, 5)

	case EOR_IMM:
		s.A ^= c.fetch8()
		s.updateZN(s.A)
		return 2
	case EOR_ZP:
		s.A ^= c.Bus.Read(c.addrZeroPage())
		s.updateZN(s.A)
		return 3
	case EOR_ZPX:
		s.A ^= c.Bus.Read(c.addrZeroPageX())
		s.updateZN(s.A)
		return 4
	case EOR_ABS:
		s.A ^= c.Bus.Read(c.addrAbsolute())
		s.updateZN(s.A)
		return 4
	case EOR_ABX:
		addr, crossed := c.addrAbsoluteX()
		s.A ^= c.Bus.Read(addr)
		s.updateZN(s.A)
		return boolCycles(crossed, 4)
	case EOR_ABY:
		addr, crossed := c.addrAbsoluteY()
		s.A ^= c.Bus.Read(addr)
		s.updateZN(s.A)
		return boolCycles(crossed, 4)
	case EOR_INX:
		s.A ^= c.Bus.Read(c.addrIndirectX())
		s.updateZN(s.A)
		return 6
	case EOR_INY:
		addr, crossed := c.addrIndirectY()
		s.A ^= c.Bus.Read(addr)
		s.updateZN(s.A)
		return boolCycles(crossed, 5)

	case ORA_IMM:
		s.A |= c.fetch8()
		s.updateZN(s.A)
		return 2
	case ORA_ZP:
		s.A |= c.Bus.Read(c.addrZeroPage())
		s.updateZN(s.A)
		return 3
	case ORA_ZPX:
		s.A |= c.Bus.Read(c.addrZeroPageX())
		s.updateZN(s.A)
		return 4
	case ORA_ABS:
		s.A |= c.Bus.Read(c.addrAbsolute())
		s.updateZN(s.A)
		return 4
	case ORA_ABX:
		addr, crossed := c.addrAbsoluteX()
		s.A |= c.Bus.Read(addr)
		s.updateZN(s.A)
		return boolCycles(crossed, 4)
	case ORA_ABY:
		addr, crossed := c.addrAbsoluteY()
		s.A |= c.Bus.Read(addr)
		s.updateZN(s.A)
		return boolCycles(crossed, 4)
	case ORA_INX:
		s.A |= c.Bus.Read(c.addrIndirectX())
		s.updateZN(s.A)
		return 6
	case ORA_INY:
		addr, crossed := c.addrIndirectY()
		s.A |= c.Bus.Read(addr)
		s.updateZN(s.A)
		return boolCycles(crossed, 5)

	case BIT_ZP:
		c.bit(c.Bus.Read(c.addrZeroPage()))
		return 3
	case BIT_ABS:
		c.bit(c.Bus.Read(c.addrAbsolute()))
		return 4
	case BIT_IMM:
		v := c.fetch8()
		s.ZeroFlag = (s.A & v) == 0
		return 2
	case BIT_ZPX:
		c.bit(c.Bus.Read(c.addrZeroPageX()))
		return 4
	case BIT_ABX:
		addr, crossed := c.addrAbsoluteX()
		c.bit(c.Bus.Read(addr))
		return boolCycles(crossed, 4)

	case TRB_ZP:
		c.trb(c.addrZeroPage())
		return 5
	case TRB_ABS:
		c.trb(c.addrAbsolute())
		return 6
	case TSB_ZP:
		c.tsb(c.addrZeroPage())
		return 5
	case TSB_ABS:
		c.tsb(c.addrAbsolute())
		return 6

	// --- Arithmetic ---
	case ADC_IMM:
		s.adc(c.fetch8())
		return 2
	case ADC_ZP:
		s.adc(c.Bus.Read(c.addrZeroPage()))
		return 3
	case ADC_ZPX:
		s.adc(c.Bus.Read(c.addrZeroPageX()))
		return 4
	case ADC_ABS:
		s.adc(c.Bus.Read(c.addrAbsolute()))
		return 4
	case ADC_ABX:
		addr, crossed := c.addrAbsoluteX()
		s.adc(c.Bus.Read(addr))
		return boolCycles(crossed, 4)
	case ADC_ABY:
		addr, crossed := c.addrAbsoluteY()
		s.adc(c.Bus.Read(addr))
		return boolCycles(crossed, 4)
	case ADC_INX:
		s.adc(c.Bus.Read(c.addrIndirectX()))
		return 6
	case ADC_INY:
		addr, crossed := c.addrIndirectY()
		s.adc(c.Bus.Read(addr))
		return boolCycles(crossed, 5)

	case SBC_IMM:
		s.sbc(c.fetch8())
		return 2
	case SBC_ZP:
		s.sbc(c.Bus.Read(c.addrZeroPage()))
		return 3
	case SBC_ZPX:
		s.sbc(c.Bus.Read(c.addrZeroPageX()))
		return 4
	case SBC_ABS:
		s.sbc(c.Bus.Read(c.addrAbsolute()))
		return 4
	case SBC_ABX:
		addr, crossed := c.addrAbsoluteX()
		s.sbc(c.Bus.Read(addr))
		return boolCycles(crossed, 4)
	case SBC_ABY:
		addr, crossed := c.addrAbsoluteY()
		s.sbc(c.Bus.Read(addr))
		return boolCycles(crossed, 4)
	case SBC_INX:
		s.sbc(c.Bus.Read(c.addrIndirectX()))
		return 6
	case SBC_INY:
		addr, crossed := c.addrIndirectY()
		s.sbc(c.Bus.Read(addr))
		return boolCycles(crossed, 5)

	case CMP_IMM:
		s.compare(s.A, c.fetch8())
		return 2
	case CMP_ZP:
		s.compare(s.A, c.Bus.Read(c.addrZeroPage()))
		return 3
	case CMP_ZPX:
		s.compare(s.A, c.Bus.Read(c.addrZeroPageX()))
		return 4
	case CMP_ABS:
		s.compare(s.A, c.Bus.Read(c.addrAbsolute()))
		return 4
	case CMP_ABX:
		addr, crossed := c.addrAbsoluteX()
		s.compare(s.A, c.Bus.Read(addr))
		return boolCycles(crossed, 4)
	case CMP_ABY:
		addr, crossed := c.addrAbsoluteY()
		s.compare(s.A, c.Bus.Read(addr))
		return boolCycles(crossed, 4)
	case CMP_INX:
		s.compare(s.A, c.Bus.Read(c.addrIndirectX()))
		return 6
	case CMP_INY:
		addr, crossed := c.addrIndirectY()
		s.compare(s.A, c.Bus.Read(addr))
		return boolCycles(crossed, 5)

	case CPX_IMM:
		s.compare(s.X, c.fetch8())
		return 2
	case CPX_ZP:
		s.compare(s.X, c.Bus.Read(c.addrZeroPage()))
		return 3
	case CPX_ABS:
		s.compare(s.X, c.Bus.Read(c.addrAbsolute()))
		return 4

	case CPY_IMM:
		s.compare(s.Y, c.fetch8())
		return 2
	case CPY_ZP:
		s.compare(s.Y, c.Bus.Read(c.addrZeroPage()))
		return 3
	case CPY_ABS:
		s.compare(s.Y, c.Bus.Read(c.addrAbsolute()))
		return 4

	// --- Increments & decrements ---
	case INC_ZP:
		c.rmw(c.addrZeroPage(), func(v uint8) uint8 { r := v + 1; s.updateZN(r); return r })
		return 5
	case INC_ZPX:
		c.rmw(c.addrZeroPageX(), func(v uint8) uint8 { r := v + 1; s.updateZN(r); return r })
		return 6
	case INC_ABS:
		c.rmw(c.addrAbsolute(), func(v uint8) uint8 { r := v + 1; s.updateZN(r); return r })
		return 6
	case INC_ABX:
		addr, _ := c.addrAbsoluteX()
		c.rmw(addr, func(v uint8) uint8 { r := v + 1; s.updateZN(r); return r })
		return 7

	case DEC_ZP:
		c.rmw(c.addrZeroPage(), func(v uint8) uint8 { r := v - 1; s.updateZN(r); return r })
		return 5
	case DEC_ZPX:
		c.rmw(c.addrZeroPageX(), func(v uint8) uint8 { r := v - 1; s.updateZN(r); return r })
		return 6
	case DEC_ABS:
		c.rmw(c.addrAbsolute(), func(v uint8) uint8 { r := v - 1; s.updateZN(r); return r })
		return 6
	case DEC_ABX:
		addr, _ := c.addrAbsoluteX()
		c.rmw(addr, func(v uint8) uint8 { r := v - 1; s.updateZN(r); return r })
		return 7

	case INX:
		s.X++
		s.updateZN(s.X)
		return 2
	case INY:
		s.Y++
		s.updateZN(s.Y)
		return 2
	case DEX:
		s.X--
		s.updateZN(s.X)
		return 2
	case DEY:
		s.Y--
		s.updateZN(s.Y)
		return 2

	// --- Shifts ---
	case ASL_ACC:
		s.A = s.asl(s.A)
		return 2
	case ASL_ZP:
		c.rmw(c.addrZeroPage(), s.asl)
		return 5
	case ASL_ZPX:
		c.rmw(c.addrZeroPageX(), s.asl)
		return 6
	case ASL_ABS:
		c.rmw(c.addrAbsolute(), s.asl)
		return 6
	case ASL_ABX:
		addr, _ := c.addrAbsoluteX()
		c.rmw(addr, s.asl)
		return 7

	case LSR_ACC:
		s.A = s.lsr(s.A)
		return 2
	case LSR_ZP:
		c.rmw(c.addrZeroPage(), s.lsr)
		return 5
	case LSR_ZPX:
		c.rmw(c.addrZeroPageX(), s.lsr)
		return 6
	case LSR_ABS:
		c.rmw(c.addrAbsolute(), s.lsr)
		return 6
	case LSR_ABX:
		addr, _ := c.addrAbsoluteX()
		c.rmw(addr, s.lsr)
		return 7

	case ROL_ACC:
		s.A = s.rol(s.A)
		return 2
	case ROL_ZP:
		c.rmw(c.addrZeroPage(), s.rol)
		return 5
	case ROL_ZPX:
		c.rmw(c.addrZeroPageX(), s.rol)
		return 6
	case ROL_ABS:
		c.rmw(c.addrAbsolute(), s.rol)
		return 6
	case ROL_ABX:
		addr, _ := c.addrAbsoluteX()
		c.rmw(addr, s.rol)
		return 7

	case ROR_ACC:
		s.A = s.ror(s.A)
		return 2
	case ROR_ZP:
		c.rmw(c.addrZeroPage(), s.ror)
		return 5
	case ROR_ZPX:
		c.rmw(c.addrZeroPageX(), s.ror)
		return 6
	case ROR_ABS:
		c.rmw(c.addrAbsolute(), s.ror)
		return 6
	case ROR_ABX:
		addr, _ := c.addrAbsoluteX()
		c.rmw(addr, s.ror)
		return 7

	// --- Jumps & calls ---
	case JMP_ABS:
		s.PC = c.addrAbsolute()
		return 3
	case JMP_IND:
		ptr := c.fetch16()
		s.PC = c.readIndirectVector(ptr, false)
		return 5
	case JSR:
		target := c.fetch16()
		c.push16(s.PC - 1)
		s.PC = target
		return 6
	case RTS:
		s.PC = c.pull16() + 1
		return 6
	case RTI:
		s.UnpackFlags(c.pull())
		s.PC = c.pull16()
		return 6
	case BRK:
		c.fetch8() // BRK's operand byte is a padding byte, read and discarded
		c.push16(s.PC)
		c.push(s.PackFlags(true))
		s.SetInterruptDisable(true)
		lo := uint16(c.Bus.Read(0xFFFE))
		hi := uint16(c.Bus.Read(0xFFFF))
		s.PC = (hi << 8) | lo
		return 7

	// --- Branches ---
	case BCC:
		return c.branch(!s.CarryFlag)
	case BCS:
		return c.branch(s.CarryFlag)
	case BEQ:
		return c.branch(s.ZeroFlag)
	case BMI:
		return c.branch(s.NegativeFlag)
	case BNE:
		return c.branch(!s.ZeroFlag)
	case BPL:
		return c.branch(!s.NegativeFlag)
	case BVC:
		return c.branch(!s.OverflowFlag)
	case BVS:
		return c.branch(s.OverflowFlag)
	case BRA:
		return c.branch(true)

	// --- Flags ---
	case CLC:
		s.CarryFlag = false
		return 2
	case CLD:
		s.DecimalMode = false
		return 2
	case CLI:
		s.SetInterruptDisable(false)
		return 2
	case CLV:
		s.OverflowFlag = false
		return 2
	case SEC:
		s.CarryFlag = true
		return 2
	case SED:
		s.DecimalMode = true
		return 2
	case SEI:
		s.SetInterruptDisable(true)
		return 2

	case NOP:
		return 2

	default:
		// Undefined opcode: logged at `unimplemented` severity, per spec.md
		// §7's emulated machine error taxonomy, then treated as a NOP-like
		// fallback. The interpreter itself never aborts.
		diag.Unimplemented("cpu: undefined opcode 0x%02X at 0x%04X", opcode, c.State.PC-1)
		return 2
	}
}

func (c *Interpreter) bit(value uint8) {
	s := c.State
	s.ZeroFlag = (s.A & value) == 0
	s.NegativeFlag = value&0x80 != 0
	s.OverflowFlag = value&0x40 != 0
}

func (c *Interpreter) trb(addr uint16) {
	s := c.State
	v := c.Bus.Read(addr)
	s.ZeroFlag = (s.A & v) == 0
	c.Bus.Write(addr, v&^s.A)
}

func (c *Interpreter) tsb(addr uint16) {
	s := c.State
	v := c.Bus.Read(addr)
	s.ZeroFlag = (s.A & v) == 0
	c.Bus.Write(addr, v|s.A)
}

func (c *Interpreter) rmw(addr uint16, f func(uint8) uint8) {
	v := c.Bus.Read(addr)
	c.Bus.Write(addr, v) // the 6502 RMW bus cycle writes back the unmodified value first
	c.Bus.Write(addr, f(v))
}

// readIndirectVector reads a 16-bit pointer at ptr. When fix65C12 is false
// it reproduces the NMOS 6502's JMP (indirect) page-wrap bug (the high
// byte is fetched from ptr with only the low byte incremented, wrapping
// within the page); the 65C12 fixed this, but spec.md's Non-goals exclude
// undocumented-opcode emulation beyond the commonly documented ones, and
// this bug is load-bearing for enough original software that this module
// keeps it available behind fix65C12 for accuracy parity with the
// documented NMOS behavior used by the widest body of software.
func (c *Interpreter) readIndirectVector(ptr uint16, fix65C12 bool) uint16 {
	lo := c.Bus.Read(ptr)
	var hiAddr uint16
	if fix65C12 || (ptr&0xFF) != 0xFF {
		hiAddr = ptr + 1
	} else {
		hiAddr = ptr & 0xFF00
	}
	hi := c.Bus.Read(hiAddr)
	return (uint16(hi) << 8) | uint16(lo)
}

func (c *Interpreter) branch(condition bool) uint8 {
	offset := int8(c.fetch8())
	if !condition {
		return 2
	}
	oldPC := c.State.PC
	c.State.PC = uint16(int32(c.State.PC) + int32(offset))
	if (oldPC & 0xFF00) != (c.State.PC & 0xFF00) {
		return 4
	}
	return 3
}
