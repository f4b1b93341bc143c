// Package cpu implements the 6502/65C12 architectural state (spec.md §3)
// shared by all three execution engines, and the reference interpreter
// engine (spec.md §4.2.1).
//
// Grounded on the teacher's cpu/cpu.go (opcode constants, addressing-mode
// helpers, flag-update helpers), generalized from an embedded
// [65536]uint8 array to the Bus interface so accesses can dispatch to
// memory.Map's MMIO windows, and from a single packed status byte to the
// individual flag booleans spec.md §3 calls for ("individual booleans for
// C,Z,I,D,V,N").
package cpu

// State is the 6502 architectural state: registers, flags, and the two
// interrupt lines. It carries no engine-specific fields — interpreter,
// inturbo and JIT all read and write the same State so that, per spec.md
// §4.2's contract, swapping engines mid-run is externally invisible.
type State struct {
	A, X, Y uint8
	S       uint8
	PC      uint16

	CarryFlag        bool
	ZeroFlag         bool
	InterruptDisable bool
	DecimalMode      bool
	OverflowFlag     bool
	NegativeFlag     bool

	// irqSources is a bitmask of asserted interrupt sources (spec.md §6
	// lists system VIA, user VIA, ACIA/serial ULA as the closed set of
	// callees; each gets one bit here). The CPU's single IRQ input is the
	// logical OR of this mask, giving the "two 2-level IRQ lines
	// (per-source)" of spec.md §3: each source independently asserts and
	// deasserts without clobbering another source's level.
	irqSources uint8

	// nmiPending is the edge-triggered NMI latch (spec.md §3: "one NMI
	// edge latch"). Set by PulseNMI, consumed and cleared the next time an
	// interrupt check observes it.
	nmiPending bool

	// iPollDelay implements the one-instruction interrupt-polling latency
	// after CLI/SEI/PLP/RTI change the I flag (spec.md §8 concrete
	// scenario 4: "exactly one instruction executes after CLI before the
	// IRQ vector is taken"). The 6502 samples I for interrupt-polling
	// purposes at the start of an instruction's last cycle, one step
	// behind the flag's own value when it was just changed.
	iPollDelay uint8
	iPoll      bool

	// Cycles is the running total of CPU cycles retired, advanced once per
	// AdvanceAndService call. It backs the "cycles" field of spec.md §6's
	// persisted register-file snapshot and has no effect on execution.
	Cycles uint64
}

// IRQ source bits. Peripherals identify themselves by one of these when
// asserting/deasserting the shared IRQ line.
const (
	IRQSourceSystemVIA uint8 = 1 << iota
	IRQSourceUserVIA
	IRQSourceACIA
)

// NewState returns a State at its post-reset values: S=0xFF, I=1, all other
// flags and registers zero, per the 6502 reset contract.
func NewState() *State {
	s := &State{
		S:                0xFF,
		InterruptDisable: true,
	}
	s.iPoll = true
	return s
}

// Reset reloads PC from the reset vector (0xFFFC/0xFFFD) and restores the
// post-reset register/flag values, without touching memory contents.
func (s *State) Reset(bus Bus) {
	lo := uint16(bus.Read(0xFFFC))
	hi := uint16(bus.Read(0xFFFD))
	s.PC = (hi << 8) | lo
	s.S = 0xFF
	s.A, s.X, s.Y = 0, 0, 0
	s.CarryFlag = false
	s.ZeroFlag = false
	s.InterruptDisable = true
	s.DecimalMode = false
	s.OverflowFlag = false
	s.NegativeFlag = false
	s.iPoll = true
	s.iPollDelay = 0
	s.irqSources = 0
	s.nmiPending = false
}

// SetIRQ asserts one or more IRQ sources on the shared line.
func (s *State) SetIRQ(source uint8) { s.irqSources |= source }

// ClearIRQ deasserts one or more IRQ sources.
func (s *State) ClearIRQ(source uint8) { s.irqSources &^= source }

// IRQLine reports the logical OR of every asserted IRQ source.
func (s *State) IRQLine() bool { return s.irqSources != 0 }

// PulseNMI latches an NMI edge. NMI services on the rising edge regardless
// of the I flag, per spec.md §4.2.1.
func (s *State) PulseNMI() { s.nmiPending = true }

// IRQSources returns the raw per-source IRQ mask, for snapshot
// serialization.
func (s *State) IRQSources() uint8 { return s.irqSources }

// SetIRQSources overwrites the raw per-source IRQ mask, for snapshot
// restoration.
func (s *State) SetIRQSources(v uint8) { s.irqSources = v }

// NMIPending reports the raw NMI edge latch, for snapshot serialization.
func (s *State) NMIPending() bool { return s.nmiPending }

// SetNMIPending overwrites the raw NMI edge latch, for snapshot
// restoration.
func (s *State) SetNMIPending(v bool) { s.nmiPending = v }

// PackFlags synthesizes the 8-bit status byte pushed to the stack by
// PHP/BRK/IRQ/NMI: bit 5 always set, bit 4 (B) set only for PHP/BRK, never
// for a hardware IRQ/NMI push.
func (s *State) PackFlags(breakFlag bool) uint8 {
	var p uint8 = 0x20 // the unused bit is always set on the physical chip
	if s.CarryFlag {
		p |= 0x01
	}
	if s.ZeroFlag {
		p |= 0x02
	}
	if s.InterruptDisable {
		p |= 0x04
	}
	if s.DecimalMode {
		p |= 0x08
	}
	if breakFlag {
		p |= 0x10
	}
	if s.OverflowFlag {
		p |= 0x40
	}
	if s.NegativeFlag {
		p |= 0x80
	}
	return p
}

// UnpackFlags restores C,Z,I,D,V,N from a byte pulled from the stack (PLP,
// RTI). Bits 4 and 5 are not architectural state and are ignored. Changing
// I through UnpackFlags is subject to the same one-instruction interrupt
// polling delay as CLI/SEI.
func (s *State) UnpackFlags(p uint8) {
	s.CarryFlag = p&0x01 != 0
	s.ZeroFlag = p&0x02 != 0
	newI := p&0x04 != 0
	s.DecimalMode = p&0x08 != 0
	s.OverflowFlag = p&0x40 != 0
	s.NegativeFlag = p&0x80 != 0
	s.setInterruptDisable(newI)
}

// setInterruptDisable changes the I flag and, if the change alters the
// effective interrupt mask, defers the IRQ-polling view of it by one
// instruction (see iPollDelay).
func (s *State) setInterruptDisable(newI bool) {
	if newI != s.InterruptDisable {
		s.iPollDelay = 1
	}
	s.InterruptDisable = newI
}

// SetInterruptDisable is the CLI/SEI entry point.
func (s *State) SetInterruptDisable(v bool) { s.setInterruptDisable(v) }

// pollMaskedForIRQ returns the I-flag value interrupt polling should use at
// the current instruction boundary, advancing the one-instruction delay
// queue.
func (s *State) pollMaskedForIRQ() bool {
	if s.iPollDelay > 0 {
		s.iPollDelay--
		return s.iPoll
	}
	s.iPoll = s.InterruptDisable
	return s.iPoll
}

// updateZN sets Z and N from value, the common tail of most ALU/load ops.
func (s *State) updateZN(value uint8) {
	s.ZeroFlag = value == 0
	s.NegativeFlag = value&0x80 != 0
}
