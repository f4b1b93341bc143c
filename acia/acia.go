// Package acia implements the 6850 ACIA and the BBC's serial ULA that sits
// in front of it (spec.md §4.6): status/data registers, RDRF/TDRE/DCD/CTS/
// IRQ semantics, RS423-vs-tape line routing, and the tape carrier-tone DCD
// latch.
//
// The C64 has no ACIA, so there is no direct teacher analogue for register
// semantics; those are grounded on _examples/original_source/mc6850.c
// (serial_acia_read/write, serial_acia_update_irq, serial_set_DCD/CTS). The
// surrounding style — exported state struct, an IRQ line recomputed after
// every register touch, a cpu.State passed in for SetIRQ/ClearIRQ — follows
// via.New's shape, which itself follows the teacher's c64/cia/cia.go.
package acia

import (
	"github.com/newhook/beebgo/cpu"
)

// Status register bits.
const (
	StatusRDRF uint8 = 0x01
	StatusTDRE uint8 = 0x02
	StatusDCD  uint8 = 0x04
	StatusCTS  uint8 = 0x08
	StatusIRQ  uint8 = 0x80
)

// Control register bits.
const (
	ControlTCBMask uint8 = 0x60
	ControlRIE     uint8 = 0x80
)

// Transmit control bits (control register bits 6:5).
const (
	TCBRTSAndTIE  uint8 = 0x20
	TCBNoRTSNoTIE uint8 = 0x40
)

// ACIA is the 6850 Asynchronous Communications Interface Adapter.
type ACIA struct {
	cpuState *cpu.State

	control uint8
	status  uint8
	receive uint8
	transmit uint8

	isDCD bool
	isCTS bool

	// TransmitReady is called whenever a byte has just been written to the
	// transmit data register (mirrors mc6850.c's transmit_ready_callback,
	// which the serial ULA uses to immediately drain a tape-selected byte).
	TransmitReady func()
}

// New returns an ACIA wired to assert/clear IRQSourceACIA on state.
func New(state *cpu.State) *ACIA {
	a := &ACIA{cpuState: state}
	a.PowerOnReset()
	return a
}

func (a *ACIA) updateIRQ() {
	doSend := (a.control&ControlTCBMask) == TCBRTSAndTIE &&
		a.status&StatusTDRE != 0 && !a.isCTS

	doReceive := a.control&ControlRIE != 0 &&
		(a.status&StatusRDRF != 0 || a.status&StatusDCD != 0)

	fire := doSend || doReceive

	a.status &^= StatusIRQ
	if fire {
		a.status |= StatusIRQ
	}

	if fire {
		a.cpuState.SetIRQ(cpu.IRQSourceACIA)
	} else {
		a.cpuState.ClearIRQ(cpu.IRQSourceACIA)
	}
}

// SetDCD models the Data Carrier Detect line. A low-to-high edge latches
// StatusDCD; the latch is only cleared by reading the data register (see
// ReadRegister), so a subsequent high-to-low transition on its own does not
// clear it.
func (a *ACIA) SetDCD(isDCD bool) {
	if isDCD && !a.isDCD {
		a.status |= StatusDCD
	}
	a.isDCD = isDCD
	a.updateIRQ()
}

// SetCTS models the Clear To Send line, which (unlike DCD) tracks the live
// level rather than latching.
func (a *ACIA) SetCTS(isCTS bool) {
	a.status &^= StatusCTS
	if isCTS {
		a.status |= StatusCTS
	}
	a.isCTS = isCTS
	a.updateIRQ()
}

// RTS reports the Request To Send output derived from the transmit-control
// bits, gated additionally on the receive register not being full (mirrors
// serial_get_RTS's carried-over behavior from the old combined tick logic).
func (a *ACIA) RTS() bool {
	if a.control&ControlTCBMask == TCBNoRTSNoTIE {
		return false
	}
	if a.status&StatusRDRF != 0 {
		return false
	}
	return true
}

// IsTransmitReady reports whether the transmit data register is empty.
func (a *ACIA) IsTransmitReady() bool {
	return a.status&StatusTDRE != 0
}

// Receive delivers a byte from the wire into the receive data register.
func (a *ACIA) Receive(b uint8) {
	a.status |= StatusRDRF
	a.receive = b
	a.updateIRQ()
}

// Transmit drains the transmit data register, re-arming TDRE.
func (a *ACIA) Transmit() uint8 {
	a.status |= StatusTDRE
	a.updateIRQ()
	return a.transmit
}

// PowerOnReset restores the ACIA to its post-reset state: TDRE set, every
// other status bit clear, control zeroed, external line levels preserved.
func (a *ACIA) PowerOnReset() {
	a.receive = 0
	a.transmit = 0
	a.status = StatusTDRE
	a.control = 0

	a.SetDCD(a.isDCD)
	a.SetCTS(a.isCTS)
}

// ReadRegister reads the status register (reg==0) or the data register
// (reg!=0). Reading the data register clears the RDRF and (latched) DCD
// status bits.
func (a *ACIA) ReadRegister(reg uint8) uint8 {
	if reg == 0 {
		ret := a.status

		// A high CTS inhibits TDRE from being reported, even though the
		// internal register stays set.
		if a.isCTS {
			ret &^= StatusTDRE
		}

		// If the "DCD went high" latch isn't set, the status bit just
		// follows the live line level.
		if ret&StatusDCD == 0 && a.isDCD {
			ret |= StatusDCD
		}

		return ret
	}

	a.status &^= StatusRDRF
	a.status &^= StatusDCD
	a.updateIRQ()
	return a.receive
}

// WriteRegister writes the control register (reg==0) or the transmit data
// register (reg!=0). A control value with its low two bits both set
// triggers a master reset instead of being latched as a control value.
func (a *ACIA) WriteRegister(reg uint8, val uint8) {
	if reg == 0 {
		if val&0x03 == 0x03 {
			a.PowerOnReset()
			return
		}
		a.control = val
		a.updateIRQ()
		return
	}

	a.transmit = val
	a.status &^= StatusTDRE
	if a.TransmitReady != nil {
		a.TransmitReady()
	}
	a.updateIRQ()
}

// Snapshot is the ACIA portion of spec.md §6's persisted state layout.
type Snapshot struct {
	Control, Status    uint8
	Receive, Transmit  uint8
	IsDCD, IsCTS       bool
}

// SaveSnapshot captures every ACIA register and cached line level.
func (a *ACIA) SaveSnapshot() Snapshot {
	return Snapshot{
		Control: a.control, Status: a.status,
		Receive: a.receive, Transmit: a.transmit,
		IsDCD: a.isDCD, IsCTS: a.isCTS,
	}
}

// RestoreSnapshot reinstates an ACIA's state from a prior SaveSnapshot.
func (a *ACIA) RestoreSnapshot(s Snapshot) {
	a.control, a.status = s.Control, s.Status
	a.receive, a.transmit = s.Receive, s.Transmit
	a.isDCD, a.isCTS = s.IsDCD, s.IsCTS
	a.updateIRQ()
}
