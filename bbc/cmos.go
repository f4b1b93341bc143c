// Package bbc wires the CORE subsystems (cpu, memory, wheel, via, video,
// acia) together into a complete BBC Micro / Master class machine, plus the
// peripherals spec.md §9's Open Questions describe as out of scope for
// cycle-exactness: CMOS/RTC, the ADC, the keyboard matrix and the 8271 FDC
// stub.
package bbc

import "github.com/newhook/beebgo/diag"

const (
	cmosPortBAddressStrobe uint8 = 0x80
	cmosPortBEnable        uint8 = 0x40

	cmosIC32Data uint8 = 0x04
	cmosIC32Read uint8 = 0x02
)

// cmosDefaults is the 64-byte CMOS RAM image a real Master/Compact's RTC
// chip comes up with. Taken from the same jsbeeb-derived table the teacher's
// C ancestor uses; this emulator treats it as read-only, logging writes
// rather than performing them (see Write, and DESIGN.md's Open Question
// decision carried over from spec.md §9).
var cmosDefaults = [64]uint8{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xc9, 0xff, 0xff, 0x12, 0x00,
	0x17, 0xca, 0x1e, 0x05, 0x00, 0x35, 0xa6, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// CMOS models the Master/Compact's MC146818-style RTC/CMOS RAM chip as seen
// through IC32, the 74LS259 addressable latch the system VIA's port B
// drives. It never sees a memory-mapped address of its own: Machine derives
// its inputs from system VIA port A/B writes and IC32 state, exactly as
// cmos_update_external_inputs does on the real hardware.
type CMOS struct {
	ram [64]uint8

	enabled        bool
	addressStrobe  bool
	data           bool
	read           bool
	addr           uint8
}

// NewCMOS returns a CMOS loaded with its power-on RAM image.
func NewCMOS() *CMOS {
	return &CMOS{ram: cmosDefaults}
}

// UpdateExternalInputs re-evaluates CMOS state from the system VIA's port B
// (address strobe + chip enable), port A (address/data bus) and the IC32
// latch outputs (data/read direction bits), exactly mirroring the original's
// edge-triggered address latch: the address on port A is captured only on
// the address_strobe's high-to-low transition, not continuously.
func (c *CMOS) UpdateExternalInputs(portB, portA, ic32 uint8) {
	enabled := portB&cmosPortBEnable != 0
	newAddressStrobe := portB&cmosPortBAddressStrobe != 0
	newData := ic32&cmosIC32Data != 0
	newRead := ic32&cmosIC32Read != 0

	c.enabled = enabled
	if !enabled {
		return
	}

	if !newAddressStrobe && c.addressStrobe {
		c.addr = portA & 0x3F
	}
	c.addressStrobe = newAddressStrobe

	if !newData && !c.data && !newAddressStrobe && !newRead {
		diag.Unimplemented("cmos: write address %.2X value %.2X", c.addr, portA)
	}

	c.data = newData
	c.read = newRead
}

// BusValue returns what CMOS is currently driving onto the data bus: a
// stored byte only while enabled, latched out of address-strobe, and in
// read mode; 0xFF (bus float) otherwise.
func (c *CMOS) BusValue() uint8 {
	if c.enabled && !c.addressStrobe && c.data && c.read {
		return c.ram[c.addr]
	}
	return 0xFF
}

// Snapshot captures CMOS RAM content plus the address latch, for spec.md
// §6's save-state format (SPEC_FULL.md §C).
type CMOSSnapshot struct {
	RAM            [64]uint8
	Enabled        bool
	AddressStrobe  bool
	Data           bool
	Read           bool
	Addr           uint8
}

func (c *CMOS) SaveSnapshot() CMOSSnapshot {
	return CMOSSnapshot{
		RAM:           c.ram,
		Enabled:       c.enabled,
		AddressStrobe: c.addressStrobe,
		Data:          c.data,
		Read:          c.read,
		Addr:          c.addr,
	}
}

func (c *CMOS) RestoreSnapshot(s CMOSSnapshot) {
	c.ram = s.RAM
	c.enabled = s.Enabled
	c.addressStrobe = s.AddressStrobe
	c.data = s.Data
	c.read = s.Read
	c.addr = s.Addr
}
