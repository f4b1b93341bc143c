// Package fdc is a register-level stub for the Intel 8271 Floppy Disc
// Controller named in spec.md §6's peripheral MMIO window list. Disc image
// codecs are explicitly out of scope (spec.md §1); this package answers
// status reads and command writes enough that ROM code probing for a disc
// controller sees a chip that is present and idle, logging every command
// at "unimplemented" severity per spec.md §7's emulated-machine-error
// taxonomy rather than asserting or crashing.
//
// Grounded on _examples/original_source/intel_fdc.c's command/parameter
// state machine (status busy bit, per-command parameter counts), trimmed
// to "accept the command, stay not-busy, log it" instead of implementing
// seek/read/write sector mechanics against a disc image.
package fdc

import "github.com/newhook/beebgo/diag"

// Register offsets within the 8271's 8-byte MMIO window (addr & 0x07 on
// real hardware).
const (
	RegStatus    = 0x0 // read
	RegCommand   = 0x0 // write
	RegParameter = 0x1
	RegReset     = 0x2
	RegData      = 0x4
)

const statusBusy = 0x80

// paramCount mirrors intel_fdc.c's num_params switch: how many parameter
// bytes follow a given command opcode (low 6 bits of the command byte)
// before the controller considers it complete.
var paramCount = map[uint8]int{
	0x2C: 0, // read drive status
	0x29: 1, // seek
	0x3D: 1,
	0x3A: 2, // write special register
	0x0B: 3, // read sector
	0x13: 3,
	0x1B: 3, // write sector
	0x1F: 3,
	0x35: 4, // specify
	0x23: 2,
}

// Controller is the register-level 8271 stub.
type Controller struct {
	status     uint8
	command    uint8
	paramsLeft int
}

// New returns a Controller in its idle (not busy) power-on state.
func New() *Controller { return &Controller{} }

// ReadMMIO implements memory.MMIO.
func (c *Controller) ReadMMIO(offset uint16) uint8 {
	switch offset & 0x07 {
	case RegStatus:
		return c.status
	default:
		diag.Unimplemented("fdc: read of unimplemented register %d", offset&0x07)
		return 0xFF
	}
}

// WriteMMIO implements memory.MMIO.
func (c *Controller) WriteMMIO(offset uint16, value uint8) {
	switch offset & 0x07 {
	case RegCommand:
		if c.status&statusBusy != 0 {
			return // mid-command: parameter bytes land via RegParameter below
		}
		c.status = statusBusy
		c.command = value & 0x3F
		n, known := paramCount[c.command]
		if !known {
			diag.Unimplemented("fdc: unknown command opcode 0x%02X", c.command)
			c.status = 0
			return
		}
		c.paramsLeft = n
		if n == 0 {
			c.completeCommand()
		}
	case RegParameter:
		if c.paramsLeft > 0 {
			c.paramsLeft--
			if c.paramsLeft == 0 {
				c.completeCommand()
			}
		}
	case RegReset:
		c.status = 0
		c.paramsLeft = 0
	default:
		diag.Unimplemented("fdc: write of unimplemented register %d = 0x%02X", offset&0x07, value)
	}
}

// completeCommand mirrors intel_fdc_do_command: every recognized command
// stub completes instantly and leaves the controller idle, logging once at
// unimplemented severity since no disc image backs any of it.
func (c *Controller) completeCommand() {
	diag.Unimplemented("fdc: command 0x%02X completed (stub, no disc image attached)", c.command)
	c.status = 0
}
