package cpu

// Addressing-mode helpers shared by the interpreter. Each returns the
// effective address and whether computing it crossed a page boundary (the
// +1 cycle spec.md §4.2.1 and §4.5 both call out for abx/aby/idy in read
// instructions). Grounded on the teacher's readAbsoluteX/readIndirectY
// page-cross detection, generalized to operate on the Bus interface and to
// return addresses rather than already-read values so RMW instructions can
// share the same address computation as loads.

func (c *Interpreter) fetch8() uint8 {
	v := c.Bus.Read(c.State.PC)
	c.State.PC++
	return v
}

func (c *Interpreter) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return (hi << 8) | lo
}

func (c *Interpreter) addrZeroPage() uint16 {
	return uint16(c.fetch8())
}

func (c *Interpreter) addrZeroPageX() uint16 {
	return uint16(c.fetch8() + c.State.X)
}

func (c *Interpreter) addrZeroPageY() uint16 {
	return uint16(c.fetch8() + c.State.Y)
}

func (c *Interpreter) addrAbsolute() uint16 {
	return c.fetch16()
}

func (c *Interpreter) addrAbsoluteX() (uint16, bool) {
	base := c.fetch16()
	eff := base + uint16(c.State.X)
	return eff, (base & 0xFF00) != (eff & 0xFF00)
}

func (c *Interpreter) addrAbsoluteY() (uint16, bool) {
	base := c.fetch16()
	eff := base + uint16(c.State.Y)
	return eff, (base & 0xFF00) != (eff & 0xFF00)
}

func (c *Interpreter) addrIndirectX() uint16 {
	zp := c.fetch8() + c.State.X
	lo := uint16(c.Bus.Read(uint16(zp)))
	hi := uint16(c.Bus.Read(uint16(zp + 1)))
	return (hi << 8) | lo
}

func (c *Interpreter) addrIndirectY() (uint16, bool) {
	zp := c.fetch8()
	lo := uint16(c.Bus.Read(uint16(zp)))
	hi := uint16(c.Bus.Read(uint16(zp + 1)))
	base := (hi << 8) | lo
	eff := base + uint16(c.State.Y)
	return eff, (base & 0xFF00) != (eff & 0xFF00)
}

// addrIndirectZP is the 65C12's new (zp) mode — indirect without the X
// index, filling the gap the NMOS 6502 left for most opcodes.
func (c *Interpreter) addrIndirectZP() uint16 {
	zp := c.fetch8()
	lo := uint16(c.Bus.Read(uint16(zp)))
	hi := uint16(c.Bus.Read(uint16(zp + 1)))
	return (hi << 8) | lo
}

func (c *Interpreter) push(v uint8) {
	c.Bus.Write(0x0100|uint16(c.State.S), v)
	c.State.S--
}

func (c *Interpreter) push16(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *Interpreter) pull() uint8 {
	c.State.S++
	return c.Bus.Read(0x0100 | uint16(c.State.S))
}

func (c *Interpreter) pull16() uint16 {
	lo := uint16(c.pull())
	hi := uint16(c.pull())
	return (hi << 8) | lo
}
