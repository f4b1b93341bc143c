// Package video implements the 6845 CRTC, the video ULA, and the pixel
// renderer (spec.md §4.4): a six-counter raster state machine driving a
// framebuffer through precomputed per-byte pixel tables.
//
// Grounded on the teacher's c64/vic/vic.go raster counters (rasterCounter/
// rasterCycle and their Update-per-cycle advance), generalized from the
// VIC-II's fixed 40-column bad-line text/bitmap modes to the CRTC's
// register-driven R0-R17 geometry and the ULA's MODE0-7 palette/resolution
// choices. The bad-line DMA-suppression concept has no CRTC equivalent and
// is dropped; MA/MA-back row-start latching plays the same "recompute video
// address" role the teacher's videoMatrix pointer played.
package video

// CRTC register indices (R0..R17), per the 6845's documented register map.
const (
	RHorizTotal       = 0  // R0: total horizontal characters - 1
	RHorizDisplayed   = 1  // R1: displayed horizontal characters
	RHSyncPos         = 2  // R2: horizontal sync position
	RSyncWidth        = 3  // R3: low nibble = HSYNC width, high nibble = VSYNC width
	RVertTotal        = 4  // R4: total character rows - 1
	RVertTotalAdjust  = 5  // R5: scanline adjust at end of frame
	RVertDisplayed    = 6  // R6: displayed character rows
	RVSyncPos         = 7  // R7: vertical sync position
	RInterlaceMode    = 8  // R8
	RMaxScanline      = 9  // R9: scanlines per character row - 1
	RCursorStart      = 10 // R10
	RCursorEnd        = 11 // R11
	RStartAddrHigh    = 12 // R12: MA start address high
	RStartAddrLow     = 13 // R13: MA start address low
	RCursorHigh       = 14 // R14
	RCursorLow        = 15 // R15
	RLightPenHigh     = 16 // R16
	RLightPenLow      = 17 // R17

	numRegisters = 18
)

// CRTC is the 6845 character/row/frame counter chain. It owns no pixels
// itself; Renderer consumes its DISPEN/HSYNC/VSYNC transitions.
type CRTC struct {
	regs [numRegisters]uint8

	addrReg uint8 // register-select latch written through the address port

	hc       uint8  // horizontal character counter
	sc       uint8  // scanline-within-row counter
	vc       uint8  // vertical character-row counter
	ma       uint16 // memory address counter
	maAtRow  uint16 // MA saved at the start of the current character row
	vAdjust  uint8  // vertical-adjust scanline counter
	inVAdjust bool

	// OnNewScanline fires on the HC wraparound that starts a new scanline
	// (whether or not HSYNC itself is asserted this line); OnFrameReady
	// fires once per VSYNC restart.
	OnNewScanline func()
	OnFrameReady  func()
}

// NewCRTC returns a CRTC with registers zeroed, matching the chip's
// power-on state (the BBC's MOS programs them before any video appears).
func NewCRTC() *CRTC {
	return &CRTC{}
}

// WriteAddress latches the register index selected by subsequent
// WriteData/ReadData calls (CRTC address port, even MMIO offset).
func (c *CRTC) WriteAddress(value uint8) { c.addrReg = value & 0x1F }

// WriteData writes the currently addressed register (odd MMIO offset).
func (c *CRTC) WriteData(value uint8) {
	if int(c.addrReg) >= numRegisters {
		return
	}
	c.regs[c.addrReg] = value
}

// ReadData reads the currently addressed register. Only a handful of CRTC
// registers are readable on real hardware (cursor/light-pen); the others
// read back as written for simplicity, since nothing in spec.md's testable
// properties depends on the write-only registers floating.
func (c *CRTC) ReadData() uint8 {
	if int(c.addrReg) >= numRegisters {
		return 0
	}
	return c.regs[c.addrReg]
}

func (c *CRTC) reg(i int) uint8 { return c.regs[i] }

// DISPEN reports the live display-enable state, computed directly from the
// horizontal/vertical windows rather than cached, so it is always current
// even before the first Tick.
func (c *CRTC) DISPEN() bool {
	return c.hc < c.reg(RHorizDisplayed) && c.vc < c.reg(RVertDisplayed) && !c.inVAdjust
}

// HSYNC reports the live horizontal-sync state.
func (c *CRTC) HSYNC() bool {
	width := c.reg(RSyncWidth) & 0x0F
	if width == 0 {
		width = 16
	}
	return c.hc >= c.reg(RHSyncPos) && c.hc < c.reg(RHSyncPos)+width
}

// VSYNC reports the live vertical-sync state.
func (c *CRTC) VSYNC() bool {
	width := (c.reg(RSyncWidth) >> 4) & 0x0F
	if width == 0 {
		width = 16
	}
	return c.vc >= c.reg(RVSyncPos) && uint8(c.vAdjust) < width
}

// MA returns the current memory address counter (RA = SC is the scanline
// within the character row the caller should combine it with).
func (c *CRTC) MA() uint16 { return c.ma }

// RA returns the scanline-within-character-row counter.
func (c *CRTC) RA() uint8 { return c.sc }

// Tick advances the CRTC by one character-clock cycle: emits the current
// character position to the renderer (via the caller, which reads MA/RA
// before calling Tick), then updates HC/SC/VC/MA per spec.md §4.4 step 2,
// and recomputes DISPEN/HSYNC/VSYNC per step 3.
func (c *CRTC) Tick() {
	c.hc++
	if c.hc == c.reg(RHorizTotal)+1 {
		c.hc = 0
		c.newScanline()
	}
}

func (c *CRTC) newScanline() {
	if c.OnNewScanline != nil {
		c.OnNewScanline()
	}

	if c.inVAdjust {
		c.vAdjust++
		if c.vAdjust >= c.reg(RVertTotalAdjust) {
			c.inVAdjust = false
			c.endFrame()
		}
		return
	}

	c.sc++
	if c.sc == c.reg(RMaxScanline)+1 {
		c.sc = 0
		c.maAtRow = c.ma
		c.vc++
		if c.vc == c.reg(RVertTotal)+1 {
			if c.reg(RVertTotalAdjust) == 0 {
				c.endFrame()
			} else {
				c.inVAdjust = true
				c.vAdjust = 0
			}
		}
	} else {
		c.ma = c.maAtRow
	}
}

func (c *CRTC) endFrame() {
	c.vc = 0
	c.sc = 0
	c.vAdjust = 0
	c.ma = (uint16(c.reg(RStartAddrHigh)) << 8) | uint16(c.reg(RStartAddrLow))
	c.maAtRow = c.ma
	if c.OnFrameReady != nil {
		c.OnFrameReady()
	}
}

// AdvanceMA moves the memory-address counter forward by one character
// position within the current row; called by Renderer after consuming one
// character so CRTC.MA() reflects the next one.
func (c *CRTC) AdvanceMA() {
	if c.inVAdjust {
		return
	}
	c.ma++
}

// CRTCSnapshot is the ~26-byte "CRTC registers and live counters" block of
// spec.md §6's persisted state layout.
type CRTCSnapshot struct {
	Regs      [numRegisters]uint8
	AddrReg   uint8
	HC        uint8
	SC        uint8
	VC        uint8
	MA        uint16
	MAAtRow   uint16
	VAdjust   uint8
	InVAdjust bool
}

// SaveSnapshot captures every live counter needed to resume mid-frame.
func (c *CRTC) SaveSnapshot() CRTCSnapshot {
	return CRTCSnapshot{
		Regs: c.regs, AddrReg: c.addrReg,
		HC: c.hc, SC: c.sc, VC: c.vc,
		MA: c.ma, MAAtRow: c.maAtRow,
		VAdjust: c.vAdjust, InVAdjust: c.inVAdjust,
	}
}

// RestoreSnapshot reinstates a CRTC's state from a prior SaveSnapshot.
func (c *CRTC) RestoreSnapshot(s CRTCSnapshot) {
	c.regs = s.Regs
	c.addrReg = s.AddrReg
	c.hc, c.sc, c.vc = s.HC, s.SC, s.VC
	c.ma, c.maAtRow = s.MA, s.MAAtRow
	c.vAdjust, c.inVAdjust = s.VAdjust, s.InVAdjust
}
