package video

// FrameWidth/FrameHeight bound the renderer's framebuffer at the nominal
// 640x512 window spec.md §4.4 names (border included); pixels outside the
// window implied by R1/R6 are left at the border colour.
const (
	FrameWidth  = 640
	FrameHeight = 512
)

// MemReader fetches one screen-RAM byte at a CRTC-generated address, routed
// through bbc.Machine's memory map (shadow RAM aware) rather than video
// reading memory.Map directly, keeping this package free of a dependency on
// memory.
type MemReader func(addr uint16) uint8

// Renderer drives a CRTC one character-clock at a time, reading screen
// bytes through MemRead, expanding them with the ULA's precomputed tables,
// and writing logical colour indices into Framebuffer. It is the consumer
// described in spec.md §4.4's "renderer owns the framebuffer" sentence.
//
// Grounded on the teacher's VIC generateDisplayData/updateVideoMatrix pair,
// generalized from the VIC's fixed 40-column text fetch to the CRTC/ULA's
// variable-width, variable-bpp byte fetch-and-expand.
type Renderer struct {
	CRTC *CRTC
	ULA  *ULA
	MemRead MemReader

	Framebuffer []uint8 // one byte (logical colour index) per pixel, row-major

	beamX, beamY int

	// InterlaceWobble, when true, offsets the vertical start of odd frames
	// by a full scanline rather than the conventional half-scanline: spec's
	// Open Question on interlace wobble explicitly keeps the observable
	// amplitude rather than "correcting" it to the analog half-line value.
	InterlaceWobble bool
	oddFrame        bool

	OnFrameReady func()
}

// NewRenderer wires a renderer over an existing CRTC/ULA pair.
func NewRenderer(crtc *CRTC, ula *ULA, memRead MemReader) *Renderer {
	r := &Renderer{
		CRTC:        crtc,
		ULA:         ula,
		MemRead:     memRead,
		Framebuffer: make([]uint8, FrameWidth*FrameHeight),
	}
	crtc.OnNewScanline = r.onNewScanline
	crtc.OnFrameReady = r.onFrameReady
	return r
}

// Tick renders the character currently addressed by CRTC (if DISPEN is
// high) and then advances the CRTC by one character-clock cycle, per
// spec.md §4.4's numbered steps 1-3.
func (r *Renderer) Tick() {
	if r.CRTC.DISPEN() {
		r.emitCharacter()
	} else {
		r.emitBorder()
	}
	r.CRTC.AdvanceMA()
	r.CRTC.Tick()
}

func (r *Renderer) emitCharacter() {
	addr := 0x3000 + (r.CRTC.MA() & 0x3FFF) // screen RAM base, wrapped to its bank
	b := r.MemRead(addr)

	if r.ULA.Mode() == 7 {
		r.emitTeletext(b)
		return
	}

	pixels := r.ULA.ExpandByte(b)
	y := r.beamY
	if y < 0 || y >= FrameHeight {
		r.advanceBeam(len(pixels))
		return
	}
	for _, p := range pixels {
		if r.beamX >= 0 && r.beamX < FrameWidth {
			r.Framebuffer[y*FrameWidth+r.beamX] = r.ULA.Physical(p)
		}
		r.beamX++
	}
}

func (r *Renderer) emitBorder() {
	y := r.beamY
	width := 8
	if r.ULA.IsOneMHzMode() {
		width = 8
	}
	if y >= 0 && y < FrameHeight {
		for i := 0; i < width; i++ {
			if r.beamX >= 0 && r.beamX < FrameWidth {
				r.Framebuffer[y*FrameWidth+r.beamX] = r.ULA.Physical(0)
			}
			r.beamX++
		}
	} else {
		r.beamX += width
	}
}

// emitTeletext is a narrow stand-in for the 6-bit teletext code set's
// shift/attribute state machine: it decodes only the printable-graphics
// subset into a flat colour, deferring full attribute handling (double
// height, hold graphics, flash) as unimplemented. Grounded on spec.md
// §4.4's note that MODE7 "uses a separate path driven by a 1MHz byte stream
// and a shift/attribute state machine", scoped down since the BBC's
// teletext character generator ROM contents are not part of this pack.
func (r *Renderer) emitTeletext(b uint8) {
	y := r.beamY
	colour := uint8(7)
	if b < 0x20 {
		colour = 0 // control codes: treat as black, attribute handling unimplemented
	}
	if y >= 0 && y < FrameHeight {
		for i := 0; i < 12; i++ {
			if r.beamX >= 0 && r.beamX < FrameWidth {
				r.Framebuffer[y*FrameWidth+r.beamX] = r.ULA.Physical(colour)
			}
			r.beamX++
		}
	} else {
		r.beamX += 12
	}
}

func (r *Renderer) advanceBeam(n int) { r.beamX += n }

func (r *Renderer) onNewScanline() {
	r.beamX = 0
	r.beamY++
}

func (r *Renderer) onFrameReady() {
	r.beamY = 0
	if r.InterlaceWobble && r.oddFrame {
		r.beamY = 1
	}
	r.oddFrame = !r.oddFrame
	if r.OnFrameReady != nil {
		r.OnFrameReady()
	}
}
