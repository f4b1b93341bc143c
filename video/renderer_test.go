package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRendererWritesPixelsOnlyWhileDispenHigh(t *testing.T) {
	crtc := NewCRTC()
	crtc.WriteAddress(RHorizTotal)
	crtc.WriteData(3)
	crtc.WriteAddress(RHorizDisplayed)
	crtc.WriteData(2)
	crtc.WriteAddress(RVertDisplayed)
	crtc.WriteData(1)
	crtc.WriteAddress(RMaxScanline)
	crtc.WriteData(0)

	ula := NewULA()
	ula.WriteControl(0) // MODE0
	ula.WritePalette(0xF1) // logical 15 -> physical 1

	mem := map[uint16]uint8{0x3000: 0xFF}
	r := NewRenderer(crtc, ula, func(addr uint16) uint8 { return mem[addr] })

	r.Tick() // within displayed window, addr 0x3000
	assert.NotZero(t, r.Framebuffer[0])
}

func TestFrameReadyResetsBeam(t *testing.T) {
	crtc := NewCRTC()
	crtc.WriteAddress(RHorizTotal)
	crtc.WriteData(1)
	crtc.WriteAddress(RVertTotal)
	crtc.WriteData(0)
	crtc.WriteAddress(RMaxScanline)
	crtc.WriteData(0)

	ula := NewULA()
	frames := 0
	r := NewRenderer(crtc, ula, func(addr uint16) uint8 { return 0 })
	r.OnFrameReady = func() { frames++ }

	for i := 0; i < 6; i++ {
		r.Tick()
	}
	assert.GreaterOrEqual(t, frames, 1)
	assert.Equal(t, 0, r.beamX)
}
