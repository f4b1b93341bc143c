package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestCRTC() *CRTC {
	c := NewCRTC()
	c.WriteAddress(RHorizTotal)
	c.WriteData(7) // 8 characters per line
	c.WriteAddress(RHorizDisplayed)
	c.WriteData(4)
	c.WriteAddress(RHSyncPos)
	c.WriteData(5)
	c.WriteAddress(RVertTotal)
	c.WriteData(1) // 2 character rows per frame
	c.WriteAddress(RVertDisplayed)
	c.WriteData(1)
	c.WriteAddress(RVSyncPos)
	c.WriteData(1)
	c.WriteAddress(RMaxScanline)
	c.WriteData(1) // 2 scanlines per character row
	c.WriteAddress(RVertTotalAdjust)
	c.WriteData(0)
	return c
}

func TestDISPENWindow(t *testing.T) {
	c := newTestCRTC()
	assert.True(t, c.DISPEN(), "hc=0 vc=0 within displayed window")
	for i := 0; i < 4; i++ {
		c.Tick()
	}
	assert.False(t, c.DISPEN(), "hc has left the displayed window")
}

func TestMARestoresAtRowStartAcrossScanlines(t *testing.T) {
	c := newTestCRTC()
	c.AdvanceMA()
	c.AdvanceMA()
	maAfterRow0 := c.MA()
	assert.Equal(t, uint16(2), maAfterRow0)

	for i := 0; i < 8; i++ {
		c.Tick()
	}
	// still within the same character row (only SC advanced, not VC): MA
	// should have been restored to the row start, not left at maAfterRow0.
	assert.Equal(t, uint16(0), c.MA())
}

func TestFrameReadyFiresOnVSyncRestart(t *testing.T) {
	c := newTestCRTC()
	fired := 0
	c.OnFrameReady = func() { fired++ }
	for i := 0; i < 8*4+1; i++ { // 2 rows * 2 scanlines/row * 8 ticks/line, plus margin
		c.Tick()
	}
	assert.GreaterOrEqual(t, fired, 1)
}
