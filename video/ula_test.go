package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaletteWriteRoundTrip(t *testing.T) {
	u := NewULA()
	u.WritePalette(0x35) // logical 3 -> physical 5
	assert.Equal(t, uint8(5), u.Physical(3))
}

func TestExpandByteMode0OnePixelPerBit(t *testing.T) {
	u := NewULA()
	u.WriteControl(0) // MODE0: 1bpp, 8 pixels/byte
	row := u.ExpandByte(0b10000001)
	assert.Len(t, row, 8)
	assert.Equal(t, uint8(1), row[0])
	assert.Equal(t, uint8(0), row[1])
	assert.Equal(t, uint8(1), row[7])
}

func TestExpandByteMode1TwoBitsPerPixel(t *testing.T) {
	u := NewULA()
	u.WriteControl(1) // MODE1: 2bpp, 4 pixels/byte
	row := u.ExpandByte(0xFF)
	assert.Len(t, row, 4)
	for _, p := range row {
		assert.Equal(t, uint8(3), p)
	}
}

func TestMode7HasNoBitmapExpansion(t *testing.T) {
	u := NewULA()
	u.WriteControl(7)
	assert.Nil(t, u.ExpandByte(0x41))
	assert.True(t, u.IsOneMHzMode())
}
