package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMMIO struct {
	reads  []uint16
	writes map[uint16]uint8
}

func (f *fakeMMIO) ReadMMIO(offset uint16) uint8 {
	f.reads = append(f.reads, offset)
	return 0x42
}

func (f *fakeMMIO) WriteMMIO(offset uint16, value uint8) {
	if f.writes == nil {
		f.writes = map[uint16]uint8{}
	}
	f.writes[offset] = value
}

func TestRAMReadWrite(t *testing.T) {
	m := New()
	m.Write(0x1000, 0xAB)
	assert.Equal(t, uint8(0xAB), m.Read(0x1000))
}

func TestWriteToFixedOSROMIsDropped(t *testing.T) {
	m := New()
	require.NoError(t, m.LoadOSROM(make([]uint8, OSSize)))
	m.os[0] = 0x55 // simulate loaded content at 0xC000
	m.Write(OSBase, 0xFF)
	assert.Equal(t, uint8(0x55), m.Read(OSBase))
}

func TestSidewaysROMBanking(t *testing.T) {
	m := New()
	romA := make([]uint8, SidewaysSize)
	romA[0] = 0x11
	romB := make([]uint8, SidewaysSize)
	romB[0] = 0x22
	require.NoError(t, m.LoadSidewaysROM(0, romA))
	require.NoError(t, m.LoadSidewaysROM(1, romB))

	m.SetROMSEL(0)
	assert.Equal(t, uint8(0x11), m.Read(SidewaysBase))
	m.SetROMSEL(1)
	assert.Equal(t, uint8(0x22), m.Read(SidewaysBase))

	// writes to ROM banks are dropped
	m.Write(SidewaysBase, 0x99)
	assert.Equal(t, uint8(0x22), m.Read(SidewaysBase))
}

func TestSidewaysRAMIsWritable(t *testing.T) {
	m := New()
	m.SetSidewaysRAM(2, true)
	m.SetROMSEL(2)
	m.Write(SidewaysBase+5, 0x77)
	assert.Equal(t, uint8(0x77), m.Read(SidewaysBase+5))
}

func TestUnmappedMMIOReturns0xFF(t *testing.T) {
	m := New()
	assert.Equal(t, uint8(0xFF), m.Read(MMIOBase))
}

func TestMMIODispatchAdvancesTimingBeforeCallback(t *testing.T) {
	m := New()
	h := &fakeMMIO{}
	m.MapMMIO(0xFE40, 0xFE4F, h)

	advanced := false
	m.BeforeMMIO = func() { advanced = true }

	got := m.Read(0xFE42)
	assert.True(t, advanced)
	assert.Equal(t, uint8(0x42), got)
	assert.Equal(t, []uint16{0x02}, h.reads)

	m.Write(0xFE43, 0x9)
	assert.Equal(t, uint8(0x9), h.writes[0x03])
}

func TestOverlappingMMIOWindowPanics(t *testing.T) {
	m := New()
	m.MapMMIO(0xFE40, 0xFE4F, &fakeMMIO{})
	assert.Panics(t, func() {
		m.MapMMIO(0xFE48, 0xFE50, &fakeMMIO{})
	})
}

func TestLynneShadowsWhenDisplayBitSet(t *testing.T) {
	m := New()
	m.ram[LynneBase] = 0x01
	m.lynne[0] = 0x02
	assert.Equal(t, uint8(0x01), m.Read(LynneBase))

	m.SetACCCON(ACCCON_D)
	assert.Equal(t, uint8(0x02), m.Read(LynneBase))
}

func TestLynneEnableGatesOnPCRegion(t *testing.T) {
	m := New()
	m.lynne[0] = 0x9
	m.SetACCCON(ACCCON_E)

	m.CPUPC = 0x2000 // below OS ROM: shadow is seen
	assert.Equal(t, uint8(0x9), m.Read(LynneBase))

	m.CPUPC = 0xD000 // executing from OS ROM: main RAM is seen
	assert.NotEqual(t, uint8(0x9), m.Read(LynneBase))
}

func TestHazelShadowsOSWorkspaceWhenFetchingFromOSROM(t *testing.T) {
	m := New()
	require.NoError(t, m.LoadOSROM(make([]uint8, OSSize)))
	m.hazel[0] = 0x77
	m.SetACCCON(ACCCON_Y)

	m.CPUPC = 0xD500 // fetching from OS ROM region
	assert.Equal(t, uint8(0x77), m.Read(HazelBase))

	m.CPUPC = 0x1000 // fetching from main RAM: HAZEL not active
	assert.NotEqual(t, uint8(0x77), m.Read(HazelBase))
}
