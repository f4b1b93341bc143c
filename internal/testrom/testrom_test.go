package testrom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerOneShotAssembles(t *testing.T) {
	p, err := TimerOneShot()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x2000), p.Org)
	assert.NotEmpty(t, p.Code)
	assert.Equal(t, uint8(0xA9), p.Code[0], "first instruction is LDA #imm")
}

func TestClcAdcFoldAssembles(t *testing.T) {
	p, err := ClcAdcFold()
	require.NoError(t, err)
	// CLC; LDA #$10; ADC #$20; STA $10
	assert.Equal(t, []byte{0x18, 0xA9, 0x10, 0x69, 0x20, 0x85, 0x10}, p.Code)
}

func TestSelfModifyingStoreAssembles(t *testing.T) {
	p, err := SelfModifyingStore()
	require.NoError(t, err)
	assert.Equal(t, uint16(SelfModifyingStoreOrg), p.Org)
	// LDA #$EA; STA $1000; JMP $1000
	assert.Equal(t, []byte{0xA9, 0xEA, 0x8D, 0x00, 0x10, 0x4C, 0x00, 0x10}, p.Code)
}

func TestCLIBoundaryIRQAssembles(t *testing.T) {
	p, err := CLIBoundaryIRQ()
	require.NoError(t, err)
	assert.NotEmpty(t, p.Code)
	// last three bytes are the three trailing NOPs
	n := len(p.Code)
	assert.Equal(t, []byte{0xEA, 0xEA, 0xEA}, p.Code[n-3:])
}

type fakeMem struct {
	data [0x10000]uint8
}

func (m *fakeMem) Write(addr uint16, value uint8) { m.data[addr] = value }

func TestProgramLoadCopiesAtOrg(t *testing.T) {
	p, err := ClcAdcFold()
	require.NoError(t, err)

	var mem fakeMem
	p.Load(&mem)
	for i, b := range p.Code {
		assert.Equal(t, b, mem.data[p.Org+uint16(i)])
	}
}
