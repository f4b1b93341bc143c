package disassembler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flatMem [0x10000]uint8

func (m *flatMem) Read(address uint16) uint8 { return m[address] }

func TestDisassembleLocationImpliedMode(t *testing.T) {
	var mem flatMem
	mem[0x1000] = 0xEA // NOP, implied
	loc := disassembleLocation(&mem, 0x1000)
	require.NotNil(t, loc.Inst)
	assert.Equal(t, "NOP", loc.Inst.Name)
	assert.Equal(t, 1, loc.Size())
	assert.Empty(t, loc.OperandBytes)
}

func TestDisassembleLocationAllocatesOperandBytes(t *testing.T) {
	var mem flatMem
	mem[0x1000] = 0xA9 // LDA #imm
	mem[0x1001] = 0x42
	loc := disassembleLocation(&mem, 0x1000)
	require.NotNil(t, loc.Inst)
	require.Len(t, loc.OperandBytes, 1, "operand slice must be allocated before being indexed")
	assert.Equal(t, uint8(0x42), loc.OperandBytes[0])
	assert.Contains(t, loc.String(), "LDA")
}

func TestDisassembleLocationTwoByteOperand(t *testing.T) {
	var mem flatMem
	mem[0x2000] = 0x4C // JMP absolute
	mem[0x2001] = 0x00
	mem[0x2002] = 0x30
	loc := disassembleLocation(&mem, 0x2000)
	require.NotNil(t, loc.Inst)
	require.Len(t, loc.OperandBytes, 2)
	assert.Equal(t, 3, loc.Size())
	assert.Contains(t, loc.String(), "$3000")
}

func TestDisassembleLocationUnknownOpcode(t *testing.T) {
	var mem flatMem
	mem[0x1000] = 0xFF // not in instructionSet as of this opcode table's coverage
	loc := disassembleLocation(&mem, 0x1000)
	if loc.Inst == nil {
		assert.Equal(t, 1, loc.Size())
		assert.Contains(t, loc.String(), "Invalid opcode")
	}
}

func TestDisassembleWindowStopsAtCount(t *testing.T) {
	var mem flatMem
	for i := uint16(0); i < 10; i++ {
		mem[0x1000+i] = 0xEA // ten NOPs
	}
	rows := DisassembleWindow(&mem, 0x1000, 5)
	assert.Len(t, rows, 5)
	assert.Equal(t, uint16(0x1000), rows[0].PC)
	assert.Equal(t, uint16(0x1004), rows[4].PC)
}

func TestDisassembleWindowAdvancesByInstructionSize(t *testing.T) {
	var mem flatMem
	mem[0x1000] = 0xA9 // LDA #imm (2 bytes)
	mem[0x1001] = 0x01
	mem[0x1002] = 0xEA // NOP (1 byte)
	rows := DisassembleWindow(&mem, 0x1000, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, uint16(0x1000), rows[0].PC)
	assert.Equal(t, uint16(0x1002), rows[1].PC)
}

func TestDisassembleMemoryProducesOneLinePerInstruction(t *testing.T) {
	var mem flatMem
	mem[0x1000] = 0xEA // NOP
	mem[0x1001] = 0xEA // NOP
	out := DisassembleMemory(&mem, 0x1000, 2)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
}

func TestDecodeKnownOpcode(t *testing.T) {
	inst, ok := Decode(0xEA)
	require.True(t, ok)
	assert.Equal(t, "NOP", inst.Name)
}
