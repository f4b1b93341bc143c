package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These exercise the 65C12 instructions added on top of the teacher's base
// 6502 table (STZ/TRB/TSB/BRA/PHX/PHY/PLX/PLY, plus BIT's extra modes),
// needed so internal/testrom can assemble programs using the full
// instruction set cpu.Interpreter implements.
func Test65C12Instructions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
	}{
		{"STZ zero page", "STZ $10", []byte{0x64, 0x10}},
		{"STZ zero page,X", "STZ $10,X", []byte{0x74, 0x10}},
		{"STZ absolute", "STZ $1000", []byte{0x9C, 0x00, 0x10}},
		{"STZ absolute,X", "STZ $1000,X", []byte{0x9E, 0x00, 0x10}},
		{"TRB zero page", "TRB $10", []byte{0x14, 0x10}},
		{"TRB absolute", "TRB $1000", []byte{0x1C, 0x00, 0x10}},
		{"TSB zero page", "TSB $10", []byte{0x04, 0x10}},
		{"TSB absolute", "TSB $1000", []byte{0x0C, 0x00, 0x10}},
		{"BIT immediate", "BIT #$0F", []byte{0x89, 0x0F}},
		{"BIT zero page,X", "BIT $10,X", []byte{0x34, 0x10}},
		{"BIT absolute,X", "BIT $1000,X", []byte{0x3C, 0x00, 0x10}},
		{"PHX implicit", "PHX", []byte{0xDA}},
		{"PHY implicit", "PHY", []byte{0x5A}},
		{"PLX implicit", "PLX", []byte{0xFA}},
		{"PLY implicit", "PLY", []byte{0x7A}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm := NewAssembler()
			require.NoError(t, asm.Assemble(tt.input))
			assert.Equal(t, tt.expected, asm.GetOutput())
		})
	}
}

func TestBRAForwardBranch(t *testing.T) {
	asm := NewAssembler()
	src := `
		BRA target
		NOP
		NOP
	target:
		RTS`
	require.NoError(t, asm.Assemble(src))
	assert.Equal(t, []byte{0x80, 0x02, 0xEA, 0xEA, 0x60}, asm.GetOutput())
}
