package jit

import (
	"testing"

	"github.com/newhook/beebgo/cpu"
	"github.com/newhook/beebgo/wheel"
	"github.com/stretchr/testify/assert"
)

// flatBus is a plain 64KiB array satisfying cpu.Bus, kept independent of
// memory.Map's paging/MMIO concerns the same way cpu's own tests do.
type flatBus struct {
	ram [65536]uint8
}

func (b *flatBus) Read(addr uint16) uint8         { return b.ram[addr] }
func (b *flatBus) Write(addr uint16, value uint8) { b.ram[addr] = value }

func load(bus *flatBus, addr uint16, bytes ...uint8) {
	for i, v := range bytes {
		bus.ram[int(addr)+i] = v
	}
}

func newTestEngine() (*Engine, *cpu.State, *flatBus) {
	bus := &flatBus{}
	state := cpu.NewState()
	w := wheel.New()
	return NewEngine(state, bus, w), state, bus
}

func TestLDAImmediateCompilesToDirectUops(t *testing.T) {
	bus := &flatBus{}
	load(bus, 0x1000, cpu.LDA_IMM, 0x80)

	op := Decode(0x1000, bus)
	assert.Equal(t, uint8(2), op.LenBytes)
	assert.Equal(t, kOpLoadImm, op.Uops[0].Kind)
	assert.Equal(t, int32(0x80), op.Uops[0].Value1)
}

func TestEngineRunsLDASTAAcrossBlock(t *testing.T) {
	e, state, bus := newTestEngine()
	state.PC = 0x1000
	load(bus, 0x1000, cpu.LDA_IMM, 0x42)
	load(bus, 0x1002, cpu.STA_ABS, 0x00, 0x30)
	load(bus, 0x1005, cpu.NOP) // keeps the block from immediately re-decoding past RAM we didn't init

	e.Step()
	assert.Equal(t, uint8(0x42), state.A)
	assert.Equal(t, uint16(0x1002), state.PC)

	e.Step()
	assert.Equal(t, uint8(0x42), bus.Read(0x3000))
	assert.Equal(t, uint16(0x1005), state.PC)
}

func TestEngineFallsBackToInterpreterForUnspecializedOpcode(t *testing.T) {
	e, state, bus := newTestEngine()
	state.PC = 0x1000
	// TAX isn't in the decoder's specialized subset; it must still execute
	// correctly via the interpreter fallback.
	load(bus, 0x1000, cpu.TAX)
	state.A = 0x55

	cycles := e.Step()
	assert.Equal(t, uint8(2), cycles)
	assert.Equal(t, uint8(0x55), state.X)
	assert.Equal(t, uint16(0x1001), state.PC)
}

func TestEngineBranchEndsBlockAndRetargetsPC(t *testing.T) {
	e, state, bus := newTestEngine()
	state.PC = 0x1000
	load(bus, 0x1000, cpu.LDA_IMM, 0x00) // sets Z
	load(bus, 0x1002, cpu.BEQ, 0x05)     // branch target: 0x1002+2+5 = 0x1009

	e.Step() // LDA
	e.Step() // BEQ, taken
	assert.Equal(t, uint16(0x1009), state.PC)
}

func TestSelfModifyingStoreInvalidatesCachedBlock(t *testing.T) {
	e, state, bus := newTestEngine()

	// First block: LDA #$11 at 0x2000, establishing a cached compilation.
	state.PC = 0x2000
	load(bus, 0x2000, cpu.LDA_IMM, 0x11)
	load(bus, 0x2002, cpu.NOP)
	e.Step()
	assert.Equal(t, uint8(0x11), state.A)

	// A second block stores a new immediate operand over the first
	// instruction's operand byte, then execution returns to 0x2000: the
	// stale cached block (which captured the old 0x11 operand at compile
	// time) must not be reused.
	state.PC = 0x3000
	load(bus, 0x3000, cpu.LDA_IMM, 0x22)
	load(bus, 0x3002, cpu.STA_ABS, 0x01, 0x20) // store A into 0x2001, LDA #$11's operand byte
	e.Step()
	e.Step()
	assert.Equal(t, uint8(0x22), bus.Read(0x2001))

	state.PC = 0x2000
	e.Step()
	assert.Equal(t, uint8(0x22), state.A, "recompiled block must see the freshly written operand")
}

func TestOptimizeBlockFoldsImmediateLoadFlagsAtCompileTime(t *testing.T) {
	bus := &flatBus{}
	load(bus, 0x1000, cpu.LDA_IMM, 0x00)
	op := Decode(0x1000, bus)
	OptimizeBlock([]*Opcode{op})

	assert.Equal(t, kOpSetFlagsConst, op.Uops[2].Kind)
	assert.Equal(t, int32(1), op.Uops[2].Value1) // zero
	assert.Equal(t, int32(0), op.Uops[2].Value2) // not negative
}

func TestOptimizeBlockEliminatesOverwrittenFlagWrite(t *testing.T) {
	bus := &flatBus{}
	load(bus, 0x1000, cpu.LDA_IMM, 0x01)
	load(bus, 0x1002, cpu.INX)
	first := Decode(0x1000, bus)
	second := Decode(0x1002, bus)

	ops := []*Opcode{first, second}
	OptimizeBlock(ops)

	// first's flag-setting uop (now constant-folded) is immediately
	// overwritten by INX's own flags, so it must have been eliminated.
	assert.Equal(t, kOpNop, first.Uops[2].Kind)
	assert.Equal(t, kOpFlagsNZFromScratch, second.Uops[1].Kind)
}

func TestOptimizeBlockFoldsClcAdcIntoKnownCarryAdd(t *testing.T) {
	bus := &flatBus{}
	load(bus, 0x1000, cpu.CLC)
	load(bus, 0x1001, cpu.ADC_IMM, 0x20)
	clc := Decode(0x1000, bus)
	adc := Decode(0x1001, bus)

	ops := []*Opcode{clc, adc}
	OptimizeBlock(ops)

	assert.Equal(t, kOpNop, clc.Uops[0].Kind, "CLC's own carry-set is redundant once folded into ADD")
	assert.Equal(t, kOpALUAddKnownCarry, adc.Uops[1].Kind)
	assert.Equal(t, int32(0), adc.Uops[1].Value1, "CLC means the known carry is 0")
}

func TestOptimizeBlockFoldsSecSbcIntoKnownCarrySub(t *testing.T) {
	bus := &flatBus{}
	load(bus, 0x1000, cpu.SEC)
	load(bus, 0x1001, cpu.SBC_IMM, 0x01)
	sec := Decode(0x1000, bus)
	sbc := Decode(0x1001, bus)

	ops := []*Opcode{sec, sbc}
	OptimizeBlock(ops)

	assert.Equal(t, kOpNop, sec.Uops[0].Kind)
	assert.Equal(t, kOpALUSubKnownCarry, sbc.Uops[1].Kind)
	assert.Equal(t, int32(1), sbc.Uops[1].Value1, "SEC means the known carry is 1")
}

func TestOptimizeBlockFoldsKnownRegisterIncrement(t *testing.T) {
	bus := &flatBus{}
	load(bus, 0x1000, cpu.LDX_IMM, 0x05)
	load(bus, 0x1002, cpu.INX)
	ldx := Decode(0x1000, bus)
	inx := Decode(0x1002, bus)

	ops := []*Opcode{ldx, inx}
	OptimizeBlock(ops)

	wantLoad := Uop{Kind: kOpLoadImm, Value1: 0x06}
	assert.Equal(t, wantLoad, inx.Uops[0], "INX with a known source of 5 folds to an immediate load of 6")
	assert.Equal(t, kOpTransferToA, inx.Uops[1].Kind)
	assert.Equal(t, int32(regX), inx.Uops[1].Value1)
	assert.Equal(t, kOpSetFlagsConst, inx.Uops[2].Kind)
}

func TestOptimizeBlockEliminatesRedundantCarryWrite(t *testing.T) {
	bus := &flatBus{}
	load(bus, 0x1000, cpu.CLC)
	load(bus, 0x1001, cpu.SEC)
	first := Decode(0x1000, bus)
	second := Decode(0x1001, bus)

	ops := []*Opcode{first, second}
	OptimizeBlock(ops)

	assert.Equal(t, kOpNop, first.Uops[0].Kind, "CLC's carry is overwritten by SEC before anything reads it")
	assert.Equal(t, kOpSetCarryConst, second.Uops[0].Kind)
}

func TestOptimizeBlockEliminatesRedundantImmediateLoad(t *testing.T) {
	bus := &flatBus{}
	load(bus, 0x1000, cpu.LDX_IMM, 0x05)
	load(bus, 0x1002, cpu.LDX_IMM, 0x05)
	first := Decode(0x1000, bus)
	second := Decode(0x1002, bus)

	ops := []*Opcode{first, second}
	OptimizeBlock(ops)

	assert.Equal(t, kOpLoadImm, first.Uops[0].Kind, "first load establishes the known value")
	assert.Equal(t, kOpNop, second.Uops[0].Kind, "second load is redundant, X already holds 5")
	assert.Equal(t, kOpNop, second.Uops[1].Kind)
	assert.Equal(t, kOpNop, second.Uops[2].Kind)
}
