package bbc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhook/beebgo/config"
)

func TestNewWiresUpEveryPeripheral(t *testing.T) {
	m := New(config.Default())
	assert.NotNil(t, m.State)
	assert.NotNil(t, m.Memory)
	assert.NotNil(t, m.SystemVIA)
	assert.NotNil(t, m.UserVIA)
	assert.NotNil(t, m.CRTC)
	assert.NotNil(t, m.ULA)
	assert.NotNil(t, m.Renderer)
	assert.NotNil(t, m.ACIA)
	assert.NotNil(t, m.SerialULA)
	assert.NotNil(t, m.Keyboard)
	assert.NotNil(t, m.FDC)
	assert.NotNil(t, m.CMOS)
	assert.NotNil(t, m.ADC)
	assert.NotNil(t, m.Audio)
}

func TestStepRetiresOneInstructionRegardlessOfEngine(t *testing.T) {
	for _, kind := range []EngineKind{EngineInterpreter, EngineInturbo, EngineJIT} {
		m := New(config.Default())
		m.SetEngine(kind)
		before := m.State.PC
		cycles := m.Step()
		assert.NotZero(t, cycles)
		assert.NotEqual(t, before, m.State.PC, "PC should advance for engine %v", kind)
	}
}

func TestDebugHookObservesEveryRetiredInstruction(t *testing.T) {
	m := New(config.Default())
	var retired int
	m.DebugHook = func(pc uint16) { retired++ }
	m.Step()
	m.Step()
	assert.Equal(t, 2, retired)
}

func TestSetEngineNeverResetsArchitecturalState(t *testing.T) {
	m := New(config.Default())
	m.State.A = 0x42
	m.SetEngine(EngineJIT)
	assert.Equal(t, uint8(0x42), m.State.A)
	m.SetEngine(EngineInturbo)
	assert.Equal(t, uint8(0x42), m.State.A)
}

func TestKeyDownEscapeResetsInsteadOfEnteringMatrix(t *testing.T) {
	m := New(config.Default())
	m.State.PC = 0x1234
	m.KeyDown(keyEscape)
	assert.NotEqual(t, uint16(0x1234), m.State.PC, "BREAK should reload PC from the reset vector")
	assert.True(t, m.Keyboard.BreakHeld)

	m.KeyUp(keyEscape)
	assert.False(t, m.Keyboard.BreakHeld)
}

func TestRunFrameStopsAtFrameBoundary(t *testing.T) {
	m := New(config.Default())
	require.NotPanics(t, func() { m.RunFrame() })
}
