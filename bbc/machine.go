package bbc

import (
	"github.com/newhook/beebgo/acia"
	"github.com/newhook/beebgo/config"
	"github.com/newhook/beebgo/cpu"
	"github.com/newhook/beebgo/fdc"
	"github.com/newhook/beebgo/inturbo"
	"github.com/newhook/beebgo/jit"
	"github.com/newhook/beebgo/keyboard"
	"github.com/newhook/beebgo/memory"
	"github.com/newhook/beebgo/via"
	"github.com/newhook/beebgo/video"
	"github.com/newhook/beebgo/wheel"
)

// EngineKind selects which of the three execution engines (spec.md §4.2)
// Machine drives the CPU with. Swapping this mid-run is externally
// invisible, per that section's contract — Machine.SetEngine does exactly
// that, with no other state to migrate.
type EngineKind int

const (
	EngineInterpreter EngineKind = iota
	EngineInturbo
	EngineJIT
)

// stepper is the narrow interface every execution engine satisfies: one
// instruction per call, returning its cycle cost.
type stepper interface {
	Step() uint8
}

// IC32 bit positions, the system VIA port B addressable latch (a 74LS259)
// that gates sound, the CMOS/RTC chip, keyboard scanning and the caps/shift
// lock LEDs. Bit assignments follow the documented Model B/Master wiring;
// bits 1 and 2 match cmos.c's k_cmos_IC32_read/k_cmos_IC32_data exactly,
// which is the one part of this layout the retrieved sources pin down.
// CPUClockHz is the fixed 2MHz instruction clock every model shares;
// AudioSampleRateHz is the rate AudioRing is paced to, chosen to match the
// 44100Hz go-sdl2 opens its audio device at in cmd/beebgo.
const (
	CPUClockHz        = 2000000
	AudioSampleRateHz = 44100
)

const (
	ic32SoundWriteEnable uint8 = 1 << 0
	ic32CMOSRead         uint8 = 1 << 1
	ic32CMOSData         uint8 = 1 << 2
	ic32KeyboardEnable   uint8 = 1 << 3
	ic32ScreenAddrBit0   uint8 = 1 << 4
	ic32ScreenAddrBit1   uint8 = 1 << 5
	ic32CapsLockLED      uint8 = 1 << 6
	ic32ShiftLockLED     uint8 = 1 << 7
)

// Machine is a complete BBC Micro / Master 128 class machine: the shared
// timing wheel and architectural state, the 64 KiB memory map with its
// sideways ROM bank and MMIO windows, one of the three interchangeable
// execution engines, two VIAs, the video and serial peripheral clusters,
// and the supplemented keyboard/FDC/CMOS/ADC peripherals.
//
// Grounded on the teacher's c64.C64 top-level struct (it owns the CPU,
// memory, CIAs and VIC and wires their callbacks together in its
// constructor); generalized from the C64's fixed two-CIA, one-VIC layout
// to the BBC's two-VIA, CRTC+ULA+serial-ULA layout, with the addition of
// the ROMSEL/ACCCON/IC32 glue the C64 has no equivalent of.
type Machine struct {
	Wheel  *wheel.Wheel
	State  *cpu.State
	Memory *memory.Map

	SystemVIA *via.VIA
	UserVIA   *via.VIA

	CRTC     *video.CRTC
	ULA      *video.ULA
	Renderer *video.Renderer

	ACIA      *acia.ACIA
	SerialULA *acia.SerialULA

	Keyboard *keyboard.Matrix
	FDC      *fdc.Controller
	CMOS     *CMOS
	ADC      *ADC
	Audio    *AudioRing

	jitEngine     *jit.Engine
	inturboEngine *inturbo.Engine
	interp        *cpu.Interpreter
	engine        stepper
	engineKind    EngineKind

	Model config.Model

	ic32           uint8
	lastPortAWrite uint8

	// videoTickAccum implements the fractional 1MHz/2MHz character-clock
	// ratio against the CPU's fixed 2MHz instruction clock: spec.md §4.4
	// doesn't name a ratio explicitly, so ticking the renderer once per CPU
	// cycle in 2MHz modes and once per *other* CPU cycle in 1MHz modes
	// (tracked here) is this module's own documented interpretation.
	videoTickAccum int

	// audioTickAccum paces AudioRing pushes against the CPU's fixed 2MHz
	// clock down to AudioSampleRateHz, the same fractional-accumulator
	// technique videoTickAccum uses for the 1MHz/2MHz character clock.
	audioTickAccum int

	// DebugHook, if set, is called with the PC of every retired
	// instruction, regardless of engine (spec.md §4.5.7).
	DebugHook func(pc uint16)
}

// New builds a Machine from parsed options, wiring every peripheral's
// callbacks (IRQ sources, CA1/CA2/CB1/CB2 lines, frame-ready, transmit-
// ready) the way bbc_options-driven construction does in the original.
// Callers must still load an OS ROM (LoadOSROM) and any sideways ROMs
// before running it.
func New(opts config.Options) *Machine {
	m := &Machine{
		Wheel:  wheel.New(),
		State:  cpu.NewState(),
		Memory: memory.New(),
		Model:  opts.Model,
	}

	m.SystemVIA = via.New(m.Wheel, m.State, cpu.IRQSourceSystemVIA)
	m.UserVIA = via.New(m.Wheel, m.State, cpu.IRQSourceUserVIA)

	m.CRTC = video.NewCRTC()
	m.ULA = video.NewULA()
	m.Renderer = video.NewRenderer(m.CRTC, m.ULA, m.Memory.Read)
	m.Renderer.InterlaceWobble = opts.VideoInterlaceWobble

	m.ACIA = acia.New(m.State)
	m.SerialULA = acia.NewSerialULA(m.ACIA, opts.FastTape)

	m.Keyboard = keyboard.New()
	bindDefaultKeyMap(m.Keyboard)
	m.FDC = fdc.New()
	m.CMOS = NewCMOS()
	m.ADC = NewADC(m.SystemVIA)
	m.Audio = NewAudioRing()

	m.wirePorts()
	m.wireMMIO()

	m.interp = cpu.NewInterpreter(m.State, m.Memory, m.Wheel)
	m.inturboEngine = inturbo.NewEngine(m.State, m.Memory, m.Wheel)
	m.jitEngine = jit.NewEngine(m.State, m.Memory, m.Wheel)
	m.SetEngine(EngineInterpreter)

	m.State.Reset(m.Memory)

	return m
}

// SetEngine swaps the active execution engine. Per spec.md §4.2's contract
// this never changes observable behavior — all three share the same
// cpu.State, Bus and wheel.Wheel.
func (m *Machine) SetEngine(kind EngineKind) {
	m.engineKind = kind
	switch kind {
	case EngineInturbo:
		m.inturboEngine.DebugHook = m.runDebugHook
		m.engine = m.inturboEngine
	case EngineJIT:
		m.jitEngine.DebugHook = m.runDebugHook
		m.engine = m.jitEngine
	default:
		m.interp.DebugHook = m.runDebugHook
		m.engine = m.interp
	}
}

func (m *Machine) runDebugHook(pc uint16) {
	if m.DebugHook != nil {
		m.DebugHook(pc)
	}
}

// Step runs exactly one CPU instruction on the active engine and ticks the
// video renderer the corresponding number of character clocks.
func (m *Machine) Step() uint8 {
	cycles := m.engine.Step()
	m.tickVideo(int(cycles))
	return cycles
}

// RunFrame steps the machine until the CRTC has produced one full frame
// (one VSYNC-to-VSYNC span), for the cmd/beebgo front end's per-frame host
// loop.
func (m *Machine) RunFrame() {
	done := false
	m.Renderer.OnFrameReady = func() { done = true }
	for !done {
		m.Step()
	}
}

// tickVideo advances the CRTC/renderer by the character clocks equivalent
// to cpuCycles CPU cycles, honoring the current mode's 1MHz/2MHz character
// clock via videoTickAccum.
func (m *Machine) tickVideo(cpuCycles int) {
	for i := 0; i < cpuCycles; i++ {
		if m.ULA.IsOneMHzMode() {
			m.videoTickAccum++
			if m.videoTickAccum < 2 {
				continue
			}
			m.videoTickAccum = 0
		}
		m.Renderer.Tick()
	}
	m.tickAudio(cpuCycles)
}

// tickAudio paces AudioRing pushes at AudioSampleRateHz against the fixed
// CPUClockHz instruction clock. No sound chip is modeled (spec.md §1's
// sound-synthesis non-goal), so every sample is silence; this still
// exercises the real producer/consumer handoff spec.md §4.6 describes, in
// the same monotonic emulated-time order a real sound chip's output would
// be pushed in.
func (m *Machine) tickAudio(cpuCycles int) {
	m.audioTickAccum += cpuCycles * AudioSampleRateHz
	for m.audioTickAccum >= CPUClockHz {
		m.audioTickAccum -= CPUClockHz
		m.Audio.PushSample(0)
	}
}

// setROMSEL selects a new sideways bank and flushes the JIT cache, since a
// bank switch can change what every address in the paged ROM window
// decodes to (spec.md §4.5's step 6: "ROM bank switches ... emit a
// write-invalidation").
func (m *Machine) setROMSEL(value uint8) {
	m.Memory.SetROMSEL(value)
	m.jitEngine.InvalidateROMSwitch()
}

// wirePorts wires the two VIAs' port readers, the CA1/CA2/CB1/CB2 lines,
// and the system VIA's ORB-write hook that drives IC32 and, through it,
// CMOS, the keyboard and the sound chip select — the BBC-specific glue the
// C64 teacher has no equivalent of (its CIAs drive the keyboard matrix and
// joystick ports directly, not through an intermediate addressable latch).
func (m *Machine) wirePorts() {
	m.SystemVIA.ReadPortA = m.readSystemPortA
	m.SystemVIA.ReadPortB = func() uint8 { return 0xFF }
	m.SystemVIA.OnWriteORB = m.onSystemWriteORB
	m.SystemVIA.OnWriteORA = func(value uint8) { m.lastPortAWrite = value }

	m.UserVIA.ReadPortA = func() uint8 { return 0xFF }
	m.UserVIA.ReadPortB = func() uint8 { return 0xFF }

	m.ACIA.TransmitReady = func() {
		// A byte written to the transmit data register drains instantly in
		// this emulator: there is no host serial/tape device consuming it
		// at real-world baud rate, matching spec.md §1's non-goal of
		// platform-specific I/O drivers. cmd/beebgo's serial plumbing, when
		// present, overrides this via direct field access.
	}

}

// onSystemWriteORB decodes an addressable-latch (IC32) write: bits 0-2
// select which IC32 output bit changes, bit 3 supplies its new value. It
// then re-evaluates every IC32-gated peripheral, mirroring
// cmos_update_external_inputs's "call on every port B write" contract.
func (m *Machine) onSystemWriteORB(value uint8) {
	bit := uint8(1) << (value & 0x07)
	if value&0x08 != 0 {
		m.ic32 |= bit
	} else {
		m.ic32 &^= bit
	}

	m.CMOS.UpdateExternalInputs(value, m.lastPortAWrite, m.ic32)
}

// readSystemPortA supplies the externally-driven bits of the system VIA's
// port A: when IC32's keyboard-enable bit is set, bit 7 reports whether the
// row/column last written to port A has a key held down (or, for row 0,
// whether any key in that column is held, the auto-scan convention
// keyboard_system_key_pressed's "row 0 not wired to interrupt" comment
// implies), with the low 7 bits echoing the write back unchanged.
func (m *Machine) readSystemPortA() uint8 {
	if m.ic32&ic32KeyboardEnable == 0 {
		return 0xFF
	}
	col := int(m.lastPortAWrite & 0x0F)
	row := int((m.lastPortAWrite >> 4) & 0x07)
	pressed := m.Keyboard.IsColumnPressed(col)
	if row != 0 {
		pressed = m.Keyboard.IsPressed(row, col)
	}
	ret := m.lastPortAWrite & 0x7F
	if pressed {
		ret |= 0x80
	}
	return ret
}

// wireMMIO registers every peripheral's fixed-address MMIO window.
func (m *Machine) wireMMIO() {
	m.Memory.MapMMIO(AddrCRTC, AddrCRTC+7, crtcMMIO{m.CRTC})
	m.Memory.MapMMIO(AddrACIA, AddrACIA+7, aciaMMIO{m.ACIA})
	m.Memory.MapMMIO(AddrSerialULA, AddrSerialULA+7, serialULAMMIO{m.SerialULA})
	m.Memory.MapMMIO(AddrADC, AddrADC+7, adcMMIO{m.ADC})
	m.Memory.MapMMIO(AddrVideoULA, AddrVideoULA+7, videoULAMMIO{m.ULA})
	m.Memory.MapMMIO(AddrFDC, AddrFDC+7, m.FDC)
	m.Memory.MapMMIO(AddrROMSEL, AddrROMSEL+3, romselMMIO{m})
	if m.Model == config.ModelMaster128 {
		// ACCCON (HAZEL/LYNNE shadow-RAM paging) exists only on the Master;
		// Model B/B+ software that probes &FE34 should see the unmapped-
		// MMIO fallback (0xFF on read, dropped write), not a live latch.
		m.Memory.MapMMIO(AddrACCCON, AddrACCCON+3, acconMMIO{m})
	}
	m.Memory.MapMMIO(AddrSystemVIA, AddrSystemVIA+31, viaMMIO{m.SystemVIA})
	m.Memory.MapMMIO(AddrUserVIA, AddrUserVIA+31, viaMMIO{m.UserVIA})
}

// keyEscape is the host key code this module reserves for BREAK, routed
// straight to Reset rather than into the matrix — BREAK has no matrix
// position on real hardware either, per keyboard.c's separate BreakHeld
// tracking.
const keyEscape = 128

// KeyDown reports a host key-down event by key code (see the keyboard
// package's Key* constants). BREAK (keyEscape) pulses Reset instead of
// entering the matrix.
func (m *Machine) KeyDown(code uint8) {
	if code == keyEscape {
		m.Keyboard.BreakHeld = true
		m.Reset()
		return
	}
	m.Keyboard.KeyPressed(code)
}

// KeyUp reports a host key-up event.
func (m *Machine) KeyUp(code uint8) {
	if code == keyEscape {
		m.Keyboard.BreakHeld = false
		return
	}
	m.Keyboard.KeyReleased(code)
}

// Reset reloads PC from the reset vector without otherwise disturbing
// memory contents, matching a BBC Micro's BREAK key.
func (m *Machine) Reset() {
	m.State.Reset(m.Memory)
}
