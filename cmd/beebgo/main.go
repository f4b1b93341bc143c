// Command beebgo is the SDL2 front end: it owns the host window, the
// keyboard-to-matrix translation, and the audio device, and drives
// bbc.Machine.RunFrame in a loop. Flag parsing, ROM loading and model
// selection are this binary's job, not the core's (spec.md §1's explicit
// non-goals), exactly as monitor/main.go's flag surface does for the
// bubbletea debugger.
//
// Grounded on the teacher's c64/c64/c64.go (NewC64/RenderFrame's SDL
// window/renderer/texture setup and event pump) and its Cleanup method;
// generalized from the C64's fixed 320x200 8-colour palette to the BBC's
// video.FrameWidth x video.FrameHeight physical-colour-index framebuffer,
// and extended with the audio device c64.go never opens (SID was stubbed
// out there).
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/newhook/beebgo/bbc"
	"github.com/newhook/beebgo/config"
	"github.com/newhook/beebgo/video"
)

// bbcPalette maps a ULA physical colour code (bits 0-2 red/green/blue, per
// this module's documented interpretation of the undocumented-in-the-pack
// GRB+flash nibble; bit 3 is flash, folded here into the same steady colour
// since flash timing is out of scope) to a packed ABGR8888 word matching
// the texture format below.
var bbcPalette = func() [16]uint32 {
	var p [16]uint32
	for i := 0; i < 16; i++ {
		r := uint32(0)
		if i&0x1 != 0 {
			r = 0xFF
		}
		g := uint32(0)
		if i&0x2 != 0 {
			g = 0xFF
		}
		b := uint32(0)
		if i&0x4 != 0 {
			b = 0xFF
		}
		p[i] = 0xFF000000 | b<<16 | g<<8 | r
	}
	return p
}()

// sdlKeyToCode translates an SDL keycode into the host key code
// bindDefaultKeyMap bound, or ok=false for keys with no BBC equivalent.
func sdlKeyToCode(sym sdl.Keycode) (uint8, bool) {
	switch {
	case sym >= sdl.K_a && sym <= sdl.K_z:
		return uint8('A' + (sym - sdl.K_a)), true
	case sym >= sdl.K_0 && sym <= sdl.K_9:
		return uint8('0' + (sym - sdl.K_0)), true
	}
	switch sym {
	case sdl.K_MINUS:
		return '-', true
	case sdl.K_EQUALS:
		return '=', true
	case sdl.K_LEFTBRACKET:
		return '[', true
	case sdl.K_RIGHTBRACKET:
		return ']', true
	case sdl.K_SEMICOLON:
		return ';', true
	case sdl.K_QUOTE:
		return '\'', true
	case sdl.K_BACKSLASH:
		return '\\', true
	case sdl.K_COMMA:
		return ',', true
	case sdl.K_PERIOD:
		return '.', true
	case sdl.K_SLASH:
		return '/', true
	case sdl.K_SPACE:
		return ' ', true
	case sdl.K_BACKSPACE:
		return 129, true // keyboard.KeyBackspace
	case sdl.K_TAB:
		return 130, true // keyboard.KeyTab
	case sdl.K_RETURN:
		return 131, true // keyboard.KeyEnter
	case sdl.K_LCTRL:
		return 132, true // keyboard.KeyCtrlLeft
	case sdl.K_LSHIFT:
		return 133, true // keyboard.KeyShiftLeft
	case sdl.K_RSHIFT:
		return 134, true // keyboard.KeyShiftRight
	case sdl.K_CAPSLOCK:
		return 135, true // keyboard.KeyCapsLock
	case sdl.K_F10:
		return 136, true // keyboard.KeyF0
	case sdl.K_UP:
		return 146, true // keyboard.KeyArrowUp
	case sdl.K_DOWN:
		return 147, true // keyboard.KeyArrowDown
	case sdl.K_LEFT:
		return 148, true // keyboard.KeyArrowLeft
	case sdl.K_RIGHT:
		return 149, true // keyboard.KeyArrowRight
	case sdl.K_ESCAPE:
		return 128, true // keyEscape / keyboard.KeyEscape
	}
	return 0, false
}

// frontend owns every host resource the core itself has no business
// touching (spec.md §1): window, renderer, texture, audio device.
type frontend struct {
	machine *bbc.Machine

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	audioDev sdl.AudioDeviceID

	pixels     []byte
	audioBuf   []int16
	audioBytes []byte
	running    bool
}

func newFrontend(m *bbc.Machine) (*frontend, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}

	const fw, fh = video.FrameWidth, video.FrameHeight

	window, err := sdl.CreateWindow("beebgo",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(fw), int32(fh),
		sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(
		uint32(sdl.PIXELFORMAT_ABGR8888),
		sdl.TEXTUREACCESS_STREAMING,
		int32(fw), int32(fh))
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("create texture: %w", err)
	}

	desired := sdl.AudioSpec{
		Freq:     bbc.AudioSampleRateHz,
		Format:   sdl.AUDIO_S16LSB,
		Channels: 1,
		Samples:  1024,
	}
	dev, err := sdl.OpenAudioDevice("", false, &desired, nil, 0)
	if err != nil {
		// Audio is a resource transient (spec.md §7): run video-only rather
		// than failing the whole session over a missing audio device.
		fmt.Printf("warning: audio device unavailable: %v\n", err)
	} else {
		sdl.PauseAudioDevice(dev, false)
	}

	return &frontend{
		machine:  m,
		window:   window,
		renderer: renderer,
		texture:  texture,
		audioDev: dev,
		pixels:   make([]byte, fw*fh*4),
		audioBuf: make([]int16, 1024),
		running:  true,
	}, nil
}

func (f *frontend) close() {
	if f.audioDev != 0 {
		sdl.CloseAudioDevice(f.audioDev)
	}
	f.texture.Destroy()
	f.renderer.Destroy()
	f.window.Destroy()
	sdl.Quit()
}

// pumpEvents drains the SDL event queue, translating key events into the
// machine's keyboard matrix and quit events into f.running = false.
func (f *frontend) pumpEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			f.running = false
		case *sdl.KeyboardEvent:
			code, ok := sdlKeyToCode(e.Keysym.Sym)
			if !ok {
				continue
			}
			if e.State == sdl.PRESSED {
				f.machine.KeyDown(code)
			} else {
				f.machine.KeyUp(code)
			}
		}
	}
}

// present converts the renderer's physical-colour-index framebuffer to
// ABGR8888 and blits it, mirroring c64.go's RenderFrame pixel conversion
// loop against this module's 16-entry palette instead of the C64's fixed
// 16-colour table.
func (f *frontend) present() error {
	buf := f.machine.Renderer.Framebuffer
	for i, idx := range buf {
		colour := bbcPalette[idx&0x0F]
		off := i * 4
		binary.LittleEndian.PutUint32(f.pixels[off:off+4], colour)
	}

	if err := f.texture.Update(nil, unsafe.Pointer(&f.pixels[0]), video.FrameWidth*4); err != nil {
		return err
	}
	if err := f.renderer.Clear(); err != nil {
		return err
	}
	if err := f.renderer.Copy(f.texture, nil, nil); err != nil {
		return err
	}
	f.renderer.Present()
	return nil
}

// flushAudio drains whatever AudioRing has accumulated this frame onto the
// SDL audio device's queue.
func (f *frontend) flushAudio() {
	if f.audioDev == 0 {
		return
	}
	n := f.machine.Audio.PullInto(f.audioBuf)
	if n == 0 {
		return
	}
	if cap(f.audioBytes) < n*2 {
		f.audioBytes = make([]byte, n*2)
	}
	f.audioBytes = f.audioBytes[:n*2]
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(f.audioBytes[i*2:i*2+2], uint16(f.audioBuf[i]))
	}
	if err := sdl.QueueAudio(f.audioDev, f.audioBytes); err != nil {
		fmt.Printf("warning: audio queue: %v\n", err)
	}
}

func (f *frontend) runFrame() error {
	f.pumpEvents()
	f.machine.RunFrame()
	f.flushAudio()
	return f.present()
}

func main() {
	osROMPath := flag.String("rom", "", "OS ROM image (required)")
	modelFlag := flag.String("model", "b", "Machine model: b, b+, master")
	sidewaysPath := flag.String("rom15", "", "Sideways ROM image to load into bank 15 (e.g. BASIC)")
	fastTape := flag.Bool("fasttape", false, "Run tape I/O at host speed instead of real baud rate")
	flag.Parse()

	model, err := config.ParseModel(*modelFlag)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	opts := config.Default()
	opts.Model = model
	opts.FastTape = *fastTape

	m := bbc.New(opts)

	if *osROMPath == "" {
		fmt.Println("error: -rom is required")
		os.Exit(1)
	}
	osROM, err := os.ReadFile(*osROMPath)
	if err != nil {
		fmt.Printf("error reading OS ROM: %v\n", err)
		os.Exit(1)
	}
	if err := m.Memory.LoadOSROM(osROM); err != nil {
		fmt.Printf("error loading OS ROM: %v\n", err)
		os.Exit(1)
	}

	if *sidewaysPath != "" {
		data, err := os.ReadFile(*sidewaysPath)
		if err != nil {
			fmt.Printf("error reading sideways ROM: %v\n", err)
			os.Exit(1)
		}
		if err := m.Memory.LoadSidewaysROM(15, data); err != nil {
			fmt.Printf("error loading sideways ROM: %v\n", err)
			os.Exit(1)
		}
	}

	m.Reset()

	fe, err := newFrontend(m)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	defer fe.close()

	for fe.running {
		if err := fe.runFrame(); err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
	}
}
