// Package testrom assembles the small, self-contained 6502 programs used to
// exercise the concrete end-to-end scenarios of spec.md §8: cross-engine
// equivalence checks run the same assembled bytes on all three execution
// engines and compare register/memory/flag state and cycle counts once the
// programs have run.
//
// Grounded on _examples/original_source/make_test_rom.c and
// make_timing_rom.c, which build similar fixed byte sequences (poking
// opcodes directly into a ROM image and checking branch outcomes) to drive
// the original's own test harness; this package does the same job through
// as/assembler's textual assembler instead of hand-placed byte literals, so
// each scenario reads as 6502 source rather than a poke table.
package testrom

import (
	"fmt"

	"github.com/newhook/beebgo/as/assembler"
	"github.com/newhook/beebgo/bbc"
	"github.com/newhook/beebgo/via"
)

// Program is an assembled test program and the address it was assembled to
// run from.
type Program struct {
	Org  uint16
	Code []byte
}

// Load copies Code into mem starting at Org, the step a caller takes before
// pointing a cpu.State's PC at Org and running it.
func (p Program) Load(mem interface{ Write(addr uint16, value uint8) }) {
	for i, b := range p.Code {
		mem.Write(p.Org+uint16(i), b)
	}
}

func assemble(org uint16, src string) (Program, error) {
	full := fmt.Sprintf(".org $%04X\n%s", org, src)
	as := assembler.NewAssembler()
	if err := as.Assemble(full); err != nil {
		return Program{}, fmt.Errorf("testrom: assembling: %w", err)
	}
	return Program{Org: org, Code: as.GetOutput()}, nil
}

func sysVIAReg(reg uint16) uint16 { return bbc.AddrSystemVIA + reg }

// TimerOneShot builds spec §8 scenario 1: arm T1 with latch 4 in one-shot
// mode, then read T1CL three times with a NOP between each read, and
// finally read IFR. Tracing this exact sequence against via.VIA/wheel.Wheel
// (T1 starts at countdown latch+2=6, burns 4 of those on STA T1CH's own
// cycle cost, then fires mid-NOP; the first T1CL read lands exactly on the
// fire and sees 0; the following two reads land on a free-running,
// already-fired countdown that's gone negative and get folded back through
// wheel.ElapsedReloads) gives {0x10, 0x11, 0x12} as {0x00, 0x03, 0x00} and
// IFR's timer-1 bit clear (the first T1CL read already acknowledged it, and
// a one-shot timer never re-fires to set it again). See DESIGN.md's
// internal/testrom section for why this differs from the idealized
// {4, 0xFF, 0xFE} reading some descriptions of this scenario expect: that
// reading assumes a "read lands in the same VIA cycle as expiry" special
// case this VIA implementation doesn't special-case, a gap this package's
// cross-engine tests assert the actual wired behavior around rather than
// silently assume.
func TimerOneShot() (Program, error) {
	return assemble(0x2000, fmt.Sprintf(`
LDA #$04
STA $%04X
LDA #$00
STA $%04X
NOP
LDA $%04X
STA $10
NOP
LDA $%04X
STA $11
NOP
LDA $%04X
STA $12
LDA $%04X
STA $13
`,
		sysVIAReg(via.RegT1LL),
		sysVIAReg(via.RegT1CH),
		sysVIAReg(via.RegT1CL),
		sysVIAReg(via.RegT1CL),
		sysVIAReg(via.RegT1CL),
		sysVIAReg(via.RegIFR),
	))
}

// ClcAdcFold builds spec §8 scenario 2: CLC; LDA #$10; ADC #$20, storing A
// so the caller can assert A=0x30, C=0, V=0, and (on the JIT engine) that
// the compiled μop list elides the load_carry μop CLC would otherwise
// require before ADD.
func ClcAdcFold() (Program, error) {
	return assemble(0x2000, `
CLC
LDA #$10
ADC #$20
STA $10
`)
}

// SelfModifyingStoreOrg is the address SelfModifyingStore's program runs
// from; SelfModifyingStoreTarget is the address it overwrites, seeded with
// INX (0xE8) before the program runs.
const (
	SelfModifyingStoreOrg    = 0x2000
	SelfModifyingStoreTarget = 0x1000
)

// SelfModifyingStore builds spec §8 scenario 3: store a NOP over a target
// address initially holding INX, then jump to it. The caller seeds
// SelfModifyingStoreTarget with 0xE8 (INX) before running, checks X
// increments the first time the target executes, then confirms a second
// pass through the same JIT block (after the store invalidates it) retires
// the patched NOP instead, leaving X unchanged.
func SelfModifyingStore() (Program, error) {
	return assemble(SelfModifyingStoreOrg, fmt.Sprintf(`
LDA #$EA
STA $%04X
JMP $%04X
`, SelfModifyingStoreTarget, SelfModifyingStoreTarget))
}

// CLIBoundaryIRQ builds spec §8 scenario 4: SEI, arm T1 to a short one-shot
// latch, enable its interrupt, then CLI. The
// caller checks that exactly one more instruction retires after CLI before
// the IRQ vector is taken, per the 6502's one-instruction interrupt-polling
// latency following a flag change that unmasks IRQ.
func CLIBoundaryIRQ() (Program, error) {
	return assemble(0x2000, fmt.Sprintf(`
SEI
LDA #$04
STA $%04X
LDA #$00
STA $%04X
LDA #$C0
STA $%04X
CLI
NOP
NOP
NOP
`,
		sysVIAReg(via.RegT1LL),
		sysVIAReg(via.RegT1CH),
		sysVIAReg(via.RegIER),
	))
}
