package bbc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/newhook/beebgo/acia"
	"github.com/newhook/beebgo/config"
	"github.com/newhook/beebgo/memory"
	"github.com/newhook/beebgo/via"
	"github.com/newhook/beebgo/video"
)

// snapshotSignature is spec.md §6's 8-byte magic identifying a save-state
// file.
var snapshotSignature = [8]byte{'B', 'E', 'M', 'S', 'N', 'A', 'P', '1'}

// registerFile is the persisted form of cpu.State's externally visible
// registers (spec.md §6: "register file (A,X,Y,flags,S,PC,NMI,IRQ,cycles)").
// Flags are packed the same way PackFlags does for a pushed status byte;
// NMI/IRQ persist the raw edge-latch and source-mask fields rather than a
// single combined bit, so a loaded snapshot reproduces exactly which
// peripheral was asserting IRQ.
type registerFile struct {
	A, X, Y uint8
	Flags   uint8
	S       uint8
	PC      uint16
	NMI     uint8 // 0 or 1: cpu.State.NMIPending()
	IRQ     uint8 // cpu.State.IRQSources() bitmask
	Cycles  uint64
}

// Save serializes the complete machine state into spec.md §6's fixed
// binary layout: signature, model, register file, ROMSEL/ACCCON, main RAM,
// sideways ROM area, per-VIA blocks, ACIA+serial-ULA blocks, video ULA
// block, CRTC block, CMOS block, ADC block. All multi-byte integers are little-endian, per that
// section's closing sentence.
func (m *Machine) Save() ([]byte, error) {
	var buf bytes.Buffer

	if _, err := buf.Write(snapshotSignature[:]); err != nil {
		return nil, err
	}
	if err := buf.WriteByte(uint8(m.Model)); err != nil {
		return nil, err
	}

	regs := registerFile{
		A: m.State.A, X: m.State.X, Y: m.State.Y,
		Flags: m.State.PackFlags(false),
		S:     m.State.S,
		PC:    m.State.PC,
		IRQ:   m.State.IRQSources(),
		Cycles: m.State.Cycles,
	}
	if m.State.NMIPending() {
		regs.NMI = 1
	}
	if err := binary.Write(&buf, binary.LittleEndian, regs); err != nil {
		return nil, err
	}

	if err := buf.WriteByte(m.Memory.ROMSEL()); err != nil {
		return nil, err
	}
	if err := buf.WriteByte(m.Memory.ACCCON()); err != nil {
		return nil, err
	}

	// 64 KiB main RAM: the machine only has 32 KiB of physical main-RAM
	// chips (memory.SidewaysBase); the upper half is zero-padded rather
	// than omitted, so the file layout matches spec.md §6's literal "64
	// KiB main RAM" even though only the lower half holds real content.
	var ram64 [0x10000]byte
	copy(ram64[:], m.Memory.RAM()[:])
	if _, err := buf.Write(ram64[:]); err != nil {
		return nil, err
	}

	for slot := 0; slot < memory.NumSidewaysSlots; slot++ {
		if _, err := buf.Write(m.Memory.Sideways(slot)[:]); err != nil {
			return nil, err
		}
	}

	for _, v := range []*via.VIA{m.SystemVIA, m.UserVIA} {
		if err := binary.Write(&buf, binary.LittleEndian, v.SaveSnapshot()); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(&buf, binary.LittleEndian, m.ACIA.SaveSnapshot()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, m.SerialULA.SaveSnapshot()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, m.ULA.SaveSnapshot()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, m.CRTC.SaveSnapshot()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, m.CMOS.SaveSnapshot()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, m.ADC.SaveSnapshot()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Load restores a complete machine state previously produced by Save. It
// does not reload ROM images: a snapshot's sideways ROM area is its own
// copy of bank content (which may include sideways RAM the session has
// modified), independent of whatever files cmd/beebgo originally loaded.
func (m *Machine) Load(data []byte) error {
	r := bytes.NewReader(data)

	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return fmt.Errorf("bbc: reading snapshot signature: %w", err)
	}
	if sig != snapshotSignature {
		return fmt.Errorf("bbc: not a snapshot file (bad signature %q)", sig)
	}

	modelByte, err := readByte(r)
	if err != nil {
		return err
	}
	m.Model = config.Model(modelByte)

	var regs registerFile
	if err := binary.Read(r, binary.LittleEndian, &regs); err != nil {
		return fmt.Errorf("bbc: reading register file: %w", err)
	}
	m.State.A, m.State.X, m.State.Y = regs.A, regs.X, regs.Y
	m.State.UnpackFlags(regs.Flags)
	m.State.S = regs.S
	m.State.PC = regs.PC
	m.State.SetNMIPending(regs.NMI != 0)
	m.State.SetIRQSources(regs.IRQ)
	m.State.Cycles = regs.Cycles

	romsel, err := readByte(r)
	if err != nil {
		return err
	}
	acccon, err := readByte(r)
	if err != nil {
		return err
	}
	m.Memory.SetROMSEL(romsel)
	m.Memory.SetACCCON(acccon)

	var ram64 [0x10000]byte
	if _, err := io.ReadFull(r, ram64[:]); err != nil {
		return fmt.Errorf("bbc: reading main RAM: %w", err)
	}
	copy(m.Memory.RAM()[:], ram64[:memory.SidewaysBase])

	for slot := 0; slot < memory.NumSidewaysSlots; slot++ {
		if _, err := io.ReadFull(r, m.Memory.Sideways(slot)[:]); err != nil {
			return fmt.Errorf("bbc: reading sideways slot %d: %w", slot, err)
		}
	}

	for _, v := range []*via.VIA{m.SystemVIA, m.UserVIA} {
		var snap via.Snapshot
		if err := binary.Read(r, binary.LittleEndian, &snap); err != nil {
			return fmt.Errorf("bbc: reading VIA snapshot: %w", err)
		}
		v.RestoreSnapshot(snap)
	}

	var aciaSnap acia.Snapshot
	if err := binary.Read(r, binary.LittleEndian, &aciaSnap); err != nil {
		return fmt.Errorf("bbc: reading ACIA snapshot: %w", err)
	}
	m.ACIA.RestoreSnapshot(aciaSnap)

	var serialSnap acia.SerialULASnapshot
	if err := binary.Read(r, binary.LittleEndian, &serialSnap); err != nil {
		return fmt.Errorf("bbc: reading serial ULA snapshot: %w", err)
	}
	m.SerialULA.RestoreSnapshot(serialSnap)

	var ulaSnap video.Snapshot
	if err := binary.Read(r, binary.LittleEndian, &ulaSnap); err != nil {
		return fmt.Errorf("bbc: reading video ULA snapshot: %w", err)
	}
	m.ULA.RestoreSnapshot(ulaSnap)

	var crtcSnap video.CRTCSnapshot
	if err := binary.Read(r, binary.LittleEndian, &crtcSnap); err != nil {
		return fmt.Errorf("bbc: reading CRTC snapshot: %w", err)
	}
	m.CRTC.RestoreSnapshot(crtcSnap)

	var cmosSnap CMOSSnapshot
	if err := binary.Read(r, binary.LittleEndian, &cmosSnap); err != nil {
		return fmt.Errorf("bbc: reading CMOS snapshot: %w", err)
	}
	m.CMOS.RestoreSnapshot(cmosSnap)

	var adcSnap ADCSnapshot
	if err := binary.Read(r, binary.LittleEndian, &adcSnap); err != nil {
		return fmt.Errorf("bbc: reading ADC snapshot: %w", err)
	}
	m.ADC.RestoreSnapshot(adcSnap)

	return nil
}

func readByte(r *bytes.Reader) (uint8, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("bbc: reading snapshot: %w", err)
	}
	return b, nil
}
