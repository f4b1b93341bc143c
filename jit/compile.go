package jit

import "github.com/newhook/beebgo/cpu"

// Branch predicate ids for kOpBranch's Value1, one per conditional branch
// mnemonic the decoder recognizes.
const (
	predCC = iota
	predCS
	predEQ
	predMI
	predNE
	predPL
	predVC
	predVS
)

// Decode reads the instruction at addr from bus and compiles it into an
// Opcode: a micro-op sequence for the representative subset of addressing
// modes and instruction families this decoder specializes (load/store/
// compare/ADC/SBC/INC/DEC/branches), or a single kOpInterp uop for anything
// else. It never advances any PC of its own — addr is the instruction's own
// address, and the caller (Engine) only uses the returned LenBytes to
// compute the address of the next instruction once this one retires.
func Decode(addr uint16, bus cpu.Bus) *Opcode {
	opcode := bus.Read(addr)

	switch opcode {
	case cpu.LDA_IMM:
		return loadImm(addr, bus, regA)
	case cpu.LDA_ZP:
		return loadZP(addr, bus, regA)
	case cpu.LDA_ABS:
		return loadAbs(addr, bus, regA)
	case cpu.LDA_ABX:
		return loadAbsIndexed(addr, bus, regA, kOpLoadAddrX)
	case cpu.LDA_ABY:
		return loadAbsIndexed(addr, bus, regA, kOpLoadAddrY)

	case cpu.LDX_IMM:
		return loadImm(addr, bus, regX)
	case cpu.LDX_ZP:
		return loadZP(addr, bus, regX)
	case cpu.LDX_ABS:
		return loadAbs(addr, bus, regX)

	case cpu.LDY_IMM:
		return loadImm(addr, bus, regY)
	case cpu.LDY_ZP:
		return loadZP(addr, bus, regY)
	case cpu.LDY_ABS:
		return loadAbs(addr, bus, regY)

	case cpu.STA_ZP:
		return storeZP(addr, bus, regA)
	case cpu.STA_ABS:
		return storeAbs(addr, bus, regA)
	case cpu.STX_ZP:
		return storeZP(addr, bus, regX)
	case cpu.STX_ABS:
		return storeAbs(addr, bus, regX)
	case cpu.STY_ZP:
		return storeZP(addr, bus, regY)
	case cpu.STY_ABS:
		return storeAbs(addr, bus, regY)

	case cpu.ADC_IMM:
		return aluImm(addr, bus, kOpALUAdd, 2)
	case cpu.ADC_ABS:
		return aluAbs(addr, bus, kOpALUAdd, 4)
	case cpu.SBC_IMM:
		return aluImm(addr, bus, kOpALUSub, 2)
	case cpu.SBC_ABS:
		return aluAbs(addr, bus, kOpALUSub, 4)

	case cpu.AND_IMM:
		return aluImm(addr, bus, kOpALUAnd, 2)
	case cpu.AND_ABS:
		return aluAbs(addr, bus, kOpALUAnd, 4)
	case cpu.ORA_IMM:
		return aluImm(addr, bus, kOpALUOr, 2)
	case cpu.ORA_ABS:
		return aluAbs(addr, bus, kOpALUOr, 4)
	case cpu.EOR_IMM:
		return aluImm(addr, bus, kOpALUXor, 2)
	case cpu.EOR_ABS:
		return aluAbs(addr, bus, kOpALUXor, 4)

	case cpu.CMP_IMM:
		return compareImm(addr, bus, regA, 2)
	case cpu.CPX_IMM:
		return compareImm(addr, bus, regX, 2)
	case cpu.CPY_IMM:
		return compareImm(addr, bus, regY, 2)

	case cpu.INX:
		return incReg(addr, regX, +1)
	case cpu.INY:
		return incReg(addr, regY, +1)
	case cpu.DEX:
		return incReg(addr, regX, -1)
	case cpu.DEY:
		return incReg(addr, regY, -1)

	case cpu.BEQ:
		return branch(addr, bus, predEQ)
	case cpu.BNE:
		return branch(addr, bus, predNE)
	case cpu.BCC:
		return branch(addr, bus, predCC)
	case cpu.BCS:
		return branch(addr, bus, predCS)
	case cpu.BMI:
		return branch(addr, bus, predMI)
	case cpu.BPL:
		return branch(addr, bus, predPL)
	case cpu.BVC:
		return branch(addr, bus, predVC)
	case cpu.BVS:
		return branch(addr, bus, predVS)

	case cpu.NOP:
		return &Opcode{Addr6502: addr, LenBytes: 1, MaxCycles: 2}

	case cpu.CLC:
		return setCarry(addr, 0)
	case cpu.SEC:
		return setCarry(addr, 1)

	default:
		// Everything this decoder doesn't specialize — including every
		// other addressing mode of the families above, all stack/shift/
		// jump opcodes (CLC/SEC excepted, see setCarry below), and the
		// 65C12 additions — defers to the
		// reference interpreter for exactly this one instruction. Treated
		// as ending the block: the interpreter may itself branch or jump,
		// so nothing downstream can assume control falls through to the
		// next compiled address.
		return &Opcode{Addr6502: addr, EndsBlock: true, Uops: []Uop{{Kind: kOpInterp}}}
	}
}

func loadImm(addr uint16, bus cpu.Bus, reg int32) *Opcode {
	v := bus.Read(addr + 1)
	return &Opcode{
		Addr6502: addr, LenBytes: 2, MaxCycles: 2,
		Uops: []Uop{
			{Kind: kOpLoadImm, Value1: int32(v)},
			{Kind: kOpTransferToA, Value1: reg},
			{Kind: kOpFlagsNZFromScratch},
		},
	}
}

func loadZP(addr uint16, bus cpu.Bus, reg int32) *Opcode {
	zp := bus.Read(addr + 1)
	return &Opcode{
		Addr6502: addr, LenBytes: 2, MaxCycles: 3,
		Uops: []Uop{
			{Kind: kOpLoadAddr, Value1: int32(zp)},
			{Kind: kOpTransferToA, Value1: reg},
			{Kind: kOpFlagsNZFromScratch},
		},
	}
}

func loadAbs(addr uint16, bus cpu.Bus, reg int32) *Opcode {
	lo := uint16(bus.Read(addr + 1))
	hi := uint16(bus.Read(addr + 2))
	return &Opcode{
		Addr6502: addr, LenBytes: 3, MaxCycles: 4,
		Uops: []Uop{
			{Kind: kOpLoadAddr, Value1: int32((hi << 8) | lo)},
			{Kind: kOpTransferToA, Value1: reg},
			{Kind: kOpFlagsNZFromScratch},
		},
	}
}

func loadAbsIndexed(addr uint16, bus cpu.Bus, reg int32, kind UopKind) *Opcode {
	lo := uint16(bus.Read(addr + 1))
	hi := uint16(bus.Read(addr + 2))
	return &Opcode{
		Addr6502: addr, LenBytes: 3, MaxCycles: 4,
		Uops: []Uop{
			{Kind: kind, Value1: int32((hi << 8) | lo)},
			{Kind: kOpTransferToA, Value1: reg},
			{Kind: kOpFlagsNZFromScratch},
		},
	}
}

func storeZP(addr uint16, bus cpu.Bus, reg int32) *Opcode {
	zp := bus.Read(addr + 1)
	return &Opcode{
		Addr6502: addr, LenBytes: 2, MaxCycles: 3,
		Uops: []Uop{
			{Kind: kOpTransferFromA, Value1: reg},
			{Kind: kOpStoreAddr, Value1: int32(zp), Value2: reg},
		},
	}
}

func storeAbs(addr uint16, bus cpu.Bus, reg int32) *Opcode {
	lo := uint16(bus.Read(addr + 1))
	hi := uint16(bus.Read(addr + 2))
	return &Opcode{
		Addr6502: addr, LenBytes: 3, MaxCycles: 4,
		Uops: []Uop{
			{Kind: kOpTransferFromA, Value1: reg},
			{Kind: kOpStoreAddr, Value1: int32((hi << 8) | lo), Value2: reg},
		},
	}
}

func aluImm(addr uint16, bus cpu.Bus, kind UopKind, cycles uint8) *Opcode {
	v := bus.Read(addr + 1)
	return &Opcode{
		Addr6502: addr, LenBytes: 2, MaxCycles: cycles,
		Uops: []Uop{
			{Kind: kOpLoadImm, Value1: int32(v)},
			{Kind: kind},
		},
	}
}

func aluAbs(addr uint16, bus cpu.Bus, kind UopKind, cycles uint8) *Opcode {
	lo := uint16(bus.Read(addr + 1))
	hi := uint16(bus.Read(addr + 2))
	return &Opcode{
		Addr6502: addr, LenBytes: 3, MaxCycles: cycles,
		Uops: []Uop{
			{Kind: kOpLoadAddr, Value1: int32((hi << 8) | lo)},
			{Kind: kind},
		},
	}
}

func compareImm(addr uint16, bus cpu.Bus, reg int32, cycles uint8) *Opcode {
	v := bus.Read(addr + 1)
	return &Opcode{
		Addr6502: addr, LenBytes: 2, MaxCycles: cycles,
		Uops: []Uop{
			{Kind: kOpLoadImm, Value1: int32(v)},
			{Kind: kOpALUCompare, Value2: reg},
		},
	}
}

func incReg(addr uint16, reg int32, delta int32) *Opcode {
	return &Opcode{
		Addr6502: addr, LenBytes: 1, MaxCycles: 2,
		Uops: []Uop{
			{Kind: kOpIncReg, Value1: reg, Value2: delta},
			{Kind: kOpFlagsNZFromScratch},
		},
	}
}

// setCarry compiles CLC/SEC to a non-block-ending kOpSetCarryConst uop
// instead of the kOpInterp fallback, so it can appear in the same
// straight-line run as a following ADC/SBC and be folded into a known-carry
// ADD/SUB by foldKnownCarry — the pre-rewrite replacement jit_optimizer.c
// names for "CLC;ADC becomes ADD (no carry load); SEC;SBC becomes SUB".
func setCarry(addr uint16, carry int32) *Opcode {
	return &Opcode{
		Addr6502: addr, LenBytes: 1, MaxCycles: 2,
		Uops: []Uop{{Kind: kOpSetCarryConst, Value1: carry}},
	}
}

func branch(addr uint16, bus cpu.Bus, pred int32) *Opcode {
	offset := int8(bus.Read(addr + 1))
	target := uint16(int32(addr) + 2 + int32(offset))
	return &Opcode{
		Addr6502: addr, LenBytes: 2, MaxCycles: 2,
		EndsBlock: true,
		Uops: []Uop{
			{Kind: kOpBranch, Value1: pred, Value2: int32(target)},
		},
	}
}
