package jit

import "github.com/newhook/beebgo/cpu"

// OpFunc is the "host code" compiled for one 6502 instruction: a Go
// closure compiled once from the instruction's (optimized) uop sequence
// and cached thereafter, replacing the original's emitted x64 bytes with a
// native Go call. It leaves state.PC at the address of the next
// instruction to run (the uop-computed branch target, wherever the
// interpreter fallback left it, or simply Addr6502+LenBytes) and returns
// the cycle cost.
type OpFunc func(state *cpu.State, bus cpu.Bus, interp *cpu.Interpreter) uint8

// CompileOp turns one optimized Opcode into an OpFunc. Its uops run in
// order against a per-call scratch register that stands in for the host
// backend's pinned accumulator register (spec.md §9's "inner-loop register
// pinning is a backend detail"). invalidate is called with the address of
// every store this opcode performs to RAM, so the cache can evict any
// compiled entry self-modifying code just overwrote.
func CompileOp(op *Opcode, invalidate func(addr uint16)) OpFunc {
	if len(op.Uops) == 1 && op.Uops[0].Kind == kOpInterp {
		return func(state *cpu.State, bus cpu.Bus, interp *cpu.Interpreter) uint8 {
			return interp.ExecuteOne()
		}
	}

	uops := op.Uops
	addr := op.Addr6502
	lenBytes := uint16(op.LenBytes)
	maxCycles := op.MaxCycles

	return func(state *cpu.State, bus cpu.Bus, interp *cpu.Interpreter) uint8 {
		var scratch uint8
		var extraCycles uint8
		jumped := false

		for _, u := range uops {
			switch u.Kind {
			case kOpNop:
				// dead uop, eliminated by postRewriteBlock

			case kOpLoadImm:
				scratch = uint8(u.Value1)

			case kOpLoadAddr:
				scratch = bus.Read(uint16(u.Value1))

			case kOpLoadAddrX:
				base := uint16(u.Value1)
				eff := base + uint16(state.X)
				if base&0xFF00 != eff&0xFF00 {
					extraCycles++
				}
				scratch = bus.Read(eff)

			case kOpLoadAddrY:
				base := uint16(u.Value1)
				eff := base + uint16(state.Y)
				if base&0xFF00 != eff&0xFF00 {
					extraCycles++
				}
				scratch = bus.Read(eff)

			case kOpStoreAddr:
				a := uint16(u.Value1)
				bus.Write(a, scratch)
				invalidate(a)

			case kOpStoreAddrX:
				a := uint16(u.Value1) + uint16(state.X)
				bus.Write(a, scratch)
				invalidate(a)

			case kOpStoreAddrY:
				a := uint16(u.Value1) + uint16(state.Y)
				bus.Write(a, scratch)
				invalidate(a)

			case kOpTransferToA:
				writeReg(state, u.Value1, scratch)

			case kOpTransferFromA:
				scratch = readReg(state, u.Value1)

			case kOpALUAdd:
				state.ADC(scratch)

			case kOpALUSub:
				state.SBC(scratch)

			case kOpSetCarryConst:
				// Survives only when foldKnownCarry couldn't pair this
				// CLC/SEC with a following ADC/SBC in the same run (e.g.
				// it's the last opcode compiled before the run's length
				// cap); still has to behave like CLC/SEC on its own.
				state.CarryFlag = u.Value1 != 0

			case kOpALUAddKnownCarry:
				// jit_optimizer.c's ADD: the incoming carry is a compile-
				// time constant baked in by foldKnownCarry, not whatever
				// state.CarryFlag happens to hold at run time.
				state.CarryFlag = u.Value1 != 0
				state.ADC(scratch)

			case kOpALUSubKnownCarry:
				state.CarryFlag = u.Value1 != 0
				state.SBC(scratch)

			case kOpALUCompare:
				state.Compare(readReg(state, u.Value2), scratch)

			case kOpALUAnd:
				state.A &= scratch
				state.UpdateZN(state.A)

			case kOpALUOr:
				state.A |= scratch
				state.UpdateZN(state.A)

			case kOpALUXor:
				state.A ^= scratch
				state.UpdateZN(state.A)

			case kOpIncReg:
				v := readReg(state, u.Value1) + uint8(u.Value2)
				writeReg(state, u.Value1, v)
				scratch = v

			case kOpFlagsNZFromScratch:
				state.UpdateZN(scratch)

			case kOpSetFlagsConst:
				setFlagsConst(state, u.Value1 != 0, u.Value2 != 0)

			case kOpBranch:
				if branchTaken(state, int(u.Value1)) {
					target := uint16(u.Value2)
					extraCycles++ // taken
					if (addr+lenBytes)&0xFF00 != target&0xFF00 {
						extraCycles++ // taken across a page boundary
					}
					state.PC = target
					jumped = true
				}
			}
		}

		if !jumped {
			state.PC = addr + lenBytes
		}
		return maxCycles + extraCycles
	}
}

func readReg(state *cpu.State, reg int32) uint8 {
	switch reg {
	case regX:
		return state.X
	case regY:
		return state.Y
	default:
		return state.A
	}
}

func writeReg(state *cpu.State, reg int32, v uint8) {
	switch reg {
	case regX:
		state.X = v
	case regY:
		state.Y = v
	default:
		state.A = v
	}
}

func setFlagsConst(state *cpu.State, zero, negative bool) {
	state.ZeroFlag = zero
	state.NegativeFlag = negative
}

func branchTaken(state *cpu.State, pred int) bool {
	switch pred {
	case predCC:
		return !state.CarryFlag
	case predCS:
		return state.CarryFlag
	case predEQ:
		return state.ZeroFlag
	case predMI:
		return state.NegativeFlag
	case predNE:
		return !state.ZeroFlag
	case predPL:
		return !state.NegativeFlag
	case predVC:
		return !state.OverflowFlag
	case predVS:
		return state.OverflowFlag
	}
	return false
}
