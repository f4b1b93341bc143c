// Package jit implements the compiling execution engine of spec.md §4.2.2:
// a decoder that breaks a 6502 instruction into a short micro-op sequence,
// an optimizer that rewrites that sequence, and a backend that turns the
// optimized sequence into a cached, directly callable unit of "host code".
//
// Grounded on _examples/original_source/jit_opcode.c/.h (the jit_uop /
// jit_opcode_details shape and the k_opcode_* micro-op catalogue) and
// jit_optimizer.c (the pre-rewrite/post-rewrite two-stage pipeline). The
// original's backend emits real x64 machine code into an executable page;
// this module's backend instead compiles each micro-op sequence into a
// closure over cpu.State/cpu.Bus (see backend.go) — Go cannot safely
// JIT-emit and run raw bytes without cgo/unsafe, and spec.md §4.2's
// contract only requires this engine be observably indistinguishable from
// the interpreter, not that it share a codegen target.
package jit

// UopKind identifies one micro-operation. This is a representative subset
// of the original's k_opcode_* catalogue — enough to decompose the common
// load/store/ALU/branch instruction families into independently
// optimizable steps; everything else compiles to a single-uop Opcode that
// defers to the reference interpreter (kOpInterp), mirroring the original's
// own k_opcode_interp escape hatch for opcodes its compiler doesn't
// specialize.
type UopKind int

const (
	kOpInterp UopKind = iota // defer this whole instruction to cpu.Interpreter.ExecuteOne

	kOpLoadImm    // value1: immediate value
	kOpLoadAddr   // value1: effective address to read
	kOpLoadAddrX  // value1: base address; indexed by X, page-crossing checked
	kOpLoadAddrY  // value1: base address; indexed by Y, page-crossing checked
	kOpStoreAddr  // value1: effective address to write; value2: source register (regA/X/Y)
	kOpStoreAddrX // value1: base address; indexed by X
	kOpStoreAddrY // value1: base address; indexed by Y

	kOpALUAdd     // ADC: operand already loaded into the scratch register
	kOpALUSub     // SBC
	kOpALUCompare // CMP/CPX/CPY; value2: register compared

	kOpSetCarryConst    // CLC/SEC: value1: 0 or 1, the carry the next ADC/SBC in this run will see
	kOpALUAddKnownCarry // ADD (jit_optimizer.c's replacement for CLC;ADC): value1: known incoming carry, 0 or 1
	kOpALUSubKnownCarry // SUB (replacement for SEC;SBC): value1: known incoming carry, 0 or 1
	kOpALUAnd
	kOpALUOr
	kOpALUXor
	kOpALUShiftLeft
	kOpALUShiftRight
	kOpALURotateLeft
	kOpALURotateRight

	kOpTransferToA // value1: destination register, written from the scratch value
	kOpTransferFromA
	kOpIncReg // value1: register, value2: +1 or -1
	kOpIncMem // value1: address, value2: +1 or -1

	kOpFlagsNZFromScratch // set Z/N from the scratch value just computed
	kOpBranch             // value1: flag predicate id, value2: target address
)

// Register ids used by kOpStoreAddr's value2 and kOpALUCompare's value2.
const (
	regA = iota
	regX
	regY
)

// Uop is one micro-operation: a kind plus up to two operand values, mirroring
// jit_uop's uopcode/value1/value2.
type Uop struct {
	Kind   UopKind
	Value1 int32
	Value2 int32
}

// Opcode is the compiled representation of one 6502 instruction at a given
// address: its static decode details plus the (possibly optimized) uop
// sequence, mirroring jit_opcode_details minus the x64-specific fields this
// module's closure backend has no use for.
type Opcode struct {
	Addr6502   uint16
	LenBytes   uint8
	MaxCycles  uint8
	Uops       []Uop
	EndsBlock  bool // branches/jumps/RTS/RTI end a run of straight-line compiled uops
}
