package jit

// compiledOp is one cached compiled instruction: its decoded Opcode plus
// the closure CompileOp produced for it.
type compiledOp struct {
	op  *Opcode
	run OpFunc
}

// run is the bookkeeping for one compiled straight-line decode: the
// address range it spans, so a later store anywhere in that range can
// evict every entry the run produced, matching how a real JIT must
// invalidate a whole compiled unit rather than one instruction within it
// (the original's SMC detection works at x64-code-block granularity for
// the same reason).
type run struct {
	start, end uint16 // end is one past the last covered address
	addrs      []uint16
}

// Cache maps an instruction address to its compiled entry, and evicts
// whole compiled runs that self-modifying code has invalidated. Grounded
// on jit_opcode.c/jit_optimizer.c's notion of a compiled block keyed by
// 6502 address, generalized from "emitted host bytes at a fixed host
// address" to "a Go closure stored in a map", since this backend has no
// executable page to patch in place — eviction plus a cheap recompile on
// next Step is the equivalent operation.
type Cache struct {
	ops  map[uint16]*compiledOp
	runs []*run
}

// NewCache returns an empty compiled-instruction cache.
func NewCache() *Cache {
	return &Cache{ops: make(map[uint16]*compiledOp)}
}

// Lookup returns the cached compiled entry at addr, if any.
func (c *Cache) Lookup(addr uint16) (*compiledOp, bool) {
	op, ok := c.ops[addr]
	return op, ok
}

// StoreRun records every compiled instruction in a freshly decoded run,
// keyed by each instruction's own address, alongside the run's address
// range for invalidation.
func (c *Cache) StoreRun(ops []*compiledOp) {
	if len(ops) == 0 {
		return
	}

	r := &run{start: ops[0].op.Addr6502}
	for _, co := range ops {
		c.ops[co.op.Addr6502] = co
		r.addrs = append(r.addrs, co.op.Addr6502)

		end := co.op.Addr6502 + uint16(co.op.LenBytes)
		if co.op.LenBytes == 0 {
			end = co.op.Addr6502 + 1 // kOpInterp: at least one byte
		}
		if end > r.end {
			r.end = end
		}
	}
	c.runs = append(c.runs, r)
}

// InvalidateAll evicts every cached run unconditionally — the ROM-bank-
// switch case spec.md §4.5's step 6 calls out ("ROM bank switches ... emit
// a write-invalidation") alongside the per-address SMC case Invalidate
// handles: a ROMSEL write can change what every sideways-ROM address
// decodes to, so the whole cache must be treated as stale rather than
// probed address by address.
func (c *Cache) InvalidateAll() {
	c.ops = make(map[uint16]*compiledOp)
	c.runs = nil
}

// Invalidate evicts every cached run whose address range covers addr —
// the self-modifying-code case spec.md §8 calls out: a store into a byte
// range a run was compiled from must force every instruction in that run
// to be recompiled before it runs again.
func (c *Cache) Invalidate(addr uint16) {
	kept := c.runs[:0]
	for _, r := range c.runs {
		if addr >= r.start && addr < r.end {
			for _, a := range r.addrs {
				delete(c.ops, a)
			}
			continue
		}
		kept = append(kept, r)
	}
	c.runs = kept
}
