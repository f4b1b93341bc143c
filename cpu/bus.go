package cpu

// Bus is the memory-access interface each execution engine reads and
// writes through. memory.Map satisfies it; tests use small fakes.
// Separating it from a concrete type keeps the three engines (interpreter,
// inturbo, JIT) and memory.Map free of an import cycle.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}
