// Package diag centralizes the three log severities of spec.md §7's error
// taxonomy (unimplemented, warning, fatal) so call sites across the core
// stay one-liners instead of re-deriving a log.Printf prefix each time.
//
// Grounded on the teacher's plain standard-library log.Printf calls
// throughout c64/vic/vic.go (logMemoryLayout) and c64/cia/cia.go — the
// teacher pulls in no third-party logging library, so this module follows
// suit rather than introducing one (the justification SPEC_FULL.md §A
// records for carrying the ambient logging stack from the teacher as-is).
package diag

import "log"

// Unimplemented logs an emulated-machine error (spec.md §7): an undefined
// opcode, a write to ROM, or an access to an unimplemented MMIO range. The
// caller has already applied the documented fallback behavior (NOP-like,
// dropped write, 0xFF read); this call only records that it happened.
func Unimplemented(format string, args ...interface{}) {
	log.Printf("[unimplemented] "+format, args...)
}

// Warning logs a resource transient error (spec.md §7): audio underrun, a
// short read from an external collaborator, and similar conditions the
// core recovers from by resetting a buffer or reopening a device.
func Warning(format string, args ...interface{}) {
	log.Printf("[warning] "+format, args...)
}

// Fatal logs a fatal host error (spec.md §7) and aborts the process. Only
// cmd/beebgo's main calls this; package code never calls os.Exit itself,
// per SPEC_FULL.md §A's error-handling rule.
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[fatal] "+format, args...)
}
