// Package keyboard implements the 16x16 key matrix and down/up array of
// spec.md §6: a single writer (the host UI thread) calls KeyPressed/
// KeyReleased; a single reader (the CPU thread, via the system VIA's port
// reads) calls IsPressed/IsColumnPressed/AnyPressed.
//
// Grounded on _examples/original_source/keyboard.c's bbc_keys[16][16]
// matrix plus its per-column and whole-matrix press counters
// (bbc_keys_count_col/bbc_keys_count), which this module keeps instead of
// re-scanning the matrix on every read — IsColumnPressed and AnyPressed are
// hot paths called once per system-VIA port read.
package keyboard

// Key codes above 127 name keys with no printable-ASCII representation, the
// same numbering keyboard.h uses for its non-ASCII entries (escape,
// backspace, cursor keys, function keys...).
const (
	KeyEscape     = 128
	KeyBackspace  = 129
	KeyTab        = 130
	KeyEnter      = 131
	KeyCtrlLeft   = 132
	KeyShiftLeft  = 133
	KeyShiftRight = 134
	KeyCapsLock   = 135
	KeyF0         = 136
	KeyArrowUp    = 146
	KeyArrowDown  = 147
	KeyArrowLeft  = 148
	KeyArrowRight = 149
)

// Matrix is the BBC's 16x16 key matrix (row, column), with a parallel
// down/up array indexed by host key code for KeyPressed/KeyReleased to
// de-duplicate repeated host key-repeat events.
type Matrix struct {
	keys     [16][16]bool
	countCol [16]uint8
	count    uint8

	down    [256]bool
	rowcol  [256]rowcol

	// BreakHeld mirrors the original's special-cased BREAK key: on the BBC,
	// BREAK is wired directly to the reset line rather than into the
	// matrix, so it is tracked separately and consumed by bbc.Machine
	// rather than surfacing through IsPressed.
	BreakHeld bool
}

type rowcol struct {
	row, col int8
	valid    bool
}

// New returns an empty matrix (no keys held).
func New() *Matrix {
	m := &Matrix{}
	for k := range m.rowcol {
		m.rowcol[k] = rowcol{row: -1, col: -1}
	}
	return m
}

// Bind associates a host key code with a matrix position, so KeyPressed/
// KeyReleased can look up the row/col for that code. Unbound codes (and
// KeyEscape routed to BREAK by the caller) are ignored by KeyPressed.
func (m *Matrix) Bind(code uint8, row, col int8) {
	m.rowcol[code] = rowcol{row: row, col: col, valid: true}
}

// KeyPressed is the single writer's entry point: the host UI thread
// reports a key-down event by host key code. Repeated down events for a
// key already held are no-ops, matching the original's down[] guard.
func (m *Matrix) KeyPressed(code uint8) {
	if m.down[code] {
		return
	}
	m.down[code] = true

	rc := m.rowcol[code]
	if !rc.valid {
		return
	}
	if !m.keys[rc.row][rc.col] {
		m.keys[rc.row][rc.col] = true
		m.countCol[rc.col]++
		m.count++
	}
}

// KeyReleased is the single writer's entry point for a key-up event.
func (m *Matrix) KeyReleased(code uint8) {
	if !m.down[code] {
		return
	}
	m.down[code] = false

	rc := m.rowcol[code]
	if !rc.valid {
		return
	}
	if m.keys[rc.row][rc.col] {
		m.keys[rc.row][rc.col] = false
		m.countCol[rc.col]--
		m.count--
	}
}

// IsPressed reports whether the matrix position (row, col) is currently
// held down.
func (m *Matrix) IsPressed(row, col int) bool {
	return m.keys[row][col]
}

// IsColumnPressed reports whether any key in column col is held — the
// system VIA's port-A read (keyboard column select) consumes this per row
// scanned when column-scan mode is active.
func (m *Matrix) IsColumnPressed(col int) bool {
	return m.countCol[col] > 0
}

// AnyPressed reports whether any key anywhere in the matrix is held — the
// "keyboard interrupt" line the original routes into CA2 when the system
// VIA is in auto-scan mode and asks "is anything down right now".
func (m *Matrix) AnyPressed() bool {
	return m.count > 0
}
