package bbc

import "github.com/newhook/beebgo/keyboard"

// bindDefaultKeyMap installs the host-key-code to BBC-matrix-position
// bindings a stock Model B/Master keyboard uses, directly transcribing
// _examples/original_source/keyboard.c's keyboard_bbc_key_to_rowcol switch
// (ASCII letters/digits/punctuation plus the named non-ASCII codes).
// Escape is deliberately left unbound here: on real hardware it sits in the
// matrix at row 7 col 0, but this module routes it to Machine's reset line
// instead (see Machine.KeyDown's keyEscape case), matching BREAK's
// special-cased handling in the same source file.
func bindDefaultKeyMap(m *keyboard.Matrix) {
	type rc struct{ row, col int8 }
	bindings := map[uint8]rc{
		'1': {3, 0}, '2': {3, 1}, '3': {1, 1}, '4': {1, 2}, '5': {1, 3},
		'6': {3, 4}, '7': {2, 4}, '8': {1, 5}, '9': {2, 6}, '0': {2, 7},
		'-': {1, 7}, '=': {1, 8},
		keyboard.KeyBackspace: {5, 9},
		keyboard.KeyTab:       {6, 0},
		'Q': {1, 0}, 'W': {2, 1}, 'E': {2, 2}, 'R': {3, 3}, 'T': {2, 3},
		'Y': {4, 4}, 'U': {3, 5}, 'I': {2, 5}, 'O': {3, 6}, 'P': {3, 7},
		'[': {4, 7}, ']': {3, 8},
		keyboard.KeyEnter:     {4, 9},
		keyboard.KeyCtrlLeft:  {0, 1},
		'A': {4, 1}, 'S': {5, 1}, 'D': {3, 2}, 'F': {4, 3}, 'G': {5, 3},
		'H': {5, 4}, 'J': {4, 5}, 'K': {4, 6}, 'L': {5, 6},
		';': {5, 7}, '\'': {4, 8},
		keyboard.KeyShiftLeft:  {0, 0},
		keyboard.KeyShiftRight: {0, 0},
		'\\': {5, 8},
		'Z':  {6, 1}, 'X': {4, 2}, 'C': {5, 2}, 'V': {6, 3}, 'B': {6, 4},
		'N': {5, 5}, 'M': {6, 5}, ',': {6, 6}, '.': {6, 7}, '/': {6, 8},
		' ':                  {6, 2},
		keyboard.KeyCapsLock: {4, 0},
		keyboard.KeyF0:       {2, 0},
		keyboard.KeyArrowUp:    {3, 9},
		keyboard.KeyArrowLeft:  {1, 9},
		keyboard.KeyArrowRight: {7, 9},
		keyboard.KeyArrowDown:  {2, 9},
	}
	for code, pos := range bindings {
		m.Bind(code, pos.row, pos.col)
	}
}
