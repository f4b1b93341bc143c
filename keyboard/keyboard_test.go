package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindAndPressSetsMatrixPosition(t *testing.T) {
	m := New()
	m.Bind('A', 4, 1)

	m.KeyPressed('A')
	assert.True(t, m.IsPressed(4, 1))
	assert.True(t, m.IsColumnPressed(1))
	assert.True(t, m.AnyPressed())

	m.KeyReleased('A')
	assert.False(t, m.IsPressed(4, 1))
	assert.False(t, m.IsColumnPressed(1))
	assert.False(t, m.AnyPressed())
}

func TestRepeatedKeyPressedIsIdempotent(t *testing.T) {
	m := New()
	m.Bind('A', 4, 1)
	m.KeyPressed('A')
	m.KeyPressed('A') // host key-repeat: must not double-count
	assert.True(t, m.IsColumnPressed(1))

	m.KeyReleased('A')
	assert.False(t, m.IsColumnPressed(1), "single release should fully clear a key only pressed once")
}

func TestUnboundCodeIsIgnored(t *testing.T) {
	m := New()
	assert.NotPanics(t, func() {
		m.KeyPressed(255)
		m.KeyReleased(255)
	})
	assert.False(t, m.AnyPressed())
}

func TestIsColumnPressedCountsMultipleKeysInSameColumn(t *testing.T) {
	m := New()
	m.Bind('A', 4, 1)
	m.Bind('S', 5, 1)

	m.KeyPressed('A')
	m.KeyPressed('S')
	assert.True(t, m.IsColumnPressed(1))

	m.KeyReleased('A')
	assert.True(t, m.IsColumnPressed(1), "column stays pressed while S is still held")

	m.KeyReleased('S')
	assert.False(t, m.IsColumnPressed(1))
}

func TestBreakHeldIsIndependentOfMatrix(t *testing.T) {
	m := New()
	m.BreakHeld = true
	assert.False(t, m.AnyPressed(), "BreakHeld must not surface through the matrix")
}
