package wheel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownIsMinimumOfActiveFiringTimers(t *testing.T) {
	w := New()
	fired := 0
	a := w.Register(func(interface{}) { fired++ }, nil)
	b := w.Register(func(interface{}) { fired++ }, nil)

	w.Start(a, 100)
	w.Start(b, 40)
	require.Equal(t, int64(40), w.GetCountdown())

	w.Advance(30)
	require.Equal(t, int64(70), w.Value(a))
	require.Equal(t, int64(10), w.Value(b))
	require.Equal(t, int64(10), w.GetCountdown())
}

func TestFiringInvokesCallbackAtZero(t *testing.T) {
	w := New()
	var gotObj interface{}
	id := w.Register(func(obj interface{}) { gotObj = obj }, "marker")
	w.Start(id, 5)

	w.Advance(0)
	assert.Equal(t, "marker", gotObj)
}

func TestCallbackMutationIsPickedUpSameAdvance(t *testing.T) {
	w := New()
	var second int
	a := w.Register(nil, nil)
	b := w.Register(func(interface{}) { second++ }, nil)

	w.timers[a].callback = func(interface{}) {
		// Reload the second timer down to zero in the same advance.
		w.SetValue(b, 0)
		w.SetFiring(b, true)
	}
	w.Start(a, 10)
	w.Start(b, 1000)

	w.Advance(0)
	assert.Equal(t, 1, second)
}

func TestNonFiringTimerStillDecrementsPastZero(t *testing.T) {
	w := New()
	id := w.Register(nil, nil)
	w.Start(id, 5)
	w.SetFiring(id, false)

	w.Advance(0)
	w.countdown = 1 << 30 // simulate the parked state an external driver would observe
	w.Advance(-20)

	assert.Less(t, w.Value(id), int64(0))
}

func TestElapsedReloadsNormalizesNegativeValue(t *testing.T) {
	reloads, remainder := ElapsedReloads(-5, 10)
	assert.Equal(t, int64(1), reloads)
	assert.Equal(t, int64(5), remainder)

	reloads, remainder = ElapsedReloads(-20, 10)
	assert.Equal(t, int64(2), reloads)
	assert.Equal(t, int64(0), remainder)

	reloads, remainder = ElapsedReloads(3, 10)
	assert.Equal(t, int64(0), reloads)
	assert.Equal(t, int64(3), remainder)
}
