package bbc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAudioRingPushPull(t *testing.T) {
	r := NewAudioRing()
	for i := 0; i < 10; i++ {
		r.PushSample(int16(i))
	}
	assert.Equal(t, 10, r.Available())

	out := make([]int16, 5)
	n := r.PullInto(out)
	assert.Equal(t, 5, n)
	assert.Equal(t, []int16{0, 1, 2, 3, 4}, out)
	assert.Equal(t, 5, r.Available())
}

func TestAudioRingUnderrunFillsSilence(t *testing.T) {
	r := NewAudioRing()
	r.PushSample(42)

	out := make([]int16, 4)
	n := r.PullInto(out)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int16{42, 0, 0, 0}, out)
}

func TestAudioRingOverwritesOldestWhenFull(t *testing.T) {
	r := NewAudioRing()
	for i := 0; i < AudioRingSize+10; i++ {
		r.PushSample(int16(i))
	}
	assert.Equal(t, AudioRingSize, r.Available())

	out := make([]int16, 1)
	r.PullInto(out)
	// The oldest 10 samples (0-9) were overwritten; the next unread sample
	// is the 11th pushed value.
	assert.Equal(t, int16(10), out[0])
}
