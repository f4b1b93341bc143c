package bbc

import "sync/atomic"

// AudioRingSize is the sample capacity of AudioRing. At 44100Hz this is
// roughly 46ms, enough to absorb a UI-thread scheduling hiccup without the
// CPU thread blocking on a full ring.
const AudioRingSize = 2048

// AudioRing is the bounded single-producer/single-consumer sample queue
// spec.md §4.6's threading model names: "a bounded audio sample ring (one
// writer, the CPU thread; one reader, the audio thread)". Machine is the
// only writer (via PushSample, called from its frame loop); cmd/beebgo is
// the only reader, draining the ring with PullInto once per frame and
// queueing the samples on the SDL audio device. No lock is taken — the read
// and write indices are atomics. The read index is advanced by PullInto and
// also by PushSample when it drops the oldest sample of a full ring.
//
// Grounded on the teacher's sid.SID, which stubbed this handoff out
// entirely (Update and AddDelta are both no-ops); this type replaces the
// missing producer/consumer plumbing spec.md §4.6 requires, synthesis
// itself stays out of scope per spec.md §1.
type AudioRing struct {
	buf [AudioRingSize]int16

	writeIdx atomic.Uint64
	readIdx  atomic.Uint64
}

// NewAudioRing returns an empty ring.
func NewAudioRing() *AudioRing {
	return &AudioRing{}
}

// PushSample appends one sample, overwriting the oldest unread sample if
// the ring is full rather than blocking the CPU thread on the audio device.
// It returns false when such an overwrite happened; Machine.tickAudio does
// not check the result and logs nothing.
func (r *AudioRing) PushSample(s int16) bool {
	w := r.writeIdx.Load()
	read := r.readIdx.Load()
	full := w-read >= AudioRingSize
	r.buf[w%AudioRingSize] = s
	r.writeIdx.Store(w + 1)
	if full {
		// Ring was full: drop the oldest sample by advancing read past it
		// so PullInto never serves a slot the writer is about to reuse.
		r.readIdx.Store(read + 1)
	}
	return !full
}

// PullInto fills out with queued samples, oldest first, returning the
// number written. Samples beyond what's queued are left as silence (zero)
// so a caller that always reads a fixed-size audio-device buffer doesn't
// need to special-case underrun itself.
func (r *AudioRing) PullInto(out []int16) int {
	read := r.readIdx.Load()
	w := r.writeIdx.Load()
	available := int(w - read)
	n := len(out)
	if n > available {
		n = available
	}
	for i := 0; i < n; i++ {
		out[i] = r.buf[(read+uint64(i))%AudioRingSize]
	}
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	r.readIdx.Store(read + uint64(n))
	return n
}

// Available reports how many unread samples are queued.
func (r *AudioRing) Available() int {
	return int(r.writeIdx.Load() - r.readIdx.Load())
}
