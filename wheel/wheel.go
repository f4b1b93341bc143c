// Package wheel implements the deterministic timing wheel described in
// spec.md §4.1: a small fixed array of countdown timers sharing one
// monotonic host-tick counter, with a cached minimum the CPU engines can
// decrement and branch on without scanning every slot.
//
// Grounded on the per-cycle decrement-and-fire loop in the teacher's
// c64/cia/cia.go (CIA.Update), generalized from "loop once per host cycle"
// to a single advance(delta) call with closed-form firing, matching the
// "countdown" contract spec.md §3 and §4.1 require.
package wheel

import "fmt"

// MaxTimers bounds the wheel at N<=8 slots, per spec.md §2.
const MaxTimers = 8

// Callback fires when a timer's countdown reaches zero. obj is the opaque
// object passed to Register, letting one callback function serve many
// timer instances (e.g. one per VIA).
type Callback func(obj interface{})

type timer struct {
	countdown int64
	ticking   bool
	firing    bool
	callback  Callback
	obj       interface{}
	inUse     bool
}

// Wheel owns a fixed timer slot array and the cached countdown derived from
// them. It is confined to the CPU thread (spec.md §5) and carries no locks.
type Wheel struct {
	timers    [MaxTimers]timer
	countdown int64
}

// New returns an empty wheel with an effectively infinite initial countdown
// (no timer is ticking+firing yet).
func New() *Wheel {
	w := &Wheel{}
	w.recompute()
	return w
}

// Register reserves a timer slot bound to callback/obj and returns its id.
// Panics if the wheel is full — spec.md's failure model: no errors, trip an
// invariant assertion instead.
func (w *Wheel) Register(callback Callback, obj interface{}) int {
	for i := range w.timers {
		if !w.timers[i].inUse {
			w.timers[i] = timer{callback: callback, obj: obj, inUse: true}
			return i
		}
	}
	panic(fmt.Sprintf("wheel: no free timer slot (max %d)", MaxTimers))
}

func (w *Wheel) slot(id int) *timer {
	if id < 0 || id >= MaxTimers || !w.timers[id].inUse {
		panic(fmt.Sprintf("wheel: invalid timer id %d", id))
	}
	return &w.timers[id]
}

// Start arms the timer with the given countdown value and marks it both
// ticking and firing.
func (w *Wheel) Start(id int, value int64) {
	t := w.slot(id)
	t.countdown = value
	t.ticking = true
	t.firing = true
	w.recompute()
}

// Stop marks the timer as not ticking; its countdown value is preserved so
// a later SetValue/Start can resume from it if required by the caller.
func (w *Wheel) Stop(id int) {
	t := w.slot(id)
	t.ticking = false
	w.recompute()
}

// SetValue overwrites the countdown without changing ticking/firing state.
func (w *Wheel) SetValue(id int, value int64) {
	t := w.slot(id)
	t.countdown = value
	w.recompute()
}

// AdjustValue adds delta (may be negative) to the timer's countdown.
func (w *Wheel) AdjustValue(id int, delta int64) {
	t := w.slot(id)
	t.countdown += delta
	w.recompute()
}

// SetFiring controls whether the timer's expiry invokes its callback. A
// timer that is ticking but not firing still decrements (spec.md §4.1's
// "VIA timer continuing to decrement while interrupts are masked").
func (w *Wheel) SetFiring(id int, firing bool) {
	t := w.slot(id)
	t.firing = firing
	w.recompute()
}

// Value returns the raw countdown of a timer, which may be negative if it
// has been allowed to run past expiry without firing.
func (w *Wheel) Value(id int) int64 {
	return w.slot(id).countdown
}

// IsTicking reports whether the timer currently participates in the shared
// minimum.
func (w *Wheel) IsTicking(id int) bool {
	return w.slot(id).ticking
}

// IsFiring reports whether the timer's expiry currently invokes its
// callback (see SetFiring) — used by peripheral snapshot code to capture
// whether a one-shot timer has already fired since its last (re)arm.
func (w *Wheel) IsFiring(id int) bool {
	return w.slot(id).firing
}

// GetCountdown returns the cached minimum of all ticking+firing timers.
func (w *Wheel) GetCountdown() int64 {
	return w.countdown
}

// Advance is called with the new value of the shared countdown (which the
// caller — the CPU engine — has already decremented externally by running
// instructions). It computes delta = old - new, applies it to every active
// timer, fires any timer that reaches zero or below, and recomputes the
// cached minimum after each callback since callbacks may mutate the wheel.
func (w *Wheel) Advance(newCountdown int64) {
	delta := w.countdown - newCountdown
	if delta <= 0 {
		w.countdown = newCountdown
		return
	}

	for i := range w.timers {
		t := &w.timers[i]
		if !t.inUse || !t.ticking {
			continue
		}
		t.countdown -= delta
	}

	// Fire everything that has reached or passed zero, in slot order. A
	// callback may start/stop/retarget any timer (including itself), so
	// recompute the minimum after each one and re-scan: a callback can
	// bring another timer to zero in the same advance.
	fired := true
	for fired {
		fired = false
		for i := range w.timers {
			t := &w.timers[i]
			if t.inUse && t.ticking && t.firing && t.countdown <= 0 {
				t.firing = false
				cb, obj := t.callback, t.obj
				if cb != nil {
					cb(obj)
				}
				fired = true
			}
		}
	}

	w.recompute()
}

func (w *Wheel) recompute() {
	min := int64(1) << 62
	found := false
	for i := range w.timers {
		t := &w.timers[i]
		if t.inUse && t.ticking && t.firing && t.countdown < min {
			min = t.countdown
			found = true
		}
	}
	if !found {
		// No active firing timer: park the countdown far in the future so
		// the CPU engine's per-instruction decrement never spuriously
		// trips zero.
		min = 1 << 30
	}
	w.countdown = min
}

// ElapsedReloads normalizes a timer that has been allowed to run past zero
// without firing (one-shot-disabled / masked case) by computing how many
// full latch reloads of size reload have elapsed since it last crossed
// zero. Used by via.VIA to reconstruct a live read value for a timer whose
// firing flag was cleared while interrupts stayed masked.
func ElapsedReloads(value int64, reload int64) (reloads int64, remainder int64) {
	if reload <= 0 {
		return 0, value
	}
	if value >= 0 {
		return 0, value
	}
	// value is negative: number of whole reloads consumed is ceil(-value/reload).
	neg := -value
	reloads = (neg + reload - 1) / reload
	remainder = reload - (neg % reload)
	if remainder == reload {
		remainder = 0
	}
	return reloads, remainder
}
