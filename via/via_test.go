package via

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/newhook/beebgo/cpu"
	"github.com/newhook/beebgo/wheel"
)

func newTestVIA() (*VIA, *wheel.Wheel, *cpu.State) {
	w := wheel.New()
	state := cpu.NewState()
	v := New(w, state, cpu.IRQSourceSystemVIA)
	return v, w, state
}

func TestORBDDRMasking(t *testing.T) {
	v, _, _ := newTestVIA()
	v.ReadPortB = func() uint8 { return 0xFF }
	v.Write(RegDDRB, 0x0F) // low nibble output, high nibble input
	v.Write(RegORB, 0x05)
	got := v.Read(RegORB)
	assert.Equal(t, uint8(0xF5), got) // high nibble from input(0xFF&0xF0), low from ORB
}

func TestT1OneShotFiresOnceAndAssertsIRQ(t *testing.T) {
	v, w, state := newTestVIA()
	v.Write(RegIER, 0x80|IFR_T1)
	v.Write(RegT1CL, 0x03)
	v.Write(RegT1CH, 0x00) // latch = 0x0003, starts counter at 0x0005

	for i := 0; i < 10 && !v.IRQAsserted(); i++ {
		w.Advance(w.GetCountdown() - 1)
	}
	assert.True(t, v.IRQAsserted())
	assert.True(t, state.IRQLine())
	assert.NotZero(t, v.Read(RegIFR)&IFR_T1)

	// Reading T1CL clears the T1 IFR bit and drops the IRQ line.
	v.Read(RegT1CL)
	assert.False(t, v.IRQAsserted())
	assert.False(t, state.IRQLine())
}

func TestT1ContinuousReloadsAndTogglesPB7(t *testing.T) {
	v, w, _ := newTestVIA()
	v.Write(RegACR, ACR_T1_FREE|ACR_T1_PB7OUT)
	v.Write(RegDDRB, 0x80)
	v.Write(RegT1CL, 0x02)
	v.Write(RegT1CH, 0x00) // latch 0x0002 -> starts at 4

	before := v.pb7
	for i := 0; i < 10; i++ {
		w.Advance(w.GetCountdown() - 1)
		if v.pb7 != before {
			break
		}
	}
	assert.NotEqual(t, before, v.pb7)
	assert.True(t, w.IsTicking(v.t1id), "continuous mode keeps the timer ticking after it fires")
}

func TestIERSetAndClearBits(t *testing.T) {
	v, _, _ := newTestVIA()
	v.Write(RegIER, 0x80|IFR_T1|IFR_CA1)
	assert.Equal(t, IFR_T1|IFR_CA1, v.Read(RegIER)&ifrMask)
	v.Write(RegIER, IFR_CA1) // bit7 clear: disable CA1 only
	assert.Equal(t, IFR_T1, v.Read(RegIER)&ifrMask)
}

func TestCA1PositiveEdgeLatchesIFR(t *testing.T) {
	v, _, _ := newTestVIA()
	v.Write(RegPCR, PCR_CA1_POS)
	v.SetCA1(false)
	assert.Zero(t, v.Read(RegIFR)&IFR_CA1)
	v.SetCA1(true)
	assert.NotZero(t, v.Read(RegIFR)&IFR_CA1)
}

func TestWritingORAClearsCA1Latch(t *testing.T) {
	v, _, _ := newTestVIA()
	v.Write(RegPCR, PCR_CA1_POS)
	v.SetCA1(false)
	v.SetCA1(true)
	assert.NotZero(t, v.Read(RegIFR)&IFR_CA1)
	v.Write(RegORA, 0x01)
	assert.Zero(t, v.Read(RegIFR)&IFR_CA1)
}
