package acia

import (
	"testing"

	"github.com/newhook/beebgo/cpu"
	"github.com/stretchr/testify/assert"
)

func newTestACIA() (*ACIA, *cpu.State) {
	state := cpu.NewState()
	return New(state), state
}

func TestPowerOnResetSetsTDREOnly(t *testing.T) {
	a, _ := newTestACIA()
	status := a.ReadRegister(0)
	assert.Equal(t, StatusTDRE, status&(StatusRDRF|StatusTDRE|StatusDCD|StatusCTS))
}

func TestReceiveSetsRDRFAndDataRegisterReadClearsIt(t *testing.T) {
	a, _ := newTestACIA()
	a.Receive(0x42)

	status := a.ReadRegister(0)
	assert.NotZero(t, status&StatusRDRF)

	data := a.ReadRegister(1)
	assert.Equal(t, uint8(0x42), data)
	assert.Zero(t, a.ReadRegister(0)&StatusRDRF)
}

func TestReceiveInterruptRequiresRIE(t *testing.T) {
	a, state := newTestACIA()

	a.Receive(0x01)
	assert.False(t, state.IRQLine())

	a.WriteRegister(0, ControlRIE)
	a.Receive(0x02)
	assert.True(t, state.IRQLine())
}

func TestTransmitInterruptRequiresRTSAndTIEAndCTSLow(t *testing.T) {
	a, state := newTestACIA()

	a.WriteRegister(0, TCBRTSAndTIE)
	assert.True(t, state.IRQLine(), "TDRE is set from reset, CTS defaults low")

	a.SetCTS(true)
	assert.False(t, state.IRQLine(), "a high CTS inhibits the transmit interrupt")
}

func TestCTSHighInhibitsTDREInStatusRead(t *testing.T) {
	a, _ := newTestACIA()
	a.SetCTS(true)
	assert.Zero(t, a.ReadRegister(0)&StatusTDRE)

	a.SetCTS(false)
	assert.NotZero(t, a.ReadRegister(0)&StatusTDRE)
}

func TestDCDLatchesOnRisingEdgeAndClearsOnDataRead(t *testing.T) {
	a, _ := newTestACIA()

	a.SetDCD(true)
	assert.NotZero(t, a.ReadRegister(0)&StatusDCD)

	a.SetDCD(false)
	assert.NotZero(t, a.ReadRegister(0)&StatusDCD, "latch survives the line going low again")

	a.ReadRegister(1)
	assert.Zero(t, a.ReadRegister(0)&StatusDCD, "reading the data register clears the latch")
}

func TestDCDLineLevelShowsThroughOnceLatchCleared(t *testing.T) {
	a, _ := newTestACIA()

	a.SetDCD(true)
	a.ReadRegister(1)
	assert.NotZero(t, a.ReadRegister(0)&StatusDCD, "latch is clear but the line is still high")

	a.SetDCD(false)
	assert.Zero(t, a.ReadRegister(0)&StatusDCD, "line has now dropped and no latch is pending")
}

func TestMasterResetViaControlRegister(t *testing.T) {
	a, _ := newTestACIA()

	a.WriteRegister(0, ControlRIE)
	a.Receive(0x7)
	a.WriteRegister(0, 0x03)

	assert.Equal(t, uint8(0), a.control)
	assert.NotZero(t, a.status&StatusTDRE)
	assert.Zero(t, a.status&StatusRDRF)
}

func TestRTSFalseWhenNoRTSNoTIESelected(t *testing.T) {
	a, _ := newTestACIA()
	assert.True(t, a.RTS())

	a.WriteRegister(0, TCBNoRTSNoTIE)
	assert.False(t, a.RTS())
}

func TestTransmitReadyCallbackFiresOnWrite(t *testing.T) {
	a, _ := newTestACIA()
	fired := 0
	a.TransmitReady = func() { fired++ }

	a.WriteRegister(1, 0x55)
	assert.Equal(t, 1, fired)
	assert.Zero(t, a.status&StatusTDRE)

	b := a.Transmit()
	assert.Equal(t, uint8(0x55), b)
	assert.NotZero(t, a.status&StatusTDRE)
}

func TestSerialULATapeDCDLatchesAfterCarrierPersists(t *testing.T) {
	a, _ := newTestACIA()
	s := NewSerialULA(a, false)

	for i := 0; i < carrierLatchCount-1; i++ {
		s.ReceiveTapeBit(TapeBit1)
	}
	assert.Zero(t, a.ReadRegister(0)&StatusDCD, "one short of the persistence count")

	s.ReceiveTapeBit(TapeBit1)
	assert.NotZero(t, a.ReadRegister(0)&StatusDCD)
}

func TestSerialULASilenceResetsCarrierCount(t *testing.T) {
	a, _ := newTestACIA()
	s := NewSerialULA(a, false)

	for i := 0; i < carrierLatchCount-1; i++ {
		s.ReceiveTapeBit(TapeBit0)
	}
	s.ReceiveTapeBit(TapeBitSilence)
	s.ReceiveTapeBit(TapeBit1)

	assert.Zero(t, a.ReadRegister(0)&StatusDCD, "carrier count restarted after silence")
}

func TestSerialULARS423SelectionForcesDCDLow(t *testing.T) {
	a, _ := newTestACIA()
	s := NewSerialULA(a, false)

	for i := 0; i < carrierLatchCount; i++ {
		s.ReceiveTapeBit(TapeBit1)
	}
	assert.NotZero(t, a.ReadRegister(0)&StatusDCD)

	s.Write(ulaRS423)
	// The DCD status bit stays latched until the data register is read;
	// after that read it follows the line, which RS423 selection holds low.
	a.ReadRegister(1)
	assert.Zero(t, a.ReadRegister(0)&StatusDCD, "RS423 selection always reports DCD low")
}

func TestSerialULAMotorCallbacksFireOnTransition(t *testing.T) {
	a, _ := newTestACIA()
	s := NewSerialULA(a, false)
	var states []bool
	s.SetMotor = func(on bool) { states = append(states, on) }

	s.Write(ulaMotor)
	s.Write(ulaMotor)
	s.Write(0)

	assert.Equal(t, []bool{true, false}, states)
}

func TestSerialULAFastModeCallbackGatedOnFastTapeFlag(t *testing.T) {
	a, _ := newTestACIA()
	s := NewSerialULA(a, true)
	fast := false
	s.SetFastMode = func(f bool) { fast = f }

	s.Write(ulaMotor)
	assert.True(t, fast)

	s.Write(0)
	assert.False(t, fast)
}
