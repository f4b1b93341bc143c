package fdc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroParamCommandCompletesImmediately(t *testing.T) {
	c := New()
	c.WriteMMIO(RegCommand, 0x2C) // read drive status: 0 parameters
	assert.Zero(t, c.ReadMMIO(RegStatus)&statusBusy, "zero-parameter command should not stay busy")
}

func TestCommandGoesBusyUntilParametersArrive(t *testing.T) {
	c := New()
	c.WriteMMIO(RegCommand, 0x29) // seek: 1 parameter
	assert.NotZero(t, c.ReadMMIO(RegStatus)&statusBusy)

	c.WriteMMIO(RegParameter, 0x05)
	assert.Zero(t, c.ReadMMIO(RegStatus)&statusBusy, "controller should go idle once all parameters land")
}

func TestMultiParameterCommandStaysBusyUntilLastByte(t *testing.T) {
	c := New()
	c.WriteMMIO(RegCommand, 0x35) // specify: 4 parameters
	for i := 0; i < 3; i++ {
		c.WriteMMIO(RegParameter, 0x00)
		assert.NotZero(t, c.ReadMMIO(RegStatus)&statusBusy, "should remain busy before the final parameter byte")
	}
	c.WriteMMIO(RegParameter, 0x00)
	assert.Zero(t, c.ReadMMIO(RegStatus)&statusBusy)
}

func TestUnknownCommandDoesNotStayBusy(t *testing.T) {
	c := New()
	c.WriteMMIO(RegCommand, 0x3F) // not in paramCount
	assert.Zero(t, c.ReadMMIO(RegStatus)&statusBusy)
}

func TestCommandWhileBusyIsIgnored(t *testing.T) {
	c := New()
	c.WriteMMIO(RegCommand, 0x29) // seek: 1 parameter, now busy
	c.WriteMMIO(RegCommand, 0x2C) // should be dropped, not restart as a new command
	assert.NotZero(t, c.ReadMMIO(RegStatus)&statusBusy)
}

func TestResetClearsBusyAndPendingParameters(t *testing.T) {
	c := New()
	c.WriteMMIO(RegCommand, 0x35) // specify: 4 parameters
	c.WriteMMIO(RegReset, 0)
	assert.Zero(t, c.ReadMMIO(RegStatus)&statusBusy)

	// Pending parameter count was cleared too: a stray parameter byte after
	// reset must not be mistaken for completing the aborted command.
	c.WriteMMIO(RegParameter, 0x00)
	assert.Zero(t, c.ReadMMIO(RegStatus)&statusBusy)
}
