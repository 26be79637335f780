package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoypad_pressClearsBit(t *testing.T) {
	j := newJoypad()
	j.Press(ButtonDown)

	assert.Equal(t, uint8(0x3F&^(1<<ButtonDown)), j.state)
}

func TestJoypad_releaseSetsBit(t *testing.T) {
	j := newJoypad()
	j.Press(Button1)
	j.Release(Button1)

	assert.Equal(t, uint8(0x3F), j.state)
}

func TestControllers_portBCarriesResetLine(t *testing.T) {
	c := NewControllers()

	assert.Equal(t, uint8(1), c.resetBit)
	assert.NotEqual(t, uint8(0), c.PortB()&0x10)

	c.PressReset()
	assert.Equal(t, uint8(0), c.PortB()&0x10)
}

func TestControllers_portAMixesBothPads(t *testing.T) {
	c := NewControllers()
	c.Pad2.Press(ButtonUp)

	assert.Equal(t, uint8(0), c.PortA()&0x40, "pad2 up bit lands in port A bit 6")
}
