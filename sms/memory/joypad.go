package memory

import "github.com/valerio/go-smsemu/sms/bit"

// Button identifies one digital input on an SMS joypad.
type Button uint8

const (
	ButtonUp Button = iota
	ButtonDown
	ButtonLeft
	ButtonRight
	Button1
	Button2
)

// Joypad tracks one controller's 6 digital inputs as an active-low bitfield:
// a set bit means released, matching the wire-level convention the bus
// reads directly into the 0xDC/0xDD ports.
type Joypad struct {
	state uint8 // bits 0-5 used, 1 = released
}

func newJoypad() *Joypad {
	return &Joypad{state: 0x3F}
}

// Press marks a button as held (clears its bit).
func (j *Joypad) Press(b Button) {
	j.state = bit.Reset(uint8(b), j.state)
}

// Release marks a button as released (sets its bit).
func (j *Joypad) Release(b Button) {
	j.state = bit.Set(uint8(b), j.state)
}

// Controllers holds both joypads and the console's reset button, and
// composes the 0xDC/0xDD port bytes the bus exposes to the CPU.
type Controllers struct {
	Pad1, Pad2 *Joypad
	resetBit   uint8 // 1 = released
}

func NewControllers() *Controllers {
	return &Controllers{
		Pad1:     newJoypad(),
		Pad2:     newJoypad(),
		resetBit: 1,
	}
}

// PressReset / ReleaseReset drive the console reset button (PAUSE on some
// SMS models' port B bit 4).
func (c *Controllers) PressReset()   { c.resetBit = 0 }
func (c *Controllers) ReleaseReset() { c.resetBit = 1 }

// PortA composes the 0xDC byte: pad1's 6 bits plus pad2's up/down.
func (c *Controllers) PortA() uint8 {
	p1 := c.Pad1.state & 0x3F
	p2UpDown := (c.Pad2.state & 0x03) << 6
	return p1 | p2UpDown
}

// PortB composes the 0xDD byte: pad2's left/right/button1/button2, the
// reset line, and unused bits reading high.
func (c *Controllers) PortB() uint8 {
	p2Rest := (c.Pad2.state >> 2) & 0x0F
	result := p2Rest
	result |= c.resetBit << 4
	result |= 0xE0 // bits 5-7 unused, always read 1
	return result
}
