package cpu

import "github.com/valerio/go-smsemu/sms/bit"

// Register16 is a 16-bit register pair (AF, BC, DE, HL, IX, IY, SP, PC).
type Register16 uint16

func (r Register16) get() uint16 { return uint16(r) }

func (r *Register16) set(value uint16) { *r = Register16(value) }

func (r Register16) high() uint8 { return bit.High(uint16(r)) }

func (r Register16) low() uint8 { return bit.Low(uint16(r)) }

func (r *Register16) setHigh(value uint8) {
	*r = Register16(bit.Combine(value, r.low()))
}

func (r *Register16) setLow(value uint8) {
	*r = Register16(bit.Combine(r.high(), value))
}

func (r *Register16) incr() { *r = Register16(uint16(*r) + 1) }

func (r *Register16) decr() { *r = Register16(uint16(*r) - 1) }

// Flag is one of the 8 bits of the F register.
type Flag uint8

const (
	flagC  Flag = 0x01
	flagN  Flag = 0x02
	flagPV Flag = 0x04
	flagF3 Flag = 0x08
	flagH  Flag = 0x10
	flagF5 Flag = 0x20
	flagZ  Flag = 0x40
	flagS  Flag = 0x80
)

// IndexMode selects which register pair a DD/FD-prefixed instruction
// addresses: the plain HL pair, or the IX/IY index registers.
type IndexMode uint8

const (
	IndexNone IndexMode = iota
	IndexIX
	IndexIY
)

// InterruptMode is the Z80's IM 0/1/2 response mode.
type InterruptMode uint8

const (
	IM0 InterruptMode = iota
	IM1
	IM2
)

// flagBitIndex returns f's bit position within the F register (0 = flagC
// through 7 = flagS), the index form setFlag needs to drive bit.SetIf.
func flagBitIndex(f Flag) uint8 {
	switch f {
	case flagC:
		return 0
	case flagN:
		return 1
	case flagPV:
		return 2
	case flagF3:
		return 3
	case flagH:
		return 4
	case flagF5:
		return 5
	case flagZ:
		return 6
	default: // flagS
		return 7
	}
}

func (c *CPU) setFlag(f Flag, set bool) {
	c.af.setLow(bit.SetIf(flagBitIndex(f), c.af.low(), set))
}

func (c *CPU) flag(f Flag) bool {
	return c.af.low()&uint8(f) != 0
}

// a, f, b, c8, d, e, h, l give direct access to the main register set's
// 8-bit halves; used pervasively by the opcode tables.
func (c *CPU) a() uint8  { return c.af.high() }
func (c *CPU) f() uint8  { return c.af.low() }
func (c *CPU) b() uint8  { return c.bc.high() }
func (c *CPU) c_() uint8 { return c.bc.low() }
func (c *CPU) d() uint8  { return c.de.high() }
func (c *CPU) e() uint8  { return c.de.low() }
func (c *CPU) h() uint8  { return c.hl.high() }
func (c *CPU) l() uint8  { return c.hl.low() }

func (c *CPU) setA(v uint8) { c.af.setHigh(v) }
func (c *CPU) setB(v uint8) { c.bc.setHigh(v) }
func (c *CPU) setC(v uint8) { c.bc.setLow(v) }
func (c *CPU) setD(v uint8) { c.de.setHigh(v) }
func (c *CPU) setE(v uint8) { c.de.setLow(v) }
func (c *CPU) setH(v uint8) { c.hl.setHigh(v) }
func (c *CPU) setL(v uint8) { c.hl.setLow(v) }

// indexReg returns the register pair a DD/FD-prefixed instruction is
// currently addressing: HL, IX or IY depending on the active IndexMode.
func (c *CPU) indexReg() *Register16 {
	switch c.idxMode {
	case IndexIX:
		return &c.ix
	case IndexIY:
		return &c.iy
	default:
		return &c.hl
	}
}

// reg8 reads one of the 8 three-bit-encoded register operands used by the
// vast majority of the base/CB tables: 0..7 = B,C,D,E,H,L,(HL),A. index 6
// (the "(HL)" slot) goes through the bus and is redirected to (IX+d)/(IY+d)
// when a DD/FD prefix is active.
func (c *CPU) reg8(index uint8) uint8 {
	switch index {
	case 0:
		return c.b()
	case 1:
		return c.c_()
	case 2:
		return c.d()
	case 3:
		return c.e()
	case 4:
		if c.idxMode == IndexNone {
			return c.h()
		}
		return c.indexReg().high()
	case 5:
		if c.idxMode == IndexNone {
			return c.l()
		}
		return c.indexReg().low()
	case 6:
		return c.bus.Read(c.hlAddr())
	default:
		return c.a()
	}
}

func (c *CPU) setReg8(index uint8, value uint8) {
	switch index {
	case 0:
		c.setB(value)
	case 1:
		c.setC(value)
	case 2:
		c.setD(value)
	case 3:
		c.setE(value)
	case 4:
		if c.idxMode == IndexNone {
			c.setH(value)
		} else {
			c.indexReg().setHigh(value)
		}
	case 5:
		if c.idxMode == IndexNone {
			c.setL(value)
		} else {
			c.indexReg().setLow(value)
		}
	case 6:
		c.bus.Write(c.hlAddr(), value)
	default:
		c.setA(value)
	}
}

// reg16 reads one of the four "rp" encoded 16-bit pairs: 0=BC,1=DE,2=HL/IX/IY,3=SP.
func (c *CPU) reg16(index uint8) uint16 {
	switch index {
	case 0:
		return c.bc.get()
	case 1:
		return c.de.get()
	case 2:
		return c.indexReg().get()
	default:
		return c.sp.get()
	}
}

func (c *CPU) setReg16(index uint8, value uint16) {
	switch index {
	case 0:
		c.bc.set(value)
	case 1:
		c.de.set(value)
	case 2:
		c.indexReg().set(value)
	default:
		c.sp.set(value)
	}
}

// reg16AF reads one of the four "rp2" encoded pairs used by PUSH/POP: same
// as reg16 but slot 3 is AF rather than SP.
func (c *CPU) reg16AF(index uint8) uint16 {
	if index == 3 {
		return c.af.get()
	}
	return c.reg16(index)
}

func (c *CPU) setReg16AF(index uint8, value uint16) {
	if index == 3 {
		c.af.set(value)
		return
	}
	c.setReg16(index, value)
}
