package cpu

import "github.com/valerio/go-smsemu/sms/bit"

// The repeating block forms (LDIR/LDDR/CPIR/CPDR/INIR/INDR/OTIR/OTDR) can
// run one BC/B-iteration per StepOne call, or to completion in one call when
// fastBlocks is set. Either way the final registers, flags, memory contents
// and total T-state count are identical.
func (c *CPU) ldi() (cycles int) {
	value := c.readByte(c.hl.get())
	c.writeByte(c.de.get(), value)
	c.hl.incr()
	c.de.incr()
	c.bc.decr()

	n := value + c.a()
	c.setFlag(flagF3, n&0x08 != 0)
	c.setFlag(flagF5, n&0x02 != 0)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagPV, c.bc.get() != 0)
	return 16
}

func (c *CPU) ldd() (cycles int) {
	value := c.readByte(c.hl.get())
	c.writeByte(c.de.get(), value)
	c.hl.decr()
	c.de.decr()
	c.bc.decr()

	n := value + c.a()
	c.setFlag(flagF3, n&0x08 != 0)
	c.setFlag(flagF5, n&0x02 != 0)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagPV, c.bc.get() != 0)
	return 16
}

func (c *CPU) ldir(fast bool) int {
	if !fast {
		c.ldi()
		if c.bc.get() != 0 {
			c.pc.set(c.pc.get() - 2)
			return 21
		}
		return 16
	}
	total := 0
	for {
		total += c.ldi()
		if c.bc.get() == 0 {
			break
		}
	}
	return total
}

func (c *CPU) lddr(fast bool) int {
	if !fast {
		c.ldd()
		if c.bc.get() != 0 {
			c.pc.set(c.pc.get() - 2)
			return 21
		}
		return 16
	}
	total := 0
	for {
		total += c.ldd()
		if c.bc.get() == 0 {
			break
		}
	}
	return total
}

func (c *CPU) cpi() int {
	value := c.readByte(c.hl.get())
	a := c.a()
	result := a - value
	halfCarry := (a & 0x0F) < (value & 0x0F)

	c.hl.incr()
	c.bc.decr()

	c.setFlag(flagS, result&0x80 != 0)
	c.setFlag(flagZ, result == 0)
	c.setFlag(flagH, halfCarry)
	n := result
	if halfCarry {
		n--
	}
	c.setFlag(flagF3, n&0x08 != 0)
	c.setFlag(flagF5, n&0x02 != 0)
	c.setFlag(flagPV, c.bc.get() != 0)
	c.setFlag(flagN, true)
	return 16
}

func (c *CPU) cpd() int {
	value := c.readByte(c.hl.get())
	a := c.a()
	result := a - value
	halfCarry := (a & 0x0F) < (value & 0x0F)

	c.hl.decr()
	c.bc.decr()

	c.setFlag(flagS, result&0x80 != 0)
	c.setFlag(flagZ, result == 0)
	c.setFlag(flagH, halfCarry)
	n := result
	if halfCarry {
		n--
	}
	c.setFlag(flagF3, n&0x08 != 0)
	c.setFlag(flagF5, n&0x02 != 0)
	c.setFlag(flagPV, c.bc.get() != 0)
	c.setFlag(flagN, true)
	return 16
}

func (c *CPU) cpir(fast bool) int {
	if !fast {
		c.cpi()
		if c.bc.get() != 0 && !c.flag(flagZ) {
			c.pc.set(c.pc.get() - 2)
			return 21
		}
		return 16
	}
	total := 0
	for {
		total += c.cpi()
		if c.bc.get() == 0 || c.flag(flagZ) {
			break
		}
	}
	return total
}

func (c *CPU) cpdr(fast bool) int {
	if !fast {
		c.cpd()
		if c.bc.get() != 0 && !c.flag(flagZ) {
			c.pc.set(c.pc.get() - 2)
			return 21
		}
		return 16
	}
	total := 0
	for {
		total += c.cpd()
		if c.bc.get() == 0 || c.flag(flagZ) {
			break
		}
	}
	return total
}

func (c *CPU) ini() int {
	value := c.inPort(c.bc.low())
	c.writeByte(c.hl.get(), value)
	c.hl.incr()
	c.setB(c.b() - 1)

	c.setFlag(flagN, value&0x80 != 0)
	c.setFlag(flagZ, c.b() == 0)
	c.setFlag(flagS, c.b()&0x80 != 0)
	sum := uint16(value) + uint16((c.c_()+1)&0xFF)
	c.setFlag(flagH, sum > 0xFF)
	c.setFlag(flagC, sum > 0xFF)
	c.setFlag(flagPV, bit.Parity(uint8(sum&7)^c.b()))
	c.setFlag(flagF3, c.b()&0x08 != 0)
	c.setFlag(flagF5, c.b()&0x20 != 0)
	return 16
}

func (c *CPU) ind() int {
	value := c.inPort(c.bc.low())
	c.writeByte(c.hl.get(), value)
	c.hl.decr()
	c.setB(c.b() - 1)

	c.setFlag(flagN, value&0x80 != 0)
	c.setFlag(flagZ, c.b() == 0)
	c.setFlag(flagS, c.b()&0x80 != 0)
	sum := uint16(value) + uint16((c.c_()-1)&0xFF)
	c.setFlag(flagH, sum > 0xFF)
	c.setFlag(flagC, sum > 0xFF)
	c.setFlag(flagPV, bit.Parity(uint8(sum&7)^c.b()))
	c.setFlag(flagF3, c.b()&0x08 != 0)
	c.setFlag(flagF5, c.b()&0x20 != 0)
	return 16
}

func (c *CPU) inir(fast bool) int {
	if !fast {
		c.ini()
		if c.b() != 0 {
			c.pc.set(c.pc.get() - 2)
			return 21
		}
		return 16
	}
	total := 0
	for {
		total += c.ini()
		if c.b() == 0 {
			break
		}
	}
	return total
}

func (c *CPU) indr(fast bool) int {
	if !fast {
		c.ind()
		if c.b() != 0 {
			c.pc.set(c.pc.get() - 2)
			return 21
		}
		return 16
	}
	total := 0
	for {
		total += c.ind()
		if c.b() == 0 {
			break
		}
	}
	return total
}

func (c *CPU) outi() int {
	value := c.readByte(c.hl.get())
	c.hl.incr()
	c.setB(c.b() - 1)
	c.outPort(c.bc.low(), value)

	c.setFlag(flagN, value&0x80 != 0)
	c.setFlag(flagZ, c.b() == 0)
	c.setFlag(flagS, c.b()&0x80 != 0)
	sum := uint16(value) + uint16(c.l())
	c.setFlag(flagH, sum > 0xFF)
	c.setFlag(flagC, sum > 0xFF)
	c.setFlag(flagPV, bit.Parity(uint8(sum&7)^c.b()))
	c.setFlag(flagF3, c.b()&0x08 != 0)
	c.setFlag(flagF5, c.b()&0x20 != 0)
	return 16
}

func (c *CPU) outd() int {
	value := c.readByte(c.hl.get())
	c.hl.decr()
	c.setB(c.b() - 1)
	c.outPort(c.bc.low(), value)

	c.setFlag(flagN, value&0x80 != 0)
	c.setFlag(flagZ, c.b() == 0)
	c.setFlag(flagS, c.b()&0x80 != 0)
	sum := uint16(value) + uint16(c.l())
	c.setFlag(flagH, sum > 0xFF)
	c.setFlag(flagC, sum > 0xFF)
	c.setFlag(flagPV, bit.Parity(uint8(sum&7)^c.b()))
	c.setFlag(flagF3, c.b()&0x08 != 0)
	c.setFlag(flagF5, c.b()&0x20 != 0)
	return 16
}

func (c *CPU) otir(fast bool) int {
	if !fast {
		c.outi()
		if c.b() != 0 {
			c.pc.set(c.pc.get() - 2)
			return 21
		}
		return 16
	}
	total := 0
	for {
		total += c.outi()
		if c.b() == 0 {
			break
		}
	}
	return total
}

func (c *CPU) otdr(fast bool) int {
	if !fast {
		c.outd()
		if c.b() != 0 {
			c.pc.set(c.pc.get() - 2)
			return 21
		}
		return 16
	}
	total := 0
	for {
		total += c.outd()
		if c.b() == 0 {
			break
		}
	}
	return total
}

// RLD/RRD shift a BCD nibble between A and (HL).
func (c *CPU) rld() int {
	memVal := c.readByte(c.hl.get())
	a := c.a()

	newMem := (memVal << 4) | (a & 0x0F)
	newA := (a & 0xF0) | (memVal >> 4)

	c.writeByte(c.hl.get(), newMem)
	c.setA(newA)

	c.sz53(newA)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagPV, bit.Parity(newA))
	return 18
}

func (c *CPU) rrd() int {
	memVal := c.readByte(c.hl.get())
	a := c.a()

	newMem := (a << 4) | (memVal >> 4)
	newA := (a & 0xF0) | (memVal & 0x0F)

	c.writeByte(c.hl.get(), newMem)
	c.setA(newA)

	c.sz53(newA)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagPV, bit.Parity(newA))
	return 18
}
