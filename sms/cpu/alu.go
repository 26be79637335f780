package cpu

import "github.com/valerio/go-smsemu/sms/bit"

// sz53 sets S, Z, F3 and F5 from result, the common tail of nearly every
// 8-bit ALU/rotate/shift/bit-manipulation flag computation.
func (c *CPU) sz53(result uint8) {
	c.setFlag(flagS, result&0x80 != 0)
	c.setFlag(flagZ, result == 0)
	c.setFlag(flagF3, result&0x08 != 0)
	c.setFlag(flagF5, result&0x20 != 0)
}

func (c *CPU) add8(a, b uint8, withCarry bool) uint8 {
	carryIn := uint16(0)
	if withCarry && c.flag(flagC) {
		carryIn = 1
	}
	result16 := uint16(a) + uint16(b) + carryIn
	result := uint8(result16)

	c.sz53(result)
	c.setFlag(flagH, (a&0x0F)+(b&0x0F)+uint8(carryIn) > 0x0F)
	c.setFlag(flagC, result16 > 0xFF)
	overflow := (a^b)&0x80 == 0 && (a^result)&0x80 != 0
	c.setFlag(flagPV, overflow)
	c.setFlag(flagN, false)
	return result
}

func (c *CPU) sub8(a, b uint8, withCarry bool) uint8 {
	carryIn := uint16(0)
	if withCarry && c.flag(flagC) {
		carryIn = 1
	}
	result16 := uint16(a) - uint16(b) - carryIn
	result := uint8(result16)

	c.sz53(result)
	c.setFlag(flagH, int(a&0x0F)-int(b&0x0F)-int(carryIn) < 0)
	c.setFlag(flagC, result16 > 0xFF)
	overflow := (a^b)&0x80 != 0 && (a^result)&0x80 != 0
	c.setFlag(flagPV, overflow)
	c.setFlag(flagN, true)
	return result
}

// cp8 is a subtraction whose result is simply discarded; flags are set
// exactly as for SUB.
func (c *CPU) cp8(a, b uint8) {
	c.sub8(a, b, false)
}

func (c *CPU) and8(a, b uint8) uint8 {
	result := a & b
	c.sz53(result)
	c.setFlag(flagH, true)
	c.setFlag(flagPV, bit.Parity(result))
	c.setFlag(flagN, false)
	c.setFlag(flagC, false)
	return result
}

func (c *CPU) or8(a, b uint8) uint8 {
	result := a | b
	c.sz53(result)
	c.setFlag(flagH, false)
	c.setFlag(flagPV, bit.Parity(result))
	c.setFlag(flagN, false)
	c.setFlag(flagC, false)
	return result
}

func (c *CPU) xor8(a, b uint8) uint8 {
	result := a ^ b
	c.sz53(result)
	c.setFlag(flagH, false)
	c.setFlag(flagPV, bit.Parity(result))
	c.setFlag(flagN, false)
	c.setFlag(flagC, false)
	return result
}

func (c *CPU) inc8(value uint8) uint8 {
	result := value + 1
	c.sz53(result)
	c.setFlag(flagH, value&0x0F == 0x0F)
	c.setFlag(flagPV, value == 0x7F)
	c.setFlag(flagN, false)
	return result
}

func (c *CPU) dec8(value uint8) uint8 {
	result := value - 1
	c.sz53(result)
	c.setFlag(flagH, value&0x0F == 0x00)
	c.setFlag(flagPV, value == 0x80)
	c.setFlag(flagN, true)
	return result
}

// addHL16 adds the operand to the indexed register pair (HL/IX/IY) in
// place, setting H/N/C but leaving S/Z/P-V untouched (the documented
// ADD HL,rr behavior).
func (c *CPU) addHL16(hl, value uint16) uint16 {
	result := uint32(hl) + uint32(value)
	c.setFlag(flagH, (hl&0x0FFF)+(value&0x0FFF) > 0x0FFF)
	c.setFlag(flagC, result > 0xFFFF)
	c.setFlag(flagN, false)
	res16 := uint16(result)
	c.setFlag(flagF3, bit.IsSet(3, bit.High(res16)))
	c.setFlag(flagF5, bit.IsSet(5, bit.High(res16)))
	return res16
}

// adcSbc16 implements ADC HL,rr / SBC HL,rr (ED-prefixed), which unlike
// ADD HL,rr does set S/Z/P-V from the full 16-bit result.
func (c *CPU) adcSbc16(hl, value uint16, subtract bool) uint16 {
	carryIn := uint32(0)
	if c.flag(flagC) {
		carryIn = 1
	}

	var result32 uint32
	var halfCarry, overflow bool

	if subtract {
		result32 = uint32(hl) - uint32(value) - carryIn
		halfCarry = int32(hl&0x0FFF)-int32(value&0x0FFF)-int32(carryIn) < 0
		overflow = (hl^value)&0x8000 != 0 && (hl^uint16(result32))&0x8000 != 0
	} else {
		result32 = uint32(hl) + uint32(value) + carryIn
		halfCarry = (hl&0x0FFF)+(value&0x0FFF)+uint16(carryIn) > 0x0FFF
		overflow = (hl^value)&0x8000 == 0 && (hl^uint16(result32))&0x8000 != 0
	}

	result := uint16(result32)
	c.setFlag(flagS, result&0x8000 != 0)
	c.setFlag(flagZ, result == 0)
	c.setFlag(flagF3, bit.IsSet(3, bit.High(result)))
	c.setFlag(flagF5, bit.IsSet(5, bit.High(result)))
	c.setFlag(flagH, halfCarry)
	c.setFlag(flagPV, overflow)
	c.setFlag(flagN, subtract)
	c.setFlag(flagC, result32 > 0xFFFF)
	return result
}

// daa implements the classical BCD-correction table keyed on the prior N/H/C
// flags, per the documented Z80 behavior.
func (c *CPU) daa() {
	a := c.a()
	correction := uint8(0)
	carry := c.flag(flagC)
	halfCarry := c.flag(flagH)
	subtract := c.flag(flagN)

	if halfCarry || (!subtract && a&0x0F > 9) {
		correction |= 0x06
	}
	if carry || (!subtract && a > 0x99) {
		correction |= 0x60
		carry = true
	}

	var result uint8
	if subtract {
		result = a - correction
	} else {
		result = a + correction
	}

	c.sz53(result)
	c.setFlag(flagPV, bit.Parity(result))
	c.setFlag(flagC, carry)
	if subtract {
		c.setFlag(flagH, halfCarry && a&0x0F < 6)
	} else {
		c.setFlag(flagH, a&0x0F > 9)
	}
	c.setA(result)
}

func (c *CPU) cpl() {
	result := c.a() ^ 0xFF
	c.setA(result)
	c.setFlag(flagH, true)
	c.setFlag(flagN, true)
	c.setFlag(flagF3, result&0x08 != 0)
	c.setFlag(flagF5, result&0x20 != 0)
}

func (c *CPU) neg() {
	a := c.a()
	result := c.sub8(0, a, false)
	c.setA(result)
}

func (c *CPU) scf() {
	a := c.a()
	c.setFlag(flagC, true)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagF3, a&0x08 != 0)
	c.setFlag(flagF5, a&0x20 != 0)
}

func (c *CPU) ccf() {
	a := c.a()
	wasCarry := c.flag(flagC)
	c.setFlag(flagH, wasCarry)
	c.setFlag(flagC, !wasCarry)
	c.setFlag(flagN, false)
	c.setFlag(flagF3, a&0x08 != 0)
	c.setFlag(flagF5, a&0x20 != 0)
}

// --- rotate/shift, used both by the accumulator-only base opcodes (RLCA
// etc, which preserve S/Z/P-V) and the CB-prefixed register/memory forms
// (which recompute S/Z/P-V from the result). ---

func (c *CPU) rlc(value uint8) uint8 {
	carryOut := value&0x80 != 0
	result := value<<1 | b2u8(carryOut)
	c.setFlag(flagC, carryOut)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagF3, result&0x08 != 0)
	c.setFlag(flagF5, result&0x20 != 0)
	return result
}

func (c *CPU) rrc(value uint8) uint8 {
	carryOut := value&0x01 != 0
	result := value>>1 | (b2u8(carryOut) << 7)
	c.setFlag(flagC, carryOut)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagF3, result&0x08 != 0)
	c.setFlag(flagF5, result&0x20 != 0)
	return result
}

func (c *CPU) rl(value uint8) uint8 {
	carryIn := b2u8(c.flag(flagC))
	carryOut := value&0x80 != 0
	result := value<<1 | carryIn
	c.setFlag(flagC, carryOut)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagF3, result&0x08 != 0)
	c.setFlag(flagF5, result&0x20 != 0)
	return result
}

func (c *CPU) rr(value uint8) uint8 {
	carryIn := b2u8(c.flag(flagC))
	carryOut := value&0x01 != 0
	result := value>>1 | (carryIn << 7)
	c.setFlag(flagC, carryOut)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagF3, result&0x08 != 0)
	c.setFlag(flagF5, result&0x20 != 0)
	return result
}

func (c *CPU) sla(value uint8) uint8 {
	carryOut := value&0x80 != 0
	result := value << 1
	c.setFlag(flagC, carryOut)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagF3, result&0x08 != 0)
	c.setFlag(flagF5, result&0x20 != 0)
	return result
}

func (c *CPU) sra(value uint8) uint8 {
	carryOut := value&0x01 != 0
	result := (value & 0x80) | (value >> 1)
	c.setFlag(flagC, carryOut)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagF3, result&0x08 != 0)
	c.setFlag(flagF5, result&0x20 != 0)
	return result
}

// sll is the undocumented "SLL"/"SL1" shift: like SLA but shifts a 1 into
// bit 0 instead of 0.
func (c *CPU) sll(value uint8) uint8 {
	carryOut := value&0x80 != 0
	result := (value << 1) | 0x01
	c.setFlag(flagC, carryOut)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagF3, result&0x08 != 0)
	c.setFlag(flagF5, result&0x20 != 0)
	return result
}

func (c *CPU) srl(value uint8) uint8 {
	carryOut := value&0x01 != 0
	result := value >> 1
	c.setFlag(flagC, carryOut)
	c.setFlag(flagH, false)
	c.setFlag(flagN, false)
	c.setFlag(flagF3, result&0x08 != 0)
	c.setFlag(flagF5, result&0x20 != 0)
	return result
}

func b2u8(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

// bitTest implements BIT n,r / BIT n,(HL): Z is set from the tested bit.
// F3/F5 come from the tested value for register forms, and from the high
// byte of the effective address (the MEMPTR/WZ latch) for (HL)/(IX+d)/(IY+d)
// forms; callers pass the operand byte as that stand-in source.
func (c *CPU) bitTest(n uint8, value uint8, addrDerivedF35 bool, f35Source uint8) {
	zero := !bit.IsSet(n, value)
	c.setFlag(flagZ, zero)
	c.setFlag(flagS, !zero && n == 7)
	c.setFlag(flagH, true)
	c.setFlag(flagN, false)
	c.setFlag(flagPV, zero)
	f35Src := value
	if addrDerivedF35 {
		f35Src = f35Source
	}
	c.setFlag(flagF3, bit.IsSet(3, f35Src))
	c.setFlag(flagF5, bit.IsSet(5, f35Src))
}
