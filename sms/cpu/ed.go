package cpu

import "github.com/valerio/go-smsemu/sms/bit"

// execED executes one ED-prefixed opcode and returns its T-state cost.
// Opcodes outside the documented table are a 8 T-state no-op, matching
// real hardware's tolerance of undefined ED sequences.
func (c *CPU) execED(opcode uint8) (int, error) {
	switch opcode {
	case 0x47: // LD I,A
		c.i = c.a()
		return 9, nil
	case 0x4F: // LD R,A
		c.r = c.a()
		return 9, nil
	case 0x57: // LD A,I
		c.setA(c.i)
		c.sz53(c.i)
		c.setFlag(flagH, false)
		c.setFlag(flagN, false)
		c.setFlag(flagPV, c.iff2)
		return 9, nil
	case 0x5F: // LD A,R
		c.setA(c.r)
		c.sz53(c.r)
		c.setFlag(flagH, false)
		c.setFlag(flagN, false)
		c.setFlag(flagPV, c.iff2)
		return 9, nil

	case 0x44, 0x4C, 0x54, 0x5C, 0x64, 0x6C, 0x74, 0x7C: // NEG
		c.neg()
		return 8, nil

	case 0x46, 0x4E, 0x66, 0x6E: // IM 0
		c.im = IM0
		return 8, nil
	case 0x56, 0x76: // IM 1
		c.im = IM1
		return 8, nil
	case 0x5E, 0x7E: // IM 2
		c.im = IM2
		return 8, nil

	case 0x45, 0x4D, 0x55, 0x5D, 0x65, 0x6D, 0x75, 0x7D: // RETN/RETI
		c.pc.set(c.popStack())
		c.iff1 = c.iff2
		return 14, nil

	case 0x6F: // RLD
		return c.rld(), nil
	case 0x67: // RRD
		return c.rrd(), nil

	case 0xA0:
		return c.ldi(), nil
	case 0xA8:
		return c.ldd(), nil
	case 0xB0:
		return c.ldir(c.fastBlocks), nil
	case 0xB8:
		return c.lddr(c.fastBlocks), nil

	case 0xA1:
		return c.cpi(), nil
	case 0xA9:
		return c.cpd(), nil
	case 0xB1:
		return c.cpir(c.fastBlocks), nil
	case 0xB9:
		return c.cpdr(c.fastBlocks), nil

	case 0xA2:
		return c.ini(), nil
	case 0xAA:
		return c.ind(), nil
	case 0xB2:
		return c.inir(c.fastBlocks), nil
	case 0xBA:
		return c.indr(c.fastBlocks), nil

	case 0xA3:
		return c.outi(), nil
	case 0xAB:
		return c.outd(), nil
	case 0xB3:
		return c.otir(c.fastBlocks), nil
	case 0xBB:
		return c.otdr(c.fastBlocks), nil

	case 0x42, 0x52, 0x62, 0x72: // SBC HL,rp
		rp := bit.ExtractBits(opcode, 5, 4)
		c.hl.set(c.adcSbc16(c.hl.get(), c.reg16(rp), true))
		return 15, nil
	case 0x4A, 0x5A, 0x6A, 0x7A: // ADC HL,rp
		rp := bit.ExtractBits(opcode, 5, 4)
		c.hl.set(c.adcSbc16(c.hl.get(), c.reg16(rp), false))
		return 15, nil

	case 0x43, 0x53, 0x63, 0x73: // LD (nn),rp
		rp := bit.ExtractBits(opcode, 5, 4)
		nn := c.fetchOperand16()
		value := c.reg16(rp)
		c.writeByte(nn, uint8(value))
		c.writeByte(nn+1, uint8(value>>8))
		return 20, nil
	case 0x4B, 0x5B, 0x6B, 0x7B: // LD rp,(nn)
		rp := bit.ExtractBits(opcode, 5, 4)
		nn := c.fetchOperand16()
		low := c.readByte(nn)
		high := c.readByte(nn + 1)
		c.setReg16(rp, uint16(high)<<8|uint16(low))
		return 20, nil

	case 0x70: // IN (C) - flags only, result discarded
		v := c.inPort(c.bc.low())
		c.sz53(v)
		c.setFlag(flagH, false)
		c.setFlag(flagN, false)
		c.setFlag(flagPV, bit.Parity(v))
		return 12, nil
	case 0x71: // OUT (C),0
		c.outPort(c.bc.low(), 0)
		return 12, nil

	case 0x40, 0x48, 0x50, 0x58, 0x60, 0x68, 0x78: // IN r,(C)
		r := bit.ExtractBits(opcode, 5, 3)
		v := c.inPort(c.bc.low())
		c.setReg8(r, v)
		c.sz53(v)
		c.setFlag(flagH, false)
		c.setFlag(flagN, false)
		c.setFlag(flagPV, bit.Parity(v))
		return 12, nil

	case 0x41, 0x49, 0x51, 0x59, 0x61, 0x69, 0x79: // OUT (C),r
		r := bit.ExtractBits(opcode, 5, 3)
		c.outPort(c.bc.low(), c.reg8(r))
		return 12, nil
	}

	// Undocumented ED sequence: hardware degrades to a no-op-equivalent
	// fallback rather than trapping.
	return 8, nil
}
