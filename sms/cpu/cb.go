package cpu

import "github.com/valerio/go-smsemu/sms/bit"

// execCB executes a plain (non-indexed) CB-prefixed opcode: rotate/shift
// r, BIT/RES/SET n,r, for all 8 register-or-(HL) operands.
func (c *CPU) execCB(opcode uint8) int {
	group := opcode >> 6
	n := bit.ExtractBits(opcode, 5, 3)
	r := opcode & 7

	value := c.reg8(r)

	switch group {
	case 0: // rotate/shift
		result := c.shiftOp(n, value)
		c.setReg8(r, result)
		c.sz53(result)
		c.setFlag(flagPV, bit.Parity(result))
		return ternary(r == 6, 15, 8)
	case 1: // BIT n,r
		c.bitTest(n, value, r == 6, value)
		return ternary(r == 6, 12, 8)
	case 2: // RES n,r
		result := bit.Reset(n, value)
		c.setReg8(r, result)
		return ternary(r == 6, 15, 8)
	default: // SET n,r
		result := bit.Set(n, value)
		c.setReg8(r, result)
		return ternary(r == 6, 15, 8)
	}
}

// execIndexedCB executes a DDCB/FDCB instruction: the displacement was
// already fetched by the caller, the operand is always (IX+d)/(IY+d), and
// for rotate/shift/RES/SET forms that also name a register (r != 6) the
// result is additionally stored in that register — the documented
// "undocumented" dual-write behavior.
func (c *CPU) execIndexedCB(disp int8, opcode uint8) int {
	base := c.indexReg().get()
	addr := uint16(int32(base) + int32(disp))
	value := c.readByte(addr)

	group := opcode >> 6
	n := bit.ExtractBits(opcode, 5, 3)
	r := opcode & 7

	switch group {
	case 0:
		result := c.shiftOp(n, value)
		c.writeByte(addr, result)
		if r != 6 {
			c.setReg8WithoutIndex(r, result)
		}
		c.sz53(result)
		c.setFlag(flagPV, bit.Parity(result))
		return 23
	case 1:
		c.bitTest(n, value, true, value)
		return 20
	case 2:
		result := bit.Reset(n, value)
		c.writeByte(addr, result)
		if r != 6 {
			c.setReg8WithoutIndex(r, result)
		}
		return 23
	default:
		result := bit.Set(n, value)
		c.writeByte(addr, result)
		if r != 6 {
			c.setReg8WithoutIndex(r, result)
		}
		return 23
	}
}

// setReg8WithoutIndex stores into one of B,C,D,E,H,L,A directly (never
// through the active IX/IY index, and never through (HL)) — used for the
// DDCB/FDCB dual-write, which always targets a *plain* register.
func (c *CPU) setReg8WithoutIndex(r uint8, value uint8) {
	switch r {
	case 0:
		c.setB(value)
	case 1:
		c.setC(value)
	case 2:
		c.setD(value)
	case 3:
		c.setE(value)
	case 4:
		c.setH(value)
	case 5:
		c.setL(value)
	default:
		c.setA(value)
	}
}

// shiftOp applies one of the 8 CB-table rotate/shift operations:
// RLC,RRC,RL,RR,SLA,SRA,SLL,SRL.
func (c *CPU) shiftOp(n uint8, value uint8) uint8 {
	switch n {
	case 0:
		return c.rlc(value)
	case 1:
		return c.rrc(value)
	case 2:
		return c.rl(value)
	case 3:
		return c.rr(value)
	case 4:
		return c.sla(value)
	case 5:
		return c.sra(value)
	case 6:
		return c.sll(value)
	default:
		return c.srl(value)
	}
}

