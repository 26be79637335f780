// Package cpu implements a cycle-counted Z80 instruction interpreter: the
// full documented instruction set plus the CB/DD/FD/ED/DDCB/FDCB prefix
// chains, the three interrupt response modes, HALT, and the standard
// undocumented F3/F5 flag behavior. It knows nothing about what is wired to
// its bus; the machine scheduler (package sms, the root package) is the
// only caller that ticks VDP/PSG and feeds the IRQ line back in.
package cpu

import (
	"fmt"

	"github.com/valerio/go-smsemu/sms/bit"
)

// Bus is everything the CPU needs from the rest of the machine: 16-bit
// memory access and 8-bit I/O port access (SMS hardware only decodes the
// low 8 bits of the port address, so ports are plain bytes here).
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	In(port uint8) uint8
	Out(port uint8, value uint8)
}

// WaitStateHooks lets a host charge extra T-states for a memory or I/O
// access, e.g. to model SMS VDP access penalties on contended accesses.
type WaitStateHooks struct {
	MemoryAccess func(address uint16) int
	IOAccess     func(port uint8) int
}

// CPU holds the full Z80 register file and interrupt state.
type CPU struct {
	bus Bus

	af, bc, de, hl     Register16
	af2, bc2, de2, hl2 Register16
	ix, iy             Register16
	sp, pc             Register16
	i, r               uint8

	iff1, iff2 bool
	im         InterruptMode
	halted     bool

	eiDeferred bool

	irqPending bool
	nmiPending bool

	idxMode     IndexMode
	dispFetched bool
	dispLatch   int8

	wait               WaitStateHooks
	includeWaitInCycle bool
	waitAccum          int

	im0Opcode uint8
	im2Vector uint8

	fastBlocks bool

	// Trace is called before each instruction boundary with the PC the
	// opcode was fetched from and the opcode byte itself. It must never
	// mutate CPU state.
	Trace func(pc uint16, opcode uint8)
}

// New returns a CPU wired to bus, with registers zeroed (as if powered on
// with no BIOS/manual-init boot sequence applied yet).
func New(bus Bus) *CPU {
	return &CPU{
		bus:       bus,
		im0Opcode: 0xFF, // RST 38h, the documented default IM0 injection
		im2Vector: 0xFF,
	}
}

// SetWaitStateHooks installs optional per-access cycle penalties.
func (c *CPU) SetWaitStateHooks(hooks WaitStateHooks, includeInCycles bool) {
	c.wait = hooks
	c.includeWaitInCycle = includeInCycles
}

// SetIM0Opcode configures the opcode byte the bus "injects" during an IM 0
// interrupt acceptance sequence (default 0xFF = RST 38h).
func (c *CPU) SetIM0Opcode(opcode uint8) { c.im0Opcode = opcode }

// SetIM2Vector configures the low byte of the IM 2 vector table address the
// bus supplies during acceptance (default 0xFF).
func (c *CPU) SetIM2Vector(vector uint8) { c.im2Vector = vector }

// SetFastBlocks selects whether repeating block instructions (LDIR, LDDR,
// CPIR, CPDR, INIR, INDR, OTIR, OTDR) run to completion within a single
// StepOne call instead of one BC/B-decrement iteration per call. Either way
// the final registers, flags, memory contents and total T-state count are
// identical.
func (c *CPU) SetFastBlocks(fast bool) { c.fastBlocks = fast }

// RequestIRQ raises the maskable interrupt request edge.
func (c *CPU) RequestIRQ() { c.irqPending = true }

// RequestNMI raises the non-maskable interrupt request edge.
func (c *CPU) RequestNMI() { c.nmiPending = true }

func (c *CPU) incrementR() {
	c.r = (c.r & 0x80) | ((c.r + 1) & 0x7F)
}

// fetchM1 reads the byte at PC, advances PC, and counts it as an M1
// (opcode fetch) cycle, incrementing R's low 7 bits.
func (c *CPU) fetchM1() uint8 {
	v := c.readByte(c.pc.get())
	c.pc.incr()
	c.incrementR()
	return v
}

// fetchOperand reads the byte at PC and advances PC without touching R;
// used for immediates, displacements, and the final opcode byte of a
// DDCB/FDCB sequence (which hardware fetches without an M1 cycle).
func (c *CPU) fetchOperand() uint8 {
	v := c.readByte(c.pc.get())
	c.pc.incr()
	return v
}

func (c *CPU) fetchOperand16() uint16 {
	low := c.fetchOperand()
	high := c.fetchOperand()
	return uint16(high)<<8 | uint16(low)
}

func (c *CPU) readByte(address uint16) uint8 {
	if c.wait.MemoryAccess != nil {
		c.waitAccum += c.wait.MemoryAccess(address)
	}
	return c.bus.Read(address)
}

func (c *CPU) writeByte(address uint16, value uint8) {
	if c.wait.MemoryAccess != nil {
		c.waitAccum += c.wait.MemoryAccess(address)
	}
	c.bus.Write(address, value)
}

func (c *CPU) inPort(port uint8) uint8 {
	if c.wait.IOAccess != nil {
		c.waitAccum += c.wait.IOAccess(port)
	}
	return c.bus.In(port)
}

func (c *CPU) outPort(port uint8, value uint8) {
	if c.wait.IOAccess != nil {
		c.waitAccum += c.wait.IOAccess(port)
	}
	c.bus.Out(port, value)
}

// hlAddr returns the effective address a base opcode's "(HL)" operand
// resolves to: HL directly, or (IX+d)/(IY+d) with the displacement fetched
// (and cached for the rest of this instruction) when a DD/FD prefix is
// active.
func (c *CPU) hlAddr() uint16 {
	switch c.idxMode {
	case IndexIX:
		return uint16(int32(c.ix.get()) + int32(c.indexDisp()))
	case IndexIY:
		return uint16(int32(c.iy.get()) + int32(c.indexDisp()))
	default:
		return c.hl.get()
	}
}

// indexDisp fetches the signed displacement byte for a DD/FD-prefixed
// instruction exactly once, immediately after the opcode byte (the
// position mandated by the real instruction encoding for every non-CB
// (IX+d)/(IY+d) form).
func (c *CPU) indexDisp() int8 {
	if !c.dispFetched {
		c.dispLatch = bit.SignedDisplacement(c.fetchOperand())
		c.dispFetched = true
	}
	return c.dispLatch
}

func (c *CPU) pushStack(value uint16) {
	c.sp.decr()
	c.writeByte(c.sp.get(), uint8(value>>8))
	c.sp.decr()
	c.writeByte(c.sp.get(), uint8(value))
}

func (c *CPU) popStack() uint16 {
	low := c.readByte(c.sp.get())
	c.sp.incr()
	high := c.readByte(c.sp.get())
	c.sp.incr()
	return uint16(high)<<8 | uint16(low)
}

// StepOne executes exactly one interrupt-acceptance sequence or one
// instruction (including its full prefix chain) and returns the number of
// T-states consumed plus whether an IRQ or NMI was accepted this step.
func (c *CPU) StepOne() (cycles int, irqAccepted bool, nmiAccepted bool, err error) {
	blockIRQ := c.eiDeferred
	c.eiDeferred = false
	c.waitAccum = 0

	if c.nmiPending {
		c.nmiPending = false
		c.pushStack(c.pc.get())
		c.pc.set(0x0066)
		c.iff1 = false
		c.halted = false
		return 11, false, true, nil
	}

	if c.irqPending && c.iff1 && !blockIRQ {
		c.irqPending = false
		c.iff1 = false
		c.halted = false
		cyc, err := c.acceptIRQ()
		return cyc, true, false, err
	}

	if c.halted {
		return 4, false, false, nil
	}

	pc := c.pc.get()
	c.idxMode = IndexNone
	c.dispFetched = false

	opcode := c.fetchM1()
	for opcode == 0xDD || opcode == 0xFD {
		if opcode == 0xDD {
			c.idxMode = IndexIX
		} else {
			c.idxMode = IndexIY
		}
		c.dispFetched = false
		opcode = c.fetchM1()
	}

	if c.Trace != nil {
		c.Trace(pc, opcode)
	}

	switch opcode {
	case 0xCB:
		if c.idxMode != IndexNone {
			disp := bit.SignedDisplacement(c.fetchOperand())
			op := c.fetchOperand()
			cyc := c.execIndexedCB(disp, op)
			return c.withWait(cyc), false, false, nil
		}
		op := c.fetchM1()
		cyc := c.execCB(op)
		return c.withWait(cyc), false, false, nil
	case 0xED:
		op := c.fetchM1()
		cyc, err := c.execED(op)
		return c.withWait(cyc), false, false, err
	default:
		cyc := c.execBase(opcode)
		return c.withWait(cyc), false, false, nil
	}
}

// withWait folds accumulated wait-state penalties into the reported cycle
// count when configured to do so. Regardless of the flag, the rest of the
// machine always schedules off the *reported* total, so host timing stays
// internally consistent either way.
func (c *CPU) withWait(cycles int) int {
	if c.includeWaitInCycle {
		return cycles + c.waitAccum
	}
	return cycles
}

func (c *CPU) acceptIRQ() (int, error) {
	switch c.im {
	case IM0:
		opcode := c.im0Opcode
		switch {
		case opcode&0xC7 == 0xC7: // RST n
			c.pushStack(c.pc.get())
			c.pc.set(uint16(opcode & 0x38))
			return 11, nil
		case opcode == 0x00: // NOP injection
			return 4, nil
		default:
			return 0, fmt.Errorf("cpu: unsupported IM0 injected opcode 0x%02X", opcode)
		}
	case IM2:
		vector := c.im2Vector & 0xFE
		addr := uint16(c.i)<<8 | uint16(vector)
		low := c.readByte(addr)
		high := c.readByte(addr + 1)
		c.pushStack(c.pc.get())
		c.pc.set(uint16(high)<<8 | uint16(low))
		return 19, nil
	default: // IM1
		c.pushStack(c.pc.get())
		c.pc.set(0x0038)
		return 13, nil
	}
}

// State is a flat, serializable snapshot of the full register file and
// interrupt latches, for save states and test assertions.
type State struct {
	AF, BC, DE, HL     uint16
	AF2, BC2, DE2, HL2 uint16
	IX, IY             uint16
	SP, PC             uint16
	I, R               uint8
	IFF1, IFF2         bool
	IM                 InterruptMode
	Halted             bool
	EIDeferred         bool
	IRQPending         bool
	NMIPending         bool
}

// GetState returns a snapshot of the CPU's full register/interrupt state.
func (c *CPU) GetState() State {
	return State{
		AF: c.af.get(), BC: c.bc.get(), DE: c.de.get(), HL: c.hl.get(),
		AF2: c.af2.get(), BC2: c.bc2.get(), DE2: c.de2.get(), HL2: c.hl2.get(),
		IX: c.ix.get(), IY: c.iy.get(),
		SP: c.sp.get(), PC: c.pc.get(),
		I: c.i, R: c.r,
		IFF1: c.iff1, IFF2: c.iff2, IM: c.im, Halted: c.halted,
		EIDeferred: c.eiDeferred, IRQPending: c.irqPending, NMIPending: c.nmiPending,
	}
}

// SetState restores a previously captured snapshot.
func (c *CPU) SetState(s State) {
	c.af.set(s.AF)
	c.bc.set(s.BC)
	c.de.set(s.DE)
	c.hl.set(s.HL)
	c.af2.set(s.AF2)
	c.bc2.set(s.BC2)
	c.de2.set(s.DE2)
	c.hl2.set(s.HL2)
	c.ix.set(s.IX)
	c.iy.set(s.IY)
	c.sp.set(s.SP)
	c.pc.set(s.PC)
	c.i = s.I
	c.r = s.R
	c.iff1 = s.IFF1
	c.iff2 = s.IFF2
	c.im = s.IM
	c.halted = s.Halted
	c.eiDeferred = s.EIDeferred
	c.irqPending = s.IRQPending
	c.nmiPending = s.NMIPending
}

// GetPC returns the current program counter, mainly for trace/debug use.
func (c *CPU) GetPC() uint16 { return c.pc.get() }

// SetPC forces the program counter, used by the manual-init boot path.
func (c *CPU) SetPC(pc uint16) { c.pc.set(pc) }

// SetSP forces the stack pointer, used by the manual-init boot path.
func (c *CPU) SetSP(sp uint16) { c.sp.set(sp) }

// SetIM forces the interrupt mode, used by the manual-init boot path.
func (c *CPU) SetIM(im InterruptMode) { c.im = im }

// SetIFF1 forces IFF1 (and, if enabling, IFF2), used by the manual-init
// boot path to reach the "interrupts enabled" state without running EI.
func (c *CPU) SetIFF1(v bool) {
	c.iff1 = v
	c.iff2 = v
}
