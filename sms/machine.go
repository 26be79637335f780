// Package sms wires a Z80 CPU, a TMS9918-derived VDP, an SN76489 PSG and a
// SEGA-mapper cartridge bus into a runnable machine: Machine owns none of
// the emulation logic itself, only the per-step scheduling order between
// its components.
package sms

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/go-smsemu/sms/cpu"
	"github.com/valerio/go-smsemu/sms/debug"
	"github.com/valerio/go-smsemu/sms/memory"
	"github.com/valerio/go-smsemu/sms/psg"
	"github.com/valerio/go-smsemu/sms/video"
)

// manualInitVDPReg1 is the value driven into VDP register 1 by the
// manual-init boot path: bit 6 enables the display, bit 5 enables the
// VBlank interrupt.
const manualInitVDPReg1 = 0x60

// CartConfig selects the cartridge image a Machine runs.
type CartConfig struct {
	ROM []uint8
}

// BusConfig controls the memory bus's optional cartridge RAM and BIOS
// overlay.
type BusConfig struct {
	AllowCartRAM bool
	BIOS         []uint8
}

// WaitConfig controls CPU wait-state accounting for contended memory/I/O
// accesses.
type WaitConfig struct {
	// SMSModel installs a VDP access penalty: the CPU is charged an extra
	// VDPPenalty T-states on every access to a VDP data/control port
	// (0xBE/0xBF and their 0xDE/0xDF mirrors), and on every memory access
	// to 0x8000-0xBFFF while the VDP is on a visible line.
	SMSModel bool

	// IncludeWaitInCycles controls whether the CPU's reported per-step
	// T-state count includes the wait-state penalty, or only the base
	// instruction timing. The VDP/PSG are always ticked by that same
	// reported count, so host timing stays internally consistent either way.
	IncludeWaitInCycles bool

	// VDPPenalty is the extra T-states charged per contended access.
	VDPPenalty uint8
}

// TraceConfig installs optional instruction-boundary trace hooks. OnTrace,
// TraceDisasm and TraceRegs compose: NewMachine builds a single trace
// function out of whichever of them are set, rather than requiring the
// caller to assemble one by hand.
type TraceConfig struct {
	// OnTrace, if set, is called once per instruction boundary with the
	// fetch address and opcode byte.
	OnTrace func(pc uint16, opcode uint8)

	// TraceDisasm additionally logs a one-line disassembly of the traced
	// instruction.
	TraceDisasm bool

	// TraceRegs additionally logs the full register file at the traced
	// instruction boundary.
	TraceRegs bool
}

// Config configures a Machine. Cart is required; everything else defaults
// to a BIOS-less, no-wait-state, untraced configuration.
type Config struct {
	Cart CartConfig
	Bus  BusConfig
	Wait WaitConfig

	// UseManualInit pre-seeds CPU and VDP state to a running configuration
	// (display enabled, VBlank IRQ enabled, IM 1, interrupts enabled) in
	// lieu of executing a BIOS boot ROM. Ignored when Bus.BIOS is set: a
	// present BIOS always runs from reset instead.
	UseManualInit bool

	// FastBlocks selects whether repeating block instructions run to
	// completion within a single CPU step instead of one iteration per
	// step; see cpu.CPU.SetFastBlocks.
	FastBlocks bool

	Trace TraceConfig

	Video video.Config
	PSG   psg.Config
}

// Machine is a complete, runnable SMS: CPU, VDP, PSG and memory bus wired
// together, stepped one CPU instruction at a time by RunCycles.
type Machine struct {
	cpu *cpu.CPU
	vdp *video.VDP
	psg *psg.PSG
	bus *memory.Bus

	includeWaitInCycles bool
}

// NewMachine builds a Machine from cfg. It reports a non-recoverable
// configuration error if the ROM image's length isn't a multiple of 16 KiB,
// the SEGA mapper's bank granularity; a misconfigured IM 0 injection opcode
// is the other configuration error this machine can hit, but that one only
// surfaces later, from RunCycles, since it depends on what the CPU is asked
// to do at run time rather than on Config alone.
func NewMachine(cfg Config) (*Machine, error) {
	if len(cfg.Cart.ROM) == 0 || len(cfg.Cart.ROM)%0x4000 != 0 {
		return nil, fmt.Errorf("sms: rom size %d is not a non-zero multiple of 16384 bytes", len(cfg.Cart.ROM))
	}

	cart := memory.NewCartridge(cfg.Cart.ROM)

	vdpCfg := cfg.Video
	if vdpCfg.HCounterFrontPorchWidth == 0 && vdpCfg.HCounterBlankWidth == 0 {
		pal := vdpCfg.PAL
		vdpCfg = video.DefaultConfig()
		vdpCfg.PAL = pal
	}
	vdp := video.New(vdpCfg)

	psgCfg := cfg.PSG
	if psgCfg.ClockDivider == 0 {
		psgCfg = psg.DefaultConfig()
	}
	p := psg.New(psgCfg)

	bus := memory.New(memory.Config{
		AllowCartRAM: cfg.Bus.AllowCartRAM,
		BIOS:         cfg.Bus.BIOS,
	}, cart, vdp, p)

	c := cpu.New(bus)
	c.SetFastBlocks(cfg.FastBlocks)

	if cfg.Wait.SMSModel {
		penalty := int(cfg.Wait.VDPPenalty)
		vblankStart := 192
		if vdpCfg.PAL {
			vblankStart = 242
		}
		c.SetWaitStateHooks(cpu.WaitStateHooks{
			MemoryAccess: func(address uint16) int {
				if address >= 0x8000 && address <= 0xBFFF && vdp.Line() < vblankStart {
					return penalty
				}
				return 0
			},
			IOAccess: func(port uint8) int {
				switch port {
				case 0xBE, 0xDE, 0xBF, 0xDF:
					return penalty
				default:
					return 0
				}
			},
		}, cfg.Wait.IncludeWaitInCycles)
	}

	m := &Machine{
		cpu:                 c,
		vdp:                 vdp,
		psg:                 p,
		bus:                 bus,
		includeWaitInCycles: cfg.Wait.IncludeWaitInCycles,
	}

	if trace := m.buildTrace(cfg.Trace); trace != nil {
		c.Trace = trace
	}

	if cfg.UseManualInit && len(cfg.Bus.BIOS) == 0 {
		m.runManualInit()
	}

	return m, nil
}

// buildTrace composes cfg's optional hooks into the single function
// cpu.CPU.Trace expects, or returns nil if none of them are set.
func (m *Machine) buildTrace(cfg TraceConfig) func(pc uint16, opcode uint8) {
	if cfg.OnTrace == nil && !cfg.TraceDisasm && !cfg.TraceRegs {
		return nil
	}

	return func(pc uint16, opcode uint8) {
		if cfg.OnTrace != nil {
			cfg.OnTrace(pc, opcode)
		}
		if cfg.TraceDisasm {
			snap := debug.Capture(m.cpu, m.vdp, m.bus.Read, 0, 0, 1)
			if lines := snap.Disassembly(m.bus.Read, 1); len(lines) > 0 {
				slog.Debug("trace", "pc", pc, "asm", lines[0].Instruction)
			}
		}
		if cfg.TraceRegs {
			state := m.cpu.GetState()
			slog.Debug("trace regs", "pc", pc, "af", state.AF, "bc", state.BC,
				"de", state.DE, "hl", state.HL, "sp", state.SP)
		}
	}
}

// runManualInit drives CPU and VDP state directly to where a BIOS boot ROM
// would normally leave them: display on, VBlank IRQ enabled, IM 1,
// interrupts enabled, PC at the cartridge's reset vector.
func (m *Machine) runManualInit() {
	m.vdp.WritePort(0xBF, manualInitVDPReg1)
	m.vdp.WritePort(0xBF, 0x80|0x01)

	m.cpu.SetSP(0xDFF0)
	m.cpu.SetIM(cpu.IM1)
	m.cpu.SetIFF1(true)
	m.cpu.SetPC(0x0000)
}

// RunCycles steps the CPU repeatedly until at least n T-states have
// elapsed, ticking the VDP and PSG by each step's actual cycle count and
// feeding the VDP's IRQ line back into the CPU before the next step. It
// returns the total T-states actually run (which may exceed n by up to one
// instruction's length) and any unrecoverable CPU error, most notably an
// IM 0 interrupt acceptance with no RST-shaped or NOP-shaped injected
// opcode configured.
func (m *Machine) RunCycles(n int) (int, error) {
	ran := 0
	for ran < n {
		cycles, _, _, err := m.cpu.StepOne()
		if err != nil {
			return ran, fmt.Errorf("sms: run cycles: %w", err)
		}

		m.vdp.TickCycles(cycles)
		m.psg.TickCycles(cycles)

		if m.vdp.HasIRQ() {
			m.cpu.RequestIRQ()
		}

		ran += cycles
	}
	return ran, nil
}

// CPU returns the machine's Z80 core.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// VDP returns the machine's video display processor.
func (m *Machine) VDP() *video.VDP { return m.vdp }

// PSG returns the machine's sound generator.
func (m *Machine) PSG() *psg.PSG { return m.psg }

// Bus returns the machine's memory/IO bus.
func (m *Machine) Bus() *memory.Bus { return m.bus }

// Controller1 returns the first joypad.
func (m *Machine) Controller1() *memory.Joypad { return m.bus.Controllers.Pad1 }

// Controller2 returns the second joypad.
func (m *Machine) Controller2() *memory.Joypad { return m.bus.Controllers.Pad2 }

// NewMachineFromFile reads romPath and builds a Machine around it, copying
// any other fields of cfg unchanged (cfg.Cart.ROM is overwritten with the
// file's contents).
func NewMachineFromFile(romPath string, cfg Config) (*Machine, error) {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return nil, fmt.Errorf("sms: read rom: %w", err)
	}
	cfg.Cart.ROM = data
	return NewMachine(cfg)
}
