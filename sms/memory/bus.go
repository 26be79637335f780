// Package memory implements the SMS memory map: the SEGA mapper's 16 KiB
// bank switching, the BIOS overlay, WRAM and its 0xE000-0xFFFF mirror, and
// I/O port routing to the VDP, PSG and controllers.
package memory

import "log/slog"

const (
	wramSize = 0x2000 // 8 KiB, mirrored across 0xC000-0xFFFF

	ctrlCartRAMEnable = 0x08 // 0xFFFC bit 3: map cart RAM into slot 2
	memCtrlBIOSOff    = 0x08 // port 0x3E bit 3: 1 = BIOS disabled
	memCtrlIOOff      = 0x04 // port 0x3E bit 2: 1 = I/O chip disabled
)

// VDPPort is the subset of (*video.VDP) the bus routes I/O ports to.
type VDPPort interface {
	ReadPort(port uint8) uint8
	WritePort(port uint8, value uint8)
}

// PSGPort is the subset of (*psg.PSG) the bus routes I/O ports to.
type PSGPort interface {
	WriteData(value uint8)
}

// Config configures a Bus's optional cartridge RAM and BIOS overlay.
type Config struct {
	AllowCartRAM bool
	BIOS         []uint8
}

// Bus ties the cartridge, SEGA mapper registers, WRAM, VDP, PSG and
// controllers together behind the CPU's 16-bit address space and 8-bit I/O
// space.
type Bus struct {
	cfg Config

	cart *Cartridge
	wram [wramSize]uint8

	ctrl  uint8 // 0xFFFC
	bank0 uint8 // 0xFFFD
	bank1 uint8 // 0xFFFE
	bank2 uint8 // 0xFFFF

	cartRAM [romBankSize]uint8

	memControl uint8 // port 0x3E

	vdp         VDPPort
	psg         PSGPort
	Controllers *Controllers
}

// New wires a Bus around a cartridge and the given VDP/PSG implementations.
func New(cfg Config, cart *Cartridge, vdp VDPPort, psg PSGPort) *Bus {
	b := &Bus{
		cfg:         cfg,
		cart:        cart,
		vdp:         vdp,
		psg:         psg,
		Controllers: NewControllers(),
		bank1:       1,
		bank2:       2,
	}
	slog.Debug("bus initialized", "allowCartRAM", cfg.AllowCartRAM, "bios", len(cfg.BIOS) > 0)
	return b
}

func (b *Bus) biosActive() bool {
	return len(b.cfg.BIOS) > 0 && b.memControl&memCtrlBIOSOff == 0
}

func (b *Bus) ioEnabled() bool {
	return b.memControl&memCtrlIOOff == 0
}

func (b *Bus) cartRAMMapped() bool {
	return b.cfg.AllowCartRAM && b.ctrl&ctrlCartRAMEnable != 0
}

// Read implements cpu.Bus.
func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address <= 0x03FF:
		if b.biosActive() && int(address) < len(b.cfg.BIOS) {
			return b.cfg.BIOS[address]
		}
		return b.cart.ReadBank(0, address)
	case address <= 0x3FFF:
		if b.biosActive() && int(address) < len(b.cfg.BIOS) {
			return b.cfg.BIOS[address]
		}
		return b.cart.ReadBank(b.bank0, address)
	case address <= 0x7FFF:
		return b.cart.ReadBank(b.bank1, address-0x4000)
	case address <= 0xBFFF:
		if b.cartRAMMapped() {
			return b.cartRAM[address-0x8000]
		}
		return b.cart.ReadBank(b.bank2, address-0x8000)
	default: // 0xC000-0xFFFF
		return b.wram[(address-0xC000)&(wramSize-1)]
	}
}

// Write implements cpu.Bus.
func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address <= 0x7FFF:
		// ROM: writes ignored.
	case address <= 0xBFFF:
		if b.cartRAMMapped() {
			b.cartRAM[address-0x8000] = value
		}
	default: // 0xC000-0xFFFF
		b.wram[(address-0xC000)&(wramSize-1)] = value
		if address >= 0xFFFC {
			b.writeMapperRegister(address, value)
		}
	}
}

func (b *Bus) writeMapperRegister(address uint16, value uint8) {
	switch address {
	case 0xFFFC:
		b.ctrl = value
	case 0xFFFD:
		b.bank0 = value
	case 0xFFFE:
		b.bank1 = value
	case 0xFFFF:
		b.bank2 = value
	}
}

// In implements cpu.Bus.
func (b *Bus) In(port uint8) uint8 {
	switch port {
	case 0x3E, 0x3F:
		return b.memControl
	case 0x7E, 0x9E, 0x7F, 0x9F, 0xBE, 0xDE, 0xBF, 0xDF:
		return b.vdp.ReadPort(port)
	case 0xDC:
		if !b.ioEnabled() {
			return 0xFF
		}
		return b.Controllers.PortA()
	case 0xDD:
		if !b.ioEnabled() {
			return 0xFF
		}
		return b.Controllers.PortB()
	default:
		return 0xFF
	}
}

// Out implements cpu.Bus.
func (b *Bus) Out(port uint8, value uint8) {
	switch port {
	case 0x3E:
		b.memControl = value
	case 0x3F:
		// I/O port control register: not modeled further, nothing to wire.
	case 0xBE, 0xDE, 0xBF, 0xDF:
		b.vdp.WritePort(port, value)
	case 0xDC, 0xDD:
		// controller ports are read-only from the CPU's side.
	default:
		if port&0x01 == 1 {
			// PSG mirror: the canonical 0x7F/0x9F plus any other odd port
			// not claimed by the VDP or controllers above.
			b.psg.WriteData(value)
		}
	}
}
