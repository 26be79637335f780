package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeVDP struct {
	lastReadPort  uint8
	lastWritePort uint8
	lastWriteVal  uint8
	readValue     uint8
}

func (f *fakeVDP) ReadPort(port uint8) uint8 {
	f.lastReadPort = port
	return f.readValue
}

func (f *fakeVDP) WritePort(port uint8, value uint8) {
	f.lastWritePort = port
	f.lastWriteVal = value
}

type fakePSG struct {
	writes []uint8
}

func (f *fakePSG) WriteData(value uint8) {
	f.writes = append(f.writes, value)
}

func newTestROM(banks int) []uint8 {
	rom := make([]uint8, banks*romBankSize)
	for b := 0; b < banks; b++ {
		rom[b*romBankSize] = uint8(b) // first byte of each bank tags its index
	}
	return rom
}

func TestRead_firstKiBOfSlot0IsAlwaysBankZero(t *testing.T) {
	rom := newTestROM(4)
	cart := NewCartridge(rom)
	vdp, psg := &fakeVDP{}, &fakePSG{}
	b := New(Config{}, cart, vdp, psg)

	b.Write(0xFFFD, 2) // switch slot 0 to bank 2

	assert.Equal(t, uint8(0), b.Read(0x0000), "first 1 KiB stays on bank 0 regardless of the slot-0 register")
}

func TestRead_slot0BankRegisterAppliesAfter0x400(t *testing.T) {
	rom := newTestROM(4)
	rom[2*romBankSize+0x0400] = 2 // tag offset 0x400 of bank 2 as well
	cart := NewCartridge(rom)
	b := New(Config{}, cart, &fakeVDP{}, &fakePSG{})

	b.Write(0xFFFD, 2)

	assert.Equal(t, uint8(2), b.Read(0x0400))
}

func TestRead_slot1UsesBank1Register(t *testing.T) {
	rom := newTestROM(4)
	cart := NewCartridge(rom)
	b := New(Config{}, cart, &fakeVDP{}, &fakePSG{})

	b.Write(0xFFFE, 3)

	assert.Equal(t, uint8(3), b.Read(0x4000))
}

func TestRead_slot2UsesBank2Register(t *testing.T) {
	rom := newTestROM(4)
	cart := NewCartridge(rom)
	b := New(Config{}, cart, &fakeVDP{}, &fakePSG{})

	b.Write(0xFFFF, 1)

	assert.Equal(t, uint8(1), b.Read(0x8000))
}

func TestWRAM_readWriteRoundTrip(t *testing.T) {
	cart := NewCartridge(newTestROM(2))
	b := New(Config{}, cart, &fakeVDP{}, &fakePSG{})

	b.Write(0xC123, 0x42)

	assert.Equal(t, uint8(0x42), b.Read(0xC123))
}

func TestWRAM_mirrorsAcrossHighHalf(t *testing.T) {
	cart := NewCartridge(newTestROM(2))
	b := New(Config{}, cart, &fakeVDP{}, &fakePSG{})

	b.Write(0xC123, 0x42)

	assert.Equal(t, uint8(0x42), b.Read(0xE123), "0xE000-0xFFFF mirrors the same 8 KiB as 0xC000-0xDFFF")
}

func TestWrite_mapperRegistersAlsoLandInWRAMMirror(t *testing.T) {
	cart := NewCartridge(newTestROM(2))
	b := New(Config{}, cart, &fakeVDP{}, &fakePSG{})

	b.Write(0xFFFD, 5)

	assert.Equal(t, uint8(5), b.bank0)
	assert.Equal(t, uint8(5), b.Read(0xFFFD), "mapper register writes still land in the WRAM mirror")
}

func TestCartRAM_disabledByDefaultFallsBackToROM(t *testing.T) {
	rom := newTestROM(4)
	cart := NewCartridge(rom)
	b := New(Config{AllowCartRAM: true}, cart, &fakeVDP{}, &fakePSG{})

	b.Write(0xFFFF, 3)

	assert.Equal(t, uint8(3), b.Read(0x8000), "without the control bit set, slot 2 still reads ROM")
}

func TestCartRAM_enabledViaControlByte(t *testing.T) {
	cart := NewCartridge(newTestROM(4))
	b := New(Config{AllowCartRAM: true}, cart, &fakeVDP{}, &fakePSG{})

	b.Write(0xFFFC, ctrlCartRAMEnable)
	b.Write(0x8000, 0x77)

	assert.Equal(t, uint8(0x77), b.Read(0x8000))
}

func TestCartRAM_ignoredWhenNotAllowedByConfig(t *testing.T) {
	cart := NewCartridge(newTestROM(4))
	b := New(Config{AllowCartRAM: false}, cart, &fakeVDP{}, &fakePSG{})

	b.Write(0xFFFC, ctrlCartRAMEnable)
	b.Write(0x8000, 0x77)

	assert.NotEqual(t, uint8(0x77), b.Read(0x8000), "cart RAM must be explicitly allowed by the host config")
}

func TestBIOSOverlay_activeUntilDisabled(t *testing.T) {
	bios := make([]uint8, 0x2000)
	bios[0] = 0xAA
	cart := NewCartridge(newTestROM(2))
	b := New(Config{BIOS: bios}, cart, &fakeVDP{}, &fakePSG{})

	assert.Equal(t, uint8(0xAA), b.Read(0x0000))

	b.Out(0x3E, memCtrlBIOSOff)
	assert.Equal(t, uint8(0), b.Read(0x0000), "disabling BIOS falls through to cartridge ROM")
}

func TestIn_memoryControlReflectsLastWrite(t *testing.T) {
	b := New(Config{}, NewCartridge(newTestROM(2)), &fakeVDP{}, &fakePSG{})

	b.Out(0x3E, 0x04)

	assert.Equal(t, uint8(0x04), b.In(0x3E))
	assert.Equal(t, uint8(0x04), b.In(0x3F))
}

func TestIn_vdpPortsRouteToVDP(t *testing.T) {
	vdp := &fakeVDP{readValue: 0x99}
	b := New(Config{}, NewCartridge(newTestROM(2)), vdp, &fakePSG{})

	for _, port := range []uint8{0x7E, 0x9E, 0x7F, 0x9F, 0xBE, 0xDE, 0xBF, 0xDF} {
		assert.Equal(t, uint8(0x99), b.In(port))
		assert.Equal(t, port, vdp.lastReadPort)
	}
}

func TestOut_vdpDataAndControlPortsRouteToVDP(t *testing.T) {
	vdp := &fakeVDP{}
	b := New(Config{}, NewCartridge(newTestROM(2)), vdp, &fakePSG{})

	b.Out(0xBE, 0x11)
	assert.Equal(t, uint8(0xBE), vdp.lastWritePort)
	assert.Equal(t, uint8(0x11), vdp.lastWriteVal)

	b.Out(0xDF, 0x22)
	assert.Equal(t, uint8(0xDF), vdp.lastWritePort)
	assert.Equal(t, uint8(0x22), vdp.lastWriteVal)
}

func TestOut_psgMirrorsRouteToPSG(t *testing.T) {
	psg := &fakePSG{}
	b := New(Config{}, NewCartridge(newTestROM(2)), &fakeVDP{}, psg)

	b.Out(0x7F, 0x9F)
	b.Out(0x9F, 0x80)

	assert.Equal(t, []uint8{0x9F, 0x80}, psg.writes)
}

func TestOut_evenUnclaimedPortIsIgnored(t *testing.T) {
	psg := &fakePSG{}
	b := New(Config{}, NewCartridge(newTestROM(2)), &fakeVDP{}, psg)

	b.Out(0x40, 0x55)

	assert.Empty(t, psg.writes)
}

func TestIn_controllerPortsReflectJoypadState(t *testing.T) {
	b := New(Config{}, NewCartridge(newTestROM(2)), &fakeVDP{}, &fakePSG{})

	b.Controllers.Pad1.Press(ButtonUp)

	assert.Equal(t, uint8(0x3E), b.In(0xDC)&0x3F)
}

func TestIn_controllersReturnOpenBusWhenIODisabled(t *testing.T) {
	b := New(Config{}, NewCartridge(newTestROM(2)), &fakeVDP{}, &fakePSG{})

	b.Out(0x3E, memCtrlIOOff)

	assert.Equal(t, uint8(0xFF), b.In(0xDC))
	assert.Equal(t, uint8(0xFF), b.In(0xDD))
}
