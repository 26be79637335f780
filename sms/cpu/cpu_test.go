package cpu

// fakeBus is a flat 64KB memory plus a byte-per-port I/O space, enough to
// drive every CPU test without pulling in the real memory/mapper package.
type fakeBus struct {
	mem [65536]uint8
	io  [256]uint8
}

func newFakeBus() *fakeBus {
	return &fakeBus{}
}

func (b *fakeBus) Read(address uint16) uint8  { return b.mem[address] }
func (b *fakeBus) Write(address uint16, value uint8) { b.mem[address] = value }
func (b *fakeBus) In(port uint8) uint8        { return b.io[port] }
func (b *fakeBus) Out(port uint8, value uint8) { b.io[port] = value }

func (b *fakeBus) load(addr uint16, bytes ...uint8) {
	for i, v := range bytes {
		b.mem[int(addr)+i] = v
	}
}

func newTestCPU(program ...uint8) (*CPU, *fakeBus) {
	bus := newFakeBus()
	bus.load(0x0000, program...)
	return New(bus), bus
}
