package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLDIR_copiesBlockAndTerminatesOnBCZero(t *testing.T) {
	c, bus := newTestCPU(0xED, 0xB0) // LDIR
	c.hl.set(0x8000)
	c.de.set(0x9000)
	c.bc.set(3)
	bus.mem[0x8000] = 0x11
	bus.mem[0x8001] = 0x22
	bus.mem[0x8002] = 0x33

	cycles, _, _, err := c.StepOne()
	assert.NoError(t, err)
	assert.Equal(t, 21, cycles)
	assert.Equal(t, uint16(2), c.bc.get())
	assert.Equal(t, uint16(0x0000), c.pc.get(), "a non-terminal repeat rewinds PC onto the ED prefix")

	c.StepOne() // second iteration, bc: 2 -> 1
	cycles, _, _, _ = c.StepOne()

	assert.Equal(t, 16, cycles, "final iteration runs at the non-repeating cost")
	assert.Equal(t, uint16(0), c.bc.get())
	assert.Equal(t, uint8(0x11), bus.mem[0x9000])
	assert.Equal(t, uint8(0x22), bus.mem[0x9001])
	assert.Equal(t, uint8(0x33), bus.mem[0x9002])
}

func TestLDDR_copiesDownwardAndTerminates(t *testing.T) {
	c, bus := newTestCPU(0xED, 0xB8) // LDDR
	c.hl.set(0x8002)
	c.de.set(0x9002)
	c.bc.set(3)
	bus.mem[0x8000] = 0xAA
	bus.mem[0x8001] = 0xBB
	bus.mem[0x8002] = 0xCC

	c.SetFastBlocks(true)
	cycles, _, _, _ := c.StepOne()

	assert.Equal(t, uint16(0), c.bc.get())
	assert.Equal(t, uint8(0xAA), bus.mem[0x9000])
	assert.Equal(t, uint8(0xBB), bus.mem[0x9001])
	assert.Equal(t, uint8(0xCC), bus.mem[0x9002])
	assert.Equal(t, 21+21+16, cycles)
}

func TestCPIR_stopsEarlyOnMatch(t *testing.T) {
	c, bus := newTestCPU(0xED, 0xB1) // CPIR
	c.hl.set(0x8000)
	c.bc.set(5)
	c.setA(0x42)
	bus.mem[0x8000] = 0x01
	bus.mem[0x8001] = 0x42
	bus.mem[0x8002] = 0x02

	c.SetFastBlocks(true)
	c.StepOne()

	assert.True(t, c.flag(flagZ))
	assert.Equal(t, uint16(3), c.bc.get())
	assert.Equal(t, uint16(0x8002), c.hl.get())
}

func TestBlockEquivalence_fastAndSteppedProduceIdenticalFinalState(t *testing.T) {
	buildStepped := func() (*CPU, *fakeBus) {
		c, bus := newTestCPU(0xED, 0xB0)
		c.hl.set(0x8000)
		c.de.set(0x9000)
		c.bc.set(4)
		for i := uint16(0); i < 4; i++ {
			bus.mem[0x8000+i] = uint8(i + 1)
		}
		return c, bus
	}

	stepped, steppedBus := buildStepped()
	totalCycles := 0
	for {
		cycles, _, _, _ := stepped.StepOne()
		totalCycles += cycles
		if stepped.bc.get() == 0 {
			break
		}
		stepped.pc.set(0x0000)
	}

	fast, fastBus := buildStepped()
	fast.SetFastBlocks(true)
	fastCycles, _, _, _ := fast.StepOne()

	assert.Equal(t, totalCycles, fastCycles)
	assert.Equal(t, stepped.GetState(), fast.GetState())
	assert.Equal(t, steppedBus.mem, fastBus.mem)
}
