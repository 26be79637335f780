package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartridge_readsWithinBank(t *testing.T) {
	rom := make([]uint8, romBankSize*2)
	rom[0] = 0xAA
	rom[romBankSize] = 0xBB

	c := NewCartridge(rom)
	assert.Equal(t, uint8(0xAA), c.ReadBank(0, 0))
	assert.Equal(t, uint8(0xBB), c.ReadBank(1, 0))
}

func TestCartridge_bankIndexWrapsModuloBankCount(t *testing.T) {
	rom := make([]uint8, romBankSize*2)
	rom[0] = 0xAA
	rom[romBankSize] = 0xBB

	c := NewCartridge(rom)
	assert.Equal(t, uint8(0xAA), c.ReadBank(2, 0)) // 2 % 2 == 0
	assert.Equal(t, uint8(0xBB), c.ReadBank(3, 0)) // 3 % 2 == 1
}

func TestCartridge_emptyROMReadsAsOpenBus(t *testing.T) {
	c := NewCartridge(nil)
	assert.Equal(t, uint8(0xFF), c.ReadBank(0, 0))
}

func TestCartridge_oddSizedImageTreatedAsSingleBank(t *testing.T) {
	rom := make([]uint8, 100)
	rom[5] = 0x42

	c := NewCartridge(rom)
	assert.Equal(t, uint8(0x42), c.ReadBank(7, 5)) // always wraps to the one partial bank
}
