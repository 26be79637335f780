package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func solidTile(v *VDP, tileIndex uint16, colorIndex uint8) {
	base := tileIndex * 32
	for row := uint16(0); row < 8; row++ {
		addr := base + row*4
		if colorIndex&1 != 0 {
			v.vram[addr] = 0xFF
		}
		if colorIndex&2 != 0 {
			v.vram[addr+1] = 0xFF
		}
		if colorIndex&4 != 0 {
			v.vram[addr+2] = 0xFF
		}
		if colorIndex&8 != 0 {
			v.vram[addr+3] = 0xFF
		}
	}
}

func TestRenderFrame_backgroundSolidTile(t *testing.T) {
	v := New(DefaultConfig())
	solidTile(v, 1, 5)
	v.cram[5] = 0x3F // white-ish per ramp

	// name table at 0 (R2 = 0), first entry -> tile 1, no flips/priority.
	v.vram[0] = 0x01
	v.vram[1] = 0x00

	fb := v.RenderFrame()
	r, g, b := fb.Pixel(0, 0)
	wantR, wantG, wantB := cramToRGB(0x3F)
	assert.Equal(t, wantR, r)
	assert.Equal(t, wantG, g)
	assert.Equal(t, wantB, b)
}

func TestRenderFrame_colorZeroIsBorder(t *testing.T) {
	v := New(DefaultConfig())
	v.regs[7] = 0x02
	v.cram[2] = 0x15

	fb := v.RenderFrame()
	r, g, b := fb.Pixel(10, 10)
	wantR, wantG, wantB := cramToRGB(0x15)
	assert.Equal(t, wantR, r)
	assert.Equal(t, wantG, g)
	assert.Equal(t, wantB, b)
}

func TestRenderFrame_spriteCapOf8PerLine(t *testing.T) {
	v := New(DefaultConfig())
	v.regs[5] = 0x7E // sprite attribute table at 0x3F00, clear of tile/name-table data
	solidTile(v, 0, 1)
	v.cram[16+1] = 0x3F

	baseTable := (uint16(v.regs[5]) & 0x7E) << 7
	for i := 0; i < 10; i++ {
		v.vram[baseTable+uint16(i)] = 50 // Y -> actual line 51
		v.vram[baseTable+128+uint16(i)*2] = uint8(i * 8)
		v.vram[baseTable+128+uint16(i)*2+1] = 0
	}
	v.vram[baseTable+10] = spriteTerminator

	fb := v.RenderFrame()

	hit := 0
	for i := 0; i < 10; i++ {
		x := i * 8
		r, _, _ := fb.Pixel(x, 51)
		if r != 0 {
			hit++
		}
	}
	assert.Equal(t, maxSpritesPerLine, hit)
}

func TestRenderFrame_sprite0WinsTies(t *testing.T) {
	v := New(DefaultConfig())
	v.regs[5] = 0x7E // sprite attribute table at 0x3F00, clear of tile/name-table data
	solidTile(v, 0, 1)
	solidTile(v, 1, 2)
	v.cram[16+1] = 0x3F
	v.cram[16+2] = 0x30

	baseTable := (uint16(v.regs[5]) & 0x7E) << 7
	// two sprites overlapping at the same position; sprite 0 uses tile 0 (color 1)
	v.vram[baseTable+0] = 50
	v.vram[baseTable+128+0] = 20
	v.vram[baseTable+128+1] = 0

	v.vram[baseTable+1] = 50
	v.vram[baseTable+128+2] = 20
	v.vram[baseTable+128+3] = 1

	v.vram[baseTable+2] = spriteTerminator

	fb := v.RenderFrame()
	r, _, _ := fb.Pixel(20, 51)
	wantR, _, _ := cramToRGB(0x3F)
	assert.Equal(t, wantR, r)
}

func TestRenderFrame_priorityMaskSuppressesSprite(t *testing.T) {
	v := New(DefaultConfig())
	v.regs[5] = 0x7E // sprite attribute table at 0x3F00, clear of tile/name-table data
	solidTile(v, 1, 5) // BG tile, nonzero color
	solidTile(v, 0, 1) // sprite tile
	v.cram[5] = 0x3F
	v.cram[16+1] = 0x30

	v.vram[0] = 0x01
	v.vram[1] = 0x10 // priority bit set

	baseTable := (uint16(v.regs[5]) & 0x7E) << 7
	v.vram[baseTable+0] = 0 // y=1, covers row 0
	v.vram[baseTable+128+0] = 0
	v.vram[baseTable+128+1] = 0
	v.vram[baseTable+1] = spriteTerminator

	fb := v.RenderFrame()
	r, _, _ := fb.Pixel(0, 1)
	wantR, _, _ := cramToRGB(0x3F)
	assert.Equal(t, wantR, r, "priority bit must suppress the sprite pixel")
}
