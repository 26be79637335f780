package video

const (
	maxSpritesPerLine = 8
	spriteTerminator  = 0xD0
)

// RenderFrame builds a 256x192 RGB frame from the current VRAM/CRAM/register
// state: background plane first, then up to 8 sprites per scanline with
// sprite 0 winning ties and background priority pixels masking sprites,
// then leftmost-column blanking.
func (v *VDP) RenderFrame() *FrameBuffer {
	fb := v.frame

	borderR, borderG, borderB := cramToRGB(v.cram[v.regs[7]&0x0F])
	for y := 0; y < FrameHeight; y++ {
		for x := 0; x < FrameWidth; x++ {
			fb.SetPixel(x, y, borderR, borderG, borderB)
		}
	}

	priorityMask := v.renderBackground(fb, borderR, borderG, borderB)
	v.renderSprites(fb, priorityMask)

	if v.regs[0]&0x20 != 0 {
		for y := 0; y < FrameHeight; y++ {
			for x := 0; x < 8; x++ {
				fb.SetPixel(x, y, borderR, borderG, borderB)
			}
		}
	}

	return fb
}

func (v *VDP) renderBackground(fb *FrameBuffer, borderR, borderG, borderB uint8) [][]bool {
	mask := make([][]bool, FrameHeight)
	for y := range mask {
		mask[y] = make([]bool, FrameWidth)
	}

	nameTableBase := (uint16(v.regs[2]) & 0x0E) << 10
	vScroll := int(v.regs[9])

	for y := 0; y < FrameHeight; y++ {
		hScroll := int(v.hScroll[y])
		srcY := (y + vScroll) % 256
		tileRow := srcY / 8
		rowInTile := srcY % 8

		for x := 0; x < FrameWidth; x++ {
			srcX := (x - hScroll + 256) % 256
			tileCol := srcX / 8
			colInTile := srcX % 8

			entryAddr := (nameTableBase + uint16(tileRow*32+tileCol)*2) & 0x3FFF
			low := v.vram[entryAddr]
			high := v.vram[entryAddr+1]

			tileIndex := uint16(low) | uint16(high&0x01)<<8
			hFlip := high&0x02 != 0
			vFlip := high&0x04 != 0
			priority := high&0x10 != 0

			row := rowInTile
			if vFlip {
				row = 7 - row
			}
			col := colInTile
			if hFlip {
				col = 7 - col
			}

			colorIndex := v.tilePixel(tileIndex, row, col)
			if colorIndex == 0 {
				fb.SetPixel(x, y, borderR, borderG, borderB)
				continue
			}

			r, g, b := cramToRGB(v.cram[colorIndex])
			fb.SetPixel(x, y, r, g, b)
			if priority {
				mask[y][x] = true
			}
		}
	}

	return mask
}

// tilePixel reads the 4-bitplane pattern for tileIndex at (row,col) and
// returns a 4-bit color index.
func (v *VDP) tilePixel(tileIndex uint16, row, col int) uint8 {
	tileAddr := (tileIndex*32 + uint16(row)*4) & 0x3FFF
	bitPos := uint(7 - col)

	p0 := (v.vram[tileAddr] >> bitPos) & 1
	p1 := (v.vram[tileAddr+1] >> bitPos) & 1
	p2 := (v.vram[tileAddr+2] >> bitPos) & 1
	p3 := (v.vram[tileAddr+3] >> bitPos) & 1

	return p0 | p1<<1 | p2<<2 | p3<<3
}

type spriteEntry struct {
	index   int
	y       int
	x       int
	pattern uint8
}

func (v *VDP) renderSprites(fb *FrameBuffer, priorityMask [][]bool) {
	baseTable := (uint16(v.regs[5]) & 0x7E) << 7
	tall := v.regs[1]&0x02 != 0
	magnified := v.regs[1]&0x01 != 0

	height := 8
	if tall {
		height = 16
	}
	drawScale := 1
	if magnified {
		drawScale = 2
	}

	var sprites []spriteEntry
	for i := 0; i < 64; i++ {
		yByte := v.vram[(baseTable+uint16(i))&0x3FFF]
		if yByte == spriteTerminator {
			break
		}
		xByte := v.vram[(baseTable+128+uint16(i)*2)&0x3FFF]
		pattern := v.vram[(baseTable+128+uint16(i)*2+1)&0x3FFF]
		if tall {
			pattern &^= 0x01
		}
		sprites = append(sprites, spriteEntry{index: i, y: int(yByte) + 1, x: int(xByte), pattern: pattern})
	}

	for lineY := 0; lineY < FrameHeight; lineY++ {
		visible := make([]spriteEntry, 0, maxSpritesPerLine)
		for _, s := range sprites {
			rowInSprite := lineY - s.y
			if rowInSprite < 0 || rowInSprite >= height*drawScale {
				continue
			}
			if len(visible) >= maxSpritesPerLine {
				break
			}
			visible = append(visible, s)
		}

		for i := len(visible) - 1; i >= 0; i-- {
			s := visible[i]
			rowInSprite := (lineY - s.y) / drawScale
			tile := s.pattern
			row := rowInSprite % 8
			if tall && rowInSprite >= 8 {
				tile++
				row = rowInSprite - 8
			}

			for col := 0; col < 8; col++ {
				colorIndex := v.tilePixel(uint16(tile), row, col)
				if colorIndex == 0 {
					continue
				}
				for sx := 0; sx < drawScale; sx++ {
					screenX := s.x + (col*drawScale + sx)
					if screenX < 0 || screenX >= FrameWidth {
						continue
					}
					if priorityMask[lineY][screenX] {
						continue
					}
					r, g, b := cramToRGB(v.cram[16+colorIndex])
					fb.SetPixel(screenX, lineY, r, g, b)
				}
			}
		}
	}
}
