package video

const (
	FrameWidth  = 256
	FrameHeight = 192
)

// FrameBuffer is a 256x192 RGB image, row-major, 3 bytes per pixel (R,G,B).
type FrameBuffer struct {
	pixels []uint8
}

// NewFrameBuffer returns a black 256x192 frame.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{pixels: make([]uint8, FrameWidth*FrameHeight*3)}
}

// SetPixel writes one RGB triplet at (x,y).
func (f *FrameBuffer) SetPixel(x, y int, r, g, b uint8) {
	i := (y*FrameWidth + x) * 3
	f.pixels[i] = r
	f.pixels[i+1] = g
	f.pixels[i+2] = b
}

// Pixel reads back one RGB triplet at (x,y).
func (f *FrameBuffer) Pixel(x, y int) (r, g, b uint8) {
	i := (y*FrameWidth + x) * 3
	return f.pixels[i], f.pixels[i+1], f.pixels[i+2]
}

// Bytes returns the raw row-major RGB buffer.
func (f *FrameBuffer) Bytes() []uint8 { return f.pixels }

// cramToRGB decodes a 6-bit CRAM entry (2 bits per component) into 8-bit
// channels via the 0,85,170,255 ramp.
func cramToRGB(entry uint8) (r, g, b uint8) {
	ramp := [4]uint8{0, 85, 170, 255}
	r = ramp[entry&0x03]
	g = ramp[(entry>>2)&0x03]
	b = ramp[(entry>>4)&0x03]
	return
}
