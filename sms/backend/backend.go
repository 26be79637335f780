// Package backend defines the interface a host loop renders frames and
// collects input through, and the PNG snapshot helper shared by backend
// implementations.
package backend

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/valerio/go-smsemu/sms/video"
)

// Button identifies a joypad input a backend can report.
type Button int

const (
	ButtonUp Button = iota
	ButtonDown
	ButtonLeft
	ButtonRight
	Button1
	Button2
	ButtonReset
	ButtonQuit
)

// EventType distinguishes a press from a release.
type EventType int

const (
	Press EventType = iota
	Release
)

// InputEvent represents one input transition collected from a backend.
type InputEvent struct {
	Button Button
	Type   EventType
}

// Config holds display configuration shared across backend implementations.
type Config struct {
	Title       string
	Scale       int
	TestPattern bool // render a test pattern instead of a live frame
}

// Backend represents a complete host platform: rendering plus input
// collection. Implementations are responsible for polling platform-specific
// events and translating them to InputEvents, and for rendering the frame
// (or a test pattern) to their specific output.
type Backend interface {
	// Init configures the backend. Must be called before Update.
	Init(cfg Config) error

	// Update renders frame and returns the input events collected since the
	// last call.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup releases backend resources.
	Cleanup() error
}

// SavePNG encodes a frame as a PNG file at path.
func SavePNG(frame *video.FrameBuffer, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, video.FrameWidth, video.FrameHeight))
	for y := 0; y < video.FrameHeight; y++ {
		for x := 0; x < video.FrameWidth; x++ {
			r, g, b := frame.Pixel(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			img.Pix[i+3] = 0xFF
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encode snapshot png: %w", err)
	}
	return nil
}
