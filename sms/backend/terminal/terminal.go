// Package terminal implements backend.Backend directly against a terminal
// via tcell: half-block truecolor rendering of the 256x192 frame, arrow-key
// and WASD/ZX joypad input, and an optional CPU/disassembly side panel fed
// by a DebugProvider.
package terminal

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-smsemu/sms/backend"
	"github.com/valerio/go-smsemu/sms/debug"
	"github.com/valerio/go-smsemu/sms/video"
)

const (
	minTermWidth  = video.FrameWidth + 2
	minTermHeight = video.FrameHeight/2 + 2

	panelWidth     = 32
	registerHeight = 9
	disasmHeight   = 10
)

// DebugProvider supplies the optional side panel's content. Implementations
// typically wrap a *sms.Machine.
type DebugProvider interface {
	Snapshot() debug.Snapshot
	Disassembly(snap debug.Snapshot, count int) []debug.Line
}

// Backend renders to a tcell terminal screen and collects joypad input.
type Backend struct {
	screen  tcell.Screen
	running bool

	cfg       backend.Config
	debug     DebugProvider
	showDebug bool

	active map[backend.Button]bool
}

// New returns a terminal Backend. debugProvider may be nil to disable the
// side panel entirely.
func New(debugProvider DebugProvider) *Backend {
	return &Backend{debug: debugProvider, active: make(map[backend.Button]bool)}
}

func (t *Backend) Init(cfg backend.Config) error {
	t.cfg = cfg

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: init screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: init screen: %w", err)
	}
	t.screen = screen
	t.running = true

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	slog.Info("terminal backend initialized", "title", cfg.Title)
	return nil
}

var keyMapping = map[tcell.Key]backend.Button{
	tcell.KeyUp:    backend.ButtonUp,
	tcell.KeyDown:  backend.ButtonDown,
	tcell.KeyLeft:  backend.ButtonLeft,
	tcell.KeyRight: backend.ButtonRight,
	tcell.KeyEnter: backend.ButtonReset,
}

var runeMapping = map[rune]backend.Button{
	'z': backend.Button1,
	'x': backend.Button2,
	'w': backend.ButtonUp,
	's': backend.ButtonDown,
	'a': backend.ButtonLeft,
	'd': backend.ButtonRight,
}

// Update polls pending terminal events, renders frame (or, while the
// terminal is too small, a size warning), and returns the joypad
// transitions observed since the last call.
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	currentlyActive := make(map[backend.Button]bool)
	var quit bool

	for t.screen.HasPendingEvent() {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape {
				quit = true
				continue
			}
			if ev.Key() == tcell.KeyF10 {
				t.showDebug = !t.showDebug
				continue
			}
			if btn, ok := keyMapping[ev.Key()]; ok {
				currentlyActive[btn] = true
				continue
			}
			if ev.Key() == tcell.KeyRune {
				if btn, ok := runeMapping[ev.Rune()]; ok {
					currentlyActive[btn] = true
					if ev.Rune() == 'q' {
						quit = true
					}
				}
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	var events []backend.InputEvent
	for btn := range currentlyActive {
		if !t.active[btn] {
			events = append(events, backend.InputEvent{Button: btn, Type: backend.Press})
		}
	}
	for btn := range t.active {
		if !currentlyActive[btn] {
			events = append(events, backend.InputEvent{Button: btn, Type: backend.Release})
		}
	}
	t.active = currentlyActive

	if quit {
		events = append(events, backend.InputEvent{Button: backend.ButtonQuit, Type: backend.Press})
		t.running = false
	}

	if !t.running {
		return events, nil
	}

	t.render(frame)
	t.screen.Show()

	return events, nil
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("terminal too small, need at least %dx%d", minTermWidth, minTermHeight)
		for i, ch := range msg {
			if i < termWidth {
				t.screen.SetContent(i, termHeight/2, ch, nil, style)
			}
		}
		return
	}

	t.drawFrame(frame)

	if t.showDebug && t.debug != nil {
		panelX := video.FrameWidth + 2
		t.drawPanel(panelX, termWidth-panelX, termHeight)
	}
}

// drawFrame renders two scanlines per terminal row using the Unicode upper
// half-block character with independent truecolor foreground/background.
func (t *Backend) drawFrame(frame *video.FrameBuffer) {
	for y := 0; y < video.FrameHeight; y += 2 {
		for x := 0; x < video.FrameWidth; x++ {
			tr, tg, tb := frame.Pixel(x, y)
			br, bg, bb := tr, tg, tb
			if y+1 < video.FrameHeight {
				br, bg, bb = frame.Pixel(x, y+1)
			}
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(tr), int32(tg), int32(tb))).
				Background(tcell.NewRGBColor(int32(br), int32(bg), int32(bb)))
			t.screen.SetContent(x, y/2, '▀', nil, style)
		}
	}
}

func (t *Backend) drawPanel(startX, width, termHeight int) {
	if width <= 0 {
		return
	}

	snap := t.debug.Snapshot()

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	lines := []string{
		fmt.Sprintf("AF: %04X  BC: %04X", snap.CPU.AF, snap.CPU.BC),
		fmt.Sprintf("DE: %04X  HL: %04X", snap.CPU.DE, snap.CPU.HL),
		fmt.Sprintf("IX: %04X  IY: %04X", snap.CPU.IX, snap.CPU.IY),
		fmt.Sprintf("SP: %04X  PC: %04X", snap.CPU.SP, snap.CPU.PC),
		fmt.Sprintf("IFF1: %v  IM: %d", snap.CPU.IFF1, snap.CPU.IM),
		fmt.Sprintf("VDP line: %d  IRQ: %v", snap.VDPLine, snap.VDPHasIRQ),
		fmt.Sprintf("Cycles: %d", snap.Cycles),
	}
	t.drawLines(startX, 0, width, termHeight, lines, style)

	disasm := t.debug.Disassembly(snap, disasmHeight)
	disasmStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	disasmLines := make([]string, len(disasm))
	for i, l := range disasm {
		disasmLines[i] = fmt.Sprintf("%04X: %s", l.Address, l.Instruction)
	}
	for i, line := range disasmLines {
		y := registerHeight + 1 + i
		if y >= termHeight {
			break
		}
		s := disasmStyle
		if disasm[i].Address == snap.CPU.PC {
			s = currentStyle
		}
		t.drawLine(startX, y, width, line, s)
	}
}

func (t *Backend) drawLines(x, y, width, termHeight int, lines []string, style tcell.Style) {
	for i, line := range lines {
		if y+i >= termHeight {
			return
		}
		t.drawLine(x, y+i, width, line, style)
	}
}

func (t *Backend) drawLine(x, y, width int, line string, style tcell.Style) {
	if len(line) > width {
		line = line[:width]
	}
	for i, ch := range line {
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}

// generateTestPattern renders a static checkerboard frame, used by hosts
// that want a display smoke test without loading a ROM.
func generateTestPattern() *video.FrameBuffer {
	fb := video.NewFrameBuffer()
	for y := 0; y < video.FrameHeight; y++ {
		for x := 0; x < video.FrameWidth; x++ {
			if ((x/16)+(y/16))%2 == 0 {
				fb.SetPixel(x, y, 0xFF, 0xFF, 0xFF)
			} else {
				fb.SetPixel(x, y, 0x20, 0x20, 0x20)
			}
		}
	}
	return fb
}

// TestPatternFrame exposes generateTestPattern for callers that want to
// drive Update with a test pattern instead of a live frame.
func TestPatternFrame() *video.FrameBuffer { return generateTestPattern() }
