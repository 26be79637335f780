package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"
	"github.com/valerio/go-smsemu/sms"
	"github.com/valerio/go-smsemu/sms/backend"
	"github.com/valerio/go-smsemu/sms/backend/headless"
	"github.com/valerio/go-smsemu/sms/backend/terminal"
	"github.com/valerio/go-smsemu/sms/debug"
	"github.com/valerio/go-smsemu/sms/memory"
)

func main() {
	app := cli.NewApp()
	app.Name = "smsemu"
	app.Description = "A headless-first Sega Master System emulator core"
	app.Usage = "smsemu [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "Path to the ROM file"},
		cli.StringFlag{Name: "bios", Usage: "Path to an optional BIOS image"},
		cli.BoolFlag{Name: "headless", Usage: "Run without a terminal display"},
		cli.IntFlag{Name: "frames", Usage: "Number of frames to run in headless mode (required for headless)"},
		cli.IntFlag{Name: "snapshot-interval", Usage: "Save PNG frame snapshots every N frames in headless mode (0 = disabled)"},
		cli.StringFlag{Name: "snapshot-dir", Usage: "Directory to save frame snapshots (default: temp directory)"},
		cli.BoolFlag{Name: "pal", Usage: "Use PAL timing (313 lines/frame) instead of NTSC"},
		cli.BoolFlag{Name: "manual-init", Usage: "Skip BIOS boot and pre-seed a display-enabled, interrupts-on running state"},
		cli.BoolFlag{Name: "allow-cart-ram", Usage: "Enable the SEGA mapper's cartridge RAM slot"},
		cli.BoolFlag{Name: "test-pattern", Usage: "Display a test pattern instead of emulation"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("smsemu exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" && c.NArg() > 0 {
		romPath = c.Args().Get(0)
	}
	if romPath == "" && !c.Bool("test-pattern") {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}

	var bios []uint8
	if biosPath := c.String("bios"); biosPath != "" {
		data, err := os.ReadFile(biosPath)
		if err != nil {
			return fmt.Errorf("read bios: %w", err)
		}
		bios = data
	}

	cfg := sms.Config{
		Bus: sms.BusConfig{
			AllowCartRAM: c.Bool("allow-cart-ram"),
			BIOS:         bios,
		},
		UseManualInit: c.Bool("manual-init"),
	}
	cfg.Video.PAL = c.Bool("pal")

	var machine *sms.Machine
	if romPath != "" {
		m, err := sms.NewMachineFromFile(romPath, cfg)
		if err != nil {
			return err
		}
		machine = m
	} else {
		cfg.Cart.ROM = make([]uint8, 0x4000)
		m, err := sms.NewMachine(cfg)
		if err != nil {
			return err
		}
		machine = m
	}

	if c.Bool("headless") {
		return runHeadless(c, machine, romPath)
	}
	return runTerminal(c, machine)
}

// cyclesPerFrame is the NTSC T-state budget for one VDP frame (228
// cycles/line * 262 lines); RunCycles is called once per host frame with
// this target.
const cyclesPerFrame = 228 * 262

func runHeadless(c *cli.Context, machine *sms.Machine, romPath string) error {
	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("headless mode requires --frames with a positive value")
	}

	snapCfg, err := headless.NewSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
	if err != nil {
		return err
	}

	h := headless.New(frames, snapCfg)
	if err := h.Init(backend.Config{Title: "smsemu", TestPattern: c.Bool("test-pattern")}); err != nil {
		return err
	}
	defer h.Cleanup()

	for {
		if _, err := machine.RunCycles(cyclesPerFrame); err != nil {
			return err
		}

		events, err := h.Update(machine.VDP().RenderFrame())
		if err != nil {
			return err
		}
		if quitRequested(events) {
			return nil
		}
	}
}

func runTerminal(c *cli.Context, machine *sms.Machine) error {
	t := terminal.New(&machineDebugProvider{machine: machine})
	if err := t.Init(backend.Config{Title: "smsemu", TestPattern: c.Bool("test-pattern")}); err != nil {
		return err
	}
	defer t.Cleanup()

	for {
		if _, err := machine.RunCycles(cyclesPerFrame); err != nil {
			return err
		}

		frame := machine.VDP().RenderFrame()
		if c.Bool("test-pattern") {
			frame = terminal.TestPatternFrame()
		}

		events, err := t.Update(frame)
		if err != nil {
			return err
		}
		for _, e := range events {
			applyInput(machine, e)
		}
		if quitRequested(events) {
			return nil
		}
	}
}

func quitRequested(events []backend.InputEvent) bool {
	for _, e := range events {
		if e.Button == backend.ButtonQuit {
			return true
		}
	}
	return false
}

var joypadButtons = map[backend.Button]memory.Button{
	backend.ButtonUp:    memory.ButtonUp,
	backend.ButtonDown:  memory.ButtonDown,
	backend.ButtonLeft:  memory.ButtonLeft,
	backend.ButtonRight: memory.ButtonRight,
	backend.Button1:     memory.Button1,
	backend.Button2:     memory.Button2,
}

func applyInput(machine *sms.Machine, e backend.InputEvent) {
	if e.Button == backend.ButtonReset {
		if e.Type == backend.Press {
			machine.Bus().Controllers.PressReset()
		} else {
			machine.Bus().Controllers.ReleaseReset()
		}
		return
	}

	btn, ok := joypadButtons[e.Button]
	if !ok {
		return
	}

	pad := machine.Controller1()
	if e.Type == backend.Press {
		pad.Press(btn)
	} else {
		pad.Release(btn)
	}
}

// machineDebugProvider adapts a *sms.Machine to terminal.DebugProvider.
type machineDebugProvider struct {
	machine *sms.Machine
}

func (p *machineDebugProvider) Snapshot() debug.Snapshot {
	return debug.Capture(p.machine.CPU(), p.machine.VDP(), p.machine.Bus().Read, 0, 8, 8)
}

func (p *machineDebugProvider) Disassembly(snap debug.Snapshot, count int) []debug.Line {
	return snap.Disassembly(p.machine.Bus().Read, count)
}
