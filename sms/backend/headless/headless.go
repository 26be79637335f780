// Package headless implements backend.Backend for batch processing and
// automated testing: no window, optional periodic PNG snapshots, and a quit
// event once a target frame count is reached.
package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-smsemu/sms/backend"
	"github.com/valerio/go-smsemu/sms/video"
)

// SnapshotConfig controls periodic PNG snapshots of the rendered frame.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // save every N frames
	Directory string
	ROMName   string // used as the snapshot filename prefix
}

// Backend runs a fixed number of frames with no display output, optionally
// dumping PNG snapshots along the way.
type Backend struct {
	cfg            backend.Config
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
}

// New returns a Backend that quits after maxFrames frames.
func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{maxFrames: maxFrames, snapshotConfig: snapshotConfig}
}

func (h *Backend) Init(cfg backend.Config) error {
	h.cfg = cfg

	if cfg.TestPattern {
		slog.Info("headless test pattern mode - exiting after first frame")
		return nil
	}

	slog.Info("running headless",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	return nil
}

// Update advances the frame count, saves a snapshot if the interval is due,
// and signals quit once maxFrames is reached.
func (h *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	if h.cfg.TestPattern {
		return []backend.InputEvent{{Button: backend.ButtonQuit, Type: backend.Press}}, nil
	}

	h.frameCount++

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	if h.frameCount%10 == 0 {
		slog.Info("frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.frameCount < h.maxFrames {
		return nil, nil
	}

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
		h.saveSnapshot(frame)
	}
	slog.Info("headless run completed", "frames", h.maxFrames)

	return []backend.InputEvent{{Button: backend.ButtonQuit, Type: backend.Press}}, nil
}

func (h *Backend) Cleanup() error { return nil }

func (h *Backend) saveSnapshot(frame *video.FrameBuffer) {
	name := fmt.Sprintf("%s_frame_%d.png", h.snapshotConfig.ROMName, h.frameCount)
	path := filepath.Join(h.snapshotConfig.Directory, name)
	if err := backend.SavePNG(frame, path); err != nil {
		slog.Error("failed to save snapshot", "frame", h.frameCount, "error", err)
	}
}

// NewSnapshotConfig builds a SnapshotConfig from CLI-style parameters,
// creating the target directory (or a temp one, if directory is empty) when
// snapshots are enabled.
func NewSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	cfg := SnapshotConfig{Enabled: interval > 0, Interval: interval}
	if !cfg.Enabled {
		return cfg, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "smsemu-snapshots-*")
		if err != nil {
			return cfg, fmt.Errorf("create snapshot directory: %w", err)
		}
		cfg.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return cfg, fmt.Errorf("create snapshot directory: %w", err)
		}
		cfg.Directory = directory
	}

	romName := filepath.Base(romPath)
	cfg.ROMName = strings.TrimSuffix(romName, filepath.Ext(romName))

	return cfg, nil
}
