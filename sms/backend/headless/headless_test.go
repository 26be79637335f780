package headless_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-smsemu/sms/backend"
	"github.com/valerio/go-smsemu/sms/backend/headless"
	"github.com/valerio/go-smsemu/sms/video"
)

func TestHeadlessBackend_normalOperation(t *testing.T) {
	h := headless.New(3, headless.SnapshotConfig{})

	err := h.Init(backend.Config{Title: "Test"})
	assert.NoError(t, err)

	frame := video.NewFrameBuffer()

	for i := 0; i < 3; i++ {
		events, err := h.Update(frame)
		assert.NoError(t, err)

		if i < 2 {
			assert.Empty(t, events)
		} else {
			assert.Len(t, events, 1)
			assert.Equal(t, backend.ButtonQuit, events[0].Button)
			assert.Equal(t, backend.Press, events[0].Type)
		}
	}

	assert.NoError(t, h.Cleanup())
}

func TestHeadlessBackend_testPatternModeQuitsImmediately(t *testing.T) {
	h := headless.New(1, headless.SnapshotConfig{})

	err := h.Init(backend.Config{Title: "Test", TestPattern: true})
	assert.NoError(t, err)

	events, err := h.Update(video.NewFrameBuffer())
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, backend.ButtonQuit, events[0].Button)
}

func TestHeadlessBackend_savesSnapshotAtInterval(t *testing.T) {
	dir := t.TempDir()
	snapCfg, err := headless.NewSnapshotConfig(2, dir, "game.sms")
	assert.NoError(t, err)
	assert.Equal(t, "game", snapCfg.ROMName)

	h := headless.New(2, snapCfg)
	assert.NoError(t, h.Init(backend.Config{}))

	frame := video.NewFrameBuffer()
	_, err = h.Update(frame)
	assert.NoError(t, err)
	_, err = h.Update(frame)
	assert.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "game_frame_*.png"))
	assert.NoError(t, err)
	assert.NotEmpty(t, matches)
}

func TestHeadlessImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*headless.Backend)(nil)
}
