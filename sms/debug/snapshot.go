package debug

import (
	"github.com/valerio/go-smsemu/sms/bit"
	"github.com/valerio/go-smsemu/sms/cpu"
)

// MemoryWindow is a short run of address space captured around a point of
// interest, typically the program counter.
type MemoryWindow struct {
	StartAddr uint16
	Bytes     []uint8
}

// Snapshot is a full point-in-time view of the machine for trace logs and
// external debuggers: CPU registers, VDP scanline/IRQ state, a VRAM
// fingerprint, and a small memory window around PC.
type Snapshot struct {
	CPU       cpu.State
	VDPLine   int
	VDPHasIRQ bool
	VRAMHash  uint32
	AroundPC  MemoryWindow
	Cycles    uint64
}

// VDPStatus is the subset of (*video.VDP) a snapshot needs.
type VDPStatus interface {
	Line() int
	HasIRQ() bool
	VRAM() []uint8
}

// Capture builds a Snapshot from a CPU and VDP, reading windowBefore bytes
// before PC and windowAfter bytes from PC onward. VRAMHash is an FNV-1a
// fingerprint of the VDP's VRAM, cheap enough to take on every capture and
// useful for spotting when two runs' video memory has diverged without
// diffing the full 16 KiB each time.
func Capture(c *cpu.CPU, vdp VDPStatus, read ReadByte, cycles uint64, windowBefore, windowAfter int) Snapshot {
	state := c.GetState()
	pc := state.PC

	start := pc
	if int(start) < windowBefore {
		start = 0
	} else {
		start -= uint16(windowBefore)
	}

	total := windowBefore + windowAfter
	bytes := make([]uint8, total)
	for i := 0; i < total; i++ {
		bytes[i] = read(start + uint16(i))
	}

	return Snapshot{
		CPU:       state,
		VDPLine:   vdp.Line(),
		VDPHasIRQ: vdp.HasIRQ(),
		VRAMHash:  bit.FNV1a(vdp.VRAM()),
		AroundPC:  MemoryWindow{StartAddr: start, Bytes: bytes},
		Cycles:    cycles,
	}
}

// Disassembly returns count instructions starting at the snapshot's PC.
func (s Snapshot) Disassembly(read ReadByte, count int) []Line {
	return Range(s.CPU.PC, count, read)
}
