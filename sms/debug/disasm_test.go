package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func readerFor(bytes ...uint8) ReadByte {
	return func(address uint16) uint8 {
		if int(address) < len(bytes) {
			return bytes[address]
		}
		return 0
	}
}

func TestAt_decodesNop(t *testing.T) {
	line := At(0, readerFor(0x00))
	assert.Equal(t, "NOP", line.Instruction)
	assert.Equal(t, 1, line.Length)
}

func TestAt_decodesLoadRegisterImmediate(t *testing.T) {
	line := At(0, readerFor(0x06, 0x42)) // LD B,0x42
	assert.Equal(t, "LD B,0x42", line.Instruction)
	assert.Equal(t, 2, line.Length)
}

func TestAt_decodesLoadRegisterToRegister(t *testing.T) {
	line := At(0, readerFor(0x78)) // LD A,B
	assert.Equal(t, "LD A,B", line.Instruction)
	assert.Equal(t, 1, line.Length)
}

func TestAt_decodesLoadFromHLIndirect(t *testing.T) {
	line := At(0, readerFor(0x7E)) // LD A,(HL)
	assert.Equal(t, "LD A,(HL)", line.Instruction)
}

func TestAt_decodesJumpAbsolute(t *testing.T) {
	line := At(0, readerFor(0xC3, 0x34, 0x12)) // JP 0x1234
	assert.Equal(t, "JP 0x1234", line.Instruction)
	assert.Equal(t, 3, line.Length)
}

func TestAt_decodesCallConditional(t *testing.T) {
	line := At(0, readerFor(0xCC, 0x00, 0x80)) // CALL Z,0x8000
	assert.Equal(t, "CALL Z,0x8000", line.Instruction)
}

func TestAt_decodesAluImmediate(t *testing.T) {
	line := At(0, readerFor(0xC6, 0x05)) // ADD A,0x05
	assert.Equal(t, "ADD A,0x05", line.Instruction)
}

func TestAt_decodesRST(t *testing.T) {
	line := At(0, readerFor(0xFF)) // RST 38h
	assert.Equal(t, "RST 0x38", line.Instruction)
}

func TestAt_decodesCBBit(t *testing.T) {
	line := At(0, readerFor(0xCB, 0x7C)) // BIT 7,H
	assert.Equal(t, "BIT 7,H", line.Instruction)
	assert.Equal(t, 2, line.Length)
}

func TestAt_decodesCBRotate(t *testing.T) {
	line := At(0, readerFor(0xCB, 0x00)) // RLC B
	assert.Equal(t, "RLC B", line.Instruction)
}

func TestAt_decodesEDBlockInstruction(t *testing.T) {
	line := At(0, readerFor(0xED, 0xB0)) // LDIR
	assert.Equal(t, "LDIR", line.Instruction)
	assert.Equal(t, 2, line.Length)
}

func TestAt_decodesEDInterruptMode(t *testing.T) {
	line := At(0, readerFor(0xED, 0x56)) // IM 1
	assert.Equal(t, "IM 1", line.Instruction)
}

func TestAt_decodesDDLoadIXImmediate(t *testing.T) {
	line := At(0, readerFor(0xDD, 0x21, 0x00, 0xC0)) // LD IX,0xC000
	assert.Equal(t, "LD IX,0xC000", line.Instruction)
	assert.Equal(t, 4, line.Length)
}

func TestAt_decodesDDLoadFromIndexedMemory(t *testing.T) {
	line := At(0, readerFor(0xDD, 0x7E, 0x05)) // LD A,(IX+5)
	assert.Equal(t, "LD A,(IX+5)", line.Instruction)
	assert.Equal(t, 3, line.Length)
}

func TestAt_decodesDDStoreImmediateToIndexedMemory(t *testing.T) {
	line := At(0, readerFor(0xDD, 0x36, 0x02, 0x99)) // LD (IX+2),0x99
	assert.Equal(t, "LD (IX+2),0x99", line.Instruction)
	assert.Equal(t, 4, line.Length)
}

func TestAt_decodesDDIncIndexedMemory(t *testing.T) {
	line := At(0, readerFor(0xDD, 0x34, 0x01)) // INC (IX+1)
	assert.Equal(t, "INC (IX+1)", line.Instruction)
	assert.Equal(t, 3, line.Length)
}

func TestAt_decodesDDUnaffectedOpcodePassesThrough(t *testing.T) {
	line := At(0, readerFor(0xDD, 0x00)) // DD NOP: unaffected, just a wasted prefix
	assert.Equal(t, "NOP", line.Instruction)
	assert.Equal(t, 2, line.Length)
}

func TestAt_decodesDDCBBitOnIndexedMemory(t *testing.T) {
	line := At(0, readerFor(0xDD, 0xCB, 0x03, 0x46)) // BIT 0,(IX+3)
	assert.Equal(t, "BIT 0,(IX+3)", line.Instruction)
	assert.Equal(t, 4, line.Length)
}

func TestRange_advancesByInstructionLength(t *testing.T) {
	lines := Range(0, 2, readerFor(0x00, 0x06, 0x42))
	assert.Equal(t, uint16(0), lines[0].Address)
	assert.Equal(t, uint16(1), lines[1].Address)
}

func TestFormat_marksCurrentPC(t *testing.T) {
	line := Line{Address: 0x100, Instruction: "NOP", Length: 1}
	assert.Contains(t, Format(line, true), ">")
	assert.Contains(t, Format(line, false), "0100")
}
