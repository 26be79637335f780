// Package debug provides introspection helpers for a running machine: full
// register/memory snapshots and a Z80 text disassembler for trace hooks.
// None of this is on the hot path; it exists for tooling built on top of the
// core, mirroring the shape of a debugger's data feed rather than the core
// itself.
package debug

import "fmt"

// ReadByte reads one byte of address space. Satisfied by *memory.Bus, or by
// any other byte source a caller wants to disassemble from (a raw ROM image,
// a captured snapshot).
type ReadByte func(address uint16) uint8

var reg8Names = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var regPairSP = [4]string{"BC", "DE", "HL", "SP"}
var regPairAF = [4]string{"BC", "DE", "HL", "AF"}
var condNames = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
var aluMnemonics = [8]string{"ADD A,", "ADC A,", "SUB", "SBC A,", "AND", "XOR", "OR", "CP"}
var rotMnemonics = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}

// Line is one disassembled instruction.
type Line struct {
	Address     uint16
	Instruction string
	Length      int
}

// indexSet names the HL/(HL) substitutions an DD/FD prefix makes.
type indexSet struct {
	name    string // "IX" or "IY"
	hiName  string // "IXH" or "IYH"
	loName  string // "IXL" or "IYL"
	memName string // "(IX%+d)" or "(IY%+d)" format string
}

var ixSet = indexSet{"IX", "IXH", "IXL", "(IX%+d)"}
var iySet = indexSet{"IY", "IYH", "IYL", "(IY%+d)"}

// At disassembles the single instruction starting at pc.
func At(pc uint16, read ReadByte) Line {
	opcode := read(pc)

	switch opcode {
	case 0xCB:
		return cbLine(pc, read, nil)
	case 0xED:
		return edLine(pc, read)
	case 0xDD:
		return indexedLine(pc, read, ixSet)
	case 0xFD:
		return indexedLine(pc, read, iySet)
	default:
		text, length := baseInstruction(opcode, pc+1, read, nil)
		return Line{Address: pc, Instruction: text, Length: length}
	}
}

// Range disassembles count consecutive instructions starting at pc.
func Range(pc uint16, count int, read ReadByte) []Line {
	lines := make([]Line, 0, count)
	for i := 0; i < count; i++ {
		line := At(pc, read)
		lines = append(lines, line)
		pc += uint16(line.Length)
	}
	return lines
}

// Format renders a line the way a trace log or debugger view would.
func Format(line Line, isCurrentPC bool) string {
	marker := " "
	if isCurrentPC {
		marker = ">"
	}
	return fmt.Sprintf("%s%04X  %s", marker, line.Address, line.Instruction)
}

func u16(lo, hi uint8) uint16 { return uint16(hi)<<8 | uint16(lo) }

// baseInstruction decodes one non-prefixed opcode using the standard Z80
// xxyyyzzz bitfield decomposition. idx is non-nil when called from a DD/FD
// prefix, substituting HL/(HL) with IX/IY/(IX+d) wherever the base table
// references them. operandsAt is the address right after the opcode byte
// (i.e. after any DD/FD prefix). Forms that take an (IX+d)/(IY+d)
// displacement are decoded by indexedLine itself and never reach this
// function.
func baseInstruction(opcode uint8, operandsAt uint16, read ReadByte, idx *indexSet) (string, int) {
	x := opcode >> 6
	y := (opcode >> 3) & 0x07
	z := opcode & 0x07

	r := func(i uint8) string {
		if idx != nil {
			switch i {
			case 4:
				return idx.hiName
			case 5:
				return idx.loName
			case 6:
				return "(HL)" // caller overrides via indexedLine when (IX+d) applies
			}
		}
		return reg8Names[i]
	}
	rp := func(p uint8) string {
		if idx != nil && p == 2 {
			return idx.name
		}
		return regPairSP[p]
	}

	length := 1
	readOperand := func() uint8 {
		length++
		return read(operandsAt + uint16(length-2))
	}
	readOperand16 := func() uint16 {
		lo := readOperand()
		hi := readOperand()
		return u16(lo, hi)
	}

	switch x {
	case 0:
		switch z {
		case 0:
			switch {
			case y == 0:
				return "NOP", length
			case y == 1:
				return "EX AF,AF'", length
			case y == 2:
				d := int8(readOperand())
				return fmt.Sprintf("DJNZ %+d", d), length
			case y == 3:
				d := int8(readOperand())
				return fmt.Sprintf("JR %+d", d), length
			default:
				d := int8(readOperand())
				return fmt.Sprintf("JR %s,%+d", condNames[y-4], d), length
			}
		case 1:
			p, q := y>>1, y&1
			if q == 0 {
				nn := readOperand16()
				return fmt.Sprintf("LD %s,0x%04X", rp(p), nn), length
			}
			return fmt.Sprintf("ADD HL,%s", rp(p)), length
		case 2:
			p, q := y>>1, y&1
			if q == 0 {
				switch p {
				case 0:
					return "LD (BC),A", length
				case 1:
					return "LD (DE),A", length
				case 2:
					nn := readOperand16()
					return fmt.Sprintf("LD (0x%04X),HL", nn), length
				default:
					nn := readOperand16()
					return fmt.Sprintf("LD (0x%04X),A", nn), length
				}
			}
			switch p {
			case 0:
				return "LD A,(BC)", length
			case 1:
				return "LD A,(DE)", length
			case 2:
				nn := readOperand16()
				return fmt.Sprintf("LD HL,(0x%04X)", nn), length
			default:
				nn := readOperand16()
				return fmt.Sprintf("LD A,(0x%04X)", nn), length
			}
		case 3:
			p, q := y>>1, y&1
			if q == 0 {
				return fmt.Sprintf("INC %s", rp(p)), length
			}
			return fmt.Sprintf("DEC %s", rp(p)), length
		case 4:
			return fmt.Sprintf("INC %s", r(y)), length
		case 5:
			return fmt.Sprintf("DEC %s", r(y)), length
		case 6:
			n := readOperand()
			return fmt.Sprintf("LD %s,0x%02X", r(y), n), length
		default:
			names := [8]string{"RLCA", "RRCA", "RLA", "RRA", "DAA", "CPL", "SCF", "CCF"}
			return names[y], length
		}
	case 1:
		if z == 6 && y == 6 {
			return "HALT", length
		}
		return fmt.Sprintf("LD %s,%s", r(y), r(z)), length
	case 2:
		return fmt.Sprintf("%s%s", aluMnemonics[y], r(z)), length
	default: // x == 3
		switch z {
		case 0:
			return fmt.Sprintf("RET %s", condNames[y]), length
		case 1:
			p, q := y>>1, y&1
			if q == 0 {
				return fmt.Sprintf("POP %s", regPairAF[p]), length
			}
			switch p {
			case 0:
				return "RET", length
			case 1:
				return "EXX", length
			case 2:
				if idx != nil {
					return fmt.Sprintf("JP (%s)", idx.name), length
				}
				return "JP (HL)", length
			default:
				if idx != nil {
					return fmt.Sprintf("LD SP,%s", idx.name), length
				}
				return "LD SP,HL", length
			}
		case 2:
			nn := readOperand16()
			return fmt.Sprintf("JP %s,0x%04X", condNames[y], nn), length
		case 3:
			switch y {
			case 0:
				nn := readOperand16()
				return fmt.Sprintf("JP 0x%04X", nn), length
			case 1:
				return "PREFIX CB", length
			case 2:
				n := readOperand()
				return fmt.Sprintf("OUT (0x%02X),A", n), length
			case 3:
				n := readOperand()
				return fmt.Sprintf("IN A,(0x%02X)", n), length
			case 4:
				return "EX (SP),HL", length
			case 5:
				return "EX DE,HL", length
			case 6:
				return "DI", length
			default:
				return "EI", length
			}
		case 4:
			nn := readOperand16()
			return fmt.Sprintf("CALL %s,0x%04X", condNames[y], nn), length
		case 5:
			p, q := y>>1, y&1
			if q == 0 {
				return fmt.Sprintf("PUSH %s", regPairAF[p]), length
			}
			switch p {
			case 0:
				nn := readOperand16()
				return fmt.Sprintf("CALL 0x%04X", nn), length
			case 1:
				return "PREFIX DD", length
			case 2:
				return "PREFIX ED", length
			default:
				return "PREFIX FD", length
			}
		case 6:
			n := readOperand()
			return fmt.Sprintf("%s0x%02X", aluMnemonics[y], n), length
		default:
			return fmt.Sprintf("RST 0x%02X", y*8), length
		}
	}
}

func cbLine(pc uint16, read ReadByte, idx *indexSet) Line {
	var cbAddr uint16
	var length int
	if idx != nil {
		// DD/FD CB d op: opcode byte sits after the displacement.
		cbAddr = pc + 3
		length = 4
	} else {
		cbAddr = pc + 1
		length = 2
	}
	opcode := read(cbAddr)
	y := (opcode >> 3) & 0x07
	z := opcode & 0x07
	x := opcode >> 6

	target := reg8Names[z]
	if idx != nil {
		d := int8(read(pc + 2))
		target = fmt.Sprintf(idx.memName, d)
	}

	var text string
	switch x {
	case 0:
		text = fmt.Sprintf("%s %s", rotMnemonics[y], target)
	case 1:
		text = fmt.Sprintf("BIT %d,%s", y, target)
	case 2:
		text = fmt.Sprintf("RES %d,%s", y, target)
	default:
		text = fmt.Sprintf("SET %d,%s", y, target)
	}
	return Line{Address: pc, Instruction: text, Length: length}
}

func indexedLine(pc uint16, read ReadByte, idx indexSet) Line {
	next := read(pc + 1)
	if next == 0xCB {
		return cbLine(pc, read, &idx)
	}

	x := next >> 6
	z := next & 0x07
	y := (next >> 3) & 0x07

	usesDisp := (x == 1 && (z == 6 || y == 6) && !(z == 6 && y == 6)) || // LD (IX+d),r / LD r,(IX+d)
		(x == 2 && z == 6) || // ALU op (IX+d)
		(next == 0x34 || next == 0x35 || next == 0x36) // INC/DEC/LD (IX+d),n

	if !usesDisp {
		text, length := baseInstruction(next, pc+2, read, &idx)
		return Line{Address: pc, Instruction: text, Length: length + 1}
	}

	d := int8(read(pc + 2))
	mem := fmt.Sprintf(idx.memName, d)

	switch {
	case x == 1 && z == 6:
		return Line{Address: pc, Instruction: fmt.Sprintf("LD %s,%s", reg8Names[y], mem), Length: 3}
	case x == 1 && y == 6:
		return Line{Address: pc, Instruction: fmt.Sprintf("LD %s,%s", mem, reg8Names[z]), Length: 3}
	case x == 2:
		return Line{Address: pc, Instruction: fmt.Sprintf("%s%s", aluMnemonics[y], mem), Length: 3}
	case next == 0x34:
		return Line{Address: pc, Instruction: fmt.Sprintf("INC %s", mem), Length: 3}
	case next == 0x35:
		return Line{Address: pc, Instruction: fmt.Sprintf("DEC %s", mem), Length: 3}
	case next == 0x36:
		n := read(pc + 3)
		return Line{Address: pc, Instruction: fmt.Sprintf("LD %s,0x%02X", mem, n), Length: 4}
	default:
		return Line{Address: pc, Instruction: mem, Length: 3}
	}
}

func edLine(pc uint16, read ReadByte) Line {
	opcode := read(pc + 1)
	length := 2

	readOperand16 := func() uint16 {
		lo := read(pc + uint16(length))
		length++
		hi := read(pc + uint16(length))
		length++
		return u16(lo, hi)
	}

	switch opcode {
	case 0x47:
		return Line{pc, "LD I,A", length}
	case 0x4F:
		return Line{pc, "LD R,A", length}
	case 0x57:
		return Line{pc, "LD A,I", length}
	case 0x5F:
		return Line{pc, "LD A,R", length}
	case 0x44, 0x4C, 0x54, 0x5C, 0x64, 0x6C, 0x74, 0x7C:
		return Line{pc, "NEG", length}
	case 0x45, 0x55, 0x65, 0x75:
		return Line{pc, "RETN", length}
	case 0x4D, 0x5D, 0x6D, 0x7D:
		return Line{pc, "RETI", length}
	case 0x46, 0x4E, 0x66, 0x6E:
		return Line{pc, "IM 0", length}
	case 0x56, 0x76:
		return Line{pc, "IM 1", length}
	case 0x5E, 0x7E:
		return Line{pc, "IM 2", length}
	case 0x6F:
		return Line{pc, "RLD", length}
	case 0x67:
		return Line{pc, "RRD", length}
	case 0xA0:
		return Line{pc, "LDI", length}
	case 0xA1:
		return Line{pc, "CPI", length}
	case 0xA2:
		return Line{pc, "INI", length}
	case 0xA3:
		return Line{pc, "OUTI", length}
	case 0xA8:
		return Line{pc, "LDD", length}
	case 0xA9:
		return Line{pc, "CPD", length}
	case 0xAA:
		return Line{pc, "IND", length}
	case 0xAB:
		return Line{pc, "OUTD", length}
	case 0xB0:
		return Line{pc, "LDIR", length}
	case 0xB1:
		return Line{pc, "CPIR", length}
	case 0xB2:
		return Line{pc, "INIR", length}
	case 0xB3:
		return Line{pc, "OTIR", length}
	case 0xB8:
		return Line{pc, "LDDR", length}
	case 0xB9:
		return Line{pc, "CPDR", length}
	case 0xBA:
		return Line{pc, "INDR", length}
	case 0xBB:
		return Line{pc, "OTDR", length}
	}

	if opcode&0xC7 == 0x42 { // SBC HL,rp / ADC HL,rp share 01ppq010
		p := (opcode >> 4) & 0x03
		if opcode&0x08 != 0 {
			return Line{pc, fmt.Sprintf("ADC HL,%s", regPairSP[p]), length}
		}
		return Line{pc, fmt.Sprintf("SBC HL,%s", regPairSP[p]), length}
	}
	if opcode&0xCF == 0x43 { // LD (nn),rp / LD rp,(nn)
		p := (opcode >> 4) & 0x03
		nn := readOperand16()
		return Line{pc, fmt.Sprintf("LD (0x%04X),%s", nn, regPairSP[p]), length}
	}
	if opcode&0xCF == 0x4B {
		p := (opcode >> 4) & 0x03
		nn := readOperand16()
		return Line{pc, fmt.Sprintf("LD %s,(0x%04X)", regPairSP[p], nn), length}
	}
	if opcode&0xC7 == 0x41 { // OUT (C),r
		y := (opcode >> 3) & 0x07
		return Line{pc, fmt.Sprintf("OUT (C),%s", reg8Names[y]), length}
	}
	if opcode&0xC7 == 0x40 { // IN r,(C)
		y := (opcode >> 3) & 0x07
		return Line{pc, fmt.Sprintf("IN %s,(C)", reg8Names[y]), length}
	}

	return Line{pc, fmt.Sprintf("DB 0xED,0x%02X", opcode), length}
}
