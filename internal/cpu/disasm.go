package cpu

import "fmt"

// Peeker reads memory without triggering I/O side effects.
type Peeker interface {
	Peek8(addr uint16) uint8
}

// Line is one disassembled instruction.
type Line struct {
	Addr uint16
	Size uint16
	Text string
}

// DisassembleAt decodes the instruction at addr.
func DisassembleAt(mem Peeker, addr uint16) Line {
	opcode := mem.Peek8(addr)
	in := opcodes[opcode]
	size := 1 + in.mode.operandBytes()
	b1 := mem.Peek8(addr + 1)
	b2 := mem.Peek8(addr + 2)
	w := uint16(b1)<<8 | uint16(b2)

	var text string
	switch in.mode {
	case addrModeINH:
		text = in.name
	case addrModeIMM:
		text = fmt.Sprintf("%s #$%02X", in.name, b1)
	case addrModeIMM16:
		text = fmt.Sprintf("%s #$%04X", in.name, w)
	case addrModeDIR:
		text = fmt.Sprintf("%s $%02X", in.name, b1)
	case addrModeIDX:
		text = fmt.Sprintf("%s $%02X,X", in.name, b1)
	case addrModeEXT:
		text = fmt.Sprintf("%s $%04X", in.name, w)
	case addrModeREL:
		target := addr + size + uint16(int8(b1))
		text = fmt.Sprintf("%s $%04X", in.name, target)
	case addrModeIMMDIR:
		text = fmt.Sprintf("%s #$%02X,$%02X", in.name, b1, b2)
	case addrModeIMMIDX:
		text = fmt.Sprintf("%s #$%02X,$%02X,X", in.name, b1, b2)
	}
	if !IsLegal(opcode) {
		text = fmt.Sprintf("??? $%02X", opcode)
		size = 1
	}
	return Line{Addr: addr, Size: size, Text: fmt.Sprintf("$%04X: %s", addr, text)}
}

// Disassemble returns up to n instructions starting at addr.
func Disassemble(mem Peeker, addr uint16, n int) []Line {
	lines := make([]Line, 0, n)
	for range n {
		line := DisassembleAt(mem, addr)
		lines = append(lines, line)
		addr += line.Size
	}
	return lines
}
