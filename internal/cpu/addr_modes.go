package cpu

type addrMode uint8

const (
	// Inherent
	// Operand is implied by the opcode.
	// Example: INCA
	addrModeINH addrMode = iota + 1

	// Immediate
	// Operand is the byte following the opcode.
	// Example: LDAA #$10
	addrModeIMM

	// Immediate, 16 bit
	// Operand is the big-endian word following the opcode.
	// Example: LDX #$1234
	addrModeIMM16

	// Direct
	// Operand is located in the first 256 bytes of memory.
	// Example: LDAA $80
	addrModeDIR

	// Indexed
	// Unsigned 8-bit offset added to the X register.
	// Example: LDAA $10,X
	addrModeIDX

	// Extended
	// Full 16-bit address.
	// Example: LDAA $F123
	addrModeEXT

	// Relative
	// Signed 8-bit offset from the address of the next instruction.
	// Example: BNE $F0
	addrModeREL

	// Immediate + Direct (AIM/OIM/EIM/TIM)
	// Example: AIM #$FE,$80
	addrModeIMMDIR

	// Immediate + Indexed (AIM/OIM/EIM/TIM)
	// Example: OIM #$01,$02,X
	addrModeIMMIDX
)

func (mode addrMode) String() string {
	switch mode {
	case addrModeINH:
		return "INH"
	case addrModeIMM:
		return "IMM"
	case addrModeIMM16:
		return "IMM16"
	case addrModeDIR:
		return "DIR"
	case addrModeIDX:
		return "IDX"
	case addrModeEXT:
		return "EXT"
	case addrModeREL:
		return "REL"
	case addrModeIMMDIR:
		return "IMMDIR"
	case addrModeIMMIDX:
		return "IMMIDX"
	}
	return "???"
}

// operandBytes is the number of bytes that follow the opcode.
func (mode addrMode) operandBytes() uint16 {
	switch mode {
	case addrModeIMM, addrModeDIR, addrModeIDX, addrModeREL:
		return 1
	case addrModeIMM16, addrModeEXT, addrModeIMMDIR, addrModeIMMIDX:
		return 2
	}
	return 0
}

// fetch resolves the effective address of the current instruction.
// Operands are not read here: I/O registers have read side effects,
// so every instruction loads exactly what it needs.
func (c *CPU) fetch(mode addrMode) {
	c.mode = mode
	c.operandAddr = 0
	c.imm = 0

	switch mode {
	case addrModeIMM:
		c.operandAddr = c.pc
		c.pc++

	case addrModeIMM16:
		c.operandAddr = c.pc
		c.pc += 2

	case addrModeDIR:
		c.operandAddr = uint16(c.read8(c.pc))
		c.pc++

	case addrModeIDX:
		c.operandAddr = c.x + uint16(c.read8(c.pc))
		c.pc++

	case addrModeEXT:
		c.operandAddr = c.read16(c.pc)
		c.pc += 2

	case addrModeREL:
		c.operandAddr = uint16(c.read8(c.pc))
		c.pc++
		if c.operandAddr&0x80 > 0 {
			c.operandAddr |= 0xff00 // keep the sign
		}

	case addrModeIMMDIR:
		c.imm = c.read8(c.pc)
		c.operandAddr = uint16(c.read8(c.pc + 1))
		c.pc += 2

	case addrModeIMMIDX:
		c.imm = c.read8(c.pc)
		c.operandAddr = c.x + uint16(c.read8(c.pc+1))
		c.pc += 2
	}
}

func (c *CPU) load8() uint8 {
	return c.read8(c.operandAddr)
}

func (c *CPU) load16() uint16 {
	return c.read16(c.operandAddr)
}
