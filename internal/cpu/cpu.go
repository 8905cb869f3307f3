package cpu

import (
	"fmt"
	"log/slog"
)

type ReadWriter interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, data uint8)
}

// Memory is the address space the CPU runs against.
// Executable reports whether an opcode may be fetched from addr.
type Memory interface {
	ReadWriter
	Executable(addr uint16) bool
}

// InterruptController is consulted once per instruction boundary
// while the interrupt mask is clear.
type InterruptController interface {
	// Pending returns the vector address of the highest priority
	// pending source.
	Pending() (vector uint16, ok bool)
	// Enter is called after the CPU stacked its registers and jumped to
	// the vector, for hardware sources and SWI alike.
	Enter()
	// Return is called by RTI.
	Return()
}

const (
	flagC = uint8(1 << iota) // Carry
	flagV                    // Overflow
	flagZ                    // Zero
	flagN                    // Negative
	flagI                    // Interrupt mask
	flagH                    // Half carry

	ccrFixed = uint8(0xc0) // bits 6 and 7 always read as 1
)

const (
	VectorTrap  = uint16(0xffee)
	VectorSCI   = uint16(0xfff0)
	VectorTOF   = uint16(0xfff2)
	VectorOCF   = uint16(0xfff4)
	VectorICF   = uint16(0xfff6)
	VectorIRQ   = uint16(0xfff8)
	VectorSWI   = uint16(0xfffa)
	VectorNMI   = uint16(0xfffc)
	VectorReset = uint16(0xfffe)
)

const (
	// cycles charged for the hardware interrupt entry sequence
	interruptCycles = 12
	// cycles charged for leaving WAI once the vector is taken
	waiWakeCycles = 4
)

type runState uint8

const (
	stateRunning  runState = iota
	stateWaiting           // WAI: registers stacked, waiting for an interrupt
	stateSleeping          // SLP: waiting for any interrupt source
	stateCrashed
)

// CrashInfo describes why the CPU stopped decoding.
type CrashInfo struct {
	PC     uint16
	Opcode uint8
	Reason string
}

func (ci CrashInfo) String() string {
	return fmt.Sprintf("%s at $%04X (opcode $%02X)", ci.Reason, ci.PC, ci.Opcode)
}

// Registers is a copy of the programmer visible state.
type Registers struct {
	PC  uint16
	A   uint8
	B   uint8
	X   uint16
	SP  uint16
	CCR uint8
}

func (r Registers) String() string {
	return fmt.Sprintf("PC:%04X A:%02X B:%02X X:%04X SP:%04X CCR:%02X", r.PC, r.A, r.B, r.X, r.SP, r.CCR)
}

type CPU struct {
	a           uint8  // accumulator A, high byte of D
	b           uint8  // accumulator B, low byte of D
	x           uint16 // index register
	sp          uint16 // stack pointer, points to the next free byte
	pc          uint16 // program counter
	ccr         uint8  // contains flags from flagX
	mem         Memory
	irq         InterruptController
	totalCycles uint64
	opcode      uint8    // opcode of the current instruction
	opcodePC    uint16   // address the current opcode was fetched from
	mode        addrMode // current address mode
	operandAddr uint16   // effective address, or sign extended offset for REL
	imm         uint8    // immediate byte of the AIM/OIM/EIM/TIM forms
	state       runState
	crash       CrashInfo
}

func NewCPU(mem Memory, irq InterruptController) *CPU {
	return &CPU{
		mem: mem,
		irq: irq,
		ccr: ccrFixed | flagI,
	}
}

func (c *CPU) read8(addr uint16) uint8 {
	return c.mem.Read8(addr)
}

func (c *CPU) read16(addr uint16) uint16 {
	return uint16(c.read8(addr))<<8 | uint16(c.read8(addr+1))
}

func (c *CPU) write8(addr uint16, data uint8) {
	c.mem.Write8(addr, data)
}

func (c *CPU) write16(addr uint16, data uint16) {
	c.write8(addr, uint8(data>>8))
	c.write8(addr+1, uint8(data))
}

func (c *CPU) getFlag(flag uint8) bool {
	return c.ccr&flag > 0
}

func (c *CPU) setFlag(flag uint8, v bool) {
	if v {
		c.ccr |= flag
		return
	}
	c.ccr &= ^flag
}

func (c *CPU) setFlagsNZ8(value uint8) {
	c.setFlag(flagZ, value == 0)
	c.setFlag(flagN, value&0x80 > 0)
}

func (c *CPU) setFlagsNZ16(value uint16) {
	c.setFlag(flagZ, value == 0)
	c.setFlag(flagN, value&0x8000 > 0)
}

func (c *CPU) carry() uint8 {
	return c.ccr & flagC
}

func (c *CPU) d() uint16 {
	return uint16(c.a)<<8 | uint16(c.b)
}

func (c *CPU) setD(v uint16) {
	c.a = uint8(v >> 8)
	c.b = uint8(v)
}

func (c *CPU) stackPush8(data uint8) {
	c.write8(c.sp, data)
	c.sp--
}

func (c *CPU) stackPush16(data uint16) {
	c.stackPush8(uint8(data))
	c.stackPush8(uint8(data >> 8))
}

func (c *CPU) stackPop8() uint8 {
	c.sp++
	return c.read8(c.sp)
}

func (c *CPU) stackPop16() uint16 {
	hi := uint16(c.stackPop8())
	lo := uint16(c.stackPop8())
	return hi<<8 | lo
}

// pushAll stacks the full register set in hardware interrupt order:
// PCL, PCH, XL, XH, A, B, CCR.
func (c *CPU) pushAll() {
	c.stackPush16(c.pc)
	c.stackPush16(c.x)
	c.stackPush8(c.a)
	c.stackPush8(c.b)
	c.stackPush8(c.ccr)
}

func (c *CPU) pullAll() {
	c.ccr = c.stackPop8() | ccrFixed
	c.b = c.stackPop8()
	c.a = c.stackPop8()
	c.x = c.stackPop16()
	c.pc = c.stackPop16()
}

// Reset puts the CPU in its power-on state: registers cleared,
// interrupts masked and PC loaded from the reset vector.
func (c *CPU) Reset() {
	c.a = 0
	c.b = 0
	c.x = 0
	c.sp = 0
	c.ccr = ccrFixed | flagI
	c.pc = c.read16(VectorReset)
	c.totalCycles = 0
	c.state = stateRunning
	c.crash = CrashInfo{}
}

// Step executes one instruction, or enters one interrupt, and
// returns the number of cycles consumed.
func (c *CPU) Step() int {
	switch c.state {
	case stateCrashed:
		return 0
	case stateWaiting, stateSleeping:
		return c.account(c.stepIdle())
	}

	if !c.getFlag(flagI) && c.irq != nil {
		if vector, ok := c.irq.Pending(); ok {
			c.interrupt(vector)
			return c.account(interruptCycles)
		}
	}

	if !c.mem.Executable(c.pc) {
		c.halt(c.pc, 0, "runaway program counter")
		return 0
	}

	c.opcodePC = c.pc
	c.opcode = c.read8(c.pc)
	c.pc++
	instr := &opcodes[c.opcode]
	c.fetch(instr.mode)
	instr.fn(c)
	if c.state == stateCrashed {
		return 0
	}

	c.mode = 0
	c.operandAddr = 0
	c.imm = 0
	return c.account(int(instr.cycles))
}

func (c *CPU) account(cycles int) int {
	c.totalCycles += uint64(cycles)
	return cycles
}

// stepIdle handles one step of WAI or SLP. Both burn a cycle per
// step so the on-chip timer keeps counting.
func (c *CPU) stepIdle() int {
	if c.irq == nil {
		return 1
	}
	vector, ok := c.irq.Pending()
	if !ok {
		return 1
	}

	if c.state == stateSleeping {
		c.state = stateRunning
		if c.getFlag(flagI) {
			// masked source still wakes the CPU, execution resumes after SLP
			return 1
		}
		c.interrupt(vector)
		return interruptCycles
	}

	if c.getFlag(flagI) {
		return 1
	}
	c.state = stateRunning
	c.setFlag(flagI, true)
	c.pc = c.read16(vector)
	c.irq.Enter()
	return waiWakeCycles
}

// interrupt runs the hardware entry sequence for vector.
func (c *CPU) interrupt(vector uint16) {
	c.pushAll()
	c.setFlag(flagI, true)
	c.pc = c.read16(vector)
	if c.irq != nil {
		c.irq.Enter()
	}
}

func (c *CPU) halt(pc uint16, opcode uint8, reason string) {
	c.state = stateCrashed
	c.crash = CrashInfo{PC: pc, Opcode: opcode, Reason: reason}
	slog.Error("cpu halted", "reason", reason, "pc", fmt.Sprintf("$%04X", pc), "opcode", fmt.Sprintf("$%02X", opcode))
}

// Crashed reports whether decoding stopped because of an illegal
// opcode or a runaway program counter. Only Reset recovers.
func (c *CPU) Crashed() (CrashInfo, bool) {
	return c.crash, c.state == stateCrashed
}

// Waiting reports whether the CPU is parked in WAI or SLP.
func (c *CPU) Waiting() bool {
	return c.state == stateWaiting || c.state == stateSleeping
}

func (c *CPU) TotalCycles() uint64 {
	return c.totalCycles
}

func (c *CPU) Registers() Registers {
	return Registers{PC: c.pc, A: c.a, B: c.b, X: c.x, SP: c.sp, CCR: c.ccr}
}

func (c *CPU) SetRegisters(r Registers) {
	c.pc = r.PC
	c.a = r.A
	c.b = r.B
	c.x = r.X
	c.sp = r.SP
	c.ccr = r.CCR | ccrFixed
}
