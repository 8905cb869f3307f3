// Package ikbd wires the HD6301 core to the on-chip peripherals of the
// keyboard controller: parallel ports, timer, SCI and interrupt logic.
package ikbd

import (
	"log/slog"

	"github.com/nevisdale/ikbd/internal/cpu"
	"github.com/nevisdale/ikbd/internal/input"
	"github.com/nevisdale/ikbd/internal/spsc"
)

type Config struct {
	// MouseStepCycles is the quadrature step period. Zero means
	// DefaultMouseStepCycles.
	MouseStepCycles int
	// QueueSize is the capacity of each serial direction. Zero means
	// DefaultQueueSize.
	QueueSize int
}

// Stats is a snapshot of counters for display and logging.
type Stats struct {
	Cycles     uint64
	Registers  cpu.Registers
	Crashed    bool
	Crash      cpu.CrashInfo
	IRQ        IRQState
	RxOverruns uint64 // bytes lost because RDR was still full
	RxDropped  uint64 // bytes lost because the receive queue was full
	TxDropped  uint64 // bytes lost because the transmit queue was full
}

// Machine is one complete controller. All methods except the queue
// accessors must be called from the goroutine that runs it.
type Machine struct {
	cpu *cpu.CPU
	mem cpuMemory
	rom *ROM
	ram [ramSize]uint8
	in  input.Provider

	ports ports
	rcr   uint8
	keys  keyMatrix
	mouse quadrature
	timer timer
	sci   sci
	irq   interruptController

	rxQueue *spsc.Queue[byte]
	txQueue *spsc.Queue[byte]

	cycles uint64
}

// NewMachine builds a controller around rom and cold resets it.
func NewMachine(rom *ROM, in input.Provider, cfg Config) *Machine {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	m := &Machine{
		rom:     rom,
		in:      in,
		mouse:   newQuadrature(cfg.MouseStepCycles),
		rxQueue: spsc.New[byte](cfg.QueueSize),
		txQueue: spsc.New[byte](cfg.QueueSize),
	}
	m.sci.rx = m.rxQueue.Consumer()
	m.sci.tx = m.txQueue.Producer()
	m.irq.timer = &m.timer
	m.irq.sci = &m.sci
	m.mem = cpuMemory{m: m}
	m.cpu = cpu.NewCPU(m.mem, &m.irq)
	m.ColdReset()
	return m
}

// HostRx is the write end of the receive path: bytes coming from the
// host computer. Only the link goroutine may use it.
func (m *Machine) HostRx() spsc.Producer[byte] {
	return m.rxQueue.Producer()
}

// HostTx is the read end of the transmit path: bytes going to the host
// computer. Only the link goroutine may use it.
func (m *Machine) HostTx() spsc.Consumer[byte] {
	return m.txQueue.Consumer()
}

// ColdReset is a power cycle. RAM is cleared.
func (m *Machine) ColdReset() {
	m.ram = [ramSize]uint8{}
	m.reset()
	slog.Debug("ikbd: cold reset", "pc", m.cpu.Registers().PC)
}

// WarmReset pulls the reset line with power applied. RAM survives.
func (m *Machine) WarmReset() {
	m.reset()
	slog.Debug("ikbd: warm reset", "pc", m.cpu.Registers().PC)
}

func (m *Machine) reset() {
	m.ports.reset()
	m.rcr = 0
	m.timer.reset()
	m.sci.reset()
	m.irq.reset()
	m.mouse.reseed()
	m.keys.flush(m.in)
	m.cpu.Reset()
	m.cycles = 0
}

// Run executes until at least budget cycles have elapsed and returns
// the cycles actually run. The last instruction may overshoot. While
// the CPU is crashed the clock keeps running for the peripherals.
func (m *Machine) Run(budget int) int {
	done := 0
	for done < budget {
		n := m.cpu.Step()
		if n == 0 {
			n = budget - done
		}
		m.tick(n)
		done += n
	}
	return done
}

func (m *Machine) tick(cycles int) {
	if cycles == 0 {
		return
	}
	m.cycles += uint64(cycles)
	m.timer.tick(cycles)
	m.sci.tick(cycles)
	if m.in.MouseMode() {
		m.mouse.tick(cycles, m.in)
	}
}

func (m *Machine) readIO(reg uint8) uint8 {
	switch reg {
	case regP1DDR, regP2DDR, regP3DDR, regP4DDR:
		return m.ports.ddr[ddrPort(reg)]
	case regP1DR:
		return m.readPort(port1)
	case regP2DR:
		return m.readPort(port2)
	case regP3DR:
		return m.readPort(port3)
	case regP4DR:
		return m.readPort(port4)
	case regTCSR, regFRCH, regFRCL, regOCRH, regOCRL:
		return m.timer.read(reg)
	case regRMCR, regTRCSR, regRDR, regTDR:
		return m.sci.read(reg)
	case regRCR:
		return m.rcr
	}
	return unmapped
}

// peekIO returns register contents without read side effects. Port
// data registers show the latched output value.
func (m *Machine) peekIO(reg uint8) uint8 {
	switch reg {
	case regP1DDR, regP2DDR, regP3DDR, regP4DDR:
		return m.ports.ddr[ddrPort(reg)]
	case regP1DR, regP2DR, regP3DR, regP4DR:
		return m.ports.dr[drPort(reg)]
	case regTCSR, regFRCH, regFRCL, regOCRH, regOCRL:
		return m.timer.peek(reg)
	case regRMCR, regTRCSR, regRDR, regTDR:
		return m.sci.peek(reg)
	case regRCR:
		return m.rcr
	}
	return unmapped
}

func (m *Machine) writeIO(reg, data uint8) {
	switch reg {
	case regP1DDR, regP2DDR, regP3DDR, regP4DDR:
		m.ports.ddr[ddrPort(reg)] = data
	case regP1DR, regP2DR, regP3DR, regP4DR:
		m.ports.dr[drPort(reg)] = data
	case regTCSR, regFRCH, regFRCL, regOCRH, regOCRL:
		m.timer.write(reg, data)
	case regRMCR, regTRCSR, regRDR, regTDR:
		m.sci.write(reg, data)
	case regRCR:
		m.rcr = data
	default:
		slog.Debug("ikbd: write to unused register", "reg", reg, "data", data)
	}
}

func ddrPort(reg uint8) int {
	switch reg {
	case regP1DDR:
		return port1
	case regP2DDR:
		return port2
	case regP3DDR:
		return port3
	}
	return port4
}

func drPort(reg uint8) int {
	switch reg {
	case regP1DR:
		return port1
	case regP2DR:
		return port2
	case regP3DR:
		return port3
	}
	return port4
}

// Peek8 reads the address space without side effects.
func (m *Machine) Peek8(addr uint16) uint8 {
	return m.mem.Peek8(addr)
}

func (m *Machine) Registers() cpu.Registers {
	return m.cpu.Registers()
}

func (m *Machine) Crashed() (cpu.CrashInfo, bool) {
	return m.cpu.Crashed()
}

func (m *Machine) Cycles() uint64 {
	return m.cycles
}

func (m *Machine) Stats() Stats {
	crash, crashed := m.cpu.Crashed()
	return Stats{
		Cycles:     m.cycles,
		Registers:  m.cpu.Registers(),
		Crashed:    crashed,
		Crash:      crash,
		IRQ:        m.irq.state,
		RxOverruns: m.sci.overruns,
		RxDropped:  m.rxQueue.Dropped(),
		TxDropped:  m.txQueue.Dropped(),
	}
}
