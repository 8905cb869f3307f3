package ikbd

import "log/slog"

const (
	ioEnd   = 0x0020
	ramBase = 0x0080
	ramSize = 0x80

	unmapped = 0xff
)

// $0000-$001F: on-chip I/O registers
// $0020-$007F: unmapped
// $0080-$00FF: 128 bytes of internal RAM
// $0100-$EFFF: unmapped
// $F000-$FFFF: mask ROM
type cpuMemory struct {
	m *Machine
}

func (c cpuMemory) Read8(addr uint16) uint8 {
	switch {
	case addr < ioEnd:
		return c.m.readIO(uint8(addr))
	case addr >= ramBase && addr < ramBase+ramSize:
		return c.m.ram[addr-ramBase]
	case addr >= romBase:
		return c.m.rom.Read8(addr)
	}
	return unmapped
}

func (c cpuMemory) Write8(addr uint16, data uint8) {
	switch {
	case addr < ioEnd:
		c.m.writeIO(uint8(addr), data)
	case addr >= ramBase && addr < ramBase+ramSize:
		c.m.ram[addr-ramBase] = data
	case addr >= romBase:
		// mask rom
	default:
		slog.Debug("ikbd: write to unmapped address", "addr", addr, "data", data)
	}
}

func (c cpuMemory) Executable(addr uint16) bool {
	return addr >= ramBase && addr < ramBase+ramSize || addr >= romBase
}

// Peek8 reads like Read8 but without register side effects.
func (c cpuMemory) Peek8(addr uint16) uint8 {
	if addr < ioEnd {
		return c.m.peekIO(uint8(addr))
	}
	return c.Read8(addr)
}
