package ikbd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nevisdale/ikbd/internal/cpu"
	"github.com/nevisdale/ikbd/internal/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// image returns a rom image with the reset vector at $F000 and the
// given chunks placed at their absolute addresses.
func image(chunks map[uint16][]uint8) []byte {
	img := make([]byte, ROMSize)
	img[ROMSize-2], img[ROMSize-1] = 0xf0, 0x00
	for addr, data := range chunks {
		copy(img[addr-romBase:], data)
	}
	return img
}

func newTestMachine(t *testing.T, chunks map[uint16][]uint8) (*Machine, *input.State) {
	t.Helper()
	rom, err := NewROM(image(chunks))
	require.NoError(t, err)
	in := input.NewState(input.DefaultKeyQueue)
	return NewMachine(rom, in, Config{}), in
}

func Test_NewROM_Size(t *testing.T) {
	for _, size := range []int{0, 2048, 4095, 8192} {
		_, err := NewROM(make([]byte, size))
		assert.ErrorIs(t, err, ErrROMSize, "size %d", size)
	}
	_, err := NewROM(make([]byte, ROMSize))
	assert.NoError(t, err)
}

func Test_LoadROM(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadROM(filepath.Join(dir, "missing.bin"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	short := filepath.Join(dir, "short.bin")
	require.NoError(t, os.WriteFile(short, make([]byte, 2048), 0o644))
	_, err = LoadROM(short)
	assert.ErrorIs(t, err, ErrROMSize)

	good := filepath.Join(dir, "good.bin")
	img := image(nil)
	img[ROMSize-2], img[ROMSize-1] = 0xf1, 0x23
	require.NoError(t, os.WriteFile(good, img, 0o644))
	rom, err := LoadROM(good)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xf123), rom.ResetVector())
	assert.Equal(t, uint8(0xf1), rom.Peek8(0xfffe))
	assert.Equal(t, uint8(0xff), rom.Peek8(0x0080), "below the rom")
}

func Test_ColdReset_LoadsResetVector(t *testing.T) {
	img := image(nil)
	img[ROMSize-2], img[ROMSize-1] = 0xf2, 0x34
	rom, err := NewROM(img)
	require.NoError(t, err)

	m := NewMachine(rom, input.NewState(input.DefaultKeyQueue), Config{})
	regs := m.Registers()
	assert.Equal(t, rom.ResetVector(), regs.PC)
	assert.Equal(t, uint8(0xd0), regs.CCR, "interrupts masked")
	assert.Equal(t, uint8(0x00), m.Peek8(regP1DDR))
	assert.Equal(t, uint8(0xff), m.Peek8(regOCRH))
	assert.Equal(t, uint8(0xff), m.Peek8(regOCRL))
	assert.Equal(t, uint8(trcsrTDRE), m.Peek8(regTRCSR))
}

func Test_Reset_RAM(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	m.mem.Write8(0x0080, 0x55)
	m.mem.Write8(0x00ff, 0xaa)

	m.WarmReset()
	assert.Equal(t, uint8(0x55), m.Peek8(0x0080), "warm reset keeps ram")
	assert.Equal(t, uint8(0xaa), m.Peek8(0x00ff))

	m.ColdReset()
	assert.Equal(t, uint8(0x00), m.Peek8(0x0080), "cold reset clears ram")
	assert.Equal(t, uint8(0x00), m.Peek8(0x00ff))
}

func Test_Reset_FlushesKeys(t *testing.T) {
	m, in := newTestMachine(t, nil)
	in.Key(3, true)
	m.keys.drain(in)
	in.Key(4, true)
	require.True(t, m.keys.held(3))

	m.ColdReset()
	assert.False(t, m.keys.held(3))
	assert.Empty(t, in.KeyTransitions(nil))
}

func Test_MemoryMap(t *testing.T) {
	m, _ := newTestMachine(t, map[uint16][]uint8{0xf000: {0x86, 0x12}})

	assert.Equal(t, uint8(0xff), m.mem.Read8(0x0040), "gap between i/o and ram")
	assert.Equal(t, uint8(0xff), m.mem.Read8(0x1234))

	m.mem.Write8(0xf000, 0x00)
	assert.Equal(t, uint8(0x86), m.mem.Read8(0xf000), "rom ignores writes")

	assert.True(t, m.mem.Executable(0x0080))
	assert.True(t, m.mem.Executable(0xffff))
	assert.False(t, m.mem.Executable(0x0010))
	assert.False(t, m.mem.Executable(0x0100))
	assert.False(t, m.mem.Executable(0xefff))
}

func Test_Run_Overshoot(t *testing.T) {
	// LDX #$0000 (3 cycles) in a loop with BRA (3 cycles)
	m, _ := newTestMachine(t, map[uint16][]uint8{0xf000: {0xce, 0x00, 0x00, 0x20, 0xfb}})

	n := m.Run(1000)
	assert.GreaterOrEqual(t, n, 1000)
	assert.Less(t, n, 1003)
	assert.Equal(t, uint64(n), m.Cycles())
}

func Test_Run_Crashed(t *testing.T) {
	// $00 is not an HD6301 opcode
	m, _ := newTestMachine(t, map[uint16][]uint8{0xf000: {0x01, 0x00}})

	n := m.Run(1000)
	assert.Equal(t, 1000, n, "clock keeps running")

	st := m.Stats()
	require.True(t, st.Crashed)
	assert.Equal(t, uint16(0xf001), st.Crash.PC)
	assert.Equal(t, uint8(0x00), st.Crash.Opcode)
	assert.Equal(t, uint64(1000), st.Cycles)

	m.ColdReset()
	_, crashed := m.Crashed()
	assert.False(t, crashed, "reset recovers")
}

func Test_Run_RunawayPC(t *testing.T) {
	// JMP $0100
	m, _ := newTestMachine(t, map[uint16][]uint8{0xf000: {0x7e, 0x01, 0x00}})

	m.Run(100)
	crash, crashed := m.Crashed()
	require.True(t, crashed)
	assert.Equal(t, uint16(0x0100), crash.PC)
}

func Test_IRQ_Priority(t *testing.T) {
	m, _ := newTestMachine(t, nil)

	m.sci.trcsr |= trcsrRDRF | trcsrRIE
	m.timer.tcsr |= tcsrTOF | tcsrETOI | tcsrOCF | tcsrEOCI

	vector, ok := m.irq.Pending()
	require.True(t, ok)
	assert.Equal(t, cpu.VectorOCF, vector, "output compare first")
	assert.Equal(t, IRQPending, m.irq.state)

	m.timer.tcsr &^= tcsrOCF
	vector, _ = m.irq.Pending()
	assert.Equal(t, cpu.VectorTOF, vector)

	m.timer.tcsr &^= tcsrTOF
	vector, _ = m.irq.Pending()
	assert.Equal(t, cpu.VectorSCI, vector)

	m.sci.trcsr &^= trcsrRIE
	_, ok = m.irq.Pending()
	assert.False(t, ok)
	assert.Equal(t, IRQIdle, m.irq.state)
}

func Test_IRQ_Nesting(t *testing.T) {
	t.Run("enter and return", func(t *testing.T) {
		m, _ := newTestMachine(t, nil)
		ic := &m.irq

		ic.Enter()
		ic.Enter()
		assert.Equal(t, IRQServicing, ic.state)
		ic.Return()
		assert.Equal(t, IRQServicing, ic.state, "outer handler still running")
		ic.Return()
		assert.Equal(t, IRQIdle, ic.state)
		ic.Return()
		assert.Equal(t, IRQIdle, ic.state)
	})

	t.Run("swi inside compare handler", func(t *testing.T) {
		program := []uint8{
			0x8e, 0x00, 0xff, // LDS #$00FF
			0x86, 0x08, //       LDAA #EOCI
			0x97, 0x08, //       STAA TCSR
			0x0e,       //       CLI
			0x20, 0xfe, //       BRA *
		}
		ocfHandler := []uint8{
			0x3f,       // SWI
			0x20, 0xfe, // BRA *, OCF left set
		}
		swiHandler := []uint8{
			0x86, 0x01, // LDAA #1
			0x97, 0x80, // STAA $80
			0x3b, //       RTI
		}
		m, _ := newTestMachine(t, map[uint16][]uint8{
			0xf000: program,
			0xf100: ocfHandler,
			0xf300: swiHandler,
			0xfff4: {0xf1, 0x00},
			0xfffa: {0xf3, 0x00},
		})
		m.timer.ocr = 0x0009

		m.Run(200)
		require.Equal(t, uint8(0x01), m.Peek8(0x0080), "software handler ran")
		assert.Equal(t, uint16(0xf101), m.Registers().PC)
		assert.Equal(t, IRQServicing, m.irq.state, "compare handler still running")
		assert.Equal(t, 1, m.irq.depth)
	})
}

func Test_IRQ_TimerServicedBeforeSCI(t *testing.T) {
	program := []uint8{
		0x8e, 0x00, 0xff, // LDS #$00FF
		0x86, 0x18, //       LDAA #RE|RIE
		0x97, 0x11, //       STAA TRCSR
		0x86, 0x08, //       LDAA #EOCI
		0x97, 0x08, //       STAA TCSR
		0x0e,       //       CLI
		0x20, 0xfe, //       BRA *
	}
	ocfHandler := []uint8{
		0x86, 0x01, // LDAA #1
		0x97, 0x80, // STAA $80
		0x96, 0x08, // LDAA TCSR
		0x97, 0x0c, // STAA OCRL, clears OCF
		0x3b, //       RTI
	}
	sciHandler := []uint8{
		0x96, 0x80, // LDAA $80
		0x97, 0x81, // STAA $81, what ran first
		0x96, 0x12, // LDAA RDR
		0x97, 0x82, // STAA $82
		0x3b, //       RTI
	}
	m, _ := newTestMachine(t, map[uint16][]uint8{
		0xf000: program,
		0xf100: ocfHandler,
		0xf200: sciHandler,
		0xfff0: {0xf2, 0x00},
		0xfff4: {0xf1, 0x00},
	})

	// both sources become ready before CLI
	m.timer.ocr = 0x0009
	m.HostRx().Push(0x81)

	m.Run(200)
	assert.Equal(t, uint8(0x01), m.Peek8(0x0081), "compare handler ran first")
	assert.Equal(t, uint8(0x81), m.Peek8(0x0082))
}
