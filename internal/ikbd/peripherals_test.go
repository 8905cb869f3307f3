package ikbd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Timer_ReadLatchesLowByte(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	m.timer.frc = 0x12ff

	assert.Equal(t, uint8(0x12), m.mem.Read8(regFRCH))
	m.timer.tick(1)
	assert.Equal(t, uint8(0xff), m.mem.Read8(regFRCL), "low byte from the latch")
	assert.Equal(t, uint8(0x13), m.mem.Read8(regFRCH))
	assert.Equal(t, uint8(0x00), m.mem.Read8(regFRCL))
}

func Test_Timer_WritePresets(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	m.timer.frc = 0x1234

	m.mem.Write8(regFRCH, 0x55)
	assert.Equal(t, uint16(0x1234), m.timer.frc, "high byte only buffered")
	m.mem.Write8(regFRCL, 0xaa)
	assert.Equal(t, uint16(0xfff8), m.timer.frc)
}

func Test_Timer_OutputCompare(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	m.timer.frc = 0x0100
	m.timer.ocr = 0x0105

	m.timer.tick(4)
	assert.Zero(t, m.timer.tcsr&tcsrOCF)
	m.timer.tick(1)
	require.NotZero(t, m.timer.tcsr&tcsrOCF)

	m.mem.Write8(regOCRH, 0x02)
	assert.NotZero(t, m.timer.tcsr&tcsrOCF, "OCR write without a TCSR read")

	m.mem.Read8(regTCSR)
	m.mem.Read8(regTCSR)
	assert.NotZero(t, m.timer.tcsr&tcsrOCF, "TCSR read alone")

	m.mem.Write8(regOCRL, 0x00)
	assert.Zero(t, m.timer.tcsr&tcsrOCF, "TCSR read then OCR write")
	assert.Equal(t, uint16(0x0200), m.timer.ocr)
}

func Test_Timer_CompareInhibitedAfterWrite(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	m.timer.frc = 0x00ff

	m.mem.Write8(regOCRH, 0x01)
	m.mem.Write8(regOCRL, 0x00)
	m.timer.tick(1)
	assert.Zero(t, m.timer.tcsr&tcsrOCF)

	m.timer.frc = 0x00ff
	m.timer.tick(1)
	assert.NotZero(t, m.timer.tcsr&tcsrOCF)
}

func Test_Timer_Overflow(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	m.timer.frc = 0xfffe

	m.timer.tick(1)
	assert.Zero(t, m.timer.tcsr&tcsrTOF)
	m.timer.tick(1)
	require.NotZero(t, m.timer.tcsr&tcsrTOF)
	assert.Equal(t, uint16(0), m.timer.frc)

	m.mem.Read8(regFRCH)
	assert.NotZero(t, m.timer.tcsr&tcsrTOF, "FRC read without a TCSR read")

	m.mem.Read8(regTCSR)
	m.mem.Read8(regFRCL)
	assert.NotZero(t, m.timer.tcsr&tcsrTOF, "low byte does not clear")
	m.mem.Read8(regFRCH)
	assert.Zero(t, m.timer.tcsr&tcsrTOF)
}

func Test_Timer_ControlBits(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	m.timer.tcsr = tcsrOCF

	m.mem.Write8(regTCSR, 0xff)
	assert.Equal(t, uint8(tcsrOCF|tcsrWritable), m.mem.Read8(regTCSR))
	m.mem.Write8(regTCSR, 0x00)
	assert.Equal(t, uint8(tcsrOCF), m.mem.Read8(regTCSR), "flags are read-only")
}

func Test_SCI_ReceiveAndRead(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	m.mem.Write8(regTRCSR, trcsrRE|trcsrRIE)
	m.HostRx().Push(0x81)

	m.tick(1)
	assert.NotZero(t, m.peekIO(regTRCSR)&trcsrRDRF)
	vector, ok := m.irq.Pending()
	assert.True(t, ok)
	assert.Equal(t, uint16(0xfff0), vector)

	for range 3 {
		assert.NotZero(t, m.mem.Read8(regTRCSR)&trcsrRDRF, "status reads never clear")
	}
	assert.NotZero(t, m.mem.Read8(regTRCSR)&trcsrTDRE)

	assert.Equal(t, uint8(0x81), m.mem.Read8(regRDR))
	assert.Zero(t, m.mem.Read8(regTRCSR)&trcsrRDRF)
	_, ok = m.irq.Pending()
	assert.False(t, ok)
}

func Test_SCI_ReceiveWithinQuota(t *testing.T) {
	program := []uint8{
		0x8e, 0x00, 0xff, // LDS #$00FF
		0x86, 0x18, //       LDAA #RE|RIE
		0x97, 0x11, //       STAA TRCSR
		0x0e,       //       CLI
		0x20, 0xfe, //       BRA *
	}
	handler := []uint8{
		0x96, 0x11, // LDAA TRCSR
		0x97, 0x80, // STAA $80
		0x96, 0x12, // LDAA RDR
		0x97, 0x81, // STAA $81
		0x3b, //       RTI
	}
	m, _ := newTestMachine(t, map[uint16][]uint8{
		0xf000: program,
		0xf100: handler,
		0xfff0: {0xf1, 0x00},
	})

	m.Run(100)
	m.HostRx().Push(0x81)
	m.Run(1000)

	assert.NotZero(t, m.Peek8(0x0080)&trcsrRDRF, "handler saw receive-full")
	assert.Equal(t, uint8(0x81), m.Peek8(0x0081))
	assert.Zero(t, m.peekIO(regTRCSR)&trcsrRDRF)
	assert.Equal(t, IRQIdle, m.Stats().IRQ)
}

func Test_SCI_Overrun(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	m.mem.Write8(regTRCSR, trcsrRE)
	rx := m.HostRx()
	rx.Push(0x11)
	rx.Push(0x22)

	m.tick(1)
	assert.Equal(t, uint8(trcsrRDRF), m.peekIO(regTRCSR)&(trcsrRDRF|trcsrORFE))
	m.tick(ByteCycles - 1)
	assert.Zero(t, m.peekIO(regTRCSR)&trcsrORFE, "one frame per byte time")
	m.tick(1)
	assert.NotZero(t, m.peekIO(regTRCSR)&trcsrORFE)
	assert.Equal(t, uint64(1), m.Stats().RxOverruns)

	assert.Equal(t, uint8(0x11), m.mem.Read8(regRDR), "newer byte discarded")
	assert.Zero(t, m.peekIO(regTRCSR)&(trcsrRDRF|trcsrORFE))
}

func Test_SCI_HoldsWhileReceiverDisabled(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	m.HostRx().Push(0x5a)

	m.tick(10 * ByteCycles)
	assert.Zero(t, m.peekIO(regTRCSR)&trcsrRDRF)

	m.mem.Write8(regTRCSR, trcsrRE)
	m.tick(1)
	assert.NotZero(t, m.peekIO(regTRCSR)&trcsrRDRF)
	assert.Equal(t, uint8(0x5a), m.mem.Read8(regRDR))
}

func Test_SCI_TransmitDrain(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	tx := m.HostTx()
	m.mem.Write8(regTRCSR, trcsrTE)
	require.NotZero(t, m.mem.Read8(regTRCSR)&trcsrTDRE)

	m.mem.Write8(regTDR, 0x42)
	assert.Zero(t, m.mem.Read8(regTRCSR)&trcsrTDRE, "cleared immediately")

	m.tick(2 * ByteCycles)
	assert.Zero(t, m.mem.Read8(regTRCSR)&trcsrTDRE, "byte still queued")

	b, ok := tx.Pop()
	require.True(t, ok)
	assert.Equal(t, uint8(0x42), b)

	m.tick(1)
	assert.NotZero(t, m.mem.Read8(regTRCSR)&trcsrTDRE)
}

func Test_SCI_TransmitWaitsForByteTime(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	tx := m.HostTx()
	m.mem.Write8(regTRCSR, trcsrTE|trcsrTIE)
	m.mem.Write8(regTDR, 0x42)
	tx.Pop()

	m.tick(ByteCycles - 1)
	assert.Zero(t, m.peekIO(regTRCSR)&trcsrTDRE)
	_, ok := m.irq.Pending()
	assert.False(t, ok)

	m.tick(1)
	assert.NotZero(t, m.peekIO(regTRCSR)&trcsrTDRE)
	vector, ok := m.irq.Pending()
	assert.True(t, ok)
	assert.Equal(t, uint16(0xfff0), vector)
}

func Test_SCI_TransmitHeldUntilEnabled(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	tx := m.HostTx()

	m.mem.Write8(regTDR, 0x24)
	assert.True(t, tx.Empty())

	m.mem.Write8(regTRCSR, trcsrTE)
	b, ok := tx.Pop()
	require.True(t, ok)
	assert.Equal(t, uint8(0x24), b)
}

func quadratureSteps(t *testing.T, m *Machine, n int) (xs, ys []uint8) {
	t.Helper()
	for range n {
		m.mouse.tick(m.mouse.period, m.in)
		xs = append(xs, m.mouse.bits()&0x3)
		ys = append(ys, m.mouse.bits()>>2)
	}
	return xs, ys
}

func Test_Quadrature_Rotation(t *testing.T) {
	const n = 9
	m, in := newTestMachine(t, nil)
	in.SetMouseMode(true)
	m.mouse.x, m.mouse.y = 0, 0

	in.AddMouseMotion(n, 0)
	xs, ys := quadratureSteps(t, m, n)
	forward := []uint8{0b01, 0b11, 0b10, 0b00, 0b01, 0b11, 0b10, 0b00, 0b01}
	assert.Equal(t, forward, xs)
	assert.Equal(t, make([]uint8, n), ys, "y untouched")

	in.AddMouseMotion(-n, -n)
	xs, ys = quadratureSteps(t, m, n)
	assert.Equal(t, []uint8{0b00, 0b10, 0b11, 0b01, 0b00, 0b10, 0b11, 0b01, 0b00}, xs, "mirror")
	assert.Equal(t, []uint8{0b10, 0b11, 0b01, 0b00, 0b10, 0b11, 0b01, 0b00, 0b10}, ys)
}

func Test_Quadrature_OneStepPerPeriod(t *testing.T) {
	m, in := newTestMachine(t, nil)
	in.SetMouseMode(true)
	m.mouse.x = 0
	in.AddMouseMotion(10, 0)

	m.tick(DefaultMouseStepCycles - 1)
	assert.Equal(t, uint8(0), m.mouse.x)
	m.tick(1)
	assert.Equal(t, uint8(1), m.mouse.x)
	m.tick(DefaultMouseStepCycles * 3)
	assert.Equal(t, uint8(0), m.mouse.x, "three more steps wrap to the start")
	assert.Equal(t, 6, m.mouse.dx)
}

func Test_Quadrature_IdleInJoystickMode(t *testing.T) {
	m, in := newTestMachine(t, nil)
	in.AddMouseMotion(5, 5)
	x, y := m.mouse.x, m.mouse.y

	m.tick(DefaultMouseStepCycles * 4)
	assert.Equal(t, x, m.mouse.x)
	assert.Equal(t, y, m.mouse.y)

	dx, dy, _ := in.MouseDelta()
	assert.Equal(t, 5, dx, "motion left for the mouse")
	assert.Equal(t, 5, dy)
}

func Test_Quadrature_Reseed(t *testing.T) {
	q := newQuadrature(0)
	assert.Equal(t, DefaultMouseStepCycles, q.period)
	q.dx, q.elapsed = 7, 100
	q.reseed()
	assert.Zero(t, q.dx)
	assert.Zero(t, q.elapsed)
	assert.Less(t, q.x, uint8(4))
	assert.Less(t, q.y, uint8(4))
}
