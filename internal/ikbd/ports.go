package ikbd

import "github.com/nevisdale/ikbd/internal/input"

// On-chip register addresses.
const (
	regP1DDR = 0x00
	regP2DDR = 0x01
	regP1DR  = 0x02
	regP2DR  = 0x03
	regP3DDR = 0x04
	regP4DDR = 0x05
	regP3DR  = 0x06
	regP4DR  = 0x07
	regTCSR  = 0x08
	regFRCH  = 0x09
	regFRCL  = 0x0a
	regOCRH  = 0x0b
	regOCRL  = 0x0c
	regRMCR  = 0x10
	regTRCSR = 0x11
	regRDR   = 0x12
	regTDR   = 0x13
	regRCR   = 0x14
)

const (
	port1 = iota
	port2
	port3
	port4
)

const (
	p2Fire0     = 1 << 1 // joystick 0 fire, left mouse button
	p2Fire1     = 1 << 2 // joystick 1 fire, right mouse button
	p2HighBits  = 0xe0   // not bonded out, read as 1
	p3ColumnLow = 1      // P3 bit 1 drives column 0
)

// ports holds the four parallel port register pairs.
type ports struct {
	ddr [4]uint8
	dr  [4]uint8
}

func (p *ports) reset() {
	*p = ports{}
}

// compose merges latched output bits with live input bits.
func (p *ports) compose(port int, live uint8) uint8 {
	return p.dr[port]&p.ddr[port] | live&^p.ddr[port]
}

// driven returns the bits of port that are outputs pulled low.
func (p *ports) driven(port int) uint8 {
	return p.ddr[port] &^ p.dr[port]
}

// directionBits converts a joystick direction to the active-low
// nibble seen on port 4: up=0 down=1 left=2 right=3.
func directionBits(dir input.Direction) uint8 {
	return ^uint8(dir) & 0x0f
}

func (m *Machine) livePort1() uint8 {
	m.keys.drain(m.in)
	cols := uint16(m.ports.driven(port3)>>p3ColumnLow) | uint16(m.ports.driven(port4))<<7
	return m.keys.rows(cols)
}

func (m *Machine) livePort2() uint8 {
	live := uint8(0xff)
	_, fire0 := m.in.Joystick(0)
	_, fire1 := m.in.Joystick(1)
	if m.in.MouseMode() {
		buttons := m.in.MouseButtons()
		fire0 = fire0 || buttons&input.ButtonLeft > 0
		fire1 = fire1 || buttons&input.ButtonRight > 0
	}
	if fire0 {
		live &^= p2Fire0
	}
	if fire1 {
		live &^= p2Fire1
	}
	return live
}

func (m *Machine) livePort4() uint8 {
	dir1, _ := m.in.Joystick(1)
	live := directionBits(dir1) << 4
	if m.in.MouseMode() {
		return live | m.mouse.bits()
	}
	dir0, _ := m.in.Joystick(0)
	return live | directionBits(dir0)
}

func (m *Machine) readPort(port int) uint8 {
	switch port {
	case port1:
		return m.ports.compose(port, m.livePort1())
	case port2:
		return m.ports.compose(port, m.livePort2()) | p2HighBits
	case port3:
		return m.ports.compose(port, 0xff)
	default:
		return m.ports.compose(port, m.livePort4())
	}
}
