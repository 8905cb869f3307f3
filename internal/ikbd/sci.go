package ikbd

import (
	"log/slog"

	"github.com/nevisdale/ikbd/internal/spsc"
)

// TRCSR bits
const (
	trcsrRDRF = 1 << 7
	trcsrORFE = 1 << 6
	trcsrTDRE = 1 << 5
	trcsrRIE  = 1 << 4
	trcsrRE   = 1 << 3
	trcsrTIE  = 1 << 2
	trcsrTE   = 1 << 1
	trcsrWU   = 1 << 0

	trcsrWritable = trcsrRIE | trcsrRE | trcsrTIE | trcsrTE | trcsrWU
	trcsrPowerOn  = trcsrTDRE
)

const (
	// ByteCycles is one 8N1 frame at 7812.5 bps on a 1 MHz clock.
	ByteCycles = 1280
	// DefaultQueueSize is the capacity of each serial direction.
	DefaultQueueSize = 64
)

// sci is the serial communications interface. The receive side is fed
// by the link goroutine, the transmit side is drained by it.
type sci struct {
	rmcr  uint8
	trcsr uint8
	rdr   uint8
	tdr   uint8

	rx spsc.Consumer[byte]
	tx spsc.Producer[byte]

	// cycles before the receiver accepts the next frame
	rxWait int
	// a byte was written to TDR while TE was clear
	txHeld    bool
	txBusy    bool
	txElapsed int

	overruns uint64
}

func (s *sci) reset() {
	s.rmcr = 0
	s.trcsr = trcsrPowerOn
	s.rdr = 0
	s.tdr = 0
	s.rxWait = 0
	s.txHeld = false
	s.txBusy = false
	s.txElapsed = 0
}

func (s *sci) irq() bool {
	rx := s.trcsr&(trcsrRDRF|trcsrORFE) > 0 && s.trcsr&trcsrRIE > 0
	tx := s.trcsr&trcsrTDRE > 0 && s.trcsr&trcsrTIE > 0
	return rx || tx
}

func (s *sci) tick(cycles int) {
	s.tickRx(cycles)
	s.tickTx(cycles)
}

func (s *sci) tickRx(cycles int) {
	s.rxWait = max(s.rxWait-cycles, 0)
	if s.rxWait > 0 || s.trcsr&trcsrRE == 0 {
		return
	}
	b, ok := s.rx.Pop()
	if !ok {
		return
	}
	s.rxWait = ByteCycles
	if s.trcsr&trcsrRDRF > 0 {
		s.trcsr |= trcsrORFE
		s.overruns++
		slog.Debug("ikbd: sci receive overrun", "dropped", b)
		return
	}
	s.rdr = b
	s.trcsr |= trcsrRDRF
}

func (s *sci) tickTx(cycles int) {
	if !s.txBusy {
		return
	}
	s.txElapsed += cycles
	if s.txElapsed >= ByteCycles && s.tx.Len() == 0 {
		s.txBusy = false
		s.trcsr |= trcsrTDRE
	}
}

func (s *sci) transmit() {
	s.txHeld = false
	if !s.tx.Push(s.tdr) {
		slog.Debug("ikbd: sci transmit queue full", "dropped", s.tdr)
	}
	s.txBusy = true
	s.txElapsed = 0
}

func (s *sci) read(reg uint8) uint8 {
	switch reg {
	case regRMCR:
		return s.rmcr
	case regTRCSR:
		return s.trcsr
	case regRDR:
		s.trcsr &^= trcsrRDRF | trcsrORFE
		return s.rdr
	default:
		return s.tdr
	}
}

func (s *sci) peek(reg uint8) uint8 {
	switch reg {
	case regRMCR:
		return s.rmcr
	case regTRCSR:
		return s.trcsr
	case regRDR:
		return s.rdr
	default:
		return s.tdr
	}
}

func (s *sci) write(reg, data uint8) {
	switch reg {
	case regRMCR:
		s.rmcr = data
	case regTRCSR:
		s.trcsr = s.trcsr&^trcsrWritable | data&trcsrWritable
		if s.txHeld && s.trcsr&trcsrTE > 0 {
			s.transmit()
		}
	case regTDR:
		s.tdr = data
		s.trcsr &^= trcsrTDRE
		if s.trcsr&trcsrTE > 0 {
			s.transmit()
		} else {
			s.txHeld = true
		}
	}
}
