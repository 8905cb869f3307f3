package ikbd

import "github.com/nevisdale/ikbd/internal/cpu"

type IRQState uint8

const (
	IRQIdle IRQState = iota
	IRQPending
	IRQServicing
)

func (s IRQState) String() string {
	switch s {
	case IRQPending:
		return "pending"
	case IRQServicing:
		return "servicing"
	}
	return "idle"
}

// interruptController picks at most one on-chip source per instruction
// boundary: output compare, then overflow, then the SCI.
type interruptController struct {
	timer *timer
	sci   *sci

	state IRQState
	depth int
}

func (ic *interruptController) reset() {
	ic.state = IRQIdle
	ic.depth = 0
}

func (ic *interruptController) evaluate() (uint16, bool) {
	switch {
	case ic.timer.compareIRQ():
		return cpu.VectorOCF, true
	case ic.timer.overflowIRQ():
		return cpu.VectorTOF, true
	case ic.sci.irq():
		return cpu.VectorSCI, true
	}
	return 0, false
}

func (ic *interruptController) Pending() (uint16, bool) {
	vector, ok := ic.evaluate()
	if ic.depth == 0 {
		if ok {
			ic.state = IRQPending
		} else {
			ic.state = IRQIdle
		}
	}
	return vector, ok
}

func (ic *interruptController) Enter() {
	ic.depth++
	ic.state = IRQServicing
}

func (ic *interruptController) Return() {
	if ic.depth == 0 {
		return
	}
	ic.depth--
	if ic.depth == 0 {
		ic.state = IRQIdle
	}
}
