package ikbd

import (
	"math/rand/v2"

	"github.com/nevisdale/ikbd/internal/input"
)

const (
	// DefaultMouseStepCycles is the minimum spacing of two quadrature
	// steps on one axis.
	DefaultMouseStepCycles = 256
	// motion beyond this many steps is dropped instead of replayed late
	maxPendingSteps = 256
)

// one full turn of an incremental encoder
var quadratureCode = [4]uint8{0b00, 0b01, 0b11, 0b10}

// quadrature turns host mouse motion into the two-bit encoder signals
// of each axis. X uses bits 0-1 and Y bits 2-3.
type quadrature struct {
	period  int
	elapsed int
	dx, dy  int
	x, y    uint8 // index into quadratureCode
}

func newQuadrature(period int) quadrature {
	if period <= 0 {
		period = DefaultMouseStepCycles
	}
	return quadrature{period: period}
}

// reseed clears pending motion and starts both axes at a random phase,
// like a mouse plugged in at an arbitrary wheel position.
func (q *quadrature) reseed() {
	q.elapsed = 0
	q.dx, q.dy = 0, 0
	q.x = uint8(rand.IntN(len(quadratureCode)))
	q.y = uint8(rand.IntN(len(quadratureCode)))
}

func clampSteps(v int) int {
	return max(min(v, maxPendingSteps), -maxPendingSteps)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// tick advances the encoders by at most one step per axis for each
// elapsed period.
func (q *quadrature) tick(cycles int, in input.Provider) {
	q.elapsed += cycles
	for q.elapsed >= q.period {
		q.elapsed -= q.period

		dx, dy, _ := in.MouseDelta()
		q.dx = clampSteps(q.dx + dx)
		q.dy = clampSteps(q.dy + dy)

		if s := sign(q.dx); s != 0 {
			q.x = uint8(int(q.x)+s) & 3
			q.dx -= s
		}
		if s := sign(q.dy); s != 0 {
			q.y = uint8(int(q.y)+s) & 3
			q.dy -= s
		}
	}
}

func (q *quadrature) bits() uint8 {
	return quadratureCode[q.x] | quadratureCode[q.y]<<2
}
