// Package input holds the host side input state shared with the emulator.
//
// Continuous values (joystick directions, mouse motion, buttons) live in
// atomic cells: a reader sees either the previous or the next whole value.
// Keyboard changes are discrete and go through a bounded queue.
package input

import (
	"math"
	"sync/atomic"

	"github.com/nevisdale/ikbd/internal/spsc"
)

// Direction is a joystick direction set, one bit per switch.
type Direction uint8

const (
	Up Direction = 1 << iota
	Down
	Left
	Right
)

const (
	ButtonLeft uint8 = 1 << iota
	ButtonRight
)

const fireBit = 1 << 4

// DefaultKeyQueue is the number of pending key transitions kept before
// new ones are dropped.
const DefaultKeyQueue = 64

// Transition is one key matrix change. Code is column*8 + row.
type Transition struct {
	Code    uint8
	Pressed bool
}

// Provider is what the I/O block samples.
type Provider interface {
	// Joystick returns the live state of joystick port 0 or 1.
	Joystick(port int) (dir Direction, fire bool)
	// MouseDelta returns and resets the motion accumulated since the last call.
	MouseDelta() (dx, dy int, buttons uint8)
	MouseButtons() uint8
	// MouseMode reports whether a mouse, not joystick 0, is plugged in port 0.
	MouseMode() bool
	// KeyTransitions appends the pending key changes to dst and consumes them.
	KeyTransitions(dst []Transition) []Transition
}

var _ Provider = (*State)(nil)

type State struct {
	joy       [2]atomic.Uint32
	mouse     atomic.Uint64 // dx in the low 32 bits, dy in the high 32 bits
	buttons   atomic.Uint32
	mouseMode atomic.Bool

	keys   *spsc.Queue[Transition]
	keyIn  spsc.Producer[Transition]
	keyOut spsc.Consumer[Transition]
}

func NewState(keyQueue int) *State {
	q := spsc.New[Transition](keyQueue)
	return &State{
		keys:   q,
		keyIn:  q.Producer(),
		keyOut: q.Consumer(),
	}
}

// SetJoystick publishes the state of joystick port 0 or 1.
func (s *State) SetJoystick(port int, dir Direction, fire bool) {
	v := uint32(dir & 0x0f)
	if fire {
		v |= fireBit
	}
	s.joy[port&1].Store(v)
}

func (s *State) Joystick(port int) (Direction, bool) {
	v := s.joy[port&1].Load()
	return Direction(v & 0x0f), v&fireBit > 0
}

func packMotion(dx, dy int32) uint64 {
	return uint64(uint32(dx)) | uint64(uint32(dy))<<32
}

func unpackMotion(v uint64) (int32, int32) {
	return int32(uint32(v)), int32(uint32(v >> 32))
}

func saturate(v int64) int32 {
	return int32(max(min(v, math.MaxInt32), math.MinInt32))
}

// AddMouseMotion accumulates relative motion reported by the host.
func (s *State) AddMouseMotion(dx, dy int) {
	for {
		old := s.mouse.Load()
		x, y := unpackMotion(old)
		next := packMotion(saturate(int64(x)+int64(dx)), saturate(int64(y)+int64(dy)))
		if s.mouse.CompareAndSwap(old, next) {
			return
		}
	}
}

func (s *State) MouseDelta() (int, int, uint8) {
	dx, dy := unpackMotion(s.mouse.Swap(0))
	return int(dx), int(dy), s.MouseButtons()
}

func (s *State) SetMouseButtons(buttons uint8) {
	s.buttons.Store(uint32(buttons & (ButtonLeft | ButtonRight)))
}

func (s *State) MouseButtons() uint8 {
	return uint8(s.buttons.Load())
}

func (s *State) SetMouseMode(on bool) {
	s.mouseMode.Store(on)
}

func (s *State) MouseMode() bool {
	return s.mouseMode.Load()
}

// Key queues a key change. It returns false if the queue is full and
// the change was dropped.
func (s *State) Key(code uint8, pressed bool) bool {
	return s.keyIn.Push(Transition{Code: code, Pressed: pressed})
}

func (s *State) KeyTransitions(dst []Transition) []Transition {
	for {
		tr, ok := s.keyOut.Pop()
		if !ok {
			return dst
		}
		dst = append(dst, tr)
	}
}

// DroppedKeys is the number of key changes lost to a full queue.
func (s *State) DroppedKeys() uint64 {
	return s.keys.Dropped()
}
