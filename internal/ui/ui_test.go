package ui

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/nevisdale/ikbd/internal/input"
	"github.com/stretchr/testify/assert"
)

func Test_DpadDirection(t *testing.T) {
	type testArgs struct {
		up, down, left, right bool
		expected              input.Direction
	}

	testDo := func(t *testing.T, args testArgs) {
		assert.Equal(t, args.expected, dpadDirection(args.up, args.down, args.left, args.right))
	}

	tests := map[string]testArgs{
		"none":         {expected: 0},
		"up":           {up: true, expected: input.Up},
		"down right":   {down: true, right: true, expected: input.Down | input.Right},
		"up and down":  {up: true, down: true, expected: 0},
		"all but left": {up: true, down: true, right: true, expected: input.Right},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			testDo(t, args)
		})
	}
}

func Test_StickDirection(t *testing.T) {
	assert.Equal(t, input.Direction(0), stickDirection(0.2, -0.3), "dead zone")
	assert.Equal(t, input.Up|input.Left, stickDirection(-0.9, -0.8))
	assert.Equal(t, input.Down|input.Right, stickDirection(1, 1))
}

func Test_GamepadPort(t *testing.T) {
	assert.Equal(t, 1, gamepadPort(0))
	assert.Equal(t, 0, gamepadPort(1))
}

func Test_ApplyGamepads(t *testing.T) {
	in := input.NewState(input.DefaultKeyQueue)
	standard := map[ebiten.GamepadID]bool{1: true, 2: true}
	read := func(id ebiten.GamepadID) (input.Direction, bool, bool) {
		if !standard[id] {
			return 0, false, false
		}
		return input.Left, true, true
	}

	applyGamepads(in, []ebiten.GamepadID{1, 2}, read)
	dir, fire := in.Joystick(0)
	assert.Equal(t, input.Left, dir)
	assert.True(t, fire)

	// a pad without a standard layout takes over the first slot
	applyGamepads(in, []ebiten.GamepadID{7}, read)
	dir, fire = in.Joystick(1)
	assert.Equal(t, input.Direction(0), dir, "port released")
	assert.False(t, fire)
	dir, fire = in.Joystick(0)
	assert.Equal(t, input.Direction(0), dir, "unplugged pad released")
	assert.False(t, fire)
}
