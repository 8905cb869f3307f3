package ui

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/nevisdale/ikbd/internal/cpu"
	"github.com/nevisdale/ikbd/internal/input"
	"github.com/nevisdale/ikbd/internal/link"
	"github.com/nevisdale/ikbd/internal/sched"
)

// F11       - warm reset, with Shift a cold reset
// F12       - toggle mouse mode and cursor capture
// Tab       - show disassembly around PC

const (
	screenWidth  = 320
	screenHeight = 240
	screenScale  = 2

	// half a stick throw counts as a direction
	axisThreshold = 0.5
	disasmLines   = 8
)

// Resetter is satisfied by the scheduler.
type Resetter interface {
	RequestReset(kind sched.ResetKind)
	Stats() sched.Stats
}

type UI struct {
	ctx    context.Context
	in     *input.State
	keymap Keymap
	sched  Resetter
	rom    cpu.Peeker
	pump   *link.Pump

	held     map[ebiten.Key]uint8
	keys     []ebiten.Key
	gamepads []ebiten.GamepadID

	cursorX, cursorY int
	captured         bool
	showDisasm       bool
}

// New returns a window that feeds host input into in. rom is used for
// the disassembly view, pump may be nil when no link is attached.
func New(ctx context.Context, in *input.State, keymap Keymap, s Resetter, rom cpu.Peeker, pump *link.Pump) *UI {
	return &UI{
		ctx:    ctx,
		in:     in,
		keymap: keymap,
		sched:  s,
		rom:    rom,
		pump:   pump,
		held:   map[ebiten.Key]uint8{},
	}
}

func (ui *UI) Update() error {
	if ui.ctx.Err() != nil {
		return ebiten.Termination
	}

	if !ebiten.IsFocused() {
		ui.releaseAll()
		return nil
	}

	ui.shortcuts()
	ui.harvestKeys()
	ui.harvestMouse()
	ui.harvestGamepads()
	return nil
}

func (ui *UI) shortcuts() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		kind := sched.WarmReset
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			kind = sched.ColdReset
		}
		ui.sched.RequestReset(kind)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		ui.setCapture(!ui.captured)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		ui.showDisasm = !ui.showDisasm
	}
}

func (ui *UI) setCapture(on bool) {
	ui.captured = on
	ui.in.SetMouseMode(on)
	if on {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		ui.cursorX, ui.cursorY = ebiten.CursorPosition()
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
		ui.in.SetMouseButtons(0)
	}
}

func (ui *UI) press(k ebiten.Key, pressed bool) {
	code, ok := ui.keymap[k]
	if !ok {
		return
	}
	if !ui.in.Key(code, pressed) {
		return
	}
	if pressed {
		ui.held[k] = code
	} else {
		delete(ui.held, k)
	}
}

func (ui *UI) harvestKeys() {
	ui.keys = inpututil.AppendJustPressedKeys(ui.keys[:0])
	for _, k := range ui.keys {
		ui.press(k, true)
	}
	ui.keys = inpututil.AppendJustReleasedKeys(ui.keys[:0])
	for _, k := range ui.keys {
		ui.press(k, false)
	}
}

// releaseAll lets go of everything when the window loses focus, since
// the release events go to another window.
func (ui *UI) releaseAll() {
	for k := range ui.held {
		ui.press(k, false)
	}
	if ui.captured {
		ui.setCapture(false)
	}
}

func (ui *UI) harvestMouse() {
	if !ui.captured {
		return
	}
	x, y := ebiten.CursorPosition()
	ui.in.AddMouseMotion(x-ui.cursorX, y-ui.cursorY)
	ui.cursorX, ui.cursorY = x, y

	var buttons uint8
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		buttons |= input.ButtonLeft
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		buttons |= input.ButtonRight
	}
	ui.in.SetMouseButtons(buttons)
}

// dpadDirection folds four switches into a direction set, dropping
// opposite pairs pressed together.
func dpadDirection(up, down, left, right bool) input.Direction {
	var dir input.Direction
	if up != down {
		if up {
			dir |= input.Up
		} else {
			dir |= input.Down
		}
	}
	if left != right {
		if left {
			dir |= input.Left
		} else {
			dir |= input.Right
		}
	}
	return dir
}

func stickDirection(h, v float64) input.Direction {
	return dpadDirection(v < -axisThreshold, v > axisThreshold, h < -axisThreshold, h > axisThreshold)
}

// gamepadPort puts the first pad on joystick 1, the usual game port,
// and the second on joystick 0.
func gamepadPort(n int) int {
	return 1 - n
}

func (ui *UI) harvestGamepads() {
	ui.gamepads = ebiten.AppendGamepadIDs(ui.gamepads[:0])
	applyGamepads(ui.in, ui.gamepads, readStandardGamepad)
}

// applyGamepads publishes the first two pads. A port with no pad, or
// with a pad read cannot decode, is released.
func applyGamepads(in *input.State, ids []ebiten.GamepadID, read func(ebiten.GamepadID) (input.Direction, bool, bool)) {
	for n := range 2 {
		port := gamepadPort(n)
		if n >= len(ids) {
			in.SetJoystick(port, 0, false)
			continue
		}
		dir, fire, ok := read(ids[n])
		if !ok {
			in.SetJoystick(port, 0, false)
			continue
		}
		in.SetJoystick(port, dir, fire)
	}
}

func readStandardGamepad(id ebiten.GamepadID) (input.Direction, bool, bool) {
	if !ebiten.IsStandardGamepadLayoutAvailable(id) {
		return 0, false, false
	}
	dir := dpadDirection(
		ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftTop),
		ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftBottom),
		ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftLeft),
		ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftRight),
	)
	dir |= stickDirection(
		ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal),
		ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical),
	)
	fire := ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom) ||
		ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightRight)
	return dir, fire, true
}

func (ui *UI) status() string {
	st := ui.sched.Stats()
	regs := st.Machine.Registers

	var s strings.Builder
	fmt.Fprintf(&s, " TPS: %0.0f\n", ebiten.ActualTPS())
	if crash := st.Machine.Crash; st.Machine.Crashed {
		fmt.Fprintf(&s, " STATUS: crashed, %s\n", crash)
	} else {
		fmt.Fprintf(&s, " STATUS: running, irq %s\n", st.Machine.IRQ)
	}
	fmt.Fprintf(&s, " %s\n", regs)
	fmt.Fprintf(&s, " CYCLES: %d QUOTAS: %d\n", st.Machine.Cycles, st.Quotas)
	fmt.Fprintf(&s, " LATE: %d REBASES: %d LAG: %s\n", st.LateWakes, st.Rebases, st.Lag)
	fmt.Fprintf(&s, " RX OVERRUN: %d DROPPED: %d TX DROPPED: %d\n",
		st.Machine.RxOverruns, st.Machine.RxDropped, st.Machine.TxDropped)
	if ui.pump != nil {
		ls := ui.pump.Stats()
		fmt.Fprintf(&s, " LINK RX: %d TX: %d\n", ls.RxBytes, ls.TxBytes)
	}
	fmt.Fprintf(&s, " MOUSE: %t KEYS HELD: %d DROPPED: %d\n", ui.captured, len(ui.held), ui.in.DroppedKeys())

	if ui.showDisasm && regs.PC >= 0xf000 {
		s.WriteString("\n")
		for i, line := range cpu.Disassemble(ui.rom, regs.PC, disasmLines) {
			mark := " "
			if i == 0 {
				mark = "*"
			}
			s.WriteString(mark + line.Text + "\n")
		}
	}
	return s.String()
}

func (ui *UI) Draw(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, screenWidth, screenHeight, color.RGBA{50, 50, 50, 255}, false)
	ebitenutil.DebugPrintAt(screen, ui.status(), 0, 0)
}

func (ui *UI) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func RunUI(ui *UI) error {
	ebiten.SetWindowTitle("ikbd")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth*screenScale, screenHeight*screenScale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(ui)
}
