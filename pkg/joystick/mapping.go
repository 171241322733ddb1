package joystick

import (
	"math"

	"github.com/gwillem/clawbot/pkg/robot"
)

// Button and axis numbers of a DualShock-style pad on the Linux joystick API:
//
// Buttons
//
//	Cross = 0, Circle = 1, Triangle = 2, Square = 3
//	L1 = 4, R1 = 5, L2 = 6, R2 = 7
//	Share = 8, Options = 9, PS = 10, L stick = 11, R stick = 12
//
// Axes (up and left are negative)
//
//	L stick l/r = 0, u/d = 1
//	L2 = 2
//	R stick l/r = 3, u/d = 4
//	R2 = 5
//	D-pad   l/r = 6, u/d = 7
const (
	ButtonCross    = 0
	ButtonCircle   = 1
	ButtonTriangle = 2
	ButtonSquare   = 3
	ButtonL1       = 4
	ButtonR1       = 5
	ButtonL2       = 6
	ButtonR2       = 7
	ButtonShare    = 8
	ButtonOptions  = 9
	ButtonPS       = 10

	AxisLStickX = 0
	AxisLStickY = 1
	AxisRStickX = 3
	AxisRStickY = 4
	AxisDPadX   = 6
	AxisDPadY   = 7
)

// AxisBinding maps a device axis onto a robot axis.
type AxisBinding struct {
	Axis   robot.Axis
	Invert bool
}

// Mapping translates device controls into robot buttons and axes.
type Mapping struct {
	Joystick int
	Buttons  map[uint8]robot.Button
	Axes     map[uint8]AxisBinding
	// The d-pad reports as two axes and maps onto button group 7.
	DPadX, DPadY uint8
	DPadGroup    int
}

// DefaultMapping lays a DualShock-style pad out like a competition joystick:
// shoulder buttons are groups 5 (left) and 6 (right), face buttons group 8,
// d-pad group 7. Stick axes are flipped so up is positive.
func DefaultMapping(joystick int) Mapping {
	btn := func(group int, dir robot.Direction) robot.Button {
		return robot.Button{Joystick: joystick, Group: group, Dir: dir}
	}
	axis := func(n int) robot.Axis {
		return robot.Axis{Joystick: joystick, Number: n}
	}
	return Mapping{
		Joystick: joystick,
		Buttons: map[uint8]robot.Button{
			ButtonL1:       btn(5, robot.Up),
			ButtonL2:       btn(5, robot.Down),
			ButtonR1:       btn(6, robot.Up),
			ButtonR2:       btn(6, robot.Down),
			ButtonTriangle: btn(8, robot.Up),
			ButtonCross:    btn(8, robot.Down),
			ButtonSquare:   btn(8, robot.Left),
			ButtonCircle:   btn(8, robot.Right),
		},
		Axes: map[uint8]AxisBinding{
			AxisRStickX: {Axis: axis(robot.AxisRightX)},
			AxisRStickY: {Axis: axis(robot.AxisRightY), Invert: true},
			AxisLStickY: {Axis: axis(robot.AxisLeftY), Invert: true},
			AxisLStickX: {Axis: axis(robot.AxisLeftX)},
		},
		DPadX:     AxisDPadX,
		DPadY:     AxisDPadY,
		DPadGroup: 7,
	}
}

// ScaleAxis maps a raw device axis value onto [-MaxSpeed, MaxSpeed].
func ScaleAxis(value int16, invert bool) int {
	v := int(value) * robot.MaxSpeed / math.MaxInt16
	if invert {
		v = -v
	}
	return robot.ClampSpeed(v)
}
