package robot

import "fmt"

// Direction names a button within a button group.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Axis numbers on a joystick.
const (
	AxisRightX = 1
	AxisRightY = 2
	AxisLeftY  = 3
	AxisLeftX  = 4
)

// DriverJoystick is the joystick slot the driver controls the robot from.
const DriverJoystick = 1

// Button identifies one digital input: a joystick, a button group and a
// direction within the group. Groups 5 and 6 are the shoulder pairs (up/down),
// 7 is the d-pad and 8 the face buttons.
type Button struct {
	Joystick int
	Group    int
	Dir      Direction
}

func (b Button) String() string {
	return fmt.Sprintf("%d:%d%s", b.Joystick, b.Group, b.Dir)
}

// Button bindings.
var (
	ButtonLowSpeed  = Button{DriverJoystick, 8, Right}
	ButtonClawOpen  = Button{DriverJoystick, 8, Left}
	ButtonClawClose = Button{DriverJoystick, 8, Down}
	ButtonArmUp     = Button{DriverJoystick, 6, Up}
	ButtonArmDown   = Button{DriverJoystick, 6, Down}
)

// Axis identifies one analog input on a joystick.
type Axis struct {
	Joystick int
	Number   int
}

func (a Axis) String() string {
	return fmt.Sprintf("%d:ch%d", a.Joystick, a.Number)
}

// Axis bindings.
var (
	DriveAxis = Axis{DriverJoystick, AxisLeftY}
	TurnAxis  = Axis{DriverJoystick, AxisRightX}
	ArmAxis   = Axis{DriverJoystick, AxisRightY}
)
