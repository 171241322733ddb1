package control

import (
	"fmt"

	"github.com/gwillem/clawbot/pkg/robot"
)

// ArmMaxSpeed is the arm speed at full stick or button.
const ArmMaxSpeed = robot.MaxSpeed

// ArmControl maps driver input to an arm lift speed.
type ArmControl interface {
	Name() string
	// ArmSpeed returns the signed arm speed before low-speed scaling.
	ArmSpeed(in Inputs) int
	// SuppressTurn reports whether the drive should ignore the turn axis this
	// cycle because the driver's hand is on the arm controls.
	SuppressTurn(in Inputs) bool
}

// AnalogArm drives the arm from the right stick's vertical axis while the
// arm-up shoulder button is held, with the same square curve as the drive.
// The right stick also turns the robot, so turning is ignored while either
// arm shoulder button is down.
type AnalogArm struct{}

func (AnalogArm) Name() string { return robot.ArmSchemeAnalog }

func (AnalogArm) ArmSpeed(in Inputs) int {
	if !in.Digital(robot.ButtonArmUp) {
		return 0
	}
	return Square(robot.ClampSpeed(in.Analog(robot.ArmAxis)), ArmMaxSpeed)
}

func (AnalogArm) SuppressTurn(in Inputs) bool {
	return in.Digital(robot.ButtonArmUp) || in.Digital(robot.ButtonArmDown)
}

// ButtonArm drives the arm at full speed up or down from the shoulder buttons.
type ButtonArm struct{}

func (ButtonArm) Name() string { return robot.ArmSchemeButtons }

func (ButtonArm) ArmSpeed(in Inputs) int {
	switch {
	case in.Digital(robot.ButtonArmUp):
		return ArmMaxSpeed
	case in.Digital(robot.ButtonArmDown):
		return -ArmMaxSpeed
	}
	return 0
}

func (ButtonArm) SuppressTurn(in Inputs) bool {
	return false
}

// NewArmControl returns the arm control for a configured scheme.
func NewArmControl(scheme string) (ArmControl, error) {
	switch scheme {
	case robot.ArmSchemeAnalog, "":
		return AnalogArm{}, nil
	case robot.ArmSchemeButtons:
		return ButtonArm{}, nil
	}
	return nil, fmt.Errorf("unknown arm scheme %q", scheme)
}
