package control

import "github.com/gwillem/clawbot/pkg/robot"

// LowSpeedDivisor divides drive and arm speeds while low-speed mode is on.
const LowSpeedDivisor = 2

// Cycle holds all state the control policy carries from one cycle to the next.
// A fresh Cycle is built every time operator control starts; nothing carries
// over from a previous run.
type Cycle struct {
	Filter   *VelocityFilter
	Buttons  *ButtonTracker
	Claw     Claw
	Arm      ArmControl
	LowSpeed bool
}

// NewCycle returns a cycle with the claw open, low speed off and every motor
// at rest. A nil arm selects AnalogArm.
func NewCycle(arm ArmControl, filterStep int) *Cycle {
	if arm == nil {
		arm = AnalogArm{}
	}
	c := &Cycle{
		Filter:  NewVelocityFilter(filterStep),
		Buttons: NewButtonTracker(),
		Claw:    Claw{Phase: ClawIdle},
		Arm:     arm,
	}
	c.Buttons.Register(robot.ButtonClawOpen)
	c.Buttons.Register(robot.ButtonLowSpeed)
	c.Buttons.Register(robot.ButtonClawClose)
	return c
}

// Step runs one control cycle and returns the command for every channel.
func (c *Cycle) Step(in Inputs) Commands {
	cmds := make(Commands, len(robot.AllChannels()))
	c.Buttons.Sample(in)

	// low speed mode toggle
	if c.Buttons.Get(robot.ButtonLowSpeed) == ButtonPressed {
		c.LowSpeed = !c.LowSpeed
	}

	// drive
	forward := robot.ClampSpeed(in.Analog(robot.DriveAxis))
	turn := robot.ClampSpeed(in.Analog(robot.TurnAxis))
	if c.Arm.SuppressTurn(in) {
		turn = 0
	}
	if c.LowSpeed {
		forward /= LowSpeedDivisor
		turn /= LowSpeedDivisor
	}
	Drive(c.Filter, cmds, forward, turn, true)

	// claw
	cmds[robot.Claw] = c.Claw.Step(
		c.Buttons.Get(robot.ButtonClawOpen),
		c.Buttons.Get(robot.ButtonClawClose),
	)

	// arm; the right arm motor is mounted mirrored
	arm := c.Arm.ArmSpeed(in)
	if c.LowSpeed {
		arm /= LowSpeedDivisor
	}
	cmds[robot.LeftArm] = arm
	cmds[robot.RightArm] = -arm

	c.Buttons.UpdateAll()
	return cmds
}
