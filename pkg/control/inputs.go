// Package control implements the operator control policy of the clawbot: input
// shaping, drive mixing, velocity filtering, button edge tracking, the claw state
// machine and arm control. Everything here is plain computation over explicit
// state; the teleop package owns timing and I/O.
package control

import "github.com/gwillem/clawbot/pkg/robot"

// Inputs is the joystick state seen by one control cycle.
type Inputs interface {
	Digital(b robot.Button) bool
	// Analog returns an axis value in [-robot.MaxSpeed, robot.MaxSpeed].
	Analog(a robot.Axis) int
}

// Commands holds the speed for every motor channel produced by one cycle.
type Commands map[robot.Channel]int

// Snapshot is an immutable Inputs value.
type Snapshot struct {
	Buttons map[robot.Button]bool
	Axes    map[robot.Axis]int
}

// NewSnapshot returns an empty snapshot: no buttons down, all axes centred.
func NewSnapshot() Snapshot {
	return Snapshot{
		Buttons: make(map[robot.Button]bool),
		Axes:    make(map[robot.Axis]int),
	}
}

func (s Snapshot) Digital(b robot.Button) bool {
	return s.Buttons[b]
}

func (s Snapshot) Analog(a robot.Axis) int {
	return s.Axes[a]
}

// With returns a copy of s with the given buttons held down.
func (s Snapshot) With(buttons ...robot.Button) Snapshot {
	out := s.clone()
	for _, b := range buttons {
		out.Buttons[b] = true
	}
	return out
}

// WithAxis returns a copy of s with an axis set.
func (s Snapshot) WithAxis(a robot.Axis, v int) Snapshot {
	out := s.clone()
	out.Axes[a] = v
	return out
}

func (s Snapshot) clone() Snapshot {
	out := NewSnapshot()
	for b, v := range s.Buttons {
		out.Buttons[b] = v
	}
	for a, v := range s.Axes {
		out.Axes[a] = v
	}
	return out
}
