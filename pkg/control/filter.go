package control

import "github.com/gwillem/clawbot/pkg/robot"

// DefaultFilterStep is the largest change in speed a channel may make per cycle.
const DefaultFilterStep = 15

// VelocityFilter limits how fast each channel's speed may change, so the drive
// never jumps from stop to full power in one cycle.
type VelocityFilter struct {
	step int
	last map[robot.Channel]int
}

// NewVelocityFilter returns a filter with every channel at rest. A step of zero
// or less selects DefaultFilterStep.
func NewVelocityFilter(step int) *VelocityFilter {
	if step <= 0 {
		step = DefaultFilterStep
	}
	return &VelocityFilter{
		step: step,
		last: make(map[robot.Channel]int),
	}
}

// Filter moves the channel's output toward target by at most one step, stores
// the result and returns it.
func (f *VelocityFilter) Filter(ch robot.Channel, target int) int {
	out := f.last[ch]
	switch diff := target - out; {
	case diff > f.step:
		out += f.step
	case diff < -f.step:
		out -= f.step
	default:
		out = target
	}
	f.last[ch] = out
	return out
}

// Last returns the channel's most recent output.
func (f *VelocityFilter) Last(ch robot.Channel) int {
	return f.last[ch]
}

// Step returns the per-cycle step limit.
func (f *VelocityFilter) Step() int {
	return f.step
}
