package control

import (
	"math"

	"github.com/gwillem/clawbot/pkg/robot"
)

// Square applies the square response curve to a stick value, keeping its sign:
// sign(x) * (x/MaxSpeed)^2 * limit. Small inputs give finer control; full
// deflection still reaches limit. The result is truncated toward zero.
func Square(x, limit int) int {
	m := float64(x) / robot.MaxSpeed
	m *= math.Abs(m)
	return int(m * float64(limit))
}

// Mix turns forward and turn intent into left and right wheel speeds.
//
// If either side would exceed MaxSpeed both are scaled by the same factor, so
// the ratio between them (and with it the turning radius) is preserved.
func Mix(forward, turn int, squareInputs bool) (left, right int) {
	if squareInputs {
		forward = Square(forward, robot.MaxSpeed)
		turn = Square(turn, robot.MaxSpeed)
	}

	left = forward + turn
	right = -forward + turn

	maxRaw := absInt(left)
	if r := absInt(right); r > maxRaw {
		maxRaw = r
	}

	if maxRaw > robot.MaxSpeed {
		scale := float64(maxRaw) / robot.MaxSpeed
		left = int(float64(left) / scale)
		right = int(float64(right) / scale)
	}
	return left, right
}

// Drive mixes, filters and writes the four wheel commands. Front and back
// wheels on each side are mechanically coupled and get the same command.
func Drive(f *VelocityFilter, cmds Commands, forward, turn int, squareInputs bool) {
	left, right := Mix(forward, turn, squareInputs)

	// Linear filtering for gradual acceleration and reduced motor wear
	left = f.Filter(robot.FrontLeft, left)
	right = f.Filter(robot.FrontRight, right)

	cmds[robot.FrontLeft] = left
	cmds[robot.FrontRight] = right
	cmds[robot.BackLeft] = left
	cmds[robot.BackRight] = right
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
