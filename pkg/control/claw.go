package control

// Claw timing and power. Negative speeds close the claw.
const (
	ClawSpeed        = -60
	ClawOpenSpeed    = -ClawSpeed
	ClawOpenDuration = 30 // cycles
	GripStrength     = -40
)

// ClawPhase describes what the claw motor is doing.
type ClawPhase string

const (
	ClawIdle       ClawPhase = "idle"
	ClawClosing    ClawPhase = "closing"
	ClawGripping   ClawPhase = "gripping"
	ClawOpening    ClawPhase = "opening"
	ClawManualOpen ClawPhase = "manual-open"
)

// Claw runs the claw motor. There is no position sensor: closing runs the
// motor for ClawOpenDuration cycles and then holds a lower grip torque, and
// opening retraces as many cycles as were spent closing.
//
// The claw must start fully open.
type Claw struct {
	// Progress counts cycles spent closing, in [0, ClawOpenDuration].
	Progress int
	// Close is the driver's requested claw position.
	Close bool
	Phase ClawPhase
}

// Step advances the claw by one cycle given the manual-open and toggle button
// states, and returns the claw motor speed.
func (c *Claw) Step(manualOpen, toggle ButtonState) int {
	// Manual open overrides everything and re-zeroes the claw: the driver holds
	// the button until the claw is fully open.
	switch manualOpen {
	case ButtonPressed, ButtonHeld:
		c.reset(ClawManualOpen)
		return ClawOpenSpeed
	case ButtonReleased:
		c.reset(ClawIdle)
		return 0
	}

	if toggle == ButtonPressed {
		c.Close = !c.Close
	}

	if c.Close {
		if c.Progress < ClawOpenDuration {
			c.Progress++
			c.Phase = ClawClosing
			return ClawSpeed
		}
		c.Phase = ClawGripping
		return GripStrength
	}
	if c.Progress > 0 {
		c.Progress--
		c.Phase = ClawOpening
		return ClawOpenSpeed
	}
	c.Phase = ClawIdle
	return 0
}

func (c *Claw) reset(phase ClawPhase) {
	c.Progress = 0
	c.Close = false
	c.Phase = phase
}
