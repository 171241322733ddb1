package robot

// ServoCalibration binds a channel to a bus servo and the position range it may
// travel in.
type ServoCalibration struct {
	ID       int  `json:"id" yaml:"id"`
	Inverted bool `json:"inverted,omitempty" yaml:"inverted,omitempty"`
	RangeMin int  `json:"range_min" yaml:"range_min"`
	RangeMax int  `json:"range_max" yaml:"range_max"`
}

// Calibration holds servo calibration for every bus-driven channel.
type Calibration map[Channel]ServoCalibration

// Clamp bounds a raw position to the calibrated range.
func (c ServoCalibration) Clamp(pos int) int {
	if pos < c.RangeMin {
		return c.RangeMin
	}
	if pos > c.RangeMax {
		return c.RangeMax
	}
	return pos
}

// Advance returns the position target reached from pos after one cycle at the
// given speed. gain is the number of raw steps travelled per cycle at MaxSpeed.
func (c ServoCalibration) Advance(pos, speed, gain int) int {
	speed = ClampSpeed(speed)
	if c.Inverted {
		speed = -speed
	}
	return c.Clamp(pos + speed*gain/MaxSpeed)
}

// Center returns the middle of the calibrated range.
func (c ServoCalibration) Center() int {
	return c.RangeMin + (c.RangeMax-c.RangeMin)/2
}

// ServoIDs returns the servo IDs in channel order.
func (c Calibration) ServoIDs() []int {
	ids := make([]int, 0, len(c))
	// Use AllChannels() to ensure consistent ordering
	for _, ch := range AllChannels() {
		if sc, ok := c[ch]; ok {
			ids = append(ids, sc.ID)
		}
	}
	return ids
}

// ByID returns the channel and calibration for a given servo ID.
func (c Calibration) ByID(id int) (Channel, ServoCalibration, bool) {
	for ch, sc := range c {
		if sc.ID == id {
			return ch, sc, true
		}
	}
	return "", ServoCalibration{}, false
}
