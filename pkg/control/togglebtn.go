package control

import "github.com/gwillem/clawbot/pkg/robot"

// ButtonState is the edge state of a tracked button within one cycle.
type ButtonState int

const (
	ButtonIdle ButtonState = iota
	ButtonPressed
	ButtonHeld
	ButtonReleased
)

func (s ButtonState) String() string {
	switch s {
	case ButtonPressed:
		return "pressed"
	case ButtonHeld:
		return "held"
	case ButtonReleased:
		return "released"
	default:
		return "idle"
	}
}

// Down reports whether the button is physically down in this cycle.
func (s ButtonState) Down() bool {
	return s == ButtonPressed || s == ButtonHeld
}

type buttonLevels struct {
	current  bool
	previous bool
}

// ButtonTracker derives press, hold and release edges from raw button levels.
//
// Each cycle: Sample once, Get any number of times, then UpdateAll once. Edges
// are computed against the levels of the previous cycle, so every reader sees
// the same state for the whole cycle.
type ButtonTracker struct {
	buttons map[robot.Button]*buttonLevels
	order   []robot.Button
}

func NewButtonTracker() *ButtonTracker {
	return &ButtonTracker{
		buttons: make(map[robot.Button]*buttonLevels),
	}
}

// Register starts tracking b. Registering a button twice is a no-op.
func (t *ButtonTracker) Register(b robot.Button) {
	if _, ok := t.buttons[b]; ok {
		return
	}
	t.buttons[b] = &buttonLevels{}
	t.order = append(t.order, b)
}

// Registered returns the tracked buttons in registration order.
func (t *ButtonTracker) Registered() []robot.Button {
	return append([]robot.Button(nil), t.order...)
}

// Sample reads the current raw level of every tracked button.
func (t *ButtonTracker) Sample(in Inputs) {
	for _, b := range t.order {
		t.buttons[b].current = in.Digital(b)
	}
}

// Get returns the edge state of b for this cycle. Untracked buttons read as idle.
func (t *ButtonTracker) Get(b robot.Button) ButtonState {
	l, ok := t.buttons[b]
	if !ok {
		return ButtonIdle
	}
	switch {
	case l.current && !l.previous:
		return ButtonPressed
	case l.current && l.previous:
		return ButtonHeld
	case !l.current && l.previous:
		return ButtonReleased
	default:
		return ButtonIdle
	}
}

// UpdateAll carries every button's current level over as the previous level
// for the next cycle.
func (t *ButtonTracker) UpdateAll() {
	for _, l := range t.buttons {
		l.previous = l.current
	}
}
