package joystick

import (
	"sync"
	"time"

	"github.com/gwillem/clawbot/pkg/control"
	"github.com/gwillem/clawbot/pkg/robot"
)

// DefaultHold is how long a key counts as held after its last press. Terminals
// report key repeats, not releases; the window has to cover the initial repeat
// delay or a held key reads as several presses.
const DefaultHold = 600 * time.Millisecond

// KeyBinding maps one key onto joystick controls.
type KeyBinding struct {
	Key     string
	Help    string
	Buttons []robot.Button
	Axis    robot.Axis
	Value   int
}

// KeyPad emulates the driver joystick from keyboard presses.
type KeyPad struct {
	mu       sync.Mutex
	hold     time.Duration
	now      func() time.Time
	bindings []KeyBinding
	byKey    map[string]int
	until    map[string]time.Time
}

// NewKeyPad returns a keyboard pad for the given arm scheme. hold <= 0 selects
// DefaultHold.
func NewKeyPad(armScheme string, hold time.Duration) *KeyPad {
	if hold <= 0 {
		hold = DefaultHold
	}
	k := &KeyPad{
		hold:     hold,
		now:      time.Now,
		bindings: DefaultKeyBindings(armScheme),
		byKey:    make(map[string]int),
		until:    make(map[string]time.Time),
	}
	for i, b := range k.bindings {
		k.byKey[b.Key] = i
	}
	return k
}

// DefaultKeyBindings lays out WASD driving with arm and claw keys. The arm keys
// follow the arm scheme so both schemes drive the arm the same way.
func DefaultKeyBindings(armScheme string) []KeyBinding {
	bindings := []KeyBinding{
		{Key: "w", Help: "forward", Axis: robot.DriveAxis, Value: robot.MaxSpeed},
		{Key: "s", Help: "back", Axis: robot.DriveAxis, Value: -robot.MaxSpeed},
		{Key: "a", Help: "left", Axis: robot.TurnAxis, Value: -robot.MaxSpeed},
		{Key: "d", Help: "right", Axis: robot.TurnAxis, Value: robot.MaxSpeed},
	}
	if armScheme == robot.ArmSchemeButtons {
		bindings = append(bindings,
			KeyBinding{Key: "i", Help: "arm up", Buttons: []robot.Button{robot.ButtonArmUp}},
			KeyBinding{Key: "k", Help: "arm down", Buttons: []robot.Button{robot.ButtonArmDown}},
		)
	} else {
		bindings = append(bindings,
			KeyBinding{Key: "i", Help: "arm up", Buttons: []robot.Button{robot.ButtonArmUp}, Axis: robot.ArmAxis, Value: robot.MaxSpeed},
			KeyBinding{Key: "k", Help: "arm down", Buttons: []robot.Button{robot.ButtonArmUp}, Axis: robot.ArmAxis, Value: -robot.MaxSpeed},
		)
	}
	return append(bindings,
		KeyBinding{Key: "c", Help: "claw", Buttons: []robot.Button{robot.ButtonClawClose}},
		KeyBinding{Key: "o", Help: "open", Buttons: []robot.Button{robot.ButtonClawOpen}},
		KeyBinding{Key: "l", Help: "low speed", Buttons: []robot.Button{robot.ButtonLowSpeed}},
	)
}

// Press records a key press. It reports whether the key is bound.
func (k *KeyPad) Press(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.byKey[key]; !ok {
		return false
	}
	k.until[key] = k.now().Add(k.hold)
	return true
}

// Release drops every held key.
func (k *KeyPad) Release() {
	k.mu.Lock()
	defer k.mu.Unlock()
	clear(k.until)
}

// Snapshot returns the controls of all keys still inside their hold window.
// Opposing axis keys cancel out.
func (k *KeyPad) Snapshot() control.Snapshot {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	s := control.NewSnapshot()
	for key, until := range k.until {
		if !now.Before(until) {
			delete(k.until, key)
			continue
		}
		b := k.bindings[k.byKey[key]]
		for _, btn := range b.Buttons {
			s.Buttons[btn] = true
		}
		if b.Value != 0 {
			s.Axes[b.Axis] = robot.ClampSpeed(s.Axes[b.Axis] + b.Value)
		}
	}
	return s
}

// Bindings returns the key layout.
func (k *KeyPad) Bindings() []KeyBinding {
	return k.bindings
}
