package control

import (
	"testing"

	"github.com/gwillem/clawbot/pkg/robot"
)

func TestButtonTracker_EdgeSequence(t *testing.T) {
	b := robot.ButtonLowSpeed
	tr := NewButtonTracker()
	tr.Register(b)

	tests := []struct {
		down     bool
		expected ButtonState
	}{
		{false, ButtonIdle},
		{true, ButtonPressed},
		{true, ButtonHeld},
		{false, ButtonReleased},
		{false, ButtonIdle},
		{true, ButtonPressed},
		{false, ButtonReleased},
	}

	for i, tt := range tests {
		in := NewSnapshot()
		in.Buttons[b] = tt.down
		tr.Sample(in)
		got := tr.Get(b)
		// Every reader in the cycle sees the same edge.
		if again := tr.Get(b); again != got {
			t.Errorf("cycle %d: second Get = %v, first = %v", i, again, got)
		}
		tr.UpdateAll()
		if got != tt.expected {
			t.Errorf("cycle %d: Get = %v, want %v", i, got, tt.expected)
		}
	}
}

func TestButtonTracker_RegisterIdempotent(t *testing.T) {
	tr := NewButtonTracker()
	tr.Register(robot.ButtonClawOpen)
	tr.Sample(NewSnapshot().With(robot.ButtonClawOpen))
	tr.UpdateAll()
	tr.Register(robot.ButtonClawOpen)

	if got := len(tr.Registered()); got != 1 {
		t.Fatalf("Registered() has %d buttons, want 1", got)
	}
	// Re-registering must not reset the stored levels.
	tr.Sample(NewSnapshot().With(robot.ButtonClawOpen))
	if got := tr.Get(robot.ButtonClawOpen); got != ButtonHeld {
		t.Errorf("Get after re-register = %v, want %v", got, ButtonHeld)
	}
}

func TestButtonTracker_ButtonsIndependent(t *testing.T) {
	tr := NewButtonTracker()
	tr.Register(robot.ButtonClawOpen)
	tr.Register(robot.ButtonClawClose)

	tr.Sample(NewSnapshot().With(robot.ButtonClawOpen))
	if got := tr.Get(robot.ButtonClawOpen); got != ButtonPressed {
		t.Errorf("claw open = %v, want pressed", got)
	}
	if got := tr.Get(robot.ButtonClawClose); got != ButtonIdle {
		t.Errorf("claw close = %v, want idle", got)
	}
}

func TestButtonTracker_UnregisteredIsIdle(t *testing.T) {
	tr := NewButtonTracker()
	tr.Sample(NewSnapshot().With(robot.ButtonArmUp))
	if got := tr.Get(robot.ButtonArmUp); got != ButtonIdle {
		t.Errorf("Get(unregistered) = %v, want idle", got)
	}
}

func TestButtonState_Down(t *testing.T) {
	tests := []struct {
		state    ButtonState
		expected bool
	}{
		{ButtonIdle, false},
		{ButtonPressed, true},
		{ButtonHeld, true},
		{ButtonReleased, false},
	}
	for _, tt := range tests {
		if got := tt.state.Down(); got != tt.expected {
			t.Errorf("%v.Down() = %v, want %v", tt.state, got, tt.expected)
		}
	}
}
