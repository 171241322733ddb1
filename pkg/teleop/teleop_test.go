package teleop

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gwillem/clawbot/pkg/control"
	"github.com/gwillem/clawbot/pkg/robot"
)

type fixedSource struct {
	mu sync.Mutex
	s  control.Snapshot
}

func (f *fixedSource) Snapshot() control.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

func (f *fixedSource) set(s control.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.s = s
}

type failingMotors struct {
	*robot.SimMotors
}

func (failingMotors) SetSpeeds(context.Context, map[robot.Channel]int) error {
	return errors.New("bus offline")
}

func newTestController(t *testing.T, src Source, motors robot.Motors) *Controller {
	t.Helper()
	c, err := NewController(Config{Input: src, Motors: motors, Hz: 500})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// runUntil starts the controller and stops it once a state satisfies done.
func runUntil(t *testing.T, c *Controller, done func(State) bool) State {
	t.Helper()
	// discard a state left over from a previous run
	select {
	case <-c.States():
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx) }()

	var last State
	timeout := time.After(2 * time.Second)
loop:
	for {
		select {
		case last = <-c.States():
			if done(last) {
				break loop
			}
		case <-timeout:
			cancel()
			t.Fatalf("condition not reached, last state %+v", last)
		}
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Start returned %v, want context.Canceled", err)
	}
	return last
}

func TestController_DrivesAndStops(t *testing.T) {
	sim := robot.NewSimMotors()
	src := &fixedSource{s: control.NewSnapshot().WithAxis(robot.DriveAxis, robot.MaxSpeed)}
	c := newTestController(t, src, sim)

	runUntil(t, c, func(s State) bool {
		return s.Commands[robot.FrontLeft] == robot.MaxSpeed
	})

	if c.Running() {
		t.Error("controller still running after cancel")
	}
	for ch, v := range sim.Speeds() {
		if v != 0 {
			t.Errorf("%s = %d after stop, want 0", ch, v)
		}
	}
	if sim.Writes() < 2 {
		t.Errorf("writes = %d", sim.Writes())
	}
}

func TestController_RestartStartsFresh(t *testing.T) {
	sim := robot.NewSimMotors()
	src := &fixedSource{s: control.NewSnapshot().With(robot.ButtonLowSpeed, robot.ButtonClawClose)}
	c := newTestController(t, src, sim)

	first := runUntil(t, c, func(s State) bool { return s.Cycle >= 3 })
	if !first.LowSpeed || first.ClawPhase != control.ClawClosing {
		t.Fatalf("first run state = %+v, want low speed and closing claw", first)
	}

	src.set(control.NewSnapshot())
	second := runUntil(t, c, func(s State) bool { return true })
	if second.Cycle != 1 {
		t.Errorf("second run first cycle = %d, want 1", second.Cycle)
	}
	if second.LowSpeed {
		t.Error("low speed carried over a restart")
	}
	if second.ClawPhase != control.ClawIdle || second.ClawProgress != 0 {
		t.Errorf("claw carried over a restart: %s progress %d", second.ClawPhase, second.ClawProgress)
	}
	if second.Commands[robot.Claw] != 0 {
		t.Errorf("claw command = %d, want 0", second.Commands[robot.Claw])
	}
}

func TestController_AlreadyRunning(t *testing.T) {
	c := newTestController(t, &fixedSource{s: control.NewSnapshot()}, robot.NewSimMotors())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx)
	<-c.States()

	if err := c.Start(ctx); err == nil {
		t.Error("second Start succeeded")
	}
}

func TestController_WriteErrorsAreLogged(t *testing.T) {
	c := newTestController(t, &fixedSource{s: control.NewSnapshot()}, failingMotors{robot.NewSimMotors()})

	last := runUntil(t, c, func(s State) bool { return s.Error != nil })
	if last.Error == nil {
		t.Fatal("state carries no error")
	}

	found := false
	for len(c.Logs()) > 0 {
		if strings.Contains(<-c.Logs(), "bus offline") {
			found = true
		}
	}
	if !found {
		t.Error("write error not logged")
	}
}

func TestController_ModeChangesLogged(t *testing.T) {
	src := &fixedSource{s: control.NewSnapshot().With(robot.ButtonLowSpeed)}
	c := newTestController(t, src, robot.NewSimMotors())
	runUntil(t, c, func(s State) bool { return s.LowSpeed })

	var logs []string
	for len(c.Logs()) > 0 {
		logs = append(logs, <-c.Logs())
	}
	if !strings.Contains(strings.Join(logs, "\n"), "Low speed on") {
		t.Errorf("logs = %q, want low speed edge", logs)
	}
}

func TestNewController(t *testing.T) {
	src := &fixedSource{s: control.NewSnapshot()}
	sim := robot.NewSimMotors()

	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", Config{Input: src, Motors: sim}, true},
		{"buttons", Config{Input: src, Motors: sim, ArmScheme: robot.ArmSchemeButtons}, true},
		{"no input", Config{Motors: sim}, false},
		{"no motors", Config{Input: src}, false},
		{"bad scheme", Config{Input: src, Motors: sim, ArmScheme: "tank"}, false},
	}
	for _, tt := range tests {
		c, err := NewController(tt.cfg)
		if (err == nil) != tt.ok {
			t.Errorf("%s: err = %v, want ok=%v", tt.name, err, tt.ok)
			continue
		}
		if tt.ok && c.Hz() != robot.DefaultHz {
			t.Errorf("%s: Hz = %d, want %d", tt.name, c.Hz(), robot.DefaultHz)
		}
	}

	c, _ := NewController(Config{Input: src, Motors: sim})
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if !sim.Closed() {
		t.Error("Close did not close the motors")
	}
}
