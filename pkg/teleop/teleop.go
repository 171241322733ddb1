// Package teleop runs operator control: it reads the driver's joystick once per
// cycle, runs the control policy and writes the resulting motor commands.
package teleop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gwillem/clawbot/pkg/control"
	"github.com/gwillem/clawbot/pkg/robot"
)

// Source provides the joystick state for one cycle.
type Source interface {
	Snapshot() control.Snapshot
}

// State represents the outcome of one control cycle.
type State struct {
	Commands     control.Commands
	LowSpeed     bool
	ClawPhase    control.ClawPhase
	ClawProgress int
	Cycle        uint64
	Timestamp    time.Time
	Error        error
}

// Controller manages the operator control loop.
type Controller struct {
	input      Source
	motors     robot.Motors
	arm        control.ArmControl
	hz         int
	filterStep int

	mu      sync.RWMutex
	running bool
	stateCh chan State
	logCh   chan string
}

// Config holds configuration for the controller.
type Config struct {
	Input      Source
	Motors     robot.Motors
	Hz         int
	ArmScheme  string
	FilterStep int
}

// NewController creates a new operator control controller. The controller owns
// the motors and closes them in Close.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Input == nil {
		return nil, errors.New("no input source")
	}
	if cfg.Motors == nil {
		return nil, errors.New("no motors")
	}
	arm, err := control.NewArmControl(cfg.ArmScheme)
	if err != nil {
		return nil, fmt.Errorf("create arm control: %w", err)
	}

	if cfg.Hz <= 0 {
		cfg.Hz = robot.DefaultHz
	}

	return &Controller{
		input:      cfg.Input,
		motors:     cfg.Motors,
		arm:        arm,
		hz:         cfg.Hz,
		filterStep: cfg.FilterStep,
		stateCh:    make(chan State, 1),
		logCh:      make(chan string, 10),
	}, nil
}

// Close closes the controller and releases the motors.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	if err := c.motors.Close(); err != nil {
		return fmt.Errorf("close motors: %w", err)
	}
	return nil
}

// States returns a channel that receives state updates.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Hz returns the control frequency.
func (c *Controller) Hz() int {
	return c.hz
}

// Running reports whether the control loop is active.
func (c *Controller) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

func (c *Controller) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case c.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Start runs operator control until ctx is cancelled, then commands every motor
// to stop. Each call starts from a fresh policy state: claw open, low speed
// off, filters at rest.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("already running")
	}
	c.running = true
	c.mu.Unlock()

	cycle := control.NewCycle(c.arm, c.filterStep)
	c.log("Operator control started at %d Hz, %s arm", c.hz, c.arm.Name())

	ticker := time.NewTicker(time.Second / time.Duration(c.hz))
	defer ticker.Stop()

	var n uint64
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case <-ticker.C:
			n++
			c.step(ctx, cycle, n)
		}
	}
}

func (c *Controller) step(ctx context.Context, cycle *control.Cycle, n uint64) {
	lowSpeed, phase := cycle.LowSpeed, cycle.Claw.Phase

	cmds := cycle.Step(c.input.Snapshot())

	if cycle.LowSpeed != lowSpeed {
		if cycle.LowSpeed {
			c.log("Low speed on")
		} else {
			c.log("Low speed off")
		}
	}
	if p := cycle.Claw.Phase; p != phase && p != control.ClawIdle {
		c.log("Claw %s", p)
	}

	err := c.motors.SetSpeeds(ctx, cmds)
	if err != nil {
		c.log("Write error: %v", err)
	}

	c.sendState(State{
		Commands:     cmds,
		LowSpeed:     cycle.LowSpeed,
		ClawPhase:    cycle.Claw.Phase,
		ClawProgress: cycle.Claw.Progress,
		Cycle:        n,
		Timestamp:    time.Now(),
		Error:        err,
	})
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}

func (c *Controller) shutdown() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	if err := c.motors.Stop(context.Background()); err != nil {
		c.log("Warning: failed to stop motors: %v", err)
	} else {
		c.log("Motors stopped")
	}
	c.log("Operator control stopped")
}
