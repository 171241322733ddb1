package joystick

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gwillem/clawbot/pkg/control"
	"github.com/gwillem/clawbot/pkg/robot"
)

// EventSource yields joystick events. *Joystick implements it.
type EventSource interface {
	ReadEvent() (*Event, error)
}

// Pad holds the current state of a gamepad, updated from device events and
// read once per control cycle.
type Pad struct {
	mu      sync.Mutex
	mapping Mapping
	buttons map[robot.Button]bool
	axes    map[robot.Axis]int
	events  int
}

func NewPad(m Mapping) *Pad {
	return &Pad{
		mapping: m,
		buttons: make(map[robot.Button]bool),
		axes:    make(map[robot.Axis]int),
	}
}

// Apply folds one device event into the pad state. Unmapped controls are ignored.
func (p *Pad) Apply(e *Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events++

	switch e.Type {
	case EventTypeButton:
		if b, ok := p.mapping.Buttons[e.Number]; ok {
			p.buttons[b] = e.Value != 0
		}
	case EventTypeAxis:
		if p.mapping.DPadGroup != 0 {
			switch e.Number {
			case p.mapping.DPadX:
				p.setDPad(robot.Left, robot.Right, e.Value)
				return
			case p.mapping.DPadY:
				p.setDPad(robot.Up, robot.Down, e.Value)
				return
			}
		}
		if a, ok := p.mapping.Axes[e.Number]; ok {
			p.axes[a.Axis] = ScaleAxis(e.Value, a.Invert)
		}
	}
}

func (p *Pad) setDPad(neg, pos robot.Direction, value int16) {
	btn := func(d robot.Direction) robot.Button {
		return robot.Button{Joystick: p.mapping.Joystick, Group: p.mapping.DPadGroup, Dir: d}
	}
	p.buttons[btn(neg)] = value < 0
	p.buttons[btn(pos)] = value > 0
}

// Snapshot returns the pad state as of now.
func (p *Pad) Snapshot() control.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := control.NewSnapshot()
	for b, down := range p.buttons {
		if down {
			s.Buttons[b] = true
		}
	}
	for a, v := range p.axes {
		s.Axes[a] = v
	}
	return s
}

// Events returns how many device events have been applied.
func (p *Pad) Events() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events
}

// Reset releases every button and centres every axis.
func (p *Pad) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.buttons)
	clear(p.axes)
}

// Run applies events from src until the context is cancelled or the source
// fails. The pad is reset on return so a lost device reads as idle.
func (p *Pad) Run(ctx context.Context, src EventSource) error {
	defer p.Reset()
	for ctx.Err() == nil {
		e, err := src.ReadEvent()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, os.ErrClosed) {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return errors.New("joystick disconnected")
			}
			return fmt.Errorf("read joystick: %w", err)
		}
		p.Apply(e)
	}
	return nil
}
