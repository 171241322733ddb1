// Package joystick reads driver input: a Linux joystick device, or the keyboard
// when running in simulation, and turns it into per-cycle input snapshots.
package joystick

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"
)

// EventType distinguishes button and axis events.
type EventType uint8

const (
	EventTypeButton EventType = 0x01
	EventTypeAxis   EventType = 0x02

	// eventTypeInit is or-ed into the synthetic events the kernel sends on open
	// to report the initial state of every control.
	eventTypeInit = 0x80
)

func (e EventType) String() string {
	switch e {
	case EventTypeAxis:
		return "axis"
	case EventTypeButton:
		return "button"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

// Joystick reads events from a /dev/input/js* device.
type Joystick struct {
	device io.ReadCloser

	deviceEpoch    uint32
	wallclockEpoch time.Time
}

type rawEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

// Event is one joystick event. Axis values span -32767..32767; button values
// are 0 or 1.
type Event struct {
	Time   time.Time
	Value  int16
	Type   EventType
	Number uint8
}

func (e *Event) String() string {
	return fmt.Sprintf("%v(%v)=%v", e.Type, e.Number, e.Value)
}

// Open opens a joystick device.
func Open(device string) (*Joystick, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, fmt.Errorf("open joystick: %w", err)
	}
	return NewJoystick(f), nil
}

// NewJoystick reads events from an already open device.
func NewJoystick(device io.ReadCloser) *Joystick {
	return &Joystick{device: device}
}

// ReadEvent blocks until the next event arrives.
func (j *Joystick) ReadEvent() (*Event, error) {
	var raw rawEvent
	err := binary.Read(j.device, binary.LittleEndian, &raw)
	if err != nil {
		return nil, err
	}

	if j.wallclockEpoch.IsZero() {
		j.deviceEpoch = raw.Time
		j.wallclockEpoch = time.Now()
	}

	return &Event{
		Time:   j.wallclockEpoch.Add(time.Duration(raw.Time-j.deviceEpoch) * time.Millisecond),
		Value:  raw.Value,
		Type:   EventType(raw.Type &^ eventTypeInit),
		Number: raw.Number,
	}, nil
}

func (j *Joystick) Close() error {
	return j.device.Close()
}
