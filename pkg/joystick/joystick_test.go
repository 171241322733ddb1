package joystick

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/gwillem/clawbot/pkg/robot"
)

func encode(t *testing.T, events ...rawEvent) io.ReadCloser {
	t.Helper()
	var buf bytes.Buffer
	for _, e := range events {
		if err := binary.Write(&buf, binary.LittleEndian, e); err != nil {
			t.Fatal(err)
		}
	}
	return io.NopCloser(&buf)
}

func TestReadEvent(t *testing.T) {
	j := NewJoystick(encode(t,
		rawEvent{Time: 1000, Value: 1, Type: 0x01 | eventTypeInit, Number: ButtonCircle},
		rawEvent{Time: 1250, Value: -32767, Type: 0x02, Number: AxisLStickY},
	))

	first, err := j.ReadEvent()
	if err != nil {
		t.Fatal(err)
	}
	if first.Type != EventTypeButton || first.Number != ButtonCircle || first.Value != 1 {
		t.Errorf("first event = %v", first)
	}

	second, err := j.ReadEvent()
	if err != nil {
		t.Fatal(err)
	}
	if second.Type != EventTypeAxis || second.Value != -32767 {
		t.Errorf("second event = %v", second)
	}
	if d := second.Time.Sub(first.Time); d != 250*time.Millisecond {
		t.Errorf("event spacing = %v, want 250ms", d)
	}

	if _, err := j.ReadEvent(); err != io.EOF {
		t.Errorf("read past end: err = %v, want EOF", err)
	}
}

func TestScaleAxis(t *testing.T) {
	tests := []struct {
		value    int16
		invert   bool
		expected int
	}{
		{0, false, 0},
		{32767, false, 127},
		{-32767, false, -127},
		{-32768, false, -127},
		{-32767, true, 127},
		{16384, false, 63},
	}
	for _, tt := range tests {
		if got := ScaleAxis(tt.value, tt.invert); got != tt.expected {
			t.Errorf("ScaleAxis(%d, %v) = %d, want %d", tt.value, tt.invert, got, tt.expected)
		}
	}
}

func TestPad_Apply(t *testing.T) {
	p := NewPad(DefaultMapping(robot.DriverJoystick))

	p.Apply(&Event{Type: EventTypeButton, Number: ButtonCircle, Value: 1})
	p.Apply(&Event{Type: EventTypeButton, Number: ButtonR1, Value: 1})
	p.Apply(&Event{Type: EventTypeAxis, Number: AxisLStickY, Value: -32767})
	p.Apply(&Event{Type: EventTypeAxis, Number: AxisRStickX, Value: 32767})
	p.Apply(&Event{Type: EventTypeButton, Number: ButtonPS, Value: 1})

	s := p.Snapshot()
	if !s.Digital(robot.ButtonLowSpeed) {
		t.Error("circle should read as 8 right")
	}
	if !s.Digital(robot.ButtonArmUp) {
		t.Error("R1 should read as 6 up")
	}
	if got := s.Analog(robot.DriveAxis); got != robot.MaxSpeed {
		t.Errorf("left stick up = %d, want %d", got, robot.MaxSpeed)
	}
	if got := s.Analog(robot.TurnAxis); got != robot.MaxSpeed {
		t.Errorf("right stick right = %d, want %d", got, robot.MaxSpeed)
	}
	if got := len(s.Buttons); got != 2 {
		t.Errorf("%d buttons down, want 2", got)
	}

	p.Apply(&Event{Type: EventTypeButton, Number: ButtonCircle, Value: 0})
	if p.Snapshot().Digital(robot.ButtonLowSpeed) {
		t.Error("circle still down after release")
	}
	if p.Events() != 6 {
		t.Errorf("events = %d, want 6", p.Events())
	}
}

func TestPad_DPad(t *testing.T) {
	p := NewPad(DefaultMapping(robot.DriverJoystick))
	up := robot.Button{Joystick: robot.DriverJoystick, Group: 7, Dir: robot.Up}
	down := robot.Button{Joystick: robot.DriverJoystick, Group: 7, Dir: robot.Down}

	p.Apply(&Event{Type: EventTypeAxis, Number: AxisDPadY, Value: -32767})
	s := p.Snapshot()
	if !s.Digital(up) || s.Digital(down) {
		t.Errorf("d-pad up: up=%v down=%v", s.Digital(up), s.Digital(down))
	}

	p.Apply(&Event{Type: EventTypeAxis, Number: AxisDPadY, Value: 0})
	s = p.Snapshot()
	if s.Digital(up) || s.Digital(down) {
		t.Error("d-pad centred but a button reads down")
	}
}

func TestPad_SnapshotIsACopy(t *testing.T) {
	p := NewPad(DefaultMapping(robot.DriverJoystick))
	p.Apply(&Event{Type: EventTypeButton, Number: ButtonSquare, Value: 1})

	s := p.Snapshot()
	p.Apply(&Event{Type: EventTypeButton, Number: ButtonSquare, Value: 0})
	if !s.Digital(robot.ButtonClawOpen) {
		t.Error("earlier snapshot changed after a later event")
	}
}

func TestPad_RunResetsOnDisconnect(t *testing.T) {
	p := NewPad(DefaultMapping(robot.DriverJoystick))
	j := NewJoystick(encode(t, rawEvent{Value: 1, Type: 0x01, Number: ButtonCross}))

	err := p.Run(context.Background(), j)
	if err == nil {
		t.Fatal("Run returned nil on end of stream")
	}
	if p.Events() != 1 {
		t.Errorf("events = %d, want 1", p.Events())
	}
	if p.Snapshot().Digital(robot.ButtonClawClose) {
		t.Error("button still down after disconnect")
	}
}

func TestPad_RunCancelled(t *testing.T) {
	p := NewPad(DefaultMapping(robot.DriverJoystick))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Run(ctx, NewJoystick(encode(t))); err != nil {
		t.Errorf("Run after cancel = %v, want nil", err)
	}
}
