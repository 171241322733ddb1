// Package robot describes the clawbot hardware: its motor channels, the driver
// joystick layout, configuration and the motor output backends.
package robot

import (
	"context"
	"fmt"
)

// Channel identifies one motor output.
type Channel string

// Motor channels of the clawbot.
const (
	FrontLeft  Channel = "front_left"
	FrontRight Channel = "front_right"
	BackLeft   Channel = "back_left"
	BackRight  Channel = "back_right"
	LeftArm    Channel = "left_arm"
	RightArm   Channel = "right_arm"
	Claw       Channel = "claw"
)

// MaxSpeed is the magnitude of the largest motor command.
const MaxSpeed = 127

// AllChannels returns all channels in wiring order.
func AllChannels() []Channel {
	return []Channel{
		FrontLeft,
		FrontRight,
		BackLeft,
		BackRight,
		LeftArm,
		RightArm,
		Claw,
	}
}

// DriveChannels returns the four wheel channels.
func DriveChannels() []Channel {
	return []Channel{FrontLeft, FrontRight, BackLeft, BackRight}
}

// IsValid reports whether c names a known channel.
func (c Channel) IsValid() bool {
	for _, ch := range AllChannels() {
		if ch == c {
			return true
		}
	}
	return false
}

// ClampSpeed bounds v to [-MaxSpeed, MaxSpeed].
func ClampSpeed(v int) int {
	if v > MaxSpeed {
		return MaxSpeed
	}
	if v < -MaxSpeed {
		return -MaxSpeed
	}
	return v
}

// Motors is a motor output backend. Commands are fire-and-forget: a failed write
// is reported but never retried.
type Motors interface {
	// SetSpeeds commands the given channels. Values are clamped to the speed range.
	SetSpeeds(ctx context.Context, speeds map[Channel]int) error
	// Stop commands every channel to zero.
	Stop(ctx context.Context) error
	Close() error
}

// ZeroSpeeds returns a command that stops every channel.
func ZeroSpeeds() map[Channel]int {
	speeds := make(map[Channel]int, len(AllChannels()))
	for _, ch := range AllChannels() {
		speeds[ch] = 0
	}
	return speeds
}

// OpenMotors opens the backend selected in the configuration.
func OpenMotors(ctx context.Context, cfg MotorsConfig) (Motors, error) {
	switch cfg.Backend {
	case BackendFeetech:
		bus, err := NewServoBus(ctx, cfg.Feetech)
		if err != nil {
			return nil, err
		}
		return bus, nil
	case BackendPCA9685:
		board, err := NewPWMBoard(ctx, cfg.PCA9685)
		if err != nil {
			return nil, err
		}
		return board, nil
	case BackendSim, "":
		return NewSimMotors(), nil
	}
	return nil, fmt.Errorf("unknown motor backend %q", cfg.Backend)
}
