package robot

import (
	"context"
	"fmt"
	"time"

	"github.com/gwillem/clawbot/pkg/pca9685"
)

// PWMBoard drives the channels through motor controllers hanging off a PCA9685
// PWM board. Controllers take servo-style pulses: 1.5ms is stopped, 1ms and 2ms
// are full speed in either direction.
type PWMBoard struct {
	board pca9685.Interface
	ports map[Channel]PWMBinding
}

// NewPWMBoard opens and configures the PCA9685 and stops every channel.
func NewPWMBoard(ctx context.Context, cfg PCA9685Config) (*PWMBoard, error) {
	board, err := pca9685.New(cfg.Device, cfg.Address)
	if err != nil {
		return nil, err
	}
	if err := board.Configure(); err != nil {
		board.Close()
		return nil, fmt.Errorf("configure pca9685: %w", err)
	}
	p := NewPWMBoardWith(board, cfg.Ports)
	if err := p.Stop(ctx); err != nil {
		board.Close()
		return nil, err
	}
	return p, nil
}

// NewPWMBoardWith wraps an already configured board.
func NewPWMBoardWith(board pca9685.Interface, ports map[Channel]PWMBinding) *PWMBoard {
	return &PWMBoard{
		board: board,
		ports: ports,
	}
}

func (p *PWMBoard) SetSpeeds(ctx context.Context, speeds map[Channel]int) error {
	var errs []error
	for ch, speed := range speeds {
		b, ok := p.ports[ch]
		if !ok {
			continue
		}
		if err := p.board.SetPulse(b.Port, SpeedToPulse(speed, b.Inverted)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("set pwm: %v", errs)
	}
	return nil
}

func (p *PWMBoard) Stop(ctx context.Context) error {
	return p.SetSpeeds(ctx, ZeroSpeeds())
}

func (p *PWMBoard) Close() error {
	return p.board.Close()
}

// SpeedToPulse maps a signed speed onto the 1-2ms pulse range.
func SpeedToPulse(speed int, inverted bool) time.Duration {
	speed = ClampSpeed(speed)
	if inverted {
		speed = -speed
	}
	halfRange := pca9685.PulseMax - pca9685.PulseNeutral
	return pca9685.PulseNeutral + halfRange*time.Duration(speed)/MaxSpeed
}

var _ Motors = (*PWMBoard)(nil)
