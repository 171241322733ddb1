package robot

import (
	"context"
	"fmt"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// ServoBus drives the channels with Feetech STS bus servos. The servos run in
// position mode, so each speed command is integrated into a position target
// that advances every cycle.
type ServoBus struct {
	bus         *feetech.Bus
	group       *feetech.ServoGroup
	calibration Calibration
	gain        int
	targets     map[Channel]int
}

// OpenFeetechBus opens a Feetech bus on the given serial port.
func OpenFeetechBus(port string) (*feetech.Bus, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}
	return bus, nil
}

// NewServoBus opens the bus, seeds the position targets from the servos'
// current positions and enables torque.
func NewServoBus(ctx context.Context, cfg FeetechConfig) (*ServoBus, error) {
	bus, err := OpenFeetechBus(cfg.Port)
	if err != nil {
		return nil, err
	}

	// Create servo group from calibration IDs
	group := feetech.NewServoGroupByIDs(bus, cfg.Servos.ServoIDs()...)

	gain := cfg.Gain
	if gain <= 0 {
		gain = DefaultServoGain
	}
	s := &ServoBus{
		bus:         bus,
		group:       group,
		calibration: cfg.Servos,
		gain:        gain,
		targets:     make(map[Channel]int, len(cfg.Servos)),
	}

	rawPositions, err := group.Positions(ctx)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("read positions: %w", err)
	}
	for ch, sc := range cfg.Servos {
		pos, ok := rawPositions[sc.ID]
		if !ok {
			pos = sc.Center()
		}
		s.targets[ch] = sc.Clamp(pos)
	}

	if err := group.EnableAll(ctx); err != nil {
		bus.Close()
		return nil, fmt.Errorf("enable torque: %w", err)
	}
	return s, nil
}

// SetSpeeds advances the position target of every commanded channel and writes
// all targets in one sync write.
func (s *ServoBus) SetSpeeds(ctx context.Context, speeds map[Channel]int) error {
	raw := advanceTargets(s.targets, speeds, s.calibration, s.gain)
	if err := s.group.SetPositions(ctx, raw); err != nil {
		return fmt.Errorf("write positions: %w", err)
	}
	return nil
}

// Stop holds every servo at its current target.
func (s *ServoBus) Stop(ctx context.Context) error {
	return s.SetSpeeds(ctx, ZeroSpeeds())
}

// Close disables torque and closes the bus connection.
func (s *ServoBus) Close() error {
	if err := s.group.DisableAll(context.Background()); err != nil {
		s.bus.Close()
		return fmt.Errorf("disable torque: %w", err)
	}
	return s.bus.Close()
}

// advanceTargets moves targets by one cycle at the given speeds and returns the
// raw positions keyed by servo ID. Channels without calibration are skipped.
func advanceTargets(targets map[Channel]int, speeds map[Channel]int, cal Calibration, gain int) feetech.PositionMap {
	raw := make(feetech.PositionMap, len(cal))
	for ch, sc := range cal {
		pos, ok := targets[ch]
		if !ok {
			pos = sc.Center()
		}
		pos = sc.Advance(pos, speeds[ch], gain)
		targets[ch] = pos
		raw[sc.ID] = pos
	}
	return raw
}

var _ Motors = (*ServoBus)(nil)
