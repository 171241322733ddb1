package robot

import (
	"context"
	"sync"
)

// SimMotors is an in-memory motor backend. It remembers the last command sent to
// each channel.
type SimMotors struct {
	mu     sync.Mutex
	speeds map[Channel]int
	writes int
	closed bool
}

func NewSimMotors() *SimMotors {
	return &SimMotors{speeds: ZeroSpeeds()}
}

func (s *SimMotors) SetSpeeds(ctx context.Context, speeds map[Channel]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch, v := range speeds {
		s.speeds[ch] = ClampSpeed(v)
	}
	s.writes++
	return nil
}

func (s *SimMotors) Stop(ctx context.Context) error {
	return s.SetSpeeds(ctx, ZeroSpeeds())
}

func (s *SimMotors) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Speeds returns a copy of the last commanded speeds.
func (s *SimMotors) Speeds() map[Channel]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Channel]int, len(s.speeds))
	for ch, v := range s.speeds {
		out[ch] = v
	}
	return out
}

// Writes returns how many SetSpeeds calls have been made.
func (s *SimMotors) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Closed reports whether Close has been called.
func (s *SimMotors) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var _ Motors = (*SimMotors)(nil)
