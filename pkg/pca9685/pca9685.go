// Package pca9685 drives a PCA9685 16-channel PWM controller over I2C, configured
// for 50Hz servo-style pulses.
package pca9685

import (
	"fmt"
	"time"

	"golang.org/x/exp/io/i2c"
)

const (
	DefaultAddr = 0x40

	RegMode1 = 0x00
	RegMode2 = 0x01

	// Each PWM output has two 16-bit (low byte first) registers.
	// First register is the on time, second is the off time.
	RegLEDBase = 0x06

	RegPreScale = 0xfe // Pre-scaler for PWM frequency.

	NumPorts = 16

	PWMPeriod = 20 * time.Millisecond

	PulseMin     = 1000 * time.Microsecond
	PulseNeutral = 1500 * time.Microsecond
	PulseMax     = 2000 * time.Microsecond

	PWMMax = 4095
)

type Interface interface {
	Configure() error
	SetPulse(port int, pulse time.Duration) error
	Close() error
}

type PCA9685 struct {
	dev *i2c.Device
}

func New(deviceFile string, addr int) (*PCA9685, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, addr)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", deviceFile, err)
	}
	return &PCA9685{
		dev: dev,
	}, nil
}

func (p *PCA9685) Configure() (err error) {
	// Put device to sleep.
	err = p.dev.WriteReg(RegMode1, []byte{0x11})
	if err != nil {
		return
	}
	// Update pre-scaler for 50Hz.
	err = p.dev.WriteReg(RegPreScale, []byte{0x79})
	if err != nil {
		return
	}
	// Trigger a reset
	err = p.dev.WriteReg(RegMode1, []byte{0x01})
	if err != nil {
		return
	}
	// Required delay after reset.
	time.Sleep(1 * time.Millisecond)
	// Enable.
	err = p.dev.WriteReg(RegMode1, []byte{0x81})
	return
}

// SetPulse sets the high time of a port's 20ms period.
func (p *PCA9685) SetPulse(port int, pulse time.Duration) error {
	if port < 0 || port >= NumPorts {
		return fmt.Errorf("port %d out of range", port)
	}
	return p.dev.WriteReg(portReg(port), offTimeBytes(PulseTicks(pulse)))
}

func (p *PCA9685) Close() error {
	return p.dev.Close()
}

// PulseTicks converts a pulse width to the 12-bit off time of one PWM period.
func PulseTicks(pulse time.Duration) uint16 {
	if pulse < 0 {
		pulse = 0
	} else if pulse > PWMPeriod {
		pulse = PWMPeriod
	}
	return uint16(int64(PWMMax) * int64(pulse) / int64(PWMPeriod))
}

func portReg(port int) byte {
	return byte(RegLEDBase + port*4)
}

// offTimeBytes turns the output on at tick 0 and off at the given tick.
func offTimeBytes(ticks uint16) []byte {
	return []byte{0, 0, byte(ticks & 0xff), byte(ticks >> 8)}
}
