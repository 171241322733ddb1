package robot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

const DefaultConfigFile = "clawbot.json"

// Defaults applied by Config.ApplyDefaults.
const (
	DefaultHz          = 50
	DefaultFilterStep  = 15
	DefaultServoGain   = 40
	DefaultJoystick    = "/dev/input/js0"
	DefaultI2CDevice   = "/dev/i2c-1"
	DefaultPCA9685Addr = 0x40
)

// Arm control schemes.
const (
	ArmSchemeAnalog  = "analog"
	ArmSchemeButtons = "buttons"
)

// Motor backends.
const (
	BackendSim     = "sim"
	BackendFeetech = "feetech"
	BackendPCA9685 = "pca9685"
)

// Config holds the robot configuration
type Config struct {
	ArmScheme  string         `json:"arm_scheme" yaml:"arm_scheme"`
	Hz         int            `json:"hz" yaml:"hz"`
	FilterStep int            `json:"filter_step" yaml:"filter_step"`
	Joystick   JoystickConfig `json:"joystick" yaml:"joystick"`
	Motors     MotorsConfig   `json:"motors" yaml:"motors"`
}

// JoystickConfig selects the joystick device.
type JoystickConfig struct {
	Device string `json:"device" yaml:"device"`
}

// MotorsConfig selects and configures the motor backend.
type MotorsConfig struct {
	Backend string        `json:"backend" yaml:"backend"`
	Feetech FeetechConfig `json:"feetech,omitempty" yaml:"feetech,omitempty"`
	PCA9685 PCA9685Config `json:"pca9685,omitempty" yaml:"pca9685,omitempty"`
}

// FeetechConfig holds configuration for a Feetech servo bus
type FeetechConfig struct {
	Port   string      `json:"port" yaml:"port"`
	Gain   int         `json:"gain,omitempty" yaml:"gain,omitempty"`
	Servos Calibration `json:"servos,omitempty" yaml:"servos,omitempty"`
}

// IsCalibrated returns true if every channel is bound to a servo
func (f *FeetechConfig) IsCalibrated() bool {
	for _, ch := range AllChannels() {
		if _, ok := f.Servos[ch]; !ok {
			return false
		}
	}
	return true
}

// PCA9685Config holds configuration for a PCA9685 PWM board.
type PCA9685Config struct {
	Device  string                 `json:"device" yaml:"device"`
	Address int                    `json:"address,omitempty" yaml:"address,omitempty"`
	Ports   map[Channel]PWMBinding `json:"ports,omitempty" yaml:"ports,omitempty"`
}

// PWMBinding binds a channel to a PWM output.
type PWMBinding struct {
	Port     int  `json:"port" yaml:"port"`
	Inverted bool `json:"inverted,omitempty" yaml:"inverted,omitempty"`
}

// DefaultPWMPorts wires the channels to ports 0-6 in channel order.
func DefaultPWMPorts() map[Channel]PWMBinding {
	ports := make(map[Channel]PWMBinding, len(AllChannels()))
	for i, ch := range AllChannels() {
		ports[ch] = PWMBinding{Port: i}
	}
	return ports
}

// DefaultConfig returns a configuration that runs against simulated motors.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in zero-valued settings.
func (c *Config) ApplyDefaults() {
	if c.ArmScheme == "" {
		c.ArmScheme = ArmSchemeAnalog
	}
	if c.Hz <= 0 {
		c.Hz = DefaultHz
	}
	if c.FilterStep <= 0 {
		c.FilterStep = DefaultFilterStep
	}
	if c.Joystick.Device == "" {
		c.Joystick.Device = DefaultJoystick
	}
	if c.Motors.Backend == "" {
		c.Motors.Backend = BackendSim
	}
	if c.Motors.Feetech.Gain <= 0 {
		c.Motors.Feetech.Gain = DefaultServoGain
	}
	if c.Motors.PCA9685.Device == "" {
		c.Motors.PCA9685.Device = DefaultI2CDevice
	}
	if c.Motors.PCA9685.Address == 0 {
		c.Motors.PCA9685.Address = DefaultPCA9685Addr
	}
	if len(c.Motors.PCA9685.Ports) == 0 {
		c.Motors.PCA9685.Ports = DefaultPWMPorts()
	}
}

// Validate checks the configuration for the selected backend.
func (c *Config) Validate() error {
	switch c.ArmScheme {
	case ArmSchemeAnalog, ArmSchemeButtons:
	default:
		return fmt.Errorf("unknown arm scheme %q", c.ArmScheme)
	}

	switch c.Motors.Backend {
	case BackendSim:
	case BackendFeetech:
		if c.Motors.Feetech.Port == "" {
			return fmt.Errorf("feetech: no port configured")
		}
		seen := make(map[int]Channel)
		for _, ch := range AllChannels() {
			sc, ok := c.Motors.Feetech.Servos[ch]
			if !ok {
				return fmt.Errorf("feetech: channel %s has no servo", ch)
			}
			if other, dup := seen[sc.ID]; dup {
				return fmt.Errorf("feetech: servo %d bound to both %s and %s", sc.ID, other, ch)
			}
			seen[sc.ID] = ch
			if sc.RangeMax <= sc.RangeMin {
				return fmt.Errorf("feetech: channel %s has empty range [%d, %d]", ch, sc.RangeMin, sc.RangeMax)
			}
		}
	case BackendPCA9685:
		seen := make(map[int]Channel)
		for _, ch := range AllChannels() {
			b, ok := c.Motors.PCA9685.Ports[ch]
			if !ok {
				return fmt.Errorf("pca9685: channel %s has no port", ch)
			}
			if b.Port < 0 || b.Port > 15 {
				return fmt.Errorf("pca9685: channel %s port %d out of range", ch, b.Port)
			}
			if other, dup := seen[b.Port]; dup {
				return fmt.Errorf("pca9685: port %d bound to both %s and %s", b.Port, other, ch)
			}
			seen[b.Port] = ch
		}
	default:
		return fmt.Errorf("unknown motor backend %q", c.Motors.Backend)
	}
	return nil
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file. Files ending in
// .yaml or .yml are parsed as YAML, anything else as JSON.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the config file exists
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
